package types

// GenesisState is the module's exported/imported state, matching the
// teacher's `types.DefaultGenesis()` + `InitGenesis` convention
// (testutil/keeper/dex.go calls `k.InitGenesis(ctx, *types.DefaultGenesis())`).
type GenesisState struct {
	Params Params
	Pools  []Pool
}

// DefaultGenesis returns an empty genesis state with default params.
func DefaultGenesis() *GenesisState {
	return &GenesisState{Params: DefaultParams()}
}

// Validate checks internal consistency of a genesis state: params must be
// valid and every pool's config must be valid, matching the teacher's
// genesis validation style.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}
	for i := range gs.Pools {
		if err := gs.Pools[i].Config.Validate(); err != nil {
			return err
		}
	}
	return nil
}
