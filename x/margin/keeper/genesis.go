package keeper

import (
	"context"
	"fmt"

	storetypes "cosmossdk.io/store/types"

	"github.com/marginchain/core/x/margin/types"
)

// InitGenesis loads a validated GenesisState into the store, matching the
// teacher's testutil/keeper/dex.go convention of calling InitGenesis with
// DefaultGenesis() during harness setup.
func (k Keeper) InitGenesis(ctx context.Context, gs types.GenesisState) error {
	if err := gs.Validate(); err != nil {
		return fmt.Errorf("InitGenesis: %w", err)
	}

	if err := k.setParams(ctx, gs.Params); err != nil {
		return fmt.Errorf("InitGenesis: %w", err)
	}
	for _, pool := range gs.Pools {
		if err := k.setPool(ctx, pool); err != nil {
			return fmt.Errorf("InitGenesis: %w", err)
		}
	}
	return nil
}

// ExportGenesis reads the module's params and every pool back into a
// GenesisState. Margin accounts and in-progress liquidations are
// intentionally not exported: they are per-user runtime state, not
// protocol configuration, the same split the teacher's own genesis export
// draws between params/pools and user-owned positions.
func (k Keeper) ExportGenesis(ctx context.Context) *types.GenesisState {
	gs := &types.GenesisState{Params: k.getParams(ctx)}

	store := k.getStore(ctx)
	iterator := storetypes.KVStorePrefixIterator(store, []byte(types.PoolKeyPrefix))
	defer iterator.Close()

	for ; iterator.Valid(); iterator.Next() {
		var pool types.Pool
		if err := pool.UnmarshalBinary(iterator.Value()); err != nil {
			panic(fmt.Errorf("ExportGenesis: %w", err))
		}
		gs.Pools = append(gs.Pools, pool)
	}

	return gs
}
