// Package keeper implements the margin lending pool and cross-collateral
// margin account engine: the Keeper methods are the core-exposed
// operations a host (a chain module, a test harness, a simulator) calls
// against its own storage, token ledger, oracle, and metadata registry.
package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/marginchain/core/x/margin/types"
)

// kvStoreProvider lets getStore work with both a raw sdk.Context and any
// context value that can hand back a KVStore directly (test harnesses),
// mirroring x/dex/keeper/keeper.go's defensive getStore pattern.
type kvStoreProvider interface {
	KVStore(key storetypes.StoreKey) storetypes.KVStore
}

// Keeper holds the store handle, a logger, metrics, the external
// collaborators, and the authority — never pool or account data itself
// (spec.md §5: "no global mutable state exists in the core").
type Keeper struct {
	storeKey storetypes.StoreKey
	logger   log.Logger

	ledger   types.TokenLedger
	oracle   types.PriceOracle
	registry types.MetadataRegistry

	authority string
	metrics   *Metrics
}

// NewKeeper constructs a margin Keeper. ledger/oracle/registry are the
// external collaborators spec.md §6 names; a host wires in its own
// implementations.
func NewKeeper(
	key storetypes.StoreKey,
	logger log.Logger,
	ledger types.TokenLedger,
	oracle types.PriceOracle,
	registry types.MetadataRegistry,
	authority string,
) *Keeper {
	return &Keeper{
		storeKey:  key,
		logger:    logger.With("module", "x/"+types.ModuleName),
		ledger:    ledger,
		oracle:    oracle,
		registry:  registry,
		authority: authority,
		metrics:   NewMetrics(),
	}
}

// getStore returns the KVStore for the margin module.
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	if provider, ok := ctx.(kvStoreProvider); ok {
		return provider.KVStore(k.storeKey)
	}
	unwrapped := sdk.UnwrapSDKContext(ctx)
	return unwrapped.KVStore(k.storeKey)
}

// Logger returns the module logger.
func (k Keeper) Logger() log.Logger {
	return k.logger
}

// GetAuthority returns the module authority, used to gate admin-only
// operations like CreatePool.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// GetStoreKey returns the store key, exposed for test harnesses the way
// x/dex/keeper/keeper.go's GetStoreKey is.
func (k Keeper) GetStoreKey() storetypes.StoreKey {
	return k.storeKey
}

func blockTime(ctx context.Context) int64 {
	return sdk.UnwrapSDKContext(ctx).BlockTime().Unix()
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", op, err)
}
