package keeper

import (
	"context"
	"fmt"

	"github.com/marginchain/core/x/margin/types"
)

func poolStoreKey(underlyingID types.ID) []byte {
	return append([]byte(types.PoolKeyPrefix), underlyingID[:]...)
}

func liquidationStoreKey(liquidationID types.ID) []byte {
	return append([]byte(types.LiquidationKeyPrefix), liquidationID[:]...)
}

// getPool loads a pool by its underlying asset identifier.
func (k Keeper) getPool(ctx context.Context, underlyingID types.ID) (types.Pool, error) {
	store := k.getStore(ctx)
	key := poolStoreKey(underlyingID)
	raw := store.Get(key)
	if raw == nil {
		return types.Pool{}, fmt.Errorf("pool %q not found", underlyingID.String())
	}

	var pool types.Pool
	if err := pool.UnmarshalBinary(raw); err != nil {
		return types.Pool{}, fmt.Errorf("getPool: %w", err)
	}
	return pool, nil
}

func (k Keeper) setPool(ctx context.Context, pool types.Pool) error {
	raw, err := pool.MarshalBinary()
	if err != nil {
		return fmt.Errorf("setPool: %w", err)
	}
	k.getStore(ctx).Set(poolStoreKey(pool.UnderlyingID), raw)
	return nil
}

func (k Keeper) hasPool(ctx context.Context, underlyingID types.ID) bool {
	return k.getStore(ctx).Has(poolStoreKey(underlyingID))
}

// getAccount loads a margin account by its owner and seed.
func (k Keeper) getAccount(ctx context.Context, ownerID types.ID, seed uint16) (types.MarginAccount, error) {
	store := k.getStore(ctx)
	key := types.AccountKey(ownerID.String(), seed)
	raw := store.Get(key)
	if raw == nil {
		return types.MarginAccount{}, fmt.Errorf("margin account owner=%q seed=%d not found", ownerID.String(), seed)
	}

	var account types.MarginAccount
	if err := account.UnmarshalBinary(raw); err != nil {
		return types.MarginAccount{}, fmt.Errorf("getAccount: %w", err)
	}
	return account, nil
}

func (k Keeper) setAccount(ctx context.Context, account types.MarginAccount) error {
	raw, err := account.MarshalBinary()
	if err != nil {
		return fmt.Errorf("setAccount: %w", err)
	}
	key := types.AccountKey(account.OwnerID.String(), account.Seed)
	k.getStore(ctx).Set(key, raw)
	return nil
}

func (k Keeper) deleteAccount(ctx context.Context, account types.MarginAccount) {
	key := types.AccountKey(account.OwnerID.String(), account.Seed)
	k.getStore(ctx).Delete(key)
}

// getLiquidation loads a liquidation record.
func (k Keeper) getLiquidation(ctx context.Context, liquidationID types.ID) (types.Liquidation, error) {
	store := k.getStore(ctx)
	raw := store.Get(liquidationStoreKey(liquidationID))
	if raw == nil {
		return types.Liquidation{}, fmt.Errorf("liquidation %q not found", liquidationID.String())
	}

	var liquidation types.Liquidation
	if err := liquidation.UnmarshalBinary(raw); err != nil {
		return types.Liquidation{}, fmt.Errorf("getLiquidation: %w", err)
	}
	return liquidation, nil
}

func (k Keeper) setLiquidation(ctx context.Context, liquidationID types.ID, liquidation types.Liquidation) error {
	raw, err := liquidation.MarshalBinary()
	if err != nil {
		return fmt.Errorf("setLiquidation: %w", err)
	}
	k.getStore(ctx).Set(liquidationStoreKey(liquidationID), raw)
	return nil
}

func (k Keeper) deleteLiquidation(ctx context.Context, liquidationID types.ID) {
	k.getStore(ctx).Delete(liquidationStoreKey(liquidationID))
}

// getParams loads the module's single Params record, falling back to
// defaults if genesis never set one.
func (k Keeper) getParams(ctx context.Context) types.Params {
	store := k.getStore(ctx)
	raw := store.Get([]byte(types.ParamsKey))
	if raw == nil {
		return types.DefaultParams()
	}
	return types.Params{Authority: string(raw)}
}

func (k Keeper) setParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return fmt.Errorf("setParams: %w", err)
	}
	k.getStore(ctx).Set([]byte(types.ParamsKey), []byte(params.Authority))
	return nil
}
