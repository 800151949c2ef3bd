package keeper

import (
	"context"
	"fmt"

	"github.com/marginchain/core/x/margin/types"
)

// CreateAccount opens a fresh margin account for ownerID under seed,
// rejecting a duplicate (spec.md §6 create_account(seed: u16)).
func (k Keeper) CreateAccount(ctx context.Context, ownerID types.ID, seed uint16, bump uint8) error {
	store := k.getStore(ctx)
	key := types.AccountKey(ownerID.String(), seed)
	if store.Has(key) {
		return fmt.Errorf("CreateAccount: account owner=%q seed=%d already exists", ownerID.String(), seed)
	}

	account := types.NewMarginAccount(ownerID, seed, bump)
	return wrap("CreateAccount", k.setAccount(ctx, account))
}

// CloseAccount removes an account record, requiring it to hold no
// registered positions (spec.md §3 lifecycle).
func (k Keeper) CloseAccount(ctx context.Context, ownerID types.ID, seed uint16) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("CloseAccount", err)
	}
	if !account.IsEmpty() {
		return types.ErrAccountNotEmpty
	}
	k.deleteAccount(ctx, account)
	return nil
}

// RegisterPosition reserves a position slot for assetID, populating it from
// the metadata registry's per-asset collateral configuration (spec.md §6
// register_position(asset)). callerID must hold authority over the account
// (spec.md §4.4): the owner, or the recorded liquidator while a liquidation
// is active.
func (k Keeper) RegisterPosition(ctx context.Context, ownerID types.ID, seed uint16, callerID, assetID, holdingID types.ID, required bool) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("RegisterPosition", err)
	}
	if !account.HasAuthority(callerID) {
		return types.ErrUnauthorizedInvocation
	}

	meta, err := k.registry.AssetMetadata(ctx, assetID.String())
	if err != nil {
		return wrap("RegisterPosition", err)
	}

	pos, err := account.Positions.Add(assetID)
	if err != nil {
		return wrap("RegisterPosition", err)
	}

	pos.HoldingID = holdingID
	pos.AdapterID = types.IDFromString(meta.AdapterID)
	pos.Kind = meta.TokenKind
	pos.CollateralWeightBps = meta.CollateralWeightBps
	pos.CollateralMaxStaleness = meta.CollateralMaxStaleness
	if required {
		pos.Flags = pos.Flags.Set(types.PositionFlagRequired)
	}

	return wrap("RegisterPosition", k.setAccount(ctx, account))
}

// UpdatePositionBalance refreshes a position's balance and timestamp from
// its token holding, the read half of the balance-reconciliation step
// AdapterInvoker performs before applying adapter results (spec.md §4.5,
// §6 update_position_balance(holding)). callerID must hold authority over
// the account (spec.md §4.4).
func (k Keeper) UpdatePositionBalance(ctx context.Context, ownerID types.ID, seed uint16, callerID, assetID types.ID) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("UpdatePositionBalance", err)
	}
	if !account.HasAuthority(callerID) {
		return types.ErrUnauthorizedInvocation
	}

	pos, ok := account.Positions.Get(assetID)
	if !ok {
		return types.ErrPositionNotRegistered
	}

	balance, err := k.ledger.BalanceOf(ctx, pos.HoldingID.String())
	if err != nil {
		return wrap("UpdatePositionBalance", err)
	}

	pos.Balance = balance
	pos.BalanceTS = blockTime(ctx)

	return wrap("UpdatePositionBalance", k.setAccount(ctx, account))
}

// RefreshPositionPrice updates a non-pool collateral position's price from
// the injected PriceOracle, the general-collateral counterpart to
// MarginRefreshPosition's pool-rate-derived refresh (spec.md §4.4 "Price
// ingestion"): query the oracle for assetID's underlying quote and run it
// through IngestPrice's confidence/staleness gate.
func (k Keeper) RefreshPositionPrice(ctx context.Context, ownerID types.ID, seed uint16, assetID types.ID) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("RefreshPositionPrice", err)
	}

	pos, ok := account.Positions.Get(assetID)
	if !ok {
		return types.ErrPositionNotRegistered
	}

	raw, err := k.oracle.GetPrice(ctx, assetID.String())
	if err != nil {
		return wrap("RefreshPositionPrice", err)
	}

	now := blockTime(ctx)
	pos.Price = types.IngestPrice(raw, now)

	return wrap("RefreshPositionPrice", k.setAccount(ctx, account))
}

// ClosePosition releases a registered position's slot, requiring a zero
// balance and that it is not flagged required (spec.md §3, §6
// close_position(asset, holding)). callerID must hold authority over the
// account (spec.md §4.4).
func (k Keeper) ClosePosition(ctx context.Context, ownerID types.ID, seed uint16, callerID, assetID, holdingID types.ID) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("ClosePosition", err)
	}
	if !account.HasAuthority(callerID) {
		return types.ErrUnauthorizedInvocation
	}

	pos, ok := account.Positions.Get(assetID)
	if !ok {
		return types.ErrPositionNotRegistered
	}
	if pos.Balance != 0 {
		return types.ErrCloseNonZeroPosition
	}
	if pos.Flags.Has(types.PositionFlagRequired) {
		return types.ErrCloseRequiredPosition
	}

	if _, err := account.Positions.Remove(assetID, holdingID); err != nil {
		return wrap("ClosePosition", err)
	}

	return wrap("ClosePosition", k.setAccount(ctx, account))
}

// VerifyHealthy folds the account's positions into a Valuation and returns
// nil only if the account is currently Healthy (spec.md §4.4, §6
// verify_healthy()).
func (k Keeper) VerifyHealthy(ctx context.Context, ownerID types.ID, seed uint16) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("VerifyHealthy", err)
	}

	valuation, err := types.ComputeValuation(&account.Positions, blockTime(ctx))
	if err != nil {
		return wrap("VerifyHealthy", err)
	}
	if !valuation.IsHealthy() {
		return types.ErrUnhealthy
	}
	return nil
}

// VerifyUnhealthy is the liquidation-entry precondition: it fails with
// StalePositions if the account's health cannot currently be determined,
// and with Healthy if the account turns out not to need repair (spec.md
// §4.4 Unhealthy predicate).
func (k Keeper) VerifyUnhealthy(ctx context.Context, ownerID types.ID, seed uint16) (types.Valuation, error) {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return types.Valuation{}, wrap("VerifyUnhealthy", err)
	}

	valuation, err := types.ComputeValuation(&account.Positions, blockTime(ctx))
	if err != nil {
		return types.Valuation{}, wrap("VerifyUnhealthy", err)
	}

	unhealthy, err := valuation.IsUnhealthy()
	if err != nil {
		return types.Valuation{}, wrap("VerifyUnhealthy", err)
	}
	if !unhealthy {
		return types.Valuation{}, types.ErrHealthy
	}
	return valuation, nil
}
