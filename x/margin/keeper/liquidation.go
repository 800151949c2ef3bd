package keeper

import (
	"context"

	"github.com/marginchain/core/x/margin/types"
)

// LiquidateBegin opens a liquidation on an unhealthy account: it checks the
// caller against the liquidator allowlist, confirms the account is actually
// unhealthy, and records the opening value/c-ratio budget (spec.md §4.6
// Begin).
func (k Keeper) LiquidateBegin(ctx context.Context, ownerID types.ID, seed uint16, liquidationID, liquidatorID types.ID) error {
	if !k.registry.IsAllowedLiquidator(ctx, liquidatorID.String()) {
		return types.ErrUnauthorizedLiquidator
	}

	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("LiquidateBegin", err)
	}

	now := blockTime(ctx)
	pre, err := types.ComputeValuation(&account.Positions, now)
	if err != nil {
		return wrap("LiquidateBegin", err)
	}
	unhealthy, err := pre.IsUnhealthy()
	if err != nil {
		return wrap("LiquidateBegin", err)
	}
	if !unhealthy {
		return types.ErrHealthy
	}

	if err := account.StartLiquidation(liquidationID, liquidatorID); err != nil {
		return wrap("LiquidateBegin", err)
	}

	liquidation := types.NewLiquidation(now, pre)
	if err := k.setLiquidation(ctx, liquidationID, liquidation); err != nil {
		return wrap("LiquidateBegin", err)
	}
	if err := k.setAccount(ctx, account); err != nil {
		return wrap("LiquidateBegin", err)
	}

	k.metrics.liquidationsBegun.WithLabelValues(ownerID.String()).Inc()
	return nil
}

// LiquidatorInvoke runs one liquidation step: snapshot, adapter dispatch,
// snapshot, then accumulate and bound the value/c-ratio deltas (spec.md
// §4.6 Step). The caller must be the account's recorded liquidator.
func (k Keeper) LiquidatorInvoke(ctx context.Context, ownerID types.ID, seed uint16, liquidatorID types.ID, adapter types.AdapterProgram, adapterID types.ID, accounts []string, data []byte) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("LiquidatorInvoke", err)
	}
	if !account.IsLiquidating() {
		return types.ErrNotLiquidating
	}
	if account.LiquidatorID != liquidatorID {
		return types.ErrUnauthorizedLiquidator
	}

	liquidation, err := k.getLiquidation(ctx, account.LiquidationID)
	if err != nil {
		return wrap("LiquidatorInvoke", err)
	}

	now := blockTime(ctx)
	pre, err := types.ComputeValuation(&account.Positions, now)
	if err != nil {
		return wrap("LiquidatorInvoke", err)
	}

	if err := k.invokeAdapter(ctx, &account, adapter, adapterID, accounts, data); err != nil {
		return wrap("LiquidatorInvoke", err)
	}

	post, err := types.ComputeValuation(&account.Positions, now)
	if err != nil {
		return wrap("LiquidatorInvoke", err)
	}

	if err := liquidation.Step(pre, post); err != nil {
		k.metrics.liquidationSteps.WithLabelValues(ownerID.String(), "rejected").Inc()
		return wrap("LiquidatorInvoke", err)
	}

	if err := k.setLiquidation(ctx, account.LiquidationID, liquidation); err != nil {
		return wrap("LiquidatorInvoke", err)
	}
	if err := k.setAccount(ctx, account); err != nil {
		return wrap("LiquidatorInvoke", err)
	}

	k.metrics.liquidationSteps.WithLabelValues(ownerID.String(), "applied").Inc()
	return nil
}

// LiquidateEnd closes a liquidation: the recorded liquidator may always end
// it; anyone else only after LIQUIDATION_TIMEOUT has elapsed (spec.md §4.6
// End).
func (k Keeper) LiquidateEnd(ctx context.Context, ownerID types.ID, seed uint16, callerID types.ID) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("LiquidateEnd", err)
	}
	if !account.IsLiquidating() {
		return types.ErrNotLiquidating
	}

	liquidation, err := k.getLiquidation(ctx, account.LiquidationID)
	if err != nil {
		return wrap("LiquidateEnd", err)
	}

	callerIsLiquidator := callerID == account.LiquidatorID
	if !liquidation.CanEnd(callerIsLiquidator, blockTime(ctx)) {
		return types.ErrUnauthorizedLiquidator
	}

	k.deleteLiquidation(ctx, account.LiquidationID)
	account.EndLiquidation()
	if err := k.setAccount(ctx, account); err != nil {
		return wrap("LiquidateEnd", err)
	}

	k.metrics.liquidationsEnded.WithLabelValues(ownerID.String()).Inc()
	return nil
}
