package keeper

import (
	"context"

	"github.com/marginchain/core/x/margin/types"
)

// reconcileBalances is the common protocol's first post-action (spec.md
// §4.5): for every holding in the caller-specified account list that
// matches a registered position, read its on-chain balance and update the
// position. Unregistered holdings are silently ignored.
func (k Keeper) reconcileBalances(ctx context.Context, account *types.MarginAccount, holdingIDs []string, now int64) error {
	for _, holdingID := range holdingIDs {
		for _, pos := range account.Positions.Active() {
			if pos.HoldingID.String() != holdingID {
				continue
			}
			balance, err := k.ledger.BalanceOf(ctx, holdingID)
			if err != nil {
				return err
			}
			pos.Balance = balance
			pos.BalanceTS = now
		}
	}
	return nil
}

// applyAdapterResult is the common protocol's second post-action (spec.md
// §4.5): validates the result came from the invoked adapter, then applies
// each requested PositionChange by pattern-matching its ChangeKind.
func applyAdapterResult(account *types.MarginAccount, adapterID types.ID, result *types.AdapterResult, now int64) error {
	if result == nil {
		return types.ErrNoAdapterResult
	}
	if result.ProgramID != adapterID {
		return types.ErrWrongProgramAdapterResult
	}

	for _, group := range result.PositionChanges {
		pos, ok := account.Positions.Get(group.AssetID)
		if !ok {
			return types.ErrPositionNotRegistered
		}

		for _, change := range group.Changes {
			switch change.Kind {
			case types.ChangePrice:
				if pos.AdapterID != adapterID {
					return types.ErrInvalidPositionAdapter
				}
				raw := types.RawPrice{
					Value:       change.Price.Value,
					Confidence:  change.Price.Confidence,
					Twap:        change.Price.Twap,
					PublishTime: change.Price.PublishTime,
					Exponent:    change.Price.Exponent,
				}
				pos.Price = types.IngestPrice(raw, now)

			case types.ChangeFlags:
				if change.FlagsSet {
					pos.Flags = pos.Flags.Set(change.FlagsMask)
				} else {
					pos.Flags = pos.Flags.Clear(change.FlagsMask)
				}

			case types.ChangeExpect:
				if pos.HoldingID != change.ExpectHoldingID {
					return types.ErrPositionNotRegistered
				}
			}
		}
	}
	return nil
}

// invokeAdapter runs the full common protocol: dispatch, balance
// reconciliation, then result application, in that order (spec.md §4.5,
// §5 ordering guarantee "balance reconciliation precedes result
// application").
func (k Keeper) invokeAdapter(ctx context.Context, account *types.MarginAccount, adapter types.AdapterProgram, adapterID types.ID, accounts []string, data []byte) error {
	if !k.registry.IsAllowedAdapter(ctx, adapterID.String()) {
		return types.ErrUnauthorizedInvocation
	}

	result, err := adapter.Invoke(ctx, account.OwnerID.String(), accounts, data)
	if err != nil {
		return err
	}

	now := blockTime(ctx)
	if err := k.reconcileBalances(ctx, account, accounts, now); err != nil {
		return err
	}
	return applyAdapterResult(account, adapterID, result, now)
}

// AdapterInvoke is the owner-signed invocation mode: the caller must hold
// authority over the account, the account must not be under liquidation,
// and it must still be Healthy once the adapter returns (spec.md §4.5
// mode 1).
func (k Keeper) AdapterInvoke(ctx context.Context, ownerID types.ID, seed uint16, callerID types.ID, adapter types.AdapterProgram, adapterID types.ID, accounts []string, data []byte) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("AdapterInvoke", err)
	}
	if !account.HasAuthority(callerID) {
		return types.ErrUnauthorizedInvocation
	}
	if account.IsLiquidating() {
		return types.ErrLiquidating
	}

	if err := k.invokeAdapter(ctx, &account, adapter, adapterID, accounts, data); err != nil {
		return wrap("AdapterInvoke", err)
	}

	valuation, err := types.ComputeValuation(&account.Positions, blockTime(ctx))
	if err != nil {
		return wrap("AdapterInvoke", err)
	}
	if !valuation.IsHealthy() {
		return types.ErrUnhealthy
	}

	return wrap("AdapterInvoke", k.setAccount(ctx, account))
}

// AccountingInvoke is the unpermissioned invocation mode: the adapter may
// only refresh balances/prices/flags and make Expect attestations, never
// register new debt (a structural guarantee of the three ChangeKinds
// themselves, since each only mutates an already-registered position), and
// no post-invocation health check is required (spec.md §4.5 mode 2).
func (k Keeper) AccountingInvoke(ctx context.Context, ownerID types.ID, seed uint16, adapter types.AdapterProgram, adapterID types.ID, accounts []string, data []byte) error {
	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("AccountingInvoke", err)
	}

	if err := k.invokeAdapter(ctx, &account, adapter, adapterID, accounts, data); err != nil {
		return wrap("AccountingInvoke", err)
	}

	return wrap("AccountingInvoke", k.setAccount(ctx, account))
}
