package keeper

import (
	"context"

	"github.com/marginchain/core/x/margin/types"
)

func min3(a, b, c uint64) uint64 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}

// MarginBorrow records a borrow as an atomic (borrow-tokens, deposit-tokens)
// pair: the borrowed tokens remain in the pool as the borrower's own
// collateral until a subsequent margin_withdraw (spec.md §4.2 "MarginBorrow
// specialty"; the Open Question over this convention is resolved in
// DESIGN.md — preserved as original_source intends). Both rounding
// directions are applied independently against the same token quantity.
func (k Keeper) MarginBorrow(ctx context.Context, underlyingID, ownerID types.ID, seed uint16, tokens uint64) (loan, deposit types.FullAmount, err error) {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}
	if pool.Config.Flags.Has(types.PoolFlagDisabled) {
		return types.FullAmount{}, types.FullAmount{}, types.ErrDisabled
	}

	now := blockTime(ctx)
	if err := k.accrueAndRequireCaughtUp(ctx, &pool, now); err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}

	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}

	claimPos, ok := account.Positions.Get(pool.LoanNoteID)
	if !ok {
		return types.FullAmount{}, types.FullAmount{}, types.ErrPositionNotRegistered
	}
	depositPos, ok := account.Positions.Get(pool.DepositNoteID)
	if !ok {
		return types.FullAmount{}, types.FullAmount{}, types.ErrPositionNotRegistered
	}

	loanRate := pool.RateFor(types.ActionBorrow)
	loan, err = types.Convert(types.TokensAmount(tokens), loanRate, types.RoundingDirectionFor(types.ActionBorrow, types.KindTokens))
	if err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}
	if err := pool.ApplyBorrow(loan); err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}

	depositRate := pool.RateFor(types.ActionDeposit)
	deposit, err = types.Convert(types.TokensAmount(tokens), depositRate, types.RoundingDirectionFor(types.ActionDeposit, types.KindTokens))
	if err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}
	pool.ApplyDeposit(deposit)

	claimPos.Balance += loan.Notes
	claimPos.BalanceTS = now
	depositPos.Balance += deposit.Notes
	depositPos.BalanceTS = now

	if err := k.setPool(ctx, pool); err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}
	if err := k.setAccount(ctx, account); err != nil {
		return types.FullAmount{}, types.FullAmount{}, wrap("MarginBorrow", err)
	}
	return loan, deposit, nil
}

// MarginRepay computes three candidate token quantities — the
// user-requested repay, the maximum withdrawable from the borrower's
// deposit notes (floor), and the maximum owed (floor) — and repays their
// minimum, burning deposit notes and loan notes from the account's two pool
// positions in one atomic pair, the mirror image of MarginBorrow (spec.md
// §4.2 "MarginRepay specialty").
func (k Keeper) MarginRepay(ctx context.Context, underlyingID, ownerID types.ID, seed uint16, max types.Amount) (uint64, error) {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return 0, wrap("MarginRepay", err)
	}
	if pool.Config.Flags.Has(types.PoolFlagDisabled) {
		return 0, types.ErrDisabled
	}

	now := blockTime(ctx)
	if err := k.accrueAndRequireCaughtUp(ctx, &pool, now); err != nil {
		return 0, wrap("MarginRepay", err)
	}

	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return 0, wrap("MarginRepay", err)
	}

	depositPos, ok := account.Positions.Get(pool.DepositNoteID)
	if !ok {
		return 0, types.ErrPositionNotRegistered
	}
	claimPos, ok := account.Positions.Get(pool.LoanNoteID)
	if !ok {
		return 0, types.ErrPositionNotRegistered
	}

	depositRate := pool.RateFor(types.ActionWithdraw)
	loanRate := pool.RateFor(types.ActionRepay)

	requested, err := types.Convert(max, loanRate, types.RoundingDirectionFor(types.ActionRepay, max.Kind))
	if err != nil {
		return 0, wrap("MarginRepay", err)
	}
	maxWithdrawable := types.NewFixedFromUint64(depositPos.Balance).Mul(depositRate).Uint64(types.RoundDown)
	maxOwed := types.NewFixedFromUint64(claimPos.Balance).Mul(loanRate).Uint64(types.RoundDown)

	repayTokens := min3(requested.Tokens, maxWithdrawable, maxOwed)

	withdrawFull, err := types.Convert(types.TokensAmount(repayTokens), depositRate, types.RoundingDirectionFor(types.ActionWithdraw, types.KindTokens))
	if err != nil {
		return 0, wrap("MarginRepay", err)
	}
	repayFull, err := types.Convert(types.TokensAmount(repayTokens), loanRate, types.RoundingDirectionFor(types.ActionRepay, types.KindTokens))
	if err != nil {
		return 0, wrap("MarginRepay", err)
	}

	if err := pool.ApplyWithdraw(withdrawFull); err != nil {
		return 0, wrap("MarginRepay", err)
	}
	if err := pool.ApplyRepay(repayFull); err != nil {
		return 0, wrap("MarginRepay", err)
	}

	if withdrawFull.Notes > depositPos.Balance || repayFull.Notes > claimPos.Balance {
		return 0, types.ErrInsufficientLiquidity
	}
	depositPos.Balance -= withdrawFull.Notes
	depositPos.BalanceTS = now
	claimPos.Balance -= repayFull.Notes
	claimPos.BalanceTS = now

	if err := k.setPool(ctx, pool); err != nil {
		return 0, wrap("MarginRepay", err)
	}
	if err := k.setAccount(ctx, account); err != nil {
		return 0, wrap("MarginRepay", err)
	}
	return repayTokens, nil
}

// MarginWithdraw is the account-position-aware variant of Withdraw: it
// burns deposit notes held in the account's own deposit-note position
// (rather than an external note holding) and transfers tokens out of the
// pool vault to destHoldingID.
func (k Keeper) MarginWithdraw(ctx context.Context, underlyingID, ownerID types.ID, seed uint16, ownerAuthority string, destHoldingID types.ID, amount types.Amount) (types.FullAmount, error) {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}
	if pool.Config.Flags.Has(types.PoolFlagDisabled) {
		return types.FullAmount{}, types.ErrDisabled
	}

	now := blockTime(ctx)
	if err := k.accrueAndRequireCaughtUp(ctx, &pool, now); err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}

	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}
	depositPos, ok := account.Positions.Get(pool.DepositNoteID)
	if !ok {
		return types.FullAmount{}, types.ErrPositionNotRegistered
	}

	rate := pool.RateFor(types.ActionWithdraw)
	full, err := types.Convert(amount, rate, types.RoundingDirectionFor(types.ActionWithdraw, amount.Kind))
	if err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}
	if full.Notes > depositPos.Balance {
		return types.FullAmount{}, types.ErrInsufficientLiquidity
	}
	if err := pool.ApplyWithdraw(full); err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}

	depositPos.Balance -= full.Notes
	depositPos.BalanceTS = now

	if err := k.ledger.Transfer(ctx, pool.VaultID.String(), destHoldingID.String(), ownerAuthority, full.Tokens); err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}

	if err := k.setPool(ctx, pool); err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}
	if err := k.setAccount(ctx, account); err != nil {
		return types.FullAmount{}, wrap("MarginWithdraw", err)
	}
	return full, nil
}

// refreshPositionExponent is the fractional exponent a pool-derived price is
// expressed at: -9 gives nine decimal digits of rate precision, comfortably
// more than the basis-point granularity the curve itself is configured in.
const refreshPositionExponent = -9

// MarginRefreshPosition recomputes the account's pool-backed note positions'
// prices from the pool's own exchange rate, without an external oracle
// round-trip (SPEC_FULL.md §9 supplemented feature, grounded on
// original_source/.../margin-pool/src/instructions/margin_refresh_position.rs).
// It refreshes whichever of the deposit-note and loan-note positions are
// currently registered on the account.
func (k Keeper) MarginRefreshPosition(ctx context.Context, underlyingID, ownerID types.ID, seed uint16) error {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return wrap("MarginRefreshPosition", err)
	}

	now := blockTime(ctx)
	if _, err := pool.AccrueInterest(now); err != nil {
		return wrap("MarginRefreshPosition", err)
	}

	account, err := k.getAccount(ctx, ownerID, seed)
	if err != nil {
		return wrap("MarginRefreshPosition", err)
	}

	refreshed := false
	if depositPos, ok := account.Positions.Get(pool.DepositNoteID); ok {
		refreshPoolPosition(depositPos, pool.DepositRate(), now)
		refreshed = true
	}
	if claimPos, ok := account.Positions.Get(pool.LoanNoteID); ok {
		refreshPoolPosition(claimPos, pool.LoanRate(), now)
		refreshed = true
	}
	if !refreshed {
		return types.ErrPositionNotRegistered
	}

	if err := k.setPool(ctx, pool); err != nil {
		return wrap("MarginRefreshPosition", err)
	}
	return wrap("MarginRefreshPosition", k.setAccount(ctx, account))
}

func refreshPoolPosition(pos *types.Position, rate types.FixedNumber, now int64) {
	value := int64(rate.Uint64At(refreshPositionExponent, types.RoundDown))
	raw := types.RawPrice{
		Value:       value,
		Confidence:  0,
		Twap:        value,
		PublishTime: now,
		Exponent:    refreshPositionExponent,
	}
	pos.Price = types.IngestPrice(raw, now)
	pos.BalanceTS = now
}
