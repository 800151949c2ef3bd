package keeper

import (
	"context"
	"fmt"

	"github.com/marginchain/core/x/margin/types"
)

// accrueAndRequireCaughtUp advances pool's interest clock to now and
// refuses to proceed if the accrual window had to be capped (spec.md §4.2
// accrue_interest step 6: "Callers that require full accrual refuse to
// proceed if this returns false"). Every balance-affecting pool mutation
// calls this first (spec.md §5 ordering guarantee). Progress is persisted
// via setPool even when the caller ends up refusing to proceed: accrual
// itself is not part of the refused operation, and scenario C's "repeated
// accrual catches up" only holds if each call's partial catch-up sticks.
func (k Keeper) accrueAndRequireCaughtUp(ctx context.Context, pool *types.Pool, now int64) error {
	caughtUp, err := pool.AccrueInterest(now)
	if err != nil {
		return err
	}
	if err := k.setPool(ctx, *pool); err != nil {
		return err
	}

	label := "true"
	if !caughtUp {
		label = "false"
	}
	k.metrics.accrualsTotal.WithLabelValues(pool.UnderlyingID.String(), label).Inc()

	if !caughtUp {
		return types.ErrInterestAccrualBehind
	}
	return nil
}

// CreatePool creates a new lending pool for an underlying asset. Admin
// gating (is the caller the module authority) is the caller's
// responsibility, the same split the teacher's msg_server enforces before
// ever calling into the keeper.
func (k Keeper) CreatePool(ctx context.Context, underlyingID, depositNoteID, loanNoteID, vaultID, feeDestinationID, oracleID types.ID, config types.PoolConfig) error {
	if k.hasPool(ctx, underlyingID) {
		return fmt.Errorf("CreatePool: pool for %q already exists", underlyingID.String())
	}
	if err := config.Validate(); err != nil {
		return fmt.Errorf("CreatePool: %w", err)
	}

	pool := types.NewPool(underlyingID, depositNoteID, loanNoteID, vaultID, feeDestinationID, oracleID, config, blockTime(ctx))
	if err := k.setPool(ctx, pool); err != nil {
		return fmt.Errorf("CreatePool: %w", err)
	}

	k.logger.Info("pool created", "underlying_id", underlyingID.String())
	return nil
}

// Configure updates a pool's fee destination, oracle, and/or curve
// configuration. Each argument is a pointer so the caller can leave a
// field unchanged, matching original_source's Option<T> configure_handler
// parameters.
func (k Keeper) Configure(ctx context.Context, underlyingID types.ID, feeDestinationID, oracleID *types.ID, config *types.PoolConfig) error {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return wrap("Configure", err)
	}

	if feeDestinationID != nil {
		pool.FeeDestinationID = *feeDestinationID
	}
	if config != nil {
		if err := config.Validate(); err != nil {
			return fmt.Errorf("Configure: %w", err)
		}
		pool.Config = *config
	}
	if oracleID != nil {
		if oracleID.IsZero() {
			return fmt.Errorf("Configure: %w", types.ErrInvalidOracle)
		}
		pool.OracleID = *oracleID
	}

	return wrap("Configure", k.setPool(ctx, pool))
}

// Collect mints deposit notes for any uncollected fees past the pool's
// collection threshold, depositing them to the pool's fee destination
// (spec.md §4.2 collect_accrued_fees). Returns the number of notes minted.
func (k Keeper) Collect(ctx context.Context, underlyingID types.ID) (uint64, error) {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return 0, wrap("Collect", err)
	}
	if pool.Config.Flags.Has(types.PoolFlagDisabled) {
		return 0, types.ErrDisabled
	}

	now := blockTime(ctx)
	if err := k.accrueAndRequireCaughtUp(ctx, &pool, now); err != nil {
		return 0, wrap("Collect", err)
	}

	feeNotes := pool.CollectAccruedFees()
	if feeNotes > 0 {
		if err := k.ledger.Mint(ctx, pool.FeeDestinationID.String(), pool.VaultID.String(), feeNotes); err != nil {
			return 0, wrap("Collect", err)
		}
	}

	if err := k.setPool(ctx, pool); err != nil {
		return 0, wrap("Collect", err)
	}
	return feeNotes, nil
}

// Deposit converts tokens into deposit notes at the current deposit rate
// and credits the pool's ledger, requesting the corresponding token
// transfer and note mint through the TokenLedger (spec.md §4.2 deposit()).
func (k Keeper) Deposit(ctx context.Context, underlyingID types.ID, depositorAuthority string, sourceHoldingID, destNoteHoldingID types.ID, tokens uint64) (types.FullAmount, error) {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return types.FullAmount{}, wrap("Deposit", err)
	}
	if pool.Config.Flags.Has(types.PoolFlagDisabled) {
		return types.FullAmount{}, types.ErrDisabled
	}

	now := blockTime(ctx)
	if err := k.accrueAndRequireCaughtUp(ctx, &pool, now); err != nil {
		return types.FullAmount{}, wrap("Deposit", err)
	}

	rate := pool.RateFor(types.ActionDeposit)
	direction := types.RoundingDirectionFor(types.ActionDeposit, types.KindTokens)
	full, err := types.Convert(types.TokensAmount(tokens), rate, direction)
	if err != nil {
		return types.FullAmount{}, wrap("Deposit", err)
	}

	pool.ApplyDeposit(full)

	if err := k.ledger.Transfer(ctx, sourceHoldingID.String(), pool.VaultID.String(), depositorAuthority, full.Tokens); err != nil {
		return types.FullAmount{}, wrap("Deposit", err)
	}
	if err := k.ledger.Mint(ctx, destNoteHoldingID.String(), pool.VaultID.String(), full.Notes); err != nil {
		return types.FullAmount{}, wrap("Deposit", err)
	}

	if err := k.setPool(ctx, pool); err != nil {
		return types.FullAmount{}, wrap("Deposit", err)
	}

	k.metrics.poolUtilization.WithLabelValues(underlyingID.String()).Set(pool.UtilizationRate().Dec().MustFloat64())
	return full, nil
}

// Withdraw converts an Amount (tokens or notes) into a FullAmount at the
// current deposit rate, debits the pool's ledger, and requests the token
// transfer and note burn (spec.md §4.2 withdraw()).
func (k Keeper) Withdraw(ctx context.Context, underlyingID types.ID, ownerAuthority string, sourceNoteHoldingID, destTokenHoldingID types.ID, amount types.Amount) (types.FullAmount, error) {
	pool, err := k.getPool(ctx, underlyingID)
	if err != nil {
		return types.FullAmount{}, wrap("Withdraw", err)
	}
	if pool.Config.Flags.Has(types.PoolFlagDisabled) {
		return types.FullAmount{}, types.ErrDisabled
	}

	now := blockTime(ctx)
	if err := k.accrueAndRequireCaughtUp(ctx, &pool, now); err != nil {
		return types.FullAmount{}, wrap("Withdraw", err)
	}

	rate := pool.RateFor(types.ActionWithdraw)
	direction := types.RoundingDirectionFor(types.ActionWithdraw, amount.Kind)
	full, err := types.Convert(amount, rate, direction)
	if err != nil {
		return types.FullAmount{}, wrap("Withdraw", err)
	}

	if err := pool.ApplyWithdraw(full); err != nil {
		return types.FullAmount{}, wrap("Withdraw", err)
	}

	if err := k.ledger.Burn(ctx, sourceNoteHoldingID.String(), ownerAuthority, full.Notes); err != nil {
		return types.FullAmount{}, wrap("Withdraw", err)
	}
	if err := k.ledger.Transfer(ctx, pool.VaultID.String(), destTokenHoldingID.String(), ownerAuthority, full.Tokens); err != nil {
		return types.FullAmount{}, wrap("Withdraw", err)
	}

	if err := k.setPool(ctx, pool); err != nil {
		return types.FullAmount{}, wrap("Withdraw", err)
	}
	return full, nil
}
