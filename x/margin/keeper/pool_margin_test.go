package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	testkeeper "github.com/marginchain/core/testutil/keeper"
	"github.com/marginchain/core/x/margin/types"
)

func TestMarginBorrowRepayWithdraw_Lifecycle(t *testing.T) {
	k, ctx, ledger, _, registry := testkeeper.MarginKeeper(t)
	underlying := types.IDFromString("usdc")
	depositNote := types.IDFromString("usdc-deposit")
	loanNote := types.IDFromString("usdc-loan")
	vault := types.IDFromString("usdc-vault")

	config := testPoolConfig()
	require.NoError(t, k.CreatePool(ctx, underlying, depositNote, loanNote, vault,
		types.IDFromString("usdc-fees"), types.IDFromString("usdc-oracle"), config))

	// An external depositor funds the pool at rate 1.
	extSource := types.IDFromString("lp-tokens")
	extDest := types.IDFromString("lp-notes")
	ledger.Balances[extSource.String()] = 10_000
	_, err := k.Deposit(ctx, underlying, "lp", extSource, extDest, 10_000)
	require.NoError(t, err)

	owner := types.IDFromString("alice")
	const seed = 0
	require.NoError(t, k.CreateAccount(ctx, owner, seed, 255))

	registry.Assets[depositNote.String()] = types.AssetMetadata{TokenKind: types.PositionDeposit, CollateralWeightBps: 10_000}
	registry.Assets[loanNote.String()] = types.AssetMetadata{TokenKind: types.PositionClaim}
	require.NoError(t, k.RegisterPosition(ctx, owner, seed, owner, depositNote, types.IDFromString("alice-deposit-notes"), false))
	require.NoError(t, k.RegisterPosition(ctx, owner, seed, owner, loanNote, types.IDFromString("alice-loan-notes"), false))

	loan, deposit, err := k.MarginBorrow(ctx, underlying, owner, seed, 1_000)
	require.NoError(t, err)
	require.Equal(t, uint64(1_000), loan.Tokens)
	require.Equal(t, uint64(1_000), deposit.Tokens)

	repaid, err := k.MarginRepay(ctx, underlying, owner, seed, types.TokensAmount(500))
	require.NoError(t, err)
	require.Equal(t, uint64(500), repaid)

	destHolding := types.IDFromString("alice-usdc-tokens")
	full, err := k.MarginWithdraw(ctx, underlying, owner, seed, "alice", destHolding, types.NotesAmount(500))
	require.NoError(t, err)
	require.Equal(t, uint64(500), full.Tokens)
	require.Equal(t, uint64(500), ledger.Balances[destHolding.String()])
}

func TestMarginBorrow_RejectsWithoutAllowLending(t *testing.T) {
	k, ctx, ledger, _, registry := testkeeper.MarginKeeper(t)
	underlying := types.IDFromString("usdc")
	depositNote := types.IDFromString("usdc-deposit")
	loanNote := types.IDFromString("usdc-loan")
	vault := types.IDFromString("usdc-vault")

	config := testPoolConfig()
	config.Flags = 0 // lending disallowed, deposits still allowed
	require.NoError(t, k.CreatePool(ctx, underlying, depositNote, loanNote, vault,
		types.IDFromString("usdc-fees"), types.IDFromString("usdc-oracle"), config))

	extSource := types.IDFromString("lp-tokens")
	ledger.Balances[extSource.String()] = 10_000
	_, err := k.Deposit(ctx, underlying, "lp", extSource, types.IDFromString("lp-notes"), 10_000)
	require.NoError(t, err)

	owner := types.IDFromString("alice")
	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[depositNote.String()] = types.AssetMetadata{TokenKind: types.PositionDeposit, CollateralWeightBps: 10_000}
	registry.Assets[loanNote.String()] = types.AssetMetadata{TokenKind: types.PositionClaim}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, depositNote, types.IDFromString("alice-deposit-notes"), false))
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, loanNote, types.IDFromString("alice-loan-notes"), false))

	_, _, err = k.MarginBorrow(ctx, underlying, owner, 0, 1_000)
	require.ErrorIs(t, err, types.ErrDepositsOnly)
}

func TestMarginRefreshPosition_UpdatesPriceFromPoolRate(t *testing.T) {
	k, ctx, ledger, _, registry := testkeeper.MarginKeeper(t)
	underlying := types.IDFromString("usdc")
	depositNote := types.IDFromString("usdc-deposit")
	loanNote := types.IDFromString("usdc-loan")
	vault := types.IDFromString("usdc-vault")

	require.NoError(t, k.CreatePool(ctx, underlying, depositNote, loanNote, vault,
		types.IDFromString("usdc-fees"), types.IDFromString("usdc-oracle"), testPoolConfig()))

	extSource := types.IDFromString("lp-tokens")
	ledger.Balances[extSource.String()] = 10_000
	_, err := k.Deposit(ctx, underlying, "lp", extSource, types.IDFromString("lp-notes"), 10_000)
	require.NoError(t, err)

	owner := types.IDFromString("alice")
	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[depositNote.String()] = types.AssetMetadata{TokenKind: types.PositionDeposit, CollateralWeightBps: 10_000}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, depositNote, types.IDFromString("alice-deposit-notes"), false))

	require.NoError(t, k.MarginRefreshPosition(ctx, underlying, owner, 0))
}
