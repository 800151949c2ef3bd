package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	testkeeper "github.com/marginchain/core/testutil/keeper"
	"github.com/marginchain/core/x/margin/types"
)

func TestCreateCloseAccount(t *testing.T) {
	k, ctx, _, _, _ := testkeeper.MarginKeeper(t)
	owner := types.IDFromString("alice")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	require.Error(t, k.CreateAccount(ctx, owner, 0, 255))

	require.NoError(t, k.CloseAccount(ctx, owner, 0))
	require.Error(t, k.CloseAccount(ctx, owner, 0))
}

func TestRegisterClosePosition(t *testing.T) {
	k, ctx, ledger, _, registry := testkeeper.MarginKeeper(t)
	owner := types.IDFromString("alice")
	asset := types.IDFromString("usdc-deposit")
	holding := types.IDFromString("alice-usdc-deposit")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))

	registry.Assets[asset.String()] = types.AssetMetadata{
		AdapterID:              types.IDFromString("usdc-pool").String(),
		TokenKind:              types.PositionDeposit,
		CollateralWeightBps:    10_000,
		CollateralMaxStaleness: 60,
	}

	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, asset, holding, false))
	require.ErrorIs(t, k.RegisterPosition(ctx, owner, 0, owner, asset, holding, false), types.ErrPositionAlreadyRegistered)

	stranger := types.IDFromString("mallory")
	require.ErrorIs(t, k.UpdatePositionBalance(ctx, owner, 0, stranger, asset), types.ErrUnauthorizedInvocation)

	// A nonzero balance blocks closing until it is reconciled back to zero.
	ledger.Balances[holding.String()] = 50
	require.NoError(t, k.UpdatePositionBalance(ctx, owner, 0, owner, asset))
	require.ErrorIs(t, k.ClosePosition(ctx, owner, 0, owner, asset, holding), types.ErrCloseNonZeroPosition)

	ledger.Balances[holding.String()] = 0
	require.NoError(t, k.UpdatePositionBalance(ctx, owner, 0, owner, asset))
	require.NoError(t, k.ClosePosition(ctx, owner, 0, owner, asset, holding))
	require.ErrorIs(t, k.ClosePosition(ctx, owner, 0, owner, asset, holding), types.ErrPositionNotRegistered)
}

func TestRegisterPosition_RequiredBlocksClose(t *testing.T) {
	k, ctx, _, _, registry := testkeeper.MarginKeeper(t)
	owner := types.IDFromString("alice")
	asset := types.IDFromString("usdc-deposit")
	holding := types.IDFromString("alice-usdc-deposit")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[asset.String()] = types.AssetMetadata{TokenKind: types.PositionDeposit, CollateralWeightBps: 10_000}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, asset, holding, true))

	require.ErrorIs(t, k.ClosePosition(ctx, owner, 0, owner, asset, holding), types.ErrCloseRequiredPosition)
}

func TestRefreshPositionPrice_FromOracle(t *testing.T) {
	k, ctx, ledger, oracle, registry := testkeeper.MarginKeeper(t)
	owner := types.IDFromString("alice")
	claim := types.IDFromString("atom-loan")
	holding := types.IDFromString("alice-atom-loan")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[claim.String()] = types.AssetMetadata{TokenKind: types.PositionClaim}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, claim, holding, false))

	ledger.Balances[holding.String()] = 100
	require.NoError(t, k.UpdatePositionBalance(ctx, owner, 0, owner, claim))

	// A claim with no ingested price can never be valued.
	_, err := k.VerifyUnhealthy(ctx, owner, 0)
	require.ErrorIs(t, err, types.ErrInvalidPrice)

	oracle.Prices[claim.String()] = types.RawPrice{
		Value: 1, Confidence: 0, Twap: 1, PublishTime: ctx.BlockTime().Unix(), Exponent: 0,
	}
	require.NoError(t, k.RefreshPositionPrice(ctx, owner, 0, claim))

	unhealthy, err := k.VerifyUnhealthy(ctx, owner, 0)
	require.NoError(t, err)
	require.True(t, unhealthy.Claims.GT(types.ZeroFixed()))

	require.ErrorIs(t, k.RefreshPositionPrice(ctx, owner, 0, types.IDFromString("unregistered")), types.ErrPositionNotRegistered)
}

func TestVerifyHealthyUnhealthy(t *testing.T) {
	k, ctx, ledger, _, registry := testkeeper.MarginKeeper(t)
	owner := types.IDFromString("alice")
	deposit := types.IDFromString("usdc-deposit")
	depositHolding := types.IDFromString("alice-usdc-deposit")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[deposit.String()] = types.AssetMetadata{TokenKind: types.PositionDeposit, CollateralWeightBps: 10_000}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, deposit, depositHolding, false))

	// No claims, no collateral required: healthy by default.
	require.NoError(t, k.VerifyHealthy(ctx, owner, 0))

	_, err := k.VerifyUnhealthy(ctx, owner, 0)
	require.ErrorIs(t, err, types.ErrHealthy)

	ledger.Balances[depositHolding.String()] = 100
	require.NoError(t, k.UpdatePositionBalance(ctx, owner, 0, owner, deposit))
	require.NoError(t, k.VerifyHealthy(ctx, owner, 0))
}
