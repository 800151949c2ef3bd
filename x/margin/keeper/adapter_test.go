package keeper_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	testkeeper "github.com/marginchain/core/testutil/keeper"
	"github.com/marginchain/core/x/margin/types"
)

func setupAdapterAccount(t *testing.T) (owner types.ID, asset types.ID, holding types.ID) {
	t.Helper()
	owner = types.IDFromString("alice")
	asset = types.IDFromString("usdc-deposit")
	holding = types.IDFromString("alice-usdc-deposit")
	return
}

func TestAdapterInvoke_AppliesPriceAndRequiresHealthy(t *testing.T) {
	k, ctx, _, _, registry := testkeeper.MarginKeeper(t)
	owner, asset, holding := setupAdapterAccount(t)
	adapterID := types.IDFromString("usdc-pool")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[asset.String()] = types.AssetMetadata{
		AdapterID:           adapterID.String(),
		TokenKind:           types.PositionDeposit,
		CollateralWeightBps: 10_000,
	}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, asset, holding, false))
	registry.Adapters[adapterID.String()] = true

	adapter := &testkeeper.MockAdapter{
		ID: adapterID,
		Result: &types.AdapterResult{
			ProgramID: adapterID,
			PositionChanges: []types.AssetPositionChanges{
				{
					AssetID: asset,
					Changes: []types.PositionChange{
						types.PriceChange(types.PriceChangeInfo{Value: 1, Exponent: 0, PublishTime: ctx.BlockTime().Unix()}),
					},
				},
			},
		},
	}

	err := k.AdapterInvoke(ctx, owner, 0, owner, adapter, adapterID, []string{holding.String()}, nil)
	require.NoError(t, err)
}

func TestAdapterInvoke_RejectsUnauthorizedCaller(t *testing.T) {
	k, ctx, _, _, registry := testkeeper.MarginKeeper(t)
	owner, asset, holding := setupAdapterAccount(t)
	adapterID := types.IDFromString("usdc-pool")
	stranger := types.IDFromString("mallory")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[asset.String()] = types.AssetMetadata{
		AdapterID:           adapterID.String(),
		TokenKind:           types.PositionDeposit,
		CollateralWeightBps: 10_000,
	}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, asset, holding, false))
	registry.Adapters[adapterID.String()] = true

	adapter := &testkeeper.MockAdapter{ID: adapterID, Result: &types.AdapterResult{ProgramID: adapterID}}
	err := k.AdapterInvoke(ctx, owner, 0, stranger, adapter, adapterID, []string{holding.String()}, nil)
	require.ErrorIs(t, err, types.ErrUnauthorizedInvocation)
}

func TestAdapterInvoke_RejectsUnauthorizedAdapter(t *testing.T) {
	k, ctx, _, _, _ := testkeeper.MarginKeeper(t)
	owner, _, _ := setupAdapterAccount(t)
	adapterID := types.IDFromString("usdc-pool")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))

	adapter := &testkeeper.MockAdapter{ID: adapterID, Result: &types.AdapterResult{ProgramID: adapterID}}
	err := k.AdapterInvoke(ctx, owner, 0, owner, adapter, adapterID, nil, nil)
	require.ErrorIs(t, err, types.ErrUnauthorizedInvocation)
}

func TestAdapterInvoke_RejectsWhileLiquidating(t *testing.T) {
	k, ctx, ledger, _, registry := testkeeper.MarginKeeper(t)
	owner, _, _ := setupAdapterAccount(t)
	adapterID := types.IDFromString("usdc-pool")
	liquidatorID := types.IDFromString("liquidator-bob")
	liquidationID := types.IDFromString("liq-1")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	asset := types.IDFromString("usdc-loan")
	holding := types.IDFromString("alice-usdc-loan")
	registry.Assets[asset.String()] = types.AssetMetadata{AdapterID: adapterID.String(), TokenKind: types.PositionClaim}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, asset, holding, false))

	// Give the claim a real balance and a priced, unbacked value so the
	// account is genuinely Unhealthy and LiquidateBegin can proceed.
	ledger.Balances[holding.String()] = 1_000
	require.NoError(t, k.UpdatePositionBalance(ctx, owner, 0, owner, asset))

	registry.Adapters[adapterID.String()] = true
	priceAdapter := &testkeeper.MockAdapter{
		ID: adapterID,
		Result: &types.AdapterResult{
			ProgramID: adapterID,
			PositionChanges: []types.AssetPositionChanges{
				{AssetID: asset, Changes: []types.PositionChange{
					types.PriceChange(types.PriceChangeInfo{Value: 1, Twap: 1, Exponent: 0, PublishTime: ctx.BlockTime().Unix()}),
				}},
			},
		},
	}
	require.NoError(t, k.AccountingInvoke(ctx, owner, 0, priceAdapter, adapterID, []string{holding.String()}, nil))

	registry.Liquidators[liquidatorID.String()] = true
	require.NoError(t, k.LiquidateBegin(ctx, owner, 0, liquidationID, liquidatorID))

	adapter := &testkeeper.MockAdapter{ID: adapterID, Result: &types.AdapterResult{ProgramID: adapterID}}
	err := k.AdapterInvoke(ctx, owner, 0, owner, adapter, adapterID, nil, nil)
	require.ErrorIs(t, err, types.ErrLiquidating)
}

func TestAccountingInvoke_NoHealthCheckRequired(t *testing.T) {
	k, ctx, _, _, registry := testkeeper.MarginKeeper(t)
	owner := types.IDFromString("alice")
	asset := types.IDFromString("usdc-loan")
	holding := types.IDFromString("alice-usdc-loan")
	adapterID := types.IDFromString("usdc-pool")

	require.NoError(t, k.CreateAccount(ctx, owner, 0, 255))
	registry.Assets[asset.String()] = types.AssetMetadata{AdapterID: adapterID.String(), TokenKind: types.PositionClaim}
	require.NoError(t, k.RegisterPosition(ctx, owner, 0, owner, asset, holding, false))
	registry.Adapters[adapterID.String()] = true

	adapter := &testkeeper.MockAdapter{
		ID: adapterID,
		Result: &types.AdapterResult{
			ProgramID: adapterID,
			PositionChanges: []types.AssetPositionChanges{
				{AssetID: asset, Changes: []types.PositionChange{types.ExpectChange(holding)}},
			},
		},
	}

	// The account has an unpriced, unbacked claim (unhealthy by any
	// post-check), but AccountingInvoke has none.
	err := k.AccountingInvoke(ctx, owner, 0, adapter, adapterID, []string{holding.String()}, nil)
	require.NoError(t, err)
}
