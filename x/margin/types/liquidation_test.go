package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func valuationWithCRatio(collateral, claims int64) Valuation {
	return Valuation{
		FreshCollateral: NewFixedFromUint64(uint64(collateral)),
		StaleCollateral: ZeroFixed(),
		Claims:          NewFixedFromUint64(uint64(claims)),
	}
}

// TestLiquidation_ScenarioE_OverRepairRejected checks spec.md §8 scenario E:
// claims=100, collateral=120 (c-ratio 1.20 < 1.25); a step that raises
// c-ratio to 1.55 > MAX_LIQUIDATION_COLLATERAL_RATIO is rejected.
func TestLiquidation_ScenarioE_OverRepairRejected(t *testing.T) {
	pre := valuationWithCRatio(120, 100)
	liquidation := NewLiquidation(0, pre)

	post := valuationWithCRatio(155, 100)

	err := liquidation.Step(pre, post)
	require.ErrorIs(t, err, ErrLiquidationTooHealthy)
}

func TestLiquidation_StepAcceptsHealthyRepair(t *testing.T) {
	pre := valuationWithCRatio(120, 100)
	liquidation := NewLiquidation(0, pre)

	post := valuationWithCRatio(135, 100)
	err := liquidation.Step(pre, post)
	require.NoError(t, err)
}

func TestLiquidation_StepRejectsLostValue(t *testing.T) {
	pre := valuationWithCRatio(120, 100)
	liquidation := NewLiquidation(0, pre)

	// Net drops sharply: collateral nearly wiped out relative to claims.
	post := Valuation{FreshCollateral: ZeroFixed(), Claims: NewFixedFromUint64(100)}
	err := liquidation.Step(pre, post)
	require.ErrorIs(t, err, ErrLiquidationLostValue)
}

// TestLiquidation_CanEnd checks spec.md §8 scenario F: before the timeout,
// only the recorded liquidator may end; after, anyone may.
func TestLiquidation_CanEnd(t *testing.T) {
	liquidation := Liquidation{StartTime: 0}

	require.True(t, liquidation.CanEnd(true, 59))
	require.False(t, liquidation.CanEnd(false, 59))
	require.True(t, liquidation.CanEnd(false, 61))
	require.True(t, liquidation.CanEnd(false, LiquidationTimeoutSeconds))
}
