package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// buildScenarioDStore builds spec.md §8 scenario D: one deposit worth 100
// and one claim worth 1, both fresh, collateral_weight=10_000 bps.
func buildScenarioDStore(now int64) *PositionStore {
	store := &PositionStore{}

	deposit, _ := store.Add(assetID(1))
	deposit.Kind = PositionDeposit
	deposit.Balance = 100
	deposit.BalanceTS = now
	deposit.Exponent = 0
	deposit.CollateralWeightBps = 10_000
	deposit.Price = PriceInfo{Value: 1, Exponent: 0, Timestamp: now, Valid: true}

	claim, _ := store.Add(assetID(2))
	claim.Kind = PositionClaim
	claim.Balance = 1
	claim.BalanceTS = now
	claim.Exponent = 0
	claim.Price = PriceInfo{Value: 1, Exponent: 0, Timestamp: now, Valid: true}

	return store
}

func TestValuation_ScenarioD_PastDueFlipsHealth(t *testing.T) {
	now := int64(1_000)
	store := buildScenarioDStore(now)

	valuation, err := ComputeValuation(store, now)
	require.NoError(t, err)
	require.True(t, valuation.IsHealthy())

	claim, ok := store.Get(assetID(2))
	require.True(t, ok)
	claim.Flags = claim.Flags.Set(PositionFlagPastDue)

	valuation, err = ComputeValuation(store, now)
	require.NoError(t, err)
	require.False(t, valuation.IsHealthy())

	unhealthy, err := valuation.IsUnhealthy()
	require.NoError(t, err)
	require.True(t, unhealthy)
}

// TestProperty_HealthyUnhealthyMutualExclusion checks spec.md §8 invariant 7:
// verify_healthy and verify_unhealthy cannot both succeed for the same
// account snapshot.
func TestProperty_HealthyUnhealthyMutualExclusion(t *testing.T) {
	now := int64(1_000)

	cases := []struct {
		name        string
		mutate      func(s *PositionStore)
		staleClaims bool
	}{
		{name: "healthy", mutate: func(s *PositionStore) {}},
		{name: "past_due", mutate: func(s *PositionStore) {
			claim, _ := s.Get(assetID(2))
			claim.Flags = claim.Flags.Set(PositionFlagPastDue)
		}},
		{name: "undercollateralized", mutate: func(s *PositionStore) {
			claim, _ := s.Get(assetID(2))
			claim.Balance = 1_000
		}},
	}

	for _, c := range cases {
		store := buildScenarioDStore(now)
		c.mutate(store)

		valuation, err := ComputeValuation(store, now)
		require.NoError(t, err)

		healthy := valuation.IsHealthy()
		unhealthy, uErr := valuation.IsUnhealthy()

		require.NoError(t, uErr)
		require.False(t, healthy && unhealthy, "case %s: healthy and unhealthy both true", c.name)
	}
}

func TestValuation_StaleClaimAbortsComputation(t *testing.T) {
	now := int64(1_000)
	store := &PositionStore{}

	claim, _ := store.Add(assetID(1))
	claim.Kind = PositionClaim
	claim.Balance = 1
	claim.Price = PriceInfo{Valid: false}

	_, err := ComputeValuation(store, now)
	require.ErrorIs(t, err, ErrInvalidPrice)
}
