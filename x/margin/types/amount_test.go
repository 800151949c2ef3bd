package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scenarioRate mirrors spec.md §8 scenarios A/B: deposit_tokens=1_000_000,
// deposit_notes=900_000, rate = tokens/notes ~= 1.1111...
func scenarioRate() FixedNumber {
	return NewFixedFromUint64(1_000_000).Quo(NewFixedFromUint64(900_000))
}

func TestConvert_ScenarioA_DepositRoundingDrainBlock(t *testing.T) {
	rate := scenarioRate()

	_, err := Convert(TokensAmount(1), rate, RoundDown)
	require.ErrorIs(t, err, ErrInvalidAmount)

	full, err := Convert(TokensAmount(1), rate, RoundUp)
	require.NoError(t, err)
	require.Equal(t, FullAmount{Tokens: 1, Notes: 1}, full)
}

func TestConvert_ScenarioB_WithdrawalAntiDrain(t *testing.T) {
	rate := scenarioRate()

	down, err := Convert(NotesAmount(12), rate, RoundDown)
	require.NoError(t, err)
	require.Equal(t, FullAmount{Tokens: 13, Notes: 12}, down)

	up, err := Convert(NotesAmount(12), rate, RoundUp)
	require.NoError(t, err)
	require.Equal(t, FullAmount{Tokens: 14, Notes: 12}, up)
}

func TestConvert_ZeroIsZero(t *testing.T) {
	rate := scenarioRate()
	full, err := Convert(TokensAmount(0), rate, RoundDown)
	require.NoError(t, err)
	require.Equal(t, FullAmount{}, full)
}

func TestRoundingDirectionFor_Table(t *testing.T) {
	cases := []struct {
		action PoolAction
		kind   AmountKind
		want   RoundingDirection
	}{
		{ActionDeposit, KindTokens, RoundDown},
		{ActionDeposit, KindNotes, RoundUp},
		{ActionWithdraw, KindTokens, RoundUp},
		{ActionWithdraw, KindNotes, RoundDown},
		{ActionBorrow, KindTokens, RoundUp},
		{ActionBorrow, KindNotes, RoundDown},
		{ActionRepay, KindTokens, RoundDown},
		{ActionRepay, KindNotes, RoundUp},
	}
	for _, c := range cases {
		require.Equal(t, c.want, RoundingDirectionFor(c.action, c.kind))
	}
}
