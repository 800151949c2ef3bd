package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFixedNumber_BasisPoints(t *testing.T) {
	half := NewFixedFromBasisPoints(5_000)
	require.True(t, half.Equal(NewFixedFromUint64(1).Quo(NewFixedFromUint64(2))))
}

func TestFixedNumber_SaturatingSub(t *testing.T) {
	small := NewFixedFromUint64(3)
	big := NewFixedFromUint64(10)
	require.True(t, small.SaturatingSub(big).IsZero())
	require.True(t, big.SaturatingSub(small).Equal(NewFixedFromUint64(7)))
}

func TestFixedNumber_Uint64Rounding(t *testing.T) {
	// 7 / 2 = 3.5
	half := NewFixedFromUint64(7).Quo(NewFixedFromUint64(2))
	require.Equal(t, uint64(3), half.Uint64(RoundDown))
	require.Equal(t, uint64(4), half.Uint64(RoundUp))
}

func TestFixedNumber_Uint64At(t *testing.T) {
	rate := NewFixedFromUint64(1) // exactly 1.0
	// at -9 (nano precision), exactly 1.0 -> 1_000_000_000
	require.Equal(t, uint64(1_000_000_000), rate.Uint64At(-9, RoundDown))
}

func TestFixedNumber_IsZero(t *testing.T) {
	require.True(t, ZeroFixed().IsZero())
	require.False(t, NewFixedFromUint64(1).IsZero())
}
