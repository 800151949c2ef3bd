package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// RoundingDirection selects which way a fractional quantity is rounded when
// converted to an integer. The direction is always an explicit parameter at
// the call site (spec.md §4.1, §9 design notes) — there is no default.
type RoundingDirection int

const (
	RoundDown RoundingDirection = iota
	RoundUp
)

// FixedNumber is an unsigned fixed-point rational with at least 10 decimal
// places of precision, used for every quantity in the pool ledger that
// cannot be a plain u64 (borrowed_tokens, uncollected_fees, exchange rates).
// It wraps math.LegacyDec (18 decimal digits) rather than a hand-rolled
// big-rational, the same decimal type the teacher threads through x/dex's
// pool math, with saturating-sub, basis-point construction, and directional
// rounding added on top since LegacyDec does not provide them.
type FixedNumber struct {
	dec math.LegacyDec
}

// ZeroFixed returns the additive identity.
func ZeroFixed() FixedNumber {
	return FixedNumber{dec: math.LegacyZeroDec()}
}

// NewFixedFromUint64 constructs a FixedNumber representing an exact integer.
func NewFixedFromUint64(v uint64) FixedNumber {
	return FixedNumber{dec: math.LegacyNewDecFromInt(math.NewIntFromUint64(v))}
}

// NewFixedFromBasisPoints constructs value/10_000, the unit pool configs use
// for fee rates, borrow-rate anchors, and collateral weights.
func NewFixedFromBasisPoints(bps uint64) FixedNumber {
	return FixedNumber{dec: math.LegacyNewDecFromInt(math.NewIntFromUint64(bps)).QuoInt64(10_000)}
}

// NewFixedFromDecimal builds value * 10^expo, the representation oracle
// quotes and on-chain decimal fields arrive in.
func NewFixedFromDecimal(value int64, expo int32) FixedNumber {
	d := math.LegacyNewDec(value)
	switch {
	case expo > 0:
		d = d.MulInt(powTen(expo))
	case expo < 0:
		d = d.QuoInt(powTen(-expo))
	}
	return FixedNumber{dec: d}
}

func powTen(n int32) math.Int {
	result := math.NewInt(1)
	ten := math.NewInt(10)
	for i := int32(0); i < n; i++ {
		result = result.Mul(ten)
	}
	return result
}

// Dec exposes the underlying decimal for interop with signed valuation math
// (net value, c-ratio deltas), which is allowed to go negative and so is
// represented directly with math.LegacyDec rather than FixedNumber.
func (f FixedNumber) Dec() math.LegacyDec {
	return f.dec
}

// FromLegacyDec wraps an existing non-negative decimal as a FixedNumber.
func FromLegacyDec(d math.LegacyDec) FixedNumber {
	return FixedNumber{dec: d}
}

func (f FixedNumber) Add(other FixedNumber) FixedNumber {
	return FixedNumber{dec: f.dec.Add(other.dec)}
}

func (f FixedNumber) Sub(other FixedNumber) FixedNumber {
	return FixedNumber{dec: f.dec.Sub(other.dec)}
}

// SaturatingSub clamps to zero instead of going negative, used wherever an
// underflow would be a programmer error masking an accounting bug rather
// than a legitimate negative quantity (spec.md §4.2 repay()).
func (f FixedNumber) SaturatingSub(other FixedNumber) FixedNumber {
	if f.dec.LT(other.dec) {
		return ZeroFixed()
	}
	return FixedNumber{dec: f.dec.Sub(other.dec)}
}

func (f FixedNumber) Mul(other FixedNumber) FixedNumber {
	return FixedNumber{dec: f.dec.Mul(other.dec)}
}

func (f FixedNumber) Quo(other FixedNumber) FixedNumber {
	return FixedNumber{dec: f.dec.Quo(other.dec)}
}

func (f FixedNumber) LT(other FixedNumber) bool  { return f.dec.LT(other.dec) }
func (f FixedNumber) LTE(other FixedNumber) bool { return f.dec.LTE(other.dec) }
func (f FixedNumber) GT(other FixedNumber) bool  { return f.dec.GT(other.dec) }
func (f FixedNumber) GTE(other FixedNumber) bool { return f.dec.GTE(other.dec) }
func (f FixedNumber) Equal(other FixedNumber) bool { return f.dec.Equal(other.dec) }
func (f FixedNumber) IsZero() bool               { return f.dec.IsZero() }

func (f FixedNumber) String() string { return f.dec.String() }

// Uint64 rounds f to a u64 in the given direction, at the integer position
// (fractional exponent 0). Down truncates toward zero; Up rounds any
// non-zero remainder away from zero.
func (f FixedNumber) Uint64(direction RoundingDirection) uint64 {
	return f.Uint64At(0, direction)
}

// Uint64At rounds f to a u64 at a specified fractional position: f is first
// scaled by 10^(-fractionalExponent) so that, e.g., fractionalExponent=-9
// reports nano-scale integer values (used to assert exact exchange-rate
// representations in tests the way original_source's unit tests do).
func (f FixedNumber) Uint64At(fractionalExponent int32, direction RoundingDirection) uint64 {
	scaled := f.dec
	switch {
	case fractionalExponent > 0:
		scaled = scaled.QuoInt(powTen(fractionalExponent))
	case fractionalExponent < 0:
		scaled = scaled.MulInt(powTen(-fractionalExponent))
	}

	switch direction {
	case RoundDown:
		return scaled.TruncateInt().Uint64()
	case RoundUp:
		return scaled.Ceil().TruncateInt().Uint64()
	default:
		panic(fmt.Sprintf("unknown rounding direction %d", direction))
	}
}
