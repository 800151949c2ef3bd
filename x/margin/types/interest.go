package types

import "fmt"

// Seconds-denominated constants shared by interest accrual and the
// liquidation timeout, named the way original_source/.../util.rs names its
// SECONDS_PER_* constants.
const (
	SecondsPerHour = int64(3_600)
	SecondsPerDay  = int64(86_400)
	SecondsPerWeek = int64(7 * SecondsPerDay)
	SecondsPerYear = int64(31_536_000)
)

// termsForDuration picks the Maclaurin truncation depth for a compounding
// window, matching original_source's compound_interest thresholds: shorter
// windows need fewer terms to converge to full precision.
func termsForDuration(seconds int64) int {
	switch {
	case seconds <= 2*SecondsPerHour:
		return 5
	case seconds <= 12*SecondsPerHour:
		return 6
	case seconds <= SecondsPerDay:
		return 7
	case seconds <= SecondsPerWeek:
		return 10
	default:
		panic(fmt.Sprintf("compound interest window of %ds exceeds the one-week cap", seconds))
	}
}

// CompoundInterest computes e^x - 1 for x = rate * seconds / SecondsPerYear,
// using a truncated Maclaurin series whose term count scales with seconds
// (spec.md §4.1). rate > 2 or seconds beyond one week are precondition
// violations: accrue_interest always caps the window before calling this,
// so a violation here means a caller skipped that cap.
func CompoundInterest(rate FixedNumber, seconds int64) FixedNumber {
	if rate.GT(NewFixedFromUint64(2)) {
		panic(fmt.Sprintf("compound interest rate %s exceeds the maximum of 2", rate))
	}
	if seconds < 0 {
		panic(fmt.Sprintf("compound interest window %ds is negative", seconds))
	}

	terms := termsForDuration(seconds)
	x := rate.Mul(NewFixedFromUint64(uint64(seconds))).Quo(NewFixedFromUint64(uint64(SecondsPerYear)))
	return expm1(x, terms)
}

// expm1 sums the truncated Maclaurin series for e^x - 1: x + x^2/2! + ... + x^n/n!.
func expm1(x FixedNumber, terms int) FixedNumber {
	term := x
	sum := x
	for k := 2; k <= terms; k++ {
		term = term.Mul(x).Quo(NewFixedFromUint64(uint64(k)))
		sum = sum.Add(term)
	}
	return sum
}

// Interpolate computes the piecewise-linear borrow-rate curve's per-segment
// formula: y0 + (x-x0)*(y1-y0)/(x1-x0), with x0 <= x <= x1 required by the
// caller (spec.md §4.1). A violated precondition indicates the caller chose
// the wrong segment for the utilization value, a programmer error.
func Interpolate(x, x0, x1, y0, y1 FixedNumber) FixedNumber {
	if x.LT(x0) || x.GT(x1) {
		panic(fmt.Sprintf("interpolate: x=%s outside [%s, %s]", x, x0, x1))
	}
	if x0.Equal(x1) {
		return y0
	}
	return y0.Add(x.Sub(x0).Mul(y1.Sub(y0)).Quo(x1.Sub(x0)))
}
