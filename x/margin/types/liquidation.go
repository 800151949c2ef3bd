package types

import (
	"bytes"
	"fmt"

	"cosmossdk.io/math"
)

const liquidationDiscriminator uint64 = 0x4c49515549444154 // "LIQUIDAT"

// Liquidation tracks an in-progress repair of an unhealthy account
// (spec.md §3). CumulativeValueChange and CumulativeCRatioChange are
// signed, and MinValueChange is negative-or-zero (a loss budget), so all
// three are represented as math.LegacyDec rather than the unsigned
// FixedNumber used in the pool ledger.
type Liquidation struct {
	StartTime              int64
	CumulativeValueChange  math.LegacyDec
	CumulativeCRatioChange math.LegacyDec
	MinValueChange         math.LegacyDec
}

// NewLiquidation computes the opening budget for a liquidation from the
// account's pre-liquidation valuation (spec.md §4.6 Begin):
// ideal_value_liquidated = claims - net/(ideal_c_ratio - 1), and
// min_value_change = -MAX_LIQUIDATION_VALUE_SLIPPAGE * ideal_value_liquidated.
func NewLiquidation(now int64, pre Valuation) Liquidation {
	idealCRatio := math.LegacyNewDec(IdealLiquidationCollateralRatioBps).QuoInt64(BasisPointsDenominator)
	idealValueLiquidated := pre.Claims.Dec().Sub(pre.Net().Quo(idealCRatio.Sub(math.LegacyOneDec())))

	slippage := math.LegacyNewDec(MaxLiquidationValueSlippageBps).QuoInt64(BasisPointsDenominator)
	minValueChange := slippage.Neg().Mul(idealValueLiquidated)

	return Liquidation{
		StartTime:              now,
		CumulativeValueChange:  math.LegacyZeroDec(),
		CumulativeCRatioChange: math.LegacyZeroDec(),
		MinValueChange:         minValueChange,
	}
}

// Step accumulates one invocation's effect on value and c-ratio, then
// checks the three rejection conditions from spec.md §4.6 in order. cRatio
// deltas are expressed in basis points: when either snapshot has no claims,
// MaxCRatioBps stands in for an "infinitely healthy" c-ratio, matching
// original_source's use of u16::MAX in that case.
func (l *Liquidation) Step(pre, post Valuation) error {
	deltaValue := post.Net().Sub(pre.Net())
	l.CumulativeValueChange = l.CumulativeValueChange.Add(deltaValue)

	deltaCRatio := cRatioBps(post).Sub(cRatioBps(pre))
	l.CumulativeCRatioChange = l.CumulativeCRatioChange.Add(deltaCRatio)

	if l.CumulativeValueChange.LT(l.MinValueChange) {
		return ErrLiquidationLostValue
	}

	maxCRatioSlippage := math.LegacyNewDec(MaxLiquidationCRatioSlippageBps).Neg()
	if l.CumulativeCRatioChange.LT(maxCRatioSlippage) {
		return ErrLiquidationUnhealthy
	}

	maxCRatio := math.LegacyNewDec(MaxLiquidationCollateralRatioBps).QuoInt64(BasisPointsDenominator)
	if postCRatioOrMax(post).GT(maxCRatio) {
		return ErrLiquidationTooHealthy
	}

	return nil
}

// cRatioBps expresses a valuation's c-ratio in basis points, standing in
// MaxCRatioBps when there are no claims to divide by.
func cRatioBps(v Valuation) math.LegacyDec {
	cRatio, hasClaims := v.CRatio()
	if !hasClaims {
		return math.LegacyNewDec(MaxCRatioBps)
	}
	return cRatio.MulInt64(BasisPointsDenominator)
}

// postCRatioOrMax is cRatioBps expressed as a ratio rather than basis
// points, standing in MaxCRatioBps/10000 when there are no claims left —
// original_source's liquidator_invoke.rs substitutes u16::MAX for
// end_c_ratio in that case, so a step that fully repays all claims (the
// maximal over-repair) still trips the "too healthy" rejection instead of
// silently passing it.
func postCRatioOrMax(v Valuation) math.LegacyDec {
	return cRatioBps(v).QuoInt64(BasisPointsDenominator)
}

// CanEnd reports whether caller may call LiquidateEnd at time now: the
// recorded liquidator always may; anyone else only after the timeout
// elapses (spec.md §4.6 End).
func (l Liquidation) CanEnd(callerIsLiquidator bool, now int64) bool {
	if callerIsLiquidator {
		return true
	}
	return now-l.StartTime >= LiquidationTimeoutSeconds
}

// MarshalBinary serializes the liquidation record to a fixed-size record
// prefixed by an 8-byte discriminator (spec.md §6).
func (l Liquidation) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	putUint64(&buf, liquidationDiscriminator)
	putInt64(&buf, l.StartTime)
	if err := putDec(&buf, l.CumulativeValueChange); err != nil {
		return nil, fmt.Errorf("Liquidation.MarshalBinary: %w", err)
	}
	if err := putDec(&buf, l.CumulativeCRatioChange); err != nil {
		return nil, fmt.Errorf("Liquidation.MarshalBinary: %w", err)
	}
	if err := putDec(&buf, l.MinValueChange); err != nil {
		return nil, fmt.Errorf("Liquidation.MarshalBinary: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary reverses MarshalBinary, checking the discriminator first.
func (l *Liquidation) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := checkDiscriminator(r, liquidationDiscriminator); err != nil {
		return fmt.Errorf("Liquidation.UnmarshalBinary: %w", err)
	}
	if err := getInt64(r, &l.StartTime); err != nil {
		return err
	}
	if err := getDec(r, &l.CumulativeValueChange); err != nil {
		return err
	}
	if err := getDec(r, &l.CumulativeCRatioChange); err != nil {
		return err
	}
	return getDec(r, &l.MinValueChange)
}
