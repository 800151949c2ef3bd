package types

import "cosmossdk.io/math"

// Value computes a position's priced value: balance * price.value scaled
// by the combined position/price exponent (spec.md §4.4). math.Int is used
// for the balance*price product to avoid overflowing a machine word before
// the decimal scale is applied.
func (p Position) Value() FixedNumber {
	balance := math.NewIntFromUint64(p.Balance)
	price := math.NewInt(p.Price.Value)
	raw := balance.Mul(price)

	dec := math.LegacyNewDecFromInt(raw)
	expo := p.Exponent + p.Price.Exponent
	switch {
	case expo > 0:
		dec = dec.MulInt(powTen(expo))
	case expo < 0:
		dec = dec.QuoInt(powTen(-expo))
	}
	return FixedNumber{dec: dec}
}

// StalePosition records why a deposit position's value was excluded from
// fresh collateral, for surfacing to callers that want the detail (e.g. an
// AccountingInvoke deciding whether to refresh prices before retrying).
type StalePosition struct {
	AssetID ID
	Err     error
}

// Valuation is the folded result of every Deposit/Claim position in an
// account's store (spec.md §4.4).
type Valuation struct {
	FreshCollateral FixedNumber
	StaleCollateral FixedNumber
	Claims          FixedNumber
	PastDue         bool
	StalePositions  []StalePosition
}

// ComputeValuation folds an account's active positions into a Valuation.
// A stale claim aborts the whole computation with its stale-reason error,
// since claims must always be priced (spec.md §4.4) — a debt the account
// cannot currently value is not safe to ignore the way a stale deposit is.
func ComputeValuation(store *PositionStore, now int64) (Valuation, error) {
	v := Valuation{FreshCollateral: ZeroFixed(), StaleCollateral: ZeroFixed(), Claims: ZeroFixed()}

	for _, pos := range store.Active() {
		switch pos.Kind {
		case PositionNoValue:
			continue

		case PositionClaim:
			reason := pos.Stale(now)
			if reason != StaleReasonNone {
				return Valuation{}, reason.Err()
			}
			v.Claims = v.Claims.Add(pos.Value())
			if pos.Balance > 0 && pos.Flags.Has(PositionFlagPastDue) {
				v.PastDue = true
			}

		case PositionDeposit:
			reason := pos.Stale(now)
			value := pos.Value()
			if reason == StaleReasonNone {
				weighted := value.Mul(NewFixedFromBasisPoints(uint64(pos.CollateralWeightBps)))
				v.FreshCollateral = v.FreshCollateral.Add(weighted)
			} else {
				v.StaleCollateral = v.StaleCollateral.Add(value)
				v.StalePositions = append(v.StalePositions, StalePosition{AssetID: pos.AssetID, Err: reason.Err()})
			}
		}
	}

	return v, nil
}

// Net is fresh_collateral - claims, allowed to go negative, so it is
// represented with the signed math.LegacyDec directly rather than
// FixedNumber (spec.md §4.4).
func (v Valuation) Net() math.LegacyDec {
	return v.FreshCollateral.Dec().Sub(v.Claims.Dec())
}

// CRatio is fresh_collateral / claims, undefined when claims == 0.
func (v Valuation) CRatio() (math.LegacyDec, bool) {
	if v.Claims.IsZero() {
		return math.LegacyDec{}, false
	}
	return v.FreshCollateral.Dec().Quo(v.Claims.Dec()), true
}

func minCollateralRatio() math.LegacyDec {
	return math.LegacyNewDec(MinCollateralRatioBps).QuoInt64(BasisPointsDenominator)
}

// IsHealthy implements spec.md §4.4's Healthy predicate: an account with no
// claims is vacuously healthy; otherwise it needs both an adequate c-ratio
// and no past-due claim.
func (v Valuation) IsHealthy() bool {
	cRatio, hasClaims := v.CRatio()
	if !hasClaims {
		return true
	}
	return cRatio.GTE(minCollateralRatio()) && !v.PastDue
}

// IsUnhealthy implements spec.md §4.4's Unhealthy predicate. It returns an
// error (rather than false) when stale collateral makes the account's true
// health indeterminate — verify_unhealthy must not claim an account is
// unhealthy it cannot actually price.
func (v Valuation) IsUnhealthy() (bool, error) {
	if !v.StaleCollateral.IsZero() {
		return false, ErrStalePositions
	}
	cRatio, hasClaims := v.CRatio()
	if !hasClaims {
		return false, nil
	}
	return cRatio.LT(minCollateralRatio()) || v.PastDue, nil
}
