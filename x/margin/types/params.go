package types

import "fmt"

// Protocol constants from spec.md §4.4, fixed parts of the health and
// liquidation design rather than governance-adjustable values.
const (
	BasisPointsDenominator = 10_000

	MinCollateralRatioBps              = 12_500
	IdealLiquidationCollateralRatioBps = 13_000
	MaxLiquidationCollateralRatioBps   = 15_000

	MaxOracleConfidenceBps = 500

	MaxOracleStalenessSeconds = int64(10)
	MaxPriceQuoteAgeSeconds   = int64(10)

	MaxLiquidationValueSlippageBps  = 500
	MaxLiquidationCRatioSlippageBps = 500

	LiquidationTimeoutSeconds = int64(60)

	// MaxPositionSlots is the PositionStore's fixed capacity (spec.md §4.3,
	// §9 design notes).
	MaxPositionSlots = 32

	// MaxCRatioBps is substituted for c_ratio when claims == 0 (an
	// account with no debt is maximally healthy), matching
	// original_source's use of u16::MAX basis points in that case.
	MaxCRatioBps = 65_535
)

// Params is the module's single governance-adjustable record: who may call
// admin-gated Keeper methods (CreatePool today; extensible the way the
// teacher's Params carries an authority-equivalent knob). Validated the
// same per-field-plus-cross-field way x/dex/types/params.go validates its
// Params, but stored directly in the module's own KV store under ParamsKey
// rather than through the legacy x/params ParamSetPairs reflection, which
// needs a proto-generated message and no codegen step is available here;
// see DESIGN.md.
type Params struct {
	Authority string
}

// DefaultParams returns the default parameter set: the module account
// itself is the authority until governance reassigns it.
func DefaultParams() Params {
	return Params{Authority: DefaultAuthority()}
}

// Validate enforces the one structural constraint Params carries.
func (p Params) Validate() error {
	if p.Authority == "" {
		return fmt.Errorf("params: authority must not be empty")
	}
	return nil
}
