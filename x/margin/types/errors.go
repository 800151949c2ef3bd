package types

import (
	"cosmossdk.io/errors"
)

// Pool errors live in the 141_100 series (spec.md §6), registered under
// their own codespace since they describe pool configuration and
// accounting failures distinct from account-level failures below.
const (
	codespacePool = "marginpool"

	codeInvalidOracle                  = 141_100
	codeDisabled                       = 141_101
	codeDepositsOnly                   = 141_102
	codeInterestAccrualBehind          = 141_103
	codeInsufficientLiquidity          = 141_104
	codeInvalidAmount                  = 141_105
	codeRepaymentExceedsTotalOutstanding = 141_106
)

var (
	ErrInvalidOracle                   = errors.Register(codespacePool, codeInvalidOracle, "invalid oracle account")
	ErrDisabled                        = errors.Register(codespacePool, codeDisabled, "pool is disabled")
	ErrDepositsOnly                    = errors.Register(codespacePool, codeDepositsOnly, "pool only allows deposits")
	ErrInterestAccrualBehind           = errors.Register(codespacePool, codeInterestAccrualBehind, "interest accrual is more than one week behind")
	ErrInsufficientLiquidity           = errors.Register(codespacePool, codeInsufficientLiquidity, "insufficient liquidity in pool")
	ErrInvalidAmount                   = errors.Register(codespacePool, codeInvalidAmount, "conversion would drain value across the rounding boundary")
	ErrRepaymentExceedsTotalOutstanding = errors.Register(codespacePool, codeRepaymentExceedsTotalOutstanding, "repayment exceeds total outstanding balance")
)

// Account errors live in the 141_000-141_043 series (spec.md §6).
const (
	codespaceAccount = "marginaccount"

	codeInvalidPrice              = 141_000
	codeOutdatedPrice             = 141_001
	codeOutdatedBalance           = 141_002
	codeStalePositions            = 141_003
	codePositionAlreadyRegistered = 141_004
	codeMaxPositions              = 141_005
	codePositionNotRegistered     = 141_006
	codeInvalidPositionAdapter    = 141_007
	codeCloseNonZeroPosition      = 141_008
	codeCloseRequiredPosition     = 141_009
	codeAccountNotEmpty           = 141_010
	codeUnhealthy                 = 141_011
	codeHealthy                   = 141_012
	codeLiquidating               = 141_013
	codeNotLiquidating            = 141_014
	codeUnauthorizedLiquidator    = 141_015
	codeLiquidationLostValue      = 141_016
	codeLiquidationUnhealthy      = 141_017
	codeLiquidationTooHealthy     = 141_018
	codeNoAdapterResult           = 141_019
	codeWrongProgramAdapterResult = 141_020
	codeUnauthorizedInvocation    = 141_021
)

var (
	ErrInvalidPrice              = errors.Register(codespaceAccount, codeInvalidPrice, "position price is not valid")
	ErrOutdatedPrice              = errors.Register(codespaceAccount, codeOutdatedPrice, "position price is older than the maximum quote age")
	ErrOutdatedBalance            = errors.Register(codespaceAccount, codeOutdatedBalance, "position balance is older than its configured staleness bound")
	ErrStalePositions              = errors.Register(codespaceAccount, codeStalePositions, "account has stale collateral positions")
	ErrPositionAlreadyRegistered = errors.Register(codespaceAccount, codePositionAlreadyRegistered, "position already registered for this asset")
	ErrMaxPositions                = errors.Register(codespaceAccount, codeMaxPositions, "account has no free position slots")
	ErrPositionNotRegistered      = errors.Register(codespaceAccount, codePositionNotRegistered, "position not registered")
	ErrInvalidPositionAdapter    = errors.Register(codespaceAccount, codeInvalidPositionAdapter, "position is not owned by the invoking adapter")
	ErrCloseNonZeroPosition      = errors.Register(codespaceAccount, codeCloseNonZeroPosition, "cannot close a position with a non-zero balance")
	ErrCloseRequiredPosition     = errors.Register(codespaceAccount, codeCloseRequiredPosition, "cannot close a required position")
	ErrAccountNotEmpty             = errors.Register(codespaceAccount, codeAccountNotEmpty, "account still has registered positions")
	ErrUnhealthy                    = errors.Register(codespaceAccount, codeUnhealthy, "account is not healthy")
	ErrHealthy                      = errors.Register(codespaceAccount, codeHealthy, "account is healthy")
	ErrLiquidating                  = errors.Register(codespaceAccount, codeLiquidating, "account is already under liquidation")
	ErrNotLiquidating              = errors.Register(codespaceAccount, codeNotLiquidating, "account is not under liquidation")
	ErrUnauthorizedLiquidator    = errors.Register(codespaceAccount, codeUnauthorizedLiquidator, "caller is not the recorded liquidator and the liquidation timeout has not elapsed")
	ErrLiquidationLostValue      = errors.Register(codespaceAccount, codeLiquidationLostValue, "liquidation step exceeded the value-loss budget")
	ErrLiquidationUnhealthy      = errors.Register(codespaceAccount, codeLiquidationUnhealthy, "liquidation step made the account less healthy than the c-ratio slippage bound allows")
	ErrLiquidationTooHealthy     = errors.Register(codespaceAccount, codeLiquidationTooHealthy, "liquidation step over-repaired the account past the maximum collateral ratio")
	ErrNoAdapterResult             = errors.Register(codespaceAccount, codeNoAdapterResult, "adapter did not return a result payload")
	ErrWrongProgramAdapterResult = errors.Register(codespaceAccount, codeWrongProgramAdapterResult, "adapter result was returned by a different program than the one invoked")
	ErrUnauthorizedInvocation    = errors.Register(codespaceAccount, codeUnauthorizedInvocation, "caller is not authorized to perform this invocation")
)
