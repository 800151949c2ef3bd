package types

import (
	"bytes"
	"fmt"
)

// poolDiscriminator prefixes every serialized Pool record for type
// identification (spec.md §6).
const poolDiscriminator uint64 = 0x504f4f4c00000001 // "POOL" + version

// PoolFlags are independent bits on a Pool's configuration (spec.md §3:
// "flags DISABLED and ALLOW_LENDING are independent").
type PoolFlags uint16

const (
	// PoolFlagAllowLending gates Borrow/MarginBorrow: without it the pool
	// accepts deposits but never lends them out.
	PoolFlagAllowLending PoolFlags = 1 << 0

	// PoolFlagDisabled gates Collect, Deposit, Withdraw and the margin
	// borrow/repay/withdraw operations; Configure and MarginRefreshPosition
	// do not check it. A supplemented feature grounded on the signer_seeds
	// check in original_source/.../margin-pool/src/state.rs.
	PoolFlagDisabled PoolFlags = 1 << 1
)

func (f PoolFlags) Has(flag PoolFlags) bool { return f&flag != 0 }

// PoolConfig is the pool's mutable configuration: the piecewise-linear
// borrow-rate curve anchors, the utilization breakpoints splitting its
// three regimes, and the fee policy (spec.md §3, §4.2).
type PoolConfig struct {
	Flags PoolFlags

	// UtilizationRate1/2 are the u1/u2 breakpoints in basis points of
	// utilization (0-10_000).
	UtilizationRate1 uint16
	UtilizationRate2 uint16

	// BorrowRate0..3 are the b0..b3 annual-rate anchors, in basis points.
	BorrowRate0 uint16
	BorrowRate1 uint16
	BorrowRate2 uint16
	BorrowRate3 uint16

	FeeRateBps uint16

	// FeeCollectThreshold is the whole-token floor uncollected_fees must
	// clear before Collect mints anything (spec.md §4.2 collect_accrued_fees).
	FeeCollectThreshold uint64
}

// Validate enforces the structural constraints original_source's configure
// handler relies on implicitly by construction but spec.md's distillation
// does not spell out: breakpoints strictly increasing and within range,
// anchors non-decreasing, and a sane fee rate. Grounded on
// original_source/.../margin-pool/src/instructions/configure.rs (this is a
// SPEC_FULL.md supplemented feature; see DESIGN.md).
func (c PoolConfig) Validate() error {
	if c.UtilizationRate1 >= c.UtilizationRate2 {
		return fmt.Errorf("utilization_rate_1 (%d) must be strictly less than utilization_rate_2 (%d)", c.UtilizationRate1, c.UtilizationRate2)
	}
	if c.UtilizationRate2 >= 10_000 {
		return fmt.Errorf("utilization_rate_2 (%d) must be below 10_000 bps", c.UtilizationRate2)
	}
	if c.BorrowRate0 > c.BorrowRate1 || c.BorrowRate1 > c.BorrowRate2 || c.BorrowRate2 > c.BorrowRate3 {
		return fmt.Errorf("borrow rate anchors must be non-decreasing: b0=%d b1=%d b2=%d b3=%d",
			c.BorrowRate0, c.BorrowRate1, c.BorrowRate2, c.BorrowRate3)
	}
	if c.FeeRateBps >= 10_000 {
		return fmt.Errorf("fee_rate_bps (%d) must be below 10_000 bps", c.FeeRateBps)
	}
	return nil
}

// Pool is a single-token lending pool: the invariant-preserving ledger of
// deposits, loans, and accrued interest described in spec.md §3/§4.2.
type Pool struct {
	UnderlyingID     ID
	DepositNoteID    ID
	LoanNoteID       ID
	VaultID          ID
	FeeDestinationID ID
	OracleID         ID

	DepositTokens uint64
	DepositNotes  uint64
	LoanNotes     uint64

	BorrowedTokens  FixedNumber
	UncollectedFees FixedNumber

	AccruedUntil int64

	Config PoolConfig
}

// NewPool constructs a pool with its interest clock started at now: a pool
// with a zero-value AccruedUntil would treat its own creation block time as
// an unbounded accrual backlog on the very first accrual call.
func NewPool(underlyingID, depositNoteID, loanNoteID, vaultID, feeDestinationID, oracleID ID, config PoolConfig, now int64) Pool {
	return Pool{
		UnderlyingID:     underlyingID,
		DepositNoteID:    depositNoteID,
		LoanNoteID:       loanNoteID,
		VaultID:          vaultID,
		FeeDestinationID: feeDestinationID,
		OracleID:         oracleID,
		BorrowedTokens:   ZeroFixed(),
		UncollectedFees:  ZeroFixed(),
		Config:           config,
		AccruedUntil:     now,
	}
}

// TotalValue is the pool's total assets: liquid tokens plus what is owed to
// it (spec.md §4.2 exchange rates).
func (p Pool) TotalValue() FixedNumber {
	return p.BorrowedTokens.Add(NewFixedFromUint64(p.DepositTokens))
}

// UtilizationRate is borrowed / (borrowed + idle), and zero when the pool
// holds no value at all. The no-depositors case of the rate curve (return
// the b1 anchor) is handled by InterestRate, not here.
func (p Pool) UtilizationRate() FixedNumber {
	total := p.TotalValue()
	if total.IsZero() {
		return ZeroFixed()
	}
	return p.BorrowedTokens.Quo(total)
}

// InterestRate evaluates the pool's piecewise-linear borrow-rate curve at
// its current utilization (spec.md §4.2).
func (p Pool) InterestRate() FixedNumber {
	if p.DepositNotes == 0 {
		return NewFixedFromBasisPoints(uint64(p.Config.BorrowRate1))
	}

	u := p.UtilizationRate()
	u1 := NewFixedFromBasisPoints(uint64(p.Config.UtilizationRate1))
	u2 := NewFixedFromBasisPoints(uint64(p.Config.UtilizationRate2))
	one := NewFixedFromUint64(1)

	b0 := NewFixedFromBasisPoints(uint64(p.Config.BorrowRate0))
	b1 := NewFixedFromBasisPoints(uint64(p.Config.BorrowRate1))
	b2 := NewFixedFromBasisPoints(uint64(p.Config.BorrowRate2))
	b3 := NewFixedFromBasisPoints(uint64(p.Config.BorrowRate3))

	switch {
	case u.GTE(one):
		return b3
	case u.LTE(u1):
		return Interpolate(u, ZeroFixed(), u1, b0, b1)
	case u.LTE(u2):
		return Interpolate(u, u1, u2, b1, b2)
	default:
		return Interpolate(u, u2, one, b2, b3)
	}
}

// AccrueInterest advances the pool's interest clock to now, compounding at
// the current curve rate (spec.md §4.2). It returns true iff the pool is
// fully caught up (the accrual window was not capped), and an error only if
// now precedes the last accrual (a monotonic clock violation, which is a
// programmer-supplied-bad-input error rather than a panic here, since the
// host may be replaying or fuzzing timestamps).
func (p *Pool) AccrueInterest(now int64) (bool, error) {
	delta := now - p.AccruedUntil
	if delta < 0 {
		return false, fmt.Errorf("AccrueInterest: now (%d) precedes accrued_until (%d)", now, p.AccruedUntil)
	}

	cappedDelta := delta
	if cappedDelta > SecondsPerWeek {
		cappedDelta = SecondsPerWeek
	}
	if cappedDelta == 0 {
		return true, nil
	}

	rate := p.InterestRate()
	compound := CompoundInterest(rate, cappedDelta)
	newInterest := p.BorrowedTokens.Mul(compound)
	fee := newInterest.Mul(NewFixedFromBasisPoints(uint64(p.Config.FeeRateBps)))

	p.BorrowedTokens = p.BorrowedTokens.Add(newInterest)
	p.UncollectedFees = p.UncollectedFees.Add(fee)
	p.AccruedUntil += cappedDelta

	return cappedDelta == delta, nil
}

// DepositRate is tokens-per-note for deposit notes, floored at 1 on both
// sides to avoid a division by zero (spec.md §4.2, state.rs:387-390): the
// floor applies to total_value itself before uncollected_fees is
// subtracted, not to the difference — flooring the difference instead
// would diverge whenever total_value - fees falls in [0,1).
func (p Pool) DepositRate() FixedNumber {
	totalValue := p.TotalValue()
	if totalValue.LT(NewFixedFromUint64(1)) {
		totalValue = NewFixedFromUint64(1)
	}
	totalValue = totalValue.SaturatingSub(p.UncollectedFees)

	notes := p.DepositNotes
	if notes < 1 {
		notes = 1
	}
	return totalValue.Quo(NewFixedFromUint64(notes))
}

// LoanRate is tokens-per-note for loan notes, floored at 1 on both sides.
func (p Pool) LoanRate() FixedNumber {
	borrowed := p.BorrowedTokens
	if borrowed.LT(NewFixedFromUint64(1)) {
		borrowed = NewFixedFromUint64(1)
	}
	notes := p.LoanNotes
	if notes < 1 {
		notes = 1
	}
	return borrowed.Quo(NewFixedFromUint64(notes))
}

// RateFor resolves which exchange rate a pool action converts against:
// deposit actions move tokens against deposit notes, loan actions move
// tokens against loan notes.
func (p Pool) RateFor(action PoolAction) FixedNumber {
	switch action {
	case ActionDeposit, ActionWithdraw:
		return p.DepositRate()
	case ActionBorrow, ActionRepay:
		return p.LoanRate()
	default:
		panic("RateFor: unknown pool action")
	}
}

// ApplyDeposit credits tokens and notes to the pool's ledger.
func (p *Pool) ApplyDeposit(full FullAmount) {
	p.DepositTokens += full.Tokens
	p.DepositNotes += full.Notes
}

// ApplyWithdraw debits tokens and notes, failing if either would underflow.
func (p *Pool) ApplyWithdraw(full FullAmount) error {
	if full.Tokens > p.DepositTokens || full.Notes > p.DepositNotes {
		return ErrInsufficientLiquidity
	}
	p.DepositTokens -= full.Tokens
	p.DepositNotes -= full.Notes
	return nil
}

// ApplyBorrow moves tokens out of the deposit ledger and records the new
// loan, requiring PoolFlagAllowLending.
func (p *Pool) ApplyBorrow(full FullAmount) error {
	if !p.Config.Flags.Has(PoolFlagAllowLending) {
		return ErrDepositsOnly
	}
	if full.Tokens > p.DepositTokens {
		return ErrInsufficientLiquidity
	}
	p.DepositTokens -= full.Tokens
	p.LoanNotes += full.Notes
	p.BorrowedTokens = p.BorrowedTokens.Add(NewFixedFromUint64(full.Tokens))
	return nil
}

// ApplyRepay returns tokens to the deposit ledger and retires loan notes
// and owed principal+interest.
func (p *Pool) ApplyRepay(full FullAmount) error {
	if full.Notes > p.LoanNotes {
		return fmt.Errorf("ApplyRepay: repay notes %d exceed outstanding loan notes %d", full.Notes, p.LoanNotes)
	}
	if p.BorrowedTokens.Uint64(RoundUp) < full.Tokens {
		return ErrRepaymentExceedsTotalOutstanding
	}

	p.DepositTokens += full.Tokens
	p.LoanNotes -= full.Notes
	p.BorrowedTokens = p.BorrowedTokens.SaturatingSub(NewFixedFromUint64(full.Tokens))
	return nil
}

// CollectAccruedFees mints deposit notes for any uncollected fees past the
// collection threshold, returning the number of notes minted (spec.md
// §4.2). Below the threshold it is a no-op, avoiding dust collection.
func (p *Pool) CollectAccruedFees() uint64 {
	if p.UncollectedFees.LT(NewFixedFromUint64(p.Config.FeeCollectThreshold)) {
		return 0
	}

	feeNotes := p.UncollectedFees.Quo(p.DepositRate()).Uint64(RoundDown)
	p.UncollectedFees = ZeroFixed()
	p.DepositNotes += feeNotes
	return feeNotes
}

// MarshalBinary serializes the pool to a fixed-size record prefixed by an
// 8-byte discriminator (spec.md §6). Hand-written rather than routed
// through codec.BinaryCodec/protobuf since no codegen step is available
// here; see DESIGN.md.
func (p Pool) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	putUint64(&buf, poolDiscriminator)
	putID(&buf, p.UnderlyingID)
	putID(&buf, p.DepositNoteID)
	putID(&buf, p.LoanNoteID)
	putID(&buf, p.VaultID)
	putID(&buf, p.FeeDestinationID)
	putID(&buf, p.OracleID)
	putUint64(&buf, p.DepositTokens)
	putUint64(&buf, p.DepositNotes)
	putUint64(&buf, p.LoanNotes)
	if err := putFixed(&buf, p.BorrowedTokens); err != nil {
		return nil, fmt.Errorf("Pool.MarshalBinary: %w", err)
	}
	if err := putFixed(&buf, p.UncollectedFees); err != nil {
		return nil, fmt.Errorf("Pool.MarshalBinary: %w", err)
	}
	putInt64(&buf, p.AccruedUntil)
	putUint16(&buf, uint16(p.Config.Flags))
	putUint16(&buf, p.Config.UtilizationRate1)
	putUint16(&buf, p.Config.UtilizationRate2)
	putUint16(&buf, p.Config.BorrowRate0)
	putUint16(&buf, p.Config.BorrowRate1)
	putUint16(&buf, p.Config.BorrowRate2)
	putUint16(&buf, p.Config.BorrowRate3)
	putUint16(&buf, p.Config.FeeRateBps)
	putUint64(&buf, p.Config.FeeCollectThreshold)
	return buf.Bytes(), nil
}

// UnmarshalBinary reverses MarshalBinary, checking the discriminator first.
func (p *Pool) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := checkDiscriminator(r, poolDiscriminator); err != nil {
		return fmt.Errorf("Pool.UnmarshalBinary: %w", err)
	}

	for _, id := range []*ID{&p.UnderlyingID, &p.DepositNoteID, &p.LoanNoteID, &p.VaultID, &p.FeeDestinationID, &p.OracleID} {
		if err := getID(r, id); err != nil {
			return fmt.Errorf("Pool.UnmarshalBinary: %w", err)
		}
	}
	if err := getUint64(r, &p.DepositTokens); err != nil {
		return err
	}
	if err := getUint64(r, &p.DepositNotes); err != nil {
		return err
	}
	if err := getUint64(r, &p.LoanNotes); err != nil {
		return err
	}
	if err := getFixed(r, &p.BorrowedTokens); err != nil {
		return err
	}
	if err := getFixed(r, &p.UncollectedFees); err != nil {
		return err
	}
	if err := getInt64(r, &p.AccruedUntil); err != nil {
		return err
	}

	var flags uint16
	if err := getUint16(r, &flags); err != nil {
		return err
	}
	p.Config.Flags = PoolFlags(flags)
	for _, field := range []*uint16{
		&p.Config.UtilizationRate1, &p.Config.UtilizationRate2,
		&p.Config.BorrowRate0, &p.Config.BorrowRate1, &p.Config.BorrowRate2, &p.Config.BorrowRate3,
		&p.Config.FeeRateBps,
	} {
		if err := getUint16(r, field); err != nil {
			return err
		}
	}
	return getUint64(r, &p.Config.FeeCollectThreshold)
}
