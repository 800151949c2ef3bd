package types

import (
	"bytes"
	"fmt"
	"io"
)

// PositionKind distinguishes what a position's balance means when folded
// into a valuation (spec.md §3, §4.4).
type PositionKind int

const (
	PositionNoValue PositionKind = iota
	PositionDeposit
	PositionClaim
)

// PositionFlags are per-position behavior bits.
type PositionFlags uint16

const (
	// PositionFlagRequired marks a position that cannot be removed by
	// ClosePosition even at a zero balance (spec.md §3).
	PositionFlagRequired PositionFlags = 1 << 0

	// PositionFlagPastDue marks a claim that demands immediate repayment;
	// its presence alone can flip an otherwise-healthy account unhealthy
	// (spec.md §4.4, scenario D).
	PositionFlagPastDue PositionFlags = 1 << 1
)

func (f PositionFlags) Has(flag PositionFlags) bool { return f&flag != 0 }
func (f PositionFlags) Set(flag PositionFlags) PositionFlags {
	return f | flag
}
func (f PositionFlags) Clear(flag PositionFlags) PositionFlags {
	return f &^ flag
}

// PriceInfo is a position's ingested price, already passed through the
// confidence/staleness gate (spec.md §4.4 "Price ingestion").
type PriceInfo struct {
	Value     int64
	Exponent  int32
	Timestamp int64
	Valid     bool
}

// IngestPrice converts a raw oracle quote into a PriceInfo: valid only if
// the confidence-to-twap ratio is within bound and the quote is not already
// stale at publish time (spec.md §4.4). twap == 0 is treated as invalid
// confidence data rather than dividing by zero.
func IngestPrice(raw RawPrice, now int64) PriceInfo {
	valid := raw.Twap != 0 &&
		raw.Confidence*uint64(BasisPointsDenominator) <= uint64(absInt64(raw.Twap))*uint64(MaxOracleConfidenceBps) &&
		now-raw.PublishTime <= MaxOracleStalenessSeconds

	return PriceInfo{
		Value:     raw.Value,
		Exponent:  raw.Exponent,
		Timestamp: raw.PublishTime,
		Valid:     valid,
	}
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

// Position is one slot in a margin account's position store (spec.md §3).
type Position struct {
	AssetID    ID
	HoldingID  ID
	AdapterID  ID
	Balance    uint64
	BalanceTS  int64
	Price      PriceInfo
	Kind       PositionKind
	Exponent   int32

	CollateralWeightBps    uint16
	CollateralMaxStaleness int64

	Flags PositionFlags
}

func (p Position) isDefault() bool {
	return p.AssetID.IsZero()
}

// StaleReason identifies why a position's value cannot be trusted right
// now, in the priority order spec.md §4.4 specifies.
type StaleReason int

const (
	StaleReasonNone StaleReason = iota
	StaleReasonInvalidPrice
	StaleReasonOutdatedBalance
	StaleReasonOutdatedPrice
)

// Stale evaluates a position's staleness against now, checking reasons in
// the priority order spec.md §4.4 lists: an invalid price outranks an
// outdated balance, which outranks an outdated price quote.
func (p Position) Stale(now int64) StaleReason {
	if !p.Price.Valid {
		return StaleReasonInvalidPrice
	}
	if p.CollateralMaxStaleness > 0 && now-p.BalanceTS > p.CollateralMaxStaleness {
		return StaleReasonOutdatedBalance
	}
	if now-p.Price.Timestamp > MaxPriceQuoteAgeSeconds {
		return StaleReasonOutdatedPrice
	}
	return StaleReasonNone
}

// Err maps a StaleReason to its sentinel error.
func (r StaleReason) Err() error {
	switch r {
	case StaleReasonInvalidPrice:
		return ErrInvalidPrice
	case StaleReasonOutdatedBalance:
		return ErrOutdatedBalance
	case StaleReasonOutdatedPrice:
		return ErrOutdatedPrice
	default:
		return nil
	}
}

// putPosition/getPosition serialize one fixed-size Position slot as part of
// a MarginAccount record (spec.md §6's position table).
func putPosition(buf *bytes.Buffer, p Position) error {
	putID(buf, p.AssetID)
	putID(buf, p.HoldingID)
	putID(buf, p.AdapterID)
	putUint64(buf, p.Balance)
	putInt64(buf, p.BalanceTS)
	putInt64(buf, p.Price.Value)
	buf.WriteByte(byte(int8(p.Price.Exponent)))
	putInt64(buf, p.Price.Timestamp)
	if p.Price.Valid {
		buf.WriteByte(1)
	} else {
		buf.WriteByte(0)
	}
	buf.WriteByte(byte(p.Kind))
	buf.WriteByte(byte(int8(p.Exponent)))
	putUint16(buf, p.CollateralWeightBps)
	putInt64(buf, p.CollateralMaxStaleness)
	putUint16(buf, uint16(p.Flags))
	return nil
}

func getPosition(r *bytes.Reader, out *Position) error {
	if err := getID(r, &out.AssetID); err != nil {
		return err
	}
	if err := getID(r, &out.HoldingID); err != nil {
		return err
	}
	if err := getID(r, &out.AdapterID); err != nil {
		return err
	}
	if err := getUint64(r, &out.Balance); err != nil {
		return err
	}
	if err := getInt64(r, &out.BalanceTS); err != nil {
		return err
	}
	if err := getInt64(r, &out.Price.Value); err != nil {
		return err
	}

	var expoByte byte
	if err := readByte(r, &expoByte); err != nil {
		return err
	}
	out.Price.Exponent = int32(int8(expoByte))

	if err := getInt64(r, &out.Price.Timestamp); err != nil {
		return err
	}

	var validByte byte
	if err := readByte(r, &validByte); err != nil {
		return err
	}
	out.Price.Valid = validByte != 0

	var kindByte byte
	if err := readByte(r, &kindByte); err != nil {
		return err
	}
	out.Kind = PositionKind(kindByte)

	var exponentByte byte
	if err := readByte(r, &exponentByte); err != nil {
		return err
	}
	out.Exponent = int32(int8(exponentByte))

	if err := getUint16(r, &out.CollateralWeightBps); err != nil {
		return err
	}
	if err := getInt64(r, &out.CollateralMaxStaleness); err != nil {
		return err
	}

	var flags uint16
	if err := getUint16(r, &flags); err != nil {
		return err
	}
	out.Flags = PositionFlags(flags)

	return nil
}

func readByte(r *bytes.Reader, out *byte) error {
	var tmp [1]byte
	if _, err := io.ReadFull(r, tmp[:]); err != nil {
		return fmt.Errorf("readByte: %w", err)
	}
	*out = tmp[0]
	return nil
}
