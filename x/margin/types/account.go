package types

import (
	"bytes"
	"fmt"
)

const marginAccountDiscriminator uint64 = 0x4d415243434f554e // "MARCCOUN"

// MarginAccount is a cross-collateral position manager owned by a single
// user (spec.md §3). Its position store is embedded inline rather than
// addressed through separate store rows, matching original_source's
// zero-copy account layout.
type MarginAccount struct {
	OwnerID ID
	Seed    uint16
	Bump    uint8

	// LiquidationID/LiquidatorID are the zero ID when the account is not
	// under liquidation.
	LiquidationID ID
	LiquidatorID  ID

	Positions PositionStore
}

// NewMarginAccount constructs a fresh account owned by ownerID with seed,
// no positions registered, and no active liquidation.
func NewMarginAccount(ownerID ID, seed uint16, bump uint8) MarginAccount {
	return MarginAccount{OwnerID: ownerID, Seed: seed, Bump: bump}
}

// HasAuthority reports whether id may mutate this account's positions
// (spec.md §4.4): the owner always may; the recorded liquidator may only
// while a liquidation is active, since LiquidatorID is the zero ID
// otherwise and will not match any real identifier.
func (a MarginAccount) HasAuthority(id ID) bool {
	return id == a.OwnerID || (!a.LiquidatorID.IsZero() && id == a.LiquidatorID)
}

// IsLiquidating reports whether the account currently has an active
// liquidation.
func (a MarginAccount) IsLiquidating() bool {
	return !a.LiquidationID.IsZero()
}

// StartLiquidation records a new liquidation, rejecting a second
// concurrent one.
func (a *MarginAccount) StartLiquidation(liquidationID, liquidatorID ID) error {
	if a.IsLiquidating() {
		return ErrLiquidating
	}
	a.LiquidationID = liquidationID
	a.LiquidatorID = liquidatorID
	return nil
}

// EndLiquidation clears the active liquidation markers.
func (a *MarginAccount) EndLiquidation() {
	a.LiquidationID = ID{}
	a.LiquidatorID = ID{}
}

// IsEmpty reports whether the account has no registered positions, the
// only state in which CloseAccount may succeed (spec.md §3 lifecycle).
func (a MarginAccount) IsEmpty() bool {
	return a.Positions.Length == 0
}

// MarshalBinary serializes the account to a fixed-size record prefixed by
// an 8-byte discriminator (spec.md §6).
func (a MarginAccount) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	putUint64(&buf, marginAccountDiscriminator)
	putID(&buf, a.OwnerID)
	putUint16(&buf, a.Seed)
	buf.WriteByte(a.Bump)
	putID(&buf, a.LiquidationID)
	putID(&buf, a.LiquidatorID)

	putUint64(&buf, uint64(a.Positions.Length))
	for i := range a.Positions.Keys {
		putID(&buf, a.Positions.Keys[i].AssetID)
		putUint64(&buf, uint64(a.Positions.Keys[i].Index))
	}
	for i := range a.Positions.Slots {
		if err := putPosition(&buf, a.Positions.Slots[i]); err != nil {
			return nil, fmt.Errorf("MarginAccount.MarshalBinary: %w", err)
		}
	}

	return buf.Bytes(), nil
}

// UnmarshalBinary reverses MarshalBinary, checking the discriminator first.
func (a *MarginAccount) UnmarshalBinary(data []byte) error {
	r := bytes.NewReader(data)
	if err := checkDiscriminator(r, marginAccountDiscriminator); err != nil {
		return fmt.Errorf("MarginAccount.UnmarshalBinary: %w", err)
	}

	if err := getID(r, &a.OwnerID); err != nil {
		return err
	}
	if err := getUint16(r, &a.Seed); err != nil {
		return err
	}
	if err := readByte(r, &a.Bump); err != nil {
		return err
	}
	if err := getID(r, &a.LiquidationID); err != nil {
		return err
	}
	if err := getID(r, &a.LiquidatorID); err != nil {
		return err
	}

	var length uint64
	if err := getUint64(r, &length); err != nil {
		return err
	}
	a.Positions.Length = int(length)

	for i := range a.Positions.Keys {
		if err := getID(r, &a.Positions.Keys[i].AssetID); err != nil {
			return err
		}
		var idx uint64
		if err := getUint64(r, &idx); err != nil {
			return err
		}
		a.Positions.Keys[i].Index = int(idx)
	}
	for i := range a.Positions.Slots {
		if err := getPosition(r, &a.Positions.Slots[i]); err != nil {
			return fmt.Errorf("MarginAccount.UnmarshalBinary: position %d: %w", i, err)
		}
	}

	return nil
}
