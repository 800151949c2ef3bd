package types

// ChangeKind tags the closed sum of position mutations an adapter may
// request (spec.md §4.5, §9 design notes: "no dynamic dispatch /
// inheritance... callers deserialize and pattern-match").
type ChangeKind int

const (
	ChangePrice ChangeKind = iota
	ChangeFlags
	ChangeExpect
)

// PriceChangeInfo is a price report an adapter pushes for a position it is
// authorized to price.
type PriceChangeInfo struct {
	PublishTime int64
	Exponent    int32
	Value       int64
	Confidence  uint64
	Twap        int64
}

// PositionChange is one entry of an adapter's requested mutation to a
// single position (spec.md §4.5):
//   - Price: update the position's price, only if the position's registered
//     adapter matches the returning program.
//   - Flags: OR (Set) or AND-NOT (Clear) a bitmask into the position's flags.
//   - Expect: assert the position exists with the given holding_id, without
//     mutating anything — the adapter's way of confirming state it assumes.
type PositionChange struct {
	Kind ChangeKind

	Price PriceChangeInfo

	FlagsMask PositionFlags
	FlagsSet  bool

	ExpectHoldingID ID
}

// PriceChange constructs a Price-kind PositionChange.
func PriceChange(info PriceChangeInfo) PositionChange {
	return PositionChange{Kind: ChangePrice, Price: info}
}

// SetFlagsChange constructs a Flags-kind change that ORs mask in.
func SetFlagsChange(mask PositionFlags) PositionChange {
	return PositionChange{Kind: ChangeFlags, FlagsMask: mask, FlagsSet: true}
}

// ClearFlagsChange constructs a Flags-kind change that AND-NOTs mask out.
func ClearFlagsChange(mask PositionFlags) PositionChange {
	return PositionChange{Kind: ChangeFlags, FlagsMask: mask, FlagsSet: false}
}

// ExpectChange constructs an Expect-kind change asserting a holding_id.
func ExpectChange(holdingID ID) PositionChange {
	return PositionChange{Kind: ChangeExpect, ExpectHoldingID: holdingID}
}

// AssetPositionChanges pairs an asset_id with the ordered list of changes
// an adapter requested for it, preserving original_source's Vec<(Pubkey,
// Vec<PositionChange>)> ordering rather than a map's unordered iteration.
type AssetPositionChanges struct {
	AssetID ID
	Changes []PositionChange
}

// AdapterResult is the payload an AdapterProgram returns from Invoke
// (spec.md §4.5). ProgramID identifies the program that actually produced
// the result, checked against the invoked adapter before application.
type AdapterResult struct {
	ProgramID       ID
	PositionChanges []AssetPositionChanges
}
