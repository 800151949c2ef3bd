package types

import "context"

// TokenLedger is the external collaborator that actually moves tokens.
// The core never transfers value itself (spec.md §1 Non-goals); it requests
// effects through this interface and a thin outer layer performs them,
// mirroring the shape of x/dex/types/expected_keepers.go's BankKeeper.
type TokenLedger interface {
	BalanceOf(ctx context.Context, holdingID string) (uint64, error)
	Transfer(ctx context.Context, from, to, authority string, amount uint64) error
	Mint(ctx context.Context, to, authority string, amount uint64) error
	Burn(ctx context.Context, from, authority string, amount uint64) error
}

// PriceOracle yields raw price quotes for an underlying asset. The core
// never computes prices itself; it only gates on confidence and staleness.
type PriceOracle interface {
	GetPrice(ctx context.Context, underlyingID string) (RawPrice, error)
}

// MetadataRegistry supplies per-asset collateral configuration and the
// adapter/liquidator allowlists.
type MetadataRegistry interface {
	AssetMetadata(ctx context.Context, assetID string) (AssetMetadata, error)
	IsAllowedAdapter(ctx context.Context, adapterID string) bool
	IsAllowedLiquidator(ctx context.Context, liquidatorID string) bool
}

// AdapterProgram is the opaque collaborator invoked during AdapterInvoke,
// AccountingInvoke, and LiquidatorInvoke. It is a black box from the core's
// point of view (spec.md §1): it receives an account list and payload and
// may return position changes.
type AdapterProgram interface {
	Invoke(ctx context.Context, accountID string, accounts []string, data []byte) (*AdapterResult, error)
}

// RawPrice is a price quote as reported by a PriceOracle, prior to the
// confidence/staleness gate that turns it into a PriceInfo.
type RawPrice struct {
	Value       int64
	Confidence  uint64
	Twap        int64
	PublishTime int64
	Exponent    int32
}

// AssetMetadata is the per-asset collateral configuration a MetadataRegistry
// supplies when a position is registered.
type AssetMetadata struct {
	AdapterID              string
	TokenKind              PositionKind
	CollateralWeightBps    uint16
	CollateralMaxStaleness int64
}
