package types

const (
	// ModuleName defines the module name used for routing and store
	// namespacing.
	ModuleName = "margin"

	// StoreKey defines the primary module store key.
	StoreKey = ModuleName
)

// KeyPrefix turns a human-readable prefix into the byte prefix used to
// namespace a record kind within the module store.
func KeyPrefix(p string) []byte {
	return []byte(p)
}

const (
	// PoolKeyPrefix namespaces pool records, keyed by underlying_id.
	PoolKeyPrefix = "Pool/value/"

	// AccountKeyPrefix namespaces margin account records, keyed by
	// owner_id + seed.
	AccountKeyPrefix = "Account/value/"

	// LiquidationKeyPrefix namespaces liquidation records, keyed by
	// liquidation_id.
	LiquidationKeyPrefix = "Liquidation/value/"

	// ParamsKey stores the single module Params record.
	ParamsKey = "Params/value/"
)

// DefaultAuthority returns the default module authority identifier used
// when no governance-style authority has been configured.
func DefaultAuthority() string {
	return ModuleName
}

// AccountKey builds the store key for a margin account from its owner and
// seed, matching the identity fields spec.md §3 assigns to MarginAccount.
func AccountKey(ownerID string, seed uint16) []byte {
	key := []byte(AccountKeyPrefix + ownerID + "/")
	return append(key, byte(seed>>8), byte(seed))
}
