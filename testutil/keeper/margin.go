package keeper

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/marginchain/core/x/margin/keeper"
	"github.com/marginchain/core/x/margin/types"
)

// MockLedger is an in-memory TokenLedger fake keyed by holding id string,
// standing in for the thin outer layer that actually moves tokens (spec.md
// §1 Non-goals).
type MockLedger struct {
	Balances map[string]uint64
}

func NewMockLedger() *MockLedger {
	return &MockLedger{Balances: make(map[string]uint64)}
}

func (m *MockLedger) BalanceOf(ctx context.Context, holdingID string) (uint64, error) {
	return m.Balances[holdingID], nil
}

func (m *MockLedger) Transfer(ctx context.Context, from, to, authority string, amount uint64) error {
	m.Balances[from] -= amount
	m.Balances[to] += amount
	return nil
}

func (m *MockLedger) Mint(ctx context.Context, to, authority string, amount uint64) error {
	m.Balances[to] += amount
	return nil
}

func (m *MockLedger) Burn(ctx context.Context, from, authority string, amount uint64) error {
	m.Balances[from] -= amount
	return nil
}

// MockOracle is an in-memory PriceOracle fake keyed by underlying id string.
type MockOracle struct {
	Prices map[string]types.RawPrice
}

func NewMockOracle() *MockOracle {
	return &MockOracle{Prices: make(map[string]types.RawPrice)}
}

func (m *MockOracle) GetPrice(ctx context.Context, underlyingID string) (types.RawPrice, error) {
	return m.Prices[underlyingID], nil
}

// MockRegistry is an in-memory MetadataRegistry fake.
type MockRegistry struct {
	Assets      map[string]types.AssetMetadata
	Adapters    map[string]bool
	Liquidators map[string]bool
}

func NewMockRegistry() *MockRegistry {
	return &MockRegistry{
		Assets:      make(map[string]types.AssetMetadata),
		Adapters:    make(map[string]bool),
		Liquidators: make(map[string]bool),
	}
}

func (m *MockRegistry) AssetMetadata(ctx context.Context, assetID string) (types.AssetMetadata, error) {
	return m.Assets[assetID], nil
}

func (m *MockRegistry) IsAllowedAdapter(ctx context.Context, adapterID string) bool {
	return m.Adapters[adapterID]
}

func (m *MockRegistry) IsAllowedLiquidator(ctx context.Context, liquidatorID string) bool {
	return m.Liquidators[liquidatorID]
}

// MockAdapter is an in-memory AdapterProgram fake whose result is set by the
// test before invoking a Keeper method that dispatches to it.
type MockAdapter struct {
	ID     types.ID
	Result *types.AdapterResult
	Err    error
}

func (m *MockAdapter) Invoke(ctx context.Context, accountID string, accounts []string, data []byte) (*types.AdapterResult, error) {
	return m.Result, m.Err
}

// MarginKeeper builds an in-memory margin Keeper and sdk.Context the way
// testutil/keeper/dex.go builds x/dex's, with mock TokenLedger/PriceOracle/
// MetadataRegistry collaborators rather than a mock bank keeper.
func MarginKeeper(t testing.TB) (*keeper.Keeper, sdk.Context, *MockLedger, *MockOracle, *MockRegistry) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	ledger := NewMockLedger()
	oracle := NewMockOracle()
	registry := NewMockRegistry()

	k := keeper.NewKeeper(storeKey, log.NewNopLogger(), ledger, oracle, registry, types.DefaultAuthority())

	header := cmtproto.Header{Time: time.Unix(1_700_000_000, 0)}
	ctx := sdk.NewContext(stateStore, header, false, log.NewNopLogger())

	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, ctx, ledger, oracle, registry
}
