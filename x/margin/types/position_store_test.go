package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func assetID(b byte) ID {
	var id ID
	id[0] = b
	return id
}

func TestPositionStore_AddGetRemove(t *testing.T) {
	var store PositionStore

	a, b, c := assetID(1), assetID(2), assetID(3)

	posA, err := store.Add(a)
	require.NoError(t, err)
	posA.HoldingID = assetID(10)

	posB, err := store.Add(b)
	require.NoError(t, err)
	posB.HoldingID = assetID(20)

	got, ok := store.Get(a)
	require.True(t, ok)
	require.Equal(t, posA.HoldingID, got.HoldingID)

	_, ok = store.Get(c)
	require.False(t, ok)

	_, err = store.Add(a)
	require.ErrorIs(t, err, ErrPositionAlreadyRegistered)

	removed, err := store.Remove(a, assetID(10))
	require.NoError(t, err)
	require.Equal(t, a, removed.AssetID)

	_, ok = store.Get(a)
	require.False(t, ok)
}

func TestPositionStore_RemoveWrongHolding(t *testing.T) {
	var store PositionStore
	a := assetID(1)
	pos, err := store.Add(a)
	require.NoError(t, err)
	pos.HoldingID = assetID(10)

	_, err = store.Remove(a, assetID(99))
	require.ErrorIs(t, err, ErrPositionNotRegistered)
}

func TestPositionStore_MaxPositions(t *testing.T) {
	var store PositionStore
	for i := 0; i < MaxPositionSlots; i++ {
		_, err := store.Add(assetID(byte(i + 1)))
		require.NoError(t, err)
	}
	_, err := store.Add(assetID(200))
	require.ErrorIs(t, err, ErrMaxPositions)
}

// TestProperty_PositionStoreInvariant checks spec.md §8 invariant 6: length
// equals the count of non-default slots, and the active key prefix stays
// sorted by asset_id after every mutation.
func TestProperty_PositionStoreInvariant(t *testing.T) {
	var store PositionStore

	ids := []ID{assetID(5), assetID(1), assetID(9), assetID(3)}
	for _, id := range ids {
		_, err := store.Add(id)
		require.NoError(t, err)
	}

	nonDefault := 0
	for i := range store.Slots {
		if !store.Slots[i].isDefault() {
			nonDefault++
		}
	}
	require.Equal(t, store.Length, nonDefault)

	for i := 1; i < store.Length; i++ {
		require.LessOrEqual(t, store.Keys[i-1].AssetID.String(), store.Keys[i].AssetID.String())
	}

	_, err := store.Remove(assetID(1), ID{})
	require.NoError(t, err)

	nonDefault = 0
	for i := range store.Slots {
		if !store.Slots[i].isDefault() {
			nonDefault++
		}
	}
	require.Equal(t, store.Length, nonDefault)
	for i := 1; i < store.Length; i++ {
		require.LessOrEqual(t, store.Keys[i-1].AssetID.String(), store.Keys[i].AssetID.String())
	}
}
