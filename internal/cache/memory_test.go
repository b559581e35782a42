package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satorioh/dashop/internal/entity"
)

func TestGetAbsentUserReturnsEmptyCart(t *testing.T) {
	store := NewMemoryStore()

	cart, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	require.NotNil(t, cart)
	assert.Empty(t, cart)

	// Repeated reads without an intervening Put stay identical.
	again, err := store.Get(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, cart, again)
}

func TestPutOverwritesWholeMapping(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, 1, entity.Cart{
		"1": {Quantity: 3, Selected: true},
		"2": {Quantity: 5, Selected: false},
	}))
	require.NoError(t, store.Put(ctx, 1, entity.Cart{
		"2": {Quantity: 5, Selected: false},
	}))

	cart, err := store.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, entity.Cart{"2": {Quantity: 5, Selected: false}}, cart)
}

func TestCallersNeverShareStateWithStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	original := entity.Cart{"7": {Quantity: 1, Selected: true}}
	require.NoError(t, store.Put(ctx, 9, original))

	// Mutating what was put or what was read must not leak into the store.
	original["7"] = entity.CartEntry{Quantity: 99, Selected: false}
	read, err := store.Get(ctx, 9)
	require.NoError(t, err)
	read["8"] = entity.CartEntry{Quantity: 2}

	cart, err := store.Get(ctx, 9)
	require.NoError(t, err)
	assert.Equal(t, entity.Cart{"7": {Quantity: 1, Selected: true}}, cart)
}

func TestCartsAreIsolatedPerUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, 1, entity.Cart{"1": {Quantity: 1, Selected: true}}))

	other, err := store.Get(ctx, 2)
	require.NoError(t, err)
	assert.Empty(t, other)
}
