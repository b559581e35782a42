package service

import (
	"context"
	"database/sql"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satorioh/dashop/internal/cache"
	"github.com/satorioh/dashop/internal/entity"
)

type fakeCatalog struct {
	skus map[int]*entity.SKU
}

func (f *fakeCatalog) GetSKU(_ context.Context, id int) (*entity.SKU, error) {
	sku, ok := f.skus[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sku
	return &cp, nil
}

func (f *fakeCatalog) GetSKUsByIDs(_ context.Context, ids []int) ([]*entity.SKU, error) {
	sort.Ints(ids)
	var out []*entity.SKU
	for _, id := range ids {
		if sku, ok := f.skus[id]; ok {
			cp := *sku
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newCartFixture() (*CartService, *cache.MemoryStore, *fakeCatalog) {
	carts := cache.NewMemoryStore()
	catalog := &fakeCatalog{skus: map[int]*entity.SKU{
		1: {ID: 1, Name: "mug", Price: 9.5, Stock: 10, IsLaunched: true},
		2: {ID: 2, Name: "shirt", Price: 25, Stock: 3, IsLaunched: true},
	}}
	return NewCartService(carts, catalog), carts, catalog
}

func TestAddCreatesSelectedEntry(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newCartFixture()

	count, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	cart, _ := carts.Get(ctx, 1)
	assert.Equal(t, entity.CartEntry{Quantity: 3, Selected: true}, cart["1"])
}

func TestAddIncrementsAndDeselectsOthers(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newCartFixture()

	_, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, 2, 5)
	require.NoError(t, err)
	count, err := svc.Add(ctx, 1, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	cart, _ := carts.Get(ctx, 1)
	// Repeat add accumulates quantity; only the last-touched item stays
	// selected.
	assert.Equal(t, entity.CartEntry{Quantity: 5, Selected: true}, cart["1"])
	assert.Equal(t, entity.CartEntry{Quantity: 5, Selected: false}, cart["2"])
}

func TestAddRejectsOverfullCart(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newCartFixture()

	full := entity.Cart{}
	for i := 1; i <= entity.MaxCartItems; i++ {
		full[strconv.Itoa(i)] = entity.CartEntry{Quantity: 1}
	}
	require.NoError(t, carts.Put(ctx, 1, full))

	_, err := svc.Add(ctx, 1, 999, 1)
	assert.ErrorIs(t, err, ErrCartFull)

	// Topping up an item already in a full cart is still allowed.
	_, err = svc.Add(ctx, 1, 50, 1)
	assert.NoError(t, err)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newCartFixture()

	_, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)

	count, err := svc.Remove(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	cart, _ := carts.Get(ctx, 1)
	assert.Empty(t, cart)

	_, err = svc.Remove(ctx, 1, 1)
	assert.ErrorIs(t, err, ErrCartItemNotFound)
}

func TestUpdateStates(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newCartFixture()

	_, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, 2, 5)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, 1, 1, CartStateAdd))
	require.NoError(t, svc.Update(ctx, 1, 2, CartStateDel))
	require.NoError(t, svc.Update(ctx, 1, 1, CartStateSelect))
	cart, _ := carts.Get(ctx, 1)
	assert.Equal(t, entity.CartEntry{Quantity: 4, Selected: true}, cart["1"])
	assert.Equal(t, entity.CartEntry{Quantity: 4, Selected: true}, cart["2"])

	require.NoError(t, svc.Update(ctx, 1, 0, CartStateUnselectAll))
	cart, _ = carts.Get(ctx, 1)
	assert.False(t, cart["1"].Selected)
	assert.False(t, cart["2"].Selected)

	require.NoError(t, svc.Update(ctx, 1, 0, CartStateSelectAll))
	cart, _ = carts.Get(ctx, 1)
	assert.True(t, cart["1"].Selected)
	assert.True(t, cart["2"].Selected)

	require.NoError(t, svc.Update(ctx, 1, 2, CartStateUnselect))
	cart, _ = carts.Get(ctx, 1)
	assert.True(t, cart["1"].Selected)
	assert.False(t, cart["2"].Selected)
}

func TestUpdateDelFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	svc, carts, _ := newCartFixture()

	_, err := svc.Add(ctx, 1, 1, 1)
	require.NoError(t, err)

	require.NoError(t, svc.Update(ctx, 1, 1, CartStateDel))
	cart, _ := carts.Get(ctx, 1)
	assert.Equal(t, 0, cart["1"].Quantity)

	// Decrementing past empty stays at zero.
	require.NoError(t, svc.Update(ctx, 1, 1, CartStateDel))
	cart, _ = carts.Get(ctx, 1)
	assert.Equal(t, 0, cart["1"].Quantity)
}

func TestUpdateErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCartFixture()

	_, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Update(ctx, 1, 99, CartStateAdd), ErrUnknownCartItem)
	assert.ErrorIs(t, svc.Update(ctx, 1, 1, "explode"), ErrBadCartState)
}

func TestListJoinsCatalog(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newCartFixture()

	_, err := svc.Add(ctx, 1, 1, 3)
	require.NoError(t, err)
	_, err = svc.Add(ctx, 1, 2, 5)
	require.NoError(t, err)

	lines, err := svc.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, 1, lines[0].SkuID)
	assert.Equal(t, 3, lines[0].Count)
	assert.False(t, lines[0].Selected)
	assert.Equal(t, 9.5, lines[0].Price)

	assert.Equal(t, 2, lines[1].SkuID)
	assert.Equal(t, 5, lines[1].Count)
	assert.True(t, lines[1].Selected)
}
