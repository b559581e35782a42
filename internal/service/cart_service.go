package service

import (
	"context"
	"os"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/satorioh/dashop/internal/cache"
	"github.com/satorioh/dashop/internal/entity"
	"github.com/satorioh/dashop/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Cart update states accepted by Update.
const (
	CartStateAdd         = "add"
	CartStateDel         = "del"
	CartStateSelect      = "select"
	CartStateUnselect    = "unselect"
	CartStateSelectAll   = "selectall"
	CartStateUnselectAll = "unselectall"
)

// CartService owns the ephemeral cart. Every mutation is a full
// read-modify-write of the user's mapping; two concurrent writers for the
// same user are last-write-wins. That window is an accepted trade-off of
// the narrow Get/Put store contract.
type CartService struct {
	carts   cache.Store
	catalog repository.Catalog
}

func NewCartService(carts cache.Store, catalog repository.Catalog) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

// Add puts count more units of a sku into the cart and returns the number
// of distinct items afterwards. The touched item becomes selected and every
// other item is deselected: only the most recently added item stays picked
// for checkout. That single-selection bias is the documented behavior of
// the cart API, odd as it looks next to the explicit select states below.
func (s *CartService) Add(ctx context.Context, userID, skuID, count int) (int, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	key := strconv.Itoa(skuID)
	if _, ok := cart[key]; !ok && len(cart) >= entity.MaxCartItems {
		return 0, ErrCartFull
	}

	entry := cart[key]
	entry.Quantity += count
	entry.Selected = true
	cart[key] = entry

	for id, other := range cart {
		if id != key {
			other.Selected = false
			cart[id] = other
		}
	}

	if err := s.carts.Put(ctx, userID, cart); err != nil {
		return 0, err
	}
	return len(cart), nil
}

// List joins the cart with catalog rows for display.
func (s *CartService) List(ctx context.Context, userID int) ([]entity.CartLine, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	skus, err := s.catalog.GetSKUsByIDs(ctx, cartSkuIDs(cart))
	if err != nil {
		return nil, err
	}

	lines := make([]entity.CartLine, 0, len(skus))
	for _, sku := range skus {
		entry := cart[strconv.Itoa(sku.ID)]
		lines = append(lines, entity.CartLine{
			SkuID:           sku.ID,
			Name:            sku.Name,
			Count:           entry.Quantity,
			Selected:        entry.Selected,
			Price:           sku.Price,
			DefaultImageURL: sku.DefaultImageURL,
			SaleAttrs:       sku.SaleAttrs,
		})
	}
	return lines, nil
}

// Remove drops a sku from the cart entirely.
func (s *CartService) Remove(ctx context.Context, userID, skuID int) (int, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return 0, err
	}

	key := strconv.Itoa(skuID)
	if _, ok := cart[key]; !ok {
		return 0, ErrCartItemNotFound
	}
	delete(cart, key)

	if err := s.carts.Put(ctx, userID, cart); err != nil {
		return 0, err
	}
	return len(cart), nil
}

// Update applies one of the cart states: quantity +1/-1, per-item
// selection, or select/deselect all.
func (s *CartService) Update(ctx context.Context, userID, skuID int, state string) error {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return err
	}

	key := strconv.Itoa(skuID)
	perItem := state == CartStateAdd || state == CartStateDel ||
		state == CartStateSelect || state == CartStateUnselect
	if perItem {
		if _, ok := cart[key]; !ok {
			return ErrUnknownCartItem
		}
	}

	switch state {
	case CartStateAdd:
		entry := cart[key]
		entry.Quantity++
		cart[key] = entry
	case CartStateDel:
		entry := cart[key]
		if entry.Quantity > 0 {
			entry.Quantity--
		}
		cart[key] = entry
	case CartStateSelect:
		entry := cart[key]
		entry.Selected = true
		cart[key] = entry
	case CartStateUnselect:
		entry := cart[key]
		entry.Selected = false
		cart[key] = entry
	case CartStateSelectAll:
		for id, entry := range cart {
			entry.Selected = true
			cart[id] = entry
		}
	case CartStateUnselectAll:
		for id, entry := range cart {
			entry.Selected = false
			cart[id] = entry
		}
	default:
		return ErrBadCartState
	}

	return s.carts.Put(ctx, userID, cart)
}

func cartSkuIDs(cart entity.Cart) []int {
	ids := make([]int, 0, len(cart))
	for key := range cart {
		id, err := strconv.Atoi(key)
		if err != nil {
			logger.Warn().Msgf("skipping malformed cart key %q", key)
			continue
		}
		ids = append(ids, id)
	}
	return ids
}
