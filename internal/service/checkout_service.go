package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strconv"
	"time"

	"github.com/satorioh/dashop/internal/cache"
	"github.com/satorioh/dashop/internal/entity"
	"github.com/satorioh/dashop/internal/payment"
	"github.com/satorioh/dashop/internal/repository"
)

// Settlement modes carried by the API since the first release.
const (
	ModeCart   = "0"
	ModeBuyNow = "1"
)

// OrderNotifier dispatches the order confirmation. Implementations must
// not fail the commit: delivery is best-effort.
type OrderNotifier interface {
	OrderCreated(ctx context.Context, order *entity.Order)
}

// CheckoutService converts a cart (or a single buy-now item) into a
// durable order: plan the candidate lines, commit them in one database
// transaction against live stock, then reconcile the cart.
type CheckoutService struct {
	carts    cache.Store
	catalog  repository.Catalog
	store    repository.CheckoutStore
	notifier OrderNotifier
	payments payment.Gateway
}

func NewCheckoutService(carts cache.Store, catalog repository.Catalog, store repository.CheckoutStore,
	notifier OrderNotifier, payments payment.Gateway) *CheckoutService {
	return &CheckoutService{
		carts:    carts,
		catalog:  catalog,
		store:    store,
		notifier: notifier,
		payments: payments,
	}
}

// lineRef is one item the commit will attempt: the sku and how many.
type lineRef struct {
	skuID int
	count int
}

// Plan assembles the confirm page: the user's addresses (default first)
// and display snapshots of the candidate lines. Prices here are what the
// user sees; the commit re-reads them under lock, so a cart item that
// disappears from the catalog is tolerated until then.
func (s *CheckoutService) Plan(ctx context.Context, userID int, mode string, skuID, buyCount int) (*entity.CheckoutPreview, error) {
	if mode != ModeCart && mode != ModeBuyNow {
		return nil, ErrInvalidModeParam
	}

	addrs, err := s.store.ListAddresses(ctx, userID)
	if err != nil {
		return nil, err
	}

	preview := &entity.CheckoutPreview{Addresses: addrs}

	if mode == ModeBuyNow {
		if buyCount <= 0 {
			return nil, ErrInvalidCount
		}
		sku, err := s.catalog.GetSKU(ctx, skuID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ItemUnavailableError{SkuID: skuID, Code: 10402}
		}
		if err != nil {
			return nil, err
		}
		if !sku.IsLaunched {
			return nil, &ItemUnavailableError{SkuID: skuID, Code: 10402}
		}
		preview.SkuID = skuID
		preview.BuyCount = buyCount
		preview.Lines = []entity.LineItemSnapshot{snapshot(sku, buyCount)}
		return preview, nil
	}

	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	selected := cart.SelectedEntries()

	skus, err := s.catalog.GetSKUsByIDs(ctx, cartSkuIDs(selected))
	if err != nil {
		return nil, err
	}
	for _, sku := range skus {
		preview.Lines = append(preview.Lines, snapshot(sku, selected[strconv.Itoa(sku.ID)].Quantity))
	}
	return preview, nil
}

// Commit is the cart-to-order state machine. All durable writes happen in
// one transaction; any per-line failure aborts the whole attempt and
// leaves orders, order lines and inventory untouched. Cart cleanup and the
// confirmation event run after the commit and are best-effort.
func (s *CheckoutService) Commit(ctx context.Context, userID, addressID int, mode string, skuID, buyCount int) (*entity.OrderSummary, error) {
	if mode != ModeCart && mode != ModeBuyNow {
		return nil, ErrInvalidMode
	}

	addr, err := s.store.GetAddress(ctx, addressID, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrAddressNotFound
	}
	if err != nil {
		return nil, err
	}

	// Re-read the cart fresh at commit time; the confirm-page view may be
	// stale by now.
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var refs []lineRef
	if mode == ModeCart {
		for key, entry := range cart.SelectedEntries() {
			id, err := strconv.Atoi(key)
			if err != nil {
				logger.Warn().Msgf("skipping malformed cart key %q", key)
				continue
			}
			refs = append(refs, lineRef{skuID: id, count: entry.Quantity})
		}
		if len(refs) == 0 {
			return nil, ErrCartEmpty
		}
		// Lock sku rows in a fixed order so two overlapping carts cannot
		// deadlock each other.
		sort.Slice(refs, func(i, j int) bool { return refs[i].skuID < refs[j].skuID })
	} else {
		refs = []lineRef{{skuID: skuID, count: buyCount}}
	}

	// A non-positive count would turn the stock check and the decrement
	// into an inventory credit; reject before any durable write.
	for _, ref := range refs {
		if ref.count <= 0 {
			return nil, ErrInvalidCount
		}
	}

	order := &entity.Order{
		OrderID:   newOrderID(userID),
		UserID:    userID,
		Status:    entity.OrderStatusUnpaid,
		PayMethod: 1,
		Receiver:  addr.Receiver,
		Address:   addr.Address,
		Mobile:    addr.Mobile,
		Tag:       addr.Tag,
	}

	err = s.store.WithinTx(ctx, func(tx repository.CheckoutTx) error {
		id, err := tx.InsertOrder(ctx, order)
		if errors.Is(err, repository.ErrDuplicateOrderID) {
			return ErrTransactionConflict
		}
		if err != nil {
			return err
		}
		order.ID = id

		var totalAmount float64
		var totalCount int
		for _, ref := range refs {
			sku, err := tx.SKUForUpdate(ctx, ref.skuID)
			if errors.Is(err, sql.ErrNoRows) {
				return &ItemUnavailableError{SkuID: ref.skuID, Code: unavailableCode(mode)}
			}
			if err != nil {
				return err
			}
			if !sku.IsLaunched {
				return &ItemUnavailableError{SkuID: ref.skuID, Code: unavailableCode(mode)}
			}
			if ref.count > sku.Stock {
				return &InsufficientStockError{
					SkuID:     sku.ID,
					Name:      sku.Name,
					Available: sku.Stock,
					Code:      stockCode(mode),
				}
			}

			if err := tx.ApplySale(ctx, sku.ID, ref.count); err != nil {
				return err
			}

			line := entity.OrderLine{
				OrderID: id,
				SkuID:   sku.ID,
				Count:   ref.count,
				Price:   sku.Price, // server-authoritative, read under the row lock
			}
			if err := tx.InsertOrderLine(ctx, &line); err != nil {
				return err
			}
			order.Lines = append(order.Lines, line)

			totalAmount += sku.Price * float64(ref.count)
			totalCount += ref.count
		}

		if err := tx.SetOrderTotals(ctx, id, totalAmount, totalCount); err != nil {
			return err
		}
		order.TotalAmount = totalAmount
		order.TotalCount = totalCount
		return nil
	})
	if err != nil {
		return nil, err
	}

	cartsCount := len(cart)
	if mode == ModeCart {
		cartsCount = s.reconcileCart(ctx, userID, cart)
	}

	s.notifier.OrderCreated(ctx, order)

	payURL, err := s.payments.PayURL(order.OrderID, order.TotalAmount)
	if err != nil {
		logger.Error().Err(err).Msgf("payment handoff for order %s failed", order.OrderID)
	}

	return &entity.OrderSummary{
		OrderID:     order.OrderID,
		TotalAmount: order.TotalAmount,
		TotalCount:  order.TotalCount,
		CartsCount:  cartsCount,
		PayURL:      payURL,
	}, nil
}

// reconcileCart removes the just-committed (selected) items and keeps the
// rest. The cart is re-fetched immediately before the overwrite to shrink
// the lost-update window against a concurrent add; the order is already
// durable, so a failure here is logged and the cart is cleaned up on a
// later write.
func (s *CheckoutService) reconcileCart(ctx context.Context, userID int, fallback entity.Cart) int {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		logger.Error().Err(err).Msgf("cart refetch after commit failed for user %d", userID)
		cart = fallback
	}

	remaining := cart.UnselectedEntries()
	if err := s.carts.Put(ctx, userID, remaining); err != nil {
		logger.Error().Err(err).Msgf("cart reconcile after commit failed for user %d", userID)
	}
	return len(remaining)
}

// MarkPaid flips an order from unpaid to paid after the gateway confirms
// the trade. Called from the payment callback path.
func (s *CheckoutService) MarkPaid(ctx context.Context, orderID, tradeNo string) error {
	status, err := s.payments.QueryStatus(ctx, orderID, tradeNo)
	if err != nil {
		return err
	}
	if status != payment.TradeStatusSuccess {
		return errors.New("trade is not paid")
	}
	return s.store.UpdateOrderStatus(ctx, orderID, entity.OrderStatusPaid)
}

// newOrderID is <yyyymmddhhmmss><user id>. Two same-second orders from
// one user collide; the UNIQUE key on orders.order_id rejects the second.
func newOrderID(userID int) string {
	return time.Now().Format("20060102150405") + strconv.Itoa(userID)
}

func unavailableCode(mode string) int {
	if mode == ModeBuyNow {
		return 10408
	}
	return 10406
}

func stockCode(mode string) int {
	if mode == ModeBuyNow {
		return 10409
	}
	return 10407
}

func snapshot(sku *entity.SKU, count int) entity.LineItemSnapshot {
	return entity.LineItemSnapshot{
		SkuID:           sku.ID,
		Name:            sku.Name,
		Count:           count,
		Selected:        true,
		Price:           sku.Price,
		DefaultImageURL: sku.DefaultImageURL,
		SaleAttrs:       sku.SaleAttrs,
	}
}
