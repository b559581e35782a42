package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-sql-driver/mysql"

	"github.com/satorioh/dashop/internal/entity"
)

// ErrDuplicateOrderID surfaces the UNIQUE(order_id) violation so the
// service layer can report it as a commit conflict.
var ErrDuplicateOrderID = errors.New("order id already exists")

// CheckoutStore is the durable-store boundary of the commit pipeline.
// Everything inside WithinTx runs in one MySQL transaction: a returned
// error rolls back every write of that attempt.
type CheckoutStore interface {
	GetAddress(ctx context.Context, addressID, userID int) (*entity.Address, error)
	ListAddresses(ctx context.Context, userID int) ([]entity.Address, error)
	WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error
	GetOrderByOrderID(ctx context.Context, orderID string) (*entity.Order, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status string) error
}

// CheckoutTx is the set of operations available inside the commit
// transaction. SKUForUpdate takes the InnoDB row lock that serializes
// concurrent commits against the same item.
type CheckoutTx interface {
	InsertOrder(ctx context.Context, order *entity.Order) (int64, error)
	SKUForUpdate(ctx context.Context, skuID int) (*entity.SKU, error)
	ApplySale(ctx context.Context, skuID, count int) error
	InsertOrderLine(ctx context.Context, line *entity.OrderLine) error
	SetOrderTotals(ctx context.Context, id int64, amount float64, count int) error
}

type CheckoutRepository struct {
	db *sql.DB
}

func NewCheckoutRepository(db *sql.DB) *CheckoutRepository {
	return &CheckoutRepository{db}
}

func (r *CheckoutRepository) GetAddress(ctx context.Context, addressID, userID int) (*entity.Address, error) {
	query := `SELECT id, user_id, receiver, address, receiver_mobile, tag, is_default
		FROM addresses WHERE id = ? AND user_id = ? AND is_delete = 0`

	var addr entity.Address
	err := r.db.QueryRowContext(ctx, query, addressID, userID).
		Scan(&addr.ID, &addr.UserID, &addr.Receiver, &addr.Address, &addr.Mobile, &addr.Tag, &addr.IsDefault)
	if err != nil {
		return nil, err
	}
	return &addr, nil
}

func (r *CheckoutRepository) ListAddresses(ctx context.Context, userID int) ([]entity.Address, error) {
	query := `SELECT id, user_id, receiver, address, receiver_mobile, tag, is_default
		FROM addresses WHERE user_id = ? AND is_delete = 0`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var addrs []entity.Address
	for rows.Next() {
		var addr entity.Address
		err := rows.Scan(&addr.ID, &addr.UserID, &addr.Receiver, &addr.Address, &addr.Mobile, &addr.Tag, &addr.IsDefault)
		if err != nil {
			return nil, err
		}
		// The default address goes first on the confirm page.
		if addr.IsDefault {
			addrs = append([]entity.Address{addr}, addrs...)
		} else {
			addrs = append(addrs, addr)
		}
	}
	return addrs, rows.Err()
}

// WithinTx begins a transaction, runs fn and commits. Rollback is deferred
// so every early-return error path unwinds the attempt's writes.
func (r *CheckoutRepository) WithinTx(ctx context.Context, fn func(tx CheckoutTx) error) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&checkoutTx{tx: tx}); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *CheckoutRepository) GetOrderByOrderID(ctx context.Context, orderID string) (*entity.Order, error) {
	query := `SELECT id, order_id, user_id, total_amount, total_count, status, freight, pay_method,
		receiver, address, receiver_mobile, tag FROM orders WHERE order_id = ?`

	var o entity.Order
	err := r.db.QueryRowContext(ctx, query, orderID).Scan(
		&o.ID, &o.OrderID, &o.UserID, &o.TotalAmount, &o.TotalCount, &o.Status,
		&o.Freight, &o.PayMethod, &o.Receiver, &o.Address, &o.Mobile, &o.Tag)
	if err != nil {
		return nil, err
	}

	lineQuery := `SELECT id, order_id, sku_id, count, price FROM order_goods WHERE order_id = ?`
	rows, err := r.db.QueryContext(ctx, lineQuery, o.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var line entity.OrderLine
		if err := rows.Scan(&line.ID, &line.OrderID, &line.SkuID, &line.Count, &line.Price); err != nil {
			return nil, err
		}
		o.Lines = append(o.Lines, line)
	}
	return &o, rows.Err()
}

func (r *CheckoutRepository) UpdateOrderStatus(ctx context.Context, orderID string, status string) error {
	query := `UPDATE orders SET status = ? WHERE order_id = ?`
	_, err := r.db.ExecContext(ctx, query, status, orderID)
	return err
}

type checkoutTx struct {
	tx *sql.Tx
}

func (t *checkoutTx) InsertOrder(ctx context.Context, order *entity.Order) (int64, error) {
	query := `INSERT INTO orders (order_id, user_id, total_amount, total_count, status, freight,
		pay_method, receiver, address, receiver_mobile, tag) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := t.tx.ExecContext(ctx, query, order.OrderID, order.UserID, order.TotalAmount,
		order.TotalCount, order.Status, order.Freight, order.PayMethod,
		order.Receiver, order.Address, order.Mobile, order.Tag)
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return 0, ErrDuplicateOrderID
		}
		return 0, err
	}
	return res.LastInsertId()
}

func (t *checkoutTx) SKUForUpdate(ctx context.Context, skuID int) (*entity.SKU, error) {
	query := `SELECT ` + skuColumns + ` FROM skus WHERE id = ? FOR UPDATE`
	return scanSKU(t.tx.QueryRowContext(ctx, query, skuID))
}

// ApplySale decrements stock and bumps sales. The WHERE guard keeps stock
// non-negative even if a caller skipped the availability check.
func (t *checkoutTx) ApplySale(ctx context.Context, skuID, count int) error {
	query := `UPDATE skus SET stock = stock - ?, sales = sales + ? WHERE id = ? AND stock >= ?`
	res, err := t.tx.ExecContext(ctx, query, count, count, skuID, count)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (t *checkoutTx) InsertOrderLine(ctx context.Context, line *entity.OrderLine) error {
	query := `INSERT INTO order_goods (order_id, sku_id, count, price) VALUES (?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, query, line.OrderID, line.SkuID, line.Count, line.Price)
	return err
}

func (t *checkoutTx) SetOrderTotals(ctx context.Context, id int64, amount float64, count int) error {
	query := `UPDATE orders SET total_amount = ?, total_count = ? WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, query, amount, count, id)
	return err
}
