package entity

const (
	OrderStatusUnpaid    = "unpaid"
	OrderStatusPaid      = "paid"
	OrderStatusCancelled = "cancelled"
)

// Order is the durable order row. OrderID is the business identifier
// (timestamp + user id); ID is the auto-increment primary key.
type Order struct {
	ID          int64       `json:"id"`
	OrderID     string      `json:"order_id"`
	UserID      int         `json:"user_id"`
	TotalAmount float64     `json:"total_amount"`
	TotalCount  int         `json:"total_count"`
	Status      string      `json:"status"`
	Freight     float64     `json:"freight"`
	PayMethod   int         `json:"pay_method"`
	Receiver    string      `json:"receiver"`
	Address     string      `json:"address"`
	Mobile      string      `json:"receiver_mobile"`
	Tag         string      `json:"tag"`
	Lines       []OrderLine `json:"lines,omitempty"`
}

// OrderLine is an immutable snapshot of one committed line item.
type OrderLine struct {
	ID      int64   `json:"id"`
	OrderID int64   `json:"order_id"`
	SkuID   int     `json:"sku_id"`
	Count   int     `json:"count"`
	Price   float64 `json:"price"`
}

// OrderSummary is what a successful commit returns to the caller.
type OrderSummary struct {
	OrderID     string  `json:"order_id"`
	TotalAmount float64 `json:"total_amount"`
	TotalCount  int     `json:"total_count"`
	CartsCount  int     `json:"carts_count"`
	PayURL      string  `json:"pay_url"`
}

/*
MySQL schema:
CREATE TABLE `orders` (
  `id` int(11) NOT NULL AUTO_INCREMENT,
  `order_id` varchar(32) NOT NULL UNIQUE,
  `user_id` int(11) NOT NULL,
  ...
) ENGINE=InnoDB;
See migrations.AutoMigrateOrders for the full definition.
*/
