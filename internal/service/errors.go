package service

import "fmt"

// APIError is a checkout failure with the stable numeric code the HTTP
// layer returns to clients. The codes come from the public API contract
// and never change meaning.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string { return e.Message }

var (
	ErrUnauthorized        = &APIError{Code: 10401, Message: "unauthorized"}
	ErrCartItemNotFound    = &APIError{Code: 10301, Message: "item is not in the cart"}
	ErrCartFull            = &APIError{Code: 10302, Message: "a cart holds at most 100 kinds of items"}
	ErrUnknownCartItem     = &APIError{Code: 10303, Message: "item is not in the cart"}
	ErrBadCartState        = &APIError{Code: 10304, Message: "illegal cart operation"}
	ErrInvalidModeParam    = &APIError{Code: 10400, Message: "illegal settlement type"}
	ErrInvalidMode         = &APIError{Code: 10404, Message: "illegal settlement type"}
	ErrAddressNotFound     = &APIError{Code: 10405, Message: "shipping address does not exist"}
	ErrCartEmpty           = &APIError{Code: 10410, Message: "no items selected for checkout"}
	ErrInvalidCount        = &APIError{Code: 10411, Message: "item count must be positive"}
	ErrTransactionConflict = &APIError{Code: 10500, Message: "order commit conflicted, please retry"}
)

// ItemUnavailableError reports a sku that is missing from the catalog or
// taken down. The code differs between the confirm page (10402), a
// cart-mode commit (10406) and a buy-now commit (10408).
type ItemUnavailableError struct {
	SkuID int
	Code  int
}

func (e *ItemUnavailableError) Error() string {
	return fmt.Sprintf("item %d is no longer available", e.SkuID)
}

// InsufficientStockError reports a line whose requested count exceeds the
// locked stock. Available is the stock observed under the row lock.
type InsufficientStockError struct {
	SkuID     int
	Name      string
	Available int
	Code      int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s, only %d left", e.Name, e.Available)
}
