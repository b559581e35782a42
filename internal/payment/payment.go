package payment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// TradeStatusSuccess is the status string reported by the gateway query
// for a completed payment.
const TradeStatusSuccess = "TRADE_SUCCESS"

// Gateway hands an order off to the payment provider and answers the
// out-of-band status query used by the callback path.
type Gateway interface {
	PayURL(orderID string, amount float64) (string, error)
	QueryStatus(ctx context.Context, orderID, tradeNo string) (string, error)
}

// Sandbox is the development gateway: it mints a trade reference locally
// and reports every non-empty trade as paid.
type Sandbox struct {
	baseURL string
}

func NewSandbox(baseURL string) *Sandbox {
	return &Sandbox{baseURL: baseURL}
}

func (s *Sandbox) PayURL(orderID string, amount float64) (string, error) {
	tradeNo := uuid.NewString()
	return fmt.Sprintf("%s/pay?out_trade_no=%s&trade_no=%s&total_amount=%.2f", s.baseURL, orderID, tradeNo, amount), nil
}

func (s *Sandbox) QueryStatus(_ context.Context, orderID, tradeNo string) (string, error) {
	if orderID == "" || tradeNo == "" {
		return "", fmt.Errorf("missing trade reference")
	}
	return TradeStatusSuccess, nil
}
