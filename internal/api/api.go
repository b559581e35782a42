package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/satorioh/dashop/internal/service"
)

// Handler exposes the cart and checkout services over HTTP. It only
// translates: auth claims to user ids, JSON to service calls, typed
// errors to the stable numeric codes of the public API.
type Handler struct {
	cartSvc     *service.CartService
	checkoutSvc *service.CheckoutService
}

func NewHandler(cartSvc *service.CartService, checkoutSvc *service.CheckoutService) *Handler {
	return &Handler{cartSvc: cartSvc, checkoutSvc: checkoutSvc}
}

// Register mounts the routes. Authenticated routes live under /v1; the
// payment callback is reached by the gateway and stays outside the group.
func (h *Handler) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	v1 := e.Group("/v1", auth)
	v1.POST("/carts", h.AddToCart)
	v1.GET("/carts", h.ListCart)
	v1.PUT("/carts", h.UpdateCart)
	v1.DELETE("/carts", h.RemoveFromCart)
	v1.GET("/orders/advance", h.Advance)
	v1.POST("/orders", h.CreateOrder)

	e.GET("/v1/pays/result", h.PayResult)
}

// AddToCart puts an item into the cart --> POST /v1/carts
func (h *Handler) AddToCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	req := struct {
		SkuID int `json:"sku_id"`
		Count int `json:"count"`
	}{}
	if err := c.Bind(&req); err != nil || req.SkuID <= 0 || req.Count <= 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	count, err := h.cartSvc.Add(c.Request().Context(), userID, req.SkuID, req.Count)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, map[string]interface{}{"carts_count": count})
}

// ListCart returns the cart joined with catalog rows --> GET /v1/carts
func (h *Handler) ListCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	lines, err := h.cartSvc.List(c.Request().Context(), userID)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, lines)
}

// UpdateCart applies one cart state change --> PUT /v1/carts
func (h *Handler) UpdateCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	req := struct {
		SkuID int    `json:"sku_id"`
		State string `json:"state"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	if err := h.cartSvc.Update(c.Request().Context(), userID, req.SkuID, req.State); err != nil {
		return writeError(c, err)
	}
	return writeData(c, nil)
}

// RemoveFromCart drops an item --> DELETE /v1/carts
func (h *Handler) RemoveFromCart(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	req := struct {
		SkuID int `json:"sku_id"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	count, err := h.cartSvc.Remove(c.Request().Context(), userID, req.SkuID)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, map[string]interface{}{"carts_count": count})
}

// Advance builds the order confirm page --> GET /v1/orders/advance
func (h *Handler) Advance(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	mode := c.QueryParam("settlement_type")
	skuID, _ := strconv.Atoi(c.QueryParam("sku_id"))
	buyCount, _ := strconv.Atoi(c.QueryParam("buy_num"))

	preview, err := h.checkoutSvc.Plan(c.Request().Context(), userID, mode, skuID, buyCount)
	if err != nil {
		return writeError(c, err)
	}
	return writeData(c, preview)
}

// CreateOrder commits the checkout --> POST /v1/orders
func (h *Handler) CreateOrder(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return writeError(c, err)
	}

	req := struct {
		AddressID      int    `json:"address_id"`
		SettlementType string `json:"settlement_type"`
		SkuID          int    `json:"sku_id"`
		BuyCount       int    `json:"buy_count"`
	}{}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request payload"})
	}

	summary, err := h.checkoutSvc.Commit(c.Request().Context(), userID, req.AddressID,
		req.SettlementType, req.SkuID, req.BuyCount)
	if err != nil {
		return writeError(c, err)
	}

	return writeData(c, map[string]interface{}{
		"saller":       "dashop",
		"order_id":     summary.OrderID,
		"total_amount": summary.TotalAmount,
		"total_count":  summary.TotalCount,
		"carts_count":  summary.CartsCount,
		"pay_url":      summary.PayURL,
	})
}

// PayResult is the gateway callback --> GET /v1/pays/result
func (h *Handler) PayResult(c echo.Context) error {
	orderID := c.QueryParam("out_trade_no")
	tradeNo := c.QueryParam("trade_no")

	if err := h.checkoutSvc.MarkPaid(c.Request().Context(), orderID, tradeNo); err != nil {
		return writeError(c, err)
	}
	return writeData(c, map[string]string{"message": "payment confirmed"})
}

func writeData(c echo.Context, data interface{}) error {
	body := map[string]interface{}{"code": 200}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(http.StatusOK, body)
}

// writeError maps typed service errors onto the API's numeric codes. The
// HTTP status stays 200 for business failures (client contract predates
// this service); only auth failures and unknown errors use HTTP statuses.
func writeError(c echo.Context, err error) error {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		status := http.StatusOK
		if apiErr.Code == service.ErrUnauthorized.Code {
			status = http.StatusUnauthorized
		}
		return c.JSON(status, map[string]interface{}{"code": apiErr.Code, "error": apiErr.Message})
	}

	var unavailable *service.ItemUnavailableError
	if errors.As(err, &unavailable) {
		return c.JSON(http.StatusOK, map[string]interface{}{"code": unavailable.Code, "error": unavailable.Error()})
	}

	var stock *service.InsufficientStockError
	if errors.As(err, &stock) {
		return c.JSON(http.StatusOK, map[string]interface{}{"code": stock.Code, "error": stock.Error()})
	}

	return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
}
