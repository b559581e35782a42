package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satorioh/dashop/internal/cache"
	"github.com/satorioh/dashop/internal/entity"
	"github.com/satorioh/dashop/internal/service"
)

type stubCatalog struct {
	skus map[int]*entity.SKU
}

func (s *stubCatalog) GetSKU(_ context.Context, id int) (*entity.SKU, error) {
	sku, ok := s.skus[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *sku
	return &cp, nil
}

func (s *stubCatalog) GetSKUsByIDs(_ context.Context, ids []int) ([]*entity.SKU, error) {
	var out []*entity.SKU
	for _, id := range ids {
		if sku, ok := s.skus[id]; ok {
			cp := *sku
			out = append(out, &cp)
		}
	}
	return out, nil
}

func newTestContext(e *echo.Echo, method, target, body string, userID int) (echo.Context, *httptest.ResponseRecorder) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID > 0 {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaims{UserID: userID})
		c.Set("user", token)
	}
	return c, rec
}

func TestAddToCart(t *testing.T) {
	e := echo.New()
	carts := cache.NewMemoryStore()
	catalog := &stubCatalog{skus: map[int]*entity.SKU{1: {ID: 1, Name: "mug", Price: 9.5, IsLaunched: true}}}
	h := NewHandler(service.NewCartService(carts, catalog), nil)

	c, rec := newTestContext(e, http.MethodPost, "/v1/carts", `{"sku_id":1,"count":3}`, 1)
	require.NoError(t, h.AddToCart(c))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(200), body["code"])
	assert.Equal(t, float64(1), body["data"].(map[string]interface{})["carts_count"])

	cart, _ := carts.Get(context.Background(), 1)
	assert.Equal(t, entity.CartEntry{Quantity: 3, Selected: true}, cart["1"])
}

func TestAddToCartRejectsBadPayload(t *testing.T) {
	e := echo.New()
	h := NewHandler(service.NewCartService(cache.NewMemoryStore(), &stubCatalog{}), nil)

	c, rec := newTestContext(e, http.MethodPost, "/v1/carts", `{"sku_id":1,"count":0}`, 1)
	require.NoError(t, h.AddToCart(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMissingTokenIsUnauthorized(t *testing.T) {
	e := echo.New()
	h := NewHandler(service.NewCartService(cache.NewMemoryStore(), &stubCatalog{}), nil)

	c, rec := newTestContext(e, http.MethodGet, "/v1/carts", "", 0)
	require.NoError(t, h.ListCart(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(10401), body["code"])
}

func TestWriteErrorCodes(t *testing.T) {
	e := echo.New()

	cases := []struct {
		err      error
		wantCode int
	}{
		{service.ErrCartFull, 10302},
		{service.ErrAddressNotFound, 10405},
		{service.ErrCartEmpty, 10410},
		{service.ErrTransactionConflict, 10500},
		{&service.ItemUnavailableError{SkuID: 5, Code: 10408}, 10408},
		{&service.InsufficientStockError{SkuID: 1, Name: "mug", Available: 2, Code: 10407}, 10407},
	}

	for _, tc := range cases {
		t.Run(strconv.Itoa(tc.wantCode), func(t *testing.T) {
			c, rec := newTestContext(e, http.MethodPost, "/", "", 1)
			require.NoError(t, writeError(c, tc.err))
			assert.Equal(t, http.StatusOK, rec.Code)

			var body map[string]interface{}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, float64(tc.wantCode), body["code"])
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestWriteErrorUnauthorizedStatus(t *testing.T) {
	e := echo.New()

	// Any error carrying the unauthorized code gets HTTP 401, not just
	// the sentinel value itself.
	for _, err := range []error{
		service.ErrUnauthorized,
		fmt.Errorf("resolving user: %w", service.ErrUnauthorized),
		&service.APIError{Code: 10401, Message: "token rejected"},
	} {
		c, rec := newTestContext(e, http.MethodPost, "/", "", 1)
		require.NoError(t, writeError(c, err))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	}
}

func TestInsufficientStockMessageCarriesRemainingStock(t *testing.T) {
	e := echo.New()
	c, rec := newTestContext(e, http.MethodPost, "/", "", 1)

	err := &service.InsufficientStockError{SkuID: 1, Name: "mug", Available: 2, Code: 10407}
	require.NoError(t, writeError(c, err))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body["error"], "mug")
	assert.Contains(t, body["error"], "2")
}
