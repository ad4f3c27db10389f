// README: Cart handler tests over the wire.
package handlers_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pronto/internal/http/handlers"
	"pronto/internal/http/middleware"
	"pronto/internal/modules/cart"
)

func newCartRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.Session())
	h := handlers.NewCartHandler(cart.NewService(cart.NewMemoryStore()))
	r.GET("/api/cart", h.Get)
	r.POST("/api/cart/items", h.AddItem)
	r.POST("/api/cart/replace", h.ReplaceWith)
	r.PATCH("/api/cart/items/:id", h.UpdateQuantity)
	r.DELETE("/api/cart/items/:id", h.RemoveItem)
	r.DELETE("/api/cart", h.Clear)
	return r
}

func do(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("X-Session-ID", "test-session")
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCartHandler_AddAndGet(t *testing.T) {
	r := newCartRouter()

	w := do(r, http.MethodPost, "/api/cart/items",
		`{"item_id":"kottu","name":"Chicken Kottu","unit_price":1200,"merchant_id":"m1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subtotal":1200`)

	w = do(r, http.MethodGet, "/api/cart", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Chicken Kottu")
	assert.Contains(t, w.Body.String(), `"currency":"LKR"`)
}

func TestCartHandler_MerchantConflict(t *testing.T) {
	r := newCartRouter()

	do(r, http.MethodPost, "/api/cart/items",
		`{"item_id":"kottu","name":"Kottu","unit_price":1200,"merchant_id":"m1"}`)

	// Cross-merchant add surfaces the confirmation code, cart unchanged.
	w := do(r, http.MethodPost, "/api/cart/items",
		`{"item_id":"pizza","name":"Pizza","unit_price":2400,"merchant_id":"m2"}`)
	require.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "merchant_conflict")

	w = do(r, http.MethodGet, "/api/cart", "")
	assert.Contains(t, w.Body.String(), `"m1"`)

	// Confirming the replacement starts a fresh cart for the new merchant.
	w = do(r, http.MethodPost, "/api/cart/replace",
		`{"item_id":"pizza","name":"Pizza","unit_price":2400,"merchant_id":"m2"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"m2"`)
	assert.NotContains(t, w.Body.String(), "Kottu")
}

func TestCartHandler_QuantityAndRemoval(t *testing.T) {
	r := newCartRouter()

	do(r, http.MethodPost, "/api/cart/items",
		`{"item_id":"kottu","name":"Kottu","unit_price":1200,"merchant_id":"m1"}`)

	w := do(r, http.MethodPatch, "/api/cart/items/kottu", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subtotal":3600`)

	// Setting quantity below one removes the line.
	w = do(r, http.MethodPatch, "/api/cart/items/kottu", `{"quantity":0}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subtotal":0`)

	w = do(r, http.MethodPatch, "/api/cart/items/missing", `{"quantity":2}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCartHandler_BadItem(t *testing.T) {
	r := newCartRouter()
	w := do(r, http.MethodPost, "/api/cart/items", `{"name":"no ids"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
