// README: Base handler utilities (error mapping to HTTP statuses).
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"pronto/internal/modules/cart"
	"pronto/internal/modules/checkout"
	"pronto/internal/modules/order"
)

type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, errorResponse{Error: msg})
}

// writeDomainError maps service errors onto statuses. Merchant conflicts
// are 409 with a distinct code so the client can offer the replace-cart
// confirmation instead of a generic failure.
func writeDomainError(c *gin.Context, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.Is(err, cart.ErrMerchantConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": "merchant_conflict"})
	case errors.Is(err, cart.ErrBadItem):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, cart.ErrNotFound), errors.Is(err, order.ErrNotFound), errors.Is(err, checkout.ErrNoSession):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrInvalidState):
		writeError(c, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrAuthRequired):
		writeError(c, http.StatusUnauthorized, err.Error())
	case errors.As(err, &verr):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, checkout.ErrSubmitFailed):
		// Transient upstream failure; the session stays retryable.
		writeError(c, http.StatusBadGateway, err.Error())
	default:
		slog.Error("unhandled error", "path", c.Request.URL.Path, "error", err)
		writeError(c, http.StatusInternalServerError, "internal error")
	}
}
