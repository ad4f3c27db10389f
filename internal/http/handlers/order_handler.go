// README: Order handlers; history, detail, and payment-proof upload.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pronto/internal/content"
	"pronto/internal/http/middleware"
	"pronto/internal/modules/order"
	"pronto/internal/types"
)

type OrderHandler struct {
	orders *order.Store
	assets *content.Client
}

func NewOrderHandler(orders *order.Store, assets *content.Client) *OrderHandler {
	return &OrderHandler{orders: orders, assets: assets}
}

func (h *OrderHandler) List(c *gin.Context) {
	orders, err := h.orders.ListByCustomer(c.Request.Context(), middleware.CallerUID(c))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *OrderHandler) Get(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	// Orders are private to the customer who placed them.
	if o.CustomerUID != middleware.CallerUID(c) {
		writeError(c, http.StatusNotFound, order.ErrNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, o)
}

// UploadPaymentProof accepts a bank-transfer slip image and stores it as
// a content asset tied to the order.
func (h *OrderHandler) UploadPaymentProof(c *gin.Context) {
	o, err := h.orders.Get(c.Request.Context(), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if o.CustomerUID != middleware.CallerUID(c) {
		writeError(c, http.StatusNotFound, order.ErrNotFound.Error())
		return
	}

	file, header, err := c.Request.FormFile("proof")
	if err != nil {
		writeError(c, http.StatusBadRequest, "missing proof file")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if contentType != "image/jpeg" && contentType != "image/png" {
		writeError(c, http.StatusBadRequest, "proof must be a jpeg or png image")
		return
	}
	assetID, err := h.assets.UploadAsset(c.Request.Context(), file, contentType)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if err := h.orders.AttachPaymentProof(c.Request.Context(), o.ID, assetID); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"asset_id": assetID})
}
