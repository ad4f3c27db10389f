// README: Cart handlers; all mutations share the session id from the
// middleware.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pronto/internal/http/middleware"
	"pronto/internal/modules/cart"
	"pronto/internal/types"
)

type CartHandler struct {
	carts *cart.Service
}

func NewCartHandler(carts *cart.Service) *CartHandler {
	return &CartHandler{carts: carts}
}

type cartItemReq struct {
	ItemID     string `json:"item_id"`
	Name       string `json:"name"`
	UnitPrice  int64  `json:"unit_price"`
	MerchantID string `json:"merchant_id"`
}

func (r cartItemReq) item() cart.Item {
	return cart.Item{
		ID:         types.ID(r.ItemID),
		Name:       r.Name,
		UnitPrice:  r.UnitPrice,
		MerchantID: types.ID(r.MerchantID),
	}
}

func (h *CartHandler) Get(c *gin.Context) {
	crt, err := h.carts.Get(c.Request.Context(), types.ID(middleware.SessionID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(crt))
}

func (h *CartHandler) AddItem(c *gin.Context) {
	var req cartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	crt, err := h.carts.AddItem(c.Request.Context(), types.ID(middleware.SessionID(c)), req.item())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(crt))
}

// ReplaceWith resolves a merchant conflict: drop the old cart and start
// over with the submitted item.
func (h *CartHandler) ReplaceWith(c *gin.Context) {
	var req cartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	crt, err := h.carts.ConfirmReplace(c.Request.Context(), types.ID(middleware.SessionID(c)), req.item())
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(crt))
}

type quantityReq struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) UpdateQuantity(c *gin.Context) {
	var req quantityReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	crt, err := h.carts.UpdateQuantity(c.Request.Context(),
		types.ID(middleware.SessionID(c)), types.ID(c.Param("id")), req.Quantity)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(crt))
}

func (h *CartHandler) RemoveItem(c *gin.Context) {
	crt, err := h.carts.RemoveItem(c.Request.Context(),
		types.ID(middleware.SessionID(c)), types.ID(c.Param("id")))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(crt))
}

func (h *CartHandler) Clear(c *gin.Context) {
	crt, err := h.carts.Clear(c.Request.Context(), types.ID(middleware.SessionID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, cartView(crt))
}

func cartView(crt *cart.Cart) gin.H {
	return gin.H{
		"merchant_id": crt.MerchantID,
		"items":       crt.Items,
		"subtotal":    crt.Subtotal(),
		"total":       crt.Total(),
	}
}
