// README: Checkout handlers; the state machine lives in the service,
// these map the steps onto routes.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pronto/internal/http/middleware"
	"pronto/internal/modules/checkout"
	"pronto/internal/types"
)

type CheckoutHandler struct {
	checkout *checkout.Service
}

func NewCheckoutHandler(svc *checkout.Service) *CheckoutHandler {
	return &CheckoutHandler{checkout: svc}
}

func (h *CheckoutHandler) Begin(c *gin.Context) {
	sess, err := h.checkout.Begin(c.Request.Context(), types.ID(middleware.SessionID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, sessionView(sess))
}

func (h *CheckoutHandler) Get(c *gin.Context) {
	sess, err := h.checkout.Get(c.Request.Context(), types.ID(middleware.SessionID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

type locationReq struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func (h *CheckoutHandler) SetLocation(c *gin.Context) {
	var req locationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sess, err := h.checkout.SetLocation(c.Request.Context(),
		types.ID(middleware.SessionID(c)), types.Point{Lat: req.Lat, Lng: req.Lng})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

type receiverReq struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

func (h *CheckoutHandler) SetReceiver(c *gin.Context) {
	var req receiverReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	sess, err := h.checkout.SetReceiver(c.Request.Context(),
		types.ID(middleware.SessionID(c)),
		checkout.Receiver{Name: req.Name, Phone: req.Phone, Notes: req.Notes})
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

// Refresh recomputes the fee quote after cart edits.
func (h *CheckoutHandler) Refresh(c *gin.Context) {
	sess, err := h.checkout.Refresh(c.Request.Context(), types.ID(middleware.SessionID(c)))
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionView(sess))
}

type submitReq struct {
	Email    string       `json:"email"`
	Receiver *receiverReq `json:"receiver"`
}

func (h *CheckoutHandler) Submit(c *gin.Context) {
	var req submitReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	cmd := checkout.SubmitCommand{
		SessionID:     types.ID(middleware.SessionID(c)),
		CustomerUID:   middleware.CallerUID(c),
		CustomerEmail: req.Email,
	}
	if req.Receiver != nil {
		cmd.Receiver = &checkout.Receiver{
			Name:  req.Receiver.Name,
			Phone: req.Receiver.Phone,
			Notes: req.Receiver.Notes,
		}
	}
	orderID, err := h.checkout.Submit(c.Request.Context(), cmd)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order_id": orderID})
}

func sessionView(sess *checkout.Session) gin.H {
	v := gin.H{
		"state":       sess.State,
		"merchant_id": sess.MerchantID,
		"receiver":    sess.Receiver,
	}
	if sess.Location != nil {
		v["location"] = sess.Location
	}
	if sess.Fees != nil {
		v["distance_km"] = sess.DistanceKm
		v["fees"] = sess.Fees
	}
	if sess.OrderID != "" {
		v["order_id"] = sess.OrderID
	}
	if sess.LastError != "" {
		v["last_error"] = sess.LastError
	}
	return v
}
