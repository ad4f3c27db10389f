// README: Fee preview and address search, used by the location picker
// before a checkout session exists.
package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"pronto/internal/maps"
	"pronto/internal/modules/pricing"
)

type QuoteHandler struct {
	pricing *pricing.Service
	places  *maps.PlacesService
}

// NewQuoteHandler wires the preview endpoints. places may be nil when no
// maps key is configured; address search then returns 503 and the client
// falls back to map taps only.
func NewQuoteHandler(svc *pricing.Service, places *maps.PlacesService) *QuoteHandler {
	return &QuoteHandler{pricing: svc, places: places}
}

type quoteReq struct {
	DistanceKm float64 `json:"distance_km"`
	Subtotal   int64   `json:"subtotal"`
}

func (h *QuoteHandler) Preview(c *gin.Context) {
	var req quoteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "invalid json")
		return
	}
	if req.DistanceKm < 0 || req.Subtotal < 0 {
		writeError(c, http.StatusBadRequest, "distance and subtotal must be non-negative")
		return
	}
	breakdown := h.pricing.Quote(c.Request.Context(), req.DistanceKm, req.Subtotal)
	c.JSON(http.StatusOK, breakdown)
}

func (h *QuoteHandler) SearchPlaces(c *gin.Context) {
	if h.places == nil {
		writeError(c, http.StatusServiceUnavailable, "address search is not configured")
		return
	}
	query := c.Query("q")
	if query == "" {
		writeError(c, http.StatusBadRequest, "missing query")
		return
	}
	limit := 5
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 20 {
			limit = n
		}
	}
	places, err := h.places.SearchAddress(c.Request.Context(), query, limit)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"places": places})
}
