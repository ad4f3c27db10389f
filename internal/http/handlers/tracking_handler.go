// README: Live tracking over server-sent events.
package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"pronto/internal/http/middleware"
	"pronto/internal/modules/order"
	"pronto/internal/modules/tracking"
	"pronto/internal/types"
)

type TrackingHandler struct {
	orders  *order.Store
	watcher *tracking.Watcher
}

func NewTrackingHandler(orders *order.Store, watcher *tracking.Watcher) *TrackingHandler {
	return &TrackingHandler{orders: orders, watcher: watcher}
}

// Stream pushes tracking snapshots until the order reaches a terminal
// status or the client disconnects.
func (h *TrackingHandler) Stream(c *gin.Context) {
	id := types.ID(c.Param("id"))
	o, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}
	if o.CustomerUID != middleware.CallerUID(c) {
		writeError(c, http.StatusNotFound, order.ErrNotFound.Error())
		return
	}

	snapshots, err := h.watcher.Watch(c.Request.Context(), id)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Stream(func(w io.Writer) bool {
		snap, ok := <-snapshots
		if !ok {
			return false
		}
		payload, err := json.Marshal(snap)
		if err != nil {
			return false
		}
		fmt.Fprintf(w, "event: snapshot\ndata: %s\n\n", payload)
		return true
	})
}
