// README: View model for the live order-tracking screen.
package tracking

import (
	"pronto/internal/modules/order"
	"pronto/internal/types"
)

// StageView is one step of the progress timeline as the customer sees it.
type StageView struct {
	Status order.Status `json:"status"`
	Done   bool         `json:"done"`
}

// Snapshot is the full tracking state pushed to the client on every
// order or rider change.
type Snapshot struct {
	OrderID   types.ID     `json:"order_id"`
	Status    order.Status `json:"status"`
	Cancelled bool         `json:"cancelled"`
	Stages    []StageView  `json:"stages"`

	// Map payload, present only while MapVisible.
	MapVisible bool         `json:"map_visible"`
	Merchant   *types.Point `json:"merchant,omitempty"`
	Rider      *types.Point `json:"rider,omitempty"`
	Dropoff    *types.Point `json:"dropoff,omitempty"`

	RiderName string               `json:"rider_name,omitempty"`
	History   []order.StatusUpdate `json:"history,omitempty"`
}

// Progress renders the timeline for the order's current status. Every
// stage up to and including the current one is done; a cancelled order
// shows no completed stages because the progression was abandoned, and
// the cancelled flag is surfaced separately.
func Progress(current order.Status) []StageView {
	idx := order.StageIndex(current)
	views := make([]StageView, len(order.Stages))
	for i, st := range order.Stages {
		views[i] = StageView{Status: st, Done: idx >= 0 && i <= idx}
	}
	return views
}

// MapVisible reports whether the live courier map should render: the
// order must be in a courier-active status and all three coordinates
// must be known. A rider document without coordinates keeps the map
// hidden rather than rendering a broken marker, and so does a document
// that never carried the customer's drop-off point.
func MapVisible(o *order.Order) bool {
	if o.Status != order.StatusAssigned && o.Status != order.StatusOnTheWay {
		return false
	}
	return o.MerchantLocation != nil && o.RiderLocation != nil && o.Dropoff != nil
}

// Snapshot builds the tracking view for one fetched order.
func BuildSnapshot(o *order.Order) Snapshot {
	s := Snapshot{
		OrderID:   o.ID,
		Status:    o.Status,
		Cancelled: o.Status == order.StatusCancelled,
		Stages:    Progress(o.Status),
		RiderName: o.RiderName,
		History:   o.History,
	}
	if MapVisible(o) {
		s.MapVisible = true
		s.Merchant = o.MerchantLocation
		s.Rider = o.RiderLocation
		s.Dropoff = o.Dropoff
	}
	return s
}
