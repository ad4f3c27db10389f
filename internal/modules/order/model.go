// README: Order aggregate and lifecycle status definitions.
package order

import (
	"time"

	"pronto/internal/types"
)

type Status string

const (
	StatusPending        Status = "pending"
	StatusPreparing      Status = "preparing"
	StatusReadyForPickup Status = "readyForPickup"
	StatusAssigned       Status = "assigned"
	StatusOnTheWay       Status = "onTheWay"
	StatusCompleted      Status = "completed"
	StatusCancelled      Status = "cancelled"
)

// Stages is the fixed ordered progression an order moves through.
// cancelled is deliberately absent: it is a terminal absorbing state
// reachable from any non-terminal stage and rendered apart from the list.
var Stages = []Status{
	StatusPending,
	StatusPreparing,
	StatusReadyForPickup,
	StatusAssigned,
	StatusOnTheWay,
	StatusCompleted,
}

// StageIndex returns the position of s in the ordered progression, or -1
// for cancelled and unknown statuses.
func StageIndex(s Status) int {
	for i, st := range Stages {
		if st == s {
			return i
		}
	}
	return -1
}

// Known reports whether s is any recognised lifecycle status.
func Known(s Status) bool {
	return s == StatusCancelled || StageIndex(s) >= 0
}

func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Line is a snapshot of one ordered item: name and unit price are
// captured at order time so later menu edits do not rewrite history.
type Line struct {
	ItemID    types.ID `json:"item_id"`
	Name      string   `json:"name"`
	Quantity  int      `json:"quantity"`
	UnitPrice int64    `json:"unit_price"`
}

// StatusUpdate is one entry of the order's status history. Entries are
// appended by the dispatch backend; this service only reads them.
type StatusUpdate struct {
	Status Status    `json:"status"`
	At     time.Time `json:"at"`
}

// Merchant is the restaurant or shop a cart belongs to.
type Merchant struct {
	ID       types.ID    `json:"id"`
	Name     string      `json:"name"`
	Location types.Point `json:"location"`
}

// Rider is the courier assigned once the dispatch backend matches one.
type Rider struct {
	ID       types.ID     `json:"id"`
	Name     string       `json:"name"`
	Location *types.Point `json:"location,omitempty"`
}

// Order is created exactly once at checkout submission. Afterwards only
// the dispatch backend mutates it; this service observes status changes
// through the content store's change feed.
type Order struct {
	ID            types.ID     `json:"id"`
	MerchantID    types.ID     `json:"merchant_id"`
	MerchantName  string       `json:"merchant_name"`
	CustomerUID   string       `json:"customer_uid"`
	CustomerEmail string       `json:"customer_email"`
	ReceiverName  string       `json:"receiver_name"`
	ReceiverPhone string       `json:"receiver_phone"`
	Notes         string       `json:"notes,omitempty"`
	Dropoff       *types.Point `json:"dropoff,omitempty"`
	Lines         []Line       `json:"lines"`
	Subtotal      int64        `json:"subtotal"`
	CourierFee    int64        `json:"courier_fee"`
	HandlingFee   int64        `json:"handling_fee"`
	GrandTotal    int64        `json:"grand_total"`
	Currency      string       `json:"currency"`
	PaymentMethod string       `json:"payment_method"`
	Status        Status       `json:"status"`
	History       []StatusUpdate `json:"history"`
	RiderID       types.ID     `json:"rider_id,omitempty"`
	RiderName     string       `json:"rider_name,omitempty"`
	CreatedAt     time.Time    `json:"created_at"`

	// Joined coordinates, resolved on full fetch only. Nil until the
	// referenced documents carry them.
	MerchantLocation *types.Point `json:"merchant_location,omitempty"`
	RiderLocation    *types.Point `json:"rider_location,omitempty"`
}
