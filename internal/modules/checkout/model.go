// README: Checkout session state machine.
package checkout

import (
	"time"

	"pronto/internal/modules/pricing"
	"pronto/internal/types"
)

type State string

const (
	StateCart             State = "cart"
	StateLocationPending  State = "locationPending"
	StateFeeComputed      State = "feeComputed"
	StateSubmitting       State = "submitting"
	StateSubmitted        State = "submitted"
	StateSubmissionFailed State = "submissionFailed"
)

// allowedTransitions represents the checkout flow (diagram) as code.
// Re-selecting a location while fees are already computed re-enters
// feeComputed rather than visiting a distinct state, and a failed
// submission falls back to feeComputed so the customer retries without
// re-entering anything.
var allowedTransitions = map[State][]State{
	StateCart:             {StateLocationPending},
	StateLocationPending:  {StateFeeComputed},
	StateFeeComputed:      {StateFeeComputed, StateSubmitting},
	StateSubmitting:       {StateSubmitted, StateSubmissionFailed},
	StateSubmissionFailed: {StateFeeComputed},
}

func CanTransition(from, to State) bool {
	next, ok := allowedTransitions[from]
	if !ok {
		return false
	}
	for _, s := range next {
		if s == to {
			return true
		}
	}
	return false
}

// Receiver holds the contact fields captured on the checkout form.
type Receiver struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Notes string `json:"notes"`
}

// Session is one customer's in-progress checkout. It survives a
// sign-in redirect: submit requires authentication, and the session is
// still feeComputed when the customer comes back.
type Session struct {
	ID         types.ID           `json:"id"`
	State      State              `json:"state"`
	MerchantID types.ID           `json:"merchant_id"`
	Receiver   Receiver           `json:"receiver"`
	Location   *types.Point       `json:"location,omitempty"`
	DistanceKm float64            `json:"distance_km"`
	Fees       *pricing.Breakdown `json:"fees,omitempty"`
	OrderID    types.ID           `json:"order_id,omitempty"`
	LastError  string             `json:"last_error,omitempty"`
	UpdatedAt  time.Time          `json:"updated_at"`
}
