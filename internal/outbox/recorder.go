// README: Records checkout events into the outbox table.
package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"pronto/internal/modules/order"
	"pronto/internal/types"
)

// Inserter is the write half of the store.
type Inserter interface {
	Insert(ctx context.Context, msg Message) error
}

// Recorder turns domain events into outbox rows. The dispatch backend
// consumes them from the broker to start rider matching.
type Recorder struct {
	store    Inserter
	exchange string
}

func NewRecorder(store Inserter, exchange string) *Recorder {
	return &Recorder{store: store, exchange: exchange}
}

type orderCreatedEvent struct {
	OrderID    types.ID     `json:"order_id"`
	MerchantID types.ID     `json:"merchant_id"`
	Dropoff    *types.Point `json:"dropoff"`
	GrandTotal int64        `json:"grand_total"`
	Currency   string       `json:"currency"`
	CreatedAt  time.Time    `json:"created_at"`
}

func (r *Recorder) OrderCreated(ctx context.Context, o *order.Order) error {
	payload, err := json.Marshal(orderCreatedEvent{
		OrderID:    o.ID,
		MerchantID: o.MerchantID,
		Dropoff:    o.Dropoff,
		GrandTotal: o.GrandTotal,
		Currency:   o.Currency,
		CreatedAt:  o.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}
	return r.store.Insert(ctx, Message{
		Exchange:    r.exchange,
		RoutingKey:  TopicOrderCreated,
		Payload:     payload,
		ContentType: "application/json",
	})
}
