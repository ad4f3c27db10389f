// README: Tracking watcher; bridges content-store change feeds into
// snapshot updates for one order.
package tracking

import (
	"context"
	"log/slog"

	"pronto/internal/content"
	"pronto/internal/modules/order"
	"pronto/internal/types"
)

// Source is the slice of the order store the watcher needs.
type Source interface {
	Get(ctx context.Context, id types.ID) (*order.Order, error)
	Listen(ctx context.Context, id types.ID) (<-chan content.Event, error)
	ListenRider(ctx context.Context, riderID types.ID) (<-chan content.Event, error)
}

type Watcher struct {
	source Source
}

func NewWatcher(source Source) *Watcher {
	return &Watcher{source: source}
}

// Watch emits a snapshot immediately and then again after every change
// to the order document or, once a courier is assigned, the rider
// document. Change events carry no payload; each one triggers a full
// refetch so joined fields stay resolved. The channel closes when ctx
// is cancelled or the order reaches a terminal status.
func (w *Watcher) Watch(ctx context.Context, orderID types.ID) (<-chan Snapshot, error) {
	o, err := w.source.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}
	events, err := w.source.Listen(ctx, orderID)
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot, 1)
	go w.run(ctx, orderID, o, events, out)
	return out, nil
}

func (w *Watcher) run(ctx context.Context, orderID types.ID, o *order.Order, events <-chan content.Event, out chan<- Snapshot) {
	defer close(out)

	var riderEvents <-chan content.Event

	emit := func(o *order.Order) bool {
		select {
		case out <- BuildSnapshot(o):
		case <-ctx.Done():
			return false
		}
		// The rider feed starts once, when an assignment first appears.
		if riderEvents == nil && o.RiderID != "" {
			ch, err := w.source.ListenRider(ctx, o.RiderID)
			if err != nil {
				slog.Warn("tracking: rider feed unavailable, coordinates will lag",
					"order_id", orderID, "rider_id", o.RiderID, "error", err)
			} else {
				riderEvents = ch
			}
		}
		return !o.Status.Terminal()
	}

	if !emit(o) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-events:
			if !ok {
				return
			}
		case _, ok := <-riderEvents:
			if !ok {
				riderEvents = nil
				continue
			}
		}

		o, err := w.source.Get(ctx, orderID)
		if err != nil {
			slog.Error("tracking: refetch order", "order_id", orderID, "error", err)
			continue
		}
		if !emit(o) {
			return
		}
	}
}
