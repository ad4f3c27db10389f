// README: Checkout service; orchestrates cart review, location capture,
// fee computation, and order submission.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"pronto/internal/geo"
	"pronto/internal/modules/cart"
	"pronto/internal/modules/order"
	"pronto/internal/modules/pricing"
	"pronto/internal/types"
)

var (
	ErrEmptyCart    = errors.New("checkout: cart is empty")
	ErrInvalidState = errors.New("checkout: invalid state transition")
	ErrAuthRequired = errors.New("checkout: sign-in required")
	ErrSubmitFailed = errors.New("checkout: order submission failed")
)

// ValidationError carries field-level messages for the checkout form.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return "checkout: missing fields: " + strings.Join(keys, ", ")
}

// Carts is the slice of the cart service checkout needs.
type Carts interface {
	Get(ctx context.Context, sessionID types.ID) (*cart.Cart, error)
	Clear(ctx context.Context, sessionID types.ID) (*cart.Cart, error)
}

// DistanceEstimator returns road distance between two points. A nil
// estimator or any error means the great-circle distance is used instead;
// checkout never blocks on routing availability.
type DistanceEstimator interface {
	DrivingDistanceKm(ctx context.Context, origin, destination types.Point) (float64, error)
}

type Quoter interface {
	Quote(ctx context.Context, distanceKm float64, subtotal int64) pricing.Breakdown
}

type MerchantDirectory interface {
	Merchant(ctx context.Context, id types.ID) (order.Merchant, error)
}

type OrderCreator interface {
	Create(ctx context.Context, o *order.Order) (types.ID, error)
}

// EventRecorder captures the order-created event for the dispatch feed.
type EventRecorder interface {
	OrderCreated(ctx context.Context, o *order.Order) error
}

type Service struct {
	store     Store
	carts     Carts
	quoter    Quoter
	merchants MerchantDirectory
	creator   OrderCreator
	estimator DistanceEstimator
	events    EventRecorder
	now       func() time.Time

	// Collapses rapid duplicate submissions for the same session into a
	// single order create.
	submits singleflight.Group
}

type Deps struct {
	Store     Store
	Carts     Carts
	Quoter    Quoter
	Merchants MerchantDirectory
	Creator   OrderCreator
	Estimator DistanceEstimator
	Events    EventRecorder
}

func NewService(deps Deps) *Service {
	return &Service{
		store:     deps.Store,
		carts:     deps.Carts,
		quoter:    deps.Quoter,
		merchants: deps.Merchants,
		creator:   deps.Creator,
		estimator: deps.Estimator,
		events:    deps.Events,
		now:       time.Now,
	}
}

// Begin starts (or restarts) a checkout for the session's current cart.
func (s *Service) Begin(ctx context.Context, sessionID types.ID) (*Session, error) {
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	sess := &Session{
		ID:         sessionID,
		State:      StateLocationPending,
		MerchantID: c.MerchantID,
	}
	return sess, s.save(ctx, sess)
}

// Get returns the current checkout session.
func (s *Service) Get(ctx context.Context, sessionID types.ID) (*Session, error) {
	return s.store.Get(ctx, sessionID)
}

// SetLocation captures the delivery coordinate (device geolocation, map
// tap or search pick all arrive here) and computes the fee breakdown.
// Re-selecting a location recomputes fees in place.
func (s *Service) SetLocation(ctx context.Context, sessionID types.ID, p types.Point) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	normalize(sess)
	if !CanTransition(sess.State, StateFeeComputed) {
		return nil, ErrInvalidState
	}
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return nil, ErrEmptyCart
	}
	m, err := s.merchants.Merchant(ctx, c.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("resolve merchant: %w", err)
	}

	distance := s.distanceKm(ctx, m.Location, p)
	quote := s.quoter.Quote(ctx, distance, c.Subtotal())

	sess.MerchantID = c.MerchantID
	sess.Location = &p
	sess.DistanceKm = distance
	sess.Fees = &quote
	sess.State = StateFeeComputed
	sess.LastError = ""
	return sess, s.save(ctx, sess)
}

// SetReceiver stores the contact fields. Valid any time before submission.
func (s *Service) SetReceiver(ctx context.Context, sessionID types.ID, r Receiver) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	normalize(sess)
	if sess.State != StateLocationPending && sess.State != StateFeeComputed {
		return nil, ErrInvalidState
	}
	sess.Receiver = r
	return sess, s.save(ctx, sess)
}

// Refresh recomputes fees after a cart change while a location is already
// set, so the surcharge tier tracks the subtotal without the customer
// re-picking the location.
func (s *Service) Refresh(ctx context.Context, sessionID types.ID) (*Session, error) {
	sess, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	normalize(sess)
	if sess.State != StateFeeComputed || sess.Location == nil {
		return sess, nil
	}
	c, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if c.Empty() {
		return sess, nil
	}
	quote := s.quoter.Quote(ctx, sess.DistanceKm, c.Subtotal())
	sess.Fees = &quote
	return sess, s.save(ctx, sess)
}

type SubmitCommand struct {
	SessionID     types.ID
	CustomerUID   string
	CustomerEmail string
	// Receiver, when non-nil, updates the stored contact fields in the
	// same request (the checkout form posts everything together).
	Receiver *Receiver
}

// Submit confirms the order. Exactly one order document is created per
// successful submission; concurrent duplicates for the same session share
// one result, and a failed submission leaves the session retryable with
// all data intact.
func (s *Service) Submit(ctx context.Context, cmd SubmitCommand) (types.ID, error) {
	v, err, _ := s.submits.Do(string(cmd.SessionID), func() (interface{}, error) {
		return s.submit(ctx, cmd)
	})
	if err != nil {
		return "", err
	}
	return v.(types.ID), nil
}

func (s *Service) submit(ctx context.Context, cmd SubmitCommand) (types.ID, error) {
	if cmd.CustomerUID == "" {
		return "", ErrAuthRequired
	}
	sess, err := s.store.Get(ctx, cmd.SessionID)
	if err != nil {
		return "", err
	}
	normalize(sess)
	if sess.State == StateSubmitted {
		// Already placed; surface the same order instead of a duplicate.
		return sess.OrderID, nil
	}
	if !CanTransition(sess.State, StateSubmitting) {
		return "", ErrInvalidState
	}
	if cmd.Receiver != nil {
		sess.Receiver = *cmd.Receiver
	}
	if verr := validate(sess); verr != nil {
		// Validation failures never leave feeComputed.
		sess.State = StateFeeComputed
		_ = s.save(ctx, sess)
		return "", verr
	}

	c, err := s.carts.Get(ctx, cmd.SessionID)
	if err != nil {
		return "", err
	}
	if c.Empty() {
		return "", ErrEmptyCart
	}
	if sess.Fees.Subtotal != c.Subtotal() {
		// Cart changed since the location pick; refresh the surcharge tier.
		quote := s.quoter.Quote(ctx, sess.DistanceKm, c.Subtotal())
		sess.Fees = &quote
	}

	sess.State = StateSubmitting
	if err := s.save(ctx, sess); err != nil {
		return "", err
	}

	o := s.buildOrder(sess, c, cmd)
	id, err := s.creator.Create(ctx, o)
	if err != nil {
		sess.State = StateSubmissionFailed
		sess.LastError = err.Error()
		_ = s.save(ctx, sess)
		return "", fmt.Errorf("%w: %v", ErrSubmitFailed, err)
	}
	o.ID = id

	if s.events != nil {
		if err := s.events.OrderCreated(ctx, o); err != nil {
			slog.Error("checkout: record order event", "order_id", id, "error", err)
		}
	}
	if _, err := s.carts.Clear(ctx, cmd.SessionID); err != nil {
		slog.Error("checkout: clear cart after submit", "session_id", cmd.SessionID, "error", err)
	}

	sess.State = StateSubmitted
	sess.OrderID = id
	sess.LastError = ""
	if err := s.save(ctx, sess); err != nil {
		slog.Error("checkout: persist submitted session", "session_id", cmd.SessionID, "error", err)
	}
	return id, nil
}

func (s *Service) buildOrder(sess *Session, c *cart.Cart, cmd SubmitCommand) *order.Order {
	lines := make([]order.Line, len(c.Items))
	for i, it := range c.Items {
		lines[i] = order.Line{
			ItemID:    it.ID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice,
		}
	}
	return &order.Order{
		MerchantID:    sess.MerchantID,
		CustomerUID:   cmd.CustomerUID,
		CustomerEmail: cmd.CustomerEmail,
		ReceiverName:  sess.Receiver.Name,
		ReceiverPhone: sess.Receiver.Phone,
		Notes:         sess.Receiver.Notes,
		Dropoff:       &types.Point{Lat: sess.Location.Lat, Lng: sess.Location.Lng},
		Lines:         lines,
		Subtotal:      sess.Fees.Subtotal,
		CourierFee:    sess.Fees.CourierFee,
		HandlingFee:   sess.Fees.HandlingFee,
		GrandTotal:    sess.Fees.GrandTotal,
		Currency:      sess.Fees.Currency,
		PaymentMethod: "COD",
		Status:        order.StatusPending,
		CreatedAt:     s.now(),
	}
}

func (s *Service) distanceKm(ctx context.Context, origin, dest types.Point) float64 {
	if s.estimator != nil {
		if km, err := s.estimator.DrivingDistanceKm(ctx, origin, dest); err == nil {
			return km
		} else {
			slog.Warn("checkout: routing lookup failed, using great-circle distance", "error", err)
		}
	}
	return geo.DistanceKm(origin, dest)
}

func (s *Service) save(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = s.now()
	return s.store.Put(ctx, sess)
}

func validate(sess *Session) *ValidationError {
	fields := make(map[string]string)
	if strings.TrimSpace(sess.Receiver.Name) == "" {
		fields["name"] = "receiver name is required"
	}
	if strings.TrimSpace(sess.Receiver.Phone) == "" {
		fields["phone"] = "contact number is required"
	}
	if sess.Location == nil || sess.Fees == nil {
		fields["location"] = "delivery location is required"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// normalize folds the transient failure state back into feeComputed so
// the customer can edit and retry.
func normalize(sess *Session) {
	if sess.State == StateSubmissionFailed {
		sess.State = StateFeeComputed
	}
}
