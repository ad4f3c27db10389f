// README: Cart service; all mutations funnel through these operations.
package cart

import (
	"context"
	"errors"
	"time"

	"pronto/internal/types"
)

var (
	// ErrMerchantConflict signals that the item belongs to a different
	// merchant than the cart's current owner. The cart is left untouched;
	// the caller must either abandon the add or call ConfirmReplace.
	ErrMerchantConflict = errors.New("cart: item belongs to a different merchant")
	ErrBadItem          = errors.New("cart: invalid item")
	ErrNotFound         = errors.New("cart: item not in cart")
)

// Store persists session carts. A missing cart is not an error: Get
// returns a fresh empty cart for the session.
type Store interface {
	Get(ctx context.Context, sessionID types.ID) (*Cart, error)
	Put(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, sessionID types.ID) error
}

type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

func (s *Service) Get(ctx context.Context, sessionID types.ID) (*Cart, error) {
	return s.store.Get(ctx, sessionID)
}

// AddItem inserts the item (quantity 1) or increments an existing line.
// An empty cart adopts the item's merchant. A non-empty cart owned by a
// different merchant is never mutated; the caller gets ErrMerchantConflict
// and decides whether to replace the cart.
func (s *Service) AddItem(ctx context.Context, sessionID types.ID, item Item) (*Cart, error) {
	if item.ID == "" || item.MerchantID == "" || item.UnitPrice < 0 {
		return nil, ErrBadItem
	}
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if !c.Empty() && c.MerchantID != item.MerchantID {
		return nil, ErrMerchantConflict
	}
	c.MerchantID = item.MerchantID
	if i := c.find(item.ID); i >= 0 {
		c.Items[i].Quantity++
	} else {
		item.Quantity = 1
		c.Items = append(c.Items, item)
	}
	return s.save(ctx, c)
}

// ConfirmReplace resolves a merchant conflict: the old cart is discarded
// and the pending item starts a fresh single-merchant cart.
func (s *Service) ConfirmReplace(ctx context.Context, sessionID types.ID, item Item) (*Cart, error) {
	if item.ID == "" || item.MerchantID == "" || item.UnitPrice < 0 {
		return nil, ErrBadItem
	}
	item.Quantity = 1
	c := &Cart{
		SessionID:  sessionID,
		MerchantID: item.MerchantID,
		Items:      []Item{item},
	}
	return s.save(ctx, c)
}

// UpdateQuantity sets the line quantity exactly; anything below one
// behaves as RemoveItem.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, itemID types.ID, quantity int) (*Cart, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, sessionID, itemID)
	}
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	i := c.find(itemID)
	if i < 0 {
		return nil, ErrNotFound
	}
	c.Items[i].Quantity = quantity
	return s.save(ctx, c)
}

// RemoveItem deletes the line. Removing the last item clears the owning
// merchant so a later add from any merchant succeeds without conflict.
func (s *Service) RemoveItem(ctx context.Context, sessionID, itemID types.ID) (*Cart, error) {
	c, err := s.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	i := c.find(itemID)
	if i < 0 {
		return nil, ErrNotFound
	}
	c.Items = append(c.Items[:i], c.Items[i+1:]...)
	if c.Empty() {
		c.MerchantID = ""
	}
	return s.save(ctx, c)
}

// Clear empties the cart. Idempotent.
func (s *Service) Clear(ctx context.Context, sessionID types.ID) (*Cart, error) {
	c := &Cart{SessionID: sessionID}
	return s.save(ctx, c)
}

func (s *Service) save(ctx context.Context, c *Cart) (*Cart, error) {
	c.UpdatedAt = s.now()
	if err := s.store.Put(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}
