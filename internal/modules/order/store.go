// README: Order reads/writes against the content store.
package order

import (
	"context"
	"errors"
	"fmt"

	"pronto/internal/content"
	"pronto/internal/types"
)

// orderProjection joins the fields only a full fetch can resolve (rider
// and restaurant documents behind references).
const orderProjection = `{
	...,
	"restaurant": restaurant->{_id, name, location},
	"rider": rider->{_id, name, location}
}`

type Store struct {
	client *content.Client
}

func NewStore(client *content.Client) *Store {
	return &Store{client: client}
}

// Get fetches and decodes one order with all joined fields resolved.
func (s *Store) Get(ctx context.Context, id types.ID) (*Order, error) {
	var doc Document
	query := fmt.Sprintf(`*[_type == "foodOrder" && _id == $id][0]%s`, orderProjection)
	err := s.client.Fetch(ctx, query, map[string]any{"id": string(id)}, &doc)
	if errors.Is(err, content.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc.Decode()
}

// ListByCustomer returns a customer's order history, newest first.
func (s *Store) ListByCustomer(ctx context.Context, uid string) ([]*Order, error) {
	var docs []Document
	query := fmt.Sprintf(`*[_type == "foodOrder" && customerUid == $uid] | order(createdAt desc)%s`, orderProjection)
	err := s.client.Fetch(ctx, query, map[string]any{"uid": uid}, &docs)
	if errors.Is(err, content.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	orders := make([]*Order, 0, len(docs))
	for i := range docs {
		o, err := docs[i].Decode()
		if err != nil {
			// One bad document must not break the whole listing.
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// Create persists a new order document and returns its id.
func (s *Store) Create(ctx context.Context, o *Order) (types.ID, error) {
	return s.client.Create(ctx, EncodeNew(o, o.CreatedAt))
}

// AttachPaymentProof links an uploaded slip image to the order document
// as an image reference, where the dispatch dashboard reviews it.
func (s *Store) AttachPaymentProof(ctx context.Context, orderID, assetID types.ID) error {
	return s.client.Patch(ctx, orderID, map[string]any{
		"paymentProof": map[string]any{
			"_type": "image",
			"asset": map[string]any{"_type": "reference", "_ref": string(assetID)},
		},
	})
}

// Merchant resolves a restaurant's name and coordinates.
func (s *Store) Merchant(ctx context.Context, id types.ID) (Merchant, error) {
	var doc struct {
		ID       string `json:"_id"`
		Name     string `json:"name"`
		Location *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	}
	query := `*[_type == "restaurant" && _id == $id][0]{_id, name, location}`
	err := s.client.Fetch(ctx, query, map[string]any{"id": string(id)}, &doc)
	if errors.Is(err, content.ErrNotFound) {
		return Merchant{}, ErrNotFound
	}
	if err != nil {
		return Merchant{}, err
	}
	m := Merchant{ID: types.ID(doc.ID), Name: doc.Name}
	if doc.Location == nil {
		return Merchant{}, fmt.Errorf("%w: restaurant %s has no location", ErrBadDocument, id)
	}
	m.Location = types.Point{Lat: doc.Location.Lat, Lng: doc.Location.Lng}
	return m, nil
}

// Listen subscribes to change notifications for one order document.
func (s *Store) Listen(ctx context.Context, id types.ID) (<-chan content.Event, error) {
	return s.client.Listen(ctx, `*[_id == $id]`, map[string]any{"id": string(id)})
}

// ListenRider subscribes to change notifications for a rider document,
// used for live courier coordinates once one is assigned.
func (s *Store) ListenRider(ctx context.Context, riderID types.ID) (<-chan content.Event, error) {
	return s.client.Listen(ctx, `*[_id == $id]`, map[string]any{"id": string(riderID)})
}
