// README: Decode/encode layer between content-store documents and typed orders.
package order

import (
	"errors"
	"fmt"
	"time"

	"pronto/internal/types"
)

var (
	ErrNotFound    = errors.New("order: not found")
	ErrBadDocument = errors.New("order: malformed document")
)

// Document mirrors the raw foodOrder document shape in the content store.
// Everything the rest of the system touches goes through Decode first so
// untyped data never leaks past this boundary.
type Document struct {
	ID              string  `json:"_id"`
	ReceiverName    string  `json:"receiverName"`
	ReceiverContact string  `json:"receiverContact"`
	CustomerUID     string  `json:"customerUid"`
	CustomerEmail   string  `json:"customerEmail"`
	Notes           string  `json:"notes"`
	FoodTotal       *int64  `json:"foodTotal"`
	DeliveryCharge  *int64  `json:"deliveryCharge"`
	HandlingFee     *int64  `json:"handlingFee"`
	GrandTotal      *int64  `json:"grandTotal"`
	Currency        string  `json:"currency"`
	PaymentMethod   string  `json:"paymentMethod"`
	OrderStatus     string  `json:"orderStatus"`
	CreatedAt       string  `json:"createdAt"`

	DeliveryLocation *struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"deliveryLocation"`

	Restaurant *struct {
		ID       string `json:"_id"`
		Name     string `json:"name"`
		Location *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"restaurant"`

	Rider *struct {
		ID       string `json:"_id"`
		Name     string `json:"name"`
		Location *struct {
			Lat float64 `json:"lat"`
			Lng float64 `json:"lng"`
		} `json:"location"`
	} `json:"rider"`

	OrderedItems []struct {
		ItemID   string `json:"itemId"`
		Name     string `json:"name"`
		Quantity int    `json:"quantity"`
		Price    *int64 `json:"price"`
	} `json:"orderedItems"`

	StatusUpdates []struct {
		Status    string `json:"status"`
		Timestamp string `json:"timestamp"`
	} `json:"statusUpdates"`
}

// Decode validates a raw document into an Order. Malformed essentials
// (missing id, unknown status) are rejected; optional fields default
// instead of propagating zero-value surprises into fee arithmetic.
// Coordinates stay nil when absent so a missing deliveryLocation is
// never mistaken for a point at the origin.
func (d *Document) Decode() (*Order, error) {
	if d.ID == "" {
		return nil, fmt.Errorf("%w: missing _id", ErrBadDocument)
	}
	status := Status(d.OrderStatus)
	if !Known(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrBadDocument, d.OrderStatus)
	}

	o := &Order{
		ID:            types.ID(d.ID),
		ReceiverName:  d.ReceiverName,
		ReceiverPhone: d.ReceiverContact,
		CustomerUID:   d.CustomerUID,
		CustomerEmail: d.CustomerEmail,
		Notes:         d.Notes,
		Subtotal:      deref(d.FoodTotal),
		CourierFee:    deref(d.DeliveryCharge),
		HandlingFee:   deref(d.HandlingFee),
		GrandTotal:    deref(d.GrandTotal),
		Currency:      defaultString(d.Currency, "LKR"),
		PaymentMethod: defaultString(d.PaymentMethod, "COD"),
		Status:        status,
	}
	if o.Subtotal < 0 || o.CourierFee < 0 || o.HandlingFee < 0 {
		return nil, fmt.Errorf("%w: negative amount", ErrBadDocument)
	}

	if d.DeliveryLocation != nil {
		o.Dropoff = &types.Point{Lat: d.DeliveryLocation.Lat, Lng: d.DeliveryLocation.Lng}
	}
	if d.Restaurant != nil {
		o.MerchantID = types.ID(d.Restaurant.ID)
		o.MerchantName = d.Restaurant.Name
		if d.Restaurant.Location != nil {
			o.MerchantLocation = &types.Point{Lat: d.Restaurant.Location.Lat, Lng: d.Restaurant.Location.Lng}
		}
	}
	if d.Rider != nil {
		o.RiderID = types.ID(d.Rider.ID)
		o.RiderName = d.Rider.Name
		if d.Rider.Location != nil {
			o.RiderLocation = &types.Point{Lat: d.Rider.Location.Lat, Lng: d.Rider.Location.Lng}
		}
	}

	for _, it := range d.OrderedItems {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: non-positive quantity", ErrBadDocument)
		}
		o.Lines = append(o.Lines, Line{
			ItemID:    types.ID(it.ItemID),
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: deref(it.Price),
		})
	}
	for _, su := range d.StatusUpdates {
		entry := StatusUpdate{Status: Status(su.Status)}
		if t, err := time.Parse(time.RFC3339, su.Timestamp); err == nil {
			entry.At = t
		}
		o.History = append(o.History, entry)
	}
	if t, err := time.Parse(time.RFC3339, d.CreatedAt); err == nil {
		o.CreatedAt = t
	}
	return o, nil
}

// EncodeNew builds the create-mutation payload for a freshly submitted
// order. The document carries value snapshots, not live references, for
// everything the kitchen needs to see even if the menu changes later.
func EncodeNew(o *Order, now time.Time) map[string]any {
	items := make([]map[string]any, len(o.Lines))
	for i, l := range o.Lines {
		items[i] = map[string]any{
			"_key":     fmt.Sprintf("%s-%d", l.ItemID, i),
			"itemId":   string(l.ItemID),
			"name":     l.Name,
			"quantity": l.Quantity,
			"price":    l.UnitPrice,
		}
	}
	return map[string]any{
		"_type":           "foodOrder",
		"receiverName":    o.ReceiverName,
		"receiverContact": o.ReceiverPhone,
		"customerUid":     o.CustomerUID,
		"customerEmail":   o.CustomerEmail,
		"notes":           o.Notes,
		"restaurant":      map[string]any{"_type": "reference", "_ref": string(o.MerchantID)},
		"deliveryLocation": map[string]any{
			"lat": o.Dropoff.Lat,
			"lng": o.Dropoff.Lng,
		},
		"orderedItems":   items,
		"foodTotal":      o.Subtotal,
		"deliveryCharge": o.CourierFee,
		"handlingFee":    o.HandlingFee,
		"grandTotal":     o.GrandTotal,
		"currency":       o.Currency,
		"paymentMethod":  o.PaymentMethod,
		"orderStatus":    string(StatusPending),
		"createdAt":      now.UTC().Format(time.RFC3339),
		"statusUpdates": []map[string]any{{
			"_key":      "initial",
			"status":    string(StatusPending),
			"timestamp": now.UTC().Format(time.RFC3339),
		}},
	}
}

func deref(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}

func defaultString(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
