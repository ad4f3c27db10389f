// README: Document boundary tests (decode validation, stage indexing).
package order

import (
	"encoding/json"
	"testing"
)

func TestStageIndex(t *testing.T) {
	tests := []struct {
		status Status
		want   int
	}{
		{StatusPending, 0},
		{StatusPreparing, 1},
		{StatusReadyForPickup, 2},
		{StatusAssigned, 3},
		{StatusOnTheWay, 4},
		{StatusCompleted, 5},
		{StatusCancelled, -1},
		{Status("bogus"), -1},
	}
	for _, tt := range tests {
		if got := StageIndex(tt.status); got != tt.want {
			t.Errorf("StageIndex(%s) = %d, want %d", tt.status, got, tt.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusPending, StatusPreparing, StatusReadyForPickup, StatusAssigned, StatusOnTheWay} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusCompleted, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

const fullDocJSON = `{
	"_id": "order-1",
	"receiverName": "Nimal",
	"receiverContact": "0771234567",
	"customerUid": "uid-1",
	"customerEmail": "nimal@example.com",
	"foodTotal": 2400,
	"deliveryCharge": 240,
	"handlingFee": 60,
	"grandTotal": 2700,
	"currency": "LKR",
	"paymentMethod": "COD",
	"orderStatus": "assigned",
	"createdAt": "2026-04-02T09:30:00Z",
	"deliveryLocation": {"lat": 6.92, "lng": 79.86},
	"restaurant": {"_id": "rest-1", "name": "Upali's", "location": {"lat": 6.91, "lng": 79.85}},
	"rider": {"_id": "rider-1", "name": "Kasun", "location": {"lat": 6.915, "lng": 79.855}},
	"orderedItems": [{"itemId": "kottu", "name": "Chicken Kottu", "quantity": 2, "price": 1200}],
	"statusUpdates": [
		{"status": "pending", "timestamp": "2026-04-02T09:30:00Z"},
		{"status": "assigned", "timestamp": "2026-04-02T09:45:00Z"}
	]
}`

func TestDecode_FullDocument(t *testing.T) {
	var doc Document
	if err := json.Unmarshal([]byte(fullDocJSON), &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	o, err := doc.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if o.ID != "order-1" || o.Status != StatusAssigned {
		t.Errorf("id/status = %s/%s", o.ID, o.Status)
	}
	if o.Dropoff == nil || o.Dropoff.Lat != 6.92 {
		t.Errorf("delivery location not decoded: %+v", o.Dropoff)
	}
	if o.MerchantName != "Upali's" || o.MerchantLocation == nil {
		t.Errorf("merchant join not decoded: %+v", o)
	}
	if o.RiderID != "rider-1" || o.RiderLocation == nil {
		t.Errorf("rider join not decoded: %+v", o)
	}
	if len(o.Lines) != 1 || o.Lines[0].UnitPrice != 1200 || o.Lines[0].Quantity != 2 {
		t.Errorf("lines not decoded: %+v", o.Lines)
	}
	if len(o.History) != 2 || o.History[1].Status != StatusAssigned {
		t.Errorf("history not decoded: %+v", o.History)
	}
	if o.GrandTotal != 2700 {
		t.Errorf("grand total = %d", o.GrandTotal)
	}
}

func TestDecode_RejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  Document
	}{
		{"missing id", Document{OrderStatus: "pending"}},
		{"unknown status", Document{ID: "o1", OrderStatus: "shipped"}},
		{"empty status", Document{ID: "o1"}},
		{"negative amount", Document{ID: "o1", OrderStatus: "pending", FoodTotal: ptr(int64(-5))}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.doc.Decode(); err == nil {
				t.Error("expected decode error")
			}
		})
	}
}

func TestDecode_DefaultsOptionalFields(t *testing.T) {
	doc := Document{ID: "o1", OrderStatus: "pending"}
	o, err := doc.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if o.Currency != "LKR" || o.PaymentMethod != "COD" {
		t.Errorf("defaults not applied: %+v", o)
	}
	if o.Subtotal != 0 || o.GrandTotal != 0 {
		t.Errorf("missing amounts should default to zero: %+v", o)
	}
	if o.MerchantLocation != nil || o.RiderLocation != nil {
		t.Errorf("absent joins should stay nil")
	}
	if o.Dropoff != nil {
		t.Errorf("absent deliveryLocation should stay nil, got %+v", o.Dropoff)
	}
}

func TestEncodeNew_RoundTripEssentials(t *testing.T) {
	var src Document
	if err := json.Unmarshal([]byte(fullDocJSON), &src); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	o, err := src.Decode()
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	doc := EncodeNew(o, o.CreatedAt)
	if doc["_type"] != "foodOrder" {
		t.Errorf("_type = %v", doc["_type"])
	}
	if doc["orderStatus"] != "pending" {
		t.Errorf("new orders must start pending, got %v", doc["orderStatus"])
	}
	if doc["grandTotal"] != int64(2700) {
		t.Errorf("grandTotal = %v", doc["grandTotal"])
	}
	updates, ok := doc["statusUpdates"].([]map[string]any)
	if !ok || len(updates) != 1 {
		t.Fatalf("statusUpdates = %v", doc["statusUpdates"])
	}
	if updates[0]["status"] != "pending" {
		t.Errorf("initial history entry = %v", updates[0])
	}
}

func ptr(v int64) *int64 { return &v }
