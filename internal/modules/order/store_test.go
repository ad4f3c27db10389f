// README: Store tests against a stubbed content API.
package order

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"pronto/internal/content"
)

func TestAttachPaymentProof(t *testing.T) {
	var body struct {
		Mutations []struct {
			Patch struct {
				ID  string         `json:"id"`
				Set map[string]any `json:"set"`
			} `json:"patch"`
		} `json:"mutations"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode mutation body: %v", err)
		}
		w.Write([]byte(`{"transactionId": "tx1"}`))
	}))
	defer srv.Close()

	store := NewStore(content.NewClient(content.Config{Dataset: "production", BaseURL: srv.URL}))
	if err := store.AttachPaymentProof(context.Background(), "order-1", "image-abc-800x600-jpg"); err != nil {
		t.Fatalf("attach: %v", err)
	}

	if len(body.Mutations) != 1 || body.Mutations[0].Patch.ID != "order-1" {
		t.Fatalf("patch mutation = %+v", body.Mutations)
	}
	proof, ok := body.Mutations[0].Patch.Set["paymentProof"].(map[string]any)
	if !ok {
		t.Fatalf("paymentProof not set: %+v", body.Mutations[0].Patch.Set)
	}
	asset, ok := proof["asset"].(map[string]any)
	if !ok || asset["_ref"] != "image-abc-800x600-jpg" || asset["_type"] != "reference" {
		t.Errorf("asset reference = %+v", proof)
	}
}
