package content

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Config{
		Dataset: "production",
		Token:   "secret-token",
		BaseURL: srv.URL,
	})
}

func TestFetch_DecodesResultEnvelope(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/data/query/production")
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Equal(t, `"order123"`, r.URL.Query().Get("$id"))
		fmt.Fprint(w, `{"result": {"_id": "order123", "orderStatus": "preparing"}}`)
	}))

	var doc struct {
		ID     string `json:"_id"`
		Status string `json:"orderStatus"`
	}
	err := client.Fetch(context.Background(), `*[_id == $id][0]`, map[string]any{"id": "order123"}, &doc)
	require.NoError(t, err)
	assert.Equal(t, "order123", doc.ID)
	assert.Equal(t, "preparing", doc.Status)
}

func TestFetch_NullResultIsNotFound(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"result": null}`)
	}))

	var doc map[string]any
	err := client.Fetch(context.Background(), `*[_id == $id][0]`, nil, &doc)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreate_ReturnsDocumentID(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/data/mutate/production")
		fmt.Fprint(w, `{"results": [{"id": "new-order-1"}]}`)
	}))

	id, err := client.Create(context.Background(), map[string]any{"_type": "foodOrder"})
	require.NoError(t, err)
	assert.Equal(t, "new-order-1", string(id))
}

func TestPatch_SendsSetMutation(t *testing.T) {
	var body struct {
		Mutations []struct {
			Patch struct {
				ID  string         `json:"id"`
				Set map[string]any `json:"set"`
			} `json:"patch"`
		} `json:"mutations"`
	}
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		assert.Contains(t, r.URL.Path, "/data/mutate/production")
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fmt.Fprint(w, `{"transactionId": "tx1"}`)
	}))

	err := client.Patch(context.Background(), "order123", map[string]any{"notes": "leave at gate"})
	require.NoError(t, err)
	require.Len(t, body.Mutations, 1)
	assert.Equal(t, "order123", body.Mutations[0].Patch.ID)
	assert.Equal(t, "leave at gate", body.Mutations[0].Patch.Set["notes"])
}

func TestPatch_ServerErrorSurfaces(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))

	err := client.Patch(context.Background(), "order123", map[string]any{"notes": "x"})
	assert.Error(t, err)
}

func TestCreate_ServerErrorSurfaces(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.Create(context.Background(), map[string]any{"_type": "foodOrder"})
	assert.Error(t, err)
}

func TestListen_EmitsMutationEvents(t *testing.T) {
	stream := strings.Join([]string{
		"event: welcome",
		`data: {"listenerName":"x"}`,
		"",
		"event: mutation",
		`data: {"documentId":"order123","transition":"update"}`,
		"",
		"event: mutation",
		`data: {"documentId":"order123","transition":"update"}`,
		"",
	}, "\n") + "\n"

	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/data/listen/production")
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, stream)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := client.Listen(ctx, `*[_id == $id]`, map[string]any{"id": "order123"})
	require.NoError(t, err)

	var got []Event
	for ev := range events {
		got = append(got, ev)
	}
	require.Len(t, got, 2, "welcome event must be filtered out")
	assert.Equal(t, "order123", got[0].DocumentID)
	assert.Equal(t, "update", got[0].Transition)
}

func TestImageURL(t *testing.T) {
	client := NewClient(Config{ProjectID: "p1", Dataset: "production"})
	url := client.ImageURL("image-abc-200x200-jpg", 120, 80)
	assert.Contains(t, url, "image-abc-200x200-jpg")
	assert.Contains(t, url, "w=120")
	assert.Contains(t, url, "h=80")

	plain := client.ImageURL("image-abc-200x200-jpg", 0, 0)
	assert.NotContains(t, plain, "?")
}
