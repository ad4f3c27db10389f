package content

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var ErrNotFound = errors.New("content: document not found")

// Event is one change notification from the store's listen feed. The
// payload is deliberately minimal: pushes are treated as a signal to
// re-fetch the full document, never as authoritative data, because the
// raw delta lacks joined fields.
type Event struct {
	Type       string `json:"type"`
	DocumentID string `json:"documentId"`
	Transition string `json:"transition"`
}

// Listen opens a server-sent-events subscription for documents matching
// the query. The returned channel closes when ctx is cancelled or the
// upstream connection drops; callers re-subscribe if they still care.
func (c *Client) Listen(ctx context.Context, query string, params map[string]any) (<-chan Event, error) {
	values := url.Values{}
	values.Set("query", query)
	values.Set("includeResult", "false")
	for k, v := range params {
		enc, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("content: encode param %s: %w", k, err)
		}
		values.Set("$"+k, string(enc))
	}

	endpoint := fmt.Sprintf("%s/data/listen/%s?%s", c.baseURL, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	c.authorize(req)

	// Streaming connection: the client-wide timeout would kill it.
	streamClient := &http.Client{Transport: c.httpc.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("content: listen: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("content: listen returned %s", resp.Status)
	}

	events := make(chan Event)
	go func() {
		defer close(events)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

		var eventType string
		for scanner.Scan() {
			line := scanner.Text()
			switch {
			case strings.HasPrefix(line, "event:"):
				eventType = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
			case strings.HasPrefix(line, "data:"):
				if eventType != "mutation" {
					continue
				}
				var ev Event
				if err := json.Unmarshal([]byte(strings.TrimPrefix(line, "data:")), &ev); err != nil {
					continue
				}
				ev.Type = eventType
				select {
				case events <- ev:
				case <-ctx.Done():
					return
				}
			case line == "":
				eventType = ""
			}
		}
	}()
	return events, nil
}
