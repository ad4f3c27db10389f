// Package content is the typed boundary to the hosted document store
// (a Sanity-style content API). Write-capable credentials stay on this
// server; browsers only ever talk to our HTTP surface.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"pronto/internal/types"
)

type Config struct {
	ProjectID  string
	Dataset    string
	Token      string
	APIVersion string
	// BaseURL overrides the derived API host; tests point it at a local server.
	BaseURL string
	CDNURL  string
}

type Client struct {
	httpc   *http.Client
	baseURL string
	cdnURL  string
	dataset string
	token   string
}

func NewClient(cfg Config) *Client {
	version := cfg.APIVersion
	if version == "" {
		version = "2024-01-01"
	}
	base := cfg.BaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.api.sanity.io/v%s", cfg.ProjectID, version)
	}
	cdn := cfg.CDNURL
	if cdn == "" {
		cdn = fmt.Sprintf("https://cdn.sanity.io/images/%s/%s", cfg.ProjectID, cfg.Dataset)
	}
	return &Client{
		httpc:   &http.Client{Timeout: 15 * time.Second},
		baseURL: base,
		cdnURL:  cdn,
		dataset: cfg.Dataset,
		token:   cfg.Token,
	}
}

// Fetch runs a query with named parameters and decodes the result
// envelope into out.
func (c *Client) Fetch(ctx context.Context, query string, params map[string]any, out any) error {
	values := url.Values{}
	values.Set("query", query)
	for k, v := range params {
		enc, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("content: encode param %s: %w", k, err)
		}
		values.Set("$"+k, string(enc))
	}

	endpoint := fmt.Sprintf("%s/data/query/%s?%s", c.baseURL, c.dataset, values.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("content: query: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content: query returned %s", resp.Status)
	}

	var envelope struct {
		Result json.RawMessage `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("content: decode envelope: %w", err)
	}
	if len(envelope.Result) == 0 || string(envelope.Result) == "null" {
		return ErrNotFound
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return fmt.Errorf("content: decode result: %w", err)
	}
	return nil
}

// Create persists a new document and returns its generated identifier.
func (c *Client) Create(ctx context.Context, doc map[string]any) (types.ID, error) {
	body, err := json.Marshal(map[string]any{
		"mutations": []map[string]any{{"create": doc}},
	})
	if err != nil {
		return "", fmt.Errorf("content: encode mutation: %w", err)
	}

	endpoint := fmt.Sprintf("%s/data/mutate/%s?returnIds=true", c.baseURL, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("content: mutate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content: mutate returned %s", resp.Status)
	}

	var envelope struct {
		Results []struct {
			ID string `json:"id"`
		} `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("content: decode mutate response: %w", err)
	}
	if len(envelope.Results) == 0 || envelope.Results[0].ID == "" {
		return "", fmt.Errorf("content: mutate returned no document id")
	}
	return types.ID(envelope.Results[0].ID), nil
}

// Patch sets fields on an existing document. Missing fields are added,
// present ones overwritten; the rest of the document is untouched.
func (c *Client) Patch(ctx context.Context, id types.ID, set map[string]any) error {
	body, err := json.Marshal(map[string]any{
		"mutations": []map[string]any{{"patch": map[string]any{
			"id":  string(id),
			"set": set,
		}}},
	})
	if err != nil {
		return fmt.Errorf("content: encode mutation: %w", err)
	}

	endpoint := fmt.Sprintf("%s/data/mutate/%s", c.baseURL, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("content: mutate: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("content: mutate returned %s", resp.Status)
	}
	return nil
}

// UploadAsset streams a binary asset (payment-proof images) to the store
// and returns the asset document id.
func (c *Client) UploadAsset(ctx context.Context, r io.Reader, contentType string) (types.ID, error) {
	endpoint := fmt.Sprintf("%s/assets/images/%s", c.baseURL, c.dataset)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, r)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", contentType)
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("content: upload asset: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("content: upload returned %s", resp.Status)
	}

	var envelope struct {
		Document struct {
			ID string `json:"_id"`
		} `json:"document"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return "", fmt.Errorf("content: decode upload response: %w", err)
	}
	if envelope.Document.ID == "" {
		return "", fmt.Errorf("content: upload returned no asset id")
	}
	return types.ID(envelope.Document.ID), nil
}

// ImageURL builds a CDN delivery URL for a stored image asset, optionally
// resized.
func (c *Client) ImageURL(assetID string, width, height int) string {
	u := fmt.Sprintf("%s/%s", c.cdnURL, assetID)
	if width > 0 && height > 0 {
		u = fmt.Sprintf("%s?w=%d&h=%d&fit=crop", u, width, height)
	}
	return u
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}
