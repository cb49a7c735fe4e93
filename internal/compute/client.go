// Package compute talks to the simulation backend that renders the plots.
package compute

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ziadkadry99/ecoform/internal/schema"
)

// Response is the backend's reply to a simulation request.
type Response struct {
	Status   string `json:"status"`
	TimeUsed string `json:"time_used,omitempty"`
}

// Client posts simulation requests to the backend.
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient creates a Client for the backend at baseURL. A zero timeout
// means requests wait as long as the backend takes.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the backend root the client posts to.
func (c *Client) BaseURL() string { return c.baseURL }

// DrawGraphics submits the form values and returns the backend status.
func (c *Client) DrawGraphics(ctx context.Context, req schema.Request) (*Response, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}

	var resp Response
	if err := c.post(ctx, "/draw_graphics", payload, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ClearImages asks the backend to delete previously generated images.
func (c *Client) ClearImages(ctx context.Context) (string, error) {
	var resp Response
	if err := c.post(ctx, "/clear_images", nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

func (c *Client) post(ctx context.Context, path string, payload []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("sending request to %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s returned status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}
