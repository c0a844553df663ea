package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	xerrors "github.com/Iron-Ham/xcstatus/internal/errors"
	"github.com/Iron-Ham/xcstatus/internal/status"
)

// Client posts updates to a running status server. The build watcher uses it
// with a short timeout so a dead server costs one tick, not a hang.
type Client struct {
	// BaseURL is the server root, e.g. "http://127.0.0.1:8765".
	BaseURL string

	httpClient *http.Client
}

// NewClient creates a Client for baseURL with the given request timeout.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		BaseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// PostUpdate sends a partial update to the server. Failures wrap ErrTimeout
// or ErrTransport so callers can treat them as retryable.
func (c *Client) PostUpdate(ctx context.Context, update status.Update) error {
	body, err := json.Marshal(update)
	if err != nil {
		return xerrors.Wrap(err, "encoding update")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/update", bytes.NewReader(body))
	if err != nil {
		return xerrors.Wrap(err, "building update request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return xerrors.Wrapf(transportErr(err), "posting update: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("update rejected: status %d", resp.StatusCode)
	}
	return nil
}

// Health reports whether the server answers its liveness probe.
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	return resp.StatusCode == http.StatusOK
}

// GetStatus fetches the server's current snapshot.
func (c *Client) GetStatus(ctx context.Context) (status.Snapshot, error) {
	var snap status.Snapshot

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/status", nil)
	if err != nil {
		return snap, xerrors.Wrap(err, "building status request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return snap, xerrors.Wrapf(transportErr(err), "fetching status: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return snap, fmt.Errorf("status request failed: status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(&snap); err != nil {
		return snap, xerrors.Wrap(err, "decoding status response")
	}
	return snap, nil
}

// transportErr maps a request failure onto the matching sentinel. Deadline
// expiry covers both the per-request timeout and a cancelled parent context.
func transportErr(err error) error {
	if xerrors.Is(err, context.DeadlineExceeded) {
		return xerrors.ErrTimeout
	}
	return xerrors.ErrTransport
}
