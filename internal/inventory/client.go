package inventory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zfrey55/shackpck-sub000/internal/config"
)

// RemoteSeries is a catalog record owned by the external inventory app,
// referenced from the local catalog by external_ref.
type RemoteSeries struct {
	Ref        string          `json:"ref"`
	Name       string          `json:"name"`
	Price      decimal.Decimal `json:"price"`
	TotalCount int             `json:"total_count"`
	SoldCount  int             `json:"sold_count"`
	Active     bool            `json:"active"`
}

// SeriesSales is the per-series sales aggregate the inventory app reports.
type SeriesSales struct {
	Ref       string `json:"ref"`
	UnitsSold int    `json:"units_sold"`
}

// ChecklistEntry is one item of the inventory app's daily fulfillment list.
type ChecklistEntry struct {
	Ref  string `json:"ref"`
	Name string `json:"name"`
	Due  int    `json:"due"`
}

// Client is the external inventory/catalog collaborator.
type Client interface {
	GetFeaturedSeries(ctx context.Context) ([]RemoteSeries, error)
	GetSeries(ctx context.Context, ref string) (*RemoteSeries, error)
	GetSeriesSales(ctx context.Context, ref string) (*SeriesSales, error)
	RecordPackSale(ctx context.Context, ref string, quantity int) error
	SyncUser(ctx context.Context, email, name string) error
	GetDailyChecklist(ctx context.Context) ([]ChecklistEntry, error)
	GetAvailableDates(ctx context.Context) ([]string, error)
}

// envelope is the inventory app's uniform response shape. Non-success reads
// are soft failures: the caller gets an empty result, not an error.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type HTTPClient struct {
	baseURL string
	orgID   string
	client  *http.Client

	// sale-push retry knobs, overridable in tests
	maxAttempts  int
	retryBackoff time.Duration
}

func NewHTTPClient(cfg *config.InventoryConfig) *HTTPClient {
	return &HTTPClient{
		baseURL: cfg.BaseURL,
		orgID:   cfg.OrgID,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		maxAttempts:  3,
		retryBackoff: time.Second,
	}
}

func (c *HTTPClient) endpoint(path string) string {
	return fmt.Sprintf("%s/%s?org=%s", c.baseURL, path, url.QueryEscape(c.orgID))
}

// get performs a read call. A non-200 status or a non-success envelope yields
// (false, nil): the storefront degrades to an empty result rather than failing
// the request because the inventory app is down.
func (c *HTTPClient) get(ctx context.Context, path string, out any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path), nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return false, nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false, fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return false, nil
	}
	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return false, fmt.Errorf("failed to decode payload: %w", err)
		}
	}
	return true, nil
}

// post performs a write call. Unlike reads, a non-success response is a real
// error so the caller can retry.
func (c *HTTPClient) post(ctx context.Context, path string, body any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(path), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("inventory API error %d: %s", resp.StatusCode, string(raw))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		return fmt.Errorf("inventory API rejected request: %s", env.Message)
	}
	return nil
}

func (c *HTTPClient) GetFeaturedSeries(ctx context.Context) ([]RemoteSeries, error) {
	var out []RemoteSeries
	ok, err := c.get(ctx, "getFeaturedSeries", &out)
	if err != nil || !ok {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetSeries(ctx context.Context, ref string) (*RemoteSeries, error) {
	var out RemoteSeries
	ok, err := c.get(ctx, "getSeries/"+url.PathEscape(ref), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) GetSeriesSales(ctx context.Context, ref string) (*SeriesSales, error) {
	var out SeriesSales
	ok, err := c.get(ctx, "getSeriesSales/"+url.PathEscape(ref), &out)
	if err != nil || !ok {
		return nil, err
	}
	return &out, nil
}

// RecordPackSale pushes a per-series sale aggregate. The push is retried with
// exponential backoff because losing it desyncs the remote ledger; after the
// final attempt the error is returned for the caller to log.
func (c *HTTPClient) RecordPackSale(ctx context.Context, ref string, quantity int) error {
	body := map[string]any{"ref": ref, "quantity": quantity}

	var lastErr error
	backoff := c.retryBackoff
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		lastErr = c.post(ctx, "recordPackSale", body)
		if lastErr == nil {
			return nil
		}
		if attempt == c.maxAttempts {
			break
		}
		log.Printf("recordPackSale attempt %d/%d failed: %v", attempt, c.maxAttempts, lastErr)
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return ctx.Err()
		}
		backoff *= 2
	}
	return fmt.Errorf("failed to record pack sale after %d attempts: %w", c.maxAttempts, lastErr)
}

func (c *HTTPClient) SyncUser(ctx context.Context, email, name string) error {
	return c.post(ctx, "syncUser", map[string]string{"email": email, "name": name})
}

func (c *HTTPClient) GetDailyChecklist(ctx context.Context) ([]ChecklistEntry, error) {
	var out []ChecklistEntry
	ok, err := c.get(ctx, "getDailyChecklist", &out)
	if err != nil || !ok {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) GetAvailableDates(ctx context.Context) ([]string, error) {
	var out []string
	ok, err := c.get(ctx, "getAvailableDates", &out)
	if err != nil || !ok {
		return nil, err
	}
	return out, nil
}

// Compile-time interface check
var _ Client = (*HTTPClient)(nil)
