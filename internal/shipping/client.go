package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/zfrey55/shackpck-sub000/internal/config"
)

// HTTPCarrier talks to the carrier API: an OAuth client-credentials token
// exchange followed by shipment creation calls. The token is cached until
// shortly before expiry.
type HTTPCarrier struct {
	baseURL      string
	clientID     string
	clientSecret string
	client       *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

type shipmentRequestBody struct {
	Reference string `json:"reference"`
	ToName    string `json:"to_name"`
	ToLine1   string `json:"to_line1"`
	ToLine2   string `json:"to_line2,omitempty"`
	ToCity    string `json:"to_city"`
	ToState   string `json:"to_state"`
	ToPostal  string `json:"to_postal_code"`
	ToCountry string `json:"to_country"`
	Email     string `json:"email,omitempty"`
}

type shipmentResponse struct {
	TrackingNumber string `json:"tracking_number"`
	LabelURL       string `json:"label_url"`
}

func NewHTTPCarrier(cfg *config.ShippingConfig) *HTTPCarrier {
	return &HTTPCarrier{
		baseURL:      cfg.BaseURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// accessToken returns a cached token or exchanges client credentials for a
// fresh one.
func (c *HTTPCarrier) accessToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExpiry) {
		return c.token, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/oauth/token",
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to exchange credentials: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("carrier token error %d: %s", resp.StatusCode, string(raw))
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", fmt.Errorf("failed to decode token response: %w", err)
	}

	c.token = tr.AccessToken
	// refresh a minute early so in-flight requests never carry a dead token
	c.tokenExpiry = time.Now().Add(time.Duration(tr.ExpiresIn)*time.Second - time.Minute)
	return c.token, nil
}

func (c *HTTPCarrier) CreateShipment(ctx context.Context, req ShipmentRequest) (*Label, error) {
	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	body := shipmentRequestBody{
		Reference: req.OrderReference,
		ToName:    req.Recipient.Name,
		ToLine1:   req.Recipient.Line1,
		ToLine2:   req.Recipient.Line2,
		ToCity:    req.Recipient.City,
		ToState:   req.Recipient.State,
		ToPostal:  req.Recipient.PostalCode,
		ToCountry: req.Recipient.Country,
		Email:     req.Email,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shipment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/shipments",
		bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("carrier API error %d: %s", resp.StatusCode, string(raw))
	}

	var sr shipmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("failed to decode shipment response: %w", err)
	}
	return &Label{TrackingNumber: sr.TrackingNumber, LabelURL: sr.LabelURL}, nil
}

// Compile-time interface check
var _ Carrier = (*HTTPCarrier)(nil)
