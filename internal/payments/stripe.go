package payments

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const stripeBaseURL = "https://api.stripe.com/v1"

type StripeProcessor struct {
	apiKey  string
	baseURL string
	client  *http.Client
}

type stripeCustomer struct {
	ID string `json:"id"`
}

type stripeIntent struct {
	ID           string            `json:"id"`
	ClientSecret string            `json:"client_secret"`
	Status       string            `json:"status"`
	Amount       int64             `json:"amount"`
	Metadata     map[string]string `json:"metadata"`
}

func NewStripeProcessor(apiKeyEnv string, directAPIKey string) (*StripeProcessor, error) {
	var apiKey string

	// First try direct API key from config
	if directAPIKey != "" {
		apiKey = directAPIKey
	} else if apiKeyEnv != "" {
		// Fallback to environment variable
		apiKey = os.Getenv(apiKeyEnv)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in config or environment variable %s", apiKeyEnv)
	}

	return &StripeProcessor{
		apiKey:  apiKey,
		baseURL: stripeBaseURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}, nil
}

// do sends a form-encoded request, the wire format the processor's REST API
// expects, and decodes the JSON response into out.
func (p *StripeProcessor) do(ctx context.Context, method, path string, form url.Values, out any) error {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("payment API error %d: %s", resp.StatusCode, string(raw))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (p *StripeProcessor) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	form := url.Values{}
	form.Set("email", email)
	if name != "" {
		form.Set("name", name)
	}

	var cust stripeCustomer
	if err := p.do(ctx, http.MethodPost, "/customers", form, &cust); err != nil {
		return "", err
	}
	return cust.ID, nil
}

func (p *StripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	form := url.Values{}
	form.Set("amount", strconv.FormatInt(AmountCents(req.Amount), 10))
	form.Set("currency", currency)
	if req.CustomerID != "" {
		form.Set("customer", req.CustomerID)
	}
	if req.Email != "" {
		form.Set("receipt_email", req.Email)
	}
	if req.Description != "" {
		form.Set("description", req.Description)
	}
	if req.OffSession {
		form.Set("setup_future_usage", "off_session")
	}

	form.Set("shipping[name]", req.Shipping.Name)
	form.Set("shipping[address][line1]", req.Shipping.Line1)
	if req.Shipping.Line2 != "" {
		form.Set("shipping[address][line2]", req.Shipping.Line2)
	}
	form.Set("shipping[address][city]", req.Shipping.City)
	form.Set("shipping[address][state]", req.Shipping.State)
	form.Set("shipping[address][postal_code]", req.Shipping.PostalCode)
	form.Set("shipping[address][country]", req.Shipping.Country)

	for k, v := range req.Metadata {
		form.Set(fmt.Sprintf("metadata[%s]", k), v)
	}

	var si stripeIntent
	if err := p.do(ctx, http.MethodPost, "/payment_intents", form, &si); err != nil {
		return nil, err
	}
	return si.toIntent(), nil
}

func (p *StripeProcessor) GetIntent(ctx context.Context, id string) (*Intent, error) {
	var si stripeIntent
	if err := p.do(ctx, http.MethodGet, "/payment_intents/"+url.PathEscape(id), nil, &si); err != nil {
		return nil, err
	}
	return si.toIntent(), nil
}

func (si *stripeIntent) toIntent() *Intent {
	return &Intent{
		ID:           si.ID,
		ClientSecret: si.ClientSecret,
		Status:       IntentStatus(si.Status),
		AmountCents:  si.Amount,
		Metadata:     si.Metadata,
	}
}

// Compile-time interface check
var _ Processor = (*StripeProcessor)(nil)
