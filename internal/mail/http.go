package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/zfrey55/shackpck-sub000/internal/config"
)

const providerSendURL = "https://api.resend.com/emails"

// HTTPSender delivers mail through the provider's transactional send API.
type HTTPSender struct {
	apiKey     string
	fromEmail  string
	adminEmail string
	sendURL    string
	client     *http.Client
}

type sendRequest struct {
	From    string   `json:"from"`
	To      []string `json:"to"`
	Subject string   `json:"subject"`
	Text    string   `json:"text"`
}

func NewHTTPSender(cfg *config.EmailConfig) (*HTTPSender, error) {
	var apiKey string

	// First try direct API key from config
	if cfg.APIKey != "" {
		apiKey = cfg.APIKey
	} else if cfg.APIKeyEnv != "" {
		// Fallback to environment variable
		apiKey = os.Getenv(cfg.APIKeyEnv)
	}

	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in config or environment variable %s", cfg.APIKeyEnv)
	}

	return &HTTPSender{
		apiKey:     apiKey,
		fromEmail:  cfg.FromEmail,
		adminEmail: cfg.AdminEmail,
		sendURL:    providerSendURL,
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
	}, nil
}

func (s *HTTPSender) send(ctx context.Context, to, subject, text string) error {
	payload, err := json.Marshal(sendRequest{
		From:    s.fromEmail,
		To:      []string{to},
		Subject: subject,
		Text:    text,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal email: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("email API error %d: %s", resp.StatusCode, string(raw))
	}
	return nil
}

func (s *HTTPSender) SendOrderConfirmation(ctx context.Context, o OrderSummary) error {
	subject := fmt.Sprintf("Your ShackPack order %s", o.Reference)
	text := fmt.Sprintf(
		"Hi %s,\n\nThanks for your order! We received %d item(s) totaling $%s.\n"+
			"You earned %d loyalty points.\n\nOrder reference: %s\n",
		o.Name, o.ItemCount, o.Total, o.PointsEarned, o.Reference)
	return s.send(ctx, o.Email, subject, text)
}

func (s *HTTPSender) SendAdminNotification(ctx context.Context, o OrderSummary) error {
	subject := fmt.Sprintf("New order %s ($%s)", o.Reference, o.Total)
	text := fmt.Sprintf("Order %s placed by %s <%s>: %d item(s), $%s total.\n",
		o.Reference, o.Name, o.Email, o.ItemCount, o.Total)
	return s.send(ctx, s.adminEmail, subject, text)
}

// Compile-time interface check
var _ Sender = (*HTTPSender)(nil)
