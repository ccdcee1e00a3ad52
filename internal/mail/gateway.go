// Package mail sends transactional email through an EmailJS-compatible
// REST relay. Every delivery is a single attempt; callers decide what a
// failure means.
package mail

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
)

const sendPath = "/api/v1.0/email/send"

// DeliveryError reports a failed relay delivery. StatusCode is zero for
// transport-level failures.
type DeliveryError struct {
	StatusCode int
	Body       string
	Err        error
}

func (e *DeliveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("mail delivery failed: %v", e.Err)
	}
	return fmt.Sprintf("mail delivery failed: relay returned %d: %s", e.StatusCode, e.Body)
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}

// Credentials identify the relay account and template.
type Credentials struct {
	ServiceID  string
	TemplateID string
	PublicKey  string
	PrivateKey string
}

type Gateway struct {
	baseURL string
	creds   Credentials
	client  *http.Client
}

func NewGateway(baseURL string, creds Credentials, client *http.Client) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		client:  client,
	}
}

type sendRequest struct {
	ServiceID      string            `json:"service_id"`
	TemplateID     string            `json:"template_id"`
	UserID         string            `json:"user_id"`
	AccessToken    string            `json:"accessToken,omitempty"`
	TemplateParams map[string]string `json:"template_params"`
}

// Send posts one email through the relay. The context bounds the whole
// attempt; there are no retries.
func (g *Gateway) Send(ctx context.Context, params map[string]string) error {
	payload := sendRequest{
		ServiceID:      g.creds.ServiceID,
		TemplateID:     g.creds.TemplateID,
		UserID:         g.creds.PublicKey,
		AccessToken:    g.creds.PrivateKey,
		TemplateParams: params,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("marshal send request: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+sendPath, bytes.NewReader(body))
	if err != nil {
		return &DeliveryError{Err: fmt.Errorf("build send request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return &DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The relay's error body is short and worth surfacing.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &DeliveryError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(b))}
	}

	slog.InfoContext(ctx, "Mail delivered via relay",
		"recipient", params["to_email"],
		"status_code", resp.StatusCode)

	return nil
}
