package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
	routingdomain "mailroute-backend/internal/routing/domain"
)

// maxResponseSnippet caps the stored response body.
const maxResponseSnippet = 2000

// WebhookDispatcher POSTs the structured payload to webhook endpoints
// with a hard per-request timeout.
type WebhookDispatcher struct {
	client         *http.Client
	defaultTimeout time.Duration
}

func NewWebhookDispatcher(defaultTimeout time.Duration) *WebhookDispatcher {
	return &WebhookDispatcher{
		client:         &http.Client{},
		defaultTimeout: defaultTimeout,
	}
}

// NewWebhookDispatcherWithClient builds a dispatcher with a custom HTTP
// client, used for testing.
func NewWebhookDispatcherWithClient(client *http.Client, defaultTimeout time.Duration) *WebhookDispatcher {
	return &WebhookDispatcher{client: client, defaultTimeout: defaultTimeout}
}

// Deliver posts to the endpoint's configured URL. Success is any 2xx
// response; everything else, including the hard timeout, is a failure
// with a human-readable reason.
func (d *WebhookDispatcher) Deliver(ctx context.Context, email *emaildomain.ReceivedEmail, endpoint *routingdomain.Endpoint) DeliveryResult {
	parsed, err := endpoint.ParseConfig()
	if err != nil {
		return failedResult(fmt.Sprintf("Invalid webhook configuration: %v", err))
	}
	cfg, ok := parsed.(*routingdomain.WebhookConfig)
	if !ok {
		return failedResult(fmt.Sprintf("Endpoint %s is not a webhook endpoint", endpoint.ID))
	}

	timeout := d.defaultTimeout
	if cfg.Timeout > 0 {
		timeout = time.Duration(cfg.Timeout) * time.Second
	}

	payload := buildWebhookPayload(email, PayloadEndpoint{
		ID:   endpoint.ID,
		Name: endpoint.Name,
		Type: endpoint.Type,
	}, time.Now())

	result := d.post(ctx, cfg.URL, cfg.Headers, payload, timeout, email)
	if result.Metadata == nil {
		result.Metadata = emaildomain.JSONMap{}
	}
	if cfg.Retries > 0 {
		// Surfaced for the surrounding retry orchestrator; dispatch
		// itself never re-drives a failed attempt.
		result.Metadata["configured_retries"] = cfg.Retries
	}
	return result
}

// DeliverLegacy posts the same payload to a legacy webhook row.
func (d *WebhookDispatcher) DeliverLegacy(ctx context.Context, email *emaildomain.ReceivedEmail, webhook *routingdomain.Webhook) DeliveryResult {
	payload := buildWebhookPayload(email, PayloadEndpoint{
		ID:   webhook.ID,
		Name: webhook.Name,
		Type: "webhook",
	}, time.Now())

	result := d.post(ctx, webhook.URL, nil, payload, d.defaultTimeout, email)
	if result.Metadata == nil {
		result.Metadata = emaildomain.JSONMap{}
	}
	result.Metadata["legacy"] = true
	result.Metadata["webhook_id"] = webhook.ID
	return result
}

func (d *WebhookDispatcher) post(ctx context.Context, url string, extraHeaders map[string]string, payload WebhookPayload, timeout time.Duration, email *emaildomain.ReceivedEmail) DeliveryResult {
	body, err := json.Marshal(payload)
	if err != nil {
		return failedResult(fmt.Sprintf("Failed to encode webhook payload: %v", err))
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return failedResult(fmt.Sprintf("Failed to build webhook request: %v", err))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Webhook-Event", payload.Event)
	req.Header.Set("X-Endpoint-ID", payload.Endpoint.ID)
	req.Header.Set("X-Webhook-Timestamp", payload.Timestamp)
	req.Header.Set("X-Email-ID", email.ID)
	req.Header.Set("X-Message-ID", email.MessageID)
	for key, value := range extraHeaders {
		req.Header.Set(key, value)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(reqCtx.Err(), context.DeadlineExceeded) {
			return failedResult(fmt.Sprintf("Request timeout after %ds", int(timeout.Seconds())))
		}
		return failedResult(fmt.Sprintf("Webhook request failed: %v", err))
	}
	defer resp.Body.Close()

	snippet := readSnippet(resp.Body)
	code := resp.StatusCode

	if code < 200 || code >= 300 {
		return DeliveryResult{
			Success:      false,
			ResponseCode: &code,
			ResponseBody: snippet,
			Error:        fmt.Sprintf("Webhook returned status %d", code),
		}
	}

	return DeliveryResult{
		Success:      true,
		ResponseCode: &code,
		ResponseBody: snippet,
	}
}

func readSnippet(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, maxResponseSnippet))
	if err != nil {
		return ""
	}
	return string(data)
}
