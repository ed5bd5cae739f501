package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
	routingdomain "mailroute-backend/internal/routing/domain"
)

func testEmail() *emaildomain.ReceivedEmail {
	return &emaildomain.ReceivedEmail{
		ID:          "email-1",
		AccountID:   "acct-1",
		MessageID:   "msg-1@sender.test",
		Recipient:   "support@acme.test",
		Subject:     "Need help",
		FromAddress: emaildomain.AddressList{{Name: "Alice", Address: "alice@sender.test"}},
		ToAddresses: emaildomain.AddressList{{Address: "support@acme.test"}},
		TextBody:    "please help",
		ReceivedAt:  time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC),
	}
}

func webhookEndpoint(url string, extra string) *routingdomain.Endpoint {
	config := fmt.Sprintf(`{"url":%q%s}`, url, extra)
	return &routingdomain.Endpoint{
		ID:     "ep-1",
		Name:   "CRM intake",
		Type:   routingdomain.EndpointTypeWebhook,
		Active: true,
		Config: config,
	}
}

func TestDeliver_SuccessOn2xx(t *testing.T) {
	t.Parallel()

	var received WebhookPayload
	var gotHeaders http.Header
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotHeaders = r.Header.Clone()
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &received)
		w.WriteHeader(http.StatusAccepted)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	d := NewWebhookDispatcherWithClient(server.Client(), 30*time.Second)
	result := d.Deliver(context.Background(), testEmail(), webhookEndpoint(server.URL, ""))

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if result.ResponseCode == nil || *result.ResponseCode != http.StatusAccepted {
		t.Errorf("ResponseCode: got %v, want 202", result.ResponseCode)
	}
	if result.ResponseBody != `{"ok":true}` {
		t.Errorf("ResponseBody: got %q", result.ResponseBody)
	}
	if received.Event != "email.received" {
		t.Errorf("payload event: got %q, want %q", received.Event, "email.received")
	}
	if received.Email.ID != "email-1" {
		t.Errorf("payload email id: got %q, want %q", received.Email.ID, "email-1")
	}
	if received.Endpoint.ID != "ep-1" {
		t.Errorf("payload endpoint id: got %q, want %q", received.Endpoint.ID, "ep-1")
	}
	if got := gotHeaders.Get("X-Webhook-Event"); got != "email.received" {
		t.Errorf("X-Webhook-Event: got %q", got)
	}
	if got := gotHeaders.Get("X-Email-ID"); got != "email-1" {
		t.Errorf("X-Email-ID: got %q", got)
	}
	if got := gotHeaders.Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type: got %q", got)
	}
}

func TestDeliver_CustomHeadersFromConfig(t *testing.T) {
	t.Parallel()

	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	endpoint := webhookEndpoint(server.URL, `,"headers":{"Authorization":"Bearer tok"}`)
	d := NewWebhookDispatcherWithClient(server.Client(), 30*time.Second)
	result := d.Deliver(context.Background(), testEmail(), endpoint)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if gotAuth != "Bearer tok" {
		t.Errorf("Authorization: got %q, want %q", gotAuth, "Bearer tok")
	}
}

func TestDeliver_Non2xxIsFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	d := NewWebhookDispatcherWithClient(server.Client(), 30*time.Second)
	result := d.Deliver(context.Background(), testEmail(), webhookEndpoint(server.URL, ""))

	if result.Success {
		t.Fatal("expected failure on 503")
	}
	if result.ResponseCode == nil || *result.ResponseCode != http.StatusServiceUnavailable {
		t.Errorf("ResponseCode: got %v, want 503", result.ResponseCode)
	}
	if result.Error != "Webhook returned status 503" {
		t.Errorf("Error: got %q, want %q", result.Error, "Webhook returned status 503")
	}
}

func TestDeliver_TimeoutNamesConfiguredSeconds(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	endpoint := webhookEndpoint(server.URL, `,"timeout":1`)
	d := NewWebhookDispatcherWithClient(server.Client(), 30*time.Second)
	result := d.Deliver(context.Background(), testEmail(), endpoint)

	if result.Success {
		t.Fatal("expected timeout failure")
	}
	if result.Error != "Request timeout after 1s" {
		t.Errorf("Error: got %q, want %q", result.Error, "Request timeout after 1s")
	}
	if result.ResponseCode != nil {
		t.Errorf("ResponseCode must be nil on timeout, got %v", *result.ResponseCode)
	}
}

func TestDeliver_ResponseBodyTruncatedToSnippet(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(strings.Repeat("x", maxResponseSnippet*2)))
	}))
	defer server.Close()

	d := NewWebhookDispatcherWithClient(server.Client(), 30*time.Second)
	result := d.Deliver(context.Background(), testEmail(), webhookEndpoint(server.URL, ""))

	if len(result.ResponseBody) != maxResponseSnippet {
		t.Errorf("ResponseBody length: got %d, want %d", len(result.ResponseBody), maxResponseSnippet)
	}
}

func TestDeliver_InvalidConfigFailsWithoutRequest(t *testing.T) {
	t.Parallel()

	endpoint := &routingdomain.Endpoint{
		ID:     "ep-1",
		Type:   routingdomain.EndpointTypeWebhook,
		Active: true,
		Config: `{"url":"ftp://example.com"}`,
	}
	d := NewWebhookDispatcher(30 * time.Second)
	result := d.Deliver(context.Background(), testEmail(), endpoint)

	if result.Success {
		t.Fatal("expected failure for invalid config")
	}
	if !strings.Contains(result.Error, "Invalid webhook configuration") {
		t.Errorf("Error: got %q, want a configuration error", result.Error)
	}
}

func TestDeliver_ConfiguredRetriesSurfacedInMetadata(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	endpoint := webhookEndpoint(server.URL, `,"retries":3`)
	d := NewWebhookDispatcherWithClient(server.Client(), 30*time.Second)
	result := d.Deliver(context.Background(), testEmail(), endpoint)

	if got := result.Metadata["configured_retries"]; got != 3 {
		t.Errorf("metadata configured_retries: got %v, want 3", got)
	}
}

func TestDeliverLegacy_MarksMetadata(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	webhook := &routingdomain.Webhook{ID: "wh-1", Name: "Old hook", URL: server.URL, Active: true}
	d := NewWebhookDispatcherWithClient(server.Client(), 30*time.Second)
	result := d.DeliverLegacy(context.Background(), testEmail(), webhook)

	if !result.Success {
		t.Fatalf("expected success, got error %q", result.Error)
	}
	if got := result.Metadata["legacy"]; got != true {
		t.Errorf("metadata legacy: got %v, want true", got)
	}
	if got := result.Metadata["webhook_id"]; got != "wh-1" {
		t.Errorf("metadata webhook_id: got %v, want wh-1", got)
	}
}

func TestBuildWebhookPayload_TextFallbackFromHTML(t *testing.T) {
	t.Parallel()

	email := testEmail()
	email.TextBody = ""
	email.HTMLBody = "<p>Hello <b>there</b></p>"

	payload := buildWebhookPayload(email, PayloadEndpoint{ID: "ep-1"}, time.Now())

	if payload.Email.CleanedContent.HasText {
		t.Error("HasText must report the original part, not the fallback")
	}
	if !payload.Email.CleanedContent.HasHTML {
		t.Error("HasHTML: got false, want true")
	}
	if !strings.Contains(payload.Email.CleanedContent.Text, "Hello") {
		t.Errorf("fallback text: got %q", payload.Email.CleanedContent.Text)
	}
}
