package usecase

import (
	"time"

	emaildomain "mailroute-backend/internal/email/domain"

	"github.com/k3a/html2text"
)

// webhookEvent is the only event type the pipeline emits today.
const webhookEvent = "email.received"

// WebhookPayload is the JSON body POSTed to webhook destinations.
type WebhookPayload struct {
	Event     string          `json:"event"`
	Timestamp string          `json:"timestamp"`
	Email     PayloadEmail    `json:"email"`
	Endpoint  PayloadEndpoint `json:"endpoint"`
}

type PayloadEmail struct {
	ID             string                     `json:"id"`
	MessageID      string                     `json:"messageId"`
	From           string                     `json:"from"`
	To             []string                   `json:"to"`
	Recipient      string                     `json:"recipient"`
	Subject        string                     `json:"subject"`
	ReceivedAt     string                     `json:"receivedAt"`
	ParsedData     *emaildomain.ReceivedEmail `json:"parsedData"`
	CleanedContent CleanedContent             `json:"cleanedContent"`
}

type CleanedContent struct {
	HTML        string                 `json:"html"`
	Text        string                 `json:"text"`
	HasHTML     bool                   `json:"hasHtml"`
	HasText     bool                   `json:"hasText"`
	Attachments []PayloadAttachment    `json:"attachments"`
	Headers     map[string]interface{} `json:"headers"`
}

type PayloadAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
	ContentID   string `json:"contentId,omitempty"`
}

type PayloadEndpoint struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Type string `json:"type"`
}

// buildWebhookPayload reconstructs the parsed email into the wire shape.
// The text view falls back to a text rendering of the HTML body when no
// plain-text part was present.
func buildWebhookPayload(email *emaildomain.ReceivedEmail, endpoint PayloadEndpoint, now time.Time) WebhookPayload {
	text := email.TextBody
	if text == "" && email.HTMLBody != "" {
		text = html2text.HTML2Text(email.HTMLBody)
	}

	attachments := make([]PayloadAttachment, 0, len(email.Attachments))
	for _, a := range email.Attachments {
		attachments = append(attachments, PayloadAttachment{
			Filename:    a.Filename,
			ContentType: a.ContentType,
			Size:        a.Size,
			ContentID:   a.ContentID,
		})
	}

	headers := map[string]interface{}(email.Headers)
	if headers == nil {
		headers = map[string]interface{}{}
	}

	return WebhookPayload{
		Event:     webhookEvent,
		Timestamp: now.UTC().Format(time.RFC3339),
		Email: PayloadEmail{
			ID:         email.ID,
			MessageID:  email.MessageID,
			From:       email.FromString(),
			To:         email.ToAddresses.Addresses(),
			Recipient:  email.Recipient,
			Subject:    email.Subject,
			ReceivedAt: email.ReceivedAt.UTC().Format(time.RFC3339),
			ParsedData: email,
			CleanedContent: CleanedContent{
				HTML:        email.HTMLBody,
				Text:        text,
				HasHTML:     email.HTMLBody != "",
				HasText:     email.TextBody != "",
				Attachments: attachments,
				Headers:     headers,
			},
		},
		Endpoint: endpoint,
	}
}
