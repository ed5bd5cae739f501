package usecase

import (
	"context"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
	emailrepo "mailroute-backend/internal/email/repository"
	routingdomain "mailroute-backend/internal/routing/domain"
	"mailroute-backend/pkg/attachment"
	"mailroute-backend/pkg/rawmessage"
	"mailroute-backend/pkg/transport"

	"github.com/google/uuid"
)

// forwardOptions is the common shape of email_forward and email_group
// configs once the recipient list is built.
type forwardOptions struct {
	recipients         []string
	fromAddress        string
	senderName         string
	subjectPrefix      string
	includeAttachments bool
}

// ForwardDispatcher rebuilds the inbound message as an outbound raw
// message and hands it to the configured transport. A forward succeeds or
// fails atomically for the whole recipient list.
type ForwardDispatcher struct {
	sender      transport.Sender
	sentRepo    emailrepo.SentEmailRepository
	processor   *attachment.Processor
	defaultFrom string
}

func NewForwardDispatcher(sender transport.Sender, sentRepo emailrepo.SentEmailRepository, processor *attachment.Processor, defaultFrom string) *ForwardDispatcher {
	return &ForwardDispatcher{
		sender:      sender,
		sentRepo:    sentRepo,
		processor:   processor,
		defaultFrom: defaultFrom,
	}
}

func (d *ForwardDispatcher) Deliver(ctx context.Context, email *emaildomain.ReceivedEmail, endpoint *routingdomain.Endpoint) DeliveryResult {
	opts, err := d.forwardOptions(endpoint)
	if err != nil {
		return failedResult(fmt.Sprintf("Invalid forward configuration: %v", err))
	}

	var processed []attachment.Processed
	if opts.includeAttachments && len(email.Attachments) > 0 {
		inputs := make([]attachment.Input, 0, len(email.Attachments))
		for _, a := range email.Attachments {
			inputs = append(inputs, attachment.Input{
				Content:     a.Content,
				Filename:    a.Filename,
				ContentType: a.ContentType,
				ContentID:   a.ContentID,
			})
		}
		processed, err = d.processor.Process(ctx, inputs)
		if err != nil {
			return failedResult(fmt.Sprintf("Attachment processing failed: %v", err))
		}
	}

	subject := email.Subject
	if opts.subjectPrefix != "" {
		subject = opts.subjectPrefix + " " + subject
	}

	fromHeader := opts.fromAddress
	if opts.senderName != "" {
		fromHeader = (&mail.Address{Name: opts.senderName, Address: opts.fromAddress}).String()
	}

	messageID := uuid.New().String()
	references := append([]string{}, email.References...)
	if email.MessageID != "" && !contains(references, email.MessageID) {
		references = append(references, email.MessageID)
	}

	raw, err := rawmessage.Build(rawmessage.Params{
		From:        fromHeader,
		To:          opts.recipients,
		ReplyTo:     email.FromString(),
		Subject:     subject,
		TextBody:    email.TextBody,
		HTMLBody:    email.HTMLBody,
		MessageID:   messageID,
		InReplyTo:   email.MessageID,
		References:  references,
		Date:        time.Now(),
		Attachments: processed,
	})
	if err != nil {
		return failedResult(fmt.Sprintf("Failed to build forward message: %v", err))
	}

	if err := d.sender.Send(ctx, opts.fromAddress, opts.recipients, raw); err != nil {
		return failedResult(fmt.Sprintf("Forward send failed: %v", err))
	}

	d.recordSent(email, opts, subject, messageID, references)

	return DeliveryResult{
		Success: true,
		Metadata: emaildomain.JSONMap{
			"recipients": len(opts.recipients),
			"transport":  d.sender.Name(),
		},
	}
}

// recordSent appends the forwarded copy to the outbound store so it can
// participate in conversation threading. Failures never fail the forward.
func (d *ForwardDispatcher) recordSent(email *emaildomain.ReceivedEmail, opts forwardOptions, subject, messageID string, references []string) {
	to := make(emaildomain.AddressList, 0, len(opts.recipients))
	for _, r := range opts.recipients {
		to = append(to, emaildomain.Address{Address: r})
	}

	sent := &emaildomain.SentEmail{
		ID:          uuid.New().String(),
		AccountID:   email.AccountID,
		MessageID:   normalizeBareID(messageID, opts.fromAddress),
		Subject:     subject,
		FromAddress: emaildomain.AddressList{{Name: opts.senderName, Address: opts.fromAddress}},
		ToAddresses: to,
		TextBody:    email.TextBody,
		HTMLBody:    email.HTMLBody,
		InReplyTo:   email.MessageID,
		References:  references,
		SentAt:      time.Now(),
	}
	if err := d.sentRepo.Create(sent); err != nil {
		log.Printf("[WARN] failed to record sent email for %s: %v", email.ID, err)
	}
}

func (d *ForwardDispatcher) forwardOptions(endpoint *routingdomain.Endpoint) (forwardOptions, error) {
	parsed, err := endpoint.ParseConfig()
	if err != nil {
		return forwardOptions{}, err
	}

	opts := forwardOptions{fromAddress: d.defaultFrom, includeAttachments: true}
	switch cfg := parsed.(type) {
	case *routingdomain.EmailForwardConfig:
		opts.recipients = []string{cfg.ForwardTo}
		applyForwardConfig(&opts, cfg.FromAddress, cfg.SenderName, cfg.SubjectPrefix, cfg.IncludeAttachments)
	case *routingdomain.EmailGroupConfig:
		opts.recipients = cfg.Emails
		applyForwardConfig(&opts, cfg.FromAddress, cfg.SenderName, cfg.SubjectPrefix, cfg.IncludeAttachments)
	default:
		return forwardOptions{}, fmt.Errorf("endpoint %s is not a forward endpoint", endpoint.ID)
	}
	return opts, nil
}

func applyForwardConfig(opts *forwardOptions, fromAddress, senderName, subjectPrefix string, includeAttachments *bool) {
	if fromAddress != "" {
		opts.fromAddress = fromAddress
	}
	opts.senderName = senderName
	opts.subjectPrefix = subjectPrefix
	if includeAttachments != nil {
		opts.includeAttachments = *includeAttachments
	}
}

func normalizeBareID(id, from string) string {
	if strings.Contains(id, "@") {
		return id
	}
	domain := "localhost"
	if i := strings.LastIndex(from, "@"); i >= 0 && i < len(from)-1 {
		domain = from[i+1:]
	}
	return id + "@" + domain
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
