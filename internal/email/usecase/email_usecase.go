package usecase

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
	"mailroute-backend/internal/email/repository"

	"github.com/emersion/go-message/mail"
	"github.com/google/uuid"
)

// EmailUsecase covers ingestion of raw inbound messages and read access
// to the stored records.
type EmailUsecase interface {
	Ingest(accountID, recipient string, raw []byte) (*emaildomain.ReceivedEmail, error)
	GetEmail(accountID, id string) (*emaildomain.ReceivedEmail, error)
	SetRead(accountID, id string, read bool) error
	SetArchived(accountID, id string, archived bool) error
	ListOutcomes(accountID, emailID string) ([]*emaildomain.DeliveryOutcome, error)
}

type emailUsecase struct {
	emailRepo   repository.ReceivedEmailRepository
	outcomeRepo repository.DeliveryOutcomeRepository
}

func NewEmailUsecase(emailRepo repository.ReceivedEmailRepository, outcomeRepo repository.DeliveryOutcomeRepository) EmailUsecase {
	return &emailUsecase{emailRepo: emailRepo, outcomeRepo: outcomeRepo}
}

// Ingest parses one raw RFC 2822 message and stores it as a ReceivedEmail.
// A message that fails to parse is still stored, with ParseSuccess false,
// so nothing received is ever dropped.
func (u *emailUsecase) Ingest(accountID, recipient string, raw []byte) (*emaildomain.ReceivedEmail, error) {
	email := &emaildomain.ReceivedEmail{
		ID:           uuid.New().String(),
		AccountID:    accountID,
		Recipient:    recipient,
		ReceivedAt:   time.Now(),
		ParseSuccess: true,
		Headers:      emaildomain.JSONMap{},
	}

	if err := parseRawMessage(raw, email); err != nil {
		log.Printf("[WARN] failed to parse inbound message for %s: %v", recipient, err)
		email.ParseSuccess = false
	}

	if err := u.emailRepo.Create(email); err != nil {
		return nil, fmt.Errorf("failed to store inbound email: %w", err)
	}
	return email, nil
}

func (u *emailUsecase) GetEmail(accountID, id string) (*emaildomain.ReceivedEmail, error) {
	return u.emailRepo.GetByID(accountID, id)
}

func (u *emailUsecase) SetRead(accountID, id string, read bool) error {
	return u.emailRepo.SetRead(accountID, id, read)
}

func (u *emailUsecase) SetArchived(accountID, id string, archived bool) error {
	return u.emailRepo.SetArchived(accountID, id, archived)
}

func (u *emailUsecase) ListOutcomes(accountID, emailID string) ([]*emaildomain.DeliveryOutcome, error) {
	email, err := u.emailRepo.GetByID(accountID, emailID)
	if err != nil {
		return nil, err
	}
	if email == nil {
		return nil, fmt.Errorf("email %s not found", emailID)
	}
	return u.outcomeRepo.ListByEmail(emailID)
}

// parseRawMessage fills the email from the raw bytes. Parsing is best
// effort: a broken part aborts the walk but keeps what was extracted.
func parseRawMessage(raw []byte, email *emaildomain.ReceivedEmail) error {
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("failed to open message reader: %w", err)
	}

	header := mr.Header

	if subject, err := header.Subject(); err == nil {
		email.Subject = subject
	}
	if date, err := header.Date(); err == nil && !date.IsZero() {
		email.ReceivedAt = date
	}
	if msgID, err := header.MessageID(); err == nil {
		email.MessageID = msgID
	}
	if inReplyTo, err := header.MsgIDList("In-Reply-To"); err == nil && len(inReplyTo) > 0 {
		email.InReplyTo = inReplyTo[0]
	}
	if refs, err := header.MsgIDList("References"); err == nil {
		email.References = refs
	}

	email.FromAddress = parseAddressList(&header, "From")
	email.ToAddresses = parseAddressList(&header, "To")
	email.CcAddresses = parseAddressList(&header, "Cc")
	email.BccAddresses = parseAddressList(&header, "Bcc")
	email.ReplyTo = parseAddressList(&header, "Reply-To")

	fields := header.Fields()
	for fields.Next() {
		value, err := fields.Text()
		if err != nil {
			value = fields.Value()
		}
		email.Headers[fields.Key()] = value
	}

	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read message part: %w", err)
		}

		switch h := p.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, _ := h.ContentType()
			body, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			switch contentType {
			case "text/plain":
				if email.TextBody == "" {
					email.TextBody = string(body)
				}
			case "text/html":
				if email.HTMLBody == "" {
					email.HTMLBody = string(body)
				}
			}
		case *mail.AttachmentHeader:
			filename, _ := h.Filename()
			contentType, _, _ := h.ContentType()
			content, err := io.ReadAll(p.Body)
			if err != nil {
				continue
			}
			email.Attachments = append(email.Attachments, emaildomain.StoredAttachment{
				Filename:    filename,
				ContentType: contentType,
				Size:        int64(len(content)),
				ContentID:   trimMsgID(h.Get("Content-Id")),
				Content:     base64.StdEncoding.EncodeToString(content),
			})
		}
	}

	return nil
}

func parseAddressList(header *mail.Header, key string) emaildomain.AddressList {
	addrs, err := header.AddressList(key)
	if err != nil || len(addrs) == 0 {
		return nil
	}
	list := make(emaildomain.AddressList, 0, len(addrs))
	for _, a := range addrs {
		list = append(list, emaildomain.Address{Name: a.Name, Address: a.Address})
	}
	return list
}

func trimMsgID(id string) string {
	if len(id) >= 2 && id[0] == '<' && id[len(id)-1] == '>' {
		return id[1 : len(id)-1]
	}
	return id
}
