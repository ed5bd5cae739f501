// Package rawmessage assembles RFC 2822 messages from normalized body and
// attachment inputs. Building is pure: no I/O, one byte slice out.
package rawmessage

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"mailroute-backend/pkg/attachment"

	"github.com/google/uuid"
)

const noContentPlaceholder = "[No content]"

// Params carries every input of one message build.
type Params struct {
	From       string
	To         []string
	Cc         []string
	Bcc        []string
	ReplyTo    string
	Subject    string
	TextBody   string
	HTMLBody   string
	MessageID  string
	InReplyTo  string
	References []string
	Date       time.Time
	Headers    map[string]string

	Attachments []attachment.Processed
}

// Build renders the message. Attachments carrying a content id become
// inline CID parts under multipart/related; the rest become regular
// multipart/mixed siblings.
func Build(params Params) ([]byte, error) {
	if params.From == "" {
		return nil, fmt.Errorf("from address is required")
	}
	if len(params.To) == 0 {
		return nil, fmt.Errorf("at least one recipient is required")
	}

	var regular, inline []attachment.Processed
	for _, a := range params.Attachments {
		if a.ContentID != "" {
			inline = append(inline, a)
		} else {
			regular = append(regular, a)
		}
	}

	root, err := buildStructure(params, regular, inline)
	if err != nil {
		return nil, err
	}

	var sb strings.Builder
	writeEnvelopeHeaders(&sb, params)
	root.render(&sb)
	return []byte(sb.String()), nil
}

// buildStructure applies the structural decision table over regular and
// CID attachments.
func buildStructure(params Params, regular, inline []attachment.Processed) (*part, error) {
	body := buildBodyPart(params)

	inlineParts := make([]*part, 0, len(inline))
	for _, a := range inline {
		data, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, fmt.Errorf("attachment %q has invalid base64 content: %w", a.Filename, err)
		}
		inlineParts = append(inlineParts, newInlinePart(a.Filename, a.ContentType, a.ContentID, data))
	}

	regularParts := make([]*part, 0, len(regular))
	for _, a := range regular {
		data, err := base64.StdEncoding.DecodeString(a.Content)
		if err != nil {
			return nil, fmt.Errorf("attachment %q has invalid base64 content: %w", a.Filename, err)
		}
		regularParts = append(regularParts, newAttachmentPart(a.Filename, a.ContentType, data))
	}

	switch {
	case len(regularParts) > 0 && len(inlineParts) > 0:
		related := newMultipart("related", newBoundary("rel"), append([]*part{body}, inlineParts...)...)
		return newMultipart("mixed", newBoundary("mix"), append([]*part{related}, regularParts...)...), nil
	case len(inlineParts) > 0:
		return newMultipart("related", newBoundary("rel"), append([]*part{body}, inlineParts...)...), nil
	case len(regularParts) > 0:
		return newMultipart("mixed", newBoundary("mix"), append([]*part{body}, regularParts...)...), nil
	default:
		return body, nil
	}
}

// buildBodyPart picks the body representation: alternative when both text
// and HTML are present, a single part otherwise, placeholder when neither.
func buildBodyPart(params Params) *part {
	hasText := params.TextBody != ""
	hasHTML := params.HTMLBody != ""

	switch {
	case hasText && hasHTML:
		return newMultipart("alternative", newBoundary("alt"),
			newTextPart(params.TextBody, "text/plain"),
			newTextPart(params.HTMLBody, "text/html"))
	case hasHTML:
		return newTextPart(params.HTMLBody, "text/html")
	case hasText:
		return newTextPart(params.TextBody, "text/plain")
	default:
		return newTextPart(noContentPlaceholder, "text/plain")
	}
}

func writeEnvelopeHeaders(sb *strings.Builder, params Params) {
	writeHeader(sb, "From", params.From)
	writeHeader(sb, "To", strings.Join(params.To, ", "))
	if len(params.Cc) > 0 {
		writeHeader(sb, "Cc", strings.Join(params.Cc, ", "))
	}
	if params.ReplyTo != "" {
		writeHeader(sb, "Reply-To", params.ReplyTo)
	}
	writeHeader(sb, "Subject", encodeSubject(params.Subject))

	date := params.Date
	if date.IsZero() {
		date = time.Now()
	}
	writeHeader(sb, "Date", date.Format(time.RFC1123Z))

	// A caller-supplied Message-ID in custom headers wins; the builder
	// must not also synthesize one.
	if !hasCustomMessageID(params.Headers) {
		messageID := params.MessageID
		if messageID == "" {
			messageID = uuid.New().String()
		}
		writeHeader(sb, "Message-ID", normalizeMessageID(messageID, params.From))
	}

	if params.InReplyTo != "" {
		writeHeader(sb, "In-Reply-To", normalizeMessageID(params.InReplyTo, params.From))
	}
	if len(params.References) > 0 {
		refs := make([]string, len(params.References))
		for i, r := range params.References {
			refs[i] = normalizeMessageID(r, params.From)
		}
		writeHeader(sb, "References", strings.Join(refs, " "))
	}

	for key, value := range params.Headers {
		writeHeader(sb, key, value)
	}

	writeHeader(sb, "MIME-Version", "1.0")
}

func writeHeader(sb *strings.Builder, key, value string) {
	sb.WriteString(key)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\r\n")
}

func hasCustomMessageID(headers map[string]string) bool {
	for key := range headers {
		if strings.EqualFold(key, "Message-ID") {
			return true
		}
	}
	return false
}

// encodeSubject applies RFC 2047 encoding when the subject is not ASCII.
func encodeSubject(subject string) string {
	for _, r := range subject {
		if r > 127 {
			return fmt.Sprintf("=?utf-8?B?%s?=", base64.StdEncoding.EncodeToString([]byte(subject)))
		}
	}
	return subject
}

// normalizeMessageID wraps a message-id token in angle brackets, deriving
// the domain part from the From address if the token has none.
func normalizeMessageID(id, from string) string {
	id = strings.TrimSpace(id)
	id = strings.TrimPrefix(id, "<")
	id = strings.TrimSuffix(id, ">")
	if !strings.Contains(id, "@") {
		id = id + "@" + domainFromAddress(from)
	}
	return "<" + id + ">"
}

func domainFromAddress(from string) string {
	addr := from
	if parsed, err := mail.ParseAddress(from); err == nil {
		addr = parsed.Address
	}
	if i := strings.LastIndex(addr, "@"); i >= 0 && i < len(addr)-1 {
		return addr[i+1:]
	}
	return "localhost"
}

// newBoundary generates a unique boundary token; each nesting level gets
// its own.
func newBoundary(kind string) string {
	return kind + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}
