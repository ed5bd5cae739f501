package rawmessage

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// header is one ordered header line of a MIME part.
type header struct {
	key   string
	value string
}

// part is one node in the MIME tree: either a leaf with an encoded body or
// a multipart container with a boundary and children.
type part struct {
	headers  []header
	body     string
	boundary string
	children []*part
}

func (p *part) addHeader(key, value string) {
	p.headers = append(p.headers, header{key: key, value: value})
}

// render serializes the part, headers first, then body or nested children
// separated by boundary markers.
func (p *part) render(sb *strings.Builder) {
	for _, h := range p.headers {
		sb.WriteString(h.key)
		sb.WriteString(": ")
		sb.WriteString(h.value)
		sb.WriteString("\r\n")
	}
	sb.WriteString("\r\n")

	if p.boundary == "" {
		sb.WriteString(p.body)
		sb.WriteString("\r\n")
		return
	}

	for _, child := range p.children {
		sb.WriteString("--")
		sb.WriteString(p.boundary)
		sb.WriteString("\r\n")
		child.render(sb)
	}
	sb.WriteString("--")
	sb.WriteString(p.boundary)
	sb.WriteString("--\r\n")
}

// encodeQuotedPrintable applies the naive quoted-printable encoding used
// for text parts: '=' escaping plus CRLF normalization. This is not a full
// RFC 2045 implementation; long lines are passed through unchanged.
func encodeQuotedPrintable(s string) string {
	s = strings.ReplaceAll(s, "=", "=3D")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}

// encodeBase64Wrapped base64-encodes data hard-wrapped at 76 characters.
func encodeBase64Wrapped(data []byte) string {
	encoded := base64.StdEncoding.EncodeToString(data)
	var sb strings.Builder
	for i := 0; i < len(encoded); i += 76 {
		end := i + 76
		if end > len(encoded) {
			end = len(encoded)
		}
		sb.WriteString(encoded[i:end])
		sb.WriteString("\r\n")
	}
	return strings.TrimSuffix(sb.String(), "\r\n")
}

func newTextPart(body, contentType string) *part {
	p := &part{body: encodeQuotedPrintable(body)}
	p.addHeader("Content-Type", contentType+"; charset=utf-8")
	p.addHeader("Content-Transfer-Encoding", "quoted-printable")
	return p
}

func newAttachmentPart(filename, contentType string, data []byte) *part {
	p := &part{body: encodeBase64Wrapped(data)}
	p.addHeader("Content-Type", fmt.Sprintf("%s; name=%q", contentType, filename))
	p.addHeader("Content-Transfer-Encoding", "base64")
	p.addHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	return p
}

func newInlinePart(filename, contentType, contentID string, data []byte) *part {
	p := &part{body: encodeBase64Wrapped(data)}
	p.addHeader("Content-Type", fmt.Sprintf("%s; name=%q", contentType, filename))
	p.addHeader("Content-Transfer-Encoding", "base64")
	p.addHeader("Content-ID", "<"+contentID+">")
	p.addHeader("Content-Disposition", fmt.Sprintf("inline; filename=%q", filename))
	return p
}

func newMultipart(subtype, boundary string, children ...*part) *part {
	p := &part{boundary: boundary, children: children}
	p.addHeader("Content-Type", fmt.Sprintf("multipart/%s; boundary=%q", subtype, boundary))
	return p
}
