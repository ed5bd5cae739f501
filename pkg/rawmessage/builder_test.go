package rawmessage

import (
	"encoding/base64"
	"regexp"
	"strings"
	"testing"
	"time"

	"mailroute-backend/pkg/attachment"
)

func testDate() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func encodedAttachment(filename, contentType, contentID string, data []byte) attachment.Processed {
	return attachment.Processed{
		Filename:    filename,
		ContentType: contentType,
		ContentID:   contentID,
		Content:     base64.StdEncoding.EncodeToString(data),
		Size:        int64(len(data)),
	}
}

func TestBuild_TextOnlyIsSinglePart(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Hello",
		TextBody: "Plain text body.",
		Date:     testDate(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := string(raw)

	if strings.Contains(msg, "multipart") {
		t.Errorf("text-only message must not be multipart:\n%s", msg)
	}
	if !strings.Contains(msg, "Content-Type: text/plain; charset=utf-8") {
		t.Errorf("missing text/plain content type:\n%s", msg)
	}
	if !strings.Contains(msg, "Plain text body.") {
		t.Errorf("missing body text:\n%s", msg)
	}
	if !strings.Contains(msg, "Date: Fri, 15 Mar 2024 10:30:00 +0000") {
		t.Errorf("missing formatted date:\n%s", msg)
	}
}

func TestBuild_TextAndHTMLIsAlternative(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Hello",
		TextBody: "plain",
		HTMLBody: "<p>rich</p>",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := string(raw)

	if !strings.Contains(msg, "multipart/alternative") {
		t.Errorf("expected multipart/alternative:\n%s", msg)
	}
	textIdx := strings.Index(msg, "text/plain")
	htmlIdx := strings.Index(msg, "text/html")
	if textIdx < 0 || htmlIdx < 0 {
		t.Fatalf("expected both text/plain and text/html parts:\n%s", msg)
	}
	if textIdx > htmlIdx {
		t.Errorf("text/plain part must precede text/html:\n%s", msg)
	}
}

func TestBuild_RegularAttachmentIsMixed(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Report",
		TextBody: "see attached",
		Attachments: []attachment.Processed{
			encodedAttachment("report.pdf", "application/pdf", "", []byte("%PDF-1.4")),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := string(raw)

	if !strings.Contains(msg, "multipart/mixed") {
		t.Errorf("expected multipart/mixed:\n%s", msg)
	}
	if strings.Contains(msg, "multipart/related") {
		t.Errorf("no CID attachments, must not nest multipart/related:\n%s", msg)
	}
	if !strings.Contains(msg, `Content-Disposition: attachment; filename="report.pdf"`) {
		t.Errorf("missing attachment disposition:\n%s", msg)
	}
	if !strings.Contains(msg, "Content-Transfer-Encoding: base64") {
		t.Errorf("attachment must be base64 encoded:\n%s", msg)
	}
}

func TestBuild_InlineAttachmentIsRelated(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Logo",
		HTMLBody: `<img src="cid:logo1">`,
		Attachments: []attachment.Processed{
			encodedAttachment("logo.png", "image/png", "logo1", []byte{0x89, 0x50, 0x4E, 0x47}),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := string(raw)

	if !strings.Contains(msg, "multipart/related") {
		t.Errorf("expected multipart/related:\n%s", msg)
	}
	if strings.Contains(msg, "multipart/mixed") {
		t.Errorf("no regular attachments, must not wrap in multipart/mixed:\n%s", msg)
	}
	if !strings.Contains(msg, "Content-ID: <logo1>") {
		t.Errorf("missing Content-ID header:\n%s", msg)
	}
	if !strings.Contains(msg, "Content-Disposition: inline") {
		t.Errorf("CID part must use inline disposition:\n%s", msg)
	}
}

func TestBuild_MixedWrapsRelatedWhenBothKindsPresent(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Everything",
		TextBody: "plain",
		HTMLBody: `<img src="cid:logo1">`,
		Attachments: []attachment.Processed{
			encodedAttachment("logo.png", "image/png", "logo1", []byte{0x89, 0x50, 0x4E, 0x47}),
			encodedAttachment("report.pdf", "application/pdf", "", []byte("%PDF-1.4")),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := string(raw)

	mixedIdx := strings.Index(msg, "multipart/mixed")
	relatedIdx := strings.Index(msg, "multipart/related")
	altIdx := strings.Index(msg, "multipart/alternative")
	if mixedIdx < 0 || relatedIdx < 0 || altIdx < 0 {
		t.Fatalf("expected mixed, related and alternative containers:\n%s", msg)
	}
	if !(mixedIdx < relatedIdx && relatedIdx < altIdx) {
		t.Errorf("containers must nest mixed > related > alternative:\n%s", msg)
	}
}

func TestBuild_EmptyBodyUsesPlaceholder(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:    "sender@example.com",
		To:      []string{"dest@example.org"},
		Subject: "Empty",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), "[No content]") {
		t.Errorf("empty body must render the placeholder:\n%s", raw)
	}
}

func TestBuild_RequiresFromAndRecipient(t *testing.T) {
	t.Parallel()

	if _, err := Build(Params{To: []string{"dest@example.org"}}); err == nil {
		t.Error("expected error for missing From")
	}
	if _, err := Build(Params{From: "sender@example.com"}); err == nil {
		t.Error("expected error for missing To")
	}
}

func TestBuild_NormalizesMessageIDs(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:       "Sender <sender@example.com>",
		To:         []string{"dest@example.org"},
		Subject:    "Re: Hello",
		TextBody:   "reply",
		MessageID:  "abc123",
		InReplyTo:  "<parent@example.org>",
		References: []string{"root@example.org", "<parent@example.org>"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	msg := string(raw)

	if !strings.Contains(msg, "Message-ID: <abc123@example.com>") {
		t.Errorf("bare id must gain angle brackets and the sender domain:\n%s", msg)
	}
	if !strings.Contains(msg, "In-Reply-To: <parent@example.org>") {
		t.Errorf("bracketed id must pass through unchanged:\n%s", msg)
	}
	if !strings.Contains(msg, "References: <root@example.org> <parent@example.org>") {
		t.Errorf("references must be space joined and bracketed:\n%s", msg)
	}
}

func TestBuild_CustomMessageIDHeaderSuppressesSynthesis(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Custom",
		TextBody: "body",
		Headers:  map[string]string{"Message-ID": "<custom@example.com>"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(string(raw), "Message-ID:"); got != 1 {
		t.Errorf("Message-ID header count: got %d, want 1:\n%s", got, raw)
	}
	if !strings.Contains(string(raw), "Message-ID: <custom@example.com>") {
		t.Errorf("custom Message-ID must be preserved:\n%s", raw)
	}
}

func TestBuild_EncodesNonASCIISubject(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Héllo wörld",
		TextBody: "body",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Subject: =?utf-8?B?" + base64.StdEncoding.EncodeToString([]byte("Héllo wörld")) + "?="
	if !strings.Contains(string(raw), want) {
		t.Errorf("subject encoding: want %q in:\n%s", want, raw)
	}
}

func TestBuild_QuotedPrintableEscapesEquals(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "QP",
		TextBody: "a=b",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(raw), "a=3Db") {
		t.Errorf("equals sign must be escaped as =3D:\n%s", raw)
	}
}

func TestBuild_Base64LinesWrapAt76(t *testing.T) {
	t.Parallel()

	raw, err := Build(Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Wrap",
		TextBody: "body",
		Attachments: []attachment.Processed{
			encodedAttachment("big.bin", "application/octet-stream", "", make([]byte, 300)),
		},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	inB64 := false
	for _, line := range strings.Split(string(raw), "\r\n") {
		if strings.HasPrefix(line, "Content-Transfer-Encoding: base64") {
			inB64 = true
			continue
		}
		if inB64 && strings.HasPrefix(line, "--") {
			inB64 = false
		}
		if inB64 && len(line) > 76 {
			t.Errorf("base64 line exceeds 76 chars (%d): %q", len(line), line)
		}
	}
}

func TestBuild_StableModuloBoundariesAndMessageID(t *testing.T) {
	t.Parallel()

	params := Params{
		From:     "sender@example.com",
		To:       []string{"dest@example.org"},
		Subject:  "Stable",
		TextBody: "plain",
		HTMLBody: "<p>rich</p>",
		Date:     testDate(),
		Attachments: []attachment.Processed{
			encodedAttachment("a.pdf", "application/pdf", "", []byte("%PDF-1.4")),
		},
	}

	first, err := Build(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Build(params)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	random := regexp.MustCompile(`[0-9a-f]{32}|<[^>]+>`)
	a := random.ReplaceAllString(string(first), "X")
	b := random.ReplaceAllString(string(second), "X")
	if a != b {
		t.Errorf("builds differ beyond boundaries and message ids:\n--- first ---\n%s\n--- second ---\n%s", first, second)
	}
}
