package usecase

import (
	"strings"
	"testing"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
)

type memEmailRepo struct {
	created []*emaildomain.ReceivedEmail
}

func (m *memEmailRepo) Create(email *emaildomain.ReceivedEmail) error {
	m.created = append(m.created, email)
	return nil
}

func (m *memEmailRepo) GetByID(accountID, id string) (*emaildomain.ReceivedEmail, error) {
	for _, e := range m.created {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, nil
}

func (m *memEmailRepo) SetRead(accountID, id string, read bool) error         { return nil }
func (m *memEmailRepo) SetArchived(accountID, id string, archived bool) error { return nil }

func (m *memEmailRepo) FindByMessageIDSet(accountID string, messageIDs []string) ([]*emaildomain.ReceivedEmail, error) {
	return nil, nil
}

func (m *memEmailRepo) FindBySubjectSince(accountID, fragment string, since time.Time) ([]*emaildomain.ReceivedEmail, error) {
	return nil, nil
}

type memOutcomeRepo struct {
	outcomes []*emaildomain.DeliveryOutcome
}

func (m *memOutcomeRepo) Create(outcome *emaildomain.DeliveryOutcome) error {
	m.outcomes = append(m.outcomes, outcome)
	return nil
}

func (m *memOutcomeRepo) ListByEmail(emailID string) ([]*emaildomain.DeliveryOutcome, error) {
	return m.outcomes, nil
}

func simpleMessage() []byte {
	return []byte(strings.Join([]string{
		"From: Alice Example <alice@sender.test>",
		"To: support@acme.test, Bob <bob@acme.test>",
		"Cc: carol@acme.test",
		"Subject: Order question",
		"Date: Fri, 15 Mar 2024 10:30:00 +0000",
		"Message-ID: <orig-1@sender.test>",
		"In-Reply-To: <root-1@sender.test>",
		"References: <root-0@sender.test> <root-1@sender.test>",
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"Where is my order?",
		"",
	}, "\r\n"))
}

func multipartMessage() []byte {
	return []byte(strings.Join([]string{
		"From: alice@sender.test",
		"To: support@acme.test",
		"Subject: With attachment",
		"Message-ID: <orig-2@sender.test>",
		"MIME-Version: 1.0",
		`Content-Type: multipart/mixed; boundary="outer"`,
		"",
		"--outer",
		`Content-Type: multipart/alternative; boundary="inner"`,
		"",
		"--inner",
		"Content-Type: text/plain; charset=utf-8",
		"",
		"plain body",
		"--inner",
		"Content-Type: text/html; charset=utf-8",
		"",
		"<p>html body</p>",
		"--inner--",
		"--outer",
		"Content-Type: application/pdf",
		"Content-Transfer-Encoding: base64",
		"Content-Id: <att-1@sender.test>",
		`Content-Disposition: attachment; filename="doc.pdf"`,
		"",
		"JVBERi0xLjQ=",
		"--outer--",
		"",
	}, "\r\n"))
}

func TestIngest_ParsesHeadersAndBody(t *testing.T) {
	t.Parallel()

	repo := &memEmailRepo{}
	u := NewEmailUsecase(repo, &memOutcomeRepo{})

	email, err := u.Ingest("acct-1", "support@acme.test", simpleMessage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !email.ParseSuccess {
		t.Fatal("ParseSuccess: got false, want true")
	}
	if email.Subject != "Order question" {
		t.Errorf("Subject: got %q, want %q", email.Subject, "Order question")
	}
	if email.MessageID != "orig-1@sender.test" {
		t.Errorf("MessageID must be stored bare: got %q", email.MessageID)
	}
	if email.InReplyTo != "root-1@sender.test" {
		t.Errorf("InReplyTo: got %q, want %q", email.InReplyTo, "root-1@sender.test")
	}
	if len(email.References) != 2 || email.References[0] != "root-0@sender.test" {
		t.Errorf("References: got %v", email.References)
	}
	if len(email.FromAddress) != 1 || email.FromAddress[0].Address != "alice@sender.test" {
		t.Errorf("FromAddress: got %v", email.FromAddress)
	}
	if email.FromAddress[0].Name != "Alice Example" {
		t.Errorf("From display name: got %q", email.FromAddress[0].Name)
	}
	if len(email.ToAddresses) != 2 {
		t.Errorf("ToAddresses: got %v, want two", email.ToAddresses)
	}
	if email.Recipient != "support@acme.test" {
		t.Errorf("Recipient: got %q", email.Recipient)
	}
	if !strings.Contains(email.TextBody, "Where is my order?") {
		t.Errorf("TextBody: got %q", email.TextBody)
	}
	if !email.ReceivedAt.Equal(time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)) {
		t.Errorf("ReceivedAt must come from the Date header: got %v", email.ReceivedAt)
	}
	if len(repo.created) != 1 {
		t.Errorf("stored rows: got %d, want 1", len(repo.created))
	}
}

func TestIngest_ParsesMultipartWithAttachment(t *testing.T) {
	t.Parallel()

	u := NewEmailUsecase(&memEmailRepo{}, &memOutcomeRepo{})

	email, err := u.Ingest("acct-1", "support@acme.test", multipartMessage())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !email.ParseSuccess {
		t.Fatal("ParseSuccess: got false, want true")
	}
	if !strings.Contains(email.TextBody, "plain body") {
		t.Errorf("TextBody: got %q", email.TextBody)
	}
	if !strings.Contains(email.HTMLBody, "html body") {
		t.Errorf("HTMLBody: got %q", email.HTMLBody)
	}
	if len(email.Attachments) != 1 {
		t.Fatalf("Attachments: got %d, want 1", len(email.Attachments))
	}
	att := email.Attachments[0]
	if att.Filename != "doc.pdf" {
		t.Errorf("Filename: got %q", att.Filename)
	}
	if att.ContentType != "application/pdf" {
		t.Errorf("ContentType: got %q", att.ContentType)
	}
	if att.ContentID != "att-1@sender.test" {
		t.Errorf("ContentID must be stored bare: got %q", att.ContentID)
	}
	if att.Size == 0 {
		t.Error("Size: got 0, want the decoded length")
	}
}

func TestIngest_StoresUnparsableMessage(t *testing.T) {
	t.Parallel()

	repo := &memEmailRepo{}
	u := NewEmailUsecase(repo, &memOutcomeRepo{})

	email, err := u.Ingest("acct-1", "support@acme.test", []byte("not a mime message at all\x00"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if email.ParseSuccess {
		t.Error("ParseSuccess: got true, want false for garbage input")
	}
	if len(repo.created) != 1 {
		t.Errorf("stored rows: got %d, want 1; nothing received is dropped", len(repo.created))
	}
	if email.Recipient != "support@acme.test" {
		t.Errorf("Recipient: got %q", email.Recipient)
	}
}

func TestListOutcomes_UnknownEmailIsAnError(t *testing.T) {
	t.Parallel()

	u := NewEmailUsecase(&memEmailRepo{}, &memOutcomeRepo{})

	if _, err := u.ListOutcomes("acct-1", "missing"); err == nil {
		t.Fatal("expected error for unknown email id")
	}
}
