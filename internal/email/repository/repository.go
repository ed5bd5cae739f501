package repository

import (
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
)

// ReceivedEmailRepository defines access to the inbound message store.
// Single-row lookups return (nil, nil) when no row matches.
type ReceivedEmailRepository interface {
	Create(email *emaildomain.ReceivedEmail) error
	GetByID(accountID, id string) (*emaildomain.ReceivedEmail, error)
	SetRead(accountID, id string, read bool) error
	SetArchived(accountID, id string, archived bool) error
	// FindByMessageIDSet returns messages whose Message-ID is in the set,
	// whose In-Reply-To matches a set member, or whose References contain
	// a set member.
	FindByMessageIDSet(accountID string, messageIDs []string) ([]*emaildomain.ReceivedEmail, error)
	// FindBySubjectSince returns messages received after since whose
	// subject contains the given fragment.
	FindBySubjectSince(accountID, fragment string, since time.Time) ([]*emaildomain.ReceivedEmail, error)
}

// SentEmailRepository defines access to the outbound message store.
type SentEmailRepository interface {
	Create(email *emaildomain.SentEmail) error
	FindByMessageIDSet(accountID string, messageIDs []string) ([]*emaildomain.SentEmail, error)
	FindBySubjectSince(accountID, fragment string, since time.Time) ([]*emaildomain.SentEmail, error)
}

// DeliveryOutcomeRepository appends dispatch outcomes. Rows are immutable
// once written.
type DeliveryOutcomeRepository interface {
	Create(outcome *emaildomain.DeliveryOutcome) error
	ListByEmail(emailID string) ([]*emaildomain.DeliveryOutcome, error)
}
