package repository

import (
	"errors"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"

	"gorm.io/gorm"
)

// candidateLimit caps how many rows a threading query may return, so a
// runaway working set cannot widen a scan without bound.
const candidateLimit = 100

type receivedEmailRepository struct {
	db *gorm.DB
}

func NewReceivedEmailRepository(db *gorm.DB) ReceivedEmailRepository {
	return &receivedEmailRepository{db: db}
}

func (r *receivedEmailRepository) Create(email *emaildomain.ReceivedEmail) error {
	return r.db.Create(email).Error
}

func (r *receivedEmailRepository) GetByID(accountID, id string) (*emaildomain.ReceivedEmail, error) {
	var email emaildomain.ReceivedEmail
	err := r.db.Where("account_id = ? AND id = ?", accountID, id).First(&email).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &email, nil
}

func (r *receivedEmailRepository) SetRead(accountID, id string, read bool) error {
	return r.db.Model(&emaildomain.ReceivedEmail{}).
		Where("account_id = ? AND id = ?", accountID, id).
		Update("read", read).Error
}

func (r *receivedEmailRepository) SetArchived(accountID, id string, archived bool) error {
	return r.db.Model(&emaildomain.ReceivedEmail{}).
		Where("account_id = ? AND id = ?", accountID, id).
		Update("archived", archived).Error
}

func (r *receivedEmailRepository) FindByMessageIDSet(accountID string, messageIDs []string) ([]*emaildomain.ReceivedEmail, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	cond := r.db.Where("message_id IN ?", messageIDs).Or("in_reply_to IN ?", messageIDs)
	for _, id := range messageIDs {
		cond = cond.Or("references_list LIKE ?", "%"+id+"%")
	}

	var emails []*emaildomain.ReceivedEmail
	err := r.db.Where("account_id = ?", accountID).
		Where(cond).
		Limit(candidateLimit).
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *receivedEmailRepository) FindBySubjectSince(accountID, fragment string, since time.Time) ([]*emaildomain.ReceivedEmail, error) {
	var emails []*emaildomain.ReceivedEmail
	err := r.db.Where("account_id = ? AND received_at >= ? AND subject ILIKE ?", accountID, since, "%"+fragment+"%").
		Limit(candidateLimit).
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

type sentEmailRepository struct {
	db *gorm.DB
}

func NewSentEmailRepository(db *gorm.DB) SentEmailRepository {
	return &sentEmailRepository{db: db}
}

func (r *sentEmailRepository) Create(email *emaildomain.SentEmail) error {
	return r.db.Create(email).Error
}

func (r *sentEmailRepository) FindByMessageIDSet(accountID string, messageIDs []string) ([]*emaildomain.SentEmail, error) {
	if len(messageIDs) == 0 {
		return nil, nil
	}

	cond := r.db.Where("message_id IN ?", messageIDs).Or("in_reply_to IN ?", messageIDs)
	for _, id := range messageIDs {
		cond = cond.Or("references_list LIKE ?", "%"+id+"%")
	}

	var emails []*emaildomain.SentEmail
	err := r.db.Where("account_id = ?", accountID).
		Where(cond).
		Limit(candidateLimit).
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

func (r *sentEmailRepository) FindBySubjectSince(accountID, fragment string, since time.Time) ([]*emaildomain.SentEmail, error) {
	var emails []*emaildomain.SentEmail
	err := r.db.Where("account_id = ? AND sent_at >= ? AND subject ILIKE ?", accountID, since, "%"+fragment+"%").
		Limit(candidateLimit).
		Find(&emails).Error
	if err != nil {
		return nil, err
	}
	return emails, nil
}

type deliveryOutcomeRepository struct {
	db *gorm.DB
}

func NewDeliveryOutcomeRepository(db *gorm.DB) DeliveryOutcomeRepository {
	return &deliveryOutcomeRepository{db: db}
}

func (r *deliveryOutcomeRepository) Create(outcome *emaildomain.DeliveryOutcome) error {
	return r.db.Create(outcome).Error
}

func (r *deliveryOutcomeRepository) ListByEmail(emailID string) ([]*emaildomain.DeliveryOutcome, error) {
	var outcomes []*emaildomain.DeliveryOutcome
	err := r.db.Where("email_id = ?", emailID).Order("created_at ASC").Find(&outcomes).Error
	if err != nil {
		return nil, err
	}
	return outcomes, nil
}
