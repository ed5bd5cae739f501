package repository

import (
	"errors"
	"strings"

	routingdomain "mailroute-backend/internal/routing/domain"

	"gorm.io/gorm"
)

type endpointRepository struct {
	db *gorm.DB
}

func NewEndpointRepository(db *gorm.DB) EndpointRepository {
	return &endpointRepository{db: db}
}

func (r *endpointRepository) GetByID(accountID, id string) (*routingdomain.Endpoint, error) {
	var endpoint routingdomain.Endpoint
	err := r.db.Where("account_id = ? AND id = ?", accountID, id).First(&endpoint).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &endpoint, nil
}

type emailAddressRepository struct {
	db *gorm.DB
}

func NewEmailAddressRepository(db *gorm.DB) EmailAddressRepository {
	return &emailAddressRepository{db: db}
}

func (r *emailAddressRepository) GetByAddress(accountID, address string) (*routingdomain.EmailAddress, error) {
	var emailAddress routingdomain.EmailAddress
	err := r.db.Where("account_id = ? AND LOWER(address) = ?", accountID, strings.ToLower(address)).First(&emailAddress).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &emailAddress, nil
}

type domainRepository struct {
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) DomainRepository {
	return &domainRepository{db: db}
}

func (r *domainRepository) GetByDomain(accountID, domainName string) (*routingdomain.MailDomain, error) {
	var mailDomain routingdomain.MailDomain
	err := r.db.Where("account_id = ? AND LOWER(domain) = ?", accountID, strings.ToLower(domainName)).First(&mailDomain).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &mailDomain, nil
}

type webhookRepository struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) WebhookRepository {
	return &webhookRepository{db: db}
}

func (r *webhookRepository) GetByID(accountID, id string) (*routingdomain.Webhook, error) {
	var webhook routingdomain.Webhook
	err := r.db.Where("account_id = ? AND id = ?", accountID, id).First(&webhook).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &webhook, nil
}
