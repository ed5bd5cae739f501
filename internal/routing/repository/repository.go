package repository

import routingdomain "mailroute-backend/internal/routing/domain"

// EndpointRepository defines read access to endpoint configuration.
// Lookups return (nil, nil) when no row matches.
type EndpointRepository interface {
	GetByID(accountID, id string) (*routingdomain.Endpoint, error)
}

// EmailAddressRepository defines read access to recipient addresses.
type EmailAddressRepository interface {
	GetByAddress(accountID, address string) (*routingdomain.EmailAddress, error)
}

// DomainRepository defines read access to domain catch-all policy.
type DomainRepository interface {
	GetByDomain(accountID, domainName string) (*routingdomain.MailDomain, error)
}

// WebhookRepository defines read access to legacy webhooks.
type WebhookRepository interface {
	GetByID(accountID, id string) (*routingdomain.Webhook, error)
}
