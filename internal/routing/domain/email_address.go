package domain

import "time"

// EmailAddress is a recipient address under a domain. It may reference an
// Endpoint or a legacy Webhook; many addresses can share one endpoint.
type EmailAddress struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	AccountID  string    `json:"account_id" gorm:"index:idx_account_address;not null"`
	DomainID   string    `json:"domain_id" gorm:"index"`
	Address    string    `json:"address" gorm:"index:idx_account_address;not null"`
	EndpointID *string   `json:"endpoint_id,omitempty"`
	WebhookID  *string   `json:"webhook_id,omitempty"` // legacy webhook reference
	Active     bool      `json:"active" gorm:"default:true"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (EmailAddress) TableName() string {
	return "email_addresses"
}
