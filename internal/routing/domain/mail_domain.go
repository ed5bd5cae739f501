package domain

import "time"

// MailDomain owns the catch-all policy for a domain. It is consulted only
// when no specific EmailAddress matches a recipient.
type MailDomain struct {
	ID                 string    `json:"id" gorm:"primaryKey"`
	AccountID          string    `json:"account_id" gorm:"index:idx_account_domain;not null"`
	Domain             string    `json:"domain" gorm:"index:idx_account_domain;not null"`
	CatchAllEnabled    bool      `json:"catch_all_enabled" gorm:"default:false"`
	CatchAllEndpointID *string   `json:"catch_all_endpoint_id,omitempty"`
	CatchAllWebhookID  *string   `json:"catch_all_webhook_id,omitempty"` // legacy webhook reference
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (MailDomain) TableName() string {
	return "domains"
}
