package domain

import "time"

// Endpoint types determine which config shape and dispatcher apply.
const (
	EndpointTypeWebhook      = "webhook"
	EndpointTypeEmailForward = "email_forward"
	EndpointTypeEmailGroup   = "email_group"
)

// Endpoint represents a delivery destination owned by an account.
// Config is an opaque JSON string whose shape depends on Type; it is
// validated via ParseConfig before any dispatch logic touches it.
type Endpoint struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	AccountID string    `json:"account_id" gorm:"index;not null"`
	Name      string    `json:"name" gorm:"not null"`
	Type      string    `json:"type" gorm:"not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	Config    string    `json:"config" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Endpoint) TableName() string {
	return "endpoints"
}
