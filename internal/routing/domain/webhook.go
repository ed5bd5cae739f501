package domain

import "time"

// Webhook is the legacy pre-endpoint delivery destination. Kept so older
// addresses and catch-alls remain dispatchable until migrated to endpoints.
type Webhook struct {
	ID        string    `json:"id" gorm:"primaryKey"`
	AccountID string    `json:"account_id" gorm:"index;not null"`
	Name      string    `json:"name"`
	URL       string    `json:"url" gorm:"not null"`
	Active    bool      `json:"active" gorm:"default:true"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (Webhook) TableName() string {
	return "webhooks"
}
