package domain

import "time"

// Delivery channels
const (
	ChannelWebhook      = "webhook"
	ChannelEmailForward = "email_forward"
)

// Delivery statuses
const (
	StatusPending = "pending"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// DeliveryOutcome records one dispatch attempt for one (email, endpoint)
// pair. Rows are append-only: a retry is a new row, never an update.
type DeliveryOutcome struct {
	ID            string    `json:"id" gorm:"primaryKey"`
	EmailID       string    `json:"email_id" gorm:"index;not null"`
	EndpointID    *string   `json:"endpoint_id,omitempty" gorm:"index"`
	Channel       string    `json:"channel" gorm:"not null"`
	Status        string    `json:"status" gorm:"not null"`
	Attempts      int       `json:"attempts" gorm:"default:1"`
	LastAttemptAt time.Time `json:"last_attempt_at"`
	ResponseCode  *int      `json:"response_code,omitempty"`
	ResponseBody  string    `json:"response_body,omitempty" gorm:"type:text"`
	ErrorMessage  string    `json:"error_message,omitempty" gorm:"type:text"`
	Metadata      JSONMap   `json:"metadata,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"created_at"`
}

// TableName specifies the table name for GORM
func (DeliveryOutcome) TableName() string {
	return "delivery_outcomes"
}
