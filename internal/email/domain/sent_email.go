package domain

import "time"

// SentEmail is the outbound message store consulted by the conversation
// threader. Forward dispatches append here after a successful send.
type SentEmail struct {
	ID          string      `json:"id" gorm:"primaryKey"`
	AccountID   string      `json:"account_id" gorm:"index;not null"`
	MessageID   string      `json:"message_id" gorm:"index"`
	Subject     string      `json:"subject" gorm:"type:text"`
	FromAddress AddressList `json:"from_address" gorm:"type:text"`
	ToAddresses AddressList `json:"to_addresses" gorm:"type:text"`
	CcAddresses AddressList `json:"cc_addresses" gorm:"type:text"`
	TextBody    string      `json:"text_body" gorm:"type:text"`
	HTMLBody    string      `json:"html_body" gorm:"type:text"`
	InReplyTo   string      `json:"in_reply_to"`
	References  StringArray `json:"references" gorm:"column:references_list;type:text"`
	SentAt      time.Time   `json:"sent_at" gorm:"index"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TableName specifies the table name for GORM
func (SentEmail) TableName() string {
	return "sent_emails"
}

// Participants returns the union of from/to/cc bare addresses.
func (e *SentEmail) Participants() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range []AddressList{e.FromAddress, e.ToAddresses, e.CcAddresses} {
		for _, a := range list {
			if _, ok := seen[a.Address]; ok || a.Address == "" {
				continue
			}
			seen[a.Address] = struct{}{}
			out = append(out, a.Address)
		}
	}
	return out
}
