package domain

import "time"

// ReceivedEmail is the immutable record of one inbound message after
// parsing. The delivery core reads it and never mutates the parsed fields;
// Read/Archived are the only mutable projection.
type ReceivedEmail struct {
	ID           string         `json:"id" gorm:"primaryKey"`
	AccountID    string         `json:"account_id" gorm:"index;not null"`
	MessageID    string         `json:"message_id" gorm:"index"`
	Recipient    string         `json:"recipient" gorm:"index;not null"` // envelope recipient used for routing
	Subject      string         `json:"subject" gorm:"type:text"`
	FromAddress  AddressList    `json:"from_address" gorm:"type:text"`
	ToAddresses  AddressList    `json:"to_addresses" gorm:"type:text"`
	CcAddresses  AddressList    `json:"cc_addresses" gorm:"type:text"`
	BccAddresses AddressList    `json:"bcc_addresses" gorm:"type:text"`
	ReplyTo      AddressList    `json:"reply_to" gorm:"type:text"`
	TextBody     string         `json:"text_body" gorm:"type:text"`
	HTMLBody     string         `json:"html_body" gorm:"type:text"`
	Headers      JSONMap        `json:"headers" gorm:"type:text"`
	Attachments  AttachmentList `json:"attachments" gorm:"type:text"`
	InReplyTo    string         `json:"in_reply_to"`
	References   StringArray    `json:"references" gorm:"column:references_list;type:text"`
	ParseSuccess bool           `json:"parse_success" gorm:"default:true"`
	Read         bool           `json:"read" gorm:"default:false"`
	Archived     bool           `json:"archived" gorm:"default:false"`
	ReceivedAt   time.Time      `json:"received_at" gorm:"index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (ReceivedEmail) TableName() string {
	return "received_emails"
}

// FromString renders the first From mailbox as a plain string.
func (e *ReceivedEmail) FromString() string {
	if len(e.FromAddress) == 0 {
		return ""
	}
	return e.FromAddress[0].Address
}

// Participants returns the union of from/to/cc bare addresses.
func (e *ReceivedEmail) Participants() []string {
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
