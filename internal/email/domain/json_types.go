package domain

import (
	"database/sql/driver"
	"encoding/json"
)

// StringArray is a custom type to handle JSON arrays in GORM text columns
type StringArray []string

// Value implements driver.Valuer
func (a StringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *StringArray) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok || len(bytes) == 0 {
		*a = []string{}
		return nil
	}
	return json.Unmarshal(bytes, a)
}

// JSONMap stores arbitrary string-keyed JSON objects in a text column
type JSONMap map[string]interface{}

// Value implements driver.Valuer
func (m JSONMap) Value() (driver.Value, error) {
	if len(m) == 0 {
		return "{}", nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *JSONMap) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok || len(bytes) == 0 {
		*m = JSONMap{}
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// Address is one parsed mailbox from an address header.
type Address struct {
	Name    string `json:"name,omitempty"`
	Address string `json:"address"`
}

// AddressList stores parsed address headers as JSON in a text column
type AddressList []Address

// Value implements driver.Valuer
func (l AddressList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *AddressList) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok || len(bytes) == 0 {
		*l = AddressList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

// Addresses returns just the bare address strings.
func (l AddressList) Addresses() []string {
	out := make([]string, len(l))
	for i, a := range l {
		out[i] = a.Address
	}
	return out
}

// StoredAttachment is attachment metadata plus base64 content as parsed at
// ingestion time.
type StoredAttachment struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	ContentID   string `json:"content_id,omitempty"`
	Content     string `json:"content,omitempty"` // base64
}

// AttachmentList stores attachments as JSON in a text column
type AttachmentList []StoredAttachment

// Value implements driver.Valuer
func (l AttachmentList) Value() (driver.Value, error) {
	if len(l) == 0 {
		return "[]", nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner
func (l *AttachmentList) Scan(value interface{}) error {
	bytes, ok := scanBytes(value)
	if !ok || len(bytes) == 0 {
		*l = AttachmentList{}
		return nil
	}
	return json.Unmarshal(bytes, l)
}

func scanBytes(value interface{}) ([]byte, bool) {
	if value == nil {
		return nil, false
	}
	switch v := value.(type) {
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		return nil, false
	}
}
