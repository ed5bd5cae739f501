package domain

import "time"

// Thread message directions
const (
	DirectionInbound  = "inbound"
	DirectionOutbound = "outbound"
)

// ThreadMessage is the uniform view of one message inside a conversation,
// built on demand by the threader and never persisted.
type ThreadMessage struct {
	ID             string      `json:"id"`
	MessageID      string      `json:"message_id"`
	Direction      string      `json:"direction"`
	Subject        string      `json:"subject"`
	From           AddressList `json:"from"`
	To             AddressList `json:"to"`
	TextBody       string      `json:"text_body,omitempty"`
	HTMLBody       string      `json:"html_body,omitempty"`
	InReplyTo      string      `json:"in_reply_to,omitempty"`
	References     []string    `json:"references,omitempty"`
	Timestamp      time.Time   `json:"timestamp"` // received-at for inbound, sent-at for outbound
	ThreadPosition int         `json:"thread_position"`
}

// Thread confidence levels and methods
const (
	ConfidenceHigh   = "high"
	ConfidenceMedium = "medium"
	ConfidenceLow    = "low"

	MethodMessageID  = "message-id"
	MethodReferences = "references"
	MethodSubject    = "subject"
)

// Thread is a reconstructed conversation around one seed message.
type Thread struct {
	ThreadID   string          `json:"thread_id"`
	Messages   []ThreadMessage `json:"messages"`
	Confidence string          `json:"confidence"`
	Method     string          `json:"method"`
}
