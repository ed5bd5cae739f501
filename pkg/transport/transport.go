// Package transport defines the outbound hand-off contract for raw
// messages and its implementations. The pipeline builds the bytes; a
// Sender only relays them.
package transport

import "context"

// Sender relays one already-built raw RFC 2822 message. Implementations
// must treat the whole recipient list as one atomic send.
type Sender interface {
	// Send relays raw to the given recipients. It returns an error if the
	// relay fails for any recipient.
	Send(ctx context.Context, from string, to []string, raw []byte) error

	// Name returns the human-readable name of this transport.
	Name() string
}
