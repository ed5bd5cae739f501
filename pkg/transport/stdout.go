package transport

import (
	"context"
	"log"
)

// StdoutSender logs messages instead of relaying them. Used for local
// development and tests.
type StdoutSender struct{}

func NewStdout() *StdoutSender {
	return &StdoutSender{}
}

func (s *StdoutSender) Send(ctx context.Context, from string, to []string, raw []byte) error {
	log.Printf("[DEBUG] stdout transport: from=%s to=%v size=%d bytes", from, to, len(raw))
	return nil
}

// Name returns the transport name.
func (s *StdoutSender) Name() string {
	return "stdout"
}
