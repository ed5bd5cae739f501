package usecase

import (
	"context"

	emaildomain "mailroute-backend/internal/email/domain"
	routingdomain "mailroute-backend/internal/routing/domain"
)

// DeliveryResult is the outcome of one dispatch attempt. A dispatch is
// unambiguously success or failure; partial success is never fabricated.
type DeliveryResult struct {
	Success      bool
	ResponseCode *int
	ResponseBody string
	Error        string
	Metadata     emaildomain.JSONMap
}

// Dispatcher delivers one email to one endpoint. Implementations parse
// and validate the endpoint config themselves; config errors come back as
// failed results, not panics or partial deliveries.
type Dispatcher interface {
	Deliver(ctx context.Context, email *emaildomain.ReceivedEmail, endpoint *routingdomain.Endpoint) DeliveryResult
}

func failedResult(reason string) DeliveryResult {
	return DeliveryResult{Success: false, Error: reason}
}
