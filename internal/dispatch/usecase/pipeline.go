package usecase

import (
	"context"
	"fmt"
	"log"

	emaildomain "mailroute-backend/internal/email/domain"
	emailrepo "mailroute-backend/internal/email/repository"
	routingdomain "mailroute-backend/internal/routing/domain"
	routingusecase "mailroute-backend/internal/routing/usecase"
)

// RouteResult summarizes one routeEmail invocation. Outcome is nil when
// no destination was configured: the email stays stored, nothing else
// happens and no outcome row is written.
type RouteResult struct {
	MatchedBy string                       `json:"matched_by"`
	Outcome   *emaildomain.DeliveryOutcome `json:"outcome,omitempty"`
}

// PipelineUsecase drives resolve, dispatch and track for one email.
// Invocations are not idempotent: repeated calls re-dispatch and re-track.
type PipelineUsecase interface {
	RouteEmail(ctx context.Context, accountID, emailID string) (*RouteResult, error)
}

type pipelineUsecase struct {
	emailRepo         emailrepo.ReceivedEmailRepository
	resolver          routingusecase.ResolverUsecase
	webhookDispatcher *WebhookDispatcher
	forwardDispatcher *ForwardDispatcher
	tracker           Tracker
}

func NewPipelineUsecase(emailRepo emailrepo.ReceivedEmailRepository, resolver routingusecase.ResolverUsecase, webhookDispatcher *WebhookDispatcher, forwardDispatcher *ForwardDispatcher, tracker Tracker) PipelineUsecase {
	return &pipelineUsecase{
		emailRepo:         emailRepo,
		resolver:          resolver,
		webhookDispatcher: webhookDispatcher,
		forwardDispatcher: forwardDispatcher,
		tracker:           tracker,
	}
}

// RouteEmail runs the pipeline strictly sequentially: resolve the single
// destination, dispatch, record the outcome.
func (u *pipelineUsecase) RouteEmail(ctx context.Context, accountID, emailID string) (*RouteResult, error) {
	email, err := u.emailRepo.GetByID(accountID, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to load email %s: %w", emailID, err)
	}
	if email == nil {
		return nil, fmt.Errorf("email %s not found", emailID)
	}

	resolution := u.resolver.Resolve(accountID, email.Recipient)

	if !resolution.HasDestination() {
		log.Printf("[DEBUG] no destination for %s, email %s stored without delivery", email.Recipient, emailID)
		return &RouteResult{MatchedBy: routingusecase.MatchNone}, nil
	}

	if resolution.LegacyWebhook != nil {
		result := u.webhookDispatcher.DeliverLegacy(ctx, email, resolution.LegacyWebhook)
		outcome := u.tracker.Record(email.ID, nil, emaildomain.ChannelWebhook, result)
		return &RouteResult{MatchedBy: resolution.MatchedBy, Outcome: outcome}, nil
	}

	endpoint := resolution.Endpoint
	var (
		result  DeliveryResult
		channel string
	)
	switch endpoint.Type {
	case routingdomain.EndpointTypeWebhook:
		result = u.webhookDispatcher.Deliver(ctx, email, endpoint)
		channel = emaildomain.ChannelWebhook
	case routingdomain.EndpointTypeEmailForward, routingdomain.EndpointTypeEmailGroup:
		result = u.forwardDispatcher.Deliver(ctx, email, endpoint)
		channel = emaildomain.ChannelEmailForward
	default:
		result = failedResult(fmt.Sprintf("Unknown endpoint type %q", endpoint.Type))
		channel = emaildomain.ChannelWebhook
	}

	outcome := u.tracker.Record(email.ID, &endpoint.ID, channel, result)
	if !result.Success {
		log.Printf("[WARN] delivery failed for email %s to endpoint %s: %s", emailID, endpoint.ID, result.Error)
	}
	return &RouteResult{MatchedBy: resolution.MatchedBy, Outcome: outcome}, nil
}
