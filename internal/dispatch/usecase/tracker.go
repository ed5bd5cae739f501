package usecase

import (
	"log"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
	emailrepo "mailroute-backend/internal/email/repository"

	"github.com/google/uuid"
)

// Tracker records one outcome row per dispatch attempt. Rows are
// append-only; a retry shows up as a new row.
type Tracker interface {
	Record(emailID string, endpointID *string, channel string, result DeliveryResult) *emaildomain.DeliveryOutcome
}

type tracker struct {
	outcomeRepo emailrepo.DeliveryOutcomeRepository
}

func NewTracker(outcomeRepo emailrepo.DeliveryOutcomeRepository) Tracker {
	return &tracker{outcomeRepo: outcomeRepo}
}

// Record appends the outcome. Write failures are logged and swallowed;
// tracking must never fail the email processing pipeline.
func (t *tracker) Record(emailID string, endpointID *string, channel string, result DeliveryResult) *emaildomain.DeliveryOutcome {
	status := emaildomain.StatusFailed
	if result.Success {
		status = emaildomain.StatusSuccess
	}

	outcome := &emaildomain.DeliveryOutcome{
		ID:            uuid.New().String(),
		EmailID:       emailID,
		EndpointID:    endpointID,
		Channel:       channel,
		Status:        status,
		Attempts:      1,
		LastAttemptAt: time.Now(),
		ResponseCode:  result.ResponseCode,
		ResponseBody:  result.ResponseBody,
		ErrorMessage:  result.Error,
		Metadata:      result.Metadata,
	}

	if err := t.outcomeRepo.Create(outcome); err != nil {
		log.Printf("[ERROR] failed to record delivery outcome for email %s: %v", emailID, err)
	}
	return outcome
}
