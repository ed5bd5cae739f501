package usecase

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	emaildomain "mailroute-backend/internal/email/domain"
	emailrepo "mailroute-backend/internal/email/repository"
)

// Expansion bounds. The fixed-point expansion over message-id links must
// terminate even on pathological reference graphs.
const (
	maxExpansionRounds = 3
	maxWorkingSetSize  = 50
	subjectWindow      = 30 * 24 * time.Hour
)

// Subject-tier scoring.
const (
	exactSubjectScore    = 50.0
	participantScoreMax  = 50.0
	candidateScoreCutoff = 25.0
	mediumConfidenceBar  = 75.0
)

// ThreaderUsecase reconstructs the conversation around one message.
type ThreaderUsecase interface {
	BuildThread(accountID, emailID string) (*emaildomain.Thread, error)
}

type threaderUsecase struct {
	receivedRepo emailrepo.ReceivedEmailRepository
	sentRepo     emailrepo.SentEmailRepository
}

func NewThreaderUsecase(receivedRepo emailrepo.ReceivedEmailRepository, sentRepo emailrepo.SentEmailRepository) ThreaderUsecase {
	return &threaderUsecase{receivedRepo: receivedRepo, sentRepo: sentRepo}
}

// BuildThread tries Message-ID/References linkage first and falls back to
// subject+participant heuristics. Any failure past loading the seed
// degrades to a single-message thread instead of propagating.
func (u *threaderUsecase) BuildThread(accountID, emailID string) (*emaildomain.Thread, error) {
	seed, err := u.receivedRepo.GetByID(accountID, emailID)
	if err != nil {
		return nil, fmt.Errorf("failed to load email %s: %w", emailID, err)
	}
	if seed == nil {
		return nil, fmt.Errorf("email %s not found", emailID)
	}

	inbound, outbound, expandErr := u.expandByMessageID(accountID, seed)
	if expandErr != nil {
		log.Printf("[WARN] thread expansion failed for email %s, degrading to single message: %v", emailID, expandErr)
		return u.singleMessageThread(seed), nil
	}

	confidence := emaildomain.ConfidenceHigh
	method := emaildomain.MethodMessageID
	if seed.InReplyTo != "" || len(seed.References) > 0 {
		method = emaildomain.MethodReferences
	}

	if len(inbound)+len(outbound) <= 1 {
		// Tier 1 found only the seed; try the subject/participant tier.
		var subjectInbound []*emaildomain.ReceivedEmail
		var subjectOutbound []*emaildomain.SentEmail
		subjectInbound, subjectOutbound, confidence = u.expandBySubject(accountID, seed)
		inbound = append(inbound, subjectInbound...)
		outbound = append(outbound, subjectOutbound...)
		method = emaildomain.MethodSubject

		if len(subjectInbound)+len(subjectOutbound) == 0 {
			confidence = emaildomain.ConfidenceLow
		}
	}

	messages := assembleMessages(seed, inbound, outbound)
	return &emaildomain.Thread{
		ThreadID:   seed.ID,
		Messages:   messages,
		Confidence: confidence,
		Method:     method,
	}, nil
}

// expandByMessageID collects the seed's own id, in-reply-to and references
// into a working set, then runs a bounded fixed-point expansion over both
// message stores, folding every discovered message's ids back in.
func (u *threaderUsecase) expandByMessageID(accountID string, seed *emaildomain.ReceivedEmail) ([]*emaildomain.ReceivedEmail, []*emaildomain.SentEmail, error) {
	working := newIDSet(maxWorkingSetSize)
	working.add(seedIDs(seed)...)
	if working.empty() {
		return nil, nil, nil
	}

	inboundByID := map[string]*emaildomain.ReceivedEmail{seed.ID: seed}
	outboundByID := map[string]*emaildomain.SentEmail{}

	for round := 0; round < maxExpansionRounds; round++ {
		grew := false

		inbound, err := u.receivedRepo.FindByMessageIDSet(accountID, working.values())
		if err != nil {
			return nil, nil, err
		}
		for _, msg := range inbound {
			if _, seen := inboundByID[msg.ID]; !seen {
				inboundByID[msg.ID] = msg
			}
			ids := append([]string{msg.MessageID, msg.InReplyTo}, msg.References...)
			if working.add(ids...) {
				grew = true
			}
		}

		outbound, err := u.sentRepo.FindByMessageIDSet(accountID, working.values())
		if err != nil {
			return nil, nil, err
		}
		for _, msg := range outbound {
			if _, seen := outboundByID[msg.ID]; !seen {
				outboundByID[msg.ID] = msg
			}
			ids := append([]string{msg.MessageID, msg.InReplyTo}, msg.References...)
			if working.add(ids...) {
				grew = true
			}
		}

		if !grew || working.full() {
			break
		}
	}

	inbound := make([]*emaildomain.ReceivedEmail, 0, len(inboundByID))
	for _, msg := range inboundByID {
		inbound = append(inbound, msg)
	}
	outbound := make([]*emaildomain.SentEmail, 0, len(outboundByID))
	for _, msg := range outboundByID {
		outbound = append(outbound, msg)
	}
	return inbound, outbound, nil
}

// expandBySubject scores candidates within a 30-day window: exact
// normalized-subject match plus participant overlap. Candidates below the
// cutoff are dropped entirely.
func (u *threaderUsecase) expandBySubject(accountID string, seed *emaildomain.ReceivedEmail) ([]*emaildomain.ReceivedEmail, []*emaildomain.SentEmail, string) {
	normalized := NormalizeSubject(seed.Subject)
	if normalized == "" {
		return nil, nil, emaildomain.ConfidenceLow
	}

	since := time.Now().Add(-subjectWindow)
	seedParticipants := seed.Participants()

	var inbound []*emaildomain.ReceivedEmail
	var outbound []*emaildomain.SentEmail
	bestScore := 0.0

	candidates, err := u.receivedRepo.FindBySubjectSince(accountID, normalized, since)
	if err != nil {
		log.Printf("[WARN] subject candidate lookup failed: %v", err)
	}
	for _, c := range candidates {
		if c.ID == seed.ID {
			continue
		}
		score, ok := scoreCandidate(normalized, seedParticipants, NormalizeSubject(c.Subject), c.Participants())
		if !ok {
			continue
		}
		inbound = append(inbound, c)
		if score > bestScore {
			bestScore = score
		}
	}

	sentCandidates, err := u.sentRepo.FindBySubjectSince(accountID, normalized, since)
	if err != nil {
		log.Printf("[WARN] sent subject candidate lookup failed: %v", err)
	}
	for _, c := range sentCandidates {
		score, ok := scoreCandidate(normalized, seedParticipants, NormalizeSubject(c.Subject), c.Participants())
		if !ok {
			continue
		}
		outbound = append(outbound, c)
		if score > bestScore {
			bestScore = score
		}
	}

	confidence := emaildomain.ConfidenceLow
	if bestScore >= mediumConfidenceBar {
		confidence = emaildomain.ConfidenceMedium
	}
	return inbound, outbound, confidence
}

// scoreCandidate returns the candidate's score and whether it clears the
// cutoff. The candidate's normalized subject must contain the seed's.
func scoreCandidate(seedSubject string, seedParticipants []string, candidateSubject string, candidateParticipants []string) (float64, bool) {
	if !strings.Contains(candidateSubject, seedSubject) {
		return 0, false
	}
	score := 0.0
	if candidateSubject == seedSubject {
		score += exactSubjectScore
	}
	score += participantScoreMax * jaccardOverlap(seedParticipants, candidateParticipants)
	return score, score >= candidateScoreCutoff
}

func (u *threaderUsecase) singleMessageThread(seed *emaildomain.ReceivedEmail) *emaildomain.Thread {
	return &emaildomain.Thread{
		ThreadID:   seed.ID,
		Messages:   assembleMessages(seed, []*emaildomain.ReceivedEmail{seed}, nil),
		Confidence: emaildomain.ConfidenceLow,
		Method:     emaildomain.MethodMessageID,
	}
}

// assembleMessages merges both stores into the uniform shape, collapses
// duplicate message-ids, sorts by effective timestamp and assigns
// zero-based positions. The seed is always present.
func assembleMessages(seed *emaildomain.ReceivedEmail, inbound []*emaildomain.ReceivedEmail, outbound []*emaildomain.SentEmail) []emaildomain.ThreadMessage {
	hasSeed := false
	for _, msg := range inbound {
		if msg.ID == seed.ID {
			hasSeed = true
			break
		}
	}
	if !hasSeed {
		inbound = append(inbound, seed)
	}

	var messages []emaildomain.ThreadMessage
	seenMessageIDs := make(map[string]bool)

	for _, msg := range inbound {
		if msg.MessageID != "" && seenMessageIDs[msg.MessageID] {
			continue
		}
		if msg.MessageID != "" {
			seenMessageIDs[msg.MessageID] = true
		}
		messages = append(messages, emaildomain.ThreadMessage{
			ID:         msg.ID,
			MessageID:  msg.MessageID,
			Direction:  emaildomain.DirectionInbound,
			Subject:    msg.Subject,
			From:       msg.FromAddress,
			To:         msg.ToAddresses,
			TextBody:   msg.TextBody,
			HTMLBody:   msg.HTMLBody,
			InReplyTo:  msg.InReplyTo,
			References: msg.References,
			Timestamp:  msg.ReceivedAt,
		})
	}

	for _, msg := range outbound {
		if msg.MessageID != "" && seenMessageIDs[msg.MessageID] {
			continue
		}
		if msg.MessageID != "" {
			seenMessageIDs[msg.MessageID] = true
		}
		messages = append(messages, emaildomain.ThreadMessage{
			ID:         msg.ID,
			MessageID:  msg.MessageID,
			Direction:  emaildomain.DirectionOutbound,
			Subject:    msg.Subject,
			From:       msg.FromAddress,
			To:         msg.ToAddresses,
			TextBody:   msg.TextBody,
			HTMLBody:   msg.HTMLBody,
			InReplyTo:  msg.InReplyTo,
			References: msg.References,
			Timestamp:  msg.SentAt,
		})
	}

	sort.SliceStable(messages, func(i, j int) bool {
		return messages[i].Timestamp.Before(messages[j].Timestamp)
	})
	for i := range messages {
		messages[i].ThreadPosition = i
	}
	return messages
}

func seedIDs(seed *emaildomain.ReceivedEmail) []string {
	ids := []string{seed.MessageID, seed.InReplyTo}
	return append(ids, seed.References...)
}

// idSet is a capped, insertion-ordered set of message-id tokens.
type idSet struct {
	cap    int
	seen   map[string]struct{}
	sorted []string
}

func newIDSet(capacity int) *idSet {
	return &idSet{cap: capacity, seen: make(map[string]struct{})}
}

// add cleans and inserts ids, returning true if the set grew. Inserts
// beyond capacity are dropped.
func (s *idSet) add(ids ...string) bool {
	grew := false
	for _, id := range ids {
		id = cleanMessageID(id)
		if id == "" {
			continue
		}
		if _, ok := s.seen[id]; ok {
			continue
		}
		if len(s.sorted) >= s.cap {
			return grew
		}
		s.seen[id] = struct{}{}
		s.sorted = append(s.sorted, id)
		grew = true
	}
	return grew
}

func (s *idSet) values() []string { return s.sorted }
func (s *idSet) empty() bool      { return len(s.sorted) == 0 }
func (s *idSet) full() bool       { return len(s.sorted) >= s.cap }
