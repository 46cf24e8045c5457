package wizard

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"balance-funnel/pkg/clients/relay"
	"balance-funnel/pkg/models"
	"balance-funnel/pkg/utils"
)

// maxNameLength bounds the name inputs
const maxNameLength = 64

// accessCodeLength is the size of the generated session code
const accessCodeLength = 6

// submitEvent names the tracking event sent with every lead payload
const submitEvent = "cipher-email-captured"

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Session is one visitor's pass through the funnel. Methods are safe to
// call from timer callbacks and the submission goroutine; everything is
// serialized on a single mutex.
type Session struct {
	mu sync.Mutex

	stage      Stage
	step       EmailStep
	firstName  string
	lastName   string
	email      string
	accessCode string
	sendStatus SendStatus
	sendError  string

	// generation distinguishes the current session from a superseded
	// one; stale timers and late submission results check it and no-op
	generation int

	sched        scheduler
	relayClient  relay.Client
	client       ClientContext
	choreography Choreography
	logger       zerolog.Logger
}

// NewSession creates a session at the landing stage
func NewSession(relayClient relay.Client, client ClientContext, choreography Choreography, logger zerolog.Logger) *Session {
	return &Session{
		stage:        StageLanding,
		relayClient:  relayClient,
		client:       client,
		choreography: choreography,
		logger:       logger.With().Str("component", "wizard").Logger(),
	}
}

// Begin starts the funnel from the landing screen
func (s *Session) Begin() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageLanding {
		return ErrWrongStage
	}
	s.clearLocked()
	s.stage = StageNameFirst
	return nil
}

// SubmitFirstName captures the first name and schedules the timed
// acknowledgment before the next screen
func (s *Session) SubmitFirstName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageNameFirst {
		return ErrWrongStage
	}
	trimmed, err := validateName(name)
	if err != nil {
		return err
	}
	s.firstName = trimmed
	s.afterLocked(s.choreography.FirstNameAck, func() {
		s.stage = StageNameSecond
	})
	return nil
}

// SubmitLastName captures the last name; the longer acknowledgment
// leads into the transition reveal, which advances on its own
func (s *Session) SubmitLastName(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageNameSecond {
		return ErrWrongStage
	}
	trimmed, err := validateName(name)
	if err != nil {
		return err
	}
	s.lastName = trimmed
	s.afterLocked(s.choreography.LastNameAck, func() {
		s.stage = StageTransition
		s.afterLocked(s.choreography.TransitionHold, func() {
			s.stage = StageEmail
			s.step = StepEmail
		})
	})
	return nil
}

// SubmitEmail validates the email, builds the lead payload and submits
// it to the relay. At most one submission is in flight per session; a
// failed attempt may be retried manually with a fresh requestId but the
// same access code.
func (s *Session) SubmitEmail(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageEmail || s.step != StepEmail {
		return ErrWrongStage
	}
	if s.sendStatus == SendInFlight {
		return ErrSubmissionInFlight
	}
	trimmed := strings.TrimSpace(email)
	if !emailPattern.MatchString(trimmed) {
		return ErrInvalidEmail
	}
	s.email = trimmed
	if s.accessCode == "" {
		s.accessCode = utils.GenerateAccessCode(accessCodeLength)
	}

	payload := models.NewLeadPayload(s.firstName, s.lastName, s.email, models.Tracking{
		Event:      submitEvent,
		AccessCode: s.accessCode,
		UserAgent:  s.client.UserAgent,
		Referrer:   s.client.Referrer,
		PageURL:    s.client.PageURL,
	})

	s.sendStatus = SendInFlight
	s.sendError = ""
	generation := s.generation

	go s.submit(ctx, generation, payload)
	return nil
}

// submit runs outside the lock; the result is discarded if the session
// was reset while the request was on the wire
func (s *Session) submit(ctx context.Context, generation int, payload models.LeadPayload) {
	_, err := s.relayClient.SubmitLead(ctx, payload)

	s.mu.Lock()
	defer s.mu.Unlock()
	if generation != s.generation {
		s.logger.Info().Str("request_id", payload.RequestID).Msg("Discarding submission result for reset session")
		return
	}

	if err != nil {
		s.sendStatus = SendFailed
		s.sendError = utils.Truncate(err.Error(), 512)
		s.logger.Warn().Str("request_id", payload.RequestID).Msg("Lead submission failed")
		return
	}

	s.sendStatus = SendDone
	s.afterLocked(s.choreography.SentAck, func() {
		s.step = StepCode
	})
}

// SubmitCode checks the entered code against the session's access code.
// Purely local; no network involved.
func (s *Session) SubmitCode(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stage != StageEmail || s.step != StepCode {
		return ErrWrongStage
	}
	entered := strings.TrimSpace(code)
	if entered == "" || !strings.EqualFold(entered, s.accessCode) {
		return ErrCodeMismatch
	}
	s.stage = StageFinal
	return nil
}

// Reset returns the session to the landing screen from any stage. All
// pending timers are cancelled synchronously and the generation bump
// makes any in-flight submission result a no-op.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sched.cancelAll()
	s.generation++
	s.clearLocked()
	s.stage = StageLanding
}

func (s *Session) clearLocked() {
	s.firstName = ""
	s.lastName = ""
	s.email = ""
	s.accessCode = ""
	s.sendStatus = SendIdle
	s.sendError = ""
	s.step = StepEmail
}

// afterLocked schedules fn to run under the session lock after d,
// unless the session has been reset in the meantime
func (s *Session) afterLocked(d time.Duration, fn func()) {
	generation := s.generation
	s.sched.after(d, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if generation != s.generation {
			return
		}
		fn()
	})
}

func validateName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return "", ErrNameRequired
	}
	if len(trimmed) > maxNameLength {
		return "", ErrNameTooLong
	}
	return trimmed, nil
}

// Stage reports the current screen
func (s *Session) Stage() Stage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stage
}

// Step reports the email sub-stage
func (s *Session) Step() EmailStep {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

// SendStatus reports the submission lifecycle state
func (s *Session) SendStatus() SendStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendStatus
}

// SendError returns the bounded diagnostic from the last failed
// submission, shown to the user verbatim
func (s *Session) SendError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendError
}

// AccessCode returns the session's code for display on the email screen
func (s *Session) AccessCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accessCode
}
