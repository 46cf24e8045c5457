// Package wizard drives the BALANCE Cipher funnel: a linear sequence of
// screens collecting a lead's name and email, gated at the end by a
// session-scoped access code. All choreography timers are cancellable
// and tagged with a session generation so a reset can never be mutated
// by a stale callback or a late submission result.
package wizard

import (
	"errors"
	"time"
)

// Stage enumerates the funnel screens
type Stage int

const (
	StageLanding Stage = iota
	StageNameFirst
	StageNameSecond
	StageTransition
	StageEmail
	StageFinal
)

func (s Stage) String() string {
	switch s {
	case StageLanding:
		return "landing"
	case StageNameFirst:
		return "nameFirst"
	case StageNameSecond:
		return "nameSecond"
	case StageTransition:
		return "transition"
	case StageEmail:
		return "email"
	case StageFinal:
		return "final"
	}
	return "unknown"
}

// EmailStep is the sub-stage within StageEmail
type EmailStep int

const (
	StepEmail EmailStep = iota
	StepCode
)

// SendStatus tracks the email submission's lifecycle
type SendStatus int

const (
	SendIdle SendStatus = iota
	SendInFlight
	SendDone
	SendFailed
)

var (
	ErrWrongStage         = errors.New("action not available in current stage")
	ErrNameRequired       = errors.New("name must not be empty")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrInvalidEmail       = errors.New("email address is not valid")
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	ErrCodeMismatch       = errors.New("code does not match")
)

// Choreography holds the timed reveal durations between screens
type Choreography struct {
	FirstNameAck   time.Duration
	LastNameAck    time.Duration
	TransitionHold time.Duration
	SentAck        time.Duration
}

// DefaultChoreography matches the funnel's scripted pacing
func DefaultChoreography() Choreography {
	return Choreography{
		FirstNameAck:   1200 * time.Millisecond,
		LastNameAck:    2600 * time.Millisecond,
		TransitionHold: 4 * time.Second,
		SentAck:        900 * time.Millisecond,
	}
}

// ClientContext is the browser context captured into lead tracking
type ClientContext struct {
	UserAgent string
	Referrer  string
	PageURL   string
}
