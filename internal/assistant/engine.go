// Package assistant implements the VitalPoint intake and booking conversation: the identity gate,
// intent classification, the booking state machine and the per-session turn pipeline.
package assistant

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hackgods/vitalpoint-assistant/internal/appointment"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	"github.com/hackgods/vitalpoint-assistant/internal/llm"
	"github.com/hackgods/vitalpoint-assistant/internal/session"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

// Outcome is the result of running one utterance against a profile.
type Outcome struct {
	Reply   string
	Intent  Intent
	Profile session.Profile

	// Fallback is set when the reply must come from the completer using Seed.
	Fallback bool
	Seed     llm.Seed

	// Booked and Doctor are set when the turn confirmed an appointment.
	Booked *appointment.Appointment
	Doctor *directory.Doctor

	// Err records a recovered validation or consistency failure. The reply already covers it.
	Err error
}

// Engine applies the conversation rules to a profile. It holds no per-session state and is safe for
// concurrent use; callers serialize turns of the same session.
type Engine struct {
	directory    *directory.Directory
	ledger       appointment.Ledger
	persona      llm.Persona
	organization string
	logger       *logging.Logger
	newRef       func() string
}

func NewEngine(dir *directory.Directory, ledger appointment.Ledger, persona llm.Persona, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Default()
	}
	if persona.Organization == "" {
		persona = llm.DefaultPersona()
	}
	return &Engine{
		directory:    dir,
		ledger:       ledger,
		persona:      persona,
		organization: persona.Organization,
		logger:       logger,
		newRef:       uuid.NewString,
	}
}

// Step runs utterance against a copy of p. The returned error is non-nil only for infrastructure
// failures, in which case the outcome must be discarded.
func (e *Engine) Step(ctx context.Context, p session.Profile, utterance string) (Outcome, error) {
	profile := p.Clone()

	if reply, handled, err := e.onboard(&profile, utterance); handled {
		return Outcome{Reply: reply, Intent: IntentOnboarding, Profile: profile, Err: err}, nil
	}

	t := newTurn(utterance)
	var (
		out Outcome
		err error
	)

	switch intent := Classify(profile.Step, t.stems); intent {
	case IntentBookingStep:
		out, err = e.advanceBooking(ctx, &profile, t)
	case IntentListDoctors:
		out = Outcome{Reply: replyDoctorListing(e.directory.All()), Intent: intent}
	case IntentViewAppointments:
		out, err = e.viewAppointments(ctx, profile)
	case IntentStartBooking:
		out = e.startBooking(&profile)
	default:
		out = e.fallback(ctx, profile)
	}
	if err != nil {
		return Outcome{}, err
	}

	out.Profile = profile
	return out, nil
}

func (e *Engine) viewAppointments(ctx context.Context, p session.Profile) (Outcome, error) {
	appts, err := e.ledger.ListFor(ctx, p.SessionID, p.Email)
	if err != nil {
		return Outcome{}, fmt.Errorf("list appointments: %w", err)
	}
	return Outcome{Reply: replyAppointments(appts, e.directory), Intent: IntentViewAppointments}, nil
}

// fallback prepares the completer seed. A ledger failure only drops the appointment recap.
func (e *Engine) fallback(ctx context.Context, p session.Profile) Outcome {
	var booked []string
	appts, err := e.ledger.ListFor(ctx, p.SessionID, p.Email)
	if err != nil {
		e.logger.Warn("could not load appointments for conversation seed",
			"session_id", p.SessionID,
			"error", err,
		)
	} else {
		booked = bookedSummaries(appts, e.directory)
	}

	return Outcome{
		Intent:   IntentFallback,
		Fallback: true,
		Seed:     e.persona.Seed(p.Name, p.Email, booked),
	}
}
