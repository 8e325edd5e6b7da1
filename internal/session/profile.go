package session

import "time"

// Step is the booking stage for a session.
type Step string

const (
	StepNone         Step = "NONE"
	StepSelectDoctor Step = "SELECT_DOCTOR"
	StepSelectDay    Step = "SELECT_DAY"
	StepSelectTime   Step = "SELECT_TIME"
)

// Active reports whether a booking flow is in progress. Unknown values count as active
// so they reach the booking handler instead of being silently ignored.
func (s Step) Active() bool {
	return s != "" && s != StepNone
}

// GateState is the onboarding stage derived from the captured identity.
type GateState string

const (
	GateAwaitName  GateState = "AWAIT_NAME"
	GateAwaitEmail GateState = "AWAIT_EMAIL"
	GateReady      GateState = "READY"
)

// Pending is the in-progress appointment selection. Fields fill in order: doctor, day, slot.
// Ref identifies one booking flow and is copied onto the appointment it produces.
type Pending struct {
	Ref      string `json:"ref,omitempty"`
	DoctorID int    `json:"doctor_id,omitempty"`
	Day      string `json:"day,omitempty"`
	Slot     string `json:"slot,omitempty"`
}

// Profile is everything the assistant remembers about one conversation.
type Profile struct {
	SessionID     string    `json:"session_id"`
	Name          string    `json:"name,omitempty"`
	Email         string    `json:"email,omitempty"`
	NamePrompted  bool      `json:"name_prompted"`
	EmailPrompted bool      `json:"email_prompted"`
	Step          Step      `json:"step"`
	Pending       *Pending  `json:"pending,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// New returns an empty profile for a fresh session.
func New(sessionID string, now time.Time) Profile {
	return Profile{
		SessionID: sessionID,
		Step:      StepNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Gate derives the onboarding state. It only moves forward because name and email are never cleared.
func (p Profile) Gate() GateState {
	switch {
	case p.Name == "":
		return GateAwaitName
	case p.Email == "":
		return GateAwaitEmail
	default:
		return GateReady
	}
}

// Clone returns a copy that does not share the pending selection.
func (p Profile) Clone() Profile {
	out := p
	if p.Pending != nil {
		pending := *p.Pending
		out.Pending = &pending
	}
	return out
}

// ResetBooking drops any in-progress selection.
func (p *Profile) ResetBooking() {
	p.Step = StepNone
	p.Pending = nil
}
