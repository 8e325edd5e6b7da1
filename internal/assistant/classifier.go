package assistant

import (
	"github.com/hackgods/vitalpoint-assistant/internal/session"
	"github.com/hackgods/vitalpoint-assistant/internal/textnorm"
)

// Intent is what a turn was understood to ask for.
type Intent string

const (
	IntentOnboarding       Intent = "onboarding"
	IntentBookingStep      Intent = "booking_step"
	IntentCancelBooking    Intent = "cancel_booking"
	IntentListDoctors      Intent = "list_doctors"
	IntentViewAppointments Intent = "view_appointments"
	IntentStartBooking     Intent = "start_booking"
	IntentFallback         Intent = "fallback"
)

var (
	listTriggers    = textnorm.Vocabulary("available", "list")
	doctorStem      = textnorm.Stem("doctors")
	myStem          = textnorm.Stem("my")
	appointmentStem = textnorm.Stem("appointments")
	historyStem     = textnorm.Stem("history")
	bookingTriggers = textnorm.Vocabulary("schedule", "book", "appointment")
	cancelTriggers  = textnorm.Vocabulary("cancel", "abort", "stop", "nevermind")
)

// Classify maps a ready session's utterance to an intent. Rules are checked in a fixed order and the
// first match wins, so an active booking step always owns the turn and "my appointments" lists the
// ledger instead of starting a new booking.
func Classify(step session.Step, stems textnorm.Set) Intent {
	switch {
	case step.Active():
		return IntentBookingStep
	case stems.HasAny(listTriggers...) && stems.Has(doctorStem):
		return IntentListDoctors
	case stems.Has(appointmentStem) && (stems.Has(myStem) || stems.Has(historyStem)):
		return IntentViewAppointments
	case stems.HasAny(bookingTriggers...):
		return IntentStartBooking
	default:
		return IntentFallback
	}
}

// wantsCancel reports whether an in-flow utterance asks to abandon the booking.
func wantsCancel(tokens []string, stems textnorm.Set) bool {
	if stems.HasAny(cancelTriggers...) {
		return true
	}
	for i := 0; i+1 < len(tokens); i++ {
		if tokens[i] == "never" && tokens[i+1] == "mind" {
			return true
		}
	}
	return false
}
