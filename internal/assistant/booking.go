package assistant

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/hackgods/vitalpoint-assistant/internal/appointment"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	"github.com/hackgods/vitalpoint-assistant/internal/session"
	"github.com/hackgods/vitalpoint-assistant/internal/textnorm"
)

var dayAbbreviations = map[string][]string{
	"monday":    {"mon"},
	"tuesday":   {"tue", "tues"},
	"wednesday": {"wed"},
	"thursday":  {"thu", "thur", "thurs"},
	"friday":    {"fri"},
	"saturday":  {"sat"},
	"sunday":    {"sun"},
}

// turn is the normalized view of one utterance.
type turn struct {
	raw      string
	tokens   []string
	stemList []string
	stems    textnorm.Set
}

func newTurn(raw string) turn {
	stems := textnorm.Normalize(raw)
	return turn{
		raw:      raw,
		tokens:   textnorm.Tokens(raw),
		stemList: stems,
		stems:    textnorm.NewSet(stems),
	}
}

func (e *Engine) startBooking(p *session.Profile) Outcome {
	p.Step = session.StepSelectDoctor
	p.Pending = &session.Pending{Ref: e.newRef()}
	return Outcome{Reply: replyStartBooking(e.directory.All()), Intent: IntentStartBooking}
}

// advanceBooking handles a turn while a booking step is active. Only ledger failures are returned
// as errors; everything else is reported through the Outcome.
func (e *Engine) advanceBooking(ctx context.Context, p *session.Profile, t turn) (Outcome, error) {
	if wantsCancel(t.tokens, t.stems) {
		p.ResetBooking()
		return Outcome{Reply: replyCancelled, Intent: IntentCancelBooking}, nil
	}

	switch p.Step {
	case session.StepSelectDoctor:
		return e.selectDoctor(p, t), nil
	case session.StepSelectDay:
		return e.selectDay(p, t), nil
	case session.StepSelectTime:
		return e.selectTime(ctx, p, t)
	default:
		// state is left untouched; cancel still resets it
		err := fmt.Errorf("%w: unknown step %q", ErrInternalInconsistency, p.Step)
		e.logger.Error("unknown booking step", "session_id", p.SessionID, "step", string(p.Step))
		return Outcome{Reply: replyGenericFailure, Intent: IntentBookingStep, Err: err}, nil
	}
}

func (e *Engine) selectDoctor(p *session.Profile, t turn) Outcome {
	doc, ok := e.directory.Find(t.tokens, t.stemList)
	if !ok {
		return Outcome{
			Reply:  replyInvalidDoctor(e.directory.All()),
			Intent: IntentBookingStep,
			Err:    fmt.Errorf("%w: no doctor matches %q", ErrValidation, t.raw),
		}
	}

	p.Pending = &session.Pending{DoctorID: doc.ID}
	p.Step = session.StepSelectDay
	return Outcome{Reply: replyDoctorSelected(doc), Intent: IntentBookingStep}
}

func (e *Engine) selectDay(p *session.Profile, t turn) Outcome {
	doc, err := e.pendingDoctor(p)
	if err != nil {
		return e.inconsistent(p, err)
	}

	avail, ok := matchDay(doc, t)
	if !ok {
		return Outcome{
			Reply:  replyInvalidDay,
			Intent: IntentBookingStep,
			Err:    fmt.Errorf("%w: no day of %s matches %q", ErrValidation, doc.Name, t.raw),
		}
	}

	p.Pending.Day = avail.Day
	p.Step = session.StepSelectTime
	return Outcome{Reply: replySlots(avail), Intent: IntentBookingStep}
}

func (e *Engine) selectTime(ctx context.Context, p *session.Profile, t turn) (Outcome, error) {
	doc, err := e.pendingDoctor(p)
	if err != nil {
		return e.inconsistent(p, err), nil
	}
	avail, ok := doc.DayAvailability(p.Pending.Day)
	if !ok {
		return e.inconsistent(p, fmt.Errorf("%w: %s has no availability on %q", ErrInternalInconsistency, doc.Name, p.Pending.Day)), nil
	}

	slot, ok := matchSlot(avail.Slots, t.raw)
	if !ok {
		return Outcome{
			Reply:  replyInvalidSlot,
			Intent: IntentBookingStep,
			Err:    fmt.Errorf("%w: no slot on %s matches %q", ErrValidation, avail.Day, t.raw),
		}, nil
	}

	booked, found, err := e.recordedBooking(ctx, p, doc.ID, avail.Day, slot)
	if err != nil {
		return Outcome{}, fmt.Errorf("look up booking: %w", err)
	}
	if !found {
		booked, err = e.ledger.Append(ctx, appointment.Appointment{
			SessionID:    p.SessionID,
			PatientName:  p.Name,
			PatientEmail: p.Email,
			DoctorID:     doc.ID,
			Day:          avail.Day,
			Slot:         slot,
			BookingRef:   p.Pending.Ref,
		})
		if err != nil {
			return Outcome{}, fmt.Errorf("record appointment: %w", err)
		}
	}

	p.ResetBooking()
	return Outcome{
		Reply:  replyConfirmed(booked, doc),
		Intent: IntentBookingStep,
		Booked: &booked,
		Doctor: &doc,
	}, nil
}

// recordedBooking finds an appointment this booking flow already wrote for the same selection. It
// exists only when the ledger append succeeded but the profile save after it did not.
func (e *Engine) recordedBooking(ctx context.Context, p *session.Profile, doctorID int, day, slot string) (appointment.Appointment, bool, error) {
	if p.Pending.Ref == "" {
		return appointment.Appointment{}, false, nil
	}
	appts, err := e.ledger.ListFor(ctx, p.SessionID, p.Email)
	if err != nil {
		return appointment.Appointment{}, false, err
	}
	for i := len(appts) - 1; i >= 0; i-- {
		a := appts[i]
		if a.BookingRef == p.Pending.Ref && a.DoctorID == doctorID && a.Day == day && a.Slot == slot {
			return a, true, nil
		}
	}
	return appointment.Appointment{}, false, nil
}

func (e *Engine) pendingDoctor(p *session.Profile) (directory.Doctor, error) {
	if p.Pending == nil || p.Pending.DoctorID == 0 {
		return directory.Doctor{}, fmt.Errorf("%w: step %s without a selected doctor", ErrInternalInconsistency, p.Step)
	}
	doc, ok := e.directory.ByID(p.Pending.DoctorID)
	if !ok {
		return directory.Doctor{}, fmt.Errorf("%w: unknown doctor %d", ErrInternalInconsistency, p.Pending.DoctorID)
	}
	return doc, nil
}

// inconsistent resets the flow so the session can always recover.
func (e *Engine) inconsistent(p *session.Profile, err error) Outcome {
	e.logger.Error("booking state inconsistent, resetting flow",
		"session_id", p.SessionID,
		"step", string(p.Step),
		"error", err,
	)
	p.ResetBooking()
	return Outcome{Reply: replyGenericFailure, Intent: IntentBookingStep, Err: err}
}

// matchDay returns the first of the doctor's days named in the turn, by full name or abbreviation.
func matchDay(doc directory.Doctor, t turn) (directory.Availability, bool) {
	tokens := textnorm.NewSet(t.tokens)
	for _, a := range doc.Availability {
		day := strings.ToLower(strings.TrimSpace(a.Day))
		if t.stems.Has(textnorm.Stem(day)) || tokens.Has(day) {
			return a, true
		}
		if tokens.HasAny(dayAbbreviations[day]...) {
			return a, true
		}
	}
	return directory.Availability{}, false
}

// matchSlot returns the first slot whose compacted label occurs in the compacted input without a
// digit immediately before it, so "11:30 AM" never selects "1:30 AM".
func matchSlot(slots []string, raw string) (string, bool) {
	input := compact(raw)
	for _, slot := range slots {
		label := compact(slot)
		if label == "" {
			continue
		}
		for offset := 0; ; {
			idx := strings.Index(input[offset:], label)
			if idx < 0 {
				break
			}
			at := offset + idx
			if at == 0 || !isASCIIDigit(input[at-1]) {
				return slot, true
			}
			offset = at + 1
		}
	}
	return "", false
}

func compact(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) || r == '.' {
			return -1
		}
		return unicode.ToLower(r)
	}, s)
}

func isASCIIDigit(b byte) bool {
	return b >= '0' && b <= '9'
}
