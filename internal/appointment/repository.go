package appointment

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrInvalidAppointment = errors.New("invalid appointment")
)

// Ledger is the append-only record of confirmed appointments.
type Ledger interface {
	// Append stores a and returns it with its assigned ID and creation time.
	Append(ctx context.Context, a Appointment) (Appointment, error)
	// ListFor returns the session's appointments booked under email, in insertion order.
	ListFor(ctx context.Context, sessionID, email string) ([]Appointment, error)
}

func validate(a Appointment) error {
	switch {
	case a.SessionID == "":
		return fmt.Errorf("%w: missing session id", ErrInvalidAppointment)
	case a.PatientEmail == "":
		return fmt.Errorf("%w: missing patient email", ErrInvalidAppointment)
	case a.DoctorID == 0:
		return fmt.Errorf("%w: missing doctor", ErrInvalidAppointment)
	case a.Day == "" || a.Slot == "":
		return fmt.Errorf("%w: missing day or slot", ErrInvalidAppointment)
	}
	return nil
}

// MemoryLedger keeps appointments in process memory.
type MemoryLedger struct {
	mu        sync.RWMutex
	bySession map[string][]Appointment
	now       func() time.Time
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		bySession: make(map[string][]Appointment),
		now:       time.Now,
	}
}

func (l *MemoryLedger) Append(ctx context.Context, a Appointment) (Appointment, error) {
	if err := validate(a); err != nil {
		return Appointment{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	existing := l.bySession[a.SessionID]
	a.ID = int64(len(existing)) + 1
	a.CreatedAt = l.now().UTC()
	l.bySession[a.SessionID] = append(existing, a)
	return a, nil
}

func (l *MemoryLedger) ListFor(ctx context.Context, sessionID, email string) ([]Appointment, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := []Appointment{}
	for _, a := range l.bySession[sessionID] {
		if a.PatientEmail == email {
			out = append(out, a)
		}
	}
	return out, nil
}
