package appointment

import (
	"time"
)

const (
	EventAppointmentConfirmed = "APPOINTMENT_CONFIRMED"
)

// Appointment is a confirmed booking. ID is assigned by the ledger and is unique within a session.
type Appointment struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`
	PatientName  string    `json:"patient_name"`
	PatientEmail string    `json:"patient_email"`
	DoctorID     int       `json:"doctor_id"`
	Day          string    `json:"day"`
	Slot         string    `json:"slot"`
	BookingRef   string    `json:"booking_ref,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

type EventLog struct {
	ID        int64
	EventType string
	SessionID string
	Payload   []byte
	CreatedAt time.Time
}
