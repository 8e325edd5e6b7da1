package appointment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

// DB is the subset of pgxpool.Pool used by PgLedger.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PgLedger struct {
	db     DB
	logger *logging.Logger
}

func NewPgLedger(db DB, logger *logging.Logger) *PgLedger {
	if logger == nil {
		logger = logging.Default()
	}
	return &PgLedger{db: db, logger: logger}
}

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID,
		&a.SessionID,
		&a.PatientName,
		&a.PatientEmail,
		&a.DoctorID,
		&a.Day,
		&a.Slot,
		&a.BookingRef,
		&a.CreatedAt,
	)
	return a, err
}

// Append allocates the next per-session sequence number in the same statement as the insert.
// The primary key on (session_id, seq) rejects a concurrent duplicate.
func (r *PgLedger) Append(ctx context.Context, a Appointment) (Appointment, error) {
	if err := validate(a); err != nil {
		return Appointment{}, err
	}

	row := r.db.QueryRow(ctx, `
		INSERT INTO appointments (session_id, seq, patient_name, patient_email, doctor_id, day, slot, booking_ref, created_at)
		SELECT $1::text, COALESCE(MAX(seq), 0) + 1, $2::text, $3::text, $4::int, $5::text, $6::text, $7::text, now()
		FROM appointments
		WHERE session_id = $1::text
		RETURNING seq, session_id, patient_name, patient_email, doctor_id, day, slot, booking_ref, created_at
	`, a.SessionID, a.PatientName, a.PatientEmail, a.DoctorID, a.Day, a.Slot, a.BookingRef)

	created, err := scanAppointment(row)
	if err != nil {
		return Appointment{}, fmt.Errorf("insert appointment: %w", err)
	}

	r.recordConfirmed(ctx, created)
	return created, nil
}

func (r *PgLedger) ListFor(ctx context.Context, sessionID, email string) ([]Appointment, error) {
	rows, err := r.db.Query(ctx, `
		SELECT seq, session_id, patient_name, patient_email, doctor_id, day, slot, booking_ref, created_at
		FROM appointments
		WHERE session_id = $1
		  AND patient_email = $2
		ORDER BY seq
	`, sessionID, email)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	defer rows.Close()

	result := []Appointment{}
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan appointment: %w", err)
		}
		result = append(result, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	return result, nil
}

// recordConfirmed writes the audit event. The booking already exists, so failures are only logged.
func (r *PgLedger) recordConfirmed(ctx context.Context, a Appointment) {
	payload, _ := json.Marshal(map[string]any{
		"appointment_id": a.ID,
		"doctor_id":      a.DoctorID,
		"day":            a.Day,
		"slot":           a.Slot,
	})

	if err := r.InsertEvent(ctx, EventLog{
		EventType: EventAppointmentConfirmed,
		SessionID: a.SessionID,
		Payload:   payload,
	}); err != nil {
		r.logger.Warn("failed to write appointment event",
			slog.String("session_id", a.SessionID),
			slog.Int64("appointment_id", a.ID),
			slog.Any("error", err),
		)
	}
}

func (r *PgLedger) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO event_logs (event_type, session_id, payload, created_at)
		VALUES ($1, $2, $3, now())
	`, ev.EventType, ev.SessionID, ev.Payload)
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}
