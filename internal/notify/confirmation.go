package notify

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

// Confirmation describes a booked appointment for the patient email.
type Confirmation struct {
	AppointmentID int64
	PatientName   string
	PatientEmail  string
	DoctorName    string
	Specialty     string
	Day           string
	Slot          string
	Location      string
}

// ConfirmationMessage renders the booking email.
func ConfirmationMessage(organization string, c Confirmation) EmailMessage {
	subject := fmt.Sprintf("%s appointment #%d confirmed", organization, c.AppointmentID)

	lines := []string{
		fmt.Sprintf("Hello %s,", c.PatientName),
		"",
		fmt.Sprintf("Your appointment #%d is confirmed.", c.AppointmentID),
		"",
		fmt.Sprintf("Doctor: %s (%s)", c.DoctorName, c.Specialty),
		fmt.Sprintf("Date: %s", c.Day),
		fmt.Sprintf("Time: %s", c.Slot),
		fmt.Sprintf("Location: %s", c.Location),
		"",
		fmt.Sprintf("Thank you for choosing %s.", organization),
	}
	body := strings.Join(lines, "\n")

	var b strings.Builder
	b.WriteString("<p>Hello " + html.EscapeString(c.PatientName) + ",</p>")
	fmt.Fprintf(&b, "<p>Your appointment <strong>#%d</strong> is confirmed.</p><ul>", c.AppointmentID)
	fmt.Fprintf(&b, "<li>Doctor: %s (%s)</li>", html.EscapeString(c.DoctorName), html.EscapeString(c.Specialty))
	fmt.Fprintf(&b, "<li>Date: %s</li>", html.EscapeString(c.Day))
	fmt.Fprintf(&b, "<li>Time: %s</li>", html.EscapeString(c.Slot))
	fmt.Fprintf(&b, "<li>Location: %s</li></ul>", html.EscapeString(c.Location))
	fmt.Fprintf(&b, "<p>Thank you for choosing %s.</p>", html.EscapeString(organization))

	return EmailMessage{
		To:      c.PatientEmail,
		ToName:  c.PatientName,
		Subject: subject,
		Body:    body,
		HTML:    b.String(),
	}
}

// Service sends booking notifications. A nil sender disables delivery.
type Service struct {
	email        EmailSender
	organization string
	logger       *logging.Logger
}

func NewService(email EmailSender, organization string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if organization == "" {
		organization = "VitalPoint"
	}
	return &Service{email: email, organization: organization, logger: logger}
}

// NotifyBookingConfirmed emails the patient. Errors are returned for the caller to log;
// the booking itself is never rolled back.
func (s *Service) NotifyBookingConfirmed(ctx context.Context, c Confirmation) error {
	if s == nil || s.email == nil {
		return nil
	}
	if c.PatientEmail == "" {
		return fmt.Errorf("notify: confirmation for appointment %d has no recipient", c.AppointmentID)
	}

	if err := s.email.Send(ctx, ConfirmationMessage(s.organization, c)); err != nil {
		return fmt.Errorf("notify: booking confirmation: %w", err)
	}
	return nil
}
