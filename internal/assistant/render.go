package assistant

import (
	"fmt"
	"strings"

	"github.com/hackgods/vitalpoint-assistant/internal/appointment"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
)

const (
	replyEmailPrompt     = "I'll need your email address to complete your profile."
	replyInvalidEmail    = "That doesn't look like a valid email address. Please enter a valid email."
	replyInvalidDay      = "Please select a valid day from the options provided."
	replyInvalidSlot     = "Please select a valid time slot from the options provided."
	replyNoAppointments  = "You have no scheduled appointments."
	replyCancelled       = "Okay, I've cancelled that booking. Let me know if you'd like to schedule an appointment later."
	replyGenericFailure  = "Something went wrong. Please try again."
	replyProviderTimeout = "Sorry, that's taking longer than expected. Please try again in a moment."
	replyProviderError   = "Sorry, I'm having trouble responding right now. Please try again."
)

func replyGreeting(organization string) string {
	return fmt.Sprintf("Hello! Welcome to %s. I'll need your full name to get started.", organization)
}

func replyNameAccepted(name string) string {
	return fmt.Sprintf("Thank you, %s. Now, could you please provide your email address?", name)
}

func replyProfileCaptured(organization, name, email string) string {
	return fmt.Sprintf("Great! I've captured your information:\nName: %s\nEmail: %s\n\n", name, email) +
		fmt.Sprintf("Welcome to %s! Would you like to:\n", organization) +
		"1. View available doctors\n" +
		"2. Schedule an appointment\n" +
		"3. View your appointments"
}

func doctorMenu(doctors []directory.Doctor) string {
	lines := make([]string, 0, len(doctors))
	for _, d := range doctors {
		lines = append(lines, fmt.Sprintf("- %s (%s)", d.Name, d.Specialty))
	}
	return strings.Join(lines, "\n")
}

func replyStartBooking(doctors []directory.Doctor) string {
	return "Let's schedule your appointment. Please choose a doctor by name or specialty:\n\n" + doctorMenu(doctors)
}

func replyInvalidDoctor(doctors []directory.Doctor) string {
	return "Please choose a valid doctor by name or specialty:\n\n" + doctorMenu(doctors)
}

func replyDoctorSelected(d directory.Doctor) string {
	return fmt.Sprintf("You've selected %s. Please choose a day from their availability:\n%s",
		d.Name, strings.Join(d.Days(), ", "))
}

func replySlots(a directory.Availability) string {
	return fmt.Sprintf("Available time slots for %s:\n%s\n\nPlease select a time slot.",
		a.Day, strings.Join(a.Slots, ", "))
}

func replyConfirmed(a appointment.Appointment, d directory.Doctor) string {
	return "Appointment Confirmed!\n\n" +
		"Details:\n" +
		fmt.Sprintf("Appointment #%d\n", a.ID) +
		fmt.Sprintf("Patient: %s\n", a.PatientName) +
		fmt.Sprintf("Doctor: %s\n", d.Name) +
		fmt.Sprintf("Specialty: %s\n", d.Specialty) +
		fmt.Sprintf("Date: %s\n", a.Day) +
		fmt.Sprintf("Time: %s\n", a.Slot) +
		fmt.Sprintf("Location: %s\n\n", d.Location) +
		fmt.Sprintf("A confirmation will be sent to %s", a.PatientEmail)
}

func replyDoctorListing(doctors []directory.Doctor) string {
	blocks := make([]string, 0, len(doctors))
	for _, d := range doctors {
		blocks = append(blocks,
			fmt.Sprintf("%s - %s\n", d.Name, d.Specialty)+
				fmt.Sprintf("Qualifications: %s\n", d.Qualifications)+
				fmt.Sprintf("Experience: %s\n", d.Experience)+
				fmt.Sprintf("Location: %s\n", d.Location)+
				fmt.Sprintf("Available Days: %s\n", strings.Join(d.Days(), ", "))+
				fmt.Sprintf("Contact: %s", d.ContactNumber))
	}
	return strings.Join(blocks, "\n\n")
}

func replyAppointments(appts []appointment.Appointment, dir *directory.Directory) string {
	if len(appts) == 0 {
		return replyNoAppointments
	}
	blocks := make([]string, 0, len(appts))
	for _, a := range appts {
		blocks = append(blocks,
			fmt.Sprintf("Appointment #%d\n", a.ID)+
				fmt.Sprintf("Doctor: %s\n", describeDoctor(dir, a.DoctorID))+
				fmt.Sprintf("Date: %s\n", a.Day)+
				fmt.Sprintf("Time: %s\n", a.Slot)+
				fmt.Sprintf("Location: %s", doctorLocation(dir, a.DoctorID)))
	}
	return "Your Scheduled Appointments:\n" + strings.Join(blocks, "\n\n")
}

// bookedSummaries renders one line per appointment for the conversation seed.
func bookedSummaries(appts []appointment.Appointment, dir *directory.Directory) []string {
	out := make([]string, 0, len(appts))
	for _, a := range appts {
		out = append(out, fmt.Sprintf("Appointment #%d with %s on %s at %s",
			a.ID, describeDoctor(dir, a.DoctorID), a.Day, a.Slot))
	}
	return out
}

func describeDoctor(dir *directory.Directory, id int) string {
	d, ok := dir.ByID(id)
	if !ok {
		return fmt.Sprintf("Doctor #%d", id)
	}
	return fmt.Sprintf("%s (%s)", d.Name, d.Specialty)
}

func doctorLocation(dir *directory.Directory, id int) string {
	d, ok := dir.ByID(id)
	if !ok {
		return "unknown"
	}
	return d.Location
}
