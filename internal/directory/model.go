package directory

import "strings"

// Availability is one weekday and its ordered slot labels. Slot labels are opaque.
type Availability struct {
	Day   string   `json:"day"`
	Slots []string `json:"slots"`
}

// Doctor is immutable reference data loaded once at startup.
type Doctor struct {
	ID             int            `json:"id"`
	Name           string         `json:"name"`
	Specialty      string         `json:"specialty"`
	Qualifications string         `json:"qualifications"`
	Experience     string         `json:"experience"`
	Location       string         `json:"location"`
	ContactNumber  string         `json:"contactNumber"`
	Availability   []Availability `json:"availability"`
}

// Days returns the availability days in order.
func (d Doctor) Days() []string {
	days := make([]string, 0, len(d.Availability))
	for _, a := range d.Availability {
		days = append(days, a.Day)
	}
	return days
}

// DayAvailability looks up the entry for day, ignoring case.
func (d Doctor) DayAvailability(day string) (Availability, bool) {
	for _, a := range d.Availability {
		if strings.EqualFold(a.Day, day) {
			return a, true
		}
	}
	return Availability{}, false
}

func (d Doctor) clone() Doctor {
	out := d
	out.Availability = make([]Availability, len(d.Availability))
	for i, a := range d.Availability {
		out.Availability[i] = Availability{
			Day:   a.Day,
			Slots: append([]string(nil), a.Slots...),
		}
	}
	return out
}
