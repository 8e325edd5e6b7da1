package directory

// Defaults returns the built-in VitalPoint roster used when no database directory is configured.
func Defaults() []Doctor {
	return []Doctor{
		{
			ID:             1,
			Name:           "Dr. Jane Doe",
			Specialty:      "Family Medicine",
			Qualifications: "MD, Board Certified in Family Practice",
			Experience:     "15 years",
			Availability: []Availability{
				{Day: "Monday", Slots: []string{"9:00 AM", "10:30 AM", "2:00 PM", "4:00 PM"}},
				{Day: "Wednesday", Slots: []string{"9:00 AM", "11:00 AM", "3:00 PM"}},
				{Day: "Friday", Slots: []string{"10:00 AM", "1:30 PM", "4:30 PM"}},
			},
			Location:      "Main Clinic - Downtown",
			ContactNumber: "(555) 123-4567",
		},
		{
			ID:             2,
			Name:           "Dr. John Smith",
			Specialty:      "Cardiology",
			Qualifications: "MD, FACC, Interventional Cardiology",
			Experience:     "20 years",
			Availability: []Availability{
				{Day: "Tuesday", Slots: []string{"8:00 AM", "11:00 AM", "1:30 PM"}},
				{Day: "Thursday", Slots: []string{"9:00 AM", "2:00 PM", "4:00 PM"}},
				{Day: "Saturday", Slots: []string{"10:00 AM", "12:00 PM"}},
			},
			Location:      "Heart Center - Westside",
			ContactNumber: "(555) 987-6543",
		},
		{
			ID:             3,
			Name:           "Dr. Mary Johnson",
			Specialty:      "Pediatrics",
			Qualifications: "MD, Board Certified Pediatrician",
			Experience:     "12 years",
			Availability: []Availability{
				{Day: "Monday", Slots: []string{"9:30 AM", "11:00 AM", "2:30 PM"}},
				{Day: "Tuesday", Slots: []string{"10:00 AM", "1:30 PM", "3:30 PM"}},
				{Day: "Thursday", Slots: []string{"9:00 AM", "2:00 PM", "4:30 PM"}},
			},
			Location:      "Children's Clinic - Eastside",
			ContactNumber: "(555) 456-7890",
		},
	}
}
