package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/hackgods/vitalpoint-assistant/internal/db"
	"github.com/hackgods/vitalpoint-assistant/internal/directory"
	"github.com/hackgods/vitalpoint-assistant/pkg/logging"
)

var specialties = []string{
	"Dermatology",
	"Cardiology",
	"General Practice",
	"Orthopedics",
	"Endocrinology",
	"Neurology",
	"Pediatrics",
	"Psychiatry",
	"Ophthalmology",
	"ENT",
}

var weekdays = []string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday"}

var slotLabels = []string{
	"8:00 AM", "8:30 AM", "9:00 AM", "9:30 AM", "10:00 AM", "10:30 AM", "11:00 AM",
	"1:00 PM", "1:30 PM", "2:00 PM", "2:30 PM", "3:00 PM", "3:30 PM", "4:00 PM", "4:30 PM",
}

func main() {
	logger := logging.New(os.Getenv("LOG_LEVEL"))
	logger.Info("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		logger.Error("POSTGRES_DSN is required")
		os.Exit(1)
	}

	fakeCount := 0
	if v := os.Getenv("SEED_FAKE_DOCTORS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			logger.Error("invalid SEED_FAKE_DOCTORS", "value", v)
			os.Exit(1)
		}
		fakeCount = n
	}

	if err := db.MigrateUp(dsn); err != nil {
		logger.Error("migrate", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		logger.Error("connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	doctors := directory.Defaults()
	doctors = append(doctors, fakeDoctors(gofakeit.New(0), len(doctors)+1, fakeCount)...)

	// validate before writing anything
	if _, err := directory.New(doctors); err != nil {
		logger.Error("invalid directory", "error", err)
		os.Exit(1)
	}

	if err := directory.Save(ctx, pool, doctors); err != nil {
		logger.Error("save doctors", "error", err)
		os.Exit(1)
	}

	logger.Info("seed complete", "doctors", len(doctors), "fake", fakeCount)
}

// fakeDoctors generates count doctors with ids starting at firstID. Each works two to four
// distinct weekdays with two to four ordered slots per day.
func fakeDoctors(faker *gofakeit.Faker, firstID, count int) []directory.Doctor {
	out := make([]directory.Doctor, 0, count)
	for i := 0; i < count; i++ {
		specialty := specialties[faker.Number(0, len(specialties)-1)]
		out = append(out, directory.Doctor{
			ID:             firstID + i,
			Name:           "Dr. " + faker.FirstName() + " " + faker.LastName(),
			Specialty:      specialty,
			Qualifications: fmt.Sprintf("MD, Board Certified in %s", specialty),
			Experience:     fmt.Sprintf("%d years", faker.Number(2, 35)),
			Location:       faker.City() + " Clinic",
			ContactNumber:  faker.Phone(),
			Availability:   fakeAvailability(faker),
		})
	}
	return out
}

func fakeAvailability(faker *gofakeit.Faker) []directory.Availability {
	dayCount := faker.Number(2, 4)
	start := faker.Number(0, len(weekdays)-dayCount)

	out := make([]directory.Availability, 0, dayCount)
	for _, day := range weekdays[start : start+dayCount] {
		slotCount := faker.Number(2, 4)
		first := faker.Number(0, len(slotLabels)-slotCount)
		slots := append([]string(nil), slotLabels[first:first+slotCount]...)
		out = append(out, directory.Availability{Day: day, Slots: slots})
	}
	return out
}
