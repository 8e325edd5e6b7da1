package main

import (
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hackgods/vitalpoint-assistant/internal/directory"
)

func TestFakeDoctorsFormAValidDirectory(t *testing.T) {
	doctors := directory.Defaults()
	doctors = append(doctors, fakeDoctors(gofakeit.New(42), len(doctors)+1, 25)...)
	require.Len(t, doctors, 28)

	dir, err := directory.New(doctors)
	require.NoError(t, err)
	assert.Equal(t, 28, dir.Len())

	for _, d := range doctors[3:] {
		assert.GreaterOrEqual(t, len(d.Availability), 2)
		assert.LessOrEqual(t, len(d.Availability), 4)

		seen := map[string]bool{}
		for _, a := range d.Availability {
			assert.False(t, seen[a.Day], "day %s repeated for doctor %d", a.Day, d.ID)
			seen[a.Day] = true
			assert.NotEmpty(t, a.Slots)
		}
	}
}

func TestFakeDoctorsZero(t *testing.T) {
	assert.Empty(t, fakeDoctors(gofakeit.New(1), 4, 0))
}
