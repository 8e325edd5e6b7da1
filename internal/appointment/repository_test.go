package appointment

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sample(sessionID, email string) Appointment {
	return Appointment{
		SessionID:    sessionID,
		PatientName:  "Alice Tan",
		PatientEmail: email,
		DoctorID:     1,
		Day:          "Monday",
		Slot:         "9:00 AM",
		BookingRef:   "b-1",
	}
}

func TestMemoryLedgerAssignsPerSessionIDs(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	a1, err := l.Append(ctx, sample("s1", "alice@example.com"))
	require.NoError(t, err)
	a2, err := l.Append(ctx, sample("s1", "alice@example.com"))
	require.NoError(t, err)
	b1, err := l.Append(ctx, sample("s2", "bob@example.com"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), a1.ID)
	assert.Equal(t, int64(2), a2.ID)
	assert.Equal(t, int64(1), b1.ID)
	assert.False(t, a1.CreatedAt.IsZero())
}

func TestMemoryLedgerListForFiltersByEmail(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	_, err := l.Append(ctx, sample("s1", "alice@example.com"))
	require.NoError(t, err)
	_, err = l.Append(ctx, sample("s1", "other@example.com"))
	require.NoError(t, err)
	third := sample("s1", "alice@example.com")
	third.Day = "Friday"
	_, err = l.Append(ctx, third)
	require.NoError(t, err)

	got, err := l.ListFor(ctx, "s1", "alice@example.com")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, int64(1), got[0].ID)
	assert.Equal(t, int64(3), got[1].ID)
	assert.Equal(t, "Friday", got[1].Day)

	none, err := l.ListFor(ctx, "s2", "alice@example.com")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)
}

func TestMemoryLedgerRejectsIncomplete(t *testing.T) {
	l := NewMemoryLedger()
	tests := []struct {
		name   string
		mutate func(*Appointment)
	}{
		{"no session", func(a *Appointment) { a.SessionID = "" }},
		{"no email", func(a *Appointment) { a.PatientEmail = "" }},
		{"no doctor", func(a *Appointment) { a.DoctorID = 0 }},
		{"no slot", func(a *Appointment) { a.Slot = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := sample("s1", "alice@example.com")
			tt.mutate(&a)
			_, err := l.Append(context.Background(), a)
			assert.ErrorIs(t, err, ErrInvalidAppointment)
		})
	}
}

func TestMemoryLedgerConcurrentAppendsAreUnique(t *testing.T) {
	ctx := context.Background()
	l := NewMemoryLedger()

	var wg sync.WaitGroup
	ids := make(chan int64, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := l.Append(ctx, sample("s1", "alice@example.com"))
			assert.NoError(t, err)
			ids <- a.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[int64]bool{}
	for id := range ids {
		assert.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
	assert.Len(t, seen, 50)
}
