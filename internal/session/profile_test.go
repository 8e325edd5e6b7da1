package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestStepActive(t *testing.T) {
	assert.False(t, StepNone.Active())
	assert.False(t, Step("").Active())
	assert.True(t, StepSelectDoctor.Active())
	assert.True(t, StepSelectDay.Active())
	assert.True(t, StepSelectTime.Active())
	assert.True(t, Step("SOMETHING_ELSE").Active())
}

func TestGateProgression(t *testing.T) {
	p := New("s1", time.Now())
	assert.Equal(t, GateAwaitName, p.Gate())

	p.Name = "Alice Smith"
	assert.Equal(t, GateAwaitEmail, p.Gate())

	p.Email = "alice@x.com"
	assert.Equal(t, GateReady, p.Gate())
}

func TestCloneDoesNotSharePending(t *testing.T) {
	p := New("s1", time.Now())
	p.Pending = &Pending{DoctorID: 1, Day: "Monday"}

	c := p.Clone()
	c.Pending.Day = "Friday"

	assert.Equal(t, "Monday", p.Pending.Day)
}

func TestResetBooking(t *testing.T) {
	p := New("s1", time.Now())
	p.Step = StepSelectTime
	p.Pending = &Pending{DoctorID: 2, Day: "Tuesday"}

	p.ResetBooking()

	assert.Equal(t, StepNone, p.Step)
	assert.Nil(t, p.Pending)
}
