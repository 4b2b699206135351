package circuitbreaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreakerTripsAtThreshold(t *testing.T) {
	b := New(Options{FailureThreshold: 3, Cooldown: time.Minute})

	b.RecordFailure("provider 502")
	b.RecordFailure("provider 502")
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())

	b.RecordFailure("provider 502")
	assert.Equal(t, StateOpen, b.State())
	assert.False(t, b.Allow())
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New(Options{FailureThreshold: 3, Cooldown: time.Minute})

	b.RecordFailure("timeout")
	b.RecordFailure("timeout")
	b.RecordSuccess()
	b.RecordFailure("timeout")
	b.RecordFailure("timeout")
	assert.Equal(t, StateClosed, b.State(), "non-consecutive failures must not trip")
}

func TestBreakerHalfOpenAfterCooldown(t *testing.T) {
	b := New(Options{FailureThreshold: 1, Cooldown: 10 * time.Millisecond})

	b.RecordFailure("provider down")
	require.Equal(t, StateOpen, b.State())
	require.False(t, b.Allow())

	time.Sleep(25 * time.Millisecond)
	assert.True(t, b.Allow(), "cooldown elapsed, a probe must pass")
	assert.Equal(t, StateHalfOpen, b.State())
}

func TestBreakerClosesAfterSuccessfulProbes(t *testing.T) {
	b := New(Options{FailureThreshold: 1, Cooldown: 10 * time.Millisecond, SuccessThreshold: 2})

	b.RecordFailure("provider down")
	time.Sleep(25 * time.Millisecond)
	require.True(t, b.Allow())

	b.RecordSuccess()
	assert.Equal(t, StateHalfOpen, b.State(), "one probe is not enough")
	b.RecordSuccess()
	assert.Equal(t, StateClosed, b.State())
}

func TestBreakerReopensOnHalfOpenFailure(t *testing.T) {
	b := New(Options{FailureThreshold: 3, Cooldown: 10 * time.Millisecond})

	for i := 0; i < 3; i++ {
		b.RecordFailure("provider 429")
	}
	time.Sleep(25 * time.Millisecond)
	require.True(t, b.Allow())
	require.Equal(t, StateHalfOpen, b.State())

	b.RecordFailure("still failing")
	assert.Equal(t, StateOpen, b.State(), "one failed probe reopens immediately")
	assert.False(t, b.Allow())
}

func TestBreakerOnTripCallback(t *testing.T) {
	tripped := make(chan string, 1)
	b := New(Options{FailureThreshold: 1, Cooldown: time.Minute, OnTrip: func(reason string) {
		tripped <- reason
	}})

	b.RecordFailure("gateway unreachable")

	select {
	case reason := <-tripped:
		assert.Equal(t, "gateway unreachable", reason)
	case <-time.After(time.Second):
		t.Fatal("OnTrip callback was not invoked")
	}
}

func TestBreakerReset(t *testing.T) {
	b := New(Options{FailureThreshold: 1, Cooldown: time.Hour})

	b.RecordFailure("provider down")
	require.False(t, b.Allow())

	b.Reset()
	assert.Equal(t, StateClosed, b.State())
	assert.True(t, b.Allow())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "closed", StateClosed.String())
	assert.Equal(t, "open", StateOpen.String())
	assert.Equal(t, "half-open", StateHalfOpen.String())
}
