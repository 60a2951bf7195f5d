package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginLimiter_BlocksAfterMaxFailures(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(3, 5*time.Minute)
	l.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		ok, _ := l.Allow("1.2.3.4")
		require.True(t, ok)
		l.RecordFailure("1.2.3.4")
	}

	ok, retryAfter := l.Allow("1.2.3.4")
	assert.False(t, ok)
	assert.Equal(t, 5*time.Minute, retryAfter)

	// Other keys are unaffected.
	ok, _ = l.Allow("5.6.7.8")
	assert.True(t, ok)
}

func TestLoginLimiter_WindowSlides(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(2, 5*time.Minute)
	l.now = func() time.Time { return current }

	l.RecordFailure("k")
	current = current.Add(4 * time.Minute)
	l.RecordFailure("k")

	ok, retryAfter := l.Allow("k")
	require.False(t, ok)
	// The oldest attempt ages out one minute from now.
	assert.Equal(t, time.Minute, retryAfter)

	current = current.Add(time.Minute + time.Second)
	ok, _ = l.Allow("k")
	assert.True(t, ok)
}

func TestLoginLimiter_ResetClearsHistory(t *testing.T) {
	current := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	l := NewLoginLimiter(1, 5*time.Minute)
	l.now = func() time.Time { return current }

	l.RecordFailure("k")
	ok, _ := l.Allow("k")
	require.False(t, ok)

	l.Reset("k")
	ok, _ = l.Allow("k")
	assert.True(t, ok)
}
