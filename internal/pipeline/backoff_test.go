package pipeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBackoffDelayDoubles(t *testing.T) {
	base := 500 * time.Millisecond
	max := 30 * time.Second

	assert.Equal(t, 500*time.Millisecond, BackoffDelay(1, base, max))
	assert.Equal(t, 1*time.Second, BackoffDelay(2, base, max))
	assert.Equal(t, 2*time.Second, BackoffDelay(3, base, max))
	assert.Equal(t, 4*time.Second, BackoffDelay(4, base, max))
}

func TestBackoffDelayCapped(t *testing.T) {
	base := 500 * time.Millisecond
	max := 3 * time.Second

	assert.Equal(t, max, BackoffDelay(4, base, max))
	assert.Equal(t, max, BackoffDelay(20, base, max))
}

func TestBackoffDelayClampsAttempt(t *testing.T) {
	base := time.Second
	max := time.Minute

	assert.Equal(t, base, BackoffDelay(0, base, max))
	assert.Equal(t, base, BackoffDelay(-3, base, max))
}
