package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestServiceClockOffset(t *testing.T) {
	base := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)

	c := New(3)
	c.nowFn = func() time.Time { return base }

	assert.Equal(t, base.Add(3*time.Hour), c.Now())
	assert.Equal(t, base.Add(3*time.Hour).Unix(), c.NowUnix())
}

func TestFrozenClock(t *testing.T) {
	at := time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC)
	c := NewFrozen(at)

	assert.Equal(t, at, c.Now())
	assert.Equal(t, at, c.Now(), "frozen clock should not advance")
}
