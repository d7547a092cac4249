package clock

import "time"

// DefaultOffsetHours is the fixed presentation timezone offset for the
// competition schedule. Not derived from the host locale.
const DefaultOffsetHours = 3

// ServiceClock produces the service time every scheduling and gating
// decision runs on: host wall clock shifted by a fixed offset.
type ServiceClock struct {
	offset time.Duration
	nowFn  func() time.Time
}

func New(offsetHours int) *ServiceClock {
	return &ServiceClock{
		offset: time.Duration(offsetHours) * time.Hour,
		nowFn:  time.Now,
	}
}

// NewFrozen returns a clock pinned to a fixed instant, for tests.
func NewFrozen(at time.Time) *ServiceClock {
	return &ServiceClock{nowFn: func() time.Time { return at }}
}

func (c *ServiceClock) Now() time.Time {
	return c.nowFn().Add(c.offset)
}

func (c *ServiceClock) NowUnix() int64 {
	return c.Now().Unix()
}
