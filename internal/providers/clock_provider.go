package providers

import "time"

// Clock is the time source for scheduling decisions.
type Clock func() time.Time

func NewClock() Clock {
	return time.Now
}
