package services

import "time"

// Clock returns the current instant. Tests replace it.
type Clock func() time.Time

func utcNow() time.Time { return time.Now().UTC() }

func (c Clock) now() time.Time {
	if c == nil {
		return utcNow()
	}
	return c().UTC()
}
