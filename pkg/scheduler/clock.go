package scheduler

import "time"

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from firing. It returns false if the
	// callback already fired or the timer was already stopped.
	Stop() bool
}

// Clock schedules one-shot callbacks. Callbacks may run on any goroutine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// RealClock is the wall clock backed by [time.AfterFunc].
type RealClock struct{}

// AfterFunc implements [Clock].
func (RealClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
