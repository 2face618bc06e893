// Package schedulertest provides a manually advanced clock for driving
// playbacks in tests.
package schedulertest

import (
	"slices"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/treewalk/pkg/scheduler"
)

// Clock is a [scheduler.Clock] whose time only moves on Advance.
type Clock struct {
	mu      sync.Mutex
	now     time.Duration
	nextID  uint64
	pending []*timer
}

var _ scheduler.Clock = (*Clock)(nil)

type timer struct {
	clock    *Clock
	id       uint64
	deadline time.Duration
	fn       func()
}

// NewClock returns a clock at offset zero with nothing scheduled.
func NewClock() *Clock {
	return &Clock{}
}

// AfterFunc implements [scheduler.Clock].
func (c *Clock) AfterFunc(d time.Duration, f func()) scheduler.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	tm := &timer{clock: c, id: c.nextID, deadline: c.now + d, fn: f}
	c.pending = append(c.pending, tm)

	return tm
}

// Stop implements [scheduler.Timer].
func (tm *timer) Stop() bool {
	c := tm.clock

	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.Index(c.pending, tm)
	if idx < 0 {
		return false
	}

	c.pending = slices.Delete(c.pending, idx, idx+1)

	return true
}

// Now returns the time elapsed since the clock was created.
func (c *Clock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// Pending returns the number of armed timers.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.pending)
}

// Advance moves time forward by d, firing due timers in deadline order on
// the calling goroutine. Timers armed by a callback fire within the same
// call if they fall due before the new time.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now + d
	c.mu.Unlock()

	for {
		c.mu.Lock()

		next := c.popDueLocked(target)
		if next == nil {
			c.now = target
			c.mu.Unlock()

			return
		}

		c.now = next.deadline
		c.mu.Unlock()

		next.fn()
	}
}

func (c *Clock) popDueLocked(target time.Duration) *timer {
	best := -1

	for idx, tm := range c.pending {
		if tm.deadline > target {
			continue
		}

		if best < 0 || tm.deadline < c.pending[best].deadline ||
			(tm.deadline == c.pending[best].deadline && tm.id < c.pending[best].id) {
			best = idx
		}
	}

	if best < 0 {
		return nil
	}

	tm := c.pending[best]
	c.pending = slices.Delete(c.pending, best, best+1)

	return tm
}
