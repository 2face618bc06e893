package scheduler

import (
	"context"
	"sync"

	"github.com/cockroachdb/errors"
)

// Outcome is how a session ended.
type Outcome int

const (
	// OutcomePending means the session is still playing.
	OutcomePending Outcome = iota
	// OutcomeCompleted means every key was played.
	OutcomeCompleted
	// OutcomeCanceled means Cancel, Reset or a newer Play stopped the session.
	OutcomeCanceled
)

// String returns the metric label for the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomePending:
		return "pending"
	case OutcomeCompleted:
		return "completed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// Session is the caller's handle on one playback.
type Session struct {
	done chan struct{}

	mu      sync.Mutex
	outcome Outcome
}

func newSession() *Session {
	return &Session{done: make(chan struct{})}
}

// Done is closed when the session completes or is canceled.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Outcome reports how the session ended, or OutcomePending while it plays.
func (s *Session) Outcome() Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.outcome
}

// Wait blocks until the session ends or ctx is done.
func (s *Session) Wait(ctx context.Context) (Outcome, error) {
	select {
	case <-s.done:
		return s.Outcome(), nil
	case <-ctx.Done():
		return OutcomePending, errors.Wrap(ctx.Err(), "wait for playback")
	}
}

func (s *Session) finish(outcome Outcome) {
	s.mu.Lock()
	s.outcome = outcome
	s.mu.Unlock()

	close(s.done)
}
