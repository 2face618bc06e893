// Package scheduler plays a key sequence back against a [Sink] at a fixed
// cadence, one key at a time, with cancellation and preemption.
package scheduler

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/cockroachdb/crlib/crtime"
	"github.com/cockroachdb/errors"

	"github.com/Sumatoshi-tech/treewalk/pkg/observability"
)

// DefaultInterval is how long each key stays active.
const DefaultInterval = 2 * time.Second

var (
	// ErrInvalidInterval is returned by Play for a non-positive interval.
	ErrInvalidInterval = errors.New("playback interval must be positive")

	// ErrNilSink is returned by Play without a sink.
	ErrNilSink = errors.New("playback sink is nil")
)

// State is the scheduler's coarse state.
type State int

const (
	// Idle means no session is playing.
	Idle State = iota
	// Playing means a session holds the sink.
	Playing
)

// String returns the lower-case state name.
func (s State) String() string {
	if s == Playing {
		return "playing"
	}

	return "idle"
}

// Options configures a Scheduler. The zero value uses the wall clock,
// slog.Default, and no metrics.
type Options struct {
	Clock   Clock
	Logger  *slog.Logger
	Metrics *observability.PlaybackMetrics
}

// Scheduler owns at most one playback at a time. It is safe for concurrent
// use.
type Scheduler[K comparable] struct {
	clock   Clock
	logger  *slog.Logger
	metrics *observability.PlaybackMetrics

	mu sync.Mutex
	// gen identifies the live playback. Timers carry the generation they
	// were armed for and do nothing once it moves on.
	gen    uint64
	active *playback[K]
	last   []K
	// marked is the sink a completed playback left its passive marks on.
	// The next Play or Reset clears it.
	marked Sink[K]
}

type playback[K comparable] struct {
	gen      uint64
	seq      []K
	sink     Sink[K]
	interval time.Duration
	cursor   int
	timer    Timer
	started  crtime.Mono
	session  *Session
}

// New creates an idle scheduler.
func New[K comparable](opts Options) *Scheduler[K] {
	sched := &Scheduler[K]{
		clock:   opts.Clock,
		logger:  opts.Logger,
		metrics: opts.Metrics,
	}

	if sched.clock == nil {
		sched.clock = RealClock{}
	}

	if sched.logger == nil {
		sched.logger = slog.Default()
	}

	return sched
}

// Play starts playing seq on sink, one key every interval. A session that
// is still playing is canceled first and its marks cleared, and the marks a
// completed session left behind are cleared too. The first key is activated
// before Play returns.
func (s *Scheduler[K]) Play(seq []K, sink Sink[K], interval time.Duration) (*Session, error) {
	if interval <= 0 {
		return nil, errors.Wrapf(ErrInvalidInterval, "got %s", interval)
	}

	if sink == nil {
		return nil, ErrNilSink
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		s.logger.Debug("playback preempted", "gen", s.active.gen, "cursor", s.active.cursor)
		s.cancelLocked()
	}

	s.clearMarkedLocked()

	s.gen++
	pb := &playback[K]{
		gen:      s.gen,
		seq:      slices.Clone(seq),
		sink:     sink,
		interval: interval,
		started:  crtime.NowMono(),
		session:  newSession(),
	}

	s.active = pb
	// Non-nil even for an empty seq, so Last can tell it from Reset.
	s.last = append(make([]K, 0, len(seq)), seq...)

	if s.metrics != nil {
		s.metrics.SessionStarted(context.Background())
	}

	s.logger.Debug("playback started", "gen", pb.gen, "keys", len(pb.seq), "interval", interval)
	s.stepLocked(pb)

	return pb.session, nil
}

// Cancel stops the playing session and clears every mark on its sink.
// It does nothing when idle.
func (s *Scheduler[K]) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
}

// Reset cancels like Cancel, clears the marks of a completed session, and
// forgets the last sequence.
func (s *Scheduler[K]) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cancelLocked()
	s.clearMarkedLocked()
	s.last = nil
}

// State reports whether a session is playing.
func (s *Scheduler[K]) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active != nil {
		return Playing
	}

	return Idle
}

// Last returns a copy of the sequence most recently passed to Play, or nil
// before any Play and after Reset. An empty sequence yields an empty,
// non-nil slice.
func (s *Scheduler[K]) Last() []K {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.last)
}

// Cursor returns the index of the active key, or -1 when idle.
func (s *Scheduler[K]) Cursor() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.active == nil {
		return -1
	}

	return s.active.cursor
}

// stepLocked activates keys from the cursor on until one is accepted by the
// sink and a timer is armed, or the sequence runs out.
func (s *Scheduler[K]) stepLocked(pb *playback[K]) {
	ctx := context.Background()

	for pb.cursor < len(pb.seq) {
		key := pb.seq[pb.cursor]

		if pb.sink.Activate(key) {
			if s.metrics != nil {
				s.metrics.KeyActivated(ctx)
			}

			gen := pb.gen
			pb.timer = s.clock.AfterFunc(pb.interval, func() { s.fire(gen) })

			return
		}

		if s.metrics != nil {
			s.metrics.KeySkipped(ctx)
		}

		s.logger.Debug("playback skipped key", "gen", pb.gen, "cursor", pb.cursor, "key", key)
		pb.cursor++
	}

	s.logger.Debug("playback completed", "gen", pb.gen, "keys", len(pb.seq))
	s.finishLocked(pb, OutcomeCompleted)
}

func (s *Scheduler[K]) fire(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pb := s.active
	if pb == nil || pb.gen != gen {
		return
	}

	pb.timer = nil
	pb.sink.Deactivate(pb.seq[pb.cursor])
	pb.cursor++

	s.stepLocked(pb)
}

func (s *Scheduler[K]) cancelLocked() {
	pb := s.active
	if pb == nil {
		return
	}

	if pb.timer != nil {
		pb.timer.Stop()
		pb.timer = nil
	}

	pb.sink.Clear()

	s.logger.Debug("playback canceled", "gen", pb.gen, "cursor", pb.cursor)
	s.finishLocked(pb, OutcomeCanceled)
}

func (s *Scheduler[K]) clearMarkedLocked() {
	if s.marked == nil {
		return
	}

	s.marked.Clear()
	s.marked = nil
}

func (s *Scheduler[K]) finishLocked(pb *playback[K], outcome Outcome) {
	s.active = nil

	if outcome == OutcomeCompleted {
		s.marked = pb.sink
	}

	if s.metrics != nil {
		s.metrics.SessionEnded(context.Background(), outcome.String(), pb.started.Elapsed())
	}

	pb.session.finish(outcome)
}
