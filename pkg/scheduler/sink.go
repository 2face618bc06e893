package scheduler

// Sink is the observer a playback drives. The scheduler invokes its methods
// one at a time with its lock held, so implementations must not call back
// into the scheduler.
type Sink[K comparable] interface {
	// Activate marks the correspondent of key as active. It returns false
	// when key has no correspondent; playback then skips the key without
	// waiting.
	Activate(key K) bool

	// Deactivate turns the active mark of key into a passive one.
	Deactivate(key K)

	// Clear removes every active and passive mark.
	Clear()
}

// SinkFuncs adapts plain callbacks to [Sink]. A nil OnActivate accepts every
// key. Nil OnDeactivate and OnClear do nothing.
type SinkFuncs[K comparable] struct {
	OnActivate   func(key K) bool
	OnDeactivate func(key K)
	OnClear      func()
}

// Activate implements [Sink].
func (sf SinkFuncs[K]) Activate(key K) bool {
	if sf.OnActivate == nil {
		return true
	}

	return sf.OnActivate(key)
}

// Deactivate implements [Sink].
func (sf SinkFuncs[K]) Deactivate(key K) {
	if sf.OnDeactivate != nil {
		sf.OnDeactivate(key)
	}
}

// Clear implements [Sink].
func (sf SinkFuncs[K]) Clear() {
	if sf.OnClear != nil {
		sf.OnClear()
	}
}
