package traversal

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/Sumatoshi-tech/treewalk/pkg/bst"
	"github.com/Sumatoshi-tech/treewalk/pkg/scheduler"
)

// Explorer lets a user pick one traversal of a fixed tree at a time and
// watch it play on a sink. Picking again preempts the running playback.
type Explorer[K cmp.Ordered] struct {
	tree     *bst.Tree[K]
	sched    *scheduler.Scheduler[K]
	interval time.Duration

	mu       sync.Mutex
	selected Order
	has      bool
	results  []K
}

// NewExplorer returns an explorer with nothing selected. The tree must not
// be mutated while the explorer is in use.
func NewExplorer[K cmp.Ordered](tree *bst.Tree[K], sched *scheduler.Scheduler[K], interval time.Duration) *Explorer[K] {
	return &Explorer[K]{tree: tree, sched: sched, interval: interval}
}

// Select computes the traversal for order and starts playing it on sink.
// Marks from the earlier selection are cleared first, whether it was still
// playing or had finished.
func (e *Explorer[K]) Select(order Order, sink scheduler.Sink[K]) (*scheduler.Session, error) {
	results, err := Run(e.tree, order)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	session, err := e.sched.Play(results, sink, e.interval)
	if err != nil {
		return nil, err
	}

	e.selected = order
	e.has = true
	e.results = results

	return session, nil
}

// Reset stops playback, clears every mark the selection left, and forgets
// it.
func (e *Explorer[K]) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sched.Reset()

	e.selected = 0
	e.has = false
	e.results = nil
}

// Selected returns the current order, if any.
func (e *Explorer[K]) Selected() (Order, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.selected, e.has
}

// Results returns the key sequence of the current selection.
func (e *Explorer[K]) Results() []K {
	e.mu.Lock()
	defer e.mu.Unlock()

	return slices.Clone(e.results)
}

// Processing reports whether a playback is running.
func (e *Explorer[K]) Processing() bool {
	return e.sched.State() == scheduler.Playing
}

// Current returns the catalog entry for the current selection.
func (e *Explorer[K]) Current() (Algorithm, bool) {
	order, ok := e.Selected()
	if !ok {
		return Algorithm{}, false
	}

	alg, err := Lookup(order)
	if err != nil {
		return Algorithm{}, false
	}

	return alg, true
}
