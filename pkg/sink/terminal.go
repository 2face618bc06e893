// Package sink renders playback marks for humans.
package sink

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"

	"github.com/Sumatoshi-tech/treewalk/pkg/scheduler"
)

// Mark is the highlight state of one displayed key.
type Mark int

const (
	// MarkNone is an untouched key.
	MarkNone Mark = iota
	// MarkActive is the key currently being visited.
	MarkActive
	// MarkPassive is a key that was visited earlier in the playback.
	MarkPassive
)

// String returns the mark name.
func (m Mark) String() string {
	switch m {
	case MarkActive:
		return "active"
	case MarkPassive:
		return "passive"
	default:
		return "none"
	}
}

// Terminal prints one line per transition showing every displayed key with
// its mark. Active keys are bracketed, passive keys are parenthesized and
// dimmed.
type Terminal struct {
	out     io.Writer
	active  *color.Color
	passive *color.Color

	mu    sync.Mutex
	keys  []int
	index map[int]int
	marks []Mark
	step  int
	err   error
}

var _ scheduler.Sink[int] = (*Terminal)(nil)

// NewTerminal displays keys in the given order. Duplicate keys are shown
// once. When colorize is false the output is plain text.
func NewTerminal(out io.Writer, keys []int, colorize bool) *Terminal {
	term := &Terminal{
		out:     out,
		active:  color.New(color.FgGreen, color.Bold),
		passive: color.New(color.FgHiBlack),
		index:   make(map[int]int, len(keys)),
	}

	if colorize {
		term.active.EnableColor()
		term.passive.EnableColor()
	} else {
		term.active.DisableColor()
		term.passive.DisableColor()
	}

	for _, key := range keys {
		if _, dup := term.index[key]; dup {
			continue
		}

		term.index[key] = len(term.keys)
		term.keys = append(term.keys, key)
	}

	term.marks = make([]Mark, len(term.keys))

	return term
}

// Activate marks key active and prints the row. Keys that are not displayed
// are refused.
func (t *Terminal) Activate(key int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.index[key]
	if !ok {
		return false
	}

	t.step++
	t.marks[idx] = MarkActive
	t.renderLocked(humanize.Ordinal(t.step))

	return true
}

// Deactivate settles key into the passive mark and prints the row.
func (t *Terminal) Deactivate(key int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx, ok := t.index[key]
	if !ok {
		return
	}

	t.marks[idx] = MarkPassive
	t.renderLocked(humanize.Ordinal(t.step))
}

// Clear drops every mark, restarts the step count, and prints the bare row.
func (t *Terminal) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()

	clear(t.marks)
	t.step = 0
	t.renderLocked("-")
}

// Marks returns the current mark of every displayed key.
func (t *Terminal) Marks() map[int]Mark {
	t.mu.Lock()
	defer t.mu.Unlock()

	snapshot := make(map[int]Mark, len(t.keys))
	for idx, key := range t.keys {
		snapshot[key] = t.marks[idx]
	}

	return snapshot
}

// Err returns the first write error, if any. Later writes are skipped.
func (t *Terminal) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.err
}

func (t *Terminal) renderLocked(label string) {
	if t.err != nil {
		return
	}

	var line strings.Builder

	fmt.Fprintf(&line, "%5s |", label)

	for idx, key := range t.keys {
		text := strconv.Itoa(key)

		switch t.marks[idx] {
		case MarkActive:
			line.WriteString(" " + t.active.Sprint("["+text+"]"))
		case MarkPassive:
			line.WriteString(" " + t.passive.Sprint("("+text+")"))
		case MarkNone:
			line.WriteString("  " + text + " ")
		}
	}

	line.WriteString("\n")

	_, err := io.WriteString(t.out, line.String())
	if err != nil {
		t.err = errors.Wrap(err, "render playback row")
	}
}
