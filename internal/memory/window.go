// Package memory keeps bounded per-session conversation history and
// assembles enrichment context for model calls.
package memory

import (
	"sync"

	"github.com/sandevgo/conductor/internal/core"
)

const DefaultLimit = 30

// Window is an append-only, FIFO-bounded sequence of turns. Old context
// is dropped rather than summarized, trading fidelity for a fixed
// memory and latency footprint.
type Window struct {
	mu    sync.Mutex
	limit int
	turns []core.Turn
}

func NewWindow(limit int) *Window {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Window{limit: limit}
}

// Add appends a turn, evicting from the front until within bound.
func (w *Window) Add(turn core.Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, turn)
	if excess := len(w.turns) - w.limit; excess > 0 {
		w.turns = append([]core.Turn(nil), w.turns[excess:]...)
	}
}

// History returns a snapshot copy; callers can iterate while new turns
// arrive without corrupting in-flight state.
func (w *Window) History() []core.Turn {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]core.Turn, len(w.turns))
	copy(out, w.turns)
	return out
}

// Len reports the current turn count.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.turns)
}

// Clear resets to empty for explicit new-conversation requests.
func (w *Window) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.turns = nil
}
