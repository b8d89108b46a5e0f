package memory

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/conductor/internal/core"
)

func TestWindow_FIFOEviction(t *testing.T) {
	const limit = 5
	const total = 12

	w := NewWindow(limit)
	for i := 0; i < total; i++ {
		w.Add(core.Turn{Role: core.RoleUser, Content: fmt.Sprintf("turn-%d", i)})
	}

	history := w.History()
	require.Len(t, history, limit)

	// The surviving turns are the most recent ones, in order.
	for i, turn := range history {
		assert.Equal(t, fmt.Sprintf("turn-%d", total-limit+i), turn.Content)
	}
}

func TestWindow_UnderLimitKeepsAll(t *testing.T) {
	w := NewWindow(10)
	w.Add(core.Turn{Role: core.RoleUser, Content: "a"})
	w.Add(core.Turn{Role: core.RoleAssistant, Content: "b"})

	history := w.History()
	require.Len(t, history, 2)
	assert.Equal(t, "a", history[0].Content)
	assert.Equal(t, "b", history[1].Content)
}

func TestWindow_HistoryIsSnapshot(t *testing.T) {
	w := NewWindow(10)
	w.Add(core.Turn{Role: core.RoleUser, Content: "original"})

	history := w.History()
	history[0].Content = "mutated"

	assert.Equal(t, "original", w.History()[0].Content)
}

func TestWindow_Clear(t *testing.T) {
	w := NewWindow(10)
	w.Add(core.Turn{Role: core.RoleUser, Content: "a"})
	w.Clear()

	assert.Equal(t, 0, w.Len())
	assert.Empty(t, w.History())
}
