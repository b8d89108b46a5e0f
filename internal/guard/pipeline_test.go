package guard

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandevgo/conductor/internal/core"
)

func TestPipeline_FirstBlockShortCircuits(t *testing.T) {
	secondRan := false
	p := NewPipeline(
		Policy{
			Name:  "always_block",
			Stage: StageInput,
			Check: func(text string) Result {
				return Result{Blocked: true, Reason: "nope"}
			},
		},
		Policy{
			Name:  "observer",
			Stage: StageInput,
			Check: func(text string) Result {
				secondRan = true
				return Result{Text: text}
			},
		},
	)

	res := p.FilterInput(context.Background(), "anything")
	assert.True(t, res.Blocked)
	assert.Equal(t, "nope", res.Reason)
	assert.False(t, secondRan, "policies after a block must not run")
}

func TestPipeline_TransformsChain(t *testing.T) {
	p := NewPipeline(
		Policy{
			Name:  "upper",
			Stage: StageBoth,
			Check: func(text string) Result { return Result{Text: strings.ToUpper(text)} },
		},
		Policy{
			Name:  "suffix",
			Stage: StageBoth,
			Check: func(text string) Result { return Result{Text: text + "!"} },
		},
	)

	res := p.FilterOutput(context.Background(), "hello")
	assert.False(t, res.Blocked)
	assert.Equal(t, "HELLO!", res.Text)
}

func TestPipeline_Toggles(t *testing.T) {
	p := NewPipeline(NewBlocklist([]string{"forbidden"}))

	res := p.FilterInput(context.Background(), "this is forbidden text")
	require.True(t, res.Blocked)

	require.NoError(t, p.SetPolicy("blocklist", false))
	enabled, err := p.PolicyState("blocklist")
	require.NoError(t, err)
	assert.False(t, enabled)

	res = p.FilterInput(context.Background(), "this is forbidden text")
	assert.False(t, res.Blocked)
}

func TestPipeline_UnknownPolicyReported(t *testing.T) {
	p := NewPipeline()

	assert.ErrorIs(t, p.SetPolicy("ghost", true), core.ErrUnknownPolicy)
	_, err := p.PolicyState("ghost")
	assert.ErrorIs(t, err, core.ErrUnknownPolicy)
}

func TestPipeline_StageSeparation(t *testing.T) {
	p := NewPipeline(NewBlocklist([]string{"attack"}))

	// Blocklist is input-only; output with the phrase passes.
	res := p.FilterOutput(context.Background(), "the attack vector is...")
	assert.False(t, res.Blocked)
}

func TestRedaction(t *testing.T) {
	p := NewPipeline(NewRedaction())

	res := p.FilterInput(context.Background(), "mail me at jan.kowalski@example.com, key sk-abcdefghijklmnop1234")
	assert.False(t, res.Blocked)
	assert.NotContains(t, res.Text, "example.com")
	assert.NotContains(t, res.Text, "sk-abcdefghijklmnop1234")
	assert.Contains(t, res.Text, "[redacted-email]")
	assert.Contains(t, res.Text, "[redacted-key]")
}

func TestHTMLSanitizer(t *testing.T) {
	p := NewPipeline(NewHTMLSanitizer())

	res := p.FilterOutput(context.Background(), `click <script>alert(1)</script><b>here</b>`)
	assert.False(t, res.Blocked)
	assert.NotContains(t, res.Text, "<script>")
	assert.NotContains(t, res.Text, "<b>")
	assert.Contains(t, res.Text, "here")
}

func TestMaxLength(t *testing.T) {
	p := NewPipeline(NewMaxLength(5))

	res := p.FilterOutput(context.Background(), "abcdefghij")
	assert.Equal(t, "abcde…", res.Text)

	res = p.FilterOutput(context.Background(), "abc")
	assert.Equal(t, "abc", res.Text)
}

// Run with -race: in-flight filtering must never observe a toggle
// through shared state.
func TestPipeline_ConcurrentTogglesWithFiltering(t *testing.T) {
	p := NewPipeline(
		NewBlocklist([]string{"forbidden"}),
		NewRedaction(),
		NewMaxLength(64),
	)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			_ = p.SetPolicy("redaction", i%2 == 0)
			_ = p.SetPolicy("max_length", i%2 == 1)
		}
	}()

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				p.FilterInput(context.Background(), "contact me at a@b.co")
				p.FilterOutput(context.Background(), strings.Repeat("x", 128))
			}
		}()
	}

	wg.Wait()
}
