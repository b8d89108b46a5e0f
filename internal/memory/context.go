package memory

import (
	"context"
	"strings"

	"github.com/pkoukk/tiktoken-go"

	"github.com/sandevgo/conductor/internal/core"
	"github.com/sandevgo/conductor/pkg/log"
)

const (
	// How many recent turns feed the retrieval query.
	queryTurns = 4
	// Facts requested per retrieval.
	retrieveLimit = 5
)

// ContextBuilder produces the enrichment string prepended to each prompt:
// static capability knowledge plus optional retrieved facts, capped to a
// token budget. It enriches the prompt; turn history still travels to the
// backend separately.
type ContextBuilder struct {
	static      []string
	retriever   core.Retriever
	encoder     *tiktoken.Tiktoken
	tokenBudget int
}

// NewContextBuilder wires static knowledge and an optional retriever.
// Encoder setup needs the cl100k vocabulary; when unavailable the builder
// falls back to a rune-based token estimate.
func NewContextBuilder(ctx context.Context, static []string, retriever core.Retriever, tokenBudget int) *ContextBuilder {
	encoder, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
	if err != nil {
		log.FromCtx(ctx).Warn().Err(err).Msg("tiktoken encoding unavailable, using approximate token counts")
		encoder = nil
	}
	return &ContextBuilder{
		static:      static,
		retriever:   retriever,
		encoder:     encoder,
		tokenBudget: tokenBudget,
	}
}

// Assemble builds the context block for one command. Retrieval failures
// degrade to static knowledge only; they never fail the command.
func (b *ContextBuilder) Assemble(ctx context.Context, history []core.Turn, prompt string) string {
	var sections []string

	if len(b.static) > 0 {
		sections = append(sections, "### Capabilities\n"+strings.Join(b.static, "\n"))
	}

	if b.retriever != nil {
		query := buildQuery(history, prompt)
		facts, err := b.retriever.Retrieve(ctx, query, retrieveLimit)
		if err != nil {
			log.FromCtx(ctx).Warn().Err(err).Msg("knowledge retrieval failed")
		} else if len(facts) > 0 {
			var sb strings.Builder
			sb.WriteString("### Relevant Knowledge\n")
			for _, fact := range facts {
				sb.WriteString("- " + fact + "\n")
			}
			sections = append(sections, strings.TrimRight(sb.String(), "\n"))
		}
	}

	assembled := strings.Join(sections, "\n\n")
	return b.truncate(assembled)
}

// buildQuery keys retrieval on the tail of the conversation plus the
// current prompt.
func buildQuery(history []core.Turn, prompt string) string {
	var parts []string

	start := len(history) - queryTurns
	if start < 0 {
		start = 0
	}
	for _, turn := range history[start:] {
		if turn.Role == core.RoleUser || turn.Role == core.RoleAssistant {
			if turn.Content != "" {
				parts = append(parts, turn.Content)
			}
		}
	}

	parts = append(parts, prompt)
	return strings.Join(parts, " ")
}

func (b *ContextBuilder) truncate(text string) string {
	if b.tokenBudget <= 0 || text == "" {
		return text
	}

	if b.encoder == nil {
		// Rough heuristic: four runes per token.
		runes := []rune(text)
		max := b.tokenBudget * 4
		if len(runes) <= max {
			return text
		}
		return string(runes[:max])
	}

	tokens := b.encoder.Encode(text, nil, nil)
	if len(tokens) <= b.tokenBudget {
		return text
	}
	return b.encoder.Decode(tokens[:b.tokenBudget])
}
