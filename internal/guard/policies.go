package guard

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// NewBlocklist blocks input containing any of the given phrases,
// case-insensitively.
func NewBlocklist(phrases []string) Policy {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if p = strings.TrimSpace(p); p != "" {
			lowered = append(lowered, strings.ToLower(p))
		}
	}

	return Policy{
		Name:  "blocklist",
		Stage: StageInput,
		Check: func(text string) Result {
			haystack := strings.ToLower(text)
			for _, phrase := range lowered {
				if strings.Contains(haystack, phrase) {
					return Result{
						Blocked: true,
						Reason:  fmt.Sprintf("input contains blocked phrase %q", phrase),
					}
				}
			}
			return Result{Text: text}
		},
	}
}

var (
	emailPattern  = regexp.MustCompile(`[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}`)
	apiKeyPattern = regexp.MustCompile(`\b(sk|pk|rk)[-_][a-zA-Z0-9_\-]{16,}\b`)
)

// NewRedaction rewrites e-mail addresses and API-key-shaped strings on
// both sides of the model call. It never blocks.
func NewRedaction() Policy {
	return Policy{
		Name:  "redaction",
		Stage: StageBoth,
		Check: func(text string) Result {
			out := emailPattern.ReplaceAllString(text, "[redacted-email]")
			out = apiKeyPattern.ReplaceAllString(out, "[redacted-key]")
			return Result{Text: out}
		},
	}
}

// NewHTMLSanitizer strips all markup from model output. Generated text is
// rendered by embedding UIs and must not carry live HTML.
func NewHTMLSanitizer() Policy {
	strict := bluemonday.StrictPolicy()
	return Policy{
		Name:  "html_sanitizer",
		Stage: StageOutput,
		Check: func(text string) Result {
			return Result{Text: strict.Sanitize(text)}
		},
	}
}

// NewMaxLength truncates model output beyond limit runes.
func NewMaxLength(limit int) Policy {
	return Policy{
		Name:  "max_length",
		Stage: StageOutput,
		Check: func(text string) Result {
			runes := []rune(text)
			if len(runes) <= limit {
				return Result{Text: text}
			}
			return Result{Text: string(runes[:limit]) + "…"}
		},
	}
}
