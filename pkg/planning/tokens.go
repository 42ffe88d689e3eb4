package planning

import (
	"github.com/pkoukk/tiktoken-go"
)

// Trimmer cuts text down to a token budget before it travels to the planner.
// Page markup dominates prompt size; without a bound a long page blows the
// model's context window.
type Trimmer struct {
	enc    *tiktoken.Tiktoken
	budget int
}

// DefaultTokenBudget bounds page context sent with a planning request.
const DefaultTokenBudget = 6000

// NewTrimmer creates a trimmer with the given token budget (zero selects the
// default). When the encoding cannot be loaded (e.g. offline first run) the
// trimmer falls back to a characters-per-token estimate.
func NewTrimmer(budget int) *Trimmer {
	if budget <= 0 {
		budget = DefaultTokenBudget
	}
	enc, err := tiktoken.GetEncoding("cl100k_base")
	if err != nil {
		enc = nil
	}
	return &Trimmer{enc: enc, budget: budget}
}

// Trim returns text cut to the budget, untouched when it already fits.
func (t *Trimmer) Trim(text string) string {
	if t.enc == nil {
		return trimByEstimate(text, t.budget)
	}
	tokens := t.enc.Encode(text, nil, nil)
	if len(tokens) <= t.budget {
		return text
	}
	return t.enc.Decode(tokens[:t.budget])
}

// trimByEstimate approximates four characters per token.
func trimByEstimate(text string, budget int) string {
	limit := budget * 4
	if len(text) <= limit {
		return text
	}
	return text[:limit]
}
