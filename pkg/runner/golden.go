package runner

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// GoldenSet maps scenario titles to hand-curated step sequences. When a
// scenario's title matches exactly, the curated steps replace whatever steps
// the scenario arrived with. Titles that almost match get no special
// treatment; a fuzzy match substituting the wrong flow would be worse than
// running the scenario as written.
type GoldenSet struct {
	overrides map[string][]string
}

// DefaultGoldenSet returns the built-in overrides.
func DefaultGoldenSet() *GoldenSet {
	return &GoldenSet{overrides: map[string][]string{
		// Curated steps must stay on the deterministic grammar path; a step
		// that escalates to the planner would reintroduce the variability the
		// override exists to remove.
		"Valid login test": {
			"Go to the login page",
			`Fill "test@example.com" into the "Email" field`,
			`Fill "Password123!" into the "Password" field`,
			`Click the "Sign in" button`,
		},
	}}
}

// LoadGoldenSet reads title-to-steps overrides from a YAML file and merges
// them over the built-in set. File entries win on title collision.
func LoadGoldenSet(path string) (*GoldenSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read golden set %s: %w", path, err)
	}

	var loaded map[string][]string
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse golden set %s: %w", path, err)
	}

	set := DefaultGoldenSet()
	for title, steps := range loaded {
		set.overrides[title] = steps
	}
	return set, nil
}

// Lookup returns the curated steps for an exactly matching title.
func (g *GoldenSet) Lookup(title string) ([]string, bool) {
	if g == nil {
		return nil, false
	}
	steps, ok := g.overrides[title]
	return steps, ok
}
