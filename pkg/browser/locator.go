package browser

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"
)

// ElementNotFoundError reports that every locating strategy was exhausted for
// an identifier. Strategies lists the attempts in the order they were made.
type ElementNotFoundError struct {
	Identifier string
	Strategies []string
}

func (e *ElementNotFoundError) Error() string {
	return fmt.Sprintf("element %q not found after trying strategies: %s",
		e.Identifier, strings.Join(e.Strategies, ", "))
}

// Resolver finds on-page elements for human-readable identifiers using a
// prioritized strategy chain: accessibility role, label, placeholder, visible
// text, test id (raw then cleaned), and finally the identifier itself when it
// already looks like a CSS selector. The first strategy that yields a match
// wins; there is no ranking across strategies.
type Resolver struct {
	page playwright.Page

	// visibleTimeout bounds how long a single strategy may wait for its
	// first match to become visible, in milliseconds.
	visibleTimeout float64
}

// NewResolver creates a resolver for the given page. visibleTimeoutMs bounds
// the per-strategy visibility wait; zero selects a 1.5s default.
func NewResolver(page playwright.Page, visibleTimeoutMs float64) *Resolver {
	if visibleTimeoutMs == 0 {
		visibleTimeoutMs = 1500
	}
	return &Resolver{page: page, visibleTimeout: visibleTimeoutMs}
}

// candidate is one entry of the strategy chain.
type candidate struct {
	strategy string
	locator  playwright.Locator
}

// hintRoles maps an element-kind hint from the instruction phrasing onto the
// accessibility role to try first.
var hintRoles = map[string]playwright.AriaRole{
	"button":   *playwright.AriaRoleButton,
	"link":     *playwright.AriaRoleLink,
	"tab":      *playwright.AriaRoleTab,
	"checkbox": *playwright.AriaRoleCheckbox,
	"radio":    *playwright.AriaRoleRadio,
}

// roleOrder is the default role probe order when no hint is supplied.
var roleOrder = []playwright.AriaRole{
	*playwright.AriaRoleButton,
	*playwright.AriaRoleLink,
	*playwright.AriaRoleTab,
	*playwright.AriaRoleCheckbox,
	*playwright.AriaRoleRadio,
}

// candidates builds the ordered strategy chain for an identifier.
func (r *Resolver) candidates(identifier, hint string) []candidate {
	re := identifierPattern(identifier)
	var out []candidate

	roles := roleOrder
	if role, ok := hintRoles[hint]; ok {
		roles = append([]playwright.AriaRole{role}, rolesExcept(role)...)
	}
	for _, role := range roles {
		out = append(out, candidate{
			strategy: fmt.Sprintf("role=%s", role),
			locator:  r.page.GetByRole(role, playwright.PageGetByRoleOptions{Name: re}),
		})
	}

	out = append(out,
		candidate{strategy: "label", locator: r.page.GetByLabel(re)},
		candidate{strategy: "placeholder", locator: r.page.GetByPlaceholder(re)},
		candidate{strategy: "text", locator: r.page.GetByText(re)},
		candidate{strategy: "testid", locator: r.page.GetByTestId(identifier)},
	)

	if cleaned := CleanIdentifier(identifier); cleaned != "" && cleaned != identifier {
		out = append(out, candidate{
			strategy: fmt.Sprintf("testid=%s", cleaned),
			locator:  r.page.GetByTestId(cleaned),
		})
	}

	if LooksLikeSelector(identifier) {
		out = append(out, candidate{strategy: "css", locator: r.page.Locator(identifier)})
	}

	return out
}

// Resolve returns the first element of the first strategy that matches at
// least one node, visible or not. Assertions on presence use this variant.
func (r *Resolver) Resolve(identifier, hint string) (playwright.Locator, error) {
	var tried []string
	for _, c := range r.candidates(identifier, hint) {
		tried = append(tried, c.strategy)
		count, err := c.locator.Count()
		if err != nil || count == 0 {
			continue
		}
		return c.locator.First(), nil
	}
	return nil, &ElementNotFoundError{Identifier: identifier, Strategies: tried}
}

// ResolveVisible returns the first *visible* element of the first strategy
// that produces one within the visibility bound. Clicks and fills use this
// variant so hidden template nodes are never acted on.
func (r *Resolver) ResolveVisible(identifier, hint string) (playwright.Locator, error) {
	var tried []string
	for _, c := range r.candidates(identifier, hint) {
		tried = append(tried, c.strategy)
		count, err := c.locator.Count()
		if err != nil || count == 0 {
			continue
		}

		all, err := c.locator.All()
		if err == nil {
			for _, loc := range all {
				if visible, err := loc.IsVisible(); err == nil && visible {
					return loc, nil
				}
			}
		}

		// Matches exist but none is visible yet; give the first one a
		// bounded chance to appear before moving on.
		err = c.locator.First().WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(r.visibleTimeout),
		})
		if err == nil {
			return c.locator.First(), nil
		}
	}
	return nil, &ElementNotFoundError{Identifier: identifier, Strategies: tried}
}

// identifierPattern builds the case-insensitive name pattern for an
// identifier.
func identifierPattern(identifier string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(identifier)))
}

// fillerWords are phrasing artifacts that rarely appear in test ids.
var fillerWords = map[string]bool{
	"button": true, "link": true, "tab": true, "field": true,
	"input": true, "box": true, "checkbox": true, "the": true,
	"a": true, "an": true, "icon": true, "dropdown": true,
}

// CleanIdentifier lowercases an identifier, drops filler words and joins the
// remainder with hyphens, approximating the kebab-case test ids most apps
// use ("Save button" -> "save", "First Name field" -> "first-name").
func CleanIdentifier(identifier string) string {
	var kept []string
	for _, word := range strings.Fields(strings.ToLower(identifier)) {
		if !fillerWords[word] {
			kept = append(kept, word)
		}
	}
	return strings.Join(kept, "-")
}

// LooksLikeSelector reports whether the identifier is already a literal CSS
// selector. Only id and class shorthands qualify; free text with spaces does
// not.
func LooksLikeSelector(identifier string) bool {
	if len(identifier) < 2 || strings.ContainsAny(identifier, " \t") {
		return false
	}
	return identifier[0] == '#' || identifier[0] == '.'
}

// rolesExcept returns roleOrder without the given role.
func rolesExcept(exclude playwright.AriaRole) []playwright.AriaRole {
	out := make([]playwright.AriaRole, 0, len(roleOrder)-1)
	for _, role := range roleOrder {
		if role != exclude {
			out = append(out, role)
		}
	}
	return out
}
