package executor

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"

	"github.com/webpilot-dev/webpilot/pkg/browser"
)

var (
	loginEmailPattern    = regexp.MustCompile(`(?i)e-?mail|username`)
	loginPasswordPattern = regexp.MustCompile(`(?i)password`)
	signInPattern        = regexp.MustCompile(`(?i)sign\s?in|log\s?in|login|submit`)
)

// fillField fills a value into the field named by target. The field is
// located by trying, in order: an explicit attribute hint, label association,
// placeholder text, the name attribute, then the id attribute. The first
// visible match wins; the error lists every attempted strategy.
func (e *Executor) fillField(target, attribute, value string) error {
	type attempt struct {
		strategy string
		locator  playwright.Locator
	}

	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(target)))
	cleaned := browser.CleanIdentifier(target)

	var attempts []attempt
	if attribute != "" {
		attempts = append(attempts, attempt{
			strategy: fmt.Sprintf("attribute %s", attribute),
			locator:  e.session.Page.Locator(fmt.Sprintf(`[%s=%q]`, attribute, target)),
		})
	}
	attempts = append(attempts,
		attempt{strategy: "label", locator: e.session.Page.GetByLabel(pattern)},
		attempt{strategy: "placeholder", locator: e.session.Page.GetByPlaceholder(pattern)},
		attempt{strategy: "name attribute", locator: e.session.Page.Locator(fmt.Sprintf(`[name=%q]`, target))},
		attempt{strategy: "id attribute", locator: e.session.Page.Locator(fmt.Sprintf(`[id=%q]`, target))},
	)
	if cleaned != "" && cleaned != target {
		attempts = append(attempts,
			attempt{strategy: "cleaned name attribute", locator: e.session.Page.Locator(fmt.Sprintf(`[name=%q]`, cleaned))},
			attempt{strategy: "cleaned id attribute", locator: e.session.Page.Locator(fmt.Sprintf(`[id=%q]`, cleaned))},
		)
	}

	var tried []string
	for _, a := range attempts {
		tried = append(tried, a.strategy)
		loc, err := e.firstVisible(a.locator)
		if err != nil {
			continue
		}
		if err := loc.Fill(value, playwright.LocatorFillOptions{
			Timeout: playwright.Float(float64(e.actionTimeout.Milliseconds())),
		}); err != nil {
			return fmt.Errorf("filling %q via %s failed: %w", target, a.strategy, err)
		}
		e.log.Debugf("filled %q via %s", target, a.strategy)
		return nil
	}

	return fmt.Errorf("could not find a visible field for %q; tried %s",
		target, strings.Join(tried, ", "))
}

// resolveField locates a form control by the fill strategy chain without
// filling it. Select and value-assertion commands share it.
func (e *Executor) resolveField(target, attribute string) (playwright.Locator, error) {
	pattern := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(strings.TrimSpace(target)))

	locators := []playwright.Locator{}
	if attribute != "" {
		locators = append(locators, e.session.Page.Locator(fmt.Sprintf(`[%s=%q]`, attribute, target)))
	}
	locators = append(locators,
		e.session.Page.GetByLabel(pattern),
		e.session.Page.Locator(fmt.Sprintf(`[name=%q]`, target)),
		e.session.Page.Locator(fmt.Sprintf(`[id=%q]`, target)),
		e.session.Page.GetByPlaceholder(pattern),
	)

	loc, err := e.firstVisible(locators...)
	if err != nil {
		return nil, &browser.ElementNotFoundError{
			Identifier: target,
			Strategies: []string{"label", "name attribute", "id attribute", "placeholder"},
		}
	}
	return loc, nil
}
