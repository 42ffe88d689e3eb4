package skills

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"github.com/webpilot-dev/webpilot/pkg/browser"
	"github.com/webpilot-dev/webpilot/pkg/planning"
)

// submitPattern matches the visible text of buttons that submit a form.
var submitPattern = regexp.MustCompile(`(?i)submit|save|create|add|send|sign\s?up|register|continue|confirm`)

// defaultSettleTimeout bounds the wait for a modal to close after submission.
const defaultSettleTimeout = 5000.0 // ms

// Observation is one piece of evidence gathered by the validation skill. The
// skill records what the form did; it does not judge whether that behavior is
// correct.
type Observation struct {
	Scenario    string
	Description string
	URL         string
	Screenshot  []byte
}

// Skills implements the composite form behaviors a workflow plan can invoke.
type Skills struct {
	session       *browser.Session
	planner       planning.Client
	log           *logrus.Entry
	observer      func(Observation)
	settleTimeout float64
}

// Option configures a Skills instance.
type Option func(*Skills)

// WithObserver registers a callback receiving each validation observation.
func WithObserver(fn func(Observation)) Option {
	return func(s *Skills) { s.observer = fn }
}

// WithSettleTimeout overrides the post-submit settle timeout in milliseconds.
func WithSettleTimeout(ms float64) Option {
	return func(s *Skills) { s.settleTimeout = ms }
}

// New creates the skill set for a session.
func New(session *browser.Session, planner planning.Client, log *logrus.Entry, opts ...Option) *Skills {
	s := &Skills{
		session:       session,
		planner:       planner,
		log:           log,
		settleTimeout: defaultSettleTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FillFormHappyPath discovers the fillable fields inside the active context,
// asks the planner for a generator per field, fills each field with a
// generated value, and submits. Fields the planner left unmapped get generic
// text rather than staying empty.
func (s *Skills) FillFormHappyPath(ctx context.Context, contextSelector string) error {
	fields, err := s.discoverFields(contextSelector)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fillable fields found in %q", contextSelector)
	}

	mapping, err := s.planner.MapFormFields(ctx, specs(fields))
	if err != nil {
		return fmt.Errorf("field mapping failed: %w", err)
	}

	for _, f := range fields {
		gen, ok := mapping[f.spec.Key]
		value := genericText()
		if ok {
			value = Generate(gen)
		} else {
			s.log.Warnf("no generator mapped for field %q, using generic text", f.spec.Key)
		}
		if err := s.apply(f, value); err != nil {
			return fmt.Errorf("filling field %q: %w", f.spec.Key, err)
		}
	}

	if err := s.submit(contextSelector); err != nil {
		return err
	}
	s.settle(contextSelector)
	return nil
}

// TestFormValidation probes the form with planner-proposed scenarios: an
// empty submission, malformed inputs, one happy path. Each probe reloads the
// page first so prior state cannot leak between scenarios. The skill records
// an observation per probe and leaves judgment to later analysis; a form that
// accepts garbage is evidence, not a step failure.
func (s *Skills) TestFormValidation(ctx context.Context, contextSelector string) error {
	fields, err := s.discoverFields(contextSelector)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		return fmt.Errorf("no fillable fields found in %q", contextSelector)
	}

	scenarios, err := s.planner.ValidationScenarios(ctx, specs(fields))
	if err != nil {
		return fmt.Errorf("validation scenario generation failed: %w", err)
	}

	for _, scenario := range scenarios {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.runValidationScenario(scenario, contextSelector); err != nil {
			s.log.Warnf("validation probe %q did not complete: %v", scenario.Name, err)
		}
	}
	return nil
}

func (s *Skills) runValidationScenario(scenario planning.ValidationScenario, contextSelector string) error {
	if err := s.session.Reload(); err != nil {
		return err
	}

	// Re-discover after the reload: the old locator handles are stale.
	fields, err := s.discoverFields(contextSelector)
	if err != nil {
		return err
	}
	byKey := make(map[string]field, len(fields))
	for _, f := range fields {
		byKey[f.spec.Key] = f
	}

	for key, value := range scenario.Values {
		f, ok := byKey[key]
		if !ok {
			s.log.Warnf("scenario %q names unknown field %q, skipping it", scenario.Name, key)
			continue
		}
		if err := s.apply(f, value); err != nil {
			return fmt.Errorf("filling field %q: %w", key, err)
		}
	}

	if err := s.submit(contextSelector); err != nil {
		return err
	}
	s.settle(contextSelector)
	s.observe(scenario)
	return nil
}

// observe captures the post-submit state as evidence for the scenario.
func (s *Skills) observe(scenario planning.ValidationScenario) {
	if s.observer == nil {
		return
	}
	obs := Observation{
		Scenario:    scenario.Name,
		Description: scenario.Description,
		URL:         s.session.URL(),
	}
	shot, err := s.session.Screenshot()
	if err != nil {
		s.log.Warnf("screenshot for probe %q failed: %v", scenario.Name, err)
	} else {
		obs.Screenshot = shot
	}
	s.observer(obs)
}

// apply writes a value into a control according to its kind.
func (s *Skills) apply(f field, value string) error {
	switch {
	case f.tag == "select":
		if _, err := f.locator.SelectOption(playwright.SelectOptionValues{Labels: &[]string{value}}); err != nil {
			if _, err := f.locator.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}}); err != nil {
				return err
			}
		}
		return nil
	case f.kind == "checkbox" || f.kind == "radio":
		if isTruthy(value) {
			return f.locator.Check()
		}
		return f.locator.Uncheck()
	default:
		return f.locator.Fill(value)
	}
}

// submit clicks the submit-like control inside the active context.
func (s *Skills) submit(contextSelector string) error {
	container := s.session.Page.Locator(contextSelector)

	byRole := container.GetByRole(*playwright.AriaRoleButton,
		playwright.LocatorGetByRoleOptions{Name: submitPattern})
	if visible, err := byRole.First().IsVisible(); err == nil && visible {
		return byRole.First().Click()
	}

	fallback := container.Locator(`button[type="submit"], input[type="submit"]`)
	count, err := fallback.Count()
	if err != nil || count == 0 {
		return fmt.Errorf("no submit control found in %q", contextSelector)
	}
	return fallback.First().Click()
}

// settle waits for the submission to take effect: a modal context should
// disappear, a plain page should reach network idle. Best-effort; a form that
// stays open (validation errors shown) is a normal outcome.
func (s *Skills) settle(contextSelector string) {
	if contextSelector != "body" {
		err := s.session.Page.Locator(contextSelector).WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateHidden,
			Timeout: playwright.Float(s.settleTimeout),
		})
		if err != nil {
			s.log.Debugf("context %q still present after submit", contextSelector)
		}
		return
	}
	if err := s.session.WaitForNetworkIdle(); err != nil {
		s.log.Debugf("network did not settle after submit: %v", err)
	}
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "false", "no", "off", "unchecked", "0":
		return false
	}
	return true
}
