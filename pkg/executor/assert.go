package executor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/agext/levenshtein"
	"github.com/playwright-community/playwright-go"
)

// maxHintDistance bounds the edit distance for near-miss suggestions in URL
// assertions. Anything farther is noise, not a typo.
const maxHintDistance = 2

// AssertionError reports an expectation that did not hold within the
// assertion bound. Hint, when set, carries a diagnostic suggestion; it never
// changes pass/fail.
type AssertionError struct {
	Message string
	Hint    string
}

func (e *AssertionError) Error() string {
	if e.Hint != "" {
		return e.Message + " (" + e.Hint + ")"
	}
	return e.Message
}

// poll re-evaluates probe until it holds, the assertion bound elapses, or the
// context is cancelled. Probe errors are treated as "not yet" so transient
// driver hiccups do not fail an assertion early.
func (e *Executor) poll(ctx context.Context, probe func() (bool, error)) (bool, error) {
	deadline := time.Now().Add(e.assertionTimeout)
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := probe()
		if err == nil && ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}

func (e *Executor) assertURLContains(ctx context.Context, expected string) error {
	ok, err := e.poll(ctx, func() (bool, error) {
		return strings.Contains(strings.ToLower(e.session.URL()), strings.ToLower(expected)), nil
	})
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	actual := e.session.URL()
	assertErr := &AssertionError{
		Message: fmt.Sprintf("expected URL to contain %q, got %q", expected, actual),
	}
	if suggestion, found := SuggestSegment(expected, actual); found {
		assertErr.Hint = fmt.Sprintf("did you mean %q?", suggestion)
	}
	return assertErr
}

func (e *Executor) assertPageContains(ctx context.Context, expected string) error {
	ok, err := e.poll(ctx, func() (bool, error) {
		text, err := e.session.Page.Locator("body").InnerText()
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(text), strings.ToLower(expected)), nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return &AssertionError{Message: fmt.Sprintf("expected page to contain %q", expected)}
	}
	return nil
}

func (e *Executor) assertVisible(target string) error {
	loc, err := e.resolver.Resolve(target, "")
	if err != nil {
		return &AssertionError{Message: fmt.Sprintf("expected %q to be visible: %v", target, err)}
	}
	if err := loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(float64(e.assertionTimeout.Milliseconds())),
	}); err != nil {
		return &AssertionError{Message: fmt.Sprintf("expected %q to be visible within %s", target, e.assertionTimeout)}
	}
	return nil
}

func (e *Executor) assertTextContains(ctx context.Context, target, expected string) error {
	loc, err := e.resolver.Resolve(target, "")
	if err != nil {
		return &AssertionError{Message: fmt.Sprintf("expected %q to contain text %q: %v", target, expected, err)}
	}
	ok, err := e.poll(ctx, func() (bool, error) {
		text, err := loc.TextContent()
		if err != nil {
			return false, err
		}
		return strings.Contains(strings.ToLower(text), strings.ToLower(expected)), nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return &AssertionError{Message: fmt.Sprintf("expected %q to contain text %q", target, expected)}
	}
	return nil
}

func (e *Executor) assertValue(ctx context.Context, target, attribute, expected string) error {
	loc, err := e.resolveField(target, attribute)
	if err != nil {
		return &AssertionError{Message: fmt.Sprintf("expected %q to have value %q: %v", target, expected, err)}
	}
	var last string
	ok, err := e.poll(ctx, func() (bool, error) {
		value, err := loc.InputValue()
		if err != nil {
			return false, err
		}
		last = value
		return value == expected, nil
	})
	if err != nil {
		return err
	}
	if !ok {
		return &AssertionError{Message: fmt.Sprintf("expected %q to have value %q, got %q", target, expected, last)}
	}
	return nil
}

// SuggestSegment finds the path segment of rawURL closest to expected within
// the hint bound. Diagnostic only: a near-miss never flips an assertion.
func SuggestSegment(expected, rawURL string) (string, bool) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}

	best := ""
	bestDistance := maxHintDistance + 1
	for _, segment := range strings.Split(parsed.Path, "/") {
		if segment == "" || strings.EqualFold(segment, expected) {
			continue
		}
		d := levenshtein.Distance(strings.ToLower(expected), strings.ToLower(segment), nil)
		if d <= maxHintDistance && d < bestDistance {
			best = segment
			bestDistance = d
		}
	}
	return best, best != ""
}
