// Package executor turns structured commands into page interactions. Each
// command kind maps to exactly one interaction; failures surface as typed
// errors the orchestrator can classify.
package executor

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gobwas/glob"
	"github.com/playwright-community/playwright-go"
	"github.com/sirupsen/logrus"

	"github.com/webpilot-dev/webpilot/pkg/browser"
	"github.com/webpilot-dev/webpilot/pkg/grammar"
)

// Default operation bounds, in line with the rest of the engine's 5-10s
// per-action budget.
const (
	DefaultActionTimeout    = 10 * time.Second
	DefaultAssertionTimeout = 5 * time.Second
)

// namedPagePaths rewrites the base URL's path for well-known pages.
var namedPagePaths = map[string]string{
	"homepage": "/",
	"login":    "/login",
	"contact":  "/contact",
	"register": "/register",
}

// NavigationRefusedError reports an explicit-URL navigation blocked by the
// host allowlist.
type NavigationRefusedError struct {
	URL  string
	Host string
}

func (e *NavigationRefusedError) Error() string {
	return fmt.Sprintf("navigation to %s refused: host %q is not in the allowlist", e.URL, e.Host)
}

// Executor executes structured commands against one page session.
type Executor struct {
	session  *browser.Session
	resolver *browser.Resolver
	baseURL  string
	allowed  []glob.Glob
	log      *logrus.Entry

	actionTimeout    time.Duration
	assertionTimeout time.Duration
}

// Option configures an Executor.
type Option func(*Executor)

// WithActionTimeout bounds clicks, fills and similar interactions.
func WithActionTimeout(d time.Duration) Option {
	return func(e *Executor) { e.actionTimeout = d }
}

// WithAssertionTimeout bounds how long assertions poll for their condition.
func WithAssertionTimeout(d time.Duration) Option {
	return func(e *Executor) { e.assertionTimeout = d }
}

// WithAllowedHosts restricts explicit-URL navigation to hosts matching one of
// the glob patterns. An empty list leaves navigation unrestricted.
func WithAllowedHosts(patterns []string) Option {
	return func(e *Executor) {
		for _, p := range patterns {
			g, err := glob.Compile(p)
			if err != nil {
				e.log.Warnf("ignoring invalid host pattern %q: %v", p, err)
				continue
			}
			e.allowed = append(e.allowed, g)
		}
	}
}

// New creates an executor bound to a session and base URL.
func New(session *browser.Session, resolver *browser.Resolver, baseURL string, log *logrus.Entry, opts ...Option) *Executor {
	e := &Executor{
		session:          session,
		resolver:         resolver,
		baseURL:          baseURL,
		log:              log,
		actionTimeout:    DefaultActionTimeout,
		assertionTimeout: DefaultAssertionTimeout,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes one structured command.
func (e *Executor) Run(ctx context.Context, cmd grammar.Command) error {
	switch cmd.Kind {
	case grammar.KindNavigatePage:
		return e.navigatePage(cmd.Target)
	case grammar.KindNavigateURL:
		return e.navigateURL(cmd.Value)
	case grammar.KindClick:
		return e.click(cmd.Target, cmd.Hint)
	case grammar.KindFill:
		return e.fillField(cmd.Target, cmd.Attribute, cmd.Value)
	case grammar.KindSelect:
		return e.selectOption(cmd.Target, cmd.Value)
	case grammar.KindCheck:
		return e.setChecked(cmd.Target, cmd.Checked)
	case grammar.KindWait:
		return e.wait(ctx, cmd.Seconds)
	case grammar.KindLogin:
		return e.login(cmd.Target, cmd.Value)
	case grammar.KindAssertURLContains:
		return e.assertURLContains(ctx, cmd.Value)
	case grammar.KindAssertPageContains:
		return e.assertPageContains(ctx, cmd.Value)
	case grammar.KindAssertVisible:
		return e.assertVisible(cmd.Target)
	case grammar.KindAssertTextContains:
		return e.assertTextContains(ctx, cmd.Target, cmd.Value)
	case grammar.KindAssertValue:
		return e.assertValue(ctx, cmd.Target, cmd.Attribute, cmd.Value)
	case grammar.KindConditional:
		return e.conditional(ctx, cmd)
	}
	return fmt.Errorf("unhandled command kind %q", cmd.Kind)
}

func (e *Executor) navigatePage(page string) error {
	target, err := RewritePageURL(e.baseURL, page)
	if err != nil {
		return err
	}
	e.log.Infof("navigating to %s page: %s", page, target)
	return e.session.Navigate(target)
}

func (e *Executor) navigateURL(raw string) error {
	if len(e.allowed) > 0 {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid navigation URL %q: %w", raw, err)
		}
		if !e.hostAllowed(parsed.Hostname()) {
			return &NavigationRefusedError{URL: raw, Host: parsed.Hostname()}
		}
	}
	e.log.Infof("navigating to %s", raw)
	return e.session.Navigate(raw)
}

func (e *Executor) hostAllowed(host string) bool {
	for _, g := range e.allowed {
		if g.Match(host) {
			return true
		}
	}
	return false
}

func (e *Executor) click(target, hint string) error {
	loc, err := e.resolver.ResolveVisible(target, hint)
	if err != nil {
		return err
	}
	if err := loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(e.actionTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("click on %q failed: %w", target, err)
	}
	return nil
}

func (e *Executor) selectOption(target, value string) error {
	loc, err := e.resolveField(target, "")
	if err != nil {
		return err
	}
	_, err = loc.SelectOption(playwright.SelectOptionValues{Labels: &[]string{value}})
	if err != nil {
		// Options without visible labels still select by value.
		_, err = loc.SelectOption(playwright.SelectOptionValues{Values: &[]string{value}})
	}
	if err != nil {
		return fmt.Errorf("selecting %q in %q failed: %w", value, target, err)
	}
	return nil
}

func (e *Executor) setChecked(target string, checked bool) error {
	loc, err := e.resolver.ResolveVisible(target, "checkbox")
	if err != nil {
		return err
	}
	opts := playwright.LocatorCheckOptions{
		Timeout: playwright.Float(float64(e.actionTimeout.Milliseconds())),
	}
	if checked {
		err = loc.Check(opts)
	} else {
		err = loc.Uncheck(playwright.LocatorUncheckOptions{Timeout: opts.Timeout})
	}
	if err != nil {
		return fmt.Errorf("setting %q checked=%t failed: %w", target, checked, err)
	}
	return nil
}

func (e *Executor) wait(ctx context.Context, seconds int) error {
	timer := time.NewTimer(time.Duration(seconds) * time.Second)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// login fills the email-like and password-like fields and clicks the sign-in
// button.
func (e *Executor) login(email, password string) error {
	emailField, err := e.firstVisible(
		e.session.Page.Locator(`input[type="email"]`),
		e.session.Page.GetByLabel(loginEmailPattern),
		e.session.Page.GetByPlaceholder(loginEmailPattern),
	)
	if err != nil {
		return &browser.ElementNotFoundError{Identifier: "email field", Strategies: []string{"type=email", "label", "placeholder"}}
	}
	if err := emailField.Fill(email); err != nil {
		return fmt.Errorf("filling email field failed: %w", err)
	}

	passwordField, err := e.firstVisible(
		e.session.Page.Locator(`input[type="password"]`),
		e.session.Page.GetByLabel(loginPasswordPattern),
		e.session.Page.GetByPlaceholder(loginPasswordPattern),
	)
	if err != nil {
		return &browser.ElementNotFoundError{Identifier: "password field", Strategies: []string{"type=password", "label", "placeholder"}}
	}
	if err := passwordField.Fill(password); err != nil {
		return fmt.Errorf("filling password field failed: %w", err)
	}

	submit, err := e.firstVisible(
		e.session.Page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: signInPattern}),
		e.session.Page.Locator(`button[type="submit"]`),
	)
	if err != nil {
		return &browser.ElementNotFoundError{Identifier: "sign-in button", Strategies: []string{"role=button", "type=submit"}}
	}
	if err := submit.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(float64(e.actionTimeout.Milliseconds())),
	}); err != nil {
		return fmt.Errorf("clicking sign-in button failed: %w", err)
	}
	return e.session.WaitForNetworkIdle()
}

func (e *Executor) conditional(ctx context.Context, cmd grammar.Command) error {
	if cmd.If == nil || cmd.Then == nil {
		return fmt.Errorf("conditional command is missing a branch")
	}
	if err := e.Run(ctx, *cmd.If); err != nil {
		// A failed probe means the branch is simply not taken.
		e.log.Debugf("conditional probe did not hold, skipping step: %v", err)
		return nil
	}
	return e.Run(ctx, *cmd.Then)
}

// firstVisible returns the first locator with a visible match, trying each in
// order.
func (e *Executor) firstVisible(locators ...playwright.Locator) (playwright.Locator, error) {
	for _, loc := range locators {
		count, err := loc.Count()
		if err != nil || count == 0 {
			continue
		}
		all, err := loc.All()
		if err != nil {
			continue
		}
		for _, l := range all {
			if visible, err := l.IsVisible(); err == nil && visible {
				return l, nil
			}
		}
	}
	return nil, fmt.Errorf("no visible match")
}

// RewritePageURL rewrites the base URL's path for a well-known named page.
func RewritePageURL(baseURL, page string) (string, error) {
	path, ok := namedPagePaths[strings.ToLower(page)]
	if !ok {
		return "", fmt.Errorf("unknown named page %q", page)
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	parsed.Path = path
	parsed.RawQuery = ""
	parsed.Fragment = ""
	return parsed.String(), nil
}
