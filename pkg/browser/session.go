package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Session is one browser/context/page triple owned by a single test run.
// It is mutated only by that run's task; no locking is needed.
type Session struct {
	Browser playwright.Browser
	Context playwright.BrowserContext
	Page    playwright.Page
}

// Navigate loads the URL and waits for the network to go idle.
func (s *Session) Navigate(url string) error {
	if _, err := s.Page.Goto(url, playwright.PageGotoOptions{WaitUntil: playwright.WaitUntilStateNetworkidle}); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	return nil
}

// WaitForNetworkIdle blocks until in-flight requests settle.
func (s *Session) WaitForNetworkIdle() error {
	if err := s.Page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{State: playwright.LoadStateNetworkidle}); err != nil {
		return fmt.Errorf("wait for network idle failed: %w", err)
	}
	return nil
}

// URL returns the page's current URL.
func (s *Session) URL() string {
	return s.Page.URL()
}

// Content returns the page's full HTML.
func (s *Session) Content() (string, error) {
	html, err := s.Page.Content()
	if err != nil {
		return "", fmt.Errorf("failed to read page content: %w", err)
	}
	return html, nil
}

// Screenshot captures the viewport as PNG bytes.
func (s *Session) Screenshot() ([]byte, error) {
	shot, err := s.Page.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}
	return shot, nil
}

// Reload reloads the page and waits for the network to go idle. Skills use it
// to reset state between validation passes.
func (s *Session) Reload() error {
	if _, err := s.Page.Reload(playwright.PageReloadOptions{WaitUntil: playwright.WaitUntilStateNetworkidle}); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}
	return nil
}

// Close releases the page, context and browser. Errors during teardown are
// ignored so cleanup always runs to completion.
func (s *Session) Close() {
	_ = s.Page.Close()
	_ = s.Context.Close()
	_ = s.Browser.Close()
}
