// Package browser owns the Playwright lifecycle, the per-run page session,
// and the element resolution strategy chain.
package browser

import (
	"fmt"
	"io"

	"github.com/playwright-community/playwright-go"
)

// Default values for browser sessions.
const (
	DefaultTimeout        = 10000.0 // 10 seconds in milliseconds
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 720
)

// Manager owns the Playwright driver. One Manager serves the whole process;
// each test run gets its own Session.
type Manager struct {
	pw          *playwright.Playwright
	initialized bool
}

// NewManager creates an uninitialized manager. Call Initialize before Launch.
func NewManager() *Manager {
	return &Manager{}
}

// Initialize installs (if needed) and starts the Playwright driver.
func (m *Manager) Initialize() error {
	if m.initialized {
		return nil
	}

	// Discard driver output so it cannot interleave with progress rendering.
	opts := &playwright.RunOptions{
		Verbose: false,
		Stdout:  io.Discard,
		Stderr:  io.Discard,
	}

	if err := playwright.Install(opts); err != nil {
		return fmt.Errorf("failed to install playwright: %w", err)
	}

	pw, err := playwright.Run(opts)
	if err != nil {
		return fmt.Errorf("failed to start playwright: %w", err)
	}

	m.pw = pw
	m.initialized = true
	return nil
}

// SessionOptions configures a new browser session.
type SessionOptions struct {
	// Headless controls whether the browser runs without a visible window.
	Headless bool

	// ViewportWidth and ViewportHeight set the initial viewport size.
	ViewportWidth  int
	ViewportHeight int

	// Timeout is the default per-action timeout in milliseconds.
	Timeout float64
}

// Launch starts a Chromium instance with one context and one page. The
// returned session owns all three for its lifetime.
func (m *Manager) Launch(opts SessionOptions) (*Session, error) {
	if !m.initialized {
		return nil, fmt.Errorf("browser manager not initialized")
	}

	if opts.ViewportWidth == 0 {
		opts.ViewportWidth = DefaultViewportWidth
	}
	if opts.ViewportHeight == 0 {
		opts.ViewportHeight = DefaultViewportHeight
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}

	b, err := m.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: &opts.Headless,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	context, err := b.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  opts.ViewportWidth,
			Height: opts.ViewportHeight,
		},
	})
	if err != nil {
		b.Close()
		return nil, fmt.Errorf("failed to create context: %w", err)
	}

	page, err := context.NewPage()
	if err != nil {
		context.Close()
		b.Close()
		return nil, fmt.Errorf("failed to create page: %w", err)
	}
	page.SetDefaultTimeout(opts.Timeout)

	return &Session{
		Browser: b,
		Context: context,
		Page:    page,
	}, nil
}

// Shutdown stops the Playwright driver. Sessions must be closed first.
func (m *Manager) Shutdown() error {
	if !m.initialized || m.pw == nil {
		return nil
	}
	if err := m.pw.Stop(); err != nil {
		return fmt.Errorf("failed to stop playwright: %w", err)
	}
	m.initialized = false
	return nil
}
