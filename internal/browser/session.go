package browser

import (
	"fmt"

	"github.com/playwright-community/playwright-go"
)

// Session owns one playwright runtime, one headless Chromium, and one page
// shared by every site in a run.
type Session struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	page    playwright.Page
}

// NewSession launches playwright and a headless Chromium with a fresh page.
// Callers must Close the session on every exit path.
func NewSession() (*Session, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("launch playwright: %w", err)
	}

	b, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	page, err := b.NewPage()
	if err != nil {
		b.Close()
		pw.Stop()
		return nil, fmt.Errorf("open page: %w", err)
	}

	return &Session{pw: pw, browser: b, page: page}, nil
}

// Page returns the shared page instance.
func (s *Session) Page() playwright.Page {
	return s.page
}

// Close tears the browser and the playwright runtime down. It keeps going
// past individual close failures so nothing is leaked; the first error wins.
func (s *Session) Close() error {
	var firstErr error
	if s.browser != nil {
		if err := s.browser.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close browser: %w", err)
		}
	}
	if s.pw != nil {
		if err := s.pw.Stop(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("stop playwright: %w", err)
		}
	}
	return firstErr
}
