package adapter

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupPlaywright launches a local headless browser for route-mocked tests.
// Requires the playwright browsers to be installed, so it is skipped in
// short mode.
func setupPlaywright(t *testing.T) playwright.Page {
	t.Helper()
	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright unavailable: %v", err)
	}
	t.Cleanup(func() { pw.Stop() })

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	require.NoError(t, err)
	t.Cleanup(func() { browser.Close() })

	page, err := browser.NewPage()
	require.NoError(t, err)
	return page
}

const mockListingHTML = `<html><body>
<div id="dpt-wrapper-1">
  <div class="dpt-entry" data-id="post-101" data-category="신입" data-title="Acme ｜ ML Engineer">
    <a href="https://jobs.test/101">go</a>
    <span class="dpt-cat-link">신입</span>
  </div>
  <div class="dpt-entry" data-id="post-103" data-category="경력" data-title="Globex ｜ Senior Engineer">
    <a href="https://jobs.test/103">go</a>
    <span class="dpt-cat-link">경력</span>
  </div>
  <div class="dpt-entry" data-id="post-98" data-category="신입" data-title="Old ｜ Stale Posting">
    <a href="https://jobs.test/98">go</a>
  </div>
</div>
</body></html>`

func TestInThisWork_ScanListing_Mocked(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	page := setupPlaywright(t)

	err := page.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html"),
			Body:        mockListingHTML,
		})
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewInThisWork(page, "신입", logger)

	candidates, newest, err := a.ScanListing(context.Background(), "https://listing.test/jobs", 100)
	require.NoError(t, err)

	// 98 is below the cursor, 103 lacks the entry tag; only 101 survives,
	// but the cursor still advances to 103.
	require.Len(t, candidates, 1)
	assert.Equal(t, 101, candidates[0].ID)
	assert.Equal(t, "Acme", candidates[0].Company)
	assert.Equal(t, "ML Engineer", candidates[0].Title)
	assert.Equal(t, "https://jobs.test/101", candidates[0].DetailURL)
	assert.Equal(t, 103, newest)
}

func TestInThisWork_ScanListing_NoContainer(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}
	page := setupPlaywright(t)

	err := page.Route("**/*", func(route playwright.Route) {
		route.Fulfill(playwright.RouteFulfillOptions{
			Status:      playwright.Int(200),
			ContentType: playwright.String("text/html"),
			Body:        "<html><body><p>maintenance</p></body></html>",
		})
	})
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	a := NewInThisWork(page, "신입", logger)

	candidates, newest, err := a.ScanListing(context.Background(), "https://listing.test/jobs", 42)
	require.NoError(t, err, "missing container is a soft no-data condition")
	assert.Empty(t, candidates)
	assert.Equal(t, 42, newest, "cursor unchanged")
}
