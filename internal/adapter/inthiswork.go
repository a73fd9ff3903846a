package adapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/playwright-community/playwright-go"

	"jobradar/internal/model"
)

// Ensure InThisWork implements model.SiteAdapter.
var _ model.SiteAdapter = (*InThisWork)(nil)

// InThisWork scrapes the inthiswork.com listing board. The listing is fully
// client-side rendered, so scans wait for network idle before touching the
// DOM.
type InThisWork struct {
	page     playwright.Page
	entryTag string
	logger   *slog.Logger
}

// NewInThisWork returns an adapter bound to the shared browser page.
// entryTag is the listing-level pre-filter keyword ("신입" in production).
func NewInThisWork(page playwright.Page, entryTag string, logger *slog.Logger) *InThisWork {
	return &InThisWork{
		page:     page,
		entryTag: entryTag,
		logger:   logger,
	}
}

// ScanListing loads the listing page and returns candidates newer than
// cursor, plus the highest id observed among all rows examined.
func (a *InThisWork) ScanListing(_ context.Context, url string, cursor int) ([]model.Candidate, int, error) {
	a.logger.Info("scanning listing", "url", url, "cursor", cursor)

	if _, err := a.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(60000),
	}); err != nil {
		return nil, cursor, fmt.Errorf("load listing %s: %w", url, err)
	}

	wrapper := a.page.Locator("[id^='dpt-wrapper']").First()
	if count, err := wrapper.Count(); err != nil || count == 0 {
		// Soft no-data condition: the board renders no results container
		// when empty. Not an error, cursor unchanged.
		a.logger.Info("no results container on listing", "url", url)
		return nil, cursor, nil
	}

	rows, err := wrapper.Locator("div.dpt-entry[data-id]").All()
	if err != nil {
		return nil, cursor, fmt.Errorf("enumerate listing entries: %w", err)
	}

	entries := make([]listingEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, a.harvestEntry(row, url))
	}

	candidates, newest := collectCandidates(entries, cursor, a.entryTag)
	a.logger.Info("listing scanned",
		"url", url,
		"entries", len(entries),
		"candidates", len(candidates),
		"new_cursor", newest,
	)
	return candidates, newest, nil
}

// harvestEntry reads the raw attributes of one listing row. Missing pieces
// degrade to empty strings; the parse layer decides what survives.
func (a *InThisWork) harvestEntry(row playwright.Locator, listingURL string) listingEntry {
	e := listingEntry{Href: listingURL}

	if v, err := row.GetAttribute("data-id"); err == nil && v != "" {
		e.NativeID = v
	}
	if v, err := row.GetAttribute("data-category"); err == nil {
		e.CategoryAttr = v
	}

	catLabel := row.Locator(".dpt-cat-link").First()
	if count, err := catLabel.Count(); err == nil && count > 0 {
		if v, err := catLabel.TextContent(); err == nil {
			e.CategoryText = v
		}
	}

	if v, err := row.GetAttribute("data-title"); err == nil && v != "" {
		e.FullTitle = v
	} else if v, err := row.TextContent(); err == nil {
		e.FullTitle = v
	}

	link := row.Locator("a").First()
	if count, err := link.Count(); err == nil && count > 0 {
		if href, err := link.GetAttribute("href"); err == nil && href != "" {
			e.Href = href
		}
	}

	return e
}

// FetchDetail loads the candidate's detail page and extracts the apply
// link, body text, and a representative image. Any failure returns the
// candidate's base fields unchanged; a broken detail page never aborts the
// run.
func (a *InThisWork) FetchDetail(_ context.Context, c model.Candidate) model.Posting {
	p := model.Posting{Candidate: c}

	if err := a.fillDetail(&p); err != nil {
		a.logger.Warn("detail fetch degraded to listing fields",
			"url", c.DetailURL,
			"posting_id", c.ID,
			"error", err,
		)
	}
	return p
}

func (a *InThisWork) fillDetail(p *model.Posting) error {
	// Content-loaded is enough here; the detail page is server-rendered.
	if _, err := a.page.Goto(p.DetailURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(40000),
	}); err != nil {
		return fmt.Errorf("load detail %s: %w", p.DetailURL, err)
	}

	p.ApplyURL = a.findApplyLink()
	p.BodyText = a.extractBody()
	p.ImageURL = a.findImage()
	return nil
}

// findApplyLink looks for the dedicated apply button, first by its
// structural class, then by its visible text. Empty when neither matches;
// the delivery layer falls back to the listing URL.
func (a *InThisWork) findApplyLink() string {
	for _, selector := range []string{"a.maxbutton-6", "a:has-text('지원하러 가기')"} {
		btn := a.page.Locator(selector).First()
		if count, err := btn.Count(); err != nil || count == 0 {
			continue
		}
		if href, err := btn.GetAttribute("href"); err == nil && href != "" {
			return href
		}
	}
	return ""
}

// extractBody reads the main content block, falling back to concatenating
// all column wrappers above the noise threshold. Whitespace is collapsed.
func (a *InThisWork) extractBody() string {
	content := a.page.Locator(".fusion-content-tb").First()
	if count, err := content.Count(); err == nil && count > 0 {
		if text, err := content.TextContent(); err == nil {
			return collapseSpace(text)
		}
	}

	wrappers, err := a.page.Locator(".fusion-column-wrapper").All()
	if err != nil {
		return ""
	}
	blocks := make([]string, 0, len(wrappers))
	for _, w := range wrappers {
		if text, err := w.TextContent(); err == nil {
			blocks = append(blocks, text)
		}
	}
	return collapseSpace(joinBlocks(blocks))
}

// findImage scans img elements inside the content block (whole page when
// the block is missing) and returns the first usable raster source.
func (a *InThisWork) findImage() string {
	scope := ".fusion-content-tb img"
	if count, err := a.page.Locator(".fusion-content-tb").First().Count(); err != nil || count == 0 {
		scope = "body img"
	}

	imgs, err := a.page.Locator(scope).All()
	if err != nil {
		return ""
	}
	srcs := make([]string, 0, len(imgs))
	for _, img := range imgs {
		if src, err := img.GetAttribute("src"); err == nil {
			srcs = append(srcs, src)
		}
	}
	return pickImage(srcs)
}
