package crawl

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"jobradar/internal/model"
)

// defaultDryRunCap bounds accepted postings per site in simulation mode,
// keeping external-API cost small during testing.
const defaultDryRunCap = 3

// AdapterFactory resolves the SiteAdapter for a registered site.
type AdapterFactory func(site model.Site) (model.SiteAdapter, error)

// Archiver records a run's postings for later inspection. Optional.
type Archiver interface {
	Record(runID, site string, simulated bool, postings []model.Posting) error
}

// Crawler drives the full run: for each registered site, scan the listing
// incrementally, filter candidates through the classifier, enrich the
// survivors, queue them for delivery, and decide cursor advancement. One
// site's failure never blocks the others.
type Crawler struct {
	adapters   AdapterFactory
	classifier model.Classifier
	summarizer model.Summarizer
	notifier   model.Notifier
	store      model.CursorStore
	archive    Archiver // nil disables archiving
	simulation bool
	dryRunCap  int
	logger     *slog.Logger
}

// New wires a crawler with all its dependencies. In simulation mode the
// caller is expected to pass a non-delivering notifier.
func New(
	adapters AdapterFactory,
	classifier model.Classifier,
	summarizer model.Summarizer,
	notifier model.Notifier,
	store model.CursorStore,
	archive Archiver,
	simulation bool,
	logger *slog.Logger,
) *Crawler {
	return &Crawler{
		adapters:   adapters,
		classifier: classifier,
		summarizer: summarizer,
		notifier:   notifier,
		store:      store,
		archive:    archive,
		simulation: simulation,
		dryRunCap:  defaultDryRunCap,
		logger:     logger,
	}
}

// siteResult is one site's completed contribution to the run.
type siteResult struct {
	site     string
	postings []model.Posting
}

// Run executes one full crawl over every registered site, delivers the
// queue, and persists cursors. It returns an error only for store-level
// failures; site and posting failures are isolated and logged.
func (c *Crawler) Run(ctx context.Context) error {
	sites, err := c.store.Load()
	if err != nil {
		return fmt.Errorf("load site registry: %w", err)
	}
	if len(sites) == 0 {
		c.logger.Info("no sites registered, nothing to crawl")
		return nil
	}

	runID := uuid.NewString()
	c.logger.Info("run started",
		"run_id", runID,
		"sites", len(sites),
		"simulation", c.simulation,
	)

	var results []siteResult
	updated := false

	for i := range sites {
		site := &sites[i]
		postings, newCursor, err := c.crawlSite(ctx, *site)
		if err != nil {
			// Site-scoped isolation: zero postings from this site, cursor
			// unchanged, the rest of the run unaffected.
			c.logger.Error("site failed, skipping",
				"site", site.Name,
				"url", site.URL,
				"error", err,
			)
			continue
		}

		if len(postings) > 0 {
			results = append(results, siteResult{site: site.Name, postings: postings})
		}

		// Cursor advances only outside simulation, and only forward.
		// A dry run that moved the cursor would make real runs silently
		// skip postings.
		if !c.simulation && newCursor > site.LastSeenIndex {
			c.logger.Info("cursor advance scheduled",
				"site", site.Name,
				"from", site.LastSeenIndex,
				"to", newCursor,
			)
			site.LastSeenIndex = newCursor
			updated = true
		}
	}

	if err := c.commit(ctx, runID, results); err != nil {
		c.logger.Error("delivery failed", "run_id", runID, "error", err)
	}

	if updated {
		if err := c.store.Save(sites); err != nil {
			return fmt.Errorf("persist site registry: %w", err)
		}
		c.logger.Info("site registry persisted")
	}

	return nil
}

// crawlSite runs the per-site pipeline: scan, filter, enrich, queue.
// A panic anywhere inside is converted to an error at the site boundary,
// discarding whatever this site had queued so far.
func (c *Crawler) crawlSite(ctx context.Context, site model.Site) (postings []model.Posting, newCursor int, err error) {
	defer func() {
		if r := recover(); r != nil {
			postings = nil
			newCursor = site.LastSeenIndex
			err = fmt.Errorf("site pipeline panicked: %v", r)
		}
	}()

	adapter, err := c.adapters(site)
	if err != nil {
		return nil, site.LastSeenIndex, err
	}

	candidates, newCursor, err := adapter.ScanListing(ctx, site.URL, site.LastSeenIndex)
	if err != nil {
		return nil, site.LastSeenIndex, fmt.Errorf("scan listing: %w", err)
	}
	if len(candidates) == 0 {
		c.logger.Info("no new postings", "site", site.Name)
		return nil, newCursor, nil
	}

	accepted := 0
	for _, cand := range candidates {
		if c.simulation && accepted >= c.dryRunCap {
			c.logger.Info("dry-run cap reached, skipping rest of site",
				"site", site.Name,
				"cap", c.dryRunCap,
			)
			break
		}

		filterKey := cand.Company + " " + cand.Title
		if !c.classifier.Relevant(ctx, filterKey) {
			c.logger.Info("filtered out", "site", site.Name, "posting", filterKey)
			continue
		}
		c.logger.Info("relevant posting found", "site", site.Name, "posting", filterKey)

		p := adapter.FetchDetail(ctx, cand)
		p.Summary = c.summarizer.Summarize(ctx, model.SummarizeRequest{
			Text:     p.BodyText,
			Company:  p.Company,
			Title:    p.Title,
			ImageURL: p.ImageURL,
		})
		p.CategoryLabel = c.classifier.Classify(ctx, filterKey)

		postings = append(postings, p)
		accepted++
	}

	return postings, newCursor, nil
}

// commit delivers the run's queue and archives it. In simulation mode the
// injected notifier only surfaces the queue; the archive rows are flagged
// simulated.
func (c *Crawler) commit(ctx context.Context, runID string, results []siteResult) error {
	var queue []model.Posting
	for _, r := range results {
		queue = append(queue, r.postings...)
	}

	if len(queue) == 0 {
		c.logger.Info("no postings to deliver", "run_id", runID)
		return nil
	}

	if err := c.notifier.Notify(ctx, queue); err != nil {
		return err
	}

	if c.archive != nil {
		for _, r := range results {
			if err := c.archive.Record(runID, r.site, c.simulation, r.postings); err != nil {
				c.logger.Warn("archiving failed", "site", r.site, "error", err)
			}
		}
	}
	return nil
}
