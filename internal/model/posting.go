package model

import "context"

// NoCursor is the sentinel for "nothing seen yet". It is lower than any
// valid posting id, so every real posting passes the cursor comparison.
const NoCursor = -1

// Site is one registered listing page plus its crawl cursor.
type Site struct {
	Name          string // display name ("homepage" in the data file)
	URL           string // paginated listing page
	Adapter       string // adapter key, e.g. "inthiswork"
	EntryTag      string // listing-level pre-filter keyword, e.g. "신입"
	LastSeenIndex int    // highest posting id already processed; NoCursor if none
}

// Candidate is a minimally-parsed posting found on a listing page.
type Candidate struct {
	ID          int // site-native numeric id; NoCursor if unparseable
	DetailURL   string
	Company     string
	Title       string
	RawCategory string // category as displayed on the listing
}

// Posting is a Candidate enriched with detail-page content and AI output.
// It is run-scoped: built for delivery, never persisted as state.
type Posting struct {
	Candidate
	ApplyURL      string // dedicated apply link; empty if none found
	BodyText      string // detail-page text, whitespace-collapsed
	ImageURL      string // representative image; empty if none
	Summary       string // generated summary (or the failure sentinel)
	CategoryLabel string // classifier output
}

// SiteAdapter scans a listing page incrementally and fetches posting detail.
// One implementation per supported site.
type SiteAdapter interface {
	// ScanListing returns candidates whose id is strictly greater than
	// cursor, in listing order, together with the highest id observed
	// among all entries examined (the new cursor). A missing results
	// container is not an error: it returns (nil, cursor, nil).
	ScanListing(ctx context.Context, url string, cursor int) ([]Candidate, int, error)

	// FetchDetail loads the candidate's detail page and fills in apply
	// link, body text, and image. A fetch failure degrades to the
	// candidate's base fields; it never fails the run.
	FetchDetail(ctx context.Context, c Candidate) Posting
}

// Classifier labels a text with one of a fixed closed set of categories.
type Classifier interface {
	// Classify never fails: backend errors and too-short inputs yield
	// the default label.
	Classify(ctx context.Context, text string) string

	// Relevant reports whether Classify(text) lands in the positive set.
	Relevant(ctx context.Context, text string) bool
}

// SummarizeRequest carries everything the summarizer needs for one posting.
type SummarizeRequest struct {
	Text     string
	Company  string
	Title    string
	ImageURL string // optional; fetch failure degrades to text-only
}

// Summarizer produces a structured summary for a posting.
type Summarizer interface {
	// Summarize never fails: exhausted retries and hard errors yield a
	// fixed failure-sentinel string instead.
	Summarize(ctx context.Context, req SummarizeRequest) string
}

// Notifier delivers enriched postings to the outbound channel.
type Notifier interface {
	Notify(ctx context.Context, postings []Posting) error
}

// CursorStore is the durable site registry with per-site cursors.
type CursorStore interface {
	Load() ([]Site, error)
	Save(sites []Site) error
}
