package adapter

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"

	"jobradar/internal/model"
)

// fallbackCompany is used when the listing title carries no company part.
const fallbackCompany = "Company"

// titleDelimiter separates company from title in listing entries
// ("회사명 ｜ 공고제목"). The site uses the fullwidth bar.
const titleDelimiter = "｜"

var digitRun = regexp.MustCompile(`\d+`)

// extractID pulls the first digit run out of a site-native identifier
// ("post-1234" -> 1234). Unparseable input maps to the NoCursor sentinel,
// which is lower than any real cursor, so such entries are always skipped.
func extractID(raw string) int {
	match := digitRun.FindString(raw)
	if match == "" {
		return model.NoCursor
	}
	id, err := strconv.Atoi(match)
	if err != nil {
		return model.NoCursor
	}
	return id
}

// splitTitle parses a combined "company ｜ title" field. Without the
// delimiter the whole string is the title and the company falls back to a
// placeholder.
func splitTitle(full string) (company, title string) {
	full = strings.TrimSpace(full)
	if left, right, found := strings.Cut(full, titleDelimiter); found {
		company = strings.TrimSpace(left)
		title = strings.TrimSpace(right)
	} else {
		title = full
	}
	if company == "" {
		company = fallbackCompany
	}
	return company, title
}

// foldText normalizes text for tag matching: NFC composition, fullwidth to
// halfwidth, lowercase. The site renders category text inconsistently
// between the data attribute and the visible label.
func foldText(s string) string {
	return strings.ToLower(width.Fold.String(norm.NFC.String(s)))
}

// matchesTag reports whether the entry-level tag appears in either the
// structured category attribute or the visible category text. One match in
// either place is enough.
func matchesTag(categoryAttr, categoryText, tag string) bool {
	if tag == "" {
		return true
	}
	folded := foldText(tag)
	return strings.Contains(foldText(categoryAttr), folded) ||
		strings.Contains(foldText(categoryText), folded)
}

// collapseSpace reduces all whitespace runs to single spaces.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// rasterImage reports whether src points at a usable raster image:
// jpg or png, and not an inline data URI.
func rasterImage(src string) bool {
	if src == "" || strings.HasPrefix(src, "data:") {
		return false
	}
	return strings.Contains(src, "jpg") || strings.Contains(src, "png")
}

// pickImage returns the first usable image source, or "".
func pickImage(srcs []string) string {
	for _, src := range srcs {
		if rasterImage(src) {
			return src
		}
	}
	return ""
}

// joinBlocks concatenates content-wrapper texts longer than the noise
// threshold, the fallback when the main content block is missing.
func joinBlocks(blocks []string) string {
	const noiseThreshold = 30
	var kept []string
	for _, b := range blocks {
		b = strings.TrimSpace(b)
		if len([]rune(b)) > noiseThreshold {
			kept = append(kept, b)
		}
	}
	return strings.Join(kept, "\n")
}

// listingEntry is the raw markup harvest for one listing row, before any
// cursor or tag decision.
type listingEntry struct {
	NativeID     string // data-id attribute
	CategoryAttr string // data-category attribute
	CategoryText string // visible category label
	FullTitle    string // combined "company ｜ title"
	Href         string // detail link; listing URL when absent
}

// collectCandidates applies the incremental-crawl rules to scanned entries:
// skip ids at or below the cursor, require the entry-level tag, parse the
// combined title. The returned cursor is the maximum id over ALL examined
// entries, so skipped and filtered rows are never re-examined either.
func collectCandidates(entries []listingEntry, cursor int, entryTag string) ([]model.Candidate, int) {
	newest := cursor
	var out []model.Candidate

	for _, e := range entries {
		id := extractID(e.NativeID)
		if id > newest {
			newest = id
		}
		if id <= cursor {
			continue
		}
		if !matchesTag(e.CategoryAttr, e.CategoryText, entryTag) {
			continue
		}

		company, title := splitTitle(e.FullTitle)
		rawCategory := e.CategoryText
		if rawCategory == "" {
			rawCategory = e.CategoryAttr
		}
		out = append(out, model.Candidate{
			ID:          id,
			DetailURL:   e.Href,
			Company:     company,
			Title:       title,
			RawCategory: rawCategory,
		})
	}

	return out, newest
}
