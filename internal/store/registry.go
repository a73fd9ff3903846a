package store

import (
	"jobradar/internal/model"
)

// Registry merges the declared site list with persisted cursors. The
// declaration is the source of truth for which sites exist and how they
// are scraped; the wrapped store only contributes cursor positions.
// Declared sites with no persisted entry start at model.NoCursor, and
// persisted entries for sites no longer declared are dropped on the
// next save.
type Registry struct {
	declared []model.Site
	cursors  model.CursorStore
}

var _ model.CursorStore = (*Registry)(nil)

func NewRegistry(declared []model.Site, cursors model.CursorStore) *Registry {
	return &Registry{declared: declared, cursors: cursors}
}

func (r *Registry) Load() ([]model.Site, error) {
	persisted, err := r.cursors.Load()
	if err != nil {
		return nil, err
	}

	byURL := make(map[string]int, len(persisted))
	for _, p := range persisted {
		byURL[p.URL] = p.LastSeenIndex
	}

	sites := make([]model.Site, len(r.declared))
	for i, d := range r.declared {
		site := d
		site.LastSeenIndex = model.NoCursor
		if cursor, ok := byURL[d.URL]; ok {
			site.LastSeenIndex = cursor
		}
		sites[i] = site
	}
	return sites, nil
}

func (r *Registry) Save(sites []model.Site) error {
	return r.cursors.Save(sites)
}
