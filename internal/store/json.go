package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"jobradar/internal/model"
)

// JSONCursorStore persists the site registry in a single JSON document:
//
//	{"data": [{"homepage": "...", "url": "...", "latestPostIndex": 123}, ...]}
//
// The file is read wholesale at run start and rewritten wholesale at run
// end, only when a cursor actually advanced in a non-simulation run.
type JSONCursorStore struct {
	path string
}

// NewJSONCursorStore returns a store backed by the file at path.
func NewJSONCursorStore(path string) *JSONCursorStore {
	return &JSONCursorStore{path: path}
}

type siteDocument struct {
	Data []siteEntry `json:"data"`
}

type siteEntry struct {
	Homepage        string `json:"homepage"`
	URL             string `json:"url"`
	LatestPostIndex int    `json:"latestPostIndex"`
}

// Load reads the registry. A missing file is an empty registry, not an error.
func (s *JSONCursorStore) Load() ([]model.Site, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cursor store: %w", err)
	}

	var doc siteDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse cursor store %s: %w", s.path, err)
	}

	sites := make([]model.Site, 0, len(doc.Data))
	for _, e := range doc.Data {
		sites = append(sites, model.Site{
			Name:          e.Homepage,
			URL:           e.URL,
			LastSeenIndex: e.LatestPostIndex,
		})
	}
	return sites, nil
}

// Save rewrites the whole registry, human-readable, UTF-8 as-is.
func (s *JSONCursorStore) Save(sites []model.Site) error {
	doc := siteDocument{Data: make([]siteEntry, 0, len(sites))}
	for _, site := range sites {
		doc.Data = append(doc.Data, siteEntry{
			Homepage:        site.Name,
			URL:             site.URL,
			LatestPostIndex: site.LastSeenIndex,
		})
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode cursor store: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create cursor store dir: %w", err)
		}
	}
	if err := os.WriteFile(s.path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write cursor store: %w", err)
	}
	return nil
}
