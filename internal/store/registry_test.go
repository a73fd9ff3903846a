package store

import (
	"errors"
	"testing"

	"jobradar/internal/model"
)

type stubCursorStore struct {
	sites   []model.Site
	saved   []model.Site
	loadErr error
}

func (s *stubCursorStore) Load() ([]model.Site, error) {
	return s.sites, s.loadErr
}

func (s *stubCursorStore) Save(sites []model.Site) error {
	s.saved = sites
	return nil
}

func TestRegistryLoad_MergesCursorsByURL(t *testing.T) {
	declared := []model.Site{
		{Name: "inthiswork", URL: "https://inthiswork.com/archives/category/recruit", Adapter: "inthiswork", EntryTag: "신입"},
		{Name: "other", URL: "https://other.test/jobs", Adapter: "inthiswork"},
	}
	backing := &stubCursorStore{sites: []model.Site{
		{Name: "inthiswork", URL: "https://inthiswork.com/archives/category/recruit", LastSeenIndex: 4321},
		{Name: "stale", URL: "https://gone.test", LastSeenIndex: 99},
	}}

	sites, err := NewRegistry(declared, backing).Load()
	if err != nil {
		t.Fatal(err)
	}

	if len(sites) != 2 {
		t.Fatalf("got %d sites, want 2", len(sites))
	}
	if sites[0].LastSeenIndex != 4321 {
		t.Errorf("known site cursor = %d, want 4321", sites[0].LastSeenIndex)
	}
	if sites[0].EntryTag != "신입" || sites[0].Adapter != "inthiswork" {
		t.Errorf("declaration fields lost: %+v", sites[0])
	}
	if sites[1].LastSeenIndex != model.NoCursor {
		t.Errorf("new site cursor = %d, want NoCursor", sites[1].LastSeenIndex)
	}
}

func TestRegistryLoad_PropagatesStoreError(t *testing.T) {
	backing := &stubCursorStore{loadErr: errors.New("corrupt")}
	if _, err := NewRegistry(nil, backing).Load(); err == nil {
		t.Fatal("expected error")
	}
}

func TestRegistrySave_Delegates(t *testing.T) {
	backing := &stubCursorStore{}
	sites := []model.Site{{Name: "s", URL: "u", LastSeenIndex: 7}}
	if err := NewRegistry(sites, backing).Save(sites); err != nil {
		t.Fatal(err)
	}
	if len(backing.saved) != 1 || backing.saved[0].LastSeenIndex != 7 {
		t.Errorf("saved = %+v", backing.saved)
	}
}
