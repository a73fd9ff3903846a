package store

import (
	"path/filepath"
	"testing"

	"jobradar/internal/model"
)

func openTestArchive(t *testing.T) *Archive {
	t.Helper()
	a, err := OpenArchive(filepath.Join(t.TempDir(), "archive.db"))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	t.Cleanup(func() { a.Close() })
	return a
}

func posting(id int, company, title string) model.Posting {
	return model.Posting{
		Candidate: model.Candidate{
			ID:        id,
			Company:   company,
			Title:     title,
			DetailURL: "https://x.test/post-" + title,
		},
		Summary:       "summary",
		CategoryLabel: "AI",
	}
}

func TestArchive_RecordAndRecent(t *testing.T) {
	a := openTestArchive(t)

	runID := NewRunID()
	err := a.Record(runID, "inthiswork", false, []model.Posting{
		posting(101, "Acme", "ML Engineer"),
		posting(103, "Globex", "Data Analyst"),
	})
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := a.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	for _, r := range rows {
		if r.RunID != runID {
			t.Errorf("run id = %q, want %q", r.RunID, runID)
		}
		if r.Simulated {
			t.Error("production rows must not be flagged simulated")
		}
	}
}

func TestArchive_SimulatedFlag(t *testing.T) {
	a := openTestArchive(t)

	if err := a.Record(NewRunID(), "inthiswork", true, []model.Posting{posting(5, "A", "B")}); err != nil {
		t.Fatalf("record: %v", err)
	}

	rows, err := a.Recent(1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 1 || !rows[0].Simulated {
		t.Fatalf("dry-run capture not flagged: %+v", rows)
	}
}

func TestArchive_RecordEmptyIsNoop(t *testing.T) {
	a := openTestArchive(t)
	if err := a.Record(NewRunID(), "s", false, nil); err != nil {
		t.Fatalf("record empty: %v", err)
	}
	rows, err := a.Recent(10)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows, want 0", len(rows))
	}
}

func TestArchive_RecentLimit(t *testing.T) {
	a := openTestArchive(t)
	runID := NewRunID()
	var ps []model.Posting
	for i := 0; i < 5; i++ {
		ps = append(ps, posting(i, "C", "T"))
	}
	if err := a.Record(runID, "s", false, ps); err != nil {
		t.Fatalf("record: %v", err)
	}
	rows, err := a.Recent(3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rows))
	}
}
