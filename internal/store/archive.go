package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"jobradar/internal/model"
)

// Archive records delivered (and dry-run captured) postings in SQLite so
// past runs can be reviewed with the inspect command. It is write-behind
// history, not crawl state: the cursor store alone drives incremental
// crawling.
type Archive struct {
	db *sql.DB
}

// ArchivedPosting is one archived row.
type ArchivedPosting struct {
	RunID         string
	Site          string
	PostingID     int
	Company       string
	Title         string
	CategoryLabel string
	Summary       string
	DetailURL     string
	ApplyURL      string
	Simulated     bool
	DeliveredAt   time.Time
}

// OpenArchive opens (or creates) the archive database at dbPath.
func OpenArchive(dbPath string) (*Archive, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening archive db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging archive db: %w", err)
	}

	createTable := `CREATE TABLE IF NOT EXISTS postings (
		run_id       TEXT NOT NULL,
		site         TEXT NOT NULL,
		posting_id   INTEGER NOT NULL,
		company      TEXT NOT NULL,
		title        TEXT NOT NULL,
		category     TEXT,
		summary      TEXT,
		detail_url   TEXT,
		apply_url    TEXT,
		simulated    INTEGER NOT NULL DEFAULT 0,
		delivered_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := db.Exec(createTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating postings table: %w", err)
	}

	return &Archive{db: db}, nil
}

// NewRunID returns a fresh identifier grouping one run's rows.
func NewRunID() string {
	return uuid.NewString()
}

// Record inserts one run's postings under runID. Simulated rows mark
// dry-run captures; they never influence crawl state.
func (a *Archive) Record(runID, site string, simulated bool, postings []model.Posting) error {
	if len(postings) == 0 {
		return nil
	}

	tx, err := a.db.Begin()
	if err != nil {
		return fmt.Errorf("archiving run %s: %w", runID, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO postings
		(run_id, site, posting_id, company, title, category, summary, detail_url, apply_url, simulated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("archiving run %s: %w", runID, err)
	}
	defer stmt.Close()

	for _, p := range postings {
		simFlag := 0
		if simulated {
			simFlag = 1
		}
		if _, err := stmt.Exec(runID, site, p.ID, p.Company, p.Title,
			p.CategoryLabel, p.Summary, p.DetailURL, p.ApplyURL, simFlag); err != nil {
			return fmt.Errorf("archiving posting %d: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

// Recent returns up to limit archived postings, newest first.
func (a *Archive) Recent(limit int) ([]ArchivedPosting, error) {
	rows, err := a.db.Query(`SELECT run_id, site, posting_id, company, title,
		category, summary, detail_url, apply_url, simulated, delivered_at
		FROM postings ORDER BY delivered_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing archive: %w", err)
	}
	defer rows.Close()

	var out []ArchivedPosting
	for rows.Next() {
		var p ArchivedPosting
		var simFlag int
		if err := rows.Scan(&p.RunID, &p.Site, &p.PostingID, &p.Company, &p.Title,
			&p.CategoryLabel, &p.Summary, &p.DetailURL, &p.ApplyURL, &simFlag, &p.DeliveredAt); err != nil {
			return nil, fmt.Errorf("scanning archive row: %w", err)
		}
		p.Simulated = simFlag != 0
		out = append(out, p)
	}
	return out, rows.Err()
}

// Cleanup deletes archived rows older than the given duration.
func (a *Archive) Cleanup(olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	if _, err := a.db.Exec("DELETE FROM postings WHERE delivered_at < ?", cutoff); err != nil {
		return fmt.Errorf("cleaning up archive older than %v: %w", olderThan, err)
	}
	return nil
}

// Close closes the underlying database connection.
func (a *Archive) Close() error {
	return a.db.Close()
}
