// Package history keeps a ledger of normalization runs in SQLite, one row
// per committed run.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	_ "modernc.org/sqlite"

	"github.com/crimson-sun/fareline/internal/model"
)

// Run is one ledger row.
type Run struct {
	RunID            string
	Generated        time.Time
	TotalRaw         int
	TotalNormalized  int
	TotalQuarantined int
	TotalRepaired    int
	CountsByTag      map[model.VariantTag]int
}

// Ledger records run summaries.
type Ledger struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the ledger database at path.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, errors.Wrap(err, "history: create directory")
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "history: open database")
	}
	// One connection keeps sqlite writes serialized.
	db.SetMaxOpenConns(1)

	l := &Ledger{db: db, path: path}
	if err := l.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *Ledger) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL UNIQUE,
		generated TEXT NOT NULL,
		total_raw INTEGER NOT NULL,
		total_normalized INTEGER NOT NULL,
		total_quarantined INTEGER NOT NULL,
		total_repaired INTEGER NOT NULL,
		counts_by_tag TEXT NOT NULL
	);`
	if _, err := l.db.Exec(schema); err != nil {
		return errors.Wrapf(err, "history: initialize %s", l.path)
	}
	return nil
}

// Record appends a run. Recording the same run id twice is an error.
func (l *Ledger) Record(ctx context.Context, s model.AuditSummary) error {
	if s.Meta.RunID == "" {
		return errors.New("history: run id is required")
	}
	counts, err := json.Marshal(s.CountsByTag)
	if err != nil {
		return errors.Wrap(err, "history: encode counts")
	}
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, generated, total_raw, total_normalized, total_quarantined, total_repaired, counts_by_tag)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.Meta.RunID,
		s.Meta.Generated.UTC().Format(time.RFC3339Nano),
		s.Meta.TotalRaw,
		s.Meta.TotalNormalized,
		s.Meta.TotalQuarantined,
		s.Meta.TotalRepaired,
		string(counts),
	)
	if err != nil {
		return errors.Wrapf(err, "history: record run %s", s.Meta.RunID)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := l.db.QueryContext(ctx,
		`SELECT run_id, generated, total_raw, total_normalized, total_quarantined, total_repaired, counts_by_tag
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "history: query runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var (
			r         Run
			generated string
			counts    string
		)
		if err := rows.Scan(&r.RunID, &generated, &r.TotalRaw, &r.TotalNormalized, &r.TotalQuarantined, &r.TotalRepaired, &counts); err != nil {
			return nil, errors.Wrap(err, "history: scan run")
		}
		if r.Generated, err = time.Parse(time.RFC3339Nano, generated); err != nil {
			return nil, errors.Wrapf(err, "history: run %s has bad timestamp", r.RunID)
		}
		if err := json.Unmarshal([]byte(counts), &r.CountsByTag); err != nil {
			return nil, errors.Wrapf(err, "history: run %s has bad counts", r.RunID)
		}
		runs = append(runs, r)
	}
	return runs, errors.Wrap(rows.Err(), "history: iterate runs")
}

// Close releases the database.
func (l *Ledger) Close() error {
	return l.db.Close()
}
