// Package persistence provides SQLite-based storage of computed runs:
// logarithmic-diagram sweeps and titration curves.
package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/openchem/phdiag/internal/system"
	"github.com/openchem/phdiag/internal/titrate"
)

// Run kinds stored in the runs table.
const (
	KindDiagram   = "diagram"
	KindTitration = "titration"
)

// DB wraps a SQLite connection for run storage.
type DB struct {
	conn *sqlx.DB
}

// Run is one persisted computation.
type Run struct {
	ID        string `db:"id" json:"id"`
	Kind      string `db:"kind" json:"kind"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"created_at"`
	Meta      string `db:"meta" json:"meta"`
}

// Sample is one persisted data point. For diagrams x is pH and y a
// concentration; for titrations x is titrant volume and y the pH.
type Sample struct {
	Series string  `db:"series" json:"series"`
	Ord    int     `db:"ord" json:"ord"`
	X      float64 `db:"x" json:"x"`
	Y      float64 `db:"y" json:"y"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		created_at TEXT NOT NULL,
		meta TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		run_id TEXT NOT NULL,
		series TEXT NOT NULL,
		ord INTEGER NOT NULL,
		x REAL NOT NULL,
		y REAL NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run ON samples(run_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveDiagram stores every series of a sweep and returns the run ID.
func (db *DB) SaveDiagram(name string, d *system.Diagram) (string, error) {
	total := 0
	for _, s := range d.Series {
		total += len(s.Points)
	}
	meta, _ := json.Marshal(map[string]any{
		"series":  len(d.Series),
		"samples": total,
		"errors":  len(d.Errors),
	})

	id := uuid.NewString()
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := insertRun(tx, id, KindDiagram, name, string(meta)); err != nil {
		return "", err
	}

	stmt, err := tx.Preparex(`INSERT INTO samples (run_id, series, ord, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for _, series := range d.Series {
		for i, p := range series.Points {
			if _, err := stmt.Exec(id, series.Label, i, p.PH, p.Concentration); err != nil {
				return "", fmt.Errorf("insert sample %q/%d: %w", series.Label, i, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("diagram saved", "run", id, "series", len(d.Series), "samples", total)
	return id, nil
}

// SaveTitration stores a titration curve and returns the run ID.
func (db *DB) SaveTitration(name string, res titrate.Result) (string, error) {
	meta, _ := json.Marshal(map[string]any{
		"points":  len(res.Points),
		"skipped": len(res.Skipped),
	})

	id := uuid.NewString()
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if err := insertRun(tx, id, KindTitration, name, string(meta)); err != nil {
		return "", err
	}

	stmt, err := tx.Preparex(`INSERT INTO samples (run_id, series, ord, x, y) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	for i, p := range res.Points {
		if _, err := stmt.Exec(id, "titration", i, p.Volume, p.PH); err != nil {
			return "", fmt.Errorf("insert point %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("titration saved", "run", id, "points", len(res.Points), "skipped", len(res.Skipped))
	return id, nil
}

func insertRun(tx *sqlx.Tx, id, kind, name, meta string) error {
	_, err := tx.Exec(
		`INSERT INTO runs (id, kind, name, created_at, meta) VALUES (?, ?, ?, ?, ?)`,
		id, kind, name, time.Now().UTC().Format(time.RFC3339), meta,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", id, err)
	}
	return nil
}

// RecentRuns returns the most recently stored runs, newest first.
func (db *DB) RecentRuns(limit int) ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs,
		`SELECT id, kind, name, created_at, meta FROM runs ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	return runs, err
}

// Run retrieves one run by ID.
func (db *DB) Run(id string) (Run, error) {
	var run Run
	err := db.conn.Get(&run,
		`SELECT id, kind, name, created_at, meta FROM runs WHERE id = ?`, id)
	return run, err
}

// RunSamples retrieves the data points of a run in stored order.
func (db *DB) RunSamples(id string) ([]Sample, error) {
	var samples []Sample
	err := db.conn.Select(&samples,
		`SELECT series, ord, x, y FROM samples WHERE run_id = ? ORDER BY series, ord`, id)
	return samples, err
}
