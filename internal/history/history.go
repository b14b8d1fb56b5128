// Package history records scenario, smoke and seed runs in a local SQLite
// database.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// Run kinds.
const (
	KindScenario = "scenario"
	KindSmoke    = "smoke"
	KindSeed     = "seed"
	KindWeb      = "web"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id          TEXT PRIMARY KEY,
    kind        TEXT NOT NULL,
    name        TEXT NOT NULL,
    ok          INTEGER NOT NULL,
    started_ns  INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    detail      TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_ns);
CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind, started_ns);
`

// Run is one recorded execution.
type Run struct {
	ID       string        `yaml:"id"               json:"id"`
	Kind     string        `yaml:"kind"             json:"kind"`
	Name     string        `yaml:"name"             json:"name"`
	OK       bool          `yaml:"ok"               json:"ok"`
	Started  time.Time     `yaml:"started"          json:"started"`
	Duration time.Duration `yaml:"duration"         json:"duration"`
	Detail   string        `yaml:"detail,omitempty" json:"detail,omitempty"`
}

// Store is the run history database.
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open history: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts r, assigning an ID when it has none. It returns the ID.
func (s *Store) Record(ctx context.Context, r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Started.IsZero() {
		r.Started = time.Now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, kind, name, ok, started_ns, duration_ms, detail)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Kind, r.Name, r.OK, r.Started.UnixNano(), r.Duration.Milliseconds(), r.Detail,
	)
	if err != nil {
		return "", fmt.Errorf("record run: %w", err)
	}
	return r.ID, nil
}

// Recent returns up to limit runs, newest first. An empty kind matches all.
func (s *Store) Recent(ctx context.Context, kind string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, name, ok, started_ns, duration_ms, COALESCE(detail, '')
		FROM runs
		WHERE (? = '' OR kind = ?)
		ORDER BY started_ns DESC
		LIMIT ?`, kind, kind, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var startedNs, durationMs int64
		if err := rows.Scan(&r.ID, &r.Kind, &r.Name, &r.OK, &startedNs, &durationMs, &r.Detail); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Started = time.Unix(0, startedNs)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Stats summarises recorded runs per kind.
type Stats struct {
	Kind   string `yaml:"kind"   json:"kind"`
	Total  int    `yaml:"total"  json:"total"`
	Passed int    `yaml:"passed" json:"passed"`
}

// Summary returns run counts grouped by kind.
func (s *Store) Summary(ctx context.Context) ([]Stats, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, COUNT(*), SUM(ok) FROM runs GROUP BY kind ORDER BY kind`)
	if err != nil {
		return nil, fmt.Errorf("summarise runs: %w", err)
	}
	defer rows.Close()
	var out []Stats
	for rows.Next() {
		var st Stats
		if err := rows.Scan(&st.Kind, &st.Total, &st.Passed); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
