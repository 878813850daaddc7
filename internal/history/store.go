// Package history persists decisions and pipeline events to SQLite so a
// session can be audited or replayed after the fact.
package history

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/clduab11/poker-helper/internal/decide"
	"github.com/clduab11/poker-helper/internal/game"
)

// #region schema
const schema = `
CREATE TABLE IF NOT EXISTS decisions (
	decision_id   TEXT PRIMARY KEY,
	state_hash    TEXT NOT NULL,
	action        TEXT NOT NULL,
	amount        REAL NOT NULL,
	confidence    REAL NOT NULL,
	rationale     TEXT,
	provider      TEXT NOT NULL,
	cached        INTEGER NOT NULL,
	fallback      INTEGER NOT NULL,
	latency_ms    INTEGER NOT NULL,
	created_at    TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS pipeline_events (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	state_hash    TEXT,
	event         TEXT NOT NULL,
	detail        TEXT,
	created_at    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_decisions_created ON decisions(created_at);
CREATE INDEX IF NOT EXISTS idx_events_created ON pipeline_events(created_at);
`

// #endregion schema

// #region types

// DecisionRecord is one persisted decision.
type DecisionRecord struct {
	DecisionID string
	StateHash  string
	Action     game.Action
	Amount     float64
	Confidence float64
	Rationale  string
	Provider   string
	Cached     bool
	Fallback   bool
	Latency    time.Duration
	CreatedAt  time.Time
}

// Event names for the pipeline event log.
const (
	EventAccepted   = "accepted"   // state change passed significance and rate gates
	EventSuppressed = "suppressed" // change stored but notification withheld
	EventRejected   = "rejected"   // snapshot failed validation
	EventRecovered  = "recovered"  // pipeline recovered a failed module
)

// SessionStats summarizes a stored session.
type SessionStats struct {
	Decisions  int
	CacheHits  int
	Fallbacks  int
	AvgLatency time.Duration
	ByAction   map[game.Action]int
}

// #endregion types

// #region store

// Store manages decision history in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Shutdown implements the registry shutdown hook.
func (s *Store) Shutdown() error {
	return s.Close()
}

// #endregion store

// #region writes

// RecordDecision persists a decision and returns its generated id.
func (s *Store) RecordDecision(d decide.Decision) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC()
	_, err := s.db.Exec(
		`INSERT INTO decisions (decision_id, state_hash, action, amount, confidence, rationale, provider, cached, fallback, latency_ms, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, d.StateHash, string(d.Recommendation.Action), d.Recommendation.Amount,
		d.Recommendation.Confidence, d.Recommendation.Rationale, d.Provider,
		boolInt(d.Cached), boolInt(d.Fallback), d.Latency.Milliseconds(),
		now.Format(time.RFC3339Nano),
	)
	if err != nil {
		return "", fmt.Errorf("insert decision: %w", err)
	}
	return id, nil
}

// RecordEvent appends a pipeline event.
func (s *Store) RecordEvent(stateHash, event, detail string) error {
	_, err := s.db.Exec(
		`INSERT INTO pipeline_events (state_hash, event, detail, created_at) VALUES (?, ?, ?, ?)`,
		stateHash, event, detail, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// #endregion writes

// #region reads

// Recent returns the most recent decisions, newest first.
func (s *Store) Recent(limit int) ([]DecisionRecord, error) {
	if limit < 1 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT decision_id, state_hash, action, amount, confidence, rationale, provider, cached, fallback, latency_ms, created_at
		 FROM decisions ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query decisions: %w", err)
	}
	defer rows.Close()

	var out []DecisionRecord
	for rows.Next() {
		var rec DecisionRecord
		var action, createdAt string
		var cached, fallback int
		var latencyMs int64
		if err := rows.Scan(&rec.DecisionID, &rec.StateHash, &action, &rec.Amount,
			&rec.Confidence, &rec.Rationale, &rec.Provider, &cached, &fallback,
			&latencyMs, &createdAt); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		rec.Action = game.Action(action)
		rec.Cached = cached != 0
		rec.Fallback = fallback != 0
		rec.Latency = time.Duration(latencyMs) * time.Millisecond
		rec.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Stats aggregates the stored session.
func (s *Store) Stats() (SessionStats, error) {
	stats := SessionStats{ByAction: make(map[game.Action]int)}

	row := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(cached), 0), COALESCE(SUM(fallback), 0), COALESCE(AVG(latency_ms), 0) FROM decisions`)
	var avgMs float64
	if err := row.Scan(&stats.Decisions, &stats.CacheHits, &stats.Fallbacks, &avgMs); err != nil {
		return SessionStats{}, fmt.Errorf("scan stats: %w", err)
	}
	stats.AvgLatency = time.Duration(avgMs) * time.Millisecond

	rows, err := s.db.Query(`SELECT action, COUNT(*) FROM decisions GROUP BY action`)
	if err != nil {
		return SessionStats{}, fmt.Errorf("query actions: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return SessionStats{}, fmt.Errorf("scan action count: %w", err)
		}
		stats.ByAction[game.Action(action)] = count
	}
	return stats, rows.Err()
}

// #endregion reads

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
