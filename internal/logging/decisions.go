package logging

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// #region schema

const decisionLogSchema = `
CREATE TABLE IF NOT EXISTS decision_log (
    id              INTEGER PRIMARY KEY AUTOINCREMENT,
    decision_id     TEXT NOT NULL,
    query_key       TEXT NOT NULL,
    regime          TEXT NOT NULL,
    confidence      REAL NOT NULL,
    entropy_total   REAL NOT NULL,
    components_json TEXT,
    warnings_json   TEXT,
    protocol        TEXT NOT NULL,
    in_transition   INTEGER NOT NULL DEFAULT 0,
    graph_fallback  INTEGER NOT NULL DEFAULT 0,
    created_at      TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_decision_log_query ON decision_log(query_key);
`

// #endregion schema

// #region decision-log

// DecisionLog persists one row per evaluation in SQLite.
type DecisionLog struct {
	db *sql.DB
}

// NewDecisionLog initializes the decision_log table.
func NewDecisionLog(db *sql.DB) (*DecisionLog, error) {
	if _, err := db.Exec(decisionLogSchema); err != nil {
		return nil, fmt.Errorf("decision log schema: %w", err)
	}
	return &DecisionLog{db: db}, nil
}

// OpenDecisionLog opens a SQLite file and initializes the table.
func OpenDecisionLog(dbPath string) (*DecisionLog, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	return NewDecisionLog(db)
}

// Close closes the underlying database connection.
func (l *DecisionLog) Close() error {
	return l.db.Close()
}

// #endregion decision-log

// #region record

// Record persists a single decision row.
func (l *DecisionLog) Record(entry DecisionEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	_, err := l.db.Exec(
		`INSERT INTO decision_log
		 (decision_id, query_key, regime, confidence, entropy_total,
		  components_json, warnings_json, protocol, in_transition, graph_fallback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.DecisionID,
		entry.QueryKey,
		entry.Regime,
		entry.Confidence,
		entry.EntropyTotal,
		nullIfEmpty(entry.ComponentsJSON),
		nullIfEmpty(entry.WarningsJSON),
		entry.Protocol,
		boolToInt(entry.InTransition),
		boolToInt(entry.GraphFallback),
		entry.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("record decision: %w", err)
	}
	return nil
}

// #endregion record

// #region recent

// Recent returns the most recent decision rows, newest first.
func (l *DecisionLog) Recent(limit int) ([]DecisionEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := l.db.Query(
		`SELECT decision_id, query_key, regime, confidence, entropy_total,
		        components_json, warnings_json, protocol, in_transition, graph_fallback, created_at
		 FROM decision_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list decisions: %w", err)
	}
	defer rows.Close()

	var entries []DecisionEntry
	for rows.Next() {
		var e DecisionEntry
		var componentsJSON, warningsJSON sql.NullString
		var inTransition, graphFallback int
		var createdStr string
		if err := rows.Scan(
			&e.DecisionID, &e.QueryKey, &e.Regime, &e.Confidence, &e.EntropyTotal,
			&componentsJSON, &warningsJSON, &e.Protocol, &inTransition, &graphFallback, &createdStr,
		); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		e.ComponentsJSON = componentsJSON.String
		e.WarningsJSON = warningsJSON.String
		e.InTransition = inTransition != 0
		e.GraphFallback = graphFallback != 0
		e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Get returns a single decision row by decision ID.
func (l *DecisionLog) Get(decisionID string) (DecisionEntry, error) {
	var e DecisionEntry
	var componentsJSON, warningsJSON sql.NullString
	var inTransition, graphFallback int
	var createdStr string

	err := l.db.QueryRow(
		`SELECT decision_id, query_key, regime, confidence, entropy_total,
		        components_json, warnings_json, protocol, in_transition, graph_fallback, created_at
		 FROM decision_log WHERE decision_id = ?`, decisionID,
	).Scan(
		&e.DecisionID, &e.QueryKey, &e.Regime, &e.Confidence, &e.EntropyTotal,
		&componentsJSON, &warningsJSON, &e.Protocol, &inTransition, &graphFallback, &createdStr,
	)
	if err != nil {
		return DecisionEntry{}, fmt.Errorf("get decision %s: %w", decisionID, err)
	}

	e.ComponentsJSON = componentsJSON.String
	e.WarningsJSON = warningsJSON.String
	e.InTransition = inTransition != 0
	e.GraphFallback = graphFallback != 0
	e.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return e, nil
}

// #endregion recent

// #region helpers

func nullIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// #endregion helpers
