package graphstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/danielpatrickdp/validity-filter/internal/evidence"
	_ "modernc.org/sqlite"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS concept_nodes (
    id               INTEGER PRIMARY KEY AUTOINCREMENT,
    query_key        TEXT NOT NULL,
    node_id          TEXT NOT NULL,
    confidence       REAL NOT NULL DEFAULT 1.0,
    definitions_json TEXT,
    conflicts_json   TEXT,
    created_at       TEXT NOT NULL,
    updated_at       TEXT NOT NULL,
    UNIQUE(query_key, node_id)
);
CREATE INDEX IF NOT EXISTS idx_nodes_query ON concept_nodes(query_key);

CREATE TABLE IF NOT EXISTS concept_edges (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    query_key   TEXT NOT NULL,
    source_id   TEXT NOT NULL,
    target_id   TEXT NOT NULL,
    edge_type   TEXT NOT NULL,
    confidence  REAL NOT NULL DEFAULT 1.0,
    created_at  TEXT,
    updated_at  TEXT,
    UNIQUE(query_key, source_id, target_id, edge_type)
);
CREATE INDEX IF NOT EXISTS idx_edges_query ON concept_edges(query_key);

CREATE TABLE IF NOT EXISTS graph_snapshots (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    node_count  INTEGER NOT NULL,
    edge_count  INTEGER NOT NULL,
    created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store

// Store is a SQLite-backed knowledge-graph source. It assembles the
// query-relevant fragment consumed by the entropy aggregator.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database and runs migrations.
func Open(dbPath string) (*Store, error) {
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

// New wraps an existing database handle and runs migrations. Used when the
// decision log shares the same file.
func New(db *sql.DB) (*Store, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("graph schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying handle for sibling stores on the same file.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store

// #region fetch-subgraph

// FetchSubgraph assembles the fragment for one query key. Confidences are
// clamped and node IDs deduplicated on the way out. An unknown key yields
// an empty fragment, not an error: missing evidence is a signal.
func (s *Store) FetchSubgraph(ctx context.Context, queryKey string) (evidence.GraphFragment, error) {
	var frag evidence.GraphFragment

	nodeRows, err := s.db.QueryContext(ctx,
		`SELECT node_id, confidence, definitions_json, conflicts_json
		 FROM concept_nodes WHERE query_key = ? ORDER BY node_id`,
		queryKey,
	)
	if err != nil {
		return evidence.GraphFragment{}, fmt.Errorf("query nodes: %w", err)
	}
	defer nodeRows.Close()

	for nodeRows.Next() {
		var n evidence.Node
		var defsJSON, conflictsJSON sql.NullString
		if err := nodeRows.Scan(&n.ID, &n.Confidence, &defsJSON, &conflictsJSON); err != nil {
			return evidence.GraphFragment{}, fmt.Errorf("scan node: %w", err)
		}
		if defsJSON.Valid && defsJSON.String != "" {
			if err := json.Unmarshal([]byte(defsJSON.String), &n.Definitions); err != nil {
				return evidence.GraphFragment{}, fmt.Errorf("unmarshal definitions for %s: %w", n.ID, err)
			}
		}
		if conflictsJSON.Valid && conflictsJSON.String != "" {
			if err := json.Unmarshal([]byte(conflictsJSON.String), &n.Conflicts); err != nil {
				return evidence.GraphFragment{}, fmt.Errorf("unmarshal conflicts for %s: %w", n.ID, err)
			}
		}
		frag.Nodes = append(frag.Nodes, n)
	}
	if err := nodeRows.Err(); err != nil {
		return evidence.GraphFragment{}, fmt.Errorf("node rows: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx,
		`SELECT edge_type, confidence, created_at, updated_at
		 FROM concept_edges WHERE query_key = ? ORDER BY id`,
		queryKey,
	)
	if err != nil {
		return evidence.GraphFragment{}, fmt.Errorf("query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e evidence.Edge
		var createdAt, updatedAt sql.NullString
		if err := edgeRows.Scan(&e.Type, &e.Confidence, &createdAt, &updatedAt); err != nil {
			return evidence.GraphFragment{}, fmt.Errorf("scan edge: %w", err)
		}
		if createdAt.Valid {
			e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt.String)
		}
		if updatedAt.Valid {
			e.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt.String)
		}
		frag.Edges = append(frag.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return evidence.GraphFragment{}, fmt.Errorf("edge rows: %w", err)
	}

	return evidence.SanitizeFragment(frag), nil
}

// #endregion fetch-subgraph

// #region upsert-node

// UpsertNode inserts or replaces a node under a query key.
func (s *Store) UpsertNode(queryKey string, n evidence.Node) error {
	defsJSON, err := marshalOrNil(n.Definitions)
	if err != nil {
		return fmt.Errorf("marshal definitions: %w", err)
	}
	conflictsJSON, err := marshalOrNil(n.Conflicts)
	if err != nil {
		return fmt.Errorf("marshal conflicts: %w", err)
	}

	now := time.Now().UTC().Format(time.RFC3339)
	_, err = s.db.Exec(
		`INSERT INTO concept_nodes (query_key, node_id, confidence, definitions_json, conflicts_json, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(query_key, node_id) DO UPDATE SET
		   confidence = excluded.confidence,
		   definitions_json = excluded.definitions_json,
		   conflicts_json = excluded.conflicts_json,
		   updated_at = excluded.updated_at`,
		queryKey, n.ID, evidence.Clamp(n.Confidence), defsJSON, conflictsJSON, now, now,
	)
	if err != nil {
		return fmt.Errorf("upsert node %s: %w", n.ID, err)
	}
	return nil
}

// #endregion upsert-node

// #region add-edge

// AddEdge inserts an edge under a query key. sourceID/targetID identify the
// endpoints; when withTimestamps is false the edge is stored without
// temporal markers.
func (s *Store) AddEdge(queryKey, sourceID, targetID, edgeType string, confidence float64, withTimestamps bool) error {
	var createdAt, updatedAt interface{}
	if withTimestamps {
		now := time.Now().UTC().Format(time.RFC3339)
		createdAt, updatedAt = now, now
	}
	_, err := s.db.Exec(
		`INSERT OR IGNORE INTO concept_edges (query_key, source_id, target_id, edge_type, confidence, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		queryKey, sourceID, targetID, edgeType, evidence.Clamp(confidence), createdAt, updatedAt,
	)
	if err != nil {
		return fmt.Errorf("add edge %s→%s: %w", sourceID, targetID, err)
	}
	return nil
}

// #endregion add-edge

// #region snapshots

// RecordSnapshot stamps the current graph size into the snapshot history.
// Accumulated snapshots are what make structural drift observable at all.
func (s *Store) RecordSnapshot() error {
	var nodes, edges int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM concept_nodes`).Scan(&nodes); err != nil {
		return fmt.Errorf("count nodes: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM concept_edges`).Scan(&edges); err != nil {
		return fmt.Errorf("count edges: %w", err)
	}
	_, err := s.db.Exec(
		`INSERT INTO graph_snapshots (node_count, edge_count, created_at) VALUES (?, ?, ?)`,
		nodes, edges, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("record snapshot: %w", err)
	}
	return nil
}

// SnapshotCount returns how many snapshots exist inside the lookback
// window. UTC RFC3339 strings order lexicographically, so the cutoff
// comparison happens in SQL.
func (s *Store) SnapshotCount(window time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-window).Format(time.RFC3339)
	var n int
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM graph_snapshots WHERE created_at >= ?`, cutoff,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("count snapshots: %w", err)
	}
	return n, nil
}

// #endregion snapshots

// #region helpers

func marshalOrNil(vals []string) (interface{}, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(vals)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// #endregion helpers
