package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/danielpatrickdp/validity-filter/internal/evidence"
	"github.com/danielpatrickdp/validity-filter/internal/graphstore"
)

// #region fixture

type fixtureNode struct {
	ID          string   `json:"id"`
	Confidence  float64  `json:"confidence"`
	Definitions []string `json:"definitions,omitempty"`
	Conflicts   []string `json:"conflicts,omitempty"`
}

type fixtureEdge struct {
	Source      string  `json:"source"`
	Target      string  `json:"target"`
	Type        string  `json:"type"`
	Confidence  float64 `json:"confidence"`
	Timestamped bool    `json:"timestamped"`
}

type fixtureQuery struct {
	Key   string        `json:"key"`
	Nodes []fixtureNode `json:"nodes"`
	Edges []fixtureEdge `json:"edges"`
}

type fixture struct {
	Queries []fixtureQuery `json:"queries"`
}

// #endregion fixture

// #region main
func main() {
	dbPath := envOr("FILTER_DB", "validity_filter.db")

	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: bootstrap-graph fixture.json")
		os.Exit(2)
	}
	fixturePath := os.Args[1]

	fmt.Println("=== Graph Bootstrap Tool ===")
	fmt.Printf("  DB: %s | Fixture: %s\n", dbPath, fixturePath)

	data, err := os.ReadFile(fixturePath)
	if err != nil {
		log.Fatalf("read fixture: %v", err)
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		log.Fatalf("parse fixture: %v", err)
	}
	if len(fx.Queries) == 0 {
		fmt.Println("No queries in fixture. Done.")
		return
	}

	store, err := graphstore.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open graph store: %v", err)
	}
	defer store.Close()

	// Phase 1: concept nodes
	fmt.Println("\n--- Phase 1: Nodes ---")
	nodeCount := 0
	for _, q := range fx.Queries {
		for _, n := range q.Nodes {
			node := evidence.Node{
				ID:          n.ID,
				Confidence:  n.Confidence,
				Definitions: n.Definitions,
				Conflicts:   n.Conflicts,
			}
			if err := store.UpsertNode(q.Key, node); err != nil {
				log.Printf("node error for %s/%s: %v", q.Key, n.ID, err)
				continue
			}
			nodeCount++
		}
	}
	fmt.Printf("  Total nodes: %d\n", nodeCount)

	// Phase 2: edges
	fmt.Println("\n--- Phase 2: Edges ---")
	edgeCount := 0
	for _, q := range fx.Queries {
		for _, e := range q.Edges {
			if err := store.AddEdge(q.Key, e.Source, e.Target, e.Type, e.Confidence, e.Timestamped); err != nil {
				log.Printf("edge error for %s: %v", q.Key, err)
				continue
			}
			edgeCount++
		}
	}
	fmt.Printf("  Total edges: %d\n", edgeCount)

	// Phase 3: stamp a snapshot so drift history accumulates
	fmt.Println("\n--- Phase 3: Snapshot ---")
	if err := store.RecordSnapshot(); err != nil {
		log.Fatalf("record snapshot: %v", err)
	}
	fmt.Println("  Snapshot recorded.")

	fmt.Printf("\n=== Bootstrap Complete ===\n")
	fmt.Printf("  Query keys: %d\n", len(fx.Queries))
	fmt.Printf("  Nodes: %d | Edges: %d\n", nodeCount, edgeCount)
}

// #endregion main

// #region helpers
func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion helpers
