package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/danielpatrickdp/validity-filter/internal/logging"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to validity_filter.db")
	last := flag.Int("last", 20, "show N most recent decisions")
	decision := flag.String("decision", "", "show single decision detail")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/validity_filter.db [--last N] [--decision id] [--json]")
		os.Exit(2)
	}

	decisions, err := logging.OpenDecisionLog(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer decisions.Close()

	if *decision != "" {
		if err := runDetailMode(decisions, *decision, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	} else {
		if err := runListMode(decisions, *last, *jsonOut); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
	}
}

// #endregion main

// #region list-mode

type listRow struct {
	DecisionID    string  `json:"decision_id"`
	QueryKey      string  `json:"query_key"`
	Regime        string  `json:"regime"`
	Confidence    float64 `json:"confidence"`
	Entropy       float64 `json:"entropy"`
	Protocol      string  `json:"protocol"`
	InTransition  bool    `json:"in_transition"`
	GraphFallback bool    `json:"graph_fallback"`
	CreatedAt     string  `json:"created_at"`
}

func toRow(e logging.DecisionEntry) listRow {
	return listRow{
		DecisionID:    e.DecisionID,
		QueryKey:      e.QueryKey,
		Regime:        e.Regime,
		Confidence:    e.Confidence,
		Entropy:       e.EntropyTotal,
		Protocol:      e.Protocol,
		InTransition:  e.InTransition,
		GraphFallback: e.GraphFallback,
		CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}

func runListMode(decisions *logging.DecisionLog, last int, jsonOut bool) error {
	entries, err := decisions.Recent(last)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "no decisions found")
		return nil
	}

	// Log returns DESC, reverse for chronological display
	rows := make([]listRow, len(entries))
	for i, e := range entries {
		rows[len(entries)-1-i] = toRow(e)
	}

	if jsonOut {
		return printJSON(rows)
	}
	return printListTable(rows)
}

func printListTable(rows []listRow) error {
	fmt.Printf("%-10s  %-20s  %-10s  %6s  %8s  %-18s  %s\n",
		"Decision", "Query", "Regime", "Conf", "Entropy", "Protocol", "Time")
	fmt.Printf("%-10s+-%-20s+-%-10s+-%6s+-%8s+-%-18s+-%s\n",
		"----------", "--------------------", "----------", "------", "--------", "------------------", "--------------------")

	for _, r := range rows {
		flags := ""
		if r.InTransition {
			flags += " T"
		}
		if r.GraphFallback {
			flags += " F"
		}
		fmt.Printf("%-10s  %-20s  %-10s  %6.2f  %8.4f  %-18s  %s%s\n",
			shortID(r.DecisionID), truncate(r.QueryKey, 20), r.Regime,
			r.Confidence, r.Entropy, r.Protocol, r.CreatedAt, flags)
	}
	fmt.Println("\nFlags: T = in transition zone, F = graph fallback")
	return nil
}

// #endregion list-mode

// #region detail-mode

type detailOutput struct {
	listRow
	Components map[string]float64 `json:"components,omitempty"`
	Warnings   []string           `json:"warnings,omitempty"`
}

func runDetailMode(decisions *logging.DecisionLog, decisionID string, jsonOut bool) error {
	e, err := decisions.Get(decisionID)
	if err != nil {
		return err
	}

	out := detailOutput{listRow: toRow(e)}
	if e.ComponentsJSON != "" {
		if err := json.Unmarshal([]byte(e.ComponentsJSON), &out.Components); err != nil {
			return fmt.Errorf("parse components: %w", err)
		}
	}
	if e.WarningsJSON != "" {
		if err := json.Unmarshal([]byte(e.WarningsJSON), &out.Warnings); err != nil {
			return fmt.Errorf("parse warnings: %w", err)
		}
	}

	if jsonOut {
		return printJSON(out)
	}

	fmt.Printf("Decision:   %s\n", out.DecisionID)
	fmt.Printf("Query:      %s\n", out.QueryKey)
	fmt.Printf("Created:    %s\n", out.CreatedAt)
	fmt.Printf("Regime:     %s\n", out.Regime)
	fmt.Printf("Confidence: %.4f\n", out.Confidence)
	fmt.Printf("Entropy:    %.4f\n", out.Entropy)
	fmt.Printf("Protocol:   %s\n", out.Protocol)
	fmt.Printf("Transition: %v\n", out.InTransition)
	fmt.Printf("Fallback:   %v\n", out.GraphFallback)

	if len(out.Components) > 0 {
		fmt.Printf("\nEntropy components:\n")
		order := []string{"edge", "node", "structural", "retrieval"}
		for _, name := range order {
			if v, ok := out.Components[name]; ok {
				fmt.Printf("  %-12s %.4f\n", name, v)
			}
		}
	}
	if len(out.Warnings) > 0 {
		fmt.Printf("\nWarnings:\n")
		for _, w := range out.Warnings {
			fmt.Printf("  - %s\n", w)
		}
	}
	return nil
}

// #endregion detail-mode

// #region output

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n-1] + "…"
	}
	return s
}

// #endregion output
