package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/danielpatrickdp/validity-filter/internal/config"
	"github.com/danielpatrickdp/validity-filter/internal/entropy"
	"github.com/danielpatrickdp/validity-filter/internal/graphstore"
	"github.com/danielpatrickdp/validity-filter/internal/logging"
	"github.com/danielpatrickdp/validity-filter/internal/pipeline"
)

// #region main
func main() {
	dbPath := envOr("FILTER_DB", "validity_filter.db")
	cfgPath := os.Getenv("FILTER_CONFIG")

	cfg := config.Default()
	if cfgPath != "" {
		loaded, err := config.Load(cfgPath)
		if err != nil {
			log.Fatalf("failed to load config %s: %v", cfgPath, err)
		}
		cfg = loaded
	}

	// Graph store and decision log share one database file
	store, err := graphstore.Open(dbPath)
	if err != nil {
		log.Fatalf("failed to open graph store: %v", err)
	}
	defer store.Close()

	decisions, err := logging.NewDecisionLog(store.DB())
	if err != nil {
		log.Fatalf("failed to init decision log: %v", err)
	}

	p, err := pipeline.New(cfg, store, entropy.SnapshotDrift{Source: store}, decisions)
	if err != nil {
		log.Fatalf("failed to build pipeline: %v", err)
	}

	fmt.Println("Validity Filter ready.")
	fmt.Printf("  DB: %s | Thresholds: %.2f / %.2f\n", dbPath, cfg.Thresholds.Lower, cfg.Thresholds.Upper)
	fmt.Println("Type a query key (':domain off' marks the domain inactive, ':reload' re-reads the config, 'quit' to exit):")

	scanner := bufio.NewScanner(os.Stdin)
	domainActive := true

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		switch line {
		case ":domain off":
			domainActive = false
			fmt.Println("domain marked inactive")
			continue
		case ":domain on":
			domainActive = true
			fmt.Println("domain marked active")
			continue
		case ":reload":
			if cfgPath == "" {
				fmt.Println("no config file set, nothing to reload")
				continue
			}
			loaded, err := config.Load(cfgPath)
			if err != nil {
				log.Printf("reload error: %v", err)
				continue
			}
			if err := p.Reload(loaded); err != nil {
				log.Printf("reload error: %v", err)
				continue
			}
			fmt.Println("config reloaded")
			continue
		}

		d, err := p.Evaluate(context.Background(), line, nil,
			pipeline.Activity{System: true, Domain: domainActive})
		if err != nil {
			log.Printf("evaluate error: %v", err)
			continue
		}

		fmt.Printf("\n[%s]\n", d.Protocol.Indicator)
		fmt.Printf("  regime=%s confidence=%.2f entropy=%.4f protocol=%s\n",
			d.Regime, d.Confidence, d.Entropy.Total, d.Protocol.Name)
		if d.InTransition {
			fmt.Println("  note: entropy sits in the regime transition zone")
		}
		if d.GraphFallback {
			fmt.Println("  note: graph unavailable, scored against empty evidence")
		}
		for _, w := range d.Entropy.Warnings {
			fmt.Printf("  warning: %s\n", w)
		}
		fmt.Println()
	}
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
