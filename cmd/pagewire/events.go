package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pevans/pagewire/audit"
	"github.com/pevans/pagewire/config"
	"github.com/pevans/pagewire/events"
)

func handleEvents(args []string) {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	configPath := fs.String("config", getEnv("PAGEWIRE_CONFIG", "pagewire.yaml"), "Path to YAML config file")
	dsn := fs.String("dsn", "", "Path to the audit database (default: from config, then audit.db)")
	kind := fs.String("kind", "", "Only show events of this kind")
	limit := fs.Int("limit", audit.DefaultLimit, "Maximum number of events to show")
	fs.Parse(args)

	if *dsn == "" {
		resolved, err := auditDSN(*configPath, os.Getenv)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		*dsn = resolved
	}

	store, err := audit.NewEventStore(*dsn)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open audit store: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	filter := audit.EventFilter{Limit: *limit}
	if *kind != "" {
		k := events.Kind(*kind)
		filter.Kind = &k
	}

	entries, err := store.List(filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list events: %v\n", err)
		os.Exit(1)
	}

	if len(entries) == 0 {
		fmt.Println("No events recorded.")
		return
	}

	// Print table header
	fmt.Printf("%-24s %-18s %s\n", "TIME", "KIND", "MESSAGE")
	fmt.Println("----------------------------------------------------------------------------------------------------")

	for _, e := range entries {
		fmt.Printf("%-24s %-18s %s\n",
			e.OccurredAt.Format("2006-01-02T15:04:05.000Z"),
			e.Kind,
			truncate(e.Message, 60),
		)
	}
}

// auditDSN picks the audit database the same way serve does: the
// environment first, then the config file, then audit.db.
func auditDSN(configPath string, getenv func(string) string) (string, error) {
	if dsn := getenv("PAGEWIRE_AUDIT_DSN"); dsn != "" {
		return dsn, nil
	}

	fileCfg, err := config.LoadConfigFile(configPath)
	if err != nil {
		return "", err
	}
	if fileCfg != nil && fileCfg.Audit.DSN != "" {
		return fileCfg.Audit.DSN, nil
	}

	return "audit.db", nil
}

// truncate shortens s to at most limit runes, marking the cut with "...".
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit-3]) + "..."
}
