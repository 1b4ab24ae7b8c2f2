package main

import (
	"fmt"
	"os"
)

// getEnv returns the value of an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Get subcommand
	subcommand := os.Args[1]

	switch subcommand {
	case "serve":
		handleServe(os.Args[2:])
	case "events":
		handleEvents(os.Args[2:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("pagewire - static pages, daily headlines, daily access log")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pagewire <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  serve      Run the HTTP server")
	fmt.Println("  events     List events mirrored to the audit database")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  PAGEWIRE_CONFIG          Path to YAML config (default: pagewire.yaml)")
	fmt.Println("  PAGEWIRE_LISTEN          Listen address (default: :3000)")
	fmt.Println("  PAGEWIRE_ASSET_ROOT      Directory holding the pages (default: views)")
	fmt.Println("  PAGEWIRE_LOG_DIR         Directory for daily log files (default: logs)")
	fmt.Println("  PAGEWIRE_DEBUG           Verbose request logging (true/false)")
	fmt.Println("  PAGEWIRE_NEWS_PROVIDER   newsapi, feed, or page (default: newsapi)")
	fmt.Println("  PAGEWIRE_NEWS_API_KEY    Credential for the newsapi provider")
	fmt.Println("  PAGEWIRE_NEWS_URL        Feed or page URL for the other providers")
	fmt.Println("  PAGEWIRE_AUDIT_DSN       SQLite path for the event mirror (optional)")
	fmt.Println("  PAGEWIRE_METRICS_LISTEN  Address for /metrics (optional)")
}
