package config

import "github.com/spf13/cobra"

// RegisterFlags registers the crawl flags on the provided root command
func RegisterFlags(cmd *cobra.Command) {
	if cmd == nil {
		return
	}

	pf := cmd.PersistentFlags()

	// Logging
	pf.BoolP("verbose", "v", false, "Enable debug logging")
	pf.BoolP("quiet", "q", false, "Suppress all output except errors")
	pf.String("log-level", DefaultLogLevel, "Log level: debug, info, warn or error")
	pf.Bool("json-log", DefaultJSONLog, "Emit logs as JSON instead of console output")
	pf.String("log-file", "", "Also write logs to a rotated file")
	pf.Bool("json", false, "Print the run summary as JSON on stdout")
	pf.String("env-file", DefaultEnvFile, "Path to a .env file (ignored when missing)")

	// Target and output
	pf.String("base-url", DefaultBaseURL, "Base URL of the listing site")
	pf.StringP("output", "o", DefaultOutputPath, "File that receives discovered domains (appended)")
	pf.String("summary", "", "Write a JSON run summary to this file")

	// HTTP
	pf.String("timeout", DefaultHTTPTimeout.String(), "Per-request timeout (0 disables)")
	pf.String("user-agent", DefaultUserAgent, "User-Agent header sent with every request")
	pf.String("proxy", "", "HTTP/SOCKS5 proxy, or a comma-separated list to rotate through (e.g., http://localhost:8080)")
	pf.StringArrayP("header", "H", nil, "Extra request header (e.g., -H \"Accept-Language: uk\")")

	// Retry and pacing
	pf.Int("attempts", DefaultMaxAttempts, "Fetch attempts per page")
	pf.String("retry-delay", DefaultRetryDelay.String(), "Pause between fetch attempts")
	pf.String("min-delay", DefaultMinDelay.String(), "Minimum pause between pages")
	pf.String("max-delay", DefaultMaxDelay.String(), "Maximum pause between pages")
	pf.Float64("rps", DefaultRateLimitRPS, "Request rate cap per host")
	pf.Int("burst", DefaultRateLimitBurst, "Request burst per host")

	// Crawl
	pf.Int("batch-size", DefaultBatchSize, "Flush discovered domains every N pages")
	pf.Int("default-pages", DefaultPages, "Page count floor used by discovery")
	pf.Int("max-pages", 0, "Crawl exactly N pages and skip discovery")
	pf.StringSlice("exclude", nil, "Excluded category phrases (replaces the defaults)")
	pf.Bool("respect-robots", false, "Abort when robots.txt disallows the listing")

	// Extras
	pf.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g., :9190)")
	pf.Bool("progress", false, "Show a progress bar on stderr")
}
