package config

import "time"

// Default constants for application configuration
const (
	DefaultLogLevel       = "info"
	DefaultJSONLog        = false
	DefaultBaseURL        = "https://uablocklist.com"
	DefaultOutputPath     = "blocked_domains.txt"
	DefaultEnvFile        = ".env"
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"
	DefaultHTTPTimeout    = 30 * time.Second
	DefaultBatchSize      = 50
	DefaultPages          = 800
	DefaultMaxAttempts    = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultMinDelay       = 1 * time.Second
	DefaultMaxDelay       = 3 * time.Second
	DefaultRateLimitRPS   = 1.0
	DefaultRateLimitBurst = 1
)

// DefaultExcludePhrases mark listing categories that never make it into the output
var DefaultExcludePhrases = []string{
	"blocked-sites-casinos",
	"blocked-sites-bookmakers",
	"blocked-sites-russian",
	"pirates",
}
