package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// EnvPrefix is prepended to every environment variable the crawler reads
const EnvPrefix = "BLOCKLIST_"

// Config holds application configuration values
type Config struct {
	// Logging
	LogLevel string
	JSONLog  bool
	LogFile  string

	// Target and output
	BaseURL     string
	OutputPath  string
	SummaryPath string
	JSONSummary bool

	// HTTP
	HTTPTimeout time.Duration
	UserAgent   string
	Proxy       string
	Headers     []string

	// Retry and pacing
	MaxAttempts    int
	RetryDelay     time.Duration
	MinDelay       time.Duration
	MaxDelay       time.Duration
	RateLimitRPS   float64
	RateLimitBurst int

	// Crawl
	BatchSize      int
	DefaultPages   int
	MaxPages       int
	ExcludePhrases []string
	RespectRobots  bool

	// Extras
	MetricsAddr string
	Progress    bool
}

// Default returns a Config populated with the built-in defaults.
func Default() *Config {
	return &Config{
		LogLevel:       DefaultLogLevel,
		JSONLog:        DefaultJSONLog,
		BaseURL:        DefaultBaseURL,
		OutputPath:     DefaultOutputPath,
		HTTPTimeout:    DefaultHTTPTimeout,
		UserAgent:      DefaultUserAgent,
		MaxAttempts:    DefaultMaxAttempts,
		RetryDelay:     DefaultRetryDelay,
		MinDelay:       DefaultMinDelay,
		MaxDelay:       DefaultMaxDelay,
		RateLimitRPS:   DefaultRateLimitRPS,
		RateLimitBurst: DefaultRateLimitBurst,
		BatchSize:      DefaultBatchSize,
		DefaultPages:   DefaultPages,
		ExcludePhrases: append([]string(nil), DefaultExcludePhrases...),
	}
}

// Load builds a Config by combining defaults, an optional .env file, environment variables, and CLI flags.
// Caller should pass the root *cobra.Command after flags were parsed.
func Load(cmd *cobra.Command) (*Config, error) {
	cfg := Default()

	envFile := DefaultEnvFile
	if v := os.Getenv(EnvPrefix + "ENV_FILE"); v != "" {
		envFile = v
	}
	if s, ok := changed(cmd, "env-file"); ok {
		envFile = s
	}
	if envFile != "" {
		// godotenv never overrides variables that are already set
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env file %s: %w", envFile, err)
		}
	}

	applyEnv(cfg)

	if cmd != nil {
		if err := applyFlags(cmd, cfg); err != nil {
			return nil, err
		}
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	envString("LOG_LEVEL", &cfg.LogLevel)
	envBool("JSON_LOG", &cfg.JSONLog)
	envString("LOG_FILE", &cfg.LogFile)
	envString("BASE_URL", &cfg.BaseURL)
	envString("OUTPUT", &cfg.OutputPath)
	envString("SUMMARY", &cfg.SummaryPath)
	envDuration("TIMEOUT", &cfg.HTTPTimeout)
	envString("USER_AGENT", &cfg.UserAgent)
	envString("PROXY", &cfg.Proxy)
	envInt("ATTEMPTS", &cfg.MaxAttempts)
	envDuration("RETRY_DELAY", &cfg.RetryDelay)
	envDuration("MIN_DELAY", &cfg.MinDelay)
	envDuration("MAX_DELAY", &cfg.MaxDelay)
	envInt("BATCH_SIZE", &cfg.BatchSize)
	envInt("DEFAULT_PAGES", &cfg.DefaultPages)
	envInt("MAX_PAGES", &cfg.MaxPages)
	envBool("RESPECT_ROBOTS", &cfg.RespectRobots)
	envString("METRICS_ADDR", &cfg.MetricsAddr)
	envBool("PROGRESS", &cfg.Progress)

	if v := os.Getenv(EnvPrefix + "RPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.RateLimitRPS = f
		} else {
			log.Warn().Str("var", EnvPrefix+"RPS").Str("value", v).Msg("Ignoring invalid environment value")
		}
	}
	if v := os.Getenv(EnvPrefix + "EXCLUDE"); v != "" {
		cfg.ExcludePhrases = splitList(v)
	}
}

func applyFlags(cmd *cobra.Command, cfg *Config) error {
	if s, ok := changed(cmd, "log-level"); ok {
		cfg.LogLevel = strings.ToLower(s)
	}
	if s, ok := changed(cmd, "verbose"); ok && s == "true" {
		cfg.LogLevel = "debug"
	}
	if s, ok := changed(cmd, "quiet"); ok && s == "true" {
		cfg.LogLevel = "error"
	}
	if s, ok := changed(cmd, "json-log"); ok {
		cfg.JSONLog = s == "true"
	}
	if s, ok := changed(cmd, "json"); ok {
		cfg.JSONSummary = s == "true"
	}
	if s, ok := changed(cmd, "progress"); ok {
		cfg.Progress = s == "true"
	}
	if s, ok := changed(cmd, "respect-robots"); ok {
		cfg.RespectRobots = s == "true"
	}

	for name, dst := range map[string]*string{
		"log-file":     &cfg.LogFile,
		"base-url":     &cfg.BaseURL,
		"output":       &cfg.OutputPath,
		"summary":      &cfg.SummaryPath,
		"user-agent":   &cfg.UserAgent,
		"proxy":        &cfg.Proxy,
		"metrics-addr": &cfg.MetricsAddr,
	} {
		if s, ok := changed(cmd, name); ok {
			*dst = s
		}
	}

	for name, dst := range map[string]*time.Duration{
		"timeout":     &cfg.HTTPTimeout,
		"retry-delay": &cfg.RetryDelay,
		"min-delay":   &cfg.MinDelay,
		"max-delay":   &cfg.MaxDelay,
	} {
		if s, ok := changed(cmd, name); ok {
			d, err := time.ParseDuration(s)
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", name, err)
			}
			*dst = d
		}
	}

	for name, dst := range map[string]*int{
		"attempts":      &cfg.MaxAttempts,
		"burst":         &cfg.RateLimitBurst,
		"batch-size":    &cfg.BatchSize,
		"default-pages": &cfg.DefaultPages,
		"max-pages":     &cfg.MaxPages,
	} {
		if s, ok := changed(cmd, name); ok {
			n, err := strconv.Atoi(s)
			if err != nil {
				return fmt.Errorf("invalid --%s: %w", name, err)
			}
			*dst = n
		}
	}

	if _, ok := changed(cmd, "rps"); ok {
		v, err := cmd.Flags().GetFloat64("rps")
		if err != nil {
			return fmt.Errorf("invalid --rps: %w", err)
		}
		cfg.RateLimitRPS = v
	}
	if _, ok := changed(cmd, "exclude"); ok {
		v, err := cmd.Flags().GetStringSlice("exclude")
		if err != nil {
			return fmt.Errorf("invalid --exclude: %w", err)
		}
		cfg.ExcludePhrases = v
	}
	if _, ok := changed(cmd, "header"); ok {
		v, err := cmd.Flags().GetStringArray("header")
		if err != nil {
			return fmt.Errorf("invalid --header: %w", err)
		}
		cfg.Headers = v
	}

	return nil
}

// changed reports the string value of a flag the user set explicitly
func changed(cmd *cobra.Command, name string) (string, bool) {
	if cmd == nil {
		return "", false
	}
	f := cmd.Flags().Lookup(name)
	if f == nil || !f.Changed {
		return "", false
	}
	return f.Value.String(), true
}

func envString(key string, dst *string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func envBool(key string, dst *bool) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Warn().Str("var", EnvPrefix+key).Str("value", v).Msg("Ignoring invalid environment value")
		return
	}
	*dst = b
}

func envInt(key string, dst *int) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("var", EnvPrefix+key).Str("value", v).Msg("Ignoring invalid environment value")
		return
	}
	*dst = n
}

func envDuration(key string, dst *time.Duration) {
	v := os.Getenv(EnvPrefix + key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("var", EnvPrefix+key).Str("value", v).Msg("Ignoring invalid environment value")
		return
	}
	*dst = d
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
