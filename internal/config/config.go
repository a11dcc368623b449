// Package config provides application configuration management with support for environment variables, command-line flags, and .env files.
package config

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config holds the application configuration.
type Config struct {
	App       AppConfig
	Logger    LoggerConfig
	Server    ServerConfig
	Aligner   AlignerConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	Watch     WatchConfig
}

// AppConfig holds application-level configuration.
type AppConfig struct {
	Environment string
}

// LoggerConfig holds logging configuration.
type LoggerConfig struct {
	Level string
}

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port           string        // Server port (default: 8080)
	ReadTimeout    time.Duration // HTTP read timeout (default: 15s)
	WriteTimeout   time.Duration // HTTP write timeout (default: 60s, runs can be slow)
	IdleTimeout    time.Duration // HTTP idle timeout (default: 60s)
	AllowedOrigins []string      // CORS origins (default: *)
	MaxUploadBytes int64         // Largest accepted audio upload (default: 100 MiB)
}

// AlignerConfig holds mock aligner configuration.
type AlignerConfig struct {
	// Seed makes alignment output reproducible when Seeded is true.
	Seed   uint64
	Seeded bool
	// Delay is waited before each entry to simulate processing (default: 0).
	Delay time.Duration
}

// SessionConfig holds session lifetime configuration.
type SessionConfig struct {
	TTL time.Duration // Idle lifetime of a session (default: 1h)
}

// RateLimitConfig limits uploads and alignment runs per client IP.
type RateLimitConfig struct {
	RequestsPerMinute int // 0 disables limiting (default: 120)
	Burst             int // default: 20
}

// WatchConfig holds inbox watcher configuration.
type WatchConfig struct {
	Enabled     bool
	InboxPath   string
	OutputPath  string        // default: {inbox}/aligned
	SettleDelay time.Duration // Quiet period before a file is processed (default: 500ms)
}

// LoadConfig loads configuration from multiple sources with precedence:
// 1. Command-line flags (highest priority).
// 2. Environment variables.
// 3. .env file.
// 4. Default values (lowest priority).
func LoadConfig(args []string) (*Config, error) {
	fs := flag.NewFlagSet("aligner-api", flag.ContinueOnError)

	env := fs.String("env", "", "Environment (development, staging, production)")
	logLevel := fs.String("log-level", "", "Log level (debug, info, warn, error)")

	// Server flags
	serverPort := fs.String("port", "", "Server port (default: 8080)")
	readTimeout := fs.String("read-timeout", "", "HTTP read timeout (default: 15s)")
	writeTimeout := fs.String("write-timeout", "", "HTTP write timeout (default: 60s)")
	idleTimeout := fs.String("idle-timeout", "", "HTTP idle timeout (default: 60s)")
	allowedOrigins := fs.String("allowed-origins", "", "Comma-separated CORS origins (default: *)")
	maxUpload := fs.String("max-upload-bytes", "", "Largest accepted upload in bytes (default: 104857600)")

	// Aligner flags
	seed := fs.String("seed", "", "Seed for reproducible alignments (default: random)")
	delay := fs.String("align-delay", "", "Simulated processing time per file (default: 0s)")

	sessionTTL := fs.String("session-ttl", "", "Session idle lifetime (default: 1h)")

	rateLimit := fs.String("rate-limit", "", "Upload/run requests per minute per client, 0 disables (default: 120)")
	rateBurst := fs.String("rate-burst", "", "Rate limit burst (default: 20)")

	// Watch flags
	watchEnabled := fs.String("watch", "", "Watch an inbox directory for audio + transcript pairs (default: false)")
	watchInbox := fs.String("watch-inbox", "", "Inbox directory to watch")
	watchOutput := fs.String("watch-output", "", "Directory for generated files (default: {inbox}/aligned)")
	watchSettle := fs.String("watch-settle", "", "Quiet period before processing a file (default: 500ms)")

	envFile := fs.String("env-file", ".env", "Path to .env file")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Load .env file if it exists (silently ignore if not found).
	_ = loadEnvFile(*envFile)

	cfg := &Config{
		App: AppConfig{
			Environment: getConfigValue(*env, "ENV", "development"),
		},
		Logger: LoggerConfig{
			Level: getConfigValue(*logLevel, "LOG_LEVEL", "info"),
		},
		Server: ServerConfig{
			Port:           getConfigValue(*serverPort, "SERVER_PORT", "8080"),
			AllowedOrigins: splitList(getConfigValue(*allowedOrigins, "ALLOWED_ORIGINS", "*")),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getIntConfigValue(*rateLimit, "RATE_LIMIT_PER_MINUTE", 120),
			Burst:             getIntConfigValue(*rateBurst, "RATE_LIMIT_BURST", 20),
		},
		Watch: WatchConfig{
			Enabled:    getBoolConfigValue(*watchEnabled, "WATCH_ENABLED", false),
			InboxPath:  getConfigValue(*watchInbox, "WATCH_INBOX", ""),
			OutputPath: getConfigValue(*watchOutput, "WATCH_OUTPUT", ""),
		},
	}

	var err error
	durations := []struct {
		dst      *time.Duration
		flag     string
		envKey   string
		fallback string
	}{
		{&cfg.Server.ReadTimeout, *readTimeout, "SERVER_READ_TIMEOUT", "15s"},
		{&cfg.Server.WriteTimeout, *writeTimeout, "SERVER_WRITE_TIMEOUT", "60s"},
		{&cfg.Server.IdleTimeout, *idleTimeout, "SERVER_IDLE_TIMEOUT", "60s"},
		{&cfg.Aligner.Delay, *delay, "ALIGN_DELAY", "0s"},
		{&cfg.Session.TTL, *sessionTTL, "SESSION_TTL", "1h"},
		{&cfg.Watch.SettleDelay, *watchSettle, "WATCH_SETTLE_DELAY", "500ms"},
	}
	for _, d := range durations {
		if *d.dst, err = getDurationConfigValue(d.flag, d.envKey, d.fallback); err != nil {
			return nil, err
		}
	}

	maxUploadStr := getConfigValue(*maxUpload, "MAX_UPLOAD_BYTES", "104857600")
	cfg.Server.MaxUploadBytes, err = strconv.ParseInt(maxUploadStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid max upload bytes %q: %w", maxUploadStr, err)
	}

	if seedStr := getConfigValue(*seed, "ALIGNER_SEED", ""); seedStr != "" {
		cfg.Aligner.Seed, err = strconv.ParseUint(seedStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid seed %q: %w", seedStr, err)
		}
		cfg.Aligner.Seeded = true
	}

	if err := cfg.expandWatchPaths(); err != nil {
		return nil, fmt.Errorf("invalid watch path: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required config values are present and valid.
func (c *Config) Validate() error {
	if c.App.Environment == "" {
		return errors.New("ENV is required")
	}

	validEnvs := map[string]bool{
		"development": true,
		"staging":     true,
		"production":  true,
	}
	if !validEnvs[c.App.Environment] {
		return fmt.Errorf("invalid environment: %s (must be development, staging, or production)", c.App.Environment)
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLevels[strings.ToLower(c.Logger.Level)] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive, got %s", c.Session.TTL)
	}

	if c.Aligner.Delay < 0 {
		return fmt.Errorf("align delay cannot be negative, got %s", c.Aligner.Delay)
	}

	if c.RateLimit.RequestsPerMinute < 0 || c.RateLimit.Burst < 0 {
		return errors.New("rate limit values cannot be negative")
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst == 0 {
		return errors.New("rate limit burst must be positive when limiting is enabled")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return errors.New("max upload bytes must be positive")
	}

	if c.Watch.Enabled {
		if c.Watch.InboxPath == "" {
			return errors.New("WATCH_INBOX is required when watching is enabled")
		}
		if c.Watch.SettleDelay < 0 {
			return errors.New("watch settle delay cannot be negative")
		}
	}

	return nil
}

// expandPath expands ~ and makes the path absolute.
// If path is empty and defaultPath is provided, uses the default.
func expandPath(path, defaultPath string) (string, error) {
	if path == "" {
		return defaultPath, nil
	}

	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if !filepath.IsAbs(path) {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return "", fmt.Errorf("failed to get absolute path: %w", err)
		}
		path = absPath
	}

	return filepath.Clean(path), nil
}

// expandWatchPaths resolves the inbox and output directories.
// The output defaults to {inbox}/aligned.
func (c *Config) expandWatchPaths() error {
	if c.Watch.InboxPath == "" {
		return nil
	}

	inbox, err := expandPath(c.Watch.InboxPath, "")
	if err != nil {
		return err
	}
	c.Watch.InboxPath = inbox

	output, err := expandPath(c.Watch.OutputPath, filepath.Join(inbox, "aligned"))
	if err != nil {
		return err
	}
	c.Watch.OutputPath = output
	return nil
}

// getConfigValue returns the first non-empty value from flag, env var, or default.
func getConfigValue(flagValue, envKey, defaultValue string) string {
	// Priority 1: Command-line flag.
	if flagValue != "" {
		return flagValue
	}

	// Priority 2: Environment variable.
	if envValue := os.Getenv(envKey); envValue != "" {
		return envValue
	}

	// Priority 3: Default value.
	return defaultValue
}

// getBoolConfigValue returns a bool from flag, env var, or default.
// Accepts: "true", "1", "yes" (case-insensitive) as true; anything else is false.
func getBoolConfigValue(flagValue, envKey string, defaultValue bool) bool {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	strValue = strings.ToLower(strValue)
	return strValue == "true" || strValue == "1" || strValue == "yes"
}

// getIntConfigValue returns an int from flag, env var, or default.
func getIntConfigValue(flagValue, envKey string, defaultValue int) int {
	strValue := getConfigValue(flagValue, envKey, "")
	if strValue == "" {
		return defaultValue
	}
	result, err := strconv.Atoi(strValue)
	if err != nil {
		return defaultValue
	}
	return result
}

// getDurationConfigValue parses a duration from flag, env var, or default.
func getDurationConfigValue(flagValue, envKey, defaultValue string) (time.Duration, error) {
	strValue := getConfigValue(flagValue, envKey, defaultValue)
	d, err := time.ParseDuration(strValue)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", envKey, strValue, err)
	}
	return d, nil
}

// splitList splits a comma-separated value, dropping blanks.
func splitList(s string) []string {
	var out []string
	for part := range strings.SplitSeq(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// loadEnvFile loads environment variables from a .env file.
// Format: KEY=value (one per line, # for comments).
func loadEnvFile(path string) error {
	file, err := os.Open(path) //#nosec G304 -- Config file path from user input is expected
	if err != nil {
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments.
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, ok := strings.Cut(line, "=")
		if !ok {
			return fmt.Errorf("invalid format at line %d: %s", lineNum, line)
		}

		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)

		// Only set if not already set (env vars take precedence over .env file).
		if os.Getenv(key) == "" {
			if err := os.Setenv(key, value); err != nil {
				return fmt.Errorf("failed to set env var %s: %w", key, err)
			}
		}
	}

	return scanner.Err()
}
