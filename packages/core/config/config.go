package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Required keys. Loading fails before any scenario runs if either is absent.
const (
	KeyBaseURL = "base.url"
	KeyEnv     = "env"
)

// Optional keys.
const (
	KeyTimeout         = "request.timeout"
	KeyFollowRedirects = "follow.redirects"
	KeyValidateSSL     = "validate.ssl"
	KeyRateLimit       = "rate.limit"
	KeyReportDir       = "report.dir"
	KeyHistoryDB       = "history.db"
)

// DefaultTimeout is the request timeout used when request.timeout is not set.
const DefaultTimeout = 30 * time.Second

// MissingKeyError reports a required configuration key that is absent.
type MissingKeyError struct {
	Key  string
	Path string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing required configuration key %q in %s", e.Key, e.Path)
}

// Config holds the environment parameters for a suite run. It is built once
// at startup and passed explicitly to the components that need it.
type Config struct {
	BaseURL     string
	Environment string

	Timeout         time.Duration
	FollowRedirects bool
	ValidateSSL     bool
	RateLimit       float64 // requests per second, 0 disables throttling
	ReportDir       string
	HistoryDB       string

	// raw holds every key=value pair from the properties file.
	raw map[string]string
}

// Load reads a flat properties file and builds a Config.
// Both base.url and env must be present.
func Load(path string) (*Config, error) {
	raw, err := parseProperties(path)
	if err != nil {
		return nil, err
	}
	return fromMap(raw, path)
}

func fromMap(raw map[string]string, path string) (*Config, error) {
	for _, key := range []string{KeyBaseURL, KeyEnv} {
		if _, ok := raw[key]; !ok {
			return nil, &MissingKeyError{Key: key, Path: path}
		}
	}

	cfg := &Config{
		BaseURL:         strings.TrimRight(raw[KeyBaseURL], "/"),
		Environment:     raw[KeyEnv],
		Timeout:         DefaultTimeout,
		FollowRedirects: true,
		ValidateSSL:     true,
		ReportDir:       raw[KeyReportDir],
		HistoryDB:       raw[KeyHistoryDB],
		raw:             raw,
	}

	if v, ok := raw[KeyTimeout]; ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", KeyTimeout, v, err)
		}
		cfg.Timeout = d
	}
	if v, ok := raw[KeyFollowRedirects]; ok {
		cfg.FollowRedirects = parseBool(v, true)
	}
	if v, ok := raw[KeyValidateSSL]; ok {
		cfg.ValidateSSL = parseBool(v, true)
	}
	if v, ok := raw[KeyRateLimit]; ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s value %q: %w", KeyRateLimit, v, err)
		}
		cfg.RateLimit = f
	}

	return cfg, nil
}

// Get returns the raw value for a key, for callers that need keys beyond the
// recognized set.
func (c *Config) Get(key string) (string, bool) {
	v, ok := c.raw[key]
	return v, ok
}

func parseBool(v string, defaultVal bool) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	}
	return defaultVal
}

// parseProperties reads a flat key=value file.
// Supports: key=value, key = value, "quoted values", # and ! comments.
func parseProperties(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("cannot open properties file: %w", err)
	}
	defer file.Close()

	result := make(map[string]string)
	scanner := bufio.NewScanner(file)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}

		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)
		if key == "" {
			continue
		}

		if len(value) >= 2 {
			if (value[0] == '"' && value[len(value)-1] == '"') ||
				(value[0] == '\'' && value[len(value)-1] == '\'') {
				value = value[1 : len(value)-1]
			}
		}

		result[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading properties file: %w", err)
	}

	return result, nil
}
