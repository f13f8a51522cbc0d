package ratelimit

import (
	"strconv"
	"strings"
	"time"
)

// Environment variables read by LoadConfig.
const (
	EnvEnabled         = "RATE_LIMIT_ENABLED"
	EnvDefaultLimit    = "RATE_LIMIT_DEFAULT_LIMIT"
	EnvDefaultWindow   = "RATE_LIMIT_DEFAULT_WINDOW"
	EnvCleanupInterval = "RATE_LIMIT_CLEANUP_INTERVAL"
	EnvAllowlist       = "RATE_LIMIT_ALLOWLIST"
	EnvBlocklist       = "RATE_LIMIT_BLOCKLIST"
)

// Rule limits one endpoint. A path ending in "/" matches by prefix.
type Rule struct {
	Path   string
	Method string
	// Limit is the sustained number of requests per Window. Zero or less is unlimited.
	Limit  int
	Window time.Duration
	// Burst is the bucket capacity, Limit when zero.
	Burst int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleTTL         time.Duration
	Allowlist       map[string]bool
	Blocklist       map[string]bool
	Rules           []Rule
}

// DefaultConfig returns the built-in limits.
func DefaultConfig() *Config {
	return &Config{
		Enabled:         true,
		DefaultLimit:    600,
		DefaultWindow:   time.Minute,
		CleanupInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
		Allowlist:       map[string]bool{},
		Blocklist:       map[string]bool{},
		Rules:           DefaultRules(),
	}
}

// DefaultRules returns the per-endpoint limits. Tailoring may call the AI provider and
// render files, so it is the strictest.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/api/v1/tailor", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/tailor", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/api/v1/assess", Method: "POST", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/outputs/", Method: "GET", Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/health", Method: "GET"},
		{Path: "/metrics", Method: "GET"},
	}
}

// Match returns the rule for a request: an exact match, then the longest prefix rule,
// then the default limit.
func (c *Config) Match(path, method string) Rule {
	var best *Rule
	for i := range c.Rules {
		r := &c.Rules[i]
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return *r
		}
		if strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) && (best == nil || len(r.Path) > len(best.Path)) {
			best = r
		}
	}
	if best != nil {
		return *best
	}
	return Rule{Path: "*", Method: method, Limit: c.DefaultLimit, Window: c.DefaultWindow}
}

// LoadConfig builds the configuration from DefaultConfig and environment overrides.
// Unparseable values keep their defaults.
func LoadConfig(getenv func(string) string) *Config {
	cfg := DefaultConfig()
	if getenv == nil {
		return cfg
	}
	if v, err := strconv.ParseBool(getenv(EnvEnabled)); err == nil {
		cfg.Enabled = v
	}
	if v, err := strconv.Atoi(getenv(EnvDefaultLimit)); err == nil && v > 0 {
		cfg.DefaultLimit = v
	}
	if v, err := time.ParseDuration(getenv(EnvDefaultWindow)); err == nil && v > 0 {
		cfg.DefaultWindow = v
	}
	if v, err := time.ParseDuration(getenv(EnvCleanupInterval)); err == nil && v > 0 {
		cfg.CleanupInterval = v
	}
	cfg.Allowlist = parseIPList(getenv(EnvAllowlist))
	cfg.Blocklist = parseIPList(getenv(EnvBlocklist))
	return cfg
}

// parseIPList parses a comma-separated list of addresses into a set.
func parseIPList(list string) map[string]bool {
	result := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			result[ip] = true
		}
	}
	return result
}
