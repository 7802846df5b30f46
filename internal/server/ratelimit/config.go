package ratelimit

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Rule limits one endpoint. A Path ending in "/" matches by prefix.
type Rule struct {
	Path   string
	Method string
	Limit  int
	Window time.Duration
	Burst  int
}

// Config holds rate limiting configuration.
type Config struct {
	Enabled         bool
	DefaultLimit    int
	DefaultWindow   time.Duration
	CleanupInterval time.Duration
	IdleAfter       time.Duration
	Allow           map[string]bool
	Deny            map[string]bool
	Rules           []Rule
	Now             func() time.Time
}

// LoadConfig reads TEAMMATCH_RATE_LIMIT_* variables.
func LoadConfig() *Config {
	if !envBool("TEAMMATCH_RATE_LIMIT_ENABLED", true) {
		return &Config{Enabled: false}
	}
	return &Config{
		Enabled:         true,
		DefaultLimit:    envInt("TEAMMATCH_RATE_LIMIT_DEFAULT_LIMIT", 600),
		DefaultWindow:   envDuration("TEAMMATCH_RATE_LIMIT_DEFAULT_WINDOW", time.Minute),
		CleanupInterval: envDuration("TEAMMATCH_RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		IdleAfter:       time.Hour,
		Allow:           ipSet(os.Getenv("TEAMMATCH_RATE_LIMIT_ALLOW")),
		Deny:            ipSet(os.Getenv("TEAMMATCH_RATE_LIMIT_DENY")),
		Rules:           DefaultRules(),
	}
}

// DefaultRules throttles the generation endpoints hardest, then the
// credential endpoints.
func DefaultRules() []Rule {
	return []Rule{
		{Path: "/team-assignments/ai/generate/", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/weekly-reports/ai/generate/", Method: "POST", Limit: 20, Window: time.Hour, Burst: 3},
		{Path: "/match/reason", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/project-match/reason/", Method: "GET", Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/auth/login", Method: "POST", Limit: 30, Window: time.Minute, Burst: 5},
		{Path: "/auth/signup", Method: "POST", Limit: 10, Window: time.Minute, Burst: 3},
	}
}

// Match returns the rule for a request, or nil for the default limit. The
// health and metrics endpoints are never limited.
func Match(path, method string, rules []Rule) *Rule {
	if method == "GET" && (path == "/health" || path == "/metrics") {
		return &Rule{}
	}
	var prefix *Rule
	for i := range rules {
		r := &rules[i]
		if r.Method != method {
			continue
		}
		if r.Path == path {
			return r
		}
		if prefix == nil && strings.HasSuffix(r.Path, "/") && strings.HasPrefix(path, r.Path) {
			prefix = r
		}
	}
	return prefix
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return def
}

func ipSet(list string) map[string]bool {
	set := make(map[string]bool)
	for _, ip := range strings.Split(list, ",") {
		if ip = strings.TrimSpace(ip); ip != "" {
			set[ip] = true
		}
	}
	return set
}
