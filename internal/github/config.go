package github

import (
	"os"
	"strconv"
	"strings"
)

const defaultBaseURL = "https://api.github.com"

// Config holds transport settings for the GitHub API.
type Config struct {
	// BaseURL is the REST root, https://api.github.com or
	// https://HOST/api/v3 for GitHub Enterprise.
	BaseURL    string
	GraphQLURL string
	UserAgent  string
	TimeoutMs  int
	MaxRetries int
	PageSize   int
	LogCalls   bool
}

// DefaultConfig targets github.com.
func DefaultConfig() Config {
	return Config{
		BaseURL:    defaultBaseURL,
		GraphQLURL: defaultBaseURL + "/graphql",
		UserAgent:  "ghgantt",
		TimeoutMs:  30000,
		MaxRetries: 1,
		PageSize:   100,
	}
}

// LoadConfig reads transport overrides from the environment, falling back
// to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("GHGANTT_API_URL"); v != "" {
		cfg = cfg.WithBaseURL(v)
	}
	if v := os.Getenv("GHGANTT_GRAPHQL_URL"); v != "" {
		cfg.GraphQLURL = v
	}
	if v := os.Getenv("GHGANTT_HTTP_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("GHGANTT_HTTP_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.MaxRetries = n
		}
	}
	if v := os.Getenv("GHGANTT_LOG_API_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}

	return cfg
}

// WithBaseURL points both endpoints at another host. The GraphQL endpoint
// is derived the way GitHub lays them out: /graphql on github.com and
// /api/graphql next to /api/v3 on Enterprise.
func (c Config) WithBaseURL(base string) Config {
	base = strings.TrimRight(strings.TrimSpace(base), "/")
	if base == "" {
		return c
	}
	c.BaseURL = base
	if strings.HasSuffix(base, "/api/v3") {
		c.GraphQLURL = strings.TrimSuffix(base, "/v3") + "/graphql"
	} else {
		c.GraphQLURL = base + "/graphql"
	}
	return c
}
