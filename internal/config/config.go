package config

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/Veraticus/kitty/internal/account"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/dashboard"
	"github.com/Veraticus/kitty/internal/groups"
	"github.com/Veraticus/kitty/internal/loans"
	"github.com/spf13/viper"
)

// Config is the resolved configuration for one kitty invocation.
type Config struct {
	Endpoints    Endpoints
	API          API
	DatabasePath string
	MetricsAddr  string
}

// API configures the backend client.
type API struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
}

// Endpoints holds the per-source route overrides. Empty lists use each
// package's defaults.
type Endpoints struct {
	Account   account.Endpoints
	Groups    groups.Endpoints
	Loans     loans.Endpoints
	Dashboard dashboard.Endpoints
}

// SetDefaults registers the default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.user_agent", "kitty-cli")
	v.SetDefault("database.path", filepath.Join(Dir(), "kitty.db"))
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// Load reads the configuration from v.
func Load(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		API: API{
			BaseURL:   v.GetString("api.base_url"),
			UserAgent: v.GetString("api.user_agent"),
			Timeout:   v.GetDuration("api.timeout"),
		},
		DatabasePath: ExpandPath(v.GetString("database.path")),
		MetricsAddr:  v.GetString("metrics.addr"),
	}

	keys := []struct {
		target any
		key    string
	}{
		{key: "endpoints.dashboard", target: &cfg.Endpoints.Dashboard},
		{key: "endpoints.groups", target: &cfg.Endpoints.Groups},
		{key: "endpoints.loans", target: &cfg.Endpoints.Loans},
		{key: "endpoints.account", target: &cfg.Endpoints.Account},
	}
	for _, k := range keys {
		if err := v.UnmarshalKey(k.key, k.target); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", common.ErrInvalidConfig, k.key, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later with a less
// helpful error. A missing base URL is reported when a client is built, so
// offline commands still work without one.
func (c *Config) Validate() error {
	if c.API.Timeout < 0 {
		return fmt.Errorf("%w: api.timeout cannot be negative", common.ErrInvalidConfig)
	}
	if c.API.BaseURL != "" {
		u, err := url.Parse(c.API.BaseURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: api.base_url %q is not an absolute URL", common.ErrInvalidConfig, c.API.BaseURL)
		}
	}
	if c.DatabasePath == "" {
		return fmt.Errorf("%w: database.path is empty", common.ErrInvalidConfig)
	}
	return c.Endpoints.validate()
}

// validate checks that each templated route has one %s per substituted ID.
func (e Endpoints) validate() error {
	templates := []struct {
		key   string
		paths []string
		want  int
	}{
		{key: "endpoints.dashboard.pending_loans", paths: e.Dashboard.PendingLoans, want: 1},
		{key: "endpoints.groups.detail", paths: e.Groups.Detail, want: 1},
		{key: "endpoints.groups.members", paths: e.Groups.Members, want: 1},
		{key: "endpoints.groups.transactions", paths: e.Groups.Transactions, want: 1},
		{key: "endpoints.loans.approve", paths: e.Loans.Approve, want: 2},
		{key: "endpoints.loans.reject", paths: e.Loans.Reject, want: 2},
	}
	for _, t := range templates {
		for _, p := range t.paths {
			if n := placeholders(p); n != t.want {
				return fmt.Errorf("%w: %s entry %q has %d placeholders, want %d %%s",
					common.ErrInvalidConfig, t.key, p, n, t.want)
			}
		}
	}
	return nil
}

// placeholders counts formatting verbs in a route template, or returns -1
// when it has a verb other than %s.
func placeholders(template string) int {
	rest := strings.ReplaceAll(template, "%%", "")
	verbs := strings.Count(rest, "%")
	if strings.Count(rest, "%s") != verbs {
		return -1
	}
	return verbs
}
