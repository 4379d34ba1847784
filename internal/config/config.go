// Package config loads the project configuration from config.yaml, the
// environment and optional .env files.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/alexanderramin/ghgantt/internal/domain"
)

// FileName is the config file looked up by discovery.
const FileName = "config.yaml"

const envPrefix = "GHGANTT"

type DateFields struct {
	Start string `mapstructure:"start"`
	End   string `mapstructure:"end"`
}

type Config struct {
	Repo          string        `mapstructure:"repo"`
	ProjectNumber int           `mapstructure:"project_number"`
	DateFields    DateFields    `mapstructure:"date_fields"`
	OutputFile    string        `mapstructure:"output_file"`
	LabelsFilter  []string      `mapstructure:"labels_filter"`
	IncludeClosed bool          `mapstructure:"include_closed"`
	OrphanPolicy  string        `mapstructure:"orphan_policy"`
	RequestDelay  time.Duration `mapstructure:"request_delay"`
	JournalPath   string        `mapstructure:"journal_path"`
	LogFile       string        `mapstructure:"log_file"`
	APIURL        string        `mapstructure:"api_url"`

	// Path is the file the config was read from. Relative paths in the
	// config resolve against its directory.
	Path string `mapstructure:"-"`
}

// Default returns a config with every default applied and no repo.
func Default() *Config {
	return &Config{
		DateFields:    DateFields{Start: "Start Date", End: "Due Date"},
		OutputFile:    "gaant.yaml",
		LabelsFilter:  []string{},
		IncludeClosed: true,
		OrphanPolicy:  string(domain.OrphanRecreate),
		APIURL:        "https://api.github.com",
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("repo", "")
	v.SetDefault("project_number", 0)
	v.SetDefault("date_fields.start", d.DateFields.Start)
	v.SetDefault("date_fields.end", d.DateFields.End)
	v.SetDefault("output_file", d.OutputFile)
	v.SetDefault("labels_filter", d.LabelsFilter)
	v.SetDefault("include_closed", d.IncludeClosed)
	v.SetDefault("orphan_policy", d.OrphanPolicy)
	v.SetDefault("request_delay", "0s")
	v.SetDefault("journal_path", "")
	v.SetDefault("log_file", "")
	v.SetDefault("api_url", d.APIURL)
}

// Find walks from start up through its parents and returns the first
// config.yaml found.
func Find(start string) (string, error) {
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", start, err)
	}
	for {
		candidate := filepath.Join(dir, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", domain.NewError(domain.KindConfiguration, "find config",
				FileName+" not found in this directory or any parent, run 'ghgantt init' first")
		}
		dir = parent
	}
}

// Load reads the config at path, or discovers one from the working
// directory when path is empty. .env files next to the config and in the
// working directory are loaded first; variables already set win.
func Load(path string) (*Config, error) {
	if path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		if path, err = Find(cwd); err != nil {
			return nil, err
		}
	}
	if _, err := os.Stat(path); err != nil {
		return nil, domain.Errorf(domain.KindConfiguration, "load config", "config file %s not found, run 'ghgantt init' first", path)
	}

	LoadDotEnv(filepath.Dir(path))

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, domain.WrapError(domain.KindConfiguration, "read config "+path, err)
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, domain.WrapError(domain.KindConfiguration, "parse config "+path, err)
	}
	cfg.Path = path
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDotEnv loads dir/.env and then ./.env. Missing files are ignored.
func LoadDotEnv(dir string) {
	for _, p := range []string{filepath.Join(dir, ".env"), ".env"} {
		_ = godotenv.Load(p)
	}
}

func (c *Config) normalize() {
	c.Repo = strings.TrimSpace(c.Repo)
	c.OutputFile = strings.TrimSpace(c.OutputFile)
	c.DateFields.Start = strings.TrimSpace(c.DateFields.Start)
	c.DateFields.End = strings.TrimSpace(c.DateFields.End)
	c.OrphanPolicy = strings.ToLower(strings.TrimSpace(c.OrphanPolicy))
	labels := c.LabelsFilter[:0]
	for _, l := range c.LabelsFilter {
		if l = strings.TrimSpace(l); l != "" {
			labels = append(labels, l)
		}
	}
	c.LabelsFilter = labels
}

// Validate reports every problem with the loaded values.
func (c *Config) Validate() error {
	var errs []error
	if strings.Count(c.Repo, "/") != 1 || c.Owner() == "" || c.RepoName() == "" {
		errs = append(errs, fmt.Errorf("repo must be \"owner/repo\", got %q", c.Repo))
	}
	if c.ProjectNumber <= 0 {
		errs = append(errs, fmt.Errorf("project_number must be greater than 0, got %d", c.ProjectNumber))
	}
	if c.OutputFile == "" {
		errs = append(errs, errors.New("output_file must not be empty"))
	}
	if c.DateFields.Start == "" || c.DateFields.End == "" {
		errs = append(errs, errors.New("date_fields.start and date_fields.end must not be empty"))
	}
	if _, err := domain.ParseOrphanPolicy(c.OrphanPolicy); err != nil {
		errs = append(errs, fmt.Errorf("orphan_policy: %q is not one of recreate, skip, warn", c.OrphanPolicy))
	}
	if c.RequestDelay < 0 {
		errs = append(errs, fmt.Errorf("request_delay must not be negative, got %s", c.RequestDelay))
	}
	if len(errs) == 0 {
		return nil
	}
	return &domain.Error{
		Kind:    domain.KindConfiguration,
		Op:      "validate config",
		Message: fmt.Sprintf("%d problem(s) in %s", len(errs), domain.CoalesceStr(c.Path, FileName)),
		Err:     errors.Join(errs...),
	}
}

func (c *Config) Owner() string {
	owner, _, _ := strings.Cut(c.Repo, "/")
	return owner
}

func (c *Config) RepoName() string {
	_, name, _ := strings.Cut(c.Repo, "/")
	return name
}

// Policy returns the orphan policy, defaulting to recreate.
func (c *Config) Policy() domain.OrphanPolicy {
	p, err := domain.ParseOrphanPolicy(c.OrphanPolicy)
	if err != nil {
		return domain.OrphanRecreate
	}
	return p
}

// Resolve anchors a relative path at the config file's directory.
func (c *Config) Resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}

// LocalPath is the resolved output_file.
func (c *Config) LocalPath() string {
	return c.Resolve(c.OutputFile)
}

// Save writes cfg as YAML to path, creating parent directories.
func Save(cfg *Config, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating config directory %s: %w", dir, err)
		}
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("repo", cfg.Repo)
	v.Set("project_number", cfg.ProjectNumber)
	v.Set("date_fields", map[string]string{
		"start": cfg.DateFields.Start,
		"end":   cfg.DateFields.End,
	})
	v.Set("output_file", cfg.OutputFile)
	v.Set("labels_filter", cfg.LabelsFilter)
	v.Set("include_closed", cfg.IncludeClosed)
	v.Set("orphan_policy", cfg.OrphanPolicy)
	if cfg.RequestDelay > 0 {
		v.Set("request_delay", cfg.RequestDelay.String())
	}
	if cfg.JournalPath != "" {
		v.Set("journal_path", cfg.JournalPath)
	}
	if cfg.LogFile != "" {
		v.Set("log_file", cfg.LogFile)
	}
	if cfg.APIURL != "" && cfg.APIURL != Default().APIURL {
		v.Set("api_url", cfg.APIURL)
	}

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}
