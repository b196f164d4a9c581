// Package config loads the relnotes configuration file.
package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opensdd/relnotes/core/links"
	"github.com/opensdd/relnotes/core/notes"
	"github.com/opensdd/relnotes/core/section"
	"github.com/opensdd/relnotes/core/utils"
	"gopkg.in/yaml.v3"
)

// Config is the top-level configuration structure.
type Config struct {
	Jira        JiraConfig        `yaml:"jira"`
	Confluence  ConfluenceConfig  `yaml:"confluence"`
	Links       LinksConfig       `yaml:"links"`
	Notes       NotesConfig       `yaml:"notes"`
	Section     SectionConfig     `yaml:"section"`
	Spreadsheet SpreadsheetConfig `yaml:"spreadsheet"`
	// Concurrency bounds parallel remote-link fetches; 1 is sequential.
	Concurrency int    `yaml:"concurrency"`
	HTTPTimeout string `yaml:"http_timeout"`
	LogLevel    string `yaml:"log_level"`
}

// Credential names where a secret comes from: an environment variable, or
// a secret-store command whose output is the secret.
type Credential struct {
	TokenEnv string `yaml:"token_env"`
	TokenCmd string `yaml:"token_cmd"`
}

type JiraConfig struct {
	URL        string `yaml:"url"`
	Credential `yaml:",inline"`
	NoteField  string `yaml:"note_field"`
	PageSize   int    `yaml:"page_size"`
	// MaxIssues fails runs whose query matches more tickets; 0 means no limit.
	MaxIssues  int    `yaml:"max_issues"`
}

type ConfluenceConfig struct {
	URL        string `yaml:"url"`
	Credential `yaml:",inline"`
	PageID     string `yaml:"page_id"`
}

type LinksConfig struct {
	AllowDomains  []string `yaml:"allow_domains"`
	IncludeInward bool     `yaml:"include_inward"`
}

type NotesConfig struct {
	KeywordsPreset string `yaml:"keywords_preset"`
	// Keywords overrides individual labels of the preset, keyed by field key.
	Keywords     map[string]string `yaml:"keywords"`
	FillerGlyphs []string          `yaml:"filler_glyphs"`
	MinLength    int               `yaml:"min_length"`
}

type SectionConfig struct {
	HeadingLevel int `yaml:"heading_level"`
}

type SpreadsheetConfig struct {
	Responsible []string `yaml:"responsible"`
	Statuses    []string `yaml:"statuses"`
}

// DefaultPath is the user-level configuration file.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "relnotes", "config.yaml")
}

// Load reads path over the defaults. A missing file at the default location
// is not an error; a missing explicit path is.
func Load(path string) (*Config, error) {
	cfg := Defaults()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := mergeFile(cfg, path); err != nil {
			if explicit || !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to load config %s: %w", path, err)
			}
			slog.Debug("No config file, using defaults", "path", path)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, dst)
}

// Defaults returns the built-in configuration.
func Defaults() *Config {
	return &Config{
		Jira: JiraConfig{
			Credential: Credential{TokenEnv: "RELNOTES_JIRA_TOKEN"},
			NoteField:  utils.DefaultNoteField,
			PageSize:   100,
		},
		Confluence: ConfluenceConfig{
			Credential: Credential{TokenEnv: "RELNOTES_CONFLUENCE_TOKEN"},
		},
		Links: LinksConfig{
			AllowDomains: []string{"projekt.nak.hu", "rt5.nak.hu"},
		},
		Notes: NotesConfig{
			KeywordsPreset: "en",
			FillerGlyphs:   append([]string(nil), notes.DefaultFillerGlyphs...),
			MinLength:      notes.DefaultMinLength,
		},
		Section: SectionConfig{HeadingLevel: section.DefaultHeading.Level},
		Spreadsheet: SpreadsheetConfig{
			Statuses: []string{"Folyamatban", "Hibás", "Élesíthető"},
		},
		Concurrency: 1,
		HTTPTimeout: "60s",
		LogLevel:    "info",
	}
}

// Validate checks value ranges and references.
func (c *Config) Validate() error {
	if err := c.Heading().Validate(); err != nil {
		return fmt.Errorf("section.heading_level: %w", err)
	}
	if _, err := c.Keywords(); err != nil {
		return err
	}
	if c.Jira.MaxIssues < 0 {
		return fmt.Errorf("jira.max_issues cannot be negative")
	}
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1, got %d", c.Concurrency)
	}
	if c.Notes.MinLength < 1 {
		return fmt.Errorf("notes.min_length must be at least 1, got %d", c.Notes.MinLength)
	}
	if _, err := c.Timeout(); err != nil {
		return err
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Heading returns the section heading format shared by renderer and merger.
func (c *Config) Heading() section.HeadingFormat {
	return section.HeadingFormat{Level: c.Section.HeadingLevel}
}

// Keywords resolves the preset and applies per-field overrides.
func (c *Config) Keywords() (notes.Keywords, error) {
	kw, err := notes.KeywordPreset(c.Notes.KeywordsPreset)
	if err != nil {
		return notes.Keywords{}, fmt.Errorf("notes.keywords_preset: %w", err)
	}
	byKey := make(map[string]notes.Field, len(notes.Fields))
	for _, f := range notes.Fields {
		byKey[f.Key()] = f
	}
	for k, label := range c.Notes.Keywords {
		f, ok := byKey[k]
		if !ok {
			return notes.Keywords{}, fmt.Errorf("notes.keywords: unknown field %q", k)
		}
		if strings.TrimSpace(label) == "" {
			return notes.Keywords{}, fmt.Errorf("notes.keywords: empty label for %q", k)
		}
		kw[f] = strings.TrimSpace(label)
	}
	return kw, nil
}

// Extractor builds the note extractor described by the notes section.
func (c *Config) Extractor() (*notes.Extractor, error) {
	kw, err := c.Keywords()
	if err != nil {
		return nil, err
	}
	e := notes.NewExtractor(kw)
	if len(c.Notes.FillerGlyphs) > 0 {
		e.FillerGlyphs = c.Notes.FillerGlyphs
	}
	e.MinLength = c.Notes.MinLength
	return e, nil
}

// Aggregator builds the link aggregator for the configured tracker.
func (c *Config) Aggregator() *links.Aggregator {
	return &links.Aggregator{
		AllowList:     links.AllowList(c.Links.AllowDomains),
		BrowseBase:    strings.TrimRight(c.Jira.URL, "/"),
		IncludeInward: c.Links.IncludeInward,
	}
}

// Timeout parses http_timeout; empty means no client timeout.
func (c *Config) Timeout() (time.Duration, error) {
	if c.HTTPTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(c.HTTPTimeout)
	if err != nil {
		return 0, fmt.Errorf("http_timeout: %w", err)
	}
	return d, nil
}

// Resolve returns the secret named by the credential.
func (cr Credential) Resolve(ctx context.Context) (string, error) {
	return utils.ResolveSecret(ctx, cr.TokenEnv, cr.TokenCmd)
}

// ParseLogLevel maps a level name onto slog.
func ParseLogLevel(s string) (slog.Level, error) {
	var lvl slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := lvl.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
