package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/pfrederiksen/ibew-locals/internal/directory"
	"github.com/pfrederiksen/ibew-locals/internal/export"
	"github.com/pfrederiksen/ibew-locals/internal/logger"
	"github.com/pfrederiksen/ibew-locals/internal/scraper"
	"github.com/titanous/json5"
)

const DefaultOutput = "merged_union_data.xlsx"

var statePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// Config holds the settings for one run
type Config struct {
	DirectoryURL  string `json:"directory_url,omitempty"`
	MembershipURL string `json:"membership_url,omitempty"`
	UserAgent     string `json:"user_agent,omitempty"`
	Workers       int    `json:"workers,omitempty"`
	Timeout       string `json:"timeout,omitempty"` // Go duration, e.g. "10s"
	LogLevel      string `json:"log_level,omitempty"`
	Output        string `json:"output,omitempty"`
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		DirectoryURL:  directory.BaseURL,
		MembershipURL: scraper.MembershipURL,
		UserAgent:     directory.UserAgent,
		Workers:       directory.DefaultWorkers,
		Timeout:       directory.Timeout.String(),
		LogLevel:      string(logger.LevelInfo),
		Output:        DefaultOutput,
	}
}

// Load reads path and its <name>.local.<ext> sibling, then fills unset fields
// from Default. An empty path returns Default. The named file must exist; the
// local override is optional.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	var fromFile Config
	if err := readFile(path, &fromFile); err != nil {
		return cfg, err
	}

	localPath := localName(path)
	if _, err := os.Stat(localPath); err == nil {
		var override Config
		if err := readFile(localPath, &override); err != nil {
			return cfg, err
		}
		if err := mergo.Merge(&fromFile, override, mergo.WithOverride); err != nil {
			return cfg, fmt.Errorf("merging %s: %w", localPath, err)
		}
		logger.Debug("Merged local config overrides", logger.Fields{"local": localPath})
	} else if !os.IsNotExist(err) {
		return cfg, fmt.Errorf("reading config %s: %w", localPath, err)
	}

	if err := mergo.Merge(&fromFile, cfg); err != nil {
		return cfg, fmt.Errorf("applying defaults: %w", err)
	}
	return fromFile, nil
}

func readFile(path string, out *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json5.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

// localName maps "dir/ibew.json5" to "dir/ibew.local.json5"
func localName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + ".local" + ext
}

// TimeoutDuration parses Timeout
func (c Config) TimeoutDuration() (time.Duration, error) {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 0, fmt.Errorf("invalid timeout %q: %w", c.Timeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return d, nil
}

// Validate checks every field and returns the first problem found
func (c Config) Validate() error {
	if c.Workers < 1 || c.Workers > directory.MaxWorkers {
		return fmt.Errorf("workers must be between 1 and %d, got %d", directory.MaxWorkers, c.Workers)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	for name, raw := range map[string]string{
		"directory_url":  c.DirectoryURL,
		"membership_url": c.MembershipURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid %s %q", name, raw)
		}
	}
	return export.ValidatePath(c.Output)
}

// ParseStates splits a comma-separated list of state codes. Codes are trimmed
// and upper-cased, duplicates are dropped keeping the first, and the result
// must be non-empty.
func ParseStates(s string) ([]string, error) {
	var states []string
	seen := make(map[string]bool)

	for _, part := range strings.Split(s, ",") {
		code := strings.ToUpper(strings.TrimSpace(part))
		if code == "" {
			continue
		}
		if !statePattern.MatchString(code) {
			return nil, fmt.Errorf("invalid state code %q: expected two letters", strings.TrimSpace(part))
		}
		if seen[code] {
			continue
		}
		seen[code] = true
		states = append(states, code)
	}

	if len(states) == 0 {
		return nil, fmt.Errorf("no states given")
	}
	return states, nil
}
