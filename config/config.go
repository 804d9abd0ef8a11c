// Package config loads and persists the vpm configuration file.
//
// The file is YAML, looked up at $VPM_CONFIG when set and at
// ~/.config/vpm/config.yaml otherwise. A missing file yields the
// defaults, never an error.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	vpm "github.com/vessel-lang/vpm"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "VPM_CONFIG"

// DefaultRequestTimeout bounds a single repository request.
const DefaultRequestTimeout = 30 * time.Second

// Config is the persisted vpm configuration.
type Config struct {
	// FetchRepos are the repositories consulted for resolution and
	// download, in priority order for tie-breaking.
	FetchRepos []string `yaml:"fetch_repos"`
	// PublishRepos are the repositories a publish targets.
	PublishRepos []string `yaml:"publish_repos"`
	// RequestTimeoutMillis bounds a single repository request. Zero
	// means no per-call timeout.
	RequestTimeoutMillis int `yaml:"request_timeout_millis"`
	// Force controls reinstalling packages that are already present:
	// "always", "never" or "prompt".
	Force string `yaml:"force"`
	// InstallRoot is the root of the local install tree.
	InstallRoot string `yaml:"install_root"`
	// RuntimeVersion selects the compatibility tier used for apps and
	// releases.
	RuntimeVersion string `yaml:"runtime_version"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		RequestTimeoutMillis: int(DefaultRequestTimeout / time.Millisecond),
		Force:                "prompt",
		InstallRoot:          defaultInstallRoot(),
	}
}

// Path returns the configuration file location.
func Path() string {
	if p := os.Getenv(EnvConfigPath); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".config", "vpm", "config.yaml")
}

// Load reads the configuration from path, or from Path() when path is
// empty. A missing file yields Default().
func Load(path string) (*Config, error) {
	if path == "" {
		path = Path()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes the configuration to path, or to Path() when path is
// empty, creating the parent directory as needed.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = Path()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Timeout returns the per-request timeout. Zero means unbounded.
func (c *Config) Timeout() time.Duration {
	if c.RequestTimeoutMillis <= 0 {
		return 0
	}
	return time.Duration(c.RequestTimeoutMillis) * time.Millisecond
}

// ForcePolicy maps the configured force string onto a policy,
// defaulting to prompting.
func (c *Config) ForcePolicy() vpm.ForcePolicy {
	switch c.Force {
	case "always":
		return vpm.ForceAlways
	case "never":
		return vpm.ForceNever
	}
	return vpm.ForcePrompt
}

// Chain returns the tier chain for apps and releases. Without a
// configured runtime version only the generic tier is searched.
func (c *Config) Chain() vpm.Chain {
	if c.RuntimeVersion == "" {
		return vpm.Chain{vpm.GenericTier}
	}
	return vpm.NewChain(c.RuntimeVersion)
}

// AddFetchRepo appends a repository to the fetch list. Duplicates are
// ignored.
func (c *Config) AddFetchRepo(url string) bool {
	if contains(c.FetchRepos, url) {
		return false
	}
	c.FetchRepos = append(c.FetchRepos, url)
	return true
}

// RemoveFetchRepo removes a repository from the fetch list.
func (c *Config) RemoveFetchRepo(url string) bool {
	var removed bool
	c.FetchRepos, removed = remove(c.FetchRepos, url)
	return removed
}

// AddPublishRepo appends a repository to the publish list. Duplicates
// are ignored.
func (c *Config) AddPublishRepo(url string) bool {
	if contains(c.PublishRepos, url) {
		return false
	}
	c.PublishRepos = append(c.PublishRepos, url)
	return true
}

// RemovePublishRepo removes a repository from the publish list.
func (c *Config) RemovePublishRepo(url string) bool {
	var removed bool
	c.PublishRepos, removed = remove(c.PublishRepos, url)
	return removed
}

func defaultInstallRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".vessel"
	}
	return filepath.Join(home, ".vessel")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func remove(list []string, s string) ([]string, bool) {
	out := list[:0]
	removed := false
	for _, v := range list {
		if v == s {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return out, removed
}
