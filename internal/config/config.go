// Package config handles .pachca configuration file parsing.
//
// The .pachca file is looked up from the working directory up to the git
// root, then in the user config directory. It contains:
//
//	access_token: "..."                         - Pachca API access token
//	base_url: "https://api.pachca.com/..."      - API root (optional)
//	timeout_seconds: 30                         - Request timeout (optional)
//	cache_ttl_seconds: 60                       - Listing cache TTL (optional)
//	cache_enabled: true                         - Cache chat/user listings (optional)
//	raise_on_error: true                        - Fail on API errors instead of logging them (optional)
//	proxy:                                      - Per-scheme proxies (optional)
//	  http: "http://proxy:3128"
//	  https: "http://proxy:3128"
//	  no_proxy: "localhost"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/k1nky/pachca-client/internal/cache"
	"github.com/k1nky/pachca-client/internal/client"
)

// FileName is the name of the configuration file.
const FileName = ".pachca"

// Environment variables that override the file.
const (
	EnvToken   = "PACHCA_TOKEN"
	EnvBaseURL = "PACHCA_URL"
)

// customPath holds an optional custom config file path.
// When empty, Load() searches the default locations.
var customPath string

// SetPath sets a custom config file path for Load() to use.
// Pass an empty string to reset to the default path.
func SetPath(path string) {
	customPath = path
}

// GetPath returns the current config file path.
// Returns the custom path if set, otherwise the default FileName.
func GetPath() string {
	if customPath != "" {
		return customPath
	}
	return FileName
}

var urlPattern = regexp.MustCompile(`^https?://[^\s]+$`)

// Config represents the .pachca configuration file.
type Config struct {
	AccessToken     string             `yaml:"access_token,omitempty"`
	BaseURL         string             `yaml:"base_url,omitempty"`
	TimeoutSeconds  int                `yaml:"timeout_seconds,omitempty"`
	CacheTTLSeconds int                `yaml:"cache_ttl_seconds,omitempty"`
	CacheEnabled    *bool              `yaml:"cache_enabled,omitempty"`
	RaiseOnError    *bool              `yaml:"raise_on_error,omitempty"`
	Proxy           client.ProxyConfig `yaml:"proxy,omitempty"`
}

// Default returns an empty configuration: every setting takes its default.
func Default() *Config {
	return &Config{}
}

func (c *Config) CacheEnabledOrDefault() bool {
	if c.CacheEnabled == nil {
		return true
	}
	return *c.CacheEnabled
}

func (c *Config) RaiseOnErrorOrDefault() bool {
	if c.RaiseOnError == nil {
		return true
	}
	return *c.RaiseOnError
}

// Timeout returns the request timeout.
func (c *Config) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return client.DefaultTimeout
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// CacheTTL returns the listing cache time-to-live.
func (c *Config) CacheTTL() time.Duration {
	if c.CacheTTLSeconds <= 0 {
		return cache.DefaultTTL
	}
	return time.Duration(c.CacheTTLSeconds) * time.Second
}

// APIBaseURL returns the configured API root or the Pachca default.
func (c *Config) APIBaseURL() string {
	if c.BaseURL == "" {
		return client.DefaultBaseURL
	}
	return c.BaseURL
}

// ApplyEnv overrides file values with PACHCA_TOKEN and PACHCA_URL, and falls
// back to the standard proxy variables when the file configures no proxy.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvToken)); v != "" {
		c.AccessToken = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if c.Proxy.IsZero() {
		c.Proxy = client.ProxyFromEnvironment()
	}
}

// Load reads and parses the configuration file.
// Uses the custom path if set via SetPath(), otherwise searches the default locations.
// A missing default file is not an error: the defaults are returned.
func Load() (*Config, error) {
	if customPath != "" {
		return LoadFrom(customPath)
	}

	path, err := findDefaultConfigPath()
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads and parses a configuration file from a specific path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err // Return unwrapped for os.IsNotExist() checks
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	return cfg, nil
}

// UserConfigPath returns the per-user config location (~/.config/pachca/config.yaml on Linux).
func UserConfigPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "pachca", "config.yaml"), nil
}

func findDefaultConfigPath() (string, error) {
	if cwd, err := os.Getwd(); err == nil {
		if gitRoot, ok := findGitRoot(cwd); ok {
			dir := cwd
			for {
				candidate := filepath.Join(dir, FileName)
				if _, err := os.Stat(candidate); err == nil {
					return candidate, nil
				}
				if dir == gitRoot {
					break
				}
				parent := filepath.Dir(dir)
				if parent == dir {
					break
				}
				dir = parent
			}
		} else if _, err := os.Stat(FileName); err == nil {
			// Outside a git worktree only the current directory is checked.
			return FileName, nil
		}
	}

	userPath, err := UserConfigPath()
	if err != nil {
		return "", &os.PathError{Op: "open", Path: FileName, Err: os.ErrNotExist}
	}
	if _, err := os.Stat(userPath); err != nil {
		return "", err
	}
	return userPath, nil
}

func findGitRoot(start string) (string, bool) {
	dir := start
	for {
		gitPath := filepath.Join(dir, ".git")
		if _, err := os.Stat(gitPath); err == nil {
			return dir, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false
}

// Save writes the configuration to the config file.
// Uses the custom path if set via SetPath(), otherwise uses the default FileName.
func (c *Config) Save() error {
	path := GetPath()
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	// Write with header comment
	header := "# Generated by: pachca config init\n# Contains an access token - DO NOT COMMIT\n\n"
	content := header + string(data)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	return nil
}

// Validate checks that all present fields are valid. The access token is
// checked separately by callers since it may come from a prompt.
func (c *Config) Validate() error {
	if c.BaseURL != "" && !urlPattern.MatchString(c.BaseURL) {
		return fmt.Errorf("base_url must be a valid HTTP(S) URL")
	}
	if c.TimeoutSeconds < 0 {
		return fmt.Errorf("timeout_seconds must not be negative")
	}
	if c.CacheTTLSeconds < 0 {
		return fmt.Errorf("cache_ttl_seconds must not be negative")
	}
	for name, p := range map[string]string{"proxy.http": c.Proxy.HTTP, "proxy.https": c.Proxy.HTTPS} {
		if p != "" && !urlPattern.MatchString(p) {
			return fmt.Errorf("%s must be a valid HTTP(S) URL", name)
		}
	}
	if strings.ContainsAny(c.AccessToken, " \t\r\n") {
		return fmt.Errorf("access_token must not contain whitespace")
	}
	return nil
}
