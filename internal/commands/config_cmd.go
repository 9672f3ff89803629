package commands

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/k1nky/pachca-client/internal/client"
	"github.com/k1nky/pachca-client/internal/config"
)

// CLI flags for config init
var configInitFlags struct {
	baseURL  string
	timeout  int
	cacheTTL int
	noCache  bool
	force    bool
	noVerify bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the .pachca config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .pachca config file",
	Long: `Create a .pachca configuration file in the current directory (or at --config).

Configuration sources (in priority order):
1. Command line flags (--token, --base-url, ...)
2. Environment variables (PACHCA_TOKEN, PACHCA_URL)
3. .env file in current directory
4. Interactive prompt for the token (TTY mode only)

The token is checked against the API before the file is written unless
--no-verify is given. The file is written with mode 0600.`,
	Args: cobra.NoArgs,
	RunE: runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	f := configInitCmd.Flags()
	f.StringVar(&configInitFlags.baseURL, "base-url", "", "API root URL")
	f.IntVar(&configInitFlags.timeout, "timeout", 0, "Request timeout in seconds")
	f.IntVar(&configInitFlags.cacheTTL, "cache-ttl", 0, "Listing cache TTL in seconds")
	f.BoolVar(&configInitFlags.noCache, "no-cache", false, "Disable the listing cache")
	f.BoolVar(&configInitFlags.force, "force", false, "Overwrite an existing config file")
	f.BoolVar(&configInitFlags.noVerify, "no-verify", false, "Do not check the token against the API")

	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if globalFlags.configPath != "" {
		config.SetPath(globalFlags.configPath)
		defer config.SetPath("")
	}
	path := config.GetPath()
	if _, err := os.Stat(path); err == nil && !configInitFlags.force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	cfg := config.Default()
	cfg.ApplyEnv()
	// Proxies from the environment stay in the environment.
	cfg.Proxy = client.ProxyConfig{}
	if globalFlags.token != "" {
		cfg.AccessToken = globalFlags.token
	}
	if configInitFlags.baseURL != "" {
		cfg.BaseURL = configInitFlags.baseURL
	}
	cfg.TimeoutSeconds = configInitFlags.timeout
	cfg.CacheTTLSeconds = configInitFlags.cacheTTL
	if configInitFlags.noCache {
		disabled := false
		cfg.CacheEnabled = &disabled
	}
	if cfg.AccessToken == "" {
		token, err := promptToken(os.Stdin, os.Stderr)
		if err != nil {
			return err
		}
		cfg.AccessToken = token
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	if !configInitFlags.noVerify {
		verifyCfg := *cfg
		verifyCfg.Proxy = client.ProxyFromEnvironment()
		s, err := newSession(sessionOptions{debug: globalFlags.debug, configOverride: &verifyCfg})
		if err != nil {
			return err
		}
		defer s.close()
		profile, err := s.api.GetProfile(cmd.Context())
		if err != nil {
			return describeError("verifying token", err)
		}
		printOut(cmd, fmt.Sprintf("Token belongs to @%s (ID: %d)\n", profile.Nickname, profile.ID))
	}

	if err := cfg.Save(); err != nil {
		return err
	}
	printOut(cmd, fmt.Sprintf("✓ Wrote %s\n", path))
	return nil
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(globalFlags.configPath)
	if err != nil {
		return err
	}
	cfg.ApplyEnv()
	if globalFlags.token != "" {
		cfg.AccessToken = globalFlags.token
	}
	printOut(cmd, formatConfigOutput(cfg, globalFlags.json))
	return nil
}

// maskToken keeps the last four characters of a token.
func maskToken(token string) string {
	if token == "" {
		return "(not set)"
	}
	if len(token) <= 4 {
		return strings.Repeat("*", len(token))
	}
	return strings.Repeat("*", 8) + token[len(token)-4:]
}

func formatConfigOutput(cfg *config.Config, asJSON bool) string {
	if asJSON {
		return marshalJSONOrFallback(map[string]any{
			"access_token":   maskToken(cfg.AccessToken),
			"base_url":       cfg.APIBaseURL(),
			"timeout":        cfg.Timeout().String(),
			"cache_enabled":  cfg.CacheEnabledOrDefault(),
			"cache_ttl":      cfg.CacheTTL().String(),
			"raise_on_error": cfg.RaiseOnErrorOrDefault(),
			"proxy":          cfg.Proxy,
		})
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("access_token:   %s\n", maskToken(cfg.AccessToken)))
	sb.WriteString(fmt.Sprintf("base_url:       %s\n", cfg.APIBaseURL()))
	sb.WriteString(fmt.Sprintf("timeout:        %s\n", cfg.Timeout()))
	sb.WriteString(fmt.Sprintf("cache_enabled:  %t\n", cfg.CacheEnabledOrDefault()))
	sb.WriteString(fmt.Sprintf("cache_ttl:      %s\n", cfg.CacheTTL()))
	sb.WriteString(fmt.Sprintf("raise_on_error: %t\n", cfg.RaiseOnErrorOrDefault()))
	if cfg.Proxy.IsZero() {
		sb.WriteString("proxy:          none\n")
	} else {
		if cfg.Proxy.HTTP != "" {
			sb.WriteString(fmt.Sprintf("proxy.http:     %s\n", cfg.Proxy.HTTP))
		}
		if cfg.Proxy.HTTPS != "" {
			sb.WriteString(fmt.Sprintf("proxy.https:    %s\n", cfg.Proxy.HTTPS))
		}
		if cfg.Proxy.NoProxy != "" {
			sb.WriteString(fmt.Sprintf("proxy.no_proxy: %s\n", cfg.Proxy.NoProxy))
		}
	}
	return sb.String()
}
