package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/k1nky/pachca-client/internal/cache"
	"github.com/k1nky/pachca-client/internal/client"
	"github.com/k1nky/pachca-client/internal/config"
	"github.com/k1nky/pachca-client/internal/pachca"
)

var errNoToken = errors.New("no access token: pass --token, set " + config.EnvToken + " or add access_token to " + config.FileName)

// session is everything a command needs to talk to the API.
type session struct {
	cfg    *config.Config
	logger *zap.Logger
	api    *pachca.Pachca
}

type sessionOptions struct {
	configPath string
	token      string
	debug      bool
	logger     *zap.Logger
	prompt     func() (string, error)
	// configOverride is used as is instead of loading the config file.
	configOverride *config.Config
}

// openSession builds a session from the global flags.
func openSession() (*session, error) {
	return newSession(sessionOptions{
		configPath: globalFlags.configPath,
		token:      globalFlags.token,
		debug:      globalFlags.debug,
		prompt:     func() (string, error) { return promptToken(os.Stdin, os.Stderr) },
	})
}

func newSession(opts sessionOptions) (*session, error) {
	cfg := opts.configOverride
	if cfg == nil {
		loaded, err := loadConfig(opts.configPath)
		if err != nil {
			return nil, err
		}
		loaded.ApplyEnv()
		cfg = loaded
	}
	if opts.token != "" {
		cfg.AccessToken = opts.token
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if cfg.AccessToken == "" {
		if opts.prompt == nil {
			return nil, errNoToken
		}
		token, err := opts.prompt()
		if err != nil {
			return nil, err
		}
		cfg.AccessToken = token
	}

	var err error
	logger := opts.logger
	if logger == nil {
		logger, err = newLogger(opts.debug)
		if err != nil {
			return nil, fmt.Errorf("creating logger: %w", err)
		}
	}

	clientOpts := []client.Option{
		client.WithBaseURL(cfg.APIBaseURL()),
		client.WithTimeout(cfg.Timeout()),
		client.WithRaiseOnError(cfg.RaiseOnErrorOrDefault()),
		client.WithLogger(logger),
	}
	if !cfg.Proxy.IsZero() {
		clientOpts = append(clientOpts, client.WithProxy(cfg.Proxy))
	}
	c, err := client.New(cfg.AccessToken, clientOpts...)
	if err != nil {
		return nil, err
	}

	apiOpts := []pachca.Option{pachca.WithLogger(logger)}
	if cfg.CacheEnabledOrDefault() {
		listings, err := cache.New[[]pachca.Entity](cfg.CacheTTL())
		if err != nil {
			return nil, err
		}
		apiOpts = append(apiOpts, pachca.WithCache(listings))
	}

	return &session{cfg: cfg, logger: logger, api: pachca.New(c, apiOpts...)}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		config.SetPath(path)
		defer config.SetPath("")
	}
	cfg, err := config.Load()
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		return nil, err
	}
	return cfg, nil
}

// newLogger writes JSON logs at info level, or console logs at debug level
// with --debug. Both go to stderr so stdout stays clean for --json.
func newLogger(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if debug {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	return cfg.Build()
}

// promptToken asks for the access token without echo. It refuses to block on
// a non-interactive stdin.
func promptToken(in *os.File, out io.Writer) (string, error) {
	fd := int(in.Fd())
	if !term.IsTerminal(fd) {
		return "", errNoToken
	}
	fmt.Fprint(out, "Pachca access token: ")
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(out)
	if err != nil {
		return "", fmt.Errorf("reading token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", errNoToken
	}
	return token, nil
}
