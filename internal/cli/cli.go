package cli

import (
	"context"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/simpleindex/pkg/buildinfo"
	"github.com/matzehuels/simpleindex/pkg/cache"
	"github.com/matzehuels/simpleindex/pkg/config"
	"github.com/matzehuels/simpleindex/pkg/errors"
	"github.com/matzehuels/simpleindex/pkg/integrations/pypi"
	"github.com/matzehuels/simpleindex/pkg/observability"
	"github.com/matzehuels/simpleindex/pkg/simple"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	cfg   *config.Config
	flags globalFlags
}

// globalFlags are the persistent flags that override config values.
type globalFlags struct {
	configPath string
	indexURL   string
	accept     string
	noCache    bool
	refresh    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level. At debug level, fetch, cache and
// decode events are logged as well.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
	if level <= log.DebugLevel {
		observability.NewLogHooks(c.Logger).Register()
	}
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "simpleindex",
		Short: "simpleindex reads Python package indexes",
		Long: `simpleindex is a client and translating proxy for the Python Simple Repository API.
It reads PEP 503 HTML and PEP 691 JSON indexes such as PyPI and private mirrors.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		PersistentPreRunE: c.loadConfig,
	}

	root.SetVersionTemplate(buildinfo.Template())

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "config file (default "+config.Path()+")")
	pf.StringVar(&c.flags.indexURL, "index-url", "", "base URL of the package index")
	pf.StringVar(&c.flags.accept, "accept", "", "representations to negotiate: supported, json-latest, json-v1, html")
	pf.BoolVar(&c.flags.noCache, "no-cache", false, "disable the response cache")
	pf.BoolVar(&c.flags.refresh, "refresh", false, "bypass cached responses and refetch")

	root.AddCommand(c.indexCommand())
	root.AddCommand(c.filesCommand())
	root.AddCommand(c.urlCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the layered configuration and applies flag overrides.
func (c *CLI) loadConfig(cmd *cobra.Command, _ []string) error {
	cfg, err := c.resolveConfig()
	if err != nil {
		return err
	}
	c.cfg = cfg
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}

// resolveConfig loads the configuration file and environment and applies
// the current flag values on top.
func (c *CLI) resolveConfig() (*config.Config, error) {
	cfg, err := config.Load(c.flags.configPath)
	if err != nil {
		return nil, err
	}
	if c.flags.indexURL != "" {
		cfg.IndexURL = c.flags.indexURL
	}
	if c.flags.accept != "" {
		cfg.Accept = c.flags.accept
	}
	if c.flags.noCache {
		cfg.Cache.Backend = cache.BackendNone
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// settings returns the loaded configuration, falling back to defaults for
// commands run without the root pre-run (tests).
func (c *CLI) settings() *config.Config {
	if c.cfg == nil {
		c.cfg = config.Default()
	}
	return c.cfg
}

// =============================================================================
// Client Factory
// =============================================================================

// newClient opens the configured cache and creates an index client.
// The returned close function releases the cache.
func (c *CLI) newClient(ctx context.Context) (*pypi.Client, func(), error) {
	cfg := c.settings()
	policy, err := cfg.AcceptPolicy()
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "accept")
	}

	store, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		c.Logger.Warn("cache unavailable, continuing without", "backend", cfg.Cache.Backend, "err", err)
		store = cache.NewNullCache()
	}

	client, err := pypi.NewClient(pypi.Options{
		IndexURL: cfg.IndexURL,
		Accept:   policy,
		Cache:    store,
		CacheTTL: cfg.Cache.TTL.Duration,
		Timeout:  cfg.Timeout.Duration,
		Logger:   c.Logger,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return client, func() { _ = store.Close() }, nil
}

// fetchProject fetches the details of one project with a spinner.
func (c *CLI) fetchProject(ctx context.Context, name string) (*simple.ProjectDetails, error) {
	if err := errors.ValidateProjectName(name); err != nil {
		return nil, err
	}
	client, closeFn, err := c.newClient(ctx)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	spinner := newSpinnerWithContext(ctx, "Fetching "+name+"...")
	spinner.Start()
	prog := newProgress(loggerFromContext(ctx))
	details, err := client.FetchProject(ctx, name, c.flags.refresh)
	spinner.Stop()
	if err != nil {
		return nil, err
	}
	prog.done("fetched project", "name", details.Name, "files", len(details.Files))
	return details, nil
}
