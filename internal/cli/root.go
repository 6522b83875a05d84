// Package cli wires configuration, logging, the search backend and the UI
// behind cobra commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"channelsdb/internal/config"
	"channelsdb/internal/eventbus"
	"channelsdb/internal/logging"
	"channelsdb/internal/metrics"
	"channelsdb/internal/source"
	"channelsdb/internal/ui/services/search"
)

// Version is stamped at build time
var Version = "dev"

// options holds the persistent flags shared by every command
type options struct {
	configPath  string
	apiURL      string
	entriesURL  string
	metricsAddr string
	logFile     string
	logLevel    string
}

// NewRootCmd builds the command tree
func NewRootCmd() *cobra.Command {
	opts := &options{}
	var fullText bool

	root := &cobra.Command{
		Use:   "channelsdb [term...]",
		Short: "Search ChannelsDB from the terminal",
		Long: `channelsdb is an interactive search front-end for ChannelsDB.

Run without arguments to open the search screen. A term given on the command
line is searched on start; --full-text opens it in full-text mode instead.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := setup(cmd.Context(), opts)
			if err != nil {
				return err
			}
			defer env.Close()
			return runTUI(env, strings.Join(args, " "), fullText)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&opts.configPath, "config", "c", "", "config file (default is the user config dir)")
	flags.StringVar(&opts.apiURL, "api-url", "", "override api.groups_url")
	flags.StringVar(&opts.entriesURL, "entries-url", "", "override api.entries_url")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")
	flags.StringVar(&opts.logFile, "log-file", "", "override log.file")
	flags.StringVar(&opts.logLevel, "log-level", "", "override log.level (debug, info, warn, error)")

	root.Flags().BoolVarP(&fullText, "full-text", "f", false, "open the term in full-text mode")

	root.AddCommand(newQueryCmd(opts))
	return root
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return NewRootCmd().ExecuteContext(ctx)
}

// environment is everything a command needs, built from config and flags
type environment struct {
	config  *config.Config
	logger  *zap.Logger
	bus     eventbus.EventBus
	source  source.ResultSource
	cache   *source.Cached // nil when caching is disabled
	metrics *metrics.Metrics

	cancel context.CancelFunc
	done   chan struct{}
}

// setup loads the configuration and builds the shared services
func setup(ctx context.Context, opts *options) (*environment, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, written, err := loadConfig(opts)
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.Log.File, cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	env := &environment{
		config: cfg,
		logger: logger,
		bus:    eventbus.New(logger),
	}
	env.bus.Subscribe(eventbus.EventConfigSaved, func(e eventbus.DomainEvent) {
		logger.Info("config written", zap.String("path", e.(eventbus.ConfigSavedEvent).Path))
	})
	if written != "" {
		env.bus.Publish(eventbus.ConfigSavedEvent{Path: written})
	}

	client := source.NewClient(source.Options{
		GroupsURL:  cfg.API.GroupsURL,
		EntriesURL: cfg.API.EntriesURL,
		GroupLimit: cfg.Paging.GroupValues,
		Timeout:    cfg.API.Timeout.Duration,
		Logger:     logger,
	})
	env.source = client
	if cfg.Cache.Enabled {
		env.cache = source.NewCached(client, cfg.Cache.TTL.Duration, logger)
		env.source = env.cache
	}

	if cfg.Metrics.Addr != "" {
		env.startMetrics(ctx)
	}

	logger.Info("channelsdb started",
		zap.String("version", Version),
		zap.String("groups_url", cfg.API.GroupsURL),
		zap.Bool("cache", cfg.Cache.Enabled))
	return env, nil
}

// startMetrics attaches the collectors to the bus and serves them until Close
func (e *environment) startMetrics(ctx context.Context) {
	e.metrics = metrics.New()
	detach := e.metrics.Attach(e.bus)
	if e.cache != nil {
		e.metrics.ObserveCache(e.cache)
	}

	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})
	go func() {
		defer close(e.done)
		defer detach()
		if err := e.metrics.Serve(ctx, e.config.Metrics.Addr, e.logger); err != nil {
			e.logger.Error("metrics endpoint failed", zap.Error(err))
		}
	}()
}

// Close stops background services and flushes the log
func (e *environment) Close() {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
	e.bus.Close()
	_ = e.logger.Sync()
}

// paging returns the controller page sizes from config
func (e *environment) paging() search.Paging {
	return search.Paging{
		GroupValues:  e.config.Paging.GroupValues,
		GroupEntries: e.config.Paging.GroupEntries,
		FullText:     e.config.Paging.FullText,
	}
}

// loadConfig reads the config file, creating it on first run, and applies
// flag overrides. written is the path of a newly created file.
func loadConfig(opts *options) (cfg *config.Config, written string, err error) {
	svc := config.NewConfigService()
	if opts.configPath != "" {
		svc = config.NewConfigServiceAt(opts.configPath)
	}

	_, statErr := os.Stat(svc.Path())
	cfg, err = svc.Load()
	if err != nil {
		return nil, "", fmt.Errorf("config %s: %w", svc.Path(), err)
	}
	if errors.Is(statErr, os.ErrNotExist) {
		written = svc.Path()
	}

	if opts.apiURL != "" {
		cfg.API.GroupsURL = opts.apiURL
	}
	if opts.entriesURL != "" {
		cfg.API.EntriesURL = opts.entriesURL
	}
	if opts.metricsAddr != "" {
		cfg.Metrics.Addr = opts.metricsAddr
	}
	if opts.logFile != "" {
		cfg.Log.File = opts.logFile
	}
	if opts.logLevel != "" {
		cfg.Log.Level = opts.logLevel
	}
	return cfg, written, nil
}
