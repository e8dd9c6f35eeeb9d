package serve

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/peterbourgon/ff/v3"
	"github.com/peterbourgon/ff/v3/ffcli"
	"golang.org/x/sync/errgroup"

	"github.com/sig-0/fxwatch/cmd/env"
	"github.com/sig-0/fxwatch/ingest"
	"github.com/sig-0/fxwatch/metrics"
	"github.com/sig-0/fxwatch/server"
	"github.com/sig-0/fxwatch/server/config"
)

// serveCfg wraps the serve configuration
type serveCfg struct {
	config   *config.Config
	pipeline env.PipelineConfig

	configPath string
	logLevel   string
	schedule   string

	ingest     bool
	runOnStart bool
}

// NewServeCmd creates the serve command
func NewServeCmd() *ffcli.Command {
	cfg := &serveCfg{
		config: config.DefaultConfig(),
	}

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	cfg.registerFlags(fs)

	return &ffcli.Command{
		Name:       "serve",
		ShortUsage: "serve [flags]",
		ShortHelp:  "Serves the series API, and captures quotations on a schedule",
		LongHelp: "Serves the read-only series API over the data directory. " +
			"Unless disabled, the quotation is also captured on the given cron schedule",
		FlagSet: fs,
		Exec:    cfg.exec,
		Options: []ff.Option{
			// Allow using ENV variables
			ff.WithEnvVars(),
			ff.WithEnvVarPrefix(env.Prefix),
		},
	}
}

func (c *serveCfg) registerFlags(fs *flag.FlagSet) {
	c.pipeline.RegisterFlags(fs)
	env.RegisterLogLevel(fs, &c.logLevel)

	fs.StringVar(
		&c.config.ListenAddress,
		"listen",
		config.DefaultListenAddress,
		"the IP:PORT URL for the server",
	)

	fs.StringVar(
		&c.configPath,
		"config",
		"",
		"the path to the server TOML configuration, if any",
	)

	fs.StringVar(
		&c.schedule,
		"schedule",
		ingest.DefaultSchedule,
		"the cron schedule of the quotation captures",
	)

	fs.BoolVar(
		&c.ingest,
		"ingest",
		true,
		"capture quotations on the schedule",
	)

	fs.BoolVar(
		&c.runOnStart,
		"run-on-start",
		true,
		"capture a quotation as soon as the service starts",
	)
}

func (c *serveCfg) exec(ctx context.Context, _ []string) error {
	// Read the server configuration, if any
	if c.configPath != "" {
		serverCfg, err := config.Read(c.configPath)
		if err != nil {
			return fmt.Errorf("unable to read server config: %w", err)
		}

		c.config = serverCfg
	}

	var (
		logger = env.NewLogger(c.logLevel)
		m      = metrics.New()
	)

	pipeline, store, err := c.pipeline.Build(logger, m)
	if err != nil {
		return err
	}

	// Create the server instance
	s, err := server.New(
		store,
		server.WithLogger(logger),
		server.WithConfig(c.config),
		server.WithMetrics(m),
	)
	if err != nil {
		return fmt.Errorf("unable to create server: %w", err)
	}

	var scheduler *ingest.Scheduler

	if c.ingest {
		scheduler, err = ingest.NewScheduler(
			pipeline,
			c.schedule,
			ingest.WithSchedulerLogger(logger),
			ingest.WithRunOnStart(c.runOnStart),
		)
		if err != nil {
			return err
		}
	}

	runCtx, cancelFn := signal.NotifyContext(
		ctx,
		os.Interrupt,
		syscall.SIGINT,
		syscall.SIGTERM,
		syscall.SIGQUIT,
	)
	defer cancelFn()

	group, gCtx := errgroup.WithContext(runCtx)

	// Start the HTTP server
	group.Go(func() error {
		return s.Serve(gCtx)
	})

	if scheduler != nil {
		// Start the ingestion service
		group.Go(func() error {
			return scheduler.Start(gCtx)
		})
	}

	return group.Wait()
}
