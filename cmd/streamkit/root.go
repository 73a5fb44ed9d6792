package main

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/kbukum/streamkit/config"
	"github.com/kbukum/streamkit/internal/demo"
	"github.com/kbukum/streamkit/logger"
	"github.com/kbukum/streamkit/stream"
)

const (
	configFlag   = "config"
	logLevelFlag = "log-level"
	workersFlag  = "workers"
	seedFlag     = "seed"
	parallelFlag = "parallel"

	shutdownTimeout = 5 * time.Second
)

// app is the state shared by every subcommand once the root pre-run has
// loaded configuration.
type app struct {
	out      io.Writer
	cfg      *config.AppConfig
	log      *logger.Logger
	shutdown []func(context.Context) error
}

// NewRootCommand builds the streamkit command tree. Demo output goes to out;
// logs go wherever the logging configuration points.
func NewRootCommand(out io.Writer) *cobra.Command {
	a := &app{out: out}

	root := &cobra.Command{
		Use:   "streamkit",
		Short: "Run the lazy sequence pipeline demos",
		Long: `streamkit runs instructional programs built on a lazy, single-consumption
sequence pipeline: comparator sorting, word counting and a tour of the
pipeline API.

Configuration is read from config.yml and .env, then environment variables,
then flags (in increasing precedence).`,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return a.close(cmd.Context())
		},
	}

	flags := root.PersistentFlags()
	flags.String(configFlag, "", "path to a config file (default: search ./config.yml, ./config/config.yml)")
	flags.String(logLevelFlag, "", "log level: trace, debug, info, warn, error, disabled")
	flags.Int(workersFlag, 0, "parallel worker count, 0 for one per CPU")

	root.AddCommand(
		newLambdaCommand(a),
		newWordsCommand(a),
		newAPICommand(a),
		newVersionCommand(out),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if cmd.Name() == "version" {
		return nil
	}
	flags := cmd.Flags()

	opts := []config.LoaderOption{config.WithFlags(map[string]*pflag.Flag{
		"logging.level":  flags.Lookup(logLevelFlag),
		"stream.workers": flags.Lookup(workersFlag),
	})}
	if path, _ := flags.GetString(configFlag); path != "" {
		opts = append(opts, config.WithConfigFile(path))
	}
	if f := flags.Lookup(parallelFlag); f != nil {
		opts = append(opts, config.WithFlags(map[string]*pflag.Flag{"stream.parallel": f}))
	}

	cfg, err := config.LoadApp(opts...)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger.Init(&cfg.Logging)
	logger.RegisterDefaults("stream", "demo")
	a.log = logger.GetGlobalLogger()
	stream.SetLogger(logger.Get("stream"))

	if cfg.Telemetry.Enabled {
		shutdown, err := initTelemetry(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		a.shutdown = append(a.shutdown, shutdown...)
	}

	a.log.Debug("configuration loaded", logger.Fields(
		"environment", cfg.Environment,
		logger.FieldWorkers, cfg.Stream.Workers,
		"executor", cfg.Stream.Executor,
		"parallel", cfg.Stream.Parallel,
		"telemetry", cfg.Telemetry.Enabled,
	))
	return nil
}

func (a *app) close(ctx context.Context) error {
	if len(a.shutdown) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()

	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		errs = append(errs, a.shutdown[i](ctx))
	}
	a.shutdown = nil
	if err := errors.Join(errs...); err != nil {
		a.log.Warn("telemetry shutdown failed", logger.Fields(logger.FieldError, err.Error()))
		return err
	}
	return nil
}

// runner builds a demo runner from the loaded configuration.
func (a *app) runner(seed uint64) *demo.Runner {
	opts := []demo.Option{
		demo.WithLogger(logger.Get("demo")),
		demo.WithParallel(a.cfg.Stream.Parallel),
		demo.WithStreamOptions(
			stream.WithExecutor(a.cfg.Stream.NewExecutor()),
			stream.WithBatchSize(a.cfg.Stream.BatchSize),
		),
	}
	if seed != 0 {
		opts = append(opts, demo.WithSeed(seed))
	}
	return demo.New(a.out, opts...)
}
