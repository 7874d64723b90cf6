package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"road-warehouse/report"
	"road-warehouse/warehouse"

	"github.com/go-co-op/gocron"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type options struct {
	configPath  string
	db          string
	metricsFile string
	debug       bool
	quiet       bool
}

// app carries what PersistentPreRunE resolved for the subcommand.
type app struct {
	opts options
	cfg  warehouse.Config
	log  *zap.Logger
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "road-warehouse",
		Short:         "Incremental load of road accident and toll traffic workbooks into a star schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	f := root.PersistentFlags()
	f.StringVar(&a.opts.configPath, "config", "", "YAML config file path.")
	f.StringVar(&a.opts.db, "db", "", "SQLite warehouse path (overrides config database).")
	f.StringVar(&a.opts.metricsFile, "metrics-file", "", "Write Prometheus textfile metrics here after each run.")
	f.BoolVar(&a.opts.debug, "debug", false, "Enable debug logs.")
	f.BoolVar(&a.opts.quiet, "quiet", false, "Print only the executive report.")

	root.AddCommand(
		a.phaseCmd("init", "Create the schema and seed the dimensions", (*warehouse.Runner).Init),
		a.phaseCmd("transform", "Normalize new workbooks into clean files", (*warehouse.Runner).Transform),
		a.phaseCmd("load", "Load clean files not yet in a ledger", (*warehouse.Runner).Load),
		a.phaseCmd("run", "Run every phase once", (*warehouse.Runner).Run),
		a.watchCmd(),
	)
	return root
}

// setup merges config file, environment and the flags the user set.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := warehouse.LoadConfig(a.opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	flags := cmd.Flags()
	if flags.Changed("db") {
		cfg.Database = a.opts.db
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = a.opts.metricsFile
	}
	if flags.Changed("debug") {
		cfg.Debug = a.opts.debug
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	a.cfg = cfg

	log, err := newLogger(cfg)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	a.log = log
	return nil
}

func newLogger(cfg warehouse.Config) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Logging.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}
	level := zapcore.InfoLevel
	if cfg.Logging.Level != "" {
		if err := level.Set(cfg.Logging.Level); err != nil {
			return nil, err
		}
	}
	if cfg.Debug {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

type phase func(*warehouse.Runner, context.Context, report.ProgressFunc) (warehouse.Result, error)

func (a *app) phaseCmd(use, short string, fn phase) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			r, err := a.runner()
			if err != nil {
				return err
			}
			defer r.Close()
			res, err := fn(r, cmd.Context(), a.progress(cmd.OutOrStdout()))
			a.summarize(use, res)
			return err
		},
	}
}

func (a *app) watchCmd() *cobra.Command {
	var interval time.Duration
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Run every phase on a fixed interval until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("interval") {
				a.cfg.Watch.Interval = interval
			}
			if a.cfg.Watch.Interval <= 0 {
				return errors.New("watch: interval must be positive")
			}
			return a.watch(cmd.Context(), cmd.OutOrStdout())
		},
	}
	cmd.Flags().DurationVar(&interval, "interval", warehouse.DefaultInterval, "Time between runs (overrides config watch.interval).")
	return cmd
}

// watch keeps one runner open and lets the scheduler fire runs; a run still
// in progress makes the scheduler skip the next tick.
func (a *app) watch(ctx context.Context, out io.Writer) error {
	r, err := a.runner()
	if err != nil {
		return err
	}
	defer r.Close()

	s := gocron.NewScheduler(time.UTC)
	_, err = s.Every(a.cfg.Watch.Interval).SingletonMode().Do(func() {
		res, err := r.Run(ctx, a.progress(out))
		a.summarize("run", res)
		if err != nil && ctx.Err() == nil {
			a.log.Error("scheduled run failed", zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("schedule: %w", err)
	}
	a.log.Info("watching", zap.Duration("interval", a.cfg.Watch.Interval))
	s.StartAsync()
	<-ctx.Done()
	s.Stop()
	a.log.Info("watch stopped")
	return nil
}

func (a *app) runner() (*warehouse.Runner, error) {
	return warehouse.NewRunner(warehouse.RunnerConfig{
		Config:  a.cfg,
		Logger:  a.log,
		Metrics: warehouse.NewMetrics(),
	})
}

// progress prints live lines and a step counter; with --quiet only the
// final report gets through.
func (a *app) progress(w io.Writer) report.ProgressFunc {
	quiet := a.opts.quiet
	inReport := false
	return func(msg string, completed, total int) {
		if completed >= 0 {
			if !quiet {
				fmt.Fprintf(w, "[%d/%d]\n", completed, total)
			}
			return
		}
		if msg == "=== Executive report ===" {
			inReport = true
		}
		if quiet && !inReport {
			return
		}
		fmt.Fprintln(w, msg)
	}
}

func (a *app) summarize(phase string, res warehouse.Result) {
	committed, failed, rows := 0, 0, 0
	for _, o := range res.Loaded {
		if o.Ledgered() {
			committed++
			rows += o.Inserted
		} else {
			failed++
		}
	}
	a.log.Info("phase done",
		zap.String("phase", phase),
		zap.String("run_id", res.RunID),
		zap.Int("normalized", len(res.Normalized)),
		zap.Int("committed", committed),
		zap.Int("failed", failed),
		zap.Int("rows", rows),
		zap.Int("rejected_files", len(res.Report.Rejected)))
}
