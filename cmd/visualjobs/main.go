package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"visualjobs.local/internal/api"
	"visualjobs.local/internal/config"
	"visualjobs.local/internal/domain"
	"visualjobs.local/internal/logger"
	"visualjobs.local/internal/metrics"
	"visualjobs.local/internal/notion"
	"visualjobs.local/internal/pipeline"
	"visualjobs.local/internal/store"
)

var configPath string

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "visualjobs",
		Short: "Sankey view of a Notion job application tracker",
		Long: `visualjobs reads every application from a Notion database, classifies
each one into a pipeline stage and serves the resulting flow diagram.

Running it without a subcommand is the same as "visualjobs serve".`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default: ./config.yaml if present)")

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Fetch once and serve the dashboard",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	})
	root.AddCommand(newReportCmd())
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// env is what every command needs after startup.
type env struct {
	cfg    *config.Config
	log    *zap.Logger
	client *notion.Client
}

func setup() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}

	log.Info("startup",
		zap.String("database_id", cfg.Notion.DatabaseID),
		zap.String("token", logger.Mask(cfg.Notion.Token)),
		zap.String("mode", cfg.Aggregation.Mode),
		zap.String("schema", cfg.Notion.SchemaVersion),
		zap.String("history", cfg.History.Path),
	)

	client := notion.New(cfg.Notion.Token, cfg.Notion.DatabaseID,
		notion.WithPageSize(cfg.Notion.PageSize),
		notion.WithLogger(log),
	)
	return &env{cfg: cfg, log: log, client: client}, nil
}

// loadSnapshot pings the database and runs the pipeline once.
func (e *env) loadSnapshot(ctx context.Context, m *metrics.Metrics) (*domain.Snapshot, error) {
	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.client.Ping(pingCtx); err != nil {
		return nil, fmt.Errorf("notion ping: %w", err)
	}
	e.log.Info("notion connection ok")

	start := time.Now()
	snap, err := pipeline.Run(ctx, e.client, notion.SchemaFromConfig(e.cfg), e.cfg.Mode(), e.log)
	if m != nil {
		m.ObserveFetch(time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	e, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	snap, err := e.loadSnapshot(ctx, m)
	if err != nil {
		e.log.Error("startup fetch failed", zap.Error(err))
		return err
	}
	m.Observe(snap)

	opts := []api.Option{
		api.WithLogger(e.log),
		api.WithMetrics(m, reg),
	}

	if path := e.cfg.History.Path; path != "" {
		db, err := store.OpenSQLite(path)
		if err != nil {
			return fmt.Errorf("open history: %w", err)
		}
		defer db.Close()

		st := store.New(db)
		if err := st.Migrate(ctx); err != nil {
			return fmt.Errorf("migrate history: %w", err)
		}
		id, err := st.SaveRun(ctx, snap)
		if err != nil {
			return fmt.Errorf("save run: %w", err)
		}
		e.log.Info("run archived", zap.String("id", id), zap.String("path", path))
		opts = append(opts, api.WithHistory(st))
	}

	srv := api.New(snap, e.client, opts...)
	return srv.Listen(ctx, ":"+e.cfg.HTTP.Port)
}
