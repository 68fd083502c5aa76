package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/hupe1980/vecdb"
	"github.com/hupe1980/vecdb/blobstore"
	"github.com/hupe1980/vecdb/internal/config"
	"github.com/hupe1980/vecdb/internal/server"
	"github.com/hupe1980/vecdb/metrics/prom"
)

var (
	serveAddr     string
	serveLogLevel string
	serveNoLoad   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	Long: `Run the HTTP API.

If a snapshot backend is configured, the database is restored from the
configured snapshot on start and saved back on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
	serveCmd.Flags().StringVar(&serveLogLevel, "log-level", "", "log level (overrides log.level)")
	serveCmd.Flags().BoolVar(&serveNoLoad, "no-restore", false, "start empty even if a snapshot exists")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}
	if serveLogLevel != "" {
		cfg.Log.Level = serveLogLevel
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, !serveNoLoad)
}

func newLogger(cfg config.Config) *vecdb.Logger {
	if cfg.Log.Format == "json" {
		return vecdb.NewJSONLogger(cfg.LogLevel())
	}
	return vecdb.NewTextLogger(cfg.LogLevel())
}

// serve runs the server until ctx is done, then shuts it down and persists the database.
func serve(ctx context.Context, cfg config.Config, restore bool) error {
	logger := newLogger(cfg)

	store, err := openStore(ctx, cfg.Snapshot)
	if err != nil {
		return fmt.Errorf("open snapshot store: %w", err)
	}

	c, comp := cfg.Snapshot.CodecAndCompression()
	opts := []vecdb.Option{
		vecdb.WithLogger(logger),
		vecdb.WithIndexBuilder(cfg.Index.Builder()),
		vecdb.WithCodec(c),
		vecdb.WithSnapshotCompression(comp),
		vecdb.WithMaxConcurrentBuilds(cfg.Index.MaxConcurrentBuilds),
		vecdb.WithSnapshotIOLimit(cfg.Snapshot.IOLimit),
	}

	var srvOpts []server.Option
	if cfg.Server.Metrics {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

		mc, err := prom.New(reg)
		if err != nil {
			return err
		}
		opts = append(opts, vecdb.WithMetricsCollector(mc))
		srvOpts = append(srvOpts, server.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})))
	}

	db, err := openDatabase(ctx, store, cfg.Snapshot.Name, restore, opts)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           server.New(db, cfg.Server, logger, srvOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Server.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown", "error", err)
	}

	if store == nil {
		return nil
	}

	return db.SaveSnapshot(shutdownCtx, store, cfg.Snapshot.Name)
}

func openDatabase(ctx context.Context, store blobstore.BlobStore, name string, restore bool, opts []vecdb.Option) (*vecdb.Database, error) {
	if store == nil || !restore {
		return vecdb.New(opts...), nil
	}

	db, err := vecdb.LoadSnapshot(ctx, store, name, opts...)
	if errors.Is(err, blobstore.ErrNotFound) {
		return vecdb.New(opts...), nil
	}
	if err != nil {
		return nil, fmt.Errorf("restore %q: %w", name, err)
	}

	return db, nil
}
