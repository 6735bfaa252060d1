package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"wikitextifier/internal/api"
	"wikitextifier/pkg/config"
	"wikitextifier/pkg/db"
	"wikitextifier/pkg/labels"
	"wikitextifier/pkg/logging"
	"wikitextifier/pkg/request"
	"wikitextifier/pkg/store"
	"wikitextifier/pkg/textifier"
	"wikitextifier/pkg/tracker"
	"wikitextifier/pkg/version"
	"wikitextifier/pkg/wikidata"
)

var (
	initConfig = flag.Bool("init-config", false, "Generate default config file and exit")
	configPath = flag.String("config", "configs/textifier.yaml", "Path to config file")
)

func main() {
	flag.Parse()

	if *initConfig {
		if err := config.GenerateDefault(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to generate config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config file generated: %s\n", *configPath)
		return
	}

	if err := run(context.Background(), *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL ERROR: Application failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// .env fills TEXTIFIER_ADDR and TOOL_DATA_DIR before config loads.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cleanupLogs, err := logging.Init(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	defer cleanupLogs()

	slog.Info("WikidataTextifier started", "version", version.Version)

	dbConn, err := db.Init(cfg.DB.Path)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer dbConn.Close()

	st := store.NewSQLiteStore(dbConn)
	tr := tracker.New()

	reqClient := request.New(cfg.Request, tr)
	wdClient := wikidata.NewClient(reqClient, cfg.Wikidata, slog.With("component", "wikidata_client"))

	cache := labels.NewCache(st, time.Duration(cfg.Labels.TTL), tr, slog.With("component", "label_cache"))
	resolver := labels.NewResolver(wdClient, cache, cfg.Wikidata.BatchSize, cfg.Resolver, cfg.Labels, slog.With("component", "resolver"))
	svc := textifier.NewService(wdClient, resolver, cfg.Resolver, tr, slog.With("component", "textifier"))

	go pruneLoop(ctx, dbConn, cfg.Labels)

	entityH := api.NewEntityHandler(svc, slog.With("component", "api"))
	return runServer(ctx, cfg, entityH, tr)
}

// pruneLoop deletes expired label rows on a fixed interval.
func pruneLoop(ctx context.Context, dbConn *db.DB, cfg config.LabelsConfig) {
	interval := time.Duration(cfg.PruneInterval)
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := dbConn.PruneLabels(time.Duration(cfg.TTL))
			if err != nil {
				slog.Warn("Label pruning failed", "error", err)
				continue
			}
			if n > 0 {
				slog.Info("Pruned expired labels", "rows", n)
			}
		}
	}
}

func runServer(ctx context.Context, cfg *config.Config, entityH *api.EntityHandler, tr *tracker.Tracker) error {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	shutdownFunc := func() { quit <- syscall.SIGTERM }

	srv := api.NewServer(cfg.Server, entityH, tr.Registry(), shutdownFunc)

	slog.Info("Starting server", "addr", srv.Addr)
	serverErrors := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	select {
	case <-quit:
		slog.Info("Shutting down server...")
	case <-ctx.Done():
		slog.Info("Context cancelled, shutting down...")
	case err := <-serverErrors:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
