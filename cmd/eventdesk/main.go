package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Joseda-hg/eventdesk/internal/config"
	"github.com/Joseda-hg/eventdesk/internal/db"
	"github.com/Joseda-hg/eventdesk/internal/service"
	"github.com/Joseda-hg/eventdesk/internal/web"
)

func main() {
	configPathFlag := flag.String("config", "", "config file path")
	dbPathFlag := flag.String("db", "", "sqlite db path")
	addrFlag := flag.String("addr", "", "http listen address")
	verboseFlag := flag.Bool("v", false, "debug logging")
	flag.Parse()

	setupLogger(*verboseFlag)

	// .env first so the environment overrides below can see it.
	_ = godotenv.Load()

	cfgPath, err := resolveConfigPath(*configPathFlag)
	if err != nil {
		fatal("resolve config path", err)
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatal("load config", err)
	}
	cfg = config.ApplyEnv(cfg)

	if *dbPathFlag != "" {
		cfg.DBPath = *dbPathFlag
	}
	if cfg.DBPath == "" {
		cfg.DBPath = filepath.Join(filepath.Dir(cfgPath), "eventdesk.db")
	}
	if *addrFlag != "" {
		cfg.HTTPAddr = *addrFlag
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":5000"
	}

	store, err := openStore(cfg.DBPath)
	if err != nil {
		fatal("open store", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			slog.Error("close store", "error", err)
		}
	}()

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: web.NewServer(service.New(store)).Handler(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr, "db", cfg.DBPath)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
}

func setupLogger(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

func resolveConfigPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	return config.DefaultConfigPath()
}

func openStore(dbPath string) (*db.Store, error) {
	if err := config.EnsureDir(dbPath); err != nil {
		return nil, err
	}

	sqlDB, err := db.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return db.NewStore(sqlDB), nil
}

func fatal(msg string, err error) {
	slog.Error(msg, "error", err)
	os.Exit(1)
}
