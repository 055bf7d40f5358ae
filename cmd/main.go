package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"Inshorts/internal/config"
	"Inshorts/internal/db"
	"Inshorts/internal/server"
	"Inshorts/internal/sessions"
)

const pruneEvery = time.Hour

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the news site",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	root := &cobra.Command{
		Use:          "inshorts",
		Short:        "Inshorts web front for the news backend",
		SilenceUsage: true,
		RunE:         serve.RunE,
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	root.AddCommand(serve)
	return root
}

// pruner is implemented by the visitor stores that can drop expired rows.
type pruner interface {
	Prune(ctx context.Context) (int64, error)
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store sessions.Store
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Error("database unavailable", zap.Error(err))
			return err
		}
		defer conn.Close()
		if err := db.Migrate(ctx, conn); err != nil {
			return err
		}
		store = db.NewSessionStore(conn, cfg.SessionLifetime())
		log.Info("visitor sessions in postgres")
	} else {
		store = sessions.NewMemoryStore(cfg.SessionLifetime())
		log.Info("visitor sessions in memory")
	}
	if p, ok := store.(pruner); ok {
		go prune(ctx, p, log)
	}

	mgr, err := sessions.NewManager(sessions.Options{
		Secret:     cfg.SessionSecret,
		MaxAge:     cfg.SessionLifetime(),
		Secure:     cfg.HTTPS,
		APIBaseURL: cfg.APIBaseURL,
		APITimeout: cfg.APITimeout,
	}, store, log)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.NewRouter(mgr, log),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("api", cfg.APIBaseURL))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Error("server failed", zap.Error(err))
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func prune(ctx context.Context, p pruner, log *zap.Logger) {
	t := time.NewTicker(pruneEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := p.Prune(ctx)
			if err != nil {
				log.Warn("visitor prune failed", zap.Error(err))
				continue
			}
			if n > 0 {
				log.Debug("visitors pruned", zap.Int64("count", n))
			}
		}
	}
}
