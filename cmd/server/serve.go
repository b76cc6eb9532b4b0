package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/poker-table-backend/internal/auth"
	"github.com/DoyleJ11/poker-table-backend/internal/config"
	"github.com/DoyleJ11/poker-table-backend/internal/httpapi"
	"github.com/DoyleJ11/poker-table-backend/internal/hub"
	"github.com/DoyleJ11/poker-table-backend/internal/logging"
	"github.com/DoyleJ11/poker-table-backend/internal/pages"
	"github.com/DoyleJ11/poker-table-backend/internal/realtime"
	"github.com/DoyleJ11/poker-table-backend/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFiles...)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogDevelopment)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.Open(cfg.DatabaseURL, cfg.DBMaxOpenConns, log.Named("store"))
	if err != nil {
		return err
	}
	defer db.Close()

	if cfg.MigrateOnStart {
		applied, err := db.Migrate(ctx)
		if err != nil {
			return err
		}
		log.Info("migrations applied", zap.Strings("applied", applied))
	}

	h := hub.NewHub(ctx, hub.WithLinger(cfg.FeedLinger))
	defer h.Shutdown()

	pg, err := pages.New(db, log.Named("pages"), cfg.AuthCookieName)
	if err != nil {
		return err
	}

	deps := &httpapi.Deps{
		Store:  db,
		Events: h,
		Rooms:  h,
		Log:    log.Named("http"),
	}
	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTAudience, cfg.AuthCookieName)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           httpapi.SetupRoutes(deps, verifier, pg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.RealtimeEnabled {
		listener := realtime.NewListener(cfg.DatabaseURL, store.RoleChangeChannel, h, log)
		g.Go(func() error { return listener.Run(gctx) })
	}

	return g.Wait()
}
