package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"timetrial-api/internal"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg := internal.LoadConfig()

	log, err := internal.NewLogger(cfg.LogLevel, cfg.LogDev)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cfg.Validate(); err != nil {
		log.Fatal("bad config", zap.Error(err))
	}
	if !cfg.LogDev {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db := internal.MustDB(ctx, log, cfg.DatabaseURL, int32(cfg.DBMaxConns))
	defer db.Close()

	if cfg.MigrateOnStart {
		if err := internal.RunMigrations(ctx, db); err != nil {
			log.Fatal("migrations failed", zap.Error(err))
		}
	}

	tokens, err := internal.NewTokenService([]byte(cfg.JWTSecret))
	if err != nil {
		log.Fatal("token service", zap.Error(err))
	}

	deps := internal.NewDeps(internal.NewPgStore(db), tokens, internal.DefaultHasher(), internal.NewMetrics(), log)
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: internal.NewRouter(deps),
	}

	go func() {
		log.Info("listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
}
