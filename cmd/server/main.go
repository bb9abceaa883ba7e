// Package main starts the FitCompare reference backend: it opens PostgreSQL,
// seeds the demo catalog, and serves the REST API the client talks to.
package main

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"github.com/atinyakov/fitcompare/internal/config"
	"github.com/atinyakov/fitcompare/internal/db"
	"github.com/atinyakov/fitcompare/internal/logger"
	"github.com/atinyakov/fitcompare/internal/middleware"
	"github.com/atinyakov/fitcompare/internal/repository"
	"github.com/atinyakov/fitcompare/internal/server/handler/http"
	"github.com/atinyakov/fitcompare/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	lg := logger.New()
	defer func() { _ = lg.Log.Sync() }()
	if err := lg.Init(options.LogLevel); err != nil {
		log.Fatal(err)
	}
	zapLogger := lg.Log

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	postgresDB, err := db.InitPostgres(options.DatabaseDSN)
	if err != nil {
		zapLogger.Fatal("cannot init database", zap.Error(err))
	}
	defer postgresDB.Close()

	if !options.SkipSeed {
		if err := db.Seed(ctx, postgresDB, zapLogger); err != nil {
			zapLogger.Fatal("cannot seed database", zap.Error(err))
		}
	}

	// Removed favorites are kept for a day, then purged hourly.
	db.StartFavoriteCleaner(ctx, postgresDB, time.Hour, 24*time.Hour, zapLogger)

	authRepo := repository.NewPostgresAuthRepository(postgresDB)
	catalogRepo := repository.NewPostgresCatalogRepository(postgresDB)
	favoriteRepo := repository.NewPostgresFavoriteRepository(postgresDB)

	authService := service.NewAuthService(authRepo, service.NewTokenMaker(options.JWTSecret, options.TokenTTL), zapLogger)
	catalogService := service.NewCatalogService(catalogRepo, favoriteRepo, zapLogger)
	favoriteService := service.NewFavoriteService(favoriteRepo, zapLogger)

	router := http.NewRouter(http.Handlers{
		Auth:      http.NewAuthHandler(authService, zapLogger),
		Catalog:   &http.CatalogHandler{CatalogService: catalogService, Log: zapLogger},
		Favorites: &http.FavoriteHandler{FavoriteService: favoriteService, Log: zapLogger},
	}, authService, middleware.NewMetrics(prometheus.DefaultRegisterer), zapLogger)

	server := &nethttp.Server{
		Addr:              options.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("graceful shutdown failed", zap.Error(err))
		}
	}()

	zapLogger.Info("starting HTTP server", zap.String("addr", options.Addr))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("failed to start HTTP server", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}
