package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pinsearch/internal/config"
	"github.com/kailas-cloud/pinsearch/internal/db"
	dbElastic "github.com/kailas-cloud/pinsearch/internal/db/elastic"
	dbRedis "github.com/kailas-cloud/pinsearch/internal/db/redis"
	logpkg "github.com/kailas-cloud/pinsearch/internal/logger"
	"github.com/kailas-cloud/pinsearch/internal/metrics"
	documentrepo "github.com/kailas-cloud/pinsearch/internal/repository/document"
	searchrepo "github.com/kailas-cloud/pinsearch/internal/repository/search"
	chiTransport "github.com/kailas-cloud/pinsearch/internal/transport/chi"
	healthuc "github.com/kailas-cloud/pinsearch/internal/usecase/health"
	ingestuc "github.com/kailas-cloud/pinsearch/internal/usecase/ingest"
	searchuc "github.com/kailas-cloud/pinsearch/internal/usecase/search"
	"github.com/kailas-cloud/pinsearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting pinsearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("index", cfg.Search.Index),
	)

	store, err := newStore(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database", zap.String("backend", store.Name()))

	metrics.RegisterSearchMetrics()

	fields := cfg.SearchFields()
	docRepo := documentrepo.New(store, fields)
	if err := docRepo.EnsureIndex(ctx, cfg.Search.Index); err != nil {
		// Ingest retries index creation, so a cold backend is not fatal here.
		logger.Warn("Failed to ensure search index", zap.String("index", cfg.Search.Index), zap.Error(err))
	}
	searchRepo := searchuc.NewInstrumentedRepository(
		searchrepo.New(store, cfg.Search.Index, fields), store.Name(),
	)

	// Create use case services
	searchSvc := searchuc.New(searchRepo)
	ingestSvc := ingestuc.New(docRepo, ingestuc.Config{
		IDField:      cfg.Ingest.IDField,
		BatchSize:    cfg.Ingest.BatchSize,
		MaxLineBytes: cfg.Ingest.MaxLineBytes,
		DataFile:     cfg.Ingest.DataFile,
	})
	healthSvc := healthuc.New(store, cfg.Ingest.DataFile)

	server := chiTransport.NewServer(searchSvc, ingestSvc, healthSvc, logger).
		WithIngestIndex(cfg.Ingest.Index).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(chiTransport.Keys{
		Admin:  cfg.Auth.APIKeys,
		Search: cfg.Auth.SearchKeys,
	}))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// newStore builds the backend selected by database.driver.
func newStore(cfg *config.DatabaseConfig) (db.Store, error) {
	switch cfg.Driver {
	case config.DriverElasticsearch:
		return dbElastic.NewStore(dbElastic.Config{
			Addrs:       cfg.Addrs,
			Username:    cfg.Username,
			Password:    cfg.Password,
			VerifyCerts: *cfg.VerifyCerts,
			CACert:      cfg.CACert,
			Timeout:     time.Duration(cfg.RequestTimeout) * time.Second,
		})
	case config.DriverRedis:
		return dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Addrs,
			Username:  cfg.Username,
			Password:  cfg.Password,
			DB:        cfg.DB,
			KeyPrefix: cfg.KeyPrefix,
		})
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					if rvr == http.ErrAbortHandler {
						panic(rvr)
					}
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.RawQuery),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
