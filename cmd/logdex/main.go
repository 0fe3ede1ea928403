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

	"github.com/kailas-cloud/logdex/internal/config"
	dbRedis "github.com/kailas-cloud/logdex/internal/db/redis"
	"github.com/kailas-cloud/logdex/internal/domain/logentry"
	"github.com/kailas-cloud/logdex/internal/kvformat"
	logpkg "github.com/kailas-cloud/logdex/internal/logger"
	"github.com/kailas-cloud/logdex/internal/metrics"
	"github.com/kailas-cloud/logdex/internal/repository/logindex"
	"github.com/kailas-cloud/logdex/internal/source"
	chiTransport "github.com/kailas-cloud/logdex/internal/transport/chi"
	healthuc "github.com/kailas-cloud/logdex/internal/usecase/health"
	indexinguc "github.com/kailas-cloud/logdex/internal/usecase/indexing"
	normalizeruc "github.com/kailas-cloud/logdex/internal/usecase/normalizer"
	"github.com/kailas-cloud/logdex/internal/version"
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

	logger.Info("Starting logdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("source_driver", cfg.Source.Driver),
	)

	// Valkey and Redis speak the same JSON and FT commands; one rueidis store serves both.
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	records, err := source.Open(ctx, cfg.Source.Driver, cfg.Source.DSN)
	if err != nil {
		logger.Fatal("Failed to open record store", zap.Error(err))
	}
	defer func() { _ = records.Close() }()
	if cfg.Source.Migrate {
		if err := records.Migrate(ctx); err != nil {
			logger.Fatal("Failed to migrate record store", zap.Error(err))
		}
	}
	logger.Info("Connected to record store")

	// Register indexing metrics explicitly (no init())
	metrics.RegisterIndexingMetrics()

	// Field registry and index mapping
	logSchema, err := logentry.NewSchema(cfg.Index.Name)
	if err != nil {
		logger.Fatal("Invalid log schema", zap.Error(err))
	}
	mapping, err := logindex.BuildIndex(logSchema, cfg.Index.KeyPrefix)
	if err != nil {
		logger.Fatal("Invalid index mapping", zap.Error(err))
	}
	exists, err := store.IndexExists(ctx, mapping.Name)
	if err != nil {
		logger.Warn("Index lookup failed", zap.String("index", mapping.Name), zap.Error(err))
	} else if !exists {
		logger.Warn("Search index is missing; create it before querying",
			zap.String("index", mapping.Name),
			zap.String("command", mapping.String()),
		)
	}

	codec, err := kvformat.New(
		kvformat.WithPairSeparator(cfg.Details.PairSeparator),
		kvformat.WithKeyValueSeparator(cfg.Details.KeyValueSeparator),
	)
	if err != nil {
		logger.Fatal("Invalid details format", zap.Error(err))
	}

	// Use cases
	normalizer, err := normalizeruc.New(logSchema, records)
	if err != nil {
		logger.Fatal("Failed to create normalizer", zap.Error(err))
	}
	normalizer.
		WithCodec(codec).
		WithLogger(logger.Named("normalizer")).
		WithSkipCounter(metrics.DetailsSkippedTotal)

	indexRepo := logindex.New(store, cfg.Index.KeyPrefix)
	indexingSvc := indexinguc.New(normalizer, indexRepo, records).
		WithLogger(logger.Named("indexing")).
		WithWorkers(cfg.Index.Workers).
		WithMaxBatchSize(cfg.Index.MaxBatchSize).
		WithPageSize(cfg.Index.PageSize)

	healthSvc := healthuc.New(store, records)

	// Create chi server
	server := chiTransport.NewServer(indexingSvc, healthSvc, logSchema, mapping, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware("/metrics"))
	chiTransport.HandlerWithOptions(server, chiTransport.ServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorResponseCodeBadRequest,
				Message: "invalid request",
			})
		},
	})

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

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorResponseCodeInternalError,
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
