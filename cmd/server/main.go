package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/mmynk/osusu/internal/auth"
	"github.com/mmynk/osusu/internal/config"
	"github.com/mmynk/osusu/internal/metrics"
	"github.com/mmynk/osusu/internal/middleware"
	"github.com/mmynk/osusu/internal/scheduler"
	"github.com/mmynk/osusu/internal/service"
	"github.com/mmynk/osusu/internal/storage"
	"github.com/mmynk/osusu/internal/storage/mongo"
	"github.com/mmynk/osusu/internal/storage/sqlite"
	"github.com/mmynk/osusu/pkg/api/apiconnect"
	"github.com/mmynk/osusu/pkg/logging"
)

func openStore(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if cfg.StoreDriver == "mongo" {
		store, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, err
		}
		return store, nil
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	return store, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	logging.SetupFromConfig(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	slog.Info("Storage initialized", "driver", cfg.StoreDriver)

	m := metrics.New()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL())
	groups := service.NewGroupStore(store, store)

	common := connect.WithInterceptors(
		middleware.LoggingInterceptor(),
		middleware.MetricsInterceptor(m),
	)
	authed := connect.WithInterceptors(middleware.RequireAuth(jwtManager))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(
		service.NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, slog.Default()),
		common,
	))
	mux.Handle(apiconnect.NewGroupServiceHandler(service.NewGroupService(groups), common, authed))
	mux.Handle(apiconnect.NewPayoutServiceHandler(service.NewPayoutService(groups, cfg.MarkMode()), common, authed))
	mux.Handle(apiconnect.NewLedgerServiceHandler(service.NewLedgerService(groups), common, authed))
	mux.Handle(cfg.MetricsPath, m.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	checkpoints, _ := cfg.Checkpoints()
	loc, _ := cfg.Location()
	reminders := scheduler.New(groups, scheduler.LogSink{Metrics: m},
		scheduler.WithCheckpoints(checkpoints),
		scheduler.WithWindow(cfg.ReminderWindow()),
		scheduler.WithLocation(loc),
		scheduler.ForUser(cfg.ReminderUserID),
		scheduler.WithMetrics(m),
	)
	if err := reminders.Start(); err != nil {
		slog.Error("Failed to start reminder scheduler", "error", err)
		os.Exit(1)
	}
	defer reminders.Stop()

	// Wrap with h2c for HTTP/2 without TLS (required for Connect)
	handler := h2c.NewHandler(loggingMiddleware(corsMiddleware(mux)), &http2.Server{})

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{Addr: addr, Handler: handler}

	go func() {
		slog.Info("Connect server starting", "address", addr, "environment", cfg.Environment)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
	}
}

// loggingMiddleware logs all incoming requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		slog.Debug("Request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}

// corsMiddleware adds CORS headers for browser access
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type, Connect-Protocol-Version, Connect-Timeout-Ms")
		w.Header().Set("Access-Control-Expose-Headers", "Connect-Protocol-Version, Connect-Timeout-Ms, Error-Kind, Error-Reason")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
