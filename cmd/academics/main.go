package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	api "github.com/mind-engage/mindengage-academics/internal/api/http"
	auth "github.com/mind-engage/mindengage-academics/internal/auth/middleware"
	"github.com/mind-engage/mindengage-academics/internal/config"
	"github.com/mind-engage/mindengage-academics/internal/db"
	"github.com/mind-engage/mindengage-academics/internal/eventlog"
	"github.com/mind-engage/mindengage-academics/internal/grading"
	"github.com/mind-engage/mindengage-academics/internal/prereq"
	"github.com/mind-engage/mindengage-academics/internal/rbac"
	"github.com/mind-engage/mindengage-academics/internal/records"
)

func main() {
	cfg := config.FromEnv()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if err := run(cfg, logger); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	openCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	dbh, err := db.Open(openCtx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		return err
	}
	defer dbh.Close()

	scale, err := grading.LoadScale(cfg.GradeScaleFile)
	if err != nil {
		return err
	}

	events := eventlog.NewRepo(dbh, cfg.SiteID)
	prereqStore, closeCache := prerequisiteStore(ctx, cfg, dbh, logger)
	defer closeCache()

	checker := prereq.NewChecker(prereqStore,
		prereq.WithCycleDetection(cfg.PrereqCycleCheck),
		prereq.WithLogger(logger),
		prereq.WithRecorder(events),
	)
	store := records.NewSQLStore(dbh)
	grades := records.NewGradeService(store,
		records.WithScale(scale),
		records.WithLogger(logger),
		records.WithRecorder(events),
	)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Mount("/", api.NewRouter(api.Deps{
		Grades:             grades,
		Transcripts:        records.NewTranscriptService(store),
		Eligibility:        records.NewEligibility(store, checker),
		Prereqs:            checker,
		Auth:               auth.NewAuthService(cfg.AuthHMACSecret, cfg.TokenTTL),
		Users:              auth.NewSQLUserStore(dbh),
		Admin:              auth.Admin{Username: cfg.AdminUser, PasswordHash: cfg.AdminPassHash},
		AllowClaimFallback: cfg.Mode == config.ModeOffline,
		Perms:              rbac.NewChecker(nil),
		Events:             events,
		Ready:              dbh.PingContext,
		Logger:             logger,
	}))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver, "cycle_check", cfg.PrereqCycleCheck)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	logger.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutCtx)
}

// prerequisiteStore puts the Redis cache in front of SQL when REDIS_ADDR is
// set. An unreachable Redis is logged and skipped.
func prerequisiteStore(ctx context.Context, cfg config.Config, dbh *sql.DB, logger *slog.Logger) (prereq.Store, func()) {
	base := prereq.NewSQLStore(dbh)
	if cfg.RedisAddr == "" {
		return base, func() {}
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, prerequisite cache disabled", "addr", cfg.RedisAddr, "error", err)
		_ = rdb.Close()
		return base, func() {}
	}
	logger.Info("prerequisite cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.PrereqCacheTTL)
	return prereq.NewCachedStore(base, rdb, cfg.PrereqCacheTTL, logger), func() { _ = rdb.Close() }
}
