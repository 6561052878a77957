// Command zest-server starts the Zest HTTP API and its gRPC health endpoint.
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"google.golang.org/grpc/reflection"

	"github.com/and161185/zest/internal/config"
	"github.com/and161185/zest/internal/genai"
	"github.com/and161185/zest/internal/limiter"
	"github.com/and161185/zest/internal/migrate"
	"github.com/and161185/zest/internal/repository/postgres"
	grpcserver "github.com/and161185/zest/internal/server/grpc"
	httpserver "github.com/and161185/zest/internal/server/http"
	"github.com/and161185/zest/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

const shutdownGrace = 5 * time.Second

func newLogger(dev bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if dev {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// main loads configuration, runs migrations and serves HTTP and gRPC health
// until SIGINT/SIGTERM.
func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		_, _ = os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(2)
	}

	logger := newLogger(cfg.Dev)
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("http", cfg.HTTPAddr),
		zap.String("health", cfg.HealthAddr),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.DatabaseURL, logger.Named("migrate")); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	db, err := postgres.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	// Repositories
	users := postgres.NewUserRepo(db)
	sessions := postgres.NewSessionRepo(db)
	recipes := postgres.NewRecipeRepo(db)
	shares := postgres.NewShareRepo(db)

	var lim limiter.Limiter
	switch cfg.LimiterBackend {
	case config.LimiterRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		defer func() { _ = rdb.Close() }()
		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Fatal("connect redis", zap.Error(err))
		}
		lim = limiter.NewRedis(rdb, cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)
	default:
		lim = limiter.NewPG(db.Pool, cfg.LoginWindow, cfg.LoginMaxFails, cfg.LoginBlockFor)
	}

	if cfg.GeminiAPIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set; AI endpoints will fail")
	}
	gemini := genai.NewGemini(genai.GeminiConfig{
		Endpoint: cfg.GeminiEndpoint,
		Model:    cfg.GeminiModel,
		APIKey:   cfg.GeminiAPIKey,
		Timeout:  cfg.AITimeout,
	}, &http.Client{})
	ai := genai.NewClient(gemini, logger.Named("genai"))

	// Services
	authSvc := service.NewAuthService(users, sessions, lim, cfg.SessionTTL)
	accessSvc := service.NewAccessService(recipes, shares)
	shareSvc := service.NewShareService(users, recipes, shares, cfg.AppURL)
	recipeSvc := service.NewRecipeService(recipes, accessSvc)
	assistantSvc := service.NewAssistantService(ai, accessSvc, recipes)

	api := httpserver.New(httpserver.Services{
		Auth:      authSvc,
		Recipes:   recipeSvc,
		Shares:    shareSvc,
		Access:    accessSvc,
		Assistant: assistantSvc,
	}, logger.Named("http"), cfg.Production())
	httpSrv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Health & reflection (dev)
	gs := grpcserver.NewServer(logger.Named("grpc"))
	health := grpcserver.NewHealth(db, cfg.HealthInterval, logger.Named("health"))
	health.Register(gs)
	if cfg.Dev {
		reflection.Register(gs)
	}

	lis, err := net.Listen("tcp", cfg.HealthAddr)
	if err != nil {
		logger.Fatal("listen health", zap.Error(err))
	}

	go health.Run(ctx)
	go service.NewSessionSweeper(authSvc, cfg.SweepInterval, logger.Named("sweeper")).Run(ctx)

	errCh := make(chan error, 2)
	go func() {
		logger.Info("health listening", zap.String("addr", cfg.HealthAddr))
		errCh <- gs.Serve(lis)
	}()
	go func() {
		logger.Info("http listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}

	done := make(chan struct{})
	go func() {
		gs.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-shutdownCtx.Done():
		gs.Stop()
	}

	logger.Info("shutdown complete")
}
