// @title           Community Feed API
// @version         1.0
// @description     Reverse-chronological post feeds with page-based incremental loading.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/community-feed/config"
	"github.com/d60-Lab/community-feed/internal/api/handler"
	"github.com/d60-Lab/community-feed/internal/api/router"
	"github.com/d60-Lab/community-feed/internal/auth"
	"github.com/d60-Lab/community-feed/internal/repository"
	"github.com/d60-Lab/community-feed/internal/service"
	"github.com/d60-Lab/community-feed/pkg/database"
	"github.com/d60-Lab/community-feed/pkg/logger"
	"github.com/d60-Lab/community-feed/pkg/monitor"
	"github.com/d60-Lab/community-feed/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := flag.String("config", "", "config file (default configs/config.yaml)")
	flag.Parse()

	var paths []string
	if *cfgPath != "" {
		paths = append(paths, *cfgPath)
	}
	cfg, err := config.Load(paths...)
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	sentryOn, err := monitor.InitSentry(cfg.Sentry)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	}
	defer monitor.Flush()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	// 未配置密钥时不接受 bearer token；会话 cookie 依赖 redis，连不上时跳过
	var providers auth.Chain
	if cfg.Auth.JWTSecret != "" {
		providers = append(providers, auth.NewJWTProvider(cfg.Auth.JWTSecret))
	} else {
		logger.Warn("auth.jwt_secret not set, bearer tokens ignored")
	}
	if rdb, err := database.InitRedis(ctx, cfg); err != nil {
		logger.Warn("redis unavailable, session cookies ignored", zap.Error(err))
	} else {
		defer rdb.Close()
		providers = append(providers, auth.NewSessionProvider(rdb, cfg.Auth.SessionCookie, cfg.Auth.SessionPrefix))
	}

	feeds := service.NewFeedService(
		repository.NewPostRepository(db),
		repository.NewSubscriptionRepository(db),
		cfg.Feed.MaxLimit,
	)
	initial := service.NewInitialLoader(feeds, repository.NewSubredditRepository(db), cfg.Feed.PageSize)

	engine := router.New(router.Options{
		Config:   cfg,
		Handler:  handler.NewHandler(feeds, initial, db),
		Provider: providers,
		Sentry:   sentryOn,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server started", zap.Int("port", cfg.Server.Port), zap.String("db", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
