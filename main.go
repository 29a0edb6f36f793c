package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"PaketBild/data/database/pgutil"
	"PaketBild/global/config"
	"PaketBild/logger"
	"PaketBild/module/paketbild/service"
	"PaketBild/module/paketbild/store"
	"PaketBild/service/gateway"
	redisx "PaketBild/service/storage/redis"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Errorf("[main] load config: %+v", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.LogLevel)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 1) PostgreSQL
	pool, err := pgutil.NewPool(ctx, &pgutil.Config{URL: cfg.DatabaseURL})
	if err != nil {
		logger.Errorf("[main] postgres: %+v", err)
		os.Exit(1)
	}
	defer pool.Close()

	repo := store.NewRepo(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Errorf("[main] schema: %+v", err)
		os.Exit(1)
	}

	// 2) Redis 图片缓存（可选）
	var cache service.Cache
	rdb, err := redisx.NewClient(ctx, redisx.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	switch {
	case err != nil:
		logger.Warnf("[main] redis unavailable, cache disabled: %v", err)
	case rdb != nil:
		defer rdb.Close()
		cache = store.NewRedisCache(rdb, cfg.Redis.CacheTTL)
		logger.Infof("[main] redis cache enabled addr=%s ttl=%s", cfg.Redis.Addr, cfg.Redis.CacheTTL)
	}

	// 3) 实时网关 + HTTP
	gw := gateway.New(cfg.Gateway)
	svc := service.NewImageService(repo, cache, gw)
	engine := newEngine(cfg, gw, svc)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Infof("[HTTP] Listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("[HTTP] server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("[HTTP] shutdown: %v", err)
	}
	// 已升级的 websocket 不受 Shutdown 管理，单独断开
	gw.Close()
}
