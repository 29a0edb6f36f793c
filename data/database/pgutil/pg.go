package pgutil

import (
	"context"
	"time"

	"PaketBild/logger"
	"PaketBild/tools/errs"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config represents the PostgreSQL configuration.
type Config struct {
	URL            string
	MaxConns       int32
	MaxRetry       int
	RetryInterval  time.Duration
	ConnectTimeout time.Duration
}

func (c *Config) ValidateAndSetDefaults() error {
	if c.URL == "" {
		return errs.ErrArgs.WrapMsg("postgres url is required")
	}
	if c.MaxRetry <= 0 {
		c.MaxRetry = 3
	}
	if c.RetryInterval <= 0 {
		c.RetryInterval = time.Second / 2
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	return nil
}

// NewPool 建立连接池并 Ping，失败时按 MaxRetry 重试
func NewPool(ctx context.Context, config *Config) (*pgxpool.Pool, error) {
	if err := config.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	poolCfg, err := pgxpool.ParseConfig(config.URL)
	if err != nil {
		return nil, errs.WrapMsg(err, "parse postgres url")
	}
	if config.MaxConns > 0 {
		poolCfg.MaxConns = config.MaxConns
	}

	var pool *pgxpool.Pool
	for i := 0; i < config.MaxRetry; i++ {
		pool, err = connect(ctx, poolCfg, config.ConnectTimeout)
		if err == nil {
			break
		}
		logger.Warnf("[pg] connect attempt %d/%d failed: %v", i+1, config.MaxRetry, err)
		if i+1 == config.MaxRetry {
			break
		}
		if werr := wait(ctx, config.RetryInterval); werr != nil {
			err = werr
			break
		}
	}
	if err != nil {
		return nil, errs.WrapMsg(err, "failed to connect to PostgreSQL", "host", poolCfg.ConnConfig.Host)
	}
	return pool, nil
}

func connect(ctx context.Context, cfg *pgxpool.Config, timeout time.Duration) (*pgxpool.Pool, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}

// wait 在重试间隔内响应 ctx 取消
func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
