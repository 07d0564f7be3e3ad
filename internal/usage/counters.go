package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/estuda/estuda/internal/clock"
	"github.com/estuda/estuda/internal/store"
)

// Counters stores consumed amounts per owner, kind and period key.
type Counters interface {
	Used(ctx context.Context, owner string, kind Kind, period string) (int64, error)
	Add(ctx context.Context, owner string, kind Kind, period string, n int64) error
}

// SQLCounters keeps counters in the relational store.
type SQLCounters struct {
	repo  store.UsageRepo
	clock clock.Clock
}

// NewSQLCounters returns counters backed by repo.
func NewSQLCounters(repo store.UsageRepo, clk clock.Clock) *SQLCounters {
	if clk == nil {
		clk = clock.System{}
	}
	return &SQLCounters{repo: repo, clock: clk}
}

func (c *SQLCounters) Used(ctx context.Context, owner string, kind Kind, period string) (int64, error) {
	return c.repo.Used(ctx, owner, string(kind), period)
}

func (c *SQLCounters) Add(ctx context.Context, owner string, kind Kind, period string, n int64) error {
	return c.repo.Add(ctx, owner, string(kind), period, n, c.clock.Now())
}

// RedisCounters keeps counters in Redis. Keys expire a while after their
// window closes.
type RedisCounters struct {
	client *redis.Client
	prefix string
}

// NewRedisCounters connects to url and checks the connection.
func NewRedisCounters(ctx context.Context, url string) (*RedisCounters, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisCounters{client: client, prefix: "estuda:usage"}, nil
}

func (c *RedisCounters) key(owner string, kind Kind, period string) string {
	return fmt.Sprintf("%s:%s:%s:%s", c.prefix, owner, kind, period)
}

func (c *RedisCounters) Used(ctx context.Context, owner string, kind Kind, period string) (int64, error) {
	n, err := c.client.Get(ctx, c.key(owner, kind, period)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("get usage counter: %w", err)
	}
	return n, nil
}

func (c *RedisCounters) Add(ctx context.Context, owner string, kind Kind, period string, n int64) error {
	key := c.key(owner, kind, period)
	pipe := c.client.TxPipeline()
	pipe.IncrBy(ctx, key, n)
	pipe.Expire(ctx, key, ttlFor(period))
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add usage counter: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (c *RedisCounters) Close() error {
	return c.client.Close()
}

// ttlFor keeps day keys for two days and month keys for two months.
func ttlFor(period string) time.Duration {
	if len(period) == len("2006-01") {
		return 62 * 24 * time.Hour
	}
	return 48 * time.Hour
}
