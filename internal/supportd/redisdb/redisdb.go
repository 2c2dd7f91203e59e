package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-redis/redis/v8"

	"github.com/birmarket/supportd/internal/errors"
)

type Options struct {
	Addr     string
	Password string
	DB       int
}

// New only constructs the client. Callers own its lifecycle.
func New(o Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     o.Addr,
		Password: o.Password,
		DB:       o.DB,
	})
}

// Ping verifies the server is reachable and answering.
func Ping(ctx context.Context, client *redis.Client) error {
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		return errors.RedisUnavailable(err)
	}
	if pong != "PONG" {
		return errors.RedisUnavailable(fmt.Errorf("unexpected response for redis ping: %q", pong))
	}
	return nil
}

// Wait pings the server with exponential backoff until it answers or the
// deadline passes. Used by the launcher after daemonizing redis-server.
func Wait(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 100 * time.Millisecond
	policy.MaxInterval = time.Second
	policy.MaxElapsedTime = timeout

	return backoff.Retry(func() error {
		return Ping(ctx, client)
	}, backoff.WithContext(policy, ctx))
}
