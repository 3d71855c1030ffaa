// Package redis opens a go-redis client and waits for the server to answer,
// retrying with capped exponential backoff.
package redis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultConnectTimeout = 30 * time.Second
	defaultRetryInterval  = time.Second
	defaultMaxWait        = 10 * time.Second
	defaultPingTimeout    = 2 * time.Second
)

type settings struct {
	client         redis.Options
	connectTimeout time.Duration
	retryInterval  time.Duration
	maxWait        time.Duration
	pingTimeout    time.Duration
}

type Option func(*settings)

func WithCredentials(username, password string) Option {
	return func(s *settings) {
		s.client.Username = username
		s.client.Password = password
	}
}

func WithDB(db int) Option {
	return func(s *settings) {
		s.client.DB = db
	}
}

func WithTimeouts(dial, read, write time.Duration) Option {
	return func(s *settings) {
		s.client.DialTimeout = dial
		s.client.ReadTimeout = read
		s.client.WriteTimeout = write
	}
}

func WithPoolSize(n int) Option {
	return func(s *settings) {
		s.client.PoolSize = n
	}
}

// WithRetry sets the total time allowed for connecting and the first wait
// between attempts. The wait doubles after each failure up to 10s.
func WithRetry(connectTimeout, retryInterval time.Duration) Option {
	return func(s *settings) {
		if connectTimeout > 0 {
			s.connectTimeout = connectTimeout
		}
		if retryInterval > 0 {
			s.retryInterval = retryInterval
		}
	}
}

func New(ctx context.Context, addr string, logger *slog.Logger, opts ...Option) (*redis.Client, error) {
	const op = "redis.New"

	s := settings{
		client:         redis.Options{Addr: addr},
		connectTimeout: defaultConnectTimeout,
		retryInterval:  defaultRetryInterval,
		maxWait:        defaultMaxWait,
		pingTimeout:    defaultPingTimeout,
	}

	for _, opt := range opts {
		opt(&s)
	}

	client := redis.NewClient(&s.client)

	if err := waitForPing(ctx, client, s, logger); err != nil {
		client.Close()
		return nil, fmt.Errorf("%s: redis unavailable at %s: %w", op, addr, err)
	}

	return client, nil
}

func waitForPing(ctx context.Context, client *redis.Client, s settings, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	wait := s.retryInterval

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, s.pingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			if attempt > 1 {
				logger.Warn("connected to redis after retry",
					slog.String("addr", s.client.Addr),
					slog.Int("attempts", attempt),
				)
			}
			return nil
		}

		logger.Warn("redis connection failed, retrying",
			slog.String("addr", s.client.Addr),
			slog.Int("attempt", attempt),
			slog.Duration("next_retry_in", wait),
			slog.Any("err", err),
		)

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		case <-timer.C:
		}

		wait = min(wait*2, s.maxWait)
	}
}
