// Package postgres opens a pooled sqlx handle on the pgx driver and applies
// schema migrations.
package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

const (
	defaultConnMaxIdleTime = 5 * time.Minute
	defaultConnMaxLifetime = 30 * time.Minute
	defaultMaxIdleConns    = 5
	defaultMaxOpenConns    = 25
	defaultConnectTimeout  = 30 * time.Second
	defaultRetryInterval   = time.Second
	maxRetryInterval       = 10 * time.Second
)

type settings struct {
	connMaxIdleTime time.Duration
	connMaxLifetime time.Duration
	maxIdleConns    int
	maxOpenConns    int
	connectTimeout  time.Duration
	retryInterval   time.Duration
}

type Option func(*settings)

func WithConnMaxIdleTime(d time.Duration) Option {
	return func(s *settings) {
		s.connMaxIdleTime = d
	}
}

func WithConnMaxLifetime(d time.Duration) Option {
	return func(s *settings) {
		s.connMaxLifetime = d
	}
}

func WithMaxIdleConns(n int) Option {
	return func(s *settings) {
		s.maxIdleConns = n
	}
}

func WithMaxOpenConns(n int) Option {
	return func(s *settings) {
		s.maxOpenConns = n
	}
}

// WithRetry bounds how long New keeps pinging a database that is still
// starting. The wait between pings doubles up to 10s.
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

func New(ctx context.Context, dsn string, logger *slog.Logger, opts ...Option) (*sqlx.DB, error) {
	const op = "postgres.New"

	s := settings{
		connMaxIdleTime: defaultConnMaxIdleTime,
		connMaxLifetime: defaultConnMaxLifetime,
		maxIdleConns:    defaultMaxIdleConns,
		maxOpenConns:    defaultMaxOpenConns,
		connectTimeout:  defaultConnectTimeout,
		retryInterval:   defaultRetryInterval,
	}

	for _, opt := range opts {
		opt(&s)
	}

	db, err := sqlx.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open database: %w", op, err)
	}

	db.SetConnMaxIdleTime(s.connMaxIdleTime)
	db.SetConnMaxLifetime(s.connMaxLifetime)
	db.SetMaxIdleConns(s.maxIdleConns)
	db.SetMaxOpenConns(s.maxOpenConns)

	if err := waitForPing(ctx, db, s, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}

	return db, nil
}

func waitForPing(ctx context.Context, db *sqlx.DB, s settings, logger *slog.Logger) error {
	ctx, cancel := context.WithTimeout(ctx, s.connectTimeout)
	defer cancel()

	wait := s.retryInterval

	for attempt := 1; ; attempt++ {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}

		logger.Warn("postgres connection failed, retrying",
			slog.Int("attempt", attempt),
			slog.Duration("next_retry_in", wait),
			slog.Any("err", err),
		)

		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up after %d attempts: %w", attempt, err)
		case <-time.After(wait):
		}

		wait = min(wait*2, maxRetryInterval)
	}
}
