// Package app wires the smartlinks service together and runs it until the
// context is canceled.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"

	"github.com/go-chi/httplog/v2"
	"github.com/go-playground/validator/v10"
	cacheredis "github.com/vadimbarashkov/smartlinks/internal/adapter/cache/redis"
	delivery "github.com/vadimbarashkov/smartlinks/internal/adapter/delivery/http"
	repo "github.com/vadimbarashkov/smartlinks/internal/adapter/repository/postgres"
	"github.com/vadimbarashkov/smartlinks/internal/auth"
	"github.com/vadimbarashkov/smartlinks/internal/config"
	"github.com/vadimbarashkov/smartlinks/internal/slug"
	"github.com/vadimbarashkov/smartlinks/internal/usecase"
	"github.com/vadimbarashkov/smartlinks/pkg/postgres"
	"github.com/vadimbarashkov/smartlinks/pkg/redis"
	"golang.org/x/sync/errgroup"
)

const serviceName = "smartlinks"

func newLogger(env string) *httplog.Logger {
	opts := httplog.Options{
		LogLevel:        slog.LevelDebug,
		Concise:         true,
		RequestHeaders:  false,
		QuietDownRoutes: []string{"/api/v1/ping"},
	}

	if env != config.EnvDev {
		opts.LogLevel = slog.LevelInfo
	}
	if env == config.EnvProd {
		opts.JSON = true
		opts.Concise = false
		opts.Tags = map[string]string{"env": env}
	}

	return httplog.NewLogger(serviceName, opts)
}

func Run(ctx context.Context, cfg *config.Config) error {
	const op = "app.Run"

	logger := newLogger(cfg.Env)

	db, err := postgres.New(
		ctx,
		cfg.Postgres.DSN(),
		logger.Logger,
		postgres.WithConnMaxIdleTime(cfg.Postgres.ConnMaxIdleTime),
		postgres.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		postgres.WithMaxIdleConns(cfg.Postgres.MaxIdleConns),
		postgres.WithMaxOpenConns(cfg.Postgres.MaxOpenConns),
	)
	if err != nil {
		return fmt.Errorf("%s: failed to connect to database: %w", op, err)
	}
	defer db.Close()

	if err := postgres.RunMigrations(cfg.Postgres.MigrationsPath, cfg.Postgres.DSN(), logger.Logger); err != nil {
		return fmt.Errorf("%s: failed to run migrations: %w", op, err)
	}

	var cache usecase.ResolutionCache = usecase.NopCache{}

	if cfg.Redis.Enabled {
		client, err := redis.New(
			ctx,
			cfg.Redis.Addr,
			logger.Logger,
			redis.WithCredentials(cfg.Redis.Username, cfg.Redis.Password),
			redis.WithDB(cfg.Redis.DB),
			redis.WithTimeouts(cfg.Redis.DialTimeout, cfg.Redis.ReadTimeout, cfg.Redis.WriteTimeout),
			redis.WithPoolSize(cfg.Redis.PoolSize),
			redis.WithRetry(cfg.Redis.ConnectTimeout, cfg.Redis.RetryInterval),
		)
		if err != nil {
			return fmt.Errorf("%s: failed to connect to redis: %w", op, err)
		}
		defer client.Close()

		cache = cacheredis.NewResolutionCache(client, cfg.Redis.CacheTTL)
	} else {
		logger.Info("resolution cache disabled")
	}

	artistRepo := repo.NewArtistRepository(db)
	smartLinkRepo := repo.NewSmartLinkRepository(db)

	validate := validator.New(validator.WithRequiredStructEnabled())
	maxAttempts := slug.WithMaxAttempts(cfg.SmartLinks.SlugMaxAttempts)

	artists := usecase.NewArtistUseCase(
		artistRepo,
		cache,
		slug.New(maxAttempts, slug.WithFallback("artist")),
		validate,
		logger.Logger,
	)
	smartLinks := usecase.NewSmartLinkUseCase(
		smartLinkRepo,
		artistRepo,
		cache,
		slug.New(maxAttempts),
		validate,
		logger.Logger,
		usecase.WithResolveTimeout(cfg.SmartLinks.ResolveTimeout),
		usecase.WithPageSize(cfg.SmartLinks.PageSize, cfg.SmartLinks.MaxPageSize),
	)
	clicks := usecase.NewClickUseCase(smartLinkRepo, cfg.SmartLinks.ClickTimeout, logger.Logger)

	router := delivery.NewRouter(logger, delivery.Deps{
		SmartLinks: smartLinks,
		Artists:    artists,
		Clicks:     clicks,
		Tokens:     auth.NewVerifier(cfg.Auth.JWTSecret, cfg.Auth.Issuer),
		HomeURL:    cfg.SmartLinks.HomeURL,
	})

	server := &http.Server{
		Addr:           cfg.HTTPServer.Addr(),
		Handler:        router,
		ReadTimeout:    cfg.HTTPServer.ReadTimeout,
		WriteTimeout:   cfg.HTTPServer.WriteTimeout,
		IdleTimeout:    cfg.HTTPServer.IdleTimeout,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting server", slog.String("addr", server.Addr), slog.String("env", cfg.Env))

		var err error

		switch cfg.Env {
		case config.EnvProd:
			err = server.ListenAndServeTLS(cfg.HTTPServer.CertFile, cfg.HTTPServer.KeyFile)
		default:
			err = server.ListenAndServe()
		}

		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s: server error occurred: %w", op, err)
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		logger.Info("shutting down server")

		if err := server.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("%s: failed to shutdown server: %w", op, err)
		}

		// In-flight click increments are bounded by the click timeout.
		clicks.Wait()

		return nil
	})

	return g.Wait()
}
