// Package app assembles the stores, services and HTTP router from
// configuration and runs the server until the context is cancelled.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/podfetch/authgate/internal/api"
	"github.com/podfetch/authgate/internal/api/handler"
	"github.com/podfetch/authgate/internal/api/metrics"
	"github.com/podfetch/authgate/internal/api/middleware"
	"github.com/podfetch/authgate/internal/core/domain"
	"github.com/podfetch/authgate/internal/core/ports"
	"github.com/podfetch/authgate/internal/core/service"
	"github.com/podfetch/authgate/internal/infrastructure/config"
	"github.com/podfetch/authgate/internal/infrastructure/db/mongo"
	"github.com/podfetch/authgate/internal/infrastructure/db/redis"
	"github.com/podfetch/authgate/internal/infrastructure/db/sqlstore"
	"github.com/podfetch/authgate/internal/infrastructure/sweeper"
)

const shutdownTimeout = 10 * time.Second

// App owns the connected stores and the services built on them.
type App struct {
	cfg config.Config
	log zerolog.Logger

	identityRepo ports.IdentityRepository
	sessionRepo  ports.SessionRepository
	readiness    []handler.Dependency
	closers      []func(context.Context) error

	hasher     service.PasswordHasher
	resolver   *service.IdentityResolver
	identities *service.IdentityService
}

// Open connects the configured stores and prepares their schema: SQL
// migrations run and Mongo indexes are created.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*App, error) {
	hasher, err := service.NewPasswordHasher(cfg.Auth.PasswordDigest)
	if err != nil {
		return nil, err
	}

	a := &App{cfg: cfg, log: log, hasher: hasher}
	if err := a.openStores(ctx); err != nil {
		_ = a.Close(context.Background())
		return nil, err
	}

	a.resolver = service.NewIdentityResolver(a.identityRepo, cfg.Auth.BootstrapUsername)
	a.identities = service.NewIdentityService(a.identityRepo, hasher, a.resolver, log.With().Str("component", "identities").Logger())

	a.warnShadowedBootstrap(ctx)
	return a, nil
}

func (a *App) openStores(ctx context.Context) error {
	switch a.cfg.Store.Driver {
	case config.StoreMongo:
		client, db, err := mongo.Connect(ctx, mongo.Config{URI: a.cfg.Mongo.URI, Database: a.cfg.Mongo.Database})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, client.Disconnect)
		a.readiness = append(a.readiness, handler.Dependency{Name: "mongodb", Pinger: mongo.Pinger{DB: db}})

		identities := mongo.NewIdentityRepository(db)
		if err := identities.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("mongo indexes: %w", err)
		}
		a.identityRepo = identities

		if a.cfg.Session.Backend == config.SessionBackendStore {
			sessions := mongo.NewSessionRepository(db)
			if err := sessions.EnsureIndexes(ctx); err != nil {
				return fmt.Errorf("mongo indexes: %w", err)
			}
			a.sessionRepo = sessions
		}

	case config.StoreSQLite, config.StorePostgres:
		store, err := sqlstore.Open(ctx, sqlstore.Dialect(a.cfg.Store.Driver), a.cfg.SQL.DSN)
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return store.Close() })
		a.readiness = append(a.readiness, handler.Dependency{Name: a.cfg.Store.Driver, Pinger: store})

		if err := store.Migrate(ctx, a.log.With().Str("component", "migrate").Logger()); err != nil {
			return err
		}
		a.identityRepo = store.Identities()
		if a.cfg.Session.Backend == config.SessionBackendStore {
			a.sessionRepo = store.Sessions()
		}

	default:
		return fmt.Errorf("unsupported store driver %q", a.cfg.Store.Driver)
	}

	if a.cfg.Session.Backend == config.SessionBackendRedis {
		client, err := redis.Connect(ctx, redis.Config{Addr: a.cfg.Redis.Addr, DB: a.cfg.Redis.DB})
		if err != nil {
			return err
		}
		a.closers = append(a.closers, func(context.Context) error { return client.Close() })
		a.readiness = append(a.readiness, handler.Dependency{Name: "redis", Pinger: redis.Pinger{Client: client}})
		a.sessionRepo = redis.NewSessionStore(client)
	}
	return nil
}

// warnShadowedBootstrap logs when a stored identity carries the bootstrap name.
// The resolver never returns it, so its role and password are unreachable.
func (a *App) warnShadowedBootstrap(ctx context.Context) {
	name := a.cfg.Auth.BootstrapUsername
	if name == "" {
		return
	}

	_, err := a.identityRepo.FindByUsername(ctx, name)
	switch {
	case err == nil:
		a.log.Warn().Str("username", name).Msg("stored identity is shadowed by the bootstrap admin")
	case errors.Is(err, domain.ErrIdentityNotFound):
	default:
		a.log.Warn().Err(err).Msg("could not check for a shadowed bootstrap identity")
	}
}

// Identities exposes identity management for the CLI.
func (a *App) Identities() *service.IdentityService {
	return a.identities
}

// Handler builds the HTTP router over the opened stores.
func (a *App) Handler() *echo.Echo {
	sessions := service.NewSessionManager(a.sessionRepo, a.cfg.Session.TTL)
	auth := service.NewAuthService(a.resolver, sessions, a.hasher, service.AuthConfig{
		BootstrapUsername: a.cfg.Auth.BootstrapUsername,
		BootstrapPassword: a.cfg.Auth.BootstrapPassword,
	}, a.log.With().Str("component", "auth").Logger())

	return api.NewRouter(api.Deps{
		Auth:       auth,
		Identities: a.identities,
		Guards:     service.NewGuards(a.resolver, a.log.With().Str("component", "guards").Logger()),
		Proxy:      service.NewProxyAsserter(a.cfg.Auth.ProxyAuthSecret),
		Mode:       identityMode(a.cfg.Auth),
		Cookie:     handler.CookieConfig{Secure: a.cfg.Session.CookieSecure, Path: config.CookiePath},
		BasePath:   a.cfg.BasePath,
		Readiness:  a.readiness,
		Registry:   prometheus.NewRegistry(),
		Log:        a.log.With().Str("component", "http").Logger(),
	})
}

func identityMode(cfg config.AuthConfig) middleware.Mode {
	switch {
	case cfg.ProxyAuth:
		return middleware.ModeProxy
	case cfg.BasicAuth:
		return middleware.ModeBasic
	default:
		return middleware.ModeNone
	}
}

// Run serves HTTP until ctx is cancelled, then shuts down gracefully.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.startSweeper(ctx)

	e := a.Handler()
	addr := ":" + a.cfg.Port

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", addr).Str("store", a.cfg.Store.Driver).Str("sessions", a.cfg.Session.Backend).Msg("server starting")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (a *App) startSweeper(ctx context.Context) {
	if a.cfg.Session.TTL <= 0 {
		return
	}
	repo, ok := a.sessionRepo.(ports.ExpiringSessionRepository)
	if !ok {
		return
	}

	s := sweeper.New(repo, a.cfg.Session.SweepInterval, a.log.With().Str("component", "sweeper").Logger())
	s.OnSwept = func(n int64) { metrics.SessionsSweptTotal.Add(float64(n)) }
	s.Start(ctx)
}

// Close releases every store connection, in reverse order of opening.
func (a *App) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
