package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/cartsync/internal/auth"
	"github.com/nikolayk812/cartsync/internal/badge"
	"github.com/nikolayk812/cartsync/internal/cartsync"
	"github.com/nikolayk812/cartsync/internal/catalog"
	"github.com/nikolayk812/cartsync/internal/config"
	"github.com/nikolayk812/cartsync/internal/domain"
	"github.com/nikolayk812/cartsync/internal/gateway"
	"github.com/nikolayk812/cartsync/internal/localstore"
	"github.com/nikolayk812/cartsync/internal/logger"
	"github.com/nikolayk812/cartsync/internal/metrics"
	"github.com/nikolayk812/cartsync/internal/port"
	"github.com/nikolayk812/cartsync/internal/repository"
	"github.com/nikolayk812/cartsync/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/multierr"
)

type Options struct {
	Config *config.Config
	Logger *logger.Logger
	// Registerer receives the sync metrics; nil disables them.
	Registerer prometheus.Registerer
	Notifier   port.Notifier
	Display    badge.Display
	// Catalog overrides loading Config.Catalog.ProductsFile.
	Catalog *catalog.Catalog
}

// App holds one shopper profile: its session, both carts and the services
// built on them.
type App struct {
	log *logger.Logger

	Session *auth.Session
	Local   port.LocalCartStore
	Remote  port.RemoteCartGateway
	Catalog *catalog.Catalog
	Sync    *cartsync.Synchronizer
	Badge   *badge.Badge
	Cart    *service.CartService

	closers []func() error
}

// SyncResult reports a login merge or logout mirror. Err is informational:
// the session change itself has already happened.
type SyncResult struct {
	Summary domain.SyncSummary
	Err     error
}

func New(ctx context.Context, opts Options) (_ *App, err error) {
	cfg := opts.Config
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	unit, err := cfg.Pricing.Unit()
	if err != nil {
		return nil, err
	}

	a := &App{
		log:     log,
		Session: auth.NewSession(),
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, a.Close())
		}
	}()

	a.Catalog = opts.Catalog
	if a.Catalog == nil {
		a.Catalog, err = loadCatalog(ctx, log, cfg.Catalog.ProductsFile)
		if err != nil {
			return nil, err
		}
	}

	var closeLocal func() error
	a.Local, closeLocal, err = NewLocalStore(ctx, cfg.LocalStore, cfg.App.Profile)
	if err != nil {
		return nil, fmt.Errorf("NewLocalStore: %w", err)
	}
	a.closers = append(a.closers, closeLocal)

	var closeRemote func() error
	a.Remote, closeRemote, err = NewGateway(ctx, cfg, a.Session, a.Catalog, log)
	if err != nil {
		return nil, fmt.Errorf("NewGateway: %w", err)
	}
	a.closers = append(a.closers, closeRemote)

	a.Badge, err = badge.New(a.Session, a.Local, a.Remote,
		badge.WithDisplay(opts.Display),
		badge.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("badge.New: %w", err)
	}

	a.Sync, err = cartsync.New(a.Local, a.Remote, a.Session,
		cartsync.WithLogger(log),
		cartsync.WithMetrics(metrics.NewSyncMetrics(opts.Registerer)),
		cartsync.WithBadge(a.Badge),
		cartsync.WithNotifier(opts.Notifier),
		cartsync.WithRetainFailedLines(cfg.Sync.RetainFailedLines),
	)
	if err != nil {
		return nil, fmt.Errorf("cartsync.New: %w", err)
	}

	a.Cart, err = service.New(a.Session, a.Local, a.Remote, a.Catalog,
		service.WithBadge(a.Badge),
		service.WithCurrency(unit),
		service.WithLogger(log),
	)
	if err != nil {
		return nil, fmt.Errorf("service.New: %w", err)
	}

	return a, nil
}

// Resume installs an existing session token without syncing.
func (a *App) Resume(token string) error {
	if err := a.Session.Login(token); err != nil {
		return domain.Wrap(domain.CodeUnauthenticated, err, "invalid session token")
	}
	return nil
}

// Login starts the session and merges the guest cart into the account cart,
// waiting for the merge to finish. Only an unusable token is an error.
func (a *App) Login(ctx context.Context, token string) (SyncResult, error) {
	if err := a.Resume(token); err != nil {
		return SyncResult{}, err
	}

	summary, err := a.Sync.MergeLocalIntoRemote(ctx)
	if err != nil {
		a.log.Error(ctx, "merge guest cart on login", err)
	} else if lineErr := summary.Err(); lineErr != nil {
		a.log.Warn(ctx, "some guest cart lines were not merged", lineErr)
	}

	return SyncResult{Summary: summary, Err: err}, nil
}

// Logout mirrors the account cart into the guest cart while the token is
// still valid, then ends the session. A failed mirror does not block it.
func (a *App) Logout(ctx context.Context) SyncResult {
	summary, err := a.Sync.MirrorRemoteIntoLocal(ctx)
	if err != nil {
		a.log.Warn(ctx, "mirror account cart on logout", err)
	}

	a.Session.Logout()
	a.Badge.Refresh(ctx)

	return SyncResult{Summary: summary, Err: err}
}

func (a *App) Close() error {
	var errs error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = multierr.Append(errs, a.closers[i]())
	}
	a.closers = nil
	return errs
}

// NewLocalStore opens the configured guest cart backend for profile.
func NewLocalStore(ctx context.Context, cfg config.LocalStoreConfig, profile string) (port.LocalCartStore, func() error, error) {
	switch cfg.Backend {
	case config.LocalStoreMemory:
		return localstore.NewMemory(), noopClose, nil
	case config.LocalStoreRedis:
		store, client, err := localstore.NewRedisFromURL(ctx, cfg.RedisURL, profile, cfg.RedisTTL)
		if err != nil {
			return nil, nil, err
		}
		return store, client.Close, nil
	case config.LocalStoreSQLite, "":
		store, err := localstore.OpenSQLite(cfg.SQLitePath, profile)
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown local store backend %q", cfg.Backend)
	}
}

// NewGateway builds the configured account cart variant. The choice is made
// once; callers only see port.RemoteCartGateway.
func NewGateway(ctx context.Context, cfg *config.Config, session *auth.Session, products port.Catalog, log *logger.Logger) (port.RemoteCartGateway, func() error, error) {
	switch cfg.Gateway.Backend {
	case config.GatewayTable:
		pool, err := pgxpool.New(ctx, cfg.DB.DSN)
		if err != nil {
			return nil, nil, fmt.Errorf("pgxpool.New: %w", err)
		}
		repo, err := repository.NewCart(pool, session, products)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return repo, func() error { pool.Close(); return nil }, nil
	case config.GatewayMemory:
		g, err := gateway.New(gateway.NewMemory(), session, gateway.WithCatalog(products), gateway.WithLogger(log))
		if err != nil {
			return nil, nil, err
		}
		return g, noopClose, nil
	case config.GatewayEdge, "":
		edge, err := gateway.NewEdge(cfg.Gateway.FunctionsURL, cfg.Gateway.AnonKey, &http.Client{Timeout: cfg.Gateway.RequestTimeout})
		if err != nil {
			return nil, nil, err
		}
		g, err := gateway.New(edge, session,
			gateway.WithCatalog(products),
			gateway.WithRetry(cfg.Gateway.RetryAttempts, cfg.Gateway.RetryBackoff),
			gateway.WithLogger(log),
		)
		if err != nil {
			return nil, nil, err
		}
		return g, noopClose, nil
	default:
		return nil, nil, fmt.Errorf("unknown gateway backend %q", cfg.Gateway.Backend)
	}
}

// loadCatalog reads the products file; a missing file yields an empty catalog.
func loadCatalog(ctx context.Context, log *logger.Logger, path string) (*catalog.Catalog, error) {
	c, err := catalog.Load(os.DirFS(filepath.Dir(path)), filepath.Base(path))
	if err == nil {
		return c, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn(log.WithField(ctx, "productsFile", path), "products file not found, catalog is empty", err)
		return catalog.New()
	}
	return nil, fmt.Errorf("catalog.Load: %w", err)
}

func noopClose() error {
	return nil
}
