package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aretw0/portscope"
	"github.com/aretw0/portscope/internal/config"
	"github.com/aretw0/portscope/internal/logging"
	"github.com/aretw0/portscope/pkg/adapters/commandport"
	"github.com/aretw0/portscope/pkg/adapters/memory"
	redisstore "github.com/aretw0/portscope/pkg/adapters/redis"
	"github.com/aretw0/portscope/pkg/observability"
	"github.com/aretw0/portscope/pkg/persistence/middleware"
	"github.com/aretw0/portscope/pkg/ports"
	"github.com/aretw0/portscope/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is everything a command needs, built from the resolved configuration.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Inspector *portscope.Inspector
	Sessions  *session.Manager
	Metrics   *observability.Metrics
	Registry  *prometheus.Registry

	closers []func() error
}

// NewApp wires the host, the inspector, metrics and the session store.
// A configured scene file selects the in-memory host; otherwise the Maya
// command port at cfg.Host.Addr is used (connected on first use).
func NewApp(cfg *config.Config) (*App, error) {
	logger := createLogger(cfg.Debug)

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := observability.NewMetrics(reg)

	hooks := metrics.Hooks()
	if cfg.Debug {
		hooks = observability.Combine(hooks, observability.LoggingHooks(logger))
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Registry: reg,
	}

	opts := []portscope.Option{
		portscope.WithLogger(logger),
		portscope.WithLifecycleHooks(hooks),
		portscope.WithWorkers(cfg.Workers),
	}
	if cfg.Scene == "" {
		host := commandport.NewHost(commandport.NewClient(cfg.Host.Addr,
			commandport.WithTimeout(cfg.Host.Timeout),
			commandport.WithLogger(logger),
		))
		app.closers = append(app.closers, host.Close)
		opts = append(opts, portscope.WithHost(host))
		logger.Debug("using command port host", "addr", cfg.Host.Addr)
	} else {
		logger.Debug("using scene file", "scene", cfg.Scene)
	}

	insp, err := portscope.New(cfg.Scene, opts...)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("error initializing inspector: %w", err)
	}
	app.Inspector = insp

	store, locker, err := app.sessionStore(cfg)
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if store, err = sealSessions(store, cfg.Sessions); err != nil {
		_ = app.Close()
		return nil, err
	}
	sessOpts := []session.Option{session.WithLogger(logger)}
	if locker != nil {
		sessOpts = append(sessOpts, session.WithLocker(locker))
	}
	app.Sessions = session.NewManager(store, insp, sessOpts...)

	return app, nil
}

func (a *App) sessionStore(cfg *config.Config) (ports.SessionStore, ports.DistributedLocker, error) {
	switch cfg.Sessions.Backend {
	case config.BackendMemory:
		return memory.NewStore(), nil, nil
	case config.BackendRedis:
		store := redisstore.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redisstore.WithTTL(cfg.Sessions.TTL),
		)
		a.closers = append(a.closers, store.Close)
		a.Logger.Debug("using redis session store", "addr", cfg.Redis.Addr, "db", cfg.Redis.DB)
		return store, redisstore.NewLocker(store.Client(), redisstore.DefaultPrefix), nil
	default:
		return nil, nil, fmt.Errorf("%w: unknown sessions backend %q", config.ErrInvalid, cfg.Sessions.Backend)
	}
}

// sealSessions wraps store with at-rest encryption when a key is configured.
func sealSessions(store ports.SessionStore, cfg config.SessionsConfig) (ports.SessionStore, error) {
	active, fallback, err := cfg.EncryptionKeys()
	if err != nil || active == nil {
		return store, err
	}
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    active,
		FallbackKeys: fallback,
	})
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}

// Close releases host connections and store clients.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// createLogger configures the application logger.
// In debug mode, it writes to Stderr (to keep tables on Stdout clean).
func createLogger(debug bool) *slog.Logger {
	if debug {
		return logging.New(logging.Options{Level: slog.LevelDebug})
	}
	return logging.NewNop()
}
