package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonathan/teammatch/internal/api"
	"github.com/jonathan/teammatch/internal/config"
	"github.com/jonathan/teammatch/internal/httpclient"
	"github.com/jonathan/teammatch/internal/logging"
	"github.com/jonathan/teammatch/internal/render"
	"github.com/jonathan/teammatch/internal/router"
	"github.com/jonathan/teammatch/internal/session"
	"github.com/jonathan/teammatch/internal/storage"
	"github.com/jonathan/teammatch/internal/toast"
	"github.com/jonathan/teammatch/internal/views"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// progressInterval is the frame interval of the loading animation.
const progressInterval = 120 * time.Millisecond

var (
	errNotSignedIn    = errors.New("not signed in, run 'teammatch login' first")
	errSessionExpired = errors.New("session expired, run 'teammatch login' again")
)

// App is one command's client stack: the durable session store, the
// backend client and the pages.
type App struct {
	Config  *config.Config
	Logger  *zap.Logger
	Store   *storage.Local
	Session *session.Manager
	API     *api.Client
	Toasts  *toast.Queue
	Nav     *router.Navigator
	Views   *views.Views

	registry   *prometheus.Registry
	signedIn   bool
	redirected atomic.Bool
	cleanup    []func()
}

func newApp(ctx context.Context, cmd *cobra.Command) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if apiURL != "" {
		cfg.APIURL = apiURL
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}

	logger, err := logging.New(cfg.LogLevel, verbose)
	if err != nil {
		return nil, err
	}

	backend, err := storage.OpenSQLite(ctx, cfg.StorePath)
	if err != nil {
		return nil, err
	}
	store := storage.NewLocal(backend, logger)
	if cfg.RedisURL != "" {
		bc, err := storage.NewRedisBroadcaster(ctx, cfg.RedisURL)
		if err != nil {
			logger.Warn("session changes will not reach other processes", zap.Error(err))
		} else {
			store.Attach(ctx, bc)
		}
	}

	app := &App{Config: cfg, Logger: logger, Store: store}

	app.Nav = router.NewNavigator("/")
	app.cleanup = append(app.cleanup, app.Nav.Subscribe(func(path string) {
		if path == router.LoginPath {
			app.redirected.Store(true)
		}
	}))

	var reg prometheus.Registerer
	if cfg.Metrics {
		app.registry = prometheus.NewRegistry()
		reg = app.registry
	}

	hc, err := httpclient.New(httpclient.Options{
		BaseURL:           cfg.APIURL,
		Timeout:           cfg.Timeout,
		LegacyActorHeader: cfg.LegacyActorHeader,
		Registerer:        reg,
	}, store, app.Nav, logger)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.API = api.New(hc, logger)
	app.Session = session.New(app.API.Auth, store, logger)

	app.Toasts = toast.New(toast.WithLimit(cfg.ToastLimit))
	app.cleanup = append(app.cleanup, app.Toasts.Subscribe(toastPrinter(render.NewPrinter(cmd.ErrOrStderr()))))

	app.Views = views.New(views.Deps{
		API:              app.API,
		Session:          app.Session,
		Toasts:           app.Toasts,
		Printer:          render.NewPrinter(cmd.OutOrStdout()),
		Nav:              app.Nav,
		Logger:           logger,
		ProgressInterval: progressInterval,
	})

	if err := app.Session.Init(ctx); err != nil {
		app.Close()
		return nil, fmt.Errorf("failed to restore session: %w", err)
	}
	app.signedIn = app.Session.CurrentUser() != nil
	return app, nil
}

// toastPrinter prints each toast once, when it first appears.
func toastPrinter(p *render.Printer) func([]toast.Toast) {
	var mu sync.Mutex
	seen := make(map[string]bool)
	return func(ts []toast.Toast) {
		mu.Lock()
		defer mu.Unlock()
		for _, t := range ts {
			if seen[t.ID] {
				continue
			}
			seen[t.ID] = true
			p.Toast(t)
		}
	}
}

// Close releases the store and logs the request metrics when enabled.
func (a *App) Close() {
	for i := len(a.cleanup) - 1; i >= 0; i-- {
		a.cleanup[i]()
	}
	a.cleanup = nil
	if a.Toasts != nil {
		a.Toasts.Clear()
	}
	if a.Session != nil {
		a.Session.Close()
	}
	a.logMetrics()
	if err := a.Store.Close(); err != nil {
		a.Logger.Warn("failed to close session store", zap.Error(err))
	}
	_ = a.Logger.Sync()
}

func (a *App) logMetrics() {
	if a.registry == nil {
		return
	}
	families, err := a.registry.Gather()
	if err != nil {
		a.Logger.Warn("failed to gather metrics", zap.Error(err))
		return
	}
	for _, mf := range families {
		if mf.GetName() != "teammatch_http_requests_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			fields := []zap.Field{zap.Float64("count", m.GetCounter().GetValue())}
			for _, lp := range m.GetLabel() {
				fields = append(fields, zap.String(lp.GetName(), lp.GetValue()))
			}
			a.Logger.Info("backend requests", fields...)
		}
	}
}

// finish turns session failures into instructions.
func (a *App) finish(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, session.ErrNotSignedIn):
		return errNotSignedIn
	case a.signedIn && a.redirected.Load():
		return errSessionExpired
	}
	return err
}

// withApp runs fn with a client stack built for cmd.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *App) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := newApp(ctx, cmd)
	if err != nil {
		return err
	}
	defer app.Close()
	return app.finish(fn(ctx, app))
}

func parseID(arg, what string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimPrefix(arg, "#"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s id %q", what, arg)
	}
	return id, nil
}

func parseIDs(args []string, whats ...string) ([]int64, error) {
	ids := make([]int64, len(args))
	for i, arg := range args {
		id, err := parseID(arg, whats[i])
		if err != nil {
			return nil, err
		}
		ids[i] = id
	}
	return ids, nil
}
