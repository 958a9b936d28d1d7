// Package dashboard serves the backtesting report viewer: run history,
// composed chart plans, table exports and live viewport sync sessions.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/raykavin/reportview/pkg/chart"
	"github.com/raykavin/reportview/pkg/chart/indicator"
	"github.com/raykavin/reportview/pkg/history"
	"github.com/raykavin/reportview/pkg/logger"
	"github.com/raykavin/reportview/pkg/storage"
)

// Static assets embedded in the binary
var (
	//go:embed assets
	staticFiles embed.FS
)

// Defaults
const (
	DefaultPort   = 5555
	DefaultHeight = 360
)

// Dashboard serves one report directory and its run history
type Dashboard struct {
	host           string
	port           int
	debug          bool
	height         int
	serveTimeout   time.Duration
	indicators     []indicator.Indicator
	scanner        *history.Scanner
	store          storage.RunStorage
	ownStore       bool
	watcher        *history.Watcher
	watcherOptions []history.WatcherOption
	sessions       *SessionManager
	indexHTML      *template.Template
	scriptContent  string
	log            logger.Logger
}

// Option defines a function type for configuring a Dashboard
type Option func(*Dashboard)

// WithHost sets the host shown in the dashboard URL
func WithHost(host string) Option {
	return func(d *Dashboard) {
		d.host = host
	}
}

// WithPort sets the HTTP server port
func WithPort(port int) Option {
	return func(d *Dashboard) {
		d.port = port
	}
}

// WithDebug enables debug mode (disables minification)
func WithDebug() Option {
	return func(d *Dashboard) {
		d.debug = true
	}
}

// WithHeight sets the default total chart height
func WithHeight(height int) Option {
	return func(d *Dashboard) {
		d.height = height
	}
}

// WithServeTimeout stops the server once the timeout elapses
func WithServeTimeout(timeout time.Duration) Option {
	return func(d *Dashboard) {
		d.serveTimeout = timeout
	}
}

// WithIndicators adds derived indicators to every composed chart group
func WithIndicators(indicators ...indicator.Indicator) Option {
	return func(d *Dashboard) {
		d.indicators = indicators
	}
}

// WithStorage sets the history index storage. The caller keeps ownership.
func WithStorage(store storage.RunStorage) Option {
	return func(d *Dashboard) {
		d.store = store
	}
}

// WithWatcherOptions configures the history watcher
func WithWatcherOptions(options ...history.WatcherOption) Option {
	return func(d *Dashboard) {
		d.watcherOptions = options
	}
}

// New creates a dashboard for the runs found by scanner
func New(log logger.Logger, scanner *history.Scanner, options ...Option) (*Dashboard, error) {
	d := &Dashboard{
		host:    "localhost",
		port:    DefaultPort,
		height:  DefaultHeight,
		scanner: scanner,
		log:     log,
	}

	for _, option := range options {
		option(d)
	}

	if d.store == nil {
		store, err := storage.FromMemory()
		if err != nil {
			return nil, fmt.Errorf("create history storage: %w", err)
		}
		d.store, d.ownStore = store, true
	}

	watcherOptions := append([]history.WatcherOption{history.WithWatcherLogger(log)}, d.watcherOptions...)
	d.watcher = history.NewWatcher(scanner, d.store, watcherOptions...)
	d.sessions = NewSessionManager(log, d)

	var err error
	d.indexHTML, err = template.ParseFS(staticFiles, "assets/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse index template: %w", err)
	}

	mainJS, err := staticFiles.ReadFile("assets/js/main.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read main.js: %w", err)
	}

	transpiled := api.Transform(string(mainJS), api.TransformOptions{
		Loader:            api.LoaderJS,
		Target:            api.ES2017,
		MinifySyntax:      !d.debug,
		MinifyIdentifiers: !d.debug,
		MinifyWhitespace:  !d.debug,
	})
	if len(transpiled.Errors) > 0 {
		return nil, fmt.Errorf("main script failed with: %v", transpiled.Errors)
	}
	d.scriptContent = string(transpiled.Code)

	return d, nil
}

// URL is the address the dashboard is reachable at
func (d *Dashboard) URL() string {
	return fmt.Sprintf("http://%s/", net.JoinHostPort(d.host, fmt.Sprint(d.port)))
}

// Sessions returns the websocket session manager
func (d *Dashboard) Sessions() *SessionManager {
	return d.sessions
}

// newComposer creates a composer drawing on recording surfaces
func (d *Dashboard) newComposer(factory chart.SurfaceFactory) *chart.Composer {
	return chart.NewComposer(factory, chart.WithLogger(d.log))
}

// Handler returns the HTTP routes of the dashboard
func (d *Dashboard) Handler() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(d.log))
	router.Use(middleware.Recoverer)

	router.Get("/", d.handleIndex)
	router.Get("/assets/js/main.js", d.handleScript)
	router.Handle("/assets/*", http.FileServer(http.FS(staticFiles)))
	router.Get("/health", d.handleHealth)
	router.Get("/history.json", d.handleHistory)
	router.Get("/history/{id}/{file}", d.handleHistoryFile)
	router.Post("/history-clear", d.handleHistoryClear)
	router.Get("/charts", d.handleCharts)
	router.Get("/tables.csv", d.handleTableCSV)
	router.Get("/ws", d.sessions.HandleWebSocket)

	return router
}

// Start serves the dashboard until ctx is done or the serve timeout
// elapses, then shuts down and closes every session
func (d *Dashboard) Start(ctx context.Context) error {
	if d.serveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.serveTimeout)
		defer cancel()
	}

	if err := d.watcher.Start(ctx); err != nil {
		d.log.WithError(err).Warn("dashboard: history watcher not started")
	}
	defer d.watcher.Stop()

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", d.port),
		Handler:           d.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		d.log.Infof("Serving report on: %s", d.URL())
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	d.sessions.CloseAll()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown dashboard: %w", err)
	}
	return nil
}

// Close releases the storage the dashboard created itself
func (d *Dashboard) Close() error {
	d.sessions.CloseAll()
	if d.ownStore {
		return d.store.Close()
	}
	return nil
}
