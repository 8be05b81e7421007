// Package server exposes gridpress over HTTP: the static live pages, the
// editable canvas markup, a JSON editing API, and a server-sent-events
// stream of document updates.
//
// The live and canvas surfaces are rendered from the same shared grid
// configuration held by the Server; handing the two renderers different
// configurations is the one divergence this process-wide wiring exists to
// prevent.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/gridpress/gridpress/pkg/cache"
	"github.com/gridpress/gridpress/pkg/grid"
	"github.com/gridpress/gridpress/pkg/registry"
	"github.com/gridpress/gridpress/pkg/sync"
	"github.com/gridpress/gridpress/pkg/theme"
)

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// Server serves pages and the editing API.
type Server struct {
	loader *sync.Loader
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	grid   grid.Config
	theme  theme.Theme
	reg    *registry.Registry
	logger *log.Logger
}

// Options configures a Server.
type Options struct {
	Loader   *sync.Loader
	Cache    cache.Cache    // nil disables caching
	Keyer    cache.Keyer    // nil uses the default keyer
	CacheTTL time.Duration  // zero means cache entries never expire
	Grid     grid.Config    // zero value uses the stock configuration
	Theme    theme.Theme    // zero value uses the light theme
	Registry *registry.Registry
	Logger   *log.Logger
}

// New creates a server. Loader is required; everything else defaults.
func New(opts Options) *Server {
	if opts.Cache == nil {
		opts.Cache = cache.NewNullCache()
	}
	if opts.Keyer == nil {
		opts.Keyer = cache.NewDefaultKeyer()
	}
	if opts.Grid.Cols == 0 {
		opts.Grid = grid.DefaultConfig()
	}
	if opts.Theme.Name == "" {
		opts.Theme = theme.Light()
	}
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Server{
		loader: opts.Loader,
		cache:  opts.Cache,
		keyer:  opts.Keyer,
		ttl:    opts.CacheTTL,
		grid:   opts.Grid,
		theme:  opts.Theme,
		reg:    opts.Registry,
		logger: opts.Logger,
	}
}

// Router builds the HTTP route tree.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/p/{pageID}", s.handleLivePage)
	r.Get("/edit/{pageID}", s.handleCanvas)

	r.Route("/api", func(r chi.Router) {
		r.Get("/registry", s.handleRegistry)
		r.Route("/pages/{pageID}", func(r chi.Router) {
			r.Get("/", s.handleGetPage)
			r.Put("/", s.handlePutPage)
			r.Get("/watch", s.handleWatch)
			r.Post("/sections", s.handleAddSection)
			r.Delete("/sections/{sectionID}", s.handleDeleteSection)
			r.Post("/sections/{sectionID}/move", s.handleMoveSection)
			r.Patch("/sections/{sectionID}/props", s.handleUpdateProp)
			r.Patch("/layout", s.handleApplyLayout)
		})
	})

	return r
}

// ListenAndServe runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// logRequests is the request-logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).Round(time.Millisecond))
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
