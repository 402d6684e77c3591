// Package web serves merges over HTTP.
//
//	GET  /healthz            liveness and merge slot usage
//	POST /api/merge          merge tables named in a JSON body
//	GET  /api/merge          merge tables named by ?t=name=locator
//	POST /api/upload         merge uploaded CSV files
//	POST /api/infer          infer the schema of one uploaded CSV file
//	GET  /view               merge and render as an HTML table
package web

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/JonMunkholm/csvunion/internal/config"
	"github.com/JonMunkholm/csvunion/internal/core"
	"github.com/JonMunkholm/csvunion/internal/web/middleware"
)

// Server is the HTTP front end of a core.Service.
type Server struct {
	service *core.Service
	limiter *core.MergeLimiter
	cfg     *config.Config
	router  *chi.Mux
	server  *http.Server
}

// NewServer wires routes and middleware. limiter bounds the merges running
// at once across all requests.
func NewServer(service *core.Service, limiter *core.MergeLimiter, cfg *config.Config) *Server {
	s := &Server{
		service: service,
		limiter: limiter,
		cfg:     cfg,
		router:  chi.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimw.RequestID)
	s.router.Use(middleware.TrustedRealIP(s.cfg.Security.TrustedProxies))
	s.router.Use(middleware.Logger)
	s.router.Use(chimw.Recoverer)
	s.router.Use(chimw.Compress(5))
	s.router.Use(chimw.Timeout(s.cfg.Server.RequestTimeout))
	s.router.Use(securityHeaders)
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)

	s.router.Group(func(r chi.Router) {
		if s.cfg.Rate.Enabled {
			rl := middleware.NewRateLimiter(s.cfg.Rate.RequestsPerMinute, s.cfg.Rate.Burst)
			r.Use(rl.Handler)
		}
		r.Use(middleware.APIKeyAuth(s.cfg.Security.APIKeys))

		r.Get("/view", s.handleView)

		r.Route("/api", func(r chi.Router) {
			r.Post("/merge", s.handleMerge)
			r.Get("/merge", s.handleMergeQuery)
			r.Post("/upload", s.handleUpload)
			r.Post("/infer", s.handleInfer)
		})
	})

	s.router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusNotFound, ErrorResponse{
			Error:   "not found",
			Message: "not found",
			Code:    "REQ001",
		})
	})
}

// Start listens on the configured address until Shutdown.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	slog.Info("server listening", "addr", s.server.Addr)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, then waits for running merges to
// finish or ctx to expire.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	err := s.server.Shutdown(ctx)
	if drainErr := s.limiter.WaitForDrain(ctx); drainErr != nil {
		slog.Warn("merges still running at shutdown", "status", s.limiter.Status())
		err = errors.Join(err, drainErr)
	}
	return err
}

// Router returns the router for tests.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "DENY")
		// The view page only uses its own inline stylesheet.
		h.Set("Content-Security-Policy", "default-src 'none'; style-src 'unsafe-inline'")
		h.Set("Referrer-Policy", "no-referrer")
		next.ServeHTTP(w, r)
	})
}
