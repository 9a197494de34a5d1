// Package api provides the HTTP server of the investment research dashboard.
//
// It serves the password-gated HTML dashboard, a small JSON API over the same
// analysis pipeline, a WebSocket progress stream, health and Prometheus
// metrics.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	zlog "github.com/rs/zerolog/log"

	"github.com/seenimoa/investdash/internal/config"
	"github.com/seenimoa/investdash/internal/dashboard"
	"github.com/seenimoa/investdash/internal/datasource"
	"github.com/seenimoa/investdash/internal/fetcher"
	"github.com/seenimoa/investdash/internal/gate"
	"github.com/seenimoa/investdash/internal/metrics"
	"github.com/seenimoa/investdash/web"
)

// Version is reported by /health. It is set by the CLI at startup.
var Version = "dev"

// Deps are the collaborators of a Server. Zero values are replaced with the
// production implementations built from the configuration.
type Deps struct {
	Provider datasource.Provider
	News     datasource.HeadlineSource
	Pacer    fetcher.Pacer
	Metrics  *metrics.Recorder
	Logger   *zerolog.Logger
}

// Server is the HTTP server.
type Server struct {
	router   chi.Router
	cfg      *config.Config
	log      zerolog.Logger
	gate     *gate.Gate
	sessions *gate.SessionStore
	fetcher  *fetcher.Fetcher
	renderer *dashboard.Renderer
	metrics  *metrics.Recorder
	wsHub    *WSHub
}

// NewServer creates a configured server with all routes and middleware.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	log := zerolog.Nop()
	if deps.Logger != nil {
		log = *deps.Logger
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}
	if deps.Provider == nil {
		deps.Provider = datasource.NewYFinance(datasource.YFinanceOptions{
			BaseURL:   cfg.Upstream.BaseURL,
			CookieURL: cfg.Upstream.CookieURL,
			Timeout:   cfg.Upstream.Timeout,
			UserAgent: cfg.Upstream.UserAgent,
			Observer:  deps.Metrics,
		})
	}
	if deps.News == nil && cfg.News.Enabled {
		deps.News = datasource.NewNews(cfg.News.FeedURL, cfg.Upstream.Timeout, cfg.Upstream.UserAgent)
	}
	if deps.Pacer == nil {
		deps.Pacer = fetcher.FixedPacer{Interval: cfg.Fetch.Pacing}
	}

	renderer, err := dashboard.NewRenderer(web.FS())
	if err != nil {
		return nil, fmt.Errorf("template setup failed: %w", err)
	}

	opts := []fetcher.Option{
		fetcher.WithMetrics(deps.Metrics),
		fetcher.WithLogger(log.With().Str("component", "fetcher").Logger()),
	}
	if deps.News != nil {
		opts = append(opts, fetcher.WithHeadlines(deps.News, cfg.News.Limit))
	}

	srv := &Server{
		cfg:      cfg,
		log:      log,
		gate:     gate.New(cfg.Auth.Password),
		sessions: gate.NewSessionStore(),
		fetcher:  fetcher.New(deps.Provider, deps.Pacer, opts...),
		renderer: renderer,
		metrics:  deps.Metrics,
		wsHub:    NewWSHub(),
	}
	srv.router = srv.buildRouter()
	return srv, nil
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}

// ListenAndServe starts the HTTP server and blocks until SIGINT or SIGTERM,
// then shuts down gracefully.
func (s *Server) ListenAndServe(addr string) error {
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	hubCtx, stopHub := context.WithCancel(context.Background())
	defer stopHub()
	go s.wsHub.Run(hubCtx)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", addr).Msg("listening")
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-done:
	}
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	return httpSrv.Shutdown(ctx)
}

// buildRouter configures all routes and middleware.
func (s *Server) buildRouter() chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(hlog.NewHandler(s.log))
	r.Use(hlog.RequestIDHandler("req_id", "X-Request-ID"))
	r.Use(hlog.AccessHandler(func(r *http.Request, status, size int, d time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("size", size).
			Dur("duration", d).
			Msg("request")
	}))
	r.Use(middleware.Recoverer)

	origins := []string{"*"}
	if len(s.cfg.Server.CORSOrigins) > 0 {
		origins = s.cfg.Server.CORSOrigins
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Open routes
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", s.metrics.Handler())
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(web.StaticFS()))))
	r.Get("/login", s.handleLoginPage)
	r.Post("/login", s.handleLoginForm)

	// Pages behind the gate
	r.Group(func(r chi.Router) {
		r.Use(s.requireSession(redirectToLogin))
		r.Get("/", s.handleDashboardPage)
		r.Post("/analyze", s.handleAnalyzeForm)
		r.Get("/ws", s.handleWebSocket)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Post("/login", s.handleLoginJSON)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession(unauthorizedJSON))
			r.Get("/analysis", s.handleGetAnalysis)
			r.Post("/analyze", s.handleAnalyzeJSON)
			r.Get("/config", s.handleGetConfig)
			r.Get("/config/secrets", s.handleGetSecrets)
		})
	})

	return r
}

// ============================================================
// Response envelope
// ============================================================

// APIResponse is the standard JSON envelope.
type APIResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data: map[string]any{
			"status":    "ok",
			"version":   Version,
			"sessions":  s.sessions.Len(),
			"ws_client": s.wsHub.ClientCount(),
			"time":      time.Now().UTC().Format(time.RFC3339),
		},
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("failed to write JSON response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, APIResponse{
		Success: false,
		Error:   msg,
	})
}
