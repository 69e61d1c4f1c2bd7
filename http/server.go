// Package http serves the query API and crawl controls over HTTP.
package http

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/fwojciec/rfqtrack"
	"github.com/fwojciec/rfqtrack/crawl"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// DefaultShutdownTimeout bounds graceful shutdown.
const DefaultShutdownTimeout = 10 * time.Second

// Server exposes a QueryService and a crawl Runner as a JSON API.
type Server struct {
	Addr string

	Queries rfqtrack.QueryService
	Runner  *crawl.Runner

	// Gatherer, if set, is served at /metrics.
	Gatherer prometheus.Gatherer

	// AllowedOrigins configures CORS. Empty allows any origin.
	AllowedOrigins []string

	Logger *slog.Logger

	server *http.Server
}

// Handler returns the API routes wrapped with CORS handling.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/projects", s.handleProjects)
	mux.HandleFunc("GET /api/partners", s.handlePartnerNames)
	mux.HandleFunc("GET /api/projects/{number}/partners", s.handlePartners)
	mux.HandleFunc("GET /api/projects/{number}/partners/{partner}/submissions", s.handleHistory)
	mux.HandleFunc("GET /api/projects/{number}/partners/{partner}/stats", s.handlePartnerStats)
	mux.HandleFunc("GET /api/projects/{number}/stats", s.handleProjectStats)
	mux.HandleFunc("GET /api/projects/{number}/activity", s.handleActivity)
	mux.HandleFunc("GET /api/submissions/{id}/stats", s.handleSubmissionStats)
	mux.HandleFunc("POST /api/crawl", s.handleStartCrawl)
	mux.HandleFunc("GET /api/crawl", s.handleCrawlStatus)

	if s.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{}))
	}

	origins := s.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept"},
	})
	return c.Handler(mux)
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.server = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger().Info("server starting", "addr", ln.Addr().String())
		errCh <- s.server.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), DefaultShutdownTimeout)
	defer cancel()
	s.logger().Info("server shutting down")
	return s.server.Shutdown(shutdownCtx)
}

func (s *Server) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
