// Package api serves the engine over JSON HTTP.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/roach88/updatelog/internal/engine"
	"github.com/roach88/updatelog/internal/importer"
)

// DefaultMaxUpload bounds multipart import bodies.
const DefaultMaxUpload = 32 << 20

// Options configures a Server.
type Options struct {
	// CORSOrigins lists allowed origins. Empty allows none.
	CORSOrigins []string

	// Import configures the spreadsheet readers behind POST /api/import.
	Import importer.Options

	// ExportSheet names the XLSX worksheet. Empty means export.DefaultSheet.
	ExportSheet string

	// MaxUploadBytes bounds import uploads. Default: DefaultMaxUpload.
	MaxUploadBytes int64
}

// Server holds the HTTP handlers.
type Server struct {
	engine *engine.Engine
	logger *slog.Logger
	opts   Options
}

// New creates a Server.
func New(e *engine.Engine, logger *slog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUpload
	}
	return &Server{engine: e, logger: logger, opts: opts}
}

// Routes builds the router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "Content-Disposition"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/meetings", func(r chi.Router) {
			r.Get("/", s.listMeetings)
			r.Post("/", s.createMeeting)
			r.Post("/bulk-delete", s.bulkDelete)
			r.Post("/reorder", s.reorder)
			r.Post("/renumber", s.renumber)
			r.Get("/{id}", s.getMeeting)
			r.Put("/{id}", s.updateMeeting)
			r.Delete("/{id}", s.deleteMeeting)
		})

		r.Get("/groups", s.listGroups)
		r.Get("/clients", s.listClients)
		r.Get("/clients/{client}/addresses", s.clientAddresses)
		r.Get("/dashboard/stats", s.stats)

		r.Post("/import", s.importFile)
		r.Post("/export/{format}", s.exportFile)
	})

	return r
}

// ListenAndServe runs the API on addr until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("http server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
