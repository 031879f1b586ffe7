// Package server exposes the manager over HTTP. Every data route carries
// the schema as a path segment and is served by a session pinned to it, so
// concurrent requests never share a schema selection.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/export"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/filestore"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/savedquery"
)

// Deps are the collaborators a Server routes to. Uploads is optional.
type Deps struct {
	Session  *database.Session
	Exporter *export.Exporter
	Saved    *savedquery.Store
	Uploads  filestore.Store
	Bucket   string
	Logger   *logger.Logger
}

// Server is the HTTP operator API.
type Server struct {
	deps   Deps
	router chi.Router
}

func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logger.Global()
	}
	s := &Server{deps: deps}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/schemas", s.handleListSchemas)
	r.Get("/exports", s.handleListExports)

	r.Route("/saved-queries", func(r chi.Router) {
		r.Get("/", s.handleListSaved)
		r.Get("/{name}", s.handleGetSaved)
		r.Put("/{name}", s.handleSaveQuery)
		r.Delete("/{name}", s.handleDeleteSaved)
	})

	r.Route("/schemas/{schema}", func(r chi.Router) {
		r.Use(s.withSchema)

		r.Post("/query", s.handleQuery)
		r.Post("/query/export", s.handleQueryExport)
		r.Post("/saved-queries/{name}/run", s.handleRunSaved)
		r.Post("/exports", s.handleSchemaExport)

		r.Get("/tables", s.handleListTables)
		r.Post("/tables", s.handleCreateTable)
		r.Route("/tables/{table}", func(r chi.Router) {
			r.Get("/", s.handleDescribe)
			r.Delete("/", s.handleDropTable)
			r.Post("/export", s.handleTableExport)
			r.Get("/rows", s.handlePreview)
			r.Post("/rows", s.handleInsert)
			r.Put("/rows", s.handleUpdate)
			r.Delete("/rows", s.handleDelete)
		})
	})
	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then drains
// in-flight requests for up to ten seconds.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.deps.Logger.InfoWith("http server listening", map[string]any{"addr": addr})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.deps.Logger.Info("http server stopped")
	return nil
}
