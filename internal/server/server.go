// Package server exposes a filestore.Adapter over HTTP.
//
// Routes:
//
//	GET    /files/*        read (?stream=1 streams the body)
//	HEAD   /files/*        metadata as headers
//	PUT    /files/*        write the request body
//	DELETE /files/*        delete (?dir=1 deletes a directory marker)
//	GET    /meta/*         metadata as JSON
//	POST   /dirs/*         create a directory
//	GET    /list/*         list (?recursive=1)
//	GET    /visibility/*   get visibility
//	PUT    /visibility/*   set visibility, body {"visibility":"public"}
//	POST   /copy           body {"from":"a","to":"b"}
//	POST   /rename         body {"from":"a","to":"b"}
package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/koustreak/bucketfs/internal/config"
	"github.com/koustreak/bucketfs/internal/filestore"
	"github.com/koustreak/bucketfs/internal/logger"
)

// Server serves one adapter.
type Server struct {
	fs     filestore.Adapter
	log    *logger.Logger
	router chi.Router
}

// New builds the router for fs. A nil log discards request logs.
func New(fs filestore.Adapter, log *logger.Logger) *Server {
	if log == nil {
		log = logger.Nop()
	}
	s := &Server{fs: fs, log: log}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/files", func(r chi.Router) {
		r.Get("/*", s.read)
		r.Head("/*", s.head)
		r.Put("/*", s.write)
		r.Delete("/*", s.delete)
	})
	r.Get("/meta/*", s.metadata)
	r.Post("/dirs/*", s.createDir)
	r.Get("/list", s.list)
	r.Get("/list/*", s.list)
	r.Get("/visibility/*", s.getVisibility)
	r.Put("/visibility/*", s.setVisibility)
	r.Post("/copy", s.copy)
	r.Post("/rename", s.rename)

	return r
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves on cfg.Addr until ctx is done, then shuts down gracefully
// within cfg.ShutdownTimeout.
func (s *Server) Run(ctx context.Context, cfg config.ServerConfig) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.InfoWith("http server listening", map[string]interface{}{"addr": cfg.Addr})
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

	shutdownCtx := context.Background()
	if cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, cfg.ShutdownTimeout)
		defer cancel()
	}
	s.log.Info("http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
