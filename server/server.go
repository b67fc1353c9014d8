// Package server exposes the published snapshot over HTTP together
// with the static browser client. The server never generates data on
// request: it serves whatever snapshot the pipeline last published.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/rest"
	"github.com/go-pkgz/rest/logger"
	"github.com/go-pkgz/routegroup"
)

// SnapshotStore locates the published snapshot file
type SnapshotStore interface {
	Path() string
}

// Scheduler interface for on-demand refresh
type Scheduler interface {
	RefreshNow(ctx context.Context) error
}

// ConfigProvider provides server configuration
type ConfigProvider interface {
	GetServerConfig() (listen string, timeout time.Duration)
}

// Server represents HTTP server instance
type Server struct {
	config    ConfigProvider
	store     SnapshotStore
	scheduler Scheduler
	staticDir string
	version   string
	debug     bool

	lock       sync.Mutex
	httpServer *http.Server
	router     *routegroup.Bundle
}

// New initializes a new server instance. staticDir may be empty to
// disable serving the browser client.
func New(cfg ConfigProvider, store SnapshotStore, scheduler Scheduler, staticDir, version string, debug bool) *Server {
	s := &Server{
		config:    cfg,
		store:     store,
		scheduler: scheduler,
		staticDir: staticDir,
		version:   version,
		debug:     debug,
		router:    routegroup.New(http.NewServeMux()),
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// Run starts the HTTP server and handles graceful shutdown
func (s *Server) Run(ctx context.Context) error {
	listen, timeout := s.config.GetServerConfig()
	log.Printf("[INFO] starting server on %s", listen)

	s.lock.Lock()
	s.httpServer = &http.Server{
		Addr:         listen,
		Handler:      s.router,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}
	s.lock.Unlock()

	go func() {
		<-ctx.Done()
		log.Printf("[INFO] shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("[WARN] server shutdown error: %v", err)
		}
	}()

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server error: %w", err)
	}

	return nil
}

// setupMiddleware configures standard middleware for the server
func (s *Server) setupMiddleware() {
	s.router.Use(rest.AppInfo("newscards", "newscards", s.version))
	s.router.Use(rest.Ping)

	if s.debug {
		s.router.Use(logger.New(logger.Log(lgr.Default()), logger.Prefix("[DEBUG]")).Handler)
	}

	s.router.Use(rest.Recoverer(lgr.Default()))
	s.router.Use(rest.Throttle(100))
	s.router.Use(rest.SizeLimit(1024 * 1024)) // 1MB
}

// setupRoutes configures application routes
func (s *Server) setupRoutes() {
	// API routes
	s.router.Mount("/api/v1").Route(func(r *routegroup.Bundle) {
		r.HandleFunc("GET /status", s.statusHandler)
		r.HandleFunc("POST /refresh", s.refreshHandler)
	})

	// the published snapshot, always fetched fresh by the client
	s.router.HandleFunc("GET /data/latest.json", s.snapshotHandler)

	// static browser client
	if s.staticDir != "" {
		s.router.HandleFunc("GET /", http.FileServer(http.Dir(s.staticDir)).ServeHTTP)
	}
}

// snapshotHandler serves the published snapshot file. Caching is
// disabled so the client always observes the latest pipeline run.
func (s *Server) snapshotHandler(w http.ResponseWriter, r *http.Request) {
	path := s.store.Path()
	if _, err := os.Stat(path); err != nil {
		RenderError(w, r, fmt.Errorf("snapshot not generated yet"), http.StatusNotFound)
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

// statusHandler returns server status and snapshot freshness
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	status := map[string]interface{}{
		"status":  "ok",
		"version": s.version,
		"time":    time.Now().UTC(),
	}

	if fi, err := os.Stat(s.store.Path()); err == nil {
		status["snapshot"] = map[string]interface{}{
			"updated": fi.ModTime().UTC(),
			"size":    fi.Size(),
		}
	}

	RenderJSON(w, r, http.StatusOK, status)
}

// refreshHandler triggers an immediate snapshot refresh
func (s *Server) refreshHandler(w http.ResponseWriter, r *http.Request) {
	if s.scheduler == nil {
		RenderError(w, r, fmt.Errorf("refresh not available"), http.StatusServiceUnavailable)
		return
	}

	if err := s.scheduler.RefreshNow(r.Context()); err != nil {
		log.Printf("[ERROR] on-demand refresh failed: %v", err)
		RenderError(w, r, err, http.StatusInternalServerError)
		return
	}

	RenderJSON(w, r, http.StatusOK, map[string]string{"status": "refreshed"})
}

// RenderJSON sends JSON response
func RenderJSON(w http.ResponseWriter, _ *http.Request, code int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			log.Printf("[ERROR] can't encode response to JSON: %v", err)
		}
	}
}

// RenderError sends error response as JSON
func RenderError(w http.ResponseWriter, r *http.Request, err error, code int) {
	errMsg := "unknown error"
	if err != nil {
		errMsg = err.Error()
	}
	RenderJSON(w, r, code, map[string]string{"error": errMsg})
}
