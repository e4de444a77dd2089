// Package server implements the raido dev server: it serves the built site
// over HTTP with caching disabled and streams rebuild notifications.
package server

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// New creates a chi router serving outputDir. events, if non-nil, is
// mounted at GET /_raido/events for live-reload clients.
func New(outputDir string, events http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if events != nil {
		r.Get("/_raido/events", events.ServeHTTP)
	}

	r.Handle("/*", siteHandler(outputDir))

	return r
}

// siteHandler serves files from outputDir with no-cache headers so edits
// show up on refresh, and hides directory listings behind index.html checks.
func siteHandler(outputDir string) http.Handler {
	fileServer := http.FileServer(http.Dir(outputDir))

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") && r.URL.Path != "/" {
			if _, err := os.Stat(filepath.Join(outputDir, filepath.FromSlash(r.URL.Path), "index.html")); os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
		}
		w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
		w.Header().Set("Pragma", "no-cache")
		w.Header().Set("Expires", "0")
		fileServer.ServeHTTP(w, r)
	})
}
