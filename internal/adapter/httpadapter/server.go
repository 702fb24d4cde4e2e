package httpadapter

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-overlay-service/internal/domain"
	"github.com/couchcryptid/quake-overlay-service/internal/overlay"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the overlay API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	store      *overlay.Store
	styler     *domain.Styler
	tiles      domain.TileSource
	logger     *slog.Logger
}

// NewServer creates the HTTP server. A nil tile source disables /tiles and
// lists only the overlays in /api/layers.
func NewServer(addr string, store *overlay.Store, styler *domain.Styler, tiles domain.TileSource, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		store:  store,
		styler: styler,
		tiles:  tiles,
		logger: logger,
	}

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.Handle("GET /api/earthquakes", withCORS(s.handleOverlay(overlay.Earthquakes)))
	mux.Handle("GET /api/plates", withCORS(s.handleOverlay(overlay.Tectonics)))
	mux.Handle("GET /api/legend", withCORS(http.HandlerFunc(s.handleLegend)))
	mux.Handle("GET /api/layers", withCORS(http.HandlerFunc(s.handleLayers)))
	mux.Handle("GET /api/style", withCORS(http.HandlerFunc(s.handleStyle)))
	mux.Handle("GET /tiles/{layer}/{z}/{x}/{y}", withCORS(http.HandlerFunc(s.handleTile)))

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

// withCORS lets browser map clients on other origins read the API.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}
