package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/couchcryptid/aqi-hexmap/internal/domain"
)

// LayerService builds map layers and reports readiness.
type LayerService interface {
	sharedobs.ReadinessChecker
	Layer(ctx context.Context, year int) (domain.Layer, error)
	GeoJSON(ctx context.Context, year int) (*geojson.FeatureCollection, error)
	Years(ctx context.Context) ([]int, error)
}

// Options configures the dashboard page.
type Options struct {
	Title string
	Years []int
}

// Server exposes the dashboard, the layer API, and health, readiness, and
// metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        LayerService
	opts       Options
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the dashboard at /, the JSON API under
// /api/v1, and /healthz, /readyz, and /metrics routes.
func NewServer(addr string, svc LayerService, opts Options, logger *slog.Logger) *Server {
	s := &Server{
		svc:    svc,
		opts:   opts,
		logger: logger,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", s.handleDashboard).Methods(http.MethodGet)
	r.HandleFunc("/healthz", sharedobs.LivenessHandler()).Methods(http.MethodGet)
	r.HandleFunc("/readyz", sharedobs.ReadinessHandler(svc)).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/years", s.handleYears).Methods(http.MethodGet)
	api.HandleFunc("/layers/{year}", s.handleLayer).Methods(http.MethodGet)
	api.HandleFunc("/layers/{year}/geojson", s.handleGeoJSON).Methods(http.MethodGet)
	api.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, codeNotFound, "no such endpoint")
	})

	var h http.Handler = r
	h = handlers.CompressHandler(h)
	h = handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet}),
	)(h)
	h = requestLogger(logger)(h)
	h = handlers.RecoveryHandler(handlers.RecoveryLogger(recoveryLogger{logger}))(h)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      h,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
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
