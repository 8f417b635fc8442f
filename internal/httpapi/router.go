// Package httpapi exposes the simulator over HTTP and a websocket
// play-by-play stream.
package httpapi

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/xtding233/diamond-sim/internal/service"
)

const requestTimeout = 30 * time.Second

// Handler contains dependencies for HTTP handlers.
type Handler struct {
	svc    *service.Service
	logger *log.Logger
	// StepDelay paces the watch stream between pitches.
	StepDelay time.Duration
}

func NewHandler(svc *service.Service, logger *log.Logger) *Handler {
	if logger == nil {
		logger = log.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// NewRouter mounts every route. The websocket route skips the request timeout.
func NewRouter(h *Handler, origins []string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", h.HealthCheck)
	r.Get("/v1/games/watch", h.Watch)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(requestTimeout))
		r.Post("/v1/games/simulate", h.Simulate)
		r.Get("/v1/games/{gameID}/result", h.LatestResult)
		r.Get("/v1/snapshots/{gameID}", h.Snapshot)
		r.Post("/v1/snapshots/{gameID}/resume", h.Resume)
	})
	return r
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"elapsed", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
