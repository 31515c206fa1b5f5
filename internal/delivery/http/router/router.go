package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/user/attendance-service/internal/delivery/http/handler"
	"github.com/user/attendance-service/internal/delivery/http/middleware"
	"github.com/user/attendance-service/pkg/metrics"
)

// Options tunes the router's middleware stack.
type Options struct {
	Logger         *zap.Logger
	CORSOrigins    []string
	RequestTimeout time.Duration
}

func New(h *handler.Handler, opts Options) http.Handler {
	metrics.Init()

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logging(opts.Logger))
	r.Use(middleware.Metrics)
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))
	if opts.RequestTimeout > 0 {
		r.Use(chimw.Timeout(opts.RequestTimeout))
	}

	r.NotFound(h.HandleNotFound)
	r.MethodNotAllowed(h.HandleMethodNotAllowed)

	r.Get("/", h.HandleIndex)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.HandleHealthCheck)
		r.Post("/captcha", h.HandleCaptcha)

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/", h.HandleFetchAttendance)
			r.Post("/summary", h.HandleAttendanceSummary)
			r.Get("/cached", h.HandleCachedAttendance)
			r.Get("/history", h.HandleAttendanceHistory)
		})
	})

	return r
}
