// Package api exposes the analytics service over HTTP.
package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/restock/internal/analytics"
)

// maxUploadBytes bounds POST /v1/orders bodies.
const maxUploadBytes = 32 << 20

// Options configures the router.
type Options struct {
	// RateLimit is the sustained requests per second across all clients.
	// Zero disables rate limiting.
	RateLimit   float64
	Burst       int
	CORSOrigins []string
}

type server struct {
	svc *analytics.Service
	log *zap.Logger
}

// NewRouter builds the HTTP handler for svc.
func NewRouter(svc *analytics.Service, opts Options) http.Handler {
	s := &server{
		svc: svc,
		log: zap.L().With(zap.String("component", "api")),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)
	if len(opts.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: opts.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/health", s.health)
	r.Handle("/metrics", svc.Metrics().Handler())

	r.Route("/v1", func(r chi.Router) {
		if opts.RateLimit > 0 {
			r.Use(rateLimit(rate.NewLimiter(rate.Limit(opts.RateLimit), max(opts.Burst, 1))))
		}
		r.Get("/profiles", s.profiles)
		r.Get("/profiles/{key}/similar", s.similar)
		r.Get("/journey", s.journey)
		r.Get("/inventory", s.inventory)
		r.Get("/inventory/sync", s.syncRecords)
		r.Post("/orders", s.importOrders)
	})
	return r
}

// rateLimit rejects requests beyond the limiter's budget with 429.
func rateLimit(lim *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !lim.Allow() {
				w.Header().Set("Retry-After", "1")
				writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// instrument counts requests by matched route pattern and status code.
func (s *server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		s.svc.Metrics().Requests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	})
}
