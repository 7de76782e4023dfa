package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"courier-dispatch/internal/http/handlers"
	obs "courier-dispatch/internal/http/middleware"
	"courier-dispatch/internal/http/middleware/ratelimit"
	"courier-dispatch/internal/logx"
)

// New constructs a chi-based http.Handler with base middleware and routes.
// Location updates are limited per partner; everything else shares the
// per-client limit.
func New(
	h *handlers.Handlers,
	p *handlers.PartnerHandler,
	d *handlers.DispatchHandler,
	rl *ratelimit.Middleware,
	logger logx.Logger,
) http.Handler {
	if rl == nil {
		rl = ratelimit.New(logger, nil, nil)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(obs.Observability(logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(5 * time.Second))

	r.Get("/ping", h.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(h.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/partners", func(r chi.Router) {
		r.With(rl.Handler()).Get("/nearby", p.Nearby)
		r.Route("/{id}", func(r chi.Router) {
			r.With(rl.HandlerBy(ratelimit.ByURLParam("id"))).Put("/location", p.UpdateLocation)
			r.Delete("/location", p.GoOffline)
			r.Post("/available", p.MarkAvailable)
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(rl.Handler())
		r.Post("/dispatch", d.Dispatch)
		r.Route("/orders/{id}", func(r chi.Router) {
			r.Post("/accept", d.Accept)
			r.Post("/cancel", d.Cancel)
			r.Get("/assignment", d.Assignment)
		})
	})

	r.NotFound(http.HandlerFunc(h.NotFound))

	return r
}
