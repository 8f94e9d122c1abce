package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/notifyhub/flagnotify/internal/notify"
	"github.com/notifyhub/flagnotify/internal/queue"
)

// NewRouter wires the chi router, attaches all middleware, and registers
// every route. It is the single source of truth for the HTTP surface area.
func NewRouter(
	publisher *notify.Publisher,
	q queue.Queue,
	reg prometheus.Gatherer,
	logger *zap.Logger,
	onDebounced func(),
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.Recoverer)            // recover panics, return 500
	r.Use(chimw.RealIP)               // trust X-Forwarded-For / X-Real-IP
	r.Use(chimw.RequestSize(1 << 16)) // 64 KB max request body; events are tiny
	r.Use(CorrelationID)
	r.Use(RequestLogger(logger))

	eh := NewEventHandler(publisher, logger, onDebounced)
	qh := NewQueueHandler(q)

	r.Get("/health", Health)

	// Raw Prometheus scrape endpoint.
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/events/content-updated", eh.ContentUpdated)
		r.Get("/queue", qh.Depth)
	})

	return r
}
