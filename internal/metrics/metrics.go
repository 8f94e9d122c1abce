package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/notifyhub/flagnotify/internal/domain"
)

// Metrics groups all Prometheus instruments used across the application.
// Registered once at startup via New(); passed by pointer wherever needed.
type Metrics struct {
	MailsDelivered    prometheus.Counter
	MailFailures      prometheus.Counter
	RecipientsSkipped *prometheus.CounterVec
	JobsProcessed     *prometheus.CounterVec
	DispatchDuration  prometheus.Histogram
	EventsDebounced   prometheus.Counter
	JobsEnqueued      prometheus.Counter
}

// New registers all instruments with the given Prometheus registerer.
// Using a custom registry (instead of prometheus.DefaultRegisterer) keeps
// tests isolated and avoids global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		MailsDelivered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mails_delivered_total",
			Help: "Total number of notification emails accepted by the mail transport.",
		}),
		MailFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mail_failures_total",
			Help: "Total number of per-recipient delivery failures (absorbed, never retried).",
		}),
		RecipientsSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recipients_skipped_total",
			Help: "Recipients skipped during dispatch, by reason.",
		}, []string{"reason"}),
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "notify_jobs_processed_total",
			Help: "Processed dispatch jobs by terminal signal.",
		}, []string{"outcome"}),
		DispatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "dispatch_duration_seconds",
			Help:    "Full dispatch-run latency from claim to terminal signal.",
			Buckets: prometheus.DefBuckets,
		}),
		EventsDebounced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "update_events_debounced_total",
			Help: "Update events absorbed by an existing pending entry.",
		}),
		JobsEnqueued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "notify_jobs_enqueued_total",
			Help: "Jobs placed on the work queue.",
		}),
	}

	reg.MustRegister(
		m.MailsDelivered,
		m.MailFailures,
		m.RecipientsSkipped,
		m.JobsProcessed,
		m.DispatchDuration,
		m.EventsDebounced,
		m.JobsEnqueued,
	)

	return m
}

// EngineHooks returns the callbacks expected by notify.Hooks. Centralises
// the prometheus observation calls so the engine stays import-free.
func (m *Metrics) EngineHooks() (onDelivered, onFailed func(), onSkipped func(reason string)) {
	onDelivered = func() { m.MailsDelivered.Inc() }
	onFailed = func() { m.MailFailures.Inc() }
	onSkipped = func(reason string) { m.RecipientsSkipped.WithLabelValues(reason).Inc() }
	return
}

// ConsumerHook returns the per-job outcome callback for the queue consumer.
func (m *Metrics) ConsumerHook() func(outcome domain.Outcome, elapsed time.Duration) {
	return func(outcome domain.Outcome, elapsed time.Duration) {
		m.JobsProcessed.WithLabelValues(string(outcome)).Inc()
		m.DispatchDuration.Observe(elapsed.Seconds())
	}
}
