package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/themobileprof/mamacare-be/internal/circuitbreaker"
)

// Metrics exposes counters and histograms for the triage engine. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	webhookTotal   *prometheus.CounterVec
	webhookLatency *prometheus.HistogramVec
	intentTotal    *prometheus.CounterVec
	adviceTotal    *prometheus.CounterVec
	adviceLatency  *prometheus.HistogramVec
	escalation     *prometheus.CounterVec
	jobUnits       *prometheus.CounterVec
	breakerState   *prometheus.GaugeVec
}

// New registers the engine metrics on reg, or on the default registerer
// when reg is nil
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		webhookTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Subsystem: "webhook",
			Name:      "requests_total",
			Help:      "Total inbound Twilio webhooks",
		}, []string{"kind", "outcome"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mamacare",
			Subsystem: "webhook",
			Name:      "latency_seconds",
			Help:      "Latency of webhook processing",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		intentTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Subsystem: "triage",
			Name:      "intents_total",
			Help:      "Classified WhatsApp intents",
		}, []string{"intent"}),
		adviceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Subsystem: "advice",
			Name:      "replies_total",
			Help:      "Advice replies by channel and whether the fallback table was used",
		}, []string{"channel", "fallback", "reason"}),
		adviceLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mamacare",
			Subsystem: "advice",
			Name:      "latency_seconds",
			Help:      "Latency of advice generation including fallback",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 12, 20},
		}, []string{"channel"}),
		escalation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Subsystem: "escalation",
			Name:      "channel_total",
			Help:      "Escalation channel attempts by outcome",
		}, []string{"channel", "outcome"}),
		jobUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mamacare",
			Subsystem: "jobs",
			Name:      "units_total",
			Help:      "Per-recipient results of batch jobs",
		}, []string{"job", "outcome"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "mamacare",
			Subsystem: "advice",
			Name:      "circuit_state",
			Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
		}, []string{"breaker"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(
		m.webhookTotal, m.webhookLatency, m.intentTotal, m.adviceTotal,
		m.adviceLatency, m.escalation, m.jobUnits, m.breakerState,
	)
	return m
}

func (m *Metrics) ObserveWebhook(kind, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.webhookTotal.WithLabelValues(kind, outcome).Inc()
	m.webhookLatency.WithLabelValues(kind).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveIntent(intent string) {
	if m == nil {
		return
	}
	m.intentTotal.WithLabelValues(intent).Inc()
}

// ObserveAdvice records one advice reply. reason is empty for a
// completion and names the failure otherwise.
func (m *Metrics) ObserveAdvice(channel string, fallback bool, reason string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.adviceTotal.WithLabelValues(channel, strconv.FormatBool(fallback), reason).Inc()
	m.adviceLatency.WithLabelValues(channel).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveEscalation(channel, outcome string) {
	if m == nil {
		return
	}
	m.escalation.WithLabelValues(channel, outcome).Inc()
}

func (m *Metrics) ObserveJobUnit(job, outcome string) {
	if m == nil {
		return
	}
	m.jobUnits.WithLabelValues(job, outcome).Inc()
}

// BreakerStateChanged matches circuitbreaker.StateChangeFunc
func (m *Metrics) BreakerStateChanged(name string, _, to circuitbreaker.State) {
	if m == nil {
		return
	}
	m.breakerState.WithLabelValues(name).Set(float64(to))
}
