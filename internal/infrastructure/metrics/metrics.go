package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the auto-responder
type Metrics struct {
	// Join synchronization
	JoinOutcomes   *prometheus.CounterVec
	JoinSyncRuns   prometheus.Counter
	FloodWaitTotal prometheus.Counter

	// Reply pipeline
	EventsReceived *prometheus.CounterVec
	RepliesSent    *prometheus.CounterVec
	RepliesSkipped *prometheus.CounterVec
	SendErrors     *prometheus.CounterVec

	// Completion service
	CompletionRequests prometheus.Counter
	CompletionErrors   prometheus.Counter
	CompletionFallback prometheus.Counter
	CompletionDuration prometheus.Histogram

	// Accounts
	ActiveAccounts       prometheus.Gauge
	TotalAccounts        prometheus.Gauge
	AccountReconnections *prometheus.CounterVec

	// Kafka
	KafkaMessagesProduced prometheus.Counter
	KafkaProduceErrors    prometheus.Counter
}

var (
	defaultMetrics *Metrics
	once           sync.Once
)

// GetDefaultMetrics returns the process wide metrics instance
func GetDefaultMetrics() *Metrics {
	once.Do(func() {
		defaultMetrics = NewMetrics(prometheus.DefaultRegisterer)
	})
	return defaultMetrics
}

// NewMetrics creates all collectors and registers them with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		JoinOutcomes: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgexp_join_outcomes_total",
				Help: "Channel join attempts by outcome",
			},
			[]string{"outcome"},
		),
		JoinSyncRuns: f.NewCounter(prometheus.CounterOpts{
			Name: "tgexp_join_sync_runs_total",
			Help: "Completed channel synchronization runs",
		}),
		FloodWaitTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "tgexp_flood_wait_seconds_total",
			Help: "Seconds spent waiting on flood wait during joins",
		}),
		EventsReceived: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgexp_events_received_total",
				Help: "Inbound events by classification",
			},
			[]string{"kind"},
		),
		RepliesSent: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgexp_replies_sent_total",
				Help: "Replies sent by kind",
			},
			[]string{"kind"},
		),
		RepliesSkipped: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgexp_replies_skipped_total",
				Help: "Events that produced no reply, by reason",
			},
			[]string{"reason"},
		),
		SendErrors: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgexp_send_errors_total",
				Help: "Failed sends by error class",
			},
			[]string{"class"},
		),
		CompletionRequests: f.NewCounter(prometheus.CounterOpts{
			Name: "tgexp_completion_requests_total",
			Help: "Completion service calls",
		}),
		CompletionErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "tgexp_completion_errors_total",
			Help: "Failed completion service calls",
		}),
		CompletionFallback: f.NewCounter(prometheus.CounterOpts{
			Name: "tgexp_completion_fallback_total",
			Help: "Completions replaced by a fallback phrase",
		}),
		CompletionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tgexp_completion_duration_seconds",
			Help:    "Completion service latency",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveAccounts: f.NewGauge(prometheus.GaugeOpts{
			Name: "tgexp_active_accounts",
			Help: "Connected accounts",
		}),
		TotalAccounts: f.NewGauge(prometheus.GaugeOpts{
			Name: "tgexp_total_accounts",
			Help: "Registered accounts",
		}),
		AccountReconnections: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "tgexp_account_reconnections_total",
				Help: "Reconnect attempts by result",
			},
			[]string{"result"},
		),
		KafkaMessagesProduced: f.NewCounter(prometheus.CounterOpts{
			Name: "tgexp_kafka_messages_produced_total",
			Help: "Activity events delivered to Kafka",
		}),
		KafkaProduceErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "tgexp_kafka_produce_errors_total",
			Help: "Activity events Kafka failed to accept",
		}),
	}
}

// RecordJoinOutcome counts one join attempt
func (m *Metrics) RecordJoinOutcome(outcome string) {
	m.JoinOutcomes.WithLabelValues(outcome).Inc()
}

// RecordFloodWait adds waited seconds
func (m *Metrics) RecordFloodWait(seconds int) {
	m.FloodWaitTotal.Add(float64(seconds))
}

// RecordEvent counts an inbound event
func (m *Metrics) RecordEvent(kind string) {
	m.EventsReceived.WithLabelValues(kind).Inc()
}

// RecordReply counts a sent reply
func (m *Metrics) RecordReply(kind string) {
	m.RepliesSent.WithLabelValues(kind).Inc()
}

// RecordSkip counts an event dropped without reply
func (m *Metrics) RecordSkip(reason string) {
	m.RepliesSkipped.WithLabelValues(reason).Inc()
}

// RecordSendError counts a failed send
func (m *Metrics) RecordSendError(class string) {
	m.SendErrors.WithLabelValues(class).Inc()
}

// RecordCompletion records a completion call
func (m *Metrics) RecordCompletion(seconds float64, err error) {
	m.CompletionRequests.Inc()
	m.CompletionDuration.Observe(seconds)
	if err != nil {
		m.CompletionErrors.Inc()
	}
}

// UpdateAccounts sets account gauges
func (m *Metrics) UpdateAccounts(active, total int) {
	m.ActiveAccounts.Set(float64(active))
	m.TotalAccounts.Set(float64(total))
}

// RecordReconnect counts a reconnect attempt
func (m *Metrics) RecordReconnect(ok bool) {
	result := "success"
	if !ok {
		result = "failure"
	}
	m.AccountReconnections.WithLabelValues(result).Inc()
}
