package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// finish outcomes
const (
	OutcomeCompleted      = "completed"
	OutcomeForceCompleted = "force_completed"
	OutcomeTerminated     = "terminated"
)

// answer sources
const (
	SourceCandidate = "candidate"
	SourceTimeout   = "timeout"
)

var (
	sessionsStarted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_started_total",
		Help:      "Interview sessions created",
	})

	sessionsFinished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sessions_finished_total",
		Help:      "Interview sessions that reached a final state",
	}, []string{"outcome"})

	answers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "answers_total",
		Help:      "Answers recorded, by who submitted them",
	}, []string{"source"})

	violations = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "violations_total",
		Help:      "Proctoring violations counted",
	})

	oracleDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "oracle_duration_seconds",
		Help:      "Latency of question, evaluation and rating calls",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 180},
	}, []string{"operation", "result"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_sessions",
		Help:      "Sessions that have started and not yet finished",
	})
)

func SessionStarted() {
	sessionsStarted.Inc()
	activeSessions.Inc()
}

// SessionFinished must be called exactly once per started session
func SessionFinished(outcome string) {
	sessionsFinished.WithLabelValues(outcome).Inc()
	activeSessions.Dec()
}

func AnswerRecorded(source string) {
	answers.WithLabelValues(source).Inc()
}

func ViolationRecorded() {
	violations.Inc()
}

// ObserveOracle matches oracle.Observer
func ObserveOracle(operation, result string, elapsed time.Duration) {
	oracleDuration.WithLabelValues(operation, result).Observe(elapsed.Seconds())
}
