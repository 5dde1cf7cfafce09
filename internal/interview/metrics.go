package interview

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts session lifecycle events.
type Metrics struct {
	sessionsStarted   prometheus.Counter
	sessionsCompleted *prometheus.CounterVec
	answersRecorded   prometheus.Counter
	reportsComputed   prometheus.Counter
	reportCacheHits   prometheus.Counter
}

// NewMetrics creates the counters and registers them with reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		sessionsStarted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "orbit",
			Name:      "sessions_started_total",
			Help:      "Interview sessions started.",
		}),
		sessionsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "orbit",
			Name:      "sessions_completed_total",
			Help:      "Interview sessions completed, by reason.",
		}, []string{"reason"}),
		answersRecorded: f.NewCounter(prometheus.CounterOpts{
			Namespace: "orbit",
			Name:      "answers_recorded_total",
			Help:      "Answers accepted and stored.",
		}),
		reportsComputed: f.NewCounter(prometheus.CounterOpts{
			Namespace: "orbit",
			Name:      "match_reports_computed_total",
			Help:      "Match reports computed from scratch.",
		}),
		reportCacheHits: f.NewCounter(prometheus.CounterOpts{
			Namespace: "orbit",
			Name:      "match_report_cache_hits_total",
			Help:      "Result requests served from the in-process report cache.",
		}),
	}
}
