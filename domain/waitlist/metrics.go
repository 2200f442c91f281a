package waitlist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeCreated = "created"
	outcomeInvalid = "invalid"
	outcomeFailed  = "failed"
)

type submissionMetrics struct {
	submissions *prometheus.CounterVec
}

// newSubmissionMetrics registers on reg; a nil reg keeps the counter local.
func newSubmissionMetrics(reg prometheus.Registerer) *submissionMetrics {
	return &submissionMetrics{
		submissions: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "waitlist_submissions_total",
				Help: "Waitlist submissions by outcome.",
			},
			[]string{"outcome"},
		),
	}
}

func (m *submissionMetrics) observe(outcome string) {
	m.submissions.WithLabelValues(outcome).Inc()
}
