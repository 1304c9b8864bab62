package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reviewMutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veganbite",
			Name:      "review_mutations_total",
			Help:      "Review writes by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	moderationActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veganbite",
			Name:      "moderation_actions_total",
			Help:      "Customer moderation actions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	loginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "veganbite",
			Name:      "logins_total",
			Help:      "OAuth sign-ins by principal kind and outcome",
		},
		[]string{"kind", "outcome"},
	)
)

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
