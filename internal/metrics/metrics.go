// Package metrics holds the domain counters exported on /api/metrics next to
// the HTTP metrics collected by echoprometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "teamup"

var (
	teamsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "teams",
			Name:      "created_total",
			Help:      "Teams created, by team type.",
		},
		[]string{"team_type"},
	)

	teamStatusChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "teams",
			Name:      "status_changes_total",
			Help:      "Manual team status changes, by new status.",
		},
		[]string{"status"},
	)

	applicationsSubmitted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "submitted_total",
			Help:      "Applications accepted for review.",
		},
	)

	applicationsRefused = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "refused_total",
			Help:      "Apply attempts refused before insert, by reason.",
		},
		[]string{"reason"},
	)

	applicationDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "applications",
			Name:      "decisions_total",
			Help:      "Creator decisions on applications, by resulting status.",
		},
		[]string{"status"},
	)
)

func init() {
	prometheus.MustRegister(
		teamsCreated,
		teamStatusChanges,
		applicationsSubmitted,
		applicationsRefused,
		applicationDecisions,
	)
}

func RecordTeamCreated(teamType string) {
	if teamType == "" {
		teamType = "unknown"
	}
	teamsCreated.WithLabelValues(teamType).Inc()
}

func RecordTeamStatusChange(status string) {
	teamStatusChanges.WithLabelValues(status).Inc()
}

func RecordApplicationSubmitted() {
	applicationsSubmitted.Inc()
}

// RecordApplicationRefused counts an apply attempt rejected with reason, one
// of "validation", "not_found", "self", "duplicate".
func RecordApplicationRefused(reason string) {
	applicationsRefused.WithLabelValues(reason).Inc()
}

func RecordApplicationDecision(status string) {
	applicationDecisions.WithLabelValues(status).Inc()
}
