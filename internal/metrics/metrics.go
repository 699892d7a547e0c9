package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Registry *prometheus.Registry

	ChatRequests   *prometheus.CounterVec
	SourceFailures *prometheus.CounterVec
	TurnDuration   prometheus.Histogram
}

// Outcome labels for ChatRequests.
const (
	OutcomeAnswered = "answered"
	OutcomeRejected = "rejected"
	OutcomeApology  = "apology"
)

// New builds and registers all collectors on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		ChatRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopchat_chat_requests_total",
			Help: "Chat requests processed, labelled by outcome.",
		}, []string{"outcome"}),
		SourceFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "shopchat_knowledge_source_failures_total",
			Help: "Knowledge source fan-out failures, labelled by source.",
		}, []string{"source"}),
		TurnDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "shopchat_turn_duration_seconds",
			Help:    "End-to-end processing time for one chat turn.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.ChatRequests, m.SourceFailures, m.TurnDuration)
	return m
}
