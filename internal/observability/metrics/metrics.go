package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes application-level instruments for the publish pipeline.
type Metrics struct {
	publishAttempts *prometheus.CounterVec
	quotaDenied     *prometheus.CounterVec
	pagesFallback   prometheus.Counter
	livenessChecks  *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		publishAttempts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "foliopress_publish_attempts_total",
			Help: "Publish attempts by outcome.",
		}, []string{"outcome"}),
		quotaDenied: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "foliopress_quota_denied_total",
			Help: "Quota denials by rule.",
		}, []string{"reason"}),
		pagesFallback: promauto.NewCounter(prometheus.CounterOpts{
			Name: "foliopress_pages_enable_fallback_total",
			Help: "Pages enablement calls recovered via the update fallback.",
		}),
		livenessChecks: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "foliopress_liveness_checks_total",
			Help: "Status-check probes by result.",
		}, []string{"result"}),
	}
}

// RecordPublish increments publish attempt counts.
func (m *Metrics) RecordPublish(outcome string) {
	if m == nil {
		return
	}
	m.publishAttempts.WithLabelValues(strings.TrimSpace(outcome)).Inc()
}

// RecordQuotaDenied increments quota denial counts.
func (m *Metrics) RecordQuotaDenied(reason string) {
	if m == nil {
		return
	}
	m.quotaDenied.WithLabelValues(strings.TrimSpace(reason)).Inc()
}

// RecordPagesFallback counts 409/422 recoveries on pages enablement.
func (m *Metrics) RecordPagesFallback() {
	if m == nil {
		return
	}
	m.pagesFallback.Inc()
}

// RecordLivenessCheck increments status probe counts.
func (m *Metrics) RecordLivenessCheck(result string) {
	if m == nil {
		return
	}
	m.livenessChecks.WithLabelValues(strings.TrimSpace(result)).Inc()
}
