// Package metrics exposes ledger counters to Prometheus. A nil *Metrics records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "bank_ledger"

type Metrics struct {
	transactionsExecuted *prometheus.CounterVec
	transactionsRejected *prometheus.CounterVec
	feesApplied          prometheus.Counter
	feesSkipped          prometheus.Counter
	interestApplied      *prometheus.CounterVec
	notifications        *prometheus.CounterVec
	sweepDuration        *prometheus.HistogramVec
	sweepAffected        *prometheus.CounterVec
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		transactionsExecuted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_executed_total",
			Help:      "Transactions committed to the ledger, by type.",
		}, []string{"type"}),
		transactionsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transactions_rejected_total",
			Help:      "Transactions rejected before commit, by type and reason.",
		}, []string{"type", "reason"}),
		feesApplied: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_applied_total",
			Help:      "Transaction fees charged after the free allowance.",
		}),
		feesSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fees_skipped_total",
			Help:      "Transaction fees that were due but not affordable.",
		}),
		interestApplied: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interest_applied_total",
			Help:      "Interest postings, by kind.",
		}, []string{"kind"}),
		notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Notifications raised, by kind and delivery result.",
		}, []string{"kind", "result"}),
		sweepDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sweep_duration_seconds",
			Help:      "Batch sweep wall time.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job"}),
		sweepAffected: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sweep_affected_accounts_total",
			Help:      "Accounts changed or alerted by a sweep, by job.",
		}, []string{"job"}),
	}
}

func (m *Metrics) TransactionExecuted(txnType string) {
	if m == nil {
		return
	}
	m.transactionsExecuted.WithLabelValues(txnType).Inc()
}

func (m *Metrics) TransactionRejected(txnType string, reason string) {
	if m == nil {
		return
	}
	m.transactionsRejected.WithLabelValues(txnType, reason).Inc()
}

func (m *Metrics) FeeApplied() {
	if m == nil {
		return
	}
	m.feesApplied.Inc()
}

func (m *Metrics) FeeSkipped() {
	if m == nil {
		return
	}
	m.feesSkipped.Inc()
}

func (m *Metrics) InterestApplied(kind string) {
	if m == nil {
		return
	}
	m.interestApplied.WithLabelValues(kind).Inc()
}

func (m *Metrics) Notification(kind string, delivered bool) {
	if m == nil {
		return
	}
	result := "delivered"
	if !delivered {
		result = "failed"
	}
	m.notifications.WithLabelValues(kind, result).Inc()
}

func (m *Metrics) SweepCompleted(job string, elapsed time.Duration, affected int) {
	if m == nil {
		return
	}
	m.sweepDuration.WithLabelValues(job).Observe(elapsed.Seconds())
	m.sweepAffected.WithLabelValues(job).Add(float64(affected))
}
