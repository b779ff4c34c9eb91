package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestMetrics_CountsByLabel(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.TransactionExecuted("DEPOSIT")
	m.TransactionExecuted("DEPOSIT")
	m.TransactionRejected("WITHDRAWAL", "insufficient_funds")
	m.FeeApplied()
	m.Notification("LOW_BALANCE", false)
	m.SweepCompleted("low-balance", 10*time.Millisecond, 3)

	cases := []struct {
		name   string
		labels map[string]string
		want   float64
	}{
		{"bank_ledger_transactions_executed_total", map[string]string{"type": "DEPOSIT"}, 2},
		{"bank_ledger_transactions_rejected_total", map[string]string{"type": "WITHDRAWAL", "reason": "insufficient_funds"}, 1},
		{"bank_ledger_fees_applied_total", nil, 1},
		{"bank_ledger_notifications_total", map[string]string{"kind": "LOW_BALANCE", "result": "failed"}, 1},
		{"bank_ledger_sweep_affected_accounts_total", map[string]string{"job": "low-balance"}, 3},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := counterValue(t, reg, tc.name, tc.labels); got != tc.want {
				t.Fatalf("%s = %v, want %v", tc.name, got, tc.want)
			}
		})
	}
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics

	m.TransactionExecuted("DEPOSIT")
	m.TransactionRejected("DEPOSIT", "invalid")
	m.FeeApplied()
	m.FeeSkipped()
	m.InterestApplied("credit")
	m.Notification("LOW_BALANCE", true)
	m.SweepCompleted("inactivity", time.Second, 1)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error: %v", err)
	}
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
		for _, metric := range family.GetMetric() {
			matched := 0
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] == pair.GetValue() {
					matched++
				}
			}
			if matched == len(labels) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}
