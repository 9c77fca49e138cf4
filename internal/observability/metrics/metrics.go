package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics exposes the counters the billing engine emits.
type Metrics struct {
	billsGenerated   *prometheus.CounterVec
	paymentsRecorded *prometheus.CounterVec
	readingsIngested *prometheus.CounterVec
}

func New() *Metrics {
	return &Metrics{
		billsGenerated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "motel_bills_generated_total",
			Help: "Bill generation attempts by outcome.",
		}, []string{"outcome"}),
		paymentsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "motel_payments_recorded_total",
			Help: "Payment recording attempts by outcome.",
		}, []string{"outcome"}),
		readingsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "motel_readings_ingested_total",
			Help: "Meter readings accepted by utility.",
		}, []string{"utility"}),
	}
}

const (
	OutcomeCreated  = "created"
	OutcomeExisting = "existing"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

func (m *Metrics) BillGenerated(outcome string) {
	if m == nil {
		return
	}
	m.billsGenerated.WithLabelValues(outcome).Inc()
}

func (m *Metrics) PaymentRecorded(outcome string) {
	if m == nil {
		return
	}
	m.paymentsRecorded.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ReadingIngested(utility string) {
	if m == nil {
		return
	}
	m.readingsIngested.WithLabelValues(utility).Inc()
}
