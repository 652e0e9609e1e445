package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Recorder receives ledger and payment events for instrumentation.
type Recorder interface {
	RecordLedgerOperation(op string, err error)
	RecordPayment(stage string, success bool)
	RecordBreakerState(name, state string)
}

// NoOp discards every observation.
type NoOp struct{}

func (NoOp) RecordLedgerOperation(string, error) {}
func (NoOp) RecordPayment(string, bool)          {}
func (NoOp) RecordBreakerState(string, string)   {}

// Prometheus implements Recorder with counters and a breaker state gauge.
type Prometheus struct {
	ledgerOps    *prometheus.CounterVec
	payments     *prometheus.CounterVec
	breakerState *prometheus.GaugeVec
}

// NewPrometheus builds the collectors and registers them with reg.
func NewPrometheus(namespace string, reg prometheus.Registerer) (*Prometheus, error) {
	p := &Prometheus{
		ledgerOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ledger_operations_total",
				Help:      "Ledger operations by kind and result",
			},
			[]string{"operation", "result"},
		),
		payments: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "payments_total",
				Help:      "Payment pipeline runs by terminal stage and result",
			},
			[]string{"stage", "result"},
		),
		breakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "capability_breaker_state",
				Help:      "Circuit breaker state per capability (0=closed, 1=half-open, 2=open)",
			},
			[]string{"capability"},
		),
	}

	for _, c := range []prometheus.Collector{p.ledgerOps, p.payments, p.breakerState} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Prometheus) RecordLedgerOperation(op string, err error) {
	p.ledgerOps.WithLabelValues(op, resultLabel(err == nil)).Inc()
}

func (p *Prometheus) RecordPayment(stage string, success bool) {
	p.payments.WithLabelValues(stage, resultLabel(success)).Inc()
}

func (p *Prometheus) RecordBreakerState(name, state string) {
	var v float64
	switch state {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	p.breakerState.WithLabelValues(name).Set(v)
}

func resultLabel(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
