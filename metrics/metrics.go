package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reoring/argcheck"
)

// Metrics provides observability for argument contracts and data
// verification. It implements argcheck.Observer.
type Metrics struct {
	ChecksEvaluated   *prometheus.CounterVec
	VerifyFailures    *prometheus.CounterVec
	VerifySuccesses   prometheus.Counter
	GateDisabledCalls prometheus.Counter
}

// New creates a Metrics instance registered with reg. Registering twice on
// the same registerer panics, so pass prometheus.DefaultRegisterer at most
// once per process. A nil reg registers on a fresh private registry, which
// keeps the counters usable without exposing them.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	f := promauto.With(reg)
	return &Metrics{
		ChecksEvaluated: f.NewCounterVec(prometheus.CounterOpts{
			Name: "argcheck_checks_total",
			Help: "Argument check declarations evaluated, by check kind and outcome",
		}, []string{"kind", "outcome"}),
		VerifyFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "argcheck_verify_failures_total",
			Help: "Data verifications rejected, by issue code",
		}, []string{"code"}),
		VerifySuccesses: f.NewCounter(prometheus.CounterOpts{
			Name: "argcheck_verify_success_total",
			Help: "Data verifications that produced a container",
		}),
		GateDisabledCalls: f.NewCounter(prometheus.CounterOpts{
			Name: "argcheck_gate_disabled_total",
			Help: "Checked calls that ran with enforcement disabled",
		}),
	}
}

// ObserveCheck implements argcheck.Observer.
func (m *Metrics) ObserveCheck(kind argcheck.Kind, outcome argcheck.Outcome) {
	m.ChecksEvaluated.WithLabelValues(kind.String(), string(outcome)).Inc()
}

// ObserveGateDisabled records a call that bypassed enforcement.
func (m *Metrics) ObserveGateDisabled() {
	m.GateDisabledCalls.Inc()
}

// ObserveVerify records the result of a verification. Pass the error
// returned by ndarray.Verify (nil on success).
func (m *Metrics) ObserveVerify(err error) {
	if err == nil {
		m.VerifySuccesses.Inc()
		return
	}
	code := "unknown"
	if iss, ok := argcheck.AsIssues(err); ok && len(iss) > 0 {
		code = iss[0].Code
	}
	m.VerifyFailures.WithLabelValues(code).Inc()
}
