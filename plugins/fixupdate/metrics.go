package fixupdate

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes counted by Metrics. The first three mean a Date field was added and
// name where its time came from.
const (
	OutcomeArrival       = "arrival"        // the recorded arrival time
	OutcomeMissing       = "missing"        // the clock, no arrival time recorded
	OutcomeInvalid       = "invalid"        // the clock, arrival time unusable
	OutcomePresent       = "present"        // message already had a Date
	OutcomeNoTransaction = "no_transaction" // nothing to fix
)

// Metrics counts what EnsureDate did with each message.
type Metrics struct {
	outcomes *prometheus.CounterVec
}

// NewMetrics creates the counters and registers them with the given
// registerer.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "mailfix",
				Subsystem: "fixup_date",
				Name:      "total",
				Help:      "Messages seen by the fixup_date plugin, by outcome.",
			},
			[]string{"outcome"},
		),
	}

	if err := reg.Register(m.outcomes); err != nil {
		return nil, err
	}

	return m, nil
}

// observe counts one outcome. A nil Metrics counts nothing.
func (m *Metrics) observe(outcome string) {
	if m == nil {
		return
	}
	m.outcomes.WithLabelValues(outcome).Inc()
}

// Outcomes returns the underlying counter vector.
func (m *Metrics) Outcomes() *prometheus.CounterVec {
	return m.outcomes
}
