package metrics

import "github.com/prometheus/client_golang/prometheus"

// SweepMetrics tracks outcomes of subscription lifecycle sweeps.
type SweepMetrics struct {
	checked     prometheus.Counter
	transitions *prometheus.CounterVec
	errors      prometheus.Counter
}

// NewSweepMetrics registers sweep counters on the provided registerer.
func NewSweepMetrics(reg prometheus.Registerer) *SweepMetrics {
	if reg == nil {
		return &SweepMetrics{}
	}
	checked := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscription_sweep_checked_total",
		Help: "Tenants evaluated by the subscription sweep.",
	})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "subscription_sweep_transitions_total",
		Help: "Status transitions applied by the subscription sweep.",
	}, []string{"target"})
	errs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "subscription_sweep_errors_total",
		Help: "Per-tenant errors recorded during subscription sweeps.",
	})
	reg.MustRegister(checked, transitions, errs)
	return &SweepMetrics{
		checked:     checked,
		transitions: transitions,
		errors:      errs,
	}
}

// AddChecked records the number of tenants evaluated in one sweep.
func (s *SweepMetrics) AddChecked(n int) {
	if s == nil || s.checked == nil {
		return
	}
	s.checked.Add(float64(n))
}

// IncTransition records one applied transition to the given target status.
func (s *SweepMetrics) IncTransition(target string) {
	if s == nil || s.transitions == nil {
		return
	}
	s.transitions.WithLabelValues(normalizeLabel(target)).Inc()
}

// AddErrors records per-tenant failures from one sweep.
func (s *SweepMetrics) AddErrors(n int) {
	if s == nil || s.errors == nil || n <= 0 {
		return
	}
	s.errors.Add(float64(n))
}
