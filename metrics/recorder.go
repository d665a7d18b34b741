// Package metrics exports decision pipeline counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/safedep/authgate/core/response"
	"github.com/safedep/authgate/gate"
)

const namespace = "authgate"

// Recorder is a gate.Observer that updates Prometheus collectors. All
// collectors are safe for concurrent use.
type Recorder struct {
	decisions   *prometheus.CounterVec
	outcomes    *prometheus.CounterVec
	malformed   prometheus.Counter
	logicFaults prometheus.Counter
	late        prometheus.Counter
	panics      prometheus.Counter
	latency     prometheus.Histogram
}

// NewRecorder creates a Recorder and registers its collectors with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decisions_total",
			Help:      "Decisions made, by decision.",
		}, []string{"decision"}),
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_outcomes_total",
			Help:      "Response acknowledgments, by outcome and class.",
		}, []string{"outcome", "class"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "malformed_events_total",
			Help:      "Events denied because they could not be evaluated.",
		}),
		logicFaults: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "logic_faults_total",
			Help:      "Acknowledgments that indicate a bug in this program.",
		}),
		late: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "late_responses_total",
			Help:      "Responses submitted after the event deadline.",
		}),
		panics: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recovered_panics_total",
			Help:      "Panics recovered while handling an event.",
		}),
		latency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "decision_latency_seconds",
			Help:      "Time from delivery to response submission.",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		}),
	}

	collectors := []prometheus.Collector{
		r.decisions, r.outcomes, r.malformed, r.logicFaults, r.late, r.panics, r.latency,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Observe records one handled event.
func (r *Recorder) Observe(report gate.Report) {
	r.decisions.WithLabelValues(report.Decision.String()).Inc()

	class := report.Outcome.Class()
	r.outcomes.WithLabelValues(report.Outcome.String(), class.String()).Inc()

	if class == response.ClassLogicFault {
		r.logicFaults.Inc()
	}
	if report.Malformed != nil {
		r.malformed.Inc()
	}
	if report.Late {
		r.late.Inc()
	}
	if report.Panic != "" {
		r.panics.Inc()
	}

	r.latency.Observe(report.Latency.Seconds())
}

var _ gate.Observer = (*Recorder)(nil)
