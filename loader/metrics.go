package loader

import (
	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "tagfile"
	subsystem = "loader"
)

// Results of a load, used as the value of the result label.
const (
	resultHit    = "hit"
	resultMiss   = "miss"
	resultShared = "shared"
	resultError  = "error"
)

type metrics struct {
	loads     *prometheus.CounterVec
	bytesRead prometheus.Counter
	warnings  *prometheus.CounterVec
}

func newMetrics() *metrics {
	return &metrics{
		loads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "loads_total",
				Help:      "The total number of loaded tag files. Broken down by whether the file was cached, shared with identical content, parsed, or failed.",
			},
			[]string{"result"},
		),
		bytesRead: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "read_bytes_total",
				Help:      "The total number of bytes read from tag files.",
			},
		),
		warnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "warnings_total",
				Help:      "The total number of decode warnings. Broken down by group.",
			},
			[]string{"group"},
		),
	}
}

func (m *metrics) register(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.loads, m.bytesRead, m.warnings} {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}
