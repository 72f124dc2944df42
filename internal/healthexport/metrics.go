package healthexport

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts what the reader saw. A nil *Metrics records nothing.
type Metrics struct {
	scanned prometheus.Counter
	matched prometheus.Counter
	skipped *prometheus.CounterVec
	bytes   prometheus.Counter
}

// NewMetrics registers the reader counters with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		scanned: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stepwrap",
			Subsystem: "export",
			Name:      "records_scanned_total",
			Help:      "Record elements seen in the export, any type.",
		}),
		matched: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stepwrap",
			Subsystem: "export",
			Name:      "records_matched_total",
			Help:      "Step records parsed and returned.",
		}),
		skipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stepwrap",
			Subsystem: "export",
			Name:      "records_skipped_total",
			Help:      "Step records dropped, by reason.",
		}, []string{"reason"}),
		bytes: f.NewCounter(prometheus.CounterOpts{
			Namespace: "stepwrap",
			Subsystem: "export",
			Name:      "bytes_read_total",
			Help:      "Uncompressed XML bytes consumed.",
		}),
	}
}

func (m *Metrics) recordScanned() {
	if m != nil {
		m.scanned.Inc()
	}
}

func (m *Metrics) recordMatched() {
	if m != nil {
		m.matched.Inc()
	}
}

func (m *Metrics) recordSkipped(reason string) {
	if m != nil {
		m.skipped.WithLabelValues(reason).Inc()
	}
}

func (m *Metrics) addBytes(n int) {
	if m != nil && n > 0 {
		m.bytes.Add(float64(n))
	}
}
