package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/willbeason/fractal-canopy/pkg/params"
)

// Collector records render passes and rejected parameters as Prometheus
// metrics.
type Collector struct {
	passes   *prometheus.CounterVec
	duration prometheus.Histogram
	segments prometheus.Gauge
	rejected *prometheus.CounterVec
}

var _ params.Observer = (*Collector)(nil)

// NewCollector creates the canopy metrics and registers them with reg.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		passes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canopy_render_passes_total",
				Help: "Total number of full regenerate-and-render passes",
			},
			[]string{"result"},
		),
		duration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "canopy_render_duration_seconds",
				Help:    "Duration of render passes",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
		),
		segments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "canopy_segments",
				Help: "Number of segments drawn by the most recent pass",
			},
		),
		rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "canopy_parameter_rejections_total",
				Help: "Total number of rejected parameter changes",
			},
			[]string{"parameter"},
		),
	}

	for _, col := range []prometheus.Collector{c.passes, c.duration, c.segments, c.rejected} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Collector) PassCompleted(segments int, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.passes.WithLabelValues(result).Inc()
	c.duration.Observe(elapsed.Seconds())
	c.segments.Set(float64(segments))
}

func (c *Collector) ParameterRejected(name string) {
	c.rejected.WithLabelValues(name).Inc()
}
