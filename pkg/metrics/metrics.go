// Package metrics exposes Prometheus collectors for the classification and
// telemetry loops.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the metrics of one process. A nil *Collector is valid and
// records nothing.
type Collector struct {
	gatherer prometheus.Gatherer

	FramesScored      prometheus.Counter
	FramesRelevant    prometheus.Counter
	Score             prometheus.Histogram
	SegmentDuration   prometheus.Histogram
	TelemetryFailures *prometheus.CounterVec
	TelemetryValues   *prometheus.GaugeVec
	DownlinkQueue     prometheus.Gauge
}

// New registers the collectors against reg, reusing collectors that are
// already registered under the same name.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	c := &Collector{gatherer: gatherer}
	var err error

	if c.FramesScored, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astropi_frames_scored_total",
		Help: "Frames segmented and scored.",
	})); err != nil {
		return nil, err
	}

	if c.FramesRelevant, err = register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "astropi_frames_relevant_total",
		Help: "Frames that passed the relevance gate.",
	})); err != nil {
		return nil, err
	}

	if c.Score, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "astropi_relevance_score",
		Help:    "Relevance score of scored frames.",
		Buckets: []float64{0, 1, 2.5, 5, 10, 15, 25, 50, 100, 250, 500, 1000},
	})); err != nil {
		return nil, err
	}

	if c.SegmentDuration, err = register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "astropi_segmentation_duration_seconds",
		Help:    "Time spent segmenting one frame.",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	})); err != nil {
		return nil, err
	}

	if c.TelemetryFailures, err = register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astropi_telemetry_read_failures_total",
		Help: "Sensor reads that failed and were replaced by a placeholder.",
	}, []string{"field"})); err != nil {
		return nil, err
	}

	if c.TelemetryValues, err = register(reg, prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "astropi_telemetry_value",
		Help: "Last successful sensor reading per field.",
	}, []string{"field"})); err != nil {
		return nil, err
	}

	if c.DownlinkQueue, err = register(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astropi_downlink_queue_bytes",
		Help: "Bytes of stored frames waiting for the downlink.",
	})); err != nil {
		return nil, err
	}

	return c, nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, col T) (T, error) {
	if err := reg.Register(col); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			var zero T
			return zero, fmt.Errorf("collector %T already registered with incompatible type", col)
		}
		var zero T
		return zero, err
	}
	return col, nil
}

// ObserveFrame records one scored frame.
func (c *Collector) ObserveFrame(score float64, relevant bool, took time.Duration) {
	if c == nil {
		return
	}
	c.FramesScored.Inc()
	if relevant {
		c.FramesRelevant.Inc()
	}
	c.Score.Observe(score)
	c.SegmentDuration.Observe(took.Seconds())
}

// ObserveReading records a sensor value, or a failure when ok is false.
func (c *Collector) ObserveReading(field string, value float64, ok bool) {
	if c == nil {
		return
	}
	if !ok {
		c.TelemetryFailures.WithLabelValues(field).Inc()
		return
	}
	c.TelemetryValues.WithLabelValues(field).Set(value)
}

func (c *Collector) ObserveQueue(bytes uint64) {
	if c == nil {
		return
	}
	c.DownlinkQueue.Set(float64(bytes))
}

// Handler serves the registered metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
