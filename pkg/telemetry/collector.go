package telemetry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/project-spencer/astropi/pkg/metrics"
)

// Sample is one pass over all sources.
type Sample struct {
	Time   time.Time
	Record Record
	// Extras holds readings that have no CSV column, such as power.
	Extras map[Field]Value
	// Failed lists the fields that could not be read, sorted.
	Failed []Field
}

// Get returns the reading of f, from the record or the extras.
func (s Sample) Get(f Field) Value {
	if v, ok := s.Extras[f]; ok {
		return v
	}
	return s.Record.Get(f)
}

// Values returns every valid reading of the sample, keyed by field.
func (s Sample) Values() map[Field]float64 {
	out := map[Field]float64{}
	for f, v := range s.Record.fields() {
		if v.Valid() {
			out[f] = float64(*v)
		}
	}
	for f, v := range s.Extras {
		if v.Valid() {
			out[f] = float64(v)
		}
	}
	return out
}

// Collector reads every source and turns failures into placeholders. A field
// that keeps failing is logged only when it starts failing and when it
// recovers.
type Collector struct {
	sources []Source
	logger  golog.Logger
	metrics *metrics.Collector

	mu      sync.Mutex
	failing map[Field]bool
}

func NewCollector(logger golog.Logger, m *metrics.Collector, sources ...Source) *Collector {
	return &Collector{
		sources: sources,
		logger:  logger,
		metrics: m,
		failing: map[Field]bool{},
	}
}

// Sample reads all sources. The returned sample is always usable, the error
// combines the failed reads.
func (c *Collector) Sample(ctx context.Context, now time.Time) (Sample, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Sample{
		Time:   now,
		Record: NewRecord(now),
		Extras: map[Field]Value{},
	}
	fields := s.Record.fields()

	var errs error
	for _, src := range c.sources {
		readings := src.Read(ctx)

		keys := make([]Field, 0, len(readings))
		for f := range readings {
			keys = append(keys, f)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

		for _, f := range keys {
			r := readings[f]
			if r.Err != nil {
				errs = multierr.Append(errs, errors.Wrapf(r.Err, "%s: could not read %s", src.Name(), f))
				s.Failed = append(s.Failed, f)
				c.metrics.ObserveReading(string(f), 0, false)
				if !c.failing[f] {
					c.failing[f] = true
					c.logger.Warnw("sensor read failed", "source", src.Name(), "field", f, "error", r.Err)
				}
				continue
			}

			if c.failing[f] {
				delete(c.failing, f)
				c.logger.Infow("sensor read recovered", "source", src.Name(), "field", f)
			}
			c.metrics.ObserveReading(string(f), r.Value, true)

			if v, ok := fields[f]; ok {
				*v = Value(r.Value)
			} else {
				s.Extras[f] = Value(r.Value)
			}
		}
	}

	sort.Slice(s.Failed, func(i, j int) bool { return s.Failed[i] < s.Failed[j] })
	return s, errs
}

// Failing reports whether f failed on the last sample that read it.
func (c *Collector) Failing(f Field) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.failing[f]
}
