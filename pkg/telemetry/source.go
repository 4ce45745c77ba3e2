package telemetry

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

// Reading is the outcome of reading one field: a value, or the error that
// prevented it.
type Reading struct {
	Value float64
	Err   error
}

// Source reads a group of fields from one device. A failing field must not
// stop the others from being read.
type Source interface {
	Name() string
	Read(ctx context.Context) map[Field]Reading
}

// Getter reads a single quantity, typically a device method value.
type Getter func() (float64, error)

// Getters is a Source backed by one Getter per field.
type Getters struct {
	Device string
	Fields map[Field]Getter
}

func (p *Getters) Name() string {
	return p.Device
}

func (p *Getters) Read(ctx context.Context) map[Field]Reading {
	out := make(map[Field]Reading, len(p.Fields))
	for f, get := range p.Fields {
		if err := ctx.Err(); err != nil {
			out[f] = Reading{Err: err}
			continue
		}
		v, err := get()
		out[f] = Reading{Value: v, Err: err}
	}
	return out
}

// PositionProvider supplies the current ground position under the station.
type PositionProvider interface {
	Position(ctx context.Context) (lat, lon, alt float64, err error)
}

// Position reads latitude, longitude and altitude from a provider.
type Position struct {
	Provider PositionProvider
}

func (p *Position) Name() string {
	return "position"
}

func (p *Position) Read(ctx context.Context) map[Field]Reading {
	lat, lon, alt, err := p.Provider.Position(ctx)
	if err != nil {
		err = errors.Wrap(err, "could not get position")
		return map[Field]Reading{
			Latitude:  {Err: err},
			Longitude: {Err: err},
			Altitude:  {Err: err},
		}
	}
	return map[Field]Reading{
		Latitude:  {Value: lat},
		Longitude: {Value: lon},
		Altitude:  {Value: alt},
	}
}

// FixedPosition is a provider for ground runs and tests.
type FixedPosition struct {
	Lat, Lon, Alt float64
}

func (f FixedPosition) Position(context.Context) (float64, float64, float64, error) {
	return f.Lat, f.Lon, f.Alt, nil
}

// Static returns fixed values, and can be switched to fail per field.
type Static struct {
	mu     sync.Mutex
	name   string
	values map[Field]float64
	errs   map[Field]error
}

func NewStatic(name string, values map[Field]float64) *Static {
	return &Static{
		name:   name,
		values: values,
		errs:   map[Field]error{},
	}
}

func (s *Static) Name() string {
	return s.name
}

// Fail makes subsequent reads of f return err, or succeed again for a nil err.
func (s *Static) Fail(f Field, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.errs, f)
		return
	}
	s.errs[f] = err
}

func (s *Static) Read(context.Context) map[Field]Reading {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[Field]Reading, len(s.values))
	for f, v := range s.values {
		if err, ok := s.errs[f]; ok {
			out[f] = Reading{Err: err}
			continue
		}
		out[f] = Reading{Value: v}
	}
	return out
}
