package telemetry

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"
	"github.com/pkg/errors"
)

// Orbit is a PositionProvider that propagates a two-line element set with
// SGP4 to the point under the station.
type Orbit struct {
	// Now is the instant Position propagates to.
	Now func() time.Time

	sat satellite.Satellite
}

// NewOrbit parses a two-line element set.
func NewOrbit(line1, line2 string) (*Orbit, error) {
	line1, line2 = strings.TrimSpace(line1), strings.TrimSpace(line2)
	if err := checkElementLine(line1, '1', 3); err != nil {
		return nil, errors.Wrap(err, "line 1")
	}
	if err := checkElementLine(line2, '2', 2, 3, 4, 5, 6); err != nil {
		return nil, errors.Wrap(err, "line 2")
	}

	return &Orbit{
		Now: func() time.Time { return time.Now().UTC() },
		sat: satellite.TLEToSat(line1, line2, satellite.GravityWGS72),
	}, nil
}

// checkElementLine verifies the line number, length, modulo 10 checksum and
// that the given whitespace separated fields are numbers.
func checkElementLine(line string, n byte, numeric ...int) error {
	if len(line) != 69 || line[0] != n || line[1] != ' ' {
		return errors.New("malformed two-line element set")
	}

	sum := 0
	for _, c := range line[:68] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	if want := int(line[68]) - '0'; want != sum%10 {
		return errors.Errorf("checksum %d does not match %c", sum%10, line[68])
	}

	fields := strings.Fields(line)
	for _, i := range numeric {
		if i >= len(fields) {
			return errors.Errorf("missing field %d", i)
		}
		if _, err := strconv.ParseFloat(fields[i], 64); err != nil {
			return errors.Wrapf(err, "field %d", i)
		}
	}
	return nil
}

// At returns latitude and longitude in degrees and altitude in metres at t.
func (o *Orbit) At(t time.Time) (lat, lon, alt float64, err error) {
	t = t.UTC()
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	pos, _ := satellite.Propagate(o.sat, year, int(month), day, hour, min, sec)
	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) || (pos.X == 0 && pos.Y == 0 && pos.Z == 0) {
		return 0, 0, 0, errors.Errorf("propagation failed at %s", t.Format(time.RFC3339))
	}

	gmst := satellite.ThetaG_JD(satellite.JDay(year, int(month), day, hour, min, sec))
	altKm, _, ll := satellite.ECIToLLA(pos, gmst)
	if altKm < 0 {
		return 0, 0, 0, errors.Errorf("orbit has decayed by %s", t.Format(time.RFC3339))
	}

	lon = math.Mod(ll.Longitude*180/math.Pi, 360)
	switch {
	case lon > 180:
		lon -= 360
	case lon <= -180:
		lon += 360
	}
	return ll.Latitude * 180 / math.Pi, lon, altKm * 1000, nil
}

func (o *Orbit) Position(ctx context.Context) (float64, float64, float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, 0, err
	}
	return o.At(o.Now())
}
