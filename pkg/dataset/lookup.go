package dataset

import (
	"bufio"
	"os"
	"regexp"
	"strings"

	"github.com/pkg/errors"

	"github.com/project-spencer/astropi/pkg/telemetry"
)

var stampPattern = regexp.MustCompile(`^\[([^,]*),(.*)\]`)

// ErrNotFound is returned when the image or its timestamp is not recorded.
var ErrNotFound = errors.New("not found")

// FindStamp returns the date and time of the first mission log line that
// mentions name.
func FindStamp(logPath, name string) (date, tm string, err error) {
	f, err := os.Open(logPath)
	if err != nil {
		return "", "", errors.Wrapf(err, "could not open %s", logPath)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := sc.Text()
		if !strings.Contains(line, name) {
			continue
		}
		m := stampPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		tm, _, _ = strings.Cut(m[2], "]")
		return m[1], tm, nil
	}
	if err := sc.Err(); err != nil {
		return "", "", errors.Wrapf(err, "could not read %s", logPath)
	}
	return "", "", errors.Wrapf(ErrNotFound, "%s in %s", name, logPath)
}

// LookupAltitude finds the altitude the telemetry recorded at the moment the
// mission log mentions name. Rows with a missing or non-positive altitude are
// skipped.
func LookupAltitude(logPath, dataPath, name string) (float64, error) {
	date, tm, err := FindStamp(logPath, name)
	if err != nil {
		return 0, err
	}

	records, err := telemetry.ReadCSV(dataPath)
	if err != nil {
		return 0, err
	}

	for _, r := range records {
		if r.Date != date || r.Time != tm {
			continue
		}
		if r.Altitude.Valid() && r.Altitude > 0 {
			return float64(r.Altitude), nil
		}
	}
	return 0, errors.Wrapf(ErrNotFound, "altitude at %s %s", date, tm)
}
