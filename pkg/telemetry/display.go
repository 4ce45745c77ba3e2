package telemetry

import (
	"fmt"

	"go.uber.org/multierr"
)

// Display renders a status page on a small character display.
type Display struct {
	WriteLine func(line int, text string) error
}

// Show writes the latest sample and counters, one quantity per line.
func (d *Display) Show(s Sample, samples uint64) error {
	if d == nil {
		return nil
	}

	lines := []string{
		fmt.Sprintf("%-10s%10s", "Ambient:", cell(s.Get(Temperature), "C")),
		fmt.Sprintf("%-10s%10s", "Temp:", cell(s.Get(ObjectTemp), "C")),
		fmt.Sprintf("%-10s%10s", "Power:", cell(s.Get(Power), "W")),
		fmt.Sprintf("%-10s%10s", "Alt:", cell(s.Get(Altitude)/1000, "km")),
		fmt.Sprintf("%-10s%10d", "Samples:", samples),
		fmt.Sprintf("%-10s%10d", "Failed:", len(s.Failed)),
	}

	var err error
	for i, l := range lines {
		err = multierr.Append(err, d.WriteLine(i, l))
	}
	return err
}

func cell(v Value, unit string) string {
	if !v.Valid() {
		return "-"
	}
	return fmt.Sprintf("%.2f%s", float64(v), unit)
}
