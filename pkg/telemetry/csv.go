package telemetry

import (
	"encoding/csv"
	"os"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// CSVWriter appends records to a CSV file. The header is written only when the
// file is empty, so restarts continue the same file.
type CSVWriter struct {
	mu     sync.Mutex
	f      *os.File
	w      *csv.Writer
	header bool
}

func OpenCSV(path string) (*CSVWriter, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}

	info, err := f.Stat()
	if err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "could not stat %s", path), f.Close())
	}

	return &CSVWriter{
		f:      f,
		w:      csv.NewWriter(f),
		header: info.Size() > 0,
	}, nil
}

// Write appends one row and syncs the file to disk.
func (c *CSVWriter) Write(r Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rows := []Record{r}
	var err error
	if c.header {
		err = gocsv.MarshalCSVWithoutHeaders(&rows, c.w)
	} else {
		err = gocsv.MarshalCSV(&rows, c.w)
	}
	if err != nil {
		return errors.Wrap(err, "could not write record")
	}
	c.header = true

	c.w.Flush()
	if err := c.w.Error(); err != nil {
		return errors.Wrap(err, "could not flush record")
	}
	return c.f.Sync()
}

func (c *CSVWriter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.w.Flush()
	return multierr.Combine(c.w.Error(), c.f.Close())
}

// ReadCSV loads every record of a telemetry CSV file.
func ReadCSV(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	defer f.Close()

	var out []Record
	if err := gocsv.UnmarshalFile(f, &out); err != nil {
		return nil, errors.Wrapf(err, "could not parse %s", path)
	}
	return out, nil
}
