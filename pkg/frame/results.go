package frame

import (
	"encoding/csv"
	"os"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
)

// Row is one line of the classification results file.
type Row struct {
	Name       string  `csv:"name" json:"name"`
	Score      float64 `csv:"score" json:"score"`
	Relevant   bool    `csv:"relevant" json:"relevant"`
	White      float64 `csv:"white%" json:"white"`
	Water      float64 `csv:"water%" json:"water"`
	Vegetation float64 `csv:"vegetation%" json:"vegetation"`
	Other      float64 `csv:"other%" json:"other"`
}

func (o *Outcome) Row() Row {
	c := o.Result.Coverage
	return Row{
		Name:       o.Name,
		Score:      o.Score,
		Relevant:   o.Relevant,
		White:      c.White,
		Water:      c.Water,
		Vegetation: c.Vegetation,
		Other:      c.Other,
	}
}

// Results appends rows to a CSV file from several goroutines.
type Results struct {
	mu     sync.Mutex
	f      *os.File
	w      *csv.Writer
	header bool
}

func OpenResults(path string) (*Results, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	info, err := f.Stat()
	if err != nil {
		return nil, multierr.Combine(errors.Wrapf(err, "could not stat %s", path), f.Close())
	}
	return &Results{f: f, w: csv.NewWriter(f), header: info.Size() > 0}, nil
}

func (r *Results) Write(row Row) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows := []Row{row}
	var err error
	if r.header {
		err = gocsv.MarshalCSVWithoutHeaders(&rows, r.w)
	} else {
		err = gocsv.MarshalCSV(&rows, r.w)
	}
	if err != nil {
		return errors.Wrap(err, "could not write result")
	}
	r.header = true

	r.w.Flush()
	return r.w.Error()
}

func (r *Results) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w.Flush()
	return multierr.Combine(r.w.Error(), r.f.Close())
}
