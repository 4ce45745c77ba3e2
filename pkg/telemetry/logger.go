package telemetry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"go.uber.org/multierr"
)

// Logger samples the collector on every tick and persists the result.
type Logger struct {
	Collector *Collector
	CSV       *CSVWriter
	Events    *EventLog
	// Display is optional.
	Display  *Display
	Interval time.Duration
	Now      func() time.Time

	logger golog.Logger

	mu      sync.Mutex
	samples uint64
	last    Sample
}

func NewLogger(logger golog.Logger, c *Collector, w *CSVWriter, events *EventLog, interval time.Duration) *Logger {
	return &Logger{
		Collector: c,
		CSV:       w,
		Events:    events,
		Interval:  interval,
		Now:       func() time.Time { return time.Now().UTC() },
		logger:    logger,
	}
}

// Run ticks until ctx is done. The first sample is taken immediately.
func (l *Logger) Run(ctx context.Context) error {
	ticker := time.NewTicker(l.Interval)
	defer ticker.Stop()

	for {
		if err := l.Tick(ctx, l.Now()); err != nil {
			l.logger.Debugw("sample incomplete", "error", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Tick takes one sample stamped with now, writes the CSV row and the log
// entry, and refreshes the display. Read failures do not stop the row from
// being written.
func (l *Logger) Tick(ctx context.Context, now time.Time) error {
	s, err := l.Collector.Sample(ctx, now)

	l.mu.Lock()
	l.samples++
	l.last = s
	n := l.samples
	l.mu.Unlock()

	if werr := l.CSV.Write(s.Record); werr != nil {
		l.logger.Errorw("could not write telemetry", "error", werr)
		err = multierr.Append(err, werr)
	}

	msg := fmt.Sprintf("sample %d", n)
	if len(s.Failed) > 0 {
		msg = fmt.Sprintf("sample %d, %d fields missing", n, len(s.Failed))
	}
	if l.Events != nil {
		err = multierr.Append(err, l.Events.LogAt(now, msg))
	}

	if derr := l.Display.Show(s, n); derr != nil {
		l.logger.Debugw("could not update display", "error", derr)
	}

	return err
}

// Samples returns the number of ticks taken so far.
func (l *Logger) Samples() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.samples
}

// Last returns the most recent sample, false before the first tick.
func (l *Logger) Last() (Sample, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.last, l.samples > 0
}
