package telemetry

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// EventLog is the plain text mission log. Each entry is one line of the form
// "[D/M/YYYY,h:m:s.fff] message".
type EventLog struct {
	mu     sync.Mutex
	f      *os.File
	logger golog.Logger
	now    func() time.Time
}

func OpenEventLog(path string, logger golog.Logger) (*EventLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	return &EventLog{f: f, logger: logger, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Log writes msg stamped with the current time.
func (e *EventLog) Log(msg string) error {
	return e.LogAt(e.now(), msg)
}

// LogAt writes msg stamped with t.
func (e *EventLog) LogAt(t time.Time, msg string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.logger != nil {
		e.logger.Info(msg)
	}

	if _, err := fmt.Fprintf(e.f, "[%s,%s] %s\n", FormatDate(t), FormatTime(t), msg); err != nil {
		return errors.Wrap(err, "could not write log entry")
	}
	return e.f.Sync()
}

func (e *EventLog) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.f.Close()
}
