// Package downlink announces stored frames to the ground segment and models
// the queue of bytes waiting to be sent.
package downlink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
)

// Frame describes one stored frame.
type Frame struct {
	Name  string  `json:"name"`
	Size  uint64  `json:"size"`
	Score float64 `json:"score,omitempty"`
}

var client = &http.Client{Timeout: 10 * time.Second}

// SendToRemote posts the frame description to endpoint.
func SendToRemote(ctx context.Context, f Frame, endpoint string) error {
	j, err := json.Marshal(f)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewBuffer(j))
	if err != nil {
		return errors.Wrap(err, "could not build request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "could not reach %s", endpoint)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", res.StatusCode)
	}

	return nil
}

// Downlink is the receiving side: it accumulates announced frames into a
// byte queue that is drained at the link rate.
type Downlink struct {
	mu             sync.Mutex
	queueSizeBytes uint64
	frames         uint64
	logger         golog.Logger
}

func NewDownlink(logger golog.Logger) *Downlink {
	return &Downlink{logger: logger}
}

// ServeHTTP accepts POSTed frame descriptions.
func (d *Downlink) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	f := Frame{}
	if err := json.NewDecoder(r.Body).Decode(&f); err != nil {
		http.Error(w, "could not parse frame info", http.StatusBadRequest)
		return
	}

	d.logger.Debugw("received frame", "name", f.Name, "size", f.Size)
	d.Receive(f.Name, f.Size)
}

// Start serves the downlink on port until ctx is done.
func (d *Downlink) Start(ctx context.Context, port int) *http.Server {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           d,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		d.logger.Infof("downlink server started on port %d", port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.logger.Errorw("downlink server stopped", "error", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			d.logger.Debugw("downlink shutdown", "error", err)
		}
	}()

	return srv
}

func (d *Downlink) Receive(name string, size uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.queueSizeBytes += size
	d.frames++
}

// ReadNBytes removes up to n bytes from the queue and returns how many were
// removed.
func (d *Downlink) ReadNBytes(n uint64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.queueSizeBytes <= n {
		n = d.queueSizeBytes
	}

	d.queueSizeBytes -= n
	return n
}

// Drain reads bitrate/8 bytes per second from the queue until ctx is done.
// report is called after every read with the remaining queue size.
func (d *Downlink) Drain(ctx context.Context, bitrate uint64, report func(queued uint64)) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.ReadNBytes(bitrate / 8)
			if report != nil {
				report(d.QueueSize())
			}
		}
	}
}

func (d *Downlink) QueueSize() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.queueSizeBytes
}

// Frames is the number of frames received so far.
func (d *Downlink) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}
