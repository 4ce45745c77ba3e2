package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/project-spencer/astropi/pkg/config"
	"github.com/project-spencer/astropi/pkg/metrics"
	"github.com/project-spencer/astropi/pkg/telemetry"
)

type status struct {
	Time    time.Time                   `json:"time"`
	Samples uint64                      `json:"samples"`
	Values  map[telemetry.Field]float64 `json:"values"`
	Failed  []telemetry.Field           `json:"failed"`
	// Idle is true while the payload is cool enough to take on work.
	Idle bool `json:"idle"`
}

func statusHandler(l *telemetry.Logger, tempLimit float64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s, ok := l.Last()
		if !ok {
			http.Error(w, "no sample yet", http.StatusServiceUnavailable)
			return
		}

		temp := s.Get(telemetry.ObjectTemp)
		if !temp.Valid() {
			temp = s.Get(telemetry.Temperature)
		}

		v, err := json.Marshal(status{
			Time:    s.Time,
			Samples: l.Samples(),
			Values:  s.Values(),
			Failed:  s.Failed,
			Idle:    temp.Valid() && float64(temp) < tempLimit,
		})
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(v)
	}
}

func main() {
	logger := golog.NewDevelopmentLogger("telemetry")

	var configPath string
	var envPath string
	var dataPath string
	var logPath string
	var listenPort int
	var tempLimit float64
	var noHardware bool

	flag.StringVar(&configPath, "config", "astropi.yaml", "configuration file")
	flag.StringVar(&envPath, "env", ".env", "environment overrides file")
	flag.StringVar(&dataPath, "data", "data.csv", "telemetry csv")
	flag.StringVar(&logPath, "log", "log.txt", "mission log")
	flag.IntVar(&listenPort, "port", 8082, "port for status and metrics")
	flag.Float64Var(&tempLimit, "temp-limit", 60, "temperature limit")
	flag.BoolVar(&noHardware, "no-hardware", false, "run without the Tinkerforge stack")

	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalw("could not load config", "error", err)
	}
	if err := cfg.ApplyEnv(envPath); err != nil {
		logger.Fatalw("could not apply environment", "error", err)
	}
	tc := cfg.Telemetry

	m, err := metrics.New(nil)
	if err != nil {
		logger.Fatalw("could not register metrics", "error", err)
	}

	var position telemetry.PositionProvider = telemetry.FixedPosition{Lat: tc.Latitude, Lon: tc.Longitude, Alt: tc.Altitude}
	if !noHardware && tc.TLE1 != "" {
		orbit, err := telemetry.NewOrbit(tc.TLE1, tc.TLE2)
		if err != nil {
			logger.Fatalw("could not load orbit", "error", err)
		}
		position = orbit
		logger.Info("propagating position from TLE")
	}
	sources := []telemetry.Source{&telemetry.Position{Provider: position}}

	var display *telemetry.Display
	if !noHardware {
		tf, err := telemetry.ConnectTinkerforge(telemetry.TinkerforgeConfig{
			Host:       tc.Host,
			Port:       tc.Port,
			TempUID:    tc.TempUID,
			PowerUID:   tc.PowerUID,
			LCDUID:     tc.LCDUID,
			Emissivity: tc.Emissivity,
		})
		if err != nil {
			logger.Fatalw("could not connect to Tinkerforge devices", "error", err)
		}
		defer tf.Close()

		logger.Infow("connected to Tinkerforge devices", "host", tc.Host, "port", tc.Port)
		sources = append(sources, tf.Source())
		display = tf.Display()
	}

	w, err := telemetry.OpenCSV(dataPath)
	if err != nil {
		logger.Fatalw("could not open telemetry csv", "error", err)
	}
	defer w.Close()

	events, err := telemetry.OpenEventLog(logPath, logger.Named("events"))
	if err != nil {
		logger.Fatalw("could not open mission log", "error", err)
	}
	defer events.Close()

	l := telemetry.NewLogger(logger, telemetry.NewCollector(logger, m, sources...), w, events, tc.Interval)
	l.Display = display

	mux := http.NewServeMux()
	mux.Handle("/", statusHandler(l, tempLimit))
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", listenPort),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Infof("starting HTTP server on port %d", listenPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorw("HTTP server stopped", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	events.Log("telemetry started")
	logger.Infow("sampling", "interval", tc.Interval, "data", dataPath, "log", logPath)

	if err := l.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorw("sampling stopped", "error", err)
	}

	events.Log("telemetry stopped")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
}
