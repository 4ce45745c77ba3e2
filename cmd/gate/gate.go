package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"

	"github.com/project-spencer/astropi/pkg/config"
	"github.com/project-spencer/astropi/pkg/downlink"
	"github.com/project-spencer/astropi/pkg/frame"
	"github.com/project-spencer/astropi/pkg/landcover"
	"github.com/project-spencer/astropi/pkg/metrics"
)

const maxBodyBytes = 64 << 20

type response struct {
	Name     string             `json:"name"`
	Score    float64            `json:"score"`
	Relevant bool               `json:"relevant"`
	Coverage landcover.Coverage `json:"percentages"`
	Stored   []string           `json:"stored,omitempty"`
}

type gate struct {
	cfg       *config.Config
	outputDir string
	endpoint  string
	metrics   *metrics.Collector
	logger    golog.Logger
}

func (g *gate) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	defer r.Body.Close()

	name := r.URL.Query().Get("name")
	if name == "" {
		name = fmt.Sprintf("frame_%d.png", time.Now().UnixNano())
	}
	name = filepath.Base(name)

	t1 := time.Now()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "could not read image", http.StatusBadRequest)
		return
	}

	src, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		http.Error(w, "could not decode image", http.StatusBadRequest)
		return
	}

	g.logger.Debugw("decoded image", "name", name, "bytes", len(body), "took", time.Since(t1))

	o, err := frame.Classify(name, src, g.cfg)
	if err != nil {
		g.logger.Errorw("could not classify", "name", name, "error", err)
		http.Error(w, "could not classify image", http.StatusUnprocessableEntity)
		return
	}

	o.Result.Log(g.logger, name)
	g.metrics.ObserveFrame(o.Score, o.Relevant, o.Took)

	res := response{
		Name:     name,
		Score:    o.Score,
		Relevant: o.Relevant,
		Coverage: o.Result.Coverage,
	}

	if o.Relevant {
		stored, err := g.store(r.Context(), o, body)
		if err != nil {
			g.logger.Errorw("could not store frame", "name", name, "error", err)
		}
		res.Stored = stored
	} else {
		g.logger.Infof("score %.2f below %.2f, skipping %s", o.Score, g.cfg.Gate.Threshold, name)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(res); err != nil {
		g.logger.Debugw("could not write response", "error", err)
	}
}

// store keeps the raw upload and the classified products, then announces the
// raw frame to the downlink.
func (g *gate) store(ctx context.Context, o *frame.Outcome, raw []byte) ([]string, error) {
	rawPath := filepath.Join(g.outputDir, o.Name)
	if err := os.WriteFile(rawPath, raw, 0o644); err != nil {
		return nil, errors.Wrap(err, "could not write raw frame")
	}

	stored, err := o.Save(g.outputDir)
	if err != nil {
		return []string{rawPath}, err
	}
	stored = append([]string{rawPath}, stored...)

	g.logger.Infof("saved %s", rawPath)

	if g.endpoint == "" {
		return stored, nil
	}

	f := downlink.Frame{Name: o.Name, Size: uint64(len(raw)), Score: o.Score}
	if err := downlink.SendToRemote(ctx, f, g.endpoint); err != nil {
		return stored, errors.Wrap(err, "could not notify downlink")
	}
	return stored, nil
}

func main() {
	logger := golog.NewDevelopmentLogger("gate")

	var configPath string
	var envPath string
	var port int
	var outputDir string
	var endpoint string
	var downlinkPort int
	var bitrate uint64

	flag.StringVar(&configPath, "config", "astropi.yaml", "configuration file")
	flag.StringVar(&envPath, "env", ".env", "environment overrides file")
	flag.IntVar(&port, "port", 8080, "port to listen on")
	flag.StringVar(&outputDir, "output-dir", "", "output directory for relevant frames")
	flag.StringVar(&endpoint, "downlink-endpoint", "", "endpoint to announce stored frames to")
	flag.IntVar(&downlinkPort, "downlink-port", 0, "serve a local downlink queue on this port")
	flag.Uint64Var(&bitrate, "downlink-bitrate", 1_000_000, "bit rate of the local downlink in bit/s")

	flag.Parse()

	if outputDir == "" {
		logger.Fatal("-output-dir is required")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalw("could not load config", "error", err)
	}
	if err := cfg.ApplyEnv(envPath); err != nil {
		logger.Fatalw("could not apply environment", "error", err)
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		logger.Fatalw("could not create output directory", "error", err)
	}

	m, err := metrics.New(nil)
	if err != nil {
		logger.Fatalw("could not register metrics", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if downlinkPort > 0 {
		d := downlink.NewDownlink(logger.Named("downlink"))
		d.Start(ctx, downlinkPort)
		go d.Drain(ctx, bitrate, m.ObserveQueue)

		if endpoint == "" {
			endpoint = fmt.Sprintf("http://localhost:%d/", downlinkPort)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/", &gate{
		cfg:       cfg,
		outputDir: outputDir,
		endpoint:  endpoint,
		metrics:   m,
		logger:    logger,
	})
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Infow("listening", "port", port, "variant", cfg.Segmentation.Variant, "threshold", cfg.Gate.Threshold)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalw("server failed", "error", err)
	}
}
