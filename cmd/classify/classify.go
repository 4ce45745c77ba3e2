package main

import (
	"context"
	"flag"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/edaniels/golog"
	"github.com/fsnotify/fsnotify"
	"github.com/gammazero/workerpool"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/project-spencer/astropi/pkg/config"
	"github.com/project-spencer/astropi/pkg/frame"
	"github.com/project-spencer/astropi/pkg/metrics"
)

type classifier struct {
	cfg       *config.Config
	outputDir string
	overlay   bool
	results   *frame.Results
	metrics   *metrics.Collector
	logger    golog.Logger
}

func (c *classifier) process(path string) error {
	o, err := frame.Open(path, c.cfg)
	if err != nil {
		return err
	}

	o.Result.Log(c.logger, o.Name)
	c.metrics.ObserveFrame(o.Score, o.Relevant, o.Took)

	if _, err := o.Save(c.outputDir); err != nil {
		return err
	}

	if c.overlay {
		found, err := o.SaveOverlay(c.outputDir, c.cfg.Aperture)
		if err != nil {
			return err
		}
		if !found {
			c.logger.Debugw("no window found", "image", o.Name)
		}
	}

	c.logger.Debugw("classified", "image", o.Name, "score", o.Score, "relevant", o.Relevant, "took", o.Took)

	return c.results.Write(o.Row())
}

// listImages returns the decodable images in dir, sorted by name.
func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "could not read directory %s", dir)
	}

	var out []string
	for _, e := range entries {
		if e.IsDir() || !frame.IsImage(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// sample picks n images at random, or all of them when n is not smaller.
func sample(paths []string, n int, rnd *rand.Rand) []string {
	if n <= 0 || n >= len(paths) {
		return paths
	}
	picked := make([]string, len(paths))
	copy(picked, paths)
	rnd.Shuffle(len(picked), func(i, j int) { picked[i], picked[j] = picked[j], picked[i] })
	picked = picked[:n]
	sort.Strings(picked)
	return picked
}

func (c *classifier) batch(paths []string, workers int) int {
	bar := progressbar.Default(int64(len(paths)), "classifying")
	wp := workerpool.New(workers)

	failed := make(chan string, len(paths))
	for _, p := range paths {
		p := p
		wp.Submit(func() {
			if err := c.process(p); err != nil {
				c.logger.Errorw("could not classify", "image", p, "error", err)
				failed <- p
			}
			bar.Add(1)
		})
	}
	wp.StopWait()
	close(failed)

	return len(failed)
}

func (c *classifier) watch(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	c.logger.Infof("monitoring directory %s", dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case file, ok := <-watcher.Events:
			if !ok {
				c.logger.Info("watch stopped")
				return nil
			}

			if !file.Has(fsnotify.Create) || !frame.IsImage(file.Name) {
				continue
			}

			if err := c.process(file.Name); err != nil {
				c.logger.Errorw("could not classify", "image", file.Name, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				c.logger.Info("watch stopped")
				return nil
			}
			c.logger.Errorw("watch error", "error", err)
		}
	}
}

func main() {
	logger := golog.NewDevelopmentLogger("classify")

	var configPath string
	var envPath string
	var inputDir string
	var outputDir string
	var resultsPath string
	var watch bool
	var resume bool
	var sampleN int
	var workers int
	var overlay bool
	var seed int64

	flag.StringVar(&configPath, "config", "astropi.yaml", "configuration file")
	flag.StringVar(&envPath, "env", ".env", "environment overrides file")
	flag.StringVar(&inputDir, "input-dir", "", "directory with input images")
	flag.StringVar(&outputDir, "output-dir", "", "directory for classified images")
	flag.StringVar(&resultsPath, "results", "", "results csv, defaults to results.csv in the output directory")
	flag.BoolVar(&watch, "watch", false, "keep classifying images created in the input directory")
	flag.BoolVar(&resume, "resume", false, "in watch mode, classify existing images first")
	flag.IntVar(&sampleN, "sample", 0, "classify n random images instead of all")
	flag.IntVar(&workers, "workers", 4, "parallel workers in batch mode")
	flag.BoolVar(&overlay, "debug-overlay", false, "also save the detected window outline")
	flag.Int64Var(&seed, "seed", time.Now().UnixNano(), "seed for -sample")

	flag.Parse()

	if inputDir == "" || outputDir == "" {
		logger.Fatal("-input-dir and -output-dir are required")
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

	if resultsPath == "" {
		resultsPath = filepath.Join(outputDir, "results.csv")
	}
	results, err := frame.OpenResults(resultsPath)
	if err != nil {
		logger.Fatalw("could not open results", "error", err)
	}
	defer results.Close()

	m, err := metrics.New(nil)
	if err != nil {
		logger.Fatalw("could not register metrics", "error", err)
	}

	c := &classifier{
		cfg:       cfg,
		outputDir: outputDir,
		overlay:   overlay,
		results:   results,
		metrics:   m,
		logger:    logger,
	}

	logger.Infow("starting", "variant", cfg.Segmentation.Variant, "input", inputDir, "output", outputDir)

	if watch {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if resume {
			paths, err := listImages(inputDir)
			if err != nil {
				logger.Fatalw("could not list images", "error", err)
			}
			c.batch(paths, workers)
		}

		if err := c.watch(ctx, inputDir); err != nil {
			logger.Fatalw("watch failed", "error", err)
		}
		return
	}

	paths, err := listImages(inputDir)
	if err != nil {
		logger.Fatalw("could not list images", "error", err)
	}
	paths = sample(paths, sampleN, rand.New(rand.NewSource(seed)))

	failed := c.batch(paths, workers)
	logger.Infow("done", "images", len(paths), "failed", failed, "results", resultsPath)
}
