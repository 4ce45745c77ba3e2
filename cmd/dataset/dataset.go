package main

import (
	"flag"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"github.com/paulmach/orb/geojson"
	"github.com/pkg/errors"
	"github.com/schollz/progressbar/v3"

	"github.com/project-spencer/astropi/pkg/config"
	"github.com/project-spencer/astropi/pkg/dataset"
	"github.com/project-spencer/astropi/pkg/raster"
)

// resolveAltitude returns the altitude recorded for the reference image, or
// fallback when the log or telemetry do not have it.
func resolveAltitude(logger golog.Logger, logPath, dataPath, name string, fallback float64) float64 {
	if name == "" {
		return fallback
	}
	for _, p := range []string{logPath, dataPath} {
		if _, err := os.Stat(p); err != nil {
			logger.Warnf("%q not found, using default altitude %.0f m", p, fallback)
			return fallback
		}
	}

	alt, err := dataset.LookupAltitude(logPath, dataPath, name)
	if err != nil {
		logger.Warnw("using default altitude", "altitude", fallback, "error", err)
		return fallback
	}
	logger.Infof("altitude of %s from telemetry: %.0f m", name, alt)
	return alt
}

// summarise processes one ground image.
func summarise(path, date string, p dataset.Params) (dataset.Row, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return dataset.Row{}, errors.Wrapf(err, "could not open %s", path)
	}

	if date == "" {
		info, err := os.Stat(path)
		if err != nil {
			return dataset.Row{}, err
		}
		date = info.ModTime().UTC().Format("2006-01-02")
	}
	p.Date = date

	row, _, err := dataset.Summarise(raster.FromImage(src), p)
	return row, err
}

func main() {
	logger := golog.NewDevelopmentLogger("dataset")

	var configPath string
	var envPath string
	var reference string
	var logPath string
	var dataPath string
	var outPath string
	var geoPath string
	var date string

	flag.StringVar(&configPath, "config", "astropi.yaml", "configuration file")
	flag.StringVar(&envPath, "env", ".env", "environment overrides file")
	flag.StringVar(&reference, "reference", "image_0.jpg", "AstroPi image whose altitude scales the summaries")
	flag.StringVar(&logPath, "log", "log.txt", "mission log")
	flag.StringVar(&dataPath, "data", "data.csv", "telemetry csv")
	flag.StringVar(&outPath, "out", "dataset.csv", "dataset csv to append to")
	flag.StringVar(&geoPath, "geojson", "", "also write the footprints as GeoJSON")
	flag.StringVar(&date, "date", "", "acquisition date YYYY-MM-DD, defaults to the file date")

	flag.Parse()

	if flag.NArg() == 0 {
		logger.Fatal("usage: dataset [flags] image...")
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		logger.Fatalw("could not load config", "error", err)
	}
	if err := cfg.ApplyEnv(envPath); err != nil {
		logger.Fatalw("could not apply environment", "error", err)
	}
	dc := cfg.Dataset

	alt := resolveAltitude(logger, logPath, dataPath, reference, dc.Altitude)
	logger.Infow("scale", "altitude", alt, "distance", dataset.EstimateDistance(alt), "imageSize", dc.ImageSize)

	params := dataset.Params{Altitude: alt, ImageSize: dc.ImageSize}
	fc := geojson.NewFeatureCollection()
	var rows []dataset.Row

	bar := progressbar.Default(int64(flag.NArg()), "summarising")
	for _, path := range flag.Args() {
		row, err := summarise(path, date, params)
		bar.Add(1)
		if err != nil {
			logger.Errorw("image data not saved", "image", path, "error", err)
			continue
		}
		rows = append(rows, row)
		fc.Append(dataset.Feature(filepath.Base(path), dc.Latitude, dc.Longitude, alt, row))
	}

	if err := dataset.Append(outPath, rows); err != nil {
		logger.Fatalw("could not save dataset", "error", err)
	}
	logger.Infow("saved", "rows", len(rows), "file", outPath)

	if geoPath == "" {
		return
	}
	raw, err := fc.MarshalJSON()
	if err != nil {
		logger.Fatalw("could not encode footprints", "error", err)
	}
	if err := os.WriteFile(geoPath, raw, 0o644); err != nil {
		logger.Fatalw("could not write footprints", "error", err)
	}
}
