// Package config loads the tuning parameters of the pipeline and the settings
// of the tools around it from a YAML file, with overrides from the
// environment.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/project-spencer/astropi/pkg/aperture"
	"github.com/project-spencer/astropi/pkg/landcover"
	"github.com/project-spencer/astropi/pkg/relevance"
)

// Config represents the configuration shared by all binaries.
type Config struct {
	Segmentation landcover.Config `yaml:"segmentation"`
	Gate         relevance.Gate   `yaml:"gate"`
	Aperture     aperture.Config  `yaml:"aperture"`

	// Frames are downscaled to fit inside this box before classification.
	Resize struct {
		Width  int `yaml:"width"`
		Height int `yaml:"height"`
	} `yaml:"resize"`

	Telemetry struct {
		Interval time.Duration `yaml:"interval"`
		// Tinkerforge brick daemon
		Host       string  `yaml:"host"`
		Port       int     `yaml:"port"`
		TempUID    string  `yaml:"tempUID"`
		PowerUID   string  `yaml:"powerUID"`
		LCDUID     string  `yaml:"lcdUID"`
		Emissivity float64 `yaml:"emissivity"`
		// two-line element set of the station, propagated with SGP4
		TLE1 string `yaml:"tle1"`
		TLE2 string `yaml:"tle2"`
		// fallback position without a TLE or hardware
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
		Altitude  float64 `yaml:"altitude"`
	} `yaml:"telemetry"`

	Dataset struct {
		// Altitude in metres used when the telemetry has none for an image.
		Altitude  float64 `yaml:"altitude"`
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
		// ImageSize is the side, in pixels, of the ground images summarised.
		ImageSize int `yaml:"imageSize"`
	} `yaml:"dataset"`
}

// Default returns the configuration the tools were tuned with.
func Default() *Config {
	cfg := &Config{
		Segmentation: landcover.Red(),
		Gate:         GateFor(landcover.VariantRed),
		Aperture:     aperture.DefaultConfig(),
	}

	cfg.Resize.Width = 720
	cfg.Resize.Height = 600

	cfg.Telemetry.Interval = time.Minute
	cfg.Telemetry.Host = "localhost"
	cfg.Telemetry.Port = 4223
	cfg.Telemetry.TempUID = "TCq"
	cfg.Telemetry.PowerUID = "26vg"
	cfg.Telemetry.LCDUID = "24Q8"
	cfg.Telemetry.Emissivity = 0.9
	cfg.Telemetry.Altitude = 416037
	// stale outside a few weeks of its epoch, refresh from CelesTrak before a run
	cfg.Telemetry.TLE1 = "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927"
	cfg.Telemetry.TLE2 = "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537"

	cfg.Dataset.Altitude = 416037
	cfg.Dataset.Latitude = 33.819515149111375
	cfg.Dataset.Longitude = -81.34991600471324
	cfg.Dataset.ImageSize = 2888

	return cfg
}

// GateFor returns the relevance gate the variant was tuned with.
func GateFor(v landcover.Variant) relevance.Gate {
	if v == landcover.VariantYellow {
		return relevance.DefaultGate()
	}
	return relevance.BoostedGate()
}

// Load reads the configuration at path on top of the defaults. A missing file
// yields the defaults. When the file names a variant, that variant's preset
// is the base the remaining segmentation keys apply to.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "could not read config file")
	}

	var head struct {
		Segmentation struct {
			Variant landcover.Variant `yaml:"variant"`
		} `yaml:"segmentation"`
	}
	if err := yaml.Unmarshal(data, &head); err != nil {
		return nil, errors.Wrap(err, "could not parse config file")
	}
	if v := head.Segmentation.Variant; v != "" {
		if cfg.Segmentation, err = landcover.Preset(v); err != nil {
			return nil, err
		}
		cfg.Gate = GateFor(v)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "could not parse config file")
	}

	if cfg.Telemetry.Interval <= 0 {
		return nil, errors.Errorf("telemetry interval must be positive, got %s", cfg.Telemetry.Interval)
	}

	if (cfg.Telemetry.TLE1 == "") != (cfg.Telemetry.TLE2 == "") {
		return nil, errors.New("telemetry tle1 and tle2 must be set together")
	}

	return cfg, cfg.Segmentation.Validate()
}

// Save writes cfg to path, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrap(err, "could not create config directory")
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return errors.Wrap(err, "could not marshal config")
	}

	return errors.Wrap(os.WriteFile(path, data, 0o644), "could not write config file")
}

// CreateDefault writes the default configuration to path unless a file is
// already there.
func CreateDefault(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(path, Default())
}

// Environment variables that override file settings.
const (
	EnvVariant       = "ASTROPI_VARIANT"
	EnvGateThreshold = "ASTROPI_GATE_THRESHOLD"
	EnvTFHost        = "ASTROPI_TF_HOST"
	EnvAltitude      = "ASTROPI_ALTITUDE"
)

// ApplyEnv loads the given .env files, skipping missing ones, and applies the
// ASTROPI_* overrides.
func (c *Config) ApplyEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return errors.Wrapf(err, "could not load %s", f)
		}
	}

	if v := os.Getenv(EnvVariant); v != "" {
		seg, err := landcover.Preset(landcover.Variant(v))
		if err != nil {
			return err
		}
		c.Segmentation = seg
		c.Gate = GateFor(seg.Variant)
	}

	if v := os.Getenv(EnvGateThreshold); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvGateThreshold)
		}
		c.Gate.Threshold = t
	}

	if v := os.Getenv(EnvTFHost); v != "" {
		c.Telemetry.Host = v
	}

	if v := os.Getenv(EnvAltitude); v != "" {
		a, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %s", EnvAltitude)
		}
		c.Telemetry.Altitude = a
		c.Dataset.Altitude = a
	}

	return nil
}
