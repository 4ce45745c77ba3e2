package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/project-spencer/astropi/pkg/landcover"
	"github.com/project-spencer/astropi/pkg/relevance"
	"github.com/project-spencer/astropi/pkg/telemetry"
)

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, Default())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "astropi.yaml")
	test.That(t, CreateDefault(path), test.ShouldBeNil)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg, test.ShouldResemble, Default())

	// an existing file is left alone
	cfg.Gate.Threshold = 15
	test.That(t, Save(path, cfg), test.ShouldBeNil)
	test.That(t, CreateDefault(path), test.ShouldBeNil)
	cfg, err = Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Gate.Threshold, test.ShouldEqual, 15.0)
}

func TestLoadVariantOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "astropi.yaml")
	data := []byte(`
segmentation:
  variant: yellow
  whiteThreshold: 200
gate:
  threshold: 5
telemetry:
  interval: 30s
`)
	test.That(t, os.WriteFile(path, data, 0o644), test.ShouldBeNil)

	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Segmentation.Variant, test.ShouldEqual, landcover.VariantYellow)
	test.That(t, cfg.Segmentation.OtherColour, test.ShouldResemble, landcover.ColourYellow)
	test.That(t, cfg.Segmentation.IndexOnEnhanced, test.ShouldBeTrue)
	test.That(t, cfg.Segmentation.WhiteThreshold, test.ShouldEqual, uint8(200))
	test.That(t, cfg.Gate.Threshold, test.ShouldEqual, 5.0)
	test.That(t, cfg.Telemetry.Interval, test.ShouldEqual, 30*time.Second)
	test.That(t, cfg.Resize.Width, test.ShouldEqual, 720)
}

func TestGateFollowsVariant(t *testing.T) {
	cfg := Default()
	test.That(t, cfg.Gate, test.ShouldResemble, relevance.BoostedGate())

	path := filepath.Join(t.TempDir(), "astropi.yaml")
	test.That(t, os.WriteFile(path, []byte("segmentation:\n  variant: yellow\n"), 0o644), test.ShouldBeNil)
	cfg, err := Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Gate, test.ShouldResemble, relevance.DefaultGate())

	test.That(t, os.WriteFile(path, []byte("segmentation:\n  variant: red\n"), 0o644), test.ShouldBeNil)
	cfg, err = Load(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.Gate.Weights, test.ShouldResemble, relevance.Boosted)
	test.That(t, cfg.Gate.Threshold, test.ShouldEqual, 5.0)
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	test.That(t, os.WriteFile(bad, []byte("gate: [1, 2"), 0o644), test.ShouldBeNil)
	_, err := Load(bad)
	test.That(t, err, test.ShouldNotBeNil)

	unknown := filepath.Join(dir, "unknown.yaml")
	test.That(t, os.WriteFile(unknown, []byte("segmentation:\n  variant: purple\n"), 0o644), test.ShouldBeNil)
	_, err = Load(unknown)
	test.That(t, err, test.ShouldNotBeNil)

	still := filepath.Join(dir, "still.yaml")
	test.That(t, os.WriteFile(still, []byte("telemetry:\n  interval: 0s\n"), 0o644), test.ShouldBeNil)
	_, err = Load(still)
	test.That(t, err, test.ShouldNotBeNil)

	lone := filepath.Join(dir, "lone.yaml")
	test.That(t, os.WriteFile(lone, []byte("telemetry:\n  tle2: \"\"\n"), 0o644), test.ShouldBeNil)
	_, err = Load(lone)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestDefaultOrbitParses(t *testing.T) {
	cfg := Default()
	o, err := telemetry.NewOrbit(cfg.Telemetry.TLE1, cfg.Telemetry.TLE2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, o, test.ShouldNotBeNil)
}

func TestApplyEnv(t *testing.T) {
	env := filepath.Join(t.TempDir(), ".env")
	test.That(t, os.WriteFile(env, []byte("ASTROPI_VARIANT=yellow\nASTROPI_GATE_THRESHOLD=15\n"), 0o644), test.ShouldBeNil)

	// godotenv does not override variables that are already set
	os.Unsetenv(EnvVariant)
	os.Unsetenv(EnvGateThreshold)
	t.Cleanup(func() {
		os.Unsetenv(EnvVariant)
		os.Unsetenv(EnvGateThreshold)
	})
	t.Setenv(EnvTFHost, "brickd.local")
	t.Setenv(EnvAltitude, "420000")

	cfg := Default()
	test.That(t, cfg.ApplyEnv(env, filepath.Join(t.TempDir(), "missing.env")), test.ShouldBeNil)
	test.That(t, cfg.Segmentation.Variant, test.ShouldEqual, landcover.VariantYellow)
	test.That(t, cfg.Gate.Threshold, test.ShouldEqual, 15.0)
	test.That(t, cfg.Gate.Weights, test.ShouldResemble, relevance.Standard)
	test.That(t, cfg.Telemetry.Host, test.ShouldEqual, "brickd.local")
	test.That(t, cfg.Dataset.Altitude, test.ShouldEqual, 420000.0)

	t.Setenv(EnvGateThreshold, "lots")
	test.That(t, Default().ApplyEnv(), test.ShouldNotBeNil)
}
