package main

import (
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"go.viam.com/test"

	"github.com/project-spencer/astropi/pkg/config"
	"github.com/project-spencer/astropi/pkg/frame"
	"github.com/project-spencer/astropi/pkg/raster"
)

func TestListImagesAndSample(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"b.jpg", "a.png", "notes.txt", "c.tif"} {
		test.That(t, os.WriteFile(filepath.Join(dir, n), nil, 0o644), test.ShouldBeNil)
	}
	test.That(t, os.Mkdir(filepath.Join(dir, "sub.png"), 0o755), test.ShouldBeNil)

	paths, err := listImages(dir)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, paths, test.ShouldResemble, []string{
		filepath.Join(dir, "a.png"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "c.tif"),
	})

	rnd := rand.New(rand.NewSource(1))
	test.That(t, sample(paths, 0, rnd), test.ShouldResemble, paths)
	test.That(t, sample(paths, 5, rnd), test.ShouldResemble, paths)
	picked := sample(paths, 2, rnd)
	test.That(t, picked, test.ShouldHaveLength, 2)
	test.That(t, picked[0] < picked[1], test.ShouldBeTrue)

	_, err = listImages(filepath.Join(dir, "missing"))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestBatch(t *testing.T) {
	in, out := t.TempDir(), t.TempDir()

	img := raster.New(60, 40)
	for y := 10; y < 30; y++ {
		for x := 20; x < 40; x++ {
			img.Set(x, y, 200, 60, 40)
		}
	}
	test.That(t, imaging.Save(img.ToImage(), filepath.Join(in, "image_1.png")), test.ShouldBeNil)
	test.That(t, os.WriteFile(filepath.Join(in, "broken.jpg"), []byte("nope"), 0o644), test.ShouldBeNil)

	results, err := frame.OpenResults(filepath.Join(out, "results.csv"))
	test.That(t, err, test.ShouldBeNil)

	c := &classifier{
		cfg:       config.Default(),
		outputDir: out,
		results:   results,
		logger:    golog.NewTestLogger(t),
	}

	paths, err := listImages(in)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, c.batch(paths, 2), test.ShouldEqual, 1)
	test.That(t, results.Close(), test.ShouldBeNil)

	_, err = os.Stat(filepath.Join(out, "image_1_mix.png"))
	test.That(t, err, test.ShouldBeNil)
	_, err = os.Stat(filepath.Join(out, "image_1_crop.png"))
	test.That(t, err, test.ShouldBeNil)
}
