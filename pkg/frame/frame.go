// Package frame runs the full classification of one camera frame: resize,
// segment, score and crop, and stores the products next to each other.
package frame

import (
	"image"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"

	"github.com/project-spencer/astropi/pkg/aperture"
	"github.com/project-spencer/astropi/pkg/config"
	"github.com/project-spencer/astropi/pkg/landcover"
	"github.com/project-spencer/astropi/pkg/raster"
)

// Outcome is everything derived from one frame.
type Outcome struct {
	Name     string
	Raw      *raster.Image
	Result   *landcover.Result
	Score    float64
	Relevant bool
	Crop     *raster.Image
	Took     time.Duration
}

// Classify downscales src to the configured box and runs the segmentation,
// the relevance gate and the aperture crop on it.
func Classify(name string, src image.Image, cfg *config.Config) (*Outcome, error) {
	start := time.Now()

	b := src.Bounds()
	if b.Dx() > cfg.Resize.Width || b.Dy() > cfg.Resize.Height {
		src = imaging.Fit(src, cfg.Resize.Width, cfg.Resize.Height, imaging.Lanczos)
	}
	raw := raster.FromImage(src)

	res, err := landcover.Segment(raw, cfg.Segmentation)
	if err != nil {
		return nil, errors.Wrapf(err, "could not segment %s", name)
	}

	score, relevant := cfg.Gate.Evaluate(res.Composite)

	crop, err := aperture.Crop(raw, cfg.Aperture)
	if err != nil {
		return nil, errors.Wrapf(err, "could not crop %s", name)
	}

	return &Outcome{
		Name:     name,
		Raw:      raw,
		Result:   res,
		Score:    score,
		Relevant: relevant,
		Crop:     crop,
		Took:     time.Since(start),
	}, nil
}

// Open loads and classifies the image file at path.
func Open(path string, cfg *config.Config) (*Outcome, error) {
	src, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %s", path)
	}
	return Classify(filepath.Base(path), src, cfg)
}

// Stem is the file name without its extension.
func Stem(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

// Save writes <stem>_mix.png and <stem>_crop.png to dir and returns their
// paths.
func (o *Outcome) Save(dir string) ([]string, error) {
	stem := Stem(o.Name)
	out := []string{
		filepath.Join(dir, stem+"_mix.png"),
		filepath.Join(dir, stem+"_crop.png"),
	}

	if err := imaging.Save(o.Result.Composite.ToImage(), out[0]); err != nil {
		return nil, errors.Wrapf(err, "could not save %s", out[0])
	}
	if err := imaging.Save(o.Crop.ToImage(), out[1]); err != nil {
		return nil, errors.Wrapf(err, "could not save %s", out[1])
	}
	return out, nil
}

// SaveOverlay writes <stem>_overlay.png with the detected window drawn on the
// raw frame. It reports false when no window was found.
func (o *Outcome) SaveOverlay(dir string, cfg aperture.Config) (bool, error) {
	c, ok := aperture.Detect(o.Raw, cfg)
	if !ok {
		return false, nil
	}

	p := filepath.Join(dir, Stem(o.Name)+"_overlay.png")
	if err := imaging.Save(aperture.Overlay(o.Raw, c, cfg), p); err != nil {
		return true, errors.Wrapf(err, "could not save %s", p)
	}
	return true, nil
}

// IsImage reports whether path has an extension the tools can decode.
func IsImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".tif", ".tiff":
		return true
	}
	return false
}
