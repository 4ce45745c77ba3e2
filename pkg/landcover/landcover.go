// Package landcover classifies the pixels seen through the ISS window into
// ice and cloud, water, vegetation and other land, and renders them as a
// colour-coded composite.
package landcover

import (
	"github.com/project-spencer/astropi/pkg/enhance"
	"github.com/project-spencer/astropi/pkg/index"
	"github.com/project-spencer/astropi/pkg/mask"
	"github.com/project-spencer/astropi/pkg/raster"
)

// Classes holds the four class masks. After Segment they are pairwise
// disjoint and contained in the field of view.
type Classes struct {
	White      *raster.Mask
	Water      *raster.Mask
	Vegetation *raster.Mask
	Other      *raster.Mask
}

func (c *Classes) get(cl Class) **raster.Mask {
	switch cl {
	case White:
		return &c.White
	case Water:
		return &c.Water
	case Vegetation:
		return &c.Vegetation
	default:
		return &c.Other
	}
}

type Result struct {
	Composite   *raster.Image
	FieldOfView *raster.Mask
	Classes     Classes
	Coverage    Coverage
}

// FieldOfViewMask finds the circular aperture of the camera window. Everything
// outside of it is vignetted black and excluded from classification.
func FieldOfViewMask(img *raster.Image, cfg FieldOfView) *raster.Mask {
	boosted := enhance.Brightness(enhance.Contrast(img, cfg.Contrast), cfg.Brightness)
	if cfg.PureWhiteOnly {
		boosted = enhance.KeepWhite(boosted)
	}

	grey := mask.Threshold(enhance.Grayscale(boosted), cfg.Threshold)

	return mask.Fill(grey)
}

// WhiteMask selects the brightest pixels: ice, snow and cloud.
func WhiteMask(img *raster.Image, cfg Config) *raster.Mask {
	grey := enhance.Grayscale(enhance.Contrast(img, cfg.WhiteContrast))
	return mask.Threshold(grey, cfg.WhiteThreshold)
}

// Colourise paints the pixels of m above 192 with c and keeps the grey level
// elsewhere, then binarises every channel at 16.
func Colourise(m *raster.Mask, c Colour) *raster.Image {
	img := raster.New(m.X, m.Y)
	bin := func(v uint8) uint8 {
		if v > 16 {
			return 255
		}
		return 0
	}

	for p, v := range m.Pix {
		b, g, r := v, v, v
		if v > 192 {
			b, g, r = c.B, c.G, c.R
		}
		img.Pix[3*p] = bin(b)
		img.Pix[3*p+1] = bin(g)
		img.Pix[3*p+2] = bin(r)
	}
	return img
}

// Segment runs the full classification on one image. It does not keep any
// state between calls and is safe to run concurrently on different images.
func Segment(img *raster.Image, cfg Config) (*Result, error) {
	if err := raster.Validate(img); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fov := FieldOfViewMask(img, cfg.FieldOfView)

	masked := mask.Apply(img, fov)
	enhanced := enhance.Contrast(masked, cfg.PreContrast)

	src := masked
	if cfg.IndexOnEnhanced {
		src = enhanced
	}

	white := mask.And(WhiteMask(enhanced, cfg), fov)
	ndvi := index.VegetationMask(src, cfg.NDVI)
	ndwi := index.WaterMask(src, cfg.NDWI)

	notWhite := mask.And(mask.Not(white), fov)
	land := mask.Subtract(notWhite, ndwi)

	classes := Classes{
		White:      white,
		Water:      mask.And(notWhite, ndwi),
		Vegetation: mask.And(notWhite, ndvi),
		Other:      mask.And(notWhite, land),
	}

	for _, s := range cfg.Subtractions {
		target := classes.get(s.Target)
		*target = mask.Subtract(*target, *classes.get(s.Subtrahend))
	}

	// final pass, settles any overlap the order above left behind
	if cfg.VegetationWins {
		for _, cl := range []Class{White, Water, Other} {
			target := classes.get(cl)
			*target = mask.Subtract(*target, classes.Vegetation)
		}
	} else {
		for _, cl := range []Class{White, Water, Other} {
			classes.Vegetation = mask.Subtract(classes.Vegetation, *classes.get(cl))
		}
	}

	composite := mask.OrMasked(classes.White.Merge(), Colourise(classes.Water, ColourBlue), fov)
	composite = mask.OrMasked(composite, Colourise(classes.Vegetation, ColourGreen), fov)
	composite = mask.OrMasked(composite, Colourise(classes.Other, cfg.OtherColour), fov)

	return &Result{
		Composite:   composite,
		FieldOfView: fov,
		Classes:     classes,
		Coverage:    coverage(classes, fov),
	}, nil
}
