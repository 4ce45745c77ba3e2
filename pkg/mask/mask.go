// Package mask implements the binary mask algebra the segmentation is built
// from: thresholds, set operations, hole filling and small morphology.
package mask

import (
	"github.com/project-spencer/astropi/pkg/raster"
)

// Threshold sets pixels strictly above t to 255 and the rest to 0.
func Threshold(m *raster.Mask, t uint8) *raster.Mask {
	out := raster.NewMask(m.X, m.Y)
	for p, v := range m.Pix {
		if v > t {
			out.Pix[p] = 255
		}
	}
	return out
}

// ToZero keeps pixels strictly above t and zeroes the rest.
func ToZero(m *raster.Mask, t uint8) *raster.Mask {
	out := raster.NewMask(m.X, m.Y)
	for p, v := range m.Pix {
		if v > t {
			out.Pix[p] = v
		}
	}
	return out
}

func Not(m *raster.Mask) *raster.Mask {
	out := raster.NewMask(m.X, m.Y)
	for p, v := range m.Pix {
		out.Pix[p] = ^v
	}
	return out
}

func And(a, b *raster.Mask) *raster.Mask {
	out := raster.NewMask(a.X, a.Y)
	for p := range a.Pix {
		out.Pix[p] = a.Pix[p] & b.Pix[p]
	}
	return out
}

func Or(a, b *raster.Mask) *raster.Mask {
	out := raster.NewMask(a.X, a.Y)
	for p := range a.Pix {
		out.Pix[p] = a.Pix[p] | b.Pix[p]
	}
	return out
}

// Subtract is a saturating a - b.
func Subtract(a, b *raster.Mask) *raster.Mask {
	out := raster.NewMask(a.X, a.Y)
	for p := range a.Pix {
		if a.Pix[p] > b.Pix[p] {
			out.Pix[p] = a.Pix[p] - b.Pix[p]
		}
	}
	return out
}

// Apply zeroes every channel of img where m is 0 and keeps it elsewhere.
func Apply(img *raster.Image, m *raster.Mask) *raster.Image {
	out := raster.New(img.X, img.Y)
	for p, v := range m.Pix {
		out.Pix[3*p] = img.Pix[3*p] & v
		out.Pix[3*p+1] = img.Pix[3*p+1] & v
		out.Pix[3*p+2] = img.Pix[3*p+2] & v
	}
	return out
}

// OrMasked ORs two images channel-wise inside m. Pixels outside m are 0.
func OrMasked(a, b *raster.Image, m *raster.Mask) *raster.Image {
	out := raster.New(a.X, a.Y)
	for p, v := range m.Pix {
		if v == 0 {
			continue
		}
		for c := 0; c < 3; c++ {
			out.Pix[3*p+c] = a.Pix[3*p+c] | b.Pix[3*p+c]
		}
	}
	return out
}
