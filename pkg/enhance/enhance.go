// Package enhance reproduces the PIL ImageEnhance operators the capture
// scripts were tuned with, so thresholds carry over unchanged.
package enhance

import (
	"github.com/project-spencer/astropi/pkg/raster"
)

// Percent converts the "contrast k" convention (k percent above neutral) into
// an enhancement factor.
func Percent(k float64) float64 {
	return 1 + k/100
}

// luma is the ITU-R 601-2 transform PIL uses for "L" conversion, in 16 bit
// fixed point.
func luma(b, g, r uint8) uint8 {
	return uint8((uint32(r)*19595 + uint32(g)*38470 + uint32(b)*7471 + 0x8000) >> 16)
}

// blend interpolates between a degenerate value and v, truncating like PIL.
func blend(degenerate float64, v uint8, factor float64) uint8 {
	t := float32(degenerate + factor*(float64(v)-degenerate))
	if t <= 0 {
		return 0
	}
	if t >= 255 {
		return 255
	}
	return uint8(t)
}

// Contrast scales every channel away from the mean luminance of the image.
func Contrast(img *raster.Image, factor float64) *raster.Image {
	return contrast(img, factor, luma)
}

// ContrastSwapped is Contrast with the mean luminance taken as if the
// channels were stored red first, the way a BGR array handed to PIL is read.
func ContrastSwapped(img *raster.Image, factor float64) *raster.Image {
	return contrast(img, factor, func(b, g, r uint8) uint8 { return luma(r, g, b) })
}

func contrast(img *raster.Image, factor float64, lum func(b, g, r uint8) uint8) *raster.Image {
	var sum uint64
	n := img.X * img.Y
	for p := 0; p < n; p++ {
		sum += uint64(lum(img.Pix[3*p], img.Pix[3*p+1], img.Pix[3*p+2]))
	}

	mean := 0.0
	if n > 0 {
		mean = float64(int(float64(sum)/float64(n) + 0.5))
	}

	out := raster.New(img.X, img.Y)
	for p, v := range img.Pix {
		out.Pix[p] = blend(mean, v, factor)
	}
	return out
}

// ContrastMask is Contrast for single channel rasters.
func ContrastMask(m *raster.Mask, factor float64) *raster.Mask {
	var sum uint64
	for _, v := range m.Pix {
		sum += uint64(v)
	}

	mean := 0.0
	if len(m.Pix) > 0 {
		mean = float64(int(float64(sum)/float64(len(m.Pix)) + 0.5))
	}

	out := raster.NewMask(m.X, m.Y)
	for p, v := range m.Pix {
		out.Pix[p] = blend(mean, v, factor)
	}
	return out
}

// Brightness scales every channel towards or away from black.
func Brightness(img *raster.Image, factor float64) *raster.Image {
	out := raster.New(img.X, img.Y)
	for p, v := range img.Pix {
		out.Pix[p] = blend(0, v, factor)
	}
	return out
}

// Grayscale uses the OpenCV BGR2GRAY weights in 14 bit fixed point.
func Grayscale(img *raster.Image) *raster.Mask {
	m := raster.NewMask(img.X, img.Y)
	for p := range m.Pix {
		b, g, r := uint32(img.Pix[3*p]), uint32(img.Pix[3*p+1]), uint32(img.Pix[3*p+2])
		m.Pix[p] = uint8((b*1868 + g*9617 + r*4899 + (1 << 13)) >> 14)
	}
	return m
}

// KeepWhite blacks out every pixel that is not pure white.
func KeepWhite(img *raster.Image) *raster.Image {
	out := raster.New(img.X, img.Y)
	for p := 0; p < img.X*img.Y; p++ {
		if img.Pix[3*p] == 255 && img.Pix[3*p+1] == 255 && img.Pix[3*p+2] == 255 {
			out.Pix[3*p] = 255
			out.Pix[3*p+1] = 255
			out.Pix[3*p+2] = 255
		}
	}
	return out
}
