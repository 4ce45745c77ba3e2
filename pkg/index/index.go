// Package index computes the normalised difference band ratios used to find
// vegetation and water. On the NoIR camera the blue channel carries the
// near-infrared signal.
package index

import (
	"gonum.org/v1/gonum/stat"

	"github.com/project-spencer/astropi/pkg/mask"
	"github.com/project-spencer/astropi/pkg/raster"
)

const (
	// DefaultEpsilon replaces zero denominators.
	DefaultEpsilon = 0.001

	NDVIThreshold = 0.25
	NDWIThreshold = 0.01
)

// Params controls how an index plane is turned into a binary mask.
type Params struct {
	Threshold float64 `yaml:"threshold"`
	Epsilon   float64 `yaml:"epsilon"`
	// Blur is the Gaussian kernel size, 0 or 1 disables blurring.
	Blur  int     `yaml:"blur"`
	Sigma float64 `yaml:"sigma"`
	Fill  bool    `yaml:"fill"`
}

// ratio computes (a-b)/(a+b) for two channels of img.
func ratio(img *raster.Image, a, b int, eps float64) *raster.Plane {
	p := raster.NewPlane(img.X, img.Y)
	for i := range p.Pix {
		va := float64(img.Pix[3*i+a])
		vb := float64(img.Pix[3*i+b])
		den := va + vb
		if den == 0 {
			den = eps
		}
		p.Pix[i] = (va - vb) / den
	}
	return p
}

// NDVI is (IR - R) / (IR + R).
func NDVI(img *raster.Image, eps float64) *raster.Plane {
	return ratio(img, 0, 2, eps)
}

// NDWI is (G - IR) / (G + IR).
func NDWI(img *raster.Image, eps float64) *raster.Plane {
	return ratio(img, 1, 0, eps)
}

// Threshold marks pixels whose value is strictly above t.
func Threshold(p *raster.Plane, t float64) *raster.Mask {
	m := raster.NewMask(p.X, p.Y)
	for i, v := range p.Pix {
		if v > t {
			m.Pix[i] = 255
		}
	}
	return m
}

// Mask blurs and thresholds an index plane.
func Mask(p *raster.Plane, params Params) *raster.Mask {
	if params.Blur > 1 {
		p = mask.GaussianBlur(p, params.Blur, params.Sigma)
	}

	m := Threshold(p, params.Threshold)
	if params.Fill {
		m = mask.Fill(m)
	}
	return m
}

// VegetationMask is the NDVI mask of img.
func VegetationMask(img *raster.Image, params Params) *raster.Mask {
	return Mask(NDVI(img, params.Epsilon), params)
}

// WaterMask is the NDWI mask of img.
func WaterMask(img *raster.Image, params Params) *raster.Mask {
	return Mask(NDWI(img, params.Epsilon), params)
}

// Mean averages the plane over all pixels, treating pixels outside m as 0.
// A nil mask averages the plane as is.
func Mean(p *raster.Plane, m *raster.Mask) float64 {
	if len(p.Pix) == 0 {
		return 0
	}
	if m == nil {
		return stat.Mean(p.Pix, nil)
	}

	v := make([]float64, len(p.Pix))
	for i := range v {
		if m.Pix[i] != 0 {
			v[i] = p.Pix[i]
		}
	}
	return stat.Mean(v, nil)
}

// FromMask lifts an 8-bit raster into a plane.
func FromMask(m *raster.Mask) *raster.Plane {
	p := raster.NewPlane(m.X, m.Y)
	for i, v := range m.Pix {
		p.Pix[i] = float64(v)
	}
	return p
}

// Normalize linearly stretches the plane to 0..255 and rounds it to bytes.
// A flat plane maps to 0.
func Normalize(p *raster.Plane) *raster.Mask {
	m := raster.NewMask(p.X, p.Y)
	if len(p.Pix) == 0 {
		return m
	}

	lo, hi := p.Pix[0], p.Pix[0]
	for _, v := range p.Pix {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	if hi == lo {
		return m
	}

	scale := 255 / (hi - lo)
	for i, v := range p.Pix {
		m.Pix[i] = uint8((v-lo)*scale + 0.5)
	}
	return m
}
