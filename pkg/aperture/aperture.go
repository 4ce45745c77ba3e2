// Package aperture locates the round ISS window in a raw frame and crops the
// frame to it.
package aperture

import (
	"math"

	"github.com/project-spencer/astropi/pkg/landcover"
	"github.com/project-spencer/astropi/pkg/mask"
	"github.com/project-spencer/astropi/pkg/raster"
)

type Config struct {
	FieldOfView landcover.FieldOfView `yaml:"fieldOfView"`
	// a circle qualifies when min(h,w)/MinDivisor < r < min(h,w)/MaxDivisor
	MinDivisor float64 `yaml:"minDivisor"`
	MaxDivisor float64 `yaml:"maxDivisor"`
	// BiasX shifts the crop centre to the right, compensating the mounting
	// offset of the camera.
	BiasX float64 `yaml:"biasX"`
}

func DefaultConfig() Config {
	return Config{
		FieldOfView: landcover.Red().FieldOfView,
		MinDivisor:  4,
		MaxDivisor:  1.5,
		BiasX:       5,
	}
}

// Contours returns the border pixels of every 8-connected shape in m, in
// raster-scan order of the shapes.
func Contours(m *raster.Mask) [][][2]int {
	return mask.Boundary(m)
}

// Detect fits a circle to each contour of the field of view mask and returns
// the first one inside the radius band.
func Detect(img *raster.Image, cfg Config) (Circle, bool) {
	fov := landcover.FieldOfViewMask(img, cfg.FieldOfView)

	side := float64(min(img.X, img.Y))
	for _, contour := range Contours(fov) {
		c := MinEnclosingCircle(contour)
		// the crop side is 2*floor(r), so sub-pixel circles yield nothing
		if c.R < 1 {
			continue
		}
		if c.R > side/cfg.MinDivisor && c.R < side/cfg.MaxDivisor {
			return c, true
		}
	}

	return Circle{}, false
}

// Crop cuts a square of side 2*floor(r) around the detected window. When no
// window is found the result is a copy of img.
func Crop(img *raster.Image, cfg Config) (*raster.Image, error) {
	if err := raster.Validate(img); err != nil {
		return nil, err
	}

	c, ok := Detect(img, cfg)
	if !ok {
		return img.Clone(), nil
	}

	size := 2 * int(c.R)
	return RectSubPix(img, size, size, float64(int(c.X+cfg.BiasX)), float64(int(c.Y))), nil
}

// RectSubPix samples a w x h patch centred at (cx, cy) with bilinear
// interpolation. Samples outside img repeat the nearest edge pixel.
func RectSubPix(img *raster.Image, w, h int, cx, cy float64) *raster.Image {
	out := raster.New(w, h)

	clamp := func(v, n int) int {
		if v < 0 {
			return 0
		}
		if v >= n {
			return n - 1
		}
		return v
	}

	ox := cx - float64(w-1)*0.5
	oy := cy - float64(h-1)*0.5
	for y := 0; y < h; y++ {
		sy := oy + float64(y)
		y0 := int(math.Floor(sy))
		fy := sy - float64(y0)
		ya, yb := clamp(y0, img.Y), clamp(y0+1, img.Y)

		for x := 0; x < w; x++ {
			sx := ox + float64(x)
			x0 := int(math.Floor(sx))
			fx := sx - float64(x0)
			xa, xb := clamp(x0, img.X), clamp(x0+1, img.X)

			for ch := 0; ch < 3; ch++ {
				v00 := float64(img.Pix[3*(ya*img.X+xa)+ch])
				v01 := float64(img.Pix[3*(ya*img.X+xb)+ch])
				v10 := float64(img.Pix[3*(yb*img.X+xa)+ch])
				v11 := float64(img.Pix[3*(yb*img.X+xb)+ch])
				v := (1-fy)*((1-fx)*v00+fx*v01) + fy*((1-fx)*v10+fx*v11)
				out.Pix[3*(y*w+x)+ch] = uint8(v + 0.5)
			}
		}
	}

	return out
}
