package aperture

import (
	"image"

	"github.com/fogleman/gg"

	"github.com/project-spencer/astropi/pkg/raster"
)

// Overlay draws the detected window outline and the biased crop centre on
// top of img.
func Overlay(img *raster.Image, c Circle, cfg Config) image.Image {
	dc := gg.NewContextForImage(img.ToImage())

	dc.SetRGB(1, 0, 1)
	dc.SetLineWidth(2)
	dc.DrawCircle(c.X, c.Y, c.R)
	dc.Stroke()

	dc.SetRGB(1, 1, 0)
	dc.DrawCircle(float64(int(c.X+cfg.BiasX)), float64(int(c.Y)), 3)
	dc.Fill()

	return dc.Image()
}
