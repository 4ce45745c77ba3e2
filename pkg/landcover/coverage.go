package landcover

import (
	"github.com/edaniels/golog"

	"github.com/project-spencer/astropi/pkg/raster"
)

// Coverage is the share of the whole frame, in percent, taken by each class
// and by the field of view.
type Coverage struct {
	FieldOfView float64 `json:"fov" csv:"fov%"`
	White       float64 `json:"white" csv:"white%"`
	Water       float64 `json:"water" csv:"water%"`
	Vegetation  float64 `json:"vegetation" csv:"vegetation%"`
	Other       float64 `json:"other" csv:"other%"`
}

func percent(m *raster.Mask) float64 {
	if len(m.Pix) == 0 {
		return 0
	}
	return float64(m.Count()) / float64(len(m.Pix)) * 100
}

func coverage(c Classes, fov *raster.Mask) Coverage {
	return Coverage{
		FieldOfView: percent(fov),
		White:       percent(c.White),
		Water:       percent(c.Water),
		Vegetation:  percent(c.Vegetation),
		Other:       percent(c.Other),
	}
}

// CloudCover is the fraction of the visible aperture covered by white pixels,
// which on ISS imagery is mostly cloud.
func (r *Result) CloudCover() float64 {
	fov := r.FieldOfView.Count()
	if fov == 0 {
		return 0
	}
	return float64(r.Classes.White.Count()) / float64(fov)
}

// Log reports the composition of a segmented frame.
func (r *Result) Log(logger golog.Logger, name string) {
	c := r.Coverage
	logger.Debugw("land cover",
		"image", name,
		"fov", c.FieldOfView,
		"white", c.White,
		"water", c.Water,
		"vegetation", c.Vegetation,
		"other", c.Other,
	)
	logger.Infof("cloud cover of %s: %.2f", name, r.CloudCover())
}
