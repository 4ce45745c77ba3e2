// Package dataset derives per-image area summaries of water and vegetation
// from the index masks, scaled to square metres by the camera geometry.
package dataset

import (
	"github.com/pkg/errors"

	"github.com/project-spencer/astropi/pkg/enhance"
	"github.com/project-spencer/astropi/pkg/index"
	"github.com/project-spencer/astropi/pkg/mask"
	"github.com/project-spencer/astropi/pkg/raster"
)

const (
	// SensorHeight is the physical height of the camera sensor in metres.
	SensorHeight = 0.004712
	// FocalLength of the camera lens in metres.
	FocalLength = 0.005

	DefaultAltitude  = 416037
	DefaultImageSize = 2888

	waterContrast = 50
	maskContrast  = 2.5
	darkLevel     = 16
	maskLevel     = 80
	morphPasses   = 3
	indexEpsilon  = 1e-6
)

// EstimateDistance is the ground distance covered by the frame height from
// the given altitude in metres.
func EstimateDistance(alt float64) float64 {
	return alt * SensorHeight / FocalLength
}

// Params describe where a frame was taken.
type Params struct {
	Date      string
	Altitude  float64
	ImageSize int
}

// Masks are the intermediate rasters of one summary.
type Masks struct {
	// Dark is the coarse water mask, Land its inverse.
	Dark       *raster.Mask
	Land       *raster.Mask
	NDWI       *raster.Mask
	NDVI       *raster.Mask
	Water      *raster.Mask
	Lakes      *raster.Mask
	Sea        *raster.Mask
	Vegetation *raster.Mask
}

// WaterMask marks the pixels that stay dark after a strong contrast stretch.
// The stretch pivots on the luminance of the swapped channel order, which is
// what the published dataset was computed with.
func WaterMask(img *raster.Image) *raster.Mask {
	gray := enhance.Grayscale(enhance.ContrastSwapped(img, waterContrast))
	m := raster.NewMask(gray.X, gray.Y)
	for i, v := range gray.Pix {
		if v < darkLevel {
			m.Pix[i] = 255
		}
	}
	return m
}

// refine cleans a normalised index raster into a binary mask restricted to
// the pixels where within is set.
func refine(m, within *raster.Mask) *raster.Mask {
	m = enhance.ContrastMask(m, maskContrast)
	m = mask.ToZero(m, maskLevel)
	m = enhance.ContrastMask(m, maskContrast)
	m = mask.Erode(m, morphPasses)
	m = mask.Dilate(m, morphPasses)
	m = mask.Threshold(m, maskLevel)
	return mask.And(m, mask.Threshold(within, darkLevel))
}

// Summarise computes the area summary of one frame.
func Summarise(img *raster.Image, p Params) (Row, *Masks, error) {
	if err := raster.Validate(img); err != nil {
		return Row{}, nil, err
	}
	if p.Altitude <= 0 {
		return Row{}, nil, errors.Errorf("altitude must be positive, got %v", p.Altitude)
	}
	if p.ImageSize <= 0 {
		return Row{}, nil, errors.Errorf("image size must be positive, got %d", p.ImageSize)
	}

	ms := &Masks{}
	ms.Dark = WaterMask(img)
	ms.Land = mask.Not(ms.Dark)

	ms.NDVI = mask.And(index.Normalize(index.NDVI(img, indexEpsilon)), ms.Land)
	ms.NDWI = mask.And(index.Normalize(index.NDWI(img, indexEpsilon)), ms.Dark)

	ms.Vegetation = refine(ms.NDVI, ms.Land)
	ms.Water = refine(ms.NDWI, ms.Dark)
	ms.Lakes = mask.RemoveBorderComponents(ms.Water)
	ms.Sea = mask.And(ms.Water, mask.Not(ms.Lakes))

	mppx := EstimateDistance(p.Altitude) / float64(p.ImageSize)
	area := mppx * mppx

	ndwi := index.FromMask(ms.NDWI)
	ndvi := index.FromMask(ms.NDVI)
	veg := ms.Vegetation.Count()

	row := Row{
		Date:                 p.Date,
		MetresPerPixel:       mppx,
		PixelArea:            area,
		WaterArea:            area * float64(ms.Water.Count()),
		LakesArea:            area * float64(ms.Lakes.Count()),
		SeaArea:              area * float64(ms.Sea.Count()),
		VegetationArea:       area * float64(veg),
		MeanNDWI:             index.Mean(ndwi, nil),
		MeanLakesNDWI:        index.Mean(ndwi, ms.Lakes),
		MeanSeaNDWI:          index.Mean(ndwi, ms.Sea),
		MeanNDVI:             index.Mean(ndvi, nil),
		VegetationPercentage: float64(veg) / float64(img.X*img.Y) * 100,
	}
	return row, ms, nil
}
