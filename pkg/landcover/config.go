package landcover

import (
	"github.com/pkg/errors"

	"github.com/project-spencer/astropi/pkg/enhance"
	"github.com/project-spencer/astropi/pkg/index"
)

// Class names one of the four land-cover masks.
type Class string

const (
	White      Class = "white"
	Water      Class = "water"
	Vegetation Class = "vegetation"
	Other      Class = "other"
)

// Variant selects one of the tuned presets.
type Variant string

const (
	// VariantRed colours other land red, fills the index masks and lets
	// vegetation win every overlap.
	VariantRed Variant = "red"
	// VariantYellow colours other land yellow, computes the indices on the
	// contrast-boosted image and lets water win over vegetation.
	VariantYellow Variant = "yellow"
)

var ErrUnknownVariant = errors.New("unknown segmentation variant")

// Subtraction removes the Subtrahend mask from the Target mask.
type Subtraction struct {
	Target     Class `yaml:"target"`
	Subtrahend Class `yaml:"subtrahend"`
}

// Colour is a BGR triple.
type Colour struct {
	B uint8 `yaml:"b"`
	G uint8 `yaml:"g"`
	R uint8 `yaml:"r"`
}

var (
	ColourWhite  = Colour{255, 255, 255}
	ColourBlue   = Colour{255, 0, 0}
	ColourGreen  = Colour{0, 255, 0}
	ColourRed    = Colour{0, 0, 255}
	ColourYellow = Colour{0, 255, 255}
)

// FieldOfView configures the aperture mask.
type FieldOfView struct {
	Contrast   float64 `yaml:"contrast"`
	Brightness float64 `yaml:"brightness"`
	Threshold  uint8   `yaml:"threshold"`
	// PureWhiteOnly blacks out every pixel that is not saturated after the
	// boost, before thresholding.
	PureWhiteOnly bool `yaml:"pureWhiteOnly"`
}

type Config struct {
	Variant     Variant     `yaml:"variant"`
	FieldOfView FieldOfView `yaml:"fieldOfView"`

	// PreContrast is applied to the aperture-masked image before the white
	// mask is extracted.
	PreContrast    float64 `yaml:"preContrast"`
	WhiteContrast  float64 `yaml:"whiteContrast"`
	WhiteThreshold uint8   `yaml:"whiteThreshold"`
	// IndexOnEnhanced computes NDVI/NDWI on the PreContrast output instead of
	// the plain masked image.
	IndexOnEnhanced bool `yaml:"indexOnEnhanced"`

	NDVI index.Params `yaml:"ndvi"`
	NDWI index.Params `yaml:"ndwi"`

	// Subtractions run in order after the initial intersections.
	Subtractions []Subtraction `yaml:"subtractions"`
	// VegetationWins resolves any remaining vegetation overlap in favour of
	// vegetation, otherwise in favour of the other class.
	VegetationWins bool `yaml:"vegetationWins"`

	OtherColour Colour `yaml:"otherColour"`
}

func defaultFieldOfView() FieldOfView {
	return FieldOfView{
		Contrast:      enhance.Percent(100),
		Brightness:    100,
		Threshold:     10,
		PureWhiteOnly: true,
	}
}

// Red is the preset with red "other" land.
func Red() Config {
	return Config{
		Variant:        VariantRed,
		FieldOfView:    defaultFieldOfView(),
		PreContrast:    enhance.Percent(15),
		WhiteContrast:  enhance.Percent(75),
		WhiteThreshold: 232,
		NDVI: index.Params{
			Threshold: index.NDVIThreshold,
			Epsilon:   index.DefaultEpsilon,
			Blur:      5,
			Fill:      true,
		},
		NDWI: index.Params{
			Threshold: index.NDWIThreshold,
			Epsilon:   index.DefaultEpsilon,
			Blur:      5,
			Fill:      true,
		},
		Subtractions: []Subtraction{
			{Water, Vegetation},
			{Water, Other},
			{White, Vegetation},
			{Other, Vegetation},
		},
		VegetationWins: true,
		OtherColour:    ColourRed,
	}
}

// Yellow is the preset with yellow "other" land.
func Yellow() Config {
	return Config{
		Variant:         VariantYellow,
		FieldOfView:     defaultFieldOfView(),
		PreContrast:     enhance.Percent(75),
		WhiteContrast:   enhance.Percent(75),
		WhiteThreshold:  192,
		IndexOnEnhanced: true,
		NDVI: index.Params{
			Threshold: index.NDVIThreshold,
			Epsilon:   index.DefaultEpsilon,
			Blur:      5,
		},
		NDWI: index.Params{
			Threshold: index.NDWIThreshold,
			Epsilon:   index.DefaultEpsilon,
			Blur:      5,
		},
		Subtractions: []Subtraction{
			{Other, Water},
			{Other, Vegetation},
		},
		VegetationWins: true,
		OtherColour:    ColourYellow,
	}
}

// Preset returns the configuration for a named variant.
func Preset(v Variant) (Config, error) {
	switch v {
	case VariantRed, "":
		return Red(), nil
	case VariantYellow:
		return Yellow(), nil
	}
	return Config{}, errors.Wrapf(ErrUnknownVariant, "%q", v)
}

// Validate rejects subtraction steps naming unknown classes.
func (c Config) Validate() error {
	for _, s := range c.Subtractions {
		for _, cl := range []Class{s.Target, s.Subtrahend} {
			switch cl {
			case White, Water, Vegetation, Other:
			default:
				return errors.Errorf("unknown class %q in subtraction order", cl)
			}
		}
	}
	if c.NDVI.Blur > 1 && c.NDVI.Blur%2 == 0 || c.NDWI.Blur > 1 && c.NDWI.Blur%2 == 0 {
		return errors.New("blur kernel size must be odd")
	}
	return nil
}
