// Package relevance scores classified composites and decides whether a frame
// is worth keeping.
package relevance

import (
	"github.com/project-spencer/astropi/pkg/raster"
)

// Weights multiply the vegetation and other-land percentages.
type Weights struct {
	Green float64 `yaml:"green"`
	Red   float64 `yaml:"red"`
}

var (
	// Standard favours vegetation ten to one.
	Standard = Weights{Green: 10, Red: 1}
	// Boosted doubles both weights.
	Boosted = Weights{Green: 20, Red: 2}
)

// Counts holds the percentage of green and red dominated pixels.
type Counts struct {
	Green float64 `json:"green"`
	Red   float64 `json:"red"`
}

// Measure counts pixels whose green (red) channel differs from both other
// channels, as a percentage of all pixels. White, black and yellow pixels do
// not count.
func Measure(composite *raster.Image) Counts {
	total := composite.X * composite.Y
	if total == 0 {
		return Counts{}
	}

	green, red := 0, 0
	for p := 0; p < total; p++ {
		b, g, r := composite.Pix[3*p], composite.Pix[3*p+1], composite.Pix[3*p+2]
		if g != b && g != r {
			green++
		}
		if r != b && r != g {
			red++
		}
	}

	return Counts{
		Green: float64(green) / float64(total) * 100,
		Red:   float64(red) / float64(total) * 100,
	}
}

// Score is the weighted sum of the green and red percentages of composite.
func Score(composite *raster.Image, w Weights) float64 {
	c := Measure(composite)
	return w.Green*c.Green + w.Red*c.Red
}

// Gate accepts frames whose score reaches Threshold.
type Gate struct {
	Weights   Weights `yaml:"weights"`
	Threshold float64 `yaml:"threshold"`
}

// DefaultGate keeps a frame once about a quarter of a percent of it is
// vegetation.
func DefaultGate() Gate {
	return Gate{Weights: Standard, Threshold: 2.5}
}

// BoostedGate scores with the doubled weights and cuts at 5.
func BoostedGate() Gate {
	return Gate{Weights: Boosted, Threshold: 5}
}

func (g Gate) Accept(score float64) bool {
	return score >= g.Threshold
}

// Evaluate scores composite and applies the gate.
func (g Gate) Evaluate(composite *raster.Image) (float64, bool) {
	s := Score(composite, g.Weights)
	return s, g.Accept(s)
}
