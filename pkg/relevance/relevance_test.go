package relevance

import (
	"testing"

	"go.viam.com/test"

	"github.com/project-spencer/astropi/pkg/raster"
)

func composite(colours ...[3]uint8) *raster.Image {
	img := raster.New(len(colours), 1)
	for x, c := range colours {
		img.Set(x, 0, c[0], c[1], c[2])
	}
	return img
}

var (
	black  = [3]uint8{0, 0, 0}
	white  = [3]uint8{255, 255, 255}
	blue   = [3]uint8{255, 0, 0}
	green  = [3]uint8{0, 255, 0}
	red    = [3]uint8{0, 0, 255}
	yellow = [3]uint8{0, 255, 255}
)

func TestMeasure(t *testing.T) {
	c := Measure(composite(black, white, blue, green, red, yellow, green, green))
	test.That(t, c.Green, test.ShouldAlmostEqual, 37.5)
	test.That(t, c.Red, test.ShouldAlmostEqual, 12.5)

	test.That(t, Measure(raster.New(0, 0)), test.ShouldResemble, Counts{})
}

func TestScore(t *testing.T) {
	img := composite(green, red, black, black)
	test.That(t, Score(img, Standard), test.ShouldAlmostEqual, 10*25.0+25.0)
	test.That(t, Score(img, Boosted), test.ShouldAlmostEqual, 20*25.0+2*25.0)

	allBlack := raster.New(20, 10)
	test.That(t, Score(allBlack, Standard), test.ShouldEqual, 0.0)

	allGreen := composite(green, green, green)
	test.That(t, Measure(allGreen).Green, test.ShouldAlmostEqual, 100.0)
}

func TestScoreDependsOnlyOnClassCounts(t *testing.T) {
	a := composite(green, red, white, blue)
	b := composite(blue, white, red, green)
	test.That(t, Score(a, Standard), test.ShouldEqual, Score(b, Standard))

	// other colours with the same dominance pattern score the same
	c := composite([3]uint8{0, 128, 0}, [3]uint8{0, 0, 128}, white, blue)
	test.That(t, Score(c, Standard), test.ShouldEqual, Score(a, Standard))
}

func TestGate(t *testing.T) {
	g := DefaultGate()
	test.That(t, g.Accept(2.5), test.ShouldBeTrue)
	test.That(t, g.Accept(2.49), test.ShouldBeFalse)

	img := raster.New(100, 10)
	img.Set(0, 0, 0, 255, 0)
	s, ok := g.Evaluate(img)
	test.That(t, s, test.ShouldAlmostEqual, 1.0)
	test.That(t, ok, test.ShouldBeFalse)

	img.Set(1, 0, 0, 255, 0)
	img.Set(2, 0, 0, 255, 0)
	_, ok = g.Evaluate(img)
	test.That(t, ok, test.ShouldBeTrue)
}

func TestBoostedGateAgreesWithDefault(t *testing.T) {
	img := raster.New(100, 10)
	for i := 0; i < 6; i++ {
		img.Set(i, 0, 0, 255, 0)

		s, ok := BoostedGate().Evaluate(img)
		_, want := DefaultGate().Evaluate(img)
		test.That(t, ok, test.ShouldEqual, want)
		test.That(t, s, test.ShouldAlmostEqual, 20*float64(i+1)/10)
	}
}
