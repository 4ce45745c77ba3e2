package enhance

import (
	"testing"

	"go.viam.com/test"

	"github.com/project-spencer/astropi/pkg/raster"
)

func uniform(x, y int, b, g, r uint8) *raster.Image {
	img := raster.New(x, y)
	for yy := 0; yy < y; yy++ {
		for xx := 0; xx < x; xx++ {
			img.Set(xx, yy, b, g, r)
		}
	}
	return img
}

func TestPercent(t *testing.T) {
	test.That(t, Percent(75), test.ShouldAlmostEqual, 1.75)
	test.That(t, Percent(100), test.ShouldAlmostEqual, 2.0)
	test.That(t, Percent(0), test.ShouldAlmostEqual, 1.0)
}

func TestContrastUniformIsNoop(t *testing.T) {
	img := uniform(4, 4, 90, 90, 90)
	out := Contrast(img, 3)
	test.That(t, out.Pix, test.ShouldResemble, img.Pix)
}

func TestContrastSpreadsAroundMean(t *testing.T) {
	// half black, half grey 100: mean luminance 50
	img := raster.New(2, 1)
	img.Set(1, 0, 100, 100, 100)

	out := Contrast(img, 2)
	b, _, _ := out.At(0, 0)
	test.That(t, b, test.ShouldEqual, uint8(0))
	b, _, _ = out.At(1, 0)
	test.That(t, b, test.ShouldEqual, uint8(150))

	// the input is left untouched
	b, _, _ = img.At(1, 0)
	test.That(t, b, test.ShouldEqual, uint8(100))
}

func TestContrastSwapped(t *testing.T) {
	// the infrared pixel weighs as red in the swapped mean
	img := raster.New(2, 1)
	img.Set(0, 0, 200, 0, 0)

	b, _, _ := Contrast(img, 0.5).At(1, 0)
	test.That(t, b, test.ShouldEqual, uint8(6))
	b, _, _ = ContrastSwapped(img, 0.5).At(1, 0)
	test.That(t, b, test.ShouldEqual, uint8(15))

	rev := raster.New(2, 1)
	rev.Set(0, 0, 0, 0, 200)
	want := Contrast(rev, 0.5)
	got := ContrastSwapped(img, 0.5)
	test.That(t, got.Pix[3:], test.ShouldResemble, want.Pix[3:])
}

func TestBrightness(t *testing.T) {
	img := raster.New(3, 1)
	img.Set(0, 0, 1, 2, 3)
	img.Set(1, 0, 100, 200, 0)

	out := Brightness(img, 100)
	test.That(t, out.Pix[:6], test.ShouldResemble, []uint8{100, 200, 255, 255, 255, 0})

	half := Brightness(img, 0.5)
	test.That(t, half.Pix[3:6], test.ShouldResemble, []uint8{50, 100, 0})
}

func TestGrayscale(t *testing.T) {
	img := raster.New(4, 1)
	img.Set(0, 0, 255, 255, 255)
	img.Set(1, 0, 0, 0, 255)
	img.Set(2, 0, 0, 255, 0)
	img.Set(3, 0, 255, 0, 0)

	g := Grayscale(img)
	test.That(t, g.Pix, test.ShouldResemble, []uint8{255, 76, 150, 29})
}

func TestContrastMask(t *testing.T) {
	m := raster.NewMask(2, 1)
	m.Pix = []uint8{0, 100}
	out := ContrastMask(m, 2)
	test.That(t, out.Pix, test.ShouldResemble, []uint8{0, 150})
}

func TestKeepWhite(t *testing.T) {
	img := raster.New(2, 1)
	img.Set(0, 0, 255, 255, 255)
	img.Set(1, 0, 255, 254, 255)

	out := KeepWhite(img)
	test.That(t, out.Pix, test.ShouldResemble, []uint8{255, 255, 255, 0, 0, 0})
}
