package aperture

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/project-spencer/astropi/pkg/raster"
)

func whiteDisk(w, h, cx, cy, r int) *raster.Image {
	img := raster.New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := x-cx, y-cy
			if dx*dx+dy*dy <= r*r {
				img.Set(x, y, 255, 255, 255)
			}
		}
	}
	return img
}

func TestMinEnclosingCircle(t *testing.T) {
	c := MinEnclosingCircle([][2]int{{0, 0}, {10, 0}})
	test.That(t, c.X, test.ShouldAlmostEqual, 5.0)
	test.That(t, c.R, test.ShouldAlmostEqual, 5.0)

	c = MinEnclosingCircle([][2]int{{0, 0}, {4, 0}, {0, 4}, {4, 4}, {2, 2}})
	test.That(t, c.X, test.ShouldAlmostEqual, 2.0)
	test.That(t, c.Y, test.ShouldAlmostEqual, 2.0)
	test.That(t, c.R, test.ShouldAlmostEqual, math.Sqrt(8))

	c = MinEnclosingCircle([][2]int{{3, 7}})
	test.That(t, c.R, test.ShouldEqual, 0.0)

	test.That(t, MinEnclosingCircle(nil), test.ShouldResemble, Circle{})
}

func TestMinEnclosingCircleContainsAll(t *testing.T) {
	rnd := rand.New(rand.NewSource(5))
	for i := 0; i < 10; i++ {
		pts := make([][2]int, 200)
		for j := range pts {
			pts[j] = [2]int{rnd.Intn(300), rnd.Intn(100)}
		}
		c := MinEnclosingCircle(pts)
		for _, p := range pts {
			test.That(t, math.Hypot(float64(p[0])-c.X, float64(p[1])-c.Y), test.ShouldBeLessThanOrEqualTo, c.R+1e-6)
		}
	}
}

func TestCollinear(t *testing.T) {
	c := circleFrom3(0, 0, 2, 0, 6, 0)
	test.That(t, c.X, test.ShouldAlmostEqual, 3.0)
	test.That(t, c.R, test.ShouldAlmostEqual, 3.0)
}

func TestCropDisk(t *testing.T) {
	img := whiteDisk(160, 120, 80, 60, 40)

	c, ok := Detect(img, DefaultConfig())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, c.X, test.ShouldAlmostEqual, 80.0, 0.5)
	test.That(t, c.Y, test.ShouldAlmostEqual, 60.0, 0.5)
	test.That(t, c.R, test.ShouldAlmostEqual, 40.0, 1)

	out, err := Crop(img, DefaultConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.X, test.ShouldEqual, 2*int(c.R))
	test.That(t, out.Y, test.ShouldEqual, out.X)
	test.That(t, math.Abs(float64(out.X-80)), test.ShouldBeLessThanOrEqualTo, 2.0)

	// the window centre lands near the middle of the crop, shifted left by the bias
	b, _, _ := out.At(out.X/2-5, out.Y/2)
	test.That(t, b, test.ShouldEqual, uint8(255))
}

func TestCropWithoutWindow(t *testing.T) {
	// far too small to be the window
	img := whiteDisk(160, 120, 80, 60, 10)
	out, err := Crop(img, DefaultConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.X, test.ShouldEqual, 160)
	test.That(t, out.Pix, test.ShouldResemble, img.Pix)

	black := raster.New(50, 40)
	out, err = Crop(black, DefaultConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.Pix, test.ShouldResemble, black.Pix)

	_, err = Crop(nil, DefaultConfig())
	test.That(t, errors.Is(err, raster.ErrInvalidInput), test.ShouldBeTrue)
}

func TestCropSubPixelWindow(t *testing.T) {
	img := raster.New(20, 20)
	img.Set(9, 10, 255, 255, 255)
	img.Set(10, 10, 255, 255, 255)

	cfg := DefaultConfig()
	cfg.MinDivisor = 100

	_, ok := Detect(img, cfg)
	test.That(t, ok, test.ShouldBeFalse)

	out, err := Crop(img, cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out.X, test.ShouldEqual, 20)
	test.That(t, out.Pix, test.ShouldResemble, img.Pix)
}

func TestDetectSkipsNoise(t *testing.T) {
	img := whiteDisk(160, 120, 90, 64, 38)
	// a speck in the top left corner comes first in scan order
	img.Set(2, 2, 255, 255, 255)
	img.Set(3, 2, 255, 255, 255)

	c, ok := Detect(img, DefaultConfig())
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, c.X, test.ShouldAlmostEqual, 90.0, 0.5)
}

func TestRectSubPix(t *testing.T) {
	img := raster.New(3, 1)
	img.Set(0, 0, 0, 0, 0)
	img.Set(1, 0, 100, 100, 100)
	img.Set(2, 0, 200, 200, 200)

	// odd size, integer centre: plain copy
	out := RectSubPix(img, 3, 1, 1, 0)
	test.That(t, out.Pix, test.ShouldResemble, img.Pix)

	// even size samples between pixels
	out = RectSubPix(img, 2, 1, 1, 0)
	test.That(t, out.Pix, test.ShouldResemble, []uint8{50, 50, 50, 150, 150, 150})

	// edges replicate
	out = RectSubPix(img, 3, 1, 3, 0)
	test.That(t, out.Pix, test.ShouldResemble, []uint8{
		200, 200, 200,
		200, 200, 200,
		200, 200, 200,
	})
}

func TestOverlay(t *testing.T) {
	img := whiteDisk(60, 60, 30, 30, 20)
	c, ok := Detect(img, DefaultConfig())
	test.That(t, ok, test.ShouldBeTrue)

	o := Overlay(img, c, DefaultConfig())
	test.That(t, o.Bounds().Dx(), test.ShouldEqual, 60)
}
