package raster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"go.viam.com/test"
	"golang.org/x/image/tiff"
)

func TestValidate(t *testing.T) {
	test.That(t, Validate(New(4, 3)), test.ShouldBeNil)

	for _, img := range []*Image{
		nil,
		New(0, 0),
		New(0, 5),
		{X: 2, Y: 2, Pix: make([]uint8, 4)},
	} {
		err := Validate(img)
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, errors.Is(err, ErrInvalidInput), test.ShouldBeTrue)
	}
}

func TestChannelOrder(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	src.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	src.Set(1, 0, color.NRGBA{R: 200, G: 100, B: 50, A: 255})

	img := FromImage(src)
	b, g, r := img.At(0, 0)
	test.That(t, []uint8{b, g, r}, test.ShouldResemble, []uint8{30, 20, 10})

	back := img.ToImage()
	test.That(t, back.Pix, test.ShouldResemble, src.Pix)
}

func TestFromGray(t *testing.T) {
	g := image.NewGray(image.Rect(0, 0, 3, 2))
	g.Pix = []uint8{1, 2, 3, 4, 5, 6}

	img := FromImage(g)
	b, gg, r := img.At(2, 1)
	test.That(t, []uint8{b, gg, r}, test.ShouldResemble, []uint8{6, 6, 6})
}

func TestDecode(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for p := 0; p < len(src.Pix); p += 4 {
		src.Pix[p] = 255
		src.Pix[p+3] = 255
	}

	var buf bytes.Buffer
	test.That(t, png.Encode(&buf, src), test.ShouldBeNil)

	img, err := Decode(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.X, test.ShouldEqual, 4)
	b, g, r := img.At(3, 3)
	test.That(t, []uint8{b, g, r}, test.ShouldResemble, []uint8{0, 0, 255})

	buf.Reset()
	test.That(t, tiff.Encode(&buf, src, nil), test.ShouldBeNil)
	img, err = Decode(&buf)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, img.Y, test.ShouldEqual, 4)

	_, err = Decode(bytes.NewReader([]byte("not an image")))
	test.That(t, err, test.ShouldNotBeNil)
}

func TestMaskHelpers(t *testing.T) {
	m := NewMask(3, 3)
	m.Set(1, 1, 255)
	m.Set(2, 0, 7)
	test.That(t, m.Count(), test.ShouldEqual, 2)

	c := m.Clone()
	test.That(t, c.Equal(m), test.ShouldBeTrue)
	c.Set(0, 0, 255)
	test.That(t, c.Equal(m), test.ShouldBeFalse)
	test.That(t, m.At(0, 0), test.ShouldEqual, uint8(0))

	img := m.Merge()
	b, g, r := img.At(1, 1)
	test.That(t, []uint8{b, g, r}, test.ShouldResemble, []uint8{255, 255, 255})
}
