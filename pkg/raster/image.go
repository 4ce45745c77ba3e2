// Package raster holds the pixel containers shared by the segmentation stages:
// three channel BGR images, single channel masks and float planes.
package raster

import (
	"image"
	"image/color"
	"io"

	// registered for image.Decode
	_ "image/jpeg"
	_ "image/png"

	"github.com/pkg/errors"
	_ "golang.org/x/image/tiff"
)

// ErrInvalidInput is returned for rasters that are nil, empty or whose pixel
// buffer does not match their dimensions.
var ErrInvalidInput = errors.New("invalid input raster")

// Image is an 8-bit three channel raster in B,G,R order. Channel 0 carries the
// near-infrared signal of the NoIR camera, channel 2 visible red.
type Image struct {
	X   int
	Y   int
	Pix []uint8
}

func New(x, y int) *Image {
	return &Image{
		X:   x,
		Y:   y,
		Pix: make([]uint8, 3*x*y),
	}
}

func (i *Image) At(x, y int) (b, g, r uint8) {
	o := 3 * (y*i.X + x)
	return i.Pix[o], i.Pix[o+1], i.Pix[o+2]
}

func (i *Image) Set(x, y int, b, g, r uint8) {
	o := 3 * (y*i.X + x)
	i.Pix[o] = b
	i.Pix[o+1] = g
	i.Pix[o+2] = r
}

func (i *Image) Bounds() image.Rectangle {
	return image.Rect(0, 0, i.X, i.Y)
}

func (i *Image) Clone() *Image {
	c := New(i.X, i.Y)
	copy(c.Pix, i.Pix)
	return c
}

// Validate checks the preconditions every pipeline stage relies on.
func Validate(i *Image) error {
	if i == nil {
		return errors.Wrap(ErrInvalidInput, "nil image")
	}
	if i.X <= 0 || i.Y <= 0 {
		return errors.Wrapf(ErrInvalidInput, "empty image %dx%d", i.X, i.Y)
	}
	if len(i.Pix) != 3*i.X*i.Y {
		return errors.Wrapf(ErrInvalidInput, "got %d bytes for a %dx%d bgr image", len(i.Pix), i.X, i.Y)
	}
	return nil
}

// FromImage converts any decoded image. Gray images are replicated into all
// three channels.
func FromImage(i image.Image) *Image {
	b := i.Bounds()
	img := New(b.Dx(), b.Dy())

	if g, ok := i.(*image.Gray); ok {
		for y := 0; y < b.Dy(); y++ {
			row := g.Pix[y*g.Stride : y*g.Stride+b.Dx()]
			for x, v := range row {
				img.Set(x, y, v, v, v)
			}
		}
		return img
	}

	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(i.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			img.Set(x, y, c.B, c.G, c.R)
		}
	}

	return img
}

func (i *Image) ToImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, i.X, i.Y))

	for p := 0; p < i.X*i.Y; p++ {
		img.Pix[4*p] = i.Pix[3*p+2]
		img.Pix[4*p+1] = i.Pix[3*p+1]
		img.Pix[4*p+2] = i.Pix[3*p]
		img.Pix[4*p+3] = 0xff
	}

	return img
}

// Decode reads a jpeg, png or tiff encoded image.
func Decode(r io.Reader) (*Image, error) {
	i, _, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "could not decode image")
	}

	img := FromImage(i)
	if err := Validate(img); err != nil {
		return nil, err
	}

	return img, nil
}
