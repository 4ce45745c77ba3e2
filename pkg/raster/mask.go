package raster

// Mask is a single channel 8-bit raster, 0 for excluded and 255 for included
// pixels.
type Mask struct {
	X   int
	Y   int
	Pix []uint8
}

func NewMask(x, y int) *Mask {
	return &Mask{
		X:   x,
		Y:   y,
		Pix: make([]uint8, x*y),
	}
}

func (m *Mask) At(x, y int) uint8 {
	return m.Pix[y*m.X+x]
}

func (m *Mask) Set(x, y int, v uint8) {
	m.Pix[y*m.X+x] = v
}

func (m *Mask) Clone() *Mask {
	c := NewMask(m.X, m.Y)
	copy(c.Pix, m.Pix)
	return c
}

// Count returns the number of non-zero pixels.
func (m *Mask) Count() int {
	n := 0
	for _, v := range m.Pix {
		if v != 0 {
			n++
		}
	}
	return n
}

func (m *Mask) Equal(o *Mask) bool {
	if m.X != o.X || m.Y != o.Y {
		return false
	}
	for p := range m.Pix {
		if m.Pix[p] != o.Pix[p] {
			return false
		}
	}
	return true
}

// Merge replicates the mask into the three channels of an image.
func (m *Mask) Merge() *Image {
	img := New(m.X, m.Y)
	for p, v := range m.Pix {
		img.Pix[3*p] = v
		img.Pix[3*p+1] = v
		img.Pix[3*p+2] = v
	}
	return img
}

// Plane is a transient float raster, used for band-ratio indices.
type Plane struct {
	X   int
	Y   int
	Pix []float64
}

func NewPlane(x, y int) *Plane {
	return &Plane{
		X:   x,
		Y:   y,
		Pix: make([]float64, x*y),
	}
}
