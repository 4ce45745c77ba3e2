package mask

import (
	"math"

	"github.com/project-spencer/astropi/pkg/raster"
)

// fixed kernels used for small apertures when no sigma is given
var smallGaussian = map[int][]float64{
	1: {1},
	3: {0.25, 0.5, 0.25},
	5: {0.0625, 0.25, 0.375, 0.25, 0.0625},
	7: {0.03125, 0.109375, 0.21875, 0.28125, 0.21875, 0.109375, 0.03125},
}

// GaussianKernel returns a normalised 1D kernel of odd size k. A sigma <= 0 is
// derived from the size as 0.3*((k-1)*0.5-1)+0.8.
func GaussianKernel(k int, sigma float64) []float64 {
	if sigma <= 0 {
		if kernel, ok := smallGaussian[k]; ok {
			return kernel
		}
		sigma = 0.3*(float64(k-1)*0.5-1) + 0.8
	}

	kernel := make([]float64, k)
	sum := 0.0
	for i := range kernel {
		x := float64(i - (k-1)/2)
		kernel[i] = math.Exp(-x * x / (2 * sigma * sigma))
		sum += kernel[i]
	}
	for i := range kernel {
		kernel[i] /= sum
	}
	return kernel
}

// reflect101 maps an out of range coordinate back inside [0, n) mirroring
// around the edge pixel (dcb|abcd|cba).
func reflect101(i, n int) int {
	if n == 1 {
		return 0
	}
	for i < 0 || i >= n {
		if i < 0 {
			i = -i
		}
		if i >= n {
			i = 2*n - 2 - i
		}
	}
	return i
}

// GaussianBlur convolves the plane separably with a k x k Gaussian.
func GaussianBlur(p *raster.Plane, k int, sigma float64) *raster.Plane {
	kernel := GaussianKernel(k, sigma)
	r := (k - 1) / 2

	tmp := raster.NewPlane(p.X, p.Y)
	for y := 0; y < p.Y; y++ {
		for x := 0; x < p.X; x++ {
			v := 0.0
			for i, w := range kernel {
				v += w * p.Pix[y*p.X+reflect101(x+i-r, p.X)]
			}
			tmp.Pix[y*p.X+x] = v
		}
	}

	out := raster.NewPlane(p.X, p.Y)
	for y := 0; y < p.Y; y++ {
		for x := 0; x < p.X; x++ {
			v := 0.0
			for i, w := range kernel {
				v += w * tmp.Pix[reflect101(y+i-r, p.Y)*p.X+x]
			}
			out.Pix[y*p.X+x] = v
		}
	}

	return out
}
