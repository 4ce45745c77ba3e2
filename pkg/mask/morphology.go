package mask

import (
	"github.com/project-spencer/astropi/pkg/raster"
)

var (
	neighbours4 = [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	neighbours8 = [][2]int{{-1, -1}, {0, -1}, {1, -1}, {-1, 0}, {1, 0}, {-1, 1}, {0, 1}, {1, 1}}
)

// Erode replaces each pixel with the minimum of its 3x3 neighbourhood.
// Pixels outside the raster are ignored.
func Erode(m *raster.Mask, iterations int) *raster.Mask {
	return morph(m, iterations, func(a, b uint8) bool { return b < a })
}

// Dilate replaces each pixel with the maximum of its 3x3 neighbourhood.
func Dilate(m *raster.Mask, iterations int) *raster.Mask {
	return morph(m, iterations, func(a, b uint8) bool { return b > a })
}

func morph(m *raster.Mask, iterations int, better func(a, b uint8) bool) *raster.Mask {
	cur := m.Clone()
	for it := 0; it < iterations; it++ {
		next := raster.NewMask(m.X, m.Y)
		for y := 0; y < m.Y; y++ {
			for x := 0; x < m.X; x++ {
				v := cur.Pix[y*m.X+x]
				for _, d := range neighbours8 {
					nx, ny := x+d[0], y+d[1]
					if nx < 0 || ny < 0 || nx >= m.X || ny >= m.Y {
						continue
					}
					if n := cur.Pix[ny*m.X+nx]; better(v, n) {
						v = n
					}
				}
				next.Pix[y*m.X+x] = v
			}
		}
		cur = next
	}
	return cur
}

// Label assigns 8-connected components of non-zero pixels the labels 1..n in
// raster-scan order of their first pixel. Background pixels get 0.
func Label(m *raster.Mask) ([]int, int) {
	labels := make([]int, len(m.Pix))
	n := 0

	for start, v := range m.Pix {
		if v == 0 || labels[start] != 0 {
			continue
		}

		n++
		labels[start] = n
		stack := []int{start}
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := p%m.X, p/m.X
			for _, d := range neighbours8 {
				nx, ny := x+d[0], y+d[1]
				if nx < 0 || ny < 0 || nx >= m.X || ny >= m.Y {
					continue
				}
				q := ny*m.X + nx
				if m.Pix[q] == 0 || labels[q] != 0 {
					continue
				}
				labels[q] = n
				stack = append(stack, q)
			}
		}
	}

	return labels, n
}

// RemoveBorderComponents clears every component that touches the raster edge.
// On a water mask this keeps lakes and drops the open sea.
func RemoveBorderComponents(m *raster.Mask) *raster.Mask {
	labels, _ := Label(m)

	border := map[int]bool{}
	for x := 0; x < m.X; x++ {
		border[labels[x]] = true
		border[labels[(m.Y-1)*m.X+x]] = true
	}
	for y := 0; y < m.Y; y++ {
		border[labels[y*m.X]] = true
		border[labels[y*m.X+m.X-1]] = true
	}

	out := m.Clone()
	for p, l := range labels {
		if l != 0 && border[l] {
			out.Pix[p] = 0
		}
	}
	return out
}

// Boundary returns, per component label, the pixels of that component with a
// 4-neighbour outside it or on the raster edge. The result is indexed by
// label-1.
func Boundary(m *raster.Mask) [][][2]int {
	labels, n := Label(m)
	out := make([][][2]int, n)

	for p, l := range labels {
		if l == 0 {
			continue
		}
		x, y := p%m.X, p/m.X
		edge := false
		for _, d := range neighbours4 {
			nx, ny := x+d[0], y+d[1]
			if nx < 0 || ny < 0 || nx >= m.X || ny >= m.Y || labels[ny*m.X+nx] != l {
				edge = true
				break
			}
		}
		if edge {
			out[l-1] = append(out[l-1], [2]int{x, y})
		}
	}

	return out
}
