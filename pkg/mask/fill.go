package mask

import (
	"image"

	"github.com/project-spencer/astropi/pkg/raster"
)

// FloodFill paints the 4-connected region of pixels equal to the seed value
// with v. Pixels already marked in visited are neither painted nor crossed,
// and every painted pixel is marked.
func FloodFill(m *raster.Mask, visited []bool, seed image.Point, v uint8) {
	if !seed.In(image.Rect(0, 0, m.X, m.Y)) {
		return
	}

	start := seed.Y*m.X + seed.X
	if visited[start] {
		return
	}

	target := m.Pix[start]
	stack := []int{start}
	visited[start] = true

	for len(stack) > 0 {
		p := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		m.Pix[p] = v

		x, y := p%m.X, p/m.X
		for _, n := range [4][2]int{{x - 1, y}, {x + 1, y}, {x, y - 1}, {x, y + 1}} {
			if n[0] < 0 || n[1] < 0 || n[0] >= m.X || n[1] >= m.Y {
				continue
			}
			q := n[1]*m.X + n[0]
			if visited[q] || m.Pix[q] != target {
				continue
			}
			visited[q] = true
			stack = append(stack, q)
		}
	}
}

// Fill closes holes in a binary mask. The background is found by flooding
// from the top-left and bottom-right corners, so at least one of them has to
// lie outside the shape.
func Fill(m *raster.Mask) *raster.Mask {
	if len(m.Pix) == 0 {
		return m.Clone()
	}

	flooded := m.Clone()
	visited := make([]bool, len(m.Pix))

	FloodFill(flooded, visited, image.Pt(0, 0), 255)
	FloodFill(flooded, visited, image.Pt(m.X-1, m.Y-1), 255)

	return Or(Not(flooded), m)
}
