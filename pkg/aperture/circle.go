package aperture

import (
	"math"
	"math/rand"
)

// Circle is a centre and radius in pixel coordinates.
type Circle struct {
	X float64
	Y float64
	R float64
}

const circleEps = 1e-7

func (c Circle) contains(x, y float64) bool {
	return math.Hypot(x-c.X, y-c.Y) <= c.R*(1+circleEps)+circleEps
}

func circleFrom2(ax, ay, bx, by float64) Circle {
	return Circle{
		X: (ax + bx) / 2,
		Y: (ay + by) / 2,
		R: math.Hypot(ax-bx, ay-by) / 2,
	}
}

func circleFrom3(ax, ay, bx, by, cx, cy float64) Circle {
	d := 2 * (ax*(by-cy) + bx*(cy-ay) + cx*(ay-by))
	if math.Abs(d) < 1e-12 {
		// collinear, the widest pair spans the circle
		c := circleFrom2(ax, ay, bx, by)
		for _, o := range []Circle{circleFrom2(ax, ay, cx, cy), circleFrom2(bx, by, cx, cy)} {
			if o.R > c.R {
				c = o
			}
		}
		return c
	}

	a2 := ax*ax + ay*ay
	b2 := bx*bx + by*by
	c2 := cx*cx + cy*cy
	x := (a2*(by-cy) + b2*(cy-ay) + c2*(ay-by)) / d
	y := (a2*(cx-bx) + b2*(ax-cx) + c2*(bx-ax)) / d
	return Circle{X: x, Y: y, R: math.Hypot(ax-x, ay-y)}
}

// MinEnclosingCircle returns the smallest circle containing every point, using
// Welzl's algorithm over a shuffled copy of the points. The shuffle is seeded
// so results are reproducible.
func MinEnclosingCircle(points [][2]int) Circle {
	if len(points) == 0 {
		return Circle{}
	}

	pts := make([][2]float64, len(points))
	for i, p := range points {
		pts[i] = [2]float64{float64(p[0]), float64(p[1])}
	}
	rnd := rand.New(rand.NewSource(1))
	rnd.Shuffle(len(pts), func(i, j int) { pts[i], pts[j] = pts[j], pts[i] })

	c := Circle{X: pts[0][0], Y: pts[0][1]}
	for i := 1; i < len(pts); i++ {
		if c.contains(pts[i][0], pts[i][1]) {
			continue
		}
		c = Circle{X: pts[i][0], Y: pts[i][1]}
		for j := 0; j < i; j++ {
			if c.contains(pts[j][0], pts[j][1]) {
				continue
			}
			c = circleFrom2(pts[i][0], pts[i][1], pts[j][0], pts[j][1])
			for k := 0; k < j; k++ {
				if c.contains(pts[k][0], pts[k][1]) {
					continue
				}
				c = circleFrom3(pts[i][0], pts[i][1], pts[j][0], pts[j][1], pts[k][0], pts[k][1])
			}
		}
	}

	return c
}
