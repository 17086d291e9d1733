// Package geom holds the small amount of 2D geometry the core needs for
// spawn spacing and carrier hit-testing.
package geom

import "math"

// Vec is a 2D point or displacement.
type Vec struct {
	X, Y float64
}

func (v Vec) Add(o Vec) Vec { return Vec{v.X + o.X, v.Y + o.Y} }
func (v Vec) Sub(o Vec) Vec { return Vec{v.X - o.X, v.Y - o.Y} }

// Lerp returns the point a fraction t of the way from v to o.
func (v Vec) Lerp(o Vec, t float64) Vec {
	return Vec{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// Rect is an axis-aligned rectangle given by its minimum corner and size.
type Rect struct {
	X, Y, W, H float64
}

// Centered returns the rectangle of size w×h centered on c.
func Centered(c Vec, w, h float64) Rect {
	return Rect{X: c.X - w/2, Y: c.Y - h/2, W: w, H: h}
}

func (r Rect) MaxX() float64 { return r.X + r.W }
func (r Rect) MaxY() float64 { return r.Y + r.H }

// Intersection returns the overlapping region of a and b and whether it is
// non-empty. Rectangles that only touch along an edge do not intersect.
func Intersection(a, b Rect) (Rect, bool) {
	x0 := math.Max(a.X, b.X)
	y0 := math.Max(a.Y, b.Y)
	x1 := math.Min(a.MaxX(), b.MaxX())
	y1 := math.Min(a.MaxY(), b.MaxY())
	if x1 <= x0 || y1 <= y0 {
		return Rect{}, false
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}, true
}

// IntersectionArea is the default overlap query: the area shared by a and b,
// zero when they do not intersect.
func IntersectionArea(a, b Rect) float64 {
	r, ok := Intersection(a, b)
	if !ok {
		return 0
	}
	return r.W * r.H
}
