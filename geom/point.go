// Package geom holds the pure geometry the game runs on: points in normalized camera
// space, face landmark lookups and the horizontal stretch applied around the nose.
package geom

import "math"

// Point is a 2D point. Landmarks are normalized to [0,1] on both axes; callers that
// work in screen pixels reuse the same type.
type Point struct {
	X, Y float64
}

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Sub returns p-q.
func (p Point) Sub(q Point) Point {
	return Point{X: p.X - q.X, Y: p.Y - q.Y}
}

// Mul scales both axes by k.
func (p Point) Mul(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// ToScreen maps a normalized point onto a w x h surface.
func (p Point) ToScreen(w, h float64) Point {
	return Point{X: p.X * w, Y: p.Y * h}
}

// Midpoint returns the point halfway between p and q.
func Midpoint(p, q Point) Point {
	return Point{X: (p.X + q.X) / 2, Y: (p.Y + q.Y) / 2}
}

// Distance returns the Euclidean distance between p1 and p2.
func Distance(p1, p2 Point) float64 {
	return math.Hypot(p2.X-p1.X, p2.Y-p1.Y)
}

// DistortPoint applies the horizontal stretch centred on nose: the offset from the nose
// along x is multiplied by fatFactor and y is left unchanged. A factor of 1 is the
// exact identity, which the weighted form below preserves in floating point.
func DistortPoint(p, nose Point, fatFactor float64) Point {
	return Point{
		X: nose.X*(1-fatFactor) + p.X*fatFactor,
		Y: p.Y,
	}
}
