package model

import "math"

// Point represents a 2D point
type Point struct {
	X, Y float64
}

// Rect is an axis-aligned rectangle in PDF point space. The origin is the
// bottom-left corner of the page and Y grows upward, so Top >= Bottom for a
// well-formed rectangle.
type Rect struct {
	Left   float64
	Bottom float64
	Right  float64
	Top    float64
}

// NewRect creates a rectangle from its four edges
func NewRect(left, bottom, right, top float64) Rect {
	return Rect{Left: left, Bottom: bottom, Right: right, Top: top}
}

// NewRectFromPoints creates a rectangle spanning two corner points
func NewRectFromPoints(p1, p2 Point) Rect {
	return Rect{
		Left:   math.Min(p1.X, p2.X),
		Bottom: math.Min(p1.Y, p2.Y),
		Right:  math.Max(p1.X, p2.X),
		Top:    math.Max(p1.Y, p2.Y),
	}
}

// Width returns the horizontal extent
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the vertical extent
func (r Rect) Height() float64 {
	return r.Top - r.Bottom
}

// Center returns the center point
func (r Rect) Center() Point {
	return Point{
		X: (r.Left + r.Right) / 2,
		Y: (r.Bottom + r.Top) / 2,
	}
}

// ContainsPoint checks if a point is inside the rectangle
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right &&
		p.Y >= r.Bottom && p.Y <= r.Top
}

// Contains reports whether other lies entirely inside r (edges inclusive).
func (r Rect) Contains(other Rect) bool {
	return other.Left >= r.Left && other.Right <= r.Right &&
		other.Bottom >= r.Bottom && other.Top <= r.Top
}

// Intersects checks if two rectangles intersect
func (r Rect) Intersects(other Rect) bool {
	return !(r.Right < other.Left ||
		r.Left > other.Right ||
		r.Top < other.Bottom ||
		r.Bottom > other.Top)
}

// Union returns the smallest rectangle containing both r and other:
// min of left/bottom and max of right/top.
func (r Rect) Union(other Rect) Rect {
	return Rect{
		Left:   math.Min(r.Left, other.Left),
		Bottom: math.Min(r.Bottom, other.Bottom),
		Right:  math.Max(r.Right, other.Right),
		Top:    math.Max(r.Top, other.Top),
	}
}

// Scale multiplies every edge by k.
func (r Rect) Scale(k float64) Rect {
	return Rect{
		Left:   r.Left * k,
		Bottom: r.Bottom * k,
		Right:  r.Right * k,
		Top:    r.Top * k,
	}
}

// Area returns the area of the rectangle
func (r Rect) Area() float64 {
	return r.Width() * r.Height()
}

// IsEmpty returns true if the rectangle has zero area
func (r Rect) IsEmpty() bool {
	return r.Width() <= 0 || r.Height() <= 0
}
