// Package geometry holds the pure size, orientation and rectangle math used to
// place mirrored content inside a window.
package geometry

import "fmt"

// Size is a width/height pair in pixels or window points.
type Size struct {
	Width  int
	Height int
}

// IsEmpty reports whether either dimension is zero (or negative).
func (s Size) IsEmpty() bool {
	return s.Width <= 0 || s.Height <= 0
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Width, s.Height)
}

// Point is a position in pixels or window points.
type Point struct {
	X int
	Y int
}

// Rect is an integer rectangle.
type Rect struct {
	X int
	Y int
	W int
	H int
}

// FRect is a float rectangle, used for rotated drawing where the origin may
// fall between pixels.
type FRect struct {
	X float32
	Y float32
	W float32
	H float32
}
