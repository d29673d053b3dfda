package geometry

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/vishalkuo/bimap"
)

// Orientation is one of the 8 transforms applied between frame space and
// content space.
//
// Bit 2 is the horizontal flip, bits 0-1 the number of clockwise quarter
// turns. A set bit 0 means width and height are swapped.
type Orientation uint8

const (
	Orientation0 Orientation = iota
	Orientation90
	Orientation180
	Orientation270
	OrientationFlip0
	OrientationFlip90
	OrientationFlip180
	OrientationFlip270
)

var orientationNames = bimap.NewBiMap[string, Orientation]()

func init() {
	for name, o := range map[string]Orientation{
		"0":       Orientation0,
		"90":      Orientation90,
		"180":     Orientation180,
		"270":     Orientation270,
		"flip0":   OrientationFlip0,
		"flip90":  OrientationFlip90,
		"flip180": OrientationFlip180,
		"flip270": OrientationFlip270,
	} {
		orientationNames.Insert(name, o)
	}
}

// ParseOrientation parses names like "90" or "flip270".
func ParseOrientation(name string) (Orientation, error) {
	o, ok := orientationNames.Get(strings.ToLower(strings.TrimSpace(name)))
	if !ok {
		return Orientation0, errors.Errorf("unsupported orientation: %q (expected one of 0, 90, 180, 270, flip0, flip90, flip180, flip270)", name)
	}
	return o, nil
}

func (o Orientation) String() string {
	if name, ok := orientationNames.GetInverse(o); ok {
		return name
	}
	return "unknown"
}

// IsSwap reports whether the orientation swaps width and height.
func (o Orientation) IsSwap() bool {
	return o&1 != 0
}

// IsMirror reports whether the orientation includes a horizontal flip.
func (o Orientation) IsMirror() bool {
	return o&4 != 0
}

// Rotation returns the number of clockwise quarter turns.
func (o Orientation) Rotation() int {
	return int(o & 3)
}

// Apply composes transform on top of o.
func (o Orientation) Apply(transform Orientation) Orientation {
	srcRotation := o & 3
	if o.IsSwap() && transform.IsMirror() {
		// Moving the transform flip to the left of the source rotation
		// inverts that rotation, which for 90/270 is a 180 degree shift.
		srcRotation += 2
	}
	flip := (o & 4) ^ (transform & 4)
	rotation := (srcRotation + transform&3) % 4
	return flip | rotation
}

// OrientedSize returns size as seen after applying o.
func OrientedSize(size Size, o Orientation) Size {
	if o.IsSwap() {
		return Size{Width: size.Height, Height: size.Width}
	}
	return size
}
