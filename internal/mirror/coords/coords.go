// Package coords converts pointer positions between window points, drawable
// pixels and oriented content space.
package coords

import (
	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

// ErrEmptyRect is returned when the content rectangle has no area yet,
// typically before the first frame was received.
var ErrEmptyRect = errors.New("content rect is empty")

// ScaleDevicePixels converts a point in window coordinates to drawable pixels.
// They differ on high DPI displays.
func ScaleDevicePixels(window, drawable geometry.Size, p geometry.Point) geometry.Point {
	if window.IsEmpty() {
		return p
	}
	return geometry.Point{
		X: int(int64(p.X) * int64(drawable.Width) / int64(window.Width)),
		Y: int(int64(p.Y) * int64(drawable.Height) / int64(window.Height)),
	}
}

// DrawableToContent converts a point in drawable pixels to the content
// coordinates of the unoriented frame.
func DrawableToContent(rect geometry.Rect, content geometry.Size, o geometry.Orientation, p geometry.Point) (geometry.Point, error) {
	if rect.W == 0 || rect.H == 0 {
		return geometry.Point{}, ErrEmptyRect
	}

	w := int64(content.Width)
	h := int64(content.Height)

	x := (int64(p.X) - int64(rect.X)) * w / int64(rect.W)
	y := (int64(p.Y) - int64(rect.Y)) * h / int64(rect.H)

	var rx, ry int64
	switch o {
	case geometry.Orientation90:
		rx, ry = y, w-x
	case geometry.Orientation180:
		rx, ry = w-x, h-y
	case geometry.Orientation270:
		rx, ry = h-y, x
	case geometry.OrientationFlip0:
		rx, ry = w-x, y
	case geometry.OrientationFlip90:
		rx, ry = h-y, w-x
	case geometry.OrientationFlip180:
		rx, ry = x, h-y
	case geometry.OrientationFlip270:
		rx, ry = y, x
	default:
		rx, ry = x, y
	}
	return geometry.Point{X: int(rx), Y: int(ry)}, nil
}

// ContentToDrawable is the inverse of DrawableToContent, up to integer
// rounding.
func ContentToDrawable(rect geometry.Rect, content geometry.Size, o geometry.Orientation, p geometry.Point) (geometry.Point, error) {
	if content.IsEmpty() {
		return geometry.Point{}, ErrEmptyRect
	}

	w := int64(content.Width)
	h := int64(content.Height)
	fx := int64(p.X)
	fy := int64(p.Y)

	var x, y int64
	switch o {
	case geometry.Orientation90:
		x, y = w-fy, fx
	case geometry.Orientation180:
		x, y = w-fx, h-fy
	case geometry.Orientation270:
		x, y = fy, h-fx
	case geometry.OrientationFlip0:
		x, y = w-fx, fy
	case geometry.OrientationFlip90:
		x, y = w-fy, h-fx
	case geometry.OrientationFlip180:
		x, y = fx, h-fy
	case geometry.OrientationFlip270:
		x, y = fy, fx
	default:
		x, y = fx, fy
	}

	return geometry.Point{
		X: int(x*int64(rect.W)/w) + rect.X,
		Y: int(y*int64(rect.H)/h) + rect.Y,
	}, nil
}

// WindowToContent converts a pointer position reported in window coordinates
// to content coordinates.
func WindowToContent(window, drawable geometry.Size, rect geometry.Rect, content geometry.Size, o geometry.Orientation, p geometry.Point) (geometry.Point, error) {
	return DrawableToContent(rect, content, o, ScaleDevicePixels(window, drawable, p))
}
