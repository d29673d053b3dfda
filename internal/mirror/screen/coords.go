package screen

import (
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/coords"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

// WindowToContent converts a pointer position in window coordinates to frame
// coordinates. It fails until the first frame is displayed.
func (s *Screen) WindowToContent(p geometry.Point) (geometry.Point, error) {
	return s.DrawableToContent(s.ScaleDevicePixels(p))
}

// DrawableToContent converts a position in drawable pixels to frame
// coordinates.
func (s *Screen) DrawableToContent(p geometry.Point) (geometry.Point, error) {
	return coords.DrawableToContent(s.rect, s.contentSize, s.orientation, p)
}

// ContentToDrawable converts frame coordinates to drawable pixels.
func (s *Screen) ContentToDrawable(p geometry.Point) (geometry.Point, error) {
	return coords.ContentToDrawable(s.rect, s.contentSize, s.orientation, p)
}

// ScaleDevicePixels converts window coordinates to drawable pixels.
func (s *Screen) ScaleDevicePixels(p geometry.Point) geometry.Point {
	return coords.ScaleDevicePixels(s.surface.WindowSize(), s.surface.PixelSize(), p)
}
