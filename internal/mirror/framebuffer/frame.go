package framebuffer

import "github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"

// PixelFormat identifies the plane layout of a Frame.
type PixelFormat int

const (
	// PixelFormatYUV420P has three planes: Y at full size, U and V at half
	// size on both axes.
	PixelFormatYUV420P PixelFormat = iota
	// PixelFormatRGBA has a single plane of 4 bytes per pixel.
	PixelFormatRGBA
)

func (f PixelFormat) String() string {
	switch f {
	case PixelFormatYUV420P:
		return "yuv420p"
	case PixelFormatRGBA:
		return "rgba"
	default:
		return "unknown"
	}
}

// ColorSpace and ColorRange are carried opaquely from the producer to the
// render surface.
type (
	ColorSpace int
	ColorRange int
)

const (
	ColorSpaceUnspecified ColorSpace = iota
	ColorSpaceBT601
	ColorSpaceBT709
)

const (
	ColorRangeUnspecified ColorRange = iota
	ColorRangeLimited
	ColorRangeFull
)

// Frame is a decoded video frame.
type Frame struct {
	Width      int
	Height     int
	Format     PixelFormat
	ColorSpace ColorSpace
	ColorRange ColorRange
	Planes     [3][]byte
	Strides    [3]int
	PTS        int64
}

// Size returns the frame dimensions.
func (f *Frame) Size() geometry.Size {
	return geometry.Size{Width: f.Width, Height: f.Height}
}

// CopyFrom makes f a deep copy of src, reusing f's plane buffers when they are
// large enough.
func (f *Frame) CopyFrom(src *Frame) {
	planes := f.Planes
	*f = *src
	for i := range src.Planes {
		if src.Planes[i] == nil {
			f.Planes[i] = planes[i][:0:cap(planes[i])]
			continue
		}
		f.Planes[i] = append(planes[i][:0], src.Planes[i]...)
	}
}

// Reset drops the frame content but keeps the plane buffers for reuse.
func (f *Frame) Reset() {
	planes := f.Planes
	*f = Frame{}
	for i := range planes {
		if planes[i] != nil {
			f.Planes[i] = planes[i][:0]
		}
	}
}
