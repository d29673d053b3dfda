package screen

import (
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/framebuffer"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

// WindowState is the state of the window as reported by the window system.
type WindowState int

const (
	Windowed WindowState = iota
	Fullscreen
	Maximized
	Minimized
)

func (s WindowState) String() string {
	switch s {
	case Windowed:
		return "windowed"
	case Fullscreen:
		return "fullscreen"
	case Maximized:
		return "maximized"
	case Minimized:
		return "minimized"
	default:
		return "unknown"
	}
}

// PositionCentered asks the surface to center the window on that axis.
const PositionCentered = -0x8000

// WindowOptions are used to create the window. The window is always created
// hidden.
type WindowOptions struct {
	Title       string
	X, Y        int
	Width       int
	Height      int
	Resizable   bool
	AlwaysOnTop bool
	Borderless  bool
	// Video is false when the window only shows a placeholder.
	Video bool
}

// Surface is a window with a renderer and a streaming texture. All methods
// are called from the render loop.
type Surface interface {
	WindowSize() geometry.Size
	// PixelSize is the window size in physical pixels.
	PixelSize() geometry.Size
	// OutputSize is the renderer output size in physical pixels.
	OutputSize() geometry.Size
	WindowPosition() geometry.Point
	State() WindowState
	IsFullscreen() bool
	// DisplayBounds returns the usable area of the display showing the
	// window.
	DisplayBounds() (geometry.Size, error)

	SetWindowSize(geometry.Size) error
	SetWindowPosition(geometry.Point) error
	SetFullscreen(bool) error
	Show() error
	Hide() error

	PrepareTexture(size geometry.Size, cs framebuffer.ColorSpace, cr framebuffer.ColorRange) error
	UpdateTexture(*framebuffer.Frame) error

	Clear() error
	// DrawTexture draws the frame texture into dst, rotated clockwise by
	// angle degrees around its center and flipped horizontally if requested.
	DrawTexture(dst geometry.FRect, angle float64, flip bool) error
	// DrawPlaceholder fills the window with a static image when there is no
	// video.
	DrawPlaceholder() error
	Present() error

	Destroy() error
}

// Toolkit creates surfaces.
type Toolkit interface {
	NewSurface(WindowOptions) (Surface, error)
}

// ResizeWatcher is implemented by surfaces whose event loop blocks during a
// continuous window resize. The callback runs while the resize is in
// progress, on the goroutine pumping events.
type ResizeWatcher interface {
	WatchResize(func()) error
}

// EventSource is implemented by surfaces delivering window system and input
// events.
type EventSource interface {
	PollEvent() (event.Event, bool)
}

// Mapper converts pointer positions for input handlers.
type Mapper interface {
	WindowToContent(geometry.Point) (geometry.Point, error)
	FrameSize() geometry.Size
}

// InputHandler receives the events the screen does not handle itself.
type InputHandler interface {
	HandleInput(event.Event, Mapper)
}

// Notifier posts events to the render loop. Push must not block.
type Notifier interface {
	Push(event.Event) error
}
