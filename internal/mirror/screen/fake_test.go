package screen

import (
	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/framebuffer"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

type drawCall struct {
	dst   geometry.FRect
	angle float64
	flip  bool
}

type fakeSurface struct {
	opts WindowOptions

	size       geometry.Size
	scale      int
	position   geometry.Point
	state      WindowState
	shown      bool
	bounds     geometry.Size
	boundsErr  error
	sizeErr    error
	drawErr    error
	destroyed  bool
	watch      func()
	texture    geometry.Size
	textures   int
	updates    int
	draws      []drawCall
	presents   int
	placeholds int
	resizes    []geometry.Size
}

func (f *fakeSurface) WindowSize() geometry.Size { return f.size }

func (f *fakeSurface) PixelSize() geometry.Size {
	return geometry.Size{Width: f.size.Width * f.scale, Height: f.size.Height * f.scale}
}

func (f *fakeSurface) OutputSize() geometry.Size { return f.PixelSize() }

func (f *fakeSurface) WindowPosition() geometry.Point { return f.position }

func (f *fakeSurface) State() WindowState { return f.state }

func (f *fakeSurface) IsFullscreen() bool { return f.state == Fullscreen }

func (f *fakeSurface) DisplayBounds() (geometry.Size, error) {
	return f.bounds, f.boundsErr
}

func (f *fakeSurface) SetWindowSize(size geometry.Size) error {
	if f.sizeErr != nil {
		return f.sizeErr
	}
	f.size = size
	f.resizes = append(f.resizes, size)
	return nil
}

func (f *fakeSurface) SetWindowPosition(p geometry.Point) error {
	f.position = p
	return nil
}

func (f *fakeSurface) SetFullscreen(fullscreen bool) error {
	if fullscreen {
		f.state = Fullscreen
	} else {
		f.state = Windowed
	}
	return nil
}

func (f *fakeSurface) Show() error {
	f.shown = true
	return nil
}

func (f *fakeSurface) Hide() error {
	f.shown = false
	return nil
}

func (f *fakeSurface) PrepareTexture(size geometry.Size, _ framebuffer.ColorSpace, _ framebuffer.ColorRange) error {
	f.texture = size
	f.textures++
	return nil
}

func (f *fakeSurface) UpdateTexture(frame *framebuffer.Frame) error {
	if frame.Size() != f.texture {
		return errors.Errorf("frame %s does not match texture %s", frame.Size(), f.texture)
	}
	f.updates++
	return nil
}

func (f *fakeSurface) Clear() error { return nil }

func (f *fakeSurface) DrawTexture(dst geometry.FRect, angle float64, flip bool) error {
	if f.drawErr != nil {
		return f.drawErr
	}
	f.draws = append(f.draws, drawCall{dst: dst, angle: angle, flip: flip})
	return nil
}

func (f *fakeSurface) DrawPlaceholder() error {
	f.placeholds++
	return nil
}

func (f *fakeSurface) Present() error {
	f.presents++
	return nil
}

func (f *fakeSurface) Destroy() error {
	f.destroyed = true
	return nil
}

func (f *fakeSurface) WatchResize(fn func()) error {
	f.watch = fn
	return nil
}

type fakeToolkit struct {
	surface *fakeSurface
}

func (t *fakeToolkit) NewSurface(opts WindowOptions) (Surface, error) {
	t.surface.opts = opts
	t.surface.size = geometry.Size{Width: opts.Width, Height: opts.Height}
	return t.surface, nil
}

type recordedInput struct {
	ev    event.Event
	point geometry.Point
	err   error
}

type fakeInput struct {
	received []recordedInput
}

func (h *fakeInput) HandleInput(ev event.Event, m Mapper) {
	p, err := m.WindowToContent(geometry.Point{X: ev.X, Y: ev.Y})
	h.received = append(h.received, recordedInput{ev: ev, point: p, err: err})
}
