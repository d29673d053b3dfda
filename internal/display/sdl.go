//go:build sdl

package display

import (
	"log/slog"
	"runtime"
	"unsafe"

	"github.com/pkg/errors"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/framebuffer"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/screen"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

// Toolkit creates SDL windows. All the calls must happen on the main thread.
type Toolkit struct{}

var _ screen.Toolkit = Toolkit{}

// Surface is an SDL window with an accelerated renderer.
type Surface struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	format   framebuffer.PixelFormat
	logger   *slog.Logger

	// SDL2 reports no fullscreen transitions, they are queued on success
	synthetic []event.Event
	watch     sdl.EventWatchHandle
	watching  bool

	host *hostBounds
}

var (
	_ screen.Surface       = (*Surface)(nil)
	_ screen.ResizeWatcher = (*Surface)(nil)
	_ screen.EventSource   = (*Surface)(nil)
)

func position(v int) int32 {
	if v == screen.PositionCentered {
		return sdl.WINDOWPOS_CENTERED
	}
	return int32(v)
}

// NewSurface initializes SDL video and creates a hidden window.
func (Toolkit) NewSurface(opts screen.WindowOptions) (screen.Surface, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "could not initialize SDL")
	}
	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "linear")

	flags := uint32(sdl.WINDOW_HIDDEN | sdl.WINDOW_ALLOW_HIGHDPI)
	if opts.Resizable {
		flags |= sdl.WINDOW_RESIZABLE
	}
	if opts.AlwaysOnTop {
		flags |= sdl.WINDOW_ALWAYS_ON_TOP
	}
	if opts.Borderless {
		flags |= sdl.WINDOW_BORDERLESS
	}

	window, err := sdl.CreateWindow(opts.Title, position(opts.X), position(opts.Y),
		int32(opts.Width), int32(opts.Height), flags)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "could not create window")
	}

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		_ = window.Destroy()
		sdl.Quit()
		return nil, errors.Wrap(err, "could not create renderer")
	}

	return &Surface{
		window:   window,
		renderer: renderer,
		logger:   util.GetLogger(),
		host:     newHostBounds(),
	}, nil
}

func (s *Surface) WindowSize() geometry.Size {
	w, h := s.window.GetSize()
	return geometry.Size{Width: int(w), Height: int(h)}
}

func (s *Surface) PixelSize() geometry.Size {
	w, h := s.window.GLGetDrawableSize()
	return geometry.Size{Width: int(w), Height: int(h)}
}

func (s *Surface) OutputSize() geometry.Size {
	w, h, err := s.renderer.GetOutputSize()
	if err != nil {
		s.logger.Warn("Could not get renderer output size", "error", err)
		return geometry.Size{}
	}
	return geometry.Size{Width: int(w), Height: int(h)}
}

func (s *Surface) WindowPosition() geometry.Point {
	x, y := s.window.GetPosition()
	return geometry.Point{X: int(x), Y: int(y)}
}

func (s *Surface) State() screen.WindowState {
	flags := s.window.GetFlags()
	switch {
	case flags&sdl.WINDOW_FULLSCREEN != 0:
		return screen.Fullscreen
	case flags&sdl.WINDOW_MINIMIZED != 0:
		return screen.Minimized
	case flags&sdl.WINDOW_MAXIMIZED != 0:
		return screen.Maximized
	default:
		return screen.Windowed
	}
}

func (s *Surface) IsFullscreen() bool {
	return s.window.GetFlags()&sdl.WINDOW_FULLSCREEN != 0
}

// DisplayBounds returns the usable bounds of the display of the window, or
// the resolution of the primary display when SDL cannot tell.
func (s *Surface) DisplayBounds() (geometry.Size, error) {
	index, err := s.window.GetDisplayIndex()
	if err == nil {
		var rect sdl.Rect
		if rect, err = sdl.GetDisplayUsableBounds(index); err == nil {
			return geometry.Size{Width: int(rect.W), Height: int(rect.H)}, nil
		}
	}
	s.logger.Debug("Could not get display usable bounds", "error", err)

	return s.host.Get()
}

func (s *Surface) SetWindowSize(size geometry.Size) error {
	s.window.SetSize(int32(size.Width), int32(size.Height))
	return nil
}

func (s *Surface) SetWindowPosition(p geometry.Point) error {
	s.window.SetPosition(position(p.X), position(p.Y))
	return nil
}

func (s *Surface) SetFullscreen(fullscreen bool) error {
	var flags uint32
	if fullscreen {
		flags = sdl.WINDOW_FULLSCREEN_DESKTOP
	}
	if err := s.window.SetFullscreen(flags); err != nil {
		return errors.Wrap(err, "could not switch fullscreen mode")
	}
	if fullscreen {
		s.synthetic = append(s.synthetic, event.Event{Type: event.WindowEnterFullscreen})
	} else {
		s.synthetic = append(s.synthetic, event.Event{Type: event.WindowLeaveFullscreen})
	}
	return nil
}

func (s *Surface) Show() error {
	s.window.Show()
	return nil
}

func (s *Surface) Hide() error {
	s.window.Hide()
	return nil
}

// PrepareTexture creates a streaming texture for frames of the given size.
// The pixel format is that of the next UpdateTexture call, I420 until then.
func (s *Surface) PrepareTexture(size geometry.Size, cs framebuffer.ColorSpace, cr framebuffer.ColorRange) error {
	if s.texture != nil {
		_ = s.texture.Destroy()
		s.texture = nil
	}
	texture, err := s.createTexture(size, s.format)
	if err != nil {
		return err
	}
	s.texture = texture
	s.logger.Debug("Texture created", "size", size.String(), "format", s.format.String(),
		"color_space", int(cs), "color_range", int(cr))
	return nil
}

func (s *Surface) createTexture(size geometry.Size, format framebuffer.PixelFormat) (*sdl.Texture, error) {
	sdlFormat := uint32(sdl.PIXELFORMAT_IYUV)
	if format == framebuffer.PixelFormatRGBA {
		// byte order R, G, B, A on little endian hosts
		sdlFormat = sdl.PIXELFORMAT_ABGR8888
	}
	texture, err := s.renderer.CreateTexture(sdlFormat, sdl.TEXTUREACCESS_STREAMING,
		int32(size.Width), int32(size.Height))
	if err != nil {
		return nil, errors.Wrapf(err, "could not create %s texture", size)
	}
	return texture, nil
}

func (s *Surface) UpdateTexture(frame *framebuffer.Frame) error {
	if s.texture == nil || frame.Format != s.format {
		// the stream format is known from the first frame only
		s.format = frame.Format
		if err := s.PrepareTexture(frame.Size(), frame.ColorSpace, frame.ColorRange); err != nil {
			return err
		}
	}

	switch frame.Format {
	case framebuffer.PixelFormatYUV420P:
		return errors.Wrap(s.texture.UpdateYUV(nil,
			frame.Planes[0], frame.Strides[0],
			frame.Planes[1], frame.Strides[1],
			frame.Planes[2], frame.Strides[2]), "could not update texture")
	case framebuffer.PixelFormatRGBA:
		if len(frame.Planes[0]) == 0 {
			return errors.New("empty frame")
		}
		return errors.Wrap(s.texture.Update(nil, unsafe.Pointer(&frame.Planes[0][0]), frame.Strides[0]),
			"could not update texture")
	default:
		return errors.Errorf("unsupported pixel format %s", frame.Format)
	}
}

func (s *Surface) Clear() error {
	if err := s.renderer.SetDrawColor(0, 0, 0, 255); err != nil {
		return errors.Wrap(err, "could not set draw color")
	}
	return errors.Wrap(s.renderer.Clear(), "could not clear")
}

func (s *Surface) DrawTexture(dst geometry.FRect, angle float64, flip bool) error {
	if s.texture == nil {
		return errors.New("no texture")
	}
	var flipMode sdl.RendererFlip = sdl.FLIP_NONE
	if flip {
		flipMode = sdl.FLIP_HORIZONTAL
	}
	rect := sdl.FRect{X: float32(dst.X), Y: float32(dst.Y), W: float32(dst.W), H: float32(dst.H)}
	return errors.Wrap(s.renderer.CopyExF(s.texture, nil, &rect, angle, nil, flipMode), "could not draw texture")
}

// DrawPlaceholder draws a gray square in the middle of the window.
func (s *Surface) DrawPlaceholder() error {
	out := s.OutputSize()
	side := min(out.Width, out.Height) / 3
	if side <= 0 {
		return nil
	}
	if err := s.renderer.SetDrawColor(0x60, 0x60, 0x60, 255); err != nil {
		return errors.Wrap(err, "could not set draw color")
	}
	rect := sdl.Rect{
		X: int32((out.Width - side) / 2),
		Y: int32((out.Height - side) / 2),
		W: int32(side),
		H: int32(side),
	}
	return errors.Wrap(s.renderer.FillRect(&rect), "could not draw placeholder")
}

func (s *Surface) Present() error {
	s.renderer.Present()
	return nil
}

func (s *Surface) Destroy() error {
	if s.watching {
		sdl.DelEventWatch(s.watch)
		s.watching = false
	}
	if s.texture != nil {
		_ = s.texture.Destroy()
		s.texture = nil
	}
	if err := s.renderer.Destroy(); err != nil {
		s.logger.Warn("Could not destroy renderer", "error", err)
	}
	err := s.window.Destroy()
	sdl.Quit()
	return errors.Wrap(err, "could not destroy window")
}

// WatchResize calls f on every resize while the user drags the window border,
// on the platforms where the event loop is blocked in PollEvent meanwhile.
// Elsewhere the polled size events are enough and nothing is watched.
func (s *Surface) WatchResize(f func()) error {
	if s.watching {
		return errors.New("resize already watched")
	}
	if !needsResizeWatch(runtime.GOOS) {
		return nil
	}
	s.watch = sdl.AddEventWatchFunc(func(e sdl.Event, _ interface{}) bool {
		if we, ok := e.(*sdl.WindowEvent); ok && we.Event == sdl.WINDOWEVENT_RESIZED {
			f()
		}
		return false
	}, nil)
	s.watching = true
	return nil
}

// PollEvent returns the next pending event, translated.
func (s *Surface) PollEvent() (event.Event, bool) {
	if len(s.synthetic) > 0 {
		ev := s.synthetic[0]
		s.synthetic = s.synthetic[1:]
		return ev, true
	}

	for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
		if ev, ok := translate(e); ok {
			return ev, true
		}
	}
	return event.Event{}, false
}

func translate(e sdl.Event) (event.Event, bool) {
	switch e := e.(type) {
	case *sdl.QuitEvent:
		return event.Event{Type: event.Quit}, true
	case *sdl.WindowEvent:
		switch e.Event {
		case sdl.WINDOWEVENT_EXPOSED:
			return event.Event{Type: event.WindowExposed}, true
		case sdl.WINDOWEVENT_SIZE_CHANGED:
			// RESIZED always follows, only the watch reacts to it
			return event.Event{Type: event.WindowPixelSizeChanged}, true
		case sdl.WINDOWEVENT_RESTORED:
			return event.Event{Type: event.WindowRestored}, true
		}
	case *sdl.MouseMotionEvent:
		return event.Event{Type: event.PointerMotion, X: int(e.X), Y: int(e.Y)}, true
	case *sdl.MouseButtonEvent:
		t := event.PointerUp
		if e.Type == sdl.MOUSEBUTTONDOWN {
			t = event.PointerDown
		}
		return event.Event{Type: t, X: int(e.X), Y: int(e.Y), Button: int(e.Button)}, true
	case *sdl.KeyboardEvent:
		key := KeyName(sdl.GetKeyName(e.Keysym.Sym), modifiers(e.Keysym.Mod))
		if key == "" {
			return event.Event{}, false
		}
		t := event.KeyUp
		if e.Type == sdl.KEYDOWN {
			t = event.KeyDown
		}
		return event.Event{Type: t, Key: key}, true
	}
	return event.Event{}, false
}

func modifiers(mod uint16) Modifiers {
	var m Modifiers
	if mod&sdl.KMOD_CTRL != 0 {
		m |= ModCtrl
	}
	if mod&sdl.KMOD_ALT != 0 {
		m |= ModAlt
	}
	if mod&sdl.KMOD_GUI != 0 {
		m |= ModGUI
	}
	if mod&sdl.KMOD_SHIFT != 0 {
		m |= ModShift
	}
	return m
}
