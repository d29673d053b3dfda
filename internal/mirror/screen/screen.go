// Package screen displays the frames received from a producer in a window and
// keeps the window geometry consistent with the content.
package screen

import (
	"log/slog"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/fps"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/framebuffer"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/resize"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

var (
	ErrInvalidFrameSize  = errors.New("invalid video size")
	ErrUnsupportedFormat = errors.New("unsupported pixel format")
	ErrNoVideo           = errors.New("screen has no video")
	ErrSinkOpen          = errors.New("frame sink is still open")
	ErrSinkClosed        = errors.New("frame sink is not open")
)

const defaultWindowSize = 256

var (
	_ framebuffer.Sink = (*Screen)(nil)
	_ Mapper           = (*Screen)(nil)
)

// Params configure a Screen.
type Params struct {
	Toolkit Toolkit
	Events  Notifier
	// Input receives the events not handled by the screen. Optional.
	Input InputHandler
	// Metrics registers the fps counter metrics. Optional.
	Metrics prometheus.Registerer

	Video       bool
	Title       string
	WindowX     *int
	WindowY     *int
	Width       int
	Height      int
	Fullscreen  bool
	AlwaysOnTop bool
	Borderless  bool
	Orientation geometry.Orientation
	// Margins kept free around the window on each axis when fitting the
	// display. Nil means geometry.DisplayMargins.
	Margins         *int
	StartFPSCounter bool
	// Strict panics when a window mutation that cannot fail on a live window
	// fails. Otherwise the failure is logged and ignored.
	Strict bool
}

// Screen implements framebuffer.Sink. Sink methods are called from the
// producer goroutine, all other methods from the render loop.
type Screen struct {
	params  Params
	logger  *slog.Logger
	surface Surface
	events  Notifier
	input   InputHandler

	fb  *framebuffer.Buffer
	fps *fps.Counter

	video bool
	open  atomic.Bool

	hasFrame       bool
	hasVideoWindow bool
	hasTexture     bool
	destroyed      bool

	paused      bool
	frame       *framebuffer.Frame
	resumeFrame *framebuffer.Frame

	orientation geometry.Orientation
	frameSize   geometry.Size
	contentSize geometry.Size
	resize      resize.Tracker
	rect        geometry.Rect
}

// New creates the window, hidden until the first frame is received. Without
// video the window is shown immediately.
func New(params Params) (*Screen, error) {
	if params.Toolkit == nil {
		return nil, errors.New("no toolkit")
	}
	if params.Events == nil {
		return nil, errors.New("no event notifier")
	}
	if params.Margins == nil {
		margins := geometry.DisplayMargins
		params.Margins = &margins
	}

	s := &Screen{
		params: params,
		logger: util.GetLogger(),
		events: params.Events,
		input:  params.Input,
		fb:     framebuffer.New(),
		fps:    fps.New(params.Metrics),
		video:  params.Video,
		frame:  &framebuffer.Frame{},
	}

	if s.video {
		s.orientation = params.Orientation
		if s.orientation != geometry.Orientation0 {
			s.logger.Info("Initial display orientation set", "orientation", s.orientation)
		}
	}

	opts := WindowOptions{
		Title:       params.Title,
		X:           PositionCentered,
		Y:           PositionCentered,
		Width:       defaultWindowSize,
		Height:      defaultWindowSize,
		Resizable:   params.Video,
		AlwaysOnTop: params.AlwaysOnTop,
		Borderless:  params.Borderless,
		Video:       params.Video,
	}
	if params.WindowX != nil {
		opts.X = *params.WindowX
	}
	if params.WindowY != nil {
		opts.Y = *params.WindowY
	}
	if params.Width != 0 {
		opts.Width = params.Width
	}
	if params.Height != 0 {
		opts.Height = params.Height
	}

	surface, err := params.Toolkit.NewSurface(opts)
	if err != nil {
		return nil, errors.Wrap(err, "could not create window")
	}
	s.surface = surface

	if w, ok := surface.(ResizeWatcher); ok && s.video {
		if err := w.WatchResize(s.onContinuousResize); err != nil {
			s.logger.Warn("Could not add event watcher for continuous resizing", "error", err)
		}
	}

	if !s.video {
		s.mutate("show window", s.surface.Show())
	}

	return s, nil
}

// Open validates the stream about to be pushed.
func (s *Screen) Open(d framebuffer.Descriptor) error {
	if d.Format != framebuffer.PixelFormatYUV420P && d.Format != framebuffer.PixelFormatRGBA {
		return errors.Wrapf(ErrUnsupportedFormat, "format %s", d.Format)
	}
	if err := s.checkFrameSize(d.Width, d.Height); err != nil {
		return err
	}
	s.open.Store(true)
	return nil
}

func (s *Screen) checkFrameSize(width, height int) error {
	if width <= 0 || width > framebuffer.MaxDimension ||
		height <= 0 || height > framebuffer.MaxDimension {
		s.logger.Error("Invalid video size", "width", width, "height", height)
		return errors.Wrapf(ErrInvalidFrameSize, "%dx%d", width, height)
	}
	return nil
}

// Close marks the end of the stream.
func (s *Screen) Close() {
	s.open.Store(false)
}

// Push stores frame for the render loop, which is woken up only if the
// previous frame was consumed. The sink must be open and every frame must
// have a valid size, which may differ from the size given to Open.
func (s *Screen) Push(frame *framebuffer.Frame) error {
	if !s.video {
		return ErrNoVideo
	}
	if !s.open.Load() {
		return ErrSinkClosed
	}
	if frame != nil {
		if err := s.checkFrameSize(frame.Width, frame.Height); err != nil {
			return err
		}
	}

	skipped, err := s.fb.Push(frame)
	if err != nil {
		return errors.Wrap(err, "could not push frame")
	}

	if skipped {
		// the event posted for the previous frame will consume this one
		s.fps.AddSkipped()
		return nil
	}

	if err := s.events.Push(event.Event{Type: event.NewFrame}); err != nil {
		return errors.Wrap(err, "could not post new frame event")
	}
	return nil
}

// HandleEvent processes an event on the render loop. It returns false when
// nobody handled the event.
func (s *Screen) HandleEvent(ev event.Event) bool {
	switch ev.Type {
	case event.NewFrame:
		if err := s.updateFrame(); err != nil {
			s.logger.Error("Frame update failed", "error", err)
		}
		return true
	case event.WindowExposed:
		if !s.video {
			s.renderNoVideo()
		} else if s.hasVideoWindow {
			s.render(true)
		}
		return true
	case event.WindowPixelSizeChanged, event.WindowResized:
		if s.hasVideoWindow {
			s.render(true)
		}
		return true
	case event.WindowRestored:
		if s.hasVideoWindow && s.isWindowed() {
			s.applyPendingResize()
			s.render(true)
		}
		return true
	case event.WindowEnterFullscreen:
		s.logger.Debug("Switched to fullscreen mode")
		s.assert(s.hasVideoWindow, "fullscreen entered without a video window")
		return true
	case event.WindowLeaveFullscreen:
		s.logger.Debug("Switched to windowed mode")
		s.assert(s.hasVideoWindow, "fullscreen left without a video window")
		if s.isWindowed() {
			s.applyPendingResize()
			s.render(true)
		}
		return true
	}

	if s.input != nil && ev.Type.IsInput() {
		s.input.HandleInput(ev, s)
		return true
	}
	return false
}

func (s *Screen) onContinuousResize() {
	if s.hasVideoWindow {
		s.render(true)
	}
}

func (s *Screen) updateFrame() error {
	if s.paused {
		if s.resumeFrame == nil {
			s.resumeFrame = &framebuffer.Frame{}
		}
		return s.fb.Consume(s.resumeFrame)
	}

	if err := s.fb.Consume(s.frame); err != nil {
		return err
	}
	return s.applyFrame()
}

func (s *Screen) applyFrame() error {
	s.fps.AddRendered()

	newFrameSize := s.frame.Size()
	if !s.hasFrame || newFrameSize != s.frameSize {
		if err := s.surface.PrepareTexture(newFrameSize, s.frame.ColorSpace, s.frame.ColorRange); err != nil {
			return errors.Wrap(err, "could not prepare texture")
		}
		s.hasTexture = true

		s.frameSize = newFrameSize
		newContentSize := geometry.OrientedSize(newFrameSize, s.orientation)
		if s.hasFrame {
			s.setContentSize(newContentSize)
			s.updateContentRect()
		} else {
			s.hasFrame = true
			s.contentSize = newContentSize
		}
	}

	if err := s.surface.UpdateTexture(s.frame); err != nil {
		return errors.Wrap(err, "could not update texture")
	}

	if !s.hasVideoWindow {
		s.hasVideoWindow = true
		s.showInitialWindow()
	}

	s.render(false)
	return nil
}

// SetPaused stops or resumes rendering. Frames received while paused are
// kept, the latest one is displayed as soon as the screen is unpaused.
func (s *Screen) SetPaused(paused bool) {
	if !s.video || (!paused && !s.paused) {
		return
	}

	if s.paused && s.resumeFrame != nil {
		// refresh immediately, even if the new state is also paused
		s.frame, s.resumeFrame = s.resumeFrame, nil
		if err := s.applyFrame(); err != nil {
			s.logger.Error("Resume frame update failed", "error", err)
		}
	}

	switch {
	case !paused:
		s.logger.Info("Display screen unpaused")
	case !s.paused:
		s.logger.Info("Display screen paused")
	default:
		s.logger.Info("Display screen re-paused")
	}
	s.paused = paused
}

// Paused reports whether rendering is paused.
func (s *Screen) Paused() bool {
	return s.paused
}

// SetOrientation changes the display orientation and resizes the window
// accordingly.
func (s *Screen) SetOrientation(o geometry.Orientation) {
	if !s.video || o == s.orientation {
		return
	}

	if !s.hasFrame {
		s.orientation = o
		s.logger.Info("Display orientation set", "orientation", o)
		return
	}

	s.setContentSize(geometry.OrientedSize(s.frameSize, o))
	s.orientation = o
	s.logger.Info("Display orientation set", "orientation", o)

	if s.hasVideoWindow {
		s.render(true)
	}
}

// Orientation returns the current display orientation.
func (s *Screen) Orientation() geometry.Orientation {
	return s.orientation
}

// FrameSize returns the size of the last applied frame.
func (s *Screen) FrameSize() geometry.Size {
	return s.frameSize
}

// ContentSize returns the frame size after orientation.
func (s *Screen) ContentSize() geometry.Size {
	return s.contentSize
}

// ContentRect returns where the content is drawn, in drawable pixels.
func (s *Screen) ContentRect() geometry.Rect {
	return s.rect
}

// Skipped returns the number of frames overwritten before being displayed.
func (s *Screen) Skipped() uint64 {
	return s.fb.Skipped()
}

// FPS returns the frame counter.
func (s *Screen) FPS() *fps.Counter {
	return s.fps
}

// EventSource returns the window system events of the surface, if it
// delivers any.
func (s *Screen) EventSource() (EventSource, bool) {
	source, ok := s.surface.(EventSource)
	return source, ok
}

// Interrupt stops the background work owned by the screen.
func (s *Screen) Interrupt() {
	s.fps.Interrupt()
}

// Join waits for the background work stopped by Interrupt.
func (s *Screen) Join() {
	s.fps.Join()
}

// Destroy releases the window. The frame sink must be closed.
func (s *Screen) Destroy() error {
	if s.destroyed {
		return nil
	}
	if s.open.Load() {
		return ErrSinkOpen
	}
	s.destroyed = true
	if err := s.surface.Destroy(); err != nil {
		return errors.Wrap(err, "could not destroy window")
	}
	return nil
}
