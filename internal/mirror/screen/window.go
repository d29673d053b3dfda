package screen

import (
	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/resize"
)

// mutate handles the failure of a window operation that is expected to always
// succeed on a live window.
func (s *Screen) mutate(op string, err error) {
	if err == nil {
		return
	}
	err = errors.Wrapf(err, "could not %s", op)
	if s.params.Strict {
		panic(err)
	}
	s.logger.Error("Window operation failed", "error", err)
}

func (s *Screen) assert(cond bool, msg string) {
	if cond {
		return
	}
	if s.params.Strict {
		panic(errors.New(msg))
	}
	s.logger.Error("Unexpected screen state", "reason", msg)
}

func (s *Screen) isWindowed() bool {
	return s.surface.State() == Windowed
}

// displayBounds returns nil when the display bounds are unknown, in which case
// sizes are not clamped.
func (s *Screen) displayBounds() *geometry.Size {
	usable, err := s.surface.DisplayBounds()
	if err != nil {
		s.logger.Warn("Could not get display usable bounds", "error", err)
		return nil
	}
	bounds := geometry.PreferredBounds(usable, *s.params.Margins)
	return &bounds
}

func (s *Screen) updateContentRect() {
	s.rect = geometry.ContentRect(s.surface.OutputSize(), s.contentSize)
}

// render draws the current texture. updateContentRect must be set when the
// window or content size may have changed.
func (s *Screen) render(updateContentRect bool) {
	if updateContentRect {
		s.updateContentRect()
	}

	if err := s.surface.Clear(); err != nil {
		s.logger.Warn("Could not clear rendering", "error", err)
	}

	if !s.hasTexture {
		s.logger.Warn("No texture to render")
	} else {
		dst, angle, flip := geometry.RenderTarget(s.rect, s.orientation)
		if err := s.surface.DrawTexture(dst, angle, flip); err != nil {
			s.logger.Warn("Could not render texture", "error", err)
		}
	}

	if err := s.surface.Present(); err != nil {
		s.logger.Warn("Could not present rendering", "error", err)
	}
}

func (s *Screen) renderNoVideo() {
	if err := s.surface.Clear(); err != nil {
		s.logger.Warn("Could not clear rendering", "error", err)
	}
	if err := s.surface.DrawPlaceholder(); err != nil {
		s.logger.Warn("Could not render texture", "error", err)
	}
	if err := s.surface.Present(); err != nil {
		s.logger.Warn("Could not present rendering", "error", err)
	}
}

func (s *Screen) showInitialWindow() {
	position := geometry.Point{X: PositionCentered, Y: PositionCentered}
	if s.params.WindowX != nil {
		position.X = *s.params.WindowX
	}
	if s.params.WindowY != nil {
		position.Y = *s.params.WindowY
	}

	var bounds *geometry.Size
	if s.params.Width == 0 && s.params.Height == 0 {
		bounds = s.displayBounds()
	}
	size := geometry.InitialOptimalSize(s.contentSize, s.params.Width, s.params.Height, bounds)

	s.assert(s.isWindowed(), "initial window is not windowed")
	s.mutate("set window size", s.surface.SetWindowSize(size))
	s.mutate("set window position", s.surface.SetWindowPosition(position))

	if s.params.Fullscreen {
		s.ToggleFullscreen()
	}

	if s.params.StartFPSCounter {
		if err := s.fps.Start(); err != nil {
			s.logger.Warn("Could not start FPS counter", "error", err)
		}
	}

	s.mutate("show window", s.surface.Show())
	s.updateContentRect()
}

func (s *Screen) setContentSize(newContentSize geometry.Size) {
	if s.resize.ContentChanged(s.isWindowed(), s.contentSize) {
		s.resizeForContent(s.contentSize, newContentSize)
	}
	s.contentSize = newContentSize
}

func (s *Screen) resizeForContent(oldContentSize, newContentSize geometry.Size) {
	window := s.surface.WindowSize()
	target := resize.Target(window, oldContentSize, newContentSize, s.displayBounds())
	s.assert(s.isWindowed(), "resize of a non-windowed window")
	s.mutate("set window size", s.surface.SetWindowSize(target))
}

func (s *Screen) applyPendingResize() {
	s.assert(s.isWindowed(), "pending resize applied to a non-windowed window")
	if from, ok := s.resize.TakePending(); ok {
		s.resizeForContent(from, s.contentSize)
	}
}

// ResizePending reports whether a content resize is deferred until the window
// is windowed again.
func (s *Screen) ResizePending() bool {
	return s.resize.State() == resize.Pending
}

// ToggleFullscreen switches between fullscreen and windowed mode.
func (s *Screen) ToggleFullscreen() {
	if !s.video {
		return
	}

	fullscreen := !s.surface.IsFullscreen()
	if err := s.surface.SetFullscreen(fullscreen); err != nil {
		s.logger.Warn("Could not switch fullscreen mode", "error", err)
		return
	}

	if fullscreen {
		s.logger.Debug("Requested fullscreen mode")
	} else {
		s.logger.Debug("Requested windowed mode")
	}
}

// ResizeToFit removes the black borders around the content, keeping the
// window centered where it was.
func (s *Screen) ResizeToFit() {
	if !s.video || !s.hasFrame || !s.isWindowed() {
		return
	}

	point := s.surface.WindowPosition()
	window := s.surface.WindowSize()

	optimal := geometry.OptimalSize(window, s.contentSize, nil)
	s.assert(optimal.Width <= window.Width && optimal.Height <= window.Height, "optimal size larger than window")

	position := geometry.Point{
		X: point.X + (window.Width-optimal.Width)/2,
		Y: point.Y + (window.Height-optimal.Height)/2,
	}

	s.mutate("set window size", s.surface.SetWindowSize(optimal))
	s.mutate("set window position", s.surface.SetWindowPosition(position))
	s.logger.Debug("Resized to optimal size", "size", optimal)
}

// ResizeToPixelPerfect resizes the window so that one content pixel is one
// window pixel.
func (s *Screen) ResizeToPixelPerfect() {
	if !s.video || !s.hasFrame || !s.isWindowed() {
		return
	}

	s.mutate("set window size", s.surface.SetWindowSize(s.contentSize))
	s.logger.Debug("Resized to pixel-perfect", "size", s.contentSize)
}

// HideWindow hides the window, typically while the session shuts down.
func (s *Screen) HideWindow() {
	s.mutate("hide window", s.surface.Hide())
}
