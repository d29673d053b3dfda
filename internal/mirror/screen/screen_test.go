package screen

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/coords"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/framebuffer"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/resize"
)

func newTestScreen(t *testing.T, configure func(*Params)) (*Screen, *fakeSurface, *event.Queue) {
	t.Helper()

	surface := &fakeSurface{scale: 1, bounds: geometry.Size{Width: 1920, Height: 1080}}
	queue := event.NewQueue(16)
	params := Params{
		Toolkit: &fakeToolkit{surface: surface},
		Events:  queue,
		Video:   true,
		Title:   "test",
	}
	if configure != nil {
		configure(&params)
	}

	s, err := New(params)
	require.NoError(t, err)
	if params.Video {
		require.NoError(t, s.Open(framebuffer.Descriptor{Width: 1080, Height: 2400, Format: framebuffer.PixelFormatRGBA}))
	}
	t.Cleanup(func() {
		s.Interrupt()
		s.Join()
	})
	return s, surface, queue
}

func frame(width, height int) *framebuffer.Frame {
	return &framebuffer.Frame{Width: width, Height: height, Format: framebuffer.PixelFormatRGBA}
}

func pushAndHandle(t *testing.T, s *Screen, q *event.Queue, width, height int) {
	t.Helper()
	require.NoError(t, s.Push(frame(width, height)))
	ev, ok := q.Poll()
	require.True(t, ok, "new frame event expected")
	require.Equal(t, event.NewFrame, ev.Type)
	assert.True(t, s.HandleEvent(ev))
}

func TestScreenCreatesHiddenWindow(t *testing.T) {
	_, surface, _ := newTestScreen(t, nil)

	assert.False(t, surface.shown)
	assert.True(t, surface.opts.Resizable)
	assert.Equal(t, PositionCentered, surface.opts.X)
	assert.Equal(t, defaultWindowSize, surface.opts.Width)
	assert.NotNil(t, surface.watch, "resize watch registered")
}

func TestScreenFirstFrame(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)

	pushAndHandle(t, s, q, 1080, 2400)

	assert.True(t, surface.shown)
	assert.Equal(t, geometry.Size{Width: 442, Height: 984}, surface.size)
	assert.Equal(t, geometry.Point{X: PositionCentered, Y: PositionCentered}, surface.position)
	assert.Equal(t, geometry.Rect{W: 442, H: 984}, s.ContentRect())
	assert.Equal(t, 1, surface.textures)
	assert.Equal(t, 1, surface.updates)
	require.Len(t, surface.draws, 1)
	assert.Equal(t, drawCall{dst: geometry.FRect{W: 442, H: 984}}, surface.draws[0])
	assert.NoError(t, s.CheckInvariants())
}

func TestScreenInitialWindowRequests(t *testing.T) {
	t.Run("requested width", func(t *testing.T) {
		x, y := 10, 20
		s, surface, q := newTestScreen(t, func(p *Params) {
			p.Width = 540
			p.WindowX = &x
			p.WindowY = &y
		})
		pushAndHandle(t, s, q, 1080, 2400)
		assert.Equal(t, geometry.Size{Width: 540, Height: 1200}, surface.size)
		assert.Equal(t, geometry.Point{X: 10, Y: 20}, surface.position)
	})

	t.Run("display bounds unavailable", func(t *testing.T) {
		s, surface, q := newTestScreen(t, nil)
		surface.boundsErr = errors.New("no display")
		pushAndHandle(t, s, q, 1080, 2400)
		assert.Equal(t, geometry.Size{Width: 1080, Height: 2400}, surface.size)
	})

	t.Run("fullscreen", func(t *testing.T) {
		s, surface, q := newTestScreen(t, func(p *Params) { p.Fullscreen = true })
		pushAndHandle(t, s, q, 1080, 2400)
		assert.Equal(t, Fullscreen, surface.state)
		assert.True(t, surface.shown)
	})

	t.Run("fps counter", func(t *testing.T) {
		s, _, q := newTestScreen(t, func(p *Params) { p.StartFPSCounter = true })
		assert.False(t, s.FPS().IsStarted())
		pushAndHandle(t, s, q, 1080, 2400)
		assert.True(t, s.FPS().IsStarted())
	})
}

func TestScreenLatestFrameWins(t *testing.T) {
	s, _, q := newTestScreen(t, nil)

	require.NoError(t, s.Push(frame(1080, 2400)))
	require.NoError(t, s.Push(frame(720, 1280)))
	assert.Equal(t, 1, q.Len(), "no wake-up for an overwritten frame")
	assert.Equal(t, uint64(1), s.Skipped())

	ev, ok := q.Poll()
	require.True(t, ok)
	s.HandleEvent(ev)
	assert.Equal(t, geometry.Size{Width: 720, Height: 1280}, s.FrameSize())
}

func TestScreenSetOrientation(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)

	s.SetOrientation(geometry.Orientation90)

	assert.Equal(t, geometry.Orientation90, s.Orientation())
	assert.Equal(t, geometry.Size{Width: 2400, Height: 1080}, s.ContentSize())
	assert.Equal(t, geometry.Size{Width: 982, Height: 442}, surface.size)
	assert.Equal(t, geometry.Rect{W: 982, H: 442}, s.ContentRect())
	require.Len(t, surface.draws, 2)
	assert.Equal(t, drawCall{dst: geometry.FRect{X: 270, Y: -270, W: 442, H: 982}, angle: 90}, surface.draws[1])
	assert.NoError(t, s.CheckInvariants())

	draws := len(surface.draws)
	s.SetOrientation(geometry.Orientation90)
	assert.Len(t, surface.draws, draws, "unchanged orientation is a no-op")
}

func TestScreenOrientationBeforeFirstFrame(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	s.SetOrientation(geometry.Orientation270)
	assert.Empty(t, surface.resizes)

	pushAndHandle(t, s, q, 1080, 2400)
	assert.Equal(t, geometry.Size{Width: 2400, Height: 1080}, s.ContentSize())
	assert.NoError(t, s.CheckInvariants())
}

func TestScreenResizeCoalescing(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)
	window := surface.size
	resizes := len(surface.resizes)

	s.ToggleFullscreen()
	require.Equal(t, Fullscreen, surface.state)
	s.HandleEvent(event.Event{Type: event.WindowEnterFullscreen})

	pushAndHandle(t, s, q, 2400, 1080)
	pushAndHandle(t, s, q, 1920, 1080)
	pushAndHandle(t, s, q, 720, 1280)

	assert.True(t, s.ResizePending())
	assert.Len(t, surface.resizes, resizes, "no resize while fullscreen")
	assert.NoError(t, s.CheckInvariants())

	s.ToggleFullscreen()
	require.Equal(t, Windowed, surface.state)
	s.HandleEvent(event.Event{Type: event.WindowLeaveFullscreen})

	bounds := geometry.PreferredBounds(surface.bounds, geometry.DisplayMargins)
	expected := resize.Target(window, geometry.Size{Width: 1080, Height: 2400}, geometry.Size{Width: 720, Height: 1280}, &bounds)
	assert.Equal(t, geometry.Size{Width: 294, Height: 524}, expected)
	assert.Equal(t, expected, surface.size)
	assert.Len(t, surface.resizes, resizes+1)
	assert.False(t, s.ResizePending())
}

func TestScreenRestoredAppliesPendingResize(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)

	surface.state = Maximized
	pushAndHandle(t, s, q, 2400, 1080)
	assert.True(t, s.ResizePending())

	// still maximized, nothing to apply
	s.HandleEvent(event.Event{Type: event.WindowRestored})
	assert.True(t, s.ResizePending())

	surface.state = Windowed
	s.HandleEvent(event.Event{Type: event.WindowRestored})
	assert.False(t, s.ResizePending())
	assert.Equal(t, geometry.Size{Width: 982, Height: 442}, surface.size)
}

func TestScreenPause(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)

	s.SetPaused(true)
	assert.True(t, s.Paused())

	pushAndHandle(t, s, q, 720, 1280)
	pushAndHandle(t, s, q, 1080, 1920)
	assert.Len(t, surface.draws, 1, "nothing rendered while paused")
	assert.Equal(t, geometry.Size{Width: 1080, Height: 2400}, s.FrameSize())

	s.SetPaused(false)
	assert.False(t, s.Paused())
	assert.Len(t, surface.draws, 2)
	assert.Equal(t, geometry.Size{Width: 1080, Height: 1920}, s.FrameSize(), "latest frame displayed on resume")
	assert.NoError(t, s.CheckInvariants())

	s.SetPaused(false)
	assert.Len(t, surface.draws, 2, "unpausing twice is a no-op")
}

func TestScreenRepauseRefreshes(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)

	s.SetPaused(true)
	pushAndHandle(t, s, q, 720, 1280)
	s.SetPaused(true)

	assert.True(t, s.Paused())
	assert.Len(t, surface.draws, 2)
	assert.Equal(t, geometry.Size{Width: 720, Height: 1280}, s.FrameSize())
}

func TestScreenOpen(t *testing.T) {
	s, _, _ := newTestScreen(t, nil)

	tests := []struct {
		name string
		d    framebuffer.Descriptor
		err  error
	}{
		{"valid", framebuffer.Descriptor{Width: 1080, Height: 2400, Format: framebuffer.PixelFormatYUV420P}, nil},
		{"max", framebuffer.Descriptor{Width: 65535, Height: 65535, Format: framebuffer.PixelFormatRGBA}, nil},
		{"zero width", framebuffer.Descriptor{Width: 0, Height: 2400}, ErrInvalidFrameSize},
		{"negative height", framebuffer.Descriptor{Width: 10, Height: -1}, ErrInvalidFrameSize},
		{"too large", framebuffer.Descriptor{Width: 65536, Height: 10}, ErrInvalidFrameSize},
		{"unknown format", framebuffer.Descriptor{Width: 10, Height: 10, Format: framebuffer.PixelFormat(42)}, ErrUnsupportedFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Open(tt.d)
			if tt.err == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestScreenPushRejectsInvalidFrames(t *testing.T) {
	tests := []struct {
		name   string
		frame  *framebuffer.Frame
		closed bool
		err    error
	}{
		{"zero width", frame(0, 2400), false, ErrInvalidFrameSize},
		{"negative height", frame(10, -1), false, ErrInvalidFrameSize},
		{"too large", frame(70000, 10), false, ErrInvalidFrameSize},
		{"nil frame", nil, false, framebuffer.ErrNilFrame},
		{"before open", frame(1080, 2400), true, ErrSinkClosed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, surface, q := newTestScreen(t, nil)
			if tt.closed {
				s.Close()
			}

			assert.ErrorIs(t, s.Push(tt.frame), tt.err)
			assert.Zero(t, q.Len(), "no wake-up for a rejected frame")
			assert.Zero(t, s.Skipped())
			assert.False(t, surface.shown)
			assert.NoError(t, s.CheckInvariants())
		})
	}
}

func TestScreenPushAcceptsNewSize(t *testing.T) {
	s, _, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)
	pushAndHandle(t, s, q, 2400, 1080)
	assert.Equal(t, geometry.Size{Width: 2400, Height: 1080}, s.FrameSize())
	assert.NoError(t, s.CheckInvariants())
}

func TestScreenZeroMargins(t *testing.T) {
	margins := 0
	s, surface, q := newTestScreen(t, func(p *Params) { p.Margins = &margins })
	pushAndHandle(t, s, q, 1080, 2400)

	assert.Equal(t, geometry.Size{Width: 486, Height: 1080}, surface.size)
}

func TestScreenDestroy(t *testing.T) {
	s, surface, _ := newTestScreen(t, nil)

	require.NoError(t, s.Open(framebuffer.Descriptor{Width: 10, Height: 10}))
	assert.ErrorIs(t, s.Destroy(), ErrSinkOpen)
	assert.False(t, surface.destroyed)

	s.Close()
	require.NoError(t, s.Destroy())
	assert.True(t, surface.destroyed)
	assert.NoError(t, s.CheckInvariants())
}

func TestScreenStrict(t *testing.T) {
	t.Run("strict panics", func(t *testing.T) {
		s, surface, q := newTestScreen(t, func(p *Params) { p.Strict = true })
		surface.sizeErr = errors.New("boom")
		require.NoError(t, s.Push(frame(1080, 2400)))
		ev, _ := q.Poll()
		assert.Panics(t, func() { s.HandleEvent(ev) })
	})

	t.Run("non-strict continues", func(t *testing.T) {
		s, surface, q := newTestScreen(t, nil)
		surface.sizeErr = errors.New("boom")
		assert.NotPanics(t, func() { pushAndHandle(t, s, q, 1080, 2400) })
		assert.True(t, surface.shown)
	})
}

func TestScreenRenderFailureIsNotFatal(t *testing.T) {
	s, surface, q := newTestScreen(t, func(p *Params) { p.Strict = true })
	surface.drawErr = errors.New("lost device")

	assert.NotPanics(t, func() { pushAndHandle(t, s, q, 1080, 2400) })
	assert.Equal(t, 1, surface.presents)
}

func TestScreenNoVideo(t *testing.T) {
	s, surface, _ := newTestScreen(t, func(p *Params) { p.Video = false })

	assert.True(t, surface.shown)
	assert.False(t, surface.opts.Resizable)
	assert.Nil(t, surface.watch)

	s.HandleEvent(event.Event{Type: event.WindowExposed})
	assert.Equal(t, 1, surface.placeholds)

	assert.ErrorIs(t, s.Push(frame(10, 10)), ErrNoVideo)
	s.SetOrientation(geometry.Orientation90)
	assert.Equal(t, geometry.Orientation0, s.Orientation())
	assert.NoError(t, s.CheckInvariants())
}

func TestScreenResizeToFit(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)

	surface.size = geometry.Size{Width: 1000, Height: 1000}
	surface.position = geometry.Point{X: 100, Y: 100}

	s.ResizeToFit()
	assert.Equal(t, geometry.Size{Width: 450, Height: 1000}, surface.size)
	assert.Equal(t, geometry.Point{X: 375, Y: 100}, surface.position)

	s.ResizeToPixelPerfect()
	assert.Equal(t, geometry.Size{Width: 1080, Height: 2400}, surface.size)

	surface.state = Fullscreen
	s.ResizeToFit()
	s.ResizeToPixelPerfect()
	assert.Equal(t, geometry.Size{Width: 1080, Height: 2400}, surface.size, "not windowed, nothing changes")
}

func TestScreenContinuousResize(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)
	require.NotNil(t, surface.watch)

	surface.size = geometry.Size{Width: 600, Height: 600}
	surface.watch()

	assert.Equal(t, geometry.Rect{X: 165, Y: 0, W: 270, H: 600}, s.ContentRect())
	assert.Len(t, surface.draws, 2)

	surface.size = geometry.Size{Width: 1000, Height: 1000}
	s.HandleEvent(event.Event{Type: event.WindowPixelSizeChanged})
	assert.Equal(t, geometry.Rect{X: 275, Y: 0, W: 450, H: 1000}, s.ContentRect())
}

func TestScreenWindowToContent(t *testing.T) {
	input := &fakeInput{}
	s, surface, q := newTestScreen(t, func(p *Params) { p.Input = input })
	surface.scale = 2

	_, err := s.WindowToContent(geometry.Point{X: 1, Y: 1})
	assert.ErrorIs(t, err, coords.ErrEmptyRect)

	pushAndHandle(t, s, q, 1080, 2400)
	assert.Equal(t, geometry.Rect{X: 0, Y: 2, W: 884, H: 1964}, s.ContentRect())

	p, err := s.WindowToContent(geometry.Point{X: 221, Y: 492})
	require.NoError(t, err)
	assert.Equal(t, geometry.Point{X: 540, Y: 1200}, p)

	assert.True(t, s.HandleEvent(event.Event{Type: event.PointerDown, X: 221, Y: 492}))
	require.Len(t, input.received, 1)
	assert.NoError(t, input.received[0].err)
	assert.Equal(t, geometry.Point{X: 540, Y: 1200}, input.received[0].point)

	assert.False(t, s.HandleEvent(event.Event{Type: event.Quit}))
}

func TestScreenHideWindow(t *testing.T) {
	s, surface, q := newTestScreen(t, nil)
	pushAndHandle(t, s, q, 1080, 2400)
	s.HideWindow()
	assert.False(t, surface.shown)
}

func TestScreenEventSource(t *testing.T) {
	s, _, _ := newTestScreen(t, nil)
	_, ok := s.EventSource()
	assert.False(t, ok)
}

func TestScreenNoVideoInput(t *testing.T) {
	input := &fakeInput{}
	s, _, _ := newTestScreen(t, func(p *Params) {
		p.Video = false
		p.Input = input
	})

	assert.True(t, s.HandleEvent(event.Event{Type: event.KeyDown, Key: "home"}))
	assert.True(t, s.HandleEvent(event.Event{Type: event.PointerDown, X: 10, Y: 10}))

	require.Len(t, input.received, 2)
	assert.Equal(t, event.KeyDown, input.received[0].ev.Type)
	// without frames there is no content to map pointers to
	assert.ErrorIs(t, input.received[1].err, coords.ErrEmptyRect)
}

func TestScreenInvariantsEmptyContent(t *testing.T) {
	s, _, _ := newTestScreen(t, nil)
	s.hasFrame = true
	s.hasTexture = true

	assert.ErrorContains(t, s.CheckInvariants(), "empty content size")
}
