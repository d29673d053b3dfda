package session

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/fps"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

type fakeDisplay struct {
	orientation       geometry.Orientation
	paused            bool
	fullscreenToggles int
	fits              int
	pixelPerfects     int
	counter           *fps.Counter
}

func newFakeDisplay(t *testing.T) *fakeDisplay {
	d := &fakeDisplay{counter: fps.New(nil)}
	t.Cleanup(func() {
		d.counter.Interrupt()
		d.counter.Join()
	})
	return d
}

func (d *fakeDisplay) Orientation() geometry.Orientation     { return d.orientation }
func (d *fakeDisplay) SetOrientation(o geometry.Orientation) { d.orientation = o }
func (d *fakeDisplay) ToggleFullscreen()                     { d.fullscreenToggles++ }
func (d *fakeDisplay) ResizeToFit()                          { d.fits++ }
func (d *fakeDisplay) ResizeToPixelPerfect()                 { d.pixelPerfects++ }
func (d *fakeDisplay) Paused() bool                          { return d.paused }
func (d *fakeDisplay) SetPaused(paused bool)                 { d.paused = paused }
func (d *fakeDisplay) FPS() *fps.Counter                     { return d.counter }

func TestShortcutsRotation(t *testing.T) {
	d := newFakeDisplay(t)
	s := NewShortcuts(d, "")

	assert.True(t, s.Handle("alt+right"))
	assert.Equal(t, geometry.Orientation90, d.orientation)
	assert.True(t, s.Handle("alt+right"))
	assert.Equal(t, geometry.Orientation180, d.orientation)
	assert.True(t, s.Handle("alt+left"))
	assert.True(t, s.Handle("alt+left"))
	assert.Equal(t, geometry.Orientation0, d.orientation)

	assert.True(t, s.Handle("alt+shift+left"))
	assert.Equal(t, geometry.OrientationFlip0, d.orientation)
	assert.True(t, s.Handle("ALT+SHIFT+RIGHT"))
	assert.Equal(t, geometry.Orientation0, d.orientation)

	assert.True(t, s.Handle("alt+shift+up"))
	assert.Equal(t, geometry.OrientationFlip180, d.orientation)
}

func TestShortcutsActions(t *testing.T) {
	d := newFakeDisplay(t)
	s := NewShortcuts(d, "ctrl")

	assert.False(t, s.Handle("alt+f"), "bound to another modifier")
	assert.True(t, s.Handle("ctrl+f"))
	assert.True(t, s.Handle("ctrl+w"))
	assert.True(t, s.Handle("ctrl+g"))
	assert.Equal(t, 1, d.fullscreenToggles)
	assert.Equal(t, 1, d.fits)
	assert.Equal(t, 1, d.pixelPerfects)

	assert.True(t, s.Handle("ctrl+z"))
	assert.True(t, d.paused)
	assert.True(t, s.Handle("ctrl+shift+z"))
	assert.False(t, d.paused)

	assert.True(t, s.Handle("ctrl+i"))
	assert.True(t, d.counter.IsStarted())
	assert.True(t, s.Handle("ctrl+i"))
	assert.False(t, d.counter.IsStarted())

	assert.False(t, s.Handle("ctrl+q"))
}
