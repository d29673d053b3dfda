// Package resize reconciles content size changes with the window state. While
// the window is fullscreen, maximized or minimized, content driven resizes are
// deferred and coalesced until it is windowed again.
package resize

import "github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"

// State of a Tracker.
type State int

const (
	Idle State = iota
	Pending
)

func (s State) String() string {
	if s == Pending {
		return "pending"
	}
	return "idle"
}

// Tracker is used from the render loop only and is not safe for concurrent use.
type Tracker struct {
	state State
	// content size when the window left the windowed state
	windowedContent geometry.Size
}

// State returns the current state.
func (t *Tracker) State() State {
	return t.state
}

// WindowedContentSize returns the content size snapshotted when the window
// left the windowed state. Only meaningful while Pending.
func (t *Tracker) WindowedContentSize() geometry.Size {
	return t.windowedContent
}

// ContentChanged records that the content size changed from old. It returns
// true when the window is windowed and must be resized right away.
func (t *Tracker) ContentChanged(windowed bool, old geometry.Size) bool {
	if windowed {
		return true
	}
	if t.state == Idle {
		t.windowedContent = old
		t.state = Pending
	}
	return false
}

// TakePending ends a pending resize and returns the content size it must be
// computed from.
func (t *Tracker) TakePending() (geometry.Size, bool) {
	if t.state != Pending {
		return geometry.Size{}, false
	}
	t.state = Idle
	return t.windowedContent, true
}

// Target scales window by to/from on each axis, then fits the result to the
// aspect ratio of to.
func Target(window, from, to geometry.Size, bounds *geometry.Size) geometry.Size {
	if from.IsEmpty() {
		return geometry.OptimalSize(window, to, bounds)
	}
	target := geometry.Size{
		Width:  int(int64(window.Width) * int64(to.Width) / int64(from.Width)),
		Height: int(int64(window.Height) * int64(to.Height) / int64(from.Height)),
	}
	return geometry.OptimalSize(target, to, bounds)
}
