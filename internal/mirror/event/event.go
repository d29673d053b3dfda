// Package event carries notifications from the frame producer and the window
// system to the render loop.
package event

import (
	"context"

	"github.com/pkg/errors"
)

// Type of an Event.
type Type int

const (
	None Type = iota
	// NewFrame is posted by the producer when the frame buffer goes from empty
	// to filled.
	NewFrame
	WindowExposed
	WindowPixelSizeChanged
	// WindowResized is posted during a continuous resize by surfaces that
	// support resize watching.
	WindowResized
	WindowRestored
	WindowEnterFullscreen
	WindowLeaveFullscreen
	PointerMotion
	PointerDown
	PointerUp
	KeyDown
	KeyUp
	Quit
)

var typeNames = map[Type]string{
	None:                   "none",
	NewFrame:               "new-frame",
	WindowExposed:          "window-exposed",
	WindowPixelSizeChanged: "window-pixel-size-changed",
	WindowResized:          "window-resized",
	WindowRestored:         "window-restored",
	WindowEnterFullscreen:  "window-enter-fullscreen",
	WindowLeaveFullscreen:  "window-leave-fullscreen",
	PointerMotion:          "pointer-motion",
	PointerDown:            "pointer-down",
	PointerUp:              "pointer-up",
	KeyDown:                "key-down",
	KeyUp:                  "key-up",
	Quit:                   "quit",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return "unknown"
}

// IsInput reports whether the event is user input rather than a window or
// frame notification.
func (t Type) IsInput() bool {
	return t >= PointerMotion && t <= KeyUp
}

// Event is a tagged notification. X and Y are window coordinates for pointer
// events; Key is a toolkit specific key name.
type Event struct {
	Type   Type
	X, Y   int
	Button int
	Key    string
}

// ErrQueueFull is returned when an event cannot be posted without blocking.
var ErrQueueFull = errors.New("event queue is full")

// DefaultCapacity of a Queue.
const DefaultCapacity = 64

// Queue is a bounded FIFO with many writers and a single reader.
type Queue struct {
	ch chan Event
}

// NewQueue returns a queue holding up to capacity events, or DefaultCapacity
// when capacity is not positive.
func NewQueue(capacity int) *Queue {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Queue{ch: make(chan Event, capacity)}
}

// Push posts ev without blocking.
func (q *Queue) Push(ev Event) error {
	select {
	case q.ch <- ev:
		return nil
	default:
		return ErrQueueFull
	}
}

// Poll returns the next event if one is queued.
func (q *Queue) Poll() (Event, bool) {
	select {
	case ev := <-q.ch:
		return ev, true
	default:
		return Event{}, false
	}
}

// Wait blocks until an event is queued or ctx is done.
func (q *Queue) Wait(ctx context.Context) (Event, error) {
	select {
	case ev := <-q.ch:
		return ev, nil
	case <-ctx.Done():
		return Event{}, ctx.Err()
	}
}

// C returns the channel events are received from, for use in a select.
func (q *Queue) C() <-chan Event {
	return q.ch
}

// Len returns the number of queued events.
func (q *Queue) Len() int {
	return len(q.ch)
}
