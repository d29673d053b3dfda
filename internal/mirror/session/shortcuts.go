package session

import (
	"strings"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/fps"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

// DefaultModifier prefixes every shortcut key.
const DefaultModifier = "alt"

// Display is the part of the screen controlled by keyboard shortcuts.
type Display interface {
	Orientation() geometry.Orientation
	SetOrientation(geometry.Orientation)
	ToggleFullscreen()
	ResizeToFit()
	ResizeToPixelPerfect()
	Paused() bool
	SetPaused(bool)
	FPS() *fps.Counter
}

// Shortcuts maps key names such as "alt+left" to display actions.
type Shortcuts struct {
	actions map[string]func()
}

// NewShortcuts binds the default actions to d, each key prefixed with
// modifier.
func NewShortcuts(d Display, modifier string) *Shortcuts {
	if modifier == "" {
		modifier = DefaultModifier
	}
	transform := func(t geometry.Orientation) func() {
		return func() { d.SetOrientation(d.Orientation().Apply(t)) }
	}

	bindings := map[string]func(){
		"f":           d.ToggleFullscreen,
		"w":           d.ResizeToFit,
		"g":           d.ResizeToPixelPerfect,
		"left":        transform(geometry.Orientation270),
		"right":       transform(geometry.Orientation90),
		"shift+left":  transform(geometry.OrientationFlip0),
		"shift+right": transform(geometry.OrientationFlip0),
		"shift+up":    transform(geometry.OrientationFlip180),
		"shift+down":  transform(geometry.OrientationFlip180),
		"z":           func() { d.SetPaused(true) },
		"shift+z":     func() { d.SetPaused(false) },
		"i": func() {
			counter := d.FPS()
			if counter.IsStarted() {
				counter.Stop()
				return
			}
			// fails only once interrupted, when the session is ending
			_ = counter.Start()
		},
	}

	modifier = strings.ToLower(modifier)
	s := &Shortcuts{actions: make(map[string]func(), len(bindings))}
	for key, action := range bindings {
		s.actions[modifier+"+"+key] = action
	}
	return s
}

// Handle runs the action bound to key. It returns false when key is not a
// shortcut.
func (s *Shortcuts) Handle(key string) bool {
	action, ok := s.actions[strings.ToLower(key)]
	if !ok {
		return false
	}
	action()
	return true
}
