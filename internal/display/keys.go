// Package display renders the mirrored screen in a desktop window.
//
// The SDL implementation is only built with the "sdl" build tag, as it needs
// the SDL2 development libraries.
package display

import "strings"

// Modifiers held while a key is pressed.
type Modifiers uint8

const (
	ModCtrl Modifiers = 1 << iota
	ModAlt
	ModGUI
	ModShift
)

var modifierNames = []struct {
	mod  Modifiers
	name string
}{
	{ModCtrl, "ctrl"},
	{ModAlt, "alt"},
	{ModGUI, "gui"},
	{ModShift, "shift"},
}

// KeyName returns the name of a key combination, e.g. "alt+shift+left".
// Spaces are removed from key names, so "Page Up" is "pageup".
func KeyName(key string, mods Modifiers) string {
	key = strings.ToLower(strings.ReplaceAll(key, " ", ""))
	if key == "" {
		return ""
	}

	var b strings.Builder
	for _, m := range modifierNames {
		if mods&m.mod != 0 {
			b.WriteString(m.name)
			b.WriteByte('+')
		}
	}
	b.WriteString(key)
	return b.String()
}
