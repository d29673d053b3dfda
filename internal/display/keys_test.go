package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKeyName(t *testing.T) {
	tests := []struct {
		key      string
		mods     Modifiers
		expected string
	}{
		{"Left", 0, "left"},
		{"Left", ModAlt, "alt+left"},
		{"Left", ModShift | ModAlt, "alt+shift+left"},
		{"Z", ModShift | ModCtrl, "ctrl+shift+z"},
		{"Page Up", 0, "pageup"},
		{"F", ModGUI, "gui+f"},
		{"", ModAlt, ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, KeyName(tt.key, tt.mods), tt.key)
	}
}
