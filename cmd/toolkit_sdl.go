//go:build sdl

package cmd

import (
	"github.com/babelcloud/gbox/packages/mirror/internal/display"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/screen"
)

func newToolkit() (screen.Toolkit, error) {
	return display.Toolkit{}, nil
}
