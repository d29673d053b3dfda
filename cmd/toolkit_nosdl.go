//go:build !sdl

package cmd

import (
	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/screen"
)

func newToolkit() (screen.Toolkit, error) {
	return nil, errors.New("this binary was built without a window system, rebuild it with -tags sdl")
}
