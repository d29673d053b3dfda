package main

import (
	"os"

	"github.com/babelcloud/gbox/packages/mirror/cmd"
	"github.com/babelcloud/gbox/packages/mirror/internal/thread"
)

func main() {
	code := 0
	thread.Main(func() {
		if err := cmd.Execute(); err != nil {
			code = 1
		}
	})
	os.Exit(code)
}
