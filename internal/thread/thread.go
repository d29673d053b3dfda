// Package thread runs the window system code on the main OS thread, which
// SDL requires on most platforms.
// See: https://github.com/golang/go/wiki/LockOSThread
package thread

import (
	"github.com/faiface/mainthread"
)

// Main runs f while the main OS thread serves Call. It must be called from
// the main goroutine and returns when f returns.
func Main(f func()) {
	mainthread.Run(f)
}

// Call runs f on the main OS thread and waits for it to finish.
func Call(f func()) {
	mainthread.Call(f)
}

// CallErr runs f on the main OS thread and returns its error.
func CallErr(f func() error) error {
	return mainthread.CallErr(f)
}
