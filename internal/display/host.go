package display

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/device"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

const hostQueryTimeout = 5 * time.Second

// hostBounds queries the host display resolution once. The result, failure
// included, is kept for the lifetime of the window.
type hostBounds struct {
	resolve func(ctx context.Context) (geometry.Size, error)

	once sync.Once
	size geometry.Size
	err  error
}

func newHostBounds() *hostBounds {
	return &hostBounds{resolve: device.HostDisplayResolution}
}

func (h *hostBounds) Get() (geometry.Size, error) {
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), hostQueryTimeout)
		defer cancel()
		h.size, h.err = h.resolve(ctx)
		if h.err != nil {
			h.err = errors.Wrap(h.err, "could not get display bounds")
		}
	})
	return h.size, h.err
}

// needsResizeWatch reports whether the event loop stays blocked while the
// user resizes a window on goos, so that rendering must happen from an event
// watch.
func needsResizeWatch(goos string) bool {
	return goos == "darwin" || goos == "windows"
}
