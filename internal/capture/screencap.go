// Package capture produces frames from a device screen.
package capture

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"log/slog"
	"strings"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/framebuffer"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

// Shell runs a command on the device and returns its output.
type Shell interface {
	RunCommand(cmd string, args ...string) (string, error)
}

// Screencap grabs screenshots with "screencap -p" and pushes them to a sink.
type Screencap struct {
	shell    Shell
	interval time.Duration
	logger   *slog.Logger

	// reused between captures, the sink copies what it is pushed
	rgba  *image.RGBA
	frame framebuffer.Frame
}

// NewScreencap creates a producer capturing every interval. A zero interval
// captures back to back.
func NewScreencap(shell Shell, interval time.Duration) *Screencap {
	return &Screencap{
		shell:    shell,
		interval: interval,
		logger:   util.GetLogger(),
	}
}

// Run captures until ctx is done or the sink refuses a frame. The sink is
// opened with the size of the first capture. Later captures may have another
// size, when the device rotates.
func (s *Screencap) Run(ctx context.Context, sink framebuffer.Sink) error {
	start := time.Now()

	img, err := s.capture()
	if err != nil {
		return err
	}
	b := img.Bounds()
	if err := sink.Open(framebuffer.Descriptor{
		Width:  b.Dx(),
		Height: b.Dy(),
		Format: framebuffer.PixelFormatRGBA,
	}); err != nil {
		return errors.Wrap(err, "failed to open frame sink")
	}
	defer sink.Close()

	s.logger.Debug("Capture started", "width", b.Dx(), "height", b.Dy())

	var wait *time.Timer
	for {
		if err := sink.Push(s.toFrame(img, time.Since(start))); err != nil {
			return errors.Wrap(err, "failed to push frame")
		}

		if s.interval > 0 {
			if wait == nil {
				wait = time.NewTimer(s.interval)
				defer wait.Stop()
			} else {
				wait.Reset(s.interval)
			}
			select {
			case <-ctx.Done():
				return nil
			case <-wait.C:
			}
		} else if ctx.Err() != nil {
			return nil
		}

		img, err = s.capture()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
	}
}

func (s *Screencap) capture() (image.Image, error) {
	output, err := s.shell.RunCommand("screencap", "-p")
	if err != nil {
		return nil, errors.Wrap(err, "failed to run screencap")
	}
	return decodePNG(output)
}

// decodePNG decodes the screencap output. Shells allocated with a pty turn
// "\n" into "\r\n", which corrupts the image.
func decodePNG(output string) (image.Image, error) {
	img, err := png.Decode(strings.NewReader(output))
	if err == nil {
		return img, nil
	}
	fixed := bytes.ReplaceAll([]byte(output), []byte("\r\n"), []byte("\n"))
	img, retryErr := png.Decode(bytes.NewReader(fixed))
	if retryErr != nil {
		return nil, errors.Wrap(err, "failed to decode screencap output")
	}
	return img, nil
}

func (s *Screencap) toFrame(img image.Image, pts time.Duration) *framebuffer.Frame {
	b := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || b.Min != (image.Point{}) {
		if s.rgba == nil || s.rgba.Bounds().Size() != b.Size() {
			s.rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		}
		draw.Draw(s.rgba, s.rgba.Bounds(), img, b.Min, draw.Src)
		rgba = s.rgba
	}

	s.frame.Width = b.Dx()
	s.frame.Height = b.Dy()
	s.frame.Format = framebuffer.PixelFormatRGBA
	s.frame.ColorRange = framebuffer.ColorRangeFull
	s.frame.Planes = [3][]byte{rgba.Pix}
	s.frame.Strides = [3]int{rgba.Stride}
	s.frame.PTS = pts.Microseconds()
	return &s.frame
}
