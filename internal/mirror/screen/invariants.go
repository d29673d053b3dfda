package screen

import (
	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

// CheckInvariants returns an error describing the first inconsistency found in
// the screen state.
func (s *Screen) CheckInvariants() error {
	if !s.video && s.hasVideoWindow {
		return errors.New("video window without video")
	}
	if s.hasVideoWindow && !s.hasFrame {
		return errors.New("video window shown before the first frame")
	}
	if s.hasFrame {
		if s.contentSize.IsEmpty() {
			return errors.Errorf("empty content size %s", s.contentSize)
		}
		if expected := geometry.OrientedSize(s.frameSize, s.orientation); s.contentSize != expected {
			return errors.Errorf("content size %s does not match frame size %s in orientation %s",
				s.contentSize, s.frameSize, s.orientation)
		}
		if !s.hasTexture {
			return errors.New("frame applied without texture")
		}
	}
	if s.hasVideoWindow && !s.surface.OutputSize().IsEmpty() && (s.rect.W <= 0 || s.rect.H <= 0) {
		return errors.Errorf("empty content rect %+v", s.rect)
	}
	if s.destroyed && s.open.Load() {
		return errors.New("destroyed while the frame sink is open")
	}
	if !s.paused && s.resumeFrame != nil {
		return errors.New("resume frame kept while not paused")
	}
	return nil
}
