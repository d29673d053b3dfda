// Package session runs a mirroring session: a frame producer feeding the
// screen, and the render loop dispatching events to it.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/framebuffer"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/screen"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

// DefaultPollInterval is how often window system events are polled.
const DefaultPollInterval = 5 * time.Millisecond

// Producer pushes frames to a sink until ctx is done or the stream ends. It
// must open the sink before the first push and close it before returning.
type Producer interface {
	Run(ctx context.Context, sink framebuffer.Sink) error
}

// Controller is the part of the screen driven by the render loop.
type Controller interface {
	framebuffer.Sink
	HandleEvent(event.Event) bool
	HideWindow()
	Interrupt()
	Join()
	Destroy() error
}

// Config of a Session.
type Config struct {
	Screen   Controller
	Queue    *event.Queue
	Producer Producer
	// Source delivers window system events. Optional.
	Source       screen.EventSource
	PollInterval time.Duration
	// Shortcuts handles key presses before the screen. Optional.
	Shortcuts *Shortcuts
}

// Session owns the goroutine running the producer. Run must be called from
// the goroutine allowed to use the window system.
type Session struct {
	id     string
	cfg    Config
	logger *slog.Logger
	wg     sync.WaitGroup
}

// New returns a session ready to run.
func New(cfg Config) (*Session, error) {
	if cfg.Screen == nil {
		return nil, errors.New("session requires a screen")
	}
	if cfg.Queue == nil {
		return nil, errors.New("session requires an event queue")
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	id := uuid.New().String()
	return &Session{
		id:     id,
		cfg:    cfg,
		logger: util.GetLogger().With("session", id),
	}, nil
}

// ID identifies the session in logs.
func (s *Session) ID() string {
	return s.id
}

// Run dispatches events until ctx is done, a quit event is received or the
// producer stops. The screen is destroyed on return.
func (s *Session) Run(ctx context.Context) error {
	producerCtx, cancel := context.WithCancel(ctx)
	producerDone := make(chan error, 1)

	if s.cfg.Producer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			producerDone <- s.cfg.Producer.Run(producerCtx, s.cfg.Screen)
		}()
	}

	defer s.shutdown(cancel)

	s.logger.Info("Session started")

	var poll <-chan time.Time
	if s.cfg.Source != nil {
		ticker := time.NewTicker(s.cfg.PollInterval)
		defer ticker.Stop()
		poll = ticker.C
		if !s.pump() {
			return nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Session cancelled")
			return nil
		case err := <-producerDone:
			if err != nil && !errors.Is(err, context.Canceled) {
				return errors.Wrap(err, "frame producer failed")
			}
			s.logger.Info("Frame producer stopped")
			return nil
		case ev := <-s.cfg.Queue.C():
			if !s.dispatch(ev) {
				return nil
			}
		case <-poll:
			if !s.pump() {
				return nil
			}
		}
	}
}

// pump dispatches the pending window system events. It returns false on quit.
func (s *Session) pump() bool {
	for {
		ev, ok := s.cfg.Source.PollEvent()
		if !ok {
			return true
		}
		if !s.dispatch(ev) {
			return false
		}
	}
}

func (s *Session) dispatch(ev event.Event) bool {
	if ev.Type == event.Quit {
		s.logger.Debug("User requested to quit")
		return false
	}
	if ev.Type == event.KeyDown && s.cfg.Shortcuts != nil && s.cfg.Shortcuts.Handle(ev.Key) {
		return true
	}
	s.cfg.Screen.HandleEvent(ev)
	return true
}

func (s *Session) shutdown(cancel context.CancelFunc) {
	cancel()
	s.wg.Wait()

	s.cfg.Screen.HideWindow()
	s.cfg.Screen.Interrupt()
	s.cfg.Screen.Join()
	if err := s.cfg.Screen.Destroy(); err != nil {
		s.logger.Error("Could not destroy screen", "error", err)
	}
	s.logger.Info("Session ended")
}
