// Package fps reports rendered and skipped frames once per second.
package fps

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

// ErrInterrupted is returned by Start after Interrupt.
var ErrInterrupted = errors.New("fps counter interrupted")

// Counter logs frame statistics while started. Counting methods may be called
// from any goroutine.
type Counter struct {
	interval time.Duration
	logger   *slog.Logger

	mu       sync.Mutex
	started  bool
	running  bool
	rendered int
	skipped  int

	interrupt chan struct{}
	done      chan struct{}
	once      sync.Once

	renderedTotal prometheus.Counter
	skippedTotal  prometheus.Counter
}

// New returns a stopped counter. Metrics are registered on reg when it is not
// nil.
func New(reg prometheus.Registerer) *Counter {
	c := &Counter{
		interval:  time.Second,
		logger:    util.GetLogger(),
		interrupt: make(chan struct{}),
		done:      make(chan struct{}),
		renderedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mirror",
			Name:      "frames_rendered_total",
			Help:      "Number of frames rendered.",
		}),
		skippedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mirror",
			Name:      "frames_skipped_total",
			Help:      "Number of frames overwritten before being rendered.",
		}),
	}
	if reg != nil {
		reg.MustRegister(c.renderedTotal, c.skippedTotal)
	}
	return c
}

// Start begins periodic reporting, starting the reporting goroutine on first
// use. It fails once the counter was interrupted.
func (c *Counter) Start() error {
	select {
	case <-c.interrupt:
		return ErrInterrupted
	default:
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.rendered = 0
	c.skipped = 0
	c.started = true
	if !c.running {
		c.running = true
		go c.run()
	}
	c.logger.Info("FPS counter started")
	return nil
}

// Stop pauses reporting. The goroutine keeps running until Interrupt.
func (c *Counter) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		c.started = false
		c.logger.Info("FPS counter stopped")
	}
}

// IsStarted reports whether statistics are being reported.
func (c *Counter) IsStarted() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started
}

// Interrupt stops the reporting goroutine.
func (c *Counter) Interrupt() {
	c.once.Do(func() { close(c.interrupt) })
}

// Join waits for the reporting goroutine to exit after Interrupt. It returns
// immediately if the goroutine never ran.
func (c *Counter) Join() {
	c.mu.Lock()
	running := c.running
	c.mu.Unlock()
	if running {
		<-c.done
	}
}

// AddRendered counts a frame drawn on screen.
func (c *Counter) AddRendered() {
	c.renderedTotal.Inc()
	c.mu.Lock()
	if c.started {
		c.rendered++
	}
	c.mu.Unlock()
}

// AddSkipped counts a frame overwritten before being drawn.
func (c *Counter) AddSkipped() {
	c.skippedTotal.Inc()
	c.mu.Lock()
	if c.started {
		c.skipped++
	}
	c.mu.Unlock()
}

func (c *Counter) run() {
	defer close(c.done)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-c.interrupt:
			return
		case <-ticker.C:
			c.report()
		}
	}
}

func (c *Counter) report() {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return
	}
	rendered, skipped := c.rendered, c.skipped
	c.rendered = 0
	c.skipped = 0
	c.mu.Unlock()

	c.logger.Info(Report(rendered, skipped), "rendered", rendered, "skipped", skipped)
}

// Report formats one second of statistics.
func Report(rendered, skipped int) string {
	if skipped == 0 {
		return fmt.Sprintf("%d fps", rendered)
	}
	return fmt.Sprintf("%d fps (+%d frames skipped)", rendered, skipped)
}
