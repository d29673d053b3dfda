// Package input forwards pointer and key events to the device with the adb
// "input" command.
package input

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"k8s.io/utils/clock"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/screen"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

const (
	// a pointer moving less than this many device pixels is a tap
	tapSlop = 16
	// pending commands beyond this are dropped
	queueSize = 32
)

// android.view.KeyEvent codes
var keyCodes = map[string]int{
	"home":      3,
	"escape":    4,
	"up":        19,
	"down":      20,
	"left":      21,
	"right":     22,
	"tab":       61,
	"space":     62,
	"return":    66,
	"backspace": 67,
	"delete":    112,
	"pageup":    92,
	"pagedown":  93,
}

// Shell runs a command on the device.
type Shell interface {
	RunCommand(cmd string, args ...string) (string, error)
}

type pointer struct {
	down  bool
	start geometry.Point
	at    time.Time
}

// Injector implements screen.InputHandler. Events are translated on the
// render loop and the commands run on the goroutine calling Run, so a slow
// device never blocks rendering.
type Injector struct {
	shell    Shell
	commands chan []string
	logger   *slog.Logger
	clock    clock.PassiveClock

	pointer pointer
}

var _ screen.InputHandler = (*Injector)(nil)

// NewInjector creates an injector sending commands through shell.
func NewInjector(shell Shell) *Injector {
	return &Injector{
		shell:    shell,
		commands: make(chan []string, queueSize),
		logger:   util.GetLogger(),
		clock:    clock.RealClock{},
	}
}

// Run executes the queued commands until ctx is done.
func (in *Injector) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case args := <-in.commands:
			if _, err := in.shell.RunCommand("input", args...); err != nil {
				in.logger.Warn("Could not inject input", "command", strings.Join(args, " "), "error", err)
			}
		}
	}
}

// HandleInput translates ev into an input command.
func (in *Injector) HandleInput(ev event.Event, m screen.Mapper) {
	switch ev.Type {
	case event.PointerDown:
		p, ok := in.toDevice(ev, m)
		if !ok {
			return
		}
		in.pointer = pointer{down: true, start: p, at: in.clock.Now()}
	case event.PointerUp:
		if !in.pointer.down {
			return
		}
		start := in.pointer.start
		in.pointer.down = false
		p, ok := in.toDevice(ev, m)
		if !ok {
			return
		}
		if abs(p.X-start.X) < tapSlop && abs(p.Y-start.Y) < tapSlop {
			in.enqueue("tap", itoa(start.X), itoa(start.Y))
			return
		}
		duration := in.clock.Since(in.pointer.at).Milliseconds()
		in.enqueue("swipe", itoa(start.X), itoa(start.Y), itoa(p.X), itoa(p.Y), strconv.FormatInt(duration, 10))
	case event.KeyDown:
		key := strings.ToLower(ev.Key)
		if code, ok := keyCodes[key]; ok {
			in.enqueue("keyevent", itoa(code))
			return
		}
		if utf8.RuneCountInString(ev.Key) == 1 && ev.Key != " " {
			in.enqueue("text", ev.Key)
		}
	}
}

// toDevice maps the event position to frame pixels. Positions outside of the
// frame are dropped.
func (in *Injector) toDevice(ev event.Event, m screen.Mapper) (geometry.Point, bool) {
	p, err := m.WindowToContent(geometry.Point{X: ev.X, Y: ev.Y})
	if err != nil {
		in.logger.Debug("Could not map pointer position", "x", ev.X, "y", ev.Y, "error", err)
		return geometry.Point{}, false
	}
	frame := m.FrameSize()
	if p.X < 0 || p.Y < 0 || p.X >= frame.Width || p.Y >= frame.Height {
		return geometry.Point{}, false
	}
	return p, true
}

func (in *Injector) enqueue(args ...string) {
	select {
	case in.commands <- args:
	default:
		in.logger.Warn("Input queue full, dropping command", "command", strings.Join(args, " "))
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func itoa(v int) string {
	return strconv.Itoa(v)
}
