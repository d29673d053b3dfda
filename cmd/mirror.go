package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/babelcloud/gbox/packages/mirror/config"
	"github.com/babelcloud/gbox/packages/mirror/internal/capture"
	"github.com/babelcloud/gbox/packages/mirror/internal/device"
	"github.com/babelcloud/gbox/packages/mirror/internal/input"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/event"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/screen"
	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/session"
	"github.com/babelcloud/gbox/packages/mirror/internal/monitoring"
	"github.com/babelcloud/gbox/packages/mirror/internal/thread"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

type MirrorOptions struct {
	NoVideo   bool
	NoControl bool
}

// config keys overridden by mirror flags
var mirrorFlagKeys = map[string]string{
	"window-title":      "window.title",
	"window-x":          "window.x",
	"window-y":          "window.y",
	"window-width":      "window.width",
	"window-height":     "window.height",
	"fullscreen":        "window.fullscreen",
	"always-on-top":     "window.always_on_top",
	"window-borderless": "window.borderless",
	"orientation":       "display.orientation",
	"print-fps":         "fps_counter.start",
	"metrics-listen":    "metrics.listen",
	"capture-interval":  "capture.interval",
	"shortcut-mod":      "shortcut.modifier",
	"adb-host":          "adb.host",
	"adb-port":          "adb.port",
	"strict":            "debug.strict",
}

func NewMirrorCommand() *cobra.Command {
	opts := &MirrorOptions{}

	cmd := &cobra.Command{
		Use:   "mirror [serial]",
		Short: "Mirror the screen of a device in a window",
		Long: `Mirror the screen of an Android device in a window.

Without a serial, the only device ready for use is mirrored. Shortcuts use the
modifier set with --shortcut-mod (alt by default):

  mod+f              toggle fullscreen
  mod+w              resize the window to remove black borders
  mod+g              resize the window to 1:1 (pixel-perfect)
  mod+left/right     rotate the display
  mod+shift+arrows   flip the display
  mod+z, mod+shift+z pause and resume the display
  mod+i              toggle the fps counter`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			serial := ""
			if len(args) > 0 {
				serial = args[0]
			}
			return ExecuteMirror(cmd, serial, opts)
		},
		Example: `  # Mirror the only connected device:
  gbox-mirror mirror

  # Mirror a device by serial, rotated, with the fps counter:
  gbox-mirror mirror emulator-5554 --orientation 90 --print-fps`,
	}

	flags := cmd.Flags()
	flags.String("window-title", "", "Set a custom window title")
	flags.Int("window-x", 0, "Set the initial window horizontal position (centered by default)")
	flags.Int("window-y", 0, "Set the initial window vertical position (centered by default)")
	flags.Int("window-width", 0, "Set the initial window width (0 computes it from the device size)")
	flags.Int("window-height", 0, "Set the initial window height (0 computes it from the device size)")
	flags.Bool("fullscreen", false, "Start in fullscreen")
	flags.Bool("always-on-top", false, "Make the window always on top")
	flags.Bool("window-borderless", false, "Disable window decorations")
	flags.String("orientation", "0", "Display orientation: 0, 90, 180, 270, flip0, flip90, flip180 or flip270")
	flags.Bool("print-fps", false, "Start the fps counter, which logs the frame rate every second")
	flags.String("metrics-listen", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9090")
	flags.Duration("capture-interval", 0, "Minimum delay between two captures")
	flags.String("shortcut-mod", "alt", "Modifier of the keyboard shortcuts: ctrl, alt, gui or shift")
	flags.String("adb-host", "", "Host of the adb server")
	flags.Int("adb-port", 5037, "Port of the adb server")
	flags.Bool("strict", false, "Abort on window system failures instead of logging them")
	flags.BoolVar(&opts.NoVideo, "no-video", false, "Do not capture the screen, only forward input")
	flags.BoolVar(&opts.NoControl, "no-control", false, "Do not forward input to the device")

	for name, key := range mirrorFlagKeys {
		if err := config.BindFlag(key, flags.Lookup(name)); err != nil {
			panic(err)
		}
	}

	cmd.RegisterFlagCompletionFunc("orientation", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"0", "90", "180", "270", "flip0", "flip90", "flip180", "flip270"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func ExecuteMirror(cmd *cobra.Command, serial string, opts *MirrorOptions) error {
	logger := util.GetLogger()

	if opts.NoVideo {
		config.Set("video.enabled", false)
	}
	if opts.NoControl {
		config.Set("input.enabled", false)
	}
	cfg, err := config.Mirror()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	manager, err := device.NewManager(device.Config{Host: cfg.AdbHost, Port: cfg.AdbPort})
	if err != nil {
		return err
	}
	devices, err := manager.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	dev, err := device.Select(devices, serial)
	if err != nil {
		return err
	}
	logger.Info("Mirroring device", "device", dev.Serial, "model", dev.Model, "connection", string(dev.ConnectionType))

	go func() {
		select {
		case <-manager.WatchDisconnect(ctx, dev.Serial):
			logger.Warn("Device disconnected", "device", dev.Serial)
			cancel()
		case <-ctx.Done():
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGoCollector())
	if cfg.MetricsListen != "" {
		mon := monitoring.New(monitoring.Config{Listen: cfg.MetricsListen, Profiling: cfg.MetricsProfiling}, reg)
		if err := mon.Start(); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := mon.Shutdown(shutdownCtx); err != nil {
				logger.Warn("Could not shut down monitoring server", "error", err)
			}
		}()
	}

	toolkit, err := newToolkit()
	if err != nil {
		return err
	}

	shell := manager.Shell(dev.Serial)
	queue := event.NewQueue(event.DefaultCapacity)

	params := screen.Params{
		Toolkit:         toolkit,
		Events:          queue,
		Metrics:         reg,
		Video:           cfg.Video,
		Title:           cfg.WindowTitle,
		WindowX:         cfg.WindowX,
		WindowY:         cfg.WindowY,
		Width:           cfg.WindowWidth,
		Height:          cfg.WindowHeight,
		Fullscreen:      cfg.Fullscreen,
		AlwaysOnTop:     cfg.AlwaysOnTop,
		Borderless:      cfg.Borderless,
		Orientation:     cfg.Orientation,
		Margins:         &cfg.DisplayMargins,
		StartFPSCounter: cfg.StartFPSCounter,
		Strict:          cfg.Strict,
	}
	if params.Title == "" {
		params.Title = dev.Model
		if params.Title == "" {
			params.Title = dev.Serial
		}
	}
	if cfg.Input {
		injector := input.NewInjector(shell)
		params.Input = injector
		go injector.Run(ctx)
	}

	var producer session.Producer
	if cfg.Video {
		producer = capture.NewScreencap(shell, cfg.CaptureInterval)
	}

	// the window system must be driven from the main thread
	return thread.CallErr(func() error {
		scr, err := screen.New(params)
		if err != nil {
			return err
		}

		sessionCfg := session.Config{
			Screen:    scr,
			Queue:     queue,
			Producer:  producer,
			Shortcuts: session.NewShortcuts(scr, cfg.ShortcutModifier),
		}
		if source, ok := scr.EventSource(); ok {
			sessionCfg.Source = source
		}

		s, err := session.New(sessionCfg)
		if err != nil {
			_ = scr.Destroy()
			return err
		}
		return s.Run(ctx)
	})
}
