package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

const (
	appName   = "gbox-mirror"
	envPrefix = "GBOX_MIRROR"
)

var v *viper.Viper

func init() {
	v = newViper()

	// Look for config in the following paths
	configPaths := []string{
		".",
		filepath.Join(xdg.ConfigHome, appName),
		"/etc/" + appName,
	}
	for _, path := range configPaths {
		v.AddConfigPath(os.ExpandEnv(path))
	}

	// Read config file if it exists
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			// Config file was found but another error was produced
			panic(fmt.Sprintf("Fatal error reading config file: %s", err))
		}
	}
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("window.title", "")
	v.SetDefault("window.width", 0)
	v.SetDefault("window.height", 0)
	v.SetDefault("window.fullscreen", false)
	v.SetDefault("window.always_on_top", false)
	v.SetDefault("window.borderless", false)
	v.SetDefault("display.orientation", "0")
	v.SetDefault("display.margins", geometry.DisplayMargins)
	v.SetDefault("fps_counter.start", false)
	v.SetDefault("metrics.listen", "")
	v.SetDefault("metrics.profiling", false)
	v.SetDefault("capture.interval", time.Duration(0))
	v.SetDefault("adb.host", "")
	v.SetDefault("adb.port", 5037)
	v.SetDefault("debug.strict", false)
	v.SetDefault("video.enabled", true)
	v.SetDefault("input.enabled", true)
	v.SetDefault("shortcut.modifier", "alt")

	// Environment variables, e.g. GBOX_MIRROR_WINDOW_TITLE
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// window.x and window.y have no default, AutomaticEnv only covers known keys
	_ = v.BindEnv("window.x")
	_ = v.BindEnv("window.y")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	return v
}

// BindFlag makes flag override the config key.
func BindFlag(key string, flag *pflag.Flag) error {
	return errors.Wrapf(v.BindPFlag(key, flag), "failed to bind flag %s", flag.Name)
}

// Set overrides the value of key.
func Set(key string, value any) {
	v.Set(key, value)
}

// ConfigFile returns the config file in use, if any.
func ConfigFile() string {
	return v.ConfigFileUsed()
}

// MirrorConfig holds the settings of a mirroring session.
type MirrorConfig struct {
	WindowTitle      string
	WindowX          *int
	WindowY          *int
	WindowWidth      int
	WindowHeight     int
	Fullscreen       bool
	AlwaysOnTop      bool
	Borderless       bool
	Orientation      geometry.Orientation
	DisplayMargins   int
	StartFPSCounter  bool
	MetricsListen    string
	MetricsProfiling bool
	CaptureInterval  time.Duration
	AdbHost          string
	AdbPort          int
	Strict           bool
	Video            bool
	Input            bool
	ShortcutModifier string
}

// Mirror returns the mirroring settings.
func Mirror() (MirrorConfig, error) {
	return mirrorFrom(v)
}

func mirrorFrom(v *viper.Viper) (MirrorConfig, error) {
	orientation, err := geometry.ParseOrientation(v.GetString("display.orientation"))
	if err != nil {
		return MirrorConfig{}, errors.Wrap(err, "invalid display.orientation")
	}

	c := MirrorConfig{
		WindowTitle:      v.GetString("window.title"),
		WindowWidth:      v.GetInt("window.width"),
		WindowHeight:     v.GetInt("window.height"),
		Fullscreen:       v.GetBool("window.fullscreen"),
		AlwaysOnTop:      v.GetBool("window.always_on_top"),
		Borderless:       v.GetBool("window.borderless"),
		Orientation:      orientation,
		DisplayMargins:   v.GetInt("display.margins"),
		StartFPSCounter:  v.GetBool("fps_counter.start"),
		MetricsListen:    v.GetString("metrics.listen"),
		MetricsProfiling: v.GetBool("metrics.profiling"),
		CaptureInterval:  v.GetDuration("capture.interval"),
		AdbHost:          v.GetString("adb.host"),
		AdbPort:          v.GetInt("adb.port"),
		Strict:           v.GetBool("debug.strict"),
		Video:            v.GetBool("video.enabled"),
		Input:            v.GetBool("input.enabled"),
		ShortcutModifier: v.GetString("shortcut.modifier"),
	}
	if v.IsSet("window.x") {
		x := v.GetInt("window.x")
		c.WindowX = &x
	}
	if v.IsSet("window.y") {
		y := v.GetInt("window.y")
		c.WindowY = &y
	}

	if c.WindowWidth < 0 || c.WindowHeight < 0 {
		return MirrorConfig{}, errors.Errorf("invalid window size %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.DisplayMargins < 0 {
		return MirrorConfig{}, errors.Errorf("invalid display margins %d", c.DisplayMargins)
	}
	if c.CaptureInterval < 0 {
		return MirrorConfig{}, errors.Errorf("invalid capture interval %s", c.CaptureInterval)
	}
	return c, nil
}
