package device

import (
	"context"
	"os/exec"
	"runtime"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/mirror/geometry"
)

var errNoResolution = errors.New("could not determine display resolution")

// HostDisplayResolution returns the resolution of the primary display of this
// machine, using the platform tools. It is a fallback for window systems that
// cannot report the usable display bounds.
func HostDisplayResolution(ctx context.Context) (geometry.Size, error) {
	switch runtime.GOOS {
	case "darwin":
		output, err := exec.CommandContext(ctx, "system_profiler", "SPDisplaysDataType").Output()
		if err != nil {
			return geometry.Size{}, errors.Wrap(err, "failed to run system_profiler")
		}
		return parseSystemProfiler(string(output))
	case "linux":
		output, err := exec.CommandContext(ctx, "xrandr").Output()
		if err != nil {
			return geometry.Size{}, errors.Wrap(err, "failed to run xrandr")
		}
		return parseXrandr(string(output))
	case "windows":
		output, err := exec.CommandContext(ctx, "powershell", "-Command",
			"Get-WmiObject -Class Win32_VideoController | Select-Object -First 1 | Select-Object -ExpandProperty CurrentHorizontalResolution, CurrentVerticalResolution").Output()
		if err != nil {
			return geometry.Size{}, errors.Wrap(err, "failed to run powershell")
		}
		return parsePowershell(string(output))
	default:
		return geometry.Size{}, errors.Errorf("unsupported OS: %s", runtime.GOOS)
	}
}

// parseSystemProfiler picks the built-in display, then the main display, then
// the first one listed.
func parseSystemProfiler(output string) (geometry.Size, error) {
	type display struct {
		builtIn    bool
		main       bool
		resolution geometry.Size
	}

	var (
		displays   []display
		current    display
		inDisplays bool
	)
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)

		if strings.Contains(trimmed, "Displays:") {
			inDisplays = true
			continue
		}
		if !inDisplays {
			continue
		}

		// a display name is an indented line ending with a colon, e.g. "        Mi 27 NU:"
		if strings.HasSuffix(trimmed, ":") && (strings.HasPrefix(line, " ") || strings.HasPrefix(line, "\t")) {
			name := strings.TrimSuffix(trimmed, ":")
			if name != "" && !strings.Contains(name, ":") {
				if !current.resolution.IsEmpty() {
					displays = append(displays, current)
				}
				current = display{}
				continue
			}
		}

		if strings.Contains(trimmed, "Display Type: Built-in") || strings.Contains(trimmed, "Built-in: Yes") {
			current.builtIn = true
		}
		if strings.Contains(trimmed, "Main Display: Yes") {
			current.main = true
		}
		if value, ok := strings.CutPrefix(trimmed, "Resolution:"); ok {
			// "3840 x 2160 (2160p/4K UHD 1 - Ultra High Definition)" or "3456 x 2234 Retina"
			var numbers []int
			for _, field := range strings.Fields(value) {
				if n, err := strconv.Atoi(field); err == nil {
					numbers = append(numbers, n)
					if len(numbers) == 2 {
						break
					}
				}
			}
			if len(numbers) == 2 {
				current.resolution = geometry.Size{Width: numbers[0], Height: numbers[1]}
			}
		}
	}
	if !current.resolution.IsEmpty() {
		displays = append(displays, current)
	}

	var builtIn, main, first *display
	for i := range displays {
		d := &displays[i]
		if first == nil {
			first = d
		}
		if d.builtIn && builtIn == nil {
			builtIn = d
		}
		if d.main && main == nil {
			main = d
		}
	}
	switch {
	case builtIn != nil:
		return builtIn.resolution, nil
	case main != nil:
		return main.resolution, nil
	case first != nil:
		return first.resolution, nil
	default:
		return geometry.Size{}, errNoResolution
	}
}

// parseXrandr reads the current mode, a line like "   1920x1080     60.00*+",
// or the geometry of the primary output.
func parseXrandr(output string) (geometry.Size, error) {
	for _, line := range strings.Split(output, "\n") {
		if !strings.Contains(line, "connected primary") && !strings.Contains(line, "*") {
			continue
		}
		for _, field := range strings.Fields(line) {
			// "1920x1080+0+0" for the primary output
			field, _, _ = strings.Cut(field, "+")
			w, h, ok := strings.Cut(field, "x")
			if !ok {
				continue
			}
			width, err1 := strconv.Atoi(w)
			height, err2 := strconv.Atoi(h)
			if err1 == nil && err2 == nil {
				return geometry.Size{Width: width, Height: height}, nil
			}
		}
	}
	return geometry.Size{}, errNoResolution
}

// parsePowershell reads the horizontal then vertical resolution, one per line.
func parsePowershell(output string) (geometry.Size, error) {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	if len(lines) >= 2 {
		width, err1 := strconv.Atoi(strings.TrimSpace(lines[0]))
		height, err2 := strconv.Atoi(strings.TrimSpace(lines[1]))
		if err1 == nil && err2 == nil {
			return geometry.Size{Width: width, Height: height}, nil
		}
	}
	return geometry.Size{}, errNoResolution
}
