package device

import (
	"strings"
)

const devicesHeader = "List of devices attached"

// ParseDevices parses the output of "adb devices -l". The second result is
// false when the header was not found, in which case the output is not a
// device list at all.
func ParseDevices(output string) ([]Device, bool) {
	var devices []Device
	headerFound := false

	for _, line := range strings.Split(output, "\n") {
		if !headerFound {
			// the daemon may print garbage before the header while starting
			if strings.HasPrefix(line, devicesHeader) {
				headerFound = true
			}
			continue
		}

		if d, ok := parseDevice(strings.TrimRight(line, "\r")); ok {
			devices = append(devices, d)
		}
	}
	return devices, headerFound
}

// parseDevice parses one line such as
//
//	0123456789abcdef	device usb:2-1 product:MyProduct model:MyModel device:MyDevice transport_id:1
//
// The serial may contain spaces, so the line is parsed backwards until the
// device state, and everything before it is the serial.
func parseDevice(line string) (Device, bool) {
	if strings.HasPrefix(line, "*") || strings.HasPrefix(line, "adb server") {
		// "* daemon not running; starting now at tcp:5037"
		// "adb server version (41) doesn't match this client (39); killing..."
		return Device{}, false
	}

	var d Device
	rest := line
	for {
		rest = strings.TrimRight(rest, " \t")
		start := strings.LastIndexAny(rest, " \t") + 1
		token := rest[start:]
		if token == "" {
			return Device{}, false
		}
		rest = rest[:start]

		if model, ok := strings.CutPrefix(token, "model:"); ok {
			d.Model = model
		} else if state, ok := ParseState(token); ok {
			d.State = state
			break
		}
	}

	d.Serial = strings.TrimRight(rest, " \t")
	if d.Serial == "" {
		return Device{}, false
	}
	d.ConnectionType = connectionType(d.Serial)
	return d, true
}

// ParseIPRoute returns the source address of the first wlan route in the
// output of "ip route", e.g.
//
//	192.168.1.0/24 dev wlan0  proto kernel  scope link  src 192.168.1.x
func ParseIPRoute(output string) (string, bool) {
	for _, line := range strings.Split(output, "\n") {
		columns := strings.FieldsFunc(strings.TrimRight(line, "\r"), func(r rune) bool {
			return r == ' '
		})
		if len(columns) < 9 {
			continue
		}
		if !strings.HasPrefix(columns[2], "wlan") {
			continue
		}
		return columns[8], true
	}
	return "", false
}
