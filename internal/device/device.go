// Package device discovers Android devices through adb.
package device

import "strings"

// State of a device as printed by "adb devices".
type State string

const (
	StateDevice       State = "device"
	StateUnauthorized State = "unauthorized"
	StateOffline      State = "offline"
	StateBootloader   State = "bootloader"
	StateHost         State = "host"
	StateRecovery     State = "recovery"
	StateRescue       State = "rescue"
	StateSideload     State = "sideload"
	StateAuthorizing  State = "authorizing"
	StateConnecting   State = "connecting"
	StateDetached     State = "detached"
	StateUnknown      State = "unknown"
)

// the most common states come first
var knownStates = []State{
	StateDevice,
	StateUnauthorized,
	StateOffline,
	StateBootloader,
	StateHost,
	StateRecovery,
	StateRescue,
	StateSideload,
	StateAuthorizing,
	StateConnecting,
	StateDetached,
}

// ParseState returns the state named s, if adb knows it.
func ParseState(s string) (State, bool) {
	for _, state := range knownStates {
		if string(state) == s {
			return state, true
		}
	}
	return StateUnknown, false
}

// ConnectionType tells how adb reaches the device.
type ConnectionType string

const (
	ConnectionUSB  ConnectionType = "usb"
	ConnectionIP   ConnectionType = "ip"
	ConnectionMDNS ConnectionType = "mdns"
)

// Device is an entry of the adb device list.
type Device struct {
	Serial         string         `json:"serial"`
	State          State          `json:"state"`
	Model          string         `json:"model,omitempty"`
	ConnectionType ConnectionType `json:"connectionType"`
	// WifiIP is only filled on request, see Manager.WifiIP.
	WifiIP string `json:"wifiIp,omitempty"`
}

// Ready reports whether the device accepts commands.
func (d Device) Ready() bool {
	return d.State == StateDevice
}

func connectionType(serial string) ConnectionType {
	switch {
	case strings.Contains(serial, "._adb._tcp"):
		// mDNS service name, e.g. "adb-A4RYVB3A20008848._adb._tcp"
		return ConnectionMDNS
	case strings.Contains(serial, ":"):
		// IP address with port, e.g. "192.168.1.100:5555"
		return ConnectionIP
	default:
		return ConnectionUSB
	}
}

// Select returns the device to mirror: the one with the given serial, or the
// only ready device when serial is empty.
func Select(devices []Device, serial string) (Device, error) {
	if serial != "" {
		for _, d := range devices {
			if d.Serial == serial {
				if !d.Ready() {
					return Device{}, &NotReadyError{Device: d}
				}
				return d, nil
			}
		}
		return Device{}, ErrNotFound
	}

	var ready []Device
	for _, d := range devices {
		if d.Ready() {
			ready = append(ready, d)
		}
	}
	switch len(ready) {
	case 0:
		return Device{}, ErrNotFound
	case 1:
		return ready[0], nil
	default:
		return Device{}, ErrMultipleDevices
	}
}
