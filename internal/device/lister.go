package device

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	adb "github.com/basiooo/goadb"
	"github.com/pkg/errors"

	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

var (
	ErrNotFound        = errors.New("no device found")
	ErrMultipleDevices = errors.New("more than one device, select one by serial")
)

// NotReadyError is returned when the selected device cannot be mirrored.
type NotReadyError struct {
	Device Device
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("device %s is %s", e.Device.Serial, e.Device.State)
}

// Config of the adb server to talk to.
type Config struct {
	Host string
	Port int
}

// Manager lists devices and gives access to their shell.
type Manager struct {
	client  *adb.Adb
	adbPath string
	logger  *slog.Logger
}

// NewManager creates an adb client. The server is started on demand.
func NewManager(cfg Config) (*Manager, error) {
	port := cfg.Port
	if port == 0 {
		port = adb.AdbPort
	}
	client, err := adb.NewWithConfig(adb.ServerConfig{
		Host: cfg.Host,
		Port: port,
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create adb client on port %d", port)
	}

	adbPath, err := exec.LookPath("adb")
	if err != nil {
		adbPath = "adb"
	}

	return &Manager{
		client:  client,
		adbPath: adbPath,
		logger:  util.GetLogger(),
	}, nil
}

// List returns all the devices known to the adb server, whatever their
// state. When the adb protocol fails, the adb executable is used instead.
func (m *Manager) List(ctx context.Context) ([]Device, error) {
	devices, err := m.listFromServer()
	if err == nil {
		return devices, nil
	}
	m.logger.Debug("Listing devices through the adb server failed, falling back to adb executable", "error", err)

	output, err := exec.CommandContext(ctx, m.adbPath, "devices", "-l").Output()
	if err != nil {
		return nil, errors.Wrap(err, "failed to run adb devices")
	}
	devices, ok := ParseDevices(string(output))
	if !ok {
		return nil, errors.Errorf("unexpected adb devices output: %q", strings.TrimSpace(string(output)))
	}
	return devices, nil
}

func (m *Manager) listFromServer() ([]Device, error) {
	if err := m.client.StartServer(); err != nil {
		return nil, errors.Wrap(err, "failed to start adb server")
	}

	infos, err := m.client.ListDevices()
	if err != nil {
		return nil, errors.Wrap(err, "failed to list devices")
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		state := StateUnknown
		if s, err := m.client.Device(adb.DeviceWithSerial(info.Serial)).State(); err == nil {
			state = fromAdbState(s)
		}
		devices = append(devices, Device{
			Serial:         info.Serial,
			State:          state,
			Model:          info.Model,
			ConnectionType: connectionType(info.Serial),
		})
	}
	return devices, nil
}

func fromAdbState(s adb.DeviceState) State {
	switch s {
	case adb.StateOnline:
		return StateDevice
	case adb.StateOffline:
		return StateOffline
	case adb.StateUnauthorized:
		return StateUnauthorized
	default:
		return StateUnknown
	}
}

// Shell returns the shell of the device with the given serial.
func (m *Manager) Shell(serial string) *adb.Device {
	return m.client.Device(adb.DeviceWithSerial(serial))
}

// WatchDisconnect returns a channel closed when the device with the given
// serial leaves the online state, or when the adb server cannot be watched
// anymore. Watching stops when ctx is done.
func (m *Manager) WatchDisconnect(ctx context.Context, serial string) <-chan struct{} {
	disconnected := make(chan struct{})
	watcher := m.client.NewDeviceWatcher()

	go func() {
		defer watcher.Shutdown()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.C():
				if !ok {
					if err := watcher.Err(); err != nil {
						m.logger.Warn("Device watcher stopped", "error", err)
					}
					close(disconnected)
					return
				}
				if ev.Serial != serial {
					continue
				}
				m.logger.Debug("Device state changed", "device", serial, "from", ev.OldState, "to", ev.NewState)
				if ev.NewState != adb.StateOnline {
					close(disconnected)
					return
				}
			}
		}
	}()
	return disconnected
}

// WifiIP returns the address of the device on its wlan interface.
func (m *Manager) WifiIP(serial string) (string, error) {
	output, err := m.Shell(serial).RunCommand("ip", "route")
	if err != nil {
		return "", errors.Wrapf(err, "failed to run ip route on device %s", serial)
	}
	ip, ok := ParseIPRoute(output)
	if !ok {
		return "", errors.Errorf("no wlan address found on device %s", serial)
	}
	return ip, nil
}
