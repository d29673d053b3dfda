package cmd

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/babelcloud/gbox/packages/mirror/internal/device"
)

var testDevices = []device.Device{
	{Serial: "0123456789abcdef", State: device.StateDevice, Model: "Pixel_7", ConnectionType: device.ConnectionUSB},
	{Serial: "192.168.1.100:5555", State: device.StateUnauthorized, ConnectionType: device.ConnectionIP},
}

func TestOutputDevicesText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDevicesText(&buf, testDevices, false))

	expected := "SERIAL             STATE        MODEL   CONNECTION\n" +
		"------------------ ------------ ------- ----------\n" +
		"0123456789abcdef   device       Pixel_7 usb\n" +
		"192.168.1.100:5555 unauthorized -       ip\n"
	assert.Equal(t, expected, buf.String())
}

func TestOutputDevicesTextWifiIP(t *testing.T) {
	devices := []device.Device{
		{Serial: "0123456789abcdef", State: device.StateDevice, Model: "Pixel_7", ConnectionType: device.ConnectionUSB, WifiIP: "192.168.1.42"},
		{Serial: "emulator-5554", State: device.StateOffline, ConnectionType: device.ConnectionUSB},
	}
	var buf bytes.Buffer
	require.NoError(t, outputDevicesText(&buf, devices, false))

	expected := "SERIAL           STATE   MODEL   CONNECTION WIFI IP\n" +
		"---------------- ------- ------- ---------- ------------\n" +
		"0123456789abcdef device  Pixel_7 usb        192.168.1.42\n" +
		"emulator-5554    offline -       usb        -\n"
	assert.Equal(t, expected, buf.String())
}

func TestOutputDevicesTextEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDevicesText(&buf, nil, false))
	assert.Contains(t, buf.String(), "No devices found.")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestOutputDevicesJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, outputDevicesJSON(&buf, testDevices))

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "0123456789abcdef", decoded[0]["serial"])
	assert.Equal(t, "device", decoded[0]["state"])
	assert.Equal(t, "Pixel_7", decoded[0]["model"])
	assert.Equal(t, "usb", decoded[0]["connectionType"])
	_, hasModel := decoded[1]["model"]
	assert.False(t, hasModel)
	_, hasWifiIP := decoded[0]["wifiIp"]
	assert.False(t, hasWifiIP)

	buf.Reset()
	require.NoError(t, outputDevicesJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())
}

func TestVersionCommand(t *testing.T) {
	cmd := NewVersionCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetArgs([]string{"--format", "json"})
	require.NoError(t, cmd.Execute())

	var info map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &info))
	assert.Equal(t, "dev", info["version"])

	cmd = NewVersionCommand()
	cmd.SetOut(&buf)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"--format", "yaml"})
	assert.Error(t, cmd.Execute())
}

func TestMirrorFlagsBound(t *testing.T) {
	cmd := NewMirrorCommand()
	for name := range mirrorFlagKeys {
		assert.NotNil(t, cmd.Flags().Lookup(name), name)
	}
	assert.NotNil(t, cmd.Flags().Lookup("no-video"))
	assert.NotNil(t, cmd.Flags().Lookup("no-control"))
}
