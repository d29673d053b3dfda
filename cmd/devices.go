package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/babelcloud/gbox/packages/mirror/config"
	"github.com/babelcloud/gbox/packages/mirror/internal/device"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
)

type DevicesOptions struct {
	OutputFormat string
	WifiIP       bool
}

func NewDevicesCommand() *cobra.Command {
	opts := &DevicesOptions{}

	cmd := &cobra.Command{
		Use:     "devices [flags]",
		Aliases: []string{"ls"},
		Short:   "List the Android devices known to adb",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return ExecuteDevices(cmd, opts)
		},
		Example: `  # List devices (default text format):
  gbox-mirror devices

  # List devices in JSON format:
  gbox-mirror devices --format json

  # Show the wlan address of the ready devices:
  gbox-mirror devices --wifi-ip`,
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.OutputFormat, "format", "", "text", "Specify output format. Options are \"text\" (default) or \"json\".")
	flags.BoolVar(&opts.WifiIP, "wifi-ip", false, "Query the wlan address of the ready devices")

	cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func ExecuteDevices(cmd *cobra.Command, opts *DevicesOptions) error {
	if opts.OutputFormat != "text" && opts.OutputFormat != "json" {
		return fmt.Errorf("invalid format %q, expected \"text\" or \"json\"", opts.OutputFormat)
	}

	cfg, err := config.Mirror()
	if err != nil {
		return err
	}
	manager, err := device.NewManager(device.Config{Host: cfg.AdbHost, Port: cfg.AdbPort})
	if err != nil {
		return err
	}
	devices, err := manager.List(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list devices: %w", err)
	}
	if opts.WifiIP {
		logger := util.GetLogger()
		for i, d := range devices {
			if !d.Ready() {
				continue
			}
			ip, err := manager.WifiIP(d.Serial)
			if err != nil {
				logger.Debug("No wlan address", "device", d.Serial, "error", err)
				continue
			}
			devices[i].WifiIP = ip
		}
	}

	if opts.OutputFormat == "json" {
		return outputDevicesJSON(cmd.OutOrStdout(), devices)
	}
	return outputDevicesText(cmd.OutOrStdout(), devices, isTerminal(cmd.OutOrStdout()))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func outputDevicesJSON(w io.Writer, devices []device.Device) error {
	if devices == nil {
		devices = []device.Device{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(devices)
}

func outputDevicesText(w io.Writer, devices []device.Device, colored bool) error {
	if len(devices) == 0 {
		fmt.Fprintln(w, "No devices found.")
		faint := color.New(color.Faint)
		if !colored {
			faint.DisableColor()
		}
		faint.Fprintln(w, "Make sure USB debugging is enabled in the developer options of your Android device.")
		return nil
	}

	ready := color.New(color.FgGreen)
	notReady := color.New(color.FgYellow)
	if !colored {
		ready.DisableColor()
		notReady.DisableColor()
	}

	columns := []util.TableColumn{
		{Header: "SERIAL", Key: "serial"},
		{Header: "STATE", Key: "state"},
		{Header: "MODEL", Key: "model"},
		{Header: "CONNECTION", Key: "connection"},
	}
	for _, d := range devices {
		if d.WifiIP != "" {
			columns = append(columns, util.TableColumn{Header: "WIFI IP", Key: "wifi_ip"})
			break
		}
	}

	rows := make([]map[string]string, 0, len(devices))
	for _, d := range devices {
		state := notReady.Sprint(string(d.State))
		if d.Ready() {
			state = ready.Sprint(string(d.State))
		}
		model := d.Model
		if model == "" {
			model = "-"
		}
		wifiIP := d.WifiIP
		if wifiIP == "" {
			wifiIP = "-"
		}
		rows = append(rows, map[string]string{
			"serial":     d.Serial,
			"state":      state,
			"model":      model,
			"connection": string(d.ConnectionType),
			"wifi_ip":    wifiIP,
		})
	}

	return util.RenderTable(w, columns, rows)
}
