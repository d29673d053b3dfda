package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/babelcloud/gbox/packages/mirror/config"
	"github.com/babelcloud/gbox/packages/mirror/internal/util"
	"github.com/babelcloud/gbox/packages/mirror/internal/version"
)

var (
	verbose bool

	rootCmd = &cobra.Command{
		Use:   "gbox-mirror",
		Short: "Mirror an Android device screen",
		Long: `gbox-mirror displays the screen of an Android device connected through adb in a desktop window, and forwards pointer and key input back to the device.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			util.InitLogger(verbose)
			util.SetupGlobalLogger()
			if file := config.ConfigFile(); file != "" {
				util.GetLogger().Debug("Using config file", "path", file)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flag("version").Changed {
				info := version.Get()
				fmt.Fprintf(cmd.OutOrStdout(), "gbox-mirror version %s, build %s\n", info.Version, info.GitCommit)
				return nil
			}
			return cmd.Help()
		},
	}
)

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information and exit")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")

	rootCmd.AddCommand(NewMirrorCommand())
	rootCmd.AddCommand(NewDevicesCommand())
	rootCmd.AddCommand(NewVersionCommand())
}
