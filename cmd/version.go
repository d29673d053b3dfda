package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/babelcloud/gbox/packages/mirror/internal/version"
)

type VersionOptions struct {
	OutputFormat string
}

func NewVersionCommand() *cobra.Command {
	opts := &VersionOptions{}

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			switch opts.OutputFormat {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			case "text":
				_, err := fmt.Fprintln(cmd.OutOrStdout(), info.String())
				return err
			default:
				return fmt.Errorf("invalid format %q, expected \"text\" or \"json\"", opts.OutputFormat)
			}
		},
	}

	cmd.Flags().StringVar(&opts.OutputFormat, "format", "text", "Specify output format. Options are \"text\" (default) or \"json\".")
	return cmd
}
