package main

import (
	"fmt"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// BuildVersion can be set at build time with
//
//	-ldflags "-X main.BuildVersion=1.2.3"
var BuildVersion = "n/a"

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dsgen build version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			version := BuildVersion
			if version == "n/a" {
				if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
					version = info.Main.Version
				}
			}
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "dsgen %s\n", version)
			return err
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
	}
}
