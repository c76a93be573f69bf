package main

import (
	"github.com/spf13/cobra"

	"github.com/toyz/dsgen/internal/cli"
)

func newCleanCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [directory-paths...]",
		Short: "Delete files generated by dsgen",
		Long: `clean removes autogen_*.go files that start with the dsgen generated-code
marker. A path ending in /... is cleaned recursively. Without arguments the
configured output directory is cleaned.`,
		Example: `  dsgen clean
  dsgen clean ./...`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, nil)
			if err != nil {
				return report(cmd, false, err)
			}
			if len(args) == 0 {
				args = []string{cfg.OutputDir}
			}

			diagnostics := newDiagnostics(cmd, cfg.Verbose, cfg.Quiet)
			diagnostics.DsgenHeader("Cleaning generated files...")

			removed, err := cli.NewCleaner().CleanGeneratedFiles(args)
			for _, file := range removed {
				diagnostics.PhaseProgress("Removed " + file)
			}
			if err != nil {
				return report(cmd, cfg.Verbose, err)
			}

			diagnostics.Success("Removed %d generated file(s)", len(removed))
			return nil
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}
}
