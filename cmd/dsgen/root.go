package main

import (
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/toyz/dsgen/internal/cli"
	"github.com/toyz/dsgen/internal/config"
	"github.com/toyz/dsgen/internal/utils"
)

// Flag names
const (
	FlagConfig         = "config"
	FlagOutput         = "output"
	FlagPackage        = "package"
	FlagModule         = "module"
	FlagInterface      = "interface"
	FlagRegistry       = "registry"
	FlagImplementation = "implementation"
	FlagRegistryMode   = "registry-mode"
	FlagVerbose        = "verbose"
	FlagQuiet          = "quiet"
)

// New builds the dsgen command tree
func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dsgen [flags] [directory-paths...]",
		Short: "Generate data source aggregation code",
		Long: `dsgen scans Go packages for interfaces annotated with //dsgen::datasource and
generates three files in the output package:

  DataSourceApi       one interface carrying every operation
  DataSourceManager   a registry handing out one implementation per data source
  DataSourceApiImpl   an implementation forwarding each operation

Directories default to ./... and support Go-style patterns.`,
		Example: `  dsgen ./...
  dsgen --output internal/ds --package ds ./internal/...
  dsgen --module github.com/myorg/myapp --registry-mode serialized ./...
  dsgen clean ./...`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return report(cmd, false, err)
			}

			diagnostics := newDiagnostics(cmd, cfg.Verbose, cfg.Quiet)
			generator, err := cli.NewGenerator(diagnostics)
			if err != nil {
				return report(cmd, cfg.Verbose, err)
			}
			if err := generator.Run(cmd.Context(), cfg); err != nil {
				return report(cmd, cfg.Verbose, err)
			}
			return nil
		},
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		SilenceErrors:     true,
	}

	flags := cmd.PersistentFlags()
	flags.String(FlagConfig, "", "path of an HCL configuration file (default ./"+config.DefaultFileName+" when present)")
	flags.BoolP(FlagVerbose, "v", false, "enable verbose output and detailed error reporting")
	flags.BoolP(FlagQuiet, "q", false, "only show errors")
	flags.StringP(FlagOutput, "o", "", "directory receiving the generated files (default internal/datasource)")

	registerGenerateFlags(cmd.Flags())

	cmd.AddCommand(newCleanCommand())
	cmd.AddCommand(newVersionCommand())
	return cmd
}

func registerGenerateFlags(flags *pflag.FlagSet) {
	flags.String(FlagPackage, "", "package name of the generated files")
	flags.String(FlagModule, "", "custom module name for imports (defaults to the go.mod module)")
	flags.String(FlagInterface, "", "name of the generated aggregate interface")
	flags.String(FlagRegistry, "", "name of the generated registry")
	flags.String(FlagImplementation, "", "name of the generated implementation")
	flags.String(FlagRegistryMode, "", "registry construction mode: relaxed or serialized")
}

// loadConfig layers defaults, the config file and the flags that were set
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	configPath, err := cmd.Flags().GetString(FlagConfig)
	if err != nil {
		return nil, err
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if len(args) > 0 {
		cfg.Directories = args
	}

	overrides := []struct {
		flag string
		dst  *string
	}{
		{FlagOutput, &cfg.OutputDir},
		{FlagPackage, &cfg.PackageName},
		{FlagModule, &cfg.ModuleName},
		{FlagInterface, &cfg.InterfaceName},
		{FlagRegistry, &cfg.RegistryName},
		{FlagImplementation, &cfg.ImplementationName},
		{FlagRegistryMode, &cfg.RegistryMode},
	}
	for _, o := range overrides {
		flag := cmd.Flags().Lookup(o.flag)
		if flag == nil || !flag.Changed {
			continue
		}
		*o.dst = strings.TrimSpace(flag.Value.String())
	}

	if cfg.Verbose, err = cmd.Flags().GetBool(FlagVerbose); err != nil {
		return nil, err
	}
	if cfg.Quiet, err = cmd.Flags().GetBool(FlagQuiet); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newDiagnostics picks the output level from the flags. Output written
// somewhere other than the terminal is kept plain.
func newDiagnostics(cmd *cobra.Command, verbose, quiet bool) *utils.DiagnosticSystem {
	var diagnostics *utils.DiagnosticSystem
	switch {
	case quiet:
		diagnostics = utils.NewQuietDiagnostics()
	case verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}

	out, errOut := cmd.OutOrStdout(), cmd.ErrOrStderr()
	if !isStd(out, os.Stdout) || !isStd(errOut, os.Stderr) {
		diagnostics.SetOutput(out, errOut)
	}
	return diagnostics
}

func isStd(w io.Writer, f *os.File) bool {
	file, ok := w.(*os.File)
	return ok && file == f
}

// report prints err and hands it back so the process exits non-zero
func report(cmd *cobra.Command, verbose bool, err error) error {
	reporter := cli.NewDiagnosticReporter(verbose)
	reporter.SetOutput(cmd.ErrOrStderr())
	reporter.ReportError(err)
	return err
}
