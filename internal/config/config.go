// Package config resolves generator settings from defaults, an optional
// dsgen.hcl file and command-line flags, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	dserrors "github.com/toyz/dsgen/internal/errors"
	"github.com/toyz/dsgen/internal/generator"
	"github.com/toyz/dsgen/internal/utils"
)

// DefaultFileName is looked up in the working directory when no config file
// is given
const DefaultFileName = "dsgen.hcl"

// Registry modes
const (
	RegistryModeRelaxed    = "relaxed"
	RegistryModeSerialized = "serialized"
)

// Config holds the configuration for one generator run
type Config struct {
	// Directories is the list of directories to scan for annotated Go files
	Directories []string

	// OutputDir receives the generated files
	OutputDir string

	// PackageName is the package clause of the generated files
	PackageName string

	// ModuleName is the custom module name for imports.
	// If empty, will be determined from go.mod file
	ModuleName string

	InterfaceName      string
	RegistryName       string
	ImplementationName string

	// RegistryMode is relaxed or serialized
	RegistryMode string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet only reports errors
	Quiet bool
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Directories:        []string{"./..."},
		OutputDir:          "internal/datasource",
		PackageName:        generator.DefaultPackageName,
		InterfaceName:      generator.DefaultInterfaceName,
		RegistryName:       generator.DefaultRegistryName,
		ImplementationName: generator.DefaultImplementationName,
		RegistryMode:       RegistryModeRelaxed,
	}
}

// hclFile is the decoding schema of dsgen.hcl
type hclFile struct {
	Output       *hclOutput    `hcl:"output,block"`
	Artifacts    *hclArtifacts `hcl:"artifacts,block"`
	RegistryMode *string       `hcl:"registry_mode,optional"`
	Module       *string       `hcl:"module,optional"`
}

type hclOutput struct {
	Dir     *string `hcl:"dir,optional"`
	Package *string `hcl:"package,optional"`
}

type hclArtifacts struct {
	Interface      *string `hcl:"interface,optional"`
	Registry       *string `hcl:"registry,optional"`
	Implementation *string `hcl:"implementation,optional"`
}

// Load returns the defaults overlaid with a config file. An empty path
// uses DefaultFileName when it exists.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat(DefaultFileName); err != nil {
			return cfg, nil
		}
		path = DefaultFileName
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, dserrors.WrapConfigurationError(path, "read", err)
	}
	if err := cfg.ApplyHCL(path, src); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyHCL decodes HCL source and overrides every attribute it sets
func (c *Config) ApplyHCL(filename string, src []byte) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return dserrors.WrapConfigurationError(filename, "parse", diags)
	}

	var parsed hclFile
	if diags := gohcl.DecodeBody(file.Body, nil, &parsed); diags.HasErrors() {
		return dserrors.WrapConfigurationError(filename, "decode", diags)
	}

	if parsed.Output != nil {
		set(&c.OutputDir, parsed.Output.Dir)
		set(&c.PackageName, parsed.Output.Package)
	}
	if parsed.Artifacts != nil {
		set(&c.InterfaceName, parsed.Artifacts.Interface)
		set(&c.RegistryName, parsed.Artifacts.Registry)
		set(&c.ImplementationName, parsed.Artifacts.Implementation)
	}
	set(&c.RegistryMode, parsed.RegistryMode)
	set(&c.ModuleName, parsed.Module)

	return nil
}

func set(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

// Validate checks every setting and reports all problems at once
func (c *Config) Validate() error {
	checks := []struct {
		field string
		value string
		chain *utils.ValidatorChain[string]
	}{
		{"output directory", c.OutputDir, utils.NewValidatorChain(utils.NotEmpty("output directory"))},
		{"package", c.PackageName, utils.NewValidatorChain(utils.NotEmpty("package"), utils.IsValidGoIdentifier("package"))},
		{"interface name", c.InterfaceName, utils.NewValidatorChain(utils.NotEmpty("interface name"), utils.IsExportedIdentifier("interface name"))},
		{"registry name", c.RegistryName, utils.NewValidatorChain(utils.NotEmpty("registry name"), utils.IsExportedIdentifier("registry name"))},
		{"implementation name", c.ImplementationName, utils.NewValidatorChain(utils.NotEmpty("implementation name"), utils.IsExportedIdentifier("implementation name"))},
		{"registry mode", c.RegistryMode, utils.NewValidatorChain(utils.IsOneOf("registry mode", RegistryModeRelaxed, RegistryModeSerialized))},
	}

	multi := dserrors.NewMultipleErrors()
	for _, check := range checks {
		if err := check.chain.Validate(check.value); err != nil {
			multi.Add(dserrors.NewConfigError(check.field, unwrapMessage(err)))
		}
	}

	if c.ModuleName != "" {
		if err := utils.IsImportPath("module")(c.ModuleName); err != nil {
			multi.Add(dserrors.NewConfigError("module", unwrapMessage(err)))
		}
	}

	roles := map[string]string{}
	for _, declared := range c.GeneratorConfig("").DeclaredNames() {
		if declared.Name == "" {
			continue
		}
		if other, dup := roles[declared.Name]; dup {
			multi.Add(dserrors.NewConfigError(declared.Field,
				fmt.Sprintf("%s %q is also the %s", declared.Role, declared.Name, other)))
			continue
		}
		roles[declared.Name] = declared.Role
	}

	if c.Verbose && c.Quiet {
		multi.Add(dserrors.NewConfigError("flags", "--verbose and --quiet are mutually exclusive"))
	}

	return multi.ErrorOrNil()
}

func unwrapMessage(err error) string {
	var ve utils.ValidationError
	if errors.As(err, &ve) {
		return ve.Message
	}
	return err.Error()
}

// Serialized reports whether the registry constructs under its lock
func (c *Config) Serialized() bool {
	return c.RegistryMode == RegistryModeSerialized
}

// GeneratorConfig returns the synthesizer settings for the output package
func (c *Config) GeneratorConfig(packagePath string) generator.Config {
	return generator.Config{
		PackageName:        c.PackageName,
		PackagePath:        packagePath,
		InterfaceName:      c.InterfaceName,
		RegistryName:       c.RegistryName,
		ImplementationName: c.ImplementationName,
		Serialized:         c.Serialized(),
	}
}
