package generator

// Default names of the generated artifacts
const (
	DefaultPackageName        = "datasource"
	DefaultInterfaceName      = "DataSourceApi"
	DefaultRegistryName       = "DataSourceManager"
	DefaultImplementationName = "DataSourceApiImpl"
)

// Config selects where and under which names artifacts are generated
type Config struct {
	PackageName        string // output package clause
	PackagePath        string // output package import path
	InterfaceName      string
	RegistryName       string
	ImplementationName string
	Serialized         bool // registry constructs each instance at most once
}

// DefaultConfig returns the default names for an output package path
func DefaultConfig(packagePath string) Config {
	return Config{
		PackageName:        DefaultPackageName,
		PackagePath:        packagePath,
		InterfaceName:      DefaultInterfaceName,
		RegistryName:       DefaultRegistryName,
		ImplementationName: DefaultImplementationName,
	}
}

// SharedAccessor is the function returning the shared registry instance
func (c Config) SharedAccessor() string {
	return "Shared" + c.RegistryName
}

// Constructor is the function creating a forwarding implementation
func (c Config) Constructor() string {
	return "New" + c.ImplementationName
}

// DeclaredName is an exported identifier of the generated package
type DeclaredName struct {
	Field string // configured name it derives from
	Role  string
	Name  string
}

// DeclaredNames lists the exported identifiers the artifacts declare. They
// share one package scope and must be distinct.
func (c Config) DeclaredNames() []DeclaredName {
	names := []DeclaredName{
		{"interface name", "interface name", c.InterfaceName},
		{"registry name", "registry name", c.RegistryName},
		{"implementation name", "implementation name", c.ImplementationName},
	}
	if c.RegistryName != "" {
		names = append(names, DeclaredName{"registry name", "shared registry accessor", c.SharedAccessor()})
	}
	if c.ImplementationName != "" {
		names = append(names, DeclaredName{"implementation name", "implementation constructor", c.Constructor()})
	}
	return names
}
