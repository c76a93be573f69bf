package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/dsgen/internal/config"
	"github.com/toyz/dsgen/internal/errors"
	"github.com/toyz/dsgen/internal/utils"
)

const servicesSource = `package services

import (
	"github.com/example/testapp/internal/helpers"
)

var _ = helpers.OrderHelper

type Order struct {
	ID string
}

// UserDataSource reads users.
//
//dsgen::datasource -UniqueCode=user -Impl=UserDsImpl
type UserDataSource interface {
	GetName() string
}

type UserDsImpl struct{}

func (*UserDsImpl) GetName() string { return "user" }

//dsgen::datasource order -UniqueCode=order -CallPath=helpers.OrderHelper()
type OrderDataSource interface {
	list() []Order
}
`

const helpersSource = `package helpers

func OrderHelper() interface{ list() []string } { return nil }
`

// newTestProject lays out a module with a services and a helpers package
// and makes it the working directory
func newTestProject(t *testing.T, extra map[string]string) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"go.mod":                       testGoMod,
		"internal/services/sources.go": servicesSource,
		"internal/helpers/helpers.go":  helpersSource,
	}
	for name, content := range extra {
		files[name] = content
	}
	writeTree(t, root, files)
	chdir(t, root)
	return root
}

func newTestGenerator(t *testing.T) (*Generator, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	var out, errOut bytes.Buffer
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticVerbose)
	diagnostics.SetOutput(&out, &errOut)

	g, err := NewGenerator(diagnostics)
	require.NoError(t, err)
	return g, &out, &errOut
}

func readOutput(t *testing.T, root, name string) string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(root, "internal", "datasource", name))
	require.NoError(t, err)
	return string(content)
}

func TestGenerator_Run(t *testing.T) {
	root := newTestProject(t, nil)
	g, out, errOut := newTestGenerator(t)

	require.NoError(t, g.Run(context.Background(), config.Default()))
	assert.Empty(t, errOut.String())

	api := readOutput(t, root, "autogen_data_source_api.go")
	assert.Contains(t, api, "// Code generated by dsgen. DO NOT EDIT.")
	assert.Contains(t, api, "package datasource")
	assert.Contains(t, api, `import "github.com/example/testapp/internal/services"`)
	assert.Contains(t, api, "\tGetName() string\n\torderList() []services.Order\n")

	manager := readOutput(t, root, "autogen_data_source_manager.go")
	assert.Contains(t, manager, "func (m *DataSourceManager) userDataSource() services.UserDataSource {")
	assert.Contains(t, manager, `dsgen.Resolve(m.instances, "user", func() services.UserDataSource {`)
	assert.NotContains(t, manager, "orderDataSource")

	impl := readOutput(t, root, "autogen_data_source_api_impl.go")
	assert.Contains(t, impl, `"github.com/example/testapp/internal/helpers"`)
	assert.Contains(t, impl, "return SharedDataSourceManager().userDataSource().GetName()")
	assert.Contains(t, impl, "return helpers.OrderHelper().list()")

	summary := g.GetSummary()
	assert.NotEmpty(t, summary.RunID)
	assert.Equal(t, 2, summary.Packages)
	assert.Equal(t, 2, summary.Declarations)
	assert.Equal(t, 2, summary.Accepted)
	assert.Equal(t, 2, summary.Operations)
	assert.Len(t, summary.GeneratedFiles, 3)
	assert.Empty(t, summary.UnchangedFiles)

	output := out.String()
	assert.Contains(t, output, "dsgen: Generating data source artifacts...")
	assert.Contains(t, output, "github.com/example/testapp/internal/services.UserDataSource")
	assert.Contains(t, output, "   Data sources: 2 of 2 accepted")
	assert.Contains(t, output, "dsgen: Generation complete!")
}

func TestGenerator_RunIsIncremental(t *testing.T) {
	root := newTestProject(t, nil)
	g, _, _ := newTestGenerator(t)

	require.NoError(t, g.Run(context.Background(), config.Default()))
	first := readOutput(t, root, "autogen_data_source_api_impl.go")

	// the output directory now holds Go files but is never scanned
	require.NoError(t, g.Run(context.Background(), config.Default()))
	assert.Empty(t, g.GetSummary().GeneratedFiles)
	assert.Len(t, g.GetSummary().UnchangedFiles, 3)
	assert.Equal(t, 2, g.GetSummary().Packages)
	assert.Equal(t, first, readOutput(t, root, "autogen_data_source_api_impl.go"))
}

func TestGenerator_RunReportsRejectedDeclarations(t *testing.T) {
	root := newTestProject(t, map[string]string{
		"internal/billing/billing.go": `package billing

//dsgen::datasource -UniqueCode=user -Impl=BillingImpl
type BillingDataSource interface {
	Charge(amount int) error
}

//dsgen::datasource -UniqueCode=bare
type BareDataSource interface {
	Ping()
}
`,
	})
	g, _, errOut := newTestGenerator(t)

	err := g.Run(context.Background(), config.Default())
	require.Error(t, err)

	var diagErr *DiagnosticsError
	require.True(t, stderrors.As(err, &diagErr), "got %T: %v", err, err)
	assert.Equal(t, 2, diagErr.Errors)

	// billing sorts before services, so it claims "user" first
	stderr := errOut.String()
	assert.Contains(t, stderr, "[unique-code-collision]")
	assert.Contains(t, stderr, "no routing strategy specified")

	// accepted declarations are still generated, rejected ones nowhere
	api := readOutput(t, root, "autogen_data_source_api.go")
	assert.Contains(t, api, "Charge(amount int) error")
	assert.Contains(t, api, "orderList() []services.Order")
	assert.NotContains(t, api, "GetName")
	assert.NotContains(t, api, "Ping")
	assert.NotContains(t, api, "services.UserDataSource")
	assert.NotContains(t, api, "BareDataSource")

	manager := readOutput(t, root, "autogen_data_source_manager.go")
	assert.Contains(t, manager, "func (m *DataSourceManager) userDataSource() billing.BillingDataSource {")
	assert.Contains(t, manager, "new(billing.BillingImpl)")
	assert.NotContains(t, manager, "UserDsImpl")
	assert.NotContains(t, manager, "services.UserDataSource")
	assert.NotContains(t, manager, "bareDataSource")

	impl := readOutput(t, root, "autogen_data_source_api_impl.go")
	assert.Contains(t, impl, "return SharedDataSourceManager().userDataSource().Charge(amount)")
	assert.Contains(t, impl, "return helpers.OrderHelper().list()")
	assert.NotContains(t, impl, "GetName")
	assert.NotContains(t, impl, "Ping")
}

func TestGenerator_RunRejectsSecondPrefixClaim(t *testing.T) {
	root := newTestProject(t, map[string]string{
		"internal/alpha/alpha.go": `package alpha

//dsgen::datasource pay -UniqueCode=alphaPay -Impl=AlphaImpl
type AlphaDataSource interface {
	refund(id string) error
}
`,
		"internal/beta/beta.go": `package beta

//dsgen::datasource -Prefix=pay -UniqueCode=betaPay -Impl=BetaImpl
type BetaDataSource interface {
	charge(id string) error
}
`,
	})
	g, _, errOut := newTestGenerator(t)

	err := g.Run(context.Background(), config.Default())
	var diagErr *DiagnosticsError
	require.True(t, stderrors.As(err, &diagErr), "got %T: %v", err, err)
	assert.Equal(t, 1, diagErr.Errors)
	assert.Contains(t, errOut.String(), "[prefix-collision]")
	assert.Equal(t, 3, g.GetSummary().Accepted)

	api := readOutput(t, root, "autogen_data_source_api.go")
	assert.Contains(t, api, "payRefund(id string) error")
	assert.NotContains(t, api, "payCharge")
	assert.NotContains(t, api, "beta")

	manager := readOutput(t, root, "autogen_data_source_manager.go")
	assert.Contains(t, manager, "alphaPayDataSource() alpha.AlphaDataSource")
	assert.NotContains(t, manager, "betaPayDataSource")
	assert.NotContains(t, manager, "beta")

	impl := readOutput(t, root, "autogen_data_source_api_impl.go")
	assert.Contains(t, impl, "return SharedDataSourceManager().alphaPayDataSource().refund(id)")
	assert.NotContains(t, impl, "payCharge")
	assert.NotContains(t, impl, "beta")
}

func TestGenerator_RunAbortsWithoutWriting(t *testing.T) {
	root := newTestProject(t, map[string]string{
		"internal/legacy/legacy.go": `package legacy

//dsgen::datasource -UniqueCode=legacy -CallPath=legacyOrders()
type LegacyDataSource interface {
	orderList() []string
}
`,
	})
	g, _, _ := newTestGenerator(t)

	err := g.Run(context.Background(), config.Default())
	require.Error(t, err)

	var genErr *errors.GenerationError
	require.True(t, stderrors.As(err, &genErr), "got %T: %v", err, err)
	assert.Contains(t, err.Error(), "orderList")

	assert.NoDirExists(t, filepath.Join(root, "internal", "datasource"))
}

func TestGenerator_RunWithConfiguration(t *testing.T) {
	root := newTestProject(t, nil)
	g, _, _ := newTestGenerator(t)

	cfg := config.Default()
	require.NoError(t, cfg.ApplyHCL("dsgen.hcl", []byte(`
registry_mode = "serialized"

output {
  dir     = "gen/ds"
  package = "ds"
}

artifacts {
  interface = "Sources"
}
`)))

	require.NoError(t, g.Run(context.Background(), cfg))

	api, err := os.ReadFile(filepath.Join(root, "gen", "ds", "autogen_sources.go"))
	require.NoError(t, err)
	assert.Contains(t, string(api), "package ds")
	assert.Contains(t, string(api), "type Sources interface {")

	manager, err := os.ReadFile(filepath.Join(root, "gen", "ds", "autogen_data_source_manager.go"))
	require.NoError(t, err)
	assert.Contains(t, string(manager), "dsgen.NewRegistry(dsgen.Serialized)")

	impl, err := os.ReadFile(filepath.Join(root, "gen", "ds", "autogen_data_source_api_impl.go"))
	require.NoError(t, err)
	assert.Contains(t, string(impl), "var _ Sources = (*DataSourceApiImpl)(nil)")
}

func TestGenerator_RunInvalidConfiguration(t *testing.T) {
	newTestProject(t, nil)
	g, _, _ := newTestGenerator(t)

	cfg := config.Default()
	cfg.PackageName = ""
	cfg.RegistryMode = "eager"

	err := g.Run(context.Background(), cfg)
	require.Error(t, err)

	var multi *errors.MultipleErrors
	require.True(t, stderrors.As(err, &multi))
	assert.Len(t, multi.Errors, 2)
}

func TestGenerator_RunWithoutModule(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"internal/services/sources.go": servicesSource})
	chdir(t, root)

	g, _, _ := newTestGenerator(t)

	err := g.Run(context.Background(), config.Default())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "go.mod file not found")

	cfg := config.Default()
	cfg.ModuleName = "example.com/nomod"
	require.NoError(t, g.Run(context.Background(), cfg))
	assert.Contains(t, readOutput(t, root, "autogen_data_source_api.go"), `import "example.com/nomod/internal/services"`)
}
