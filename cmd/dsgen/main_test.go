package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sourceFile = `package services

//dsgen::datasource -UniqueCode=user -Impl=UserDsImpl
type UserDataSource interface {
	GetName() string
}

type UserDsImpl struct{}
`

func setupProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module example.com/app\n\ngo 1.25\n"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "services"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "services", "user.go"), []byte(sourceFile), 0644))

	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(root))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
	return root
}

func execute(args ...string) (string, string, error) {
	cmd := New()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestHelp(t *testing.T) {
	out, _, err := execute("--help")
	require.NoError(t, err)

	assert.Contains(t, out, "Usage:")
	assert.Contains(t, out, "//dsgen::datasource")
	for _, flag := range []string{"--config", "--output", "--package", "--module", "--interface", "--registry", "--implementation", "--registry-mode", "--verbose", "--quiet"} {
		assert.Contains(t, out, flag)
	}
	assert.Contains(t, out, "clean")
}

func TestGenerate(t *testing.T) {
	root := setupProject(t)

	out, errOut, err := execute("./...")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "dsgen: Generation complete!")

	for _, name := range []string{"autogen_data_source_api.go", "autogen_data_source_manager.go", "autogen_data_source_api_impl.go"} {
		assert.FileExists(t, filepath.Join(root, "internal", "datasource", name))
	}
}

func TestGenerateFlagsOverrideConfigFile(t *testing.T) {
	root := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "dsgen.hcl"), []byte(`
output {
  dir     = "gen"
  package = "gen"
}
registry_mode = "serialized"
`), 0644))

	_, errOut, err := execute("--quiet", "--package", "sources", "--interface", "Sources")
	require.NoError(t, err, errOut)

	api, err := os.ReadFile(filepath.Join(root, "gen", "autogen_sources.go"))
	require.NoError(t, err)
	assert.Contains(t, string(api), "package sources")
	assert.Contains(t, string(api), "type Sources interface {")

	manager, err := os.ReadFile(filepath.Join(root, "gen", "autogen_data_source_manager.go"))
	require.NoError(t, err)
	assert.Contains(t, string(manager), "dsgen.Serialized")
}

func TestGenerateQuietPrintsNothing(t *testing.T) {
	setupProject(t)

	out, errOut, err := execute("-q")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Empty(t, errOut)
}

func TestGenerateInvalidFlags(t *testing.T) {
	setupProject(t)

	_, errOut, err := execute("--registry-mode", "eager", "--verbose", "--quiet")
	require.Error(t, err)
	assert.Contains(t, errOut, "ERROR: Code Generation Failed")
	assert.Contains(t, errOut, "invalid registry mode")
	assert.Contains(t, errOut, "mutually exclusive")
}

func TestGenerateExitsWithErrorOnDiagnostics(t *testing.T) {
	root := setupProject(t)
	require.NoError(t, os.WriteFile(filepath.Join(root, "services", "bare.go"), []byte(`package services

//dsgen::datasource -UniqueCode=bare
type BareDataSource interface {
	Ping()
}
`), 0644))

	_, errOut, err := execute()
	require.Error(t, err)
	assert.Contains(t, errOut, "[routing-strategy]")
	assert.Contains(t, errOut, "generation reported 1 error(s)")

	// the valid declaration is generated anyway
	assert.FileExists(t, filepath.Join(root, "internal", "datasource", "autogen_data_source_api.go"))
}

func TestClean(t *testing.T) {
	root := setupProject(t)

	_, errOut, err := execute()
	require.NoError(t, err, errOut)

	handwritten := filepath.Join(root, "internal", "datasource", "doc.go")
	require.NoError(t, os.WriteFile(handwritten, []byte("package datasource\n"), 0644))

	out, errOut, err := execute("clean")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "Removed 3 generated file(s)")

	assert.NoFileExists(t, filepath.Join(root, "internal", "datasource", "autogen_data_source_api.go"))
	assert.FileExists(t, handwritten)
}

func TestCleanRecursive(t *testing.T) {
	root := setupProject(t)

	_, errOut, err := execute("--output", "nested/out")
	require.NoError(t, err, errOut)

	out, errOut, err := execute("clean", "./...")
	require.NoError(t, err, errOut)
	assert.Contains(t, out, "Removed 3 generated file(s)")
	assert.NoFileExists(t, filepath.Join(root, "nested", "out", "autogen_data_source_manager.go"))
	assert.FileExists(t, filepath.Join(root, "services", "user.go"))
}

func TestVersion(t *testing.T) {
	out, _, err := execute("version")
	require.NoError(t, err)
	assert.Contains(t, out, "dsgen ")
}
