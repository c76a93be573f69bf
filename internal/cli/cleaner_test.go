package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const generatedContent = "// Code generated by dsgen. DO NOT EDIT.\n\npackage datasource\n"

func TestCleaner_CleanGeneratedFiles(t *testing.T) {
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"internal/datasource/autogen_data_source_api.go":     generatedContent,
		"internal/datasource/autogen_data_source_manager.go": generatedContent,
		"internal/datasource/autogen_handwritten.go":         "package datasource\n",
		"internal/datasource/doc.go":                         "package datasource\n",
		"other/autogen_data_source_api_impl.go":              generatedContent,
		"vendor/autogen_data_source_api.go":                  generatedContent,
	})
	dsDir := filepath.Join(tempDir, "internal", "datasource")

	t.Run("single directory is not recursive", func(t *testing.T) {
		cleaner := NewCleaner()
		removed, err := cleaner.CleanGeneratedFiles([]string{filepath.Join(tempDir, "internal")})
		require.NoError(t, err)
		assert.Empty(t, removed)
	})

	t.Run("recursive pattern", func(t *testing.T) {
		chdir(t, tempDir)

		cleaner := NewCleaner()
		removed, err := cleaner.CleanGeneratedFiles([]string{"./..."})
		require.NoError(t, err)

		assert.ElementsMatch(t, []string{
			filepath.Join("internal", "datasource", "autogen_data_source_api.go"),
			filepath.Join("internal", "datasource", "autogen_data_source_manager.go"),
			filepath.Join("other", "autogen_data_source_api_impl.go"),
		}, removed)

		// files without the marker and skipped directories survive
		assert.FileExists(t, filepath.Join(dsDir, "autogen_handwritten.go"))
		assert.FileExists(t, filepath.Join(dsDir, "doc.go"))
		assert.FileExists(t, filepath.Join(tempDir, "vendor", "autogen_data_source_api.go"))
	})

	t.Run("missing directory", func(t *testing.T) {
		cleaner := NewCleaner()
		removed, err := cleaner.CleanGeneratedFiles([]string{filepath.Join(tempDir, "missing"), filepath.Join(tempDir, "missing") + "/..."})
		require.NoError(t, err)
		assert.Empty(t, removed)
	})
}

func TestCleaner_RemovesOnlyOwnOutput(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "autogen_data_source_api.go")
	require.NoError(t, os.WriteFile(path, []byte(generatedContent), 0644))

	removed, err := NewCleaner().CleanGeneratedFiles([]string{tempDir})
	require.NoError(t, err)
	assert.Equal(t, []string{path}, removed)
	assert.NoFileExists(t, path)
}
