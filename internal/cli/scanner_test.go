package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTree creates files below root, making directories as needed
func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

// chdir switches the working directory for the rest of the test
func chdir(t *testing.T, dir string) {
	t.Helper()
	originalDir, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(originalDir) })
}

func TestDirectoryScanner_ScanDirectories(t *testing.T) {
	// tempDir/
	//   services/user.go
	//   services/billing/billing.go
	//   models/user.go
	//   models/user_test.go
	//   helpers/autogen_data_source_api.go (only generated files)
	//   vendor/dep.go (skipped)
	//   empty_dir/
	tempDir := t.TempDir()
	writeTree(t, tempDir, map[string]string{
		"services/user.go":                   "package services\n\ntype UserDataSource interface{}",
		"services/billing/billing.go":        "package billing\n\ntype Billing interface{}",
		"models/user.go":                     "package models\n\ntype User struct{}",
		"models/user_test.go":                "package models",
		"helpers/autogen_data_source_api.go": "// Code generated by dsgen. DO NOT EDIT.\n\npackage helpers",
		"vendor/dep.go":                      "package vendor",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(tempDir, "empty_dir"), 0755))

	servicesDir := filepath.Join(tempDir, "services")
	billingDir := filepath.Join(servicesDir, "billing")
	modelsDir := filepath.Join(tempDir, "models")

	scanner := NewDirectoryScanner()

	t.Run("scan single directory", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{modelsDir})
		require.NoError(t, err)
		assert.Equal(t, []string{modelsDir}, dirs)
	})

	t.Run("scan root directory recursively", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{tempDir})
		require.NoError(t, err)
		assert.Equal(t, []string{modelsDir, servicesDir, billingDir}, dirs)
	})

	t.Run("overlapping roots are deduplicated", func(t *testing.T) {
		dirs, err := scanner.ScanDirectories([]string{servicesDir, tempDir, billingDir})
		require.NoError(t, err)
		assert.Equal(t, []string{modelsDir, servicesDir, billingDir}, dirs)
	})

	t.Run("scan with Go-style recursive pattern ./...", func(t *testing.T) {
		chdir(t, tempDir)

		dirs, err := scanner.ScanDirectories([]string{"./..."})
		require.NoError(t, err)

		var rel []string
		for _, dir := range dirs {
			r, err := filepath.Rel(tempDir, dir)
			require.NoError(t, err)
			rel = append(rel, filepath.ToSlash(r))
		}
		assert.Equal(t, []string{"models", "services", "services/billing"}, rel)
	})

	t.Run("scan with specific subdirectory pattern", func(t *testing.T) {
		chdir(t, tempDir)

		dirs, err := scanner.ScanDirectories([]string{"./services/..."})
		require.NoError(t, err)
		assert.Len(t, dirs, 2)
	})

	t.Run("nonexistent directory", func(t *testing.T) {
		_, err := scanner.ScanDirectories([]string{filepath.Join(tempDir, "missing")})
		assert.Error(t, err)
	})
}

func TestDirectoryScanner_ResolveRoots(t *testing.T) {
	tempDir := t.TempDir()
	chdir(t, tempDir)

	// macOS temp dirs live behind a symlink
	wd, err := os.Getwd()
	require.NoError(t, err)

	scanner := NewDirectoryScanner()
	roots, err := scanner.ResolveRoots([]string{"./...", "internal/...", "...", "cmd"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		wd,
		filepath.Join(wd, "internal"),
		wd,
		filepath.Join(wd, "cmd"),
	}, roots)
}

func TestExclude(t *testing.T) {
	dirs := []string{"/a", "/a/out", "/b"}

	assert.Equal(t, []string{"/a", "/b"}, Exclude(dirs, "/a/out"))
	assert.Equal(t, dirs, Exclude(dirs, "/c"))
	assert.Equal(t, []string{"/a", "/a/out", "/b"}, dirs, "input is not modified")
}
