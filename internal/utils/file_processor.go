package utils

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// GeneratedMarker is the first-line marker of every file dsgen writes
const GeneratedMarker = "// Code generated by dsgen. DO NOT EDIT."

// GeneratedFilePrefix is the file name prefix of every file dsgen writes
const GeneratedFilePrefix = "autogen_"

// FileProcessor provides utilities for common file processing operations
type FileProcessor struct{}

// NewFileProcessor creates a new file processor
func NewFileProcessor() *FileProcessor {
	return &FileProcessor{}
}

// FileFilter defines a function that determines whether a file should be processed
type FileFilter func(path string, info os.DirEntry) bool

// DirectoryFilter defines a function that determines whether a directory should be processed
type DirectoryFilter func(path string, info os.DirEntry) bool

// DefaultGoFileFilter filters for .go files, excluding tests and autogen files
func DefaultGoFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasSuffix(name, ".go") &&
			!strings.HasSuffix(name, "_test.go") &&
			!strings.HasPrefix(name, GeneratedFilePrefix)
	}
}

// AutogenFileFilter filters for autogen files
func AutogenFileFilter() FileFilter {
	return func(path string, info os.DirEntry) bool {
		if info.IsDir() {
			return false
		}

		name := info.Name()
		return strings.HasPrefix(name, GeneratedFilePrefix) && strings.HasSuffix(name, ".go")
	}
}

// DefaultDirectoryFilter skips common directories that shouldn't contain source code
func DefaultDirectoryFilter() DirectoryFilter {
	skipDirs := map[string]bool{
		"vendor":       true,
		"node_modules": true,
		"testdata":     true,
		"build":        true,
		"dist":         true,
	}

	return func(path string, info os.DirEntry) bool {
		if !info.IsDir() {
			return true
		}

		name := info.Name()

		// hidden and underscore directories are ignored by the go tool too
		if (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) && name != "." && name != ".." {
			return false
		}

		return !skipDirs[name]
	}
}

// ScanDirectoriesWithGoFiles returns every directory below the roots that
// holds Go source, sorted and without duplicates
func (fp *FileProcessor) ScanDirectoriesWithGoFiles(rootDirs []string) ([]string, error) {
	var packageDirs []string
	visited := make(map[string]bool)

	for _, rootDir := range rootDirs {
		dirs, err := fp.scanDirectoryRecursive(rootDir, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, dirs...)
	}

	sort.Strings(packageDirs)
	return packageDirs, nil
}

func (fp *FileProcessor) scanDirectoryRecursive(dir string, visited map[string]bool) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, WrapProcessError(fmt.Sprintf("path resolution %s", dir), err)
	}

	if visited[absDir] {
		return nil, nil
	}
	visited[absDir] = true

	var packageDirs []string

	hasGoFiles, err := fp.HasGoFiles(absDir)
	if err != nil {
		return nil, WrapProcessError(fmt.Sprintf("Go file check in %s", dir), err)
	}

	if hasGoFiles {
		packageDirs = append(packageDirs, absDir)
	}

	entries, err := os.ReadDir(absDir)
	if err != nil {
		return nil, WrapProcessError(fmt.Sprintf("directory read %s", dir), err)
	}

	directoryFilter := DefaultDirectoryFilter()

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		entryPath := filepath.Join(absDir, entry.Name())
		if !directoryFilter(entryPath, entry) {
			continue
		}
		// nested modules are scanned separately
		if _, err := os.Stat(filepath.Join(entryPath, "go.mod")); err == nil {
			continue
		}

		subDirs, err := fp.scanDirectoryRecursive(entryPath, visited)
		if err != nil {
			return nil, err
		}
		packageDirs = append(packageDirs, subDirs...)
	}

	return packageDirs, nil
}

// HasGoFiles checks if a directory contains any .go files (excluding test files and autogen files)
func (fp *FileProcessor) HasGoFiles(dir string) (bool, error) {
	files, err := fp.ListGoFiles(dir)
	if err != nil {
		return false, err
	}
	return len(files) > 0, nil
}

// ListGoFiles returns the source files of a directory sorted by name
func (fp *FileProcessor) ListGoFiles(dir string) ([]string, error) {
	return fp.listFiles(dir, DefaultGoFileFilter())
}

func (fp *FileProcessor) listFiles(dir string, filter FileFilter) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if filter(path, entry) {
			files = append(files, path)
		}
	}
	// os.ReadDir already sorts by name; keep the guarantee explicit
	sort.Strings(files)
	return files, nil
}

// CleanDirectories removes generated files from the given directories. Only
// files that start with GeneratedMarker are removed. Directories are not
// descended into.
func (fp *FileProcessor) CleanDirectories(dirs []string) ([]string, error) {
	var removedFiles []string

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			continue
		}

		files, err := fp.listFiles(dir, AutogenFileFilter())
		if err != nil {
			return removedFiles, WrapProcessError(fmt.Sprintf("directory clean %s", dir), err)
		}

		for _, file := range files {
			generated, err := IsGeneratedFile(file)
			if err != nil {
				return removedFiles, WrapProcessError(fmt.Sprintf("file check %s", file), err)
			}
			if !generated {
				continue
			}
			if err := os.Remove(file); err != nil {
				return removedFiles, WrapProcessError(fmt.Sprintf("file removal %s", file), err)
			}
			removedFiles = append(removedFiles, file)
		}
	}

	return removedFiles, nil
}

// IsGeneratedFile reports whether the first line of a file is GeneratedMarker
func IsGeneratedFile(path string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		return false, scanner.Err()
	}
	return strings.TrimSpace(scanner.Text()) == GeneratedMarker, nil
}
