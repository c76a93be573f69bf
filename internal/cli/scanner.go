package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/toyz/dsgen/internal/errors"
	"github.com/toyz/dsgen/internal/utils"
)

// DirectoryScanner handles recursive directory scanning for Go files
type DirectoryScanner struct {
	fileProcessor *utils.FileProcessor
}

// NewDirectoryScanner creates a new directory scanner
func NewDirectoryScanner() *DirectoryScanner {
	return &DirectoryScanner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// ScanDirectories recursively scans the provided directories for Go packages.
// Go-style patterns like "./..." are accepted; every root is scanned
// recursively either way.
func (s *DirectoryScanner) ScanDirectories(rootDirs []string) ([]string, error) {
	roots, err := s.ResolveRoots(rootDirs)
	if err != nil {
		return nil, err
	}
	return s.fileProcessor.ScanDirectoriesWithGoFiles(roots)
}

// ResolveRoots turns directory arguments into absolute paths
func (s *DirectoryScanner) ResolveRoots(rootDirs []string) ([]string, error) {
	cleanDirs := make([]string, 0, len(rootDirs))

	for _, rootDir := range rootDirs {
		baseDir := rootDir
		if strings.HasSuffix(rootDir, "/...") || rootDir == "..." {
			baseDir = strings.TrimSuffix(strings.TrimSuffix(rootDir, "..."), "/")
			if baseDir == "" {
				baseDir = "."
			}
		}

		cleanPath, err := filepath.Abs(baseDir)
		if err != nil {
			return nil, errors.WrapWithOperation("process", fmt.Sprintf("path resolution %s", baseDir), err)
		}
		cleanDirs = append(cleanDirs, cleanPath)
	}

	return cleanDirs, nil
}

// Exclude drops dir from a scan result
func Exclude(dirs []string, dir string) []string {
	kept := dirs[:0:0]
	for _, d := range dirs {
		if d != dir {
			kept = append(kept, d)
		}
	}
	return kept
}
