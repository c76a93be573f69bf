package cli

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/toyz/dsgen/internal/errors"
	"github.com/toyz/dsgen/internal/utils"
)

// Cleaner handles cleaning up generated files
type Cleaner struct {
	fileProcessor *utils.FileProcessor
}

// NewCleaner creates a new cleaner
func NewCleaner() *Cleaner {
	return &Cleaner{
		fileProcessor: utils.NewFileProcessor(),
	}
}

// CleanGeneratedFiles removes dsgen output from the specified directories.
// A "dir/..." pattern cleans the whole tree below dir. Only autogen_*.go
// files carrying the generated-code marker are removed.
func (c *Cleaner) CleanGeneratedFiles(directories []string) ([]string, error) {
	var targets []string

	for _, dir := range directories {
		if !strings.HasSuffix(dir, "...") {
			targets = append(targets, dir)
			continue
		}

		baseDir := strings.TrimSuffix(strings.TrimSuffix(dir, "..."), "/")
		if baseDir == "" {
			baseDir = "."
		}
		dirs, err := c.walk(baseDir)
		if err != nil {
			return nil, err
		}
		targets = append(targets, dirs...)
	}

	return c.fileProcessor.CleanDirectories(targets)
}

// walk lists baseDir and every directory below it that a scan would visit
func (c *Cleaner) walk(baseDir string) ([]string, error) {
	filter := utils.DefaultDirectoryFilter()
	var dirs []string

	err := filepath.WalkDir(baseDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if path == baseDir {
				// nothing to clean
				return fs.SkipAll
			}
			return nil
		}
		if !entry.IsDir() {
			return nil
		}
		if path != baseDir && !filter(path, entry) {
			return filepath.SkipDir
		}
		dirs = append(dirs, path)
		return nil
	})
	if err != nil {
		return nil, errors.WrapFileSystemError("walk", baseDir, err)
	}
	return dirs, nil
}
