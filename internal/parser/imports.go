package parser

import (
	"go/ast"
	"strconv"
	"strings"

	"github.com/toyz/dsgen/internal/models"
	"github.com/toyz/dsgen/internal/utils"
)

// importSet maps the qualifiers usable in a file to import paths
type importSet struct {
	list   []models.Import
	byName map[string]string
	// paths imported without an alias, used when the guessed name misses
	unnamed []string
}

func newImportSet(file *ast.File) *importSet {
	set := &importSet{byName: make(map[string]string)}

	for _, spec := range file.Imports {
		path, err := strconv.Unquote(spec.Path.Value)
		if err != nil {
			continue
		}

		if spec.Name != nil {
			switch spec.Name.Name {
			case "_", ".":
				// blank imports add no qualifier; dot imports are not supported
				continue
			}
			set.byName[spec.Name.Name] = path
			set.list = append(set.list, models.Import{Name: spec.Name.Name, Path: path})
			continue
		}

		set.byName[utils.ImportName(path)] = path
		set.unnamed = append(set.unnamed, path)
		set.list = append(set.list, models.Import{Path: path})
	}

	return set
}

// lookup returns the import path a file qualifier refers to
func (s *importSet) lookup(qualifier string) (string, bool) {
	if path, ok := s.byName[qualifier]; ok {
		return path, true
	}

	// the package clause may differ from every naming convention, e.g.
	// "github.com/acme/golang-models" declaring package models
	var match string
	for _, path := range s.unnamed {
		if strings.Contains(lastElement(path), qualifier) {
			if match != "" {
				return "", false
			}
			match = path
		}
	}
	return match, match != ""
}

func lastElement(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
