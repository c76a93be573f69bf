package utils

import (
	"strconv"
	"strings"
	"unicode"
)

// ImportName is the package name assumed for an unaliased import path. It
// follows goimports: the last element, the one before it when the last is a
// major version, without a go- prefix and cut at the first character that
// cannot appear in an identifier.
func ImportName(path string) string {
	elems := strings.Split(path, "/")
	base := elems[len(elems)-1]
	if strings.HasPrefix(base, "v") && len(elems) > 1 {
		if _, err := strconv.Atoi(base[1:]); err == nil {
			base = elems[len(elems)-2]
		}
	}

	base = strings.TrimPrefix(base, "go-")
	if i := strings.IndexFunc(base, notIdentifier); i >= 0 {
		base = base[:i]
	}
	return base
}

func notIdentifier(r rune) bool {
	return !(r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r))
}
