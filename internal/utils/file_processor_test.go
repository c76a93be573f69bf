package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatalf("Failed to create dir for %s: %v", name, err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatalf("Failed to create test file %s: %v", name, err)
		}
	}
}

func TestFileProcessor_ListGoFiles(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"zeta.go":                    "package svc",
		"alpha.go":                   "package svc",
		"alpha_test.go":              "package svc",
		"autogen_data_source_api.go": GeneratedMarker + "\npackage svc",
		"README.md":                  "# README",
	})

	files, err := NewFileProcessor().ListGoFiles(tmpDir)
	if err != nil {
		t.Fatalf("ListGoFiles failed: %v", err)
	}

	want := []string{filepath.Join(tmpDir, "alpha.go"), filepath.Join(tmpDir, "zeta.go")}
	if len(files) != len(want) {
		t.Fatalf("Expected %v, got %v", want, files)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("file %d: expected %s, got %s", i, want[i], files[i])
		}
	}
}

func TestFileProcessor_ScanDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"b/b.go":               "package b",
		"a/a.go":               "package a",
		"a/inner/inner.go":     "package inner",
		"vendor/x/x.go":        "package x",
		"testdata/t.go":        "package t",
		".hidden/h.go":         "package h",
		"_scratch/s.go":        "package s",
		"nested/go.mod":        "module example.com/nested",
		"nested/n.go":          "package nested",
		"only_tests/x_test.go": "package only",
	})

	dirs, err := NewFileProcessor().ScanDirectoriesWithGoFiles([]string{tmpDir, filepath.Join(tmpDir, "a")})
	if err != nil {
		t.Fatalf("ScanDirectoriesWithGoFiles failed: %v", err)
	}

	abs := func(p string) string {
		full, _ := filepath.Abs(filepath.Join(tmpDir, p))
		return full
	}
	want := []string{abs("a"), abs("a/inner"), abs("b")}
	if len(dirs) != len(want) {
		t.Fatalf("Expected %v, got %v", want, dirs)
	}
	for i := range want {
		if dirs[i] != want[i] {
			t.Errorf("dir %d: expected %s, got %s", i, want[i], dirs[i])
		}
	}
}

func TestFileProcessor_CleanDirectories(t *testing.T) {
	tmpDir := t.TempDir()
	writeFiles(t, tmpDir, map[string]string{
		"autogen_data_source_api.go":     GeneratedMarker + "\n\npackage datasource\n",
		"autogen_data_source_manager.go": GeneratedMarker + "\n\npackage datasource\n",
		"autogen_handwritten.go":         "package datasource\n",
		"helpers.go":                     "package datasource\n",
	})

	removed, err := NewFileProcessor().CleanDirectories([]string{tmpDir, filepath.Join(tmpDir, "missing")})
	if err != nil {
		t.Fatalf("CleanDirectories failed: %v", err)
	}
	if len(removed) != 2 {
		t.Fatalf("Expected 2 removed files, got %v", removed)
	}

	for _, keep := range []string{"autogen_handwritten.go", "helpers.go"} {
		if _, err := os.Stat(filepath.Join(tmpDir, keep)); err != nil {
			t.Errorf("Expected %s to be kept: %v", keep, err)
		}
	}
}

func TestWriteFileIfChanged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "autogen_data_source_api.go")

	written, err := WriteFileIfChanged(path, []byte("package a\n"), 0644)
	if err != nil || !written {
		t.Fatalf("first write: written=%v err=%v", written, err)
	}

	written, err = WriteFileIfChanged(path, []byte("package a\n"), 0644)
	if err != nil || written {
		t.Fatalf("identical write: written=%v err=%v", written, err)
	}

	written, err = WriteFileIfChanged(path, []byte("package b\n"), 0644)
	if err != nil || !written {
		t.Fatalf("changed write: written=%v err=%v", written, err)
	}

	content, _ := os.ReadFile(path)
	if string(content) != "package b\n" {
		t.Errorf("unexpected content %q", content)
	}

	entries, _ := os.ReadDir(filepath.Dir(path))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %v", entries)
	}
}

func TestFormatGoSource(t *testing.T) {
	src := []byte("package a\nimport (\n\"fmt\"\n\"strings\"\n)\nfunc F() string {return strings.ToUpper(\"x\")}\n")

	out, err := FormatGoSource("a.go", src)
	if err != nil {
		t.Fatalf("FormatGoSource failed: %v", err)
	}
	want := "package a\n\nimport (\n\t\"strings\"\n)\n\nfunc F() string { return strings.ToUpper(\"x\") }\n"
	if string(out) != want {
		t.Errorf("unexpected output:\n%s", out)
	}

	if _, err := FormatGoSource("bad.go", []byte("package a\nfunc {")); err == nil {
		t.Error("expected error for invalid source")
	}
}

func TestValidators(t *testing.T) {
	if err := IsValidGoIdentifier("package")("datasource"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := IsValidGoIdentifier("package")("data-source"); err == nil {
		t.Error("expected identifier error")
	}
	if err := IsExportedIdentifier("interface")("dataSourceApi"); err == nil {
		t.Error("expected exported error")
	}
	if err := IsImportPath("module")("github.com/acme/app"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := IsImportPath("module")("not a path"); err == nil {
		t.Error("expected import path error")
	}
	if err := IsOneOf("mode", "relaxed", "serialized")("eager"); err == nil {
		t.Error("expected IsOneOf error")
	}

	chain := NewValidatorChain(NotEmpty("name")).Add(IsExportedIdentifier("name"))
	if err := chain.Validate(""); err == nil {
		t.Error("expected chain error")
	}
	if err := chain.Validate("DataSourceApi"); err != nil {
		t.Errorf("unexpected chain error: %v", err)
	}
}

func TestImportName(t *testing.T) {
	tests := map[string]string{
		"context":                        "context",
		"github.com/acme/page/v2":        "page",
		"gopkg.in/yaml.v3":               "yaml",
		"github.com/mattn/go-isatty":     "isatty",
		"github.com/acme/client-go":      "client",
		"github.com/acme/multi-word-pkg": "multi",
		"example.com/v2":                 "example",
	}
	for path, want := range tests {
		if got := ImportName(path); got != want {
			t.Errorf("ImportName(%q) = %q, want %q", path, got, want)
		}
	}
}
