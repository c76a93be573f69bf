package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeRefFormat(t *testing.T) {
	user := Named("example.com/app/models", "models", "User")

	tests := []struct {
		name string
		ref  *TypeRef
		want string
	}{
		{"builtin", Builtin("string"), "string"},
		{"named", user, "models.User"},
		{"pointer", PointerTo(user), "*models.User"},
		{"slice", SliceOf(user), "[]models.User"},
		{"map", MapOf(Builtin("string"), SliceOf(Builtin("int"))), "map[string][]int"},
		{"array", &TypeRef{Kind: KindArray, Len: "4", Elem: Builtin("byte")}, "[4]byte"},
		{"recv chan", &TypeRef{Kind: KindChan, Dir: ChanRecv, Elem: Builtin("error")}, "<-chan error"},
		{"send chan", &TypeRef{Kind: KindChan, Dir: ChanSend, Elem: Builtin("int")}, "chan<- int"},
		{"generic", Named("example.com/app/page", "page", "Page", user), "page.Page[models.User]"},
		{"empty interface", &TypeRef{Kind: KindInterface}, "interface{}"},
		{
			"variadic func",
			&TypeRef{Kind: KindFunc, Params: []*TypeRef{Builtin("string"), Builtin("any")}, Variadic: true, Results: []*TypeRef{Builtin("int"), Builtin("error")}},
			"func(string, ...any) (int, error)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ref.String())
			assert.NoError(t, tt.ref.Validate())
		})
	}
}

func TestTypeRefQualifier(t *testing.T) {
	ref := MapOf(
		Named("example.com/app/models", "models", "ID"),
		PointerTo(Named("example.com/other/models", "models", "User")),
	)
	aliases := map[string]string{
		"example.com/app/models":   "",
		"example.com/other/models": "models2",
	}

	got := ref.Format(func(path string) string { return aliases[path] })
	assert.Equal(t, "map[ID]*models2.User", got)
}

func TestTypeRefValidateMalformed(t *testing.T) {
	tests := []struct {
		name string
		ref  *TypeRef
	}{
		{"nil", nil},
		{"unknown kind", &TypeRef{}},
		{"unnamed", &TypeRef{Kind: KindNamed}},
		{"path without package name", &TypeRef{Kind: KindNamed, Name: "User", PkgPath: "example.com/models"}},
		{"pointer without elem", &TypeRef{Kind: KindPointer}},
		{"array without length", &TypeRef{Kind: KindArray, Elem: Builtin("int")}},
		{"map without key", &TypeRef{Kind: KindMap, Elem: Builtin("int")}},
		{"nested", SliceOf(MapOf(Builtin("string"), &TypeRef{Kind: KindNamed}))},
		{"variadic func without params", &TypeRef{Kind: KindFunc, Variadic: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.ref.Validate())
		})
	}
}

func TestTypeRefPackages(t *testing.T) {
	ref := &TypeRef{
		Kind: KindFunc,
		Params: []*TypeRef{
			Named("context", "context", "Context"),
			SliceOf(Named("example.com/app/models", "models", "User")),
		},
		Results: []*TypeRef{
			Named("example.com/app/models", "models", "Page"),
			Builtin("error"),
		},
	}

	assert.Equal(t, []string{"context", "example.com/app/models"}, ref.Packages())
}

func TestDeclarationHelpers(t *testing.T) {
	decl := &Declaration{Name: "UserDataSource", PackageName: "services", PackagePath: "example.com/app/services"}

	assert.Equal(t, "example.com/app/services.UserDataSource", decl.QualifiedName())
	assert.Equal(t, "services.UserDataSource", decl.Type().String())
	assert.True(t, decl.UsesRegistry())

	decl.CallPath = "helpers.Users()"
	assert.False(t, decl.UsesRegistry())

	assert.True(t, Operation{Name: "Flush"}.IsVoid())
	assert.False(t, Operation{Name: "Name", Results: []*TypeRef{Builtin("string")}}.IsVoid())
}

func TestDiagnosticCollector(t *testing.T) {
	collector := &DiagnosticCollector{}
	assert.False(t, collector.HasErrors())

	collector.Report(Diagnostic{Severity: SeverityWarning, Rule: RuleEmbeddedInterface, Message: "embedded io.Closer ignored"})
	assert.False(t, collector.HasErrors())

	collector.Report(Diagnostic{
		Severity:    SeverityError,
		Rule:        RulePrefixCollision,
		Message:     `prefix "pay" is already used`,
		Declaration: "example.com/app.Billing",
		Location:    SourceLocation{File: "billing.go", Line: 9},
	})
	require.True(t, collector.HasErrors())
	require.Len(t, collector.ByRule(RulePrefixCollision), 1)
	assert.Equal(t, `billing.go:9: error: prefix "pay" is already used [prefix-collision]`, collector.Diagnostics[1].String())
}
