package naming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/dsgen/internal/models"
)

func TestExposedName(t *testing.T) {
	tests := []struct {
		prefix, op, want string
	}{
		{"", "getName", "getName"},
		{"", "GetName", "GetName"},
		{"order", "list", "orderList"},
		{"order", "List", "orderList"},
		{"Pay", "refund", "PayRefund"},
		{"pay", "_internal", "pay_internal"},
		{"pay", "éclair", "payéclair"},
		{"pay", "Éclair", "payÉclair"},
		{"", "éclair", "éclair"},
		{"data", "日本", "data日本"},
		{"pay", "x", "payX"},
		{"pay", "", "pay"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ExposedName(tt.prefix, tt.op), "%q + %q", tt.prefix, tt.op)
	}
}

func TestAccessorName(t *testing.T) {
	assert.Equal(t, "userDataSource", AccessorName("user"))
	assert.Equal(t, "PaymentDataSource", AccessorName("Payment"))
}

func TestForward(t *testing.T) {
	str := models.Builtin("string")

	registry := &models.Declaration{UniqueCode: "user", Impl: "UserDsImpl"}
	callPath := &models.Declaration{UniqueCode: "order", CallPath: "helpers.OrderHelper()"}

	tests := []struct {
		name string
		decl *models.Declaration
		op   models.Operation
		want string
	}{
		{
			name: "registry returning",
			decl: registry,
			op:   models.Operation{Name: "GetName", Results: []*models.TypeRef{str}},
			want: "return SharedDataSourceManager().userDataSource().GetName()",
		},
		{
			name: "call path returning",
			decl: callPath,
			op:   models.Operation{Name: "list", Results: []*models.TypeRef{models.SliceOf(str)}},
			want: "return helpers.OrderHelper().list()",
		},
		{
			name: "void with args",
			decl: registry,
			op: models.Operation{
				Name:   "Save",
				Params: []models.Parameter{{Name: "id", Type: str}, {Name: "name", Type: str}},
			},
			want: "SharedDataSourceManager().userDataSource().Save(id, name)",
		},
		{
			name: "variadic",
			decl: callPath,
			op: models.Operation{
				Name:     "Tag",
				Params:   []models.Parameter{{Name: "arg0", Type: str}, {Name: "arg1", Type: str}},
				Variadic: true,
				Results:  []*models.TypeRef{models.Builtin("error")},
			},
			want: "return helpers.OrderHelper().Tag(arg0, arg1...)",
		},
		{
			name: "call path wins over impl",
			decl: &models.Declaration{UniqueCode: "audit", Impl: "AuditImpl", CallPath: "audit.Default()"},
			op:   models.Operation{Name: "Flush"},
			want: "audit.Default().Flush()",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt := Forward(tt.decl, tt.op, "SharedDataSourceManager")
			assert.Equal(t, tt.want, Render(stmt))
			assert.Equal(t, tt.op.Name, stmt.Method)
		})
	}
}
