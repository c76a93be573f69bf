package annotations

import (
	"fmt"
	"go/token"
	"strings"
)

// Parameter names of the datasource annotation
const (
	ParamPrefix     = "Prefix"
	ParamUniqueCode = "UniqueCode"
	ParamImpl       = "Impl"
	ParamCallPath   = "CallPath"
)

// DataSourceAnnotationSchema defines the schema for //dsgen::datasource annotations
var DataSourceAnnotationSchema = AnnotationSchema{
	Type:        DataSourceAnnotation,
	Description: "Marks an interface as a datasource exposed through the aggregated API",
	Parameters: map[string]ParameterSpec{
		ParamPrefix: {
			Type:        StringType,
			Description: "Prepended to every exposed operation name (may be given positionally)",
			Validator:   identifier,
		},
		ParamUniqueCode: {
			Type:        StringType,
			Required:    true,
			Description: "Registry key of the datasource, also the stem of its accessor name",
			Validator:   identifier,
		},
		ParamImpl: {
			Type:        StringType,
			Description: "Concrete type constructed by the registry: Type or pkg.Type",
			Validator:   typeName,
		},
		ParamCallPath: {
			Type:        StringType,
			Description: "Go expression whose methods receive forwarded calls",
		},
	},
	Positional: []string{ParamPrefix},
	Examples: []string{
		"//dsgen::datasource -UniqueCode=user -Impl=UserDataSourceImpl",
		"//dsgen::datasource order -UniqueCode=order -CallPath=helpers.Orders()",
		"//dsgen::datasource -Prefix=pay -UniqueCode=payment -Impl=gateway.Client",
		`//dsgen::datasource -UniqueCode=audit -CallPath="audit.Default().WithTag(\"ds\")"`,
	},
}

func identifier(v interface{}) error {
	s, _ := v.(string)
	if !token.IsIdentifier(s) {
		return fmt.Errorf("'%s' is not a valid Go identifier", s)
	}
	return nil
}

func typeName(v interface{}) error {
	s, _ := v.(string)
	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return fmt.Errorf("'%s' must be Type or pkg.Type", s)
	}
	for _, part := range parts {
		if !token.IsIdentifier(part) {
			return fmt.Errorf("'%s' must be Type or pkg.Type", s)
		}
	}
	return nil
}

// RegisterBuiltinSchemas registers all built-in annotation schemas with the given registry
func RegisterBuiltinSchemas(registry *SchemaRegistry) error {
	for _, schema := range GetBuiltinSchemas() {
		if err := registry.Register(schema); err != nil {
			return fmt.Errorf("failed to register %s schema: %w", schema.Type.String(), err)
		}
	}

	return nil
}

// GetBuiltinSchemas returns all built-in annotation schemas
func GetBuiltinSchemas() []AnnotationSchema {
	return []AnnotationSchema{
		DataSourceAnnotationSchema,
	}
}
