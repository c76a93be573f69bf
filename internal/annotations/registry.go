package annotations

import (
	"fmt"
	"sort"
	"sync"
)

// SchemaRegistry maps the marker name that follows "//dsgen::" to the
// schema its parameters are checked against
type SchemaRegistry struct {
	mu      sync.RWMutex
	schemas map[string]AnnotationSchema
}

// NewRegistry creates an empty schema registry
func NewRegistry() *SchemaRegistry {
	return &SchemaRegistry{schemas: make(map[string]AnnotationSchema)}
}

var (
	defaultRegistry     *SchemaRegistry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry holding the built-in
// schemas
func DefaultRegistry() *SchemaRegistry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry()
		if err := RegisterBuiltinSchemas(defaultRegistry); err != nil {
			panic(err)
		}
	})
	return defaultRegistry
}

// Register adds schema under the marker name of its annotation type
func (r *SchemaRegistry) Register(schema AnnotationSchema) error {
	kind := schema.Type.String()
	if _, err := ParseAnnotationType(kind); err != nil {
		return fmt.Errorf("schema has unsupported annotation type %d", int(schema.Type))
	}
	if err := schema.check(); err != nil {
		return fmt.Errorf("invalid schema for %s: %w", kind, err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.schemas[kind]; exists {
		return fmt.Errorf("annotation %s is already registered", kind)
	}
	r.schemas[kind] = schema
	return nil
}

// Lookup returns the schema registered for a marker name
func (r *SchemaRegistry) Lookup(kind string) (AnnotationSchema, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	schema, ok := r.schemas[kind]
	return schema, ok
}

// Kinds lists the registered marker names in order
func (r *SchemaRegistry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.schemas))
	for kind := range r.schemas {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

// check rejects schemas the parser could not apply consistently
func (s AnnotationSchema) check() error {
	for name, param := range s.Parameters {
		if name == "" {
			return fmt.Errorf("parameter name cannot be empty")
		}
		if param.Type != StringType && param.Type != BoolType {
			return fmt.Errorf("parameter %s has unsupported type %d", name, param.Type)
		}
		if param.DefaultValue == nil {
			continue
		}
		if param.Required {
			return fmt.Errorf("required parameter %s cannot have a default", name)
		}
		if err := checkDefault(name, param); err != nil {
			return err
		}
	}

	for _, name := range s.Positional {
		param, ok := s.Parameters[name]
		if !ok {
			return fmt.Errorf("positional parameter %s is not declared", name)
		}
		if param.Type != StringType {
			return fmt.Errorf("positional parameter %s must be a string", name)
		}
	}
	return nil
}

func checkDefault(name string, param ParameterSpec) error {
	var ok bool
	switch param.Type {
	case StringType:
		_, ok = param.DefaultValue.(string)
	case BoolType:
		_, ok = param.DefaultValue.(bool)
	}
	if !ok {
		return fmt.Errorf("default of %s parameter %s has type %T", param.Type, name, param.DefaultValue)
	}
	if param.Validator != nil {
		if err := param.Validator(param.DefaultValue); err != nil {
			return fmt.Errorf("default of %s: %w", name, err)
		}
	}
	return nil
}
