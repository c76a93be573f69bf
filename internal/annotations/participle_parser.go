package annotations

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Prefix marks a comment line as a dsgen annotation
const Prefix = "dsgen::"

// ParticipleParser parses annotation comments with alecthomas/participle
type ParticipleParser struct {
	parser    *participle.Parser[annotationBody]
	registry  *SchemaRegistry
	validator SchemaValidator
}

// annotationBody is the grammar of everything after "//dsgen::"
type annotationBody struct {
	Pos        lexer.Position
	Kind       string       `parser:"@Word"`
	Positional []string     `parser:"@(Word | String)*"`
	Params     []*namedItem `parser:"@@*"`
}

type namedItem struct {
	Pos   lexer.Position
	Key   string  `parser:"'-' @Word"`
	Value *string `parser:"('=' @(Word | String))?"`
}

var annotationLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(?:\\.|[^"\\])*"`},
	{Name: "Dash", Pattern: `-`},
	{Name: "Equals", Pattern: `=`},
	{Name: "Word", Pattern: `[^\s"=\-][^\s"=]*`},
	{Name: "Whitespace", Pattern: `\s+`},
})

// NewParticipleParser creates a new parser. A nil registry uses DefaultRegistry.
func NewParticipleParser(registry *SchemaRegistry) *ParticipleParser {
	if registry == nil {
		registry = DefaultRegistry()
	}

	parser := participle.MustBuild[annotationBody](
		participle.Lexer(annotationLexer),
		participle.Elide("Whitespace"),
		participle.Unquote("String"),
	)

	return &ParticipleParser{
		parser:    parser,
		registry:  registry,
		validator: NewValidator(),
	}
}

// IsAnnotation reports whether a comment line carries the dsgen prefix
func IsAnnotation(comment string) bool {
	_, ok := stripCommentPrefix(comment)
	return ok
}

func stripCommentPrefix(comment string) (string, bool) {
	input := strings.TrimSpace(comment)
	if !strings.HasPrefix(input, "//") {
		return "", false
	}
	content := strings.TrimLeftFunc(input[2:], unicode.IsSpace)
	if !strings.HasPrefix(content, Prefix) {
		return "", false
	}
	return content[len(Prefix):], true
}

// ParseAnnotation parses and validates a single annotation comment
func (p *ParticipleParser) ParseAnnotation(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	body, ok := stripCommentPrefix(comment)
	if !ok {
		msg := "annotation must start with '//dsgen::' prefix"
		return nil, &SyntaxError{Msg: msg, Loc: location, Hint: generateSyntaxSuggestion(msg)}
	}
	if strings.TrimSpace(body) == "" {
		return nil, &SyntaxError{Msg: "missing annotation type", Loc: location, Hint: generateSyntaxSuggestion("")}
	}

	ast, err := p.parser.ParseString(location.File, body)
	if err != nil {
		return nil, p.syntaxError(err, location)
	}

	schema, ok := p.registry.Lookup(ast.Kind)
	if !ok {
		return nil, &SchemaError{
			Msg:  fmt.Sprintf("unknown annotation type '%s'", ast.Kind),
			Loc:  location,
			Hint: "Supported annotation types: " + strings.Join(p.registry.Kinds(), ", "),
		}
	}

	parsed := &ParsedAnnotation{
		Type:       schema.Type,
		Parameters: make(map[string]interface{}),
		Location:   location,
		Raw:        strings.TrimSpace(comment),
	}

	if err := p.assignPositional(parsed, schema, ast.Positional); err != nil {
		return nil, err
	}
	if err := p.assignNamed(parsed, schema, ast.Params); err != nil {
		return nil, err
	}

	if err := p.validator.ApplyDefaults(parsed, schema); err != nil {
		return nil, err
	}
	if err := p.validator.Validate(parsed, schema); err != nil {
		return nil, err
	}

	return parsed, nil
}

func (p *ParticipleParser) assignPositional(parsed *ParsedAnnotation, schema AnnotationSchema, values []string) error {
	if len(values) > len(schema.Positional) {
		return &SchemaError{
			Msg:  fmt.Sprintf("%s annotation accepts at most %d positional argument(s), got %d", schema.Type, len(schema.Positional), len(values)),
			Loc:  parsed.Location,
			Hint: "Use named parameters of the form -Name=Value",
		}
	}
	for i, value := range values {
		parsed.Parameters[schema.Positional[i]] = value
	}
	return nil
}

func (p *ParticipleParser) assignNamed(parsed *ParsedAnnotation, schema AnnotationSchema, items []*namedItem) error {
	for _, item := range items {
		loc := p.offsetLocation(parsed.Location, item.Pos)
		if _, exists := parsed.Parameters[item.Key]; exists {
			return &SchemaError{
				Msg:  fmt.Sprintf("parameter '%s' is given more than once", item.Key),
				Loc:  loc,
				Hint: "Remove the duplicate parameter",
			}
		}

		spec, known := schema.Parameters[item.Key]
		switch {
		case item.Value != nil:
			parsed.Parameters[item.Key] = *item.Value
		case known && spec.Type == BoolType:
			parsed.Parameters[item.Key] = true
		case known:
			return &ValidationError{
				Parameter: item.Key,
				Expected:  fmt.Sprintf("-%s=<value>", item.Key),
				Actual:    "a flag without a value",
				Loc:       loc,
				Hint:      spec.Description,
			}
		default:
			// unknown flags are reported by the schema validator
			parsed.Parameters[item.Key] = true
		}
	}
	return nil
}

// offsetLocation shifts an annotation location by the column of a token
// inside the annotation body
func (p *ParticipleParser) offsetLocation(base SourceLocation, pos lexer.Position) SourceLocation {
	if base.Line == 0 || pos.Column == 0 {
		return base
	}
	loc := base
	loc.Column = base.Column + len("//"+Prefix) + pos.Column - 1
	return loc
}

func (p *ParticipleParser) syntaxError(err error, location SourceLocation) *SyntaxError {
	loc := location
	msg := err.Error()

	var perr participle.Error
	if errors.As(err, &perr) {
		loc = p.offsetLocation(location, perr.Position())
		msg = perr.Message()
	}

	return &SyntaxError{Msg: msg, Loc: loc, Hint: generateSyntaxSuggestion(msg)}
}
