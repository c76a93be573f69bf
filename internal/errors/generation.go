package errors

import "fmt"

// GenerationError represents an error during artifact synthesis or rendering
type GenerationError struct {
	*BaseError
	Artifact string // artifact being produced
	Stage    string // synthesize, render, format or write
}

// NewGenerationError creates a new generation error
func NewGenerationError(message string) *GenerationError {
	return &GenerationError{
		BaseError: New(GenerationErrorCode, message),
	}
}

// NewGenerationErrorf creates a new generation error with a formatted message
func NewGenerationErrorf(format string, args ...interface{}) *GenerationError {
	return NewGenerationError(fmt.Sprintf(format, args...))
}

// WithArtifact sets the artifact name on the error
func (e *GenerationError) WithArtifact(artifact string) *GenerationError {
	e.Artifact = artifact
	e.BaseError.WithContext("artifact", artifact)
	return e
}

// WithStage sets the generation stage on the error
func (e *GenerationError) WithStage(stage string) *GenerationError {
	e.Stage = stage
	e.BaseError.WithContext("stage", stage)
	return e
}

// WithSuggestion adds a suggestion and keeps the concrete type
func (e *GenerationError) WithSuggestion(suggestion string) *GenerationError {
	e.BaseError.WithSuggestion(suggestion)
	return e
}

// WithContext adds context data and keeps the concrete type
func (e *GenerationError) WithContext(key string, value interface{}) *GenerationError {
	e.BaseError.WithContext(key, value)
	return e
}

// ConfigError represents an invalid configuration value
type ConfigError struct {
	*BaseError
	Field string
}

// NewConfigError creates a configuration error for one field
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{
		BaseError: New(ConfigurationErrorCode, fmt.Sprintf("invalid %s: %s", field, message)).
			WithContext("field", field),
		Field: field,
	}
}
