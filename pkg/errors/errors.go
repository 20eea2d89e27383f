package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	CodeInvalidRequest        = "INVALID_REQUEST"
	CodeTransientFetch        = "TRANSIENT_FETCH"
	CodeNotFound              = "NOT_FOUND"
	CodeGenerationUnavailable = "GENERATION_UNAVAILABLE"
	CodeMalformedModelOutput  = "MALFORMED_MODEL_OUTPUT"
	CodeSchemaValidation      = "SCHEMA_VALIDATION"
	CodeCache                 = "CACHE_ERROR"
	CodeInternal              = "INTERNAL_ERROR"
)

type EngineError struct {
	Message    string
	Code       string
	StatusCode int
	Context    map[string]any
	Cause      error
}

func (e *EngineError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *EngineError) Unwrap() error {
	return e.Cause
}

func NewEngineError(message, code string, statusCode int, context map[string]any) *EngineError {
	return &EngineError{
		Message:    message,
		Code:       code,
		StatusCode: statusCode,
		Context:    context,
	}
}

func (e *EngineError) WithCause(cause error) *EngineError {
	e.Cause = cause
	return e
}

// InvalidRequestError is returned when the caller has to fix the input.
type InvalidRequestError struct {
	*EngineError
	Field string
	Value any
}

func NewInvalidRequestError(message, field string, value any) *InvalidRequestError {
	return &InvalidRequestError{
		EngineError: &EngineError{
			Message:    message,
			Code:       CodeInvalidRequest,
			StatusCode: http.StatusBadRequest,
			Context: map[string]any{
				"field": field,
				"value": value,
			},
		},
		Field: field,
		Value: value,
	}
}

// TransientFetchError means the upstream catalog was unreachable or returned an
// unusable page. The whole request may be retried later.
type TransientFetchError struct {
	*EngineError
	URL    string
	Status int
}

func NewTransientFetchError(message, url string, status int, cause error) *TransientFetchError {
	return &TransientFetchError{
		EngineError: &EngineError{
			Message:    message,
			Code:       CodeTransientFetch,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"url":    url,
				"status": status,
			},
			Cause: cause,
		},
		URL:    url,
		Status: status,
	}
}

type NotFoundError struct {
	*EngineError
	Resource string
	Key      string
}

func NewNotFoundError(resource, key string) *NotFoundError {
	return &NotFoundError{
		EngineError: &EngineError{
			Message:    fmt.Sprintf("%s not found", resource),
			Code:       CodeNotFound,
			StatusCode: http.StatusNotFound,
			Context: map[string]any{
				"resource": resource,
				"key":      key,
			},
		},
		Resource: resource,
		Key:      key,
	}
}

type GenerationUnavailableError struct {
	*EngineError
	Provider string
}

func NewGenerationUnavailableError(message, provider string, cause error) *GenerationUnavailableError {
	return &GenerationUnavailableError{
		EngineError: &EngineError{
			Message:    message,
			Code:       CodeGenerationUnavailable,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"provider": provider,
			},
			Cause: cause,
		},
		Provider: provider,
	}
}

type MalformedModelOutputError struct {
	*EngineError
	Preview string
}

func NewMalformedModelOutputError(message, preview string, cause error) *MalformedModelOutputError {
	return &MalformedModelOutputError{
		EngineError: &EngineError{
			Message:    message,
			Code:       CodeMalformedModelOutput,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"preview": preview,
			},
			Cause: cause,
		},
		Preview: preview,
	}
}

// SchemaValidationError reports the first path of the generated plan that is
// missing or has the wrong type.
type SchemaValidationError struct {
	*EngineError
	Path string
}

func NewSchemaValidationError(message, path string) *SchemaValidationError {
	return &SchemaValidationError{
		EngineError: &EngineError{
			Message:    message,
			Code:       CodeSchemaValidation,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"path": path,
			},
		},
		Path: path,
	}
}

type CacheError struct {
	*EngineError
	Operation string
	Key       string
}

func NewCacheError(message, operation, key string, cause error) *CacheError {
	return &CacheError{
		EngineError: &EngineError{
			Message:    message,
			Code:       CodeCache,
			StatusCode: http.StatusInternalServerError,
			Context: map[string]any{
				"operation": operation,
				"key":       key,
			},
			Cause: cause,
		},
		Operation: operation,
		Key:       key,
	}
}

func engineErrorOf(err error) *EngineError {
	var invalid *InvalidRequestError
	var transient *TransientFetchError
	var notFound *NotFoundError
	var unavailable *GenerationUnavailableError
	var malformed *MalformedModelOutputError
	var schema *SchemaValidationError
	var cacheErr *CacheError
	var engine *EngineError

	switch {
	case stderrors.As(err, &invalid):
		return invalid.EngineError
	case stderrors.As(err, &notFound):
		return notFound.EngineError
	case stderrors.As(err, &transient):
		return transient.EngineError
	case stderrors.As(err, &unavailable):
		return unavailable.EngineError
	case stderrors.As(err, &malformed):
		return malformed.EngineError
	case stderrors.As(err, &schema):
		return schema.EngineError
	case stderrors.As(err, &cacheErr):
		return cacheErr.EngineError
	case stderrors.As(err, &engine):
		return engine
	}
	return nil
}

// StatusOf maps an error onto the HTTP status the caller should see.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if e := engineErrorOf(err); e != nil && e.StatusCode != 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

func CodeOf(err error) string {
	if e := engineErrorOf(err); e != nil && e.Code != "" {
		return e.Code
	}
	return CodeInternal
}
