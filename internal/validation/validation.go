package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
)

// Common validation errors
var (
	ErrInvalidUUID = apperrors.ErrInvalidUUID
	ErrEmptyID     = apperrors.ErrEmptyID
)

var (
	structValidator     *validator.Validate
	structValidatorOnce sync.Once
)

func getValidator() *validator.Validate {
	structValidatorOnce.Do(func() {
		structValidator = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their JSON name so errors match the request body.
		structValidator.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return structValidator
}

// ValidateUUID checks if a string is a valid UUID
func ValidateUUID(id string) error {
	if id == "" {
		return ErrEmptyID
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidUUID, id)
	}
	return nil
}

// ValidateAgentID checks that an agent identifier is present and printable.
// Agent IDs are free-form strings chosen by the trading layer.
func ValidateAgentID(agentID string) error {
	trimmed := strings.TrimSpace(agentID)
	if trimmed == "" {
		return &Error{Fields: map[string]string{"agentId": apperrors.ErrInvalidAgentID.Error()}}
	}
	if len(agentID) > 128 {
		return &Error{Fields: map[string]string{"agentId": "agent ID must be 128 characters or less"}}
	}
	if strings.ContainsAny(agentID, "\r\n\t") {
		return &Error{Fields: map[string]string{"agentId": "agent ID contains control characters"}}
	}
	return nil
}

// ValidateStruct runs the `validate` struct tags of v and converts failures into
// a validation Error keyed by the field's namespace.
func ValidateStruct(v any) error {
	err := getValidator().Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldName(fe.Namespace())] = describe(fe)
	}
	return newError(fields)
}

// fieldName drops the top-level struct name from a validator namespace.
func fieldName(namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		return namespace[i+1:]
	}
	return namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "dive":
		return "contains an invalid entry"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
