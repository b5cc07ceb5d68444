package validation

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ndewijer/Trading-Analytics-Engine/internal/apperrors"
)

// Error collects field-level validation failures.
// It matches apperrors.ErrValidation with errors.Is.
type Error struct {
	Fields map[string]string
}

func (e *Error) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for field := range e.Fields {
		keys = append(keys, field)
	}
	slices.Sort(keys)

	msgs := make([]string, 0, len(keys))
	for _, field := range keys {
		msgs = append(msgs, fmt.Sprintf("%s: %s", field, e.Fields[field]))
	}
	return strings.Join(msgs, "; ")
}

// Unwrap lets errors.Is(err, apperrors.ErrValidation) match any validation Error.
func (e *Error) Unwrap() error {
	return apperrors.ErrValidation
}

// newError returns nil when no field failed, so callers can return it directly.
func newError(fields map[string]string) error {
	if len(fields) == 0 {
		return nil
	}
	return &Error{Fields: fields}
}
