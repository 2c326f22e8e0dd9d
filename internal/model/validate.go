package model

import (
	"strings"
)

// ValidationError holds a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

// FieldError represents a single validation failure on a named field.
type FieldError struct {
	Field   string
	Message string
}

// Error formats the validation error as a semicolon-separated list of field messages.
func (e *ValidationError) Error() string {
	parts := make([]string, len(e.Errors))
	for i, fe := range e.Errors {
		parts[i] = fe.Field + ": " + fe.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// HasErrors reports whether the validation error contains any field errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ValidateBatchRequest checks that every operator-supplied field is present.
// It returns a *ValidationError if any rules fail, or nil if the request can
// be admitted to the quota check.
func ValidateBatchRequest(r *BatchRequest) error {
	var ve ValidationError

	required := []struct {
		field string
		value string
	}{
		{"api_id", r.Credentials.APIID},
		{"api_hash", r.Credentials.APIHash},
		{"sheet_id", r.ReportTarget.SheetID},
		{"label", r.ReportTarget.Label},
		{"operator", r.Operator},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			ve.Errors = append(ve.Errors, FieldError{Field: f.field, Message: "is required"})
		}
	}

	// Identifiers: at least one non-blank entry.
	n := 0
	for _, id := range r.Identifiers {
		if strings.TrimSpace(id) != "" {
			n++
		}
	}
	if n == 0 {
		ve.Errors = append(ve.Errors, FieldError{Field: "identifiers", Message: "must contain at least one number"})
	}

	if ve.HasErrors() {
		return &ve
	}
	return nil
}
