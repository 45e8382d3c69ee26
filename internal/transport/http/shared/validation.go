package shared

import (
	"net/http"
	"slices"
	"strings"

	"careroster/internal/domain/people"
	"careroster/internal/transport/http/api"
)

type ValidationIssue struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// Validator collects issues with query parameters and path ids. Body
// validation lives in the domain packages and reaches the client through
// WriteError in the same shape.
type Validator struct {
	issues []ValidationIssue
}

func NewValidator() *Validator {
	return &Validator{}
}

func (v *Validator) Add(field, reason string) {
	if reason = strings.TrimSpace(reason); reason == "" {
		return
	}
	v.issues = append(v.issues, ValidationIssue{Field: strings.TrimSpace(field), Reason: reason})
}

func (v *Validator) Required(field, value, reason string) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, reason)
	}
}

// Enum accepts an empty value; the caller decides whether the field is
// required.
func (v *Validator) Enum(field, value string, allowed []string, reason string) {
	if value = strings.TrimSpace(value); value != "" && !slices.Contains(allowed, value) {
		v.Add(field, reason)
	}
}

// Reject writes a 400 listing every collected issue and reports whether it
// did.
func (v *Validator) Reject(w http.ResponseWriter, requestID string) bool {
	if len(v.issues) == 0 {
		return false
	}
	FailValidation(w, requestID, v.issues[0].Reason, v.issues)
	return true
}

func FailValidation(w http.ResponseWriter, requestID, message string, issues []ValidationIssue) {
	api.FailWithDetails(w, http.StatusBadRequest, "validation_error", message,
		map[string]any{"fields": issues}, requestID)
}

func issuesFrom(err *people.ValidationError) []ValidationIssue {
	issues := make([]ValidationIssue, 0, len(err.Fields))
	for _, field := range err.Fields {
		issues = append(issues, ValidationIssue{Field: field, Reason: err.Message})
	}
	return issues
}
