// Package validation checks job variables against the activity input
// schemas before a worker hands them to the orchestrator.
package validation

import (
	"fmt"
	"sort"
	"strings"

	apperrors "loan-orchestrator/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// Validator holds compiled schemas keyed by task type.
type Validator struct {
	schemas map[string]*gojsonschema.Schema
}

// NewValidator compiles every schema up front so a malformed schema fails at
// startup rather than on the first job.
func NewValidator(schemas map[string]map[string]interface{}) (*Validator, error) {
	v := &Validator{schemas: make(map[string]*gojsonschema.Schema, len(schemas))}
	for taskType, raw := range schemas {
		compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("compile input schema for %s: %w", taskType, err)
		}
		v.schemas[taskType] = compiled
	}
	return v, nil
}

// Check validates variables for taskType. Task types without a schema pass.
func (v *Validator) Check(taskType string, variables map[string]interface{}) []ValidationError {
	if v == nil {
		return nil
	}
	schema, ok := v.schemas[taskType]
	if !ok {
		return nil
	}

	result, err := schema.Validate(gojsonschema.NewGoLoader(variables))
	if err != nil {
		return []ValidationError{{Field: "(root)", Message: err.Error(), Code: "INVALID_DOCUMENT"}}
	}
	if result.Valid() {
		return nil
	}

	out := make([]ValidationError, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		out = append(out, ValidationError{
			Field:   re.Field(),
			Message: re.Description(),
			Code:    strings.ToUpper(re.Type()),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

// Validate is Check folded into a VALIDATION_FAILED error.
func (v *Validator) Validate(taskType string, variables map[string]interface{}) error {
	problems := v.Check(taskType, variables)
	if len(problems) == 0 {
		return nil
	}

	parts := make([]string, len(problems))
	for i, p := range problems {
		parts[i] = p.Field + ": " + p.Message
	}
	return apperrors.NewValidationFailedError(strings.Join(parts, "; ")).
		WithMetadata("taskType", taskType).
		WithMetadata("fields", problems)
}
