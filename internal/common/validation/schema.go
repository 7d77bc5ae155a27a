package validation

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	apperrors "maqua-crm/internal/common/errors"
)

// Validator checks request bodies against a compiled JSON schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the given JSON schema document.
func NewValidator(schemaJSON string) (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schemaJSON))
	if err != nil {
		return nil, apperrors.NewInternalError("invalid request schema").WithCause(err)
	}
	return &Validator{schema: schema}, nil
}

// ValidateBytes validates a raw JSON document. On failure it returns a
// VALIDATION_FAILED error listing every violation.
func (v *Validator) ValidateBytes(body []byte) error {
	result, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return apperrors.NewValidationError("request body is not valid JSON").WithCause(err)
	}
	if result.Valid() {
		return nil
	}
	violations := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		violations = append(violations, desc.String())
	}
	return apperrors.NewValidationError("request body failed validation").
		WithMetadata("violations", violations).
		WithMetadata("summary", strings.Join(violations, "; "))
}
