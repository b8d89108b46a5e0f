package tools

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Validator checks tool arguments against the tool's JSON Schema. Models
// assemble arguments freely; nothing is trusted before validation.
type Validator struct {
	schema *gojsonschema.Schema
}

// NewValidator compiles the schema once at registration time. A nil or
// empty schema produces a pass-through validator.
func NewValidator(rawSchema []byte) (*Validator, error) {
	if len(rawSchema) == 0 {
		return &Validator{}, nil
	}

	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(rawSchema))
	if err != nil {
		return nil, fmt.Errorf("compile tool schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

func (v *Validator) Validate(args map[string]any) error {
	if v.schema == nil {
		return nil
	}
	if args == nil {
		args = map[string]any{}
	}

	result, err := v.schema.Validate(gojsonschema.NewGoLoader(args))
	if err != nil {
		return fmt.Errorf("validate arguments: %w", err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		issues = append(issues, desc.String())
	}
	return fmt.Errorf("invalid arguments: %s", strings.Join(issues, "; "))
}
