package forms

import (
	"fmt"
	"strings"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema describes the submission a form accepts. Readonly fields are not
// submittable and therefore absent.
func JSONSchema(form models.NodeForm) map[string]any {
	properties := map[string]any{}

	for _, field := range form.Fields {
		if field.ReadOnly() {
			continue
		}

		properties[field.ID] = fieldSchema(field)
	}

	return map[string]any{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"type":                 "object",
		"properties":           properties,
		"additionalProperties": false,
	}
}

func fieldSchema(field models.FormField) map[string]any {
	schema := map[string]any{"title": field.Label}

	switch field.Type {
	case models.FieldTypeNumber:
		schema["type"] = []any{"number", "string", "null"}
	case models.FieldTypeCheckbox:
		schema["type"] = []any{"boolean", "string", "null"}
	case models.FieldTypeDate:
		schema["type"] = []any{"string", "null"}
		schema["pattern"] = `^(\d{4}-\d{2}-\d{2})?$`
	case models.FieldTypeSelect:
		enum := []any{"", nil}
		for _, o := range field.Options {
			enum = append(enum, o)
		}

		schema["enum"] = enum
	case models.FieldTypeText, models.FieldTypeTextarea, models.FieldTypeReadonlyText:
		schema["type"] = []any{"string", "null"}
	}

	return schema
}

// ValidateSchema checks the shape of a raw submission against JSONSchema(form).
func ValidateSchema(form models.NodeForm, submission map[string]any) error {
	if submission == nil {
		submission = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(JSONSchema(form)),
		gojsonschema.NewGoLoader(submission),
	)
	if err != nil {
		return fmt.Errorf("failed to validate submission: %w", err)
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return &models.ValidationError{Field: "formData", Message: strings.Join(problems, "; ")}
	}

	return nil
}
