// Package forms interprets the dynamic forms attached to task steps: it decodes
// submitted values, renders stored case data and checks required fields.
package forms

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/dukex/caseflow/pkg/models"
)

// NotProvided is displayed for readonly fields whose source has no value.
const NotProvided = "Not provided"

// DateLayout is the wire format of date fields.
const DateLayout = time.DateOnly

// RenderedField is a form field paired with the value it currently shows.
type RenderedField struct {
	Field   models.FormField `json:"field"`
	Value   any              `json:"value"`
	Display string           `json:"display"`
}

// DefaultValue is the value of a field nobody filled in yet.
func DefaultValue(field models.FormField) any {
	if field.Type == models.FieldTypeCheckbox {
		return false
	}

	return ""
}

// Decode converts a raw submitted value into the typed value stored for the field.
// A nil raw value decodes to the field default.
func Decode(field models.FormField, raw any) (any, error) {
	if raw == nil {
		return DefaultValue(field), nil
	}

	switch field.Type {
	case models.FieldTypeText, models.FieldTypeTextarea:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(field, "text", raw)
		}

		return s, nil
	case models.FieldTypeNumber:
		return decodeNumber(field, raw)
	case models.FieldTypeDate:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(field, "date", raw)
		}

		if s == "" {
			return "", nil
		}

		if _, err := time.Parse(DateLayout, s); err != nil {
			return nil, &models.ValidationError{Field: field.ID, Message: fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field.Label)}
		}

		return s, nil
	case models.FieldTypeSelect:
		s, ok := raw.(string)
		if !ok {
			return nil, mismatch(field, "option", raw)
		}

		if s != "" && !slices.Contains(field.Options, s) {
			return nil, &models.ValidationError{Field: field.ID, Message: fmt.Sprintf("%s must be one of %s", field.Label, strings.Join(field.Options, ", "))}
		}

		return s, nil
	case models.FieldTypeCheckbox:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(v)
			if err != nil {
				return nil, mismatch(field, "boolean", raw)
			}

			return b, nil
		default:
			return nil, mismatch(field, "boolean", raw)
		}
	case models.FieldTypeReadonlyText:
		return raw, nil
	default:
		return nil, &models.ValidationError{Field: field.ID, Message: fmt.Sprintf("unsupported field type %q", field.Type)}
	}
}

func decodeNumber(field models.FormField, raw any) (any, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return nil, mismatch(field, "number", raw)
		}

		return f, nil
	case string:
		if strings.TrimSpace(v) == "" {
			return "", nil
		}

		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil, mismatch(field, "number", raw)
		}

		return f, nil
	default:
		return nil, mismatch(field, "number", raw)
	}
}

func mismatch(field models.FormField, want string, raw any) error {
	return &models.ValidationError{
		Field:   field.ID,
		Message: fmt.Sprintf("%s expects a %s value, got %T", field.Label, want, raw),
	}
}

// Falsy reports whether a value counts as missing for a required field.
func Falsy(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case int:
		return x == 0
	default:
		return false
	}
}

// missing applies Falsy, except that an entered number is present even when it
// is zero.
func missing(field models.FormField, value any) bool {
	if field.Type == models.FieldTypeNumber {
		_, isNumber := value.(float64)

		return !isNumber
	}

	return Falsy(value)
}

// Display formats a value for read-only presentation.
func Display(v any) string {
	switch x := v.(type) {
	case nil:
		return NotProvided
	case bool:
		if x {
			return "Yes"
		}

		return "No"
	case string:
		if x == "" {
			return NotProvided
		}

		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	default:
		return fmt.Sprint(x)
	}
}

// Render pairs every field of the form with its current value. Readonly fields
// show the value captured by their source field.
func Render(form models.NodeForm, formData map[string]any) []RenderedField {
	rendered := make([]RenderedField, 0, len(form.Fields))

	for _, field := range form.Fields {
		if field.ReadOnly() {
			value := formData[field.SourceFieldID]
			rendered = append(rendered, RenderedField{Field: field, Value: value, Display: Display(value)})

			continue
		}

		value, ok := formData[field.ID]
		if !ok {
			value = DefaultValue(field)
		}

		rendered = append(rendered, RenderedField{Field: field, Value: value, Display: Display(value)})
	}

	return rendered
}

// Collect builds the working state of a form: submitted values take precedence
// over stored case data, which takes precedence over defaults. Readonly fields
// are not part of the state.
func Collect(form models.NodeForm, formData, submission map[string]any) map[string]any {
	state := make(map[string]any, len(form.Fields))

	for _, field := range form.Fields {
		if field.ReadOnly() {
			continue
		}

		if v, ok := submission[field.ID]; ok {
			state[field.ID] = v
		} else if v, ok := formData[field.ID]; ok {
			state[field.ID] = v
		} else {
			state[field.ID] = DefaultValue(field)
		}
	}

	return state
}

// Validate decodes every non readonly value of state and checks required
// fields in form order. The first missing field is named by its label.
func Validate(form models.NodeForm, state map[string]any) error {
	for _, field := range form.Fields {
		if field.ReadOnly() {
			continue
		}

		value, err := Decode(field, state[field.ID])
		if err != nil {
			return err
		}

		if field.Required && missing(field, value) {
			return &models.ValidationError{Field: field.ID, Message: fmt.Sprintf("%s is required", field.Label)}
		}
	}

	return nil
}

// Merge returns a copy of formData with the decoded values of state overlaid.
// Readonly fields never write. The input map is not modified.
func Merge(formData map[string]any, form models.NodeForm, state map[string]any) (map[string]any, error) {
	merged := maps.Clone(formData)
	if merged == nil {
		merged = map[string]any{}
	}

	for _, field := range form.Fields {
		if field.ReadOnly() {
			continue
		}

		raw, ok := state[field.ID]
		if !ok {
			continue
		}

		value, err := Decode(field, raw)
		if err != nil {
			return nil, err
		}

		merged[field.ID] = value
	}

	return merged, nil
}
