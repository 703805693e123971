package forms_test

import (
	"encoding/json"
	"testing"

	"github.com/dukex/caseflow/pkg/forms"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triageForm(t *testing.T) models.NodeForm {
	t.Helper()

	node, ok := models.DefaultDocument().Node("triage")
	require.True(t, ok)

	return *node.Form
}

func approvalForm(t *testing.T) models.NodeForm {
	t.Helper()

	node, ok := models.DefaultDocument().Node("approval")
	require.True(t, ok)

	return *node.Form
}

func TestDecode(t *testing.T) {
	t.Parallel()

	selectField := models.FormField{ID: "kind", Label: "Kind", Type: models.FieldTypeSelect, Options: []string{"Bug", "Feature"}}

	tests := []struct {
		name    string
		field   models.FormField
		raw     any
		want    any
		wantErr bool
	}{
		{name: "text", field: models.FormField{ID: "t", Type: models.FieldTypeText}, raw: "hello", want: "hello"},
		{name: "text default", field: models.FormField{ID: "t", Type: models.FieldTypeTextarea}, raw: nil, want: ""},
		{name: "text rejects numbers", field: models.FormField{ID: "t", Type: models.FieldTypeText}, raw: 3.0, wantErr: true},
		{name: "checkbox default", field: models.FormField{ID: "c", Type: models.FieldTypeCheckbox}, raw: nil, want: false},
		{name: "checkbox bool", field: models.FormField{ID: "c", Type: models.FieldTypeCheckbox}, raw: true, want: true},
		{name: "checkbox string", field: models.FormField{ID: "c", Type: models.FieldTypeCheckbox}, raw: "false", want: false},
		{name: "checkbox garbage", field: models.FormField{ID: "c", Type: models.FieldTypeCheckbox}, raw: "maybe", wantErr: true},
		{name: "number float", field: models.FormField{ID: "n", Type: models.FieldTypeNumber}, raw: 4.5, want: 4.5},
		{name: "number string", field: models.FormField{ID: "n", Type: models.FieldTypeNumber}, raw: " 12 ", want: 12.0},
		{name: "number json", field: models.FormField{ID: "n", Type: models.FieldTypeNumber}, raw: json.Number("7"), want: 7.0},
		{name: "number empty", field: models.FormField{ID: "n", Type: models.FieldTypeNumber}, raw: "", want: ""},
		{name: "number invalid", field: models.FormField{ID: "n", Type: models.FieldTypeNumber}, raw: "ten", wantErr: true},
		{name: "date", field: models.FormField{ID: "d", Type: models.FieldTypeDate}, raw: "2024-02-29", want: "2024-02-29"},
		{name: "date invalid", field: models.FormField{ID: "d", Type: models.FieldTypeDate}, raw: "29/02/2024", wantErr: true},
		{name: "select option", field: selectField, raw: "Bug", want: "Bug"},
		{name: "select unknown", field: selectField, raw: "Chore", wantErr: true},
		{name: "unknown type", field: models.FormField{ID: "x", Type: "color"}, raw: "red", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := forms.Decode(tt.field, tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, models.IsValidationError(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_ReadonlyProjection(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		formData map[string]any
		want     []string
	}{
		{
			name:     "values present",
			formData: map[string]any{"triage-notes": "Printer on fire", "is-critical": true},
			want:     []string{"Printer on fire", "Yes"},
		},
		{
			name:     "false checkbox",
			formData: map[string]any{"triage-notes": "ok", "is-critical": false},
			want:     []string{"ok", "No"},
		},
		{
			name:     "missing values",
			formData: map[string]any{"triage-notes": ""},
			want:     []string{forms.NotProvided, forms.NotProvided},
		},
		{
			name:     "nil data",
			formData: nil,
			want:     []string{forms.NotProvided, forms.NotProvided},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rendered := forms.Render(approvalForm(t), tt.formData)
			require.Len(t, rendered, 2)

			for i, r := range rendered {
				assert.Equal(t, tt.want[i], r.Display)
				assert.True(t, r.Field.ReadOnly())
			}
		})
	}
}

func TestRender_FillDefaults(t *testing.T) {
	rendered := forms.Render(triageForm(t), map[string]any{"triage-notes": "draft"})

	require.Len(t, rendered, 2)
	assert.Equal(t, "draft", rendered[0].Value)
	assert.Equal(t, false, rendered[1].Value)
	assert.Equal(t, "No", rendered[1].Display)
}

func TestValidate_RequiredFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		formData   map[string]any
		submission map[string]any
		wantErr    string
	}{
		{
			name:       "missing required textarea",
			submission: map[string]any{"triage-notes": "", "is-critical": true},
			wantErr:    "Triage Notes is required",
		},
		{
			name:       "absent required textarea",
			submission: map[string]any{},
			wantErr:    "Triage Notes is required",
		},
		{
			name:       "filled",
			submission: map[string]any{"triage-notes": "investigated"},
		},
		{
			name:       "previously stored value counts",
			formData:   map[string]any{"triage-notes": "from earlier"},
			submission: map[string]any{"is-critical": true},
		},
		{
			name:       "type mismatch",
			submission: map[string]any{"triage-notes": "x", "is-critical": "perhaps"},
			wantErr:    "Is Critical? expects a boolean value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			form := triageForm(t)
			state := forms.Collect(form, tt.formData, tt.submission)

			err := forms.Validate(form, state)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, models.IsValidationError(err))
				assert.Contains(t, err.Error(), tt.wantErr)

				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestValidate_RequiredNumberAndCheckbox(t *testing.T) {
	form := models.NodeForm{Mode: models.FormModeFill, Fields: []models.FormField{
		{ID: "amount", Label: "Amount", Type: models.FieldTypeNumber, Required: true},
		{ID: "agree", Label: "Agree", Type: models.FieldTypeCheckbox, Required: true},
	}}

	assert.NoError(t, forms.Validate(form, map[string]any{"amount": "0", "agree": true}))
	assert.NoError(t, forms.Validate(form, map[string]any{"amount": 0.0, "agree": true}))

	for _, amount := range []any{nil, "", "  "} {
		err := forms.Validate(form, map[string]any{"amount": amount, "agree": true})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "Amount")
	}

	err := forms.Validate(form, map[string]any{"amount": 3.0, "agree": false})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Agree")

	assert.NoError(t, forms.Validate(form, map[string]any{"amount": "3", "agree": "true"}))
}

func TestMerge(t *testing.T) {
	form := triageForm(t)
	formData := map[string]any{"customer": "ACME", "triage-notes": "old"}

	merged, err := forms.Merge(formData, form, forms.Collect(form, formData, map[string]any{
		"triage-notes": "new",
		"is-critical":  "true",
	}))
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"customer": "ACME", "triage-notes": "new", "is-critical": true}, merged)
	assert.Equal(t, "old", formData["triage-notes"], "input must not change")
}

func TestMerge_ReadonlyFieldsNeverWrite(t *testing.T) {
	form := approvalForm(t)

	merged, err := forms.Merge(map[string]any{"triage-notes": "keep"}, form, map[string]any{
		"readonly-triage-notes": "overwrite",
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]any{"triage-notes": "keep"}, merged)
}

func TestValidateSchema(t *testing.T) {
	form := models.NodeForm{Mode: models.FormModeFill, Fields: []models.FormField{
		{ID: "notes", Label: "Notes", Type: models.FieldTypeText},
		{ID: "kind", Label: "Kind", Type: models.FieldTypeSelect, Options: []string{"a", "b"}},
		{ID: "when", Label: "When", Type: models.FieldTypeDate},
		{ID: "ro", Label: "RO", Type: models.FieldTypeReadonlyText, SourceFieldID: "notes"},
	}}

	require.NoError(t, forms.ValidateSchema(form, map[string]any{"notes": "x", "kind": "a", "when": "2024-01-02"}))
	require.NoError(t, forms.ValidateSchema(form, nil))

	err := forms.ValidateSchema(form, map[string]any{"kind": "c"})
	require.Error(t, err)
	assert.True(t, models.IsValidationError(err))

	err = forms.ValidateSchema(form, map[string]any{"ro": "x"})
	require.Error(t, err)

	err = forms.ValidateSchema(form, map[string]any{"when": "tomorrow"})
	require.Error(t, err)

	schema := forms.JSONSchema(form)
	assert.NotContains(t, schema["properties"], "ro")
}

func TestDisplay(t *testing.T) {
	assert.Equal(t, "Yes", forms.Display(true))
	assert.Equal(t, "No", forms.Display(false))
	assert.Equal(t, forms.NotProvided, forms.Display(nil))
	assert.Equal(t, forms.NotProvided, forms.Display(""))
	assert.Equal(t, "2.5", forms.Display(2.5))
	assert.Equal(t, "text", forms.Display("text"))
}
