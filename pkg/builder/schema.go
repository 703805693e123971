package builder

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/xeipuuv/gojsonschema"
)

// documentSchema describes the wire format of a workflow document.
const documentSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["nodes", "edges"],
	"properties": {
		"nodes": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "type", "label", "x", "y"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"type": {"enum": ["Start", "End", "Task", "Gateway", "Timer", "Message"]},
					"label": {"type": "string"},
					"description": {"type": "string"},
					"x": {"type": "number"},
					"y": {"type": "number"},
					"assigneeId": {"type": "string"},
					"form": {
						"type": "object",
						"required": ["mode", "fields"],
						"properties": {
							"mode": {"enum": ["FILL", "APPROVAL"]},
							"fields": {
								"type": "array",
								"items": {
									"type": "object",
									"required": ["id", "label", "type"],
									"properties": {
										"id": {"type": "string", "pattern": "^[a-zA-Z0-9_-]+$"},
										"label": {"type": "string", "minLength": 1},
										"type": {"enum": ["text", "textarea", "number", "date", "select", "checkbox", "readonly-text"]},
										"required": {"type": "boolean"},
										"options": {"type": "array", "items": {"type": "string"}},
										"sourceFieldId": {"type": "string"}
									}
								}
							}
						}
					}
				}
			}
		},
		"edges": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["id", "source", "target"],
				"properties": {
					"id": {"type": "string", "minLength": 1},
					"source": {"type": "string", "minLength": 1},
					"target": {"type": "string", "minLength": 1},
					"label": {"type": "string"}
				}
			}
		}
	}
}`

var documentSchemaLoader = gojsonschema.NewStringLoader(documentSchema)

// DecodeDocument parses a serialized document, checking it against the wire
// schema and the structural invariants of models.Document.
func DecodeDocument(body []byte) (models.Document, error) {
	result, err := gojsonschema.Validate(documentSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return models.Document{}, &models.ValidationError{Field: "workflow", Message: fmt.Sprintf("malformed document: %v", err)}
	}

	if !result.Valid() {
		var problems []string
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}

		return models.Document{}, &models.ValidationError{Field: "workflow", Message: strings.Join(problems, "; ")}
	}

	var doc models.Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return models.Document{}, &models.ValidationError{Field: "workflow", Message: err.Error()}
	}

	if err := doc.Validate(); err != nil {
		return models.Document{}, err
	}

	return doc, nil
}
