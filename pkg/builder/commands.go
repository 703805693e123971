// Package builder implements the workflow graph editor as pure commands over
// models.Document plus an Editor that applies them and notifies a sink.
package builder

import (
	"fmt"
	"maps"
	"regexp"
	"slices"
	"strings"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/google/uuid"
)

// Command is a pure document transformation. It must not modify its input.
type Command func(doc models.Document) (models.Document, error)

var fieldIDPattern = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

// SanitizeFieldID strips every character that is not a letter, digit, dash or underscore.
func SanitizeFieldID(id string) string {
	return fieldIDPattern.ReplaceAllString(id, "")
}

// NodeOption customizes a node created by AddNode.
type NodeOption func(*models.Node)

func WithNodeID(id string) NodeOption {
	return func(n *models.Node) { n.ID = id }
}

func WithLabel(label string) NodeOption {
	return func(n *models.Node) { n.Label = label }
}

// AddNode appends a node of the given type. Task nodes start with an empty FILL form.
func AddNode(doc models.Document, nodeType models.NodeType, pos models.Position, opts ...NodeOption) (models.Document, models.Node, error) {
	if !nodeType.Valid() {
		return doc, models.Node{}, &models.ValidationError{Field: "type", Message: fmt.Sprintf("unknown node type %q", nodeType)}
	}

	node := models.Node{
		ID:       "node-" + uuid.NewString(),
		Type:     nodeType,
		Label:    nodeType.DefaultLabel(),
		Position: pos,
	}

	if nodeType == models.NodeTypeTask {
		node.Form = &models.NodeForm{Mode: models.FormModeFill, Fields: []models.FormField{}}
	}

	for _, opt := range opts {
		opt(&node)
	}

	if node.ID == "" {
		return doc, models.Node{}, &models.ValidationError{Field: "id", Message: "node id is required"}
	}

	if _, exists := doc.Node(node.ID); exists {
		return doc, models.Node{}, &models.ValidationError{Field: "id", Message: fmt.Sprintf("node %q already exists", node.ID)}
	}

	next := doc.Clone()
	next.Nodes = append(next.Nodes, node)

	return next, node.Clone(), nil
}

// MoveNode sets the canvas position of a node.
func MoveNode(doc models.Document, nodeID string, pos models.Position) (models.Document, error) {
	return withNode(doc, nodeID, func(n *models.Node) error {
		n.Position = pos

		return nil
	})
}

// EdgeOption customizes an edge created by Connect.
type EdgeOption func(*models.Edge)

func WithEdgeLabel(label string) EdgeOption {
	return func(e *models.Edge) { e.Label = label }
}

// Connect adds an edge from source to target. Connecting a node to itself or
// repeating an existing source/target pair is a no-op that returns a nil edge.
func Connect(doc models.Document, source, target string, opts ...EdgeOption) (models.Document, *models.Edge, error) {
	if _, ok := doc.Node(source); !ok {
		return doc, nil, &models.ReferenceError{Kind: "node", ID: source}
	}

	if _, ok := doc.Node(target); !ok {
		return doc, nil, &models.ReferenceError{Kind: "node", ID: target}
	}

	if source == target || doc.HasEdge(source, target) {
		return doc, nil, nil
	}

	edge := models.Edge{
		ID:     fmt.Sprintf("edge-%s-%s-%s", source, target, uuid.NewString()),
		Source: source,
		Target: target,
	}

	for _, opt := range opts {
		opt(&edge)
	}

	next := doc.Clone()
	next.Edges = append(next.Edges, edge)

	return next, &edge, nil
}

// Disconnect removes an edge.
func Disconnect(doc models.Document, edgeID string) (models.Document, error) {
	if _, ok := doc.Edge(edgeID); !ok {
		return doc, &models.ReferenceError{Kind: "edge", ID: edgeID}
	}

	next := doc.Clone()
	next.Edges = slices.DeleteFunc(next.Edges, func(e models.Edge) bool { return e.ID == edgeID })

	return next, nil
}

// NodePatch holds the node attributes to change. Nil fields are left untouched;
// an empty AssigneeID clears the assignee.
type NodePatch struct {
	Label       *string
	Description *string
	AssigneeID  *string
	Form        *models.NodeForm
}

// UpdateNode applies a patch to a node. Assignees and forms are only accepted on Task nodes.
func UpdateNode(doc models.Document, nodeID string, patch NodePatch) (models.Document, error) {
	return withNode(doc, nodeID, func(n *models.Node) error {
		if patch.Label != nil {
			label := strings.TrimSpace(*patch.Label)
			if label == "" {
				return &models.ValidationError{Field: "label", Message: "label cannot be empty"}
			}

			n.Label = label
		}

		if patch.Description != nil {
			n.Description = *patch.Description
		}

		if patch.AssigneeID != nil {
			if *patch.AssigneeID != "" && n.Type != models.NodeTypeTask {
				return &models.ValidationError{Field: "assigneeId", Message: "only task steps can be assigned"}
			}

			n.AssigneeID = *patch.AssigneeID
		}

		if patch.Form != nil {
			if n.Type != models.NodeTypeTask {
				return &models.ValidationError{Field: "form", Message: "only task steps carry forms"}
			}

			form := patch.Form.Clone()
			n.Form = &form
		}

		return nil
	})
}

// DeleteNode removes a node together with every edge touching it. A node whose
// fields are displayed by readonly fields on other steps cannot be deleted.
func DeleteNode(doc models.Document, nodeID string) (models.Document, error) {
	node, ok := doc.Node(nodeID)
	if !ok {
		return doc, &models.ReferenceError{Kind: "node", ID: nodeID}
	}

	if err := checkProjections(doc, node); err != nil {
		return doc, err
	}

	next := doc.Clone()
	next.Nodes = slices.DeleteFunc(next.Nodes, func(n models.Node) bool { return n.ID == nodeID })
	next.Edges = slices.DeleteFunc(next.Edges, func(e models.Edge) bool {
		return e.Source == nodeID || e.Target == nodeID
	})

	return next, nil
}

// SetFormMode switches a task form between FILL and APPROVAL.
func SetFormMode(doc models.Document, nodeID string, mode models.FormMode) (models.Document, error) {
	if !mode.Valid() {
		return doc, &models.ValidationError{Field: "mode", Message: fmt.Sprintf("unknown form mode %q", mode)}
	}

	return withForm(doc, nodeID, func(_ models.Document, form *models.NodeForm) error {
		form.Mode = mode

		return nil
	})
}

// AddFormField appends a field to a task form. The id is sanitized and must be
// unique across the whole document.
func AddFormField(doc models.Document, nodeID string, field models.FormField) (models.Document, models.FormField, error) {
	var added models.FormField

	next, err := withForm(doc, nodeID, func(current models.Document, form *models.NodeForm) error {
		normalized, err := normalizeField(current, field, "")
		if err != nil {
			return err
		}

		form.Fields = append(form.Fields, normalized)
		added = normalized

		return nil
	})

	return next, added, err
}

// UpdateFormField replaces the field identified by fieldID. When the id changes,
// readonly fields projecting the old id follow the rename.
func UpdateFormField(doc models.Document, nodeID, fieldID string, field models.FormField) (models.Document, error) {
	i := doc.NodeIndex(nodeID)
	if i < 0 {
		return doc, &models.ReferenceError{Kind: "node", ID: nodeID}
	}

	next := doc.Clone()
	form := next.Nodes[i].Form

	j := -1
	if form != nil {
		j = slices.IndexFunc(form.Fields, func(f models.FormField) bool { return f.ID == fieldID })
	}

	if j < 0 {
		return doc, &models.ReferenceError{Kind: "field", ID: fieldID}
	}

	normalized, err := normalizeField(doc, field, fieldID)
	if err != nil {
		return doc, err
	}

	form.Fields[j] = normalized

	if normalized.ID != fieldID {
		for k := range next.Nodes {
			if next.Nodes[k].Form == nil {
				continue
			}

			for l := range next.Nodes[k].Form.Fields {
				f := &next.Nodes[k].Form.Fields[l]
				if f.ReadOnly() && f.SourceFieldID == fieldID {
					f.SourceFieldID = normalized.ID
				}
			}
		}
	}

	if err := next.Validate(); err != nil {
		return doc, err
	}

	return next, nil
}

// DeleteFormField removes a field. A field still projected by a readonly field cannot be removed.
func DeleteFormField(doc models.Document, nodeID, fieldID string) (models.Document, error) {
	if err := checkProjected(doc, fieldID, ""); err != nil {
		return doc, err
	}

	return withForm(doc, nodeID, func(_ models.Document, form *models.NodeForm) error {
		i := slices.IndexFunc(form.Fields, func(f models.FormField) bool { return f.ID == fieldID })
		if i < 0 {
			return &models.ReferenceError{Kind: "field", ID: fieldID}
		}

		form.Fields = slices.Delete(form.Fields, i, i+1)

		return nil
	})
}

// checkProjections refuses when a step other than node displays one of its fields.
func checkProjections(doc models.Document, node models.Node) error {
	if node.Form == nil {
		return nil
	}

	for _, f := range node.Form.Fields {
		if err := checkProjected(doc, f.ID, node.ID); err != nil {
			return err
		}
	}

	return nil
}

// checkProjected refuses when a readonly field outside skipNodeID displays fieldID.
func checkProjected(doc models.Document, fieldID, skipNodeID string) error {
	index := doc.FieldIndex()

	for _, id := range slices.Sorted(maps.Keys(index)) {
		ref := index[id]
		if ref.NodeID == skipNodeID || !ref.Field.ReadOnly() || ref.Field.SourceFieldID != fieldID {
			continue
		}

		return &models.ValidationError{
			Field:   fieldID,
			Message: fmt.Sprintf("field is displayed by %q on step %q", id, ref.NodeID),
		}
	}

	return nil
}

// normalizeField validates a field against the document it is being written to.
// replacing is the id of the field being overwritten, if any.
func normalizeField(doc models.Document, field models.FormField, replacing string) (models.FormField, error) {
	field.ID = SanitizeFieldID(field.ID)
	field.Label = strings.TrimSpace(field.Label)

	if field.ID == "" {
		return field, &models.ValidationError{Field: "id", Message: "field id is required"}
	}

	if field.Label == "" {
		return field, &models.ValidationError{Field: field.ID, Message: "field label is required"}
	}

	if !field.Type.Valid() {
		return field, &models.ValidationError{Field: field.ID, Message: fmt.Sprintf("unknown field type %q", field.Type)}
	}

	index := doc.FieldIndex()

	if field.ID != replacing {
		if ref, dup := index[field.ID]; dup {
			return field, &models.ValidationError{
				Field:   field.ID,
				Message: fmt.Sprintf("field id already used on step %q", ref.NodeID),
			}
		}
	}

	switch field.Type {
	case models.FieldTypeReadonlyText:
		field.Required = false
		field.Options = nil

		if field.SourceFieldID == "" {
			return field, &models.ValidationError{Field: field.ID, Message: "readonly fields need a source field"}
		}

		source, ok := index[field.SourceFieldID]
		if !ok || field.SourceFieldID == replacing {
			return field, &models.ReferenceError{Kind: "field", ID: field.SourceFieldID}
		}

		if source.Field.ReadOnly() {
			return field, &models.ValidationError{Field: field.ID, Message: "readonly fields cannot project another readonly field"}
		}
	case models.FieldTypeSelect:
		field.SourceFieldID = ""
		field.Options = cleanOptions(field.Options)

		if len(field.Options) == 0 {
			return field, &models.ValidationError{Field: field.ID, Message: "select fields need at least one option"}
		}
	case models.FieldTypeText, models.FieldTypeTextarea, models.FieldTypeNumber,
		models.FieldTypeDate, models.FieldTypeCheckbox:
		field.SourceFieldID = ""
		field.Options = nil
	}

	return field, nil
}

func cleanOptions(options []string) []string {
	cleaned := make([]string, 0, len(options))

	for _, o := range options {
		o = strings.TrimSpace(o)
		if o != "" && !slices.Contains(cleaned, o) {
			cleaned = append(cleaned, o)
		}
	}

	return cleaned
}

func withNode(doc models.Document, nodeID string, fn func(n *models.Node) error) (models.Document, error) {
	i := doc.NodeIndex(nodeID)
	if i < 0 {
		return doc, &models.ReferenceError{Kind: "node", ID: nodeID}
	}

	next := doc.Clone()

	if err := fn(&next.Nodes[i]); err != nil {
		return doc, err
	}

	if err := next.Validate(); err != nil {
		return doc, err
	}

	return next, nil
}

func withForm(doc models.Document, nodeID string, fn func(current models.Document, form *models.NodeForm) error) (models.Document, error) {
	return withNode(doc, nodeID, func(n *models.Node) error {
		if n.Type != models.NodeTypeTask {
			return &models.ValidationError{Field: "form", Message: fmt.Sprintf("step %q is not a task", n.ID)}
		}

		if n.Form == nil {
			n.Form = &models.NodeForm{Mode: models.FormModeFill, Fields: []models.FormField{}}
		}

		return fn(doc, n.Form)
	})
}
