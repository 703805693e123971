// Package models defines the core domain models for case management driven by visual workflows.
package models

import (
	"fmt"
	"maps"
	"slices"
)

// NodeType identifies the kind of step a workflow node represents.
type NodeType string

const (
	NodeTypeStart   NodeType = "Start"
	NodeTypeEnd     NodeType = "End"
	NodeTypeTask    NodeType = "Task"
	NodeTypeGateway NodeType = "Gateway"
	NodeTypeTimer   NodeType = "Timer"
	NodeTypeMessage NodeType = "Message"
)

// AllNodeTypes returns every supported node type in palette order.
func AllNodeTypes() []NodeType {
	return []NodeType{
		NodeTypeStart,
		NodeTypeTask,
		NodeTypeGateway,
		NodeTypeTimer,
		NodeTypeMessage,
		NodeTypeEnd,
	}
}

// Valid reports whether t is a known node type.
func (t NodeType) Valid() bool {
	return slices.Contains(AllNodeTypes(), t)
}

// DefaultLabel is the label a freshly created node of this type receives.
func (t NodeType) DefaultLabel() string {
	return string(t)
}

// Shape is the outline used when the node is drawn and when edges are clipped against it.
func (t NodeType) Shape() NodeShape {
	if t == NodeTypeGateway {
		return NodeShapeDiamond
	}

	return NodeShapeRound
}

// Board reports whether nodes of this type appear as board columns.
func (t NodeType) Board() bool {
	return t == NodeTypeStart || t == NodeTypeTask || t == NodeTypeEnd
}

type NodeShape string

const (
	NodeShapeRound   NodeShape = "round"
	NodeShapeDiamond NodeShape = "diamond"
)

// FormFieldType is the input kind of a form field.
type FormFieldType string

const (
	FieldTypeText         FormFieldType = "text"
	FieldTypeTextarea     FormFieldType = "textarea"
	FieldTypeNumber       FormFieldType = "number"
	FieldTypeDate         FormFieldType = "date"
	FieldTypeSelect       FormFieldType = "select"
	FieldTypeCheckbox     FormFieldType = "checkbox"
	FieldTypeReadonlyText FormFieldType = "readonly-text"
)

// AllFieldTypes returns every supported form field type.
func AllFieldTypes() []FormFieldType {
	return []FormFieldType{
		FieldTypeText,
		FieldTypeTextarea,
		FieldTypeNumber,
		FieldTypeDate,
		FieldTypeSelect,
		FieldTypeCheckbox,
		FieldTypeReadonlyText,
	}
}

func (t FormFieldType) Valid() bool {
	return slices.Contains(AllFieldTypes(), t)
}

// FormMode selects whether a task collects data (FILL) or decides a branch (APPROVAL).
type FormMode string

const (
	FormModeFill     FormMode = "FILL"
	FormModeApproval FormMode = "APPROVAL"
)

func (m FormMode) Valid() bool {
	return m == FormModeFill || m == FormModeApproval
}

// Position is the top-left corner of a node on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// FormField describes one input of a task form.
type FormField struct {
	ID            string        `json:"id"                      validate:"required"`
	Label         string        `json:"label"                   validate:"required"`
	Type          FormFieldType `json:"type"                    validate:"required"`
	Required      bool          `json:"required,omitempty"`
	Options       []string      `json:"options,omitempty"`
	SourceFieldID string        `json:"sourceFieldId,omitempty"`
}

// ReadOnly reports whether the field projects a value captured by another field.
func (f FormField) ReadOnly() bool {
	return f.Type == FieldTypeReadonlyText
}

// NodeForm is the form attached to a Task node.
type NodeForm struct {
	Mode   FormMode    `json:"mode"   validate:"required"`
	Fields []FormField `json:"fields"`
}

// Field returns the field with the given id.
func (f *NodeForm) Field(id string) (FormField, bool) {
	if f == nil {
		return FormField{}, false
	}

	for _, field := range f.Fields {
		if field.ID == id {
			return field, true
		}
	}

	return FormField{}, false
}

// Node is a step of the workflow graph.
type Node struct {
	ID          string   `json:"id"                    validate:"required"`
	Type        NodeType `json:"type"                  validate:"required"`
	Label       string   `json:"label"`
	Description string   `json:"description,omitempty"`
	Position
	AssigneeID string    `json:"assigneeId,omitempty"`
	Form       *NodeForm `json:"form,omitempty"`
}

// Edge is a directed transition between two nodes.
type Edge struct {
	ID     string `json:"id"              validate:"required"`
	Source string `json:"source"          validate:"required"`
	Target string `json:"target"          validate:"required"`
	Label  string `json:"label,omitempty"`
}

// FieldRef locates a form field inside a document.
type FieldRef struct {
	NodeID string
	Field  FormField
}

// FieldIndex maps every form field id of a document to its owning node.
type FieldIndex map[string]FieldRef

// Document is a workflow graph. It is treated as an immutable value: editing
// operations return a new Document and never modify their input.
type Document struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Node returns the node with the given id.
func (d Document) Node(id string) (Node, bool) {
	i := d.NodeIndex(id)
	if i < 0 {
		return Node{}, false
	}

	return d.Nodes[i], true
}

// NodeIndex returns the position of the node in Nodes or -1.
func (d Document) NodeIndex(id string) int {
	return slices.IndexFunc(d.Nodes, func(n Node) bool { return n.ID == id })
}

// Edge returns the edge with the given id.
func (d Document) Edge(id string) (Edge, bool) {
	i := slices.IndexFunc(d.Edges, func(e Edge) bool { return e.ID == id })
	if i < 0 {
		return Edge{}, false
	}

	return d.Edges[i], true
}

// HasEdge reports whether an edge already joins source to target.
func (d Document) HasEdge(source, target string) bool {
	return slices.ContainsFunc(d.Edges, func(e Edge) bool {
		return e.Source == source && e.Target == target
	})
}

// Outgoing returns the edges leaving the node, in document order.
func (d Document) Outgoing(nodeID string) []Edge {
	var edges []Edge

	for _, e := range d.Edges {
		if e.Source == nodeID {
			edges = append(edges, e)
		}
	}

	return edges
}

// Incoming returns the edges entering the node, in document order.
func (d Document) Incoming(nodeID string) []Edge {
	var edges []Edge

	for _, e := range d.Edges {
		if e.Target == nodeID {
			edges = append(edges, e)
		}
	}

	return edges
}

// StartNode returns the first Start node in document order.
func (d Document) StartNode() (Node, bool) {
	for _, n := range d.Nodes {
		if n.Type == NodeTypeStart {
			return n, true
		}
	}

	return Node{}, false
}

// FieldIndex builds the document-wide field namespace. When two nodes declare the
// same field id the first one wins; Validate reports such documents.
func (d Document) FieldIndex() FieldIndex {
	index := FieldIndex{}

	for _, n := range d.Nodes {
		if n.Form == nil {
			continue
		}

		for _, f := range n.Form.Fields {
			if _, exists := index[f.ID]; !exists {
				index[f.ID] = FieldRef{NodeID: n.ID, Field: f}
			}
		}
	}

	return index
}

// Field looks a field up by its document-wide id.
func (d Document) Field(id string) (FieldRef, bool) {
	ref, ok := d.FieldIndex()[id]

	return ref, ok
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	clone := Document{
		Nodes: make([]Node, len(d.Nodes)),
		Edges: slices.Clone(d.Edges),
	}

	for i, n := range d.Nodes {
		clone.Nodes[i] = n.Clone()
	}

	if clone.Edges == nil {
		clone.Edges = []Edge{}
	}

	return clone
}

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	if n.Form != nil {
		form := n.Form.Clone()
		n.Form = &form
	}

	return n
}

// Clone returns a deep copy of the form.
func (f NodeForm) Clone() NodeForm {
	fields := make([]FormField, len(f.Fields))
	for i, field := range f.Fields {
		field.Options = slices.Clone(field.Options)
		fields[i] = field
	}

	return NodeForm{Mode: f.Mode, Fields: fields}
}

// Validate checks the structural invariants of the document: unique node and
// edge ids, edges between existing nodes, globally unique field ids and
// readonly fields that project an existing, non readonly field.
func (d Document) Validate() error {
	nodes := make(map[string]struct{}, len(d.Nodes))
	fields := map[string]FormField{}

	for _, n := range d.Nodes {
		if n.ID == "" {
			return &ValidationError{Field: "nodes.id", Message: "node id is required"}
		}

		if _, dup := nodes[n.ID]; dup {
			return &ValidationError{Field: "nodes.id", Message: fmt.Sprintf("duplicate node id %q", n.ID)}
		}

		nodes[n.ID] = struct{}{}

		if !n.Type.Valid() {
			return &ValidationError{Field: "nodes.type", Message: fmt.Sprintf("node %q has unknown type %q", n.ID, n.Type)}
		}

		if n.Form == nil {
			continue
		}

		if !n.Form.Mode.Valid() {
			return &ValidationError{Field: "form.mode", Message: fmt.Sprintf("node %q has unknown form mode %q", n.ID, n.Form.Mode)}
		}

		for _, f := range n.Form.Fields {
			if _, dup := fields[f.ID]; dup {
				return &ValidationError{Field: f.ID, Message: fmt.Sprintf("duplicate field id %q", f.ID)}
			}

			if !f.Type.Valid() {
				return &ValidationError{Field: f.ID, Message: fmt.Sprintf("field %q has unknown type %q", f.ID, f.Type)}
			}

			fields[f.ID] = f
		}
	}

	edges := make(map[string]struct{}, len(d.Edges))

	for _, e := range d.Edges {
		if _, dup := edges[e.ID]; dup {
			return &ValidationError{Field: "edges.id", Message: fmt.Sprintf("duplicate edge id %q", e.ID)}
		}

		edges[e.ID] = struct{}{}

		if _, ok := nodes[e.Source]; !ok {
			return &ReferenceError{Kind: "node", ID: e.Source}
		}

		if _, ok := nodes[e.Target]; !ok {
			return &ReferenceError{Kind: "node", ID: e.Target}
		}
	}

	for _, id := range slices.Sorted(maps.Keys(fields)) {
		f := fields[id]
		if !f.ReadOnly() {
			continue
		}

		source, ok := fields[f.SourceFieldID]
		if !ok {
			return &ReferenceError{Kind: "field", ID: f.SourceFieldID}
		}

		if source.ReadOnly() {
			return &ValidationError{Field: f.ID, Message: fmt.Sprintf("field %q projects readonly field %q", f.ID, source.ID)}
		}
	}

	return nil
}
