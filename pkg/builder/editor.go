package builder

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dukex/caseflow/pkg/models"
)

// DocumentSink receives the full document after every successful edit.
type DocumentSink func(ctx context.Context, doc models.Document) error

// Editor holds the current version of a workflow document. Each edit runs a
// pure command, hands the result to the sink and only then swaps the reference.
type Editor struct {
	mu     sync.Mutex
	doc    models.Document
	sink   DocumentSink
	logger *slog.Logger
}

// NewEditor creates an editor over doc. A nil sink discards notifications.
func NewEditor(logger *slog.Logger, doc models.Document, sink DocumentSink) *Editor {
	if sink == nil {
		sink = func(context.Context, models.Document) error { return nil }
	}

	return &Editor{
		doc:    doc.Clone(),
		sink:   sink,
		logger: logger.With("module", "workflow_editor"),
	}
}

// Document returns a copy of the current document.
func (e *Editor) Document() models.Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.doc.Clone()
}

// Apply runs cmd against the current document. On error neither the document
// nor the sink is touched.
func (e *Editor) Apply(ctx context.Context, cmd Command) (models.Document, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	next, err := cmd(e.doc)
	if err != nil {
		return e.doc.Clone(), err
	}

	if err := e.sink(ctx, next); err != nil {
		e.logger.ErrorContext(ctx, "Failed to store workflow document", "error", err)

		return e.doc.Clone(), err
	}

	e.doc = next

	return next.Clone(), nil
}

func (e *Editor) AddNode(ctx context.Context, nodeType models.NodeType, pos models.Position, opts ...NodeOption) (models.Node, error) {
	var node models.Node

	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		next, added, err := AddNode(doc, nodeType, pos, opts...)
		node = added

		return next, err
	})

	return node, err
}

func (e *Editor) MoveNode(ctx context.Context, nodeID string, pos models.Position) error {
	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		return MoveNode(doc, nodeID, pos)
	})

	return err
}

// Connect adds an edge. Redundant connections return a nil edge and do not reach the sink.
func (e *Editor) Connect(ctx context.Context, source, target string, opts ...EdgeOption) (*models.Edge, error) {
	e.mu.Lock()
	_, edge, err := Connect(e.doc, source, target, opts...)
	e.mu.Unlock()

	if err != nil || edge == nil {
		return nil, err
	}

	_, err = e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		next, connected, err := Connect(doc, source, target, opts...)
		edge = connected

		return next, err
	})
	if err != nil {
		return nil, err
	}

	return edge, nil
}

func (e *Editor) Disconnect(ctx context.Context, edgeID string) error {
	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		return Disconnect(doc, edgeID)
	})

	return err
}

func (e *Editor) UpdateNode(ctx context.Context, nodeID string, patch NodePatch) error {
	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		return UpdateNode(doc, nodeID, patch)
	})

	return err
}

func (e *Editor) DeleteNode(ctx context.Context, nodeID string) error {
	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		return DeleteNode(doc, nodeID)
	})

	return err
}

func (e *Editor) SetFormMode(ctx context.Context, nodeID string, mode models.FormMode) error {
	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		return SetFormMode(doc, nodeID, mode)
	})

	return err
}

func (e *Editor) AddFormField(ctx context.Context, nodeID string, field models.FormField) (models.FormField, error) {
	var added models.FormField

	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		next, f, err := AddFormField(doc, nodeID, field)
		added = f

		return next, err
	})

	return added, err
}

func (e *Editor) UpdateFormField(ctx context.Context, nodeID, fieldID string, field models.FormField) error {
	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		return UpdateFormField(doc, nodeID, fieldID, field)
	})

	return err
}

func (e *Editor) DeleteFormField(ctx context.Context, nodeID, fieldID string) error {
	_, err := e.Apply(ctx, func(doc models.Document) (models.Document, error) {
		return DeleteFormField(doc, nodeID, fieldID)
	})

	return err
}
