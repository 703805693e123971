package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dukex/caseflow/pkg/board"
	"github.com/dukex/caseflow/pkg/builder"
	"github.com/dukex/caseflow/pkg/events"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/otelhelper"
	"go.opentelemetry.io/otel/attribute"
)

// Workflows edits the workflow document of an app. Every successful edit is
// stored on the app and announced with a workflow.document.changed event.
type Workflows struct {
	*base

	logger *slog.Logger
}

func (s *Workflows) Document(ctx context.Context, appID string) (models.Document, error) {
	app, err := loadApp(ctx, s.base, "fetch_workflow", appID)
	if err != nil {
		return models.Document{}, err
	}

	return app.Workflow.Clone(), nil
}

// Columns returns the board columns the app's workflow produces.
func (s *Workflows) Columns(ctx context.Context, appID string) ([]models.Node, error) {
	doc, err := s.Document(ctx, appID)
	if err != nil {
		return nil, err
	}

	return board.DeriveColumns(doc), nil
}

// Apply runs cmd against the app's document and stores the result.
func (s *Workflows) Apply(ctx context.Context, appID string, cmd builder.Command) (models.Document, error) {
	var doc models.Document

	err := s.edit(ctx, appID, "apply", func(editor *builder.Editor) error {
		var err error

		doc, err = editor.Apply(ctx, cmd)

		return err
	})

	return doc, err
}

// Replace validates a whole JSON document and stores it in place of the current one.
func (s *Workflows) Replace(ctx context.Context, appID string, body []byte) (models.Document, error) {
	doc, err := builder.DecodeDocument(body)
	if err != nil {
		return models.Document{}, err
	}

	for _, n := range doc.Nodes {
		if n.AssigneeID == "" {
			continue
		}

		err = s.checkAssignee(ctx, "replace_workflow", n.AssigneeID)
		if err != nil {
			return models.Document{}, err
		}
	}

	return s.Apply(ctx, appID, func(models.Document) (models.Document, error) {
		return doc, nil
	})
}

func (s *Workflows) AddNode(ctx context.Context, appID string, nodeType models.NodeType, pos models.Position, opts ...builder.NodeOption) (models.Node, error) {
	var node models.Node

	err := s.edit(ctx, appID, "add_node", func(editor *builder.Editor) error {
		var err error

		node, err = editor.AddNode(ctx, nodeType, pos, opts...)

		return err
	})

	return node, err
}

func (s *Workflows) MoveNode(ctx context.Context, appID, nodeID string, pos models.Position) error {
	return s.edit(ctx, appID, "move_node", func(editor *builder.Editor) error {
		return editor.MoveNode(ctx, nodeID, pos)
	})
}

// UpdateNode patches a node. A non-empty assignee must exist in the user directory.
func (s *Workflows) UpdateNode(ctx context.Context, appID, nodeID string, patch builder.NodePatch) error {
	if patch.AssigneeID != nil && *patch.AssigneeID != "" {
		err := s.checkAssignee(ctx, "update_node", *patch.AssigneeID)
		if err != nil {
			return err
		}
	}

	return s.edit(ctx, appID, "update_node", func(editor *builder.Editor) error {
		return editor.UpdateNode(ctx, nodeID, patch)
	})
}

func (s *Workflows) DeleteNode(ctx context.Context, appID, nodeID string) error {
	return s.edit(ctx, appID, "delete_node", func(editor *builder.Editor) error {
		return editor.DeleteNode(ctx, nodeID)
	})
}

// Connect adds an edge. A nil edge means the connection was refused as a
// self loop or duplicate and nothing changed.
func (s *Workflows) Connect(ctx context.Context, appID, source, target string, opts ...builder.EdgeOption) (*models.Edge, error) {
	var edge *models.Edge

	err := s.edit(ctx, appID, "connect", func(editor *builder.Editor) error {
		var err error

		edge, err = editor.Connect(ctx, source, target, opts...)

		return err
	})

	return edge, err
}

func (s *Workflows) Disconnect(ctx context.Context, appID, edgeID string) error {
	return s.edit(ctx, appID, "disconnect", func(editor *builder.Editor) error {
		return editor.Disconnect(ctx, edgeID)
	})
}

func (s *Workflows) SetFormMode(ctx context.Context, appID, nodeID string, mode models.FormMode) error {
	return s.edit(ctx, appID, "set_form_mode", func(editor *builder.Editor) error {
		return editor.SetFormMode(ctx, nodeID, mode)
	})
}

func (s *Workflows) AddFormField(ctx context.Context, appID, nodeID string, field models.FormField) (models.FormField, error) {
	var added models.FormField

	err := s.edit(ctx, appID, "add_form_field", func(editor *builder.Editor) error {
		var err error

		added, err = editor.AddFormField(ctx, nodeID, field)

		return err
	})

	return added, err
}

func (s *Workflows) UpdateFormField(ctx context.Context, appID, nodeID, fieldID string, field models.FormField) error {
	return s.edit(ctx, appID, "update_form_field", func(editor *builder.Editor) error {
		return editor.UpdateFormField(ctx, nodeID, fieldID, field)
	})
}

func (s *Workflows) DeleteFormField(ctx context.Context, appID, nodeID, fieldID string) error {
	return s.edit(ctx, appID, "delete_form_field", func(editor *builder.Editor) error {
		return editor.DeleteFormField(ctx, nodeID, fieldID)
	})
}

// edit loads the app under its lock and hands fn an editor whose sink stores
// the app. The change event goes out once fn has returned without error.
func (s *Workflows) edit(ctx context.Context, appID, op string, fn func(editor *builder.Editor) error) error {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "workflows."+op,
		attribute.String(otelhelper.AppIDKey, appID),
		attribute.String(otelhelper.OperationKey, op),
	)
	defer span.End()

	unlock := s.locks.Lock(appID)
	defer unlock()

	app, err := loadApp(ctx, s.base, op, appID)
	if err != nil {
		return err
	}

	stored := false
	sink := func(ctx context.Context, doc models.Document) error {
		app.Workflow = doc
		app.UpdatedAt = time.Now().UTC()

		err := s.persistence.AppRepository().Save(ctx, app)
		if err != nil {
			return fmt.Errorf("failed to save workflow: %w", err)
		}

		stored = true

		return nil
	}

	editor := builder.NewEditor(s.base.logger, app.Workflow, sink)

	err = fn(editor)
	if err != nil {
		otelhelper.SetError(span, err)

		return err
	}

	if stored {
		s.logger.DebugContext(ctx, "Workflow changed", "app_id", appID, "operation", op)

		s.publish(ctx, appID, events.WorkflowDocumentChanged{
			BaseEvent: events.NewBaseEvent(events.WorkflowDocumentChangedEvent, appID),
			Document:  editor.Document(),
		})
	}

	return nil
}
