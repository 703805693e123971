package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/dukex/caseflow/pkg/eventbus"
	"github.com/dukex/caseflow/pkg/events"
)

// watchActivity logs the case and workflow activity published on bus.
func watchActivity(ctx context.Context, logger *slog.Logger, bus eventbus.EventSubscriber) error {
	handlers := map[events.EventType]eventbus.EventHandler{
		events.CaseCreatedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.CaseCreated) error {
			logger.InfoContext(ctx, "Case opened", "app_id", e.AppID, "case_id", e.Case.ID, "title", e.Case.Title)

			return nil
		}),
		events.CaseStepCompletedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.CaseStepCompleted) error {
			logger.InfoContext(ctx, "Case moved",
				"app_id", e.AppID,
				"case_id", e.CaseID,
				"from_step_id", e.FromStepID,
				"to_step_id", e.ToStepID,
				"user_id", e.UserID,
			)

			return nil
		}),
		events.CaseClosedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.CaseClosed) error {
			logger.InfoContext(ctx, "Case closed", "app_id", e.AppID, "case_id", e.CaseID, "step_id", e.StepID)

			return nil
		}),
		events.WorkflowDocumentChangedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.WorkflowDocumentChanged) error {
			logger.DebugContext(ctx, "Workflow changed", "app_id", e.AppID, "nodes", len(e.Document.Nodes), "edges", len(e.Document.Edges))

			return nil
		}),
		events.AppDeletedEvent: eventbus.HandlerFor(func(ctx context.Context, e *events.AppDeleted) error {
			logger.InfoContext(ctx, "App deleted", "app_id", e.AppID, "cases_deleted", e.CasesDeleted)

			return nil
		}),
	}

	for eventType, handler := range handlers {
		err := bus.Handle(eventType, handler)
		if err != nil {
			return fmt.Errorf("failed to register %s handler: %w", eventType, err)
		}
	}

	return bus.Subscribe(ctx)
}
