// Package events defines the notifications emitted after apps, workflows and cases change.
package events

import (
	"time"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/google/uuid"
)

type EventType string

// Topic carries every caseflow event.
const Topic = "caseflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	WorkflowDocumentChangedEvent EventType = "workflow.document.changed"

	CaseCreatedEvent       EventType = "case.created"
	CaseChangedEvent       EventType = "case.changed"
	CaseStepCompletedEvent EventType = "case.step.completed"
	CaseClosedEvent        EventType = "case.closed"

	AppDeletedEvent EventType = "app.deleted"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	AppID     string         `json:"app_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// WorkflowDocumentChanged carries the full document after an edit.
type WorkflowDocumentChanged struct {
	BaseEvent

	Document models.Document `json:"document"`
}

func (e WorkflowDocumentChanged) GetType() EventType {
	return WorkflowDocumentChangedEvent
}

type CaseCreated struct {
	BaseEvent

	Case models.Case `json:"case"`
}

func (e CaseCreated) GetType() EventType {
	return CaseCreatedEvent
}

// CaseChanged carries the full case after any persisted change.
type CaseChanged struct {
	BaseEvent

	Case models.Case `json:"case"`
}

func (e CaseChanged) GetType() EventType {
	return CaseChangedEvent
}

type CaseStepCompleted struct {
	BaseEvent

	CaseID     string `json:"case_id"`
	FromStepID string `json:"from_step_id"`
	ToStepID   string `json:"to_step_id"`
	UserID     string `json:"user_id"`
	AssigneeID string `json:"assignee_id,omitempty"`
}

func (e CaseStepCompleted) GetType() EventType {
	return CaseStepCompletedEvent
}

type CaseClosed struct {
	BaseEvent

	CaseID string `json:"case_id"`
	StepID string `json:"step_id"`
	UserID string `json:"user_id"`
}

func (e CaseClosed) GetType() EventType {
	return CaseClosedEvent
}

type AppDeleted struct {
	BaseEvent

	CasesDeleted int `json:"cases_deleted"`
}

func (e AppDeleted) GetType() EventType {
	return AppDeletedEvent
}

func NewBaseEvent(eventType EventType, appID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		AppID:     appID,
		Metadata:  make(map[string]any),
	}
}
