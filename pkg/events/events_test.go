package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewBaseEvent(t *testing.T) {
	t.Parallel()

	first := NewBaseEvent(CaseCreatedEvent, "app-1")
	second := NewBaseEvent(CaseCreatedEvent, "app-1")

	assert.NotEmpty(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, CaseCreatedEvent, first.Type)
	assert.Equal(t, "app-1", first.AppID)
	assert.Equal(t, "UTC", first.Timestamp.Location().String())
	assert.NotNil(t, first.Metadata)
}

func TestCaseStepCompleted_JSON(t *testing.T) {
	t.Parallel()

	event := CaseStepCompleted{
		BaseEvent:  NewBaseEvent(CaseStepCompletedEvent, "app-1"),
		CaseID:     "case-1",
		FromStepID: "triage",
		ToStepID:   "approval",
		UserID:     "user-2",
	}

	data, err := json.Marshal(event)
	require.NoError(t, err)

	assert.Contains(t, string(data), `"type":"case.step.completed"`)
	assert.Contains(t, string(data), `"from_step_id":"triage"`)
	assert.Contains(t, string(data), `"to_step_id":"approval"`)
	assert.NotContains(t, string(data), "assignee_id")
}

func TestGetType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		event interface{ GetType() EventType }
		want  EventType
	}{
		{WorkflowDocumentChanged{}, WorkflowDocumentChangedEvent},
		{CaseCreated{}, CaseCreatedEvent},
		{CaseChanged{}, CaseChangedEvent},
		{CaseStepCompleted{}, CaseStepCompletedEvent},
		{CaseClosed{}, CaseClosedEvent},
		{AppDeleted{}, AppDeletedEvent},
	}

	for _, tt := range tests {
		t.Run(string(tt.want), func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.event.GetType())
		})
	}
}
