package eventbus_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/dukex/caseflow/pkg/channels/gochannel"
	"github.com/dukex/caseflow/pkg/eventbus"
	"github.com/dukex/caseflow/pkg/events"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBus(t *testing.T) eventbus.EventBus {
	t.Helper()

	pub, sub, err := gochannel.CreateChannel(watermill.NopLogger{})
	require.NoError(t, err)

	bus := eventbus.NewWatermillEventBus(pub, sub)

	t.Cleanup(func() {
		assert.NoError(t, bus.Close())
	})

	return bus
}

func TestWatermillEventBus_DeliversTypedEvents(t *testing.T) {
	t.Parallel()

	bus := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	received := make(chan *events.CaseStepCompleted, 1)

	require.NoError(t, bus.Handle(events.CaseStepCompletedEvent, func(_ context.Context, event any) error {
		completed, ok := event.(*events.CaseStepCompleted)
		if !ok {
			return errors.New("unexpected event type")
		}

		received <- completed

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	err := bus.Publish(ctx, "case-1", events.CaseStepCompleted{
		BaseEvent:  events.NewBaseEvent(events.CaseStepCompletedEvent, "app-1"),
		CaseID:     "case-1",
		FromStepID: "start",
		ToStepID:   "triage",
		UserID:     "user-1",
	})
	require.NoError(t, err)

	select {
	case got := <-received:
		assert.Equal(t, "case-1", got.CaseID)
		assert.Equal(t, "triage", got.ToStepID)
		assert.Equal(t, "app-1", got.AppID)
		assert.Equal(t, events.CaseStepCompletedEvent, got.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_DocumentPayload(t *testing.T) {
	t.Parallel()

	bus := newBus(t)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	received := make(chan models.Document, 1)

	require.NoError(t, bus.Handle(events.WorkflowDocumentChangedEvent, func(_ context.Context, event any) error {
		received <- event.(*events.WorkflowDocumentChanged).Document

		return nil
	}))
	require.NoError(t, bus.Subscribe(ctx))

	require.NoError(t, bus.Publish(ctx, "app-1", events.WorkflowDocumentChanged{
		BaseEvent: events.NewBaseEvent(events.WorkflowDocumentChangedEvent, "app-1"),
		Document:  models.DefaultDocument(),
	}))

	select {
	case doc := <-received:
		assert.Equal(t, models.DefaultDocument(), doc)
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestWatermillEventBus_GenerateID(t *testing.T) {
	t.Parallel()

	bus := newBus(t)

	first := bus.GenerateID()
	second := bus.GenerateID()

	assert.NotEmpty(t, first)
	assert.NotEqual(t, first, second)
}

func TestHandlerFor(t *testing.T) {
	t.Parallel()

	var got string

	handler := eventbus.HandlerFor(func(_ context.Context, e *events.CaseClosed) error {
		got = e.CaseID

		return nil
	})

	require.NoError(t, handler(t.Context(), &events.CaseClosed{CaseID: "case-1"}))
	assert.Equal(t, "case-1", got)

	err := handler(t.Context(), &events.CaseCreated{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "*events.CaseCreated")
}
