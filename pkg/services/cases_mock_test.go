package services

import (
	"errors"
	"testing"

	"github.com/dukex/caseflow/pkg/events"
	"github.com/dukex/caseflow/pkg/mocks"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCases_SubmitWithMocks(t *testing.T) {
	t.Parallel()

	doc := testutil.LinearDocument("review")
	doc.Nodes[1] = testutil.CreateTestNode("review", testutil.WithAssignee("user-2"))
	app := testutil.CreateTestApp(doc)
	users := []*models.User{ptr(testutil.CreateTestUser("user-1")), ptr(testutil.CreateTestUser("user-2"))}

	tests := []struct {
		name      string
		c         *models.Case
		userID    string
		saveErr   error
		expectErr func(error) bool
		published []events.EventType
		step      string
	}{
		{
			name:      "start moves to the assigned review",
			c:         testutil.CreateTestCase(app.ID),
			userID:    "user-1",
			published: []events.EventType{events.CaseStepCompletedEvent, events.CaseChangedEvent},
			step:      "review",
		},
		{
			name:      "review completed by its assignee closes the case",
			c:         testutil.CreateTestCase(app.ID, testutil.AtStep("review"), testutil.WithHistory("user-1", "start")),
			userID:    "user-2",
			published: []events.EventType{events.CaseStepCompletedEvent, events.CaseClosedEvent, events.CaseChangedEvent},
			step:      "end",
		},
		{
			name:      "review completed by someone else",
			c:         testutil.CreateTestCase(app.ID, testutil.AtStep("review")),
			userID:    "user-1",
			expectErr: IsPermissionError,
		},
		{
			name:      "storage failure publishes nothing",
			c:         testutil.CreateTestCase(app.ID),
			userID:    "user-1",
			saveErr:   errors.New("disk full"),
			expectErr: func(err error) bool { return err != nil && !IsValidationError(err) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := mocks.NewMockPersistence()
			p.GetMockCaseRepository().On("GetByID", mock.Anything, tt.c.ID).Return(tt.c, nil)
			p.GetMockAppRepository().On("GetByID", mock.Anything, app.ID).Return(app, nil)
			p.GetMockUserRepository().On("GetAll", mock.Anything).Return(users, nil)

			if tt.expectErr == nil || tt.saveErr != nil {
				p.GetMockCaseRepository().On("Save", mock.Anything, mock.AnythingOfType("*models.Case")).Return(tt.saveErr).Once()
			}

			bus := &mocks.MockEventBus{}

			var published []events.EventType

			bus.On("Publish", mock.Anything, tt.c.ID, mock.Anything).Run(func(args mock.Arguments) {
				published = append(published, args.Get(2).(interface{ GetType() events.EventType }).GetType())
			}).Return(nil)

			s := New(p, WithEventPublisher(bus))

			updated, err := s.Cases.Submit(t.Context(), tt.c.ID, tt.userID, SubmitRequest{})

			if tt.expectErr != nil {
				require.Error(t, err)
				assert.True(t, tt.expectErr(err), "unexpected error %v", err)
				assert.Empty(t, published)
				p.GetMockCaseRepository().AssertExpectations(t)

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.step, updated.CurrentStep())
			assert.Equal(t, tt.published, published)
			p.GetMockCaseRepository().AssertExpectations(t)
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
