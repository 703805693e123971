package persistence_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error checking functions work correctly", func(t *testing.T) {
		appErr := persistence.NewAppError("GetByID", "app-1", persistence.ErrAppNotFound)
		caseErr := persistence.NewCaseError("Save", "case-1", persistence.ErrCaseNotFound)
		userErr := persistence.NewUserError("Delete", "user-1", persistence.ErrUserNotFound)

		assert.True(t, persistence.IsAppNotFound(appErr))
		assert.True(t, persistence.IsCaseNotFound(caseErr))
		assert.True(t, persistence.IsUserNotFound(userErr))
		assert.False(t, persistence.IsAppNotFound(caseErr))

		wrapped := fmt.Errorf("loading board: %w", caseErr)
		assert.True(t, persistence.IsNotFound(wrapped))
		assert.True(t, errors.Is(wrapped, persistence.ErrCaseNotFound))
	})

	t.Run("app error contains context", func(t *testing.T) {
		err := persistence.NewAppError("Delete", "app-123", persistence.ErrAppNotFound)

		assert.Contains(t, err.Error(), "Delete")
		assert.Contains(t, err.Error(), "app-123")
		assert.Contains(t, err.Error(), "app not found")
	})

	t.Run("case error names the app when known", func(t *testing.T) {
		err := &persistence.CaseError{Op: "GetByApp", CaseID: "case-9", AppID: "app-2", Err: errors.New("boom")}

		assert.Contains(t, err.Error(), "case-9 in app app-2")
		assert.False(t, persistence.IsNotFound(err))
	})
}
