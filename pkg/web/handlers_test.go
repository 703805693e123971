package web_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dukex/caseflow/pkg/board"
	"github.com/dukex/caseflow/pkg/forms"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/persistence/file"
	"github.com/dukex/caseflow/pkg/services"
	"github.com/dukex/caseflow/pkg/web"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestApp(t *testing.T) *fiber.App {
	t.Helper()

	svc := services.New(file.NewPersistence(t.TempDir()))

	seeded, err := svc.Seed(t.Context())
	require.NoError(t, err)
	require.True(t, seeded)

	handlers := web.NewAPIHandlers(svc, validator.New(validator.WithRequiredStructEnabled()))

	app := fiber.New()
	handlers.Routes(app)

	return app
}

type request struct {
	method string
	path   string
	body   any
	userID string
}

func do(t *testing.T, app *fiber.App, r request) (int, []byte) {
	t.Helper()

	var reader io.Reader

	if r.body != nil {
		if raw, ok := r.body.(string); ok {
			reader = bytes.NewBufferString(raw)
		} else {
			payload, err := json.Marshal(r.body)
			require.NoError(t, err)

			reader = bytes.NewBuffer(payload)
		}
	}

	req := httptest.NewRequest(r.method, r.path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if r.userID != "" {
		req.Header.Set(web.ActingUserHeader, r.userID)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp.StatusCode, body
}

func decode[T any](t *testing.T, body []byte) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(body, &v), string(body))

	return v
}

func TestAPIHandlers_Apps(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, request{method: http.MethodGet, path: "/apps"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.App](t, body), 3)

	status, body = do(t, app, request{method: http.MethodPost, path: "/apps", body: web.CreateAppRequest{Name: "Legal"}})
	require.Equal(t, http.StatusCreated, status, string(body))

	created := decode[models.App](t, body)
	assert.Equal(t, "Legal", created.Name)
	assert.Equal(t, models.DefaultDocument(), created.Workflow)

	status, body = do(t, app, request{method: http.MethodPatch, path: "/apps/" + created.ID, body: map[string]any{"icon": "⚖️"}})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "⚖️", decode[models.App](t, body).Icon)

	status, _ = do(t, app, request{method: http.MethodDelete, path: "/apps/app-1"})
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, request{method: http.MethodGet, path: "/cases/case-1"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_ErrorMapping(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	tests := []struct {
		name           string
		req            request
		expectedStatus int
		expectedType   string
	}{
		{
			name:           "missing app",
			req:            request{method: http.MethodGet, path: "/apps/app-404"},
			expectedStatus: http.StatusNotFound,
			expectedType:   "app_not_found",
		},
		{
			name:           "invalid json",
			req:            request{method: http.MethodPost, path: "/apps", body: "{"},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "missing name",
			req:            request{method: http.MethodPost, path: "/apps", body: map[string]any{}},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "connect to unknown node",
			req:            request{method: http.MethodPost, path: "/apps/app-1/workflow/edges", body: web.ConnectRequest{Source: "triage", Target: "ghost"}},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedType:   "unknown_reference",
		},
		{
			name:           "complete without user",
			req:            request{method: http.MethodPost, path: "/cases/case-1/complete", body: map[string]any{}},
			expectedStatus: http.StatusUnauthorized,
			expectedType:   "unauthenticated",
		},
		{
			name:           "complete closed case",
			req:            request{method: http.MethodPost, path: "/cases/case-6/complete", body: map[string]any{}, userID: "user-1"},
			expectedStatus: http.StatusConflict,
			expectedType:   "transition_conflict",
		},
		{
			name:           "stale step",
			req:            request{method: http.MethodPost, path: "/cases/case-3/complete", body: web.CompleteStepRequest{StepID: "start"}, userID: "user-1"},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedType:   "unknown_reference",
		},
		{
			name:           "unknown acting user",
			req:            request{method: http.MethodPost, path: "/cases/case-1/complete", body: map[string]any{}, userID: "user-404"},
			expectedStatus: http.StatusForbidden,
			expectedType:   "permission_denied",
		},
		{
			name:           "delete yourself",
			req:            request{method: http.MethodDelete, path: "/users/user-1", userID: "user-1"},
			expectedStatus: http.StatusForbidden,
			expectedType:   "permission_denied",
		},
		{
			name:           "assign step to unknown user",
			req:            request{method: http.MethodPatch, path: "/apps/app-1/workflow/nodes/triage", body: map[string]any{"assigneeId": "ghost-user"}},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "delete step whose fields are displayed elsewhere",
			req:            request{method: http.MethodDelete, path: "/apps/app-1/workflow/nodes/triage"},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
		{
			name:           "unknown list view",
			req:            request{method: http.MethodGet, path: "/apps/app-1/cases?view=calendar"},
			expectedStatus: http.StatusBadRequest,
			expectedType:   "validation_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := do(t, app, tt.req)
			assert.Equal(t, tt.expectedStatus, status, string(body))

			problem := decode[map[string]any](t, body)
			assert.Equal(t, tt.expectedType, problem["type"])
		})
	}
}

func TestAPIHandlers_WorkflowEditing(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)
	base := "/apps/app-2/workflow"

	status, body := do(t, app, request{method: http.MethodPost, path: base + "/nodes", body: web.AddNodeRequest{
		ID:    "review",
		Type:  models.NodeTypeTask,
		Label: "Code Review",
		X:     550,
		Y:     300,
	}})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "review", decode[models.Node](t, body).ID)

	status, body = do(t, app, request{method: http.MethodPost, path: base + "/edges", body: web.ConnectRequest{Source: "approval", Target: "review"}})
	require.Equal(t, http.StatusCreated, status, string(body))

	status, _ = do(t, app, request{method: http.MethodPost, path: base + "/edges", body: web.ConnectRequest{Source: "approval", Target: "review"}})
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = do(t, app, request{method: http.MethodPost, path: base + "/edges", body: web.ConnectRequest{Source: "review", Target: "review"}})
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, request{method: http.MethodPost, path: base + "/nodes/review/form/fields", body: web.FormFieldRequest{
		ID:       "review notes!",
		Label:    "Review Notes",
		Type:     models.FieldTypeText,
		Required: true,
	}})
	require.Equal(t, http.StatusCreated, status, string(body))
	assert.Equal(t, "reviewnotes", decode[models.FormField](t, body).ID)

	status, body = do(t, app, request{method: http.MethodPut, path: base + "/nodes/review/form/mode", body: web.SetFormModeRequest{Mode: "SIGN"}})
	assert.Equal(t, http.StatusBadRequest, status, string(body))

	status, _ = do(t, app, request{method: http.MethodPost, path: base + "/nodes/review/move", body: web.MoveNodeRequest{X: 600, Y: 320}})
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, request{method: http.MethodGet, path: base})
	require.Equal(t, http.StatusOK, status)

	doc := decode[models.Document](t, body)
	review, ok := doc.Node("review")
	require.True(t, ok)
	assert.Equal(t, models.Position{X: 600, Y: 320}, review.Position)
	assert.True(t, doc.HasEdge("approval", "review"))

	status, _ = do(t, app, request{method: http.MethodDelete, path: base + "/nodes/review"})
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, request{method: http.MethodGet, path: base + "/columns"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.Node](t, body), 6)

	status, body = do(t, app, request{method: http.MethodPut, path: base, body: `{"nodes": "nope", "edges": []}`})
	assert.Equal(t, http.StatusBadRequest, status, string(body))
}

func TestAPIHandlers_CaseLifecycle(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, request{method: http.MethodPost, path: "/apps/app-1/cases", body: web.CreateCaseRequest{
		Title:       "Printer on fire",
		Description: "Third floor printer is smoking",
		Client:      "Initech",
		Priority:    models.CasePriorityUrgent,
		Tags:        "hardware, , safety",
	}})
	require.Equal(t, http.StatusCreated, status, string(body))

	created := decode[models.Case](t, body)
	assert.Equal(t, "start", created.CurrentStep())
	assert.Equal(t, []string{"hardware", "safety"}, created.Tags)

	path := "/cases/" + created.ID

	status, body = do(t, app, request{method: http.MethodPost, path: path + "/complete", body: map[string]any{}, userID: "user-1"})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, "triage", decode[models.Case](t, body).CurrentStep())

	status, body = do(t, app, request{method: http.MethodPost, path: path + "/complete", userID: "user-1", body: web.CompleteStepRequest{
		StepID:   "triage",
		FormData: map[string]any{"triage-notes": ""},
	}})
	require.Equal(t, http.StatusBadRequest, status, string(body))
	assert.Contains(t, string(body), "Triage Notes is required")

	status, body = do(t, app, request{method: http.MethodPost, path: path + "/complete", userID: "user-2", body: web.CompleteStepRequest{
		StepID:   "triage",
		FormData: map[string]any{"triage-notes": "Evacuated the floor"},
	}})
	require.Equal(t, http.StatusOK, status, string(body))

	status, body = do(t, app, request{method: http.MethodGet, path: path + "/form", userID: "user-1"})
	require.Equal(t, http.StatusOK, status)

	form := decode[services.StepForm](t, body)
	assert.Equal(t, "approval", form.Step.ID)
	assert.Equal(t, models.FormModeApproval, form.Mode)
	assert.Equal(t, "Evacuated the floor", form.Fields[0].Display)
	assert.Equal(t, forms.NotProvided, form.Fields[1].Display)

	status, body = do(t, app, request{method: http.MethodPost, path: path + "/complete", userID: "user-1", body: web.CompleteStepRequest{
		StepID:     "approval",
		NextStepID: "rejected",
	}})
	require.Equal(t, http.StatusOK, status, string(body))

	closed := decode[models.Case](t, body)
	assert.Equal(t, models.CaseStatusClosed, closed.Status)
	assert.Len(t, closed.WorkflowHistory, 3)

	status, body = do(t, app, request{method: http.MethodGet, path: path + "/progress"})
	require.Equal(t, http.StatusOK, status)

	progress := decode[services.CaseProgress](t, body)
	assert.True(t, progress.Edges["e-approval-rejected"])
	assert.False(t, progress.Edges["e-approval-investigate"])

	status, body = do(t, app, request{method: http.MethodPost, path: path + "/step", body: web.MoveCaseRequest{StepID: "triage"}})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, models.CaseStatusInProgress, decode[models.Case](t, body).Status)

	status, body = do(t, app, request{method: http.MethodPatch, path: path, body: map[string]any{"priority": "Someday"}})
	assert.Equal(t, http.StatusBadRequest, status, string(body))
}

func TestAPIHandlers_BoardAndLists(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, request{method: http.MethodGet, path: "/apps/app-3/board"})
	require.Equal(t, http.StatusOK, status)

	response := decode[web.BoardResponse](t, body)
	assert.Equal(t, "app-3", response.App.ID)

	for _, col := range response.Columns {
		if col.Node.ID == "approval" {
			assert.Len(t, col.Cases, 2)
		} else {
			assert.Empty(t, col.Cases, col.Node.ID)
		}
	}

	status, body = do(t, app, request{method: http.MethodGet, path: "/apps/app-3/cases?view=status"})
	require.Equal(t, http.StatusOK, status)

	groups := decode[[]board.StatusGroup](t, body)
	require.Len(t, groups, 4)
	assert.Len(t, groups[1].Cases, 1)
	assert.Len(t, groups[2].Cases, 1)

	status, body = do(t, app, request{method: http.MethodGet, path: "/apps/app-2/summary"})
	require.Equal(t, http.StatusOK, status)

	counts := decode[board.Counts](t, body)
	assert.Equal(t, 2, counts.Total)
	assert.Equal(t, 1, counts.Open)
}

func TestAPIHandlers_Users(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, request{method: http.MethodPost, path: "/users", body: web.InviteUserRequest{Email: "fox.mulder@example.com"}})
	require.Equal(t, http.StatusCreated, status, string(body))

	invited := decode[models.User](t, body)
	assert.Equal(t, "fox.mulder", invited.Name)
	assert.Equal(t, models.UserRoleMember, invited.Role)

	status, _ = do(t, app, request{method: http.MethodPost, path: "/users", body: web.InviteUserRequest{Email: "FOX.MULDER@example.com"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, app, request{method: http.MethodPost, path: "/users", body: web.InviteUserRequest{Email: "x@example.com", Role: "Owner"}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, body = do(t, app, request{method: http.MethodPatch, path: "/users/" + invited.ID, body: map[string]any{"role": "Admin"}})
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, models.UserRoleAdmin, decode[models.User](t, body).Role)

	status, _ = do(t, app, request{method: http.MethodDelete, path: "/users/" + invited.ID, userID: "user-1"})
	assert.Equal(t, http.StatusNoContent, status)

	status, body = do(t, app, request{method: http.MethodGet, path: "/users"})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, decode[[]models.User](t, body), 3)

	status, _ = do(t, app, request{method: http.MethodGet, path: "/users/" + invited.ID})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAPIHandlers_HealthCheck(t *testing.T) {
	t.Parallel()

	app := setupTestApp(t)

	status, body := do(t, app, request{method: http.MethodGet, path: "/health"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", decode[map[string]any](t, body)["status"])
}
