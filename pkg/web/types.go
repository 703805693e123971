package web

import (
	"github.com/dukex/caseflow/pkg/board"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/progression"
	"github.com/dukex/caseflow/pkg/services"
)

// ActingUserHeader carries the id of the signed in user.
const ActingUserHeader = "X-User-ID"

// CreateAppRequest represents the request body for creating a new app.
type CreateAppRequest struct {
	Name       string `json:"name"       validate:"required"`
	Icon       string `json:"icon"`
	ThemeColor string `json:"themeColor"`
}

// UpdateAppRequest changes app metadata. Omitted fields are left untouched.
type UpdateAppRequest struct {
	Name       *string `json:"name,omitempty"       validate:"omitempty,min=1"`
	Icon       *string `json:"icon,omitempty"`
	ThemeColor *string `json:"themeColor,omitempty"`
}

type AddNodeRequest struct {
	ID    string          `json:"id,omitempty"`
	Type  models.NodeType `json:"type"            validate:"required,oneof=Start End Task Gateway Timer Message"`
	Label string          `json:"label,omitempty"`
	X     float64         `json:"x"`
	Y     float64         `json:"y"`
}

type MoveNodeRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UpdateNodeRequest patches a node. An empty assigneeId clears the assignee.
type UpdateNodeRequest struct {
	Label       *string          `json:"label,omitempty"`
	Description *string          `json:"description,omitempty"`
	AssigneeID  *string          `json:"assigneeId,omitempty"`
	Form        *models.NodeForm `json:"form,omitempty"`
}

type ConnectRequest struct {
	Source string `json:"source"          validate:"required"`
	Target string `json:"target"          validate:"required"`
	Label  string `json:"label,omitempty"`
}

type SetFormModeRequest struct {
	Mode models.FormMode `json:"mode" validate:"required,oneof=FILL APPROVAL"`
}

type FormFieldRequest struct {
	ID            string               `json:"id"                      validate:"required"`
	Label         string               `json:"label"                   validate:"required"`
	Type          models.FormFieldType `json:"type"                    validate:"required"`
	Required      bool                 `json:"required,omitempty"`
	Options       []string             `json:"options,omitempty"`
	SourceFieldID string               `json:"sourceFieldId,omitempty"`
}

func (r FormFieldRequest) toField() models.FormField {
	return models.FormField{
		ID:            r.ID,
		Label:         r.Label,
		Type:          r.Type,
		Required:      r.Required,
		Options:       r.Options,
		SourceFieldID: r.SourceFieldID,
	}
}

// CreateCaseRequest mirrors the New Case form; tags are comma separated.
type CreateCaseRequest struct {
	Title       string              `json:"title"                validate:"required"`
	Description string              `json:"description"          validate:"required"`
	Client      string              `json:"client"               validate:"required"`
	Priority    models.CasePriority `json:"priority,omitempty"   validate:"omitempty,oneof=Low Medium High Urgent"`
	AssigneeID  string              `json:"assigneeId,omitempty"`
	Tags        string              `json:"tags,omitempty"`
}

func (r CreateCaseRequest) toInput(appID string) progression.NewCaseInput {
	return progression.NewCaseInput{
		AppID:       appID,
		Title:       r.Title,
		Description: r.Description,
		Client:      r.Client,
		Priority:    r.Priority,
		AssigneeID:  r.AssigneeID,
		Tags:        r.Tags,
	}
}

type UpdateCaseRequest struct {
	Title       *string              `json:"title,omitempty"`
	Description *string              `json:"description,omitempty"`
	Client      *string              `json:"client,omitempty"`
	Priority    *models.CasePriority `json:"priority,omitempty"`
	AssigneeID  *string              `json:"assigneeId,omitempty"`
	Tags        []string             `json:"tags,omitempty"`
}

func (r UpdateCaseRequest) toInput() services.UpdateCaseInput {
	return services.UpdateCaseInput{
		Title:       r.Title,
		Description: r.Description,
		Client:      r.Client,
		Priority:    r.Priority,
		AssigneeID:  r.AssigneeID,
		Tags:        r.Tags,
	}
}

// CompleteStepRequest completes the current step of a case.
type CompleteStepRequest struct {
	StepID     string         `json:"stepId,omitempty"`
	FormData   map[string]any `json:"formData,omitempty"`
	NextStepID string         `json:"nextStepId,omitempty"`
}

type MoveCaseRequest struct {
	StepID string `json:"stepId" validate:"required"`
}

type InviteUserRequest struct {
	Email string          `json:"email"          validate:"required,email"`
	Role  models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=Admin Member"`
	Name  string          `json:"name,omitempty"`
}

type UpdateUserRequest struct {
	Name *string          `json:"name,omitempty"`
	Role *models.UserRole `json:"role,omitempty" validate:"omitempty,oneof=Admin Member"`
}

// BoardResponse is the kanban board of an app.
type BoardResponse struct {
	App     *models.App    `json:"app"`
	Columns []board.Column `json:"columns"`
}
