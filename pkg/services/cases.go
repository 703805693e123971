package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dukex/caseflow/pkg/board"
	"github.com/dukex/caseflow/pkg/events"
	"github.com/dukex/caseflow/pkg/forms"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/otelhelper"
	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/dukex/caseflow/pkg/progression"
	"go.opentelemetry.io/otel/attribute"
)

// Cases drives cases through their app's workflow.
type Cases struct {
	*base

	logger *slog.Logger
}

type UpdateCaseInput struct {
	Title       *string
	Description *string
	Client      *string
	Priority    *models.CasePriority
	AssigneeID  *string
	Tags        []string
}

// SubmitRequest completes the case's current step. StepID guards against
// completing a step the case has already left; empty means the current step.
// NextStepID picks the branch when the step has several outgoing edges.
type SubmitRequest struct {
	StepID     string
	FormData   map[string]any
	NextStepID string
}

// StepForm is the current step of a case as the detail view shows it.
type StepForm struct {
	Step        models.Node           `json:"step"`
	Mode        models.FormMode       `json:"mode,omitempty"`
	Fields      []forms.RenderedField `json:"fields"`
	CanComplete bool                  `json:"canComplete"`
	Transitions []models.Node         `json:"transitions"`
}

// CaseProgress is the per step and per edge progress of a case.
type CaseProgress struct {
	Steps []progression.StepProgress `json:"steps"`
	Edges map[string]bool            `json:"edges"`
}

// Create opens a case on the Start step of the app's workflow.
func (s *Cases) Create(ctx context.Context, in progression.NewCaseInput) (*models.Case, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "cases.create", attribute.String(otelhelper.AppIDKey, in.AppID))
	defer span.End()

	app, err := loadApp(ctx, s.base, "create_case", in.AppID)
	if err != nil {
		return nil, err
	}

	if in.AssigneeID != "" {
		err = s.checkAssignee(ctx, "assign_case", in.AssigneeID)
		if err != nil {
			return nil, err
		}
	}

	c, err := s.engine.NewCase(app.Workflow, in)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.CaseIDKey, c.ID))

	err = s.persistence.CaseRepository().Save(ctx, &c)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save case: %w", err)
	}

	s.logger.InfoContext(ctx, "Case created", "case_id", c.ID, "app_id", c.AppID, "step_id", c.CurrentStep())

	s.publish(ctx, c.ID, events.CaseCreated{
		BaseEvent: events.NewBaseEvent(events.CaseCreatedEvent, c.AppID),
		Case:      c,
	})

	return &c, nil
}

func (s *Cases) FetchByID(ctx context.Context, id string) (*models.Case, error) {
	return s.load(ctx, "fetch_case", id)
}

// ListByApp returns the app's cases, newest first.
func (s *Cases) ListByApp(ctx context.Context, appID string) ([]models.Case, error) {
	_, err := loadApp(ctx, s.base, "list_cases", appID)
	if err != nil {
		return nil, err
	}

	return s.listByApp(ctx, appID)
}

func (s *Cases) Update(ctx context.Context, id string, in UpdateCaseInput) (*models.Case, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	c, err := s.load(ctx, "update_case", id)
	if err != nil {
		return nil, err
	}

	required := []struct {
		field string
		label string
		value *string
		dst   *string
	}{
		{"title", "Title", in.Title, &c.Title},
		{"description", "Description", in.Description, &c.Description},
		{"client", "Client", in.Client, &c.Client},
	}

	for _, r := range required {
		if r.value == nil {
			continue
		}

		v := strings.TrimSpace(*r.value)
		if v == "" {
			return nil, &models.ValidationError{Field: r.field, Message: r.label + " is required"}
		}

		*r.dst = v
	}

	if in.Priority != nil {
		if !in.Priority.Valid() {
			return nil, &models.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", *in.Priority)}
		}

		c.Priority = *in.Priority
	}

	if in.AssigneeID != nil {
		if *in.AssigneeID != "" {
			err = s.checkAssignee(ctx, "assign_case", *in.AssigneeID)
			if err != nil {
				return nil, err
			}
		}

		c.AssigneeID = *in.AssigneeID
	}

	if in.Tags != nil {
		c.Tags = progression.ParseTags(strings.Join(in.Tags, ","))
	}

	c.UpdatedAt = time.Now().UTC()

	return c, s.store(ctx, c)
}

// Submit completes the current step of a case for actingUserID. For FILL
// steps the submitted values are validated and merged into the case form data
// first. The case is stored once, after every check has passed.
func (s *Cases) Submit(ctx context.Context, caseID, actingUserID string, req SubmitRequest) (*models.Case, error) {
	ctx, span := otelhelper.StartSpan(ctx, s.tracer, "cases.submit",
		attribute.String(otelhelper.CaseIDKey, caseID),
		attribute.String(otelhelper.UserIDKey, actingUserID),
	)
	defer span.End()

	unlock := s.locks.Lock(caseID)
	defer unlock()

	c, err := s.load(ctx, "submit_case", caseID)
	if err != nil {
		return nil, err
	}

	app, err := loadApp(ctx, s.base, "submit_case", c.AppID)
	if err != nil {
		return nil, err
	}

	doc := app.Workflow

	stepID := req.StepID
	if stepID == "" {
		stepID = c.CurrentStep()
	}

	span.SetAttributes(attribute.String(otelhelper.StepIDKey, stepID))

	if stepID != c.CurrentStep() {
		err = &models.ReferenceError{Kind: "current step", ID: stepID}
		otelhelper.SetError(span, err)

		return nil, err
	}

	users, err := s.directory(ctx)
	if err != nil {
		return nil, err
	}

	if _, ok := users.ResolveUser(actingUserID); !ok {
		return nil, &ServiceError{Op: "submit_case", Code: "unknown_user", Err: ErrUnknownActor}
	}

	err = s.engine.CanComplete(doc, *c, actingUserID)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	step, _ := doc.Node(stepID)
	if step.Form != nil && step.Form.Mode == models.FormModeFill && len(step.Form.Fields) > 0 {
		merged, err := fillForm(*step.Form, c.FormData, req.FormData)
		if err != nil {
			otelhelper.SetError(span, err)

			return nil, err
		}

		c.FormData = merged
	}

	updated, err := s.engine.CompleteStep(doc, *c, stepID, actingUserID, req.NextStepID, users)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, err
	}

	span.SetAttributes(attribute.String(otelhelper.NextStepKey, updated.CurrentStep()))

	err = s.persistence.CaseRepository().Save(ctx, &updated)
	if err != nil {
		otelhelper.SetError(span, err)

		return nil, fmt.Errorf("failed to save case: %w", err)
	}

	s.publish(ctx, updated.ID, events.CaseStepCompleted{
		BaseEvent:  events.NewBaseEvent(events.CaseStepCompletedEvent, updated.AppID),
		CaseID:     updated.ID,
		FromStepID: stepID,
		ToStepID:   updated.CurrentStep(),
		UserID:     actingUserID,
		AssigneeID: updated.AssigneeID,
	})

	if updated.Status == models.CaseStatusClosed {
		s.publish(ctx, updated.ID, events.CaseClosed{
			BaseEvent: events.NewBaseEvent(events.CaseClosedEvent, updated.AppID),
			CaseID:    updated.ID,
			StepID:    updated.CurrentStep(),
			UserID:    actingUserID,
		})
	}

	s.publish(ctx, updated.ID, events.CaseChanged{
		BaseEvent: events.NewBaseEvent(events.CaseChangedEvent, updated.AppID),
		Case:      updated,
	})

	return &updated, nil
}

func fillForm(form models.NodeForm, formData, submission map[string]any) (map[string]any, error) {
	if submission == nil {
		submission = map[string]any{}
	}

	err := forms.ValidateSchema(form, submission)
	if err != nil {
		return nil, err
	}

	state := forms.Collect(form, formData, submission)

	err = forms.Validate(form, state)
	if err != nil {
		return nil, err
	}

	return forms.Merge(formData, form, state)
}

// MoveToStep places the case on stepID without recording history.
func (s *Cases) MoveToStep(ctx context.Context, caseID, stepID string) (*models.Case, error) {
	unlock := s.locks.Lock(caseID)
	defer unlock()

	c, err := s.load(ctx, "move_case", caseID)
	if err != nil {
		return nil, err
	}

	app, err := loadApp(ctx, s.base, "move_case", c.AppID)
	if err != nil {
		return nil, err
	}

	updated, err := s.engine.SetStep(app.Workflow, *c, stepID)
	if err != nil {
		return nil, err
	}

	return &updated, s.store(ctx, &updated)
}

// Form renders the current step of the case for actingUserID.
func (s *Cases) Form(ctx context.Context, caseID, actingUserID string) (*StepForm, error) {
	c, err := s.load(ctx, "case_form", caseID)
	if err != nil {
		return nil, err
	}

	app, err := loadApp(ctx, s.base, "case_form", c.AppID)
	if err != nil {
		return nil, err
	}

	step, ok := app.Workflow.Node(c.CurrentStep())
	if !ok {
		return nil, &models.ReferenceError{Kind: "step", ID: c.CurrentStep()}
	}

	view := &StepForm{
		Step:        step,
		Fields:      []forms.RenderedField{},
		CanComplete: s.engine.CanComplete(app.Workflow, *c, actingUserID) == nil,
		Transitions: []models.Node{},
	}

	if step.Form != nil {
		view.Mode = step.Form.Mode
		view.Fields = forms.Render(*step.Form, c.FormData)
	}

	for _, e := range app.Workflow.Outgoing(step.ID) {
		if target, ok := app.Workflow.Node(e.Target); ok {
			view.Transitions = append(view.Transitions, target)
		}
	}

	return view, nil
}

func (s *Cases) Progress(ctx context.Context, caseID string) (*CaseProgress, error) {
	c, err := s.load(ctx, "case_progress", caseID)
	if err != nil {
		return nil, err
	}

	app, err := loadApp(ctx, s.base, "case_progress", c.AppID)
	if err != nil {
		return nil, err
	}

	return &CaseProgress{
		Steps: progression.Progress(app.Workflow, *c),
		Edges: progression.EdgeProgress(app.Workflow, *c),
	}, nil
}

// Board groups the app's cases under the columns of its workflow.
func (s *Cases) Board(ctx context.Context, appID string) ([]board.Column, error) {
	app, err := loadApp(ctx, s.base, "board", appID)
	if err != nil {
		return nil, err
	}

	cases, err := s.listByApp(ctx, appID)
	if err != nil {
		return nil, err
	}

	return board.Build(app.Workflow, cases), nil
}

// Summary counts the app's cases per status and priority.
func (s *Cases) Summary(ctx context.Context, appID string) (board.Counts, error) {
	cases, err := s.ListByApp(ctx, appID)
	if err != nil {
		return board.Counts{}, err
	}

	return board.Summary(cases), nil
}

func (s *Cases) load(ctx context.Context, op, id string) (*models.Case, error) {
	c, err := s.persistence.CaseRepository().GetByID(ctx, id)
	if err != nil {
		return nil, persistence.NewCaseError(op, id, err)
	}

	if c == nil {
		return nil, persistence.NewCaseError(op, id, persistence.ErrCaseNotFound)
	}

	return c, nil
}

func (s *Cases) listByApp(ctx context.Context, appID string) ([]models.Case, error) {
	stored, err := s.persistence.CaseRepository().GetByApp(ctx, appID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}

	cases := make([]models.Case, 0, len(stored))
	for _, c := range stored {
		cases = append(cases, *c)
	}

	return cases, nil
}

func (s *Cases) store(ctx context.Context, c *models.Case) error {
	err := s.persistence.CaseRepository().Save(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to save case: %w", err)
	}

	s.publish(ctx, c.ID, events.CaseChanged{
		BaseEvent: events.NewBaseEvent(events.CaseChangedEvent, c.AppID),
		Case:      *c,
	})

	return nil
}

func (s *Cases) directory(ctx context.Context) (progression.Directory, error) {
	stored, err := s.persistence.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	users := make([]models.User, 0, len(stored))
	for _, u := range stored {
		users = append(users, *u)
	}

	return progression.NewDirectory(users), nil
}
