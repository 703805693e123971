// Package progression moves cases through their workflow: it resolves the next
// step of a completion, enforces step ownership and derives progress views.
package progression

import (
	"log/slog"
	"time"

	"github.com/dukex/caseflow/pkg/models"
)

// UserResolver looks up users by id. Lookups are synchronous and never fail;
// unknown ids report false.
type UserResolver interface {
	ResolveUser(id string) (models.User, bool)
}

// Directory is a UserResolver over an in-memory user list.
type Directory map[string]models.User

// NewDirectory indexes users by id.
func NewDirectory(users []models.User) Directory {
	d := make(Directory, len(users))
	for _, u := range users {
		d[u.ID] = u
	}

	return d
}

func (d Directory) ResolveUser(id string) (models.User, bool) {
	u, ok := d[id]

	return u, ok
}

// Engine applies step transitions to cases. It holds no case state.
type Engine struct {
	clock  func() time.Time
	strict bool
	logger *slog.Logger
}

type Option func(*Engine)

// WithClock overrides the time source used to stamp history events.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithStrictTransitions makes completions of branching steps fail with an
// AmbiguousTransitionError unless a valid next step is chosen.
func WithStrictTransitions(strict bool) Option {
	return func(e *Engine) { e.strict = strict }
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) { e.logger = logger }
}

func New(opts ...Option) *Engine {
	e := &Engine{
		clock:  func() time.Time { return time.Now().UTC() },
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// ResolveNext picks the step that follows fromStepID. A single outgoing edge
// always wins. With several, a chosen target that matches one of them wins,
// otherwise the first edge in document order is taken.
func (e *Engine) ResolveNext(doc models.Document, fromStepID, chosen string) (string, error) {
	edges := doc.Outgoing(fromStepID)

	switch len(edges) {
	case 0:
		return "", &models.DeadEndError{StepID: fromStepID}
	case 1:
		return edges[0].Target, nil
	}

	targets := make([]string, 0, len(edges))

	for _, edge := range edges {
		if chosen != "" && edge.Target == chosen {
			return chosen, nil
		}

		targets = append(targets, edge.Target)
	}

	if e.strict {
		return "", &models.AmbiguousTransitionError{StepID: fromStepID, Targets: targets}
	}

	e.logger.Warn("Branching step completed without a valid choice, taking the first transition",
		"step_id", fromStepID,
		"chosen", chosen,
		"next_step_id", targets[0],
	)

	return targets[0], nil
}

// CanComplete checks whether userID may complete the case's current step. A
// step without an assignee can be completed by anyone.
func (e *Engine) CanComplete(doc models.Document, c models.Case, userID string) error {
	stepID := c.CurrentStep()

	step, ok := doc.Node(stepID)
	if !ok {
		return &models.ReferenceError{Kind: "step", ID: stepID}
	}

	if step.Type == models.NodeTypeEnd {
		return &models.ClosedError{CaseID: c.ID, StepID: stepID}
	}

	if step.AssigneeID != "" && step.AssigneeID != userID {
		return &models.PermissionError{StepID: stepID, UserID: userID, AssigneeID: step.AssigneeID}
	}

	return nil
}

// CompleteStep records the completion of fromStepID by actingUserID and moves
// the case to the next step. The input case is not modified. Reaching an End
// step closes the case. When the next step has an assignee that users can
// resolve, the case is reassigned to them.
//
// Ownership is not checked here; callers run CanComplete first.
func (e *Engine) CompleteStep(doc models.Document, c models.Case, fromStepID, actingUserID, chosen string, users UserResolver) (models.Case, error) {
	current := c.CurrentStep()
	if current != fromStepID {
		return c, &models.ReferenceError{Kind: "current step", ID: fromStepID}
	}

	step, ok := doc.Node(current)
	if !ok {
		return c, &models.ReferenceError{Kind: "step", ID: current}
	}

	if step.Type == models.NodeTypeEnd || c.Status == models.CaseStatusClosed {
		return c, &models.ClosedError{CaseID: c.ID, StepID: current}
	}

	nextID, err := e.ResolveNext(doc, current, chosen)
	if err != nil {
		if models.IsTransitionError(err) {
			e.logger.Warn("Cannot complete step", "case_id", c.ID, "step_id", current, "error", err)
		}

		return c, err
	}

	next, ok := doc.Node(nextID)
	if !ok {
		return c, &models.ReferenceError{Kind: "step", ID: nextID}
	}

	now := e.clock()

	updated := c.Clone()
	updated.WorkflowHistory = append(updated.WorkflowHistory, models.WorkflowEvent{
		StepID:      current,
		UserID:      actingUserID,
		CompletedAt: now,
	})
	updated.AtStep(nextID)
	updated.UpdatedAt = now

	if next.Type == models.NodeTypeEnd {
		updated.Status = models.CaseStatusClosed
	}

	if next.AssigneeID != "" {
		if users == nil {
			updated.AssigneeID = next.AssigneeID
		} else if u, ok := users.ResolveUser(next.AssigneeID); ok {
			updated.AssigneeID = u.ID
		}
	}

	e.logger.Info("Step completed",
		"case_id", c.ID,
		"from_step_id", current,
		"to_step_id", nextID,
		"user_id", actingUserID,
		"closed", updated.Status == models.CaseStatusClosed,
	)

	return updated, nil
}

// SetStep moves the case to stepID without recording history. The status
// follows the step type: Start is New, End is Closed, anything else In Progress.
func (e *Engine) SetStep(doc models.Document, c models.Case, stepID string) (models.Case, error) {
	step, ok := doc.Node(stepID)
	if !ok {
		return c, &models.ReferenceError{Kind: "step", ID: stepID}
	}

	updated := c.Clone()
	updated.AtStep(stepID)
	updated.UpdatedAt = e.clock()

	switch step.Type {
	case models.NodeTypeStart:
		updated.Status = models.CaseStatusNew
	case models.NodeTypeEnd:
		updated.Status = models.CaseStatusClosed
	case models.NodeTypeTask, models.NodeTypeGateway, models.NodeTypeTimer, models.NodeTypeMessage:
		updated.Status = models.CaseStatusInProgress
	}

	e.logger.Info("Step set manually", "case_id", c.ID, "step_id", stepID, "status", updated.Status)

	return updated, nil
}
