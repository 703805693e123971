package progression

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/google/uuid"
)

// StepState is the progress state of one step for one case.
type StepState string

const (
	StepInProgress StepState = "In Progress"
	StepCompleted  StepState = "Completed"
	StepPending    StepState = "Pending"
)

// StepProgress pairs a step with its state for a given case.
type StepProgress struct {
	Node  models.Node `json:"node"`
	State StepState   `json:"state"`
}

// StepStatus reports how far the case has come relative to nodeID. It is
// derived on every call and never stored.
func StepStatus(c models.Case, nodeID string) StepState {
	if c.CurrentStep() == nodeID {
		return StepInProgress
	}

	if c.Completed(nodeID) {
		return StepCompleted
	}

	return StepPending
}

// Progress returns the state of every node of the document, in document order.
func Progress(doc models.Document, c models.Case) []StepProgress {
	progress := make([]StepProgress, 0, len(doc.Nodes))

	for _, n := range doc.Nodes {
		progress = append(progress, StepProgress{Node: n, State: StepStatus(c, n.ID)})
	}

	return progress
}

// EdgeProgress reports, per edge id, whether the case already travelled it:
// the source was completed and the target is completed or current.
func EdgeProgress(doc models.Document, c models.Case) map[string]bool {
	travelled := make(map[string]bool, len(doc.Edges))

	for _, e := range doc.Edges {
		target := StepStatus(c, e.Target)
		travelled[e.ID] = c.Completed(e.Source) && target != StepPending
	}

	return travelled
}

// NewCaseInput carries the fields of the new case form.
type NewCaseInput struct {
	AppID       string
	Title       string
	Description string
	Client      string
	Priority    models.CasePriority
	AssigneeID  string
	Tags        string
}

// ParseTags splits a comma separated tag list, dropping blanks.
func ParseTags(raw string) []string {
	tags := []string{}

	for _, tag := range strings.Split(raw, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}

	return tags
}

// NewCase creates a case positioned on the document's Start node. A document
// without a Start node yields a case with no current step.
func (e *Engine) NewCase(doc models.Document, in NewCaseInput) (models.Case, error) {
	required := []struct {
		field string
		label string
		value string
	}{
		{"title", "Title", in.Title},
		{"description", "Description", in.Description},
		{"client", "Client", in.Client},
	}

	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return models.Case{}, &models.ValidationError{Field: r.field, Message: fmt.Sprintf("%s is required", r.label)}
		}
	}

	if in.Priority == "" {
		in.Priority = models.CasePriorityMedium
	}

	if !in.Priority.Valid() {
		return models.Case{}, &models.ValidationError{Field: "priority", Message: fmt.Sprintf("unknown priority %q", in.Priority)}
	}

	now := e.clock()

	c := models.Case{
		ID:              caseID(now),
		AppID:           in.AppID,
		Title:           strings.TrimSpace(in.Title),
		Description:     strings.TrimSpace(in.Description),
		Status:          models.CaseStatusNew,
		Priority:        in.Priority,
		AssigneeID:      in.AssigneeID,
		Client:          strings.TrimSpace(in.Client),
		Tags:            ParseTags(in.Tags),
		CreatedAt:       now,
		UpdatedAt:       now,
		WorkflowHistory: []models.WorkflowEvent{},
		FormData:        map[string]any{},
	}

	if start, ok := doc.StartNode(); ok {
		c.AtStep(start.ID)
	}

	return c, nil
}

func caseID(now time.Time) string {
	return fmt.Sprintf("case-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}
