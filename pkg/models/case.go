package models

import (
	"maps"
	"slices"
	"time"
)

// CaseStatus is the coarse lifecycle state shown in list views.
type CaseStatus string

const (
	CaseStatusNew        CaseStatus = "New"
	CaseStatusInProgress CaseStatus = "In Progress"
	CaseStatusInReview   CaseStatus = "In Review"
	CaseStatusClosed     CaseStatus = "Closed"
)

// AllCaseStatuses returns the statuses in list view order.
func AllCaseStatuses() []CaseStatus {
	return []CaseStatus{CaseStatusNew, CaseStatusInProgress, CaseStatusInReview, CaseStatusClosed}
}

func (s CaseStatus) Valid() bool {
	return slices.Contains(AllCaseStatuses(), s)
}

type CasePriority string

const (
	CasePriorityLow    CasePriority = "Low"
	CasePriorityMedium CasePriority = "Medium"
	CasePriorityHigh   CasePriority = "High"
	CasePriorityUrgent CasePriority = "Urgent"
)

func AllCasePriorities() []CasePriority {
	return []CasePriority{CasePriorityLow, CasePriorityMedium, CasePriorityHigh, CasePriorityUrgent}
}

func (p CasePriority) Valid() bool {
	return slices.Contains(AllCasePriorities(), p)
}

// WorkflowEvent records the completion of a step.
type WorkflowEvent struct {
	StepID      string    `json:"stepId"`
	UserID      string    `json:"userId"`
	CompletedAt time.Time `json:"completedAt"`
}

// Case is a work item travelling through its app's workflow.
type Case struct {
	ID                    string          `json:"id"`
	AppID                 string          `json:"appId"                 validate:"required"`
	Title                 string          `json:"title"                 validate:"required"`
	Description           string          `json:"description"           validate:"required"`
	Status                CaseStatus      `json:"status"                validate:"required"`
	Priority              CasePriority    `json:"priority"              validate:"required"`
	AssigneeID            string          `json:"assigneeId,omitempty"`
	Client                string          `json:"client"                validate:"required"`
	Tags                  []string        `json:"tags"`
	CreatedAt             time.Time       `json:"createdAt"`
	UpdatedAt             time.Time       `json:"updatedAt"`
	CurrentWorkflowStepID *string         `json:"currentWorkflowStepId"`
	WorkflowHistory       []WorkflowEvent `json:"workflowHistory"`
	FormData              map[string]any  `json:"formData"`
}

// CurrentStep returns the id of the step the case sits on, or "" when it has none.
func (c Case) CurrentStep() string {
	if c.CurrentWorkflowStepID == nil {
		return ""
	}

	return *c.CurrentWorkflowStepID
}

// AtStep points the case at the given step.
func (c *Case) AtStep(stepID string) {
	c.CurrentWorkflowStepID = &stepID
}

// Completed reports whether the step appears in the workflow history.
func (c Case) Completed(stepID string) bool {
	return slices.ContainsFunc(c.WorkflowHistory, func(e WorkflowEvent) bool {
		return e.StepID == stepID
	})
}

// Clone returns a deep copy of the case. Form data values are copied one level deep.
func (c Case) Clone() Case {
	if c.CurrentWorkflowStepID != nil {
		c.AtStep(*c.CurrentWorkflowStepID)
	}

	c.Tags = slices.Clone(c.Tags)
	c.WorkflowHistory = slices.Clone(c.WorkflowHistory)
	c.FormData = maps.Clone(c.FormData)

	if c.Tags == nil {
		c.Tags = []string{}
	}

	if c.WorkflowHistory == nil {
		c.WorkflowHistory = []WorkflowEvent{}
	}

	if c.FormData == nil {
		c.FormData = map[string]any{}
	}

	return c
}
