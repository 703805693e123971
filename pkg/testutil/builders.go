// Package testutil provides test data builders for workflows, cases and users.
package testutil

import (
	"fmt"
	"time"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/google/uuid"
)

// CreateTestNode creates a Task node with an empty FILL form that can be overridden.
func CreateTestNode(id string, overrides ...func(*models.Node)) models.Node {
	node := models.Node{
		ID:       id,
		Type:     models.NodeTypeTask,
		Label:    "Test " + id,
		Position: models.Position{X: 100, Y: 100},
		Form:     &models.NodeForm{Mode: models.FormModeFill, Fields: []models.FormField{}},
	}

	for _, override := range overrides {
		override(&node)
	}

	return node
}

// WithType changes the node type. Non task nodes lose their form.
func WithType(nodeType models.NodeType) func(*models.Node) {
	return func(n *models.Node) {
		n.Type = nodeType
		if nodeType != models.NodeTypeTask {
			n.Form = nil
		}
	}
}

// WithAssignee sets the node assignee.
func WithAssignee(userID string) func(*models.Node) {
	return func(n *models.Node) {
		n.AssigneeID = userID
	}
}

// WithFields replaces the node form fields.
func WithFields(mode models.FormMode, fields ...models.FormField) func(*models.Node) {
	return func(n *models.Node) {
		n.Form = &models.NodeForm{Mode: mode, Fields: fields}
	}
}

// LinearDocument chains a Start node, one Task per id and an End node.
func LinearDocument(taskIDs ...string) models.Document {
	doc := models.Document{
		Nodes: []models.Node{CreateTestNode("start", WithType(models.NodeTypeStart))},
	}

	for i, id := range taskIDs {
		doc.Nodes = append(doc.Nodes, CreateTestNode(id, func(n *models.Node) {
			n.X = float64(200 * (i + 1))
		}))
	}

	doc.Nodes = append(doc.Nodes, CreateTestNode("end", WithType(models.NodeTypeEnd), func(n *models.Node) {
		n.X = float64(200 * (len(taskIDs) + 1))
	}))

	for i := 0; i+1 < len(doc.Nodes); i++ {
		source, target := doc.Nodes[i].ID, doc.Nodes[i+1].ID
		doc.Edges = append(doc.Edges, models.Edge{
			ID:     fmt.Sprintf("e-%s-%s", source, target),
			Source: source,
			Target: target,
		})
	}

	return doc
}

// CreateTestCase creates an open case on the start step that can be overridden.
func CreateTestCase(appID string, overrides ...func(*models.Case)) *models.Case {
	now := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	c := &models.Case{
		ID:              "case-" + uuid.NewString(),
		AppID:           appID,
		Title:           "Test case",
		Description:     "Something needs attention",
		Status:          models.CaseStatusNew,
		Priority:        models.CasePriorityMedium,
		Client:          "Test Client",
		Tags:            []string{},
		CreatedAt:       now,
		UpdatedAt:       now,
		WorkflowHistory: []models.WorkflowEvent{},
		FormData:        map[string]any{},
	}
	c.AtStep("start")

	for _, override := range overrides {
		override(c)
	}

	return c
}

// AtStep places the case on stepID.
func AtStep(stepID string) func(*models.Case) {
	return func(c *models.Case) {
		c.AtStep(stepID)
	}
}

// WithHistory records completions of stepIDs by userID, one minute apart.
func WithHistory(userID string, stepIDs ...string) func(*models.Case) {
	return func(c *models.Case) {
		for i, id := range stepIDs {
			c.WorkflowHistory = append(c.WorkflowHistory, models.WorkflowEvent{
				StepID:      id,
				UserID:      userID,
				CompletedAt: c.CreatedAt.Add(time.Duration(i+1) * time.Minute),
			})
		}
	}
}

// CreateTestApp creates an app owning doc.
func CreateTestApp(doc models.Document) *models.App {
	return &models.App{
		ID:         "app-" + uuid.NewString(),
		Name:       "Test App",
		Icon:       "📁",
		ThemeColor: "blue",
		Workflow:   doc,
	}
}

// CreateTestUser creates a Member named after id.
func CreateTestUser(id string) models.User {
	return models.User{
		ID:    id,
		Name:  "User " + id,
		Email: id + "@example.com",
		Role:  models.UserRoleMember,
	}
}
