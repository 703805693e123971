package board_test

import (
	"testing"

	"github.com/dukex/caseflow/pkg/board"
	"github.com/dukex/caseflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(nodes []models.Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.ID)
	}

	return out
}

func caseOn(id, step string, status models.CaseStatus) models.Case {
	c := models.Case{ID: id, Status: status, Priority: models.CasePriorityMedium}
	c.AtStep(step)

	return c
}

func TestDeriveColumns_DefaultWorkflow(t *testing.T) {
	columns := board.DeriveColumns(models.DefaultDocument())

	assert.Equal(t, []string{"start", "triage", "approval", "investigate", "rejected", "end"}, ids(columns))
}

func TestDeriveColumns_SkipsModelingNodesAndIsStable(t *testing.T) {
	doc := models.Document{Nodes: []models.Node{
		{ID: "b", Type: models.NodeTypeTask, Position: models.Position{X: 100}},
		{ID: "gw", Type: models.NodeTypeGateway, Position: models.Position{X: 50}},
		{ID: "a", Type: models.NodeTypeTask, Position: models.Position{X: 100}},
		{ID: "s", Type: models.NodeTypeStart, Position: models.Position{X: 0}},
		{ID: "timer", Type: models.NodeTypeTimer, Position: models.Position{X: 10}},
		{ID: "msg", Type: models.NodeTypeMessage, Position: models.Position{X: 10}},
	}}

	assert.Equal(t, []string{"s", "b", "a"}, ids(board.DeriveColumns(doc)))
}

func TestGroupCasesByColumn(t *testing.T) {
	cases := []models.Case{
		caseOn("c1", "triage", models.CaseStatusInProgress),
		caseOn("c2", "triage", models.CaseStatusInProgress),
		caseOn("c3", "end", models.CaseStatusClosed),
		caseOn("c4", "deleted-step", models.CaseStatusInProgress),
		{ID: "c5", Status: models.CaseStatusNew},
	}

	columns := board.Build(models.DefaultDocument(), cases)
	require.Len(t, columns, 6)

	byNode := map[string][]string{}
	total := 0

	for _, col := range columns {
		for _, c := range col.Cases {
			byNode[col.Node.ID] = append(byNode[col.Node.ID], c.ID)
			total++
		}
	}

	assert.Equal(t, []string{"c1", "c2"}, byNode["triage"])
	assert.Equal(t, []string{"c3"}, byNode["end"])
	assert.Equal(t, 3, total, "cases on unknown steps are omitted")
	assert.NotNil(t, columns[0].Cases)
}

func TestGroupCasesByStatus(t *testing.T) {
	groups := board.GroupCasesByStatus([]models.Case{
		caseOn("c1", "triage", models.CaseStatusInProgress),
		caseOn("c2", "end", models.CaseStatusClosed),
		caseOn("c3", "start", models.CaseStatusNew),
	})

	require.Len(t, groups, 4)
	assert.Equal(t, models.CaseStatusNew, groups[0].Status)
	assert.Equal(t, "c3", groups[0].Cases[0].ID)
	assert.Equal(t, "c1", groups[1].Cases[0].ID)
	assert.Empty(t, groups[2].Cases)
	assert.Equal(t, "c2", groups[3].Cases[0].ID)
}

func TestSummary(t *testing.T) {
	urgent := caseOn("c3", "triage", models.CaseStatusInReview)
	urgent.Priority = models.CasePriorityUrgent

	counts := board.Summary([]models.Case{
		caseOn("c1", "triage", models.CaseStatusInProgress),
		caseOn("c2", "end", models.CaseStatusClosed),
		urgent,
	})

	assert.Equal(t, 3, counts.Total)
	assert.Equal(t, 2, counts.Open)
	assert.Equal(t, 1, counts.ByStatus[models.CaseStatusClosed])
	assert.Equal(t, 2, counts.ByPriority[models.CasePriorityMedium])
	assert.Equal(t, 1, counts.ByPriority[models.CasePriorityUrgent])
}
