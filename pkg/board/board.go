// Package board derives the kanban and list projections of an app's cases.
package board

import (
	"slices"

	"github.com/dukex/caseflow/pkg/models"
)

// Column is a board column: a workflow step and the cases sitting on it.
type Column struct {
	Node  models.Node   `json:"node"`
	Cases []models.Case `json:"cases"`
}

// DeriveColumns returns the Start, Task and End nodes ordered left to right.
// Nodes sharing an X coordinate keep their document order.
func DeriveColumns(doc models.Document) []models.Node {
	columns := make([]models.Node, 0, len(doc.Nodes))

	for _, n := range doc.Nodes {
		if n.Type.Board() {
			columns = append(columns, n)
		}
	}

	slices.SortStableFunc(columns, func(a, b models.Node) int {
		switch {
		case a.X < b.X:
			return -1
		case a.X > b.X:
			return 1
		default:
			return 0
		}
	})

	return columns
}

// GroupCasesByColumn places each case in the column of its current step.
// Cases on a step without a column are left out.
func GroupCasesByColumn(cases []models.Case, columns []models.Node) []Column {
	grouped := make([]Column, len(columns))
	index := make(map[string]int, len(columns))

	for i, n := range columns {
		grouped[i] = Column{Node: n, Cases: []models.Case{}}
		index[n.ID] = i
	}

	for _, c := range cases {
		if i, ok := index[c.CurrentStep()]; ok {
			grouped[i].Cases = append(grouped[i].Cases, c)
		}
	}

	return grouped
}

// Build returns the full board of a document.
func Build(doc models.Document, cases []models.Case) []Column {
	return GroupCasesByColumn(cases, DeriveColumns(doc))
}

// StatusGroup is one section of the list view.
type StatusGroup struct {
	Status models.CaseStatus `json:"status"`
	Cases  []models.Case     `json:"cases"`
}

// GroupCasesByStatus groups cases for the list view in StatusOrder.
func GroupCasesByStatus(cases []models.Case) []StatusGroup {
	order := models.AllCaseStatuses()
	groups := make([]StatusGroup, len(order))

	for i, s := range order {
		groups[i] = StatusGroup{Status: s, Cases: []models.Case{}}
	}

	for _, c := range cases {
		if i := slices.Index(order, c.Status); i >= 0 {
			groups[i].Cases = append(groups[i].Cases, c)
		}
	}

	return groups
}

// Counts summarizes an app's cases for the launcher.
type Counts struct {
	Total      int                         `json:"total"`
	Open       int                         `json:"open"`
	ByStatus   map[models.CaseStatus]int   `json:"byStatus"`
	ByPriority map[models.CasePriority]int `json:"byPriority"`
}

func Summary(cases []models.Case) Counts {
	counts := Counts{
		ByStatus:   map[models.CaseStatus]int{},
		ByPriority: map[models.CasePriority]int{},
	}

	for _, c := range cases {
		counts.Total++
		counts.ByStatus[c.Status]++
		counts.ByPriority[c.Priority]++

		if c.Status != models.CaseStatusClosed {
			counts.Open++
		}
	}

	return counts
}
