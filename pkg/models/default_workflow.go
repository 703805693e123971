package models

// DefaultDocument returns a fresh copy of the workflow every new app starts with:
// triage, a manager approval that branches to investigation or rejection, and closure.
func DefaultDocument() Document {
	return Document{
		Nodes: []Node{
			{ID: "start", Type: NodeTypeStart, Label: "Case Created", Position: Position{X: 50, Y: 150}},
			{
				ID:       "triage",
				Type:     NodeTypeTask,
				Label:    "Initial Triage",
				Position: Position{X: 250, Y: 150},
				Form: &NodeForm{
					Mode: FormModeFill,
					Fields: []FormField{
						{ID: "triage-notes", Label: "Triage Notes", Type: FieldTypeTextarea, Required: true},
						{ID: "is-critical", Label: "Is Critical?", Type: FieldTypeCheckbox},
					},
				},
			},
			{
				ID:       "approval",
				Type:     NodeTypeTask,
				Label:    "Manager Approval",
				Position: Position{X: 450, Y: 150},
				Form: &NodeForm{
					Mode: FormModeApproval,
					Fields: []FormField{
						{
							ID:            "readonly-triage-notes",
							Label:         "Triage Notes",
							Type:          FieldTypeReadonlyText,
							SourceFieldID: "triage-notes",
						},
						{
							ID:            "readonly-is-critical",
							Label:         "Is Critical?",
							Type:          FieldTypeReadonlyText,
							SourceFieldID: "is-critical",
						},
					},
				},
			},
			{
				ID:       "investigate",
				Type:     NodeTypeTask,
				Label:    "Further Investigation",
				Position: Position{X: 650, Y: 50},
				Form: &NodeForm{
					Mode: FormModeFill,
					Fields: []FormField{
						{ID: "investigation-summary", Label: "Investigation Summary", Type: FieldTypeTextarea, Required: true},
					},
				},
			},
			{ID: "rejected", Type: NodeTypeEnd, Label: "Close as Rejected", Position: Position{X: 650, Y: 250}},
			{ID: "end", Type: NodeTypeEnd, Label: "Case Closed", Position: Position{X: 850, Y: 50}},
		},
		Edges: []Edge{
			{ID: "e-start-triage", Source: "start", Target: "triage"},
			{ID: "e-triage-approval", Source: "triage", Target: "approval"},
			{ID: "e-approval-investigate", Source: "approval", Target: "investigate"},
			{ID: "e-approval-rejected", Source: "approval", Target: "rejected"},
			{ID: "e-investigate-end", Source: "investigate", Target: "end"},
		},
	}
}
