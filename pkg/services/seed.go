package services

import (
	"context"
	"fmt"
	"time"

	"github.com/dukex/caseflow/pkg/models"
)

func seedTime(value string) time.Time {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		panic(err)
	}

	return t
}

func seedApps() []models.App {
	apps := []models.App{
		{ID: "app-1", Name: "Support Desk", Icon: "📞", ThemeColor: "blue"},
		{ID: "app-2", Name: "Dev Projects", Icon: "💻", ThemeColor: "purple"},
		{ID: "app-3", Name: "HR Onboarding", Icon: "👥", ThemeColor: "green"},
	}

	created := seedTime("2024-07-01T09:00:00Z")
	for i := range apps {
		apps[i].Workflow = models.DefaultDocument()
		apps[i].CreatedAt = created.Add(time.Duration(i) * time.Minute)
		apps[i].UpdatedAt = apps[i].CreatedAt
	}

	return apps
}

func seedUsers() []models.User {
	return []models.User{
		{ID: "user-1", Name: "Alina Petrova", Email: "alina.petrova@example.com", Role: models.UserRoleAdmin, AvatarURL: "https://picsum.photos/id/1027/100/100"},
		{ID: "user-2", Name: "Ben Carter", Email: "ben.carter@example.com", Role: models.UserRoleMember, AvatarURL: "https://picsum.photos/id/1005/100/100"},
		{ID: "user-3", Name: "Chen Lin", Email: "chen.lin@example.com", Role: models.UserRoleMember, AvatarURL: "https://picsum.photos/id/1011/100/100"},
	}
}

type seedCase struct {
	models.Case

	step string
}

func seedCases() []models.Case {
	history := func(entries ...string) []models.WorkflowEvent {
		events := []models.WorkflowEvent{}
		for i := 0; i+2 < len(entries); i += 3 {
			events = append(events, models.WorkflowEvent{StepID: entries[i], UserID: entries[i+1], CompletedAt: seedTime(entries[i+2])})
		}

		return events
	}

	raw := []seedCase{
		{
			Case: models.Case{
				ID:          "case-1",
				AppID:       "app-1",
				Title:       "Client Portal Login Failure on Mobile",
				Description: "Users on iOS devices are unable to log in to the client portal. The login button is unresponsive. This issue appears to be specific to Safari on iOS 17 and later. Android devices and desktop browsers are unaffected.",
				Status:      models.CaseStatusNew,
				Priority:    models.CasePriorityHigh,
				AssigneeID:  "user-1",
				Client:      "Innovate Corp",
				Tags:        []string{"bug", "mobile", "portal"},
				CreatedAt:   seedTime("2024-07-28T10:00:00Z"),
				FormData:    map[string]any{},
			},
			step: "start",
		},
		{
			Case: models.Case{
				ID:          "case-2",
				AppID:       "app-2",
				Title:       "Deploy Staging Environment for Q3 Features",
				Description: "A new staging environment is required to test the upcoming Q3 feature releases. This includes provisioning new servers, configuring the database, and setting up CI/CD pipelines.",
				Status:      models.CaseStatusNew,
				Priority:    models.CasePriorityMedium,
				AssigneeID:  "user-2",
				Client:      "Internal",
				Tags:        []string{"devops", "infrastructure"},
				CreatedAt:   seedTime("2024-07-28T11:30:00Z"),
				FormData:    map[string]any{},
			},
			step: "start",
		},
		{
			Case: models.Case{
				ID:              "case-3",
				AppID:           "app-1",
				Title:           "API Rate Limiting Investigation",
				Description:     `The primary customer API is experiencing intermittent 429 "Too Many Requests" errors. We need to investigate the source of the traffic spikes and evaluate if the current rate limits are appropriate.`,
				Status:          models.CaseStatusInProgress,
				Priority:        models.CasePriorityUrgent,
				AssigneeID:      "user-3",
				Client:          "Apex Solutions",
				Tags:            []string{"api", "performance", "investigation"},
				CreatedAt:       seedTime("2024-07-27T14:00:00Z"),
				WorkflowHistory: history("start", "user-2", "2024-07-27T13:00:00Z"),
				FormData:        map[string]any{},
			},
			step: "triage",
		},
		{
			Case: models.Case{
				ID:              "case-4",
				AppID:           "app-3",
				Title:           "Onboard New Marketing Team Member",
				Description:     "A new marketing specialist, Jane Doe, is starting next Monday. Prepare their hardware, create necessary accounts (Google Workspace, Slack, etc.), and schedule introductory meetings.",
				Status:          models.CaseStatusInProgress,
				Priority:        models.CasePriorityLow,
				AssigneeID:      "user-2",
				Client:          "Internal",
				Tags:            []string{"onboarding", "hr"},
				CreatedAt:       seedTime("2024-07-26T09:00:00Z"),
				WorkflowHistory: history("start", "user-1", "2024-07-26T08:00:00Z"),
				FormData: map[string]any{
					"triage-notes": "New hire setup requested by HR. Standard hardware and software access needed.",
					"is-critical":  false,
				},
			},
			step: "approval",
		},
		{
			Case: models.Case{
				ID:              "case-5",
				AppID:           "app-3",
				Title:           "Review and Approve Q2 Financial Report",
				Description:     "The Q2 financial report has been compiled and is ready for management review. Please verify all figures and provide approval by EOD Friday.",
				Status:          models.CaseStatusInReview,
				Priority:        models.CasePriorityHigh,
				AssigneeID:      "user-1",
				Client:          "Internal",
				Tags:            []string{"finance", "report", "review"},
				CreatedAt:       seedTime("2024-07-25T16:45:00Z"),
				WorkflowHistory: history("start", "user-2", "2024-07-25T15:00:00Z"),
				FormData: map[string]any{
					"triage-notes": "Finance team has submitted the Q2 report for final sign-off.",
					"is-critical":  true,
				},
			},
			step: "approval",
		},
		{
			Case: models.Case{
				ID:          "case-6",
				AppID:       "app-2",
				Title:       "Update Third-Party SSL Certificate",
				Description: "The SSL certificate for *.api.clientdomain.com is expiring in 14 days. A new certificate has been procured and needs to be deployed across all production load balancers.",
				Status:      models.CaseStatusClosed,
				Priority:    models.CasePriorityMedium,
				AssigneeID:  "user-3",
				Client:      "Global Tech",
				Tags:        []string{"security", "ssl", "completed"},
				CreatedAt:   seedTime("2024-07-15T12:00:00Z"),
				WorkflowHistory: history(
					"start", "user-2", "2024-07-15T10:00:00Z",
					"triage", "user-2", "2024-07-15T11:00:00Z",
				),
				FormData: map[string]any{
					"triage-notes": "SSL cert expiring soon. Coordinated with vendor.",
					"is-critical":  true,
				},
			},
			step: "end",
		},
	}

	cases := make([]models.Case, 0, len(raw))

	for _, r := range raw {
		c := r.Case.Clone()
		c.AtStep(r.step)
		c.UpdatedAt = c.CreatedAt
		cases = append(cases, c)
	}

	return cases
}

// Seed loads the demo workspace: three apps on the default workflow, three
// users and six cases. It does nothing when any app already exists.
func (s *Services) Seed(ctx context.Context) (bool, error) {
	repos := s.base.persistence

	existing, err := repos.AppRepository().GetAll(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to check for existing apps: %w", err)
	}

	if len(existing) > 0 {
		return false, nil
	}

	for _, u := range seedUsers() {
		err := repos.UserRepository().Save(ctx, &u)
		if err != nil {
			return false, fmt.Errorf("failed to seed user %s: %w", u.ID, err)
		}
	}

	for _, a := range seedApps() {
		err := repos.AppRepository().Save(ctx, &a)
		if err != nil {
			return false, fmt.Errorf("failed to seed app %s: %w", a.ID, err)
		}
	}

	for _, c := range seedCases() {
		err := repos.CaseRepository().Save(ctx, &c)
		if err != nil {
			return false, fmt.Errorf("failed to seed case %s: %w", c.ID, err)
		}
	}

	s.base.logger.InfoContext(ctx, "Demo data seeded")

	return true, nil
}
