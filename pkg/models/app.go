package models

import "time"

// App is a tenant: a named workspace that owns one workflow and its cases.
type App struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"       validate:"required,min=1"`
	Icon       string    `json:"icon"`
	ThemeColor string    `json:"themeColor"`
	Workflow   Document  `json:"workflow"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Theme colors offered when creating an app.
var ThemeColors = []string{"blue", "purple", "green", "red", "orange", "teal", "pink"}
