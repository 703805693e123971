package models

import "slices"

type UserRole string

const (
	UserRoleAdmin  UserRole = "Admin"
	UserRoleMember UserRole = "Member"
)

func (r UserRole) Valid() bool {
	return slices.Contains([]UserRole{UserRoleAdmin, UserRoleMember}, r)
}

// User is a member of the workspace who can be assigned to steps and cases.
type User struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"      validate:"required"`
	Email     string   `json:"email"     validate:"required,email"`
	AvatarURL string   `json:"avatarUrl"`
	Role      UserRole `json:"role"      validate:"required"`
}
