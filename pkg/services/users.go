package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/dukex/caseflow/pkg/models"
	"github.com/dukex/caseflow/pkg/persistence"
	"github.com/google/uuid"
)

// Users is the workspace directory: who can act on cases and be assigned to steps.
type Users struct {
	*base

	logger *slog.Logger
}

type InviteUserInput struct {
	Email string          `validate:"required,email"`
	Role  models.UserRole `validate:"omitempty,oneof=Admin Member"`
	Name  string
}

type UpdateUserInput struct {
	Name *string
	Role *models.UserRole
}

// Resolve returns the user with id.
func (s *Users) Resolve(ctx context.Context, id string) (*models.User, error) {
	user, err := s.persistence.UserRepository().GetByID(ctx, id)
	if err != nil {
		return nil, persistence.NewUserError("resolve_user", id, err)
	}

	if user == nil {
		return nil, persistence.NewUserError("resolve_user", id, persistence.ErrUserNotFound)
	}

	return user, nil
}

func (s *Users) List(ctx context.Context) ([]*models.User, error) {
	users, err := s.persistence.UserRepository().GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	return users, nil
}

// Invite adds a user. Emails are unique regardless of case; the name defaults
// to the local part of the email and the role to Member.
func (s *Users) Invite(ctx context.Context, in InviteUserInput) (*models.User, error) {
	in.Email = strings.TrimSpace(in.Email)

	err := s.validate.Struct(in)
	if err != nil {
		return nil, NewValidationError("invite_user", "invalid_user", err.Error(), ErrInvalidRequest)
	}

	unlock := s.locks.Lock("user-email:" + strings.ToLower(in.Email))
	defer unlock()

	existing, err := s.persistence.UserRepository().GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if existing != nil {
		return nil, &ServiceError{Op: "invite_user", Code: "duplicate_email", Err: ErrDuplicateEmail}
	}

	name := strings.TrimSpace(in.Name)
	if name == "" {
		name, _, _ = strings.Cut(in.Email, "@")
	}

	role := in.Role
	if role == "" {
		role = models.UserRoleMember
	}

	user := &models.User{
		ID:        "user-" + uuid.NewString(),
		Name:      name,
		Email:     in.Email,
		AvatarURL: "https://ui-avatars.com/api/?name=" + url.QueryEscape(name),
		Role:      role,
	}

	err = s.persistence.UserRepository().Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	s.logger.InfoContext(ctx, "User invited", "user_id", user.ID, "role", user.Role)

	return user, nil
}

func (s *Users) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	unlock := s.locks.Lock(id)
	defer unlock()

	user, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, NewValidationError("update_user", "invalid_user", "Name is required", ErrInvalidRequest)
		}

		user.Name = name
	}

	if in.Role != nil {
		if !in.Role.Valid() {
			return nil, NewValidationError("update_user", "invalid_user", fmt.Sprintf("unknown role %q", *in.Role), ErrInvalidRequest)
		}

		user.Role = *in.Role
	}

	err = s.persistence.UserRepository().Save(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	return user, nil
}

// Delete removes a user. Nobody can delete themselves. Cases and steps
// assigned to the user keep the id.
func (s *Users) Delete(ctx context.Context, actingUserID, id string) error {
	if actingUserID == id {
		return &ServiceError{Op: "delete_user", Code: "self_delete", Err: ErrCannotDeleteSelf}
	}

	unlock := s.locks.Lock(id)
	defer unlock()

	_, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}

	err = s.persistence.UserRepository().Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	s.logger.InfoContext(ctx, "User deleted", "user_id", id, "by", actingUserID)

	return nil
}
