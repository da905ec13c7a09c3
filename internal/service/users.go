package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/technotes/server/internal/events"
	"github.com/technotes/server/internal/hash"
	"github.com/technotes/server/internal/logging"
	"github.com/technotes/server/internal/models"
	"github.com/technotes/server/internal/repo"
)

type UserService struct {
	Repo   *repo.GormRepo
	Events *events.Producer
}

type UpdateUserInput struct {
	Username string
	Roles    []string
	Active   bool
	// Password is optional; empty leaves the stored hash untouched.
	Password string
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.Repo.ListUsers(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: no user with id %s", ErrNotFound, id)
		}
		return nil, err
	}
	return user, nil
}

func (s *UserService) Create(ctx context.Context, username, password string, roles []string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.create")

	if username == "" || password == "" || len(roles) == 0 {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	if err := s.checkDuplicate(ctx, username, ""); err != nil {
		return nil, err
	}

	pwHash, err := hash.Password(password)
	if err != nil {
		return nil, err
	}
	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Roles:        roles,
		Active:       true,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return nil, err
	}

	l.Info("user_created", "user_id", user.ID, "username", user.Username)
	return &user, nil
}

func (s *UserService) Update(ctx context.Context, id string, in UpdateUserInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.update", "user_id", id)

	if id == "" || in.Username == "" || len(in.Roles) == 0 {
		return nil, fmt.Errorf("%w: all fields except password are required", ErrValidation)
	}

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}

	// The rename must not collide with another user, compared
	// case-insensitively like at creation.
	if err := s.checkDuplicate(ctx, in.Username, id); err != nil {
		return nil, err
	}

	user.Username = in.Username
	user.Roles = in.Roles
	user.Active = in.Active
	if in.Password != "" {
		pwHash, err := hash.Password(in.Password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	l.Info("user_updated", "username", user.Username)
	return user, nil
}

// Delete refuses while notes still reference the user: deletion is
// blocked, never cascaded.
func (s *UserService) Delete(ctx context.Context, id string) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.delete", "user_id", id)

	if id == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	n, err := s.Repo.CountNotesForUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("%w: user has assigned notes", ErrConflict)
	}

	user, err := s.Repo.FindUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, fmt.Errorf("%w: user not found", ErrNotFound)
		}
		return nil, err
	}

	if err := s.Repo.DeleteUser(ctx, id); err != nil {
		return nil, err
	}

	if err := s.Events.Publish(ctx, events.TopicUserEvents, user.Username, map[string]any{
		"type":     "user_deleted",
		"user_id":  user.ID,
		"username": user.Username,
	}); err != nil {
		l.Error("event_publish_failed", "error", err)
	}
	l.Info("user_deleted", "username", user.Username)
	return user, nil
}

func (s *UserService) checkDuplicate(ctx context.Context, username, allowID string) error {
	existing, err := s.Repo.FindByUsername(ctx, username, false)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != allowID {
		return fmt.Errorf("%w: duplicate username", ErrConflict)
	}
	return nil
}
