package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/technotes/server/internal/events"
	"github.com/technotes/server/internal/hash"
	"github.com/technotes/server/internal/logging"
	"github.com/technotes/server/internal/models"
	"github.com/technotes/server/internal/repo"
	"github.com/technotes/server/internal/tokens"
)

// AuthService runs the session lifecycle: credential verification, token
// pair issuance, refresh and logout. It keeps no per-session state; the
// credential store is the only shared resource it touches.
type AuthService struct {
	Repo   *repo.GormRepo
	Tokens *tokens.Issuer
	Events *events.Producer
}

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	AccessExp    time.Time
	RefreshExp   time.Time
}

// Register creates a credentialed user. Duplicate detection is
// case-insensitive, unlike the login lookup.
func (s *AuthService) Register(ctx context.Context, username, password string, roles []string) error {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	if username == "" || password == "" || len(roles) == 0 {
		return fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	if _, err := s.Repo.FindByUsername(ctx, username, false); err == nil {
		l.Warn("register_conflict", "username", username)
		return fmt.Errorf("%w: user already exists", ErrConflict)
	} else if !errors.Is(err, repo.ErrNotFound) {
		return err
	}

	pwHash, err := hash.Password(password)
	if err != nil {
		return err
	}

	user := models.User{
		Username:     username,
		PasswordHash: pwHash,
		Roles:        roles,
		Active:       true,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		return err
	}

	if err := s.publish(ctx, "user_registered", &user); err != nil {
		l.Error("event_publish_failed", "error", err)
	}
	l.Info("user_registered", "user_id", user.ID)
	return nil
}

// Login verifies credentials and issues a token pair. Absent user, wrong
// password and inactive account are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login", "username", username)

	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}

	user, err := s.Repo.FindByUsername(ctx, username, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("login_failed")
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	if !user.Active || !hash.Check(user.PasswordHash, password) {
		l.Warn("login_failed")
		return nil, ErrUnauthorized
	}

	accessToken, accessExp, err := s.Tokens.IssueAccessToken(user.ID, user.Username, user.Roles)
	if err != nil {
		return nil, err
	}
	refreshToken, refreshExp, err := s.Tokens.IssueRefreshToken(user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	if err := s.publish(ctx, "user_logged_in", user); err != nil {
		l.Error("event_publish_failed", "error", err)
	}
	l.Info("login_successful", "user_id", user.ID)

	return &LoginResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		AccessExp:    accessExp,
		RefreshExp:   refreshExp,
	}, nil
}

// Refresh trades a valid refresh token for a fresh access token carrying
// the user's current roles. Any verification failure is ErrForbidden; a
// verified token naming a vanished or deactivated user is ErrUnauthorized.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.Tokens.VerifyRefresh(refreshToken)
	if err != nil {
		l.Warn("refresh_rejected", "error", err)
		return "", fmt.Errorf("%w: %v", ErrForbidden, err)
	}

	// Lookup goes by the username claim, case-sensitive like login itself.
	user, err := s.Repo.FindByUsername(ctx, claims.Username, true)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_unknown_user", "username", claims.Username)
			return "", ErrUnauthorized
		}
		return "", err
	}
	if !user.Active {
		l.Warn("refresh_inactive_user", "user_id", user.ID)
		return "", ErrUnauthorized
	}

	accessToken, _, err := s.Tokens.IssueAccessToken(user.ID, user.Username, user.Roles)
	if err != nil {
		return "", err
	}

	l.Info("refresh_successful", "user_id", user.ID)
	return accessToken, nil
}

func (s *AuthService) publish(ctx context.Context, eventType string, user *models.User) error {
	return s.Events.Publish(ctx, events.TopicUserEvents, user.Username, map[string]any{
		"type":     eventType,
		"user_id":  user.ID,
		"username": user.Username,
	})
}
