package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/technotes/server/internal/hash"
	"github.com/technotes/server/internal/models"
	"github.com/technotes/server/internal/repo"
	"github.com/technotes/server/internal/tokens"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.Note{}))
	return db
}

func testTokenConfig() tokens.Config {
	return tokens.Config{
		AccessSecret:  []byte("test-access-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	return &AuthService{
		Repo:   repo.New(newTestDB(t)),
		Tokens: tokens.NewIssuer(testTokenConfig()),
	}
}

func seedUser(t *testing.T, r *repo.GormRepo, username, password string, roles []string, active bool) *models.User {
	t.Helper()

	pwHash, err := hash.Password(password)
	require.NoError(t, err)
	user := &models.User{
		Username:     username,
		PasswordHash: pwHash,
		Roles:        roles,
		Active:       active,
	}
	require.NoError(t, r.CreateUser(context.Background(), user))
	return user
}

func TestAuthService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		password string
		roles    []string
	}{
		{name: "empty username", username: "", password: "secret1", roles: []string{"Employee"}},
		{name: "empty password", username: "bob", password: "", roles: []string{"Employee"}},
		{name: "no roles", username: "bob", password: "secret1", roles: nil},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Register(ctx, tt.username, tt.password, tt.roles)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestAuthService_Register_DuplicateIsCaseInsensitive(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "Alice", "secret1", []string{"Employee"}))

	err := svc.Register(ctx, "alice", "secret2", []string{"Employee"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestAuthService_Login_Success(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	user := seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)

	res, err := svc.Login(ctx, "bob", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), res.AccessExp, 2*time.Second)
	assert.WithinDuration(t, time.Now().Add(7*24*time.Hour), res.RefreshExp, 2*time.Second)

	claims, err := svc.Tokens.VerifyAccess(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "bob", claims.Username)
	assert.Equal(t, []string{"Employee"}, claims.Roles)
}

// Unknown user, wrong password and deactivated account must be
// indistinguishable so the response leaks nothing about which applied.
func TestAuthService_Login_FailureModesCollapse(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)
	seedUser(t, svc.Repo, "carol", "secret1", []string{"Employee"}, false)

	tests := []struct {
		name     string
		username string
		password string
	}{
		{name: "unknown user", username: "mallory", password: "secret1"},
		{name: "wrong password", username: "bob", password: "wrong"},
		{name: "inactive user", username: "carol", password: "secret1"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Login(ctx, tt.username, tt.password)
			assert.Nil(t, res)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrUnauthorized)
			assert.Equal(t, ErrUnauthorized.Error(), err.Error())
		})
	}
}

// The login lookup is case-sensitive even though the uniqueness check at
// registration is not.
func TestAuthService_Login_LookupIsCaseSensitive(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)

	res, err := svc.Login(ctx, "Bob", "secret1")
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Login_Validation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	for _, tt := range []struct{ username, password string }{
		{"", "secret1"},
		{"bob", ""},
	} {
		res, err := svc.Login(ctx, tt.username, tt.password)
		assert.Nil(t, res)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestAuthService_Refresh_ImmediatelyAfterLogin(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	user := seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)

	res, err := svc.Login(ctx, "bob", "secret1")
	require.NoError(t, err)

	accessToken, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Tokens.VerifyAccess(accessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.Subject)
	assert.Equal(t, "bob", claims.Username)
}

// A role change becomes visible at refresh time, not before.
func TestAuthService_Refresh_PicksUpCurrentRoles(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	user := seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)

	res, err := svc.Login(ctx, "bob", "secret1")
	require.NoError(t, err)

	user.Roles = []string{"Employee", "Manager"}
	require.NoError(t, svc.Repo.SaveUser(ctx, user))

	accessToken, err := svc.Refresh(ctx, res.RefreshToken)
	require.NoError(t, err)

	claims, err := svc.Tokens.VerifyAccess(accessToken)
	require.NoError(t, err)
	assert.Equal(t, []string{"Employee", "Manager"}, claims.Roles)
}

// Expired, malformed or forged refresh tokens are Forbidden, never
// Unauthorized: the credential was presented but is inadmissible.
func TestAuthService_Refresh_BadTokenIsForbidden(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)

	past := tokens.NewIssuer(testTokenConfig()).
		WithClock(func() time.Time { return time.Now().Add(-8 * 24 * time.Hour) })
	expired, _, err := past.IssueRefreshToken("user-1", "bob")
	require.NoError(t, err)

	forged, _, err := tokens.NewIssuer(tokens.Config{
		AccessSecret:  []byte("other"),
		RefreshSecret: []byte("other"),
	}).IssueRefreshToken("user-1", "bob")
	require.NoError(t, err)

	for name, token := range map[string]string{
		"expired":   expired,
		"malformed": "not-a-valid-jwt",
		"forged":    forged,
	} {
		token := token
		t.Run(name, func(t *testing.T) {
			_, err := svc.Refresh(ctx, token)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrForbidden)
			assert.NotErrorIs(t, err, ErrUnauthorized)
		})
	}
}

func TestAuthService_Refresh_UnknownUserIsUnauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	user := seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)

	res, err := svc.Login(ctx, "bob", "secret1")
	require.NoError(t, err)

	require.NoError(t, svc.Repo.DeleteUser(ctx, user.ID))

	_, err = svc.Refresh(ctx, res.RefreshToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestAuthService_Refresh_DeactivatedUserIsUnauthorized(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()
	user := seedUser(t, svc.Repo, "bob", "secret1", []string{"Employee"}, true)

	res, err := svc.Login(ctx, "bob", "secret1")
	require.NoError(t, err)

	user.Active = false
	require.NoError(t, svc.Repo.SaveUser(ctx, user))

	_, err = svc.Refresh(ctx, res.RefreshToken)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)
}
