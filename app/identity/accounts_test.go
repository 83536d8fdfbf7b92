package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/crawler-api/app/auth"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

func newTestAccounts(t *testing.T) (*Accounts, *auth.TokenService, *MockUserRepository) {
	t.Helper()

	tokens, err := auth.NewTokenService(auth.Options{
		Issuer:   "SchoolManage",
		Audience: "SchoolManageClient",
		Secret:   "0123456789abcdef0123456789abcdef",
	})
	require.NoError(t, err)

	repo := NewMockUserRepository()
	return NewAccounts(NewManager(repo), tokens), tokens, repo
}

func TestAccountsRegister(t *testing.T) {
	accounts, tokens, _ := newTestAccounts(t)
	ctx := context.Background()

	resp, err := accounts.Register(ctx, models.RegisterRequest{
		Email:    "  a@x.com ",
		Password: "secret",
		UserName: " alice ",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "a@x.com", resp.User.Email)
	assert.Equal(t, "alice", resp.User.UserName)
	require.NotNil(t, resp.User.DisplayName)
	assert.Equal(t, "alice", *resp.User.DisplayName)
	assert.Equal(t, []string{RoleUser}, resp.User.Roles)

	principal, err := tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, principal.UserID)
	assert.True(t, principal.HasRole(RoleUser))
}

func TestAccountsRegisterConflicts(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, models.RegisterRequest{Email: "a@x.com", Password: "secret", UserName: "alice"})
	require.NoError(t, err)

	_, err = accounts.Register(ctx, models.RegisterRequest{Email: "A@X.COM", Password: "secret", UserName: "bob"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	_, err = accounts.Register(ctx, models.RegisterRequest{Email: "b@x.com", Password: "secret", UserName: "ALICE"})
	assert.ErrorIs(t, err, ErrDuplicateUserName)
}

func TestAccountsRegisterValidation(t *testing.T) {
	accounts, _, repo := newTestAccounts(t)

	_, err := accounts.Register(context.Background(), models.RegisterRequest{Email: "nope", Password: "123", UserName: "a b"})
	require.Error(t, err)

	var errs validation.Errors
	require.ErrorAs(t, err, &errs)
	assert.Contains(t, errs, validation.FieldEmail)
	assert.Contains(t, errs, validation.FieldPassword)
	assert.Contains(t, errs, validation.FieldUserName)
	assert.Empty(t, repo.users)
}

func TestAccountsLogin(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()

	_, err := accounts.Register(ctx, models.RegisterRequest{Email: "a@x.com", Password: "secret", UserName: "alice"})
	require.NoError(t, err)

	byEmail, err := accounts.Login(ctx, models.LoginRequest{EmailOrUserName: "a@x.com", Password: "secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, byEmail.Token)

	byName, err := accounts.Login(ctx, models.LoginRequest{EmailOrUserName: " Alice ", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, byEmail.User.ID, byName.User.ID)

	_, err = accounts.Login(ctx, models.LoginRequest{EmailOrUserName: "alice", Password: "wrong!"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = accounts.Login(ctx, models.LoginRequest{EmailOrUserName: "nobody", Password: "secret"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAccountsProvisionAndProfile(t *testing.T) {
	accounts, _, _ := newTestAccounts(t)
	ctx := context.Background()
	req := models.RegisterRequest{Email: "admin@x.com", Password: "changeme", UserName: "admin", DisplayName: "Administrator"}

	created, err := accounts.Provision(ctx, req, []string{RoleAdmin, RoleUser})
	require.NoError(t, err)
	assert.True(t, created)

	created, err = accounts.Provision(ctx, req, []string{RoleAdmin})
	require.NoError(t, err)
	assert.False(t, created)

	resp, err := accounts.Login(ctx, models.LoginRequest{EmailOrUserName: "admin", Password: "changeme"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{RoleAdmin, RoleUser}, resp.User.Roles)

	profile, err := accounts.Profile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Administrator", *profile.DisplayName)

	_, err = accounts.Profile(ctx, "missing")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
