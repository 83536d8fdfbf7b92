package identity

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"strings"

	"github.com/lysyi3m/crawler-api/app/auth"
	"github.com/lysyi3m/crawler-api/app/database"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

var (
	ErrInvalidCredentials = errors.New("invalid email/username or password")
	ErrUserNotFound       = errors.New("user not found")
)

// Accounts implements registration, login and profile lookup on top of a UserManager
type Accounts struct {
	users  UserManager
	tokens *auth.TokenService
}

func NewAccounts(users UserManager, tokens *auth.TokenService) *Accounts {
	return &Accounts{users: users, tokens: tokens}
}

// Register creates an account with the User role and signs the caller in. Field problems are
// returned as validation.Errors, duplicates as ErrDuplicateEmail or ErrDuplicateUserName.
func (a *Accounts) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResponse, error) {
	req = normalizeRegistration(req)
	if errs := validation.Register(req); errs != nil {
		return models.AuthResponse{}, errs
	}

	existing, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if existing != nil {
		return models.AuthResponse{}, ErrDuplicateEmail
	}

	existing, err = a.users.FindByName(ctx, req.UserName)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if existing != nil {
		return models.AuthResponse{}, ErrDuplicateUserName
	}

	user, roles, err := a.createAccount(ctx, req, nil)
	if err != nil {
		return models.AuthResponse{}, err
	}

	return a.signIn(user, roles)
}

// Provision creates the account unless its email or user name is already taken.
// It reports whether a new account was created.
func (a *Accounts) Provision(ctx context.Context, req models.RegisterRequest, roles []string) (bool, error) {
	req = normalizeRegistration(req)
	if errs := validation.Register(req); errs != nil {
		return false, errs
	}

	byEmail, err := a.users.FindByEmail(ctx, req.Email)
	if err != nil {
		return false, err
	}
	byName, err := a.users.FindByName(ctx, req.UserName)
	if err != nil {
		return false, err
	}
	if byEmail != nil || byName != nil {
		return false, nil
	}

	if _, _, err := a.createAccount(ctx, req, roles); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Accounts) Login(ctx context.Context, req models.LoginRequest) (models.AuthResponse, error) {
	req.EmailOrUserName = strings.TrimSpace(req.EmailOrUserName)
	if errs := validation.Login(req); errs != nil {
		return models.AuthResponse{}, errs
	}

	user, err := a.users.FindByEmail(ctx, req.EmailOrUserName)
	if err != nil {
		return models.AuthResponse{}, err
	}
	if user == nil {
		user, err = a.users.FindByName(ctx, req.EmailOrUserName)
		if err != nil {
			return models.AuthResponse{}, err
		}
	}

	if user == nil || !a.users.CheckPassword(user, req.Password) {
		return models.AuthResponse{}, ErrInvalidCredentials
	}

	roles, err := a.users.GetRoles(ctx, user.ID)
	if err != nil {
		return models.AuthResponse{}, err
	}

	return a.signIn(user, roles)
}

func (a *Accounts) Profile(ctx context.Context, userID string) (models.AuthenticatedUserDTO, error) {
	user, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return models.AuthenticatedUserDTO{}, err
	}
	if user == nil {
		return models.AuthenticatedUserDTO{}, ErrUserNotFound
	}

	roles, err := a.users.GetRoles(ctx, user.ID)
	if err != nil {
		return models.AuthenticatedUserDTO{}, err
	}

	return toUserDTO(user, roles), nil
}

func (a *Accounts) createAccount(ctx context.Context, req models.RegisterRequest, extraRoles []string) (*database.User, []string, error) {
	user := &database.User{
		UserName:    req.UserName,
		Email:       req.Email,
		DisplayName: cmp.Or(req.DisplayName, req.UserName),
	}

	if err := a.users.Create(ctx, user, req.Password); err != nil {
		var policyErr *PolicyError
		if errors.As(err, &policyErr) {
			return nil, nil, validation.Errors(policyErr.Errors)
		}
		return nil, nil, err
	}

	roles := []string{RoleUser}
	for _, role := range extraRoles {
		if !slices.Contains(roles, role) {
			roles = append(roles, role)
		}
	}
	if err := a.users.EnsureRoles(ctx, roles...); err != nil {
		return nil, nil, err
	}
	for _, role := range roles {
		if err := a.users.AddToRole(ctx, user.ID, role); err != nil {
			return nil, nil, err
		}
	}

	assigned, err := a.users.GetRoles(ctx, user.ID)
	if err != nil {
		return nil, nil, err
	}

	return user, assigned, nil
}

func (a *Accounts) signIn(user *database.User, roles []string) (models.AuthResponse, error) {
	token, err := a.tokens.Issue(auth.Subject{
		ID:          user.ID,
		UserName:    user.UserName,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       roles,
	})
	if err != nil {
		return models.AuthResponse{}, err
	}

	return models.AuthResponse{
		Token:     token.Value,
		ExpiresAt: token.ExpiresAt,
		User:      toUserDTO(user, roles),
	}, nil
}

func normalizeRegistration(req models.RegisterRequest) models.RegisterRequest {
	req.Email = strings.TrimSpace(req.Email)
	req.UserName = strings.TrimSpace(req.UserName)
	req.DisplayName = strings.TrimSpace(req.DisplayName)
	return req
}

func toUserDTO(user *database.User, roles []string) models.AuthenticatedUserDTO {
	if roles == nil {
		roles = []string{}
	}

	var displayName *string
	if user.DisplayName != "" {
		displayName = &user.DisplayName
	}

	return models.AuthenticatedUserDTO{
		ID:          user.ID,
		UserName:    user.UserName,
		Email:       user.Email,
		DisplayName: displayName,
		Roles:       roles,
	}
}
