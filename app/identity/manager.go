// Package identity manages user accounts, passwords and role membership.
package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lysyi3m/crawler-api/app/database"
)

const (
	RoleAdmin = "Admin"
	RoleUser  = "User"

	MinPasswordLength = 6
)

var AllRoles = []string{RoleAdmin, RoleUser}

var (
	ErrDuplicateEmail    = database.ErrDuplicateEmail
	ErrDuplicateUserName = database.ErrDuplicateUserName
)

// PolicyError lists password and account policy violations keyed by error code
type PolicyError struct {
	Errors map[string][]string
}

func (e *PolicyError) Error() string {
	var messages []string
	for _, msgs := range e.Errors {
		messages = append(messages, msgs...)
	}
	return "account policy violated: " + strings.Join(messages, " ")
}

// UserManager is the account service used by the HTTP layer and the bootstrap loader
type UserManager interface {
	FindByID(ctx context.Context, id string) (*database.User, error)
	FindByEmail(ctx context.Context, email string) (*database.User, error)
	FindByName(ctx context.Context, userName string) (*database.User, error)
	Create(ctx context.Context, user *database.User, password string) error
	CheckPassword(user *database.User, password string) bool
	GetRoles(ctx context.Context, userID string) ([]string, error)
	AddToRole(ctx context.Context, userID string, role string) error
	EnsureRoles(ctx context.Context, roles ...string) error
}

var _ UserManager = (*Manager)(nil)

type Manager struct {
	users database.UserRepository
	now   func() time.Time
}

func NewManager(users database.UserRepository) *Manager {
	return &Manager{users: users, now: time.Now}
}

func (m *Manager) FindByID(ctx context.Context, id string) (*database.User, error) {
	return m.users.GetUserByID(ctx, id)
}

func (m *Manager) FindByEmail(ctx context.Context, email string) (*database.User, error) {
	return m.users.GetUserByEmail(ctx, email)
}

func (m *Manager) FindByName(ctx context.Context, userName string) (*database.User, error) {
	return m.users.GetUserByUserName(ctx, userName)
}

// Create assigns an id, hashes the password and stores the account. Duplicate email or user
// name yields ErrDuplicateEmail or ErrDuplicateUserName; a weak password yields *PolicyError.
func (m *Manager) Create(ctx context.Context, user *database.User, password string) error {
	if policyErr := checkPasswordPolicy(password); policyErr != nil {
		return policyErr
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	user.ID = uuid.NewString()
	user.PasswordHash = hash
	user.CreatedAt = m.now().UTC()

	if err := m.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, ErrDuplicateEmail) || errors.Is(err, ErrDuplicateUserName) {
			return err
		}
		return fmt.Errorf("failed to create user %s: %w", user.UserName, err)
	}

	return nil
}

func (m *Manager) CheckPassword(user *database.User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		return false
	}
	return VerifyPassword(password, user.PasswordHash)
}

func (m *Manager) GetRoles(ctx context.Context, userID string) ([]string, error) {
	return m.users.GetUserRoles(ctx, userID)
}

func (m *Manager) AddToRole(ctx context.Context, userID string, role string) error {
	return m.users.AddUserToRole(ctx, userID, role)
}

// EnsureRoles creates every role that does not exist yet
func (m *Manager) EnsureRoles(ctx context.Context, roles ...string) error {
	for _, role := range roles {
		exists, err := m.users.RoleExists(ctx, role)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		if err := m.users.CreateRole(ctx, role); err != nil {
			return err
		}
	}
	return nil
}

func checkPasswordPolicy(password string) *PolicyError {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return &PolicyError{Errors: map[string][]string{
			"PasswordTooShort": {fmt.Sprintf("Passwords must be at least %d characters.", MinPasswordLength)},
		}}
	}
	return nil
}
