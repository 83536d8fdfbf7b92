package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const userColumns = `id, user_name, email, display_name, password_hash, created_at`

// SQLUserRepository stores accounts and role assignments
type SQLUserRepository struct {
	db *DB
}

func NewUserRepository(db *DB) *SQLUserRepository {
	return &SQLUserRepository{db: db}
}

func (r *SQLUserRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	return r.getUser(ctx, "id = ?", id)
}

// GetUserByEmail matches the email case-insensitively
func (r *SQLUserRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.getUser(ctx, "normalized_email = ?", Normalize(email))
}

// GetUserByUserName matches the user name case-insensitively
func (r *SQLUserRepository) GetUserByUserName(ctx context.Context, userName string) (*User, error) {
	return r.getUser(ctx, "normalized_user_name = ?", Normalize(userName))
}

func (r *SQLUserRepository) CreateUser(ctx context.Context, user *User) error {
	var displayName sql.NullString
	if user.DisplayName != "" {
		displayName = sql.NullString{String: user.DisplayName, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, user_name, normalized_user_name, email, normalized_email,
		                   display_name, password_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, user.ID, user.UserName, Normalize(user.UserName), user.Email, Normalize(user.Email),
		displayName, user.PasswordHash, formatTime(user.CreatedAt))
	if err != nil {
		if column, ok := uniqueViolation(err); ok {
			if strings.Contains(column, "normalized_email") {
				return ErrDuplicateEmail
			}
			return ErrDuplicateUserName
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

func (r *SQLUserRepository) GetUserRoles(ctx context.Context, userID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT roles.name
		FROM user_roles
		JOIN roles ON roles.id = user_roles.role_id
		WHERE user_roles.user_id = ?
		ORDER BY roles.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user roles: %w", err)
	}
	defer rows.Close()

	roles := []string{}
	for rows.Next() {
		var role string
		if err := rows.Scan(&role); err != nil {
			return nil, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, role)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating role rows: %w", err)
	}

	return roles, nil
}

// AddUserToRole is a no-op when the user already has the role
func (r *SQLUserRepository) AddUserToRole(ctx context.Context, userID string, roleName string) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO user_roles (user_id, role_id)
		SELECT ?, id FROM roles WHERE normalized_name = ?
	`, userID, Normalize(roleName))
	if err != nil {
		return fmt.Errorf("failed to add user to role: %w", err)
	}

	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		exists, err := r.RoleExists(ctx, roleName)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("role %q does not exist: %w", roleName, ErrNotFound)
		}
	}

	return nil
}

func (r *SQLUserRepository) RoleExists(ctx context.Context, roleName string) (bool, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM roles WHERE normalized_name = ?", Normalize(roleName)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return count > 0, nil
}

func (r *SQLUserRepository) CreateRole(ctx context.Context, roleName string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO roles (name, normalized_name) VALUES (?, ?)
		ON CONFLICT (normalized_name) DO NOTHING
	`, roleName, Normalize(roleName))
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

func (r *SQLUserRepository) getUser(ctx context.Context, condition string, arg any) (*User, error) {
	var user User
	var displayName sql.NullString
	var createdAt string

	err := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+condition, arg).Scan(
		&user.ID, &user.UserName, &user.Email, &displayName, &user.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.DisplayName = displayName.String
	user.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at for user %s: %w", user.ID, err)
	}

	return &user, nil
}

// Normalize produces the lookup key used for case-insensitive user and role matching
func Normalize(value string) string {
	return strings.ToUpper(strings.TrimSpace(value))
}

func uniqueViolation(err error) (string, bool) {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return "", false
	}
	if sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_UNIQUE && sqliteErr.Code() != sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
		return "", false
	}
	return sqliteErr.Error(), true
}
