package database

import (
	"context"
)

type ItemRepository interface {
	ListItems(ctx context.Context, filter ItemFilter) ([]ScrapedItem, int, error)
	GetItem(ctx context.Context, id int64) (*ScrapedItem, error)
	GetItemCount(ctx context.Context) (int, error)

	CreateItem(ctx context.Context, item *ScrapedItem) error
	UpdateItem(ctx context.Context, item *ScrapedItem) error
	DeleteItem(ctx context.Context, id int64) error
}

type UserRepository interface {
	GetUserByID(ctx context.Context, id string) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUserName(ctx context.Context, userName string) (*User, error)
	CreateUser(ctx context.Context, user *User) error

	GetUserRoles(ctx context.Context, userID string) ([]string, error)
	AddUserToRole(ctx context.Context, userID string, roleName string) error

	RoleExists(ctx context.Context, roleName string) (bool, error)
	CreateRole(ctx context.Context, roleName string) error
}

var (
	_ ItemRepository = (*SQLItemRepository)(nil)
	_ UserRepository = (*SQLUserRepository)(nil)
)
