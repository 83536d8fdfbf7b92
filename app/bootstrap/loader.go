// Package bootstrap seeds accounts and items from a YAML file at start-up.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lysyi3m/crawler-api/app/identity"
	"github.com/lysyi3m/crawler-api/app/items"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

type File struct {
	Users []User                            `yaml:"users"`
	Items []models.CreateScrapedItemRequest `yaml:"items"`
}

type User struct {
	models.RegisterRequest `yaml:",inline"`
	Roles                  []string `yaml:"roles"`
}

type Summary struct {
	UsersCreated int
	ItemsSeeded  int
}

func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file %s: %w", path, err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap file %s: %w", path, err)
	}

	if err := file.validate(); err != nil {
		return nil, fmt.Errorf("invalid bootstrap file %s: %w", path, err)
	}

	return &file, nil
}

func (f *File) validate() error {
	for i, user := range f.Users {
		for _, role := range user.Roles {
			if !slices.Contains(identity.AllRoles, role) {
				return fmt.Errorf("users[%d] (%s): unknown role %q", i, user.Email, role)
			}
		}
	}
	return nil
}

// Apply creates missing users and, when the item table is empty, inserts the listed items.
// Any invalid entry stops the run.
func Apply(ctx context.Context, file *File, accounts *identity.Accounts, itemService *items.Service) (Summary, error) {
	var summary Summary

	for i, user := range file.Users {
		created, err := accounts.Provision(ctx, user.RegisterRequest, user.Roles)
		if err != nil {
			return summary, entryError("users", i, user.Email, err)
		}
		if created {
			summary.UsersCreated++
			slog.Info("Bootstrap user created", "user_name", user.UserName, "roles", user.Roles)
		} else {
			slog.Debug("Bootstrap user already exists", "user_name", user.UserName)
		}
	}

	if len(file.Items) == 0 {
		return summary, nil
	}

	count, err := itemService.Count(ctx)
	if err != nil {
		return summary, fmt.Errorf("failed to count items: %w", err)
	}
	if count > 0 {
		slog.Debug("Skipping item seed, table is not empty", "count", count)
		return summary, nil
	}

	// A rejected file must leave the item table empty
	now := time.Now().UTC()
	for i, item := range file.Items {
		if errs := validation.CreateScrapedItem(item, now); errs != nil {
			return summary, entryError("items", i, item.Title, errs)
		}
	}

	for i, item := range file.Items {
		if _, err := itemService.Create(ctx, item); err != nil {
			return summary, entryError("items", i, item.Title, err)
		}
		summary.ItemsSeeded++
	}

	slog.Info("Bootstrap items seeded", "count", summary.ItemsSeeded)

	return summary, nil
}

func entryError(section string, index int, name string, err error) error {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return fmt.Errorf("%s[%d] (%s) is invalid: %w", section, index, name, errs)
	}
	return fmt.Errorf("failed to apply %s[%d] (%s): %w", section, index, name, err)
}
