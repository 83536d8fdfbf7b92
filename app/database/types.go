package database

import (
	"database/sql"
	"errors"
	"time"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicateEmail    = errors.New("email is already registered")
	ErrDuplicateUserName = errors.New("user name is already taken")
)

type ScrapedItem struct {
	ID           int64
	Title        string
	URL          string
	Source       *string
	Summary      *string
	Content      *string
	CollectedAt  time.Time
	MetadataJSON *string // serialized map[string]string, nil when the item has no metadata
}

type ItemFilter struct {
	Search        string
	Source        string
	CollectedFrom *time.Time
	CollectedTo   *time.Time
	Offset        int
	Limit         int
}

type User struct {
	ID           string // UUID
	UserName     string
	Email        string
	DisplayName  string
	PasswordHash string
	CreatedAt    time.Time
}

// timeLayout is fixed-width so that lexical order of stored values equals chronological order.
const timeLayout = "2006-01-02T15:04:05.000000Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(value string) (time.Time, error) {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func toNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	s := value.String
	return &s
}
