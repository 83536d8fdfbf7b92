package models

import (
	"time"
)

type CreateScrapedItemRequest struct {
	Title       string            `json:"title" yaml:"title"`
	URL         string            `json:"url" yaml:"url"`
	Source      *string           `json:"source" yaml:"source"`
	Summary     *string           `json:"summary" yaml:"summary"`
	Content     *string           `json:"content" yaml:"content"`
	CollectedAt *time.Time        `json:"collectedAt" yaml:"collectedAt"`
	Metadata    map[string]string `json:"metadata" yaml:"metadata"`
}

// UpdateScrapedItemRequest carries a partial update: nil fields are left untouched.
// A non-nil empty Metadata map clears the stored metadata.
type UpdateScrapedItemRequest struct {
	Title       *string           `json:"title"`
	URL         *string           `json:"url"`
	Source      *string           `json:"source"`
	Summary     *string           `json:"summary"`
	Content     *string           `json:"content"`
	CollectedAt *time.Time        `json:"collectedAt"`
	Metadata    map[string]string `json:"metadata"`
}

type ScrapedItemDTO struct {
	ID          int64             `json:"id"`
	Title       string            `json:"title"`
	URL         string            `json:"url"`
	Source      *string           `json:"source"`
	Summary     *string           `json:"summary"`
	Content     *string           `json:"content"`
	CollectedAt time.Time         `json:"collectedAt"`
	Metadata    map[string]string `json:"metadata"`
}

type ScrapedItemPage struct {
	Total    int              `json:"total"`
	Page     int              `json:"page"`
	PageSize int              `json:"pageSize"`
	Items    []ScrapedItemDTO `json:"items"`
}

type ImportError struct {
	Index  int                 `json:"index"`
	Title  string              `json:"title,omitempty"`
	Errors map[string][]string `json:"errors"`
}

type ImportResult struct {
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Items    []ScrapedItemDTO `json:"items"`
	Errors   []ImportError    `json:"errors"`
}
