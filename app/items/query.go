package items

import (
	"strings"
	"time"

	"github.com/lysyi3m/crawler-api/app/database"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type ListParams struct {
	Search        string
	Source        string
	CollectedFrom *time.Time
	CollectedTo   *time.Time
	Page          int
	PageSize      int
}

// NormalizePage coerces page to at least 1, and pageSize to the default when unset or to [1, MaxPageSize]
func NormalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}

	switch {
	case pageSize <= 0:
		pageSize = DefaultPageSize
	case pageSize > MaxPageSize:
		pageSize = MaxPageSize
	}

	return page, pageSize
}

// Filter translates the params into a storage filter; page and page size must already be normalized
func (p ListParams) Filter() database.ItemFilter {
	return database.ItemFilter{
		Search:        strings.TrimSpace(p.Search),
		Source:        exactSource(p.Source),
		CollectedFrom: p.CollectedFrom,
		CollectedTo:   p.CollectedTo,
		Offset:        (p.Page - 1) * p.PageSize,
		Limit:         p.PageSize,
	}
}

// exactSource drops a blank source but otherwise compares the value as given
func exactSource(source string) string {
	if strings.TrimSpace(source) == "" {
		return ""
	}
	return source
}
