package feed

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lysyi3m/crawler-api/app/items"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

type Importer struct {
	parser *Parser
	items  *items.Service
	now    func() time.Time
}

func NewImporter(itemService *items.Service) *Importer {
	return &Importer{
		parser: NewParser(),
		items:  itemService,
		now:    time.Now,
	}
}

// Import stores every valid entry of the feed document. Invalid entries are skipped and reported;
// only an unparsable document or a storage failure is returned as an error.
func (i *Importer) Import(ctx context.Context, data []byte, source string) (models.ImportResult, error) {
	metadata, feedItems, err := i.parser.Run(data)
	if err != nil {
		return models.ImportResult{}, err
	}

	source = cmp.Or(strings.TrimSpace(source), metadata.Title)
	requests := ToCreateRequests(feedItems, source, i.now().UTC())

	result := models.ImportResult{
		Items:  make([]models.ScrapedItemDTO, 0, len(requests)),
		Errors: make([]models.ImportError, 0),
	}

	for index, req := range requests {
		dto, err := i.items.Create(ctx, req)
		if errs, ok := items.IsValidationError(err); ok {
			result.Errors = append(result.Errors, models.ImportError{
				Index:  index,
				Title:  req.Title,
				Errors: errs,
			})
			result.Skipped++
			continue
		}
		if err != nil {
			return models.ImportResult{}, fmt.Errorf("failed to import feed entry %d: %w", index, err)
		}

		result.Items = append(result.Items, dto)
		result.Imported++
	}

	slog.Info("Feed imported", "source", source, "imported", result.Imported, "skipped", result.Skipped)

	return result, nil
}

func ToCreateRequests(feedItems []Item, source string, now time.Time) []models.CreateScrapedItemRequest {
	requests := make([]models.CreateScrapedItemRequest, 0, len(feedItems))

	for _, item := range feedItems {
		collectedAt := now
		if item.PublishedAt != nil {
			collectedAt = item.PublishedAt.UTC()
		} else if item.UpdatedAt != nil {
			collectedAt = item.UpdatedAt.UTC()
		}
		if collectedAt.After(now) {
			collectedAt = now
		}

		req := models.CreateScrapedItemRequest{
			Title:       item.Title,
			URL:         item.Link,
			Source:      optional(source),
			Summary:     optional(truncateRunes(item.Description, validation.SummaryMaxLength)),
			Content:     optional(item.Content),
			CollectedAt: &collectedAt,
			Metadata:    itemMetadata(item),
		}

		requests = append(requests, req)
	}

	return requests
}

func itemMetadata(item Item) map[string]string {
	metadata := make(map[string]string)

	if item.GUID != "" {
		metadata["guid"] = item.GUID
	}
	if author := strings.Join(item.Authors, ", "); author != "" {
		metadata["author"] = author
	}
	if categories := strings.Join(item.Categories, ","); categories != "" {
		metadata["categories"] = categories
	}

	if len(metadata) == 0 {
		return nil
	}
	return metadata
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

func truncateRunes(value string, limit int) string {
	if utf8.RuneCountInString(value) <= limit {
		return value
	}
	return string([]rune(value)[:limit])
}
