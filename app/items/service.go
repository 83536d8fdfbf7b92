// Package items implements the scraped item use cases on top of the item repository.
package items

import (
	"context"
	"errors"
	"time"

	"github.com/lysyi3m/crawler-api/app/database"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

// ErrNotFound is returned when the addressed item does not exist
var ErrNotFound = database.ErrNotFound

type Service struct {
	repo database.ItemRepository
	now  func() time.Time
}

func NewService(repo database.ItemRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) List(ctx context.Context, params ListParams) (models.ScrapedItemPage, error) {
	params.Page, params.PageSize = NormalizePage(params.Page, params.PageSize)

	records, total, err := s.repo.ListItems(ctx, params.Filter())
	if err != nil {
		return models.ScrapedItemPage{}, err
	}

	dtos := make([]models.ScrapedItemDTO, 0, len(records))
	for _, record := range records {
		dtos = append(dtos, ToDTO(record))
	}

	return models.ScrapedItemPage{
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
		Items:    dtos,
	}, nil
}

func (s *Service) Get(ctx context.Context, id int64) (models.ScrapedItemDTO, error) {
	record, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return models.ScrapedItemDTO{}, err
	}
	if record == nil {
		return models.ScrapedItemDTO{}, ErrNotFound
	}
	return ToDTO(*record), nil
}

// Create validates and stores a new item. Validation failures are returned as validation.Errors.
func (s *Service) Create(ctx context.Context, req models.CreateScrapedItemRequest) (models.ScrapedItemDTO, error) {
	now := s.now().UTC()
	if errs := validation.CreateScrapedItem(req, now); errs != nil {
		return models.ScrapedItemDTO{}, errs
	}

	collectedAt := now
	if req.CollectedAt != nil {
		collectedAt = *req.CollectedAt
	}

	metadata, err := EncodeMetadata(req.Metadata)
	if err != nil {
		return models.ScrapedItemDTO{}, err
	}

	record := &database.ScrapedItem{
		Title:        req.Title,
		URL:          req.URL,
		Source:       req.Source,
		Summary:      req.Summary,
		Content:      req.Content,
		CollectedAt:  truncate(collectedAt),
		MetadataJSON: metadata,
	}

	if err := s.repo.CreateItem(ctx, record); err != nil {
		return models.ScrapedItemDTO{}, err
	}

	return ToDTO(*record), nil
}

// Update overwrites only the supplied fields of an existing item
func (s *Service) Update(ctx context.Context, id int64, req models.UpdateScrapedItemRequest) (models.ScrapedItemDTO, error) {
	record, err := s.repo.GetItem(ctx, id)
	if err != nil {
		return models.ScrapedItemDTO{}, err
	}
	if record == nil {
		return models.ScrapedItemDTO{}, ErrNotFound
	}

	if errs := validation.UpdateScrapedItem(req, s.now().UTC()); errs != nil {
		return models.ScrapedItemDTO{}, errs
	}

	if req.Title != nil {
		record.Title = *req.Title
	}
	if req.URL != nil {
		record.URL = *req.URL
	}
	if req.Source != nil {
		record.Source = req.Source
	}
	if req.Summary != nil {
		record.Summary = req.Summary
	}
	if req.Content != nil {
		record.Content = req.Content
	}
	if req.CollectedAt != nil {
		record.CollectedAt = truncate(*req.CollectedAt)
	}
	if req.Metadata != nil {
		record.MetadataJSON, err = EncodeMetadata(req.Metadata)
		if err != nil {
			return models.ScrapedItemDTO{}, err
		}
	}

	if err := s.repo.UpdateItem(ctx, record); err != nil {
		return models.ScrapedItemDTO{}, err
	}

	return ToDTO(*record), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteItem(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int, error) {
	return s.repo.GetItemCount(ctx)
}

func ToDTO(record database.ScrapedItem) models.ScrapedItemDTO {
	return models.ScrapedItemDTO{
		ID:          record.ID,
		Title:       record.Title,
		URL:         record.URL,
		Source:      record.Source,
		Summary:     record.Summary,
		Content:     record.Content,
		CollectedAt: record.CollectedAt.UTC(),
		Metadata:    DecodeMetadata(record.MetadataJSON),
	}
}

// IsValidationError unwraps validation failures returned by Create and Update
func IsValidationError(err error) (validation.Errors, bool) {
	var errs validation.Errors
	if errors.As(err, &errs) {
		return errs, true
	}
	return nil, false
}

// truncate matches the precision of stored timestamps
func truncate(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
