package items

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lysyi3m/crawler-api/app/database"
	"github.com/lysyi3m/crawler-api/app/models"
	"github.com/lysyi3m/crawler-api/app/validation"
)

type MockItemRepository struct {
	items      map[int64]database.ScrapedItem
	nextID     int64
	lastFilter database.ItemFilter
}

func NewMockItemRepository() *MockItemRepository {
	return &MockItemRepository{items: make(map[int64]database.ScrapedItem)}
}

func (m *MockItemRepository) ListItems(ctx context.Context, filter database.ItemFilter) ([]database.ScrapedItem, int, error) {
	m.lastFilter = filter

	all := make([]database.ScrapedItem, 0, len(m.items))
	for _, item := range m.items {
		all = append(all, item)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })

	start := min(filter.Offset, len(all))
	end := min(start+filter.Limit, len(all))
	return all[start:end], len(all), nil
}

func (m *MockItemRepository) GetItem(ctx context.Context, id int64) (*database.ScrapedItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, nil
	}
	return &item, nil
}

func (m *MockItemRepository) GetItemCount(ctx context.Context) (int, error) {
	return len(m.items), nil
}

func (m *MockItemRepository) CreateItem(ctx context.Context, item *database.ScrapedItem) error {
	m.nextID++
	item.ID = m.nextID
	m.items[item.ID] = *item
	return nil
}

func (m *MockItemRepository) UpdateItem(ctx context.Context, item *database.ScrapedItem) error {
	if _, ok := m.items[item.ID]; !ok {
		return database.ErrNotFound
	}
	m.items[item.ID] = *item
	return nil
}

func (m *MockItemRepository) DeleteItem(ctx context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return database.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func strPtr(s string) *string { return &s }

func newTestService(now time.Time) (*Service, *MockItemRepository) {
	repo := NewMockItemRepository()
	service := NewService(repo)
	service.now = func() time.Time { return now }
	return service, repo
}

func TestNormalizePage(t *testing.T) {
	tests := []struct {
		page, pageSize         int
		wantPage, wantPageSize int
	}{
		{0, 0, 1, 20},
		{-3, -1, 1, 20},
		{2, 50, 2, 50},
		{1, 1000, 1, 100},
		{5, 1, 5, 1},
	}

	for _, tt := range tests {
		page, pageSize := NormalizePage(tt.page, tt.pageSize)
		assert.Equal(t, tt.wantPage, page)
		assert.Equal(t, tt.wantPageSize, pageSize)
	}
}

func TestMetadataRoundTrip(t *testing.T) {
	encoded, err := EncodeMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, encoded)

	encoded, err = EncodeMetadata(map[string]string{})
	require.NoError(t, err)
	assert.Nil(t, encoded)

	encoded, err = EncodeMetadata(map[string]string{"lang": "en"})
	require.NoError(t, err)
	require.NotNil(t, encoded)
	assert.Equal(t, `{"lang":"en"}`, *encoded)
	assert.Equal(t, map[string]string{"lang": "en"}, DecodeMetadata(encoded))

	assert.Nil(t, DecodeMetadata(strPtr("not json")))
	assert.Nil(t, DecodeMetadata(nil))
}

func TestServiceCreateDefaultsCollectedAt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 123456789, time.UTC)
	service, repo := newTestService(now)

	dto, err := service.Create(context.Background(), models.CreateScrapedItemRequest{
		Title:    "Hello",
		URL:      "https://example.com/a",
		Source:   strPtr("news"),
		Metadata: map[string]string{"lang": "en"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), dto.ID)
	assert.Equal(t, now.Truncate(time.Microsecond), dto.CollectedAt)
	assert.Equal(t, "news", *dto.Source)
	assert.Equal(t, map[string]string{"lang": "en"}, dto.Metadata)
	assert.Len(t, repo.items, 1)
}

func TestServiceCreateRejectsInvalidRequest(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service, repo := newTestService(now)
	future := now.Add(time.Hour)

	_, err := service.Create(context.Background(), models.CreateScrapedItemRequest{
		Title:       "",
		URL:         "ftp://example.com",
		CollectedAt: &future,
	})
	require.Error(t, err)

	errs, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, errs, validation.FieldTitle)
	assert.Contains(t, errs, validation.FieldURL)
	assert.Contains(t, errs, validation.FieldCollectedAt)
	assert.Empty(t, repo.items)
}

func TestServiceUpdatePartial(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	service, _ := newTestService(now)
	ctx := context.Background()

	created, err := service.Create(ctx, models.CreateScrapedItemRequest{
		Title:    "Original",
		URL:      "https://example.com/a",
		Summary:  strPtr("short"),
		Metadata: map[string]string{"k": "v"},
	})
	require.NoError(t, err)

	updated, err := service.Update(ctx, created.ID, models.UpdateScrapedItemRequest{
		Title: strPtr("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, "https://example.com/a", updated.URL)
	assert.Equal(t, "short", *updated.Summary)
	assert.Equal(t, map[string]string{"k": "v"}, updated.Metadata)

	cleared, err := service.Update(ctx, created.ID, models.UpdateScrapedItemRequest{
		Metadata: map[string]string{},
	})
	require.NoError(t, err)
	assert.Nil(t, cleared.Metadata)
}

func TestServiceUpdateMissingAndInvalid(t *testing.T) {
	service, _ := newTestService(time.Now())
	ctx := context.Background()

	_, err := service.Update(ctx, 42, models.UpdateScrapedItemRequest{Title: strPtr("x")})
	assert.True(t, errors.Is(err, ErrNotFound))

	created, err := service.Create(ctx, models.CreateScrapedItemRequest{Title: "t", URL: "http://example.com"})
	require.NoError(t, err)

	_, err = service.Update(ctx, created.ID, models.UpdateScrapedItemRequest{URL: strPtr("not a url")})
	errs, ok := IsValidationError(err)
	require.True(t, ok)
	assert.Contains(t, errs, validation.FieldURL)
}

func TestServiceGetAndDelete(t *testing.T) {
	service, _ := newTestService(time.Now())
	ctx := context.Background()

	_, err := service.Get(ctx, 7)
	assert.ErrorIs(t, err, ErrNotFound)

	created, err := service.Create(ctx, models.CreateScrapedItemRequest{Title: "t", URL: "http://example.com"})
	require.NoError(t, err)

	got, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	require.NoError(t, service.Delete(ctx, created.ID))
	assert.ErrorIs(t, service.Delete(ctx, created.ID), ErrNotFound)
}

func TestServiceListNormalizesPaging(t *testing.T) {
	service, repo := newTestService(time.Now())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := service.Create(ctx, models.CreateScrapedItemRequest{Title: "t", URL: "http://example.com"})
		require.NoError(t, err)
	}

	page, err := service.List(ctx, ListParams{Page: 0, PageSize: 500, Search: "  foo  "})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, MaxPageSize, page.PageSize)
	assert.Equal(t, 3, page.Total)
	assert.Len(t, page.Items, 3)
	assert.Equal(t, "foo", repo.lastFilter.Search)
	assert.Equal(t, 0, repo.lastFilter.Offset)
	assert.Equal(t, MaxPageSize, repo.lastFilter.Limit)

	_, err = service.List(ctx, ListParams{Source: "   "})
	require.NoError(t, err)
	assert.Equal(t, "", repo.lastFilter.Source)

	_, err = service.List(ctx, ListParams{Source: " news "})
	require.NoError(t, err)
	assert.Equal(t, " news ", repo.lastFilter.Source)

	page, err = service.List(ctx, ListParams{Page: 5, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
}
