package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

const itemColumns = `id, title, url, source, summary, content, collected_at, metadata_json`

// SQLItemRepository handles database operations for scraped items
type SQLItemRepository struct {
	db *DB
}

func NewItemRepository(db *DB) *SQLItemRepository {
	return &SQLItemRepository{db: db}
}

// ListItems returns one page of items matching the filter, newest first, together with the
// number of items matching the filter before pagination.
func (r *SQLItemRepository) ListItems(ctx context.Context, filter ItemFilter) ([]ScrapedItem, int, error) {
	where, args := buildItemFilter(filter)

	var total int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scraped_items"+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count items: %w", err)
	}

	query := "SELECT " + itemColumns + " FROM scraped_items" + where +
		" ORDER BY collected_at DESC, id DESC LIMIT ? OFFSET ?"
	pageArgs := append(append([]any{}, args...), filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := make([]ScrapedItem, 0, filter.Limit)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, *item)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating item rows: %w", err)
	}

	return items, total, nil
}

// GetItem returns nil without error when no item has the given id
func (r *SQLItemRepository) GetItem(ctx context.Context, id int64) (*ScrapedItem, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+itemColumns+" FROM scraped_items WHERE id = ?", id)

	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return item, nil
}

func (r *SQLItemRepository) GetItemCount(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM scraped_items").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get item count: %w", err)
	}
	return count, nil
}

// CreateItem inserts the item and stores the generated id on it
func (r *SQLItemRepository) CreateItem(ctx context.Context, item *ScrapedItem) error {
	result, err := r.db.ExecContext(ctx, `
		INSERT INTO scraped_items (title, url, source, summary, content, collected_at, metadata_json)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, item.Title, item.URL, toNullString(item.Source), toNullString(item.Summary),
		toNullString(item.Content), formatTime(item.CollectedAt), toNullString(item.MetadataJSON))
	if err != nil {
		return fmt.Errorf("failed to create item: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read item id: %w", err)
	}
	item.ID = id

	return nil
}

func (r *SQLItemRepository) UpdateItem(ctx context.Context, item *ScrapedItem) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE scraped_items
		SET title = ?, url = ?, source = ?, summary = ?, content = ?, collected_at = ?, metadata_json = ?
		WHERE id = ?
	`, item.Title, item.URL, toNullString(item.Source), toNullString(item.Summary),
		toNullString(item.Content), formatTime(item.CollectedAt), toNullString(item.MetadataJSON), item.ID)
	if err != nil {
		return fmt.Errorf("failed to update item: %w", err)
	}

	return expectAffected(result)
}

func (r *SQLItemRepository) DeleteItem(ctx context.Context, id int64) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM scraped_items WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return expectAffected(result)
}

func buildItemFilter(filter ItemFilter) (string, []any) {
	var conditions []string
	var args []any

	if filter.Search != "" {
		pattern := "%" + escapeLike(strings.ToLower(filter.Search)) + "%"
		conditions = append(conditions, `(casefold(title) LIKE ? ESCAPE '\'`+
			` OR (summary IS NOT NULL AND casefold(summary) LIKE ? ESCAPE '\')`+
			` OR (content IS NOT NULL AND casefold(content) LIKE ? ESCAPE '\'))`)
		args = append(args, pattern, pattern, pattern)
	}

	if filter.Source != "" {
		conditions = append(conditions, "source = ?")
		args = append(args, filter.Source)
	}

	if filter.CollectedFrom != nil {
		conditions = append(conditions, "collected_at >= ?")
		args = append(args, formatTime(*filter.CollectedFrom))
	}

	if filter.CollectedTo != nil {
		conditions = append(conditions, "collected_at <= ?")
		args = append(args, formatTime(*filter.CollectedTo))
	}

	if len(conditions) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conditions, " AND "), args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(row rowScanner) (*ScrapedItem, error) {
	var item ScrapedItem
	var source, summary, content, metadata sql.NullString
	var collectedAt string

	err := row.Scan(&item.ID, &item.Title, &item.URL, &source, &summary, &content, &collectedAt, &metadata)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan item row: %w", err)
	}

	item.CollectedAt, err = parseTime(collectedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid collected_at for item %d: %w", item.ID, err)
	}

	item.Source = fromNullString(source)
	item.Summary = fromNullString(summary)
	item.Content = fromNullString(content)
	item.MetadataJSON = fromNullString(metadata)

	return &item, nil
}

func expectAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
