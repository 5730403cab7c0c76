package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/campusfind/apiserver/types"
)

// ItemRepository handles persistence for item reports. Every read resolves
// the owner's name and student number alongside the row.
type ItemRepository struct {
	db *sql.DB
}

func NewItemRepository(db *sql.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

const itemColumns = `
	i.id, i.user_id, i.title, i.description, i.type, i.category, i.location,
	i.date_lost_found, i.status, i.color, i.brand, i.photo_key, i.photo_content_type,
	i.created_at, i.updated_at,
	u.name, u.student_number`

const itemFrom = `
	FROM items i
	JOIN users u ON u.id = i.user_id`

// List returns reports matching the filter, newest-created-first. The
// free-text query matches title, description, brand, and color as a
// case-insensitive substring.
func (r *ItemRepository) List(ctx context.Context, filter types.ItemFilter) ([]types.Item, error) {
	var (
		conditions []string
		args       []any
	)
	arg := func(value any) string {
		args = append(args, value)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Type != "" {
		conditions = append(conditions, "i.type = "+arg(filter.Type))
	}
	if filter.Category != "" {
		conditions = append(conditions, "i.category = "+arg(filter.Category))
	}
	if filter.Location != "" {
		conditions = append(conditions, "i.location = "+arg(filter.Location))
	}
	if filter.OwnerID != 0 {
		conditions = append(conditions, "i.user_id = "+arg(filter.OwnerID))
	}
	if filter.OpenOnly {
		conditions = append(conditions, "i.status = "+arg(types.StatusOpen))
	}
	if filter.Query != "" {
		pattern := arg("%" + escapeLike(filter.Query) + "%")
		conditions = append(conditions, fmt.Sprintf(
			"(i.title ILIKE %[1]s OR i.description ILIKE %[1]s OR i.brand ILIKE %[1]s OR i.color ILIKE %[1]s)",
			pattern,
		))
	}

	query := "SELECT" + itemColumns + itemFrom
	if len(conditions) > 0 {
		query += "\n\tWHERE " + strings.Join(conditions, " AND ")
	}
	query += "\n\tORDER BY i.created_at DESC"
	if filter.Limit > 0 {
		query += "\n\tLIMIT " + arg(filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]types.Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Get returns a report by id regardless of ownership.
func (r *ItemRepository) Get(ctx context.Context, id int) (types.Item, error) {
	query := "SELECT" + itemColumns + itemFrom + "\n\tWHERE i.id = $1"
	return scanItemRow(r.db.QueryRowContext(ctx, query, id))
}

// GetOwned returns a report only when it is owned by ownerID. A report
// owned by someone else is indistinguishable from a nonexistent one.
func (r *ItemRepository) GetOwned(ctx context.Context, id, ownerID int) (types.Item, error) {
	query := "SELECT" + itemColumns + itemFrom + "\n\tWHERE i.id = $1 AND i.user_id = $2"
	return scanItemRow(r.db.QueryRowContext(ctx, query, id, ownerID))
}

func (r *ItemRepository) Create(ctx context.Context, item types.Item) (types.Item, error) {
	now := time.Now()
	item.CreatedAt = now
	item.UpdatedAt = now

	const query = `
		INSERT INTO items (user_id, title, description, type, category, location,
			date_lost_found, status, color, brand, photo_key, photo_content_type,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		item.UserID,
		item.Title,
		item.Description,
		item.Type,
		item.Category,
		item.Location,
		item.DateLostFound,
		item.Status,
		item.Color,
		item.Brand,
		item.PhotoKey,
		item.PhotoContentType,
		item.CreatedAt,
		item.UpdatedAt,
	).Scan(&item.ID); err != nil {
		return types.Item{}, mapInsertError(err)
	}
	return item, nil
}

// Update persists the mutable report fields. The owned-row predicate makes
// a non-owner's update land on zero rows, which maps to ErrNotFound.
func (r *ItemRepository) Update(ctx context.Context, item types.Item) (types.Item, error) {
	item.UpdatedAt = time.Now()

	const query = `
		UPDATE items
		SET title = $1,
			description = $2,
			type = $3,
			category = $4,
			location = $5,
			date_lost_found = $6,
			status = $7,
			color = $8,
			brand = $9,
			updated_at = $10
		WHERE id = $11 AND user_id = $12`
	result, err := r.db.ExecContext(
		ctx,
		query,
		item.Title,
		item.Description,
		item.Type,
		item.Category,
		item.Location,
		item.DateLostFound,
		item.Status,
		item.Color,
		item.Brand,
		item.UpdatedAt,
		item.ID,
		item.UserID,
	)
	if err != nil {
		return types.Item{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Item{}, err
	}
	if affected == 0 {
		return types.Item{}, ErrNotFound
	}
	return item, nil
}

// DeleteOwned removes a report owned by ownerID and returns the photo key
// that was stored on it so the blob can be cleaned up.
func (r *ItemRepository) DeleteOwned(ctx context.Context, id, ownerID int) (string, error) {
	const query = `
		DELETE FROM items
		WHERE id = $1 AND user_id = $2
		RETURNING photo_key`
	var photoKey string
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(&photoKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	return photoKey, nil
}

// SetPhoto records the object key and content type of an uploaded photo
// under the same owned-row predicate as Update.
func (r *ItemRepository) SetPhoto(ctx context.Context, id, ownerID int, key, contentType string) error {
	const query = `
		UPDATE items
		SET photo_key = $1,
			photo_content_type = $2,
			updated_at = $3
		WHERE id = $4 AND user_id = $5`
	result, err := r.db.ExecContext(ctx, query, key, contentType, time.Now(), id, ownerID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItemRow(row *sql.Row) (types.Item, error) {
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Item{}, ErrNotFound
		}
		return types.Item{}, err
	}
	return item, nil
}

func scanItem(row rowScanner) (types.Item, error) {
	var item types.Item
	if err := row.Scan(
		&item.ID,
		&item.UserID,
		&item.Title,
		&item.Description,
		&item.Type,
		&item.Category,
		&item.Location,
		&item.DateLostFound,
		&item.Status,
		&item.Color,
		&item.Brand,
		&item.PhotoKey,
		&item.PhotoContentType,
		&item.CreatedAt,
		&item.UpdatedAt,
		&item.Owner.Name,
		&item.Owner.StudentNumber,
	); err != nil {
		return types.Item{}, err
	}
	item.Owner.ID = item.UserID
	item.HasPhoto = item.PhotoKey != ""
	return item, nil
}

// escapeLike escapes the LIKE metacharacters so user input matches literally.
func escapeLike(value string) string {
	value = strings.ReplaceAll(value, `\`, `\\`)
	value = strings.ReplaceAll(value, `%`, `\%`)
	value = strings.ReplaceAll(value, `_`, `\_`)
	return value
}
