package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/campusfind/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func itemColumnNames() []string {
	return []string{
		"id", "user_id", "title", "description", "type", "category", "location",
		"date_lost_found", "status", "color", "brand", "photo_key", "photo_content_type",
		"created_at", "updated_at", "name", "student_number",
	}
}

func addItemRow(rows *sqlmock.Rows, id, userID int, title, status, photoKey string, at time.Time) {
	rows.AddRow(
		id, userID, title, "", types.ItemTypeLost, "Other", "Library",
		at, status, "", "", photoKey, "",
		at, at, "Ada", "s1001",
	)
}

func TestItemRepositoryListUnfiltered(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(itemColumnNames())
	addItemRow(rows, 2, 1, "Lost iPhone 15", types.StatusOpen, "", now)
	addItemRow(rows, 1, 1, "Found keys", types.StatusClosed, "k", now.Add(-time.Hour))

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY i.created_at DESC")).
		WillReturnRows(rows)

	repo := NewItemRepository(db)
	items, err := repo.List(context.Background(), types.ItemFilter{})
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lost iPhone 15", items[0].Title)
	assert.Equal(t, "Ada", items[0].Owner.Name)
	assert.Equal(t, "s1001", items[0].Owner.StudentNumber)
	assert.Equal(t, 1, items[0].Owner.ID)
	assert.False(t, items[0].HasPhoto)
	assert.True(t, items[1].HasPhoto)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepositoryListFilteredQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(itemColumnNames())
	addItemRow(rows, 1, 1, "Lost iPhone 15", types.StatusOpen, "", now)

	// One placeholder each for type, open status, the ILIKE pattern, and the limit.
	mock.ExpectQuery(regexp.QuoteMeta("i.title ILIKE")).
		WithArgs(types.ItemTypeLost, types.StatusOpen, "%iphone%", 50).
		WillReturnRows(rows)

	repo := NewItemRepository(db)
	items, err := repo.List(context.Background(), types.ItemFilter{
		Type:     types.ItemTypeLost,
		Query:    "iphone",
		OpenOnly: true,
		Limit:    50,
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepositoryListEscapesLikeInput(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("i.title ILIKE")).
		WithArgs(`%100\%%`).
		WillReturnRows(sqlmock.NewRows(itemColumnNames()))

	repo := NewItemRepository(db)
	_, err = repo.List(context.Background(), types.ItemFilter{Query: "100%"})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestItemRepositoryGetOwnedNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE i.id = $1 AND i.user_id = $2")).
		WithArgs(7, 2).
		WillReturnRows(sqlmock.NewRows(itemColumnNames()))

	repo := NewItemRepository(db)
	_, err = repo.GetOwned(context.Background(), 7, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemRepositoryUpdateNonOwner(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE items")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewItemRepository(db)
	_, err = repo.Update(context.Background(), types.Item{ID: 7, UserID: 2, Title: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemRepositoryDeleteOwnedReturnsPhotoKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM items")).
		WithArgs(7, 1).
		WillReturnRows(sqlmock.NewRows([]string{"photo_key"}).AddRow("items/7/abc"))

	repo := NewItemRepository(db)
	photoKey, err := repo.DeleteOwned(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.Equal(t, "items/7/abc", photoKey)
}

func TestItemRepositoryDeleteOwnedNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM items")).
		WithArgs(7, 2).
		WillReturnRows(sqlmock.NewRows([]string{"photo_key"}))

	repo := NewItemRepository(db)
	_, err = repo.DeleteOwned(context.Background(), 7, 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestItemRepositoryCreateReturnsID(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO items")).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))

	repo := NewItemRepository(db)
	item, err := repo.Create(context.Background(), types.Item{
		UserID:        1,
		Title:         "Lost iPhone 15",
		Type:          types.ItemTypeLost,
		Category:      "Electronics",
		Location:      "Library 2nd floor",
		DateLostFound: time.Now(),
		Status:        types.StatusOpen,
	})
	require.NoError(t, err)
	assert.Equal(t, 11, item.ID)
	assert.False(t, item.CreatedAt.IsZero())
}
