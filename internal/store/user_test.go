package store

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/campusfind/apiserver/types"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func userColumns() []string {
	return []string{"id", "name", "student_number", "email", "phone", "password_hash", "created_at", "updated_at"}
}

func TestUserRepositoryGetByStudentNumber(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("s1001").
		WillReturnRows(sqlmock.NewRows(userColumns()).
			AddRow(1, "Ada", "s1001", "ada@campus.edu", "", "hash", now, now))

	repo := NewUserRepository(db)
	user, err := repo.GetByStudentNumber(context.Background(), "s1001")
	require.NoError(t, err)
	assert.Equal(t, 1, user.ID)
	assert.Equal(t, "Ada", user.Name)
	assert.Equal(t, "s1001", user.StudentNumber)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryGetByStudentNumberNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM users")).
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(userColumns()))

	repo := NewUserRepository(db)
	_, err = repo.GetByStudentNumber(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserRepositoryCreateDuplicate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO users")).
		WillReturnError(&pq.Error{Code: pqUniqueViolation})

	repo := NewUserRepository(db)
	_, err = repo.Create(context.Background(), types.User{
		Name:          "Ada",
		StudentNumber: "s1001",
		PasswordHash:  "hash",
	})
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestUserRepositoryUpdateNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE users")).
		WillReturnResult(sqlmock.NewResult(0, 0))

	repo := NewUserRepository(db)
	_, err = repo.Update(context.Background(), types.User{ID: 42, Name: "Ada"})
	assert.ErrorIs(t, err, ErrNotFound)
}
