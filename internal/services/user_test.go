package services

import (
	"context"
	"testing"

	"github.com/campusfind/apiserver/internal/store"
	"github.com/campusfind/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	byID      types.User
	byIDErr   error
	updated   *types.User
	updateErr error
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id int) (types.User, error) {
	return f.byID, f.byIDErr
}

func (f *fakeUserRepo) GetByStudentNumber(ctx context.Context, studentNumber string) (types.User, error) {
	return f.byID, f.byIDErr
}

func (f *fakeUserRepo) Create(ctx context.Context, user types.User) (types.User, error) {
	user.ID = 1
	return user, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user types.User) (types.User, error) {
	if f.updateErr != nil {
		return types.User{}, f.updateErr
	}
	f.updated = &user
	return user, nil
}

func TestUserServiceUpdateProfilePartial(t *testing.T) {
	repo := &fakeUserRepo{byID: types.User{
		ID:            1,
		Name:          "Ada",
		StudentNumber: "s1001",
		Email:         "ada@campus.edu",
		Phone:         "555-0101",
	}}
	svc := NewUserService(repo)

	updated, err := svc.UpdateProfile(context.Background(), 1, "", "ada.l@campus.edu", "")
	require.NoError(t, err)

	// Empty fields keep their stored values; the student number never moves.
	assert.Equal(t, "Ada", updated.Name)
	assert.Equal(t, "ada.l@campus.edu", updated.Email)
	assert.Equal(t, "555-0101", updated.Phone)
	assert.Equal(t, "s1001", updated.StudentNumber)
}

func TestUserServiceUpdateProfileMissingUser(t *testing.T) {
	repo := &fakeUserRepo{byIDErr: store.ErrNotFound}
	svc := NewUserService(repo)

	_, err := svc.UpdateProfile(context.Background(), 9, "New Name", "", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.Nil(t, repo.updated)
}
