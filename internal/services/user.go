package services

import (
	"context"

	"github.com/campusfind/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByStudentNumber(ctx context.Context, studentNumber string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByStudentNumber(ctx context.Context, studentNumber string) (types.User, error) {
	return s.repo.GetByStudentNumber(ctx, studentNumber)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

// UpdateProfile applies a partial profile update. An empty value keeps the
// stored one; the student number and password are not reachable from here.
func (s *UserService) UpdateProfile(ctx context.Context, id int, name, email, phone string) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if phone != "" {
		user.Phone = phone
	}

	return s.repo.Update(ctx, user)
}
