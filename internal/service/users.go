package service

import (
	"context"
	"fmt"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

func (s *UserService) Create(ctx context.Context, req *models.NewUserRequest) (*models.User, error) {
	exists, err := s.users.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, apperr.Conflict(apperr.ReasonUserExists, "user with email=%s already exists", req.Email)
	}

	user := &models.User{Email: req.Email, Name: req.Name}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func (s *UserService) List(ctx context.Context, ids []int64, from, size int) ([]models.User, error) {
	users, err := s.users.List(ctx, ids, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

func (s *UserService) Delete(ctx context.Context, id int64) error {
	deleted, err := s.users.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if !deleted {
		return apperr.NotFound(apperr.ReasonUserNotFound, "user with id=%d was not found", id)
	}
	return nil
}
