package service

import (
	"context"
	"fmt"

	"afisha/internal/apperr"
	"afisha/internal/models"
)

type CategoryService struct {
	categories CategoryStore
}

func NewCategoryService(categories CategoryStore) *CategoryService {
	return &CategoryService{categories: categories}
}

func (s *CategoryService) Create(ctx context.Context, req *models.NewCategoryRequest) (*models.Category, error) {
	taken, err := s.categories.ExistsByName(ctx, req.Name, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if taken {
		return nil, apperr.Conflict(apperr.ReasonCategoryNameTaken, "category name %q is already taken", req.Name)
	}

	category := &models.Category{Name: req.Name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) Update(ctx context.Context, id int64, req *models.NewCategoryRequest) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, apperr.NotFound(apperr.ReasonCategoryNotFound, "category with id=%d was not found", id)
	}

	taken, err := s.categories.ExistsByName(ctx, req.Name, id)
	if err != nil {
		return nil, fmt.Errorf("failed to check category name: %w", err)
	}
	if taken {
		return nil, apperr.Conflict(apperr.ReasonCategoryNameTaken, "category name %q is already taken", req.Name)
	}

	category.Name = req.Name
	if err := s.categories.Update(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return category, nil
}

// Delete refuses to remove a category that still has events.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return apperr.NotFound(apperr.ReasonCategoryNotFound, "category with id=%d was not found", id)
	}

	inUse, err := s.categories.InUse(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to check category usage: %w", err)
	}
	if inUse {
		return apperr.Conflict(apperr.ReasonCategoryInUse, "category with id=%d still has events", id)
	}

	if _, err := s.categories.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete category: %w", err)
	}
	return nil
}

func (s *CategoryService) GetByID(ctx context.Context, id int64) (*models.Category, error) {
	category, err := s.categories.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	if category == nil {
		return nil, apperr.NotFound(apperr.ReasonCategoryNotFound, "category with id=%d was not found", id)
	}
	return category, nil
}

func (s *CategoryService) List(ctx context.Context, from, size int) ([]models.Category, error) {
	categories, err := s.categories.List(ctx, from, size)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	if categories == nil {
		categories = []models.Category{}
	}
	return categories, nil
}
