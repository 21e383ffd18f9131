package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"blogapi/internal/apperror"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

// CategoryService exposes category management. Mutations are admin-only,
// enforced by the router's role gate.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name, description string) (*model.Category, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categories repository.CategoryRepository
}

// NewCategoryService builds a CategoryService.
func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	return s.categories.List(ctx)
}

func (s *categoryService) Create(ctx context.Context, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	slug := Slugify(name)
	if slug == "" {
		return nil, apperror.NewValidation([]string{"name must contain at least one alphanumeric character"})
	}

	category := &model.Category{
		Name:        name,
		Slug:        slug,
		Description: strings.TrimSpace(description),
	}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *categoryService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.categories.Delete(ctx, id)
}
