package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"blogapi/internal/model"
)

// ListPostsParams narrows and pages a post listing.
type ListPostsParams struct {
	CategoryID *uuid.UUID
	Offset     int
	Limit      int
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error)
	List(ctx context.Context, params ListPostsParams) ([]model.Post, error)
	Update(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository builds a GORM-backed repository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return translateError(r.db.WithContext(ctx).Create(post).Error, "post")
}

func (r *postRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	var post model.Post
	err := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select(publicUserColumns)
		}).
		Preload("Category").
		First(&post, "id = ?", id).Error
	if err != nil {
		return nil, translateError(err, "post")
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, params ListPostsParams) ([]model.Post, error) {
	query := r.db.WithContext(ctx).
		Preload("Author", func(db *gorm.DB) *gorm.DB {
			return db.Select(publicUserColumns)
		}).
		Preload("Category").
		Order("created_at DESC")

	if params.CategoryID != nil {
		query = query.Where("category_id = ?", *params.CategoryID)
	}
	if params.Limit > 0 {
		query = query.Offset(params.Offset).Limit(params.Limit)
	}

	var posts []model.Post
	if err := query.Find(&posts).Error; err != nil {
		return nil, translateError(err, "post")
	}
	return posts, nil
}

func (r *postRepository) Update(ctx context.Context, post *model.Post) error {
	return translateError(r.db.WithContext(ctx).Save(post).Error, "post")
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&model.Post{}, "id = ?", id)
	if result.Error != nil {
		return translateError(result.Error, "post")
	}
	if result.RowsAffected == 0 {
		return translateError(gorm.ErrRecordNotFound, "post")
	}
	return nil
}
