package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"blogapi/internal/apperror"
	"blogapi/internal/cache"
	"blogapi/internal/model"
	"blogapi/internal/repository"
)

const (
	postCacheTTL    = 5 * time.Minute
	postCachePrefix = "post:"
	defaultPage     = 1
	defaultPageSize = 10
)

// CreatePostParams carries the fields accepted when creating a post.
type CreatePostParams struct {
	Title      string
	Content    string
	Slug       string
	CategoryID *uuid.UUID
	Tags       []string
	Published  bool
}

// UpdatePostParams carries the fields accepted when updating a post.
// Nil pointers leave the corresponding field untouched.
type UpdatePostParams struct {
	Title      *string
	Content    *string
	Slug       *string
	CategoryID *uuid.UUID
	Tags       []string
	Published  *bool
}

// ListPostsParams filters and pages a post listing.
type ListPostsParams struct {
	CategoryID *uuid.UUID
	Page       int
	Limit      int
}

// PostService exposes post CRUD with ownership checks.
type PostService interface {
	List(ctx context.Context, params ListPostsParams) ([]model.Post, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Post, error)
	Create(ctx context.Context, author *model.User, params CreatePostParams) (*model.Post, error)
	Update(ctx context.Context, requester *model.User, id uuid.UUID, params UpdatePostParams) (*model.Post, error)
	Delete(ctx context.Context, requester *model.User, id uuid.UUID) error
}

type postService struct {
	posts repository.PostRepository
	cache *cache.Client
}

// NewPostService builds a PostService with repository and cache.
func NewPostService(posts repository.PostRepository, cache *cache.Client) PostService {
	return &postService{posts: posts, cache: cache}
}

func (s *postService) cacheKey(id uuid.UUID) string {
	return postCachePrefix + id.String()
}

// List returns posts newest-first with optional category filter and
// page/limit pagination.
func (s *postService) List(ctx context.Context, params ListPostsParams) ([]model.Post, error) {
	page := params.Page
	if page < 1 {
		page = defaultPage
	}
	limit := params.Limit
	if limit < 1 {
		limit = defaultPageSize
	}
	return s.posts.List(ctx, repository.ListPostsParams{
		CategoryID: params.CategoryID,
		Offset:     (page - 1) * limit,
		Limit:      limit,
	})
}

func (s *postService) Get(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.Post
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(post); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, postCacheTTL)
	}
	return post, nil
}

// Create persists a new post owned by author. The slug is derived from the
// title unless one was supplied explicitly; uniqueness is enforced by the
// store's unique index.
func (s *postService) Create(ctx context.Context, author *model.User, params CreatePostParams) (*model.Post, error) {
	title := strings.TrimSpace(params.Title)
	slug := strings.TrimSpace(params.Slug)
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return nil, apperror.NewValidation([]string{"title must contain at least one alphanumeric character"})
	}

	post := &model.Post{
		Title:      title,
		Content:    params.Content,
		Slug:       slug,
		CategoryID: params.CategoryID,
		Tags:       trimTags(params.Tags),
		Published:  params.Published,
		AuthorID:   author.ID,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return s.posts.FindByID(ctx, post.ID)
}

// Update applies a partial update after the ownership check. The slug is
// regenerated when the title changes, unless an explicit slug was supplied.
func (s *postService) Update(ctx context.Context, requester *model.User, id uuid.UUID, params UpdatePostParams) (*model.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(requester, post); err != nil {
		return nil, err
	}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title != post.Title && params.Slug == nil {
			slug := Slugify(title)
			if slug == "" {
				return nil, apperror.NewValidation([]string{"title must contain at least one alphanumeric character"})
			}
			post.Slug = slug
		}
		post.Title = title
	}
	if params.Slug != nil {
		slug := strings.TrimSpace(*params.Slug)
		if slug == "" {
			return nil, apperror.NewValidation([]string{"slug must not be empty"})
		}
		post.Slug = slug
	}
	if params.Content != nil {
		post.Content = *params.Content
	}
	if params.CategoryID != nil {
		post.CategoryID = params.CategoryID
	}
	if params.Tags != nil {
		post.Tags = trimTags(params.Tags)
	}
	if params.Published != nil {
		post.Published = *params.Published
	}

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return s.posts.FindByID(ctx, id)
}

// Delete removes a post after the ownership check.
func (s *postService) Delete(ctx context.Context, requester *model.User, id uuid.UUID) error {
	post, err := s.posts.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeOwner(requester, post); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// authorizeOwner permits the post's author and any admin.
func authorizeOwner(requester *model.User, post *model.Post) error {
	if requester.ID == post.AuthorID || requester.IsAdmin() {
		return nil
	}
	return apperror.NewForbidden("Not authorized to modify this post")
}

func trimTags(tags []string) []string {
	trimmed := make([]string, 0, len(tags))
	for _, tag := range tags {
		if t := strings.TrimSpace(tag); t != "" {
			trimmed = append(trimmed, t)
		}
	}
	return trimmed
}
