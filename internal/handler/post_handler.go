package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"blogapi/internal/apperror"
	"blogapi/internal/auth"
	"blogapi/internal/service"
)

// PostHandler handles post CRUD endpoints.
type PostHandler struct {
	postService service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postService service.PostService) *PostHandler {
	return &PostHandler{postService: postService}
}

// CreatePostRequest represents a post creation request.
type CreatePostRequest struct {
	Title      string   `json:"title" validate:"required,min=3,max=200"`
	Content    string   `json:"content" validate:"required,min=10"`
	Slug       string   `json:"slug,omitempty"`
	CategoryID string   `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Published  bool     `json:"published,omitempty"`
}

func (r *CreatePostRequest) normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Slug = strings.TrimSpace(r.Slug)
}

// UpdatePostRequest represents a partial post update request.
type UpdatePostRequest struct {
	Title      *string  `json:"title,omitempty" validate:"omitempty,min=3,max=200"`
	Content    *string  `json:"content,omitempty" validate:"omitempty,min=10"`
	Slug       *string  `json:"slug,omitempty"`
	CategoryID *string  `json:"category_id,omitempty"`
	Tags       []string `json:"tags,omitempty"`
	Published  *bool    `json:"published,omitempty"`
}

func (r *UpdatePostRequest) normalize() {
	if r.Title != nil {
		*r.Title = strings.TrimSpace(*r.Title)
	}
	if r.Slug != nil {
		*r.Slug = strings.TrimSpace(*r.Slug)
	}
}

// DeleteResponse acknowledges a deletion.
type DeleteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// List godoc
// @Summary List posts newest-first
// @Tags posts
// @Produce json
// @Param category query string false "Category ID filter"
// @Param page query int false "Page number (default 1)"
// @Param limit query int false "Page size (default 10)"
// @Success 200 {array} model.Post
// @Failure 400 {object} apperror.ErrorResponse
// @Router /posts [get]
func (h *PostHandler) List(c echo.Context) error {
	params := service.ListPostsParams{
		Page:  queryInt(c, "page", 0),
		Limit: queryInt(c, "limit", 0),
	}
	if category := c.QueryParam("category"); category != "" {
		id, err := uuid.Parse(category)
		if err != nil {
			return apperror.NewMalformedID(err)
		}
		params.CategoryID = &id
	}

	posts, err := h.postService.List(c.Request().Context(), params)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

// Get godoc
// @Summary Get a post by id
// @Tags posts
// @Produce json
// @Param id path string true "Post ID"
// @Success 200 {object} model.Post
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/{id} [get]
func (h *PostHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	post, err := h.postService.Get(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Create godoc
// @Summary Create a post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePostRequest true "Post payload"
// @Success 201 {object} model.Post
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 401 {object} apperror.ErrorResponse
// @Router /posts [post]
func (h *PostHandler) Create(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperror.NewNotAuthorized(auth.MsgNotAuthorized, nil)
	}

	var req CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	categoryID, err := optionalUUID(req.CategoryID)
	if err != nil {
		return err
	}

	post, err := h.postService.Create(c.Request().Context(), user, service.CreatePostParams{
		Title:      req.Title,
		Content:    req.Content,
		Slug:       req.Slug,
		CategoryID: categoryID,
		Tags:       req.Tags,
		Published:  req.Published,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, post)
}

// Update godoc
// @Summary Update a post (author or admin only)
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Param request body UpdatePostRequest true "Fields to update"
// @Success 200 {object} model.Post
// @Failure 400 {object} apperror.ErrorResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/{id} [put]
func (h *PostHandler) Update(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperror.NewNotAuthorized(auth.MsgNotAuthorized, nil)
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req UpdatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	var categoryID *uuid.UUID
	if req.CategoryID != nil {
		categoryID, err = optionalUUID(*req.CategoryID)
		if err != nil {
			return err
		}
	}

	post, err := h.postService.Update(c.Request().Context(), user, id, service.UpdatePostParams{
		Title:      req.Title,
		Content:    req.Content,
		Slug:       req.Slug,
		CategoryID: categoryID,
		Tags:       req.Tags,
		Published:  req.Published,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, post)
}

// Delete godoc
// @Summary Delete a post (author or admin only)
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path string true "Post ID"
// @Success 200 {object} DeleteResponse
// @Failure 403 {object} apperror.ErrorResponse
// @Failure 404 {object} apperror.ErrorResponse
// @Router /posts/{id} [delete]
func (h *PostHandler) Delete(c echo.Context) error {
	user, ok := auth.CurrentUser(c)
	if !ok {
		return apperror.NewNotAuthorized(auth.MsgNotAuthorized, nil)
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}
	if err := h.postService.Delete(c.Request().Context(), user, id); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, DeleteResponse{Success: true, Message: "Post deleted"})
}

func queryInt(c echo.Context, name string, def int) int {
	if v := c.QueryParam(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func optionalUUID(value string) (*uuid.UUID, error) {
	if value == "" {
		return nil, nil
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return nil, apperror.NewMalformedID(err)
	}
	return &id, nil
}
