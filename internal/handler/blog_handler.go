package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"blogdesk/internal/auth"
	"blogdesk/internal/errors"
	"blogdesk/internal/model"
	"blogdesk/internal/service"
)

// BlogHandler serves public blog reads and blog administration.
type BlogHandler struct {
	svc service.BlogService
}

// NewBlogHandler creates a blog handler.
func NewBlogHandler(svc service.BlogService) *BlogHandler {
	return &BlogHandler{svc: svc}
}

// CreateBlogRequest is the body of a blog creation.
type CreateBlogRequest struct {
	Title     string `json:"title" validate:"required,min=3"`
	Content   string `json:"content" validate:"required,min=10"`
	Excerpt   string `json:"excerpt"`
	Thumbnail string `json:"thumbnail"`
	Status    string `json:"status" validate:"omitempty,oneof=draft published"`
}

// UpdateBlogRequest is the body of a partial blog update. Omitted fields are unchanged.
type UpdateBlogRequest struct {
	Title     *string `json:"title" validate:"omitnil,min=3"`
	Content   *string `json:"content" validate:"omitnil,min=10"`
	Excerpt   *string `json:"excerpt"`
	Thumbnail *string `json:"thumbnail"`
	Status    *string `json:"status" validate:"omitnil,oneof=draft published"`
}

var blogRules = []fieldRule{
	{"Title", "required", "Title and content are required"},
	{"Content", "required", "Title and content are required"},
	{"Title", "min", "Title must be at least 3 characters"},
	{"Content", "min", "Content must be at least 10 characters"},
	{"Status", "oneof", "Invalid status. Must be 'draft' or 'published'"},
}

// BlogResponse wraps a single blog.
type BlogResponse struct {
	Message string      `json:"message,omitempty"`
	Blog    *model.Blog `json:"blog"`
}

func trimPtr(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// ListPublished godoc
// @Summary List published blogs
// @Tags blogs
// @Produce json
// @Success 200 {array} model.Blog
// @Failure 500 {object} errors.ErrorResponse
// @Router /blogs [get]
func (h *BlogHandler) ListPublished(c echo.Context) error {
	blogs, err := h.svc.ListPublished(c.Request().Context())
	if err != nil {
		return respondError(err, "Failed to fetch blogs")
	}
	return c.JSON(http.StatusOK, blogs)
}

// GetBlog godoc
// @Summary Read a blog
// @Description Returns the blog and counts one view.
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} BlogResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /blogs/{id} [get]
func (h *BlogHandler) GetBlog(c echo.Context) error {
	blog, err := h.svc.View(c.Request().Context(), c.Param("id"))
	if err != nil {
		return respondError(err, "Failed to fetch blog")
	}
	return c.JSON(http.StatusOK, BlogResponse{Blog: blog})
}

// ListAll godoc
// @Summary List all blogs including drafts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Blog
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/blogs [get]
func (h *BlogHandler) ListAll(c echo.Context) error {
	blogs, err := h.svc.ListAll(c.Request().Context())
	if err != nil {
		return respondError(err, "Failed to fetch blogs")
	}
	return c.JSON(http.StatusOK, blogs)
}

// CreateBlog godoc
// @Summary Create a blog
// @Description Status defaults to draft and excerpt to the first 150 characters of content.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateBlogRequest true "Blog"
// @Success 201 {object} BlogResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/blogs [post]
func (h *BlogHandler) CreateBlog(c echo.Context) error {
	var req CreateBlogRequest
	normalize := func() {
		req.Title = strings.TrimSpace(req.Title)
		req.Content = strings.TrimSpace(req.Content)
		req.Excerpt = strings.TrimSpace(req.Excerpt)
		req.Thumbnail = strings.TrimSpace(req.Thumbnail)
		req.Status = strings.TrimSpace(req.Status)
	}
	if err := bindAndValidate(c, &req, normalize, blogRules); err != nil {
		return respondError(err, invalidBody)
	}

	session := auth.SessionFrom(c)
	if session == nil {
		return respondError(errors.ErrUnauthenticated, "")
	}
	blog, err := h.svc.Create(c.Request().Context(), service.CreateBlogInput{
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Thumbnail: req.Thumbnail,
		Status:    model.BlogStatus(req.Status),
		AuthorID:  session.UserID,
		Author:    session.DisplayName(),
	})
	if err != nil {
		return respondError(err, "Failed to create blog")
	}
	return c.JSON(http.StatusCreated, BlogResponse{Message: "Blog created successfully", Blog: blog})
}

// UpdateBlog godoc
// @Summary Update a blog
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Param request body UpdateBlogRequest true "Fields to change"
// @Success 200 {object} BlogResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/blogs/{id} [put]
func (h *BlogHandler) UpdateBlog(c echo.Context) error {
	id := c.Param("id")
	if !model.ValidID(id) {
		return respondError(errors.Validation("Invalid blog ID"), "")
	}

	var req UpdateBlogRequest
	normalize := func() {
		trimPtr(req.Title)
		trimPtr(req.Content)
		trimPtr(req.Excerpt)
		trimPtr(req.Thumbnail)
		trimPtr(req.Status)
	}
	if err := bindAndValidate(c, &req, normalize, blogRules); err != nil {
		return respondError(err, invalidBody)
	}

	patch := model.BlogPatch{
		Title:     req.Title,
		Content:   req.Content,
		Excerpt:   req.Excerpt,
		Thumbnail: req.Thumbnail,
	}
	if req.Status != nil {
		status := model.BlogStatus(*req.Status)
		patch.Status = &status
	}

	blog, err := h.svc.Update(c.Request().Context(), actorID(c), id, patch)
	if err != nil {
		return respondError(err, "Failed to update blog")
	}
	return c.JSON(http.StatusOK, BlogResponse{Message: "Blog updated successfully", Blog: blog})
}

// DeleteBlog godoc
// @Summary Delete a blog
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Blog ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/blogs/{id} [delete]
func (h *BlogHandler) DeleteBlog(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), actorID(c), c.Param("id")); err != nil {
		return respondError(err, "Failed to delete blog")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Blog deleted successfully"})
}
