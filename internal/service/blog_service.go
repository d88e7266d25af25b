package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	"blogdesk/internal/cache"
	apperrors "blogdesk/internal/errors"
	"blogdesk/internal/events"
	"blogdesk/internal/model"
	"blogdesk/internal/repository"
)

const publishedBlogsKey = "blogs:published"

// CreateBlogInput carries a validated blog creation request and its author.
type CreateBlogInput struct {
	Title     string
	Content   string
	Excerpt   string
	Thumbnail string
	Status    model.BlogStatus
	AuthorID  string
	Author    string
}

// BlogService exposes blog reading and administration.
type BlogService interface {
	ListPublished(ctx context.Context) ([]model.Blog, error)
	ListAll(ctx context.Context) ([]model.Blog, error)
	View(ctx context.Context, id string) (*model.Blog, error)
	Create(ctx context.Context, in CreateBlogInput) (*model.Blog, error)
	Update(ctx context.Context, actorID, id string, patch model.BlogPatch) (*model.Blog, error)
	Delete(ctx context.Context, actorID, id string) error
}

type blogService struct {
	repo     repository.BlogRepository
	cache    *cache.Client
	cacheTTL time.Duration
	events   events.Publisher
	logger   echo.Logger
}

// NewBlogService builds a BlogService. The published list is cached for cacheTTL.
func NewBlogService(repo repository.BlogRepository, cache *cache.Client, cacheTTL time.Duration, publisher events.Publisher, logger echo.Logger) BlogService {
	return &blogService{repo: repo, cache: cache, cacheTTL: cacheTTL, events: publisher, logger: logger}
}

func blogErr(op string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.ErrBlogNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func (s *blogService) ListPublished(ctx context.Context) ([]model.Blog, error) {
	var cached []model.Blog
	if s.cache.GetJSON(ctx, publishedBlogsKey, &cached) {
		return cached, nil
	}

	blogs, err := s.repo.ListPublished(ctx)
	if err != nil {
		return nil, fmt.Errorf("list published blogs: %w", err)
	}
	if blogs == nil {
		blogs = []model.Blog{}
	}
	s.cache.SetJSON(ctx, publishedBlogsKey, blogs, s.cacheTTL)
	return blogs, nil
}

func (s *blogService) ListAll(ctx context.Context) ([]model.Blog, error) {
	blogs, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	if blogs == nil {
		blogs = []model.Blog{}
	}
	return blogs, nil
}

// View returns a blog after counting one view on it.
func (s *blogService) View(ctx context.Context, id string) (*model.Blog, error) {
	if !model.ValidID(id) {
		return nil, apperrors.Validation("Invalid blog ID")
	}
	blog, err := s.repo.IncrementViews(ctx, id)
	if err != nil {
		return nil, blogErr("view blog", err)
	}
	// The published list carries view counts.
	if blog.Status == model.BlogPublished {
		s.invalidate(ctx)
	}
	return blog, nil
}

func (s *blogService) Create(ctx context.Context, in CreateBlogInput) (*model.Blog, error) {
	if in.Status == "" {
		in.Status = model.BlogDraft
	}
	if !in.Status.Valid() {
		return nil, apperrors.Validation("Invalid status. Must be 'draft' or 'published'")
	}
	if in.Excerpt == "" {
		in.Excerpt = model.DefaultExcerpt(in.Content)
	}

	now := time.Now().UTC()
	blog := &model.Blog{
		ID:        model.NewID(),
		Title:     in.Title,
		Content:   in.Content,
		Excerpt:   in.Excerpt,
		Thumbnail: in.Thumbnail,
		Author:    in.Author,
		AuthorID:  in.AuthorID,
		Status:    in.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Create(ctx, blog); err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}

	s.invalidate(ctx)
	s.logger.Infoj(log.JSON{"action": "blog_created", "blog_id": blog.ID, "actor_id": in.AuthorID, "status": blog.Status})
	s.events.Publish(ctx, events.New(events.BlogCreated, blog.ID, in.AuthorID, map[string]any{"title": blog.Title, "status": blog.Status}))
	return blog, nil
}

// Update applies a partial update. Concurrent updates are last write wins.
func (s *blogService) Update(ctx context.Context, actorID, id string, patch model.BlogPatch) (*model.Blog, error) {
	if !model.ValidID(id) {
		return nil, apperrors.Validation("Invalid blog ID")
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return nil, apperrors.Validation("Invalid status. Must be 'draft' or 'published'")
	}

	blog, err := s.repo.Update(ctx, id, patch, time.Now().UTC())
	if err != nil {
		return nil, blogErr("update blog", err)
	}

	s.invalidate(ctx)
	s.logger.Infoj(log.JSON{"action": "blog_updated", "blog_id": id, "actor_id": actorID})
	s.events.Publish(ctx, events.New(events.BlogUpdated, id, actorID, map[string]any{"status": blog.Status}))
	return blog, nil
}

func (s *blogService) Delete(ctx context.Context, actorID, id string) error {
	if !model.ValidID(id) {
		return apperrors.Validation("Invalid blog ID")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return blogErr("delete blog", err)
	}

	s.invalidate(ctx)
	s.logger.Infoj(log.JSON{"action": "blog_deleted", "blog_id": id, "actor_id": actorID})
	s.events.Publish(ctx, events.New(events.BlogDeleted, id, actorID, nil))
	return nil
}

func (s *blogService) invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, publishedBlogsKey)
}
