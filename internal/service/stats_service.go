package service

import (
	"context"
	"fmt"

	"blogdesk/internal/repository"
)

// DashboardStats are the back-office headline numbers.
type DashboardStats struct {
	TotalBlogs     int64 `json:"totalBlogs"`
	PublishedBlogs int64 `json:"publishedBlogs"`
	DraftBlogs     int64 `json:"draftBlogs"`
	TotalUsers     int64 `json:"totalUsers"`
	TotalImages    int64 `json:"totalImages"`
	TotalViews     int64 `json:"totalViews"`
}

// StatsService computes dashboard statistics from store counts.
type StatsService interface {
	Dashboard(ctx context.Context) (*DashboardStats, error)
}

type statsService struct {
	blogs  repository.BlogRepository
	users  repository.UserRepository
	images repository.ImageRepository
}

// NewStatsService builds a StatsService.
func NewStatsService(blogs repository.BlogRepository, users repository.UserRepository, images repository.ImageRepository) StatsService {
	return &statsService{blogs: blogs, users: users, images: images}
}

func (s *statsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	totals, err := s.blogs.Totals(ctx)
	if err != nil {
		return nil, fmt.Errorf("blog totals: %w", err)
	}
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	images, err := s.images.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count images: %w", err)
	}

	return &DashboardStats{
		TotalBlogs:     totals.Total(),
		PublishedBlogs: totals.Published,
		DraftBlogs:     totals.Draft,
		TotalUsers:     users,
		TotalImages:    images,
		TotalViews:     totals.Views,
	}, nil
}
