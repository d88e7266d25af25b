package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"blogdesk/internal/model"
)

// BlogTotals aggregates blog counts and views across the store.
type BlogTotals struct {
	Published int64
	Draft     int64
	Views     int64
}

// Total is the number of blogs in any status.
func (t BlogTotals) Total() int64 {
	return t.Published + t.Draft
}

// BlogRepository defines blog persistence operations.
type BlogRepository interface {
	Create(ctx context.Context, blog *model.Blog) error
	FindByID(ctx context.Context, id string) (*model.Blog, error)
	// IncrementViews adds one view and returns the blog after the increment.
	IncrementViews(ctx context.Context, id string) (*model.Blog, error)
	Update(ctx context.Context, id string, patch model.BlogPatch, at time.Time) (*model.Blog, error)
	Delete(ctx context.Context, id string) error
	ListPublished(ctx context.Context) ([]model.Blog, error)
	ListAll(ctx context.Context) ([]model.Blog, error)
	Totals(ctx context.Context) (BlogTotals, error)
}

// patchFields maps the set fields of p to their column names, shared by both stores.
func patchFields(p model.BlogPatch) map[string]any {
	fields := make(map[string]any, 5)
	if p.Title != nil {
		fields["title"] = *p.Title
	}
	if p.Content != nil {
		fields["content"] = *p.Content
	}
	if p.Excerpt != nil {
		fields["excerpt"] = *p.Excerpt
	}
	if p.Thumbnail != nil {
		fields["thumbnail"] = *p.Thumbnail
	}
	if p.Status != nil {
		fields["status"] = *p.Status
	}
	return fields
}

type blogRepository struct {
	db *gorm.DB
}

// NewBlogRepository builds a GORM-backed repository.
func NewBlogRepository(db *gorm.DB) BlogRepository {
	return &blogRepository{db: db}
}

func (r *blogRepository) Create(ctx context.Context, blog *model.Blog) error {
	return gormErr(r.db.WithContext(ctx).Create(blog).Error)
}

func (r *blogRepository) FindByID(ctx context.Context, id string) (*model.Blog, error) {
	var blog model.Blog
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&blog).Error; err != nil {
		return nil, gormErr(err)
	}
	return &blog, nil
}

func (r *blogRepository) IncrementViews(ctx context.Context, id string) (*model.Blog, error) {
	res := r.db.WithContext(ctx).Model(&model.Blog{}).Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return nil, gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return r.FindByID(ctx, id)
}

func (r *blogRepository) Update(ctx context.Context, id string, patch model.BlogPatch, at time.Time) (*model.Blog, error) {
	fields := patchFields(patch)
	fields["updated_at"] = at
	if err := r.db.WithContext(ctx).Model(&model.Blog{}).Where("id = ?", id).Updates(fields).Error; err != nil {
		return nil, gormErr(err)
	}
	return r.FindByID(ctx, id)
}

func (r *blogRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Blog{})
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *blogRepository) ListPublished(ctx context.Context) ([]model.Blog, error) {
	var blogs []model.Blog
	err := r.db.WithContext(ctx).Where("status = ?", model.BlogPublished).
		Order("created_at desc").Find(&blogs).Error
	if err != nil {
		return nil, gormErr(err)
	}
	return blogs, nil
}

func (r *blogRepository) ListAll(ctx context.Context) ([]model.Blog, error) {
	var blogs []model.Blog
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&blogs).Error; err != nil {
		return nil, gormErr(err)
	}
	return blogs, nil
}

func (r *blogRepository) Totals(ctx context.Context) (BlogTotals, error) {
	var rows []struct {
		Status model.BlogStatus
		Count  int64
		Views  int64
	}
	err := r.db.WithContext(ctx).Model(&model.Blog{}).
		Select("status, COUNT(*) AS count, COALESCE(SUM(views), 0) AS views").
		Group("status").Scan(&rows).Error
	if err != nil {
		return BlogTotals{}, gormErr(err)
	}

	var totals BlogTotals
	for _, row := range rows {
		switch row.Status {
		case model.BlogPublished:
			totals.Published += row.Count
		default:
			totals.Draft += row.Count
		}
		totals.Views += row.Views
	}
	return totals, nil
}
