package repository

import (
	"context"

	"gorm.io/gorm"

	"blogdesk/internal/model"
)

// ImageRepository defines image persistence operations.
type ImageRepository interface {
	Create(ctx context.Context, image *model.Image) error
	List(ctx context.Context) ([]model.Image, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

type imageRepository struct {
	db *gorm.DB
}

// NewImageRepository builds a GORM-backed repository.
func NewImageRepository(db *gorm.DB) ImageRepository {
	return &imageRepository{db: db}
}

func (r *imageRepository) Create(ctx context.Context, image *model.Image) error {
	return gormErr(r.db.WithContext(ctx).Create(image).Error)
}

func (r *imageRepository) List(ctx context.Context) ([]model.Image, error) {
	var images []model.Image
	if err := r.db.WithContext(ctx).Order("uploaded_at desc").Find(&images).Error; err != nil {
		return nil, gormErr(err)
	}
	return images, nil
}

func (r *imageRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Image{})
	if res.Error != nil {
		return gormErr(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *imageRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Image{}).Count(&n).Error; err != nil {
		return 0, gormErr(err)
	}
	return n, nil
}
