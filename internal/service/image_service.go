package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/gommon/log"

	apperrors "blogdesk/internal/errors"
	"blogdesk/internal/events"
	"blogdesk/internal/model"
	"blogdesk/internal/repository"
)

// UploadImageInput carries an image upload and its uploader.
type UploadImageInput struct {
	Name       string
	Data       string
	MimeType   string
	Size       int64
	UploadedBy string
}

// ImageService exposes image administration.
type ImageService interface {
	List(ctx context.Context) ([]model.ImageView, error)
	Upload(ctx context.Context, in UploadImageInput) (*model.Image, error)
	Delete(ctx context.Context, actorID, id string) error
}

type imageService struct {
	images repository.ImageRepository
	users  repository.UserRepository
	events events.Publisher
	logger echo.Logger
}

// NewImageService builds an ImageService. Users are read to resolve uploaders.
func NewImageService(images repository.ImageRepository, users repository.UserRepository, publisher events.Publisher, logger echo.Logger) ImageService {
	return &imageService{images: images, users: users, events: publisher, logger: logger}
}

// List returns images newest first with their uploaders resolved.
// An uploader that no longer resolves is left nil.
func (s *imageService) List(ctx context.Context) ([]model.ImageView, error) {
	images, err := s.images.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}

	seen := make(map[string]bool)
	var ids []string
	for _, img := range images {
		if !seen[img.UploadedBy] {
			seen[img.UploadedBy] = true
			ids = append(ids, img.UploadedBy)
		}
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve uploaders: %w", err)
	}
	refs := make(map[string]model.UserRef, len(users))
	for i := range users {
		refs[users[i].ID] = users[i].Ref()
	}

	views := make([]model.ImageView, 0, len(images))
	for _, img := range images {
		view := model.ImageView{
			ID:         img.ID,
			Name:       img.Name,
			Data:       img.Data,
			MimeType:   img.MimeType,
			Size:       img.Size,
			UploadedAt: img.UploadedAt,
		}
		if ref, ok := refs[img.UploadedBy]; ok {
			view.UploadedBy = &ref
		}
		views = append(views, view)
	}
	return views, nil
}

// dataURLSize returns the decoded payload size of a base64 data URL, or -1 if data is not one.
func dataURLSize(data string) int64 {
	if !strings.HasPrefix(data, "data:") {
		return -1
	}
	comma := strings.IndexByte(data, ',')
	if comma < 0 || !strings.HasSuffix(data[:comma], ";base64") {
		return -1
	}
	payload := strings.TrimRight(data[comma+1:], "=")
	return int64(base64.RawStdEncoding.DecodedLen(len(payload)))
}

func (s *imageService) Upload(ctx context.Context, in UploadImageInput) (*model.Image, error) {
	if !strings.HasPrefix(in.MimeType, "image/") {
		return nil, apperrors.Validation("Only image uploads are allowed")
	}
	payload := dataURLSize(in.Data)
	if payload < 0 {
		return nil, apperrors.Validation("Image data must be a base64 data URL")
	}
	if in.Size > model.MaxImageSize || payload > model.MaxImageSize {
		return nil, apperrors.Validation("Image is too large (max 5MB)")
	}

	image := &model.Image{
		ID:         model.NewID(),
		Name:       in.Name,
		Data:       in.Data,
		MimeType:   in.MimeType,
		Size:       in.Size,
		UploadedBy: in.UploadedBy,
		UploadedAt: time.Now().UTC(),
	}
	if err := s.images.Create(ctx, image); err != nil {
		return nil, fmt.Errorf("create image: %w", err)
	}

	s.logger.Infoj(log.JSON{"action": "image_uploaded", "image_id": image.ID, "actor_id": in.UploadedBy, "size": in.Size})
	s.events.Publish(ctx, events.New(events.ImageUploaded, image.ID, in.UploadedBy, map[string]any{"name": image.Name, "mimeType": image.MimeType, "size": image.Size}))
	return image, nil
}

func (s *imageService) Delete(ctx context.Context, actorID, id string) error {
	if !model.ValidID(id) {
		return apperrors.Validation("Invalid image ID")
	}
	if err := s.images.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrImageNotFound
		}
		return fmt.Errorf("delete image: %w", err)
	}

	s.logger.Infoj(log.JSON{"action": "image_deleted", "image_id": id, "actor_id": actorID})
	s.events.Publish(ctx, events.New(events.ImageDeleted, id, actorID, nil))
	return nil
}
