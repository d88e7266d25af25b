package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"blogdesk/internal/model"
	"blogdesk/internal/service"
)

// ImageHandler serves image administration.
type ImageHandler struct {
	svc service.ImageService
}

// NewImageHandler creates an image handler.
func NewImageHandler(svc service.ImageService) *ImageHandler {
	return &ImageHandler{svc: svc}
}

// UploadImageRequest is an image upload. Data is a base64 data URL.
type UploadImageRequest struct {
	Name     string `json:"name" validate:"required"`
	Data     string `json:"data" validate:"required"`
	MimeType string `json:"mimeType" validate:"required"`
	Size     int64  `json:"size" validate:"required,gt=0"`
}

var imageRules = []fieldRule{
	{"Name", "", "Missing required fields"},
	{"Data", "", "Missing required fields"},
	{"MimeType", "", "Missing required fields"},
	{"Size", "", "Missing required fields"},
}

// ImageResponse wraps an uploaded image.
type ImageResponse struct {
	Message string       `json:"message"`
	Image   *model.Image `json:"image"`
}

// ListImages godoc
// @Summary List images
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.ImageView
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/images [get]
func (h *ImageHandler) ListImages(c echo.Context) error {
	images, err := h.svc.List(c.Request().Context())
	if err != nil {
		return respondError(err, "Failed to fetch images")
	}
	return c.JSON(http.StatusOK, images)
}

// UploadImage godoc
// @Summary Upload an image
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UploadImageRequest true "Image"
// @Success 201 {object} ImageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/images [post]
func (h *ImageHandler) UploadImage(c echo.Context) error {
	var req UploadImageRequest
	normalize := func() {
		req.Name = strings.TrimSpace(req.Name)
		req.MimeType = strings.ToLower(strings.TrimSpace(req.MimeType))
	}
	if err := bindAndValidate(c, &req, normalize, imageRules); err != nil {
		return respondError(err, invalidBody)
	}

	image, err := h.svc.Upload(c.Request().Context(), service.UploadImageInput{
		Name:       req.Name,
		Data:       req.Data,
		MimeType:   req.MimeType,
		Size:       req.Size,
		UploadedBy: actorID(c),
	})
	if err != nil {
		return respondError(err, "Failed to upload image")
	}
	return c.JSON(http.StatusCreated, ImageResponse{Message: "Image uploaded successfully", Image: image})
}

// DeleteImage godoc
// @Summary Delete an image
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Image ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/images/{id} [delete]
func (h *ImageHandler) DeleteImage(c echo.Context) error {
	if err := h.svc.Delete(c.Request().Context(), actorID(c), c.Param("id")); err != nil {
		return respondError(err, "Failed to delete image")
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "Image deleted successfully"})
}
