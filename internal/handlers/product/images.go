package product

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"dkstore_back_end/internal/apperr"
	"dkstore_back_end/internal/catalog"
	"dkstore_back_end/internal/handlers"
	"dkstore_back_end/internal/services"
)

// ImageStorage is the object store behind product images.
type ImageStorage interface {
	Put(ctx context.Context, productID uint, filename, contentType string, r io.Reader, size int64) (key, url string, err error)
	Remove(ctx context.Context, key string) error
}

// URLSigner is implemented by stores whose objects are not publicly readable.
type URLSigner interface {
	Private() bool
	SignedURL(ctx context.Context, imageURL string, ttl time.Duration) (string, error)
}

type ImageHandler struct {
	catalog *catalog.Service
	storage ImageStorage
	maxSize int64
}

func NewImageHandler(svc *catalog.Service, storage ImageStorage, maxSize int64) *ImageHandler {
	return &ImageHandler{catalog: svc, storage: storage, maxSize: maxSize}
}

func (h *ImageHandler) validateFile(fh *multipart.FileHeader) error {
	if !strings.HasPrefix(fh.Header.Get("Content-Type"), "image/") {
		return apperr.Validation("%s: only image files are allowed", fh.Filename)
	}
	if h.maxSize > 0 && fh.Size > h.maxSize {
		return apperr.Validation("%s: file exceeds %d bytes", fh.Filename, h.maxSize)
	}
	return nil
}

// POST /api/uploads/products/:productId/images
func (h *ImageHandler) UploadImages(c *gin.Context) {
	productID, err := handlers.ParamID(c, "productId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	form, err := c.MultipartForm()
	if err != nil {
		handlers.BadRequest(c, err)
		return
	}
	files := form.File["images"]
	if len(files) == 0 {
		handlers.Fail(c, apperr.Validation("no images were sent"))
		return
	}
	if len(files) > catalog.MaxProductImages {
		handlers.Fail(c, apperr.Validation("at most %d images per upload", catalog.MaxProductImages))
		return
	}
	for _, fh := range files {
		if err := h.validateFile(fh); err != nil {
			handlers.Fail(c, err)
			return
		}
	}

	ctx := c.Request.Context()
	uploads := make([]catalog.NewImage, 0, len(files))
	rollback := func() {
		for _, up := range uploads {
			if err := h.storage.Remove(ctx, up.ObjectKey); err != nil {
				slog.WarnContext(ctx, "orphan image left in storage", "key", up.ObjectKey, "error", err)
			}
		}
	}

	for _, fh := range files {
		up, err := h.store(ctx, productID, fh)
		if err != nil {
			rollback()
			if errors.Is(err, services.ErrStorageDisabled) {
				handlers.Abort(c, http.StatusServiceUnavailable, "image storage unavailable")
				return
			}
			handlers.Fail(c, apperr.Internal(err, "image upload failed"))
			return
		}
		uploads = append(uploads, up)
	}

	images, err := h.catalog.AddImages(ctx, productID, uploads)
	if err != nil {
		rollback()
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusCreated, fmt.Sprintf("%d image(s) uploaded", len(images)), images)
}

func (h *ImageHandler) store(ctx context.Context, productID uint, fh *multipart.FileHeader) (catalog.NewImage, error) {
	f, err := fh.Open()
	if err != nil {
		return catalog.NewImage{}, err
	}
	defer f.Close()

	key, url, err := h.storage.Put(ctx, productID, fh.Filename, fh.Header.Get("Content-Type"), f, fh.Size)
	if err != nil {
		return catalog.NewImage{}, err
	}
	alt := strings.TrimSuffix(filepath.Base(fh.Filename), filepath.Ext(fh.Filename))
	return catalog.NewImage{URL: url, ObjectKey: key, AltText: alt}, nil
}

// GET /api/uploads/products/:productId/images
func (h *ImageHandler) ListImages(c *gin.Context) {
	productID, err := handlers.ParamID(c, "productId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	ctx := c.Request.Context()
	images, err := h.catalog.ListImages(ctx, productID)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	if signer, ok := h.storage.(URLSigner); ok && signer.Private() {
		for i := range images {
			signed, err := signer.SignedURL(ctx, images[i].ImageURL, 0)
			if err != nil {
				handlers.Fail(c, apperr.Internal(err, "failed to sign image url"))
				return
			}
			images[i].ImageURL = signed
		}
	}
	handlers.OK(c, images)
}

// DELETE /api/uploads/products/:productId/images/:imageId
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	productID, err := handlers.ParamID(c, "productId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	imageID, err := handlers.ParamID(c, "imageId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}

	img, err := h.catalog.DeleteImage(c.Request.Context(), productID, imageID)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	if err := h.storage.Remove(c.Request.Context(), img.ObjectKey); err != nil {
		slog.WarnContext(c.Request.Context(), "image row deleted but object kept", "key", img.ObjectKey, "error", err)
	}
	handlers.Message(c, http.StatusOK, "image deleted", nil)
}

// PUT /api/uploads/products/:productId/images/:imageId/primary
func (h *ImageHandler) SetPrimary(c *gin.Context) {
	productID, err := handlers.ParamID(c, "productId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	imageID, err := handlers.ParamID(c, "imageId")
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	img, err := h.catalog.SetPrimaryImage(c.Request.Context(), productID, imageID)
	if err != nil {
		handlers.Fail(c, err)
		return
	}
	handlers.Message(c, http.StatusOK, "primary image updated", img)
}
