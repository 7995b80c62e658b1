package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"marketplace/internal/auth"
	"marketplace/internal/entity"
	"marketplace/internal/model"
	"marketplace/internal/storage"
	"marketplace/internal/utils"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

const mediaCategory = "products"

// CatalogService manages product listings and their media.
type CatalogService struct {
	repo          model.Repository
	storage       storage.Storage
	mediaMaxBytes int64
}

// NewCatalogService creates the service. A nil store disables media uploads.
func NewCatalogService(repo model.Repository, store storage.Storage, mediaMaxBytes int64) *CatalogService {
	if mediaMaxBytes <= 0 {
		mediaMaxBytes = 5 << 20
	}
	return &CatalogService{repo: repo, storage: store, mediaMaxBytes: mediaMaxBytes}
}

// MediaMaxBytes is the upload cap applied by AttachMedia.
func (s *CatalogService) MediaMaxBytes() int64 {
	return s.mediaMaxBytes
}

// List returns products in insertion order.
func (s *CatalogService) List(ctx context.Context, query entity.ProductQuery) ([]entity.DbProduct, error) {
	return s.repo.ListProducts(ctx, &query)
}

// Get loads one product.
func (s *CatalogService) Get(ctx context.Context, id uint) (*entity.DbProduct, error) {
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return product, nil
}

// Create lists a new product owned by owner, who must be a seller or admin.
func (s *CatalogService) Create(ctx context.Context, owner *entity.DbUser, req entity.ProductCreateRequest) (*entity.DbProduct, error) {
	if owner == nil {
		return nil, ErrForbidden
	}
	if err := auth.Authorize(owner.Role, entity.RoleSeller, entity.RoleAdmin); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if req.Price == nil {
		return nil, fmt.Errorf("%w: price is required", ErrInvalidInput)
	}
	price, err := normalisePrice(*req.Price)
	if err != nil {
		return nil, err
	}

	product := &entity.DbProduct{
		Name:        name,
		Price:       price,
		Description: strings.TrimSpace(req.Description),
		OwnerID:     owner.ID,
		MediaPaths:  cleanMediaPaths(req.MediaPaths),
	}
	if err := s.repo.CreateProduct(ctx, product); err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": product.ID,
		"owner_id":   owner.ID,
	}).Info("product created")
	return product, nil
}

// Update applies a partial change. Only the owner or an admin may edit.
func (s *CatalogService) Update(ctx context.Context, requester *entity.DbUser, id uint, req entity.ProductUpdateRequest) (*entity.DbProduct, error) {
	if _, err := s.editable(ctx, requester, id); err != nil {
		return nil, err
	}

	var updates entity.ProductUpdates
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		updates.Name = &name
	}
	if req.Price != nil {
		price, err := normalisePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		updates.Price = &price
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		updates.Description = &description
	}
	if req.MediaPaths != nil {
		paths := cleanMediaPaths(*req.MediaPaths)
		updates.MediaPaths = &paths
	}

	if err := s.repo.UpdateProduct(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a product. Only the owner or an admin may delete. Stored
// media is cleaned up best-effort.
func (s *CatalogService) Delete(ctx context.Context, requester *entity.DbUser, id uint) error {
	product, err := s.editable(ctx, requester, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	removeMedia(ctx, s.storage, product.MediaPaths)

	logrus.WithFields(logrus.Fields{
		"product_id": id,
		"user_id":    requester.ID,
	}).Info("product deleted")
	return nil
}

// AttachMedia stores an image for the product and appends its key to
// media_paths.
func (s *CatalogService) AttachMedia(ctx context.Context, requester *entity.DbUser, id uint, data []byte, ext string) (*entity.DbProduct, error) {
	product, err := s.editable(ctx, requester, id)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, errors.New("media storage is not configured")
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: media payload is empty", ErrInvalidInput)
	}
	if int64(len(data)) > s.mediaMaxBytes {
		return nil, ErrMediaTooLarge
	}
	if sniffed := utils.DetectExtension(data); sniffed == "" || sniffed != ext {
		return nil, fmt.Errorf("%w: media content is not a %s image", ErrInvalidInput, ext)
	}

	key, err := s.storage.Save(ctx, data, storage.SaveOptions{
		Category:     mediaCategory,
		Extension:    ext,
		BaseName:     storage.MediaBaseName(product.ID, data),
		SkipIfExists: true,
	})
	if err != nil {
		return nil, fmt.Errorf("save media: %w", err)
	}

	if product.MediaPaths.Contains(key) {
		return product, nil
	}
	paths := append(product.MediaPaths.ToSlice(), key)
	merged := entity.StringArray(paths)
	if err := s.repo.UpdateProduct(ctx, id, entity.ProductUpdates{MediaPaths: &merged}); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"product_id": id,
		"key":        key,
		"size":       len(data),
	}).Info("product media attached")
	return s.Get(ctx, id)
}

// editable loads the product and checks that requester owns it or is admin.
func (s *CatalogService) editable(ctx context.Context, requester *entity.DbUser, id uint) (*entity.DbProduct, error) {
	if requester == nil {
		return nil, ErrForbidden
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.OwnerID == requester.ID {
		return product, nil
	}
	if err := auth.Authorize(requester.Role, entity.RoleAdmin); err != nil {
		return nil, err
	}
	return product, nil
}

func normalisePrice(price decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return price.Round(2), nil
}

func cleanMediaPaths(paths []string) entity.StringArray {
	out := make(entity.StringArray, 0, len(paths))
	for _, p := range paths {
		trimmed := strings.TrimSpace(p)
		if trimmed == "" || strings.Contains(trimmed, "..") || out.Contains(trimmed) {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}

// removeMedia deletes stored objects best-effort. External URLs are skipped.
func removeMedia(ctx context.Context, store storage.Storage, keys []string) {
	if store == nil {
		return
	}
	for _, key := range keys {
		if isExternalURL(key) {
			continue
		}
		if err := store.Delete(ctx, key); err != nil {
			logrus.WithError(err).WithField("key", key).Warn("failed to delete product media")
		}
	}
}

func isExternalURL(value string) bool {
	return strings.HasPrefix(value, "http://") || strings.HasPrefix(value, "https://")
}
