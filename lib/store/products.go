package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gojipedia/gojipedia/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Write paths used by the product refresh job.

// GetProductByASIN resolves a product by its catalog key, or nil.
func (s *Store) GetProductByASIN(ctx context.Context, asin string) (*models.Product, error) {
	var product models.Product
	err := s.db.WithContext(ctx).Where("asin = ?", asin).First(&product).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// RefreshProduct applies freshly fetched catalog data to an existing product
// and resets its failure counter.
func (s *Store) RefreshProduct(ctx context.Context, asin, title string, imageURL, price *string, primeEligible bool, affiliateURL string) error {
	now := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("asin = ?", asin).
		Updates(map[string]interface{}{
			"title":               title,
			"image_url":           imageURL,
			"price":               price,
			"prime_eligible":      primeEligible,
			"amazon_url_with_tag": affiliateURL,
			"last_fetched_at":     now,
			"fetch_fail_count":    0,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to refresh product %s: %w", asin, result.Error)
	}
	return nil
}

// RecordFetchFailure bumps the failure counter and deactivates the product
// once it crosses the threshold.
func (s *Store) RecordFetchFailure(ctx context.Context, asin string, deactivateAfter int) error {
	product, err := s.GetProductByASIN(ctx, asin)
	if err != nil || product == nil {
		return err
	}

	product.FetchFailCount++
	if product.FetchFailCount >= deactivateAfter {
		product.IsActive = false
	}
	return s.db.WithContext(ctx).Save(product).Error
}

// FileSuggestion stores a newly discovered product as an inactive suggestion
// for admin review. Known ASINs are left untouched.
func (s *Store) FileSuggestion(ctx context.Context, p models.Product) (bool, error) {
	existing, err := s.GetProductByASIN(ctx, p.ASIN)
	if err != nil {
		return false, err
	}
	if existing != nil {
		return false, nil
	}

	p.ID = uuid.NewString()
	p.IsSuggested = true
	p.IsActive = false
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return false, fmt.Errorf("failed to file suggestion %s: %w", p.ASIN, err)
	}
	return true, nil
}

// SaveDraftPost stores a generated post in draft status for review.
func (s *Store) SaveDraftPost(ctx context.Context, post *models.Post) error {
	if post.ID == "" {
		post.ID = uuid.NewString()
	}
	post.Status = models.StatusDraft

	// Generated slugs can collide run-to-run; skip rather than overwrite.
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Post{}).Where("slug = ?", post.Slug).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to save draft %s: %w", post.Slug, err)
	}
	return nil
}
