package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gojipedia/gojipedia/lib/fpi"
	"github.com/gojipedia/gojipedia/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Admin queries bypass the is_active filter so the dashboard can see
// deactivated rows and pending suggestions.

func (s *Store) AllMonsters(ctx context.Context) ([]models.Monster, error) {
	var monsters []models.Monster
	if err := s.db.WithContext(ctx).Find(&monsters).Error; err != nil {
		return nil, err
	}
	return monsters, nil
}

func (s *Store) AllWorks(ctx context.Context) ([]models.Work, error) {
	var works []models.Work
	if err := s.db.WithContext(ctx).Find(&works).Error; err != nil {
		return nil, err
	}
	return works, nil
}

func (s *Store) AllProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SuggestedProducts lists products filed by the refresh job and awaiting
// review.
func (s *Store) SuggestedProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("is_suggested = ?", true).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// SaveMonster inserts or updates a monster. The cached FanPowerIndex is
// recomputed from the sub-scores on every save so it can never drift.
func (s *Store) SaveMonster(ctx context.Context, m *models.Monster) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	fpi.Refresh(m)
	if err := s.db.WithContext(ctx).Save(m).Error; err != nil {
		return fmt.Errorf("failed to save monster %s: %w", m.Slug, err)
	}
	return nil
}

// ApproveSuggestedProduct activates a suggested product.
func (s *Store) ApproveSuggestedProduct(ctx context.Context, productID string) error {
	result := s.db.WithContext(ctx).Model(&models.Product{}).
		Where("id = ? AND is_suggested = ?", productID, true).
		Updates(map[string]interface{}{"is_suggested": false, "is_active": true})
	if result.Error != nil {
		return fmt.Errorf("failed to approve product: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetUserByEmail looks up an admin account, or nil.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// StartJobRun records that a background job began.
func (s *Store) StartJobRun(ctx context.Context, jobType string) (*models.JobRun, error) {
	run := &models.JobRun{
		ID:        uuid.NewString(),
		JobType:   jobType,
		Status:    "running",
		StartedAt: time.Now(),
	}
	if err := s.db.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("failed to record job run: %w", err)
	}
	return run, nil
}

// FinishJobRun marks a job run completed or failed with its result payload.
func (s *Store) FinishJobRun(ctx context.Context, run *models.JobRun, resultData string, jobErr error) error {
	now := time.Now()
	run.CompletedAt = &now
	run.ResultData = resultData
	if jobErr != nil {
		run.Status = "failed"
		msg := jobErr.Error()
		run.ErrorMessage = &msg
	} else {
		run.Status = "completed"
	}
	return s.db.WithContext(ctx).Save(run).Error
}
