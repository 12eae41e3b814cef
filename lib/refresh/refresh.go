// Package refresh implements the product refresh job: re-fetch catalog data
// for every active product and file newly discovered items as suggestions.
package refresh

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"log/slog"

	"github.com/gojipedia/gojipedia/lib/amazon"
	"github.com/gojipedia/gojipedia/lib/config"
	"github.com/gojipedia/gojipedia/lib/store"
	"github.com/gojipedia/gojipedia/models"
)

// Catalog is the product source the job fetches from.
type Catalog interface {
	Configured() bool
	GetItems(ctx context.Context, asins []string) ([]amazon.Product, error)
	SearchItems(ctx context.Context, keywords string, itemCount int) ([]amazon.Product, error)
	BuildAffiliateURL(asin string) string
}

// GetItems accepts at most ten ASINs per request.
const batchSize = 10

type Job struct {
	store   *store.Store
	catalog Catalog
	cfg     config.JobsConfig
	logger  *slog.Logger
}

func NewJob(s *store.Store, catalog Catalog, cfg config.JobsConfig, logger *slog.Logger) *Job {
	return &Job{store: s, catalog: catalog, cfg: cfg, logger: logger}
}

// Run refreshes all active products and searches for new ones. A JobRun row
// records the outcome either way.
func (j *Job) Run(ctx context.Context) (*models.JobResult, error) {
	run, err := j.store.StartJobRun(ctx, "product_refresh")
	if err != nil {
		return nil, err
	}

	result, jobErr := j.execute(ctx)
	result.FinishedAt = time.Now()
	result.Success = jobErr == nil

	data, _ := json.Marshal(result)
	if err := j.store.FinishJobRun(ctx, run, string(data), jobErr); err != nil {
		j.logger.Error("failed to finish job run", "error", err)
	}
	return result, jobErr
}

func (j *Job) execute(ctx context.Context) (*models.JobResult, error) {
	result := &models.JobResult{Errors: []string{}}

	if !j.catalog.Configured() {
		j.logger.Warn("product refresh skipped, catalog not configured")
		return result, nil
	}

	products, err := j.store.AllProducts(ctx)
	if err != nil {
		return result, fmt.Errorf("failed to load products: %w", err)
	}

	var asins []string
	for _, p := range products {
		if p.IsActive {
			asins = append(asins, p.ASIN)
		}
	}

	for start := 0; start < len(asins); start += batchSize {
		end := start + batchSize
		if end > len(asins) {
			end = len(asins)
		}
		j.refreshBatch(ctx, asins[start:end], result)
	}

	for _, term := range j.cfg.SearchTerms {
		if err := j.discover(ctx, term, result); err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	j.logger.Info("product refresh complete",
		"updated", result.ProductsUpdated,
		"failed", result.ProductsFailed,
		"suggestions", result.NewSuggestions)
	return result, nil
}

func (j *Job) refreshBatch(ctx context.Context, asins []string, result *models.JobResult) {
	items, err := j.catalog.GetItems(ctx, asins)
	if err != nil {
		if errors.Is(err, amazon.ErrNotConfigured) {
			return
		}
		// The whole batch failed; count every ASIN against its threshold.
		j.logger.Error("batch fetch failed", "error", err, "asins", len(asins))
		for _, asin := range asins {
			j.recordFailure(ctx, asin, result)
		}
		result.Errors = append(result.Errors, err.Error())
		return
	}

	found := make(map[string]amazon.Product, len(items))
	for _, item := range items {
		found[item.ASIN] = item
	}

	for _, asin := range asins {
		item, ok := found[asin]
		if !ok {
			// Delisted or out of catalog.
			j.recordFailure(ctx, asin, result)
			continue
		}
		err := j.store.RefreshProduct(ctx, asin, item.Title, item.ImageURL, item.Price,
			item.PrimeEligible, j.catalog.BuildAffiliateURL(asin))
		if err != nil {
			j.logger.Error("failed to refresh product", "asin", asin, "error", err)
			result.Errors = append(result.Errors, err.Error())
			continue
		}
		result.ProductsUpdated++
	}
}

func (j *Job) recordFailure(ctx context.Context, asin string, result *models.JobResult) {
	if err := j.store.RecordFetchFailure(ctx, asin, j.cfg.DeactivateAfterFailures); err != nil {
		j.logger.Error("failed to record fetch failure", "asin", asin, "error", err)
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.ProductsFailed++
}

func (j *Job) discover(ctx context.Context, term string, result *models.JobResult) error {
	items, err := j.catalog.SearchItems(ctx, term, 5)
	if err != nil {
		return fmt.Errorf("search %q failed: %w", term, err)
	}

	for _, item := range items {
		affiliate := j.catalog.BuildAffiliateURL(item.ASIN)
		now := time.Now()
		created, err := j.store.FileSuggestion(ctx, models.Product{
			ASIN:             item.ASIN,
			Title:            item.Title,
			ImageURL:         item.ImageURL,
			Price:            item.Price,
			PrimeEligible:    item.PrimeEligible,
			Brand:            item.Brand,
			Category:         models.CategoryOther,
			AmazonURLWithTag: &affiliate,
			SearchKeywords:   models.StringList{term},
			LastFetchedAt:    &now,
		})
		if err != nil {
			return err
		}
		if created {
			result.NewSuggestions++
		}
	}
	return nil
}
