package db

import (
	"context"
	"fmt"

	"log/slog"

	"github.com/gojipedia/gojipedia/models"
	"gorm.io/gorm"
)

// RunMigrations brings the schema up to date and applies SQLite tuning.
func RunMigrations(db *gorm.DB, logger *slog.Logger) error {
	ctx := context.Background()

	if err := enableSQLiteOptimizations(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to enable SQLite optimizations: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Monster{},
		&models.Work{},
		&models.Appearance{},
		&models.Battle{},
		&models.BattleParticipant{},
		&models.Relationship{},
		&models.Product{},
		&models.ProductCollection{},
		&models.ProductCollectionItem{},
		&models.Post{},
		&models.User{},
		&models.JobRun{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}

	if err := createAdditionalIndexes(ctx, db, logger); err != nil {
		return fmt.Errorf("failed to create additional indexes: %w", err)
	}

	return nil
}

// enableSQLiteOptimizations enables SQLite-specific optimizations
func enableSQLiteOptimizations(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	optimizations := []string{
		"PRAGMA journal_mode=WAL",    // Enable WAL mode for better concurrency
		"PRAGMA synchronous=NORMAL",  // Faster writes while maintaining safety
		"PRAGMA foreign_keys=ON",     // Enable foreign key constraints
		"PRAGMA temp_store=MEMORY",   // Store temporary tables in memory
		"PRAGMA mmap_size=134217728", // Enable memory-mapped I/O (128MB)
	}

	for _, pragma := range optimizations {
		if err := db.WithContext(ctx).Exec(pragma).Error; err != nil {
			logger.Warn("Failed to execute pragma", slog.String("pragma", pragma), slog.Any("error", err))
		}
	}

	return nil
}

// createAdditionalIndexes creates composite indexes for the common listing
// and join queries.
func createAdditionalIndexes(ctx context.Context, db *gorm.DB, logger *slog.Logger) error {
	additionalIndexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_monsters_active_fpi ON monsters(is_active, fan_power_index)",
		"CREATE INDEX IF NOT EXISTS idx_works_active_release ON works(is_active, release_date)",
		"CREATE INDEX IF NOT EXISTS idx_appearances_work_monster ON appearances(work_id, monster_id)",
		"CREATE INDEX IF NOT EXISTS idx_participants_battle_monster ON battle_participants(battle_id, monster_id)",
		"CREATE INDEX IF NOT EXISTS idx_relationships_from_to ON relationships(from_monster_id, to_monster_id)",
		"CREATE INDEX IF NOT EXISTS idx_posts_status_published ON posts(status, published_at)",
	}

	for _, indexSQL := range additionalIndexes {
		if err := db.WithContext(ctx).Exec(indexSQL).Error; err != nil {
			logger.Warn("Failed to create index", slog.String("sql", indexSQL), slog.Any("error", err))
		}
	}

	return nil
}
