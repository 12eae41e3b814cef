// Package store is the query layer between the HTTP handlers and the
// database. Listings filter on is_active in SQL, then run the remaining
// predicate chain in Go because tag and keyword lists live in JSON columns.
// Lookups that find nothing return nil without an error; dangling references
// inside joins are dropped with a warning rather than failing the whole page.
package store

import (
	"context"
	"errors"
	"sort"

	"log/slog"

	"github.com/gojipedia/gojipedia/models"
	"gorm.io/gorm"
)

type Store struct {
	db     *gorm.DB
	logger *slog.Logger
}

func New(db *gorm.DB, logger *slog.Logger) *Store {
	return &Store{db: db, logger: logger}
}

// DB exposes the underlying handle for health checks and migrations.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// GetMonsterBySlug resolves an active monster and joins in its first
// appearance, appearances, battle participations, and both relationship
// directions. Returns nil when no active monster carries the slug.
func (s *Store) GetMonsterBySlug(ctx context.Context, slug string) (*models.MonsterWithRelations, error) {
	var monster models.Monster
	err := s.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&monster).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	out := &models.MonsterWithRelations{Monster: monster}

	if monster.FirstAppearanceWorkID != nil {
		work, err := s.getWorkByID(ctx, *monster.FirstAppearanceWorkID)
		if err != nil {
			return nil, err
		}
		out.FirstAppearanceWork = work
	}

	var appearances []models.Appearance
	if err := s.db.WithContext(ctx).Where("monster_id = ?", monster.ID).Find(&appearances).Error; err != nil {
		return nil, err
	}
	for i := range appearances {
		work, err := s.getWorkByID(ctx, appearances[i].WorkID)
		if err != nil {
			return nil, err
		}
		appearances[i].Work = work
	}
	out.Appearances = appearances

	var participations []models.BattleParticipant
	if err := s.db.WithContext(ctx).Where("monster_id = ?", monster.ID).Find(&participations).Error; err != nil {
		return nil, err
	}
	for i := range participations {
		battle, err := s.getBattleByID(ctx, participations[i].BattleID)
		if err != nil {
			return nil, err
		}
		participations[i].Battle = battle
	}
	out.BattleParticipations = participations

	var from []models.Relationship
	if err := s.db.WithContext(ctx).Where("from_monster_id = ?", monster.ID).Find(&from).Error; err != nil {
		return nil, err
	}
	for i := range from {
		m, err := s.getMonsterByID(ctx, from[i].ToMonsterID)
		if err != nil {
			return nil, err
		}
		from[i].ToMonster = m
	}
	out.RelationshipsFrom = from

	var to []models.Relationship
	if err := s.db.WithContext(ctx).Where("to_monster_id = ?", monster.ID).Find(&to).Error; err != nil {
		return nil, err
	}
	for i := range to {
		m, err := s.getMonsterByID(ctx, to[i].FromMonsterID)
		if err != nil {
			return nil, err
		}
		to[i].FromMonster = m
	}
	out.RelationshipsTo = to

	return out, nil
}

// GetWorkBySlug resolves an active work, or nil.
func (s *Store) GetWorkBySlug(ctx context.Context, slug string) (*models.Work, error) {
	var work models.Work
	err := s.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&work).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &work, nil
}

// GetBattleBySlug resolves a battle with participants and work, or nil.
func (s *Store) GetBattleBySlug(ctx context.Context, slug string) (*models.BattleWithParticipants, error) {
	var battle models.Battle
	err := s.db.WithContext(ctx).Where("slug = ?", slug).First(&battle).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.expandBattle(ctx, battle)
}

// ListBattles returns the first limit battles with participants resolved.
func (s *Store) ListBattles(ctx context.Context, limit int) ([]models.BattleWithParticipants, error) {
	q := s.db.WithContext(ctx).Order("battle_date")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var battles []models.Battle
	if err := q.Find(&battles).Error; err != nil {
		return nil, err
	}

	out := make([]models.BattleWithParticipants, 0, len(battles))
	for _, b := range battles {
		expanded, err := s.expandBattle(ctx, b)
		if err != nil {
			return nil, err
		}
		out = append(out, *expanded)
	}
	return out, nil
}

func (s *Store) expandBattle(ctx context.Context, battle models.Battle) (*models.BattleWithParticipants, error) {
	out := &models.BattleWithParticipants{Battle: battle}

	var participants []models.BattleParticipant
	if err := s.db.WithContext(ctx).Where("battle_id = ?", battle.ID).Find(&participants).Error; err != nil {
		return nil, err
	}
	for i := range participants {
		m, err := s.getMonsterByID(ctx, participants[i].MonsterID)
		if err != nil {
			return nil, err
		}
		participants[i].Monster = m
	}
	out.Participants = participants

	if battle.WorkID != nil {
		work, err := s.getWorkByID(ctx, *battle.WorkID)
		if err != nil {
			return nil, err
		}
		out.Work = work
	}
	return out, nil
}

// GetProductCollection resolves an active collection with its items ordered
// by rank. Items whose product no longer resolves are dropped.
func (s *Store) GetProductCollection(ctx context.Context, slug string) (*models.CollectionWithItems, error) {
	var collection models.ProductCollection
	err := s.db.WithContext(ctx).Where("slug = ? AND is_active = ?", slug, true).First(&collection).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var items []models.ProductCollectionItem
	if err := s.db.WithContext(ctx).Where("collection_id = ?", collection.ID).Find(&items).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].Rank < items[j].Rank })

	kept := items[:0]
	for i := range items {
		var product models.Product
		err := s.db.WithContext(ctx).Where("id = ?", items[i].ProductID).First(&product).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Warn("Collection item references missing product",
				slog.String("collection", collection.Slug),
				slog.String("product_id", items[i].ProductID))
			continue
		}
		if err != nil {
			return nil, err
		}
		items[i].Product = &product
		kept = append(kept, items[i])
	}

	return &models.CollectionWithItems{ProductCollection: collection, Items: kept}, nil
}

// FeaturedCollections returns active featured collections.
func (s *Store) FeaturedCollections(ctx context.Context, limit int) ([]models.ProductCollection, error) {
	q := s.db.WithContext(ctx).Where("is_active = ? AND is_featured = ?", true, true)
	if limit > 0 {
		q = q.Limit(limit)
	}
	var collections []models.ProductCollection
	if err := q.Find(&collections).Error; err != nil {
		return nil, err
	}
	return collections, nil
}

// GetPostBySlug resolves a published post, or nil.
func (s *Store) GetPostBySlug(ctx context.Context, slug string) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Where("slug = ? AND status = ?", slug, models.StatusPublished).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Point lookups used by the join paths. A missing row comes back as
// (nil, nil) so callers can drop dangling references.

func (s *Store) getMonsterByID(ctx context.Context, id string) (*models.Monster, error) {
	var m models.Monster
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) getWorkByID(ctx context.Context, id string) (*models.Work, error) {
	var w models.Work
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&w).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *Store) getBattleByID(ctx context.Context, id string) (*models.Battle, error) {
	var b models.Battle
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&b).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}
