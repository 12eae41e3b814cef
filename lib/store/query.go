package store

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/gojipedia/gojipedia/models"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// ListMonsters returns active monsters matching every set filter, sorted and
// windowed. Defaults: fanPowerIndex descending.
func (s *Store) ListMonsters(ctx context.Context, filters models.MonsterFilters) ([]models.Monster, error) {
	var monsters []models.Monster
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&monsters).Error; err != nil {
		return nil, err
	}

	result := monsters[:0]
	search := strings.ToLower(filters.Search)
	for _, m := range monsters {
		if filters.Era != "" && !m.EraTags.Contains(filters.Era) {
			continue
		}
		if filters.Alignment != "" && m.Alignment != filters.Alignment {
			continue
		}
		if filters.SpeciesType != "" && m.SpeciesType != filters.SpeciesType {
			continue
		}
		if search != "" && !monsterMatchesSearch(m, search) {
			continue
		}
		result = append(result, m)
	}

	sortMonsters(result, filters.SortBy, filters.SortOrder)
	return window(result, filters.Limit, filters.Offset), nil
}

// monsterMatchesSearch reports a case-insensitive substring match against the
// name or any alias.
func monsterMatchesSearch(m models.Monster, search string) bool {
	if strings.Contains(strings.ToLower(m.Name), search) {
		return true
	}
	for _, alias := range m.Aliases {
		if strings.Contains(strings.ToLower(alias), search) {
			return true
		}
	}
	return false
}

func sortMonsters(monsters []models.Monster, sortBy, sortOrder string) {
	if sortBy == "" {
		sortBy = models.SortByFanPowerIndex
	}
	if sortOrder == "" {
		sortOrder = "desc"
	}
	desc := sortOrder == "desc"

	var less func(a, b models.Monster) bool
	switch sortBy {
	case models.SortByName:
		c := collate.New(language.English)
		less = func(a, b models.Monster) bool {
			return c.CompareString(a.Name, b.Name) < 0
		}
	case models.SortByFirstAppearanceDate:
		// Missing dates sort as epoch zero, i.e. oldest. Kept from the
		// original site so default page ordering does not shift.
		less = func(a, b models.Monster) bool {
			return dateOrZero(a.FirstAppearanceDate).Before(dateOrZero(b.FirstAppearanceDate))
		}
	default:
		less = func(a, b models.Monster) bool {
			return a.FanPowerIndex < b.FanPowerIndex
		}
	}

	sort.SliceStable(monsters, func(i, j int) bool {
		if desc {
			return less(monsters[j], monsters[i])
		}
		return less(monsters[i], monsters[j])
	})
}

func dateOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

// FeaturedMonsters returns active featured monsters, strongest first.
func (s *Store) FeaturedMonsters(ctx context.Context, limit int) ([]models.Monster, error) {
	q := s.db.WithContext(ctx).
		Where("is_active = ? AND is_featured = ?", true, true).
		Order("fan_power_index DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var monsters []models.Monster
	if err := q.Find(&monsters).Error; err != nil {
		return nil, err
	}
	return monsters, nil
}

// ListWorks returns active works matching every set filter, newest release
// first.
func (s *Store) ListWorks(ctx context.Context, filters models.WorkFilters) ([]models.Work, error) {
	var works []models.Work
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&works).Error; err != nil {
		return nil, err
	}

	result := works[:0]
	search := strings.ToLower(filters.Search)
	for _, w := range works {
		if filters.Era != "" && !w.EraTags.Contains(filters.Era) {
			continue
		}
		if filters.WorkType != "" && w.WorkType != filters.WorkType {
			continue
		}
		if filters.Year > 0 && (w.ReleaseDate == nil || w.ReleaseDate.Year() != filters.Year) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(w.Title), search) {
			continue
		}
		result = append(result, w)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return dateOrZero(result[j].ReleaseDate).Before(dateOrZero(result[i].ReleaseDate))
	})
	return window(result, filters.Limit, filters.Offset), nil
}

// FeaturedWorks returns active featured works, newest release first.
func (s *Store) FeaturedWorks(ctx context.Context, limit int) ([]models.Work, error) {
	var works []models.Work
	if err := s.db.WithContext(ctx).Where("is_active = ? AND is_featured = ?", true, true).Find(&works).Error; err != nil {
		return nil, err
	}
	sort.SliceStable(works, func(i, j int) bool {
		return dateOrZero(works[j].ReleaseDate).Before(dateOrZero(works[i].ReleaseDate))
	})
	return window(works, limit, 0), nil
}

// ListProducts returns active products matching category and search filters.
func (s *Store) ListProducts(ctx context.Context, filters models.ProductFilters) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&products).Error; err != nil {
		return nil, err
	}

	result := products[:0]
	search := strings.ToLower(filters.Search)
	for _, p := range products {
		if filters.Category != "" && p.Category != filters.Category {
			continue
		}
		if search != "" && !productMatchesSearch(p, search) {
			continue
		}
		result = append(result, p)
	}
	return window(result, filters.Limit, filters.Offset), nil
}

func productMatchesSearch(p models.Product, search string) bool {
	if strings.Contains(strings.ToLower(p.Title), search) {
		return true
	}
	for _, k := range p.SearchKeywords {
		if strings.Contains(strings.ToLower(k), search) {
			return true
		}
	}
	return false
}

// ListPosts returns posts newest first. Without an explicit status filter
// only published posts are visible.
func (s *Store) ListPosts(ctx context.Context, filters models.PostFilters) ([]models.Post, error) {
	status := filters.Status
	if status == "" {
		status = models.StatusPublished
	}

	q := s.db.WithContext(ctx).Where("status = ?", status)
	if filters.Type != "" {
		q = q.Where("post_type = ?", filters.Type)
	}
	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}

	sort.SliceStable(posts, func(i, j int) bool {
		return postDate(posts[j]).Before(postDate(posts[i]))
	})
	return window(posts, filters.Limit, filters.Offset), nil
}

func postDate(p models.Post) time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

// ListStories returns published story posts, optionally filtered by
// perspective.
func (s *Store) ListStories(ctx context.Context, perspective string, limit int) ([]models.Post, error) {
	q := s.db.WithContext(ctx).Where("post_type = ? AND status = ?", models.PostStory, models.StatusPublished)
	if perspective != "" {
		q = q.Where("story_perspective = ?", perspective)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	var posts []models.Post
	if err := q.Find(&posts).Error; err != nil {
		return nil, err
	}
	return posts, nil
}

// window applies offset then limit to an already-sorted slice.
func window[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
