package store

import (
	"context"
	"sort"
	"strings"

	"log/slog"

	"github.com/gojipedia/gojipedia/models"
)

// FightRecord tallies a monster's battle outcomes and resolves each battle
// with its opponent set. Participants pointing at battles or monsters that no
// longer resolve are dropped with a warning; one bad row must not take down
// the page.
func (s *Store) FightRecord(ctx context.Context, monsterID string) (*models.FightRecord, error) {
	var participations []models.BattleParticipant
	if err := s.db.WithContext(ctx).Where("monster_id = ?", monsterID).Find(&participations).Error; err != nil {
		return nil, err
	}

	record := &models.FightRecord{Battles: []models.FightEntry{}}
	for _, p := range participations {
		switch p.Outcome {
		case models.OutcomeWin:
			record.Wins++
		case models.OutcomeLoss:
			record.Losses++
		case models.OutcomeDraw:
			record.Draws++
		default:
			record.Unknown++
		}
	}

	for _, p := range participations {
		battle, err := s.getBattleByID(ctx, p.BattleID)
		if err != nil {
			return nil, err
		}
		if battle == nil {
			s.logger.Warn("Participant references missing battle",
				slog.String("monster_id", monsterID),
				slog.String("battle_id", p.BattleID))
			continue
		}

		var others []models.BattleParticipant
		if err := s.db.WithContext(ctx).
			Where("battle_id = ? AND monster_id <> ?", p.BattleID, monsterID).
			Find(&others).Error; err != nil {
			return nil, err
		}

		opponents := make([]models.Monster, 0, len(others))
		for _, o := range others {
			m, err := s.getMonsterByID(ctx, o.MonsterID)
			if err != nil {
				return nil, err
			}
			if m == nil {
				s.logger.Warn("Participant references missing monster",
					slog.String("battle_id", p.BattleID),
					slog.String("monster_id", o.MonsterID))
				continue
			}
			opponents = append(opponents, *m)
		}

		record.Battles = append(record.Battles, models.FightEntry{
			Battle:    *battle,
			Outcome:   p.Outcome,
			Opponents: opponents,
		})
	}

	return record, nil
}

// RelatedMonsters unions three sources into one deduplicated set: outgoing
// relationship edges, incoming relationship edges, and co-participants in any
// shared battle. An id reached from several sources counts once. Only active
// monsters are returned, in natural collection order, truncated to limit.
func (s *Store) RelatedMonsters(ctx context.Context, monsterID string, limit int) ([]models.Monster, error) {
	relatedIDs := make(map[string]bool)

	var from []models.Relationship
	if err := s.db.WithContext(ctx).Where("from_monster_id = ?", monsterID).Find(&from).Error; err != nil {
		return nil, err
	}
	for _, r := range from {
		relatedIDs[r.ToMonsterID] = true
	}

	var to []models.Relationship
	if err := s.db.WithContext(ctx).Where("to_monster_id = ?", monsterID).Find(&to).Error; err != nil {
		return nil, err
	}
	for _, r := range to {
		relatedIDs[r.FromMonsterID] = true
	}

	var participations []models.BattleParticipant
	if err := s.db.WithContext(ctx).Where("monster_id = ?", monsterID).Find(&participations).Error; err != nil {
		return nil, err
	}
	for _, p := range participations {
		var others []models.BattleParticipant
		if err := s.db.WithContext(ctx).
			Where("battle_id = ? AND monster_id <> ?", p.BattleID, monsterID).
			Find(&others).Error; err != nil {
			return nil, err
		}
		for _, o := range others {
			relatedIDs[o.MonsterID] = true
		}
	}

	var monsters []models.Monster
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&monsters).Error; err != nil {
		return nil, err
	}

	related := monsters[:0]
	for _, m := range monsters {
		if relatedIDs[m.ID] {
			related = append(related, m)
		}
	}
	return window(related, limit, 0), nil
}

// WorkWithMonsters resolves a work by slug together with every monster that
// appears in it. Appearances whose monster no longer resolves are dropped.
func (s *Store) WorkWithMonsters(ctx context.Context, slug string) (*models.Work, []models.Monster, error) {
	work, err := s.GetWorkBySlug(ctx, slug)
	if err != nil || work == nil {
		return nil, nil, err
	}

	var appearances []models.Appearance
	if err := s.db.WithContext(ctx).Where("work_id = ?", work.ID).Find(&appearances).Error; err != nil {
		return nil, nil, err
	}

	monsters := make([]models.Monster, 0, len(appearances))
	for _, a := range appearances {
		m, err := s.getMonsterByID(ctx, a.MonsterID)
		if err != nil {
			return nil, nil, err
		}
		if m == nil {
			s.logger.Warn("Appearance references missing monster",
				slog.String("work", work.Slug),
				slog.String("monster_id", a.MonsterID))
			continue
		}
		monsters = append(monsters, *m)
	}

	return work, monsters, nil
}

// ProductsByMonster matches products against the monster's name and aliases
// using loose bidirectional substring overlap: a product matches if any of
// its search keywords contains any monster keyword. Deliberately fuzzy; any
// overlap counts.
func (s *Store) ProductsByMonster(ctx context.Context, monsterID string, limit int) ([]models.Product, error) {
	monster, err := s.getMonsterByID(ctx, monsterID)
	if err != nil {
		return nil, err
	}
	if monster == nil {
		return []models.Product{}, nil
	}

	keywords := []string{strings.ToLower(monster.Name)}
	for _, a := range monster.Aliases {
		keywords = append(keywords, strings.ToLower(a))
	}

	var products []models.Product
	if err := s.db.WithContext(ctx).Where("is_active = ?", true).Find(&products).Error; err != nil {
		return nil, err
	}

	matched := products[:0]
	for _, p := range products {
		if productMatchesKeywords(p, keywords) {
			matched = append(matched, p)
		}
	}
	return window(matched, limit, 0), nil
}

func productMatchesKeywords(p models.Product, keywords []string) bool {
	for _, k := range p.SearchKeywords {
		k = strings.ToLower(k)
		for _, keyword := range keywords {
			if strings.Contains(k, keyword) {
				return true
			}
		}
	}
	return false
}

// Timeline returns dated works and monsters, oldest first.
func (s *Store) Timeline(ctx context.Context) (*models.TimelineData, error) {
	var works []models.Work
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND release_date IS NOT NULL", true).
		Order("release_date").
		Find(&works).Error; err != nil {
		return nil, err
	}

	var monsters []models.Monster
	if err := s.db.WithContext(ctx).
		Where("is_active = ? AND first_appearance_date IS NOT NULL", true).
		Order("first_appearance_date").
		Find(&monsters).Error; err != nil {
		return nil, err
	}

	return &models.TimelineData{Works: works, Monsters: monsters}, nil
}

// WorksByEra groups active works by the first era tag. Untagged works are
// grouped under Other.
func (s *Store) WorksByEra(ctx context.Context) (map[models.Era][]models.Work, error) {
	works, err := s.ListWorks(ctx, models.WorkFilters{})
	if err != nil {
		return nil, err
	}

	groups := make(map[models.Era][]models.Work)
	for _, w := range works {
		era := models.EraOther
		if len(w.EraTags) > 0 {
			era = w.EraTags[0]
		}
		groups[era] = append(groups[era], w)
	}
	return groups, nil
}

// WorksByDecade groups active works by release decade, oldest decade first.
// Works with no release date are excluded before grouping.
func (s *Store) WorksByDecade(ctx context.Context) ([]models.DecadeGroup, error) {
	works, err := s.ListWorks(ctx, models.WorkFilters{})
	if err != nil {
		return nil, err
	}

	byDecade := make(map[int][]models.Work)
	for _, w := range works {
		if w.ReleaseDate == nil {
			continue
		}
		decade := w.ReleaseDate.Year() / 10 * 10
		byDecade[decade] = append(byDecade[decade], w)
	}

	decades := make([]int, 0, len(byDecade))
	for d := range byDecade {
		decades = append(decades, d)
	}
	sort.Ints(decades)

	groups := make([]models.DecadeGroup, 0, len(decades))
	for _, d := range decades {
		groups = append(groups, models.DecadeGroup{Decade: d, Works: byDecade[d]})
	}
	return groups, nil
}

// SiteStats counts the active rows shown on the home page.
func (s *Store) SiteStats(ctx context.Context) (*models.SiteStats, error) {
	stats := &models.SiteStats{}

	if err := s.db.WithContext(ctx).Model(&models.Monster{}).Where("is_active = ?", true).Count(&stats.Monsters).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Work{}).Where("is_active = ?", true).Count(&stats.Works).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Battle{}).Count(&stats.Battles).Error; err != nil {
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&models.Product{}).Where("is_active = ?", true).Count(&stats.Products).Error; err != nil {
		return nil, err
	}

	return stats, nil
}
