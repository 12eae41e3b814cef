// Package handlers exposes the public JSON API. Every handler is a
// constructor taking its dependencies and returning an http.HandlerFunc, so
// routes are wired explicitly in main.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gojipedia/gojipedia/lib/fpi"
	"github.com/gojipedia/gojipedia/lib/store"
	"github.com/gojipedia/gojipedia/lib/validation"
	"github.com/gojipedia/gojipedia/models"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

var errNotFound = errors.New("not found")

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func slugParam(r *http.Request) (string, error) {
	slug := chi.URLParam(r, "slug")
	if err := validation.ValidateSlug(slug); err != nil {
		return "", err
	}
	return slug, nil
}

// HandleMonsters lists active monsters with filtering, sorting, and paging.
func HandleMonsters(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := validation.ParsePagination(r, defaultPageSize, maxPageSize)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		filters := models.MonsterFilters{
			Era:         models.Era(q.Get("era")),
			Alignment:   models.Alignment(q.Get("alignment")),
			SpeciesType: models.SpeciesType(q.Get("species")),
			Search:      q.Get("search"),
			SortBy:      q.Get("sort"),
			SortOrder:   q.Get("order"),
			Limit:       limit,
			Offset:      offset,
		}

		monsters, err := s.ListMonsters(r.Context(), filters)
		if err != nil {
			slog.Error("Failed to list monsters", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list monsters"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, monsters)
	}
}

// monsterDetail is the full detail-page payload for one monster.
type monsterDetail struct {
	*models.MonsterWithRelations
	FPIBreakdown fpi.Breakdown       `json:"fpiBreakdown"`
	FightRecord  *models.FightRecord `json:"fightRecord"`
	Related      []models.Monster    `json:"relatedMonsters"`
	Products     []models.Product    `json:"products"`
}

// HandleMonster returns one monster with its fight record, related monsters,
// products, and score breakdown.
func HandleMonster(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := slugParam(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		monster, err := s.GetMonsterBySlug(r.Context(), slug)
		if err != nil {
			slog.Error("Failed to get monster", slog.String("slug", slug), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to get monster"), http.StatusInternalServerError)
			return
		}
		if monster == nil {
			validation.WriteError(w, errNotFound, http.StatusNotFound)
			return
		}

		detail := monsterDetail{
			MonsterWithRelations: monster,
			FPIBreakdown:         fpi.ForMonster(&monster.Monster),
		}

		if record, err := s.FightRecord(r.Context(), monster.ID); err != nil {
			slog.Error("Failed to build fight record", slog.String("slug", slug), slog.Any("error", err))
		} else {
			detail.FightRecord = record
		}
		if related, err := s.RelatedMonsters(r.Context(), monster.ID, 8); err != nil {
			slog.Error("Failed to load related monsters", slog.String("slug", slug), slog.Any("error", err))
		} else {
			detail.Related = related
		}
		if products, err := s.ProductsByMonster(r.Context(), monster.ID, 8); err != nil {
			slog.Error("Failed to load products", slog.String("slug", slug), slog.Any("error", err))
		} else {
			detail.Products = products
		}

		writeJSON(w, detail)
	}
}

// HandleWorks lists active works with filtering and paging.
func HandleWorks(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := validation.ParsePagination(r, defaultPageSize, maxPageSize)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}
		year, err := validation.ParseYear(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		works, err := s.ListWorks(r.Context(), models.WorkFilters{
			Era:      models.Era(q.Get("era")),
			WorkType: models.WorkType(q.Get("type")),
			Year:     year,
			Search:   q.Get("search"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			slog.Error("Failed to list works", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list works"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, works)
	}
}

// workDetail is a work plus the monsters appearing in it.
type workDetail struct {
	*models.Work
	Monsters []models.Monster `json:"monsters"`
}

func HandleWork(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := slugParam(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		work, monsters, err := s.WorkWithMonsters(r.Context(), slug)
		if err != nil {
			slog.Error("Failed to get work", slog.String("slug", slug), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to get work"), http.StatusInternalServerError)
			return
		}
		if work == nil {
			validation.WriteError(w, errNotFound, http.StatusNotFound)
			return
		}
		writeJSON(w, workDetail{Work: work, Monsters: monsters})
	}
}

func HandleBattles(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _, err := validation.ParsePagination(r, defaultPageSize, maxPageSize)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		battles, err := s.ListBattles(r.Context(), limit)
		if err != nil {
			slog.Error("Failed to list battles", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list battles"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, battles)
	}
}

func HandleBattle(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := slugParam(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		battle, err := s.GetBattleBySlug(r.Context(), slug)
		if err != nil {
			slog.Error("Failed to get battle", slog.String("slug", slug), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to get battle"), http.StatusInternalServerError)
			return
		}
		if battle == nil {
			validation.WriteError(w, errNotFound, http.StatusNotFound)
			return
		}
		writeJSON(w, battle)
	}
}

func HandleProducts(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := validation.ParsePagination(r, defaultPageSize, maxPageSize)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		q := r.URL.Query()
		products, err := s.ListProducts(r.Context(), models.ProductFilters{
			Category: models.ProductCategory(q.Get("category")),
			Search:   q.Get("search"),
			Limit:    limit,
			Offset:   offset,
		})
		if err != nil {
			slog.Error("Failed to list products", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list products"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, products)
	}
}

func HandleCollections(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collections, err := s.FeaturedCollections(r.Context(), 12)
		if err != nil {
			slog.Error("Failed to list collections", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list collections"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, collections)
	}
}

func HandleCollection(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := slugParam(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		collection, err := s.GetProductCollection(r.Context(), slug)
		if err != nil {
			slog.Error("Failed to get collection", slog.String("slug", slug), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to get collection"), http.StatusInternalServerError)
			return
		}
		if collection == nil {
			validation.WriteError(w, errNotFound, http.StatusNotFound)
			return
		}
		writeJSON(w, collection)
	}
}

func HandlePosts(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset, err := validation.ParsePagination(r, defaultPageSize, maxPageSize)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		posts, err := s.ListPosts(r.Context(), models.PostFilters{
			Type:   models.PostType(r.URL.Query().Get("type")),
			Limit:  limit,
			Offset: offset,
		})
		if err != nil {
			slog.Error("Failed to list posts", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list posts"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, posts)
	}
}

func HandlePost(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slug, err := slugParam(r)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		post, err := s.GetPostBySlug(r.Context(), slug)
		if err != nil {
			slog.Error("Failed to get post", slog.String("slug", slug), slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to get post"), http.StatusInternalServerError)
			return
		}
		if post == nil {
			validation.WriteError(w, errNotFound, http.StatusNotFound)
			return
		}
		writeJSON(w, post)
	}
}

// HandleStories lists published story posts, optionally filtered by the
// narrator's perspective.
func HandleStories(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, _, err := validation.ParsePagination(r, defaultPageSize, maxPageSize)
		if err != nil {
			validation.WriteError(w, err, http.StatusBadRequest)
			return
		}

		stories, err := s.ListStories(r.Context(), r.URL.Query().Get("perspective"), limit)
		if err != nil {
			slog.Error("Failed to list stories", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to list stories"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, stories)
	}
}

// timelineResponse is the franchise timeline plus its era and decade
// groupings.
type timelineResponse struct {
	*models.TimelineData
	ByEra    map[models.Era][]models.Work `json:"byEra"`
	ByDecade []models.DecadeGroup         `json:"byDecade"`
}

func HandleTimeline(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		timeline, err := s.Timeline(r.Context())
		if err != nil {
			slog.Error("Failed to build timeline", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to build timeline"), http.StatusInternalServerError)
			return
		}

		resp := timelineResponse{TimelineData: timeline}
		if byEra, err := s.WorksByEra(r.Context()); err != nil {
			slog.Error("Failed to group works by era", slog.Any("error", err))
		} else {
			resp.ByEra = byEra
		}
		if byDecade, err := s.WorksByDecade(r.Context()); err != nil {
			slog.Error("Failed to group works by decade", slog.Any("error", err))
		} else {
			resp.ByDecade = byDecade
		}
		writeJSON(w, resp)
	}
}

// featuredResponse is the home-page payload: featured rows of each kind plus
// the site counters.
type featuredResponse struct {
	Monsters    []models.Monster           `json:"monsters"`
	Works       []models.Work              `json:"works"`
	Collections []models.ProductCollection `json:"collections"`
	Stats       *models.SiteStats          `json:"stats"`
}

func HandleFeatured(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		monsters, err := s.FeaturedMonsters(r.Context(), 6)
		if err != nil {
			slog.Error("Failed to load featured monsters", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to load featured content"), http.StatusInternalServerError)
			return
		}
		works, err := s.FeaturedWorks(r.Context(), 6)
		if err != nil {
			slog.Error("Failed to load featured works", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to load featured content"), http.StatusInternalServerError)
			return
		}
		collections, err := s.FeaturedCollections(r.Context(), 4)
		if err != nil {
			slog.Error("Failed to load featured collections", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to load featured content"), http.StatusInternalServerError)
			return
		}
		stats, err := s.SiteStats(r.Context())
		if err != nil {
			slog.Error("Failed to compute stats", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to load featured content"), http.StatusInternalServerError)
			return
		}

		writeJSON(w, featuredResponse{
			Monsters:    monsters,
			Works:       works,
			Collections: collections,
			Stats:       stats,
		})
	}
}

func HandleStats(s *store.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats, err := s.SiteStats(r.Context())
		if err != nil {
			slog.Error("Failed to compute stats", slog.Any("error", err))
			validation.WriteError(w, errors.New("failed to compute stats"), http.StatusInternalServerError)
			return
		}
		writeJSON(w, stats)
	}
}
