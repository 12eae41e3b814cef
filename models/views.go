package models

import "time"

// MonsterWithRelations is a Monster plus everything the detail page joins in.
type MonsterWithRelations struct {
	Monster
	FirstAppearanceWork  *Work               `json:"firstAppearanceWork,omitempty"`
	Appearances          []Appearance        `json:"appearances"`
	BattleParticipations []BattleParticipant `json:"battleParticipations"`
	RelationshipsFrom    []Relationship      `json:"relationshipsFrom"`
	RelationshipsTo      []Relationship      `json:"relationshipsTo"`
}

// BattleWithParticipants is a Battle with participants and the work it
// happened in resolved.
type BattleWithParticipants struct {
	Battle
	Participants []BattleParticipant `json:"participants"`
	Work         *Work               `json:"work,omitempty"`
}

// FightRecord summarizes a monster's battle history.
type FightRecord struct {
	Wins    int          `json:"wins"`
	Losses  int          `json:"losses"`
	Draws   int          `json:"draws"`
	Unknown int          `json:"unknown"`
	Battles []FightEntry `json:"battles"`
}

// FightEntry is one battle from the subject monster's perspective. Opponents
// are the other participants in the same battle; participants whose monster
// record no longer resolves are omitted.
type FightEntry struct {
	Battle    Battle    `json:"battle"`
	Outcome   Outcome   `json:"outcome"`
	Opponents []Monster `json:"opponents"`
}

// CollectionWithItems is a ProductCollection with its ranked items and
// products resolved.
type CollectionWithItems struct {
	ProductCollection
	Items []ProductCollectionItem `json:"items"`
}

// TimelineData feeds the franchise timeline page: works and monsters with
// known dates, oldest first.
type TimelineData struct {
	Works    []Work    `json:"works"`
	Monsters []Monster `json:"monsters"`
}

// SiteStats holds the active-row counts shown on the home page.
type SiteStats struct {
	Monsters int64 `json:"monsters"`
	Works    int64 `json:"works"`
	Battles  int64 `json:"battles"`
	Products int64 `json:"products"`
}

// Sort keys accepted by MonsterFilters.SortBy.
const (
	SortByFanPowerIndex       = "fanPowerIndex"
	SortByName                = "name"
	SortByFirstAppearanceDate = "firstAppearanceDate"
)

// MonsterFilters narrows and orders a monster listing. All filters are
// optional and conjunctive. Zero Limit means no truncation.
type MonsterFilters struct {
	Era         Era
	Alignment   Alignment
	SpeciesType SpeciesType
	Search      string
	SortBy      string
	SortOrder   string // "asc" or "desc"
	Limit       int
	Offset      int
}

// WorkFilters narrows a work listing. Year matches the release year exactly.
type WorkFilters struct {
	Era      Era
	WorkType WorkType
	Year     int
	Search   string
	Limit    int
	Offset   int
}

// ProductFilters narrows a product listing.
type ProductFilters struct {
	Category ProductCategory
	Search   string
	Limit    int
	Offset   int
}

// PostFilters narrows a post listing. Status defaults to published when
// unset.
type PostFilters struct {
	Type   PostType
	Status PostStatus
	Limit  int
	Offset int
}

// DecadeGroup is one bucket of the works-by-decade view.
type DecadeGroup struct {
	Decade int    `json:"decade"`
	Works  []Work `json:"works"`
}

// JobResult is the summary a background job reports when it finishes.
type JobResult struct {
	Success         bool      `json:"success"`
	ProductsUpdated int       `json:"productsUpdated"`
	ProductsFailed  int       `json:"productsFailed"`
	NewSuggestions  int       `json:"newSuggestions"`
	DraftsCreated   int       `json:"draftsCreated"`
	Errors          []string  `json:"errors"`
	FinishedAt      time.Time `json:"finishedAt"`
}
