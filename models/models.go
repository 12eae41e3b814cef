package models

import (
	"time"
)

// Enum-like string types mirroring the database schema. Values outside the
// documented sets are tolerated on input and simply never match anything.
type (
	Era             string
	Alignment       string
	SpeciesType     string
	WorkType        string
	RoleTag         string
	Outcome         string
	RelationType    string
	ProductCategory string
	PostType        string
	PostStatus      string
)

const (
	EraShowa        Era = "Showa"
	EraHeisei       Era = "Heisei"
	EraMillennium   Era = "Millennium"
	EraReiwa        Era = "Reiwa"
	EraMonsterVerse Era = "MonsterVerse"
	EraOther        Era = "Other"
)

const (
	AlignmentProtagonist Alignment = "protagonist"
	AlignmentAntagonist  Alignment = "antagonist"
	AlignmentNeutral     Alignment = "neutral"
	AlignmentEvolves     Alignment = "evolves"
)

const (
	SpeciesKaiju             SpeciesType = "kaiju"
	SpeciesMech              SpeciesType = "mech"
	SpeciesAlien             SpeciesType = "alien"
	SpeciesHumanOrganization SpeciesType = "human_organization"
	SpeciesTitan             SpeciesType = "titan"
)

const (
	WorkMovie  WorkType = "movie"
	WorkSeries WorkType = "series"
	WorkComic  WorkType = "comic"
	WorkGame   WorkType = "game"
)

const (
	RoleProtagonist RoleTag = "protagonist"
	RoleAntagonist  RoleTag = "antagonist"
	RoleCameo       RoleTag = "cameo"
	RoleFeatured    RoleTag = "featured"
	RoleMentioned   RoleTag = "mentioned"
)

const (
	OutcomeWin     Outcome = "win"
	OutcomeLoss    Outcome = "loss"
	OutcomeDraw    Outcome = "draw"
	OutcomeUnknown Outcome = "unknown"
)

const (
	RelationAlly      RelationType = "ally"
	RelationEnemy     RelationType = "enemy"
	RelationRival     RelationType = "rival"
	RelationCreator   RelationType = "creator"
	RelationCreatedBy RelationType = "createdBy"
	RelationVariant   RelationType = "variant"
	RelationOther     RelationType = "other"
)

const (
	CategoryFigures ProductCategory = "figures"
	CategoryBluRay  ProductCategory = "bluray"
	CategoryPosters ProductCategory = "posters"
	CategoryApparel ProductCategory = "apparel"
	CategoryBooks   ProductCategory = "books"
	CategoryGames   ProductCategory = "games"
	CategoryOther   ProductCategory = "other"
)

const (
	PostArticle   PostType = "article"
	PostStory     PostType = "story"
	PostGuide     PostType = "guide"
	PostExplainer PostType = "explainer"
)

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

// Monster is an encyclopedia entry for a single creature, mech, or
// organization. FanPowerIndex is a cached copy of fpi.Compute over the five
// sub-scores and the era scaling factor; every write path recomputes it.
type Monster struct {
	ID                    string      `gorm:"primaryKey" json:"id"`
	Name                  string      `gorm:"index" json:"name"`
	Slug                  string      `gorm:"uniqueIndex" json:"slug"`
	Aliases               StringList  `gorm:"serializer:json" json:"aliases"`
	EraTags               EraList     `gorm:"serializer:json" json:"eraTags"`
	Alignment             Alignment   `json:"alignment"`
	SpeciesType           SpeciesType `json:"speciesType"`
	FirstAppearanceDate   *time.Time  `json:"firstAppearanceDate"`
	FirstAppearanceWorkID *string     `json:"firstAppearanceWorkId"`
	HeightMeters          *float64    `json:"heightMeters"`
	WeightTons            *float64    `json:"weightTons"`
	OriginSummary         string      `json:"originSummary"`
	LastKnownWhereabouts  string      `json:"lastKnownWhereabouts"`
	DescriptionLong       string      `json:"descriptionLong"`
	Abilities             StringList  `gorm:"serializer:json" json:"abilities"`
	Attacks               StringList  `gorm:"serializer:json" json:"attacks"`
	Weaknesses            StringList  `gorm:"serializer:json" json:"weaknesses"`
	FanPowerIndex         int         `gorm:"index" json:"fanPowerIndex"`
	DurabilityScore       float64     `json:"durabilityScore"`
	AttackPowerScore      float64     `json:"attackPowerScore"`
	MobilityScore         float64     `json:"mobilityScore"`
	IntelligenceScore     float64     `json:"intelligenceScore"`
	SpecialAbilitiesScore float64     `json:"specialAbilitiesScore"`
	EraScalingFactor      float64     `json:"eraScalingFactor"`
	PrimaryImageURL       *string     `json:"primaryImageUrl"`
	GalleryImages         StringList  `gorm:"serializer:json" json:"galleryImages"`
	IsActive              bool        `gorm:"index" json:"isActive"`
	IsFeatured            bool        `json:"isFeatured"`
	CreatedAt             time.Time   `json:"createdAt"`
	UpdatedAt             time.Time   `json:"updatedAt"`
}

type Work struct {
	ID             string     `gorm:"primaryKey" json:"id"`
	Title          string     `gorm:"index" json:"title"`
	Slug           string     `gorm:"uniqueIndex" json:"slug"`
	WorkType       WorkType   `json:"workType"`
	ReleaseDate    *time.Time `json:"releaseDate"`
	EraTags        EraList    `gorm:"serializer:json" json:"eraTags"`
	ContinuityTag  *string    `json:"continuityTag"`
	SynopsisLong   string     `json:"synopsisLong"`
	Studio         *string    `json:"studio"`
	Director       *string    `json:"director"`
	RuntimeMinutes *int       `json:"runtimeMinutes"`
	PosterImageURL *string    `json:"posterImageUrl"`
	IsActive       bool       `gorm:"index" json:"isActive"`
	IsFeatured     bool       `json:"isFeatured"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// Appearance links a Monster to a Work it shows up in.
type Appearance struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	MonsterID  string    `gorm:"index" json:"monsterId"`
	WorkID     string    `gorm:"index" json:"workId"`
	RoleTag    RoleTag   `json:"roleTag"`
	NotesShort string    `json:"notesShort"`
	CreatedAt  time.Time `json:"createdAt"`

	Monster *Monster `gorm:"-" json:"monster,omitempty"`
	Work    *Work    `gorm:"-" json:"work,omitempty"`
}

type Battle struct {
	ID         string     `gorm:"primaryKey" json:"id"`
	Title      string     `json:"title"`
	Slug       string     `gorm:"uniqueIndex" json:"slug"`
	WorkID     *string    `json:"workId"`
	Location   *string    `json:"location"`
	Summary    string     `json:"summary"`
	BattleDate *time.Time `json:"battleDate"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// BattleParticipant records one monster's outcome in one battle, from that
// monster's perspective.
type BattleParticipant struct {
	ID         string  `gorm:"primaryKey" json:"id"`
	BattleID   string  `gorm:"index" json:"battleId"`
	MonsterID  string  `gorm:"index" json:"monsterId"`
	Outcome    Outcome `json:"outcome"`
	NotesShort string  `json:"notesShort"`

	Monster *Monster `gorm:"-" json:"monster,omitempty"`
	Battle  *Battle  `gorm:"-" json:"battle,omitempty"`
}

// Relationship is a directed edge between two monsters. The edge is stored
// once; readers must merge the outgoing and incoming sides to see a monster's
// full relationship set.
type Relationship struct {
	ID            string       `gorm:"primaryKey" json:"id"`
	FromMonsterID string       `gorm:"index" json:"fromMonsterId"`
	ToMonsterID   string       `gorm:"index" json:"toMonsterId"`
	RelationType  RelationType `json:"relationType"`
	NotesShort    string       `json:"notesShort"`
	CreatedAt     time.Time    `json:"createdAt"`

	FromMonster *Monster `gorm:"-" json:"fromMonster,omitempty"`
	ToMonster   *Monster `gorm:"-" json:"toMonster,omitempty"`
}

type Product struct {
	ID               string          `gorm:"primaryKey" json:"id"`
	ASIN             string          `gorm:"uniqueIndex;column:asin" json:"asin"`
	Title            string          `json:"title"`
	ImageURL         *string         `json:"imageUrl"`
	Price            *string         `json:"price"`
	PrimeEligible    bool            `json:"primeEligible"`
	Category         ProductCategory `gorm:"index" json:"category"`
	Brand            *string         `json:"brand"`
	AmazonURLWithTag *string         `json:"amazonUrlWithTag"`
	SearchKeywords   StringList      `gorm:"serializer:json" json:"searchKeywords"`
	IsActive         bool            `gorm:"index" json:"isActive"`
	IsSuggested      bool            `json:"isSuggested"`
	LastFetchedAt    *time.Time      `json:"lastFetchedAt"`
	FetchFailCount   int             `json:"fetchFailCount"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

type ProductCollection struct {
	ID          string    `gorm:"primaryKey" json:"id"`
	Title       string    `json:"title"`
	Slug        string    `gorm:"uniqueIndex" json:"slug"`
	Description string    `json:"description"`
	ScopeType   string    `json:"scopeType"`
	MonsterID   *string   `json:"monsterId"`
	WorkID      *string   `json:"workId"`
	ScopeValue  *string   `json:"scopeValue"`
	IsActive    bool      `json:"isActive"`
	IsFeatured  bool      `json:"isFeatured"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type ProductCollectionItem struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	CollectionID string    `gorm:"index" json:"collectionId"`
	ProductID    string    `gorm:"index" json:"productId"`
	Rank         int       `json:"rank"`
	ReasonLine   string    `json:"reasonLine"`
	CreatedAt    time.Time `json:"createdAt"`

	Product *Product `gorm:"-" json:"product,omitempty"`
}

type Post struct {
	ID               string     `gorm:"primaryKey" json:"id"`
	Title            string     `json:"title"`
	Slug             string     `gorm:"uniqueIndex" json:"slug"`
	PostType         PostType   `gorm:"index" json:"postType"`
	Status           PostStatus `gorm:"index" json:"status"`
	StoryPerspective *string    `json:"storyPerspective"`
	Excerpt          string     `json:"excerpt"`
	Body             string     `json:"body"`
	Tags             StringList `gorm:"serializer:json" json:"tags"`
	Categories       StringList `gorm:"serializer:json" json:"categories"`
	FeaturedImageURL *string    `json:"featuredImageUrl"`
	PublishedAt      *time.Time `json:"publishedAt"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// User is an admin or editor account for the dashboard endpoints.
type User struct {
	ID           string    `gorm:"primaryKey" json:"id"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// JobRun records one execution of a background job.
type JobRun struct {
	ID           string     `gorm:"primaryKey" json:"id"`
	JobType      string     `gorm:"index" json:"jobType"`
	Status       string     `json:"status"`
	StartedAt    time.Time  `json:"startedAt"`
	CompletedAt  *time.Time `json:"completedAt"`
	ResultData   string     `json:"resultData"`
	ErrorMessage *string    `json:"errorMessage"`
}

// StringList and EraList are persisted as JSON columns in SQLite.
type StringList []string

type EraList []Era

// Contains reports set membership against the era tag list.
func (l EraList) Contains(era Era) bool {
	for _, e := range l {
		if e == era {
			return true
		}
	}
	return false
}
