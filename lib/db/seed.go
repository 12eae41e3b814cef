package db

import (
	"fmt"
	"time"

	"log/slog"

	"github.com/gojipedia/gojipedia/lib/fpi"
	"github.com/gojipedia/gojipedia/models"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func date(year, month, day int) *time.Time {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return &t
}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

func intPtr(i int) *int { return &i }

// Seed loads the sample catalog into an empty database. It is idempotent:
// a database that already holds monsters is left alone.
func Seed(db *gorm.DB, logger *slog.Logger) error {
	var count int64
	if err := db.Model(&models.Monster{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count monsters: %w", err)
	}
	if count > 0 {
		logger.Debug("Database already seeded", slog.Int64("monsters", count))
		return nil
	}

	var (
		godzillaID = uuid.NewString()
		ghidorahID = uuid.NewString()
		mothraID   = uuid.NewString()
		rodanID    = uuid.NewString()
		mechaID    = uuid.NewString()
		kongID     = uuid.NewString()

		gojira54ID   = uuid.NewString()
		kotm2019ID   = uuid.NewString()
		gvk2021ID    = uuid.NewString()
		ghidorah64ID = uuid.NewString()
		minusOneID   = uuid.NewString()
	)

	monsters := []models.Monster{
		{
			ID:                    godzillaID,
			Name:                  "Godzilla",
			Slug:                  "godzilla",
			Aliases:               models.StringList{"Gojira", "King of the Monsters"},
			EraTags:               models.EraList{models.EraShowa, models.EraHeisei, models.EraMillennium, models.EraReiwa, models.EraMonsterVerse},
			Alignment:             models.AlignmentEvolves,
			SpeciesType:           models.SpeciesKaiju,
			FirstAppearanceDate:   date(1954, 11, 3),
			FirstAppearanceWorkID: &gojira54ID,
			HeightMeters:          floatPtr(120),
			WeightTons:            floatPtr(99000),
			OriginSummary:         "An ancient apex predator mutated and awakened by nuclear testing in the Pacific.",
			LastKnownWhereabouts:  "Resting beneath the Pacific Ocean.",
			DescriptionLong:       "The defining giant monster of cinema, portrayed across eras as destroyer, protector, and force of nature.",
			Abilities:             models.StringList{"Atomic breath", "Regeneration", "Amphibious"},
			Attacks:               models.StringList{"Atomic breath", "Tail sweep", "Nuclear pulse"},
			Weaknesses:            models.StringList{"Oxygen destroyer"},
			DurabilityScore:       98,
			AttackPowerScore:      95,
			MobilityScore:         60,
			IntelligenceScore:     85,
			SpecialAbilitiesScore: 92,
			EraScalingFactor:      1.08,
			IsActive:              true,
			IsFeatured:            true,
		},
		{
			ID:                    ghidorahID,
			Name:                  "King Ghidorah",
			Slug:                  "king-ghidorah",
			Aliases:               models.StringList{"Monster Zero", "Ghidorah"},
			EraTags:               models.EraList{models.EraShowa, models.EraHeisei, models.EraMonsterVerse},
			Alignment:             models.AlignmentAntagonist,
			SpeciesType:           models.SpeciesAlien,
			FirstAppearanceDate:   date(1964, 12, 20),
			FirstAppearanceWorkID: &ghidorah64ID,
			HeightMeters:          floatPtr(158),
			WeightTons:            floatPtr(141000),
			OriginSummary:         "A three-headed dragon from beyond the stars, drawn to worlds it can raze.",
			LastKnownWhereabouts:  "Destroyed in Boston; one head recovered.",
			DescriptionLong:       "Godzilla's archenemy across every continuity, an extinction-level rival whose gravity beams level cities.",
			Abilities:             models.StringList{"Flight", "Gravity beams", "Regeneration"},
			Attacks:               models.StringList{"Gravity beams", "Constriction", "Hurricane winds"},
			Weaknesses:            models.StringList{"Infighting between heads"},
			DurabilityScore:       92,
			AttackPowerScore:      94,
			MobilityScore:         80,
			IntelligenceScore:     78,
			SpecialAbilitiesScore: 90,
			EraScalingFactor:      1.05,
			IsActive:              true,
			IsFeatured:            true,
		},
		{
			ID:                    mothraID,
			Name:                  "Mothra",
			Slug:                  "mothra",
			Aliases:               models.StringList{"Mosura", "Queen of the Monsters"},
			EraTags:               models.EraList{models.EraShowa, models.EraHeisei, models.EraMonsterVerse},
			Alignment:             models.AlignmentProtagonist,
			SpeciesType:           models.SpeciesKaiju,
			FirstAppearanceDate:   date(1961, 7, 30),
			HeightMeters:          floatPtr(15),
			WeightTons:            floatPtr(25000),
			OriginSummary:         "A divine moth worshipped on Infant Island, reborn across generations.",
			LastKnownWhereabouts:  "An egg rests in a hidden temple.",
			DescriptionLong:       "The benevolent guardian of Earth, often fighting alongside Godzilla despite her fragility.",
			Abilities:             models.StringList{"Flight", "Bioluminescence", "Rebirth"},
			Attacks:               models.StringList{"Scale storm", "Silk spray", "Stinger"},
			Weaknesses:            models.StringList{"Fragile wings", "Mortal lifecycle"},
			DurabilityScore:       55,
			AttackPowerScore:      60,
			MobilityScore:         88,
			IntelligenceScore:     90,
			SpecialAbilitiesScore: 85,
			EraScalingFactor:      1.02,
			IsActive:              true,
			IsFeatured:            true,
		},
		{
			ID:                    rodanID,
			Name:                  "Rodan",
			Slug:                  "rodan",
			Aliases:               models.StringList{"Radon", "The Fire Demon"},
			EraTags:               models.EraList{models.EraShowa, models.EraHeisei, models.EraMonsterVerse},
			Alignment:             models.AlignmentNeutral,
			SpeciesType:           models.SpeciesKaiju,
			FirstAppearanceDate:   date(1956, 12, 26),
			HeightMeters:          floatPtr(47),
			WeightTons:            floatPtr(39000),
			OriginSummary:         "A colossal pteranodon nesting inside an active volcano.",
			LastKnownWhereabouts:  "Roosting in a volcano near Fiji.",
			DescriptionLong:       "A supersonic flyer whose shockwaves alone flatten cities; loyal only to the strongest alpha.",
			Abilities:             models.StringList{"Supersonic flight", "Magma armor"},
			Attacks:               models.StringList{"Sonic boom", "Dive bomb", "Beak strike"},
			Weaknesses:            models.StringList{"Vulnerable underbelly"},
			DurabilityScore:       70,
			AttackPowerScore:      72,
			MobilityScore:         96,
			IntelligenceScore:     55,
			SpecialAbilitiesScore: 65,
			EraScalingFactor:      1.0,
			IsActive:              true,
		},
		{
			ID:                    mechaID,
			Name:                  "Mechagodzilla",
			Slug:                  "mechagodzilla",
			Aliases:               models.StringList{"Kiryu"},
			EraTags:               models.EraList{models.EraShowa, models.EraHeisei, models.EraMillennium, models.EraMonsterVerse},
			Alignment:             models.AlignmentAntagonist,
			SpeciesType:           models.SpeciesMech,
			FirstAppearanceDate:   date(1974, 3, 21),
			HeightMeters:          floatPtr(122),
			WeightTons:            floatPtr(88000),
			OriginSummary:         "A robotic double of Godzilla, built by whoever most recently needed a weapon his size.",
			LastKnownWhereabouts:  "Wreckage scattered across Hong Kong.",
			DescriptionLong:       "From alien infiltrator to human-built anti-kaiju weapon, the mechanical mirror of the King of the Monsters.",
			Abilities:             models.StringList{"Full armament", "Flight", "Remote control"},
			Attacks:               models.StringList{"Proton scream", "Missile barrage", "Drill hands"},
			Weaknesses:            models.StringList{"Power supply", "Control hijacking"},
			DurabilityScore:       88,
			AttackPowerScore:      93,
			MobilityScore:         65,
			IntelligenceScore:     70,
			SpecialAbilitiesScore: 80,
			EraScalingFactor:      1.04,
			IsActive:              true,
		},
		{
			ID:                    kongID,
			Name:                  "Kong",
			Slug:                  "kong",
			Aliases:               models.StringList{"King Kong"},
			EraTags:               models.EraList{models.EraMonsterVerse},
			Alignment:             models.AlignmentProtagonist,
			SpeciesType:           models.SpeciesTitan,
			FirstAppearanceDate:   date(1933, 3, 2),
			HeightMeters:          floatPtr(103),
			WeightTons:            floatPtr(51000),
			OriginSummary:         "The last of a line of great apes that ruled Skull Island.",
			LastKnownWhereabouts:  "The Hollow Earth.",
			DescriptionLong:       "A thinking, tool-using titan whose bout with Godzilla ended in a fragile alliance.",
			Abilities:             models.StringList{"Tool use", "Climbing", "Tactical intelligence"},
			Attacks:               models.StringList{"Axe strike", "Haymaker", "Grapple"},
			Weaknesses:            models.StringList{"No ranged attack"},
			DurabilityScore:       82,
			AttackPowerScore:      85,
			MobilityScore:         78,
			IntelligenceScore:     95,
			SpecialAbilitiesScore: 55,
			EraScalingFactor:      1.03,
			IsActive:              true,
			IsFeatured:            true,
		},
	}

	for i := range monsters {
		fpi.Refresh(&monsters[i])
	}

	works := []models.Work{
		{
			ID:             gojira54ID,
			Title:          "Gojira",
			Slug:           "gojira-1954",
			WorkType:       models.WorkMovie,
			ReleaseDate:    date(1954, 11, 3),
			EraTags:        models.EraList{models.EraShowa},
			ContinuityTag:  strPtr("Showa"),
			SynopsisLong:   "A prehistoric creature awakened by hydrogen bomb testing surfaces off the coast of Japan.",
			Studio:         strPtr("Toho"),
			Director:       strPtr("Ishiro Honda"),
			RuntimeMinutes: intPtr(96),
			IsActive:       true,
			IsFeatured:     true,
		},
		{
			ID:             ghidorah64ID,
			Title:          "Ghidorah, the Three-Headed Monster",
			Slug:           "ghidorah-the-three-headed-monster",
			WorkType:       models.WorkMovie,
			ReleaseDate:    date(1964, 12, 20),
			EraTags:        models.EraList{models.EraShowa},
			ContinuityTag:  strPtr("Showa"),
			SynopsisLong:   "Godzilla, Rodan, and Mothra set aside their grudges to repel a golden dragon from space.",
			Studio:         strPtr("Toho"),
			Director:       strPtr("Ishiro Honda"),
			RuntimeMinutes: intPtr(93),
			IsActive:       true,
		},
		{
			ID:             kotm2019ID,
			Title:          "Godzilla: King of the Monsters",
			Slug:           "godzilla-king-of-the-monsters",
			WorkType:       models.WorkMovie,
			ReleaseDate:    date(2019, 5, 31),
			EraTags:        models.EraList{models.EraMonsterVerse},
			ContinuityTag:  strPtr("MonsterVerse"),
			SynopsisLong:   "Ancient titans wake around the globe and answer to whichever alpha survives.",
			Studio:         strPtr("Legendary Pictures"),
			Director:       strPtr("Michael Dougherty"),
			RuntimeMinutes: intPtr(132),
			IsActive:       true,
			IsFeatured:     true,
		},
		{
			ID:             gvk2021ID,
			Title:          "Godzilla vs. Kong",
			Slug:           "godzilla-vs-kong",
			WorkType:       models.WorkMovie,
			ReleaseDate:    date(2021, 3, 31),
			EraTags:        models.EraList{models.EraMonsterVerse},
			ContinuityTag:  strPtr("MonsterVerse"),
			SynopsisLong:   "Two ancient rivals collide while a corporation builds a third combatant in secret.",
			Studio:         strPtr("Legendary Pictures"),
			Director:       strPtr("Adam Wingard"),
			RuntimeMinutes: intPtr(113),
			IsActive:       true,
			IsFeatured:     true,
		},
		{
			ID:             minusOneID,
			Title:          "Godzilla Minus One",
			Slug:           "godzilla-minus-one",
			WorkType:       models.WorkMovie,
			ReleaseDate:    date(2023, 11, 3),
			EraTags:        models.EraList{models.EraReiwa},
			ContinuityTag:  strPtr("Reiwa"),
			SynopsisLong:   "Postwar Japan, already at zero, faces a monster that drags it below.",
			Studio:         strPtr("Toho"),
			Director:       strPtr("Takashi Yamazaki"),
			RuntimeMinutes: intPtr(124),
			IsActive:       true,
		},
	}

	appearances := []models.Appearance{
		{ID: uuid.NewString(), MonsterID: godzillaID, WorkID: gojira54ID, RoleTag: models.RoleAntagonist, NotesShort: "First appearance."},
		{ID: uuid.NewString(), MonsterID: godzillaID, WorkID: ghidorah64ID, RoleTag: models.RoleProtagonist, NotesShort: "First heroic turn."},
		{ID: uuid.NewString(), MonsterID: rodanID, WorkID: ghidorah64ID, RoleTag: models.RoleFeatured},
		{ID: uuid.NewString(), MonsterID: mothraID, WorkID: ghidorah64ID, RoleTag: models.RoleFeatured},
		{ID: uuid.NewString(), MonsterID: ghidorahID, WorkID: ghidorah64ID, RoleTag: models.RoleAntagonist, NotesShort: "First appearance."},
		{ID: uuid.NewString(), MonsterID: godzillaID, WorkID: kotm2019ID, RoleTag: models.RoleProtagonist},
		{ID: uuid.NewString(), MonsterID: ghidorahID, WorkID: kotm2019ID, RoleTag: models.RoleAntagonist},
		{ID: uuid.NewString(), MonsterID: mothraID, WorkID: kotm2019ID, RoleTag: models.RoleFeatured},
		{ID: uuid.NewString(), MonsterID: rodanID, WorkID: kotm2019ID, RoleTag: models.RoleFeatured},
		{ID: uuid.NewString(), MonsterID: godzillaID, WorkID: gvk2021ID, RoleTag: models.RoleProtagonist},
		{ID: uuid.NewString(), MonsterID: kongID, WorkID: gvk2021ID, RoleTag: models.RoleProtagonist},
		{ID: uuid.NewString(), MonsterID: mechaID, WorkID: gvk2021ID, RoleTag: models.RoleAntagonist},
		{ID: uuid.NewString(), MonsterID: godzillaID, WorkID: minusOneID, RoleTag: models.RoleAntagonist},
	}

	var (
		bostonID   = uuid.NewString()
		hongKongID = uuid.NewString()
		fujiID     = uuid.NewString()
	)

	battles := []models.Battle{
		{
			ID:         bostonID,
			Title:      "Battle of Boston",
			Slug:       "battle-of-boston",
			WorkID:     &kotm2019ID,
			Location:   strPtr("Boston, USA"),
			Summary:    "Godzilla, empowered by Mothra's sacrifice, burns Ghidorah down to a single head.",
			BattleDate: date(2019, 5, 31),
		},
		{
			ID:         hongKongID,
			Title:      "Showdown in Hong Kong",
			Slug:       "showdown-in-hong-kong",
			WorkID:     &gvk2021ID,
			Location:   strPtr("Hong Kong"),
			Summary:    "Kong and Godzilla trade rounds before uniting against Mechagodzilla.",
			BattleDate: date(2021, 3, 31),
		},
		{
			ID:         fujiID,
			Title:      "Clash at Mount Fuji",
			Slug:       "clash-at-mount-fuji",
			WorkID:     &ghidorah64ID,
			Location:   strPtr("Mount Fuji, Japan"),
			Summary:    "Earth's monsters fight as one for the first time and drive Ghidorah back into space.",
			BattleDate: date(1964, 12, 20),
		},
	}

	participants := []models.BattleParticipant{
		{ID: uuid.NewString(), BattleID: bostonID, MonsterID: godzillaID, Outcome: models.OutcomeWin},
		{ID: uuid.NewString(), BattleID: bostonID, MonsterID: ghidorahID, Outcome: models.OutcomeLoss},
		{ID: uuid.NewString(), BattleID: bostonID, MonsterID: mothraID, Outcome: models.OutcomeLoss, NotesShort: "Sacrificed herself."},
		{ID: uuid.NewString(), BattleID: hongKongID, MonsterID: godzillaID, Outcome: models.OutcomeWin},
		{ID: uuid.NewString(), BattleID: hongKongID, MonsterID: kongID, Outcome: models.OutcomeLoss},
		{ID: uuid.NewString(), BattleID: hongKongID, MonsterID: mechaID, Outcome: models.OutcomeLoss},
		{ID: uuid.NewString(), BattleID: fujiID, MonsterID: godzillaID, Outcome: models.OutcomeWin},
		{ID: uuid.NewString(), BattleID: fujiID, MonsterID: rodanID, Outcome: models.OutcomeWin},
		{ID: uuid.NewString(), BattleID: fujiID, MonsterID: mothraID, Outcome: models.OutcomeWin},
		{ID: uuid.NewString(), BattleID: fujiID, MonsterID: ghidorahID, Outcome: models.OutcomeLoss},
	}

	relationships := []models.Relationship{
		{ID: uuid.NewString(), FromMonsterID: godzillaID, ToMonsterID: ghidorahID, RelationType: models.RelationEnemy, NotesShort: "Archenemies across every era."},
		{ID: uuid.NewString(), FromMonsterID: godzillaID, ToMonsterID: mothraID, RelationType: models.RelationAlly, NotesShort: "Uneasy but enduring alliance."},
		{ID: uuid.NewString(), FromMonsterID: godzillaID, ToMonsterID: kongID, RelationType: models.RelationRival},
		{ID: uuid.NewString(), FromMonsterID: ghidorahID, ToMonsterID: rodanID, RelationType: models.RelationAlly, NotesShort: "Rodan submits to the false alpha."},
		{ID: uuid.NewString(), FromMonsterID: mechaID, ToMonsterID: godzillaID, RelationType: models.RelationVariant, NotesShort: "Built in his image."},
	}

	products := []models.Product{
		{
			ID:             uuid.NewString(),
			ASIN:           "B08XYZ1234",
			Title:          "S.H.MonsterArts Godzilla 2019 Figure",
			Price:          strPtr("$89.99"),
			PrimeEligible:  true,
			Category:       models.CategoryFigures,
			Brand:          strPtr("Bandai"),
			SearchKeywords: models.StringList{"godzilla figure", "godzilla 2019", "monsterarts"},
			IsActive:       true,
		},
		{
			ID:             uuid.NewString(),
			ASIN:           "B07ABC5678",
			Title:          "Godzilla: King of the Monsters 4K Blu-ray",
			Price:          strPtr("$24.99"),
			PrimeEligible:  true,
			Category:       models.CategoryBluRay,
			Brand:          strPtr("Warner Bros."),
			SearchKeywords: models.StringList{"godzilla blu-ray", "king of the monsters"},
			IsActive:       true,
		},
		{
			ID:             uuid.NewString(),
			ASIN:           "B09DEF9012",
			Title:          "King Ghidorah Vinyl Figure",
			Price:          strPtr("$34.99"),
			Category:       models.CategoryFigures,
			Brand:          strPtr("Playmates"),
			SearchKeywords: models.StringList{"king ghidorah", "ghidorah figure"},
			IsActive:       true,
		},
		{
			ID:             uuid.NewString(),
			ASIN:           "B01KONG1933",
			Title:          "Kong: Skull Island Poster 24x36",
			Price:          strPtr("$12.99"),
			Category:       models.CategoryPosters,
			SearchKeywords: models.StringList{"king kong poster", "skull island"},
			IsActive:       true,
		},
	}

	collectionID := uuid.NewString()
	collections := []models.ProductCollection{
		{
			ID:          collectionID,
			Title:       "Essential Godzilla Figures",
			Slug:        "essential-godzilla-figures",
			Description: "The figures every collection starts with.",
			ScopeType:   "monster",
			MonsterID:   &godzillaID,
			IsActive:    true,
			IsFeatured:  true,
		},
	}

	collectionItems := []models.ProductCollectionItem{
		{ID: uuid.NewString(), CollectionID: collectionID, ProductID: products[0].ID, Rank: 1, ReasonLine: "The definitive modern sculpt."},
		{ID: uuid.NewString(), CollectionID: collectionID, ProductID: products[2].ID, Rank: 2, ReasonLine: "Every king needs his rival."},
	}

	posts := []models.Post{
		{
			ID:          uuid.NewString(),
			Title:       "How the Fan Power Index Works",
			Slug:        "how-the-fan-power-index-works",
			PostType:    models.PostExplainer,
			Status:      models.StatusPublished,
			Excerpt:     "Five weighted sub-scores, one era multiplier, and a hard 0-100 cap.",
			Body:        "The Fan Power Index weighs durability, attack power, mobility, intelligence, and special abilities, then scales for era-to-era power inflation.",
			Tags:        models.StringList{"fpi", "methodology"},
			PublishedAt: date(2024, 1, 15),
		},
		{
			ID:               uuid.NewString(),
			Title:            "The Last Lighthouse Keeper",
			Slug:             "the-last-lighthouse-keeper",
			PostType:         models.PostStory,
			Status:           models.StatusPublished,
			StoryPerspective: strPtr("human"),
			Excerpt:          "Matsuo had manned the lighthouse on Odo Island for forty years. He thought he had seen everything the sea could offer.",
			Body:             "He was wrong.",
			Tags:             models.StringList{"short story", "human perspective"},
			PublishedAt:      date(2024, 2, 1),
		},
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("change-me"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash seed admin password: %w", err)
	}
	users := []models.User{
		{ID: uuid.NewString(), Email: "admin@gojipedia.local", Name: "Admin", PasswordHash: string(hash), Role: "admin"},
	}

	return db.Transaction(func(tx *gorm.DB) error {
		for _, batch := range []interface{}{monsters, works, appearances, battles, participants, relationships, products, collections, collectionItems, posts, users} {
			if err := tx.Create(batch).Error; err != nil {
				return fmt.Errorf("failed to seed: %w", err)
			}
		}
		logger.Info("Seeded sample catalog",
			slog.Int("monsters", len(monsters)),
			slog.Int("works", len(works)),
			slog.Int("battles", len(battles)))
		return nil
	})
}
