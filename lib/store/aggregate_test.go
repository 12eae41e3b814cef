package store

import (
	"context"
	"testing"

	"github.com/gojipedia/gojipedia/models"
)

func battleFixture(t *testing.T, s *Store, battleID string, outcomes map[string]models.Outcome) {
	t.Helper()
	mustCreate(t, s, &models.Battle{ID: battleID, Title: battleID, Slug: battleID})
	for monsterID, outcome := range outcomes {
		mustCreate(t, s, &models.BattleParticipant{
			ID:        battleID + "-" + monsterID,
			BattleID:  battleID,
			MonsterID: monsterID,
			Outcome:   outcome,
		})
	}
}

func TestFightRecordTallies(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, monsterFixture("godzilla", "Godzilla"))
	mustCreate(t, s, monsterFixture("ghidorah", "King Ghidorah"))
	mustCreate(t, s, monsterFixture("kong", "Kong"))

	battleFixture(t, s, "b1", map[string]models.Outcome{"godzilla": models.OutcomeWin, "ghidorah": models.OutcomeLoss})
	battleFixture(t, s, "b2", map[string]models.Outcome{"godzilla": models.OutcomeLoss, "kong": models.OutcomeWin})
	battleFixture(t, s, "b3", map[string]models.Outcome{"godzilla": models.OutcomeDraw, "kong": models.OutcomeDraw})

	record, err := s.FightRecord(ctx, "godzilla")
	if err != nil {
		t.Fatalf("FightRecord: %v", err)
	}

	if record.Wins != 1 || record.Losses != 1 || record.Draws != 1 || record.Unknown != 0 {
		t.Errorf("tally = %d/%d/%d/%d, want 1/1/1/0", record.Wins, record.Losses, record.Draws, record.Unknown)
	}
	if len(record.Battles) != 3 {
		t.Fatalf("got %d battle entries, want 3", len(record.Battles))
	}
	for _, entry := range record.Battles {
		if len(entry.Opponents) != 1 {
			t.Errorf("battle %s has %d opponents, want 1", entry.Battle.ID, len(entry.Opponents))
		}
		for _, opp := range entry.Opponents {
			if opp.ID == "godzilla" {
				t.Errorf("battle %s lists the subject as its own opponent", entry.Battle.ID)
			}
		}
	}
}

func TestFightRecordDropsDanglingReferences(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, monsterFixture("godzilla", "Godzilla"))
	// Opponent row points at a monster that does not exist.
	battleFixture(t, s, "b1", map[string]models.Outcome{"godzilla": models.OutcomeWin, "ghost": models.OutcomeLoss})
	// Participation points at a battle that does not exist.
	mustCreate(t, s, &models.BattleParticipant{ID: "orphan", BattleID: "no-such-battle", MonsterID: "godzilla", Outcome: models.OutcomeUnknown})

	record, err := s.FightRecord(ctx, "godzilla")
	if err != nil {
		t.Fatalf("FightRecord: %v", err)
	}
	if record.Wins != 1 || record.Unknown != 1 {
		t.Errorf("tally = %+v, want wins=1 unknown=1", record)
	}
	if len(record.Battles) != 1 {
		t.Fatalf("got %d battle entries, want 1 (orphan dropped)", len(record.Battles))
	}
	if len(record.Battles[0].Opponents) != 0 {
		t.Errorf("dangling opponent should be omitted, got %+v", record.Battles[0].Opponents)
	}
}

func TestRelatedMonstersDeduplicates(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, monsterFixture("godzilla", "Godzilla"))
	mustCreate(t, s, monsterFixture("ghidorah", "King Ghidorah"))
	mustCreate(t, s, monsterFixture("mothra", "Mothra"))
	mustCreate(t, s, monsterFixture("retired", "Retired", func(m *models.Monster) { m.IsActive = false }))

	// Ghidorah is related via an edge in each direction AND a shared battle.
	mustCreate(t, s, &models.Relationship{ID: "r1", FromMonsterID: "godzilla", ToMonsterID: "ghidorah", RelationType: models.RelationEnemy})
	mustCreate(t, s, &models.Relationship{ID: "r2", FromMonsterID: "ghidorah", ToMonsterID: "godzilla", RelationType: models.RelationEnemy})
	battleFixture(t, s, "b1", map[string]models.Outcome{"godzilla": models.OutcomeWin, "ghidorah": models.OutcomeLoss})

	// Mothra only via an incoming edge; the inactive monster via an edge too.
	mustCreate(t, s, &models.Relationship{ID: "r3", FromMonsterID: "mothra", ToMonsterID: "godzilla", RelationType: models.RelationAlly})
	mustCreate(t, s, &models.Relationship{ID: "r4", FromMonsterID: "godzilla", ToMonsterID: "retired", RelationType: models.RelationOther})

	related, err := s.RelatedMonsters(ctx, "godzilla", 10)
	if err != nil {
		t.Fatalf("RelatedMonsters: %v", err)
	}

	seen := map[string]int{}
	for _, m := range related {
		seen[m.ID]++
	}
	if seen["ghidorah"] != 1 {
		t.Errorf("ghidorah appears %d times, want exactly 1", seen["ghidorah"])
	}
	if seen["mothra"] != 1 {
		t.Errorf("mothra appears %d times, want 1 (incoming edge)", seen["mothra"])
	}
	if seen["retired"] != 0 {
		t.Errorf("inactive monster should be filtered out")
	}
	if len(related) != 2 {
		t.Errorf("got %d related monsters, want 2", len(related))
	}
}

func TestWorkWithMonsters(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, &models.Work{ID: "w1", Title: "Gojira", Slug: "gojira-1954", WorkType: models.WorkMovie, IsActive: true})
	mustCreate(t, s, monsterFixture("godzilla", "Godzilla"))
	mustCreate(t, s, &models.Appearance{ID: "a1", MonsterID: "godzilla", WorkID: "w1", RoleTag: models.RoleAntagonist})
	mustCreate(t, s, &models.Appearance{ID: "a2", MonsterID: "ghost", WorkID: "w1", RoleTag: models.RoleCameo})

	work, monsters, err := s.WorkWithMonsters(ctx, "gojira-1954")
	if err != nil {
		t.Fatalf("WorkWithMonsters: %v", err)
	}
	if work == nil {
		t.Fatal("expected work")
	}
	if len(monsters) != 1 || monsters[0].ID != "godzilla" {
		t.Errorf("monsters = %+v, want godzilla only (dangling dropped)", monsters)
	}

	missing, _, err := s.WorkWithMonsters(ctx, "no-such-work")
	if err != nil {
		t.Fatalf("WorkWithMonsters(missing): %v", err)
	}
	if missing != nil {
		t.Errorf("missing work should be nil, got %+v", missing)
	}
}

func TestProductsByMonsterKeywordOverlap(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, monsterFixture("godzilla", "Godzilla", func(m *models.Monster) {
		m.Aliases = models.StringList{"Gojira"}
	}))
	mustCreate(t, s, &models.Product{ID: "p1", ASIN: "A1", Title: "Figure", SearchKeywords: models.StringList{"godzilla figure"}, IsActive: true})
	mustCreate(t, s, &models.Product{ID: "p2", ASIN: "A2", Title: "Import", SearchKeywords: models.StringList{"GOJIRA import"}, IsActive: true})
	mustCreate(t, s, &models.Product{ID: "p3", ASIN: "A3", Title: "Unrelated", SearchKeywords: models.StringList{"kong poster"}, IsActive: true})

	got, err := s.ProductsByMonster(ctx, "godzilla", 8)
	if err != nil {
		t.Fatalf("ProductsByMonster: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d products, want 2 (name + alias substring overlap)", len(got))
	}

	none, err := s.ProductsByMonster(ctx, "missing", 8)
	if err != nil {
		t.Fatalf("ProductsByMonster(missing): %v", err)
	}
	if len(none) != 0 {
		t.Errorf("missing monster should match nothing, got %+v", none)
	}
}

func TestWorksByDecadeExcludesUndated(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, &models.Work{ID: "w1", Title: "Gojira", Slug: "g54", WorkType: models.WorkMovie, ReleaseDate: datePtr(1954, 11, 3), IsActive: true})
	mustCreate(t, s, &models.Work{ID: "w2", Title: "Rodan", Slug: "r56", WorkType: models.WorkMovie, ReleaseDate: datePtr(1956, 12, 26), IsActive: true})
	mustCreate(t, s, &models.Work{ID: "w3", Title: "GvK", Slug: "gvk", WorkType: models.WorkMovie, ReleaseDate: datePtr(2021, 3, 31), IsActive: true})
	mustCreate(t, s, &models.Work{ID: "w4", Title: "Undated", Slug: "nd", WorkType: models.WorkComic, IsActive: true})

	groups, err := s.WorksByDecade(ctx)
	if err != nil {
		t.Fatalf("WorksByDecade: %v", err)
	}
	if len(groups) != 2 {
		t.Fatalf("got %d decades, want 2", len(groups))
	}
	if groups[0].Decade != 1950 || len(groups[0].Works) != 2 {
		t.Errorf("first group = %+v, want 1950s with 2 works", groups[0])
	}
	if groups[1].Decade != 2020 || len(groups[1].Works) != 1 {
		t.Errorf("second group = %+v, want 2020s with 1 work", groups[1])
	}
}

func TestWorksByEraGroupsByFirstTag(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, &models.Work{ID: "w1", Title: "Gojira", Slug: "g54", WorkType: models.WorkMovie, EraTags: models.EraList{models.EraShowa}, IsActive: true})
	mustCreate(t, s, &models.Work{ID: "w2", Title: "Crossover", Slug: "x", WorkType: models.WorkMovie, EraTags: models.EraList{models.EraMonsterVerse, models.EraShowa}, IsActive: true})
	mustCreate(t, s, &models.Work{ID: "w3", Title: "Untagged", Slug: "u", WorkType: models.WorkComic, IsActive: true})

	groups, err := s.WorksByEra(ctx)
	if err != nil {
		t.Fatalf("WorksByEra: %v", err)
	}
	if len(groups[models.EraShowa]) != 1 {
		t.Errorf("Showa group = %+v, want only the work whose first tag is Showa", groups[models.EraShowa])
	}
	if len(groups[models.EraMonsterVerse]) != 1 {
		t.Errorf("MonsterVerse group = %+v", groups[models.EraMonsterVerse])
	}
	if len(groups[models.EraOther]) != 1 {
		t.Errorf("untagged work should land in Other, got %+v", groups[models.EraOther])
	}
}

func TestSiteStats(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	mustCreate(t, s, monsterFixture("godzilla", "Godzilla"))
	mustCreate(t, s, monsterFixture("retired", "Retired", func(m *models.Monster) { m.IsActive = false }))
	mustCreate(t, s, &models.Work{ID: "w1", Title: "Gojira", Slug: "g54", WorkType: models.WorkMovie, IsActive: true})
	mustCreate(t, s, &models.Battle{ID: "b1", Title: "B", Slug: "b"})
	mustCreate(t, s, &models.Product{ID: "p1", ASIN: "A1", Title: "F", IsActive: true})

	stats, err := s.SiteStats(ctx)
	if err != nil {
		t.Fatalf("SiteStats: %v", err)
	}
	want := models.SiteStats{Monsters: 1, Works: 1, Battles: 1, Products: 1}
	if *stats != want {
		t.Errorf("stats = %+v, want %+v", *stats, want)
	}
}
