package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gojipedia/gojipedia/lib/auth"
	"github.com/gojipedia/gojipedia/lib/db"
	"github.com/gojipedia/gojipedia/lib/lock"
	"github.com/gojipedia/gojipedia/lib/store"
	"github.com/gojipedia/gojipedia/models"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testStore(t *testing.T) *store.Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gdb, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: db.NewGormLogger(logger),
	})
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	if err := db.RunMigrations(gdb, logger); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	if err := db.Seed(gdb, logger); err != nil {
		t.Fatalf("failed to seed: %v", err)
	}
	return store.New(gdb, logger)
}

func get(t *testing.T, router chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandleMonsters(t *testing.T) {
	s := testStore(t)
	r := chi.NewRouter()
	r.Get("/api/monsters", HandleMonsters(s))

	rec := get(t, r, "/api/monsters")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var monsters []models.Monster
	decode(t, rec, &monsters)
	if len(monsters) == 0 {
		t.Fatal("expected seeded monsters")
	}
	// Default order is Fan Power Index descending.
	for i := 1; i < len(monsters); i++ {
		if monsters[i].FanPowerIndex > monsters[i-1].FanPowerIndex {
			t.Errorf("not sorted by index: %d before %d", monsters[i-1].FanPowerIndex, monsters[i].FanPowerIndex)
		}
	}

	rec = get(t, r, "/api/monsters?era=Showa&species=kaiju")
	decode(t, rec, &monsters)
	for _, m := range monsters {
		if !m.EraTags.Contains(models.EraShowa) || m.SpeciesType != models.SpeciesKaiju {
			t.Errorf("filter leaked: %s", m.Slug)
		}
	}

	rec = get(t, r, "/api/monsters?limit=0")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("limit=0 status = %d", rec.Code)
	}
}

func TestHandleMonsterDetail(t *testing.T) {
	s := testStore(t)
	r := chi.NewRouter()
	r.Get("/api/monsters/{slug}", HandleMonster(s))

	rec := get(t, r, "/api/monsters/godzilla")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var detail struct {
		Name         string `json:"name"`
		FPIBreakdown struct {
			Total int `json:"total"`
		} `json:"fpiBreakdown"`
		FightRecord *models.FightRecord `json:"fightRecord"`
		Related     []models.Monster    `json:"relatedMonsters"`
	}
	decode(t, rec, &detail)
	if detail.Name != "Godzilla" {
		t.Errorf("name = %q", detail.Name)
	}
	if detail.FPIBreakdown.Total == 0 {
		t.Error("expected a nonzero score breakdown")
	}
	if detail.FightRecord == nil {
		t.Error("expected a fight record")
	}
	if len(detail.Related) == 0 {
		t.Error("expected related monsters")
	}

	if rec := get(t, r, "/api/monsters/no-such-monster"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown slug status = %d", rec.Code)
	}
	if rec := get(t, r, "/api/monsters/Bad_Slug"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid slug status = %d", rec.Code)
	}
}

func TestHandleWorksAndTimeline(t *testing.T) {
	s := testStore(t)
	r := chi.NewRouter()
	r.Get("/api/works", HandleWorks(s))
	r.Get("/api/works/{slug}", HandleWork(s))
	r.Get("/api/timeline", HandleTimeline(s))

	rec := get(t, r, "/api/works?year=1954")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var works []models.Work
	decode(t, rec, &works)
	if len(works) != 1 || works[0].Slug != "gojira-1954" {
		t.Errorf("works = %+v", works)
	}

	rec = get(t, r, "/api/works/gojira-1954")
	if rec.Code != http.StatusOK {
		t.Fatalf("work detail status = %d", rec.Code)
	}
	var detail struct {
		Title    string           `json:"title"`
		Monsters []models.Monster `json:"monsters"`
	}
	decode(t, rec, &detail)
	if len(detail.Monsters) == 0 {
		t.Error("expected monsters in work detail")
	}

	rec = get(t, r, "/api/timeline")
	if rec.Code != http.StatusOK {
		t.Fatalf("timeline status = %d", rec.Code)
	}
	var timeline struct {
		Works    []models.Work                `json:"works"`
		ByEra    map[models.Era][]models.Work `json:"byEra"`
		ByDecade []models.DecadeGroup         `json:"byDecade"`
	}
	decode(t, rec, &timeline)
	if len(timeline.Works) == 0 || len(timeline.ByEra) == 0 || len(timeline.ByDecade) == 0 {
		t.Errorf("timeline incomplete: %d works, %d eras, %d decades",
			len(timeline.Works), len(timeline.ByEra), len(timeline.ByDecade))
	}
}

func TestHandleFeatured(t *testing.T) {
	s := testStore(t)
	r := chi.NewRouter()
	r.Get("/api/featured", HandleFeatured(s))

	rec := get(t, r, "/api/featured")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var featured struct {
		Monsters    []models.Monster           `json:"monsters"`
		Works       []models.Work              `json:"works"`
		Collections []models.ProductCollection `json:"collections"`
		Stats       *models.SiteStats          `json:"stats"`
	}
	decode(t, rec, &featured)
	if len(featured.Monsters) == 0 || len(featured.Works) == 0 || len(featured.Collections) == 0 {
		t.Errorf("featured incomplete: %d monsters, %d works, %d collections",
			len(featured.Monsters), len(featured.Works), len(featured.Collections))
	}
	for _, m := range featured.Monsters {
		if !m.IsFeatured {
			t.Errorf("non-featured monster in payload: %s", m.Slug)
		}
	}
	if featured.Stats == nil || featured.Stats.Monsters == 0 {
		t.Error("expected stats in featured payload")
	}
}

func TestHandleStats(t *testing.T) {
	s := testStore(t)
	r := chi.NewRouter()
	r.Get("/api/stats", HandleStats(s))

	rec := get(t, r, "/api/stats")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var stats models.SiteStats
	decode(t, rec, &stats)
	if stats.Monsters == 0 || stats.Works == 0 {
		t.Errorf("stats = %+v", stats)
	}
}

func testTokens() auth.TokenService {
	return auth.TokenService{Secret: []byte("test-secret"), Issuer: "test", Duration: time.Hour}
}

func loginToken(t *testing.T, s *store.Store, tokens auth.TokenService) string {
	t.Helper()
	r := chi.NewRouter()
	r.Post("/api/admin/login", HandleLogin(s, tokens))

	body, _ := json.Marshal(loginRequest{Email: "admin@gojipedia.local", Password: "change-me"})
	req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d: %s", rec.Code, rec.Body.String())
	}

	var resp loginResponse
	decode(t, rec, &resp)
	if resp.Token == "" {
		t.Fatal("empty token")
	}
	return resp.Token
}

func TestHandleLogin(t *testing.T) {
	s := testStore(t)
	tokens := testTokens()
	loginToken(t, s, tokens)

	r := chi.NewRouter()
	r.Post("/api/admin/login", HandleLogin(s, tokens))

	for _, body := range []string{
		`{"email":"admin@gojipedia.local","password":"wrong"}`,
		`{"email":"nobody@example.com","password":"change-me"}`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", bytes.NewReader([]byte(body)))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d for %s", rec.Code, body)
		}
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	s := testStore(t)
	tokens := testTokens()

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(tokens.Middleware)
		r.Get("/api/admin/monsters", HandleAdminMonsters(s))
	})

	rec := get(t, r, "/api/admin/monsters")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated status = %d", rec.Code)
	}

	token := loginToken(t, s, tokens)
	req := httptest.NewRequest(http.MethodGet, "/api/admin/monsters", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("authenticated status = %d: %s", rec.Code, rec.Body.String())
	}
}

func TestApproveSuggestedProduct(t *testing.T) {
	s := testStore(t)
	suggested := models.Product{
		ID:          uuid.NewString(),
		ASIN:        "B0SUGGESTED",
		Title:       "Suggested Figure",
		Category:    models.CategoryFigures,
		IsSuggested: true,
	}
	if err := s.DB().Create(&suggested).Error; err != nil {
		t.Fatalf("failed to create suggestion: %v", err)
	}

	r := chi.NewRouter()
	r.Post("/api/admin/products/{id}/approve", HandleApproveProduct(s))

	req := httptest.NewRequest(http.MethodPost, "/api/admin/products/"+suggested.ID+"/approve", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	p, err := s.GetProductByASIN(context.Background(), "B0SUGGESTED")
	if err != nil || p == nil {
		t.Fatalf("GetProductByASIN: %v %v", p, err)
	}
	if !p.IsActive || p.IsSuggested {
		t.Errorf("product not approved: %+v", p)
	}

	// Already approved, so the second call finds nothing to approve.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/products/"+suggested.ID+"/approve", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("second approve status = %d", rec.Code)
	}
}

func TestHandleSaveMonsterRecomputesIndex(t *testing.T) {
	s := testStore(t)
	r := chi.NewRouter()
	r.Post("/api/admin/monsters", HandleSaveMonster(s))

	monster := models.Monster{
		Name:                  "Anguirus",
		Slug:                  "anguirus",
		SpeciesType:           models.SpeciesKaiju,
		Alignment:             models.AlignmentProtagonist,
		DurabilityScore:       90,
		AttackPowerScore:      70,
		MobilityScore:         65,
		IntelligenceScore:     55,
		SpecialAbilitiesScore: 50,
		EraScalingFactor:      1.0,
		FanPowerIndex:         999, // must be discarded
		IsActive:              true,
	}
	body, _ := json.Marshal(monster)
	req := httptest.NewRequest(http.MethodPost, "/api/admin/monsters", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	var saved models.Monster
	decode(t, rec, &saved)
	// 90*.20 + 70*.25 + 65*.15 + 55*.15 + 50*.25 = 66
	if saved.FanPowerIndex != 66 {
		t.Errorf("FanPowerIndex = %d, want 66", saved.FanPowerIndex)
	}
	if saved.ID == "" {
		t.Error("expected generated ID")
	}
}

type fakeJob struct {
	runs    atomic.Int32
	release chan struct{}
}

func (f *fakeJob) Run(ctx context.Context) (*models.JobResult, error) {
	f.runs.Add(1)
	if f.release != nil {
		<-f.release
	}
	return &models.JobResult{Success: true}, nil
}

func TestHandleRunJob(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	locks := lock.NewFileLock(logger)
	job := &fakeJob{release: make(chan struct{})}

	// Unique name so parallel test runs don't share a lock file.
	name := "test_job_" + uuid.NewString()
	r := chi.NewRouter()
	r.Post("/jobs/test", HandleRunJob(name, job, locks))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/test", nil))
	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}

	// While the first run holds the lock, a second trigger is refused.
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/jobs/test", nil))
	if rec.Code != http.StatusConflict {
		t.Errorf("concurrent trigger status = %d", rec.Code)
	}

	close(job.release)
	deadline := time.Now().Add(2 * time.Second)
	for job.runs.Load() < 1 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if job.runs.Load() != 1 {
		t.Errorf("runs = %d, want 1", job.runs.Load())
	}
}
