// Package draft implements the content draft job. It assembles facts from
// the database, asks OpenAI to write an article, validates the response, and
// stores the result as a draft post for editorial review. Without an API key
// the job still runs, falling back to deterministic fact-sheet drafts.
package draft

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
	"time"

	"log/slog"

	"github.com/gojipedia/gojipedia/lib/draft/prompts"
	"github.com/gojipedia/gojipedia/lib/store"
	"github.com/gojipedia/gojipedia/models"
	openai "github.com/sashabaranov/go-openai"
)

var errNoClient = errors.New("draft: OpenAI client not configured")

type Writer struct {
	store  *store.Store
	openai *openai.Client
	logger *slog.Logger
}

// NewWriter builds the draft writer. An empty API key leaves the OpenAI
// client nil and every draft uses the deterministic fallback.
func NewWriter(s *store.Store, apiKey string, logger *slog.Logger) *Writer {
	w := &Writer{store: s, logger: logger}
	if apiKey != "" {
		w.openai = openai.NewClient(apiKey)
	}
	return w
}

type monsterFacts struct {
	Name          string
	Aliases       []string
	Eras          []models.Era
	Species       models.SpeciesType
	Alignment     models.Alignment
	FanPowerIndex int
	Abilities     []string
	Origin        string
	Whereabouts   string
	Works         []string
	Perspective   string
}

type battleFacts struct {
	Title        string
	Location     string
	Participants []string
	Summary      string
}

// Run produces one draft of each kind that has source material. A JobRun row
// records the outcome.
func (w *Writer) Run(ctx context.Context) (*models.JobResult, error) {
	run, err := w.store.StartJobRun(ctx, "content_draft")
	if err != nil {
		return nil, err
	}

	result, jobErr := w.execute(ctx)
	result.FinishedAt = time.Now()
	result.Success = jobErr == nil

	data, _ := json.Marshal(result)
	if err := w.store.FinishJobRun(ctx, run, string(data), jobErr); err != nil {
		w.logger.Error("failed to finish job run", "error", err)
	}
	return result, jobErr
}

func (w *Writer) execute(ctx context.Context) (*models.JobResult, error) {
	result := &models.JobResult{Errors: []string{}}

	monsters, err := w.store.ListMonsters(ctx, models.MonsterFilters{Limit: 10})
	if err != nil {
		return result, fmt.Errorf("failed to load monsters: %w", err)
	}
	if len(monsters) == 0 {
		w.logger.Warn("content draft skipped, no monsters to write about")
		return result, nil
	}

	// Highest Fan Power Index first is the default listing order, so the
	// guide and story cover the flagship monster.
	top := monsters[0]
	w.draftMonsterGuide(ctx, top, result)
	w.draftStory(ctx, top, result)

	for _, m := range monsters {
		if len(m.EraTags) > 1 {
			w.draftEraComparison(ctx, m, result)
			break
		}
	}

	battles, err := w.store.ListBattles(ctx, 1)
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	} else if len(battles) > 0 {
		w.draftBattleAnalysis(ctx, battles[0], result)
	}

	w.logger.Info("content draft complete", "drafts", result.DraftsCreated, "errors", len(result.Errors))
	return result, nil
}

func (w *Writer) draftMonsterGuide(ctx context.Context, m models.Monster, result *models.JobResult) {
	facts := factsFor(m)
	works, err := w.workTitlesFor(ctx, m)
	if err == nil {
		facts.Works = works
	}

	resp, err := w.generate(ctx, "monster_guide.txt", facts)
	if err != nil {
		resp = fallbackGuide(facts)
		w.noteFallback(err, result)
	}
	w.save(ctx, resp, models.PostGuide, nil, result)
}

func (w *Writer) draftEraComparison(ctx context.Context, m models.Monster, result *models.JobResult) {
	facts := factsFor(m)
	resp, err := w.generate(ctx, "era_comparison.txt", facts)
	if err != nil {
		resp = fallbackEraComparison(facts)
		w.noteFallback(err, result)
	}
	w.save(ctx, resp, models.PostExplainer, nil, result)
}

func (w *Writer) draftStory(ctx context.Context, m models.Monster, result *models.JobResult) {
	facts := factsFor(m)
	facts.Perspective = m.Name
	resp, err := w.generate(ctx, "story.txt", facts)
	if err != nil {
		resp = fallbackStory(facts)
		w.noteFallback(err, result)
	}
	w.save(ctx, resp, models.PostStory, &facts.Perspective, result)
}

func (w *Writer) draftBattleAnalysis(ctx context.Context, battle models.BattleWithParticipants, result *models.JobResult) {
	facts := battleFacts{
		Title:    battle.Title,
		Summary:  battle.Summary,
		Location: "unknown",
	}
	if battle.Location != nil {
		facts.Location = *battle.Location
	}
	for _, p := range battle.Participants {
		name := p.MonsterID
		if p.Monster != nil {
			name = p.Monster.Name
		}
		facts.Participants = append(facts.Participants, fmt.Sprintf("%s (%s)", name, p.Outcome))
	}

	resp, err := w.generate(ctx, "battle_analysis.txt", facts)
	if err != nil {
		resp = fallbackBattleAnalysis(facts)
		w.noteFallback(err, result)
	}
	w.save(ctx, resp, models.PostArticle, nil, result)
}

func (w *Writer) noteFallback(err error, result *models.JobResult) {
	if errors.Is(err, errNoClient) {
		return
	}
	w.logger.Warn("draft generation fell back", "error", err)
	result.Errors = append(result.Errors, err.Error())
}

func (w *Writer) save(ctx context.Context, resp *draftResponse, postType models.PostType, perspective *string, result *models.JobResult) {
	post := &models.Post{
		Title:            resp.Title,
		Slug:             slugify(resp.Title),
		PostType:         postType,
		StoryPerspective: perspective,
		Excerpt:          resp.Excerpt,
		Body:             resp.Body,
		Tags:             models.StringList(resp.Tags),
	}
	if err := w.store.SaveDraftPost(ctx, post); err != nil {
		w.logger.Error("failed to save draft", "slug", post.Slug, "error", err)
		result.Errors = append(result.Errors, err.Error())
		return
	}
	result.DraftsCreated++
}

// generate renders the prompt template and asks OpenAI for a validated draft.
func (w *Writer) generate(ctx context.Context, promptFile string, data interface{}) (*draftResponse, error) {
	if w.openai == nil {
		return nil, errNoClient
	}

	systemPrompt, err := loadPrompt("system.txt", nil)
	if err != nil {
		return nil, err
	}
	userPrompt, err := loadPrompt(promptFile, data)
	if err != nil {
		return nil, err
	}

	resp, err := w.openai.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT4oMini,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("chat completion returned no choices")
	}

	return parseDraftResponse([]byte(resp.Choices[0].Message.Content))
}

func loadPrompt(filename string, data interface{}) (string, error) {
	content, err := prompts.FS.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", filename, err)
	}
	if data == nil {
		return string(content), nil
	}

	tmpl, err := template.New(filename).Parse(string(content))
	if err != nil {
		return "", fmt.Errorf("failed to parse prompt template %s: %w", filename, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render prompt template %s: %w", filename, err)
	}
	return buf.String(), nil
}

func factsFor(m models.Monster) monsterFacts {
	return monsterFacts{
		Name:          m.Name,
		Aliases:       m.Aliases,
		Eras:          m.EraTags,
		Species:       m.SpeciesType,
		Alignment:     m.Alignment,
		FanPowerIndex: m.FanPowerIndex,
		Abilities:     m.Abilities,
		Origin:        m.OriginSummary,
		Whereabouts:   m.LastKnownWhereabouts,
	}
}

func (w *Writer) workTitlesFor(ctx context.Context, m models.Monster) ([]string, error) {
	full, err := w.store.GetMonsterBySlug(ctx, m.Slug)
	if err != nil || full == nil {
		return nil, err
	}
	var titles []string
	for _, a := range full.Appearances {
		if a.Work != nil {
			titles = append(titles, a.Work.Title)
		}
	}
	return titles, nil
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(title string) string {
	s := nonSlug.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
