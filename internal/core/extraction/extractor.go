package extraction

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/agenthands/copycheck/internal/config"
	"github.com/agenthands/copycheck/internal/core/common"
	"github.com/agenthands/copycheck/internal/core/model"
	"github.com/agenthands/copycheck/internal/llm"
	"golang.org/x/time/rate"
)

const (
	maxVariations     = 3
	degradedPlanChars = 200
)

type Extractor struct {
	LLM     llm.LLMClient
	Prompts config.Prompts
	Limiter *rate.Limiter

	// Structured requests schema-constrained output when the client supports it.
	Structured bool
	// Translation runs the English normalization step in Process.
	Translation bool
}

// NewExtractor limits LLM calls to rps per second; rps <= 0 means unlimited.
func NewExtractor(llmClient llm.LLMClient, prompts config.Prompts, rps float64) *Extractor {
	e := &Extractor{
		LLM:         llmClient,
		Prompts:     prompts,
		Translation: true,
	}
	if rps > 0 {
		e.Limiter = rate.NewLimiter(rate.Limit(rps), 1)
	}
	return e
}

// Extract pulls title, theme, mechanics and description from a free-text plan.
func (e *Extractor) Extract(ctx context.Context, planID int64, text string) (model.Design, error) {
	prompt := fmt.Sprintf(promptOr(e.Prompts.Design, DefaultDesignPrompt), text)

	result, err := Generate[model.ExtractedDesign](ctx, e, prompt, "extracted_design")
	if err != nil {
		return model.Design{}, fmt.Errorf("%w: %v", model.ErrExtraction, err)
	}

	d := model.Design{
		PlanID:      planID,
		Title:       orDefault(result.Title, "Unknown Game"),
		Theme:       orDefault(result.Theme, "game, board game"),
		Mechanics:   result.Mechanics,
		Description: orDefault(result.Description, "No description provided."),
	}
	if len(d.Mechanics) == 0 {
		d.Mechanics = []string{"turn-based", "card play"}
	}
	return d, nil
}

// Translate normalizes the design to English. Fields missing from the
// response keep their source values.
func (e *Extractor) Translate(ctx context.Context, d model.Design) (model.Design, error) {
	src, err := json.MarshalIndent(model.ExtractedDesign{
		Title:       d.Title,
		Theme:       d.Theme,
		Mechanics:   d.Mechanics,
		Description: d.Description,
	}, "", "  ")
	if err != nil {
		return model.Design{}, err
	}
	prompt := fmt.Sprintf(promptOr(e.Prompts.Translate, DefaultTranslatePrompt), src)

	result, err := Generate[model.ExtractedDesign](ctx, e, prompt, "translated_design")
	if err != nil {
		return model.Design{}, fmt.Errorf("%w: translate: %v", model.ErrExtraction, err)
	}

	out := d
	out.Title = orDefault(result.Title, d.Title)
	out.Theme = orDefault(result.Theme, d.Theme)
	out.Description = orDefault(result.Description, d.Description)
	if len(result.Mechanics) > 0 {
		out.Mechanics = result.Mechanics
	}
	return out, nil
}

// Process extracts a design from the plan and translates it when enabled.
func (e *Extractor) Process(ctx context.Context, planID int64, text string) (model.Design, error) {
	d, err := e.Extract(ctx, planID, text)
	if err != nil {
		return model.Design{}, err
	}
	if !e.Translation {
		return d, nil
	}
	return e.Translate(ctx, d)
}

// ExtractElements never fails: on LLM errors it returns elements built from
// the raw plan with Degraded set.
func (e *Extractor) ExtractElements(ctx context.Context, title, plan string) model.GameElements {
	prompt := fmt.Sprintf(promptOr(e.Prompts.Elements, DefaultElementsPrompt), title, plan)

	result, err := Generate[model.GameElements](ctx, e, prompt, "game_elements")
	if err != nil {
		log.Printf("Warning: plan analysis failed for %q, using raw text: %v", title, err)
		return degradedElements(title, plan)
	}

	result.Title = orDefault(result.Title, title)
	result.TargetPlayers = orDefault(result.TargetPlayers, "2-4")
	result.EstimatedComplexity = orDefault(result.EstimatedComplexity, "3")
	if strings.TrimSpace(result.SearchQuery) == "" {
		result.SearchQuery = strings.Join(nonEmpty(result.Title, result.Description, result.ThemeKeywords, result.MechanicKeywords), " ")
	}
	return result
}

func degradedElements(title, plan string) model.GameElements {
	r := []rune(plan)
	head := plan
	desc := plan
	if len(r) > degradedPlanChars {
		head = string(r[:degradedPlanChars])
		desc = head + "..."
	}
	return model.GameElements{
		Title:               title,
		SearchQuery:         strings.TrimSpace(title + " " + head),
		Description:         desc,
		TargetPlayers:       "2-4",
		EstimatedComplexity: "3",
		Degraded:            true,
	}
}

// SearchVariations returns up to three distinct queries: the main query,
// theme+mechanics, mechanics+"game board", then the description.
func SearchVariations(el model.GameElements) []string {
	candidates := []string{el.SearchQuery}
	if el.ThemeKeywords != "" {
		candidates = append(candidates, el.ThemeKeywords+" "+el.MechanicKeywords)
	}
	if el.MechanicKeywords != "" {
		candidates = append(candidates, el.MechanicKeywords+" game board")
	}
	if el.Description != "" {
		candidates = append(candidates, el.Description)
	}

	var out []string
	seen := make(map[string]bool)
	for _, q := range candidates {
		q = strings.TrimSpace(q)
		if q == "" || seen[q] {
			continue
		}
		seen[q] = true
		out = append(out, q)
		if len(out) == maxVariations {
			break
		}
	}
	return out
}

// Generate asks the LLM for a T, through a JSON schema when possible.
func Generate[T any](ctx context.Context, e *Extractor, prompt, schemaName string) (T, error) {
	var zero T
	if e.LLM == nil {
		return zero, fmt.Errorf("no llm client configured")
	}
	if e.Limiter != nil {
		if err := e.Limiter.Wait(ctx); err != nil {
			return zero, err
		}
	}

	var (
		response string
		err      error
	)
	if sc, ok := e.LLM.(llm.StructuredClient); ok && e.Structured {
		schema, schemaErr := llm.SchemaFor[T]()
		if schemaErr != nil {
			return zero, fmt.Errorf("build schema: %w", schemaErr)
		}
		response, err = sc.GenerateJSON(ctx, prompt, schemaName, schema)
	} else {
		response, err = e.LLM.Generate(ctx, prompt)
	}
	if err != nil {
		return zero, fmt.Errorf("failed to generate %s: %w", schemaName, err)
	}

	return common.ParseJSON[T](response)
}

func promptOr(p, def string) string {
	if p == "" {
		return def
	}
	return p
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}

func nonEmpty(vals ...string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
