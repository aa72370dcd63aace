// Package ai provides the Gemini-backed compatibility analysis used to
// enrich algorithmic scores with an AI assessment.
package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/SCGamer30/jam-match-sub001/internal/models"

	"google.golang.org/genai"
)

const defaultModel = "gemini-2.5-flash"

const promptTemplate = `You are a music compatibility expert helping musicians form bands.
Assess how well the two musicians below would work together based on their
genres, instruments, experience levels, and locations.

Musician 1:
{{USER1_JSON}}

Musician 2:
{{USER2_JSON}}

Respond with a single JSON object and nothing else:
{"score": <integer 0-100>, "reasoning": "<two or three sentences>"}`

// Assessment is the parsed result of a Gemini compatibility analysis.
type Assessment struct {
	Score     int
	Reasoning string
	Raw       string
}

// ContentGenerator produces a text completion for a prompt. It is satisfied
// by Generator and by test stubs.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator wraps the Google GenAI client to provide simple prompt-based interactions.
type Generator struct {
	client    *genai.Client
	modelName string
}

// NewGenerator creates a new Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{client: client, modelName: model}, nil
}

// GenerateContent sends the prompt to Gemini and returns the first textual response.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.client == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", errors.New("gemini api returned empty response")
	}

	return output, nil
}

// Model returns the configured model name.
func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// Analyzer runs pairwise compatibility assessments through a ContentGenerator.
type Analyzer struct {
	generator ContentGenerator
}

// NewAnalyzer returns an Analyzer backed by the given generator.
func NewAnalyzer(generator ContentGenerator) *Analyzer {
	return &Analyzer{generator: generator}
}

// Analyze asks the model to assess the pair and parses its JSON answer.
func (a *Analyzer) Analyze(ctx context.Context, u1, u2 *models.User) (*Assessment, error) {
	if a == nil || a.generator == nil {
		return nil, errors.New("ai analyzer is not configured")
	}
	if u1 == nil || u2 == nil {
		return nil, errors.New("both user profiles are required")
	}

	prompt, err := buildPrompt(u1, u2)
	if err != nil {
		return nil, err
	}

	raw, err := a.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	assessment, err := ParseAssessment(raw)
	if err != nil {
		return nil, err
	}
	return assessment, nil
}

func buildPrompt(u1, u2 *models.User) (string, error) {
	p1, err := json.MarshalIndent(profilePayload(u1), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal first profile: %w", err)
	}
	p2, err := json.MarshalIndent(profilePayload(u2), "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal second profile: %w", err)
	}

	prompt := strings.ReplaceAll(promptTemplate, "{{USER1_JSON}}", string(p1))
	prompt = strings.ReplaceAll(prompt, "{{USER2_JSON}}", string(p2))
	return prompt, nil
}

func profilePayload(u *models.User) map[string]any {
	return map[string]any{
		"name":        u.Name,
		"role":        u.PrimaryRole,
		"instruments": u.Instruments,
		"genres":      u.Genres,
		"experience":  u.Experience,
		"location":    u.Location,
		"bio":         u.Bio,
	}
}

// ParseAssessment extracts the score and reasoning from a model response,
// tolerating fenced code blocks and loosely typed fields.
func ParseAssessment(raw string) (*Assessment, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	score := coerceFloat(data["score"])
	if math.IsNaN(score) {
		return nil, errors.New("gemini response is missing a numeric score")
	}

	clamped := int(math.Round(score))
	if clamped < 0 {
		clamped = 0
	}
	if clamped > 100 {
		clamped = 100
	}

	return &Assessment{
		Score:     clamped,
		Reasoning: coerceString(data["reasoning"]),
		Raw:       raw,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	default:
		if v == nil {
			return ""
		}
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(b)
	}
}
