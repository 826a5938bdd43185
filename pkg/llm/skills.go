package llm

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"skillscan/internal/types"
)

// skillPrompt instructs the model to answer with a flat comma list and nothing
// else; parsing below depends on that shape.
const skillPrompt = `Analyze the following resume text and extract all technical skills, programming languages, frameworks, tools, technologies, and certifications that are commonly used in job searches. Focus on popular and widely-recognized skills. Return only the skills as a comma-separated list without any additional text or explanations.

Resume text:
%s`

const (
	maxSkills      = 20
	maxSkillLength = 50
)

// SkillConfig represents the configuration for a skill extractor.
type SkillConfig struct {
	APIKey      string
	Model       string
	Temperature float64
	TopK        int
	TopP        float64
	MaxTokens   int
}

// SkillExtractor asks a generative model for the technical skills mentioned in
// resume text. Generation settings are pinned near-deterministic so the output
// stays a parseable comma list.
type SkillExtractor struct {
	config SkillConfig
	llm    llms.Model
}

// NewWithConfig creates a SkillExtractor backed by the Gemini API.
func NewWithConfig(ctx context.Context, config SkillConfig) (*SkillExtractor, error) {
	applyConfigDefaults(&config)

	if config.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	model, err := googleai.New(ctx,
		googleai.WithAPIKey(config.APIKey),
		googleai.WithDefaultModel(config.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	return &SkillExtractor{config: config, llm: model}, nil
}

// NewWithModel creates a SkillExtractor over an existing model. Used by tests
// to inject a fake.
func NewWithModel(model llms.Model, config SkillConfig) *SkillExtractor {
	applyConfigDefaults(&config)
	return &SkillExtractor{config: config, llm: model}
}

func applyConfigDefaults(config *SkillConfig) {
	if config.Model == "" {
		config.Model = "gemini-2.5-flash"
	}
	if config.Temperature == 0 {
		config.Temperature = 0.1
	}
	if config.TopK == 0 {
		config.TopK = 1
	}
	if config.TopP == 0 {
		config.TopP = 1
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 2048
	}
}

// ExtractSkills returns the skills mentioned in resumeText, in model output
// order, capped at 20 entries. An empty list is not an error; the caller
// decides whether that aborts the run.
func (s *SkillExtractor) ExtractSkills(ctx context.Context, resumeText string) ([]string, error) {
	prompt := fmt.Sprintf(skillPrompt, resumeText)

	response, err := llms.GenerateFromSinglePrompt(ctx, s.llm, prompt,
		llms.WithTemperature(s.config.Temperature),
		llms.WithTopK(s.config.TopK),
		llms.WithTopP(s.config.TopP),
		llms.WithMaxTokens(s.config.MaxTokens),
	)
	if err != nil {
		return nil, types.NewError(types.KindUpstream,
			fmt.Sprintf("Gemini API error: %v", err), err)
	}

	if strings.TrimSpace(response) == "" {
		return nil, types.NewError(types.KindUpstream,
			"Invalid response from Gemini - no text generated", nil)
	}

	return parseSkills(response), nil
}

// parseSkills splits a comma list into skill strings: trimmed, empty and
// overlong entries dropped, order preserved, no dedup, at most maxSkills.
func parseSkills(text string) []string {
	parts := strings.Split(text, ",")

	skills := make([]string, 0, len(parts))
	for _, part := range parts {
		skill := strings.TrimSpace(part)
		if skill == "" || utf8.RuneCountInString(skill) >= maxSkillLength {
			continue
		}
		skills = append(skills, skill)
		if len(skills) == maxSkills {
			break
		}
	}

	return skills
}
