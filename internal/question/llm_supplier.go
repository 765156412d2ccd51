package question

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"

	"github.com/abhisek/trivium/internal/llm"
)

// LLMSupplier implements Supplier using an LLM provider.
type LLMSupplier struct {
	provider      llm.Provider
	cfg           Config
	maxDifficulty int
}

// NewLLMSupplier creates a supplier backed by the given provider.
// maxDifficulty bounds the level passed to the prompt's descriptor.
func NewLLMSupplier(provider llm.Provider, cfg Config, maxDifficulty int) *LLMSupplier {
	if maxDifficulty <= 0 {
		maxDifficulty = 5
	}
	return &LLMSupplier{provider: provider, cfg: cfg, maxDifficulty: maxDifficulty}
}

// supplierOutput is the raw LLM response before validation.
type supplierOutput struct {
	QuestionText  string   `json:"question_text"`
	CorrectAnswer string   `json:"correct_answer"`
	WrongAnswers  []string `json:"wrong_answers"`
	Explanation   string   `json:"explanation"`
}

// Fetch generates a question, retrying with fresh requests when the
// model produces malformed or duplicate output.
func (s *LLMSupplier) Fetch(ctx context.Context, category Category, difficulty int, excludeRecent []string) (*Question, error) {
	ctx = llm.WithPurpose(ctx, llm.PurposeQuestion)

	req := llm.Request{
		System: systemPrompt,
		Messages: []llm.Message{
			{Role: llm.RoleUser, Content: buildUserMessage(category, difficulty, s.maxDifficulty, excludeRecent, s.cfg.MaxExclude)},
		},
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	var lastErr error
	for attempt := 0; attempt < s.cfg.MaxAttempts; attempt++ {
		resp, err := s.provider.Generate(ctx, req)
		if err != nil {
			// Transport-level errors already went through the provider's
			// retry middleware. No point re-asking here.
			return nil, fmt.Errorf("question generation: %w", err)
		}

		q, err := s.buildQuestion(resp, category, difficulty, excludeRecent)
		if err != nil {
			lastErr = err
			continue
		}
		return q, nil
	}

	return nil, fmt.Errorf("question generation: no usable question after %d attempts: %w", s.cfg.MaxAttempts, lastErr)
}

// buildQuestion parses, validates, and assembles a Question from a raw
// LLM response.
func (s *LLMSupplier) buildQuestion(resp *llm.Response, category Category, difficulty int, exclude []string) (*Question, error) {
	var out supplierOutput
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	if err := checkOutput(&out); err != nil {
		return nil, err
	}

	for _, prior := range exclude {
		if strings.EqualFold(strings.TrimSpace(prior), strings.TrimSpace(out.QuestionText)) {
			return nil, fmt.Errorf("duplicate of recently asked question")
		}
	}

	options := make([]string, 0, OptionCount)
	options = append(options, strings.TrimSpace(out.CorrectAnswer))
	for _, w := range out.WrongAnswers {
		options = append(options, strings.TrimSpace(w))
	}
	rand.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	correctIndex := -1
	for i, o := range options {
		if o == strings.TrimSpace(out.CorrectAnswer) {
			correctIndex = i
			break
		}
	}
	if correctIndex < 0 {
		return nil, fmt.Errorf("correct answer lost during shuffle")
	}

	return &Question{
		ID:           uuid.New().String(),
		Category:     category,
		Difficulty:   difficulty,
		Text:         strings.TrimSpace(out.QuestionText),
		Options:      options,
		CorrectIndex: correctIndex,
		Explanation:  strings.TrimSpace(out.Explanation),
		TokenCost:    resp.Usage.TotalTokens,
	}, nil
}

// checkOutput validates the structural invariants the schema alone
// cannot express.
func checkOutput(out *supplierOutput) error {
	if strings.TrimSpace(out.QuestionText) == "" {
		return fmt.Errorf("empty question text")
	}
	if strings.TrimSpace(out.CorrectAnswer) == "" {
		return fmt.Errorf("empty correct answer")
	}
	if len(out.WrongAnswers) != OptionCount-1 {
		return fmt.Errorf("expected %d wrong answers, got %d", OptionCount-1, len(out.WrongAnswers))
	}
	if strings.TrimSpace(out.Explanation) == "" {
		return fmt.Errorf("empty explanation")
	}

	seen := map[string]bool{normalizeOption(out.CorrectAnswer): true}
	for _, w := range out.WrongAnswers {
		if strings.TrimSpace(w) == "" {
			return fmt.Errorf("empty wrong answer")
		}
		key := normalizeOption(w)
		if seen[key] {
			return fmt.Errorf("duplicate answer option %q", w)
		}
		seen[key] = true
	}
	return nil
}

func normalizeOption(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
