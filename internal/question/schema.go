package question

import "github.com/abhisek/trivium/internal/llm"

// Schema defines the JSON schema for LLM question generation responses.
var Schema = &llm.Schema{
	Name:        "trivia-question",
	Description: "A single trivia question with one correct answer, three distractors, and an explanation",
	Definition: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"question_text": map[string]any{
				"type":        "string",
				"description": "The question shown to the player. Clear and self-contained.",
			},
			"correct_answer": map[string]any{
				"type":        "string",
				"description": "The single correct answer",
			},
			"wrong_answers": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "string",
				},
				"description": "Exactly 3 plausible but incorrect answers",
			},
			"explanation": map[string]any{
				"type":        "string",
				"description": "A brief, interesting explanation of the correct answer",
			},
		},
		"required":             []any{"question_text", "correct_answer", "wrong_answers", "explanation"},
		"additionalProperties": false,
	},
}
