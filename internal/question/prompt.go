package question

import (
	"fmt"
	"strings"
)

const systemPrompt = `You are a precise trivia question generator.

Rules:
- Generate a single trivia question for the given topic and difficulty.
- The question must have exactly one correct answer and exactly 3 plausible but incorrect answers.
- Distractors should be believable for someone who half-knows the topic, not random values.
- Include a brief, interesting explanation of the correct answer.
- Do not repeat any question from the "recently asked" list.
- Keep questions factual and verifiable. No trick questions, no opinions.`

// difficultyLabel maps a numeric level onto the descriptor the prompt
// uses. The scale tops out at advanced regardless of the configured max.
func difficultyLabel(level, max int) string {
	if max <= 0 {
		max = 5
	}
	switch {
	case level*10 <= max*4: // bottom two fifths
		return "basic"
	case level < max:
		return "intermediate"
	default:
		return "advanced"
	}
}

// buildUserMessage constructs the generation prompt.
func buildUserMessage(category Category, difficulty, maxDifficulty int, exclude []string, maxExclude int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Topic: %s\n", category)
	fmt.Fprintf(&b, "Difficulty: %s (level %d of %d)\n", difficultyLabel(difficulty, maxDifficulty), difficulty, maxDifficulty)

	b.WriteString("\nRecently asked (do not repeat):\n")
	b.WriteString(formatExclude(exclude, maxExclude))

	return b.String()
}

// formatExclude renders the dedup list, keeping only the most recent
// entries. Returns "None" when empty.
func formatExclude(exclude []string, max int) string {
	if len(exclude) == 0 {
		return "None"
	}

	if max > 0 && len(exclude) > max {
		exclude = exclude[len(exclude)-max:]
	}

	var b strings.Builder
	for i, q := range exclude {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
