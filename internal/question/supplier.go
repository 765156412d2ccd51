package question

import "context"

// Supplier produces trivia questions for a category at a difficulty
// level. The pre-fetch buffer consumes this interface; the production
// implementation is LLMSupplier.
type Supplier interface {
	// Fetch produces a single question. excludeRecent carries the text
	// of recently served questions so the supplier avoids repeats.
	// Errors follow the llm package taxonomy: rate limit and network
	// failures are transient, malformed output is retried with fresh
	// requests up to a capped attempt count.
	Fetch(ctx context.Context, category Category, difficulty int, excludeRecent []string) (*Question, error)
}
