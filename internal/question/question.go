package question

// Category is a trivia topic. The set is fixed; difficulty and the
// pre-fetch buffer key on it.
type Category string

const (
	Science       Category = "Science"
	History       Category = "History"
	Geography     Category = "Geography"
	Entertainment Category = "Entertainment"
	Sports        Category = "Sports"
	Technology    Category = "Technology"
	Arts          Category = "Arts"
	Literature    Category = "Literature"
)

// AllCategories returns the fixed category set in display order.
func AllCategories() []Category {
	return []Category{
		Science, History, Geography, Entertainment,
		Sports, Technology, Arts, Literature,
	}
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range AllCategories() {
		if c == k {
			return true
		}
	}
	return false
}

// OptionCount is the number of answer options every question carries.
const OptionCount = 4

// Question is a generated trivia question ready for play.
// Immutable once created.
type Question struct {
	// ID uniquely identifies the question (UUID).
	ID string

	// Category is the topic the question was generated for.
	Category Category

	// Difficulty is the level the question was requested at (1..max).
	Difficulty int

	// Text is the question prompt displayed to the player.
	Text string

	// Options holds exactly OptionCount answer options, shuffled.
	Options []string

	// CorrectIndex is the position of the correct answer in Options.
	CorrectIndex int

	// Explanation is a brief interesting note shown after answering.
	Explanation string

	// TokenCost is the total LLM token usage spent generating this
	// question.
	TokenCost int
}

// Answer returns the correct answer text.
func (q *Question) Answer() string {
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ""
	}
	return q.Options[q.CorrectIndex]
}

// Check reports whether the zero-based option index is the correct answer.
func (q *Question) Check(optionIndex int) bool {
	return optionIndex == q.CorrectIndex
}
