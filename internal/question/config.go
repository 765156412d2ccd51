package question

// Config controls the behavior of the LLMSupplier.
type Config struct {
	// MaxTokens is the token budget for the LLM response.
	MaxTokens int

	// Temperature controls LLM output randomness (0.0-1.0).
	Temperature float64

	// MaxAttempts is how many fresh generation requests are made when
	// the model returns malformed or duplicate output.
	MaxAttempts int

	// MaxExclude is the maximum number of recent questions included in
	// the prompt for deduplication.
	MaxExclude int
}

// DefaultConfig returns the recommended supplier configuration.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.7,
		MaxAttempts: 3,
		MaxExclude:  10,
	}
}
