package llm

import "context"

// Purpose labels what a generation request is for, so request logs can
// be grouped by game feature rather than by raw prompt text.
type Purpose string

const (
	PurposeQuestion Purpose = "question"
	PurposeUnknown  Purpose = "unknown"
)

type purposeKeyType struct{}

var purposeKey purposeKeyType

// WithPurpose tags the context with the purpose of the upcoming request.
func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey, p)
}

// PurposeFrom reads the purpose tag, or PurposeUnknown when untagged.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey).(Purpose); ok {
		return p
	}
	return PurposeUnknown
}
