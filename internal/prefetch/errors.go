package prefetch

import (
	"errors"
	"fmt"

	"github.com/abhisek/trivium/internal/question"
)

// ErrClosed is returned by operations on a closed buffer.
var ErrClosed = errors.New("prefetch buffer closed")

// ErrSupplyUnavailable indicates that no cached question existed for a
// key and the live fetch also failed. The game falls back to whatever
// offline pool it has.
type ErrSupplyUnavailable struct {
	Category   question.Category
	Difficulty int
	Err        error
}

func (e *ErrSupplyUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no question available for %s (level %d): %v", e.Category, e.Difficulty, e.Err)
	}
	return fmt.Sprintf("no question available for %s (level %d)", e.Category, e.Difficulty)
}

func (e *ErrSupplyUnavailable) Unwrap() error {
	return e.Err
}
