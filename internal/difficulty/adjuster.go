// Package difficulty tracks a per-category difficulty level that adapts
// to the player's recent performance.
package difficulty

import (
	"github.com/abhisek/trivium/internal/question"
)

// Config controls the adjustment rules.
type Config struct {
	// MaxLevel is the highest reachable difficulty level. Levels run
	// from 1 to MaxLevel inclusive.
	MaxLevel int

	// StepUpStreak is the number of consecutive correct answers in a
	// category required to raise its level by one.
	StepUpStreak int

	// WindowSize bounds the rolling per-category result window used
	// for accuracy reporting.
	WindowSize int
}

// DefaultConfig returns the standard adjustment parameters.
func DefaultConfig() Config {
	return Config{
		MaxLevel:     5,
		StepUpStreak: 3,
		WindowSize:   10,
	}
}

type categoryState struct {
	level  int
	streak int    // consecutive correct answers at the current level
	window []bool // recent results, newest last
}

// Adjuster maintains an independent difficulty level per category.
// It is not safe for concurrent use; the session serializes access.
type Adjuster struct {
	cfg    Config
	states map[question.Category]*categoryState
}

// New creates an Adjuster with every category at level 1.
func New(cfg Config) *Adjuster {
	def := DefaultConfig()
	if cfg.MaxLevel <= 0 {
		cfg.MaxLevel = def.MaxLevel
	}
	if cfg.StepUpStreak <= 0 {
		cfg.StepUpStreak = def.StepUpStreak
	}
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = def.WindowSize
	}
	return &Adjuster{
		cfg:    cfg,
		states: make(map[question.Category]*categoryState),
	}
}

// Level returns the current difficulty level for a category.
func (a *Adjuster) Level(cat question.Category) int {
	return a.state(cat).level
}

// MaxLevel returns the highest reachable level.
func (a *Adjuster) MaxLevel() int {
	return a.cfg.MaxLevel
}

// Record registers an answer result for a category and returns the
// category's level after adjustment. Three consecutive correct answers
// raise the level by one and restart the count; a wrong answer lowers
// the level by one and resets the count. Levels stay within
// [1, MaxLevel].
func (a *Adjuster) Record(cat question.Category, correct bool) int {
	st := a.state(cat)

	st.window = append(st.window, correct)
	if len(st.window) > a.cfg.WindowSize {
		st.window = st.window[1:]
	}

	if correct {
		st.streak++
		if st.streak >= a.cfg.StepUpStreak {
			st.streak = 0
			if st.level < a.cfg.MaxLevel {
				st.level++
			}
		}
	} else {
		st.streak = 0
		if st.level > 1 {
			st.level--
		}
	}
	return st.level
}

// Accuracy returns the fraction of correct answers in the category's
// rolling window, or 0 when nothing has been recorded.
func (a *Adjuster) Accuracy(cat question.Category) float64 {
	st := a.state(cat)
	if len(st.window) == 0 {
		return 0
	}
	correct := 0
	for _, ok := range st.window {
		if ok {
			correct++
		}
	}
	return float64(correct) / float64(len(st.window))
}

// Levels returns a snapshot of every touched category's level, keyed by
// category name. Used for persistence.
func (a *Adjuster) Levels() map[string]int {
	out := make(map[string]int, len(a.states))
	for cat, st := range a.states {
		out[string(cat)] = st.level
	}
	return out
}

// Restore seeds category levels from a persisted snapshot. Unknown
// categories are ignored; out-of-range levels are clamped.
func (a *Adjuster) Restore(levels map[string]int) {
	for name, level := range levels {
		cat := question.Category(name)
		if !cat.Valid() {
			continue
		}
		if level < 1 {
			level = 1
		}
		if level > a.cfg.MaxLevel {
			level = a.cfg.MaxLevel
		}
		a.state(cat).level = level
	}
}

func (a *Adjuster) state(cat question.Category) *categoryState {
	st, ok := a.states[cat]
	if !ok {
		st = &categoryState{level: 1}
		a.states[cat] = st
	}
	return st
}
