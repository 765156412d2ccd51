// Package scoring computes the points awarded for answered questions.
// All arithmetic is deterministic and error-free by construction: the
// session layer guarantees inputs are valid before calling in.
package scoring

import "math"

// Config controls the scoring formula.
type Config struct {
	// BasePoints maps difficulty level to base points: BasePoints[d-1]
	// is the base for level d. Levels beyond the table clamp to the
	// last entry.
	BasePoints []int

	// PointsPerSecondBonus is the bonus per second remaining on the
	// question timer.
	PointsPerSecondBonus int

	// StreakBonusStep is the multiplier increase per streak step.
	StreakBonusStep float64

	// StreakMultiplierCap bounds the streak multiplier.
	StreakMultiplierCap float64

	// HintCost is deducted once when a hint is requested, independent
	// of the eventual answer outcome.
	HintCost int

	// RefundHintOnWrong refunds the hint cost when the answer turns out
	// wrong anyway. Off by default; the original game never refunded.
	RefundHintOnWrong bool
}

// DefaultConfig returns the standard scoring parameters.
func DefaultConfig() Config {
	return Config{
		BasePoints:           []int{10, 25, 50, 75, 100},
		PointsPerSecondBonus: 2,
		StreakBonusStep:      0.1,
		StreakMultiplierCap:  2.0,
		HintCost:             50,
	}
}

// Engine scores answered questions.
type Engine struct {
	cfg Config
}

// NewEngine creates an Engine with the given config. A zero
// PointsPerSecondBonus, StreakBonusStep, or HintCost is honored as-is
// (no time bonus, no streak bonus, free hints); start from
// DefaultConfig when you want the standard values. Only an empty base
// table and a cap below 1 fall back to defaults, since neither has a
// meaningful zero.
func NewEngine(cfg Config) *Engine {
	def := DefaultConfig()
	if len(cfg.BasePoints) == 0 {
		cfg.BasePoints = def.BasePoints
	}
	if cfg.StreakMultiplierCap < 1 {
		cfg.StreakMultiplierCap = def.StreakMultiplierCap
	}
	return &Engine{cfg: cfg}
}

// Score computes the points for a correct answer at the given difficulty
// with remainingSeconds left on the timer and streakBefore consecutive
// correct answers prior to this one. The result is never negative.
func (e *Engine) Score(difficulty, remainingSeconds, streakBefore int) int {
	base := e.basePoints(difficulty)

	if remainingSeconds < 0 {
		remainingSeconds = 0
	}
	bonus := remainingSeconds * e.cfg.PointsPerSecondBonus

	points := int(math.Round(float64(base+bonus) * e.StreakMultiplier(streakBefore)))
	if points < 0 {
		points = 0
	}
	return points
}

// StreakMultiplier returns the multiplier applied for a streak of the
// given length: 1 + step*streak, capped.
func (e *Engine) StreakMultiplier(streakBefore int) float64 {
	if streakBefore < 0 {
		streakBefore = 0
	}
	m := 1 + e.cfg.StreakBonusStep*float64(streakBefore)
	if m > e.cfg.StreakMultiplierCap {
		m = e.cfg.StreakMultiplierCap
	}
	return m
}

// HintCost returns the points deducted per hint request.
func (e *Engine) HintCost() int {
	return e.cfg.HintCost
}

// RefundsHint reports whether a wrong answer refunds the hint cost.
func (e *Engine) RefundsHint() bool {
	return e.cfg.RefundHintOnWrong
}

func (e *Engine) basePoints(difficulty int) int {
	if difficulty < 1 {
		difficulty = 1
	}
	if difficulty > len(e.cfg.BasePoints) {
		difficulty = len(e.cfg.BasePoints)
	}
	return e.cfg.BasePoints[difficulty-1]
}
