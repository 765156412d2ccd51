// Package config holds the gameplay configuration shared across the
// game, scoring, and prefetch layers.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds gameplay tuning options. Everything has a working
// default; env vars with the TRIVIUM_ prefix override individual
// fields.
type Config struct {
	// TimerDuration is the time allowed per question.
	TimerDuration time.Duration

	// HintCost is the points deducted when a hint is requested.
	HintCost int

	// PointsPerSecondBonus scores each second left on the timer.
	PointsPerSecondBonus int

	// StreakBonusStep is the score multiplier gained per streak step.
	StreakBonusStep float64

	// StreakMultiplierCap bounds the streak multiplier.
	StreakMultiplierCap float64

	// RefundHintOnWrong refunds the hint cost when a hinted answer is
	// wrong anyway.
	RefundHintOnWrong bool

	// PrefetchCapacity is the buffer size per (category, difficulty)
	// key.
	PrefetchCapacity int

	// PrefetchLowWater is the refill trigger threshold.
	PrefetchLowWater int

	// MaxConcurrentFetches bounds simultaneous background supplier
	// calls.
	MaxConcurrentFetches int

	// RequestTimeout bounds each supplier call.
	RequestTimeout time.Duration

	// ModelName selects the LLM model; empty means the provider
	// default.
	ModelName string

	// MaxDifficulty is the highest question difficulty level.
	MaxDifficulty int

	// StepUpStreak is the consecutive correct answers needed to raise
	// a category's difficulty.
	StepUpStreak int

	// LevelUpPoints scales the score needed per level: level n
	// requires n * LevelUpPoints additional points.
	LevelUpPoints int

	// FastAnswerFraction is the share of the timer that must remain
	// for a correct answer to count as fast.
	FastAnswerFraction float64
}

// Default returns the standard gameplay configuration.
func Default() Config {
	return Config{
		TimerDuration:        30 * time.Second,
		HintCost:             50,
		PointsPerSecondBonus: 2,
		StreakBonusStep:      0.1,
		StreakMultiplierCap:  2.0,
		PrefetchCapacity:     10,
		PrefetchLowWater:     3,
		MaxConcurrentFetches: 3,
		RequestTimeout:       10 * time.Second,
		MaxDifficulty:        5,
		StepUpStreak:         3,
		LevelUpPoints:        500,
		FastAnswerFraction:   0.5,
	}
}

// FromEnv builds a Config from TRIVIUM_* environment variables on top
// of the defaults. Malformed values are reported rather than silently
// ignored.
func FromEnv() (Config, error) {
	cfg := Default()

	var err error
	set := func(name string, apply func(string) error) {
		if err != nil {
			return
		}
		v := os.Getenv(name)
		if v == "" {
			return
		}
		if applyErr := apply(v); applyErr != nil {
			err = fmt.Errorf("%s: %w", name, applyErr)
		}
	}

	set("TRIVIUM_TIMER_DURATION", func(v string) error {
		d, parseErr := time.ParseDuration(v)
		if parseErr != nil {
			return parseErr
		}
		cfg.TimerDuration = d
		return nil
	})
	set("TRIVIUM_HINT_COST", intSetter(&cfg.HintCost))
	set("TRIVIUM_POINTS_PER_SECOND", intSetter(&cfg.PointsPerSecondBonus))
	set("TRIVIUM_STREAK_BONUS_STEP", floatSetter(&cfg.StreakBonusStep))
	set("TRIVIUM_STREAK_MULTIPLIER_CAP", floatSetter(&cfg.StreakMultiplierCap))
	set("TRIVIUM_REFUND_HINT_ON_WRONG", func(v string) error {
		b, parseErr := strconv.ParseBool(v)
		if parseErr != nil {
			return parseErr
		}
		cfg.RefundHintOnWrong = b
		return nil
	})
	set("TRIVIUM_PREFETCH_CAPACITY", intSetter(&cfg.PrefetchCapacity))
	set("TRIVIUM_PREFETCH_LOW_WATER", intSetter(&cfg.PrefetchLowWater))
	set("TRIVIUM_MAX_CONCURRENT_FETCHES", intSetter(&cfg.MaxConcurrentFetches))
	set("TRIVIUM_REQUEST_TIMEOUT", func(v string) error {
		d, parseErr := time.ParseDuration(v)
		if parseErr != nil {
			return parseErr
		}
		cfg.RequestTimeout = d
		return nil
	})
	set("TRIVIUM_MODEL", func(v string) error {
		cfg.ModelName = v
		return nil
	})
	set("TRIVIUM_MAX_DIFFICULTY", intSetter(&cfg.MaxDifficulty))
	set("TRIVIUM_STEP_UP_STREAK", intSetter(&cfg.StepUpStreak))
	set("TRIVIUM_LEVEL_UP_POINTS", intSetter(&cfg.LevelUpPoints))

	if err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// Validate checks cross-field consistency.
func (c Config) Validate() error {
	if c.TimerDuration <= 0 {
		return fmt.Errorf("timer duration must be positive, got %v", c.TimerDuration)
	}
	if c.PrefetchCapacity < 1 {
		return fmt.Errorf("prefetch capacity must be at least 1, got %d", c.PrefetchCapacity)
	}
	if c.PrefetchLowWater < 1 || c.PrefetchLowWater > c.PrefetchCapacity {
		return fmt.Errorf("prefetch low water must be in [1, %d], got %d", c.PrefetchCapacity, c.PrefetchLowWater)
	}
	if c.MaxConcurrentFetches < 1 {
		return fmt.Errorf("max concurrent fetches must be at least 1, got %d", c.MaxConcurrentFetches)
	}
	if c.MaxDifficulty < 1 {
		return fmt.Errorf("max difficulty must be at least 1, got %d", c.MaxDifficulty)
	}
	if c.StepUpStreak < 1 {
		return fmt.Errorf("step-up streak must be at least 1, got %d", c.StepUpStreak)
	}
	if c.HintCost < 0 {
		return fmt.Errorf("hint cost must not be negative, got %d", c.HintCost)
	}
	if c.PointsPerSecondBonus < 0 {
		return fmt.Errorf("points per second bonus must not be negative, got %d", c.PointsPerSecondBonus)
	}
	if c.StreakBonusStep < 0 {
		return fmt.Errorf("streak bonus step must not be negative, got %v", c.StreakBonusStep)
	}
	if c.StreakMultiplierCap < 1 {
		return fmt.Errorf("streak multiplier cap must be at least 1, got %v", c.StreakMultiplierCap)
	}
	return nil
}

func intSetter(dst *int) func(string) error {
	return func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		*dst = n
		return nil
	}
}

func floatSetter(dst *float64) func(string) error {
	return func(v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return err
		}
		*dst = f
		return nil
	}
}
