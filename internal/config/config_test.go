package config

import (
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("TRIVIUM_TIMER_DURATION", "45s")
	t.Setenv("TRIVIUM_HINT_COST", "25")
	t.Setenv("TRIVIUM_PREFETCH_CAPACITY", "20")
	t.Setenv("TRIVIUM_PREFETCH_LOW_WATER", "5")
	t.Setenv("TRIVIUM_MODEL", "gpt-4o")
	t.Setenv("TRIVIUM_STREAK_BONUS_STEP", "0.2")
	t.Setenv("TRIVIUM_STREAK_MULTIPLIER_CAP", "3")
	t.Setenv("TRIVIUM_REFUND_HINT_ON_WRONG", "true")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatalf("FromEnv: %v", err)
	}
	if cfg.TimerDuration != 45*time.Second {
		t.Errorf("TimerDuration = %v, want 45s", cfg.TimerDuration)
	}
	if cfg.HintCost != 25 {
		t.Errorf("HintCost = %d, want 25", cfg.HintCost)
	}
	if cfg.PrefetchCapacity != 20 {
		t.Errorf("PrefetchCapacity = %d, want 20", cfg.PrefetchCapacity)
	}
	if cfg.PrefetchLowWater != 5 {
		t.Errorf("PrefetchLowWater = %d, want 5", cfg.PrefetchLowWater)
	}
	if cfg.ModelName != "gpt-4o" {
		t.Errorf("ModelName = %q, want gpt-4o", cfg.ModelName)
	}
	if cfg.StreakBonusStep != 0.2 {
		t.Errorf("StreakBonusStep = %v, want 0.2", cfg.StreakBonusStep)
	}
	if cfg.StreakMultiplierCap != 3 {
		t.Errorf("StreakMultiplierCap = %v, want 3", cfg.StreakMultiplierCap)
	}
	if !cfg.RefundHintOnWrong {
		t.Error("RefundHintOnWrong not applied")
	}
	// Untouched fields keep defaults.
	if cfg.MaxDifficulty != 5 {
		t.Errorf("MaxDifficulty = %d, want default 5", cfg.MaxDifficulty)
	}
}

func TestFromEnvRejectsMalformedValue(t *testing.T) {
	t.Setenv("TRIVIUM_HINT_COST", "lots")
	if _, err := FromEnv(); err == nil {
		t.Fatal("FromEnv accepted a non-numeric hint cost")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero timer", func(c *Config) { c.TimerDuration = 0 }},
		{"zero capacity", func(c *Config) { c.PrefetchCapacity = 0 }},
		{"low water above capacity", func(c *Config) { c.PrefetchLowWater = c.PrefetchCapacity + 1 }},
		{"zero concurrency", func(c *Config) { c.MaxConcurrentFetches = 0 }},
		{"zero max difficulty", func(c *Config) { c.MaxDifficulty = 0 }},
		{"negative hint cost", func(c *Config) { c.HintCost = -1 }},
		{"negative streak step", func(c *Config) { c.StreakBonusStep = -0.1 }},
		{"multiplier cap below 1", func(c *Config) { c.StreakMultiplierCap = 0.5 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted an invalid config")
			}
		})
	}
}
