// Package achievements evaluates a data-driven rule table against the
// player's session state and unlocks each achievement at most once.
package achievements

// Snapshot is the slice of session state the rules look at.
type Snapshot struct {
	Score              int
	Streak             int
	Level              int
	CorrectAnswers     int
	FastCorrectAnswers int
	CategoriesPlayed   int
	TotalCategories    int
}

// Rule pairs an achievement with the predicate that unlocks it. Adding
// an achievement means adding a row here, nothing else.
type Rule struct {
	ID          string
	Title       string
	Description string
	Unlocked    func(Snapshot) bool
}

// DefaultRules returns the standard achievement table.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "first_correct",
			Title:       "First Steps",
			Description: "Answer your first question correctly",
			Unlocked:    func(s Snapshot) bool { return s.CorrectAnswers >= 1 },
		},
		{
			ID:          "streak_5",
			Title:       "On Fire",
			Description: "Answer 5 questions correctly in a row",
			Unlocked:    func(s Snapshot) bool { return s.Streak >= 5 },
		},
		{
			ID:          "streak_10",
			Title:       "Unstoppable",
			Description: "Answer 10 questions correctly in a row",
			Unlocked:    func(s Snapshot) bool { return s.Streak >= 10 },
		},
		{
			ID:          "points_100",
			Title:       "Century",
			Description: "Reach 100 points",
			Unlocked:    func(s Snapshot) bool { return s.Score >= 100 },
		},
		{
			ID:          "points_500",
			Title:       "High Roller",
			Description: "Reach 500 points",
			Unlocked:    func(s Snapshot) bool { return s.Score >= 500 },
		},
		{
			ID:          "points_1000",
			Title:       "Trivia Titan",
			Description: "Reach 1000 points",
			Unlocked:    func(s Snapshot) bool { return s.Score >= 1000 },
		},
		{
			ID:          "level_5",
			Title:       "Climber",
			Description: "Reach level 5",
			Unlocked:    func(s Snapshot) bool { return s.Level >= 5 },
		},
		{
			ID:          "level_10",
			Title:       "Summit",
			Description: "Reach level 10",
			Unlocked:    func(s Snapshot) bool { return s.Level >= 10 },
		},
		{
			ID:          "all_categories",
			Title:       "Renaissance Mind",
			Description: "Answer questions in every category",
			Unlocked: func(s Snapshot) bool {
				return s.TotalCategories > 0 && s.CategoriesPlayed >= s.TotalCategories
			},
		},
		{
			ID:          "speed_demon",
			Title:       "Speed Demon",
			Description: "Answer 5 questions correctly with most of the timer left",
			Unlocked:    func(s Snapshot) bool { return s.FastCorrectAnswers >= 5 },
		},
	}
}

// Tracker holds the rule table and the set of already-unlocked IDs.
type Tracker struct {
	rules    []Rule
	unlocked map[string]bool
}

// NewTracker creates a Tracker over the given rules, or the default
// table when rules is nil.
func NewTracker(rules []Rule) *Tracker {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Tracker{
		rules:    rules,
		unlocked: make(map[string]bool),
	}
}

// Restore marks the given achievement IDs as already unlocked, so a
// resumed session does not re-announce them. Unknown IDs are kept; a
// newer build may have renamed a rule but the unlock still counts.
func (t *Tracker) Restore(ids []string) {
	for _, id := range ids {
		t.unlocked[id] = true
	}
}

// Evaluate checks every rule against the snapshot and returns the rules
// that newly unlocked, in table order. Re-evaluating an unlocked
// achievement is a no-op.
func (t *Tracker) Evaluate(s Snapshot) []Rule {
	var fresh []Rule
	for _, r := range t.rules {
		if t.unlocked[r.ID] {
			continue
		}
		if r.Unlocked(s) {
			t.unlocked[r.ID] = true
			fresh = append(fresh, r)
		}
	}
	return fresh
}

// IsUnlocked reports whether an achievement has been unlocked.
func (t *Tracker) IsUnlocked(id string) bool {
	return t.unlocked[id]
}

// Unlocked returns the unlocked achievement IDs in table order, with
// any restored IDs not present in the table appended at the end.
func (t *Tracker) Unlocked() []string {
	var out []string
	seen := make(map[string]bool)
	for _, r := range t.rules {
		if t.unlocked[r.ID] {
			out = append(out, r.ID)
			seen[r.ID] = true
		}
	}
	for id := range t.unlocked {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

// Rules returns the rule table, for display.
func (t *Tracker) Rules() []Rule {
	return t.rules
}
