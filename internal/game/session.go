// Package game ties the buffer, adjuster, scorer, and achievement
// tracker together into a single-owner session state machine. All
// mutation goes through Session methods; there are no package-level
// globals.
package game

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/abhisek/trivium/internal/achievements"
	"github.com/abhisek/trivium/internal/config"
	"github.com/abhisek/trivium/internal/difficulty"
	"github.com/abhisek/trivium/internal/prefetch"
	"github.com/abhisek/trivium/internal/question"
	"github.com/abhisek/trivium/internal/scoring"
	"github.com/abhisek/trivium/internal/store"
)

// ErrNoActiveQuestion is returned when an answer or hint arrives with
// no question outstanding.
var ErrNoActiveQuestion = errors.New("no active question")

// QuestionSource produces questions for a (category, difficulty) key.
// *prefetch.Buffer is the production implementation.
type QuestionSource interface {
	Request(ctx context.Context, cat question.Category, difficulty int) (*question.Question, error)
	NotifyConsumed(cat question.Category, difficulty int)
}

// Result is what SubmitAnswer returns, mirroring the AnswerScored
// event for callers that prefer return values over the sink.
type Result struct {
	Correct       bool
	Points        int
	Score         int
	Streak        int
	NewDifficulty int
	Level         int
	CorrectAnswer string
	Explanation   string
}

// Session owns one player's in-progress game. It is not safe for
// concurrent use; the front end drives it from a single goroutine.
type Session struct {
	cfg      config.Config
	source   QuestionSource
	scorer   *scoring.Engine
	adjuster *difficulty.Adjuster
	tracker  *achievements.Tracker
	repo     store.PlayerRepo // nil disables checkpoints
	sink     EventSink

	username    string
	score       int
	streak      int
	level       int
	stats       store.PlayerStats
	categories  map[question.Category]bool
	unlockTimes map[string]time.Time

	current     *question.Question
	hint        string
	hintCharged bool
}

// NewSession creates a session for username, resuming persisted
// progress when the repo has a record for them. repo and sink may be
// nil.
func NewSession(ctx context.Context, cfg config.Config, source QuestionSource, repo store.PlayerRepo, sink EventSink, username string) (*Session, error) {
	s := &Session{
		cfg:    cfg,
		source: source,
		scorer: scoring.NewEngine(scoring.Config{
			PointsPerSecondBonus: cfg.PointsPerSecondBonus,
			StreakBonusStep:      cfg.StreakBonusStep,
			StreakMultiplierCap:  cfg.StreakMultiplierCap,
			HintCost:             cfg.HintCost,
			RefundHintOnWrong:    cfg.RefundHintOnWrong,
		}),
		adjuster: difficulty.New(difficulty.Config{
			MaxLevel:     cfg.MaxDifficulty,
			StepUpStreak: cfg.StepUpStreak,
		}),
		tracker:     achievements.NewTracker(nil),
		repo:        repo,
		sink:        sink,
		username:    username,
		level:       1,
		categories:  make(map[question.Category]bool),
		unlockTimes: make(map[string]time.Time),
	}

	if repo != nil {
		rec, err := repo.Load(ctx, username)
		if errors.Is(err, store.ErrNotFound) {
			return s, nil
		}
		if err != nil {
			return nil, fmt.Errorf("resume session: %w", err)
		}
		s.restore(rec)
	}
	return s, nil
}

func (s *Session) restore(rec *store.PlayerRecord) {
	s.score = rec.Score
	s.streak = rec.Streak
	if rec.Level > 0 {
		s.level = rec.Level
	}
	s.stats = rec.Stats
	for _, name := range rec.Stats.CategoriesPlayed {
		cat := question.Category(name)
		if cat.Valid() {
			s.categories[cat] = true
		}
	}
	s.adjuster.Restore(rec.Difficulty)
	ids := make([]string, len(rec.Achievements))
	for i, a := range rec.Achievements {
		ids[i] = a.ID
		s.unlockTimes[a.ID] = a.UnlockedAt
	}
	s.tracker.Restore(ids)
}

// Score returns the current total score.
func (s *Session) Score() int { return s.score }

// Streak returns the current run of consecutive correct answers.
func (s *Session) Streak() int { return s.streak }

// Level returns the player's overall level.
func (s *Session) Level() int { return s.level }

// Stats returns a copy of the session counters.
func (s *Session) Stats() store.PlayerStats { return s.stats }

// DifficultyFor returns the current difficulty level for a category.
func (s *Session) DifficultyFor(cat question.Category) int {
	return s.adjuster.Level(cat)
}

// Current returns the outstanding question, or nil.
func (s *Session) Current() *question.Question { return s.current }

// NextQuestion fetches the next question for a category at the
// category's current difficulty and emits QuestionReady. When the
// supply fails outright it emits SupplyUnavailable and returns the
// error for the caller's fallback.
func (s *Session) NextQuestion(ctx context.Context, cat question.Category) (*question.Question, error) {
	level := s.adjuster.Level(cat)
	q, err := s.source.Request(ctx, cat, level)
	if err != nil {
		var unavailable *prefetch.ErrSupplyUnavailable
		if errors.As(err, &unavailable) {
			s.emit(SupplyUnavailable{Category: cat, Difficulty: level})
		}
		return nil, err
	}

	s.current = q
	s.hint = ""
	s.hintCharged = false
	s.emit(QuestionReady{Question: q, Timer: s.cfg.TimerDuration})
	return q, nil
}

// SubmitAnswer scores the outstanding question, updates streak, level,
// and per-category difficulty, evaluates achievements, and checkpoints
// progress. remaining is the time left on the question timer; zero or
// negative means the timer expired.
func (s *Session) SubmitAnswer(ctx context.Context, optionIndex int, remaining time.Duration) (*Result, error) {
	if s.current == nil {
		return nil, ErrNoActiveQuestion
	}
	q := s.current
	s.current = nil

	correct := q.Check(optionIndex)
	points := 0
	if correct {
		points = s.scorer.Score(q.Difficulty, int(remaining.Seconds()), s.streak)
		s.score += points
		s.streak++
		s.stats.CorrectAnswers++
		if remaining >= time.Duration(float64(s.cfg.TimerDuration)*s.cfg.FastAnswerFraction) {
			s.stats.FastCorrectAnswers++
		}
	} else {
		s.streak = 0
		s.stats.WrongAnswers++
		if s.scorer.RefundsHint() && s.hintCharged {
			s.score += s.scorer.HintCost()
		}
	}
	s.markCategoryPlayed(q.Category)
	newDifficulty := s.adjuster.Record(q.Category, correct)
	// Refills must chase the adjusted level: after a transition the old
	// key would only accumulate questions nobody will be asked.
	s.source.NotifyConsumed(q.Category, newDifficulty)

	for s.cfg.LevelUpPoints > 0 && s.score >= s.level*s.cfg.LevelUpPoints {
		s.level++
		s.emit(LevelUp{Level: s.level})
	}

	s.evaluateAchievements()
	s.checkpoint(ctx)

	res := &Result{
		Correct:       correct,
		Points:        points,
		Score:         s.score,
		Streak:        s.streak,
		NewDifficulty: newDifficulty,
		Level:         s.level,
		CorrectAnswer: q.Answer(),
		Explanation:   q.Explanation,
	}
	s.emit(AnswerScored{
		Correct:       res.Correct,
		Points:        res.Points,
		Score:         res.Score,
		Streak:        res.Streak,
		NewDifficulty: res.NewDifficulty,
		Level:         res.Level,
		CorrectAnswer: res.CorrectAnswer,
		Explanation:   res.Explanation,
	})
	return res, nil
}

// RequestHint returns a masked hint for the outstanding question and
// deducts the hint cost exactly once per question; repeat calls return
// the same hint for free.
func (s *Session) RequestHint() (string, error) {
	if s.current == nil {
		return "", ErrNoActiveQuestion
	}
	if s.hintCharged {
		return s.hint, nil
	}

	s.score -= s.scorer.HintCost()
	if s.score < 0 {
		s.score = 0
	}
	s.hintCharged = true
	s.stats.HintsUsed++
	s.hint = maskAnswer(s.current.Answer())
	return s.hint, nil
}

// Finish writes a final checkpoint. Call it when the player quits.
func (s *Session) Finish(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	return s.repo.Save(ctx, s.Snapshot())
}

// Snapshot captures the session as a persistable record.
func (s *Session) Snapshot() *store.PlayerRecord {
	var unlocks []store.AchievementUnlock
	for _, id := range s.tracker.Unlocked() {
		at, ok := s.unlockTimes[id]
		if !ok {
			at = time.Now().UTC()
		}
		unlocks = append(unlocks, store.AchievementUnlock{ID: id, UnlockedAt: at})
	}
	return &store.PlayerRecord{
		Username:     s.username,
		Score:        s.score,
		Level:        s.level,
		Streak:       s.streak,
		Stats:        s.stats,
		Difficulty:   s.adjuster.Levels(),
		Achievements: unlocks,
	}
}

func (s *Session) markCategoryPlayed(cat question.Category) {
	if s.categories[cat] {
		return
	}
	s.categories[cat] = true
	s.stats.CategoriesPlayed = append(s.stats.CategoriesPlayed, string(cat))
}

func (s *Session) evaluateAchievements() {
	fresh := s.tracker.Evaluate(achievements.Snapshot{
		Score:              s.score,
		Streak:             s.streak,
		Level:              s.level,
		CorrectAnswers:     s.stats.CorrectAnswers,
		FastCorrectAnswers: s.stats.FastCorrectAnswers,
		CategoriesPlayed:   len(s.categories),
		TotalCategories:    len(question.AllCategories()),
	})
	for _, r := range fresh {
		s.unlockTimes[r.ID] = time.Now().UTC()
		s.emit(AchievementUnlocked{ID: r.ID, Title: r.Title, Description: r.Description})
	}
}

// checkpoint persists progress after an answered question. Failures
// are reported but never interrupt play.
func (s *Session) checkpoint(ctx context.Context) {
	if s.repo == nil {
		return
	}
	if err := s.repo.Save(ctx, s.Snapshot()); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to save progress: %v\n", err)
	}
}

func (s *Session) emit(e Event) {
	if s.sink != nil {
		s.sink(e)
	}
}

// maskAnswer builds the hint text: first letter plus letter count,
// spaces excluded.
func maskAnswer(answer string) string {
	trimmed := strings.TrimSpace(answer)
	if trimmed == "" {
		return "No hint available"
	}
	first, _ := utf8.DecodeRuneInString(trimmed)
	letters := utf8.RuneCountInString(strings.ReplaceAll(trimmed, " ", ""))
	return fmt.Sprintf("The answer starts with %q and has %d letters", first, letters)
}
