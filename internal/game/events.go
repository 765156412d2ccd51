package game

import (
	"time"

	"github.com/abhisek/trivium/internal/question"
)

// Event is a UI-facing notification. The session pushes events through
// a sink func so any front end (terminal loop, future GUI) can render
// them without the session knowing about rendering.
type Event interface {
	isEvent()
}

// EventSink receives session events. A nil sink drops them.
type EventSink func(Event)

// QuestionReady announces the next question to present.
type QuestionReady struct {
	Question *question.Question
	Timer    time.Duration
}

// AnswerScored reports the outcome of a submitted answer.
type AnswerScored struct {
	Correct       bool
	Points        int
	Score         int
	Streak        int
	NewDifficulty int
	Level         int
	CorrectAnswer string
	Explanation   string
}

// AchievementUnlocked fires once per achievement, ever.
type AchievementUnlocked struct {
	ID          string
	Title       string
	Description string
}

// LevelUp fires when the total score crosses a level threshold.
type LevelUp struct {
	Level int
}

// SupplyUnavailable signals that no question could be produced for the
// key, cached or live. The front end decides how to degrade.
type SupplyUnavailable struct {
	Category   question.Category
	Difficulty int
}

func (QuestionReady) isEvent()       {}
func (AnswerScored) isEvent()        {}
func (AchievementUnlocked) isEvent() {}
func (LevelUp) isEvent()             {}
func (SupplyUnavailable) isEvent()   {}
