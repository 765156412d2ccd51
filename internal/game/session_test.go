package game

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/trivium/internal/config"
	"github.com/abhisek/trivium/internal/prefetch"
	"github.com/abhisek/trivium/internal/question"
	"github.com/abhisek/trivium/internal/store"
)

type fakeSource struct {
	next     *question.Question
	err      error
	requests int
	consumed []int // difficulty of each consume notification, in order
}

func (f *fakeSource) Request(ctx context.Context, cat question.Category, difficulty int) (*question.Question, error) {
	f.requests++
	if f.err != nil {
		return nil, f.err
	}
	if f.next != nil {
		return f.next, nil
	}
	return makeQuestion(cat, difficulty), nil
}

func (f *fakeSource) NotifyConsumed(cat question.Category, difficulty int) {
	f.consumed = append(f.consumed, difficulty)
}

type fakeRepo struct {
	rec   *store.PlayerRecord
	saved []*store.PlayerRecord
}

func (f *fakeRepo) Save(ctx context.Context, rec *store.PlayerRecord) error {
	f.saved = append(f.saved, rec)
	return nil
}

func (f *fakeRepo) Load(ctx context.Context, username string) (*store.PlayerRecord, error) {
	if f.rec == nil {
		return nil, store.ErrNotFound
	}
	return f.rec, nil
}

func (f *fakeRepo) Delete(ctx context.Context, username string) error { return nil }

func makeQuestion(cat question.Category, difficulty int) *question.Question {
	return &question.Question{
		ID:           "q1",
		Category:     cat,
		Difficulty:   difficulty,
		Text:         "What is the capital of France?",
		Options:      []string{"London", "Paris", "Rome", "Berlin"},
		CorrectIndex: 1,
		Explanation:  "Paris has been the French capital since 987.",
	}
}

func newTestSession(t *testing.T, src QuestionSource, repo store.PlayerRepo, sink EventSink) *Session {
	t.Helper()
	s, err := NewSession(context.Background(), config.Default(), src, repo, sink, "alice")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func answerCorrectly(t *testing.T, s *Session, remaining time.Duration) *Result {
	t.Helper()
	q, err := s.NextQuestion(context.Background(), question.Science)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	res, err := s.SubmitAnswer(context.Background(), q.CorrectIndex, remaining)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if !res.Correct {
		t.Fatal("correct answer scored as wrong")
	}
	return res
}

func TestCorrectAnswerScoring(t *testing.T) {
	src := &fakeSource{next: makeQuestion(question.Science, 3)}
	s := newTestSession(t, src, nil, nil)

	// Build a streak of 2 with no time left so only base points land.
	answerCorrectly(t, s, 0)
	answerCorrectly(t, s, 0)
	if s.Streak() != 2 {
		t.Fatalf("streak = %d, want 2", s.Streak())
	}
	before := s.Score()

	// Difficulty 3 (base 50), 8s remaining (bonus 16), streak 2
	// (multiplier 1.2): round(66 * 1.2) = 79.
	res := answerCorrectly(t, s, 8*time.Second)
	if res.Points != 79 {
		t.Errorf("points = %d, want 79", res.Points)
	}
	if res.Score != before+79 {
		t.Errorf("score = %d, want %d", res.Score, before+79)
	}
	if res.Streak != 3 {
		t.Errorf("streak = %d, want 3", res.Streak)
	}
	if len(src.consumed) != 3 {
		t.Errorf("consume notifications = %d, want 3", len(src.consumed))
	}
}

func TestWrongAnswerResetsStreakAndScoresNothing(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src, nil, nil)

	answerCorrectly(t, s, 5*time.Second)
	answerCorrectly(t, s, 5*time.Second)
	before := s.Score()

	q, err := s.NextQuestion(context.Background(), question.Science)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	wrong := (q.CorrectIndex + 1) % len(q.Options)
	res, err := s.SubmitAnswer(context.Background(), wrong, 5*time.Second)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.Correct {
		t.Fatal("wrong answer scored as correct")
	}
	if res.Points != 0 || res.Score != before {
		t.Errorf("points = %d, score = %d; want 0 and %d", res.Points, res.Score, before)
	}
	if res.Streak != 0 {
		t.Errorf("streak = %d, want 0", res.Streak)
	}
	if res.CorrectAnswer != q.Answer() {
		t.Errorf("correct answer = %q, want %q", res.CorrectAnswer, q.Answer())
	}
}

func TestDifficultyFollowsPerformance(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src, nil, nil)

	var res *Result
	for i := 0; i < 3; i++ {
		res = answerCorrectly(t, s, 0)
	}
	if res.NewDifficulty != 2 {
		t.Errorf("difficulty after three correct = %d, want 2", res.NewDifficulty)
	}
	if got := s.DifficultyFor(question.Science); got != 2 {
		t.Errorf("DifficultyFor = %d, want 2", got)
	}

	q, _ := s.NextQuestion(context.Background(), question.Science)
	res, err := s.SubmitAnswer(context.Background(), (q.CorrectIndex+1)%len(q.Options), 0)
	if err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if res.NewDifficulty != 1 {
		t.Errorf("difficulty after wrong = %d, want 1", res.NewDifficulty)
	}
}

func TestRefillNotificationsTargetAdjustedDifficulty(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src, nil, nil)

	// Level up on the third correct answer: the refill notification for
	// that answer must already target level 2, not keep topping up the
	// retired level-1 key.
	for i := 0; i < 3; i++ {
		answerCorrectly(t, s, 0)
	}
	want := []int{1, 1, 2}
	if len(src.consumed) != len(want) {
		t.Fatalf("consume notifications = %v, want %v", src.consumed, want)
	}
	for i := range want {
		if src.consumed[i] != want[i] {
			t.Fatalf("consume notifications = %v, want %v", src.consumed, want)
		}
	}

	// A wrong answer at level 2 drops back to 1; the notification
	// follows the drop.
	q, err := s.NextQuestion(context.Background(), question.Science)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if q.Difficulty != 2 {
		t.Fatalf("question difficulty = %d, want 2", q.Difficulty)
	}
	if _, err := s.SubmitAnswer(context.Background(), (q.CorrectIndex+1)%len(q.Options), 0); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if got := src.consumed[len(src.consumed)-1]; got != 1 {
		t.Errorf("notification after drop = %d, want 1", got)
	}
}

func TestHintChargedOncePerQuestion(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src, nil, nil)

	// Earn some points first so the deduction is visible.
	answerCorrectly(t, s, 30*time.Second)
	before := s.Score()

	if _, err := s.NextQuestion(context.Background(), question.Science); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	hint, err := s.RequestHint()
	if err != nil {
		t.Fatalf("RequestHint: %v", err)
	}
	if hint == "" {
		t.Fatal("empty hint")
	}
	if got := s.Score(); got != before-50 {
		t.Errorf("score after hint = %d, want %d", got, before-50)
	}

	again, err := s.RequestHint()
	if err != nil {
		t.Fatalf("second RequestHint: %v", err)
	}
	if again != hint {
		t.Errorf("repeat hint = %q, want %q", again, hint)
	}
	if got := s.Score(); got != before-50 {
		t.Errorf("score after repeat hint = %d, want %d (charged once)", got, before-50)
	}
	if got := s.Stats().HintsUsed; got != 1 {
		t.Errorf("hints used = %d, want 1", got)
	}

	// The charge sticks regardless of the eventual answer.
	q := s.Current()
	if _, err := s.SubmitAnswer(context.Background(), (q.CorrectIndex+1)%len(q.Options), 0); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if got := s.Score(); got != before-50 {
		t.Errorf("score after wrong answer = %d, want %d (no refund)", got, before-50)
	}
}

func TestHintRefundPolicyIsConfigurable(t *testing.T) {
	cfg := config.Default()
	cfg.RefundHintOnWrong = true

	src := &fakeSource{}
	s, err := NewSession(context.Background(), cfg, src, nil, nil, "alice")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	answerCorrectly(t, s, 30*time.Second)
	before := s.Score()

	q, err := s.NextQuestion(context.Background(), question.Science)
	if err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := s.RequestHint(); err != nil {
		t.Fatalf("RequestHint: %v", err)
	}
	if got := s.Score(); got != before-cfg.HintCost {
		t.Fatalf("score after hint = %d, want %d", got, before-cfg.HintCost)
	}

	// A wrong answer gives the hint cost back under the refund policy.
	if _, err := s.SubmitAnswer(context.Background(), (q.CorrectIndex+1)%len(q.Options), 0); err != nil {
		t.Fatalf("SubmitAnswer: %v", err)
	}
	if got := s.Score(); got != before {
		t.Errorf("score after refunded wrong answer = %d, want %d", got, before)
	}
}

func TestHintNeverDrivesScoreNegative(t *testing.T) {
	src := &fakeSource{}
	s := newTestSession(t, src, nil, nil)

	if _, err := s.NextQuestion(context.Background(), question.Science); err != nil {
		t.Fatalf("NextQuestion: %v", err)
	}
	if _, err := s.RequestHint(); err != nil {
		t.Fatalf("RequestHint: %v", err)
	}
	if got := s.Score(); got != 0 {
		t.Errorf("score = %d, want 0", got)
	}
}

func TestHintText(t *testing.T) {
	got := maskAnswer("Paris")
	want := `The answer starts with 'P' and has 5 letters`
	if got != want {
		t.Errorf("maskAnswer = %q, want %q", got, want)
	}

	got = maskAnswer("New Delhi")
	want = `The answer starts with 'N' and has 8 letters`
	if got != want {
		t.Errorf("maskAnswer = %q, want %q", got, want)
	}
}

func TestSupplyUnavailableSurfacesEventAndError(t *testing.T) {
	src := &fakeSource{err: &prefetch.ErrSupplyUnavailable{Category: question.Science, Difficulty: 1}}
	var events []Event
	s := newTestSession(t, src, nil, func(e Event) { events = append(events, e) })

	_, err := s.NextQuestion(context.Background(), question.Science)
	var unavailable *prefetch.ErrSupplyUnavailable
	if !errors.As(err, &unavailable) {
		t.Fatalf("error = %v, want *prefetch.ErrSupplyUnavailable", err)
	}
	found := false
	for _, e := range events {
		if ev, ok := e.(SupplyUnavailable); ok {
			found = true
			if ev.Category != question.Science || ev.Difficulty != 1 {
				t.Errorf("event key = %s/%d, want Science/1", ev.Category, ev.Difficulty)
			}
		}
	}
	if !found {
		t.Error("no SupplyUnavailable event emitted")
	}
}

func TestSubmitWithoutQuestion(t *testing.T) {
	s := newTestSession(t, &fakeSource{}, nil, nil)
	if _, err := s.SubmitAnswer(context.Background(), 0, 0); !errors.Is(err, ErrNoActiveQuestion) {
		t.Errorf("SubmitAnswer = %v, want ErrNoActiveQuestion", err)
	}
	if _, err := s.RequestHint(); !errors.Is(err, ErrNoActiveQuestion) {
		t.Errorf("RequestHint = %v, want ErrNoActiveQuestion", err)
	}
}

func TestAchievementUnlocksOnce(t *testing.T) {
	src := &fakeSource{}
	var unlocked []string
	s := newTestSession(t, src, nil, func(e Event) {
		if a, ok := e.(AchievementUnlocked); ok {
			unlocked = append(unlocked, a.ID)
		}
	})

	answerCorrectly(t, s, 0)
	answerCorrectly(t, s, 0)

	count := 0
	for _, id := range unlocked {
		if id == "first_correct" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("first_correct unlocked %d times, want 1", count)
	}
}

func TestLevelUpEveryThreshold(t *testing.T) {
	src := &fakeSource{next: makeQuestion(question.Science, 5)}
	var levels []int
	s := newTestSession(t, src, nil, func(e Event) {
		if lu, ok := e.(LevelUp); ok {
			levels = append(levels, lu.Level)
		}
	})

	// Max difficulty with full timer scores 160 per answer at streak 0
	// and more with streak; four answers comfortably cross 500.
	for i := 0; i < 4; i++ {
		answerCorrectly(t, s, 30*time.Second)
	}
	if s.Score() < 500 {
		t.Fatalf("score = %d, expected to cross 500", s.Score())
	}
	if len(levels) == 0 || levels[0] != 2 {
		t.Errorf("level-up events = %v, want first at level 2", levels)
	}
	if s.Level() < 2 {
		t.Errorf("level = %d, want >= 2", s.Level())
	}
}

func TestCheckpointAfterEachAnswer(t *testing.T) {
	src := &fakeSource{}
	repo := &fakeRepo{}
	s := newTestSession(t, src, repo, nil)

	answerCorrectly(t, s, 5*time.Second)
	answerCorrectly(t, s, 5*time.Second)

	if len(repo.saved) != 2 {
		t.Fatalf("checkpoints = %d, want 2", len(repo.saved))
	}
	last := repo.saved[1]
	if last.Username != "alice" {
		t.Errorf("username = %q, want alice", last.Username)
	}
	if last.Score != s.Score() || last.Streak != 2 {
		t.Errorf("saved score/streak = %d/%d, want %d/2", last.Score, last.Streak, s.Score())
	}
	if last.Stats.CorrectAnswers != 2 {
		t.Errorf("saved correct answers = %d, want 2", last.Stats.CorrectAnswers)
	}
}

func TestResumeFromPersistedRecord(t *testing.T) {
	repo := &fakeRepo{rec: &store.PlayerRecord{
		Username: "alice",
		Score:    320,
		Level:    2,
		Streak:   4,
		Stats: store.PlayerStats{
			CorrectAnswers:   12,
			CategoriesPlayed: []string{"Science", "History"},
		},
		Difficulty: map[string]int{"Science": 3},
		Achievements: []store.AchievementUnlock{
			{ID: "first_correct", UnlockedAt: time.Now()},
			{ID: "points_100", UnlockedAt: time.Now()},
		},
	}}

	var unlocked []string
	s, err := NewSession(context.Background(), config.Default(), &fakeSource{}, repo, func(e Event) {
		if a, ok := e.(AchievementUnlocked); ok {
			unlocked = append(unlocked, a.ID)
		}
	}, "alice")
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	if s.Score() != 320 || s.Level() != 2 || s.Streak() != 4 {
		t.Errorf("restored score/level/streak = %d/%d/%d, want 320/2/4", s.Score(), s.Level(), s.Streak())
	}
	if got := s.DifficultyFor(question.Science); got != 3 {
		t.Errorf("restored science difficulty = %d, want 3", got)
	}

	// Already-unlocked achievements must not re-announce.
	answerCorrectly(t, s, 0)
	for _, id := range unlocked {
		if id == "first_correct" || id == "points_100" {
			t.Errorf("achievement %s re-announced after resume", id)
		}
	}
}
