package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/trivium/internal/config"
	"github.com/abhisek/trivium/internal/game"
	"github.com/abhisek/trivium/internal/llm"
	"github.com/abhisek/trivium/internal/prefetch"
	"github.com/abhisek/trivium/internal/question"
	"github.com/abhisek/trivium/internal/store"
)

// runPlay opens the store, builds the supplier chain, and drives the
// interactive question loop on stdin.
func runPlay(cmd *cobra.Command) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	lcfg := llm.ConfigFromEnv()
	if err := lcfg.Validate(); err != nil {
		discovered, ok := llm.DiscoverConfig()
		if !ok {
			fmt.Fprintln(os.Stderr, "LLM provider not configured:", err)
			return fmt.Errorf("no LLM provider available")
		}
		lcfg = discovered
	}
	lcfg.SetModel(cfg.ModelName)
	provider, err := llm.NewProvider(ctx, lcfg, st.RequestLog())
	if err != nil {
		return fmt.Errorf("build LLM provider: %w", err)
	}

	supplier := question.NewLLMSupplier(provider, question.DefaultConfig(), cfg.MaxDifficulty)
	buf := prefetch.New(supplier, prefetch.Config{
		Capacity:             cfg.PrefetchCapacity,
		LowWater:             cfg.PrefetchLowWater,
		MaxConcurrentFetches: cfg.MaxConcurrentFetches,
		RequestTimeout:       cfg.RequestTimeout,
	})
	defer buf.Close()

	loop := &gameLoop{
		cfg: cfg,
		in:  bufio.NewScanner(os.Stdin),
	}
	session, err := game.NewSession(ctx, cfg, buf, st.Players(), loop.render, playerName(cmd))
	if err != nil {
		return err
	}
	loop.session = session
	loop.buffer = buf

	defer func() {
		if err := session.Finish(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to save progress: %v\n", err)
		}
	}()
	return loop.run(ctx)
}

type gameLoop struct {
	cfg     config.Config
	session *game.Session
	buffer  *prefetch.Buffer
	in      *bufio.Scanner
}

func (g *gameLoop) run(ctx context.Context) error {
	fmt.Printf("Welcome back! Score: %d, level %d.\n", g.session.Score(), g.session.Level())

	for {
		cat, ok := g.pickCategory()
		if !ok {
			fmt.Println("Thanks for playing!")
			return nil
		}
		g.buffer.Warm(cat, g.session.DifficultyFor(cat))

		for {
			cont, err := g.playRound(ctx, cat)
			if errors.Is(err, errQuit) {
				fmt.Println("Thanks for playing!")
				return nil
			}
			if err != nil {
				return err
			}
			if !cont {
				break
			}
		}
	}
}

func (g *gameLoop) pickCategory() (question.Category, bool) {
	cats := question.AllCategories()
	fmt.Println("\nPick a category:")
	for i, c := range cats {
		fmt.Printf("  %d. %s (level %d)\n", i+1, c, g.session.DifficultyFor(c))
	}
	for {
		fmt.Print("category (or q to quit)> ")
		line, ok := g.readLine()
		if !ok || line == "q" {
			return "", false
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(cats) {
			fmt.Println("Enter a number from the list.")
			continue
		}
		return cats[n-1], true
	}
}

// playRound plays one question. Returns false when the player wants a
// different category or quits.
func (g *gameLoop) playRound(ctx context.Context, cat question.Category) (bool, error) {
	q, err := g.session.NextQuestion(ctx, cat)
	if err != nil {
		var unavailable *prefetch.ErrSupplyUnavailable
		if errors.As(err, &unavailable) {
			// Already rendered via the event sink; let the player pick
			// another category instead of aborting the session.
			return false, nil
		}
		return false, err
	}

	started := time.Now()
	for {
		fmt.Print("answer (1-4, h for hint, s to switch category, q to quit)> ")
		line, ok := g.readLine()
		if !ok || line == "q" {
			return false, errQuit
		}
		switch line {
		case "s":
			return false, nil
		case "h":
			hint, hintErr := g.session.RequestHint()
			if hintErr != nil {
				return false, hintErr
			}
			fmt.Printf("Hint (-%d points): %s\n", g.cfg.HintCost, hint)
			continue
		}
		n, convErr := strconv.Atoi(line)
		if convErr != nil || n < 1 || n > len(q.Options) {
			fmt.Println("Enter 1-4, h, s, or q.")
			continue
		}

		remaining := g.cfg.TimerDuration - time.Since(started)
		if remaining < 0 {
			remaining = 0
		}
		if _, err := g.session.SubmitAnswer(ctx, n-1, remaining); err != nil {
			return false, err
		}
		return true, nil
	}
}

// errQuit unwinds the round loop on a player-requested exit; runPlay's
// deferred Finish still writes the final checkpoint.
var errQuit = errors.New("quit")

func (g *gameLoop) readLine() (string, bool) {
	if !g.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(strings.ToLower(g.in.Text())), true
}

// render is the session's event sink.
func (g *gameLoop) render(e game.Event) {
	switch ev := e.(type) {
	case game.QuestionReady:
		q := ev.Question
		fmt.Printf("\n[%s, level %d] %s\n", q.Category, q.Difficulty, q.Text)
		for i, opt := range q.Options {
			fmt.Printf("  %d. %s\n", i+1, opt)
		}
		fmt.Printf("You have %s.\n", ev.Timer)
	case game.AnswerScored:
		if ev.Correct {
			fmt.Printf("Correct! +%d points (score %d, streak %d)\n", ev.Points, ev.Score, ev.Streak)
		} else {
			fmt.Printf("Wrong. The answer was: %s\n", ev.CorrectAnswer)
		}
		if ev.Explanation != "" {
			fmt.Println(ev.Explanation)
		}
	case game.AchievementUnlocked:
		fmt.Printf("🏆 Achievement unlocked: %s — %s\n", ev.Title, ev.Description)
	case game.LevelUp:
		fmt.Printf("⬆ Level up! You are now level %d.\n", ev.Level)
	case game.SupplyUnavailable:
		fmt.Printf("Could not fetch a %s question right now. Try another category or try again shortly.\n", ev.Category)
	}
}
