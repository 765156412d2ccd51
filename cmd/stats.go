package cmd

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/abhisek/trivium/internal/achievements"
	"github.com/abhisek/trivium/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show player progress and achievements",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		name := playerName(cmd)
		rec, err := st.Players().Load(context.Background(), name)
		if errors.Is(err, store.ErrNotFound) {
			fmt.Printf("No progress recorded for %s yet. Run `trivium play` to start.\n", name)
			return nil
		}
		if err != nil {
			return fmt.Errorf("load player: %w", err)
		}

		total := rec.Stats.CorrectAnswers + rec.Stats.WrongAnswers
		fmt.Printf("Player:    %s\n", rec.Username)
		fmt.Printf("Score:     %d (level %d)\n", rec.Score, rec.Level)
		fmt.Printf("Streak:    %d\n", rec.Streak)
		fmt.Printf("Answered:  %d (%d correct, %d wrong)\n", total, rec.Stats.CorrectAnswers, rec.Stats.WrongAnswers)
		fmt.Printf("Fast:      %d\n", rec.Stats.FastCorrectAnswers)
		fmt.Printf("Hints:     %d\n", rec.Stats.HintsUsed)

		if len(rec.Difficulty) > 0 {
			fmt.Println("\nCategory levels:")
			for _, cat := range sortedKeys(rec.Difficulty) {
				fmt.Printf("  %-15s %d\n", cat, rec.Difficulty[cat])
			}
		}

		fmt.Println("\nAchievements:")
		if len(rec.Achievements) == 0 {
			fmt.Println("  none yet")
			return nil
		}
		titles := achievementTitles()
		for _, a := range rec.Achievements {
			title := titles[a.ID]
			if title == "" {
				title = a.ID
			}
			fmt.Printf("  %-20s %s\n", title, a.UnlockedAt.Local().Format("2006-01-02"))
		}
		return nil
	},
}

func achievementTitles() map[string]string {
	out := make(map[string]string)
	for _, r := range achievements.DefaultRules() {
		out[r.ID] = r.Title
	}
	return out
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
