package cmd

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/abhisek/trivium/internal/store"
)

var rootCmd = &cobra.Command{
	Use:   "trivium",
	Short: "AI trivia game",
	Long:  "Trivium — terminal trivia game with LLM-generated questions, adaptive difficulty, and achievements.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPlay(cmd)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// .env is optional; real env vars win over it.
	_ = godotenv.Load()

	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides TRIVIUM_DB env var)")
	rootCmd.PersistentFlags().String("player", "player", "Player name for progress tracking")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(llmCmd)
	rootCmd.AddCommand(versionCmd)
}

// resolveDBPath returns the database path using --db flag (highest
// priority), then TRIVIUM_DB env var, then the default XDG path.
func resolveDBPath(cmd *cobra.Command) (string, error) {
	if p, _ := cmd.Flags().GetString("db"); p != "" {
		return p, store.EnsureDir(p)
	}
	return store.DefaultDBPath()
}

func playerName(cmd *cobra.Command) string {
	name, _ := cmd.Flags().GetString("player")
	if name == "" {
		name = "player"
	}
	return name
}
