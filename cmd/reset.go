package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/abhisek/trivium/internal/store"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Erase a player's progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		name := playerName(cmd)
		if !yes {
			fmt.Printf("This erases all progress for %s. Re-run with --yes to confirm.\n", name)
			return nil
		}

		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		if err := st.Players().Delete(context.Background(), name); err != nil {
			return fmt.Errorf("delete player: %w", err)
		}
		fmt.Printf("Progress for %s erased.\n", name)
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("yes", false, "Skip the confirmation prompt")
}
