package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/auth"
	"github.com/Muhsiinn/Jonas-AI/internal/config"
	"github.com/Muhsiinn/Jonas-AI/internal/stats"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Print learning statistics without opening the TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		client, authSvc, cleanup, err := buildClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		email, err := authSvc.Restore(ctx)
		if err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		if email == "" {
			return errors.New("not logged in; run `jonas` to log in first")
		}

		st, err := client.MyStats(ctx)
		if err != nil {
			return fmt.Errorf("fetch stats: %w", err)
		}

		fmt.Println(email)
		fmt.Println(stats.StreakLine(st))
		fmt.Printf("longest streak %d · %d activities total\n",
			st.LongestStreak, st.ActivitiesCount)

		if lb, err := client.Leaderboard(ctx); err == nil {
			fmt.Println("leaderboard:", stats.Placement(lb))
		}
		return nil
	},
}

// buildClient wires the store, token, and backend client for the
// non-TUI subcommands.
func buildClient(cmd *cobra.Command) (*api.Client, *auth.Service, func(), error) {
	cfg := config.Load()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open store: %w", err)
	}

	live := &auth.Token{}
	client := api.NewClient(api.Options{
		BaseURL:        cfg.APIBaseURL,
		Tokens:         live,
		RequestTimeout: cfg.RequestTimeout,
		StreamTimeout:  cfg.StreamTimeout,
	})
	authSvc := auth.NewService(client, st.Tokens(), st.Journal(), live, zap.NewNop())

	return client, authSvc, func() { _ = st.Close() }, nil
}
