package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var explainCmd = &cobra.Command{
	Use:   "explain <text>",
	Short: "Look up a German word or phrase",
	Args:  cobra.MinimumNArgs(1),
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
			return errors.New("not logged in; run `jonas login` first")
		}

		item, err := client.Explain(ctx, strings.Join(args, " "))
		if err != nil {
			return fmt.Errorf("explain: %w", err)
		}

		fmt.Printf("%s: %s\n", item.Term, item.Meaning)
		if item.Example != "" {
			fmt.Println("  " + item.Example)
		}
		return nil
	},
}
