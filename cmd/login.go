package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
	"github.com/spf13/cobra"

	"github.com/Muhsiinn/Jonas-AI/internal/auth"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session without opening the TUI",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, authSvc, cleanup, err := buildClient(cmd)
		if err != nil {
			return err
		}
		defer cleanup()

		reader := bufio.NewReader(cmd.InOrStdin())
		fmt.Print("Email: ")
		email, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}

		fmt.Print("Password: ")
		pw, err := term.ReadPassword(os.Stdin.Fd())
		fmt.Println()
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}

		user, err := authSvc.Login(cmd.Context(), auth.LoginInput{
			Email:    strings.TrimSpace(email),
			Password: string(pw),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Logged in as %s.\n", user.Email)
		return nil
	},
}
