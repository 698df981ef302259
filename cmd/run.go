package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Muhsiinn/Jonas-AI/internal/api"
	"github.com/Muhsiinn/Jonas-AI/internal/app"
	"github.com/Muhsiinn/Jonas-AI/internal/auth"
	"github.com/Muhsiinn/Jonas-AI/internal/config"
	"github.com/Muhsiinn/Jonas-AI/internal/logging"
	"github.com/Muhsiinn/Jonas-AI/internal/store"
)

// runApp wires config, logging, the local store, and the backend client,
// then launches the TUI.
func runApp(cmd *cobra.Command) error {
	cfg := config.Load()

	log, err := logging.New(cfg.LogFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging unavailable:", err)
		log = zap.NewNop()
	}
	defer func() { _ = log.Sync() }()

	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return fmt.Errorf("resolve DB path: %w", err)
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()

	live := &auth.Token{}
	client := api.NewClient(api.Options{
		BaseURL:        cfg.APIBaseURL,
		Tokens:         live,
		Logger:         log,
		RequestTimeout: cfg.RequestTimeout,
		StreamTimeout:  cfg.StreamTimeout,
	})
	authSvc := auth.NewService(client, st.Tokens(), st.Journal(), live, log)

	email, err := authSvc.Restore(cmd.Context())
	if err != nil {
		log.Warn("restore session failed", zap.Error(err))
		email = ""
	}

	return app.Run(app.Options{
		Config:    cfg,
		Logger:    log,
		API:       client,
		Auth:      authSvc,
		Store:     st,
		UserEmail: email,
	})
}
