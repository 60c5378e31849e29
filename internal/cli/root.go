// Package cli implements the scheduler command: token resets, history
// summaries and schema migrations, run from cron or by hand.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/dailyink/dailyink/internal/config"
	"github.com/dailyink/dailyink/internal/database"
	"github.com/dailyink/dailyink/internal/tokens"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:           "scheduler",
	Short:         "Periodic maintenance jobs for DailyInk",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		// Logs go to stderr so summarize output stays parseable.
		slog.SetDefault(config.NewLogger(c.Log, os.Stderr))
		cfg = c
		return nil
	},
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// withTokens opens a pool for the duration of fn.
func withTokens(ctx context.Context, fn func(*tokens.Service) error) error {
	pool, err := database.NewPostgresPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	return fn(newTokenService(pool))
}

func newTokenService(pool *pgxpool.Pool) *tokens.Service {
	return tokens.NewService(tokens.NewRepository(pool), cfg.Tokens)
}

func userFlag(cmd *cobra.Command) (uuid.UUID, bool, error) {
	raw, _ := cmd.Flags().GetString("user")
	if raw == "" {
		return uuid.Nil, false, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("invalid --user %q: %w", raw, err)
	}
	return id, true, nil
}
