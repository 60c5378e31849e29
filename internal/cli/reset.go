package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dailyink/dailyink/internal/tokens"
)

func init() {
	rootCmd.AddCommand(resetDailyCmd)
	rootCmd.AddCommand(resetWeeklyCmd)

	resetDailyCmd.Flags().String("user", "", "Reset a single user instead of everyone")
	resetWeeklyCmd.Flags().String("user", "", "Reset a single user instead of everyone")
}

var resetDailyCmd = &cobra.Command{
	Use:   "reset-daily",
	Short: "Refill short-mode tokens to the daily limit",
	Long: `Overwrite every user's short-mode pool with DAILY_SHORT_LIMIT.
Unused tokens do not carry over. Intended to run once a day at local midnight.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd, "daily", (*tokens.Service).ResetDaily, (*tokens.Service).ResetAllDaily)
	},
}

var resetWeeklyCmd = &cobra.Command{
	Use:   "reset-weekly",
	Short: "Refill long-mode tokens to the weekly limit",
	Long: `Overwrite every user's long-mode pool with WEEKLY_LONG_LIMIT.
Intended to run on Monday at local midnight.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runReset(cmd, "weekly", (*tokens.Service).ResetWeekly, (*tokens.Service).ResetAllWeekly)
	},
}

type (
	resetOne func(*tokens.Service, context.Context, uuid.UUID) (*tokens.Balance, error)
	resetAll func(*tokens.Service, context.Context) (int, error)
)

func runReset(cmd *cobra.Command, name string, one resetOne, all resetAll) error {
	userID, single, err := userFlag(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	return withTokens(ctx, func(svc *tokens.Service) error {
		if single {
			b, err := one(svc, ctx, userID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reset applied to %s: short=%d long=%d\n",
				name, userID, b.TokensShort, b.TokensLong)
			return nil
		}

		n, err := all(svc, ctx)
		if err != nil {
			slog.Error("reset aborted", "kind", name, "reset", n, "error", err)
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s reset applied to %d users\n", name, n)
		return nil
	})
}
