package cli

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"

	"github.com/dailyink/dailyink/internal/tokens"
)

func init() {
	rootCmd.AddCommand(summarizeCmd)

	summarizeCmd.Flags().String("user", "", "User ID (required)")
	summarizeCmd.Flags().StringP("granularity", "g", "day", "Bucket size: day or month")
	summarizeCmd.Flags().Bool("pretty", false, "Indent JSON output")
}

var summarizeCmd = &cobra.Command{
	Use:   "summarize",
	Short: "Print a user's token history grouped by day or month",
	Args:  cobra.NoArgs,
	RunE:  runSummarize,
}

func runSummarize(cmd *cobra.Command, args []string) error {
	userID, ok, err := userFlag(cmd)
	if err != nil {
		return err
	}
	if !ok {
		return errors.New("--user is required")
	}

	raw, _ := cmd.Flags().GetString("granularity")
	g, err := tokens.ParseGranularity(raw)
	if err != nil {
		return err
	}
	pretty, _ := cmd.Flags().GetBool("pretty")

	ctx := cmd.Context()
	return withTokens(ctx, func(svc *tokens.Service) error {
		report, err := svc.SummarizeHistory(ctx, userID, g)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(report)
	})
}
