package main

import (
	"github.com/spf13/cobra"

	"github.com/voyantlabs/skillscout/pkg/cache"
	"github.com/voyantlabs/skillscout/pkg/config"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear learned associations and execution history",
	Long: `Deletes all learned associations, logged executions, and session
summaries from the feedback store. The search index is untouched; use
'skillscout index --rebuild' for that.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !force {
			out.Warning("This deletes all learned associations and execution history.")
			out.Info("Re-run with --force to proceed.")
			return nil
		}

		feedback, err := cache.Open(cmd.Context(), config.FeedbackDBPath())
		if err != nil {
			return err
		}
		defer feedback.Close()

		if err := feedback.Reset(cmd.Context()); err != nil {
			return err
		}
		out.Success("Feedback store cleared")
		return nil
	},
}

func init() {
	resetCmd.Flags().Bool("force", false, "Skip the confirmation and reset immediately")
}
