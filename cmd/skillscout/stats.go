package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/voyantlabs/skillscout/pkg/cache"
	"github.com/voyantlabs/skillscout/pkg/config"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show skill usage statistics",
	Long: `Summarizes the feedback store: logged executions, per-skill and
per-tool success rates, and the most common errors.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		skillID, _ := cmd.Flags().GetString("skill")
		asJSON, _ := cmd.Flags().GetBool("json")

		feedback, err := cache.Open(ctx, config.FeedbackDBPath())
		if err != nil {
			return err
		}
		defer feedback.Close()

		counts, err := feedback.TotalCounts(ctx)
		if err != nil {
			return err
		}
		skillStats, err := feedback.SkillStats(ctx, skillID)
		if err != nil {
			return err
		}
		toolStats, err := feedback.ToolUsageStats(ctx)
		if err != nil {
			return err
		}
		commonErrors, err := feedback.CommonErrors(ctx, skillID, 5)
		if err != nil {
			return err
		}
		associations, err := feedback.Associations(ctx)
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(map[string]interface{}{
				"totals":               counts,
				"skills":               skillStats,
				"tools":                toolStats,
				"common_errors":        commonErrors,
				"learned_associations": len(associations),
			})
		}

		out.Section("Totals")
		out.Info(fmt.Sprintf("Executions: %d  Sessions: %d  Skills seen: %d  Learned associations: %d",
			counts.Executions, counts.Sessions, counts.Skills, len(associations)))

		if len(skillStats) > 0 {
			out.Section("Skills")
			printStats(skillStats)
		}
		if len(toolStats) > 0 {
			out.Section("Tools")
			printStats(toolStats)
		}
		if len(commonErrors) > 0 {
			out.Section("Common errors")
			for _, e := range commonErrors {
				out.Info(fmt.Sprintf("%4dx [%s] %s", e.Count, e.Tool, e.Error))
			}
		}
		return nil
	},
}

func printStats(stats map[string]cache.Stats) {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		s := stats[key]
		out.Info(fmt.Sprintf("%-30s %d calls, %.0f%% success", key, s.Total, s.SuccessRate*100))
	}
}

func init() {
	statsCmd.Flags().String("skill", "", "Restrict stats to one skill id")
	statsCmd.Flags().Bool("json", false, "Emit stats as JSON")
}
