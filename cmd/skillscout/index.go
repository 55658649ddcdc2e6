package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/voyantlabs/skillscout/pkg/index"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build the skill search index",
	Long: `Scans the skill roots, analyzes each skill, and persists a search
index. Building is a no-op when an index already exists; pass --rebuild to
discard it and index from scratch.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rebuild, _ := cmd.Flags().GetBool("rebuild")
		skipLLM, _ := cmd.Flags().GetBool("skip-llm")

		store, err := newIndexStore(skipLLM)
		if err != nil {
			return err
		}

		if store.Exists() && !rebuild {
			out.Info(fmt.Sprintf("Index already exists with %d skills (use --rebuild to re-index)", store.Count()))
			return nil
		}

		out.Info("Building skill index...")
		count, err := store.Build(cmd.Context(), index.BuildOptions{Force: rebuild})
		if err != nil {
			return err
		}

		if count == 0 {
			out.Warning("No skills found in any skill root")
			return nil
		}
		out.Success(fmt.Sprintf("Indexed %d skills", count))
		return nil
	},
}

func init() {
	indexCmd.Flags().Bool("rebuild", false, "Discard any existing index and re-index from scratch")
	indexCmd.Flags().Bool("skip-llm", false, "Skip LLM analysis and derive metadata heuristically")
}
