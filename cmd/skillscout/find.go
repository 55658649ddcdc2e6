package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/voyantlabs/skillscout/pkg/index"
)

var findCmd = &cobra.Command{
	Use:   "find [query]",
	Short: "Search the skill index",
	Long: `Searches the skill index with a natural-language query and prints
the top matching skills, best first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		query := strings.Join(args, " ")
		k, _ := cmd.Flags().GetInt("top")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := newIndexStore(true)
		if err != nil {
			return err
		}

		results, err := store.Search(cmd.Context(), query, k)
		if errors.Is(err, index.ErrNoIndex) {
			out.Error(err, "no index found")
			out.Info("Run 'skillscout index' first.")
			os.Exit(1)
		}
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(results)
		}

		if len(results) == 0 {
			out.Info("No matching skills.")
			return nil
		}

		for i, r := range results {
			out.Info(fmt.Sprintf("%d. %s (%.2f)", i+1, r.Name, r.Score))
			if r.Purpose != "" {
				out.Info("   " + r.Purpose)
			}
			out.Info("   " + r.Path)
		}
		return nil
	},
}

func init() {
	findCmd.Flags().IntP("top", "k", 5, "Number of results to return")
	findCmd.Flags().Bool("json", false, "Emit results as JSON")
}
