package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/voyantlabs/skillscout/pkg/skills"
)

var skillsCmd = &cobra.Command{
	Use:   "skills",
	Short: "List discovered skills",
	Long:  `Lists every skill found across the configured skill roots, without touching the index.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		discovery, err := skills.NewDiscovery()
		if err != nil {
			return err
		}

		found, err := discovery.DiscoverSkills(cmd.Context())
		if err != nil {
			return err
		}

		if len(found) == 0 {
			out.Info("No skills found.")
			out.Info("Roots searched:")
			for _, root := range discovery.Roots() {
				out.Info("  " + root)
			}
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tDESCRIPTION\tPATH")
		for _, skill := range found {
			fmt.Fprintf(w, "%s\t%s\t%s\n", skill.ID, truncate(firstLine(skill.Description), 60), skill.Path)
		}
		return w.Flush()
	},
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
