package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voyantlabs/skillscout/pkg/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Print the version information of skillscout in JSON format.`,
	Run: func(cmd *cobra.Command, args []string) {
		data, err := json.MarshalIndent(version.Get(), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error formatting version info: %s\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
	},
}
