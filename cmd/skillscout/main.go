package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/voyantlabs/skillscout/pkg/logger"
	"github.com/voyantlabs/skillscout/pkg/presenter"
)

func init() {
	// Environment variables
	viper.SetEnvPrefix("SKILLSCOUT")
	viper.AutomaticEnv()

	// Config file support
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("$HOME/.skillscout")
	viper.AddConfigPath(".")

	// Load config file if it exists (ignore errors if it doesn't)
	_ = viper.ReadInConfig()
}

var rootCmd = &cobra.Command{
	Use:   "skillscout",
	Short: "Skill retrieval and attribution for coding agents",
	Long: `Skillscout indexes agent skills for semantic search and attributes
tool executions back to the skill that drove them, learning associations
as it goes.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.SetLogLevel(viper.GetString("log_level"))
		logger.SetLogFormat(viper.GetString("log_format"))
	},
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
		os.Exit(1)
	},
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Global flags
	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "text", "Log format (text, json)")
	rootCmd.PersistentFlags().String("index-path", "", "Index directory (overrides SKILLSCOUT_INDEX_PATH)")

	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log_format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("index_path", rootCmd.PersistentFlags().Lookup("index-path"))

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(findCmd)
	rootCmd.AddCommand(skillsCmd)
	rootCmd.AddCommand(attributeCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// out is the shared presenter for user-facing command output.
var out = presenter.New()
