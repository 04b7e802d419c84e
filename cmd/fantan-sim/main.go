package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "fantan-sim",
	Short: "Bot-vs-bot simulator for the fantan rules engine",
	Long: `fantan-sim runs full matches between bot strategies against the same
rules engine the Nakama module serves, without a server. It is the quickest
way to sanity-check rule changes and compare strategy tweaks.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
