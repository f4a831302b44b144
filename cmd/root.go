package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/rewritecheck/cmd/batch"
	"github.com/cockroachdb/rewritecheck/cmd/compare"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "rewritecheck",
	Short: "Validate rewritten SQL queries against their originals",
	Long:  `rewritecheck runs SQL queries and their rewrites against the same database and checks they return equivalent results.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(compare.Command())
	rootCmd.AddCommand(batch.Command())
}
