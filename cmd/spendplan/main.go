package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "spendplan",
		Short:        "Plan a year of spending by category and month",
		SilenceUsage: true,
	}
	root.AddCommand(
		newServeCmd(),
		newValidateCmd(),
		newSummaryCmd(),
		newSampleCmd(),
	)
	return root
}
