// Package cmd provides the command-line interface of vmsim.
package cmd

import (
	"github.com/spf13/cobra"
	"github.com/tebeka/atexit"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vmsim",
	Short: "vmsim simulates virtual memory address translation.",
	Long: `vmsim resolves a trace of logical addresses to physical addresses ` +
		`through a TLB and a page table, loading pages from a backing store ` +
		`and replacing frames in LRU order.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
