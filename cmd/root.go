// Package cmd defines and implements the CLI commands for the urltopdf
// executable.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var cfgFile string

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "urltopdf",
		Short: "Archive web pages and Google Docs as PDF files.",
		Long: `urltopdf renders batches of web page URLs into PDF files and stores them
under a knowledge-base directory tree. Google Docs URLs are rewritten to
request English content before rendering; generic web pages are archived
as-is. Rendering uses headless Chrome, four pages at a time.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path (optional)")

	cmd.AddCommand(newGdocsCmd(), newWebCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
