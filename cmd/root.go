// Package cmd implements the tagscope command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "tagscope",
	Short: "tagscope scores a page's SEO meta tags",
	Long: `tagscope fetches web pages, extracts their SEO-relevant head tags
(title, meta description, Open Graph, Twitter Card, canonical, robots and
JSON-LD structured data) and scores them.

Run "tagscope serve" for the HTTP API or "tagscope analyze <url>..." to
score pages from the command line.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(analyzeCmd)
}
