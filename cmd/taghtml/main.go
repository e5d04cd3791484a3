// Command taghtml is a small CLI front end over this module's parser,
// selector engine, and serializer, grounded on
// clems4ever-arbor-encoder/cmd/root.go's rootCmd + Execute pattern (a bare
// cobra.Command carrying Use/Short, with subcommands registering themselves
// onto it from their own init()).
package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var logger *slog.Logger

var rootCmd = &cobra.Command{
	Use:   "taghtml",
	Short: "Parse, query, and serialize HTML documents",
	Long: `taghtml decodes an HTML file, parses it into a tagged tree, and
optionally runs a CSS selector query over the result, printing matches (or
the whole document) back out as HTML5.`,
}

func main() {
	logger = slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
