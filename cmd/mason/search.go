package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	searchCategory string
	searchLanguage string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search the registry for packages",
	Long:  `Search category is restricted to {dap, formatter, linter, lsp} (spec.md §6).`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if searchCategory != "" && !validCategory(searchCategory) {
			return fmt.Errorf("invalid category %q: must be one of dap, formatter, linter, lsp", searchCategory)
		}

		var query string
		if len(args) == 1 {
			query = args[0]
		}

		_, mctx, err := newContext()
		if err != nil {
			return err
		}
		results, err := mctx.Search(globalCtx, query, searchCategory, searchLanguage)
		if err != nil {
			return err
		}
		for _, pkg := range results {
			fmt.Printf("%-30s %s\n", pkg.Name, pkg.Description)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchCategory, "category", "c", "", "filter by category")
	searchCmd.Flags().StringVarP(&searchLanguage, "lang", "l", "", "filter by language")
}

func validCategory(c string) bool {
	switch strings.ToLower(c) {
	case "dap", "formatter", "linter", "lsp":
		return true
	default:
		return false
	}
}
