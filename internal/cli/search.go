package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/manage"
)

var (
	searchApps     bool
	searchReleases bool
	searchRegex    bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search package names across the configured repositories",
	Long: `Search the names published on every fetch repository. Without a query
the full sorted list is printed. The query matches as a substring, or as
a regular expression with --regex.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.requireFetchRepos(); err != nil {
			return err
		}

		scope := manage.ScopeBoth
		if searchApps && !searchReleases {
			scope = manage.ScopeLib
		}
		if searchReleases && !searchApps {
			scope = manage.ScopeReleases
		}

		match := manage.MatchAll()
		if len(args) == 1 {
			if searchRegex {
				var err error
				if match, err = manage.MatchPattern(args[0]); err != nil {
					return fmt.Errorf("invalid pattern: %w", err)
				}
			} else {
				match = manage.MatchSubstring(args[0])
			}
		}

		names, err := a.manager.Search(context.Background(), scope, match, a.options())
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil
	},
}

var describeCmd = &cobra.Command{
	Use:   "describe-app <name> [version]",
	Short: "Print the metadata document of an app",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.requireFetchRepos(); err != nil {
			return err
		}
		version := ""
		if len(args) > 1 {
			version = args[1]
		}
		meta, err := a.manager.Describe(context.Background(), vpm.KindApp, args[0], version, a.options())
		if err != nil {
			return err
		}
		fmt.Print(meta)
		return nil
	},
}

func init() {
	searchCmd.Flags().BoolVar(&searchApps, "apps", false, "search apps only")
	searchCmd.Flags().BoolVar(&searchReleases, "releases", false, "search releases only")
	searchCmd.Flags().BoolVar(&searchRegex, "regex", false, "treat the query as a regular expression")
	rootCmd.AddCommand(searchCmd, describeCmd)
}
