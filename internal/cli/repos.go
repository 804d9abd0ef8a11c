package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vessel-lang/vpm/config"
)

var reposPublish bool

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "Manage the fetch and publish repository lists",
}

var reposShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the configured repositories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("fetch:")
		for _, r := range cfg.FetchRepos {
			fmt.Printf("  %s\n", r)
		}
		fmt.Println("publish:")
		for _, r := range cfg.PublishRepos {
			fmt.Printf("  %s\n", r)
		}
		return nil
	},
}

var reposAddCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var added bool
		if reposPublish {
			added = cfg.AddPublishRepo(args[0])
		} else {
			added = cfg.AddFetchRepo(args[0])
		}
		if !added {
			logger.Warn("repository already configured", "url", args[0])
			return nil
		}
		return config.Save(cfg, cfgFile)
	},
}

var reposRemoveCmd = &cobra.Command{
	Use:   "remove <url>",
	Short: "Remove a repository",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var removed bool
		if reposPublish {
			removed = cfg.RemovePublishRepo(args[0])
		} else {
			removed = cfg.RemoveFetchRepo(args[0])
		}
		if !removed {
			return fmt.Errorf("repository not configured: %s", args[0])
		}
		return config.Save(cfg, cfgFile)
	},
}

var setTimeoutCmd = &cobra.Command{
	Use:   "set-request-timeout <millis>",
	Short: "Set the per-request timeout in milliseconds (0 disables it)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		millis, err := strconv.Atoi(args[0])
		if err != nil || millis < 0 {
			return fmt.Errorf("timeout must be a number of milliseconds")
		}
		cfg.RequestTimeoutMillis = millis
		return config.Save(cfg, cfgFile)
	},
}

var showTimeoutCmd = &cobra.Command{
	Use:   "show-request-timeout",
	Short: "Show the per-request timeout",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(cfg.Timeout())
	},
}

func init() {
	for _, c := range []*cobra.Command{reposAddCmd, reposRemoveCmd} {
		c.Flags().BoolVar(&reposPublish, "publish", false, "operate on the publish list instead of the fetch list")
	}
	reposCmd.AddCommand(reposShowCmd, reposAddCmd, reposRemoveCmd)
	rootCmd.AddCommand(reposCmd, setTimeoutCmd, showTimeoutCmd)
}
