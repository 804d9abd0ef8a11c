package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	vpm "github.com/vessel-lang/vpm"
)

var upgradeAll bool

var upgradeCmd = &cobra.Command{
	Use:   "upgrade [release]",
	Short: "Upgrade installed releases to their highest remote version",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpgrade(vpm.KindRelease, args)
	},
}

var upgradeAppCmd = &cobra.Command{
	Use:   "upgrade-app [name]",
	Short: "Upgrade installed apps to their highest remote version",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpgrade(vpm.KindApp, args)
	},
}

var upgradeRuntimeCmd = &cobra.Command{
	Use:   "upgrade-runtime",
	Short: "Upgrade the installed runtime",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runUpgrade(vpm.KindRuntime, []string{vpm.RuntimeName})
	},
}

var outdatedCmd = &cobra.Command{
	Use:   "outdated",
	Short: "List installed packages with a newer remote version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		if err := a.requireFetchRepos(); err != nil {
			return err
		}
		reported := false
		for _, kind := range []vpm.Kind{vpm.KindApp, vpm.KindRelease, vpm.KindRuntime} {
			reports, err := a.manager.OutdatedSet(context.Background(), kind, a.options())
			if err != nil {
				return err
			}
			for _, r := range reports {
				reported = true
				fmt.Printf("%-8s %s %s -> %s\n", kind, r.Name, r.Local, r.Remote)
			}
		}
		if !reported {
			fmt.Println("everything is up to date")
		}
		return nil
	},
}

func init() {
	upgradeCmd.Flags().BoolVar(&upgradeAll, "all", false, "upgrade every installed release")
	upgradeAppCmd.Flags().BoolVar(&upgradeAll, "all", false, "upgrade every installed app")
	rootCmd.AddCommand(upgradeCmd, upgradeAppCmd, upgradeRuntimeCmd, outdatedCmd)
}

func runUpgrade(kind vpm.Kind, args []string) error {
	a := newApp()
	if err := a.requireFetchRepos(); err != nil {
		return err
	}
	ctx := context.Background()

	if upgradeAll || (len(args) == 0 && kind != vpm.KindRuntime) {
		reports, err := a.manager.UpgradeAll(ctx, kind, a.options())
		if err != nil {
			return err
		}
		for _, r := range reports {
			switch {
			case r.Err != nil:
				logger.Error("upgrade failed", "name", r.Name, "err", r.Err)
			case r.Upgraded:
				fmt.Printf("%s %s -> %s\n", r.Name, r.From, r.To)
			default:
				logger.Debug("up to date", "name", r.Name, "version", r.From)
			}
		}
		return nil
	}

	res, err := a.manager.Upgrade(ctx, kind, args[0], a.options())
	if err != nil {
		return err
	}
	if !res.Upgraded {
		fmt.Printf("%s %s is up to date\n", res.Name, res.From)
		return nil
	}
	fmt.Printf("%s %s -> %s\n", res.Name, res.From, res.To)
	return nil
}
