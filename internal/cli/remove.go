package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	vpm "github.com/vessel-lang/vpm"
)

var removeCmd = &cobra.Command{
	Use:   "remove <release> <version>",
	Short: "Remove an installed release",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove(vpm.KindRelease, args[0], args[1])
	},
}

var removeAppCmd = &cobra.Command{
	Use:   "remove-app <name> <version>",
	Short: "Remove an installed app",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove(vpm.KindApp, args[0], args[1])
	},
}

var removeRuntimeCmd = &cobra.Command{
	Use:   "remove-runtime <version>",
	Short: "Remove an installed runtime",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRemove(vpm.KindRuntime, vpm.RuntimeName, args[0])
	},
}

var installedCmd = &cobra.Command{
	Use:   "installed",
	Short: "List installed packages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a := newApp()
		for _, kind := range []vpm.Kind{vpm.KindApp, vpm.KindRelease, vpm.KindRuntime} {
			pkgs, err := a.manager.Installed(kind)
			if err != nil {
				return err
			}
			for _, p := range pkgs {
				fmt.Printf("%-8s %s %s\n", p.Kind, p.Name, p.Version)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(removeCmd, removeAppCmd, removeRuntimeCmd, installedCmd)
}

func runRemove(kind vpm.Kind, name, version string) error {
	a := newApp()
	if err := a.manager.Remove(kind, name, version); err != nil {
		return err
	}
	logger.Info("removed", "ref", vpm.Ref{Kind: kind, Name: name, Version: version}.String())
	return nil
}
