package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	vpm "github.com/vessel-lang/vpm"
)

var installLocal string

var installCmd = &cobra.Command{
	Use:   "install <release> [version]",
	Short: "Install a release and everything it needs",
	Long: `Install a release, recursively installing the apps it references and
the runtime version it requires. Without a version the highest version
available across the configured repositories is installed.

Examples:
  vpm install webstack
  vpm install webstack 2.0
  vpm install --local ./webstack-2.0.tar.gz`,
	Args: cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall(vpm.KindRelease, args)
	},
}

var installAppCmd = &cobra.Command{
	Use:   "install-app <name> [version]",
	Short: "Install a single app",
	Args:  cobra.RangeArgs(0, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInstall(vpm.KindApp, args)
	},
}

var installRuntimeCmd = &cobra.Command{
	Use:   "install-runtime [version]",
	Short: "Install the Vessel runtime",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ref := vpm.Ref{Kind: vpm.KindRuntime, Name: vpm.RuntimeName}
		if len(args) > 0 {
			ref.Version = args[0]
		}
		a := newApp()
		if installLocal != "" {
			return a.orch.InstallPath(context.Background(), vpm.KindRuntime, installLocal, a.options())
		}
		if err := a.requireFetchRepos(); err != nil {
			return err
		}
		if err := a.orch.InstallRef(context.Background(), ref, a.options()); err != nil {
			return err
		}
		logger.Info("installed", "ref", ref.String())
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{installCmd, installAppCmd, installRuntimeCmd} {
		c.Flags().StringVar(&installLocal, "local", "", "install from a local archive or directory instead of fetching")
		rootCmd.AddCommand(c)
	}
}

func runInstall(kind vpm.Kind, args []string) error {
	a := newApp()

	if installLocal != "" {
		if err := a.orch.InstallPath(context.Background(), kind, installLocal, a.options()); err != nil {
			return err
		}
		logger.Info("installed", "path", installLocal)
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("a package name is required unless --local is given")
	}
	if err := a.requireFetchRepos(); err != nil {
		return err
	}

	ref := parseRef(kind, args)
	if err := a.orch.InstallRef(context.Background(), ref, a.options()); err != nil {
		return err
	}
	logger.Info("installed", "ref", ref.String())
	return nil
}
