package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/config"
)

// Version is stamped by the build.
var Version = "dev"

var environmentCmd = &cobra.Command{
	Use:   "environment",
	Short: "Show the effective configuration and platform",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		sys := vpm.LocalSystem()
		fmt.Printf("config:          %s\n", config.Path())
		fmt.Printf("install root:    %s\n", cfg.InstallRoot)
		fmt.Printf("platform:        %s\n", sys.PlatformTag())
		fmt.Printf("tier chain:      %v\n", cfg.Chain())
		fmt.Printf("runtime chain:   %v\n", vpm.RuntimeChain(sys))
		fmt.Printf("request timeout: %s\n", cfg.Timeout())
		fmt.Printf("force policy:    %s\n", cfg.ForcePolicy())
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("vpm version %s\n", Version)
	},
}

func init() {
	rootCmd.AddCommand(environmentCmd, versionCmd)
}
