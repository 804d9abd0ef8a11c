package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/transport"
)

var (
	publishKind string
	publishTier string
)

var publishCmd = &cobra.Command{
	Use:   "publish <archive>",
	Short: "Publish a package archive to every publish repository",
	Long: `Publish an archive named <name>-<version>.<ext> to every configured
publish repository. All targets are attempted even when some fail.

Examples:
  vpm publish ./alpha-1.0.tar.gz
  vpm publish --kind release ./webstack-2.0.tar.gz
  vpm publish --kind runtime --tier linux-amd64 ./runtime-7.1.tar.gz`,
	Args: cobra.ExactArgs(1),
	RunE: runPublish,
}

func init() {
	publishCmd.Flags().StringVar(&publishKind, "kind", "app", "package kind: app, release or runtime")
	publishCmd.Flags().StringVar(&publishTier, "tier", string(vpm.GenericTier), "compatibility tier to publish under")
	rootCmd.AddCommand(publishCmd)
}

func runPublish(cmd *cobra.Command, args []string) error {
	a := newApp()
	if len(a.cfg.PublishRepos) == 0 {
		return fmt.Errorf("no publish repositories configured, add one with: vpm repos add --publish <url>")
	}

	kind := vpm.Kind(publishKind)
	switch kind {
	case vpm.KindApp, vpm.KindRelease, vpm.KindRuntime:
	default:
		return fmt.Errorf("unknown kind %q", publishKind)
	}

	name, version, ext, ok := vpm.SplitArchiveName(filepath.Base(args[0]))
	if !ok {
		return fmt.Errorf("archive must be named <name>-<version>.<ext>: %s", args[0])
	}
	if kind == vpm.KindRuntime && name != vpm.RuntimeName {
		return fmt.Errorf("runtime archives must be named %s-<version>.<ext>", vpm.RuntimeName)
	}

	payload, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}

	suffix := vpm.ArchiveSuffixExt(vpm.Tier(publishTier), kind, name, version, ext)
	result := a.publisher.Publish(context.Background(), a.cfg.PublishRepos, suffix, payload)

	for _, url := range result.URLs {
		fmt.Println(url)
	}
	for _, f := range result.Failures {
		logger.Error("publish failed", "repo", f.Repo, "err", f.Err)
	}

	switch result.Outcome() {
	case transport.AllOk:
		logger.Info("published", "suffix", suffix, "repos", len(result.URLs))
		return nil
	case transport.PartialFailure:
		return fmt.Errorf("published to %d of %d repositories", len(result.URLs), len(result.URLs)+len(result.Failures))
	}
	return fmt.Errorf("publish failed on every repository")
}
