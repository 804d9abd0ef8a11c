// Package cli implements the vpm command tree.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/config"
	"github.com/vessel-lang/vpm/install"
	"github.com/vessel-lang/vpm/manage"
	"github.com/vessel-lang/vpm/pkgstore"
	"github.com/vessel-lang/vpm/repo"
	"github.com/vessel-lang/vpm/resolve"
	"github.com/vessel-lang/vpm/transport"
	"github.com/vessel-lang/vpm/unpack"
)

var (
	cfgFile   string
	forceFlag string
	verbose   bool

	cfg    *config.Config
	logger *log.Logger
)

var rootCmd = &cobra.Command{
	Use:   "vpm",
	Short: "Vessel package manager",
	Long: `vpm installs, publishes and manages Vessel apps, releases and runtimes
across one or more package repositories.`,
	SilenceUsage: true,
}

// Execute runs the command tree.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default $VPM_CONFIG or ~/.config/vpm/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&forceFlag, "force", "", "reinstall policy: always, never or prompt")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func initConfig() {
	logger = log.NewWithOptions(os.Stderr, log.Options{Prefix: "vpm"})
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}

	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		logger.Error("loading config", "err", err)
		cfg = config.Default()
	}
	if forceFlag != "" {
		cfg.Force = forceFlag
	}
}

// app is the wired object graph behind every command.
type app struct {
	cfg       *config.Config
	client    *repo.Client
	store     *pkgstore.Store
	resolver  *resolve.Resolver
	fetcher   *transport.Fetcher
	publisher *transport.Publisher
	orch      *install.Orchestrator
	manager   *manage.Manager
}

func newApp() *app {
	client := repo.New(repo.WithTimeout(cfg.Timeout()))
	store := pkgstore.New(cfg.InstallRoot)
	resolver := resolve.New(client)
	fetcher := transport.NewFetcher(client)
	installer := unpack.NewInstaller(store)
	orch := install.New(resolver, fetcher, installer, store, install.ConfirmFunc(promptConfirm))
	return &app{
		cfg:       cfg,
		client:    client,
		store:     store,
		resolver:  resolver,
		fetcher:   fetcher,
		publisher: transport.NewPublisher(client),
		orch:      orch,
		manager:   manage.New(resolver, store, orch, client),
	}
}

// options snapshots the configuration for one operation.
func (a *app) options() install.Options {
	return install.Options{
		Repos:  a.cfg.FetchRepos,
		Chain:  a.cfg.Chain(),
		System: vpm.LocalSystem(),
		Force:  a.cfg.ForcePolicy(),
	}
}

func (a *app) requireFetchRepos() error {
	if len(a.cfg.FetchRepos) == 0 {
		return fmt.Errorf("no fetch repositories configured, add one with: vpm repos add <url>")
	}
	return nil
}

// promptConfirm asks on the terminal whether an installed package should
// be overwritten.
func promptConfirm(ref vpm.Ref) bool {
	fmt.Printf("%s is already installed. Reinstall? [y/N] ", ref)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}

// parseRef turns command arguments into a Ref: either "name version" or a
// single "name" meaning latest.
func parseRef(kind vpm.Kind, args []string) vpm.Ref {
	ref := vpm.Ref{Kind: kind, Name: args[0]}
	if len(args) > 1 {
		ref.Version = args[1]
	}
	return ref
}
