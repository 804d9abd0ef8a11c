// Package manage builds the bulk operations on top of the resolver, the
// transports and the install orchestrator: outdated reports, single and
// bulk upgrades, removal, metadata lookup, and cross-repository search.
package manage

import (
	"context"
	"errors"
	"fmt"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/install"
	"github.com/vessel-lang/vpm/resolve"
	"github.com/vessel-lang/vpm/version"
)

// Resolver pins latest versions across repositories and tiers.
type Resolver interface {
	HighestRemoteVersion(ctx context.Context, repos []string, chain vpm.Chain, kind vpm.Kind, name string) (resolve.Found, error)
}

// InstallRunner runs the install state machine.
type InstallRunner interface {
	InstallRef(ctx context.Context, ref vpm.Ref, opts install.Options) error
}

// Store is the live view of the install tree.
type Store interface {
	ListInstalled(kind vpm.Kind) ([]vpm.Installed, error)
	Remove(kind vpm.Kind, name, version string) error
}

// Client is the single-repository read client used for search and
// metadata lookup.
type Client interface {
	List(ctx context.Context, repoURL, suffix string) ([]string, error)
	Describe(ctx context.Context, repoURL, suffix string) (string, error)
}

// Manager wires the bulk operations together.
type Manager struct {
	resolver Resolver
	store    Store
	installs InstallRunner
	client   Client
}

// New creates a Manager.
func New(resolver Resolver, store Store, installs InstallRunner, client Client) *Manager {
	return &Manager{
		resolver: resolver,
		store:    store,
		installs: installs,
		client:   client,
	}
}

// chainFor picks the tier chain for a kind: runtime packages always use
// the platform chain.
func chainFor(kind vpm.Kind, opts install.Options) vpm.Chain {
	if kind == vpm.KindRuntime {
		return vpm.RuntimeChain(opts.System)
	}
	return opts.Chain
}

// OutdatedSet reports every installed package of kind whose highest
// remote version is newer than the highest installed one. The scan is
// best effort: a resolution failure for one package skips that package,
// it never aborts the report.
func (m *Manager) OutdatedSet(ctx context.Context, kind vpm.Kind, opts install.Options) ([]vpm.OutdatedReport, error) {
	locals, err := m.localMaxima(kind)
	if err != nil {
		return nil, err
	}

	var reports []vpm.OutdatedReport
	for _, local := range locals {
		found, err := m.resolver.HighestRemoteVersion(ctx, opts.Repos, chainFor(kind, opts), kind, local.Name)
		if err != nil {
			continue
		}
		if version.Outdated(local.Version, found.Version) == version.Lower {
			reports = append(reports, vpm.OutdatedReport{
				Name:   local.Name,
				Local:  local.Version,
				Remote: found.Version,
			})
		}
	}
	return reports, nil
}

// UpgradeResult describes the outcome of a single upgrade.
type UpgradeResult struct {
	Name string
	From string
	To   string
	// Upgraded is false when the package was already up to date.
	Upgraded bool
}

// Upgrade brings one installed package of kind up to the highest remote
// version. Resolution errors propagate; an up-to-date package is a no-op.
func (m *Manager) Upgrade(ctx context.Context, kind vpm.Kind, name string, opts install.Options) (UpgradeResult, error) {
	if kind == vpm.KindRuntime {
		name = vpm.RuntimeName
	}

	local, ok, err := m.localMax(kind, name)
	if err != nil {
		return UpgradeResult{}, err
	}
	if !ok {
		return UpgradeResult{}, fmt.Errorf("%s %s is not installed", kind, name)
	}

	found, err := m.resolver.HighestRemoteVersion(ctx, opts.Repos, chainFor(kind, opts), kind, name)
	if err != nil {
		return UpgradeResult{}, err
	}

	result := UpgradeResult{Name: name, From: local, To: found.Version}
	if version.Outdated(local, found.Version) != version.Lower {
		return result, nil
	}

	ref := vpm.Ref{Kind: kind, Name: name, Version: found.Version}
	if err := m.installs.InstallRef(ctx, ref, opts); err != nil {
		return UpgradeResult{}, err
	}
	result.Upgraded = true
	return result, nil
}

// UpgradeReport is one entry of a bulk upgrade.
type UpgradeReport struct {
	UpgradeResult
	Err error
}

// UpgradeAll upgrades every installed package of kind sequentially,
// continuing past individual failures.
func (m *Manager) UpgradeAll(ctx context.Context, kind vpm.Kind, opts install.Options) ([]UpgradeReport, error) {
	locals, err := m.localMaxima(kind)
	if err != nil {
		return nil, err
	}

	var reports []UpgradeReport
	for _, local := range locals {
		res, err := m.Upgrade(ctx, kind, local.Name, opts)
		if err != nil {
			reports = append(reports, UpgradeReport{UpgradeResult: UpgradeResult{Name: local.Name, From: local.Version}, Err: err})
			continue
		}
		reports = append(reports, UpgradeReport{UpgradeResult: res})
	}
	return reports, nil
}

// Remove deletes an installed package.
func (m *Manager) Remove(kind vpm.Kind, name, version string) error {
	return m.store.Remove(kind, name, version)
}

// Installed lists the installed packages of a kind.
func (m *Manager) Installed(kind vpm.Kind) ([]vpm.Installed, error) {
	return m.store.ListInstalled(kind)
}

// Describe fetches the metadata document of a package, trying every
// repository and tier until one answers. An unpinned version is resolved
// first.
func (m *Manager) Describe(ctx context.Context, kind vpm.Kind, name, ver string, opts install.Options) (string, error) {
	if kind == vpm.KindRuntime {
		name = vpm.RuntimeName
	}
	chain := chainFor(kind, opts)

	if ver == "" {
		found, err := m.resolver.HighestRemoteVersion(ctx, opts.Repos, chain, kind, name)
		if err != nil {
			return "", err
		}
		ver = found.Version
	}

	for _, tier := range chain {
		for _, repoURL := range opts.Repos {
			meta, err := m.client.Describe(ctx, repoURL, vpm.DescribeSuffix(tier, kind, name, ver))
			if err == nil {
				return meta, nil
			}
			if !errors.Is(err, vpm.ErrNotFound) && !errors.Is(err, vpm.ErrConnectionFailed) {
				return "", err
			}
		}
	}
	return "", &vpm.NotFoundError{Kind: kind, Name: name, Version: ver}
}

// localMaxima returns the highest installed version per package name, in
// name order.
func (m *Manager) localMaxima(kind vpm.Kind) ([]vpm.Installed, error) {
	installed, err := m.store.ListInstalled(kind)
	if err != nil {
		return nil, err
	}

	var out []vpm.Installed
	for _, p := range installed {
		if n := len(out); n > 0 && out[n-1].Name == p.Name {
			if version.Compare(p.Version, out[n-1].Version) > 0 {
				out[n-1].Version = p.Version
			}
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *Manager) localMax(kind vpm.Kind, name string) (string, bool, error) {
	locals, err := m.localMaxima(kind)
	if err != nil {
		return "", false, err
	}
	for _, p := range locals {
		if p.Name == name {
			return p.Version, true, nil
		}
	}
	return "", false, nil
}
