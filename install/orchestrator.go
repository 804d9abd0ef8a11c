// Package install drives the install state machine: pin the version,
// check the local tree, fetch with repository fallback, delegate to the
// local installer, and recover from missing dependencies or a missing
// runtime by installing them and retrying.
package install

import (
	"context"
	"fmt"
	"os"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/version"
)

// Options is the immutable per-operation configuration snapshot. The
// orchestrator never reads ambient global state.
type Options struct {
	// Repos is the fetch fallback order.
	Repos []string
	// Chain is the compatibility tier fallback for app and release
	// packages. Runtime packages always use the platform chain derived
	// from System.
	Chain vpm.Chain
	// System identifies the host platform for runtime archives.
	System vpm.SystemInfo
	// Force governs reinstalls of already-present packages.
	Force vpm.ForcePolicy
	// MaxAttempts bounds the missing-dependency retry loop. Zero keeps
	// the reference behavior: retry without bound.
	MaxAttempts int
}

// Orchestrator wires the resolver, the fan-out fetcher, the local
// installer and the install tree into the install state machine.
type Orchestrator struct {
	resolver  Resolver
	fetcher   Fetcher
	installer Installer
	store     Store
	confirm   Confirmer
}

// New creates an Orchestrator. confirm may be nil when the force policy
// never prompts.
func New(resolver Resolver, fetcher Fetcher, installer Installer, store Store, confirm Confirmer) *Orchestrator {
	return &Orchestrator{
		resolver:  resolver,
		fetcher:   fetcher,
		installer: installer,
		store:     store,
		confirm:   confirm,
	}
}

// InstallRef resolves, fetches and installs a remote package. An unpinned
// ref is pinned by the resolver first; a pinned ref that is already
// installed is subject to the force policy.
func (o *Orchestrator) InstallRef(ctx context.Context, ref vpm.Ref, opts Options) error {
	if ref.Kind == vpm.KindRuntime {
		ref.Name = vpm.RuntimeName
	}

	chain := opts.Chain
	if ref.Kind == vpm.KindRuntime {
		chain = vpm.RuntimeChain(opts.System)
	}

	if ref.Pinned() && !version.IsValid(ref.Version) {
		return fmt.Errorf("%s: %q: %w", ref.Name, ref.Version, vpm.ErrInvalidVersion)
	}
	if !ref.Pinned() {
		found, err := o.resolver.HighestRemoteVersion(ctx, opts.Repos, chain, ref.Kind, ref.Name)
		if err != nil {
			return err
		}
		ref.Version = found.Version
	}

	if o.store.IsInstalled(ref.Kind, ref.Name, ref.Version) {
		switch opts.Force {
		case vpm.ForceNever:
			return nil
		case vpm.ForcePrompt:
			if o.confirm == nil || !o.confirm.Confirm(ref) {
				return nil
			}
		}
	}

	scratch, err := os.MkdirTemp("", "vpm-fetch-*")
	if err != nil {
		return fmt.Errorf("allocating scratch directory: %w", err)
	}

	suffix := func(tier vpm.Tier) string {
		return vpm.ArchiveSuffix(tier, ref.Kind, ref.Name, ref.Version)
	}
	local, err := o.fetcher.Fetch(ctx, opts.Repos, chain, suffix, scratch)
	if err != nil {
		_ = o.store.DeleteDir(scratch)
		return err
	}

	return o.installLocal(ctx, ref.Kind, local, scratch, opts)
}

// InstallPath installs a package from a local archive or directory,
// skipping resolution and fetch. Missing release dependencies are still
// resolved remotely.
func (o *Orchestrator) InstallPath(ctx context.Context, kind vpm.Kind, path string, opts Options) error {
	return o.installLocal(ctx, kind, path, "", opts)
}

// installLocal runs the InstallLocal state, re-entering on the same path
// after recoverable failures. scratch is deleted on success and kept on
// terminal failure for diagnosis; it is empty when the package came from
// a local path.
func (o *Orchestrator) installLocal(ctx context.Context, kind vpm.Kind, path, scratch string, opts Options) error {
	attempts := 0
	for {
		result, err := o.installStep(kind, path)
		if err != nil {
			return err
		}

		switch result.Status {
		case StatusOK:
			if scratch != "" {
				if err := o.store.DeleteDir(scratch); err != nil {
					return fmt.Errorf("removing scratch directory: %w", err)
				}
			}
			return nil

		case StatusMissingApps:
			if kind != vpm.KindRelease {
				return fmt.Errorf("%s reported missing dependencies: %w", kind, vpm.ErrMalformedPackage)
			}
			for _, dep := range result.MissingApps {
				dep.Kind = vpm.KindApp
				if err := o.InstallRef(ctx, dep, opts); err != nil {
					return fmt.Errorf("installing dependency %s: %w", dep, err)
				}
			}

		case StatusMissingRuntime:
			if kind != vpm.KindRelease {
				return fmt.Errorf("%s reported missing runtime: %w", kind, vpm.ErrMalformedPackage)
			}
			runtimeRef := vpm.Ref{Kind: vpm.KindRuntime, Name: vpm.RuntimeName, Version: result.MissingRuntime}
			if err := o.InstallRef(ctx, runtimeRef, opts); err != nil {
				return fmt.Errorf("installing runtime %s: %w", result.MissingRuntime, err)
			}

		default:
			return fmt.Errorf("%s: %s: %w", path, result.Reason, vpm.ErrMalformedPackage)
		}

		// Re-enter InstallLocal on the same path; no refetch. Unbounded
		// unless the caller set a bound.
		attempts++
		if opts.MaxAttempts > 0 && attempts >= opts.MaxAttempts {
			return fmt.Errorf("install of %s did not converge after %d attempts", path, attempts)
		}
	}
}

func (o *Orchestrator) installStep(kind vpm.Kind, path string) (Result, error) {
	switch kind {
	case vpm.KindRelease:
		return o.installer.InstallRelease(path)
	case vpm.KindRuntime:
		return o.installer.InstallRuntime(path)
	}
	return o.installer.InstallApp(path)
}
