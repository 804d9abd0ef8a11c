// Package vpm holds the shared domain model of the Vessel package manager:
// package references, repository compatibility tiers, the on-the-wire path
// convention, and the error taxonomy used across every subpackage.
//
// The operational pieces live in the subpackages:
//
//	version    total order over version strings
//	repo       single-repository HTTP client (list / fetch / describe / put)
//	transport  multi-repository fetch fan-out and publish replication
//	resolve    "which version is latest" across repositories and tiers
//	install    the install state machine
//	pkgstore   the on-disk install tree
//	unpack     archive extraction and package validation
//	manage     outdated / upgrade / search built on the above
//	config     the per-invocation configuration snapshot
//
// Basic usage:
//
//	cfg, err := config.Load("")
//	if err != nil {
//		log.Fatal(err)
//	}
//	client := repo.New(repo.WithTimeout(cfg.Timeout()))
//	r := resolve.New(client)
//	found, err := r.HighestRemoteVersion(ctx, cfg.FetchRepos, cfg.Chain(), vpm.KindApp, "stdlib")
package vpm

import (
	"fmt"
	"runtime"
)

// Kind classifies an installable package.
type Kind string

const (
	// KindApp is the smallest installable unit of library code.
	KindApp Kind = "app"
	// KindRelease is a bundle referencing specific app versions plus a
	// required runtime version, installed and activated as a whole.
	KindRelease Kind = "release"
	// KindRuntime is the Vessel runtime itself, versioned independently.
	KindRuntime Kind = "runtime"
)

// Side is the repository subtree a kind is published under.
type Side string

const (
	SideLib      Side = "lib"
	SideReleases Side = "releases"
)

// Side returns the repository subtree for the kind. Runtime archives live
// under their own platform-tagged tree, see ArchiveSuffix.
func (k Kind) Side() Side {
	if k == KindRelease {
		return SideReleases
	}
	return SideLib
}

// RuntimeName is the fixed package name of the runtime kind.
const RuntimeName = "runtime"

// Ref identifies a package for a single operation. A Ref with an empty
// Version means "latest"; it must be pinned by the resolver before it
// reaches the local install step.
type Ref struct {
	Kind    Kind
	Name    string
	Version string
}

// Pinned reports whether the Ref names an exact version.
func (r Ref) Pinned() bool { return r.Version != "" }

func (r Ref) String() string {
	if !r.Pinned() {
		return fmt.Sprintf("%s/%s", r.Kind, r.Name)
	}
	return fmt.Sprintf("%s/%s-%s", r.Kind, r.Name, r.Version)
}

// Installed is a package discovered in the local install tree.
type Installed struct {
	Kind    Kind
	Name    string
	Version string
}

// Tier is a runtime-version-scoped namespace within a repository. The
// generic tier holds platform- and runtime-independent packages.
type Tier string

// GenericTier is the platform-independent fallback tier present in every
// compatibility chain.
const GenericTier Tier = "Generic"

// Chain is the ordered tier fallback sequence for a query. It is a plain
// value passed into resolver and transport calls, never global state.
type Chain []Tier

// NewChain builds the fallback chain for a target runtime version: the
// exact version tier first, then the generic tier. An empty runtime
// version yields the generic tier alone.
func NewChain(runtimeVersion string) Chain {
	if runtimeVersion == "" {
		return Chain{GenericTier}
	}
	return Chain{Tier(runtimeVersion), GenericTier}
}

// SystemInfo identifies the platform a runtime archive is built for.
type SystemInfo struct {
	OS   string
	Arch string
}

// PlatformTag is the platform identifier used in runtime archive paths.
func (s SystemInfo) PlatformTag() string {
	return s.OS + "-" + s.Arch
}

// LocalSystem describes the running host.
func LocalSystem() SystemInfo {
	return SystemInfo{OS: runtime.GOOS, Arch: runtime.GOARCH}
}

// RuntimeChain is the tier fallback chain used for runtime packages: the
// host platform tag, then the generic tier.
func RuntimeChain(sys SystemInfo) Chain {
	return Chain{Tier(sys.PlatformTag()), GenericTier}
}

// ForcePolicy governs what happens when the target package is already
// installed.
type ForcePolicy string

const (
	// ForceAlways overwrites without asking.
	ForceAlways ForcePolicy = "always"
	// ForceNever silently skips the install.
	ForceNever ForcePolicy = "never"
	// ForcePrompt delegates the decision to a Confirmer.
	ForcePrompt ForcePolicy = "prompt"
)

// OutdatedReport names an installed package whose remote version is newer.
type OutdatedReport struct {
	Name   string
	Local  string
	Remote string
}
