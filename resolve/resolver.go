// Package resolve answers "which version of this package is latest" across
// every configured repository and compatibility tier.
package resolve

import (
	"context"
	"errors"
	"fmt"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/version"
)

// ListClient is the single-repository listing client.
type ListClient interface {
	List(ctx context.Context, repoURL, suffix string) ([]string, error)
}

// Found is the winning (repository, version) pair of a resolution.
type Found struct {
	Repo    string
	Version string
}

// Resolver computes latest versions and outdated status.
type Resolver struct {
	client ListClient
}

// New creates a Resolver over a listing client.
func New(client ListClient) *Resolver {
	return &Resolver{client: client}
}

// HighestRemoteVersion returns the globally highest version of a package
// across every repository and every tier of the chain, not the first
// answer. Ties go to the earliest repository in list order.
//
// A connection failure on any repository aborts the whole query: a partial
// outage must not be reported as "not found".
func (r *Resolver) HighestRemoteVersion(ctx context.Context, repos []string, chain vpm.Chain, kind vpm.Kind, name string) (Found, error) {
	if kind == vpm.KindRuntime {
		name = vpm.RuntimeName
	}

	var best Found
	for _, repoURL := range repos {
		for _, tier := range chain {
			entries, err := r.client.List(ctx, repoURL, vpm.ListSuffix(tier, kind, name))
			if errors.Is(err, vpm.ErrNotFound) {
				continue
			}
			if err != nil {
				return Found{}, fmt.Errorf("resolving %s %s: %w", kind, name, &vpm.RepoError{Repo: repoURL, Err: err})
			}
			for _, e := range entries {
				if !version.IsValid(e) {
					continue
				}
				if best.Version == "" || version.Compare(e, best.Version) > 0 {
					best = Found{Repo: repoURL, Version: e}
				}
			}
		}
	}

	if best.Version == "" {
		return Found{}, &vpm.NotFoundError{Kind: kind, Name: name}
	}
	return best, nil
}

// IsOutdated relates an installed version to a remote one through the
// shared comparator.
func (r *Resolver) IsOutdated(local, remote string) version.Status {
	return version.Outdated(local, remote)
}
