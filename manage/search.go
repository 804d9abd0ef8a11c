package manage

import (
	"context"
	"regexp"
	"sort"
	"strings"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/install"
)

// Scope selects which repository sides a search covers.
type Scope int

const (
	// ScopeBoth searches apps and releases.
	ScopeBoth Scope = iota
	// ScopeLib searches apps only.
	ScopeLib
	// ScopeReleases searches releases only.
	ScopeReleases
)

func (s Scope) sides() []vpm.Side {
	switch s {
	case ScopeLib:
		return []vpm.Side{vpm.SideLib}
	case ScopeReleases:
		return []vpm.Side{vpm.SideReleases}
	}
	return []vpm.Side{vpm.SideLib, vpm.SideReleases}
}

// Matcher filters search results.
type Matcher func(name string) bool

// MatchAll keeps every name.
func MatchAll() Matcher {
	return func(string) bool { return true }
}

// MatchSubstring keeps names containing q.
func MatchSubstring(q string) Matcher {
	return func(name string) bool { return strings.Contains(name, q) }
}

// MatchPattern keeps names matching a regular expression.
func MatchPattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, err
	}
	return re.MatchString, nil
}

// Search aggregates the package names published on every repository and
// every tier of the chain for the requested sides, sorts them, drops the
// duplicates made adjacent by the sort, and filters with the matcher.
// Unreachable repositories and missing tiers are skipped, not fatal.
func (m *Manager) Search(ctx context.Context, scope Scope, match Matcher, opts install.Options) ([]string, error) {
	var names []string
	for _, side := range scope.sides() {
		for _, repoURL := range opts.Repos {
			for _, tier := range opts.Chain {
				entries, err := m.client.List(ctx, repoURL, vpm.SideSuffix(tier, side))
				if err != nil {
					continue
				}
				names = append(names, entries...)
			}
		}
	}

	sort.Strings(names)

	var out []string
	for _, n := range names {
		if len(out) > 0 && out[len(out)-1] == n {
			continue
		}
		if match == nil || match(n) {
			out = append(out, n)
		}
	}
	return out, nil
}
