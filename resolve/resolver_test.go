package resolve

import (
	"context"
	"errors"
	"fmt"
	"testing"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/version"
)

// fakeListClient maps "repo|suffix" to a scripted listing or error.
type fakeListClient struct {
	listings map[string][]string
	errs     map[string]error
	calls    int
}

func (f *fakeListClient) List(ctx context.Context, repoURL, suffix string) ([]string, error) {
	f.calls++
	key := repoURL + "|" + suffix
	if err, ok := f.errs[key]; ok {
		return nil, err
	}
	if l, ok := f.listings[key]; ok {
		return l, nil
	}
	return nil, fmt.Errorf("%s: %w", key, vpm.ErrNotFound)
}

func key(repo string, tier vpm.Tier, kind vpm.Kind, name string) string {
	return repo + "|" + vpm.ListSuffix(tier, kind, name)
}

func TestHighestRemoteVersionGlobalMaximum(t *testing.T) {
	client := &fakeListClient{listings: map[string][]string{
		key("http://r1", vpm.GenericTier, vpm.KindApp, "alpha"): {"1.0", "1.2"},
		key("http://r2", vpm.GenericTier, vpm.KindApp, "alpha"): {"1.1"},
	}}
	r := New(client)

	found, err := r.HighestRemoteVersion(context.Background(), []string{"http://r1", "http://r2"},
		vpm.Chain{vpm.GenericTier}, vpm.KindApp, "alpha")
	if err != nil {
		t.Fatalf("HighestRemoteVersion failed: %v", err)
	}
	if found.Repo != "http://r1" || found.Version != "1.2" {
		t.Errorf("found = %+v, want (http://r1, 1.2)", found)
	}
	// Global maximum requires scanning every repository, not stopping at
	// the first answer.
	if client.calls != 2 {
		t.Errorf("calls = %d, want 2", client.calls)
	}
}

func TestHighestRemoteVersionAcrossTiers(t *testing.T) {
	client := &fakeListClient{listings: map[string][]string{
		key("http://r1", vpm.Tier("7.0"), vpm.KindApp, "alpha"):  {"1.0"},
		key("http://r1", vpm.GenericTier, vpm.KindApp, "alpha"):  {"1.3"},
		key("http://r2", vpm.Tier("7.0"), vpm.KindApp, "alpha"):  {"1.1"},
	}}
	r := New(client)

	found, err := r.HighestRemoteVersion(context.Background(), []string{"http://r1", "http://r2"},
		vpm.NewChain("7.0"), vpm.KindApp, "alpha")
	if err != nil {
		t.Fatalf("HighestRemoteVersion failed: %v", err)
	}
	if found.Repo != "http://r1" || found.Version != "1.3" {
		t.Errorf("found = %+v, want (http://r1, 1.3)", found)
	}
}

func TestHighestRemoteVersionTieGoesToEarliestRepo(t *testing.T) {
	client := &fakeListClient{listings: map[string][]string{
		key("http://r1", vpm.GenericTier, vpm.KindApp, "alpha"): {"2.0"},
		key("http://r2", vpm.GenericTier, vpm.KindApp, "alpha"): {"2.0"},
	}}
	r := New(client)

	found, err := r.HighestRemoteVersion(context.Background(), []string{"http://r1", "http://r2"},
		vpm.Chain{vpm.GenericTier}, vpm.KindApp, "alpha")
	if err != nil {
		t.Fatalf("HighestRemoteVersion failed: %v", err)
	}
	if found.Repo != "http://r1" {
		t.Errorf("repo = %q, want http://r1 (earliest in list order)", found.Repo)
	}
}

func TestHighestRemoteVersionConnectionFailureAborts(t *testing.T) {
	client := &fakeListClient{
		listings: map[string][]string{
			key("http://r2", vpm.GenericTier, vpm.KindApp, "alpha"): {"1.0"},
		},
		errs: map[string]error{
			key("http://r1", vpm.GenericTier, vpm.KindApp, "alpha"): fmt.Errorf("r1: %w", vpm.ErrConnectionFailed),
		},
	}
	r := New(client)

	_, err := r.HighestRemoteVersion(context.Background(), []string{"http://r1", "http://r2"},
		vpm.Chain{vpm.GenericTier}, vpm.KindApp, "alpha")
	if !errors.Is(err, vpm.ErrConnectionFailed) {
		t.Errorf("err = %v, want ErrConnectionFailed (a partial outage must not look like not-found)", err)
	}
}

func TestHighestRemoteVersionNotFound(t *testing.T) {
	client := &fakeListClient{}
	r := New(client)

	_, err := r.HighestRemoteVersion(context.Background(), []string{"http://r1"},
		vpm.NewChain("7.0"), vpm.KindApp, "ghost")
	if !errors.Is(err, vpm.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestHighestRemoteVersionSkipsNonVersionEntries(t *testing.T) {
	client := &fakeListClient{listings: map[string][]string{
		key("http://r1", vpm.GenericTier, vpm.KindApp, "alpha"): {"index.html", "1.0", "latest?sort=1", "1.2"},
	}}
	r := New(client)

	found, err := r.HighestRemoteVersion(context.Background(), []string{"http://r1"},
		vpm.Chain{vpm.GenericTier}, vpm.KindApp, "alpha")
	if err != nil {
		t.Fatalf("HighestRemoteVersion failed: %v", err)
	}
	if found.Version != "1.2" {
		t.Errorf("version = %q, want 1.2", found.Version)
	}
}

func TestHighestRemoteVersionRuntimeUsesFixedName(t *testing.T) {
	sys := vpm.SystemInfo{OS: "linux", Arch: "amd64"}
	client := &fakeListClient{listings: map[string][]string{
		"http://r1|" + vpm.ListSuffix(vpm.Tier(sys.PlatformTag()), vpm.KindRuntime, vpm.RuntimeName): {"7.0", "7.1"},
	}}
	r := New(client)

	found, err := r.HighestRemoteVersion(context.Background(), []string{"http://r1"},
		vpm.RuntimeChain(sys), vpm.KindRuntime, "ignored")
	if err != nil {
		t.Fatalf("HighestRemoteVersion failed: %v", err)
	}
	if found.Version != "7.1" {
		t.Errorf("version = %q, want 7.1", found.Version)
	}
}

func TestIsOutdated(t *testing.T) {
	r := New(&fakeListClient{})
	if got := r.IsOutdated("1.0", "1.2"); got != version.Lower {
		t.Errorf("IsOutdated(1.0, 1.2) = %v, want Lower", got)
	}
	if got := r.IsOutdated("1.2", "1.0"); got != version.Higher {
		t.Errorf("IsOutdated(1.2, 1.0) = %v, want Higher", got)
	}
	if got := r.IsOutdated("1.0", "1.0"); got != version.Same {
		t.Errorf("IsOutdated(1.0, 1.0) = %v, want Same", got)
	}
}
