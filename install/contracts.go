package install

import (
	"context"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/resolve"
)

// Status discriminates the outcome of a local install step. The
// orchestrator switches on it instead of catching faults.
type Status int

const (
	// StatusOK means the package was installed into the local tree.
	StatusOK Status = iota
	// StatusMissingApps means a release references apps that are not
	// installed yet. Recoverable: the orchestrator installs them and
	// retries.
	StatusMissingApps
	// StatusMissingRuntime means a release requires a runtime version
	// that is not installed yet. Recoverable like StatusMissingApps.
	StatusMissingRuntime
	// StatusMalformed means the archive or directory is not a valid
	// package. Terminal.
	StatusMalformed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusMissingApps:
		return "missing dependencies"
	case StatusMissingRuntime:
		return "missing runtime"
	}
	return "malformed package"
}

// Result is the discriminated outcome of a local install step.
type Result struct {
	Status Status
	// MissingApps holds pinned app refs when Status is StatusMissingApps.
	MissingApps []vpm.Ref
	// MissingRuntime holds the required runtime version when Status is
	// StatusMissingRuntime.
	MissingRuntime string
	// Reason describes what was malformed when Status is StatusMalformed.
	Reason string
}

// Installer validates and places a local package into the install tree.
// The path may be an archive file or an unpacked directory.
type Installer interface {
	InstallApp(path string) (Result, error)
	InstallRelease(path string) (Result, error)
	InstallRuntime(path string) (Result, error)
}

// Store is the live view of the local install tree.
type Store interface {
	IsInstalled(kind vpm.Kind, name, version string) bool
	ListInstalled(kind vpm.Kind) ([]vpm.Installed, error)
	DeleteDir(path string) error
}

// Confirmer decides whether an already-installed package should be
// overwritten when the force policy is ForcePrompt.
type Confirmer interface {
	Confirm(ref vpm.Ref) bool
}

// ConfirmFunc adapts a function to the Confirmer interface.
type ConfirmFunc func(ref vpm.Ref) bool

func (f ConfirmFunc) Confirm(ref vpm.Ref) bool { return f(ref) }

// Resolver pins "latest" refs to concrete versions.
type Resolver interface {
	HighestRemoteVersion(ctx context.Context, repos []string, chain vpm.Chain, kind vpm.Kind, name string) (resolve.Found, error)
}

// Fetcher retrieves a package archive with multi-repository fallback.
type Fetcher interface {
	Fetch(ctx context.Context, repos []string, chain vpm.Chain, suffix func(vpm.Tier) string, destDir string) (string, error)
}
