package unpack

import (
	"fmt"
	"os"
	"path/filepath"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/install"
	"github.com/vessel-lang/vpm/pkgstore"
)

// Installer validates local packages and places them into a store. It
// implements install.Installer.
type Installer struct {
	store *pkgstore.Store
}

// NewInstaller creates an Installer over an install tree.
func NewInstaller(store *pkgstore.Store) *Installer {
	return &Installer{store: store}
}

// InstallApp installs an app archive or directory.
func (in *Installer) InstallApp(path string) (install.Result, error) {
	dir, cleanup, err := in.materialize(path)
	if err != nil {
		return install.Result{}, err
	}
	defer cleanup()

	name, version, ok := vpm.SplitNameVersion(filepath.Base(dir))
	if !ok {
		return malformed("app directory must be named <name>-<version>, got %s", filepath.Base(dir)), nil
	}
	if empty, err := isEmptyDir(dir); err != nil {
		return install.Result{}, err
	} else if empty {
		return malformed("app %s-%s has no content", name, version), nil
	}

	if err := in.store.Adopt(vpm.KindApp, name, version, dir); err != nil {
		return install.Result{}, err
	}
	return install.Result{Status: install.StatusOK}, nil
}

// InstallRelease installs a release archive or directory. When the
// manifest references apps or a runtime that are not installed yet, the
// corresponding missing-* result is returned and nothing is placed into
// the tree; the caller installs the missing pieces and calls again with
// the same path.
func (in *Installer) InstallRelease(path string) (install.Result, error) {
	dir, cleanup, err := in.materialize(path)
	if err != nil {
		return install.Result{}, err
	}
	defer cleanup()

	manifestPath := filepath.Join(dir, ManifestFile)
	if _, statErr := os.Stat(manifestPath); statErr != nil {
		return malformed("release has no %s", ManifestFile), nil
	}
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return malformed("invalid release manifest: %v", err), nil
	}

	var missing []vpm.Ref
	for _, dep := range m.Apps {
		if !in.store.IsInstalled(vpm.KindApp, dep.Name, dep.Version) {
			missing = append(missing, vpm.Ref{Kind: vpm.KindApp, Name: dep.Name, Version: dep.Version})
		}
	}
	if len(missing) > 0 {
		return install.Result{Status: install.StatusMissingApps, MissingApps: missing}, nil
	}

	if m.Runtime != "" && !in.store.IsInstalled(vpm.KindRuntime, vpm.RuntimeName, m.Runtime) {
		return install.Result{Status: install.StatusMissingRuntime, MissingRuntime: m.Runtime}, nil
	}

	if err := in.store.Adopt(vpm.KindRelease, m.Name, m.Version, dir); err != nil {
		return install.Result{}, err
	}
	return install.Result{Status: install.StatusOK}, nil
}

// InstallRuntime installs a runtime archive or directory.
func (in *Installer) InstallRuntime(path string) (install.Result, error) {
	dir, cleanup, err := in.materialize(path)
	if err != nil {
		return install.Result{}, err
	}
	defer cleanup()

	name, version, ok := vpm.SplitNameVersion(filepath.Base(dir))
	if !ok || name != vpm.RuntimeName {
		return malformed("runtime directory must be named %s-<version>, got %s", vpm.RuntimeName, filepath.Base(dir)), nil
	}

	if err := in.store.Adopt(vpm.KindRuntime, name, version, dir); err != nil {
		return install.Result{}, err
	}
	return install.Result{Status: install.StatusOK}, nil
}

// materialize turns path into a package directory inside a scratch
// directory: archives are extracted, plain directories are copied so the
// caller's directory is never moved into the tree. The cleanup removes
// the scratch.
func (in *Installer) materialize(path string) (dir string, cleanup func(), err error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	if info.IsDir() {
		scratch, err := os.MkdirTemp("", "vpm-unpack-*")
		if err != nil {
			return "", nil, err
		}
		cleanup = func() { _ = os.RemoveAll(scratch) }
		staged := filepath.Join(scratch, filepath.Base(filepath.Clean(path)))
		if err := copyTree(path, staged); err != nil {
			cleanup()
			return "", nil, err
		}
		return staged, cleanup, nil
	}
	if !IsArchive(path) {
		return "", nil, fmt.Errorf("%s: %w", path, vpm.ErrMalformedPackage)
	}

	scratch, err := os.MkdirTemp("", "vpm-unpack-*")
	if err != nil {
		return "", nil, err
	}
	cleanup = func() { _ = os.RemoveAll(scratch) }

	if err := Extract(path, scratch); err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%s: %v: %w", path, err, vpm.ErrMalformedPackage)
	}

	top, err := singleTopDir(scratch)
	if err != nil {
		cleanup()
		return "", nil, fmt.Errorf("%s: %v: %w", path, err, vpm.ErrMalformedPackage)
	}
	return top, cleanup, nil
}

// singleTopDir expects exactly one top-level directory in an extracted
// archive and returns it.
func singleTopDir(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var dirs []string
	for _, e := range entries {
		if e.IsDir() {
			dirs = append(dirs, e.Name())
		}
	}
	if len(dirs) != 1 {
		return "", fmt.Errorf("expected one top-level directory, found %d", len(dirs))
	}
	return filepath.Join(dir, dirs[0]), nil
}

func isEmptyDir(dir string) (bool, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return false, err
	}
	return len(entries) == 0, nil
}

func malformed(format string, args ...any) install.Result {
	return install.Result{Status: install.StatusMalformed, Reason: fmt.Sprintf(format, args...)}
}

func copyTree(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, info.Mode().Perm())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(target, data, info.Mode().Perm())
	})
}
