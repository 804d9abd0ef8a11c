// Package pkgstore manages the on-disk install tree:
//
//	<root>/lib/<name>-<version>/         installed apps
//	<root>/releases/<name>/<version>/    installed releases
//	<root>/runtimes/runtime-<version>/   installed runtimes
//
// Every query reads the disk live; nothing is cached between calls. The
// tree assumes a single writer: concurrent installs into the same root are
// not supported.
package pkgstore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/version"
)

// Store is an install tree rooted at a directory.
type Store struct {
	root string
}

// New creates a Store rooted at root. The directory does not have to
// exist yet.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the install tree root.
func (s *Store) Root() string { return s.root }

// Dir returns the install directory of an exact (kind, name, version).
func (s *Store) Dir(kind vpm.Kind, name, version string) string {
	switch kind {
	case vpm.KindRelease:
		return filepath.Join(s.root, "releases", name, version)
	case vpm.KindRuntime:
		return filepath.Join(s.root, "runtimes", fmt.Sprintf("%s-%s", vpm.RuntimeName, version))
	}
	return filepath.Join(s.root, "lib", fmt.Sprintf("%s-%s", name, version))
}

// IsInstalled reports whether the exact (kind, name, version) is present.
func (s *Store) IsInstalled(kind vpm.Kind, name, version string) bool {
	info, err := os.Stat(s.Dir(kind, name, version))
	return err == nil && info.IsDir()
}

// ListInstalled enumerates the installed packages of a kind, sorted by
// name then version.
func (s *Store) ListInstalled(kind vpm.Kind) ([]vpm.Installed, error) {
	var installed []vpm.Installed

	switch kind {
	case vpm.KindRelease:
		names, err := readDirNames(filepath.Join(s.root, "releases"))
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			versions, err := readDirNames(filepath.Join(s.root, "releases", name))
			if err != nil {
				return nil, err
			}
			for _, v := range versions {
				installed = append(installed, vpm.Installed{Kind: kind, Name: name, Version: v})
			}
		}
	case vpm.KindRuntime:
		entries, err := readDirNames(filepath.Join(s.root, "runtimes"))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			name, v, ok := vpm.SplitNameVersion(e)
			if !ok || name != vpm.RuntimeName {
				continue
			}
			installed = append(installed, vpm.Installed{Kind: kind, Name: name, Version: v})
		}
	default:
		entries, err := readDirNames(filepath.Join(s.root, "lib"))
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			name, v, ok := vpm.SplitNameVersion(e)
			if !ok {
				continue
			}
			installed = append(installed, vpm.Installed{Kind: vpm.KindApp, Name: name, Version: v})
		}
	}

	sort.Slice(installed, func(i, j int) bool {
		if installed[i].Name != installed[j].Name {
			return installed[i].Name < installed[j].Name
		}
		return version.Compare(installed[i].Version, installed[j].Version) < 0
	})
	return installed, nil
}

// Remove deletes an installed package directory.
func (s *Store) Remove(kind vpm.Kind, name, version string) error {
	dir := s.Dir(kind, name, version)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("%s %s-%s: %w", kind, name, version, vpm.ErrNotFound)
	}
	return os.RemoveAll(dir)
}

// DeleteDir removes a directory tree, typically a fetch scratch directory.
func (s *Store) DeleteDir(path string) error {
	return os.RemoveAll(path)
}

// Adopt moves a validated package directory into its place in the tree,
// replacing any previous install of the same (kind, name, version).
func (s *Store) Adopt(kind vpm.Kind, name, version, srcDir string) error {
	dest := s.Dir(kind, name, version)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("replacing %s: %w", dest, err)
	}
	if err := os.Rename(srcDir, dest); err != nil {
		// Rename fails across filesystems; fall back to a copy.
		if copyErr := copyTree(srcDir, dest); copyErr != nil {
			return fmt.Errorf("installing %s: %w", dest, copyErr)
		}
		_ = os.RemoveAll(srcDir)
	}
	return nil
}

func readDirNames(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
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
