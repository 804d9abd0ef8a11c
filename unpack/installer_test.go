package unpack

import (
	"archive/tar"
	"compress/gzip"
	"os"
	"path/filepath"
	"testing"

	vpm "github.com/vessel-lang/vpm"
	"github.com/vessel-lang/vpm/install"
	"github.com/vessel-lang/vpm/pkgstore"
)

// writeTarGz builds a .tar.gz archive at path from name->content entries.
// Entries ending in "/" become directories.
func writeTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	tw := tar.NewWriter(gz)
	for name, content := range entries {
		if name[len(name)-1] == '/' {
			if err := tw.WriteHeader(&tar.Header{Name: name, Typeflag: tar.TypeDir, Mode: 0o755}); err != nil {
				t.Fatal(err)
			}
			continue
		}
		hdr := &tar.Header{Name: name, Mode: 0o644, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestInstallAppFromArchive(t *testing.T) {
	store := pkgstore.New(t.TempDir())
	in := NewInstaller(store)

	archive := filepath.Join(t.TempDir(), "alpha-1.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"alpha-1.0/":       "",
		"alpha-1.0/mod.vs": "module alpha",
	})

	res, err := in.InstallApp(archive)
	if err != nil {
		t.Fatalf("InstallApp failed: %v", err)
	}
	if res.Status != install.StatusOK {
		t.Fatalf("status = %v (%s), want ok", res.Status, res.Reason)
	}
	if !store.IsInstalled(vpm.KindApp, "alpha", "1.0") {
		t.Error("alpha-1.0 not in store after install")
	}
	data, err := os.ReadFile(filepath.Join(store.Dir(vpm.KindApp, "alpha", "1.0"), "mod.vs"))
	if err != nil || string(data) != "module alpha" {
		t.Errorf("installed content = %q, %v", data, err)
	}
}

func TestInstallAppFromDirectoryKeepsSource(t *testing.T) {
	store := pkgstore.New(t.TempDir())
	in := NewInstaller(store)

	src := filepath.Join(t.TempDir(), "alpha-1.0")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(src, "mod.vs"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	res, err := in.InstallApp(src)
	if err != nil {
		t.Fatalf("InstallApp failed: %v", err)
	}
	if res.Status != install.StatusOK {
		t.Fatalf("status = %v, want ok", res.Status)
	}
	if _, err := os.Stat(src); err != nil {
		t.Error("source directory was moved away, want it left in place")
	}
}

func TestInstallAppBadDirectoryName(t *testing.T) {
	store := pkgstore.New(t.TempDir())
	in := NewInstaller(store)

	archive := filepath.Join(t.TempDir(), "alpha-1.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"noversion/":     "",
		"noversion/f.vs": "x",
	})

	res, err := in.InstallApp(archive)
	if err != nil {
		t.Fatalf("InstallApp failed: %v", err)
	}
	if res.Status != install.StatusMalformed {
		t.Errorf("status = %v, want malformed", res.Status)
	}
}

func releaseArchive(t *testing.T, dir string, manifest string) string {
	t.Helper()
	archive := filepath.Join(dir, "web-2.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"web-2.0/":             "",
		"web-2.0/release.yaml": manifest,
	})
	return archive
}

const webManifest = `name: web
version: "2.0"
runtime: "7.0"
apps:
  - name: alpha
    version: "1.0"
  - name: beta
    version: "2.1"
`

func TestInstallReleaseReportsMissingPieces(t *testing.T) {
	root := t.TempDir()
	store := pkgstore.New(root)
	in := NewInstaller(store)
	archive := releaseArchive(t, t.TempDir(), webManifest)

	// Nothing installed: both apps are missing.
	res, err := in.InstallRelease(archive)
	if err != nil {
		t.Fatalf("InstallRelease failed: %v", err)
	}
	if res.Status != install.StatusMissingApps {
		t.Fatalf("status = %v, want missing apps", res.Status)
	}
	if len(res.MissingApps) != 2 {
		t.Fatalf("missing = %v, want alpha-1.0 and beta-2.1", res.MissingApps)
	}

	// Apps present, runtime still missing.
	seedDir(t, root, "lib/alpha-1.0")
	seedDir(t, root, "lib/beta-2.1")
	res, err = in.InstallRelease(archive)
	if err != nil {
		t.Fatalf("InstallRelease failed: %v", err)
	}
	if res.Status != install.StatusMissingRuntime || res.MissingRuntime != "7.0" {
		t.Fatalf("status = %v runtime = %q, want missing runtime 7.0", res.Status, res.MissingRuntime)
	}

	// Everything present: the release is installed.
	seedDir(t, root, "runtimes/runtime-7.0")
	res, err = in.InstallRelease(archive)
	if err != nil {
		t.Fatalf("InstallRelease failed: %v", err)
	}
	if res.Status != install.StatusOK {
		t.Fatalf("status = %v (%s), want ok", res.Status, res.Reason)
	}
	if !store.IsInstalled(vpm.KindRelease, "web", "2.0") {
		t.Error("web-2.0 not in store")
	}
}

func TestInstallReleaseWithoutManifest(t *testing.T) {
	store := pkgstore.New(t.TempDir())
	in := NewInstaller(store)

	archive := filepath.Join(t.TempDir(), "web-2.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"web-2.0/":      "",
		"web-2.0/f.txt": "x",
	})

	res, err := in.InstallRelease(archive)
	if err != nil {
		t.Fatalf("InstallRelease failed: %v", err)
	}
	if res.Status != install.StatusMalformed {
		t.Errorf("status = %v, want malformed", res.Status)
	}
}

func TestInstallRuntime(t *testing.T) {
	store := pkgstore.New(t.TempDir())
	in := NewInstaller(store)

	archive := filepath.Join(t.TempDir(), "runtime-7.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"runtime-7.0/":    "",
		"runtime-7.0/bin": "vesselvm",
	})

	res, err := in.InstallRuntime(archive)
	if err != nil {
		t.Fatalf("InstallRuntime failed: %v", err)
	}
	if res.Status != install.StatusOK {
		t.Fatalf("status = %v (%s), want ok", res.Status, res.Reason)
	}
	if !store.IsInstalled(vpm.KindRuntime, vpm.RuntimeName, "7.0") {
		t.Error("runtime-7.0 not in store")
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "evil-1.0.tar.gz")
	writeTarGz(t, archive, map[string]string{
		"../outside": "evil",
	})

	if err := Extract(archive, t.TempDir()); err == nil {
		t.Error("expected traversal entry to be rejected")
	}
}

func seedDir(t *testing.T, root, rel string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Join(root, rel), 0o755); err != nil {
		t.Fatal(err)
	}
}
