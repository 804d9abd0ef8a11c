package vpm

import (
	"fmt"
	"strings"
)

// The repository path convention is stable across implementations so that
// independently written clients and mirrors interoperate:
//
//	<tier>/<side>/<name>/<version>/<name>-<version><ext>
//
// Runtime archives live under their own platform-tagged tree instead of a
// runtime-version tier:
//
//	runtimes/<platform-or-Generic>/<version>/runtime-<version><ext>

// DefaultArchiveExt is the archive extension used when fetching.
const DefaultArchiveExt = ".tar.gz"

// ArchiveName is the file name of a package archive.
func ArchiveName(name, version, ext string) string {
	return fmt.Sprintf("%s-%s%s", name, version, ext)
}

// ListSuffix is the repository path whose listing enumerates the available
// versions of a package.
func ListSuffix(tier Tier, kind Kind, name string) string {
	if kind == KindRuntime {
		return fmt.Sprintf("runtimes/%s", tier)
	}
	return fmt.Sprintf("%s/%s/%s", tier, kind.Side(), name)
}

// SideSuffix is the repository path whose listing enumerates the package
// names published under a side.
func SideSuffix(tier Tier, side Side) string {
	return fmt.Sprintf("%s/%s", tier, side)
}

// ArchiveSuffix is the repository path of a package archive.
func ArchiveSuffix(tier Tier, kind Kind, name, version string) string {
	return ArchiveSuffixExt(tier, kind, name, version, DefaultArchiveExt)
}

// ArchiveSuffixExt is ArchiveSuffix with an explicit archive extension,
// used on the publish side where the payload dictates the extension.
func ArchiveSuffixExt(tier Tier, kind Kind, name, version, ext string) string {
	if kind == KindRuntime {
		return fmt.Sprintf("runtimes/%s/%s/%s", tier, version, ArchiveName(RuntimeName, version, ext))
	}
	return fmt.Sprintf("%s/%s/%s/%s/%s", tier, kind.Side(), name, version, ArchiveName(name, version, ext))
}

// DescribeSuffix is the repository path of a package's metadata document.
func DescribeSuffix(tier Tier, kind Kind, name, version string) string {
	if kind == KindRuntime {
		return fmt.Sprintf("runtimes/%s/%s/meta.yaml", tier, version)
	}
	return fmt.Sprintf("%s/%s/%s/%s/meta.yaml", tier, kind.Side(), name, version)
}

// SplitArchiveName splits an archive file name into package name, version
// and extension. The version starts at the first "-" that is followed by a
// digit, matching the install tree convention.
func SplitArchiveName(file string) (name, version, ext string, ok bool) {
	base := file
	for _, e := range []string{".tar.gz", ".tgz", ".tar.xz", ".txz"} {
		if strings.HasSuffix(base, e) {
			ext = e
			base = strings.TrimSuffix(base, e)
			break
		}
	}
	if ext == "" {
		return "", "", "", false
	}
	name, version, ok = SplitNameVersion(base)
	return name, version, ext, ok
}

// SplitNameVersion splits "<name>-<version>" at the first "-" followed by
// a digit. Package names may themselves contain hyphens; versions start
// with a digit by convention.
func SplitNameVersion(s string) (name, version string, ok bool) {
	for i := 1; i < len(s)-1; i++ {
		if s[i] == '-' && s[i+1] >= '0' && s[i+1] <= '9' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}
