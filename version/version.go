// Package version implements the total order over Vessel version strings.
//
// A version is a sequence of alphanumeric tokens separated by "." or "-".
// The same comparator is used to pick the latest remote version, to decide
// whether an installed package is outdated, and to sort search output, so
// the three always agree.
package version

import (
	"regexp"
	"sort"
	"strings"
)

var valid = regexp.MustCompile(`^[0-9A-Za-z]+([.-][0-9A-Za-z]+)*$`)

// IsValid reports whether s is a well-formed version specifier.
func IsValid(s string) bool {
	return valid.MatchString(s)
}

// Compare returns -1 if a < b, 0 if a == b, and 1 if a > b.
//
// Versions are compared token by token after splitting on "." and "-":
//
//   - two numeric tokens compare numerically ("10" > "9", "007" == "7")
//   - two non-numeric tokens compare lexicographically by byte
//   - a numeric token outranks a non-numeric one in the same position,
//     so "1.0" > "1.rc1"
//   - if one version is a prefix of the other, the longer one is newer,
//     so "1.0.1" > "1.0"
func Compare(a, b string) int {
	at := tokens(a)
	bt := tokens(b)

	n := len(at)
	if len(bt) < n {
		n = len(bt)
	}
	for i := 0; i < n; i++ {
		if c := compareToken(at[i], bt[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(at) < len(bt):
		return -1
	case len(at) > len(bt):
		return 1
	}
	return 0
}

func tokens(v string) []string {
	return strings.FieldsFunc(v, func(r rune) bool {
		return r == '.' || r == '-'
	})
}

func compareToken(a, b string) int {
	an, bn := numeric(a), numeric(b)
	switch {
	case an && bn:
		return compareNumeric(a, b)
	case an:
		return 1
	case bn:
		return -1
	}
	return strings.Compare(a, b)
}

func numeric(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return len(s) > 0
}

// compareNumeric compares two all-digit tokens without parsing them into
// machine integers, so arbitrarily long components cannot overflow.
func compareNumeric(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// Max returns the highest version in vs, or "" for an empty slice.
func Max(vs []string) string {
	best := ""
	for _, v := range vs {
		if best == "" || Compare(v, best) > 0 {
			best = v
		}
	}
	return best
}

// Sort orders vs ascending in place.
func Sort(vs []string) {
	sort.Slice(vs, func(i, j int) bool {
		return Compare(vs[i], vs[j]) < 0
	})
}

// Status is the relation of an installed version to a remote one.
type Status int

const (
	// Same means local and remote are equal.
	Same Status = iota
	// Lower means the local version is older than the remote one.
	Lower
	// Higher means the local version is newer than the remote one.
	Higher
)

func (s Status) String() string {
	switch s {
	case Lower:
		return "lower"
	case Higher:
		return "higher"
	}
	return "same"
}

// Outdated relates an installed version to the remote one: Lower iff
// remote > local, Higher iff local > remote, Same otherwise.
func Outdated(local, remote string) Status {
	switch Compare(local, remote) {
	case -1:
		return Lower
	case 1:
		return Higher
	}
	return Same
}
