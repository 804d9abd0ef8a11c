package vpm

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a package or version does not exist on any
// queried repository.
var ErrNotFound = errors.New("not found")

// ErrConnectionFailed marks a transient per-repository failure: the host
// was unreachable or answered with a server error after retries.
var ErrConnectionFailed = errors.New("repository unreachable")

// ErrMalformedPackage is returned when a local archive or directory does
// not have a valid package structure.
var ErrMalformedPackage = errors.New("malformed package")

// ErrInvalidVersion is returned for version specifiers that are not
// alphanumeric components separated by "." or "-".
var ErrInvalidVersion = errors.New("invalid version specifier")

// RepoError carries the repository a failure occurred against.
type RepoError struct {
	Repo string
	Err  error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Repo, e.Err)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}

// NotFoundError wraps ErrNotFound with the package that was looked up.
type NotFoundError struct {
	Kind    Kind
	Name    string
	Version string
}

func (e *NotFoundError) Error() string {
	if e.Version != "" {
		return fmt.Sprintf("%s %s version %s not found", e.Kind, e.Name, e.Version)
	}
	return fmt.Sprintf("%s %s not found", e.Kind, e.Name)
}

func (e *NotFoundError) Unwrap() error {
	return ErrNotFound
}
