// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrInvalidPackageIdentity is the sentinel error wrapped by InvalidPackageIdentityError.
	ErrInvalidPackageIdentity = errors.New("invalid package identity")
	// ErrInvalidToolsVersion is the sentinel error wrapped by InvalidToolsVersionError.
	ErrInvalidToolsVersion = errors.New("invalid tools version")
)

// MinAliasingToolsVersion is the first tools version whose manifests may
// request module aliases. Packages declaring an older version never have
// aliases applied and are skipped by alias-based product-name
// disambiguation.
const MinAliasingToolsVersion ToolsVersion = "5.7.0"

// DefaultToolsVersion is assumed for packages that do not declare one.
const DefaultToolsVersion ToolsVersion = "6.0.0"

type (
	// PackageIdentity is the canonical identity of a package. Identities are
	// case-insensitive; NewPackageIdentity lower-cases its input and Builder
	// normalizes every identity it sees, so two spellings of the same
	// package always collapse to one key.
	PackageIdentity string

	// InvalidPackageIdentityError is returned when a PackageIdentity value is invalid.
	// It wraps ErrInvalidPackageIdentity for errors.Is() compatibility.
	InvalidPackageIdentityError struct {
		Value  PackageIdentity
		Reason string
	}

	// ToolsVersion is the manifest tools version a package was authored
	// against, as a semantic version string (e.g., "5.7.0"). It gates which
	// graph features apply to the package, most notably module aliasing.
	ToolsVersion string

	// InvalidToolsVersionError is returned when a ToolsVersion value is not
	// a parseable semantic version. It wraps ErrInvalidToolsVersion for
	// errors.Is() compatibility.
	InvalidToolsVersionError struct {
		Value ToolsVersion
	}
)

// NewPackageIdentity canonicalizes a raw identity string: surrounding
// whitespace is trimmed and the result is lower-cased.
func NewPackageIdentity(raw string) PackageIdentity {
	return PackageIdentity(strings.ToLower(strings.TrimSpace(raw)))
}

// IsValid returns whether the PackageIdentity is valid.
// A valid identity is non-empty and contains no whitespace or path separators.
func (p PackageIdentity) IsValid() (bool, []error) {
	s := string(p)
	if s == "" {
		return false, []error{&InvalidPackageIdentityError{Value: p, Reason: "must not be empty"}}
	}
	if strings.ContainsAny(s, "/\\") {
		return false, []error{&InvalidPackageIdentityError{Value: p, Reason: "must not contain path separators"}}
	}
	if strings.ContainsAny(s, " \t\n") {
		return false, []error{&InvalidPackageIdentityError{Value: p, Reason: "must not contain whitespace"}}
	}
	return true, nil
}

// String returns the string representation of the PackageIdentity.
func (p PackageIdentity) String() string { return string(p) }

// Error implements the error interface for InvalidPackageIdentityError.
func (e *InvalidPackageIdentityError) Error() string {
	return fmt.Sprintf("invalid package identity %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidPackageIdentity for errors.Is() compatibility.
func (e *InvalidPackageIdentityError) Unwrap() error { return ErrInvalidPackageIdentity }

// IsValid returns whether the ToolsVersion is a valid semantic version
// string, and a list of validation errors if it is not.
func (v ToolsVersion) IsValid() (bool, []error) {
	if _, err := semver.NewVersion(string(v)); err != nil {
		return false, []error{&InvalidToolsVersionError{Value: v}}
	}
	return true, nil
}

// SupportsModuleAliasing reports whether manifests at this tools version may
// request module aliases. Unparseable versions report false; Builder rejects
// them before a graph is ever planned.
func (v ToolsVersion) SupportsModuleAliasing() bool {
	ver, err := semver.NewVersion(string(v))
	if err != nil {
		return false
	}
	min := semver.MustParse(string(MinAliasingToolsVersion))
	return !ver.LessThan(min)
}

// Compare returns -1, 0, or 1 if v is semantically less than, equal to, or
// greater than other. Both versions must be valid; invalid input sorts first.
func (v ToolsVersion) Compare(other ToolsVersion) int {
	a, errA := semver.NewVersion(string(v))
	b, errB := semver.NewVersion(string(other))
	switch {
	case errA != nil && errB != nil:
		return 0
	case errA != nil:
		return -1
	case errB != nil:
		return 1
	}
	return a.Compare(b)
}

// String returns the string representation of the ToolsVersion.
func (v ToolsVersion) String() string { return string(v) }

// Error implements the error interface for InvalidToolsVersionError.
func (e *InvalidToolsVersionError) Error() string {
	return fmt.Sprintf("invalid tools version %q", e.Value)
}

// Unwrap returns ErrInvalidToolsVersion for errors.Is() compatibility.
func (e *InvalidToolsVersionError) Unwrap() error { return ErrInvalidToolsVersion }
