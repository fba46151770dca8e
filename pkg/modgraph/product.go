// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidProductName is the sentinel error wrapped by InvalidProductNameError.
	ErrInvalidProductName = errors.New("invalid product name")
	// ErrUnknownProductKind is the sentinel error wrapped by UnknownProductKindError.
	ErrUnknownProductKind = errors.New("unknown product kind")
)

type (
	// ProductName is the name under which a package exports a product.
	ProductName string

	// InvalidProductNameError is returned when a ProductName value is invalid.
	// It wraps ErrInvalidProductName for errors.Is() compatibility.
	InvalidProductNameError struct {
		Value  ProductName
		Reason string
	}

	// ProductKind determines how a product is built and where its artifact
	// runs. The kind drives two planner decisions: whether the product gets
	// its own build artifact at all, and whether depending on it forces the
	// host destination.
	ProductKind string

	// UnknownProductKindError is returned when a ProductKind value is not
	// one of the declared kinds. It wraps ErrUnknownProductKind for
	// errors.Is() compatibility.
	UnknownProductKindError struct {
		Value ProductKind
	}

	// Product is a named export of a package: one or more modules bundled
	// under a kind.
	Product struct {
		// Name is the product's exported name, unique within its package.
		Name ProductName
		// Package is the identity of the exporting package.
		Package PackageIdentity
		// Kind determines artifact and destination behavior.
		Kind ProductKind
		// Modules lists the exported modules in declaration order.
		Modules []ModuleName
	}

	// ProductRef identifies a product across the whole graph.
	ProductRef struct {
		Package PackageIdentity
		Name    ProductName
	}
)

const (
	// ProductKindLibrary is a compile-time grouping of modules. Libraries
	// produce no artifact of their own; their modules are built as part of
	// whatever depends on them.
	ProductKindLibrary ProductKind = "library"
	// ProductKindExecutable is a runnable program built for the destination
	// of whatever pulled it into the plan.
	ProductKindExecutable ProductKind = "executable"
	// ProductKindTest is a test bundle. Test products of root packages seed
	// the plan alongside executables.
	ProductKindTest ProductKind = "test"
	// ProductKindMacro is a compile-time code generator. Macros always run
	// on the build machine, so depending on one forces the host destination.
	ProductKindMacro ProductKind = "macro"
	// ProductKindPlugin is a build-tool extension, host-only like macros.
	ProductKindPlugin ProductKind = "plugin"
	// ProductKindTool is an executable consumed by the build itself rather
	// than shipped, host-only like macros.
	ProductKindTool ProductKind = "tool"
)

// productKinds is the closed set of valid kinds, used by validation.
var productKinds = map[ProductKind]bool{
	ProductKindLibrary:    true,
	ProductKindExecutable: true,
	ProductKindTest:       true,
	ProductKindMacro:      true,
	ProductKindPlugin:     true,
	ProductKindTool:       true,
}

// RequiresHostBuild reports whether depending on a product of this kind
// forces the product's modules (and everything they reach) onto the host
// destination.
func (k ProductKind) RequiresHostBuild() bool {
	return k == ProductKindMacro || k == ProductKindPlugin || k == ProductKindTool
}

// HasArtifact reports whether products of this kind get their own build
// description. Libraries do not; they exist only as module groupings.
func (k ProductKind) HasArtifact() bool {
	return k != ProductKindLibrary
}

// IsValid returns whether the ProductKind is one of the declared kinds,
// and a list of validation errors if it is not.
func (k ProductKind) IsValid() (bool, []error) {
	if !productKinds[k] {
		return false, []error{&UnknownProductKindError{Value: k}}
	}
	return true, nil
}

// String returns the string representation of the ProductKind.
func (k ProductKind) String() string { return string(k) }

// Error implements the error interface for UnknownProductKindError.
func (e *UnknownProductKindError) Error() string {
	return fmt.Sprintf("unknown product kind %q", e.Value)
}

// Unwrap returns ErrUnknownProductKind for errors.Is() compatibility.
func (e *UnknownProductKindError) Unwrap() error { return ErrUnknownProductKind }

// IsValid returns whether the ProductName is valid.
// A valid name is non-empty and contains no whitespace or path separators.
func (n ProductName) IsValid() (bool, []error) {
	s := string(n)
	if s == "" {
		return false, []error{&InvalidProductNameError{Value: n, Reason: "must not be empty"}}
	}
	if strings.ContainsAny(s, "/\\") {
		return false, []error{&InvalidProductNameError{Value: n, Reason: "must not contain path separators"}}
	}
	if strings.ContainsAny(s, " \t\n") {
		return false, []error{&InvalidProductNameError{Value: n, Reason: "must not contain whitespace"}}
	}
	return true, nil
}

// String returns the string representation of the ProductName.
func (n ProductName) String() string { return string(n) }

// Error implements the error interface for InvalidProductNameError.
func (e *InvalidProductNameError) Error() string {
	return fmt.Sprintf("invalid product name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidProductName for errors.Is() compatibility.
func (e *InvalidProductNameError) Unwrap() error { return ErrInvalidProductName }

// Ref returns the product's graph-wide reference.
func (p *Product) Ref() ProductRef {
	return ProductRef{Package: p.Package, Name: p.Name}
}

// Exports reports whether the product exports the named module.
func (p *Product) Exports(name ModuleName) bool {
	for _, m := range p.Modules {
		if m == name {
			return true
		}
	}
	return false
}

// String returns "package:name", the form used in log output.
func (r ProductRef) String() string {
	return string(r.Package) + ":" + string(r.Name)
}
