// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// ErrInvalidModuleName is the sentinel error wrapped by InvalidModuleNameError.
var ErrInvalidModuleName = errors.New("invalid module name")

type (
	// ModuleName is the name of a module as declared by its package. The
	// build planner may substitute a different name at compile time; this
	// type always holds the name as written in some manifest, original or
	// substituted.
	ModuleName string

	// InvalidModuleNameError is returned when a ModuleName value is invalid.
	// It wraps ErrInvalidModuleName for errors.Is() compatibility.
	InvalidModuleNameError struct {
		Value  ModuleName
		Reason string
	}

	// SourceKind classifies the sources a module contains with respect to
	// name substitution. Substitutable sources can be compiled under a
	// different module name; non-substitutable ones (foreign-language
	// sources, prebuilt objects) cannot.
	SourceKind string

	// Module is one buildable unit declared by a package.
	Module struct {
		// Name is the module's declared name, unique within its package.
		Name ModuleName
		// Package is the identity of the declaring package.
		Package PackageIdentity
		// SourceKinds lists the kinds of sources the module contains.
		// An empty list means all sources are substitutable.
		SourceKinds []SourceKind
		// Dependencies lists the module's dependency edges in declaration
		// order. Traversals must preserve this order.
		Dependencies []Dependency
	}

	// ModuleRef identifies a module across the whole graph: the declaring
	// package plus the declared module name. It is a small comparable value
	// used as a map key by the planner.
	ModuleRef struct {
		Package PackageIdentity
		Name    ModuleName
	}
)

const (
	// SourceKindSubstitutable marks sources that can be compiled under a
	// substituted module name.
	SourceKindSubstitutable SourceKind = "substitutable"
	// SourceKindNonSubstitutable marks sources whose module name is baked in
	// and cannot be rewritten (e.g., foreign-language sources).
	SourceKindNonSubstitutable SourceKind = "non-substitutable"
)

// IsValid returns whether the ModuleName is valid.
// A valid name is non-empty and contains no whitespace or path separators.
func (n ModuleName) IsValid() (bool, []error) {
	s := string(n)
	if s == "" {
		return false, []error{&InvalidModuleNameError{Value: n, Reason: "must not be empty"}}
	}
	if strings.ContainsAny(s, "/\\") {
		return false, []error{&InvalidModuleNameError{Value: n, Reason: "must not contain path separators"}}
	}
	if strings.ContainsAny(s, " \t\n") {
		return false, []error{&InvalidModuleNameError{Value: n, Reason: "must not contain whitespace"}}
	}
	return true, nil
}

// IsIdentifier reports whether the name is a plain identifier: a letter or
// underscore followed by letters, digits, or underscores. Alias substitutions
// must satisfy this stricter rule because the substituted name is spliced
// into compiler invocations.
func (n ModuleName) IsIdentifier() bool {
	if n == "" {
		return false
	}
	for i, r := range string(n) {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return true
}

// String returns the string representation of the ModuleName.
func (n ModuleName) String() string { return string(n) }

// Error implements the error interface for InvalidModuleNameError.
func (e *InvalidModuleNameError) Error() string {
	return fmt.Sprintf("invalid module name %q: %s", e.Value, e.Reason)
}

// Unwrap returns ErrInvalidModuleName for errors.Is() compatibility.
func (e *InvalidModuleNameError) Unwrap() error { return ErrInvalidModuleName }

// Ref returns the module's graph-wide reference.
func (m *Module) Ref() ModuleRef {
	return ModuleRef{Package: m.Package, Name: m.Name}
}

// AllSourcesSubstitutable reports whether every source in the module can be
// compiled under a substituted name. An empty SourceKinds list counts as
// fully substitutable.
func (m *Module) AllSourcesSubstitutable() bool {
	for _, k := range m.SourceKinds {
		if k == SourceKindNonSubstitutable {
			return false
		}
	}
	return true
}

// String returns "package/name", the form used in log output and graph keys.
func (r ModuleRef) String() string {
	return string(r.Package) + "/" + string(r.Name)
}
