// SPDX-License-Identifier: MPL-2.0

package modgraph

import (
	"errors"
	"fmt"
	"strings"
)

const (
	// IssueTypePackage categorizes package-level problems (identity, tools version, duplicates).
	IssueTypePackage ValidationIssueType = "package"
	// IssueTypeModule categorizes module declaration problems.
	IssueTypeModule ValidationIssueType = "module"
	// IssueTypeProduct categorizes product declaration problems.
	IssueTypeProduct ValidationIssueType = "product"
	// IssueTypeDependency categorizes dangling or malformed dependency edges.
	IssueTypeDependency ValidationIssueType = "dependency"
	// IssueTypeRoot categorizes problems with the root package set.
	IssueTypeRoot ValidationIssueType = "root"
)

// ErrInvalidGraph is the sentinel error wrapped by GraphValidationError.
// Callers can check for it using errors.Is(err, ErrInvalidGraph).
var ErrInvalidGraph = errors.New("invalid resolved graph")

type (
	// ValidationIssueType categorizes graph validation issues.
	ValidationIssueType string

	// ValidationIssue represents a single structural problem found while
	// freezing a graph. Issues are collected and reported as a batch via
	// GraphValidationError rather than failing on the first problem, so one
	// Build call surfaces everything wrong with the input.
	ValidationIssue struct {
		// Type categorizes the issue (package, module, product, dependency, root).
		Type ValidationIssueType
		// Package is the canonical identity of the package where the issue
		// was found (empty for graph-wide issues).
		Package PackageIdentity
		// Message describes the specific problem.
		Message string
	}

	// GraphValidationError is returned by Builder.Build when the input graph
	// is structurally invalid. It wraps ErrInvalidGraph for errors.Is()
	// compatibility and carries every issue found.
	GraphValidationError struct {
		Issues []ValidationIssue
	}

	// ModuleSpec declares one module of a package being added to a Builder.
	ModuleSpec struct {
		// Name is the module's declared name.
		Name ModuleName
		// SourceKinds lists the kinds of sources the module contains.
		// Empty means all sources are substitutable.
		SourceKinds []SourceKind
		// Dependencies lists the module's edges in declaration order.
		Dependencies []Dependency
	}

	// ProductSpec declares one exported product of a package being added to
	// a Builder.
	ProductSpec struct {
		// Name is the product's exported name.
		Name ProductName
		// Kind determines artifact and destination behavior.
		Kind ProductKind
		// Modules lists the exported modules in declaration order. Every
		// entry must name a module declared by the same package.
		Modules []ModuleName
	}

	// PackageSpec declares one resolved package being added to a Builder.
	PackageSpec struct {
		// Identity is the package identity as produced by resolution. It is
		// canonicalized (trimmed, lower-cased) during Build.
		Identity string
		// DisplayName is the authored name; defaults to the identity.
		DisplayName string
		// Location is where the package was resolved from.
		Location string
		// ToolsVersion gates manifest features; defaults to
		// DefaultToolsVersion when empty.
		ToolsVersion ToolsVersion
		// Root marks the package as a build root.
		Root bool
		// Modules lists declared modules in declaration order.
		Modules []ModuleSpec
		// Products lists exported products in declaration order.
		Products []ProductSpec
	}

	// Builder assembles a ResolvedGraph from package specs. The zero value
	// is ready to use; AddPackage accumulates specs and Build validates and
	// freezes them into an immutable graph.
	Builder struct {
		specs []PackageSpec
	}
)

// Error implements the error interface for ValidationIssue.
func (v ValidationIssue) Error() string {
	if v.Package != "" {
		return fmt.Sprintf("[%s] package %q: %s", v.Type, v.Package, v.Message)
	}
	return fmt.Sprintf("[%s] %s", v.Type, v.Message)
}

// Error implements the error interface for GraphValidationError.
func (e *GraphValidationError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "resolved graph is invalid (%d issue(s)):", len(e.Issues))
	for _, issue := range e.Issues {
		sb.WriteString("\n  - ")
		sb.WriteString(issue.Error())
	}
	return sb.String()
}

// Unwrap returns ErrInvalidGraph for errors.Is() compatibility.
func (e *GraphValidationError) Unwrap() error { return ErrInvalidGraph }

// NewBuilder creates an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddPackage appends a package spec. Returns the builder for chaining.
func (b *Builder) AddPackage(spec PackageSpec) *Builder {
	b.specs = append(b.specs, spec)
	return b
}

// Build validates the accumulated specs and freezes them into a
// ResolvedGraph. On failure it returns a GraphValidationError carrying every
// structural issue found; the graph is unusable in that case.
func (b *Builder) Build() (*ResolvedGraph, error) {
	g := &ResolvedGraph{
		packageIndex: make(map[PackageIdentity]int, len(b.specs)),
	}
	var issues []ValidationIssue
	addIssue := func(t ValidationIssueType, pkg PackageIdentity, format string, args ...any) {
		issues = append(issues, ValidationIssue{
			Type:    t,
			Package: pkg,
			Message: fmt.Sprintf(format, args...),
		})
	}

	// First pass: canonicalize identities and set up the package arena so
	// the second pass can resolve cross-package references. accepted maps
	// arena positions back to spec positions; rejected and duplicate specs
	// never make it into the arena.
	var accepted []int
	for si, spec := range b.specs {
		id := NewPackageIdentity(spec.Identity)
		if ok, errs := id.IsValid(); !ok {
			for _, err := range errs {
				addIssue(IssueTypePackage, id, "%v", err)
			}
			continue
		}
		if _, exists := g.packageIndex[id]; exists {
			addIssue(IssueTypePackage, id, "declared more than once")
			continue
		}

		tools := spec.ToolsVersion
		if tools == "" {
			tools = DefaultToolsVersion
		}
		if ok, errs := tools.IsValid(); !ok {
			for _, err := range errs {
				addIssue(IssueTypePackage, id, "%v", err)
			}
		}

		display := spec.DisplayName
		if display == "" {
			display = string(id)
		}

		g.packageIndex[id] = len(g.packages)
		g.packages = append(g.packages, Package{
			Identity:     id,
			DisplayName:  display,
			Location:     spec.Location,
			ToolsVersion: tools,
		})
		accepted = append(accepted, si)
		if spec.Root {
			g.roots = append(g.roots, id)
		}
	}

	// Second pass: populate modules and products, checking names and kinds.
	for idx, si := range accepted {
		spec := b.specs[si]
		pkg := &g.packages[idx]
		id := pkg.Identity

		moduleNames := make(map[ModuleName]bool, len(spec.Modules))
		for _, ms := range spec.Modules {
			if ok, errs := ms.Name.IsValid(); !ok {
				for _, err := range errs {
					addIssue(IssueTypeModule, id, "%v", err)
				}
				continue
			}
			if moduleNames[ms.Name] {
				addIssue(IssueTypeModule, id, "module %q declared more than once", ms.Name)
				continue
			}
			moduleNames[ms.Name] = true
			pkg.Modules = append(pkg.Modules, Module{
				Name:         ms.Name,
				Package:      id,
				SourceKinds:  ms.SourceKinds,
				Dependencies: ms.Dependencies,
			})
		}

		productNames := make(map[ProductName]bool, len(spec.Products))
		for _, ps := range spec.Products {
			if ok, errs := ps.Name.IsValid(); !ok {
				for _, err := range errs {
					addIssue(IssueTypeProduct, id, "%v", err)
				}
				continue
			}
			if productNames[ps.Name] {
				addIssue(IssueTypeProduct, id, "product %q declared more than once", ps.Name)
				continue
			}
			productNames[ps.Name] = true
			if ok, errs := ps.Kind.IsValid(); !ok {
				for _, err := range errs {
					addIssue(IssueTypeProduct, id, "product %q: %v", ps.Name, err)
				}
			}
			if len(ps.Modules) == 0 {
				addIssue(IssueTypeProduct, id, "product %q exports no modules", ps.Name)
			}
			for _, name := range ps.Modules {
				if !moduleNames[name] {
					addIssue(IssueTypeProduct, id, "product %q exports unknown module %q", ps.Name, name)
				}
			}
			pkg.Products = append(pkg.Products, Product{
				Name:    ps.Name,
				Package: id,
				Kind:    ps.Kind,
				Modules: ps.Modules,
			})
		}
	}

	// Third pass: dependency edges. Runs after all packages and modules are
	// in place so cross-package references resolve regardless of insertion
	// order. ProductDependency package identities are canonicalized in the
	// frozen copy.
	for pi := range g.packages {
		pkg := &g.packages[pi]
		for mi := range pkg.Modules {
			mod := &pkg.Modules[mi]
			frozen := make([]Dependency, 0, len(mod.Dependencies))
			for _, dep := range mod.Dependencies {
				switch d := dep.(type) {
				case ModuleDependency:
					if d.Name == mod.Name {
						addIssue(IssueTypeDependency, pkg.Identity,
							"module %q depends on itself", mod.Name)
						continue
					}
					if _, ok := pkg.Module(d.Name); !ok {
						addIssue(IssueTypeDependency, pkg.Identity,
							"module %q depends on unknown module %q", mod.Name, d.Name)
						continue
					}
					frozen = append(frozen, d)
				case ProductDependency:
					d.Package = NewPackageIdentity(string(d.Package))
					target, ok := g.Package(d.Package)
					if !ok {
						addIssue(IssueTypeDependency, pkg.Identity,
							"module %q depends on product %q of unknown package %q",
							mod.Name, d.Name, d.Package)
						continue
					}
					if _, ok := target.Product(d.Name); !ok {
						addIssue(IssueTypeDependency, pkg.Identity,
							"module %q depends on unknown product %q of package %q",
							mod.Name, d.Name, d.Package)
						continue
					}
					frozen = append(frozen, d)
				default:
					addIssue(IssueTypeDependency, pkg.Identity,
						"module %q has a dependency of unknown kind %T", mod.Name, dep)
				}
			}
			mod.Dependencies = frozen
		}
	}

	if len(g.roots) == 0 {
		addIssue(IssueTypeRoot, "", "no package is marked as a root")
	}

	if len(issues) > 0 {
		return nil, &GraphValidationError{Issues: issues}
	}
	return g, nil
}
