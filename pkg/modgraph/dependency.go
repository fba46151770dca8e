// SPDX-License-Identifier: MPL-2.0

package modgraph

type (
	// Dependency is one edge in a module's dependency list. It is a closed
	// sum type: the only implementations are ModuleDependency and
	// ProductDependency, so exhaustive type switches are safe. Edge order in
	// Module.Dependencies is declaration order and is significant.
	Dependency interface {
		// sealed prevents implementations outside this package.
		sealed()
	}

	// ModuleDependency is an edge to a module declared by the same package.
	ModuleDependency struct {
		// Name is the depended-on module's declared name.
		Name ModuleName
	}

	// ProductDependency is an edge to a product exported by some package
	// (possibly the consumer's own).
	ProductDependency struct {
		// Name is the depended-on product's exported name.
		Name ProductName
		// Package is the identity of the package exporting the product.
		Package PackageIdentity
		// Aliases maps original module names to the names this consumer
		// wants them compiled under, as requested in the manifest. Nil when
		// the edge requests no renames. Keys are matched against a module's
		// current name during resolution, so a request can retarget the
		// result of an earlier rename.
		Aliases map[ModuleName]ModuleName
	}
)

func (ModuleDependency) sealed()  {}
func (ProductDependency) sealed() {}

// Ref returns the referenced product's graph-wide reference.
func (d ProductDependency) Ref() ProductRef {
	return ProductRef{Package: d.Package, Name: d.Name}
}

// HasAliases reports whether the edge requests any module renames.
func (d ProductDependency) HasAliases() bool {
	return len(d.Aliases) > 0
}
