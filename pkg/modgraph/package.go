// SPDX-License-Identifier: MPL-2.0

package modgraph

// Package is one resolved package in the graph: an identity, the manifest
// tools version it was authored against, and the modules and products it
// declares. Instances live inside a ResolvedGraph and must be treated as
// read-only.
type Package struct {
	// Identity is the canonical (lower-cased) package identity.
	Identity PackageIdentity
	// DisplayName is the name as authored in the manifest, preserved for
	// log output. Falls back to the identity when the manifest gives none.
	DisplayName string
	// Location is where the package was resolved from (a path or URL).
	// Opaque to the planner; carried through for log output.
	Location string
	// ToolsVersion gates manifest features for this package, notably
	// whether aliases requested on edges into it are honored.
	ToolsVersion ToolsVersion
	// Modules lists the declared modules in declaration order.
	Modules []Module
	// Products lists the exported products in declaration order.
	Products []Product
}

// Module returns the declared module with the given name, or false when the
// package declares no such module.
func (p *Package) Module(name ModuleName) (*Module, bool) {
	for i := range p.Modules {
		if p.Modules[i].Name == name {
			return &p.Modules[i], true
		}
	}
	return nil, false
}

// Product returns the exported product with the given name, or false when
// the package exports no such product.
func (p *Package) Product(name ProductName) (*Product, bool) {
	for i := range p.Products {
		if p.Products[i].Name == name {
			return &p.Products[i], true
		}
	}
	return nil, false
}

// SupportsModuleAliasing reports whether this package's tools version admits
// module aliasing.
func (p *Package) SupportsModuleAliasing() bool {
	return p.ToolsVersion.SupportsModuleAliasing()
}
