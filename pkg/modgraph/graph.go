// SPDX-License-Identifier: MPL-2.0

package modgraph

// ResolvedGraph is the immutable result of dependency resolution: every
// package participating in the build, plus the set of root packages the
// build was requested for. Construct one through Builder; the zero value is
// empty but usable.
//
// Storage is arena-style: packages live in one flat slice in insertion
// order, and all cross-references are by value (ModuleRef, ProductRef)
// rather than by pointer. Accessors hand out pointers into the arena for
// reading only.
type ResolvedGraph struct {
	packages     []Package
	packageIndex map[PackageIdentity]int
	roots        []PackageIdentity
}

// Packages returns all packages in insertion order. The returned slice is
// the graph's own storage; callers must not modify it.
func (g *ResolvedGraph) Packages() []Package {
	return g.packages
}

// Package returns the package with the given identity, or false when the
// graph holds no such package. The identity is canonicalized before lookup.
func (g *ResolvedGraph) Package(id PackageIdentity) (*Package, bool) {
	i, ok := g.packageIndex[NewPackageIdentity(string(id))]
	if !ok {
		return nil, false
	}
	return &g.packages[i], true
}

// RootPackages returns the root packages in the order they were added.
func (g *ResolvedGraph) RootPackages() []*Package {
	out := make([]*Package, 0, len(g.roots))
	for _, id := range g.roots {
		if p, ok := g.Package(id); ok {
			out = append(out, p)
		}
	}
	return out
}

// IsRoot reports whether the given identity names a root package.
func (g *ResolvedGraph) IsRoot(id PackageIdentity) bool {
	canonical := NewPackageIdentity(string(id))
	for _, r := range g.roots {
		if r == canonical {
			return true
		}
	}
	return false
}

// RootModules returns the modules exported by executable and test products
// of root packages, in declaration order, deduplicated. These are the
// natural seeds of a build plan.
func (g *ResolvedGraph) RootModules() []ModuleRef {
	var out []ModuleRef
	seen := make(map[ModuleRef]bool)
	for _, pkg := range g.RootPackages() {
		for pi := range pkg.Products {
			product := &pkg.Products[pi]
			if product.Kind != ProductKindExecutable && product.Kind != ProductKindTest {
				continue
			}
			for _, name := range product.Modules {
				ref := ModuleRef{Package: pkg.Identity, Name: name}
				if !seen[ref] {
					seen[ref] = true
					out = append(out, ref)
				}
			}
		}
	}
	return out
}

// Module resolves a graph-wide module reference, or returns false when
// either the package or the module does not exist.
func (g *ResolvedGraph) Module(ref ModuleRef) (*Module, bool) {
	p, ok := g.Package(ref.Package)
	if !ok {
		return nil, false
	}
	return p.Module(ref.Name)
}

// Product resolves a graph-wide product reference, or returns false when
// either the package or the product does not exist.
func (g *ResolvedGraph) Product(ref ProductRef) (*Product, bool) {
	p, ok := g.Package(ref.Package)
	if !ok {
		return nil, false
	}
	return p.Product(ref.Name)
}

// ProductsNamed returns every product exported under the given name across
// all packages, in package insertion order. Used by product-name uniqueness
// checking, where the same name exported by two packages is a potential
// collision.
func (g *ResolvedGraph) ProductsNamed(name ProductName) []*Product {
	var out []*Product
	for i := range g.packages {
		for j := range g.packages[i].Products {
			if g.packages[i].Products[j].Name == name {
				out = append(out, &g.packages[i].Products[j])
			}
		}
	}
	return out
}
