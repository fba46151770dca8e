// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"github.com/loombuild/loom/internal/dag"
	"github.com/loombuild/loom/pkg/modgraph"
)

const (
	// DependencyKindModule marks an entry backed by a module build.
	DependencyKindModule DependencyKind = "module"
	// DependencyKindProduct marks an entry for a product boundary crossed
	// on the way to its exported modules.
	DependencyKindProduct DependencyKind = "product"
)

type (
	// DependencyKind tags entries yielded by RecursiveDependencies.
	DependencyKind string

	// ModuleVisit is one path-sensitive visitation record reported by
	// TraverseModules.
	ModuleVisit struct {
		// Identity is the visited (module, destination).
		Identity BuildIdentity
		// Parent is the identity this path arrived from, nil at a root.
		Parent *BuildIdentity
		// Depth is the 1-based depth of this particular path.
		Depth int
		// Description is the identity's build description.
		Description *ModuleBuildDescription
	}

	// DependencyEntry is one entry of a RecursiveDependencies listing.
	// Module entries carry the identity and its description; product
	// entries carry the product reference and the destination it was
	// crossed at.
	DependencyEntry struct {
		// Kind tags the entry.
		Kind DependencyKind
		// Module is the build identity, set for module entries.
		Module BuildIdentity
		// Description is the module's build description for the specific
		// destination this path reached it at; nil for product entries.
		Description *ModuleBuildDescription
		// Product is the product reference, set for product entries.
		Product modgraph.ProductRef
		// Destination is the destination the entry builds at.
		Destination Destination
	}
)

// TraverseModules walks the planned module graph depth-first from every
// root, visiting a build identity once per distinct incoming path: a module
// sitting below two parents is reported twice, each time with that path's
// parent and depth. Consumers use this to discover every structural
// position an identity occupies. Sibling order follows each module's
// dependency declaration order.
//
// The planned graph is acyclic by construction; against corrupted input the
// walk fails fast with a dag.CycleError instead of looping.
func (p *Plan) TraverseModules(visit func(ModuleVisit)) error {
	onPath := make(map[BuildIdentity]bool)
	for _, root := range p.roots {
		if err := p.walkModule(root, nil, 1, onPath, visit); err != nil {
			return err
		}
	}
	return nil
}

func (p *Plan) walkModule(id BuildIdentity, parent *BuildIdentity, depth int, onPath map[BuildIdentity]bool, visit func(ModuleVisit)) error {
	if onPath[id] {
		return &dag.CycleError[BuildIdentity]{Cycle: []BuildIdentity{id}}
	}
	visit(ModuleVisit{
		Identity:    id,
		Parent:      parent,
		Depth:       depth,
		Description: p.modules[id],
	})

	mod, ok := p.graph.Module(id.Ref)
	if !ok {
		return nil
	}
	onPath[id] = true
	for _, dep := range mod.Dependencies {
		switch d := dep.(type) {
		case modgraph.ModuleDependency:
			child := BuildIdentity{
				Ref:         modgraph.ModuleRef{Package: id.Ref.Package, Name: d.Name},
				Destination: id.Destination,
			}
			if err := p.walkModule(child, &id, depth+1, onPath, visit); err != nil {
				return err
			}
		case modgraph.ProductDependency:
			product, ok := p.graph.Product(d.Ref())
			if !ok {
				continue
			}
			dest := edgeDestination(id.Destination, product.Kind)
			for _, exported := range product.Modules {
				child := BuildIdentity{
					Ref:         modgraph.ModuleRef{Package: product.Package, Name: exported},
					Destination: dest,
				}
				if err := p.walkModule(child, &id, depth+1, onPath, visit); err != nil {
					return err
				}
			}
		}
	}
	delete(onPath, id)
	return nil
}

// Height returns the maximum path depth over the planned graph: the length
// of the longest root-to-leaf chain reported by TraverseModules. Zero for an
// empty plan.
func (p *Plan) Height() int {
	height := 0
	// The planner already rejected cyclic input, so the walk cannot fail.
	_ = p.TraverseModules(func(v ModuleVisit) {
		if v.Depth > height {
			height = v.Depth
		}
	})
	return height
}

// TraverseDependencies visits only the identity's direct dependency edges,
// in declaration order. Product edges invoke onProduct with the product, the
// destination it builds at, and a nil description, since a product has no
// module build description of its own; module edges invoke onModule with the
// dependency's identity and description.
func (p *Plan) TraverseDependencies(of BuildIdentity, onProduct func(modgraph.ProductRef, Destination, *ModuleBuildDescription), onModule func(BuildIdentity, *ModuleBuildDescription)) {
	mod, ok := p.graph.Module(of.Ref)
	if !ok {
		return
	}
	for _, dep := range mod.Dependencies {
		switch d := dep.(type) {
		case modgraph.ModuleDependency:
			child := BuildIdentity{
				Ref:         modgraph.ModuleRef{Package: of.Ref.Package, Name: d.Name},
				Destination: of.Destination,
			}
			if onModule != nil {
				onModule(child, p.modules[child])
			}
		case modgraph.ProductDependency:
			product, ok := p.graph.Product(d.Ref())
			if !ok {
				continue
			}
			if onProduct != nil {
				onProduct(d.Ref(), edgeDestination(of.Destination, product.Kind), nil)
			}
		}
	}
}

// RecursiveDependencies returns the identity's transitive dependency closure
// in depth-first preorder: a product edge yields a product entry followed
// immediately by the exported modules' entries and their own dependencies; a
// plain module edge yields a module entry and recurses. Unlike
// TraverseModules this listing is identity-sensitive: an entry already
// emitted anywhere earlier is not re-emitted, however many paths reach it
// again. A module reachable at both destinations legitimately yields one
// entry per destination, each carrying that destination's description. The
// stable, flattened order suits compiler search-path construction.
func (p *Plan) RecursiveDependencies(of BuildIdentity) []DependencyEntry {
	var out []DependencyEntry
	seenModules := make(map[BuildIdentity]bool)
	seenProducts := make(map[productKey]bool)
	p.appendDependencies(of, &out, seenModules, seenProducts)
	return out
}

func (p *Plan) appendDependencies(of BuildIdentity, out *[]DependencyEntry, seenModules map[BuildIdentity]bool, seenProducts map[productKey]bool) {
	mod, ok := p.graph.Module(of.Ref)
	if !ok {
		return
	}
	for _, dep := range mod.Dependencies {
		switch d := dep.(type) {
		case modgraph.ModuleDependency:
			child := BuildIdentity{
				Ref:         modgraph.ModuleRef{Package: of.Ref.Package, Name: d.Name},
				Destination: of.Destination,
			}
			p.appendModuleEntry(child, out, seenModules, seenProducts)
		case modgraph.ProductDependency:
			product, ok := p.graph.Product(d.Ref())
			if !ok {
				continue
			}
			dest := edgeDestination(of.Destination, product.Kind)
			key := productKey{Ref: d.Ref(), Destination: dest}
			if !seenProducts[key] {
				seenProducts[key] = true
				*out = append(*out, DependencyEntry{
					Kind:        DependencyKindProduct,
					Product:     d.Ref(),
					Destination: dest,
				})
			}
			for _, exported := range product.Modules {
				child := BuildIdentity{
					Ref:         modgraph.ModuleRef{Package: product.Package, Name: exported},
					Destination: dest,
				}
				p.appendModuleEntry(child, out, seenModules, seenProducts)
			}
		}
	}
}

func (p *Plan) appendModuleEntry(id BuildIdentity, out *[]DependencyEntry, seenModules map[BuildIdentity]bool, seenProducts map[productKey]bool) {
	if seenModules[id] {
		return
	}
	seenModules[id] = true
	*out = append(*out, DependencyEntry{
		Kind:        DependencyKindModule,
		Module:      id,
		Description: p.modules[id],
		Destination: id.Destination,
	})
	p.appendDependencies(id, out, seenModules, seenProducts)
}
