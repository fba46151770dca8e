// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"fmt"
	"log/slog"

	"github.com/loombuild/loom/internal/dag"
	"github.com/loombuild/loom/pkg/modgraph"
)

// Planner turns a resolved graph into an immutable build Plan: alias
// resolution first, then the destination walk that materializes one
// ModuleBuildDescription per (module, destination) reached.
type Planner struct {
	graph  *modgraph.ResolvedGraph
	target BuildParameters
	host   BuildParameters
}

// NewPlanner creates a Planner over an immutable graph and the two
// per-destination parameter bundles. The target bundle applies to shipped
// artifacts, the host bundle to macros, plugins, and tools that run during
// the build.
func NewPlanner(g *modgraph.ResolvedGraph, target, host BuildParameters) *Planner {
	return &Planner{
		graph:  g,
		target: target.normalized(),
		host:   host.normalized(),
	}
}

// Plan computes the full build plan. A returned error means planning could
// not run to completion at all (cyclic input, destination conflict); every
// other problem is collected on the plan as diagnostics, and callers must
// treat a plan with error diagnostics as unusable.
func (p *Planner) Plan() (*Plan, error) {
	if err := p.checkAcyclic(); err != nil {
		return nil, fmt.Errorf("build planning: %w", err)
	}

	aliases := resolveAliases(p.graph)
	plan := &Plan{
		graph:    p.graph,
		modules:  make(map[BuildIdentity]*ModuleBuildDescription),
		products: make(map[productKey]*ProductBuildDescription),
		diags:    aliases.diags,
	}
	w := &planWalk{planner: p, aliases: aliases, plan: plan}

	for _, pkg := range p.graph.RootPackages() {
		for pi := range pkg.Products {
			product := &pkg.Products[pi]
			if product.Kind != modgraph.ProductKindExecutable && product.Kind != modgraph.ProductKindTest {
				continue
			}
			dest := DestinationTarget
			if product.Kind == modgraph.ProductKindTest && p.testNeedsHost(product) {
				dest = DestinationHost
			}
			if err := w.planProduct(product, dest); err != nil {
				return nil, err
			}
			plan.roots = append(plan.roots, plan.products[productKey{Ref: product.Ref(), Destination: dest}].Modules...)
		}
	}

	slog.Debug("build plan complete",
		"modules", len(plan.modules),
		"products", len(plan.products),
		"diagnostics", len(plan.diags))
	return plan, nil
}

// checkAcyclic rejects corrupted cyclic input before any identity is
// materialized. The resolver and the traversals recurse without a visited
// set on purpose (path sensitivity), so this guard is what keeps them from
// looping.
func (p *Planner) checkAcyclic() error {
	g := dag.New[modgraph.ModuleRef]()
	for _, pkg := range p.graph.Packages() {
		for mi := range pkg.Modules {
			mod := &pkg.Modules[mi]
			from := mod.Ref()
			g.AddNode(from)
			for _, dep := range mod.Dependencies {
				switch d := dep.(type) {
				case modgraph.ModuleDependency:
					g.AddEdge(from, modgraph.ModuleRef{Package: pkg.Identity, Name: d.Name})
				case modgraph.ProductDependency:
					product, ok := p.graph.Product(d.Ref())
					if !ok {
						continue
					}
					for _, exported := range product.Modules {
						g.AddEdge(from, modgraph.ModuleRef{Package: product.Package, Name: exported})
					}
				}
			}
		}
	}
	_, err := g.TopologicalSort()
	return err
}

// testNeedsHost reports whether a test product's modules directly depend on
// a macro or plugin product. Such a test needs macro expansion at its own
// compile time, so the whole test program is planned for the host rather
// than split across destinations.
func (p *Planner) testNeedsHost(product *modgraph.Product) bool {
	for _, name := range product.Modules {
		mod, ok := p.graph.Module(modgraph.ModuleRef{Package: product.Package, Name: name})
		if !ok {
			continue
		}
		for _, dep := range mod.Dependencies {
			d, ok := dep.(modgraph.ProductDependency)
			if !ok {
				continue
			}
			target, ok := p.graph.Product(d.Ref())
			if !ok {
				continue
			}
			if target.Kind == modgraph.ProductKindMacro || target.Kind == modgraph.ProductKindPlugin {
				return true
			}
		}
	}
	return false
}

// parameters returns the bundle for a destination.
func (p *Planner) parameters(dest Destination) BuildParameters {
	if dest == DestinationHost {
		return p.host
	}
	return p.target
}

// planWalk is the destination walk's per-invocation state.
type planWalk struct {
	planner *Planner
	aliases *aliasResolution
	plan    *Plan
}

// planProduct materializes an artifact-producing product at a destination
// and plans its exported modules there.
func (w *planWalk) planProduct(product *modgraph.Product, dest Destination) error {
	key := productKey{Ref: product.Ref(), Destination: dest}
	if _, ok := w.plan.products[key]; ok {
		return nil
	}
	desc := &ProductBuildDescription{
		Product:      product.Ref(),
		Kind:         product.Kind,
		Destination:  dest,
		ArtifactName: artifactName(w.aliases.finalProductName(product), dest),
	}
	w.plan.products[key] = desc
	w.plan.productOrder = append(w.plan.productOrder, key)

	for _, name := range product.Modules {
		id, err := w.planModule(modgraph.ModuleRef{Package: product.Package, Name: name}, dest)
		if err != nil {
			return err
		}
		desc.Modules = append(desc.Modules, id)
	}
	return nil
}

// planModule materializes one (module, destination) identity and recurses
// into its dependencies. The memo on BuildIdentity is the deduplication
// contract: re-reaching a planned identity is a no-op. Module edges inherit
// the consumer's destination; product edges switch to the host when the
// product's kind demands it.
func (w *planWalk) planModule(ref modgraph.ModuleRef, dest Destination) (BuildIdentity, error) {
	id := BuildIdentity{Ref: ref, Destination: dest}
	if _, ok := w.plan.modules[id]; ok {
		return id, nil
	}

	// A module may legitimately materialize at both destinations, but not
	// while its alias resolution is in conflict: the two builds would pick
	// names arbitrarily. Abort instead.
	other := BuildIdentity{Ref: ref, Destination: otherDestination(dest)}
	if _, ok := w.plan.modules[other]; ok && w.aliases.isConflicted(ref) {
		d := Diagnostic{
			Severity: SeverityError,
			Code:     CodeDestinationConflict,
			Module:   ref,
			Identity: id,
		}
		w.plan.diags = append(w.plan.diags, d)
		return id, fmt.Errorf("build planning: %s", d)
	}

	finalName, aliasMap := w.aliases.resolution(ref)
	w.plan.modules[id] = &ModuleBuildDescription{
		Identity:   id,
		ModuleName: finalName,
		Aliases:    aliasMap.Clone(),
		Parameters: w.planner.parameters(dest),
	}
	w.plan.order = append(w.plan.order, id)

	mod, ok := w.planner.graph.Module(ref)
	if !ok {
		return id, nil
	}
	for _, dep := range mod.Dependencies {
		switch d := dep.(type) {
		case modgraph.ModuleDependency:
			if _, err := w.planModule(modgraph.ModuleRef{Package: ref.Package, Name: d.Name}, dest); err != nil {
				return id, err
			}
		case modgraph.ProductDependency:
			product, ok := w.planner.graph.Product(d.Ref())
			if !ok {
				continue
			}
			childDest := edgeDestination(dest, product.Kind)
			if product.Kind.HasArtifact() {
				if err := w.planProduct(product, childDest); err != nil {
					return id, err
				}
				continue
			}
			for _, exported := range product.Modules {
				if _, err := w.planModule(modgraph.ModuleRef{Package: product.Package, Name: exported}, childDest); err != nil {
					return id, err
				}
			}
		}
	}
	return id, nil
}

// edgeDestination returns the destination a dependency edge's target builds
// at: host-requiring product kinds (macro, plugin, tool) force the host,
// everything else inherits the consumer's destination.
func edgeDestination(consumer Destination, kind modgraph.ProductKind) Destination {
	if kind.RequiresHostBuild() {
		return DestinationHost
	}
	return consumer
}

func otherDestination(dest Destination) Destination {
	if dest == DestinationHost {
		return DestinationTarget
	}
	return DestinationHost
}
