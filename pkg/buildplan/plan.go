// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"

	"golang.org/x/exp/maps"

	"github.com/loombuild/loom/pkg/modgraph"
)

type (
	// productKey keys product descriptions: one per (product, destination).
	productKey struct {
		Ref         modgraph.ProductRef
		Destination Destination
	}

	// Plan is the finished, immutable output of a Planner run: every
	// materialized build identity with its description, the product
	// resolutions backing them, and the diagnostics collected on the way.
	// Downstream consumers must treat a plan with error diagnostics as
	// unusable.
	Plan struct {
		graph        *modgraph.ResolvedGraph
		modules      map[BuildIdentity]*ModuleBuildDescription
		order        []BuildIdentity
		products     map[productKey]*ProductBuildDescription
		productOrder []productKey
		roots        []BuildIdentity
		diags        Diagnostics
	}

	// Snapshot is the stable, JSON-marshalable view of a finished plan, the
	// one documented shape the downstream emitter and golden tests consume.
	Snapshot struct {
		Modules     []*ModuleBuildDescription  `json:"modules"`
		Products    []*ProductBuildDescription `json:"products"`
		Diagnostics Diagnostics                `json:"diagnostics,omitempty"`
	}
)

// Graph returns the resolved graph the plan was computed from.
func (p *Plan) Graph() *modgraph.ResolvedGraph {
	return p.graph
}

// Roots returns the build identities the plan was seeded from (the modules
// exported by root executable and test products), in declaration order.
func (p *Plan) Roots() []BuildIdentity {
	return p.roots
}

// Description returns the build description for an identity, or false when
// the identity was never materialized.
func (p *Plan) Description(id BuildIdentity) (*ModuleBuildDescription, bool) {
	d, ok := p.modules[id]
	return d, ok
}

// Descriptions returns every module build description, sorted by package,
// module name, and destination. The order is a documented contract: two
// plans over equal graphs produce identical listings.
func (p *Plan) Descriptions() []*ModuleBuildDescription {
	ids := maps.Keys(p.modules)
	slices.SortFunc(ids, compareIdentities)
	out := make([]*ModuleBuildDescription, len(ids))
	for i, id := range ids {
		out[i] = p.modules[id]
	}
	return out
}

// ProductDescription returns the description of a product at a destination,
// or false when the product was not planned there.
func (p *Plan) ProductDescription(ref modgraph.ProductRef, dest Destination) (*ProductBuildDescription, bool) {
	d, ok := p.products[productKey{Ref: ref, Destination: dest}]
	return d, ok
}

// ProductDescriptions returns every product build description, sorted by
// package, product name, and destination.
func (p *Plan) ProductDescriptions() []*ProductBuildDescription {
	keys := maps.Keys(p.products)
	slices.SortFunc(keys, func(a, b productKey) int {
		if c := cmp.Compare(a.Ref.Package, b.Ref.Package); c != 0 {
			return c
		}
		if c := cmp.Compare(a.Ref.Name, b.Ref.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.Destination, b.Destination)
	})
	out := make([]*ProductBuildDescription, len(keys))
	for i, k := range keys {
		out[i] = p.products[k]
	}
	return out
}

// Diagnostics returns every diagnostic collected during planning, in
// emission order.
func (p *Plan) Diagnostics() Diagnostics {
	return p.diags
}

// HasErrors reports whether planning collected any error diagnostic, in
// which case no usable build plan was produced.
func (p *Plan) HasErrors() bool {
	return p.diags.HasErrors()
}

// Snapshot returns the plan's stable JSON form. Equal graphs yield
// byte-identical snapshots.
func (p *Plan) Snapshot() ([]byte, error) {
	data, err := json.MarshalIndent(Snapshot{
		Modules:     p.Descriptions(),
		Products:    p.ProductDescriptions(),
		Diagnostics: p.diags,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling plan snapshot: %w", err)
	}
	return data, nil
}

// compareIdentities orders build identities by package, module name, and
// destination.
func compareIdentities(a, b BuildIdentity) int {
	if c := cmp.Compare(a.Ref.Package, b.Ref.Package); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Ref.Name, b.Ref.Name); c != 0 {
		return c
	}
	return cmp.Compare(a.Destination, b.Destination)
}
