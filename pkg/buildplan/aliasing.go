// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/loombuild/loom/pkg/modgraph"
)

type (
	// requestState tracks one distinct alias request across the whole
	// resolution. Requests are interned by (consumer, product, original,
	// replacement) so a request reached over several paths is validated
	// and reported once.
	requestState struct {
		AliasRequest
		// eligible is false when the target product's package predates
		// module aliasing; ineligible requests never fire.
		eligible bool
		// valid is false when the replacement is not a plain identifier.
		valid bool
		// used is set once the request fires somewhere, or is overridden
		// by a closer request that consumed the name it matched.
		used bool
		// ordinal is the request's interning position, used to canonicalize
		// request chains for subtree memoization.
		ordinal int
	}

	// moduleAliasState is the per-module resolution result, merged across
	// every path that reaches the module.
	moduleAliasState struct {
		ref modgraph.ModuleRef
		// finalName is the name the module compiles under. Equals the
		// declared name when no rename applies.
		finalName modgraph.ModuleName
		// aliases is the module's final alias map: its own rename plus the
		// renames of everything it transitively depends on.
		aliases AliasMap
		// appliedBy lists the requests that produced finalName.
		appliedBy []*requestState
		// conflicted is set once divergent names have been reported, so a
		// third divergent path does not repeat the diagnostic.
		conflicted bool
		// substitutabilityWarned guards the one-per-module source warning.
		substitutabilityWarned bool
	}

	// requestKey interns alias requests across paths.
	requestKey struct {
		consumer    modgraph.ModuleRef
		product     modgraph.ProductRef
		original    modgraph.ModuleName
		replacement modgraph.ModuleName
	}

	// mergeKey guards duplicate emission of map-merge conflicts.
	mergeKey struct {
		consumer modgraph.ModuleRef
		value    modgraph.ModuleName
	}

	// subtreeKey memoizes per-path subtree results. Two paths reaching a
	// module under equal request chains resolve its subtree identically, so
	// the chain signature is all the key needs beyond the module itself.
	subtreeKey struct {
		module modgraph.ModuleRef
		chain  string
	}

	// aliasResolution is the resolver's working state and result. It is
	// built by resolveAliases and read by the planner afterwards.
	aliasResolution struct {
		graph        *modgraph.ResolvedGraph
		modules      map[modgraph.ModuleRef]*moduleAliasState
		requests     map[requestKey]*requestState
		requestOrder []*requestState
		mergeWarned  map[mergeKey]bool
		memo         map[subtreeKey]AliasMap
		diags        Diagnostics
	}
)

// resolveAliases computes the final alias map of every module reachable from
// a root package, collecting diagnostics along the way. The walk is top-down
// per path with an explicit request chain; per-module results are merged at
// join points, which is where diamonds either unify or conflict.
//
// The graph must be acyclic; the planner runs the cycle guard before calling
// this.
func resolveAliases(g *modgraph.ResolvedGraph) *aliasResolution {
	r := &aliasResolution{
		graph:       g,
		modules:     make(map[modgraph.ModuleRef]*moduleAliasState),
		requests:    make(map[requestKey]*requestState),
		mergeWarned: make(map[mergeKey]bool),
		memo:        make(map[subtreeKey]AliasMap),
	}
	for _, pkg := range g.RootPackages() {
		for i := range pkg.Modules {
			r.resolveModule(pkg.Modules[i].Ref(), nil)
		}
	}
	r.reportUnusedRequests()
	r.checkProductNames()
	return r
}

// resolution returns the final name and alias map for a module. Modules the
// resolver never reached keep their declared name with no substitutions.
func (r *aliasResolution) resolution(ref modgraph.ModuleRef) (modgraph.ModuleName, AliasMap) {
	if st, ok := r.modules[ref]; ok {
		return st.finalName, st.aliases
	}
	return ref.Name, nil
}

// isConflicted reports whether divergent rename requests were recorded for
// the module.
func (r *aliasResolution) isConflicted(ref modgraph.ModuleRef) bool {
	st, ok := r.modules[ref]
	return ok && st.conflicted
}

// resolveModule resolves one module as reached over one path, described by
// the request chain (nearest declaration first). It returns the alias map
// contribution of the module's subtree: the module's own rename plus every
// rename below it, keyed by original name.
//
// Subtree results are memoized by (module, chain signature). Without the
// memo every root-to-module path is enumerated separately, which is
// exponential on stacked diamonds; with it a module is resolved once per
// distinct inherited chain, and with no aliases in play exactly once.
func (r *aliasResolution) resolveModule(ref modgraph.ModuleRef, chain []*requestState) AliasMap {
	key := subtreeKey{module: ref, chain: chainSignature(chain)}
	if cached, ok := r.memo[key]; ok {
		return cached
	}

	mod, ok := r.graph.Module(ref)
	if !ok {
		// Builder rejects dangling references; nothing to resolve here.
		return nil
	}
	pkg, _ := r.graph.Package(ref.Package)

	finalName, applied := r.rewriteName(mod, pkg, chain)
	state := r.recordResolution(mod, finalName, applied)

	own := AliasMap{}
	if finalName != mod.Name {
		own[mod.Name] = finalName
	}

	for _, dep := range mod.Dependencies {
		switch d := dep.(type) {
		case modgraph.ModuleDependency:
			child := r.resolveModule(modgraph.ModuleRef{Package: ref.Package, Name: d.Name}, chain)
			r.mergeInto(own, child, ref)
		case modgraph.ProductDependency:
			product, ok := r.graph.Product(d.Ref())
			if !ok {
				continue
			}
			childChain := r.extendChain(chain, mod, d)
			for _, exported := range product.Modules {
				child := r.resolveModule(modgraph.ModuleRef{Package: product.Package, Name: exported}, childChain)
				r.mergeInto(own, child, ref)
			}
		}
	}

	r.mergeState(state, own)
	if len(own) == 0 {
		own = nil
	}
	r.memo[key] = own
	return own
}

// chainSignature canonicalizes the chain entries that could still fire in a
// subtree. Invalid and ineligible requests never rewrite anything and never
// reach the unused-request report, so they are left out of the signature.
func chainSignature(chain []*requestState) string {
	if len(chain) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, req := range chain {
		if !req.valid || !req.eligible {
			continue
		}
		sb.WriteString(strconv.Itoa(req.ordinal))
		sb.WriteByte('.')
	}
	return sb.String()
}

// rewriteName applies the path's request chain to a module's declared name.
// Requests fire nearest-declaration-first against the module's current name,
// each at most once, until none matches. That single loop yields both
// chained collapse (renaming X to Y and then Y to Z lands on Z) and
// closer-wins override (a deeper rename of X consumes the name before a
// root-side request for X can see it).
func (r *aliasResolution) rewriteName(mod *modgraph.Module, pkg *modgraph.Package, chain []*requestState) (modgraph.ModuleName, []*requestState) {
	// Packages below the minimum tools version never get renamed.
	if pkg == nil || !pkg.SupportsModuleAliasing() {
		return mod.Name, nil
	}

	cur := mod.Name
	history := map[modgraph.ModuleName]bool{cur: true}
	consumed := make(map[*requestState]bool)
	var applied []*requestState
	for {
		fired := false
		for _, req := range chain {
			if consumed[req] || !req.valid || !req.eligible || req.Original != cur {
				continue
			}
			consumed[req] = true
			req.used = true
			applied = append(applied, req)
			cur = req.Replacement
			history[cur] = true
			fired = true
			break
		}
		if !fired {
			break
		}
	}
	if cur != mod.Name {
		slog.Debug("module renamed", "module", mod.Ref().String(), "name", cur.String())
	}

	// A request overridden by a closer rename matched a name the module
	// held at some point; it is ineffective on this path but not unused.
	for _, req := range chain {
		if !consumed[req] && req.valid && req.eligible && history[req.Original] {
			req.used = true
		}
	}
	return cur, applied
}

// extendChain prepends the edge's requested aliases to the inherited chain.
// New requests sit in front: they are the nearest declarations for the
// subtree behind this edge. Request order within one edge is lexicographic
// by original name so resolution never depends on map iteration order.
func (r *aliasResolution) extendChain(chain []*requestState, consumer *modgraph.Module, dep modgraph.ProductDependency) []*requestState {
	if !dep.HasAliases() {
		return chain
	}
	target, ok := r.graph.Package(dep.Package)
	eligible := ok && target.SupportsModuleAliasing()

	originals := maps.Keys(dep.Aliases)
	slices.Sort(originals)
	out := make([]*requestState, 0, len(originals)+len(chain))
	for _, original := range originals {
		out = append(out, r.internRequest(AliasRequest{
			Original:    original,
			Replacement: dep.Aliases[original],
			Consumer:    consumer.Ref(),
			Product:     dep.Ref(),
		}, eligible))
	}
	return append(out, chain...)
}

// internRequest returns the shared state for a request, creating and
// validating it on first sight.
func (r *aliasResolution) internRequest(req AliasRequest, eligible bool) *requestState {
	key := requestKey{
		consumer:    req.Consumer,
		product:     req.Product,
		original:    req.Original,
		replacement: req.Replacement,
	}
	if st, ok := r.requests[key]; ok {
		return st
	}
	st := &requestState{AliasRequest: req, eligible: eligible, valid: true, ordinal: len(r.requestOrder)}
	if !req.Replacement.IsIdentifier() {
		st.valid = false
		r.diags = append(r.diags, Diagnostic{
			Severity: SeverityError,
			Code:     CodeInvalidAliasIdentifier,
			Module:   req.Consumer,
			Product:  req.Product,
			Requests: []AliasRequest{req},
		})
	}
	r.requests[key] = st
	r.requestOrder = append(r.requestOrder, st)
	return st
}

// recordResolution merges one path's final name for a module into the
// module's global state. An unaliased path carries no opinion: it neither
// conflicts with nor displaces a rename supplied by another path. Two
// renamed paths with different results are a conflict; the first resolution
// stays in effect so planning can finish and report everything.
func (r *aliasResolution) recordResolution(mod *modgraph.Module, finalName modgraph.ModuleName, applied []*requestState) *moduleAliasState {
	ref := mod.Ref()
	state, ok := r.modules[ref]
	if !ok {
		state = &moduleAliasState{ref: ref, finalName: finalName, appliedBy: applied}
		r.modules[ref] = state
		r.warnNonSubstitutable(mod, state)
		return state
	}
	switch {
	case state.finalName == finalName:
		// Diamond with consistent requests: nothing to do.
	case finalName == mod.Name:
		// This path is unaliased; the renamed path keeps its name.
	case state.finalName == mod.Name:
		// The earlier path was unaliased; adopt this path's rename.
		state.finalName = finalName
		state.appliedBy = applied
		r.warnNonSubstitutable(mod, state)
	default:
		r.reportNameConflict(mod, state, applied)
	}
	return state
}

// warnNonSubstitutable emits the once-per-module warning for a rename
// hitting sources whose symbols are not renamed. Substitution still applies
// at the module-identity level.
func (r *aliasResolution) warnNonSubstitutable(mod *modgraph.Module, state *moduleAliasState) {
	if state.finalName == mod.Name || mod.AllSourcesSubstitutable() || state.substitutabilityWarned {
		return
	}
	state.substitutabilityWarned = true
	d := Diagnostic{
		Severity: SeverityWarning,
		Code:     CodeNonSubstitutableSourcesAliased,
		Module:   mod.Ref(),
		Packages: []modgraph.PackageIdentity{mod.Package},
		Requests: requestValues(state.appliedBy),
	}
	if len(state.appliedBy) > 0 {
		d.Product = state.appliedBy[0].Product
	}
	r.diags = append(r.diags, d)
}

// reportNameConflict records divergent renames of one module. Requests all
// declared by one and the same consumer module are the ambiguous-product
// case; divergence across independent consumers is a conflicting request.
func (r *aliasResolution) reportNameConflict(mod *modgraph.Module, state *moduleAliasState, applied []*requestState) {
	if state.conflicted {
		return
	}
	state.conflicted = true

	code := CodeConflictingAliasRequest
	if sharesConsumer(state.appliedBy, applied) {
		code = CodeAmbiguousAliasInProduct
	}
	d := Diagnostic{
		Severity: SeverityError,
		Code:     code,
		Module:   mod.Ref(),
		Packages: []modgraph.PackageIdentity{mod.Package},
		Requests: append(requestValues(state.appliedBy), requestValues(applied)...),
	}
	if len(applied) > 0 {
		d.Product = applied[0].Product
	}
	r.diags = append(r.diags, d)
}

// mergeInto folds a dependency subtree's alias map into the consumer's.
// Same key, same value is the diamond merge. Same key with divergent values
// was already reported against the underlying module, so the first value
// stays. A new key whose value collides with a different key's value breaks
// map injectivity: two originals collapsing onto one name.
func (r *aliasResolution) mergeInto(own AliasMap, child AliasMap, consumer modgraph.ModuleRef) {
	for _, key := range child.SortedOriginals() {
		value := child[key]
		if _, ok := own[key]; ok {
			continue
		}
		for _, existing := range own.SortedOriginals() {
			if own[existing] != value {
				continue
			}
			mk := mergeKey{consumer: consumer, value: value}
			if r.mergeWarned[mk] {
				break
			}
			r.mergeWarned[mk] = true
			r.diags = append(r.diags, Diagnostic{
				Severity: SeverityError,
				Code:     CodeConflictingAliasRequest,
				Module:   consumer,
				Packages: []modgraph.PackageIdentity{consumer.Package},
				Requests: []AliasRequest{
					{Original: existing, Replacement: value, Consumer: consumer},
					{Original: key, Replacement: value, Consumer: consumer},
				},
			})
			break
		}
		own[key] = value
	}
}

// mergeState unions one path's subtree map into the module's global alias
// map. Divergent values for a key were reported elsewhere; the first stays.
func (r *aliasResolution) mergeState(state *moduleAliasState, own AliasMap) {
	if len(own) == 0 {
		return
	}
	if state.aliases == nil {
		state.aliases = AliasMap{}
	}
	for _, key := range own.SortedOriginals() {
		if _, ok := state.aliases[key]; !ok {
			state.aliases[key] = own[key]
		}
	}
}

// reportUnusedRequests warns about requests whose original name never
// matched anything in the subtree they apply to. Requests into packages too
// old for aliasing are skipped: they could never have fired.
func (r *aliasResolution) reportUnusedRequests() {
	for _, st := range r.requestOrder {
		if !st.valid || !st.eligible || st.used {
			continue
		}
		r.diags = append(r.diags, Diagnostic{
			Severity: SeverityWarning,
			Code:     CodeUnusedAliasRequest,
			Module:   st.Consumer,
			Product:  st.Product,
			Requests: []AliasRequest{st.AliasRequest},
		})
	}
}

// checkProductNames verifies that, after aliasing, no two packages export
// products under the same final name. The conflicting identities are listed
// in lexicographic order regardless of input order; packages too old to be
// disambiguated by aliasing get an explanatory warning on top.
func (r *aliasResolution) checkProductNames() {
	byName := make(map[modgraph.ProductName][]modgraph.PackageIdentity)
	for _, pkg := range r.graph.Packages() {
		for pi := range pkg.Products {
			name := r.finalProductName(&pkg.Products[pi])
			if !slices.Contains(byName[name], pkg.Identity) {
				byName[name] = append(byName[name], pkg.Identity)
			}
		}
	}

	names := maps.Keys(byName)
	slices.Sort(names)
	for _, name := range names {
		pkgs := byName[name]
		if len(pkgs) < 2 {
			continue
		}
		slices.Sort(pkgs)
		r.diags = append(r.diags, Diagnostic{
			Severity:    SeverityError,
			Code:        CodeDuplicateProductName,
			ProductName: name,
			Packages:    pkgs,
		})
		for _, id := range pkgs {
			pkg, ok := r.graph.Package(id)
			if !ok || pkg.SupportsModuleAliasing() {
				continue
			}
			r.diags = append(r.diags, Diagnostic{
				Severity:    SeverityWarning,
				Code:        CodeToolsVersionTooOldForAliasing,
				ProductName: name,
				Packages:    []modgraph.PackageIdentity{id},
			})
		}
	}
}

// finalProductName resolves the name a product is known by after aliasing.
// A product named after one of its exported modules follows that module's
// rename; this is how an alias disambiguates two same-named products.
func (r *aliasResolution) finalProductName(p *modgraph.Product) modgraph.ProductName {
	for _, m := range p.Modules {
		if string(m) != string(p.Name) {
			continue
		}
		if st, ok := r.modules[modgraph.ModuleRef{Package: p.Package, Name: m}]; ok && st.finalName != m {
			return modgraph.ProductName(st.finalName)
		}
	}
	return p.Name
}

// sharesConsumer reports whether any two requests across the sides were
// declared by the same consumer module.
func sharesConsumer(a, b []*requestState) bool {
	for _, ra := range a {
		for _, rb := range b {
			if ra.Consumer == rb.Consumer {
				return true
			}
		}
	}
	return false
}

func requestValues(states []*requestState) []AliasRequest {
	out := make([]AliasRequest, len(states))
	for i, st := range states {
		out[i] = st.AliasRequest
	}
	return out
}
