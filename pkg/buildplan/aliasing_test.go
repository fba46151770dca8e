// SPDX-License-Identifier: MPL-2.0

package buildplan

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/loombuild/loom/pkg/modgraph"
)

var (
	targetParams = BuildParameters{Triple: "arm64-apple-macosx", Configuration: ConfigurationDebug}
	hostParams   = BuildParameters{Triple: "x86_64-unknown-linux-gnu", Configuration: ConfigurationRelease}
)

func buildGraph(t *testing.T, specs ...modgraph.PackageSpec) *modgraph.ResolvedGraph {
	t.Helper()
	b := modgraph.NewBuilder()
	for _, s := range specs {
		b.AddPackage(s)
	}
	g, err := b.Build()
	if err != nil {
		t.Fatalf("Build() failed: %v", err)
	}
	return g
}

func mustPlan(t *testing.T, specs ...modgraph.PackageSpec) *Plan {
	t.Helper()
	plan, err := NewPlanner(buildGraph(t, specs...), targetParams, hostParams).Plan()
	if err != nil {
		t.Fatalf("Plan() failed: %v", err)
	}
	return plan
}

func moduleRef(pkg, name string) modgraph.ModuleRef {
	return modgraph.ModuleRef{
		Package: modgraph.PackageIdentity(pkg),
		Name:    modgraph.ModuleName(name),
	}
}

func identity(pkg, name string, dest Destination) BuildIdentity {
	return BuildIdentity{Ref: moduleRef(pkg, name), Destination: dest}
}

func mustDescription(t *testing.T, plan *Plan, id BuildIdentity) *ModuleBuildDescription {
	t.Helper()
	desc, ok := plan.Description(id)
	if !ok {
		t.Fatalf("Description(%s) not found", id)
	}
	return desc
}

// loggingScenarioSpecs is the two-same-named-products fixture: fooPkg and
// barPkg each export a library product Logging backed by a module Logging;
// the root app consumes fooPkg's unaliased and barPkg's renamed.
func loggingScenarioSpecs(barAliases map[modgraph.ModuleName]modgraph.ModuleName) []modgraph.PackageSpec {
	return []modgraph.PackageSpec{
		{
			Identity: "app",
			Root:     true,
			Modules: []modgraph.ModuleSpec{
				{
					Name: "App",
					Dependencies: []modgraph.Dependency{
						modgraph.ProductDependency{Name: "Logging", Package: "foopkg"},
						modgraph.ProductDependency{Name: "Logging", Package: "barpkg", Aliases: barAliases},
					},
				},
			},
			Products: []modgraph.ProductSpec{
				{Name: "app", Kind: modgraph.ProductKindExecutable, Modules: []modgraph.ModuleName{"App"}},
			},
		},
		{
			Identity: "foopkg",
			Modules:  []modgraph.ModuleSpec{{Name: "Logging"}},
			Products: []modgraph.ProductSpec{
				{Name: "Logging", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"Logging"}},
			},
		},
		{
			Identity: "barpkg",
			Modules:  []modgraph.ModuleSpec{{Name: "Logging"}},
			Products: []modgraph.ProductSpec{
				{Name: "Logging", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"Logging"}},
			},
		},
	}
}

func TestAliasDisambiguatesSameNamedProducts(t *testing.T) {
	t.Parallel()

	plan := mustPlan(t, loggingScenarioSpecs(map[modgraph.ModuleName]modgraph.ModuleName{"Logging": "BarLogging"})...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}

	foo := mustDescription(t, plan, identity("foopkg", "Logging", DestinationTarget))
	if foo.ModuleName != "Logging" {
		t.Errorf("foo ModuleName = %q, want %q", foo.ModuleName, "Logging")
	}
	if foo.Aliases != nil {
		t.Errorf("foo Aliases = %v, want nil", foo.Aliases)
	}

	bar := mustDescription(t, plan, identity("barpkg", "Logging", DestinationTarget))
	if bar.ModuleName != "BarLogging" {
		t.Errorf("bar ModuleName = %q, want %q", bar.ModuleName, "BarLogging")
	}
	want := AliasMap{"Logging": "BarLogging"}
	if diff := cmp.Diff(want, bar.Aliases); diff != "" {
		t.Errorf("bar Aliases mismatch (-want +got):\n%s", diff)
	}

	app := mustDescription(t, plan, identity("app", "App", DestinationTarget))
	if diff := cmp.Diff(want, app.Aliases); diff != "" {
		t.Errorf("app Aliases mismatch (-want +got):\n%s", diff)
	}

	if got := len(plan.ProductDescriptions()); got != 1 {
		t.Errorf("len(ProductDescriptions()) = %d, want 1", got)
	}
}

func TestUnaliasedSameNamedProductsCollide(t *testing.T) {
	t.Parallel()

	plan := mustPlan(t, loggingScenarioSpecs(nil)...)

	dups := plan.Diagnostics().OfCode(CodeDuplicateProductName)
	if len(dups) != 1 {
		t.Fatalf("DuplicateProductName diagnostics = %d, want 1: %v", len(dups), plan.Diagnostics())
	}
	want := []modgraph.PackageIdentity{"barpkg", "foopkg"}
	if diff := cmp.Diff(want, dups[0].Packages); diff != "" {
		t.Errorf("Packages mismatch (-want +got):\n%s", diff)
	}
	if !plan.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestDuplicateProductNameOrderIndependent(t *testing.T) {
	t.Parallel()

	// Same fixture with the package insertion order reversed: the listed
	// identities must still come out lexicographic.
	specs := loggingScenarioSpecs(nil)
	reversed := []modgraph.PackageSpec{specs[2], specs[1], specs[0]}
	plan := mustPlan(t, reversed...)

	dups := plan.Diagnostics().OfCode(CodeDuplicateProductName)
	if len(dups) != 1 {
		t.Fatalf("DuplicateProductName diagnostics = %d, want 1", len(dups))
	}
	want := []modgraph.PackageIdentity{"barpkg", "foopkg"}
	if diff := cmp.Diff(want, dups[0].Packages); diff != "" {
		t.Errorf("Packages mismatch (-want +got):\n%s", diff)
	}
}

func TestDuplicateProductNameOldPackageWarns(t *testing.T) {
	t.Parallel()

	specs := loggingScenarioSpecs(nil)
	specs[2].ToolsVersion = "5.6.0" // barpkg predates aliasing
	plan := mustPlan(t, specs...)

	if got := len(plan.Diagnostics().OfCode(CodeDuplicateProductName)); got != 1 {
		t.Fatalf("DuplicateProductName diagnostics = %d, want 1", got)
	}
	old := plan.Diagnostics().OfCode(CodeToolsVersionTooOldForAliasing)
	if len(old) != 1 {
		t.Fatalf("ToolsVersionTooOldForAliasing diagnostics = %d, want 1", len(old))
	}
	if old[0].Severity != SeverityWarning {
		t.Errorf("Severity = %q, want %q", old[0].Severity, SeverityWarning)
	}
	want := []modgraph.PackageIdentity{"barpkg"}
	if diff := cmp.Diff(want, old[0].Packages); diff != "" {
		t.Errorf("Packages mismatch (-want +got):\n%s", diff)
	}
}

// chainSpecs builds pkga -> (X renamed nearAlias on the edge to pkgb) ->
// pkgb -> (farAlias on the edge to pkgc) -> pkgc, where pkgc declares the
// module X.
func chainSpecs(nearAliases, farAliases map[modgraph.ModuleName]modgraph.ModuleName) []modgraph.PackageSpec {
	return []modgraph.PackageSpec{
		{
			Identity: "pkga",
			Root:     true,
			Modules: []modgraph.ModuleSpec{
				{
					Name: "AMain",
					Dependencies: []modgraph.Dependency{
						modgraph.ProductDependency{Name: "BLib", Package: "pkgb", Aliases: nearAliases},
					},
				},
			},
			Products: []modgraph.ProductSpec{
				{Name: "amain", Kind: modgraph.ProductKindExecutable, Modules: []modgraph.ModuleName{"AMain"}},
			},
		},
		{
			Identity: "pkgb",
			Modules: []modgraph.ModuleSpec{
				{
					Name: "BLib",
					Dependencies: []modgraph.Dependency{
						modgraph.ProductDependency{Name: "CLib", Package: "pkgc", Aliases: farAliases},
					},
				},
			},
			Products: []modgraph.ProductSpec{
				{Name: "BLib", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"BLib"}},
			},
		},
		{
			Identity: "pkgc",
			Modules:  []modgraph.ModuleSpec{{Name: "X"}},
			Products: []modgraph.ProductSpec{
				{Name: "CLib", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"X"}},
			},
		},
	}
}

func TestChainedAliasCollapses(t *testing.T) {
	t.Parallel()

	// AMain renames X to Y; BLib renames Y to Z. No intermediate name
	// survives: X compiles as Z everywhere.
	plan := mustPlan(t, chainSpecs(
		map[modgraph.ModuleName]modgraph.ModuleName{"X": "Y"},
		map[modgraph.ModuleName]modgraph.ModuleName{"Y": "Z"},
	)...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}

	leaf := mustDescription(t, plan, identity("pkgc", "X", DestinationTarget))
	if leaf.ModuleName != "Z" {
		t.Errorf("leaf ModuleName = %q, want %q", leaf.ModuleName, "Z")
	}

	root := mustDescription(t, plan, identity("pkga", "AMain", DestinationTarget))
	want := AliasMap{"X": "Z"}
	if diff := cmp.Diff(want, root.Aliases); diff != "" {
		t.Errorf("root Aliases mismatch (-want +got):\n%s", diff)
	}
	for _, final := range root.Aliases {
		if final == "Y" {
			t.Error("intermediate name Y survived in the root alias map")
		}
	}
}

func TestCloserAliasOverridesUpstream(t *testing.T) {
	t.Parallel()

	// AMain renames X to Y upstream, but BLib's closer X to W wins.
	plan := mustPlan(t, chainSpecs(
		map[modgraph.ModuleName]modgraph.ModuleName{"X": "Y"},
		map[modgraph.ModuleName]modgraph.ModuleName{"X": "W"},
	)...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}
	leaf := mustDescription(t, plan, identity("pkgc", "X", DestinationTarget))
	if leaf.ModuleName != "W" {
		t.Errorf("leaf ModuleName = %q, want %q", leaf.ModuleName, "W")
	}
	// The overridden upstream request matched a name the module held, so it
	// is not flagged as unused.
	if warnings := plan.Diagnostics().Warnings(); len(warnings) != 0 {
		t.Errorf("warnings = %v, want none", warnings)
	}
}

// diamondSpecs builds a root consuming two mid-level library products whose
// modules both depend on the same leaf library, with per-edge alias requests
// declared by the mid modules.
func diamondSpecs(alias1, alias2 modgraph.ModuleName) []modgraph.PackageSpec {
	mid := func(id string, alias modgraph.ModuleName) modgraph.PackageSpec {
		var aliases map[modgraph.ModuleName]modgraph.ModuleName
		if alias != "" {
			aliases = map[modgraph.ModuleName]modgraph.ModuleName{"Leaf": alias}
		}
		name := modgraph.ModuleName(id + "Lib")
		return modgraph.PackageSpec{
			Identity: id,
			Modules: []modgraph.ModuleSpec{
				{
					Name: name,
					Dependencies: []modgraph.Dependency{
						modgraph.ProductDependency{Name: "LeafLib", Package: "leaf", Aliases: aliases},
					},
				},
			},
			Products: []modgraph.ProductSpec{
				{Name: modgraph.ProductName(name), Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{name}},
			},
		}
	}
	return []modgraph.PackageSpec{
		{
			Identity: "app",
			Root:     true,
			Modules: []modgraph.ModuleSpec{
				{
					Name: "App",
					Dependencies: []modgraph.Dependency{
						modgraph.ProductDependency{Name: "MidoneLib", Package: "midone"},
						modgraph.ProductDependency{Name: "MidtwoLib", Package: "midtwo"},
					},
				},
			},
			Products: []modgraph.ProductSpec{
				{Name: "app", Kind: modgraph.ProductKindExecutable, Modules: []modgraph.ModuleName{"App"}},
			},
		},
		mid("Midone", alias1),
		mid("Midtwo", alias2),
		{
			Identity: "leaf",
			Modules:  []modgraph.ModuleSpec{{Name: "Leaf"}},
			Products: []modgraph.ProductSpec{
				{Name: "LeafLib", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"Leaf"}},
			},
		},
	}
}

func TestDiamondConsistentAliasesMerge(t *testing.T) {
	t.Parallel()

	plan := mustPlan(t, diamondSpecs("Common", "Common")...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}
	leaf := mustDescription(t, plan, identity("leaf", "Leaf", DestinationTarget))
	if leaf.ModuleName != "Common" {
		t.Errorf("leaf ModuleName = %q, want %q", leaf.ModuleName, "Common")
	}
	want := AliasMap{"Leaf": "Common"}
	if diff := cmp.Diff(want, leaf.Aliases); diff != "" {
		t.Errorf("leaf Aliases mismatch (-want +got):\n%s", diff)
	}
}

func TestDiamondDivergentAliasesConflict(t *testing.T) {
	t.Parallel()

	plan := mustPlan(t, diamondSpecs("Alpha", "Beta")...)

	conflicts := plan.Diagnostics().OfCode(CodeConflictingAliasRequest)
	if len(conflicts) != 1 {
		t.Fatalf("ConflictingAliasRequest diagnostics = %d, want 1: %v", len(conflicts), plan.Diagnostics())
	}
	d := conflicts[0]
	if d.Module != moduleRef("leaf", "Leaf") {
		t.Errorf("Module = %s, want %s", d.Module, moduleRef("leaf", "Leaf"))
	}
	if len(d.Requests) != 2 {
		t.Errorf("len(Requests) = %d, want 2", len(d.Requests))
	}
	if !plan.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestAmbiguousAliasesInOneConsumer(t *testing.T) {
	t.Parallel()

	// Both divergent requests are declared by app/App itself, on its two
	// direct product edges: the ambiguous-product case, not a plain
	// cross-path conflict.
	specs := diamondSpecs("", "")
	specs[0].Modules[0].Dependencies = []modgraph.Dependency{
		modgraph.ProductDependency{
			Name: "MidoneLib", Package: "midone",
			Aliases: map[modgraph.ModuleName]modgraph.ModuleName{"Leaf": "Alpha"},
		},
		modgraph.ProductDependency{
			Name: "MidtwoLib", Package: "midtwo",
			Aliases: map[modgraph.ModuleName]modgraph.ModuleName{"Leaf": "Beta"},
		},
	}
	plan := mustPlan(t, specs...)

	ambiguous := plan.Diagnostics().OfCode(CodeAmbiguousAliasInProduct)
	if len(ambiguous) != 1 {
		t.Fatalf("AmbiguousAliasInProduct diagnostics = %d, want 1: %v", len(ambiguous), plan.Diagnostics())
	}
	if ambiguous[0].Module != moduleRef("leaf", "Leaf") {
		t.Errorf("Module = %s, want %s", ambiguous[0].Module, moduleRef("leaf", "Leaf"))
	}
}

func TestUnaliasedPathDoesNotConflict(t *testing.T) {
	t.Parallel()

	// One path renames the leaf, the other carries no request: the rename
	// wins and nothing conflicts, whichever path resolves first.
	plan := mustPlan(t, diamondSpecs("Alpha", "")...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}
	leaf := mustDescription(t, plan, identity("leaf", "Leaf", DestinationTarget))
	if leaf.ModuleName != "Alpha" {
		t.Errorf("leaf ModuleName = %q, want %q", leaf.ModuleName, "Alpha")
	}
}

func TestInvalidAliasIdentifierRejected(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name        string
		replacement modgraph.ModuleName
	}{
		{name: "empty", replacement: ""},
		{name: "leading digit", replacement: "9Lives"},
		{name: "spaces", replacement: "two words"},
	} {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			specs := diamondSpecs("", "")
			specs[1].Modules[0].Dependencies = []modgraph.Dependency{
				modgraph.ProductDependency{
					Name: "LeafLib", Package: "leaf",
					Aliases: map[modgraph.ModuleName]modgraph.ModuleName{"Leaf": tc.replacement},
				},
			}
			plan := mustPlan(t, specs...)

			invalid := plan.Diagnostics().OfCode(CodeInvalidAliasIdentifier)
			if len(invalid) != 1 {
				t.Fatalf("InvalidAliasIdentifier diagnostics = %d, want 1: %v", len(invalid), plan.Diagnostics())
			}
			if invalid[0].Severity != SeverityError {
				t.Errorf("Severity = %q, want %q", invalid[0].Severity, SeverityError)
			}
			// The invalid request never fires.
			leaf := mustDescription(t, plan, identity("leaf", "Leaf", DestinationTarget))
			if leaf.ModuleName != "Leaf" {
				t.Errorf("leaf ModuleName = %q, want %q", leaf.ModuleName, "Leaf")
			}
		})
	}
}

func TestNonSubstitutableSourcesWarnNotFail(t *testing.T) {
	t.Parallel()

	specs := diamondSpecs("Alpha", "Alpha")
	specs[3].Modules[0].SourceKinds = []modgraph.SourceKind{modgraph.SourceKindNonSubstitutable}
	plan := mustPlan(t, specs...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}
	warnings := plan.Diagnostics().OfCode(CodeNonSubstitutableSourcesAliased)
	if len(warnings) != 1 {
		t.Fatalf("NonSubstitutableSourcesAliased diagnostics = %d, want 1: %v", len(warnings), plan.Diagnostics())
	}
	if warnings[0].Severity != SeverityWarning {
		t.Errorf("Severity = %q, want %q", warnings[0].Severity, SeverityWarning)
	}
	// Identity-level substitution still applies.
	leaf := mustDescription(t, plan, identity("leaf", "Leaf", DestinationTarget))
	if leaf.ModuleName != "Alpha" {
		t.Errorf("leaf ModuleName = %q, want %q", leaf.ModuleName, "Alpha")
	}
}

func TestToolsVersionGateIgnoresAliases(t *testing.T) {
	t.Parallel()

	specs := diamondSpecs("Alpha", "Alpha")
	specs[3].ToolsVersion = "5.6.0" // leaf predates aliasing
	plan := mustPlan(t, specs...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}
	leaf := mustDescription(t, plan, identity("leaf", "Leaf", DestinationTarget))
	if leaf.ModuleName != "Leaf" {
		t.Errorf("leaf ModuleName = %q, want %q", leaf.ModuleName, "Leaf")
	}
	if leaf.Aliases != nil {
		t.Errorf("leaf Aliases = %v, want nil", leaf.Aliases)
	}
}

func TestUnusedAliasRequestWarns(t *testing.T) {
	t.Parallel()

	// "Nope" names nothing in the leaf subtree.
	specs := diamondSpecs("", "")
	specs[1].Modules[0].Dependencies = []modgraph.Dependency{
		modgraph.ProductDependency{
			Name: "LeafLib", Package: "leaf",
			Aliases: map[modgraph.ModuleName]modgraph.ModuleName{"Nope": "Whatever"},
		},
	}
	plan := mustPlan(t, specs...)

	if plan.HasErrors() {
		t.Fatalf("unexpected error diagnostics: %v", plan.Diagnostics())
	}
	unused := plan.Diagnostics().OfCode(CodeUnusedAliasRequest)
	if len(unused) != 1 {
		t.Fatalf("UnusedAliasRequest diagnostics = %d, want 1: %v", len(unused), plan.Diagnostics())
	}
	if unused[0].Severity != SeverityWarning {
		t.Errorf("Severity = %q, want %q", unused[0].Severity, SeverityWarning)
	}
	want := []AliasRequest{{
		Original:    "Nope",
		Replacement: "Whatever",
		Consumer:    moduleRef("midone", "MidoneLib"),
		Product:     modgraph.ProductRef{Package: "leaf", Name: "LeafLib"},
	}}
	if diff := cmp.Diff(want, unused[0].Requests); diff != "" {
		t.Errorf("Requests mismatch (-want +got):\n%s", diff)
	}
}

func TestTwoOriginalsOntoOneNameConflict(t *testing.T) {
	t.Parallel()

	// Sibling edges rename different modules onto the same final name. The
	// consumer's alias map would stop being injective, so this is a conflict
	// rather than a silent merge.
	plan := mustPlan(t,
		modgraph.PackageSpec{
			Identity: "app",
			Root:     true,
			Modules: []modgraph.ModuleSpec{
				{
					Name: "App",
					Dependencies: []modgraph.Dependency{
						modgraph.ProductDependency{
							Name: "ALib", Package: "apkg",
							Aliases: map[modgraph.ModuleName]modgraph.ModuleName{"Alpha": "Common"},
						},
						modgraph.ProductDependency{
							Name: "BLib", Package: "bpkg",
							Aliases: map[modgraph.ModuleName]modgraph.ModuleName{"Beta": "Common"},
						},
					},
				},
			},
			Products: []modgraph.ProductSpec{
				{Name: "app", Kind: modgraph.ProductKindExecutable, Modules: []modgraph.ModuleName{"App"}},
			},
		},
		modgraph.PackageSpec{
			Identity: "apkg",
			Modules:  []modgraph.ModuleSpec{{Name: "Alpha"}},
			Products: []modgraph.ProductSpec{
				{Name: "ALib", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"Alpha"}},
			},
		},
		modgraph.PackageSpec{
			Identity: "bpkg",
			Modules:  []modgraph.ModuleSpec{{Name: "Beta"}},
			Products: []modgraph.ProductSpec{
				{Name: "BLib", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"Beta"}},
			},
		},
	)

	conflicts := plan.Diagnostics().OfCode(CodeConflictingAliasRequest)
	if len(conflicts) != 1 {
		t.Fatalf("ConflictingAliasRequest diagnostics = %d, want 1: %v", len(conflicts), plan.Diagnostics())
	}
	if got := conflicts[0].Module; got != moduleRef("app", "App") {
		t.Errorf("Module = %s, want app/App", got)
	}
	want := []AliasRequest{
		{Original: "Alpha", Replacement: "Common", Consumer: moduleRef("app", "App")},
		{Original: "Beta", Replacement: "Common", Consumer: moduleRef("app", "App")},
	}
	if diff := cmp.Diff(want, conflicts[0].Requests); diff != "" {
		t.Errorf("Requests mismatch (-want +got):\n%s", diff)
	}
	if !plan.HasErrors() {
		t.Error("HasErrors() = false, want true")
	}
}

func TestStackedDiamondsResolveOnce(t *testing.T) {
	t.Parallel()

	// 32 two-wide diamonds stacked below one aliased edge. Each join point
	// must reuse the subtree result computed for the first incoming path;
	// enumerating root-to-leaf paths instead would never finish here.
	const diamonds = 32
	var modules []modgraph.ModuleSpec
	for i := 0; i < diamonds; i++ {
		joint := modgraph.ModuleName(fmt.Sprintf("Joint%d", i))
		left := modgraph.ModuleName(fmt.Sprintf("Left%d", i))
		right := modgraph.ModuleName(fmt.Sprintf("Right%d", i))
		next := modgraph.ModuleName(fmt.Sprintf("Joint%d", i+1))
		modules = append(modules,
			modgraph.ModuleSpec{Name: joint, Dependencies: []modgraph.Dependency{
				modgraph.ModuleDependency{Name: left},
				modgraph.ModuleDependency{Name: right},
			}},
			modgraph.ModuleSpec{Name: left, Dependencies: []modgraph.Dependency{modgraph.ModuleDependency{Name: next}}},
			modgraph.ModuleSpec{Name: right, Dependencies: []modgraph.Dependency{modgraph.ModuleDependency{Name: next}}},
		)
	}
	bottom := modgraph.ModuleName(fmt.Sprintf("Joint%d", diamonds))
	modules = append(modules, modgraph.ModuleSpec{Name: bottom})

	plan := mustPlan(t,
		modgraph.PackageSpec{
			Identity: "app",
			Root:     true,
			Modules: []modgraph.ModuleSpec{
				{
					Name: "App",
					Dependencies: []modgraph.Dependency{
						modgraph.ProductDependency{
							Name: "Deep", Package: "deep",
							Aliases: map[modgraph.ModuleName]modgraph.ModuleName{bottom: "Anchor"},
						},
					},
				},
			},
			Products: []modgraph.ProductSpec{
				{Name: "app", Kind: modgraph.ProductKindExecutable, Modules: []modgraph.ModuleName{"App"}},
			},
		},
		modgraph.PackageSpec{
			Identity: "deep",
			Modules:  modules,
			Products: []modgraph.ProductSpec{
				{Name: "Deep", Kind: modgraph.ProductKindLibrary, Modules: []modgraph.ModuleName{"Joint0"}},
			},
		},
	)

	if len(plan.Diagnostics()) != 0 {
		t.Fatalf("unexpected diagnostics: %v", plan.Diagnostics())
	}
	if got, want := len(plan.Descriptions()), 3*diamonds+2; got != want {
		t.Errorf("len(Descriptions()) = %d, want %d", got, want)
	}

	bottomDesc := mustDescription(t, plan, identity("deep", string(bottom), DestinationTarget))
	if bottomDesc.ModuleName != "Anchor" {
		t.Errorf("bottom ModuleName = %q, want %q", bottomDesc.ModuleName, "Anchor")
	}
	app := mustDescription(t, plan, identity("app", "App", DestinationTarget))
	want := AliasMap{bottom: "Anchor"}
	if diff := cmp.Diff(want, app.Aliases); diff != "" {
		t.Errorf("app Aliases mismatch (-want +got):\n%s", diff)
	}
}
