// SPDX-License-Identifier: MPL-2.0

// Package buildplan computes the build plan for a resolved module graph:
// which modules compile under which names, for which destination, with which
// parameters.
//
// Planning runs in two passes over an immutable [modgraph.ResolvedGraph].
// Alias resolution first computes every module's final name and [AliasMap],
// honoring rename requests declared on product dependency edges: requests
// chain (renaming X to Y and later Y to Z lands on Z), a closer declaration
// overrides a more distant one, and independent paths requesting the same
// rename merge while
// divergent requests are reported as conflicts. The destination walk then
// assigns each reached module one or two build identities: modules pulled in
// through a macro, plugin, or tool product compile for the host machine, and
// a module needed both ways materializes once per [Destination] with
// distinct parameters.
//
// # Entry point
//
// Construct a [Planner] with [NewPlanner] and call [Planner.Plan]. The
// returned [Plan] is immutable; its [ModuleBuildDescription] and
// [ProductBuildDescription] sets are what the downstream build-command
// emitter consumes.
//
// # Diagnostics
//
// Planning problems are collected as structured [Diagnostic] values rather
// than rendered or thrown, so one run reports every independent problem and
// the surrounding tool owns presentation. A plan with error diagnostics is
// not usable ([Plan.HasErrors]). Only structural failures that make planning
// itself impossible, a cyclic graph or a destination conflict, abort with a
// Go error.
//
// # Traversal
//
// [Plan.TraverseModules] is the path-sensitive walk: one visit per distinct
// incoming path, reporting parent and depth. [Plan.RecursiveDependencies] is
// the identity-sensitive flattened closure, deduplicated by build identity.
// [Plan.TraverseDependencies] visits direct edges only. All three honor
// dependency declaration order.
package buildplan
